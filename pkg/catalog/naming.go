package catalog

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/Hekkura/LibraryAppBE/pkg/domain"
)

// Filler replaces runs of characters that are not valid in a backend index name
const Filler = '_'

// InvalidChars may not appear in a backend index name. Several of them turn a
// single name into a multi-target expression on the backend.
const InvalidChars = `\/*?"<>| ,#:`

// MaxQualifiedLength is the backend's byte limit for an index name
const MaxQualifiedLength = 255

// Scheme describes one owner -> resource catalog: where the catalog documents
// live, which field lists the resources and how resource names are normalized.
type Scheme struct {
	Name         string // metrics/log label
	OwnerNoun    string
	ResourceNoun string
	CatalogIndex string
	Field        string
	FoldNonASCII bool
}

// IndexScheme is the application -> index catalog
func IndexScheme(catalogIndex string) Scheme {
	return Scheme{
		Name:         "index",
		OwnerNoun:    "application",
		ResourceNoun: "index",
		CatalogIndex: catalogIndex,
		Field:        "indexes",
	}
}

// GenreScheme is the user -> genre catalog. Genre names also fold non-ASCII runes.
func GenreScheme(catalogIndex string) Scheme {
	return Scheme{
		Name:         "genre",
		OwnerNoun:    "user",
		ResourceNoun: "genre",
		CatalogIndex: catalogIndex,
		Field:        "genres",
		FoldNonASCII: true,
	}
}

// Normalize trims and lower-cases name and collapses each run of whitespace
// (and non-ASCII runes when the scheme folds them) into a single Filler.
func (s Scheme) Normalize(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))

	var b strings.Builder
	b.Grow(len(name))
	inRun := false
	for _, r := range name {
		if unicode.IsSpace(r) || (s.FoldNonASCII && r > unicode.MaxASCII) {
			if !inRun {
				b.WriteRune(Filler)
				inRun = true
			}
			continue
		}
		inRun = false
		b.WriteRune(r)
	}
	return b.String()
}

// Resolve returns the backend-qualified name "{owner}.{resource}"
func (s Scheme) Resolve(owner, name string) string {
	return strings.ToLower(strings.TrimSpace(owner)) + "." + s.Normalize(name)
}

// Pattern returns the qualified pattern matching every resource of owner
func (s Scheme) Pattern(owner string) string {
	return strings.ToLower(strings.TrimSpace(owner)) + ".*"
}

// ValidateOwner rejects owners that cannot prefix a backend name on their own.
// A '.' is refused so that no owner's pattern can reach another owner's resources.
func (s Scheme) ValidateOwner(owner string) error {
	owner = strings.ToLower(strings.TrimSpace(owner))
	switch {
	case owner == "":
		return domain.BadDataRequest(s.OwnerNoun+" id is required", nil)
	case strings.ContainsAny(owner[:1], "_-+"):
		return domain.BadDataRequest(fmt.Sprintf("%s '%s' must not start with '_', '-' or '+'", s.OwnerNoun, owner), nil)
	case strings.ContainsAny(owner, InvalidChars+"."):
		return domain.BadDataRequest(fmt.Sprintf("%s '%s' contains an invalid character", s.OwnerNoun, owner), nil)
	}
	return nil
}

// Validate checks owner and the normalized name against the backend naming
// rules, so that nothing the backend would refuse or expand is ever recorded
// in a catalog or sent as a target.
func (s Scheme) Validate(owner, name string) error {
	if err := s.ValidateOwner(owner); err != nil {
		return err
	}
	normalized := s.Normalize(name)
	switch {
	case normalized == "":
		return domain.BadDataRequest(s.ResourceNoun+" name is required", nil)
	case strings.ContainsAny(normalized, InvalidChars):
		return domain.BadDataRequest(fmt.Sprintf("%s '%s' contains an invalid character", s.ResourceNoun, normalized), nil)
	case len(s.Resolve(owner, name)) > MaxQualifiedLength:
		return domain.BadDataRequest(fmt.Sprintf("%s '%s' is too long", s.ResourceNoun, normalized), nil)
	}
	return nil
}

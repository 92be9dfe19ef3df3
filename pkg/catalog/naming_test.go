package catalog

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hekkura/LibraryAppBE/pkg/domain"
)

func TestScheme_Normalize(t *testing.T) {
	index := IndexScheme(appCatalog)
	genre := GenreScheme(userCatalog)

	tests := []struct {
		name     string
		scheme   Scheme
		input    string
		expected string
	}{
		{"lower-cases", index, "Movies", "movies"},
		{"trims", index, "  movies \t", "movies"},
		{"collapses whitespace runs", index, "my   best\t\nmovies", "my_best_movies"},
		{"keeps non-ascii for indexes", index, "café", "café"},
		{"folds non-ascii for genres", genre, "Café Crème", "caf_cr_me"},
		{"folds mixed runs", genre, "sci fi ✨✨ x", "sci_fi_x"},
		{"empty", index, "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.scheme.Normalize(tt.input))
		})
	}
}

func TestScheme_Resolve(t *testing.T) {
	index := IndexScheme(appCatalog)
	assert.Equal(t, "app1.movies", index.Resolve("App1", " Movies "))
	assert.Equal(t, "app1.top_rated", index.Resolve("app1", "Top  Rated"))
	assert.Equal(t, "app1.*", index.Pattern(" APP1"))

	genre := GenreScheme(userCatalog)
	assert.Equal(t, "user7.ni_o", genre.Resolve("USER7", "Niño"))
}

func TestScheme_ResolveIsIdempotentOnNormalizedNames(t *testing.T) {
	inputs := []string{
		"movies", "Movies", "  Top  Rated ", "a _b", "x\t\ty", "Café Crème", "✨ sparkle ✨", "__", "",
	}

	for _, scheme := range []Scheme{IndexScheme(appCatalog), GenreScheme(userCatalog)} {
		for _, in := range inputs {
			normalized := scheme.Normalize(in)
			assert.Equal(t, normalized, scheme.Normalize(normalized), "%s: normalize(%q)", scheme.Name, in)
			assert.Equal(t, scheme.Resolve("app1", in), scheme.Resolve("app1", normalized), "%s: resolve(%q)", scheme.Name, in)
		}
	}
}

func TestScheme_Validate(t *testing.T) {
	index := IndexScheme(appCatalog)
	genre := GenreScheme(userCatalog)

	tests := []struct {
		name    string
		scheme  Scheme
		owner   string
		input   string
		wantErr string
	}{
		{"plain", index, "app1", "movies", ""},
		{"whitespace is folded", index, "App1", "  Top Rated ", ""},
		{"dots inside a name", index, "app1", "v1.2", ""},
		{"folded genre", genre, "user7", "✨ Café ✨", ""},
		{"empty name", index, "app1", "  ", "bad data request: index name is required"},
		{"comma", index, "app1", "x,app2.secret", "bad data request: index 'x,app2.secret' contains an invalid character"},
		{"wildcard", index, "app1", "*", "bad data request: index '*' contains an invalid character"},
		{"slash", genre, "user7", "a/b", "bad data request: genre 'a/b' contains an invalid character"},
		{"too long", index, "app1", strings.Repeat("a", MaxQualifiedLength), "bad data request: index '" + strings.Repeat("a", MaxQualifiedLength) + "' is too long"},
		{"empty owner", index, " ", "movies", "bad data request: application id is required"},
		{"owner with dot", index, "app1.x", "movies", "bad data request: application 'app1.x' contains an invalid character"},
		{"owner with wildcard", genre, "user*", "poetry", "bad data request: user 'user*' contains an invalid character"},
		{"owner leading underscore", index, "_all", "movies", "bad data request: application '_all' must not start with '_', '-' or '+'"},
		{"owner leading dash", index, "-app", "movies", "bad data request: application '-app' must not start with '_', '-' or '+'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.scheme.Validate(tt.owner, tt.input)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, domain.KindBadDataRequest, domain.KindOf(err))
			assert.Equal(t, tt.wantErr, err.(*domain.Error).Message())
		})
	}
}

func TestOutcome_String(t *testing.T) {
	assert.Equal(t, "OwnerNotFound", OwnerNotFound.String())
	assert.Equal(t, "ResourceNotFound", ResourceNotFound.String())
	assert.Equal(t, "ResourceExists", ResourceExists.String())
	assert.Equal(t, "Outcome(7)", Outcome(7).String())
}

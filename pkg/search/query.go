package search

import (
	"strings"
)

// DefaultMinimumShouldMatch is the share of search terms a document must contain
const DefaultMinimumShouldMatch = "75%"

// Params are the user-facing search options
type Params struct {
	Term         string   `json:"search_term,omitempty"`
	Fields       []string `json:"search_in,omitempty"`
	ReturnFields string   `json:"return_fields,omitempty"`
	From         *int     `json:"from,omitempty"`
	Count        *int     `json:"count,omitempty"`
}

// BuildQuery builds the backend query body. Without a search term every
// document matches; otherwise a cross-field query_string is issued over
// Fields (all fields when empty). ReturnFields is a comma separated list.
func BuildQuery(p Params) map[string]interface{} {
	includes := ParseFieldList(p.ReturnFields)
	if len(includes) == 0 {
		includes = []string{"*"}
	}

	body := map[string]interface{}{
		"_source": map[string]interface{}{
			"includes": includes,
		},
		"query": map[string]interface{}{
			"match_all": map[string]interface{}{},
		},
	}

	term := strings.TrimSpace(p.Term)
	if term == "" {
		return body
	}

	fields := make([]string, 0, len(p.Fields))
	for _, f := range p.Fields {
		if f = strings.TrimSpace(f); f != "" {
			fields = append(fields, f)
		}
	}
	if len(fields) == 0 {
		fields = []string{"*"}
	}

	body["query"] = map[string]interface{}{
		"query_string": map[string]interface{}{
			"query":                term,
			"type":                 "cross_fields",
			"fields":               fields,
			"minimum_should_match": DefaultMinimumShouldMatch,
		},
	}
	return body
}

// ParseFieldList splits "a, b,c" into trimmed, non-empty field names
func ParseFieldList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	fields := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			fields = append(fields, part)
		}
	}
	return fields
}

package embedded

import (
	"fmt"
	"math"
	"path"
	"strconv"
	"strings"

	"github.com/Hekkura/LibraryAppBE/pkg/domain"
)

// compiledQuery evaluates the two query shapes produced by the search
// package: match_all and query_string
type compiledQuery struct {
	matchAll    bool
	terms       []string
	fields      []string
	minimumHits int
	includes    []string
}

func compileQuery(body map[string]interface{}) (*compiledQuery, error) {
	q := &compiledQuery{matchAll: true}
	if body == nil {
		return q, nil
	}

	if source, ok := body["_source"].(map[string]interface{}); ok {
		includes, err := stringList(source["includes"])
		if err != nil {
			return nil, fmt.Errorf("_source.includes: %w", err)
		}
		q.includes = includes
	}

	rawQuery, ok := body["query"]
	if !ok {
		return q, nil
	}
	query, ok := rawQuery.(map[string]interface{})
	if !ok || len(query) != 1 {
		return nil, fmt.Errorf("query must be an object with a single clause")
	}

	if _, ok := query["match_all"]; ok {
		return q, nil
	}

	qs, ok := query["query_string"].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("unsupported query clause")
	}
	text, ok := qs["query"].(string)
	if !ok {
		return nil, fmt.Errorf("query_string.query must be a string")
	}
	fields, err := stringList(qs["fields"])
	if err != nil {
		return nil, fmt.Errorf("query_string.fields: %w", err)
	}
	if len(fields) == 0 {
		fields = []string{"*"}
	}

	q.matchAll = false
	q.fields = fields
	for _, term := range strings.Fields(strings.ToLower(text)) {
		q.terms = append(q.terms, term)
	}
	q.minimumHits = minimumShouldMatch(qs["minimum_should_match"], len(q.terms))
	return q, nil
}

func (q *compiledQuery) matches(doc domain.Document) bool {
	if q.matchAll {
		return true
	}
	if len(q.terms) == 0 {
		return false
	}

	values := q.fieldValues(doc)
	hits := 0
	for _, term := range q.terms {
		for _, value := range values {
			if strings.Contains(value, term) {
				hits++
				break
			}
		}
	}
	return hits >= q.minimumHits
}

// fieldValues flattens doc into lower-cased strings of the searched fields
func (q *compiledQuery) fieldValues(doc domain.Document) []string {
	var values []string
	var walk func(prefix string, v interface{})
	walk = func(prefix string, v interface{}) {
		switch val := v.(type) {
		case map[string]interface{}:
			for k, child := range val {
				walk(prefix+"."+k, child)
			}
		case domain.Document:
			walk(prefix, map[string]interface{}(val))
		case []interface{}:
			for _, item := range val {
				walk(prefix, item)
			}
		case nil:
		default:
			if q.searchesField(prefix) {
				values = append(values, strings.ToLower(stringify(val)))
			}
		}
	}
	for key, value := range doc {
		walk(key, value)
	}
	return values
}

func (q *compiledQuery) searchesField(name string) bool {
	for _, pattern := range q.fields {
		if pattern == "*" {
			return true
		}
		if matched, _ := path.Match(pattern, name); matched {
			return true
		}
	}
	return false
}

// minimumShouldMatch resolves "75%" or "2" against the number of terms.
// Percentages round down, as the backend does, with a floor of one term.
func minimumShouldMatch(raw interface{}, terms int) int {
	if terms == 0 {
		return 0
	}
	need := terms
	switch v := raw.(type) {
	case string:
		if strings.HasSuffix(v, "%") {
			if pct, err := strconv.ParseFloat(strings.TrimSuffix(v, "%"), 64); err == nil {
				need = int(math.Floor(float64(terms) * pct / 100))
			}
		} else if n, err := strconv.Atoi(v); err == nil {
			need = n
		}
	case float64:
		need = int(v)
	case int:
		need = v
	}
	return max(1, min(need, terms))
}

func stringList(raw interface{}) ([]string, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case []string:
		return v, nil
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("expected strings, got %T", item)
			}
			out = append(out, s)
		}
		return out, nil
	case string:
		return []string{v}, nil
	default:
		return nil, fmt.Errorf("expected a list, got %T", raw)
	}
}

func stringify(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return fmt.Sprint(val)
	}
}

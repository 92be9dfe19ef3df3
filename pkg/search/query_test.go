package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildQuery_MatchAll(t *testing.T) {
	body := BuildQuery(Params{})

	assert.Equal(t, map[string]interface{}{"includes": []string{"*"}}, body["_source"])
	assert.Equal(t, map[string]interface{}{"match_all": map[string]interface{}{}}, body["query"])
}

func TestBuildQuery_QueryString(t *testing.T) {
	body := BuildQuery(Params{
		Term:         "  the matrix ",
		Fields:       []string{"title", " ", "director"},
		ReturnFields: "title, year",
	})

	assert.Equal(t, map[string]interface{}{"includes": []string{"title", "year"}}, body["_source"])
	qs := body["query"].(map[string]interface{})["query_string"].(map[string]interface{})
	assert.Equal(t, "the matrix", qs["query"])
	assert.Equal(t, "cross_fields", qs["type"])
	assert.Equal(t, []string{"title", "director"}, qs["fields"])
	assert.Equal(t, DefaultMinimumShouldMatch, qs["minimum_should_match"])
}

func TestBuildQuery_DefaultFields(t *testing.T) {
	body := BuildQuery(Params{Term: "heat"})
	qs := body["query"].(map[string]interface{})["query_string"].(map[string]interface{})
	assert.Equal(t, []string{"*"}, qs["fields"])
}

func TestParseFieldList(t *testing.T) {
	assert.Nil(t, ParseFieldList(""))
	assert.Nil(t, ParseFieldList("   "))
	assert.Equal(t, []string{"a", "b"}, ParseFieldList("a,, b ,"))
}

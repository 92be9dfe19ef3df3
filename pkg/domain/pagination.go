package domain

import "fmt"

const (
	// DefaultSearchSize is used when a search request does not specify a count
	DefaultSearchSize = 10
	// MaxSearchWindow mirrors the backend's default max_result_window
	MaxSearchWindow = 10000
)

// SearchPage defines the from/count window of a search
type SearchPage struct {
	From int `json:"from,omitempty"`
	Size int `json:"size,omitempty"`
}

// DefaultSearchPage returns default pagination settings
func DefaultSearchPage() SearchPage {
	return SearchPage{From: 0, Size: DefaultSearchSize}
}

// Validate validates the page window
func (p SearchPage) Validate() error {
	if p.From < 0 {
		return fmt.Errorf("from cannot be negative")
	}
	if p.Size < 0 {
		return fmt.Errorf("count cannot be negative")
	}
	if p.From+p.Size > MaxSearchWindow {
		return fmt.Errorf("from + count %d exceeds maximum %d", p.From+p.Size, MaxSearchWindow)
	}
	return nil
}

// SearchRequest is a query body plus its page window
type SearchRequest struct {
	Body map[string]interface{}
	Page SearchPage
}

// SearchResult is the backend's response body, passed through to the caller
type SearchResult map[string]interface{}

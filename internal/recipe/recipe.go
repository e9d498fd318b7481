// Package recipe imports ingredient lists from recipe web pages: fetch
// the page, pull the schema.org ingredient lines out, and clean them up
// for a grocery list.
package recipe

import (
	"errors"
	"fmt"
)

var ErrInvalidURL = errors.New("invalid recipe url")

// FetchError means the page could not be retrieved at all.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch recipe %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ParseError means the page was retrieved but carries no extractable
// ingredient structure.
type ParseError struct {
	URL    string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("no ingredients found at %s: %s", e.URL, e.Reason)
}

// Recipe is a scraped result: a title and the raw ingredient lines in
// page order.
type Recipe struct {
	Title       string   `json:"title"`
	Ingredients []string `json:"ingredients"`
}

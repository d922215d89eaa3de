// Package source adapts the three external publications into the shared
// record shape. Each adapter owns its fetch collaborator, its ticker
// rule table and its row validation; individual malformed rows are
// dropped, a missing required column set is fatal.
package source

import (
	"context"
	"errors"
	"strings"
)

// ErrSchema marks fetched content whose structure no longer matches the
// expectation (columns renamed, selector gone). It signals an upstream
// format change that must not be silently worked around.
var ErrSchema = errors.New("unexpected source schema")

// Getter fetches one URL. *fetch.Client satisfies it; tests substitute
// fixtures.
type Getter interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

func headerIndex(headers []string, want string) int {
	for i, h := range headers {
		if strings.TrimSpace(h) == want {
			return i
		}
	}
	return -1
}

func headerIndexContains(headers []string, sub string) int {
	sub = strings.ToLower(sub)
	for i, h := range headers {
		if strings.Contains(strings.ToLower(strings.TrimSpace(h)), sub) {
			return i
		}
	}
	return -1
}

// The first header cell of both CSVs may carry a UTF-8 BOM.
func stripBOM(s string) string {
	return strings.TrimPrefix(s, "\ufeff")
}

func maxIndex(nums ...int) int {
	m := nums[0]
	for _, n := range nums[1:] {
		if n > m {
			m = n
		}
	}
	return m
}

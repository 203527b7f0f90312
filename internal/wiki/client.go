// Package wiki talks to the encyclopedia: article lookup and the random
// path-generation flow that produces the start/target pair for a round.
package wiki

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound reports a title with no matching article.
var ErrNotFound = errors.New("article not found")

// ErrGenerationFailed reports an exhausted path-generation retry budget.
var ErrGenerationFailed = errors.New("path generation failed")

// AmbiguousError reports a title that resolves to a disambiguation page. The
// generator falls back to the first offered alternative.
type AmbiguousError struct {
	Title   string
	Options []string
}

func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("ambiguous article %q (%d options)", e.Title, len(e.Options))
}

// Page is one resolved article.
type Page struct {
	Title   string   `json:"title"`
	URL     string   `json:"url"`
	Summary string   `json:"summary"`
	Links   []string `json:"links,omitempty"`
}

// Client is the encyclopedia lookup boundary.
type Client interface {
	// Random returns n random article titles.
	Random(ctx context.Context, n int) ([]string, error)
	// Search returns candidate titles for a query, best match first.
	Search(ctx context.Context, query string) ([]string, error)
	// Fetch resolves an exact title to a page.
	Fetch(ctx context.Context, title string) (*Page, error)
}

// internal/search/engine.go
package search

import (
	"context"

	"costli-agents/internal/models"
)

// Engine is one search backend. Engines may fail; Adapter absorbs that.
type Engine interface {
	Name() string
	Search(ctx context.Context, query string, max int) ([]models.SearchResult, error)
}

// Searcher is the best-effort capability the pipeline stages depend on.
type Searcher interface {
	Search(ctx context.Context, query string, max int) []models.SearchResult
}

// SearcherFunc adapts a plain function, mostly for tests.
type SearcherFunc func(ctx context.Context, query string, max int) []models.SearchResult

func (f SearcherFunc) Search(ctx context.Context, query string, max int) []models.SearchResult {
	return f(ctx, query, max)
}

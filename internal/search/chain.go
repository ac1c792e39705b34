// internal/search/chain.go
package search

import (
	"context"
	"strings"

	"costli-agents/internal/models"
)

type chain struct {
	engines []Engine
}

// Chain tries engines in order and returns the first non-empty success.
// The last error is returned only when no engine produced results.
func Chain(primary Engine, secondary ...Engine) Engine {
	if len(secondary) == 0 {
		return primary
	}
	return &chain{engines: append([]Engine{primary}, secondary...)}
}

func (c *chain) Name() string {
	names := make([]string, len(c.engines))
	for i, e := range c.engines {
		names[i] = e.Name()
	}
	return strings.Join(names, "+")
}

func (c *chain) Search(ctx context.Context, query string, max int) ([]models.SearchResult, error) {
	var lastErr error
	for _, e := range c.engines {
		results, err := e.Search(ctx, query, max)
		if err != nil {
			lastErr = err
			if ctx.Err() != nil {
				break
			}
			continue
		}
		if len(results) > 0 {
			return results, nil
		}
	}
	return nil, lastErr
}

// internal/search/adapter.go
package search

import (
	"context"
	"errors"
	"strings"
	"time"

	"costli-agents/internal/common/config"
	"costli-agents/internal/common/database"
	commonhttp "costli-agents/internal/common/http"
	"costli-agents/internal/common/logger"
	"costli-agents/internal/common/metrics"
	"costli-agents/internal/models"
)

type AdapterOptions struct {
	Timeout      time.Duration
	MaxResults   int
	SnippetChars int
}

// Adapter is the failure-absorbing facade over an Engine. It never returns
// an error: an unavailable engine yields an empty result list.
type Adapter struct {
	engine Engine
	opts   AdapterOptions
	logger logger.Logger
}

func NewAdapter(engine Engine, opts AdapterOptions, log logger.Logger) *Adapter {
	if opts.MaxResults <= 0 {
		opts.MaxResults = 5
	}
	if opts.SnippetChars <= 0 {
		opts.SnippetChars = 800
	}
	return &Adapter{engine: engine, opts: opts, logger: log}
}

// Enabled reports whether an engine is configured.
func (a *Adapter) Enabled() bool {
	return a != nil && a.engine != nil
}

func (a *Adapter) Search(ctx context.Context, query string, max int) []models.SearchResult {
	if !a.Enabled() || strings.TrimSpace(query) == "" {
		return []models.SearchResult{}
	}
	if max <= 0 {
		max = a.opts.MaxResults
	}

	if a.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.opts.Timeout)
		defer cancel()
	}

	name := a.engine.Name()
	raw, err := a.engine.Search(ctx, query, max)
	if err != nil {
		outcome := "error"
		if errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
			outcome = "timeout"
		}
		metrics.SearchRequests.WithLabelValues(name, outcome).Inc()
		a.logger.Warn("search failed", map[string]interface{}{
			"engine": name,
			"query":  query,
			"error":  err.Error(),
		})
		return []models.SearchResult{}
	}

	results := make([]models.SearchResult, 0, max)
	for _, r := range raw {
		if strings.TrimSpace(r.URL) == "" {
			continue
		}
		r.Snippet = truncateRunes(r.Snippet, a.opts.SnippetChars)
		results = append(results, r)
		if len(results) == max {
			break
		}
	}

	outcome := "success"
	if len(results) == 0 {
		outcome = "empty"
	}
	metrics.SearchRequests.WithLabelValues(name, outcome).Inc()
	return results
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// Deps carries the optional stores an engine stack may use.
type Deps struct {
	Elasticsearch HitSearcher
	Redis         *database.RedisClient
}

// Build assembles the engine stack named by the search config. Engines
// missing credentials are skipped; when none remain the adapter is
// disabled.
func Build(cfg config.SearchConfig, deps Deps, log logger.Logger) *Adapter {
	client := commonhttp.NewClient(config.GetDuration(cfg.Timeout))

	var engines []Engine
	for _, name := range []string{cfg.Provider, cfg.Fallback} {
		if e := buildEngine(name, cfg, deps, client); e != nil {
			engines = append(engines, e)
		}
	}

	opts := AdapterOptions{
		Timeout:      config.GetDuration(cfg.Timeout),
		MaxResults:   cfg.MaxResults,
		SnippetChars: cfg.SnippetChars,
	}
	if len(engines) == 0 {
		log.Warn("no search engine configured, research runs without web results", nil)
		return NewAdapter(nil, opts, log)
	}

	engine := Chain(engines[0], engines[1:]...)
	if deps.Redis != nil && cfg.CacheTTL > 0 {
		engine = Cache(engine, deps.Redis, config.GetDuration(cfg.CacheTTL), log)
	}
	log.Info("search configured", map[string]interface{}{"engine": engine.Name()})
	return NewAdapter(engine, opts, log)
}

func buildEngine(name string, cfg config.SearchConfig, deps Deps, client *commonhttp.Client) Engine {
	switch name {
	case "tavily":
		if cfg.Tavily.APIKey == "" {
			return nil
		}
		return NewTavily(cfg.Tavily.APIKey, cfg.Tavily.BaseURL, cfg.Tavily.SearchDepth, client)
	case "google":
		if cfg.Google.APIKey == "" || cfg.Google.EngineID == "" {
			return nil
		}
		return NewGoogle(cfg.Google.APIKey, cfg.Google.EngineID, cfg.Google.BaseURL, client)
	case "elasticsearch":
		if deps.Elasticsearch == nil {
			return nil
		}
		return NewKnowledgeBase(deps.Elasticsearch, cfg.Elasticsearch.Index)
	}
	return nil
}

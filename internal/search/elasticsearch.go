// internal/search/elasticsearch.go
package search

import (
	"context"
	"encoding/json"
	"fmt"

	"costli-agents/internal/common/database"
	"costli-agents/internal/models"
)

// HitSearcher is the part of the Elasticsearch client this engine needs.
type HitSearcher interface {
	Search(ctx context.Context, index string, query map[string]interface{}, size int) ([]database.SearchHit, error)
}

// KnowledgeBase searches a curated index of cost documentation.
type KnowledgeBase struct {
	es    HitSearcher
	index string
}

func NewKnowledgeBase(es HitSearcher, index string) *KnowledgeBase {
	if index == "" {
		index = "cost-knowledge"
	}
	return &KnowledgeBase{es: es, index: index}
}

func (k *KnowledgeBase) Name() string { return "elasticsearch" }

type knowledgeDoc struct {
	Title   string   `json:"title"`
	URL     string   `json:"url"`
	Content string   `json:"content"`
	Tags    []string `json:"tags"`
}

func (k *KnowledgeBase) Search(ctx context.Context, query string, max int) ([]models.SearchResult, error) {
	q := map[string]interface{}{
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  query,
				"fields": []string{"title^2", "content", "tags"},
			},
		},
	}

	hits, err := k.es.Search(ctx, k.index, q, max)
	if err != nil {
		return nil, fmt.Errorf("knowledge base: %w", err)
	}

	results := make([]models.SearchResult, 0, len(hits))
	for _, hit := range hits {
		var doc knowledgeDoc
		if err := json.Unmarshal(hit.Source, &doc); err != nil {
			continue
		}
		results = append(results, models.SearchResult{Title: doc.Title, URL: doc.URL, Snippet: doc.Content})
	}
	return results, nil
}

// internal/search/tavily.go
package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	commonhttp "costli-agents/internal/common/http"
	"costli-agents/internal/models"
)

type Tavily struct {
	apiKey  string
	baseURL string
	depth   string
	client  *commonhttp.Client
}

func NewTavily(apiKey, baseURL, depth string, client *commonhttp.Client) *Tavily {
	if depth == "" {
		depth = "advanced"
	}
	if baseURL == "" {
		baseURL = "https://api.tavily.com"
	}
	return &Tavily{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		depth:   depth,
		client:  client,
	}
}

func (t *Tavily) Name() string { return "tavily" }

type tavilyRequest struct {
	APIKey            string `json:"api_key"`
	Query             string `json:"query"`
	MaxResults        int    `json:"max_results"`
	SearchDepth       string `json:"search_depth"`
	IncludeAnswer     bool   `json:"include_answer"`
	IncludeRawContent bool   `json:"include_raw_content"`
}

type tavilyResponse struct {
	Answer  string `json:"answer"`
	Results []struct {
		Title   string  `json:"title"`
		URL     string  `json:"url"`
		Content string  `json:"content"`
		Score   float64 `json:"score"`
	} `json:"results"`
}

func (t *Tavily) Search(ctx context.Context, query string, max int) ([]models.SearchResult, error) {
	if strings.TrimSpace(t.apiKey) == "" {
		return nil, errors.New("tavily: API key is missing")
	}

	payload, err := json.Marshal(tavilyRequest{
		APIKey:            t.apiKey,
		Query:             query,
		MaxResults:        max,
		SearchDepth:       t.depth,
		IncludeAnswer:     true,
		IncludeRawContent: false,
	})
	if err != nil {
		return nil, err
	}

	resp, err := t.client.DoWithRetry(ctx, http.MethodPost, t.baseURL+"/search", payload,
		map[string]string{"Content-Type": "application/json"})
	if err != nil {
		return nil, fmt.Errorf("tavily: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tavily http %d", resp.StatusCode)
	}

	var body tavilyResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("tavily: decode response: %w", err)
	}

	results := make([]models.SearchResult, 0, len(body.Results))
	for _, r := range body.Results {
		results = append(results, models.SearchResult{Title: r.Title, URL: r.URL, Snippet: r.Content})
	}
	return results, nil
}

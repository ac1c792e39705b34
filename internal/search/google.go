// internal/search/google.go
package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	commonhttp "costli-agents/internal/common/http"
	"costli-agents/internal/models"
)

// Google queries the Custom Search JSON API.
type Google struct {
	apiKey   string
	engineID string
	baseURL  string
	client   *commonhttp.Client
}

func NewGoogle(apiKey, engineID, baseURL string, client *commonhttp.Client) *Google {
	if baseURL == "" {
		baseURL = "https://www.googleapis.com"
	}
	return &Google{
		apiKey:   apiKey,
		engineID: engineID,
		baseURL:  strings.TrimRight(baseURL, "/"),
		client:   client,
	}
}

func (g *Google) Name() string { return "google" }

func (g *Google) Search(ctx context.Context, query string, max int) ([]models.SearchResult, error) {
	if g.apiKey == "" || g.engineID == "" {
		return nil, errors.New("google: API key or engine id is missing")
	}
	// the API rejects num outside 1..10
	if max <= 0 || max > 10 {
		max = 10
	}

	params := url.Values{}
	params.Set("key", g.apiKey)
	params.Set("cx", g.engineID)
	params.Set("q", query)
	params.Set("num", strconv.Itoa(max))

	resp, err := g.client.DoWithRetry(ctx, http.MethodGet, g.baseURL+"/customsearch/v1?"+params.Encode(), nil, nil)
	if err != nil {
		return nil, fmt.Errorf("google: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("google http %d", resp.StatusCode)
	}

	var body struct {
		Items []struct {
			Title   string `json:"title"`
			Link    string `json:"link"`
			Snippet string `json:"snippet"`
		} `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("google: decode response: %w", err)
	}

	results := make([]models.SearchResult, 0, len(body.Items))
	for _, item := range body.Items {
		results = append(results, models.SearchResult{Title: item.Title, URL: item.Link, Snippet: item.Snippet})
	}
	return results, nil
}

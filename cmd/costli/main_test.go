// cmd/costli/main_test.go
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"costli-agents/internal/bootstrap"
	"costli-agents/internal/common/config"
	"costli-agents/internal/common/logger"
	"costli-agents/internal/llm"
	"costli-agents/internal/llm/llmtest"
	"costli-agents/internal/models"
	"costli-agents/internal/search"
	analyzescenario "costli-agents/internal/workers/cost-analysis/analyze-scenario"
	fallbackinsights "costli-agents/internal/workers/cost-analysis/fallback-insights"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeLoader(t *testing.T, respond func(context.Context, *llm.Request) (*llm.Response, error)) appLoader {
	t.Helper()
	t.Setenv("REDIS_ADDRESS", "")
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("search:\n  provider: none\n"), 0o600))

	return func(ctx context.Context, _, _ string) (*bootstrap.App, error) {
		cfg, err := config.LoadFromFile(path)
		if err != nil {
			return nil, err
		}
		p := llmtest.New()
		p.Respond = respond
		return bootstrap.New(ctx, cfg, logger.NewTestLogger(t), bootstrap.Overrides{
			Provider: p,
			Searcher: search.SearcherFunc(func(context.Context, string, int) []models.SearchResult { return nil }),
		})
	}
}

func run(t *testing.T, load appLoader, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd(load)
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func TestAnalyzeCmd_FallbackWhenModelFails(t *testing.T) {
	load := fakeLoader(t, func(context.Context, *llm.Request) (*llm.Response, error) {
		return nil, &llm.TransportError{Provider: "fake", Err: errors.New("boom")}
	})

	stdout, stderr, err := run(t, load, "", "analyze", "--domain", "Azure", "Two", "VMs")
	require.NoError(t, err)

	var tiles []models.Tile
	require.NoError(t, json.Unmarshal([]byte(stdout), &tiles))
	want := fallbackinsights.For(models.DomainAzure)
	require.Len(t, tiles, len(want))
	for i := range want {
		assert.Equal(t, want[i].Headline, tiles[i].Headline)
	}
	assert.Contains(t, stderr, analyzescenario.LabelAnalyzing)
	assert.Contains(t, stderr, analyzescenario.LabelFallback)
}

func TestAnalyzeCmd_BadDomain(t *testing.T) {
	_, _, err := run(t, fakeLoader(t, nil), "", "analyze", "--domain", "Oracle", "x")
	assert.Error(t, err)
}

func TestPlanCmd(t *testing.T) {
	load := fakeLoader(t, func(context.Context, *llm.Request) (*llm.Response, error) {
		return &llm.Response{Text: `{"steps":[{"title":"Buy a savings plan","description":"Commit for one year."}]}`}, nil
	})

	stdout, _, err := run(t, load, "", "plan", "--domain", "AWS", "--headline", "Commit to compute savings plans")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Buy a savings plan")
	assert.Contains(t, stdout, `"status": "success"`)
}

func TestChatCmd_REPL(t *testing.T) {
	p := 0
	load := fakeLoader(t, func(context.Context, *llm.Request) (*llm.Response, error) {
		p++
		return &llm.Response{Text: "Try spot instances."}, nil
	})

	stdout, stderr, err := run(t, load, "How do I save?\n\nAnd batch jobs?\nexit\nignored\n", "chat", "--domain", "GCP")
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(stdout, "compass> Try spot instances."))
	assert.Contains(t, stderr, "you> ")
	assert.Equal(t, 2, p)
}

func TestRegistryCmd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "activity-registry.json")

	_, stderr, err := run(t, nil, "", "registry", "export", "--out", path)
	require.NoError(t, err)
	assert.Contains(t, stderr, "wrote 7 activities")

	stdout, _, err := run(t, nil, "", "registry", "validate", path)
	require.NoError(t, err)
	assert.Contains(t, stdout, "7 activities OK")

	require.NoError(t, os.WriteFile(path, []byte(`{"version":"1","activities":[{"id":"a","taskType":"chat-turn"}]}`), 0o600))
	_, _, err = run(t, nil, "", "registry", "validate", path)
	assert.ErrorContains(t, err, "missing activity")
}

// internal/workers/cost-analysis/research-agent/handler_test.go
package researchagent

import (
	"context"
	stderrors "errors"
	"sync"
	"testing"
	"time"

	"costli-agents/internal/common/errors"
	"costli-agents/internal/common/logger"
	"costli-agents/internal/llm"
	"costli-agents/internal/llm/llmtest"
	"costli-agents/internal/models"
	"costli-agents/internal/search"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pricingTask = models.ResearchTask{
	AgentRole:       "Pricing Analyst",
	TaskDescription: "Price EC2 m5 instances",
	SearchQueries:   []string{"ec2 m5 pricing", "ec2 savings plans"},
}

type recordingSearcher struct {
	mu      sync.Mutex
	queries []string
	results map[string][]models.SearchResult
}

func (r *recordingSearcher) Search(_ context.Context, query string, max int) []models.SearchResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.queries = append(r.queries, query)
	res := r.results[query]
	if len(res) > max {
		res = res[:max]
	}
	return res
}

func newTestHandler(t *testing.T, p llm.Provider, s search.Searcher, rounds int) *Handler {
	return NewHandler(&Config{
		Timeout:       5 * time.Second,
		MaxRounds:     rounds,
		SearchResults: 5,
		Profile:       llm.Profile{Model: "test-model", MaxTokens: 1000},
	}, p, s, logger.NewTestLogger(t))
}

func searchCall(id, query string) llm.ToolCall {
	return llm.ToolCall{ID: id, Name: "web_search", Arguments: `{"query":"` + query + `"}`}
}

func TestResearch_ToolLoop(t *testing.T) {
	searcher := &recordingSearcher{results: map[string][]models.SearchResult{
		"ec2 m5 pricing": {
			{Title: "EC2 pricing", URL: "https://aws.example/ec2", Snippet: "m5.large $0.096/h"},
			{Title: "Spot", URL: "https://aws.example/spot", Snippet: "up to 90% off"},
		},
		"savings plans": {
			{Title: "EC2 pricing again", URL: "https://aws.example/ec2", Snippet: "dup"},
		},
	}}
	fake := llmtest.New(
		llmtest.Calls(searchCall("c1", "ec2 m5 pricing"), searchCall("c2", "nothing here")),
		llmtest.Calls(searchCall("c3", "savings plans")),
		llmtest.Text("m5.large costs $0.096/h; Savings Plans save up to 72%."),
	)
	h := newTestHandler(t, fake, searcher, 6)

	res, rounds := h.research(context.Background(), pricingTask, models.DomainAWS)
	require.Equal(t, models.StatusSuccess, res.Status)
	assert.Equal(t, 3, rounds)
	assert.Equal(t, "Pricing Analyst", res.Value.AgentRole)
	assert.Contains(t, res.Value.Findings, "$0.096/h")
	assert.Equal(t, []string{"https://aws.example/ec2", "https://aws.example/spot"}, res.Value.Sources)
	assert.Equal(t, []string{"ec2 m5 pricing", "nothing here", "savings plans"}, searcher.queries)

	reqs := fake.Requests()
	require.Len(t, reqs, 3)
	assert.Equal(t, []llm.Tool{llm.WebSearchTool}, reqs[0].Tools)
	assert.Equal(t, "Research task: Price EC2 m5 instances\n\nSuggested search queries: ec2 m5 pricing, ec2 savings plans", reqs[0].Messages[1].Content)
	assert.Contains(t, reqs[0].Messages[0].Content, "You are a Pricing Analyst, a specialized cloud cost research agent for AWS.")

	// system, user, assistant(c1,c2), tool c1, tool c2
	second := reqs[1].Messages
	require.Len(t, second, 5)
	assert.Equal(t, llm.RoleAssistant, second[2].Role)
	assert.Len(t, second[2].ToolCalls, 2)
	assert.Equal(t, llm.RoleTool, second[3].Role)
	assert.Equal(t, "c1", second[3].ToolCallID)
	assert.Equal(t, "[1] EC2 pricing\n    URL: https://aws.example/ec2\n    m5.large $0.096/h\n\n[2] Spot\n    URL: https://aws.example/spot\n    up to 90% off", second[3].Content)
	assert.Equal(t, "c2", second[4].ToolCallID)
	assert.Equal(t, "No results found for this query.", second[4].Content)
}

func TestResearch_BadToolCalls(t *testing.T) {
	fake := llmtest.New(
		llmtest.Calls(
			llm.ToolCall{ID: "c1", Name: "web_search", Arguments: `{not json`},
			llm.ToolCall{ID: "c2", Name: "run_shell", Arguments: `{}`},
		),
		llmtest.Text(""),
	)
	searcher := &recordingSearcher{}
	h := newTestHandler(t, fake, searcher, 6)

	res := h.Research(context.Background(), pricingTask, models.DomainAWS)
	require.Equal(t, models.StatusSuccess, res.Status)
	assert.Equal(t, "No findings generated.", res.Value.Findings)
	assert.Empty(t, res.Value.Sources)
	assert.Empty(t, searcher.queries)

	msgs := fake.Requests()[1].Messages
	require.Len(t, msgs, 5)
	assert.Contains(t, msgs[3].Content, "Invalid search arguments: ")
	assert.Equal(t, "Unknown tool: run_shell", msgs[4].Content)
}

func TestResearch_BudgetExhausted(t *testing.T) {
	searcher := &recordingSearcher{results: map[string][]models.SearchResult{
		"q": {{Title: "t", URL: "https://x", Snippet: "s"}},
	}}
	fake := llmtest.New(
		llmtest.Calls(searchCall("c1", "q")),
		llmtest.Calls(searchCall("c2", "q")),
		llmtest.Text(""),
	)
	h := newTestHandler(t, fake, searcher, 2)

	res, rounds := h.research(context.Background(), pricingTask, models.DomainAWS)
	require.Equal(t, models.StatusSuccess, res.Status)
	assert.Equal(t, 3, rounds)
	assert.Equal(t, "Research completed.", res.Value.Findings)
	assert.Equal(t, []string{"https://x"}, res.Value.Sources)

	reqs := fake.Requests()
	require.Len(t, reqs, 3)
	assert.Empty(t, reqs[2].Tools, "final call is made without tools")
}

func TestResearch_LoopOutcomes(t *testing.T) {
	overlapping := &recordingSearcher{results: map[string][]models.SearchResult{
		"q1": {{Title: "a", URL: "https://a"}, {Title: "b", URL: "https://b"}},
		"q2": {{Title: "b", URL: "https://b"}, {Title: "c", URL: "https://c"}},
		"q3": {{Title: "c", URL: "https://c"}, {Title: "a", URL: "https://a"}, {Title: "d", URL: "https://d"}},
	}}
	empty := search.SearcherFunc(func(context.Context, string, int) []models.SearchResult { return nil })

	tests := map[string]struct {
		searcher     search.Searcher
		steps        []llmtest.Step
		maxRounds    int
		wantRounds   int
		wantCalls    int
		wantFindings string
		wantSources  []string
	}{
		"three tool rounds then text": {
			searcher: overlapping,
			steps: []llmtest.Step{
				llmtest.Calls(searchCall("c1", "q1")),
				llmtest.Calls(searchCall("c2", "q2")),
				llmtest.Calls(searchCall("c3", "q3")),
				llmtest.Text("Reserved capacity is cheapest."),
			},
			maxRounds:    6,
			wantRounds:   4,
			wantCalls:    4,
			wantFindings: "Reserved capacity is cheapest.",
			wantSources:  []string{"https://a", "https://b", "https://c", "https://d"},
		},
		"empty search until budget runs out": {
			searcher: empty,
			steps: []llmtest.Step{
				llmtest.Calls(searchCall("c1", "q1")),
				llmtest.Calls(searchCall("c2", "q2")),
				llmtest.Calls(searchCall("c3", "q3")),
				llmtest.Text(""),
			},
			maxRounds:    3,
			wantRounds:   4,
			wantCalls:    4,
			wantFindings: "Research completed.",
			wantSources:  []string{},
		},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			fake := llmtest.New(tt.steps...)
			h := newTestHandler(t, fake, tt.searcher, tt.maxRounds)

			res, rounds := h.research(context.Background(), pricingTask, models.DomainAWS)
			require.Equal(t, models.StatusSuccess, res.Status)
			assert.Equal(t, tt.wantRounds, rounds)
			assert.LessOrEqual(t, fake.Calls(), tt.maxRounds+1)
			assert.Equal(t, tt.wantCalls, fake.Calls())
			assert.NotEmpty(t, res.Value.Findings)
			assert.Equal(t, tt.wantFindings, res.Value.Findings)
			assert.Equal(t, tt.wantSources, res.Value.Sources)
		})
	}
}

func TestResearch_CompletionFailure(t *testing.T) {
	searcher := &recordingSearcher{results: map[string][]models.SearchResult{
		"q": {{Title: "t", URL: "https://x", Snippet: "s"}},
	}}
	fake := llmtest.New(
		llmtest.Calls(searchCall("c1", "q")),
		llmtest.Fail(&llm.TransportError{Provider: "fake", Err: context.DeadlineExceeded}),
	)
	h := newTestHandler(t, fake, searcher, 6)

	res := h.Research(context.Background(), pricingTask, models.DomainAWS)
	assert.Equal(t, models.StatusDegraded, res.Status)
	assert.True(t, res.OK())
	assert.Equal(t, "Pricing Analyst", res.Value.AgentRole)
	assert.Contains(t, res.Value.Findings, "Error during research: ")
	assert.NotNil(t, res.Value.Sources)
	assert.Empty(t, res.Value.Sources)
	assert.ErrorIs(t, res.Err, context.DeadlineExceeded)
}

func TestFormatResults(t *testing.T) {
	assert.Equal(t, "No results found for this query.", FormatResults(nil))
	assert.Equal(t, "[1] a\n    URL: u\n    s", FormatResults([]models.SearchResult{{Title: "a", URL: "u", Snippet: "s"}}))
}

func TestExecute(t *testing.T) {
	t.Run("degraded output", func(t *testing.T) {
		h := newTestHandler(t, llmtest.New(llmtest.Fail(stderrors.New("down"))), &recordingSearcher{}, 6)
		out, err := h.Execute(context.Background(), &Input{Task: pricingTask, Domain: "aws"})
		require.NoError(t, err)
		assert.Equal(t, models.StatusDegraded, out.Status)
		assert.Equal(t, "down", out.Reason)
		assert.Equal(t, 0, out.Rounds)
	})

	t.Run("success output", func(t *testing.T) {
		h := newTestHandler(t, llmtest.New(llmtest.Text("done")), &recordingSearcher{}, 6)
		out, err := h.Execute(context.Background(), &Input{Task: pricingTask, Domain: "AWS"})
		require.NoError(t, err)
		assert.Equal(t, models.StatusSuccess, out.Status)
		assert.Equal(t, "done", out.Finding.Findings)
	})

	invalid := map[string]Input{
		"unknown domain": {Task: pricingTask, Domain: "ibm"},
		"empty task":     {Task: models.ResearchTask{AgentRole: "x"}, Domain: "aws"},
	}
	for name, input := range invalid {
		input := input
		t.Run(name, func(t *testing.T) {
			h := newTestHandler(t, llmtest.New(), &recordingSearcher{}, 6)
			_, err := h.Execute(context.Background(), &input)

			var se *errors.StandardError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, errors.ErrCodeInvalidInput, se.Code)
		})
	}
}

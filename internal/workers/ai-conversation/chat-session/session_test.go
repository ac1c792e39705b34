// internal/workers/ai-conversation/chat-session/session_test.go
package chatsession

import (
	"context"
	stderrors "errors"
	"fmt"
	"testing"

	"costli-agents/internal/common/logger"
	"costli-agents/internal/llm"
	"costli-agents/internal/llm/llmtest"
	"costli-agents/internal/models"
	"costli-agents/internal/search"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noSearch() search.Searcher {
	return search.SearcherFunc(func(context.Context, string, int) []models.SearchResult { return nil })
}

func newTestSession(t *testing.T, p llm.Provider, s search.Searcher) *Session {
	return NewSession(models.DomainAzure, p, s, SessionConfig{
		HistoryTurns:  20,
		SearchResults: 3,
		Profile:       llm.Profile{Model: "fast-model", Temperature: 0.4, MaxTokens: 2048},
	}, logger.NewTestLogger(t))
}

func TestNewSession_SeedsPersona(t *testing.T) {
	s := newTestSession(t, llmtest.New(), noSearch())
	h := s.History()
	require.Len(t, h, 1)
	assert.Equal(t, llm.RoleSystem, h[0].Role)
	assert.Contains(t, h[0].Content, "You are 'Cost Compass', a senior cloud cost optimization consultant for Azure.")
	assert.Contains(t, h[0].Content, "`code` for CLI commands")
	assert.NotEmpty(t, s.ID)
	assert.Empty(t, s.Transcript())
}

func TestSendTurn_PlainReply(t *testing.T) {
	fake := llmtest.New(llmtest.Text("Use **Reserved VM Instances**."))
	s := newTestSession(t, fake, noSearch())

	reply := s.SendTurn(context.Background(), "How do I cut VM costs?")
	assert.Equal(t, "Use **Reserved VM Instances**.", reply)

	tr := s.Transcript()
	require.Len(t, tr, 2)
	assert.Equal(t, models.ChatRoleUser, tr[0].Role)
	assert.Equal(t, models.ChatRoleModel, tr[1].Role)
	assert.Len(t, s.History(), 3)
	assert.Equal(t, []llm.Tool{llm.WebSearchTool}, fake.Requests()[0].Tools)
}

func TestSendTurn_ToolExchangeStaysOutOfHistory(t *testing.T) {
	var query string
	var max int
	searcher := search.SearcherFunc(func(_ context.Context, q string, n int) []models.SearchResult {
		query, max = q, n
		return []models.SearchResult{
			{Title: "Reserved pricing", URL: "https://a", Snippet: "up to 72%"},
			{Title: "Spot", URL: "https://b", Snippet: "up to 90%"},
		}
	})
	fake := llmtest.New(
		llmtest.Calls(
			llm.ToolCall{ID: "c1", Name: "web_search", Arguments: `{"query":"azure reserved vm pricing"}`},
			llm.ToolCall{ID: "c2", Name: "calculator", Arguments: `{}`},
		),
		llmtest.Text("Reserved instances save up to 72%."),
	)
	s := newTestSession(t, fake, searcher)

	reply := s.SendTurn(context.Background(), "Reserved or spot?")
	assert.Equal(t, "Reserved instances save up to 72%.", reply)
	assert.Equal(t, "azure reserved vm pricing", query)
	assert.Equal(t, 3, max)

	reqs := fake.Requests()
	require.Len(t, reqs, 2)
	scratch := reqs[1].Messages
	require.Len(t, scratch, 5)
	assert.Equal(t, "[1] Reserved pricing: up to 72%\n[2] Spot: up to 90%", scratch[3].Content)
	assert.Equal(t, "Unknown tool: calculator", scratch[4].Content)
	assert.Empty(t, reqs[1].Tools)

	h := s.History()
	require.Len(t, h, 3)
	for _, m := range h {
		assert.NotEqual(t, llm.RoleTool, m.Role)
		assert.Empty(t, m.ToolCalls)
	}
}

func TestSendTurn_NoSearchResults(t *testing.T) {
	fake := llmtest.New(
		llmtest.Calls(llm.ToolCall{ID: "c1", Name: "web_search", Arguments: `{"query":"x"}`}),
		llmtest.Text("ok"),
	)
	s := newTestSession(t, fake, noSearch())
	s.SendTurn(context.Background(), "hi")
	assert.Equal(t, "No results found.", fake.Requests()[1].Messages[3].Content)
}

func TestSendTurn_Failure(t *testing.T) {
	tests := map[string][]llmtest.Step{
		"first call": {llmtest.Fail(stderrors.New("down"))},
		"follow-up call": {
			llmtest.Calls(llm.ToolCall{ID: "c1", Name: "web_search", Arguments: `{"query":"x"}`}),
			llmtest.Fail(stderrors.New("down")),
		},
	}
	for name, steps := range tests {
		t.Run(name, func(t *testing.T) {
			s := newTestSession(t, llmtest.New(steps...), noSearch())

			reply := s.SendTurn(context.Background(), "hello?")
			assert.Equal(t, "I'm having trouble connecting. Please try again.", reply)

			h := s.History()
			require.Len(t, h, 2, "user message stays, no assistant entry")
			assert.Equal(t, llm.RoleUser, h[1].Role)

			tr := s.Transcript()
			require.Len(t, tr, 2)
			assert.Equal(t, reply, tr[1].Text)
		})
	}
}

func TestSendTurn_EmptyReply(t *testing.T) {
	s := newTestSession(t, llmtest.New(llmtest.Text("  ")), noSearch())
	assert.Equal(t, "I couldn't process that. Could you rephrase?", s.SendTurn(context.Background(), "?"))
}

func TestSendTurn_HistoryIsBounded(t *testing.T) {
	fake := llmtest.New()
	n := 0
	fake.Respond = func(context.Context, *llm.Request) (*llm.Response, error) {
		n++
		return &llm.Response{Text: fmt.Sprintf("answer %d", n)}, nil
	}
	s := newTestSession(t, fake, noSearch())

	for i := 1; i <= 15; i++ {
		s.SendTurn(context.Background(), fmt.Sprintf("question %d", i))
	}

	h := s.History()
	require.Len(t, h, 21)
	assert.Equal(t, llm.RoleSystem, h[0].Role)
	assert.Equal(t, "question 6", h[1].Content)
	assert.Equal(t, "answer 15", h[20].Content)
	assert.Len(t, s.Transcript(), 30)

	for _, req := range fake.Requests() {
		assert.LessOrEqual(t, len(req.Messages), 21)
	}
}

// internal/workers/ai-conversation/chat-session/session.go
package chatsession

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"costli-agents/internal/common/logger"
	"costli-agents/internal/llm"
	"costli-agents/internal/models"
	"costli-agents/internal/search"

	"github.com/google/uuid"
)

const (
	replyEmpty   = "I couldn't process that. Could you rephrase?"
	replyFailure = "I'm having trouble connecting. Please try again."
	noResults    = "No results found."
)

func persona(d models.Domain) string {
	return fmt.Sprintf(`You are 'Cost Compass', a senior cloud cost optimization consultant for %[1]s.

YOUR EXPERTISE:
- Deep knowledge of %[1]s pricing models, discount programs, and cost tools.
- Specific instance types, storage classes, tiers, and architecture patterns with real pricing.
- Reserved instances, savings plans, committed use discounts, spot/preemptible pricing.

BEHAVIOR:
- ALWAYS reference SPECIFIC %[1]s service names and features, never generic advice.
- Include estimated savings percentages or dollar ranges when discussing costs.
- Ask clarifying questions to give better advice (workload patterns, regions, current spend).
- Use Markdown: **bold**, lists, `+"`code`"+` for CLI commands.
- Be concise, technically precise, and actionable.`, d)
}

// Session is one conversation. It is not safe for concurrent use; Manager
// serializes access.
type Session struct {
	ID     string
	Domain models.Domain

	provider llm.Provider
	searcher search.Searcher
	config   SessionConfig
	logger   logger.Logger

	history    []llm.Message
	transcript []models.ChatTurn
}

func NewSession(domain models.Domain, provider llm.Provider, searcher search.Searcher, config SessionConfig, log logger.Logger) *Session {
	if config.HistoryTurns <= 0 {
		config.HistoryTurns = 20
	}
	if config.SearchResults <= 0 {
		config.SearchResults = 3
	}
	id := uuid.NewString()
	return &Session{
		ID:       id,
		Domain:   domain,
		provider: provider,
		searcher: searcher,
		config:   config,
		logger:   log.With(map[string]interface{}{"sessionId": id}),
		history:  []llm.Message{llm.System(persona(domain))},
	}
}

// SendTurn answers one user message. It never fails: on error the reply is
// an apology, recorded in the transcript but not in the model history.
func (s *Session) SendTurn(ctx context.Context, text string) string {
	s.history = append(s.history, llm.User(text))
	s.transcript = append(s.transcript, models.NewChatTurn(models.ChatRoleUser, text))
	s.trim()

	reply, err := s.complete(ctx)
	if err != nil {
		s.logger.Warn("chat turn failed", map[string]interface{}{"error": err.Error()})
		s.transcript = append(s.transcript, models.NewChatTurn(models.ChatRoleModel, replyFailure))
		return replyFailure
	}

	if strings.TrimSpace(reply) == "" {
		reply = replyEmpty
	}
	s.history = append(s.history, llm.Assistant(reply))
	s.transcript = append(s.transcript, models.NewChatTurn(models.ChatRoleModel, reply))
	s.trim()
	return reply
}

// complete runs the tooled call and, if tools were requested, one untooled
// follow-up over a turn-local transcript.
func (s *Session) complete(ctx context.Context) (string, error) {
	resp, err := s.provider.Complete(ctx, &llm.Request{
		Messages: s.history,
		Profile:  s.config.Profile,
		Tools:    []llm.Tool{llm.WebSearchTool},
	})
	if err != nil {
		return "", err
	}
	if !resp.WantsTools() {
		return resp.Text, nil
	}

	scratch := make([]llm.Message, 0, len(s.history)+1+len(resp.ToolCalls))
	scratch = append(scratch, s.history...)
	scratch = append(scratch, llm.AssistantToolCalls(resp.Text, resp.ToolCalls))
	for _, call := range resp.ToolCalls {
		scratch = append(scratch, llm.ToolResult(call.ID, call.Name, s.runTool(ctx, call)))
	}

	final, err := s.provider.Complete(ctx, &llm.Request{
		Messages: scratch,
		Profile:  s.config.Profile,
	})
	if err != nil {
		return "", err
	}
	return final.Text, nil
}

func (s *Session) runTool(ctx context.Context, call llm.ToolCall) string {
	if call.Name != llm.WebSearchTool.Name {
		return "Unknown tool: " + call.Name
	}
	var args struct {
		Query string `json:"query"`
	}
	if err := json.Unmarshal([]byte(call.Arguments), &args); err != nil {
		return fmt.Sprintf("Invalid search arguments: %v", err)
	}

	results := s.searcher.Search(ctx, args.Query, s.config.SearchResults)
	if len(results) == 0 {
		return noResults
	}
	lines := make([]string, len(results))
	for i, r := range results {
		lines[i] = fmt.Sprintf("[%d] %s: %s", i+1, r.Title, r.Snippet)
	}
	return strings.Join(lines, "\n")
}

// trim keeps the system instruction plus the newest HistoryTurns messages.
func (s *Session) trim() {
	limit := s.config.HistoryTurns + 1
	if len(s.history) <= limit {
		return
	}
	kept := make([]llm.Message, 0, limit)
	kept = append(kept, s.history[0])
	kept = append(kept, s.history[len(s.history)-s.config.HistoryTurns:]...)
	s.history = kept
}

// Transcript returns a copy of the visible turns.
func (s *Session) Transcript() []models.ChatTurn {
	out := make([]models.ChatTurn, len(s.transcript))
	copy(out, s.transcript)
	return out
}

// History returns a copy of what is sent to the model.
func (s *Session) History() []llm.Message {
	out := make([]llm.Message, len(s.history))
	copy(out, s.history)
	return out
}

// internal/workers/cost-analysis/analyze-scenario/models.go
package analyzescenario

import (
	"context"

	"costli-agents/internal/models"
)

type Input struct {
	Scenario  string `json:"scenario"`
	Domain    string `json:"domain"`
	RequestID string `json:"requestId,omitempty"`
}

type Output struct {
	RequestID string        `json:"requestId"`
	Tiles     []models.Tile `json:"tiles"`
	Audit     Audit         `json:"audit"`
}

const (
	RunSuccess  = "success"
	RunFallback = "fallback"
)

// Fallback reasons.
const (
	ReasonLLMNotConfigured = "llm_not_configured"
	ReasonInvalidInput     = "invalid_input"
	ReasonSynthesisFailed  = "synthesis_failed"
	ReasonDeadline         = "deadline_exceeded"
	ReasonPanic            = "panic"
	ReasonPipelineError    = "pipeline_error"
)

type Audit struct {
	Status string       `json:"status"`
	Reason string       `json:"reason,omitempty"`
	Stages []StageAudit `json:"stages"`
}

type StageAudit struct {
	Stage  string             `json:"stage"`
	Status models.StageStatus `json:"status"`
	Reason string             `json:"reason,omitempty"`
}

func stageAudit[T any](name string, r models.Result[T]) StageAudit {
	a := StageAudit{Stage: name, Status: r.Status}
	if r.Err != nil {
		a.Reason = r.Err.Error()
	}
	return a
}

type Decomposer interface {
	Decompose(ctx context.Context, scenario string, domain models.Domain) models.Result[[]models.ResearchTask]
}

type Researcher interface {
	Research(ctx context.Context, task models.ResearchTask, domain models.Domain) models.Result[models.AgentFinding]
}

type Synthesizer interface {
	Synthesize(ctx context.Context, findings []models.AgentFinding, scenario string, domain models.Domain) models.Result[[]models.Tile]
}

// Stages are the three pipeline steps, normally the handlers of the
// decompose-scenario, research-agent and synthesize-insights workers.
type Stages struct {
	Decomposer  Decomposer
	Researcher  Researcher
	Synthesizer Synthesizer
}

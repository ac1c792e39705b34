// internal/workers/cost-analysis/generate-action-plan/handler.go
package generateactionplan

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"costli-agents/internal/common/camunda"
	"costli-agents/internal/common/errors"
	"costli-agents/internal/common/logger"
	"costli-agents/internal/common/metrics"
	"costli-agents/internal/common/observability"
	"costli-agents/internal/llm"
	"costli-agents/internal/models"
	"costli-agents/internal/search"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"go.opentelemetry.io/otel/attribute"
)

const (
	TaskType = "generate-action-plan"
	stage    = "plan"
)

type Handler struct {
	config   *Config
	provider llm.Provider
	searcher search.Searcher
	logger   logger.Logger
}

func NewHandler(config *Config, provider llm.Provider, searcher search.Searcher, log logger.Logger) *Handler {
	return &Handler{
		config:   config,
		provider: provider,
		searcher: searcher,
		logger: log.With(map[string]interface{}{
			"taskType": TaskType,
		}),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		camunda.FailJob(ctx, client, job, TaskType, errors.NewInvalidInputError(fmt.Sprintf("parse input: %v", err)), h.logger)
		return
	}

	output, err := h.Execute(ctx, &input)
	if err != nil {
		camunda.FailJob(ctx, client, job, TaskType, err, h.logger)
		return
	}

	camunda.CompleteJob(ctx, client, job, TaskType, output, h.logger)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	domain, err := models.ParseDomain(input.Domain)
	if err != nil {
		return nil, errors.NewInvalidInputError(err.Error())
	}
	headline := strings.TrimSpace(input.Headline)
	if headline == "" {
		return nil, errors.NewInvalidInputError("headline is required")
	}

	steps, err := h.plan(ctx, headline, input.Rationale, domain)
	if err != nil {
		h.logger.Warn("action plan fell back to manual review", map[string]interface{}{
			"headline": headline,
			"error":    err.Error(),
		})
		metrics.StageStatus.WithLabelValues(stage, string(models.StatusDegraded)).Inc()
		return &Output{Steps: ManualReview(headline, domain), Status: "fallback"}, nil
	}
	metrics.StageStatus.WithLabelValues(stage, string(models.StatusSuccess)).Inc()
	return &Output{Steps: steps, Status: string(models.StatusSuccess)}, nil
}

// PlanFor returns implementation steps for one tile. The list is never
// empty.
func (h *Handler) PlanFor(ctx context.Context, headline, rationale string, domain models.Domain) []models.Step {
	steps, err := h.plan(ctx, headline, rationale, domain)
	if err != nil {
		h.logger.Warn("action plan fell back to manual review", map[string]interface{}{
			"headline": headline,
			"error":    err.Error(),
		})
		return ManualReview(headline, domain)
	}
	return steps
}

func (h *Handler) plan(ctx context.Context, headline, rationale string, domain models.Domain) ([]models.Step, error) {
	ctx, span := observability.StartSpan(ctx, "stage.plan", attribute.String("domain", string(domain)))
	defer span.End()

	research := h.searcher.Search(ctx, searchQuery(headline, domain), h.config.SearchResults)

	resp, err := h.provider.Complete(ctx, &llm.Request{
		Messages: []llm.Message{
			llm.System(systemPrompt(domain)),
			llm.User(userPrompt(headline, rationale, research)),
		},
		Profile: h.config.Profile,
		Schema:  &llm.OutputSchema{Name: "action_plan", Schema: OutputSchema, Strict: true},
	})
	if err != nil {
		return nil, err
	}

	steps, err := ParseSteps(resp.Text)
	if err != nil {
		return nil, &llm.ParseError{Provider: h.provider.Name(), Reason: "parse steps", Err: err}
	}
	if len(steps) == 0 {
		return nil, fmt.Errorf("model returned no steps")
	}
	return steps, nil
}

// internal/workers/cost-analysis/decompose-scenario/handler.go
package decomposescenario

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
	"costli-agents/internal/common/validation"
	"costli-agents/internal/llm"
	"costli-agents/internal/models"
	"costli-agents/internal/prompt"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"go.opentelemetry.io/otel/attribute"
)

const (
	TaskType = "decompose-scenario"
	stage    = "decompose"
)

type Handler struct {
	config    *Config
	provider  llm.Provider
	validator *validation.Validator
	logger    logger.Logger
}

func NewHandler(config *Config, provider llm.Provider, log logger.Logger) *Handler {
	return &Handler{
		config:    config,
		provider:  provider,
		validator: validation.NewValidator(OutputSchema),
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

// Execute validates the job input and always yields three tasks. Only bad
// input is reported as an error.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	domain, err := models.ParseDomain(input.Domain)
	if err != nil {
		return nil, errors.NewInvalidInputError(err.Error())
	}
	scenario := prompt.Sanitize(input.Scenario, h.config.ScenarioChars)
	if scenario == "" {
		return nil, errors.NewInvalidInputError("scenario is required")
	}

	res := h.Decompose(ctx, scenario, domain)
	out := &Output{Tasks: res.Value, Status: res.Status}
	if res.Err != nil {
		out.Reason = res.Err.Error()
	}
	return out, nil
}

// Decompose asks the model for research tasks. The scenario is expected to
// be sanitized already. Any failure yields DefaultTasks with a degraded
// status.
func (h *Handler) Decompose(ctx context.Context, scenario string, domain models.Domain) models.Result[[]models.ResearchTask] {
	ctx, span := observability.StartSpan(ctx, "stage.decompose", attribute.String("domain", string(domain)))
	defer span.End()

	tasks, err := h.plan(ctx, scenario, domain)
	if err != nil {
		h.logger.Warn("decomposition degraded, using default tasks", map[string]interface{}{
			"domain": string(domain),
			"error":  err.Error(),
		})
		metrics.StageStatus.WithLabelValues(stage, string(models.StatusDegraded)).Inc()
		return models.Degraded(DefaultTasks(domain), errors.NewDecompositionDegradedError(err.Error()))
	}

	h.logger.Info("scenario decomposed", map[string]interface{}{
		"domain": string(domain),
		"tasks":  len(tasks),
	})
	metrics.StageStatus.WithLabelValues(stage, string(models.StatusSuccess)).Inc()
	return models.Success(tasks)
}

func (h *Handler) plan(ctx context.Context, scenario string, domain models.Domain) ([]models.ResearchTask, error) {
	resp, err := h.provider.Complete(ctx, &llm.Request{
		Messages: []llm.Message{
			llm.System(systemPrompt(domain)),
			llm.User(userPrompt(scenario, domain)),
		},
		Profile: h.config.Profile,
		Schema:  &llm.OutputSchema{Name: "research_plan", Schema: OutputSchema, Strict: true},
	})
	if err != nil {
		return nil, err
	}

	raw := llm.ExtractJSON(resp.Text)
	result, err := h.validator.ValidateBytes([]byte(raw))
	if err != nil {
		return nil, &llm.ParseError{Provider: h.provider.Name(), Reason: "decode plan", Err: err}
	}
	if !result.Valid {
		return nil, &llm.ParseError{
			Provider: h.provider.Name(),
			Reason:   "plan does not match schema: " + strings.Join(result.GetErrorMessages(), "; "),
		}
	}

	var p plan
	if err := llm.Decode(raw, &p); err != nil {
		return nil, err
	}

	tasks := Filter(p.Tasks)
	if len(tasks) < models.TaskCount {
		return nil, fmt.Errorf("expected %d usable tasks, got %d", models.TaskCount, len(tasks))
	}
	return tasks, nil
}

// Filter drops tasks without a role or description, caps seed queries and
// keeps at most TaskCount tasks.
func Filter(in []models.ResearchTask) []models.ResearchTask {
	out := make([]models.ResearchTask, 0, models.TaskCount)
	for _, t := range in {
		if len(out) == models.TaskCount {
			break
		}
		t.AgentRole = strings.TrimSpace(t.AgentRole)
		t.TaskDescription = strings.TrimSpace(t.TaskDescription)
		if t.AgentRole == "" || t.TaskDescription == "" {
			continue
		}
		queries := make([]string, 0, maxSeedQueries)
		for _, q := range t.SearchQueries {
			if q = strings.TrimSpace(q); q != "" && len(queries) < maxSeedQueries {
				queries = append(queries, q)
			}
		}
		t.SearchQueries = queries
		out = append(out, t)
	}
	return out
}

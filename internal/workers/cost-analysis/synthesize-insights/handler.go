// internal/workers/cost-analysis/synthesize-insights/handler.go
package synthesizeinsights

import (
	"context"
	"encoding/json"
	"fmt"

	"costli-agents/internal/common/camunda"
	"costli-agents/internal/common/errors"
	"costli-agents/internal/common/logger"
	"costli-agents/internal/common/metrics"
	"costli-agents/internal/common/observability"
	"costli-agents/internal/llm"
	"costli-agents/internal/models"
	"costli-agents/internal/prompt"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	TaskType = "synthesize-insights"
	stage    = "synthesize"
)

type Handler struct {
	config   *Config
	provider llm.Provider
	logger   logger.Logger
}

func NewHandler(config *Config, provider llm.Provider, log logger.Logger) *Handler {
	return &Handler{
		config:   config,
		provider: provider,
		logger: log.With(map[string]interface{}{
			"taskType": TaskType,
		}),
	}
}

// Handle throws SYNTHESIS_FAILED as a BPMN error on failure so a process
// model can route to the fallback task.
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
	scenario := prompt.Sanitize(input.Scenario, h.config.ScenarioChars)
	if scenario == "" {
		return nil, errors.NewInvalidInputError("scenario is required")
	}

	res := h.Synthesize(ctx, input.Findings, scenario, domain)
	if !res.OK() {
		return nil, res.Err
	}
	return &Output{Tiles: res.Value}, nil
}

// Synthesize turns agent findings into exactly TileCount tiles or fails with
// SYNTHESIS_FAILED. It never substitutes fallback content.
func (h *Handler) Synthesize(ctx context.Context, findings []models.AgentFinding, scenario string, domain models.Domain) models.Result[[]models.Tile] {
	ctx, span := observability.StartSpan(ctx, "stage.synthesize",
		attribute.String("domain", string(domain)),
		attribute.Int("findings", len(findings)),
	)
	defer span.End()

	tiles, err := h.synthesize(ctx, findings, scenario, domain)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		h.logger.Error("synthesis failed", map[string]interface{}{
			"domain": string(domain),
			"error":  err.Error(),
		})
		metrics.StageStatus.WithLabelValues(stage, string(models.StatusFailed)).Inc()
		return models.Failed[[]models.Tile](errors.NewSynthesisFailedError(err.Error(), err))
	}

	metrics.StageStatus.WithLabelValues(stage, string(models.StatusSuccess)).Inc()
	return models.Success(tiles)
}

func (h *Handler) synthesize(ctx context.Context, findings []models.AgentFinding, scenario string, domain models.Domain) ([]models.Tile, error) {
	resp, err := h.provider.Complete(ctx, &llm.Request{
		Messages: []llm.Message{
			llm.System(systemPrompt(domain)),
			llm.User(BuildPrompt(findings, scenario, domain)),
		},
		Profile: h.config.Profile,
		Schema:  &llm.OutputSchema{Name: "insight_tiles", Schema: OutputSchema},
	})
	if err != nil {
		return nil, err
	}

	parsed, err := ParseTiles(resp.Text)
	if err != nil {
		return nil, &llm.ParseError{Provider: h.provider.Name(), Reason: "parse tiles", Err: err}
	}
	tiles := NormalizeTiles(parsed)
	if len(tiles) < models.TileCount {
		return nil, fmt.Errorf("expected %d tiles, got %d", models.TileCount, len(tiles))
	}
	return tiles, nil
}

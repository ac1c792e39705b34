// internal/workers/cost-analysis/fallback-insights/handler.go
package fallbackinsights

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"costli-agents/internal/common/camunda"
	"costli-agents/internal/common/errors"
	"costli-agents/internal/common/logger"
	"costli-agents/internal/common/metrics"
	"costli-agents/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "fallback-insights"
)

type Handler struct {
	config *Config
	logger logger.Logger
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	return &Handler{
		config: config,
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

// Execute serves the fallback set. Known aliases are normalized; any other
// non-empty provider name gets the generic set.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	name := strings.TrimSpace(input.Domain)
	if name == "" {
		return nil, errors.NewInvalidInputError("domain is required")
	}
	domain, err := models.ParseDomain(name)
	if err != nil {
		domain = models.Domain(name)
	}

	reason := input.Reason
	if reason == "" {
		reason = "requested"
	}
	metrics.PipelineFallbacks.WithLabelValues(reason).Inc()

	h.logger.Warn("serving fallback insights", map[string]interface{}{
		"domain":    string(domain),
		"reason":    reason,
		"requestId": input.RequestID,
	})

	return &Output{
		Tiles:  For(domain),
		Status: "fallback",
		Reason: reason,
	}, nil
}

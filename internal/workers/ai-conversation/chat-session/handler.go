// internal/workers/ai-conversation/chat-session/handler.go
package chatsession

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"

	"costli-agents/internal/common/camunda"
	"costli-agents/internal/common/errors"
	"costli-agents/internal/common/logger"
	"costli-agents/internal/models"
	"costli-agents/internal/prompt"
	analyzescenario "costli-agents/internal/workers/cost-analysis/analyze-scenario"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "chat-turn"
)

// Analyzer re-runs the pipeline over a follow-up scenario.
type Analyzer interface {
	Execute(ctx context.Context, input *analyzescenario.Input) (*analyzescenario.Output, error)
}

type Handler struct {
	config   *Config
	manager  *Manager
	analyzer Analyzer
	logger   logger.Logger
}

// NewHandler builds the chat-turn worker. analyzer may be nil, in which case
// reanalyze requests only get a reply.
func NewHandler(config *Config, manager *Manager, analyzer Analyzer, log logger.Logger) *Handler {
	return &Handler{
		config:   config,
		manager:  manager,
		analyzer: analyzer,
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
	message := strings.TrimSpace(input.Message)
	if message == "" {
		return nil, errors.NewInvalidInputError("message is required")
	}

	id := input.SessionID
	if id != "" {
		if s, ok := h.manager.Get(id); ok && s.Domain != domain {
			return nil, errors.NewInvalidInputError(fmt.Sprintf("session %s belongs to %s", id, s.Domain))
		}
	}

	reply, transcript, err := h.manager.Turn(ctx, id, message)
	if stderrors.Is(err, ErrSessionNotFound) {
		if id != "" {
			h.logger.Info("chat session expired, starting a new one", map[string]interface{}{"sessionId": id})
		}
		id = h.manager.Create(domain).ID
		reply, transcript, err = h.manager.Turn(ctx, id, message)
	}
	if err != nil {
		return nil, err
	}

	out := &Output{SessionID: id, Reply: reply, Transcript: transcript}
	if input.Reanalyze && h.analyzer != nil {
		scenario := prompt.FollowUpScenario(input.Scenario, message, reply, h.config.FollowUp)
		analysis, err := h.analyzer.Execute(ctx, &analyzescenario.Input{Scenario: scenario, Domain: string(domain)})
		if err != nil {
			return nil, err
		}
		out.Tiles = analysis.Tiles
		out.AnalysisStatus = analysis.Audit.Status
	}
	return out, nil
}

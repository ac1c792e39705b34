// internal/workers/cost-analysis/research-agent/handler.go
package researchagent

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
	TaskType = "research-agent"
	stage    = "research"
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
	if strings.TrimSpace(input.Task.AgentRole) == "" || strings.TrimSpace(input.Task.TaskDescription) == "" {
		return nil, errors.NewInvalidInputError("task.agentRole and task.taskDescription are required")
	}

	res, rounds := h.research(ctx, input.Task, domain)
	out := &Output{Finding: res.Value, Rounds: rounds, Status: res.Status}
	if res.Err != nil {
		out.Reason = res.Err.Error()
	}
	return out, nil
}

// Research runs one agent's tool loop to completion. It never fails: a
// completion error becomes a degraded finding describing the error.
func (h *Handler) Research(ctx context.Context, task models.ResearchTask, domain models.Domain) models.Result[models.AgentFinding] {
	res, _ := h.research(ctx, task, domain)
	return res
}

func (h *Handler) research(ctx context.Context, task models.ResearchTask, domain models.Domain) (models.Result[models.AgentFinding], int) {
	ctx, span := observability.StartSpan(ctx, "stage.research",
		attribute.String("agent.role", task.AgentRole),
		attribute.String("domain", string(domain)),
	)
	defer span.End()

	log := h.logger.With(map[string]interface{}{"agentRole": task.AgentRole})

	findings, sources, rounds, err := h.loop(ctx, task, domain, log)
	metrics.AgentRounds.Observe(float64(rounds))

	if err != nil {
		span.RecordError(err)
		log.Warn("research degraded", map[string]interface{}{
			"round": rounds,
			"error": err.Error(),
		})
		metrics.StageStatus.WithLabelValues(stage, string(models.StatusDegraded)).Inc()
		return models.Degraded(models.AgentFinding{
			AgentRole: task.AgentRole,
			Findings:  fmt.Sprintf("Error during research: %v", err),
			Sources:   []string{},
		}, err), rounds
	}

	log.Info("research finished", map[string]interface{}{
		"round":   rounds,
		"sources": len(sources),
	})
	metrics.StageStatus.WithLabelValues(stage, string(models.StatusSuccess)).Inc()
	return models.Success(models.AgentFinding{
		AgentRole: task.AgentRole,
		Findings:  findings,
		Sources:   sources,
	}), rounds
}

// loop returns the findings text, the sources consulted and the number of
// completion rounds that returned, counting the final text round.
func (h *Handler) loop(ctx context.Context, task models.ResearchTask, domain models.Domain, log logger.Logger) (string, []string, int, error) {
	transcript := []llm.Message{
		llm.System(systemPrompt(task, domain)),
		llm.User(userPrompt(task)),
	}
	var sources models.SourceSet

	for round := 0; round < h.config.MaxRounds; round++ {
		resp, err := h.provider.Complete(ctx, &llm.Request{
			Messages: transcript,
			Profile:  h.config.Profile,
			Tools:    []llm.Tool{llm.WebSearchTool},
		})
		if err != nil {
			return "", nil, round, err
		}

		if !resp.WantsTools() {
			text := strings.TrimSpace(resp.Text)
			if text == "" {
				text = noFindings
			}
			return text, sources.List(), round + 1, nil
		}

		transcript = append(transcript, llm.AssistantToolCalls(resp.Text, resp.ToolCalls))
		for _, call := range resp.ToolCalls {
			transcript = append(transcript, llm.ToolResult(call.ID, call.Name, h.runTool(ctx, call, &sources, log.With(map[string]interface{}{"round": round + 1}))))
		}
	}

	resp, err := h.provider.Complete(ctx, &llm.Request{
		Messages: transcript,
		Profile:  h.config.Profile,
	})
	if err != nil {
		return "", nil, h.config.MaxRounds, err
	}
	text := strings.TrimSpace(resp.Text)
	if text == "" {
		text = researchComplete
	}
	return text, sources.List(), h.config.MaxRounds + 1, nil
}

// runTool always returns a message body so every tool call id gets a reply.
func (h *Handler) runTool(ctx context.Context, call llm.ToolCall, sources *models.SourceSet, log logger.Logger) string {
	if call.Name != llm.WebSearchTool.Name {
		log.Warn("model requested unknown tool", map[string]interface{}{"tool": call.Name})
		return "Unknown tool: " + call.Name
	}

	var args searchArgs
	if err := json.Unmarshal([]byte(call.Arguments), &args); err != nil {
		return fmt.Sprintf("Invalid search arguments: %v", err)
	}

	results := h.searcher.Search(ctx, args.Query, h.config.SearchResults)
	for _, r := range results {
		sources.Add(r.URL)
	}
	log.Debug("web search", map[string]interface{}{
		"query":   args.Query,
		"results": len(results),
	})
	return FormatResults(results)
}

// internal/workers/cost-analysis/analyze-scenario/handler.go
package analyzescenario

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	commonaws "costli-agents/internal/common/aws"
	"costli-agents/internal/common/camunda"
	"costli-agents/internal/common/errors"
	"costli-agents/internal/common/logger"
	"costli-agents/internal/common/metrics"
	"costli-agents/internal/common/observability"
	"costli-agents/internal/models"
	"costli-agents/internal/prompt"
	fallback "costli-agents/internal/workers/cost-analysis/fallback-insights"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
	"github.com/sourcegraph/conc/iter"
	"go.opentelemetry.io/otel/attribute"
)

const (
	TaskType = "analyze-scenario"

	alertTimeout = 5 * time.Second
)

var errPanic = stderrors.New("pipeline panic")

type Handler struct {
	config    *Config
	stages    Stages
	alerter   commonaws.Alerter
	publisher Publisher
	obs       *observability.Observability
	logger    logger.Logger
}

// NewHandler wires the pipeline. alerter, publisher and obs may be nil.
func NewHandler(config *Config, stages Stages, alerter commonaws.Alerter, publisher Publisher, obs *observability.Observability, log logger.Logger) *Handler {
	if alerter == nil {
		alerter = commonaws.NoopAlerter{}
	}
	return &Handler{
		config:    config,
		stages:    stages,
		alerter:   alerter,
		publisher: publisher,
		obs:       obs,
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

// Execute rejects unusable input, then runs the pipeline. Progress goes to
// the log and, with a publisher configured, to redis.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	domain, err := models.ParseDomain(input.Domain)
	if err != nil {
		return nil, errors.NewInvalidInputError(err.Error())
	}
	if prompt.Sanitize(input.Scenario, h.config.ScenarioChars) == "" {
		return nil, errors.NewInvalidInputError("scenario is required")
	}

	requestID := input.RequestID
	if requestID == "" {
		requestID = uuid.NewString()
	}

	sinks := MultiProgress{LogProgress{Logger: h.logger.With(map[string]interface{}{"requestId": requestID})}}
	if h.publisher != nil && h.config.ProgressChannel != "" {
		sinks = append(sinks, RedisProgress{
			Publisher: h.publisher,
			Channel:   h.config.ProgressChannel,
			RequestID: requestID,
			Logger:    h.logger,
		})
	}

	tiles, audit := h.run(ctx, input.Scenario, domain, requestID, sinks)
	return &Output{RequestID: requestID, Tiles: tiles, Audit: audit}, nil
}

// Analyze always returns TileCount tiles, falling back to the canned set on
// any failure. sink may be nil.
func (h *Handler) Analyze(ctx context.Context, scenario string, domain models.Domain, sink ProgressSink) []models.Tile {
	tiles, _ := h.run(ctx, scenario, domain, uuid.NewString(), sink)
	return tiles
}

type outcome struct {
	tiles  []models.Tile
	stages []StageAudit
	err    error
}

func (h *Handler) run(ctx context.Context, scenario string, domain models.Domain, requestID string, sink ProgressSink) ([]models.Tile, Audit) {
	start := time.Now()
	progress := newGate(sink)
	log := h.logger.With(map[string]interface{}{
		"requestId": requestID,
		"domain":    string(domain),
	})

	ctx, span := observability.StartSpan(ctx, "pipeline.analyze",
		attribute.String("domain", string(domain)),
		attribute.String("request.id", requestID),
	)
	defer span.End()

	if !h.config.LLMConfigured {
		return h.fallback(ctx, progress, log, start, domain, requestID, ReasonLLMNotConfigured, nil, nil)
	}

	clean := prompt.Sanitize(scenario, h.config.ScenarioChars)
	if clean == "" {
		return h.fallback(ctx, progress, log, start, domain, requestID, ReasonInvalidInput, errors.NewInvalidInputError("scenario is empty"), nil)
	}

	runCtx := ctx
	if h.config.PipelineTimeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, h.config.PipelineTimeout)
		defer cancel()
	}

	done := make(chan outcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: fmt.Errorf("%w: %v", errPanic, r)}
			}
		}()
		done <- h.stagesFor(runCtx, clean, domain, progress, log)
	}()

	var out outcome
	select {
	case out = <-done:
	case <-runCtx.Done():
		out = outcome{err: errors.NewPipelineDeadlineError(h.config.PipelineTimeout)}
		if ctx.Err() != nil {
			out.err = ctx.Err()
		}
	}

	if out.err != nil {
		span.RecordError(out.err)
		return h.fallback(ctx, progress, log, start, domain, requestID, reasonFor(out.err), out.err, out.stages)
	}

	progress.finish(ctx, "")
	metrics.PipelineRuns.WithLabelValues(RunSuccess).Inc()
	metrics.PipelineDuration.Observe(time.Since(start).Seconds())
	h.obs.RecordPipeline(ctx, time.Since(start), RunSuccess)
	log.Info("analysis finished", map[string]interface{}{
		"durationMs": time.Since(start).Milliseconds(),
		"tiles":      len(out.tiles),
	})
	return out.tiles, Audit{Status: RunSuccess, Stages: out.stages}
}

func (h *Handler) stagesFor(ctx context.Context, scenario string, domain models.Domain, progress ProgressSink, log logger.Logger) outcome {
	var stages []StageAudit

	progress.Stage(ctx, LabelAnalyzing)
	plan := h.stages.Decomposer.Decompose(ctx, scenario, domain)
	stages = append(stages, stageAudit("decompose", plan))
	h.obs.RecordStage(ctx, "decompose", string(plan.Status))

	progress.Stage(ctx, LabelResearching)
	// Every agent starts at once; the iter default caps at GOMAXPROCS.
	fanout := iter.Mapper[models.ResearchTask, models.Result[models.AgentFinding]]{MaxGoroutines: len(plan.Value)}
	results := fanout.Map(plan.Value, func(task *models.ResearchTask) models.Result[models.AgentFinding] {
		return h.stages.Researcher.Research(ctx, *task, domain)
	})
	findings := make([]models.AgentFinding, len(results))
	for i, r := range results {
		findings[i] = r.Value
		stages = append(stages, stageAudit("research:"+plan.Value[i].AgentRole, r))
		h.obs.RecordStage(ctx, "research", string(r.Status))
	}
	log.Debug("research joined", map[string]interface{}{"agents": len(findings)})

	if err := ctx.Err(); err != nil {
		return outcome{stages: stages, err: err}
	}

	progress.Stage(ctx, LabelSynthesis)
	synth := h.stages.Synthesizer.Synthesize(ctx, findings, scenario, domain)
	stages = append(stages, stageAudit("synthesize", synth))
	h.obs.RecordStage(ctx, "synthesize", string(synth.Status))
	if !synth.OK() {
		err := synth.Err
		if err == nil {
			err = errors.NewSynthesisFailedError("", nil)
		}
		return outcome{stages: stages, err: err}
	}
	if len(synth.Value) != models.TileCount {
		return outcome{stages: stages, err: errors.NewSynthesisFailedError(fmt.Sprintf("got %d tiles", len(synth.Value)), nil)}
	}
	return outcome{tiles: synth.Value, stages: stages}
}

func (h *Handler) fallback(ctx context.Context, progress *gate, log logger.Logger, start time.Time, domain models.Domain, requestID, reason string, cause error, stages []StageAudit) ([]models.Tile, Audit) {
	progress.finish(ctx, LabelFallback)

	metrics.PipelineFallbacks.WithLabelValues(reason).Inc()
	metrics.PipelineRuns.WithLabelValues(RunFallback).Inc()
	metrics.PipelineDuration.Observe(time.Since(start).Seconds())
	h.obs.RecordPipeline(ctx, time.Since(start), RunFallback)

	detail := ""
	if cause != nil {
		detail = cause.Error()
	}
	log.Warn("serving fallback insights", map[string]interface{}{
		"reason": reason,
		"error":  detail,
	})

	alertCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), alertTimeout)
	defer cancel()
	if err := h.alerter.NotifyFallback(alertCtx, commonaws.FallbackAlert{
		RequestID: requestID,
		Domain:    string(domain),
		Reason:    reason,
		Detail:    detail,
		At:        time.Now().UTC(),
	}); err != nil {
		log.Error("fallback alert failed", map[string]interface{}{"error": err.Error()})
	}

	return fallback.For(domain), Audit{Status: RunFallback, Reason: reason, Stages: stages}
}

func reasonFor(err error) string {
	var se *errors.StandardError
	switch {
	case stderrors.Is(err, errPanic):
		return ReasonPanic
	case stderrors.As(err, &se) && se.Code == errors.ErrCodeSynthesisFailed:
		return ReasonSynthesisFailed
	case stderrors.Is(err, context.DeadlineExceeded), stderrors.Is(err, context.Canceled):
		return ReasonDeadline
	default:
		return ReasonPipelineError
	}
}

// internal/common/camunda/worker.go
package camunda

import (
	"context"
	"sync"
	"time"

	"costli-agents/internal/common/config"
	"costli-agents/internal/common/errors"
	"costli-agents/internal/common/logger"
	"costli-agents/internal/common/metrics"
	"costli-agents/internal/common/observability"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
)

type HandlerFunc func(client worker.JobClient, job entities.Job)

// WorkerGroup owns every job worker opened by the process.
type WorkerGroup struct {
	client zbc.Client
	logger logger.Logger
	obs    *observability.Observability

	mu      sync.Mutex
	workers map[string]worker.JobWorker
}

func NewWorkerGroup(client zbc.Client, log logger.Logger) *WorkerGroup {
	return &WorkerGroup{
		client:  client,
		logger:  log,
		workers: make(map[string]worker.JobWorker),
	}
}

// WithObservability also records every job on the otel meter.
func (g *WorkerGroup) WithObservability(obs *observability.Observability) *WorkerGroup {
	g.obs = obs
	return g
}

// Start opens a job worker for taskType unless the config disables it.
func (g *WorkerGroup) Start(taskType string, wcfg config.WorkerConfig, handler HandlerFunc) {
	if !wcfg.Enabled {
		g.logger.Info("worker disabled", map[string]interface{}{"taskType": taskType})
		return
	}

	jw := g.client.NewJobWorker().
		JobType(taskType).
		Handler(Instrument(taskType, handler, g.obs)).
		MaxJobsActive(wcfg.MaxJobsActive).
		Timeout(time.Duration(wcfg.Timeout) * time.Millisecond).
		Open()

	g.mu.Lock()
	g.workers[taskType] = jw
	g.mu.Unlock()

	g.logger.Info("worker started", map[string]interface{}{
		"taskType":      taskType,
		"maxJobsActive": wcfg.MaxJobsActive,
		"timeout_ms":    wcfg.Timeout,
	})
}

// TaskTypes lists the running workers.
func (g *WorkerGroup) TaskTypes() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]string, 0, len(g.workers))
	for t := range g.workers {
		out = append(out, t)
	}
	return out
}

// Stop closes the workers and waits for in-flight handlers.
func (g *WorkerGroup) Stop() {
	g.mu.Lock()
	defer g.mu.Unlock()
	for taskType, jw := range g.workers {
		g.logger.Info("stopping worker", map[string]interface{}{"taskType": taskType})
		jw.Close()
		jw.AwaitClose()
	}
	g.workers = map[string]worker.JobWorker{}
}

// Instrument records activity and duration around a handler. obs may be nil.
func Instrument(taskType string, handler HandlerFunc, obs *observability.Observability) worker.JobHandler {
	return func(client worker.JobClient, job entities.Job) {
		start := time.Now()
		metrics.WorkerJobsActive.WithLabelValues(taskType).Inc()
		defer func() {
			elapsed := time.Since(start)
			metrics.WorkerJobsActive.WithLabelValues(taskType).Dec()
			metrics.WorkerJobDuration.WithLabelValues(taskType).Observe(elapsed.Seconds())
			obs.RecordJobProcessed(context.Background(), taskType, "handled")
			obs.RecordJobDuration(context.Background(), taskType, elapsed, "handled")
		}()
		handler(client, job)
	}
}

// CompleteJob sends the complete command with vars as the job result.
func CompleteJob(ctx context.Context, client worker.JobClient, job entities.Job, taskType string, vars interface{}, log logger.Logger) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.GetKey()).
		VariablesFromObject(vars)
	if err != nil {
		log.Error("Failed to create complete job command", map[string]interface{}{
			"jobKey": job.GetKey(),
			"error":  err.Error(),
		})
		metrics.WorkerJobsFailed.WithLabelValues(taskType, "ENCODE_FAILED").Inc()
		return
	}

	if _, err := cmd.Send(ctx); err != nil {
		log.Error("Failed to send complete job command", map[string]interface{}{
			"jobKey": job.GetKey(),
			"error":  err.Error(),
		})
		return
	}

	metrics.WorkerJobsCompleted.WithLabelValues(taskType).Inc()
}

// FailJob classifies err and either fails the job with retries or throws a
// BPMN error the process model can catch.
func FailJob(ctx context.Context, client worker.JobClient, job entities.Job, taskType string, err error, log logger.Logger) {
	stdErr := errors.Classify(err)
	metrics.WorkerJobsFailed.WithLabelValues(taskType, string(stdErr.Code)).Inc()
	errors.NewErrorHandler(log).HandleJobError(ctx, client, job, stdErr)
}

// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)
)

var (
	PipelineRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "costli_pipeline_runs_total",
			Help: "Analyze runs by final status (success, fallback)",
		},
		[]string{"status"},
	)

	PipelineFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "costli_pipeline_fallbacks_total",
			Help: "Analyze runs that returned fallback tiles, by reason",
		},
		[]string{"reason"},
	)

	PipelineDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "costli_pipeline_duration_seconds",
			Help:    "Wall time of a full analyze run",
			Buckets: []float64{1, 5, 10, 20, 30, 60, 90, 120, 180},
		},
	)

	StageStatus = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "costli_stage_status_total",
			Help: "Stage outcomes (success, degraded, failed)",
		},
		[]string{"stage", "status"},
	)

	AgentRounds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "costli_agent_rounds",
			Help:    "Tool rounds used by a research agent",
			Buckets: []float64{0, 1, 2, 3, 4, 5, 6},
		},
	)

	SearchRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "costli_search_requests_total",
			Help: "Web search calls by engine and outcome",
		},
		[]string{"engine", "outcome"},
	)

	CompletionRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "costli_completion_requests_total",
			Help: "Completion calls by provider and outcome",
		},
		[]string{"provider", "outcome"},
	)

	ChatSessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "costli_chat_sessions_active",
			Help: "Chat sessions currently held in memory",
		},
	)
)

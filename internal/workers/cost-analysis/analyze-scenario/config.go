// internal/workers/cost-analysis/analyze-scenario/config.go
package analyzescenario

import (
	"time"

	"costli-agents/internal/common/config"
	"costli-agents/internal/llm"
)

type Config struct {
	Timeout         time.Duration // job
	PipelineTimeout time.Duration
	ScenarioChars   int
	LLMConfigured   bool
	ProgressChannel string
}

func LoadConfig(cfg *config.Config) *Config {
	wc := config.GetWorkerConfig(cfg, TaskType)
	return &Config{
		Timeout:         config.GetDuration(wc.Timeout),
		PipelineTimeout: config.GetDuration(cfg.Pipeline.Timeout),
		ScenarioChars:   cfg.Pipeline.ScenarioChars,
		LLMConfigured:   llm.Configured(cfg.LLM),
		ProgressChannel: cfg.Pipeline.ProgressChannel,
	}
}

// internal/workers/cost-analysis/decompose-scenario/config.go
package decomposescenario

import (
	"time"

	"costli-agents/internal/common/config"
	"costli-agents/internal/llm"
)

type Config struct {
	Timeout       time.Duration
	ScenarioChars int
	Profile       llm.Profile
}

func LoadConfig(cfg *config.Config) *Config {
	wc := config.GetWorkerConfig(cfg, TaskType)
	return &Config{
		Timeout:       config.GetDuration(wc.Timeout),
		ScenarioChars: cfg.Pipeline.ScenarioChars,
		Profile:       llm.ResolveProfiles(cfg.LLM).Get(llm.ProfileDecompose),
	}
}

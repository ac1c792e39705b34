// internal/workers/cost-analysis/generate-action-plan/config.go
package generateactionplan

import (
	"time"

	"costli-agents/internal/common/config"
	"costli-agents/internal/llm"
)

const defaultSearchResults = 5

type Config struct {
	Timeout       time.Duration
	SearchResults int
	Profile       llm.Profile
}

func LoadConfig(cfg *config.Config) *Config {
	wc := config.GetWorkerConfig(cfg, TaskType)
	return &Config{
		Timeout:       config.GetDuration(wc.Timeout),
		SearchResults: defaultSearchResults,
		Profile:       llm.ResolveProfiles(cfg.LLM).Get(llm.ProfilePlan),
	}
}

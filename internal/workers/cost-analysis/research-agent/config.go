// internal/workers/cost-analysis/research-agent/config.go
package researchagent

import (
	"time"

	"costli-agents/internal/common/config"
	"costli-agents/internal/llm"
)

const defaultSearchResults = 5

type Config struct {
	Timeout       time.Duration
	MaxRounds     int
	SearchResults int
	Profile       llm.Profile
}

func LoadConfig(cfg *config.Config) *Config {
	wc := config.GetWorkerConfig(cfg, TaskType)
	rounds := cfg.Pipeline.ResearchRounds
	if rounds <= 0 {
		rounds = 6
	}
	return &Config{
		Timeout:       config.GetDuration(wc.Timeout),
		MaxRounds:     rounds,
		SearchResults: defaultSearchResults,
		Profile:       llm.ResolveProfiles(cfg.LLM).Get(llm.ProfileResearch),
	}
}

// internal/workers/cost-analysis/fallback-insights/config.go
package fallbackinsights

import (
	"time"

	"costli-agents/internal/common/config"
)

type Config struct {
	Timeout time.Duration
}

func LoadConfig(cfg *config.Config) *Config {
	wc := config.GetWorkerConfig(cfg, TaskType)
	return &Config{Timeout: config.GetDuration(wc.Timeout)}
}

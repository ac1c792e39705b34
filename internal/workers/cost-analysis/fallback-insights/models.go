// internal/workers/cost-analysis/fallback-insights/models.go
package fallbackinsights

import "costli-agents/internal/models"

type Input struct {
	Domain    string `json:"domain"`
	Reason    string `json:"reason,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

type Output struct {
	Tiles  []models.Tile `json:"tiles"`
	Status string        `json:"status"`
	Reason string        `json:"reason"`
}

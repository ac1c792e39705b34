// internal/workers/cost-analysis/synthesize-insights/models.go
package synthesizeinsights

import "costli-agents/internal/models"

type Input struct {
	Findings []models.AgentFinding `json:"findings"`
	Scenario string                `json:"scenario"`
	Domain   string                `json:"domain"`
}

type Output struct {
	Tiles []models.Tile `json:"tiles"`
}

// internal/workers/cost-analysis/generate-action-plan/models.go
package generateactionplan

import "costli-agents/internal/models"

type Input struct {
	Headline  string `json:"headline"`
	Rationale string `json:"rationale"`
	Domain    string `json:"domain"`
}

type Output struct {
	Steps  []models.Step `json:"steps"`
	Status string        `json:"status"`
}

// internal/workers/cost-analysis/decompose-scenario/models.go
package decomposescenario

import "costli-agents/internal/models"

type Input struct {
	Scenario string `json:"scenario"`
	Domain   string `json:"domain"`
}

type Output struct {
	Tasks  []models.ResearchTask `json:"tasks"`
	Status models.StageStatus    `json:"status"`
	Reason string                `json:"reason,omitempty"`
}

// plan is the shape the model is asked to return.
type plan struct {
	Tasks []models.ResearchTask `json:"tasks"`
}

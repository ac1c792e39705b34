// internal/workers/cost-analysis/research-agent/models.go
package researchagent

import "costli-agents/internal/models"

type Input struct {
	Task   models.ResearchTask `json:"task"`
	Domain string              `json:"domain"`
}

type Output struct {
	Finding models.AgentFinding `json:"finding"`
	Rounds  int                 `json:"rounds"`
	Status  models.StageStatus  `json:"status"`
	Reason  string              `json:"reason,omitempty"`
}

type searchArgs struct {
	Query string `json:"query"`
}

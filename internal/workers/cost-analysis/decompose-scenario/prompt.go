// internal/workers/cost-analysis/decompose-scenario/prompt.go
package decomposescenario

import (
	"fmt"

	"costli-agents/internal/common/validation"
	"costli-agents/internal/models"
)

const maxSeedQueries = 3

func systemPrompt(d models.Domain) string {
	return fmt.Sprintf(`You are the Costli Orchestrator, a senior cloud cost analyst.

Your job is to analyze the user's cloud cost concern and break it into EXACTLY 3 focused research tasks for specialized agents.

RULES:
1. Read the user's scenario carefully. Identify the SPECIFIC services, workloads, and concerns mentioned.
2. Create 3 tasks, each covering a DIFFERENT angle of the problem:
   - Task 1 (Pricing Analyst): Research current %[1]s pricing, tiers, and hidden cost drivers for the mentioned services.
   - Task 2 (Optimization Specialist): Research specific optimization techniques, configuration changes, and best practices for the mentioned services.
   - Task 3 (Architecture Advisor): Research alternative architectures, service substitutions, or design patterns that could reduce costs.
3. Each task must include 2-3 specific search queries that would find real, actionable information.
4. Tasks must be SPECIFIC to the user's scenario, NOT generic cloud advice.

Respond with ONLY valid JSON matching this structure:
{
  "tasks": [
    {
      "agentRole": "Pricing Analyst",
      "taskDescription": "Research the exact pricing tiers for...",
      "searchQueries": ["%[1]s storage cool tier pricing 2025", "..."]
    }
  ]
}`, d)
}

func userPrompt(scenario string, d models.Domain) string {
	return fmt.Sprintf("Cloud Provider: %s\n\nUser's Scenario:\n%s", d, scenario)
}

// OutputSchema is sent as the strict response format and reused to
// validate what comes back.
var OutputSchema = validation.JSONSchema{
	"type": "object",
	"properties": map[string]interface{}{
		"tasks": map[string]interface{}{
			"type": "array",
			"items": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"agentRole":       map[string]interface{}{"type": "string"},
					"taskDescription": map[string]interface{}{"type": "string"},
					"searchQueries": map[string]interface{}{
						"type":  "array",
						"items": map[string]interface{}{"type": "string"},
					},
				},
				"required":             []interface{}{"agentRole", "taskDescription", "searchQueries"},
				"additionalProperties": false,
			},
		},
	},
	"required":             []interface{}{"tasks"},
	"additionalProperties": false,
}

// DefaultTasks is the deterministic plan used whenever decomposition fails.
func DefaultTasks(d models.Domain) []models.ResearchTask {
	return []models.ResearchTask{
		{
			AgentRole:       "Pricing Analyst",
			TaskDescription: fmt.Sprintf("Research current %s pricing for the services mentioned by the user.", d),
			SearchQueries:   []string{fmt.Sprintf("%s pricing calculator 2025", d), fmt.Sprintf("%s cost optimization pricing tiers", d)},
		},
		{
			AgentRole:       "Optimization Specialist",
			TaskDescription: fmt.Sprintf("Find specific optimization techniques for %s services mentioned.", d),
			SearchQueries:   []string{fmt.Sprintf("%s cost optimization best practices 2025", d), fmt.Sprintf("reduce %s cloud costs", d)},
		},
		{
			AgentRole:       "Architecture Advisor",
			TaskDescription: fmt.Sprintf("Research alternative architectures that could reduce %s costs.", d),
			SearchQueries:   []string{fmt.Sprintf("%s cost efficient architecture patterns", d), fmt.Sprintf("%s well-architected cost optimization", d)},
		},
	}
}

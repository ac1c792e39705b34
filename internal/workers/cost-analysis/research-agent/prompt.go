// internal/workers/cost-analysis/research-agent/prompt.go
package researchagent

import (
	"fmt"
	"strings"

	"costli-agents/internal/models"
)

const (
	noFindings       = "No findings generated."
	researchComplete = "Research completed."
	noResults        = "No results found for this query."
)

func systemPrompt(task models.ResearchTask, d models.Domain) string {
	return fmt.Sprintf(`You are a %s, a specialized cloud cost research agent for %s.

YOUR MISSION: %s

RULES:
1. Use the web_search tool to find REAL, CURRENT information. Do not rely only on your training data.
2. Search multiple times with different queries to get comprehensive data.
3. After gathering enough information, write DETAILED findings that include:
   - Specific pricing numbers with sources
   - Concrete optimization techniques with expected savings
   - Step-by-step implementation actions
   - Any caveats or warnings
4. Be SPECIFIC to the user's scenario. Avoid generic advice.
5. Your findings will be used by another agent to create recommendations, so be thorough.`,
		task.AgentRole, d, task.TaskDescription)
}

func userPrompt(task models.ResearchTask) string {
	return fmt.Sprintf("Research task: %s\n\nSuggested search queries: %s",
		task.TaskDescription, strings.Join(task.SearchQueries, ", "))
}

// FormatResults renders search hits as the tool message body.
func FormatResults(results []models.SearchResult) string {
	if len(results) == 0 {
		return noResults
	}
	parts := make([]string, len(results))
	for i, r := range results {
		parts[i] = fmt.Sprintf("[%d] %s\n    URL: %s\n    %s", i+1, r.Title, r.URL, r.Snippet)
	}
	return strings.Join(parts, "\n\n")
}

// internal/workers/cost-analysis/synthesize-insights/prompt.go
package synthesizeinsights

import (
	"fmt"
	"sort"
	"strings"

	"costli-agents/internal/common/validation"
	"costli-agents/internal/models"
)

const maxCitedSources = 3

func systemPrompt(d models.Domain) string {
	return fmt.Sprintf(`You are the Costli Synthesizer. You take research findings from 3 specialized agents and produce the final cost optimization recommendations.

OUTPUT FORMAT: You MUST respond with a JSON object whose "tiles" array holds exactly 5 InsightTile objects:
{
  "tiles": [
    {
      "id": "unique-id-1",
      "title": "Short Category (e.g. Storage, Compute)",
      "headline": "Specific Actionable Headline (e.g. 'Move Infrequently Accessed Blobs to Archive Tier')",
      "rationale": "Why this matters with REAL numbers from the research (e.g. 'Archive tier costs $0.00099/GB vs $0.01/GB for Cool tier, 90%% savings on storage costs')",
      "type": "OPTIMIZATION|PRICING|GUIDE|WARNING",
      "detail": {
        "steps": [
          { "title": "Step Title", "description": "Detailed step with specific CLI commands or portal navigation" }
        ],
        "pricingTable": [
          { "name": "Tier Name", "costEstimate": "$X.XX/GB/month", "features": ["feature1"], "justification": "Why this tier" }
        ],
        "technicalDetails": "Technical context, commands, or caveats"
      }
    }
  ]
}

RULES:
1. Each insight MUST be grounded in the research findings. Use real prices and facts found by the agents.
2. Headlines must be SPECIFIC and ACTIONABLE, not generic advice.
3. Rationale must include SPECIFIC numbers, percentages, or dollar amounts from the research.
4. Steps must reference real %s tools, CLI commands (az/aws/gcloud), or portal paths.
5. Include a pricingTable for at least 2 tiles comparing current vs. recommended pricing.
6. Use types correctly: OPTIMIZATION for resource changes, PRICING for tier/commitment changes, GUIDE for architecture changes, WARNING for risk/waste detection.
7. EVERY tile must be directly relevant to the user's specific scenario.`, d)
}

// BuildPrompt renders the user message. Findings are ordered by role so the
// prompt does not depend on which agent finished first.
func BuildPrompt(findings []models.AgentFinding, scenario string, d models.Domain) string {
	sorted := append([]models.AgentFinding(nil), findings...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].AgentRole < sorted[j].AgentRole })

	blocks := make([]string, len(sorted))
	for i, f := range sorted {
		cited := f.Sources
		if len(cited) > maxCitedSources {
			cited = cited[:maxCitedSources]
		}
		sources := strings.Join(cited, ", ")
		if sources == "" {
			sources = "No sources"
		}
		blocks[i] = fmt.Sprintf("\n══ %s FINDINGS ══\n%s\n\nSources: %s", strings.ToUpper(f.AgentRole), f.Findings, sources)
	}

	return fmt.Sprintf("USER'S ORIGINAL SCENARIO:\n%s\n\nCLOUD PROVIDER: %s\n\nRESEARCH FINDINGS:\n%s\n\nSynthesize these findings into 5 specific InsightTile JSON objects. Use REAL data from the research.",
		scenario, d, strings.Join(blocks, "\n\n"))
}

var stepSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"title":       map[string]interface{}{"type": "string"},
		"description": map[string]interface{}{"type": "string"},
	},
}

// OutputSchema is sent as a non-strict response format. Models may omit the
// optional detail fields.
var OutputSchema = validation.JSONSchema{
	"type": "object",
	"properties": map[string]interface{}{
		"tiles": map[string]interface{}{
			"type": "array",
			"items": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"id":        map[string]interface{}{"type": "string"},
					"title":     map[string]interface{}{"type": "string"},
					"headline":  map[string]interface{}{"type": "string"},
					"rationale": map[string]interface{}{"type": "string"},
					"type": map[string]interface{}{
						"type": "string",
						"enum": []interface{}{"OPTIMIZATION", "PRICING", "GUIDE", "WARNING"},
					},
					"detail": map[string]interface{}{
						"type": "object",
						"properties": map[string]interface{}{
							"steps": map[string]interface{}{"type": "array", "items": stepSchema},
							"pricingTable": map[string]interface{}{
								"type": "array",
								"items": map[string]interface{}{
									"type": "object",
									"properties": map[string]interface{}{
										"name":          map[string]interface{}{"type": "string"},
										"costEstimate":  map[string]interface{}{"type": "string"},
										"features":      map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "string"}},
										"justification": map[string]interface{}{"type": "string"},
									},
								},
							},
							"technicalDetails": map[string]interface{}{"type": "string"},
						},
					},
				},
				"required": []interface{}{"title", "headline", "rationale", "type", "detail"},
			},
		},
	},
	"required": []interface{}{"tiles"},
}

// tileSchema is the minimum every parsed element has to satisfy.
var tileSchema = validation.JSONSchema{
	"type": "object",
	"properties": map[string]interface{}{
		"headline": map[string]interface{}{"type": "string"},
	},
	"required": []interface{}{"headline"},
}

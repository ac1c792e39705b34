// internal/workers/cost-analysis/generate-action-plan/plan.go
package generateactionplan

import (
	"encoding/json"
	"fmt"
	"strings"

	"costli-agents/internal/common/validation"
	"costli-agents/internal/llm"
	"costli-agents/internal/models"
)

func systemPrompt(d models.Domain) string {
	return fmt.Sprintf(`You are a senior %[1]s Cloud Architect. Create a detailed implementation plan.

Respond with ONLY a JSON object: { "steps": [ { "title": "...", "description": "..." } ] }

Each step MUST include:
- Specific %[1]s CLI commands (az/aws/gcloud) or portal navigation paths
- Prerequisites and validation checks
- Expected outcome and how to verify`, d)
}

func searchQuery(headline string, d models.Domain) string {
	return fmt.Sprintf("%s how to %s step by step implementation guide", d, headline)
}

func userPrompt(headline, rationale string, research []models.SearchResult) string {
	parts := make([]string, len(research))
	for i, r := range research {
		parts[i] = r.Title + ": " + r.Snippet
	}
	return fmt.Sprintf("Create implementation steps for: \"%s\"\n\nContext: %s\n\nResearch:\n%s",
		headline, rationale, strings.Join(parts, "\n\n"))
}

var OutputSchema = validation.JSONSchema{
	"type": "object",
	"properties": map[string]interface{}{
		"steps": map[string]interface{}{
			"type": "array",
			"items": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"title":       map[string]interface{}{"type": "string"},
					"description": map[string]interface{}{"type": "string"},
				},
				"required":             []interface{}{"title", "description"},
				"additionalProperties": false,
			},
		},
	},
	"required":             []interface{}{"steps"},
	"additionalProperties": false,
}

// ManualReview is the plan returned when nothing better is available.
func ManualReview(headline string, d models.Domain) []models.Step {
	return []models.Step{{
		Title:       "Manual Review",
		Description: fmt.Sprintf("Review %s documentation for %s.", d, headline),
	}}
}

// ParseSteps accepts {"steps":[...]} or a bare array and drops steps that
// have neither a title nor a description.
func ParseSteps(text string) ([]models.Step, error) {
	raw := llm.ExtractJSON(text)

	var wrapped struct {
		Steps []models.Step `json:"steps"`
	}
	var steps []models.Step
	if strings.HasPrefix(raw, "[") {
		if err := json.Unmarshal([]byte(raw), &steps); err != nil {
			return nil, fmt.Errorf("decode steps: %w", err)
		}
	} else {
		if err := json.Unmarshal([]byte(raw), &wrapped); err != nil {
			return nil, fmt.Errorf("decode steps: %w", err)
		}
		steps = wrapped.Steps
	}

	out := make([]models.Step, 0, len(steps))
	for _, s := range steps {
		s.Title = strings.TrimSpace(s.Title)
		s.Description = strings.TrimSpace(s.Description)
		if s.Title == "" && s.Description == "" {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

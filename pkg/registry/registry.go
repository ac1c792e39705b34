// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

const (
	CatalogVersion = "1.0.0"
	catalogDate    = "2025-06-01"

	categoryAnalysis = "cost-analysis"
	categoryChat     = "ai-conversation"
	workflow         = "costli-analysis"
)

func LoadRegistry(path string) (*ActivityRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reg ActivityRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("decode registry %s: %w", path, err)
	}
	return &reg, nil
}

// Save writes the registry as indented JSON.
func (r *ActivityRegistry) Save(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

func (r *ActivityRegistry) Find(taskType string) (Activity, bool) {
	for _, a := range r.Activities {
		if a.TaskType == taskType {
			return a, true
		}
	}
	return Activity{}, false
}

// Validate checks ids and task types are present and unique.
func (r *ActivityRegistry) Validate() error {
	ids := map[string]bool{}
	types := map[string]bool{}
	for i, a := range r.Activities {
		if a.ID == "" || a.TaskType == "" {
			return fmt.Errorf("activity %d: id and taskType are required", i)
		}
		if ids[a.ID] {
			return fmt.Errorf("duplicate activity id %q", a.ID)
		}
		if types[a.TaskType] {
			return fmt.Errorf("duplicate task type %q", a.TaskType)
		}
		ids[a.ID] = true
		types[a.TaskType] = true
	}
	return nil
}

// Restrict returns a copy holding only the given task types, e.g. the ones a
// process actually started.
func (r *ActivityRegistry) Restrict(taskTypes []string) *ActivityRegistry {
	keep := make(map[string]bool, len(taskTypes))
	for _, t := range taskTypes {
		keep[t] = true
	}
	out := &ActivityRegistry{Version: r.Version, LastUpdated: r.LastUpdated}
	for _, a := range r.Activities {
		if keep[a.TaskType] {
			out.Activities = append(out.Activities, a)
		}
	}
	sort.Slice(out.Activities, func(i, j int) bool { return out.Activities[i].TaskType < out.Activities[j].TaskType })
	return out
}

func object(required []string, props map[string]string) map[string]interface{} {
	properties := make(map[string]interface{}, len(props))
	for name, typ := range props {
		properties[name] = map[string]interface{}{"type": typ}
	}
	req := make([]interface{}, len(required))
	for i, r := range required {
		req[i] = r
	}
	return map[string]interface{}{"type": "object", "properties": properties, "required": req}
}

// Catalog describes the job types this module implements.
func Catalog() *ActivityRegistry {
	return &ActivityRegistry{
		Version:     CatalogVersion,
		LastUpdated: catalogDate,
		Activities: []Activity{
			{
				ID:           "decompose-scenario",
				DisplayName:  "Decompose Scenario",
				Description:  "Split a cloud cost scenario into three research tasks",
				Category:     categoryAnalysis,
				TaskType:     "decompose-scenario",
				InputSchema:  object([]string{"scenario", "domain"}, map[string]string{"scenario": "string", "domain": "string"}),
				OutputSchema: object([]string{"tasks", "status"}, map[string]string{"tasks": "array", "status": "string", "reason": "string"}),
				ErrorCodes:   []string{"INVALID_INPUT"},
				Timeout:      "60s",
				Tags:         []string{"llm"},
			},
			{
				ID:           "research-agent",
				DisplayName:  "Research Agent",
				Description:  "Run one tool-using research agent over web search",
				Category:     categoryAnalysis,
				TaskType:     "research-agent",
				InputSchema:  object([]string{"task", "domain"}, map[string]string{"task": "object", "domain": "string"}),
				OutputSchema: object([]string{"finding", "rounds", "status"}, map[string]string{"finding": "object", "rounds": "integer", "status": "string"}),
				ErrorCodes:   []string{"INVALID_INPUT"},
				Timeout:      "120s",
				Tags:         []string{"llm", "search", "multi-instance"},
			},
			{
				ID:           "synthesize-insights",
				DisplayName:  "Synthesize Insights",
				Description:  "Turn agent findings into five recommendation tiles",
				Category:     categoryAnalysis,
				TaskType:     "synthesize-insights",
				InputSchema:  object([]string{"findings", "scenario", "domain"}, map[string]string{"findings": "array", "scenario": "string", "domain": "string"}),
				OutputSchema: object([]string{"tiles"}, map[string]string{"tiles": "array"}),
				ErrorCodes:   []string{"SYNTHESIS_FAILED", "INVALID_INPUT"},
				Timeout:      "90s",
				Tags:         []string{"llm"},
			},
			{
				ID:           "fallback-insights",
				DisplayName:  "Fallback Insights",
				Description:  "Serve the canned tile set for a provider",
				Category:     categoryAnalysis,
				TaskType:     "fallback-insights",
				InputSchema:  object([]string{"domain"}, map[string]string{"domain": "string", "reason": "string", "requestId": "string"}),
				OutputSchema: object([]string{"tiles", "status"}, map[string]string{"tiles": "array", "status": "string", "reason": "string"}),
				ErrorCodes:   []string{"INVALID_INPUT"},
				Timeout:      "5s",
			},
			{
				ID:           "analyze-scenario",
				DisplayName:  "Analyze Scenario",
				Description:  "Run the whole pipeline and always return five tiles",
				Category:     categoryAnalysis,
				TaskType:     "analyze-scenario",
				InputSchema:  object([]string{"scenario", "domain"}, map[string]string{"scenario": "string", "domain": "string", "requestId": "string"}),
				OutputSchema: object([]string{"requestId", "tiles", "audit"}, map[string]string{"requestId": "string", "tiles": "array", "audit": "object"}),
				ErrorCodes:   []string{"INVALID_INPUT"},
				Timeout:      "200s",
				Tags:         []string{"llm", "search", "pipeline"},
			},
			{
				ID:           "generate-action-plan",
				DisplayName:  "Generate Action Plan",
				Description:  "Produce implementation steps for one tile",
				Category:     categoryAnalysis,
				TaskType:     "generate-action-plan",
				InputSchema:  object([]string{"headline", "domain"}, map[string]string{"headline": "string", "rationale": "string", "domain": "string"}),
				OutputSchema: object([]string{"steps", "status"}, map[string]string{"steps": "array", "status": "string"}),
				ErrorCodes:   []string{"INVALID_INPUT"},
				Timeout:      "60s",
				Tags:         []string{"llm", "search"},
			},
			{
				ID:          "chat-turn",
				DisplayName: "Chat Turn",
				Description: "Answer one message in a cost consultant conversation",
				Category:    categoryChat,
				TaskType:    "chat-turn",
				InputSchema: object([]string{"domain", "message"}, map[string]string{
					"sessionId": "string", "domain": "string", "scenario": "string", "message": "string", "reanalyze": "boolean",
				}),
				OutputSchema: object([]string{"sessionId", "reply", "transcript"}, map[string]string{
					"sessionId": "string", "reply": "string", "transcript": "array", "tiles": "array", "analysisStatus": "string",
				}),
				ErrorCodes: []string{"INVALID_INPUT"},
				Timeout:    "200s",
				Tags:       []string{"llm", "search", "session"},
			},
		},
	}
}

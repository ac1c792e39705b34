// internal/llm/gemini.go
package llm

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"

	"costli-agents/internal/common/config"

	"google.golang.org/genai"
)

type GeminiProvider struct {
	client *genai.Client
}

func NewGemini(ctx context.Context, cfg config.LLMConfig) (*GeminiProvider, error) {
	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GeminiProvider{client: client}, nil
}

func (p *GeminiProvider) Name() string { return "gemini" }

func (p *GeminiProvider) Complete(ctx context.Context, req *Request) (*Response, error) {
	system, contents := p.convertMessages(req.Messages)

	gc := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(req.Profile.Temperature)),
	}
	if req.Profile.MaxTokens > 0 {
		gc.MaxOutputTokens = int32(req.Profile.MaxTokens)
	}
	if system != "" {
		gc.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}
	if len(req.Tools) > 0 {
		decls := make([]*genai.FunctionDeclaration, 0, len(req.Tools))
		for _, t := range req.Tools {
			decls = append(decls, &genai.FunctionDeclaration{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  toGenaiSchema(t.Parameters),
			})
		}
		gc.Tools = []*genai.Tool{{FunctionDeclarations: decls}}
	}
	switch {
	case req.Schema != nil:
		gc.ResponseMIMEType = "application/json"
		gc.ResponseSchema = toGenaiSchema(req.Schema.Schema)
	case req.JSONMode:
		gc.ResponseMIMEType = "application/json"
	}

	result, err := p.client.Models.GenerateContent(ctx, req.Profile.Model, contents, gc)
	if err != nil {
		var apiErr genai.APIError
		if stderrors.As(err, &apiErr) {
			return nil, &TransportError{Provider: p.Name(), StatusCode: apiErr.Code, Code: apiErr.Status, Err: err}
		}
		return nil, &TransportError{Provider: p.Name(), Err: err}
	}
	if result == nil || len(result.Candidates) == 0 {
		return nil, &ParseError{Provider: p.Name(), Reason: "no candidates in response"}
	}

	resp := &Response{
		Text:         result.Text(),
		FinishReason: string(result.Candidates[0].FinishReason),
		Model:        result.ModelVersion,
	}
	for i, fc := range result.FunctionCalls() {
		args, _ := json.Marshal(fc.Args)
		id := fc.ID
		if id == "" {
			id = fmt.Sprintf("call_%d", i)
		}
		resp.ToolCalls = append(resp.ToolCalls, ToolCall{ID: id, Name: fc.Name, Arguments: string(args)})
	}
	return resp, nil
}

// convertMessages lifts system text out of the transcript and maps the
// rest onto user and model contents. Consecutive tool results share one
// user content.
func (p *GeminiProvider) convertMessages(messages []Message) (string, []*genai.Content) {
	var system []string
	contents := make([]*genai.Content, 0, len(messages))
	var toolParts []*genai.Part

	flush := func() {
		if len(toolParts) > 0 {
			contents = append(contents, &genai.Content{Role: string(genai.RoleUser), Parts: toolParts})
			toolParts = nil
		}
	}

	for _, m := range messages {
		if m.Role == RoleTool {
			toolParts = append(toolParts, &genai.Part{FunctionResponse: &genai.FunctionResponse{
				ID:       m.ToolCallID,
				Name:     m.Name,
				Response: map[string]any{"result": m.Content},
			}})
			continue
		}
		flush()

		switch m.Role {
		case RoleSystem:
			system = append(system, m.Content)
		case RoleUser:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleUser))
		case RoleAssistant:
			var parts []*genai.Part
			if m.Content != "" {
				parts = append(parts, genai.NewPartFromText(m.Content))
			}
			for _, tc := range m.ToolCalls {
				var args map[string]any
				_ = json.Unmarshal([]byte(tc.Arguments), &args)
				parts = append(parts, &genai.Part{FunctionCall: &genai.FunctionCall{ID: tc.ID, Name: tc.Name, Args: args}})
			}
			if len(parts) == 0 {
				parts = append(parts, genai.NewPartFromText(""))
			}
			contents = append(contents, &genai.Content{Role: string(genai.RoleModel), Parts: parts})
		}
	}
	flush()
	return strings.Join(system, "\n\n"), contents
}

// toGenaiSchema converts a JSON-schema map into the SDK's schema type. Only
// the keywords the pipeline schemas use are carried over.
func toGenaiSchema(m map[string]interface{}) *genai.Schema {
	if m == nil {
		return nil
	}
	s := &genai.Schema{}
	if t, ok := m["type"].(string); ok {
		s.Type = genai.Type(strings.ToUpper(t))
	}
	if d, ok := m["description"].(string); ok {
		s.Description = d
	}
	if props, ok := m["properties"].(map[string]interface{}); ok {
		s.Properties = make(map[string]*genai.Schema, len(props))
		for name, raw := range props {
			if pm, ok := raw.(map[string]interface{}); ok {
				s.Properties[name] = toGenaiSchema(pm)
			}
		}
	}
	if items, ok := m["items"].(map[string]interface{}); ok {
		s.Items = toGenaiSchema(items)
	}
	s.Required = requiredFields(m)
	switch enum := m["enum"].(type) {
	case []string:
		s.Enum = enum
	case []interface{}:
		for _, e := range enum {
			if str, ok := e.(string); ok {
				s.Enum = append(s.Enum, str)
			}
		}
	}
	return s
}

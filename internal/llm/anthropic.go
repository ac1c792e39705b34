// internal/llm/anthropic.go
package llm

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"strings"

	"costli-agents/internal/common/config"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicProvider uses the Messages API. It has no schema mode, so a
// requested schema is written into the system prompt and callers rely on
// ExtractJSON.
type AnthropicProvider struct {
	client *anthropic.Client
}

func NewAnthropic(cfg config.LLMConfig) *AnthropicProvider {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(cfg.MaxRetries),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	client := anthropic.NewClient(opts...)
	return &AnthropicProvider{client: &client}
}

func (p *AnthropicProvider) Name() string { return "anthropic" }

func (p *AnthropicProvider) Complete(ctx context.Context, req *Request) (*Response, error) {
	params := p.buildParams(req)

	msg, err := p.client.Messages.New(ctx, params)
	if err != nil {
		var apiErr *anthropic.Error
		if stderrors.As(err, &apiErr) {
			return nil, &TransportError{Provider: p.Name(), StatusCode: apiErr.StatusCode, Err: err}
		}
		return nil, &TransportError{Provider: p.Name(), Err: err}
	}
	if msg == nil || len(msg.Content) == 0 {
		return nil, &ParseError{Provider: p.Name(), Reason: "empty content"}
	}

	resp := &Response{
		FinishReason: string(msg.StopReason),
		Model:        string(msg.Model),
	}
	var text strings.Builder
	for _, block := range msg.Content {
		switch b := block.AsAny().(type) {
		case anthropic.TextBlock:
			text.WriteString(b.Text)
		case anthropic.ToolUseBlock:
			args, _ := b.Input.MarshalJSON()
			resp.ToolCalls = append(resp.ToolCalls, ToolCall{ID: b.ID, Name: b.Name, Arguments: string(args)})
		}
	}
	resp.Text = text.String()
	return resp, nil
}

func (p *AnthropicProvider) buildParams(req *Request) anthropic.MessageNewParams {
	var system []string
	for _, m := range req.Messages {
		if m.Role == RoleSystem {
			system = append(system, m.Content)
		}
	}
	if req.Schema != nil {
		schema, _ := json.Marshal(req.Schema.Schema)
		system = append(system, "Respond with a single JSON object matching this JSON schema and nothing else:\n"+string(schema))
	} else if req.JSONMode {
		system = append(system, "Respond with a single JSON object and nothing else.")
	}

	maxTokens := int64(req.Profile.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = 4096
	}

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(req.Profile.Model),
		MaxTokens:   maxTokens,
		Messages:    p.convertMessages(req.Messages),
		Temperature: anthropic.Float(req.Profile.Temperature),
	}
	if len(system) > 0 {
		params.System = []anthropic.TextBlockParam{{Text: strings.Join(system, "\n\n")}}
	}

	for _, t := range req.Tools {
		params.Tools = append(params.Tools, anthropic.ToolUnionParam{
			OfTool: &anthropic.ToolParam{
				Name:        t.Name,
				Description: anthropic.String(t.Description),
				InputSchema: anthropic.ToolInputSchemaParam{
					Properties: t.Parameters["properties"],
					Required:   requiredFields(t.Parameters),
				},
			},
		})
	}
	return params
}

// convertMessages drops system messages and folds consecutive tool results
// into one user turn, which the API requires after a multi-call reply.
func (p *AnthropicProvider) convertMessages(messages []Message) []anthropic.MessageParam {
	out := make([]anthropic.MessageParam, 0, len(messages))
	var pending []anthropic.ContentBlockParamUnion

	flush := func() {
		if len(pending) > 0 {
			out = append(out, anthropic.NewUserMessage(pending...))
			pending = nil
		}
	}

	for _, m := range messages {
		switch m.Role {
		case RoleTool:
			pending = append(pending, anthropic.NewToolResultBlock(m.ToolCallID, m.Content, false))
			continue
		case RoleSystem:
			continue
		}
		flush()

		switch m.Role {
		case RoleUser:
			out = append(out, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		case RoleAssistant:
			blocks := make([]anthropic.ContentBlockParamUnion, 0, len(m.ToolCalls)+1)
			if m.Content != "" {
				blocks = append(blocks, anthropic.NewTextBlock(m.Content))
			}
			for _, tc := range m.ToolCalls {
				input := json.RawMessage(tc.Arguments)
				if !json.Valid(input) {
					input = json.RawMessage("{}")
				}
				blocks = append(blocks, anthropic.ContentBlockParamUnion{
					OfToolUse: &anthropic.ToolUseBlockParam{ID: tc.ID, Name: tc.Name, Input: input},
				})
			}
			if len(blocks) == 0 {
				blocks = append(blocks, anthropic.NewTextBlock(""))
			}
			out = append(out, anthropic.NewAssistantMessage(blocks...))
		}
	}
	flush()
	return out
}

func requiredFields(params map[string]interface{}) []string {
	switch req := params["required"].(type) {
	case []string:
		return req
	case []interface{}:
		out := make([]string, 0, len(req))
		for _, r := range req {
			if s, ok := r.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

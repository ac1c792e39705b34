// internal/llm/llmtest/fake.go
package llmtest

import (
	"context"
	"errors"
	"sync"

	"costli-agents/internal/llm"
)

// Step is one scripted reply. Err takes precedence over Response.
type Step struct {
	Response *llm.Response
	Err      error
}

// Text is a plain reply with no tool calls.
func Text(s string) Step {
	return Step{Response: &llm.Response{Text: s, FinishReason: "stop"}}
}

// Calls is a reply that requests the given tool calls.
func Calls(calls ...llm.ToolCall) Step {
	return Step{Response: &llm.Response{ToolCalls: calls, FinishReason: "tool_calls"}}
}

func Fail(err error) Step {
	return Step{Err: err}
}

// Provider replays scripted steps in order and records every request.
// With Respond set, it is consulted instead of the script.
type Provider struct {
	mu       sync.Mutex
	steps    []Step
	requests []*llm.Request

	Respond func(ctx context.Context, req *llm.Request) (*llm.Response, error)
}

func New(steps ...Step) *Provider {
	return &Provider{steps: steps}
}

func (p *Provider) Name() string { return "fake" }

func (p *Provider) Complete(ctx context.Context, req *llm.Request) (*llm.Response, error) {
	p.mu.Lock()
	p.requests = append(p.requests, cloneRequest(req))
	respond := p.Respond
	var step *Step
	if respond == nil && len(p.steps) > 0 {
		s := p.steps[0]
		p.steps = p.steps[1:]
		step = &s
	}
	p.mu.Unlock()

	if respond != nil {
		return respond(ctx, req)
	}
	if err := ctx.Err(); err != nil {
		return nil, &llm.TransportError{Provider: "fake", Err: err}
	}
	if step == nil {
		return nil, &llm.TransportError{Provider: "fake", Err: errors.New("script exhausted")}
	}
	if step.Err != nil {
		return nil, step.Err
	}
	return step.Response, nil
}

func (p *Provider) Requests() []*llm.Request {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]*llm.Request, len(p.requests))
	copy(out, p.requests)
	return out
}

func (p *Provider) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.requests)
}

func cloneRequest(req *llm.Request) *llm.Request {
	c := *req
	c.Messages = append([]llm.Message(nil), req.Messages...)
	c.Tools = append([]llm.Tool(nil), req.Tools...)
	return &c
}

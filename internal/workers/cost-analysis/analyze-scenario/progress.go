// internal/workers/cost-analysis/analyze-scenario/progress.go
package analyzescenario

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"costli-agents/internal/common/logger"
)

// Progress labels, in emission order.
const (
	LabelAnalyzing   = "Analyzing your scenario..."
	LabelResearching = "Agents researching..."
	LabelSynthesis   = "Synthesizing recommendations..."
	LabelFallback    = "Using fallback insights..."
)

// ProgressSink receives stage labels while a run is in flight.
type ProgressSink interface {
	Stage(ctx context.Context, label string)
}

type ProgressFunc func(label string)

func (f ProgressFunc) Stage(_ context.Context, label string) {
	if f != nil {
		f(label)
	}
}

type LogProgress struct {
	Logger logger.Logger
}

func (p LogProgress) Stage(_ context.Context, label string) {
	p.Logger.Info("pipeline progress", map[string]interface{}{"stage": label})
}

// Publisher is the subset of the redis client used for progress events.
type Publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) (int64, error)
}

type progressEvent struct {
	RequestID string    `json:"requestId"`
	Stage     string    `json:"stage"`
	At        time.Time `json:"at"`
}

// RedisProgress publishes each label on "{Channel}:{RequestID}". Publish
// failures are logged and dropped.
type RedisProgress struct {
	Publisher Publisher
	Channel   string
	RequestID string
	Logger    logger.Logger
}

func (p RedisProgress) Stage(ctx context.Context, label string) {
	body, err := json.Marshal(progressEvent{RequestID: p.RequestID, Stage: label, At: time.Now().UTC()})
	if err != nil {
		return
	}
	if _, err := p.Publisher.Publish(ctx, p.Channel+":"+p.RequestID, string(body)); err != nil && p.Logger != nil {
		p.Logger.Warn("progress publish failed", map[string]interface{}{
			"requestId": p.RequestID,
			"error":     err.Error(),
		})
	}
}

type MultiProgress []ProgressSink

func (m MultiProgress) Stage(ctx context.Context, label string) {
	for _, s := range m {
		if s != nil {
			s.Stage(ctx, label)
		}
	}
}

// gate forwards labels until closed, so a stage goroutine that outlives the
// deadline cannot report after the fallback label.
type gate struct {
	mu     sync.Mutex
	next   ProgressSink
	closed bool
}

func newGate(next ProgressSink) *gate {
	return &gate{next: next}
}

func (g *gate) Stage(ctx context.Context, label string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed || g.next == nil {
		return
	}
	g.next.Stage(ctx, label)
}

// finish emits an optional last label and closes the gate.
func (g *gate) finish(ctx context.Context, label string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return
	}
	if label != "" && g.next != nil {
		g.next.Stage(ctx, label)
	}
	g.closed = true
}

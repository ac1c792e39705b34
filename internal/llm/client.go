// internal/llm/client.go
package llm

import (
	"context"
	"strings"
	"time"

	"costli-agents/internal/common/config"
	"costli-agents/internal/common/errors"
	"costli-agents/internal/common/logger"
	"costli-agents/internal/common/metrics"
	"costli-agents/internal/common/observability"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Configured reports whether completions can be attempted at all.
func Configured(cfg config.LLMConfig) bool {
	return strings.TrimSpace(cfg.APIKey) != ""
}

// New builds the backend named by cfg.Provider and wraps it with the
// per-call timeout, metrics and tracing.
func New(ctx context.Context, cfg config.LLMConfig, log logger.Logger) (Provider, error) {
	var backend Provider
	switch strings.ToLower(cfg.Provider) {
	case "", "openai":
		backend = NewOpenAI(cfg)
	case "anthropic":
		backend = NewAnthropic(cfg)
	case "gemini":
		g, err := NewGemini(ctx, cfg)
		if err != nil {
			return nil, err
		}
		backend = g
	default:
		return nil, errors.NewConfigurationMissingError("llm.provider: unknown provider " + cfg.Provider)
	}
	return Instrument(backend, config.GetDuration(cfg.Timeout), log), nil
}

type instrumented struct {
	next    Provider
	timeout time.Duration
	logger  logger.Logger
}

// Instrument decorates a Provider. A zero timeout leaves the caller's
// deadline in charge.
func Instrument(p Provider, timeout time.Duration, log logger.Logger) Provider {
	return &instrumented{
		next:    p,
		timeout: timeout,
		logger:  log.With(map[string]interface{}{"provider": p.Name()}),
	}
}

func (i *instrumented) Name() string { return i.next.Name() }

func (i *instrumented) Complete(ctx context.Context, req *Request) (*Response, error) {
	if i.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, i.timeout)
		defer cancel()
	}

	ctx, span := observability.StartSpan(ctx, "llm.complete",
		attribute.String("llm.provider", i.next.Name()),
		attribute.String("llm.model", req.Profile.Model),
		attribute.Int("llm.tools", len(req.Tools)),
	)
	defer span.End()

	start := time.Now()
	resp, err := i.next.Complete(ctx, req)
	outcome := "success"
	if err != nil {
		outcome = "error"
		if IsTimeout(err) {
			outcome = "timeout"
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		i.logger.Warn("completion failed", map[string]interface{}{
			"model":      req.Profile.Model,
			"durationMs": time.Since(start).Milliseconds(),
			"error":      err.Error(),
		})
	} else {
		i.logger.Debug("completion finished", map[string]interface{}{
			"model":        req.Profile.Model,
			"durationMs":   time.Since(start).Milliseconds(),
			"toolCalls":    len(resp.ToolCalls),
			"finishReason": resp.FinishReason,
		})
	}
	metrics.CompletionRequests.WithLabelValues(i.next.Name(), outcome).Inc()
	return resp, err
}

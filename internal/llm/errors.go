// internal/llm/errors.go
package llm

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"

	"costli-agents/internal/common/errors"
)

// TransportError is a network failure or a non-success status.
type TransportError struct {
	Provider   string
	StatusCode int
	Code       string
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s: status %d: %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) Standard() *errors.StandardError {
	if IsTimeout(e.Err) {
		return errors.NewLLMTimeoutError(e)
	}
	return errors.NewLLMTransportError(e.Provider, e)
}

// ParseError is a response that arrived but cannot be used.
type ParseError struct {
	Provider string
	Reason   string
	Err      error
}

func (e *ParseError) Error() string {
	msg := "invalid completion"
	if e.Provider != "" {
		msg = e.Provider + ": " + msg
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ParseError) Unwrap() error { return e.Err }

func (e *ParseError) Standard() *errors.StandardError {
	return errors.NewLLMResponseInvalidError(e.Provider, e)
}

func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	if stderrors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return stderrors.As(err, &netErr) && netErr.Timeout()
}

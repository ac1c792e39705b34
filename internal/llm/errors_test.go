// internal/llm/errors_test.go
package llm

import (
	"context"
	stderrors "errors"
	"fmt"
	"testing"

	"costli-agents/internal/common/errors"

	"github.com/stretchr/testify/assert"
)

func TestTransportError(t *testing.T) {
	err := fmt.Errorf("decompose: %w", &TransportError{Provider: "openai", Err: context.DeadlineExceeded})

	assert.True(t, stderrors.Is(err, context.DeadlineExceeded))
	assert.True(t, IsTimeout(err))
	assert.Equal(t, errors.ErrCodeLLMTimeout, errors.Classify(err).Code)

	err = &TransportError{Provider: "openai", StatusCode: 502, Err: stderrors.New("bad gateway")}
	assert.False(t, IsTimeout(err))
	assert.Contains(t, err.Error(), "status 502")
	assert.Equal(t, errors.ErrCodeLLMTransportFailed, errors.Classify(err).Code)
}

func TestParseError(t *testing.T) {
	err := &ParseError{Provider: "openai", Reason: "no choices in response"}
	assert.Equal(t, "openai: invalid completion: no choices in response", err.Error())
	assert.Equal(t, errors.ErrCodeLLMResponseInvalid, errors.Classify(err).Code)
	assert.False(t, IsTimeout(err))
	assert.False(t, IsTimeout(nil))
}

// Package errors provides standardized error handling for BPMN workflow integration.
package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeLLMTransportFailed ErrorCode = "LLM_TRANSPORT_FAILED"
	ErrCodeLLMResponseInvalid ErrorCode = "LLM_RESPONSE_INVALID"
	ErrCodeLLMTimeout         ErrorCode = "LLM_TIMEOUT"

	ErrCodeSearchFailed  ErrorCode = "SEARCH_FAILED"
	ErrCodeSearchTimeout ErrorCode = "SEARCH_TIMEOUT"

	ErrCodeDecompositionDegraded    ErrorCode = "DECOMPOSITION_DEGRADED"
	ErrCodeSynthesisFailed          ErrorCode = "SYNTHESIS_FAILED"
	ErrCodePipelineDeadlineExceeded ErrorCode = "PIPELINE_DEADLINE_EXCEEDED"

	ErrCodeInvalidInput         ErrorCode = "INVALID_INPUT"
	ErrCodeConfigurationMissing ErrorCode = "CONFIGURATION_MISSING"

	ErrCodeExternalServiceError ErrorCode = "EXTERNAL_SERVICE_ERROR"
	ErrCodeTimeoutError         ErrorCode = "TIMEOUT_ERROR"
	ErrCodeInternalError        ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`

	cause error
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

// Is matches another StandardError by code so sentinel comparisons work
// through wrapping.
func (e *StandardError) Is(target error) bool {
	t, ok := target.(*StandardError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

func newError(code ErrorCode, message string, cause error, retryable bool) *StandardError {
	details := ""
	if cause != nil {
		details = cause.Error()
	}
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
		cause:     cause,
	}
}

func NewLLMTransportError(provider string, err error) *StandardError {
	return newError(ErrCodeLLMTransportFailed, fmt.Sprintf("Completion provider '%s' unreachable", provider), err, true)
}

func NewLLMResponseInvalidError(stage string, err error) *StandardError {
	return newError(ErrCodeLLMResponseInvalid, fmt.Sprintf("Model output for %s did not match the expected shape", stage), err, false)
}

func NewLLMTimeoutError(err error) *StandardError {
	return newError(ErrCodeLLMTimeout, "Completion call timed out", err, true)
}

func NewSearchFailedError(engine string, err error) *StandardError {
	return newError(ErrCodeSearchFailed, fmt.Sprintf("Search engine '%s' error", engine), err, true)
}

func NewSearchTimeoutError(engine string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSearchTimeout,
		Message:   "Search call timed out",
		Details:   fmt.Sprintf("engine: %s", engine),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDecompositionDegradedError marks a decomposition that used the canned
// tasks. It is informational and never fails a job.
func NewDecompositionDegradedError(reason string) *StandardError {
	return &StandardError{
		Code:      ErrCodeDecompositionDegraded,
		Message:   "Scenario decomposition used default research tasks",
		Details:   reason,
		Timestamp: time.Now().UTC(),
	}
}

func NewSynthesisFailedError(details string, err error) *StandardError {
	e := newError(ErrCodeSynthesisFailed, "Insight synthesis did not produce a full tile set", err, false)
	if details != "" {
		e.Details = details
	}
	return e
}

func NewPipelineDeadlineError(timeout time.Duration) *StandardError {
	return &StandardError{
		Code:      ErrCodePipelineDeadlineExceeded,
		Message:   "Analysis exceeded its deadline",
		Details:   fmt.Sprintf("timeout: %s", timeout),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     context.DeadlineExceeded,
	}
}

func NewInvalidInputError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidInput,
		Message:   "Invalid job input",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewConfigurationMissingError(setting string) *StandardError {
	return &StandardError{
		Code:      ErrCodeConfigurationMissing,
		Message:   "Required configuration is missing",
		Details:   fmt.Sprintf("setting: %s", setting),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewExternalServiceError(service string, err error) *StandardError {
	return newError(ErrCodeExternalServiceError, fmt.Sprintf("External service '%s' error", service), err, true)
}

func NewTimeoutError(service string, err error) *StandardError {
	return newError(ErrCodeTimeoutError, fmt.Sprintf("Service '%s' timeout", service), err, true)
}

// Standardizer is implemented by typed errors of other packages (the LLM
// adapter's transport and parse failures) that know their own code.
type Standardizer interface {
	Standard() *StandardError
}

// Classify normalizes any error into a StandardError. Deadline and cancel
// errors become TIMEOUT_ERROR, everything unknown becomes INTERNAL_ERROR.
func Classify(err error) *StandardError {
	if err == nil {
		return nil
	}

	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}

	var s Standardizer
	if stderrors.As(err, &s) {
		return s.Standard()
	}

	if stderrors.Is(err, context.DeadlineExceeded) || stderrors.Is(err, context.Canceled) {
		return NewTimeoutError("job", err)
	}

	return newError(ErrCodeInternalError, "Unexpected error", err, false)
}

// BPMNErrorMapping maps internal error codes to BPMN error codes.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeLLMTransportFailed:       "LLM_TRANSPORT_FAILED",
	ErrCodeLLMResponseInvalid:       "LLM_RESPONSE_INVALID",
	ErrCodeLLMTimeout:               "LLM_TIMEOUT",
	ErrCodeSearchFailed:             "SEARCH_FAILED",
	ErrCodeSearchTimeout:            "SEARCH_TIMEOUT",
	ErrCodeDecompositionDegraded:    "DECOMPOSITION_DEGRADED",
	ErrCodeSynthesisFailed:          "SYNTHESIS_FAILED",
	ErrCodePipelineDeadlineExceeded: "PIPELINE_DEADLINE_EXCEEDED",
	ErrCodeInvalidInput:             "INVALID_INPUT",
	ErrCodeConfigurationMissing:     "CONFIGURATION_MISSING",
}

// GetRetryCount returns the recommended retry count for a code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeLLMTransportFailed,
		ErrCodeSearchFailed,
		ErrCodeExternalServiceError:
		return 2

	case ErrCodeLLMTimeout,
		ErrCodeTimeoutError:
		return 1

	default:
		return 0
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	return &BPMNError{
		Code:      bpmnCode,
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
		Retries:   retries,
		ErrorVariables: map[string]interface{}{
			"originalErrorCode": string(stdErr.Code),
			"errorCategory":     GetErrorCategory(stdErr.Code),
			"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
		},
	}
}

func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "TIMEOUT") || strings.Contains(codeStr, "DEADLINE"):
		return "TIMEOUT"
	case strings.Contains(codeStr, "TRANSPORT") || strings.Contains(codeStr, "SEARCH_FAILED") || strings.Contains(codeStr, "EXTERNAL"):
		return "TRANSPORT"
	case strings.Contains(codeStr, "RESPONSE_INVALID") || strings.Contains(codeStr, "SYNTHESIS") || strings.Contains(codeStr, "DECOMPOSITION"):
		return "CONTRACT"
	case strings.Contains(codeStr, "INVALID") || strings.Contains(codeStr, "VALIDATION"):
		return "VALIDATION"
	case strings.Contains(codeStr, "CONFIGURATION"):
		return "CONFIGURATION"
	default:
		return "OTHER"
	}
}

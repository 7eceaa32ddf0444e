package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode classifies a failure at the dispatch boundary.
type ErrorCode string

const (
	// ErrorCodeUnknownTool indicates the requested tool name is not registered.
	ErrorCodeUnknownTool ErrorCode = "UNKNOWN_TOOL"

	// ErrorCodeInvalidArguments indicates the params failed the tool's validator.
	ErrorCodeInvalidArguments ErrorCode = "INVALID_ARGUMENTS"

	// ErrorCodeInvalidPipeline indicates a pipeline spec failed shape validation.
	ErrorCodeInvalidPipeline ErrorCode = "INVALID_PIPELINE"

	// ErrorCodePipelineStep wraps the failure of an individual pipeline step.
	ErrorCodePipelineStep ErrorCode = "PIPELINE_STEP_ERROR"

	// Pass-through codes from the tracker API client.
	ErrorCodeRateLimit      ErrorCode = "RATE_LIMIT"
	ErrorCodeAuthentication ErrorCode = "AUTHENTICATION_ERROR"
	ErrorCodeNetwork        ErrorCode = "NETWORK_ERROR"

	// ErrorCodeTool is the fallback for unclassified tool failures.
	ErrorCodeTool ErrorCode = "TOOL_ERROR"

	// ErrorCodeServer is the fallback for unclassified internal failures.
	ErrorCodeServer ErrorCode = "SERVER_ERROR"
)

// ToolError is the canonical failure raised by the dispatcher and pipeline
// engine. It carries a machine-readable code plus optional structured details.
type ToolError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details any       `json:"details,omitempty"`

	// Err is the underlying cause, if any. Not serialized.
	Err error `json:"-"`
}

// Error implements the error interface.
func (e *ToolError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the underlying cause for errors.Is/As.
func (e *ToolError) Unwrap() error {
	return e.Err
}

// Retryable reports whether the caller may safely retry the call.
// Only rate-limit and network failures qualify at the top-level boundary;
// pipeline step failures are never retryable.
func (e *ToolError) Retryable() bool {
	switch e.Code {
	case ErrorCodeRateLimit, ErrorCodeNetwork:
		return true
	default:
		return false
	}
}

// HTTPStatusCode maps the error code to the HTTP status returned by the adapter.
func (e *ToolError) HTTPStatusCode() int {
	switch e.Code {
	case ErrorCodeUnknownTool:
		return http.StatusNotFound
	case ErrorCodeInvalidArguments, ErrorCodeInvalidPipeline:
		return http.StatusBadRequest
	case ErrorCodeAuthentication:
		return http.StatusUnauthorized
	case ErrorCodeRateLimit:
		return http.StatusTooManyRequests
	case ErrorCodeNetwork:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// WithDetails attaches structured details to the error.
func (e *ToolError) WithDetails(details any) *ToolError {
	e.Details = details
	return e
}

// NewToolError creates a new canonical error.
func NewToolError(code ErrorCode, message string) *ToolError {
	return &ToolError{Code: code, Message: message}
}

// WrapToolError creates a canonical error wrapping an underlying cause.
func WrapToolError(code ErrorCode, message string, err error) *ToolError {
	return &ToolError{Code: code, Message: message, Err: err}
}

// Convenience constructors for common errors

// ErrUnknownTool creates an unknown-tool error.
func ErrUnknownTool(name string) *ToolError {
	return NewToolError(ErrorCodeUnknownTool, fmt.Sprintf("unknown tool: %s", name))
}

// ErrInvalidArguments creates an invalid-arguments error.
func ErrInvalidArguments(message string) *ToolError {
	return NewToolError(ErrorCodeInvalidArguments, message)
}

// ErrInvalidPipeline creates an invalid-pipeline error.
func ErrInvalidPipeline(message string) *ToolError {
	return NewToolError(ErrorCodeInvalidPipeline, message)
}

// NormalizedError is the uniform structured error shape returned to callers
// regardless of the failure's origin.
type NormalizedError struct {
	Code        string   `json:"code"`
	Message     string   `json:"message"`
	Details     any      `json:"details,omitempty"`
	Retryable   bool     `json:"retryable"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// suggestionTable maps error codes to remediation hints. Built once at process
// start; treated as immutable.
var suggestionTable = map[ErrorCode][]string{
	ErrorCodeRateLimit: {
		"wait and retry later",
		"reduce request frequency",
	},
	ErrorCodeAuthentication: {
		"verify the configured API key is valid",
		"check that the key has access to the requested workspace",
	},
	ErrorCodeNetwork: {
		"check network connectivity to the tracker API",
		"retry the request",
	},
}

// defaultSuggestions applies when no code-specific suggestions exist.
var defaultSuggestions = []string{
	"check the request parameters",
	"contact the gateway operator if the problem persists",
}

// SuggestionsFor returns the fixed remediation hints for a code.
func SuggestionsFor(code ErrorCode) []string {
	if s, ok := suggestionTable[code]; ok {
		return s
	}
	return defaultSuggestions
}

// Normalize converts any error to the uniform wire shape. A *ToolError keeps
// its code, details, and retryable classification; anything else becomes a
// SERVER_ERROR.
func Normalize(err error) *NormalizedError {
	var toolErr *ToolError
	if errors.As(err, &toolErr) {
		return &NormalizedError{
			Code:        string(toolErr.Code),
			Message:     toolErr.Message,
			Details:     toolErr.Details,
			Retryable:   toolErr.Retryable(),
			Suggestions: SuggestionsFor(toolErr.Code),
		}
	}
	return &NormalizedError{
		Code:        string(ErrorCodeServer),
		Message:     err.Error(),
		Retryable:   false,
		Suggestions: SuggestionsFor(ErrorCodeServer),
	}
}

// AsToolError converts any error to a *ToolError, wrapping unclassified
// failures as SERVER_ERROR.
func AsToolError(err error) *ToolError {
	var toolErr *ToolError
	if errors.As(err, &toolErr) {
		return toolErr
	}
	return WrapToolError(ErrorCodeServer, err.Error(), err)
}

// Package domain provides the canonical types shared by the dispatcher,
// pipeline engine, and metrics collector.
package domain

import "time"

// Params is the opaque parameter payload of a tool invocation, decoded from JSON.
type Params map[string]any

// ToolResult is the opaque value returned by the tracker API client.
// The gateway passes it through unexamined except where a pipeline step's
// condition or transform inspects it.
type ToolResult any

// ToolCall represents one invocation request. Immutable once constructed.
type ToolCall struct {
	Name   string `json:"name"`
	Params Params `json:"params"`
}

// ExecutionContext carries per-run trace metadata through a pipeline execution.
// Timeout and RetryCount are carried for traceability; the engine does not
// enforce them unless explicitly configured to.
type ExecutionContext struct {
	RequestID     string        `json:"requestId"`
	Timestamp     time.Time     `json:"timestamp"`
	Timeout       time.Duration `json:"timeout,omitempty"`
	RetryCount    int           `json:"retryCount,omitempty"`
	ParentContext string        `json:"parentContext,omitempty"`
}

// Metric records the outcome of a single tool invocation.
// Created once per completed call, never mutated afterwards.
type Metric struct {
	ToolName        string        `json:"toolName"`
	RequestDuration time.Duration `json:"requestDuration"`
	Success         bool          `json:"success"`
	ErrorType       string        `json:"errorType,omitempty"`
	RetryCount      int           `json:"retryCount"`
	Timestamp       time.Time     `json:"timestamp"`
}

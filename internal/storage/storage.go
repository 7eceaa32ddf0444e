// Package storage defines the invocation audit store consumed by the
// dispatcher. Implementations live in the memory and sqlite subpackages.
package storage

import (
	"context"
	"time"
)

// InvocationRecord is one audited tool invocation.
type InvocationRecord struct {
	ID        string
	RequestID string
	ToolName  string
	Params    string // JSON-encoded params as received
	Success   bool
	ErrorCode string
	Duration  time.Duration
	CreatedAt time.Time
}

// ListOptions filters invocation listings.
type ListOptions struct {
	ToolName string
	Limit    int
}

// InvocationStore persists audit records for dispatched tool calls.
type InvocationStore interface {
	RecordInvocation(ctx context.Context, rec *InvocationRecord) error
	ListInvocations(ctx context.Context, opts ListOptions) ([]*InvocationRecord, error)
	Close() error
}

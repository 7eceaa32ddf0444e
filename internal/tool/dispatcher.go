package tool

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/trackops/issuegate/internal/domain"
	"github.com/trackops/issuegate/internal/metrics"
	"github.com/trackops/issuegate/internal/storage"
)

// Dispatcher executes registered tools. It validates arguments, invokes the
// tool, normalizes failures into *domain.ToolError, and records exactly one
// metric per invocation. The dispatcher performs no retries itself, so the
// recorded retry count is always zero.
type Dispatcher struct {
	registry  *Registry
	collector *metrics.Collector
	store     storage.InvocationStore // optional
	logger    *slog.Logger
}

// NewDispatcher creates a dispatcher. store may be nil to disable auditing.
func NewDispatcher(registry *Registry, collector *metrics.Collector, store storage.InvocationStore, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		registry:  registry,
		collector: collector,
		store:     store,
		logger:    logger,
	}
}

// Registry returns the registry backing this dispatcher.
func (d *Dispatcher) Registry() *Registry {
	return d.registry
}

// ExecuteTool runs one tool call to completion.
//
// Failure modes: UNKNOWN_TOOL for unregistered names, INVALID_ARGUMENTS when
// the tool's validator rejects params, and the client's code (falling back to
// TOOL_ERROR) when the underlying API call fails. All paths, success or
// failure, record one metric whose duration spans validation through result.
func (d *Dispatcher) ExecuteTool(ctx context.Context, name string, params domain.Params) (domain.ToolResult, error) {
	start := time.Now()

	t, ok := d.registry.Get(name)
	if !ok {
		err := domain.ErrUnknownTool(name)
		d.finish(ctx, name, params, start, err)
		return nil, err
	}

	if err := t.Validate(params); err != nil {
		toolErr := domain.AsToolError(err)
		if toolErr.Code == domain.ErrorCodeServer {
			toolErr = domain.WrapToolError(domain.ErrorCodeInvalidArguments, err.Error(), err)
		}
		d.finish(ctx, name, params, start, toolErr)
		return nil, toolErr
	}

	result, err := t.Invoke(ctx, params)
	if err != nil {
		toolErr := domain.AsToolError(err)
		if toolErr.Code == domain.ErrorCodeServer {
			// The client did not supply a code.
			toolErr = domain.WrapToolError(domain.ErrorCodeTool, err.Error(), err)
		}
		d.finish(ctx, name, params, start, toolErr)
		return nil, toolErr
	}

	d.finish(ctx, name, params, start, nil)
	return result, nil
}

// finish records the metric and audit row for one completed invocation.
func (d *Dispatcher) finish(ctx context.Context, name string, params domain.Params, start time.Time, callErr *domain.ToolError) {
	duration := time.Since(start)

	m := domain.Metric{
		ToolName:        name,
		RequestDuration: duration,
		Success:         callErr == nil,
		RetryCount:      0,
	}
	if callErr != nil {
		m.ErrorType = string(callErr.Code)
	}
	d.collector.Record(m)

	if callErr != nil {
		d.logger.LogAttrs(ctx, slog.LevelWarn, "tool call failed",
			slog.String("tool", name),
			slog.String("code", string(callErr.Code)),
			slog.Duration("duration", duration),
		)
	} else {
		d.logger.LogAttrs(ctx, slog.LevelDebug, "tool call completed",
			slog.String("tool", name),
			slog.Duration("duration", duration),
		)
	}

	if d.store == nil {
		return
	}

	rec := &storage.InvocationRecord{
		ID:        uuid.New().String(),
		RequestID: domain.RequestIDFromContext(ctx),
		ToolName:  name,
		Success:   callErr == nil,
		Duration:  duration,
		CreatedAt: time.Now(),
	}
	if callErr != nil {
		rec.ErrorCode = string(callErr.Code)
	}
	if raw, err := json.Marshal(params); err == nil {
		rec.Params = string(raw)
	}
	if err := d.store.RecordInvocation(ctx, rec); err != nil {
		d.logger.LogAttrs(ctx, slog.LevelWarn, "audit record failed",
			slog.String("tool", name),
			slog.String("error", err.Error()),
		)
	}
}

package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/trackops/issuegate/internal/domain"
)

// ToolExecutor dispatches a single tool call. Implemented by tool.Dispatcher.
type ToolExecutor interface {
	ExecuteTool(ctx context.Context, name string, params domain.Params) (domain.ToolResult, error)
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithStepTimeout bounds each step's dispatch with a per-step deadline.
// Zero disables enforcement, which is the default: the execution context's
// timeout field is carried for traceability only.
func WithStepTimeout(d time.Duration) EngineOption {
	return func(e *Engine) {
		e.stepTimeout = d
	}
}

// WithLogger sets the engine's logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = logger
	}
}

// Engine executes pipelines sequentially through a ToolExecutor.
type Engine struct {
	executor    ToolExecutor
	logger      *slog.Logger
	stepTimeout time.Duration
}

// NewEngine creates a pipeline engine.
func NewEngine(executor ToolExecutor, opts ...EngineOption) *Engine {
	e := &Engine{
		executor: executor,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ExecutePipeline runs a pipeline to completion and returns the results of
// the executed steps in declaration order. Skipped steps contribute no
// result, so the returned slice may be shorter than the step list.
//
// The run aborts on the first failing step: accumulated results are discarded
// and the step's failure is wrapped as PIPELINE_STEP_ERROR.
func (e *Engine) ExecutePipeline(ctx context.Context, spec *Spec) ([]domain.ToolResult, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	ec := buildContext(spec.Context)
	ctx = domain.ContextWithRequestID(ctx, ec.RequestID)

	e.logger.LogAttrs(ctx, slog.LevelInfo, "pipeline started",
		slog.String("request_id", ec.RequestID),
		slog.Int("steps", len(spec.Steps)),
	)

	results := make([]domain.ToolResult, 0, len(spec.Steps))
	var prevResult domain.ToolResult

	for i, step := range spec.Steps {
		if step.Condition != nil && !step.Condition.Evaluate(prevResult) {
			e.logger.LogAttrs(ctx, slog.LevelDebug, "pipeline step skipped",
				slog.String("request_id", ec.RequestID),
				slog.Int("step", i),
				slog.String("tool", step.ToolName),
			)
			continue
		}

		params := step.Params
		if step.Transform != nil {
			params = step.Transform.Apply(prevResult)
		}

		result, err := e.dispatch(ctx, step.ToolName, params)
		if err != nil {
			e.logger.LogAttrs(ctx, slog.LevelWarn, "pipeline aborted",
				slog.String("request_id", ec.RequestID),
				slog.Int("step", i),
				slog.String("tool", step.ToolName),
				slog.String("error", err.Error()),
			)
			// Preserve the underlying message; retryable is always false for
			// PIPELINE_STEP_ERROR regardless of the cause.
			cause := domain.AsToolError(err)
			return nil, domain.WrapToolError(domain.ErrorCodePipelineStep, cause.Message, err).
				WithDetails(map[string]any{
					"step":     i,
					"toolName": step.ToolName,
					"cause":    string(cause.Code),
				})
		}

		results = append(results, result)
		prevResult = result
	}

	e.logger.LogAttrs(ctx, slog.LevelInfo, "pipeline completed",
		slog.String("request_id", ec.RequestID),
		slog.Int("results", len(results)),
	)
	return results, nil
}

func (e *Engine) dispatch(ctx context.Context, name string, params domain.Params) (domain.ToolResult, error) {
	if e.stepTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.stepTimeout)
		defer cancel()
	}
	return e.executor.ExecuteTool(ctx, name, params)
}

// buildContext constructs the effective execution context: generated defaults
// overlaid by any explicitly supplied fields.
func buildContext(spec *ContextSpec) domain.ExecutionContext {
	ec := domain.ExecutionContext{
		RequestID: uuid.New().String(),
		Timestamp: time.Now(),
	}
	if spec == nil {
		return ec
	}
	if spec.RequestID != "" {
		ec.RequestID = spec.RequestID
	}
	if spec.Timestamp != nil {
		ec.Timestamp = *spec.Timestamp
	}
	if spec.Timeout != "" {
		// Validated earlier; ignore the error here.
		if d, err := time.ParseDuration(spec.Timeout); err == nil {
			ec.Timeout = d
		}
	}
	ec.RetryCount = spec.RetryCount
	ec.ParentContext = spec.ParentContext
	return ec
}

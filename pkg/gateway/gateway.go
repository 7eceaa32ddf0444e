// Package gateway provides the public API for embedding the issue-tracker
// tool gateway. This is the stable API for external consumers; the HTTP
// adapter in internal/server is one such consumer wired up by cmd/issuegate.
package gateway

import (
	"context"
	"log/slog"
	"time"

	"github.com/trackops/issuegate/internal/domain"
	"github.com/trackops/issuegate/internal/metrics"
	"github.com/trackops/issuegate/internal/pipeline"
	"github.com/trackops/issuegate/internal/storage"
	"github.com/trackops/issuegate/internal/tool"
)

// Option is a functional option for configuring a Gateway.
type Option func(*builder)

type builder struct {
	tools           []tool.Tool
	store           storage.InvocationStore
	logger          *slog.Logger
	metricsCapacity int
	stepTimeout     time.Duration
}

// WithTools registers the given tools. May be passed multiple times.
func WithTools(tools ...tool.Tool) Option {
	return func(b *builder) {
		b.tools = append(b.tools, tools...)
	}
}

// WithInvocationStore enables audit recording of dispatched calls.
func WithInvocationStore(store storage.InvocationStore) Option {
	return func(b *builder) {
		b.store = store
	}
}

// WithLogger sets the logger used by the dispatcher and engine.
func WithLogger(logger *slog.Logger) Option {
	return func(b *builder) {
		b.logger = logger
	}
}

// WithMetricsCapacity bounds the metrics log. Defaults to 1000 entries.
func WithMetricsCapacity(n int) Option {
	return func(b *builder) {
		b.metricsCapacity = n
	}
}

// WithStepTimeout bounds each pipeline step's dispatch. Zero (the default)
// disables enforcement.
func WithStepTimeout(d time.Duration) Option {
	return func(b *builder) {
		b.stepTimeout = d
	}
}

// Gateway bundles the dispatcher, pipeline engine, and metrics collector
// behind the two call-protocol entry points.
type Gateway struct {
	registry   *tool.Registry
	dispatcher *tool.Dispatcher
	engine     *pipeline.Engine
	collector  *metrics.Collector
}

// New creates a gateway with the given options.
func New(opts ...Option) (*Gateway, error) {
	b := &builder{logger: slog.Default()}
	for _, opt := range opts {
		opt(b)
	}

	registry := tool.NewRegistry()
	for _, t := range b.tools {
		if err := registry.Register(t); err != nil {
			return nil, err
		}
	}

	collector := metrics.NewCollector(b.metricsCapacity)
	dispatcher := tool.NewDispatcher(registry, collector, b.store, b.logger)
	engine := pipeline.NewEngine(dispatcher,
		pipeline.WithLogger(b.logger),
		pipeline.WithStepTimeout(b.stepTimeout),
	)

	return &Gateway{
		registry:   registry,
		dispatcher: dispatcher,
		engine:     engine,
		collector:  collector,
	}, nil
}

// ExecuteTool runs a single tool call.
func (g *Gateway) ExecuteTool(ctx context.Context, name string, params domain.Params) (domain.ToolResult, error) {
	return g.dispatcher.ExecuteTool(ctx, name, params)
}

// ExecutePipeline runs a pipeline to completion.
func (g *Gateway) ExecutePipeline(ctx context.Context, spec *pipeline.Spec) ([]domain.ToolResult, error) {
	return g.engine.ExecutePipeline(ctx, spec)
}

// Dispatcher exposes the underlying dispatcher for protocol adapters.
func (g *Gateway) Dispatcher() *tool.Dispatcher { return g.dispatcher }

// Engine exposes the underlying pipeline engine for protocol adapters.
func (g *Gateway) Engine() *pipeline.Engine { return g.engine }

// Metrics exposes the metrics collector for reporting and adapters.
func (g *Gateway) Metrics() *metrics.Collector { return g.collector }

// ToolNames returns the registered tool names, sorted.
func (g *Gateway) ToolNames() []string { return g.registry.Names() }

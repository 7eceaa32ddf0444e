package tool

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/trackops/issuegate/internal/domain"
	"github.com/trackops/issuegate/internal/metrics"
	"github.com/trackops/issuegate/internal/storage"
	"github.com/trackops/issuegate/internal/storage/memory"
)

// fakeTool is a test helper with configurable validation and invocation.
type fakeTool struct {
	name        string
	validateErr error
	result      domain.ToolResult
	invokeErr   error
	invocations int
}

func (f *fakeTool) Name() string { return f.name }

func (f *fakeTool) Validate(params domain.Params) error { return f.validateErr }

func (f *fakeTool) Invoke(ctx context.Context, params domain.Params) (domain.ToolResult, error) {
	f.invocations++
	if f.invokeErr != nil {
		return nil, f.invokeErr
	}
	return f.result, nil
}

func newTestDispatcher(t *testing.T, tools ...Tool) (*Dispatcher, *metrics.Collector, *memory.Store) {
	t.Helper()
	registry := NewRegistry()
	for _, tl := range tools {
		if err := registry.Register(tl); err != nil {
			t.Fatalf("register: %v", err)
		}
	}
	collector := metrics.NewCollector(100)
	store := memory.New()
	return NewDispatcher(registry, collector, store, slog.Default()), collector, store
}

func TestDispatcher_Success(t *testing.T) {
	ft := &fakeTool{name: "listIssues", result: map[string]any{"nodes": []any{}}}
	d, collector, store := newTestDispatcher(t, ft)

	result, err := d.ExecuteTool(context.Background(), "listIssues", domain.Params{"teamId": "T1", "first": 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	nodes, ok := result.(map[string]any)
	if !ok || len(nodes["nodes"].([]any)) != 0 {
		t.Errorf("unexpected result: %v", result)
	}

	ms := collector.Metrics()
	if len(ms) != 1 {
		t.Fatalf("expected exactly 1 metric, got %d", len(ms))
	}
	m := ms[0]
	if m.ToolName != "listIssues" || !m.Success || m.ErrorType != "" || m.RetryCount != 0 {
		t.Errorf("unexpected metric: %+v", m)
	}

	recs, _ := store.ListInvocations(context.Background(), storage.ListOptions{})
	if len(recs) != 1 || !recs[0].Success {
		t.Errorf("expected one successful audit record, got %+v", recs)
	}
}

func TestDispatcher_UnknownTool(t *testing.T) {
	d, collector, _ := newTestDispatcher(t)

	_, err := d.ExecuteTool(context.Background(), "nope", domain.Params{})
	var toolErr *domain.ToolError
	if !errors.As(err, &toolErr) || toolErr.Code != domain.ErrorCodeUnknownTool {
		t.Fatalf("expected UNKNOWN_TOOL, got %v", err)
	}

	ms := collector.Metrics()
	if len(ms) != 1 {
		t.Fatalf("expected exactly 1 metric, got %d", len(ms))
	}
	if ms[0].Success || ms[0].ErrorType != "UNKNOWN_TOOL" {
		t.Errorf("unexpected metric: %+v", ms[0])
	}
}

func TestDispatcher_InvalidArguments(t *testing.T) {
	ft := &fakeTool{
		name:        "createIssue",
		validateErr: domain.ErrInvalidArguments("missing required parameter: title"),
	}
	d, collector, _ := newTestDispatcher(t, ft)

	_, err := d.ExecuteTool(context.Background(), "createIssue", domain.Params{"teamId": "T1"})
	var toolErr *domain.ToolError
	if !errors.As(err, &toolErr) || toolErr.Code != domain.ErrorCodeInvalidArguments {
		t.Fatalf("expected INVALID_ARGUMENTS, got %v", err)
	}
	if ft.invocations != 0 {
		t.Error("tool must not be invoked when validation fails")
	}

	ms := collector.Metrics()
	if len(ms) != 1 || ms[0].Success || ms[0].ErrorType != "INVALID_ARGUMENTS" {
		t.Errorf("expected one failed INVALID_ARGUMENTS metric, got %+v", ms)
	}
}

func TestDispatcher_PlainValidationErrorBecomesInvalidArguments(t *testing.T) {
	ft := &fakeTool{name: "x", validateErr: errors.New("bad shape")}
	d, _, _ := newTestDispatcher(t, ft)

	_, err := d.ExecuteTool(context.Background(), "x", nil)
	var toolErr *domain.ToolError
	if !errors.As(err, &toolErr) || toolErr.Code != domain.ErrorCodeInvalidArguments {
		t.Fatalf("expected INVALID_ARGUMENTS, got %v", err)
	}
}

func TestDispatcher_ClientCodePassThrough(t *testing.T) {
	ft := &fakeTool{
		name:      "listIssues",
		invokeErr: domain.NewToolError(domain.ErrorCodeRateLimit, "tracker API rate limit exceeded"),
	}
	d, collector, _ := newTestDispatcher(t, ft)

	_, err := d.ExecuteTool(context.Background(), "listIssues", domain.Params{})
	var toolErr *domain.ToolError
	if !errors.As(err, &toolErr) || toolErr.Code != domain.ErrorCodeRateLimit {
		t.Fatalf("expected RATE_LIMIT pass-through, got %v", err)
	}
	if !toolErr.Retryable() {
		t.Error("RATE_LIMIT must be retryable at the top-level boundary")
	}

	ms := collector.Metrics()
	if len(ms) != 1 || ms[0].ErrorType != "RATE_LIMIT" {
		t.Errorf("unexpected metric: %+v", ms)
	}
}

func TestDispatcher_UncodedClientErrorBecomesToolError(t *testing.T) {
	ft := &fakeTool{name: "x", invokeErr: errors.New("boom")}
	d, collector, _ := newTestDispatcher(t, ft)

	_, err := d.ExecuteTool(context.Background(), "x", domain.Params{})
	var toolErr *domain.ToolError
	if !errors.As(err, &toolErr) || toolErr.Code != domain.ErrorCodeTool {
		t.Fatalf("expected TOOL_ERROR fallback, got %v", err)
	}
	if toolErr.Retryable() {
		t.Error("TOOL_ERROR must not be retryable")
	}
	if ms := collector.Metrics(); len(ms) != 1 || ms[0].ErrorType != "TOOL_ERROR" {
		t.Errorf("unexpected metric: %+v", ms)
	}
}

func TestDispatcher_RecordsDuration(t *testing.T) {
	ft := &fakeTool{name: "slow", result: "ok"}
	d, collector, _ := newTestDispatcher(t, ft)

	if _, err := d.ExecuteTool(context.Background(), "slow", domain.Params{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	m := collector.Metrics()[0]
	if m.RequestDuration < 0 || m.RequestDuration > time.Minute {
		t.Errorf("implausible duration: %v", m.RequestDuration)
	}
}

func TestDispatcher_NilStore(t *testing.T) {
	registry := NewRegistry()
	registry.MustRegister(&fakeTool{name: "x", result: "ok"})
	d := NewDispatcher(registry, metrics.NewCollector(10), nil, slog.Default())

	if _, err := d.ExecuteTool(context.Background(), "x", domain.Params{}); err != nil {
		t.Fatalf("unexpected error with nil store: %v", err)
	}
}

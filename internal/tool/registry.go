// Package tool provides the tool registry and the dispatcher that executes
// registered tools with argument validation, error normalization, and metrics.
package tool

import (
	"context"
	"fmt"
	"sort"

	"github.com/trackops/issuegate/internal/domain"
)

// Tool is a single named operation backed by one tracker API action.
type Tool interface {
	// Name returns the tool's registered identifier.
	Name() string

	// Validate checks params before invocation. A non-nil error means the
	// params do not conform to the tool's contract.
	Validate(params domain.Params) error

	// Invoke performs the underlying API call.
	Invoke(ctx context.Context, params domain.Params) (domain.ToolResult, error)
}

// Registry keeps the mapping between tool names and implementations.
// It is populated at process start and treated as immutable afterwards.
type Registry struct {
	tools map[string]Tool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Tool)}
}

// Register inserts a tool when its name is not in use.
func (r *Registry) Register(t Tool) error {
	if t == nil {
		return fmt.Errorf("tool is nil")
	}
	name := t.Name()
	if name == "" {
		return fmt.Errorf("tool name is empty")
	}
	if _, exists := r.tools[name]; exists {
		return fmt.Errorf("tool %s already registered", name)
	}
	r.tools[name] = t
	return nil
}

// MustRegister registers a tool and panics on conflict. Intended for wiring
// at startup.
func (r *Registry) MustRegister(t Tool) {
	if err := r.Register(t); err != nil {
		panic(err)
	}
}

// Get fetches a tool by name.
func (r *Registry) Get(name string) (Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// Names returns the registered tool names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

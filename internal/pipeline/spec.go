package pipeline

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/trackops/issuegate/internal/domain"
)

// ConditionKind selects one of the closed set of step-condition variants.
type ConditionKind string

const (
	// ConditionAlways evaluates true regardless of the previous result.
	ConditionAlways ConditionKind = "always"

	// ConditionNonEmpty evaluates true when the addressed field of the
	// previous result is a non-empty list, map, or string.
	ConditionNonEmpty ConditionKind = "nonEmpty"

	// ConditionFieldEquals evaluates true when the addressed field of the
	// previous result equals the given value.
	ConditionFieldEquals ConditionKind = "fieldEquals"
)

// Condition filters a step based on the previous step's result.
type Condition struct {
	Kind  ConditionKind `json:"kind"`
	Field string        `json:"field,omitempty"`
	Value any           `json:"value,omitempty"`
}

// TransformKind selects one of the closed set of parameter-transform variants.
type TransformKind string

const (
	// TransformFieldMap builds params from literal values plus fields
	// extracted from the previous result.
	TransformFieldMap TransformKind = "fieldMap"
)

// Transform derives a step's effective params from the previous result.
// When absent, the step's declared params are used verbatim.
type Transform struct {
	Kind TransformKind `json:"kind"`

	// Literal values copied into the effective params as-is.
	Literal domain.Params `json:"literal,omitempty"`

	// Fields maps target parameter names to dot-separated paths into the
	// previous result. Missing paths are silently omitted.
	Fields map[string]string `json:"fields,omitempty"`
}

// Step is one entry of a pipeline.
type Step struct {
	ToolName  string        `json:"toolName"`
	Params    domain.Params `json:"params,omitempty"`
	Condition *Condition    `json:"condition,omitempty"`
	Transform *Transform    `json:"transform,omitempty"`
}

// ContextSpec is the caller-supplied portion of the execution context.
// Explicit fields overlay the generated defaults.
type ContextSpec struct {
	RequestID     string     `json:"requestId,omitempty"`
	Timestamp     *time.Time `json:"timestamp,omitempty"`
	Timeout       string     `json:"timeout,omitempty"` // duration string like "30s"
	RetryCount    int        `json:"retryCount,omitempty"`
	ParentContext string     `json:"parentContext,omitempty"`
}

// Spec is a complete pipeline definition as received from the caller.
type Spec struct {
	Steps   []Step       `json:"steps"`
	Context *ContextSpec `json:"context,omitempty"`
}

// Validate checks the spec's shape. It runs before any step executes and
// before any metric is recorded; all failures are INVALID_PIPELINE errors.
func (s *Spec) Validate() error {
	if s == nil {
		return domain.ErrInvalidPipeline("pipeline spec is required")
	}
	if s.Steps == nil {
		return domain.ErrInvalidPipeline("pipeline steps list is required")
	}
	for i, step := range s.Steps {
		if step.ToolName == "" {
			return domain.ErrInvalidPipeline(fmt.Sprintf("step %d: toolName is required", i))
		}
		if step.Condition != nil {
			if err := step.Condition.validate(i); err != nil {
				return err
			}
		}
		if step.Transform != nil {
			if err := step.Transform.validate(i); err != nil {
				return err
			}
		}
	}
	if s.Context != nil && s.Context.Timeout != "" {
		if _, err := time.ParseDuration(s.Context.Timeout); err != nil {
			return domain.ErrInvalidPipeline(fmt.Sprintf("context.timeout: %v", err))
		}
	}
	if s.Context != nil && s.Context.RetryCount < 0 {
		return domain.ErrInvalidPipeline("context.retryCount must not be negative")
	}
	return nil
}

func (c *Condition) validate(step int) error {
	switch c.Kind {
	case ConditionAlways:
		return nil
	case ConditionNonEmpty:
		if c.Field == "" {
			return domain.ErrInvalidPipeline(fmt.Sprintf("step %d: nonEmpty condition requires a field", step))
		}
		return nil
	case ConditionFieldEquals:
		if c.Field == "" {
			return domain.ErrInvalidPipeline(fmt.Sprintf("step %d: fieldEquals condition requires a field", step))
		}
		return nil
	default:
		return domain.ErrInvalidPipeline(fmt.Sprintf("step %d: unknown condition kind %q", step, c.Kind))
	}
}

func (t *Transform) validate(step int) error {
	switch t.Kind {
	case TransformFieldMap:
		return nil
	default:
		return domain.ErrInvalidPipeline(fmt.Sprintf("step %d: unknown transform kind %q", step, t.Kind))
	}
}

// Evaluate applies the condition to the previous step's result.
func (c *Condition) Evaluate(prev domain.ToolResult) bool {
	switch c.Kind {
	case ConditionAlways:
		return true
	case ConditionNonEmpty:
		v, ok := lookupPath(prev, c.Field)
		if !ok {
			return false
		}
		switch x := v.(type) {
		case []any:
			return len(x) > 0
		case map[string]any:
			return len(x) > 0
		case string:
			return x != ""
		case nil:
			return false
		default:
			return true
		}
	case ConditionFieldEquals:
		v, ok := lookupPath(prev, c.Field)
		if !ok {
			return false
		}
		return looseEqual(v, c.Value)
	default:
		return false
	}
}

// Apply computes the effective params for a step from the previous result.
func (t *Transform) Apply(prev domain.ToolResult) domain.Params {
	params := make(domain.Params, len(t.Literal)+len(t.Fields))
	for k, v := range t.Literal {
		params[k] = v
	}
	for target, path := range t.Fields {
		if v, ok := lookupPath(prev, path); ok {
			params[target] = v
		}
	}
	return params
}

// lookupPath resolves a dot-separated path into nested maps and slices.
// Numeric segments index into slices.
func lookupPath(v any, path string) (any, bool) {
	cur := v
	for _, seg := range strings.Split(path, ".") {
		switch node := cur.(type) {
		case map[string]any:
			next, ok := node[seg]
			if !ok {
				return nil, false
			}
			cur = next
		case domain.Params:
			next, ok := node[seg]
			if !ok {
				return nil, false
			}
			cur = next
		case []any:
			idx, err := strconv.Atoi(seg)
			if err != nil || idx < 0 || idx >= len(node) {
				return nil, false
			}
			cur = node[idx]
		default:
			return nil, false
		}
	}
	return cur, true
}

// looseEqual compares values with JSON-number tolerance: all numeric types
// compare by value so a decoded float64(3) equals int(3).
func looseEqual(a, b any) bool {
	if af, ok := asFloat(a); ok {
		if bf, ok := asFloat(b); ok {
			return af == bf
		}
		return false
	}
	return a == b
}

func asFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	default:
		return 0, false
	}
}

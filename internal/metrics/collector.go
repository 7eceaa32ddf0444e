// Package metrics provides a bounded in-memory log of per-call outcomes.
package metrics

import (
	"sync"
	"time"

	"github.com/trackops/issuegate/internal/domain"
)

// DefaultCapacity is the number of metrics retained when none is configured.
const DefaultCapacity = 1000

// Collector is a sliding-window log of tool invocation outcomes.
// The dispatcher is the single writer; readers receive snapshots and can
// never mutate internal state. Safe for concurrent use.
type Collector struct {
	mu       sync.RWMutex
	log      []domain.Metric
	capacity int
}

// NewCollector creates a collector retaining at most capacity entries.
// A capacity <= 0 falls back to DefaultCapacity.
func NewCollector(capacity int) *Collector {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Collector{capacity: capacity}
}

// Record stamps the metric with the current time and appends it to the log.
// When the log exceeds capacity the oldest entries are discarded.
func (c *Collector) Record(m domain.Metric) {
	m.Timestamp = time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.log = append(c.log, m)
	if len(c.log) > c.capacity {
		// Suffix-keep: drop the oldest, never the newest.
		c.log = c.log[len(c.log)-c.capacity:]
	}
}

// Metrics returns a copy of the current log in insertion order.
func (c *Collector) Metrics() []domain.Metric {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]domain.Metric, len(c.log))
	copy(out, c.log)
	return out
}

// MetricsForTool returns the entries for one tool name, preserving order.
func (c *Collector) MetricsForTool(name string) []domain.Metric {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []domain.Metric
	for _, m := range c.log {
		if m.ToolName == name {
			out = append(out, m)
		}
	}
	return out
}

// ErrorRate returns the fraction of failed calls across the whole log,
// or 0 when the log is empty.
func (c *Collector) ErrorRate() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return errorRate(c.log)
}

// ErrorRateForTool returns the fraction of failed calls for one tool,
// or 0 when no entries match.
func (c *Collector) ErrorRateForTool(name string) float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return errorRate(filterByTool(c.log, name))
}

// AverageRequestDuration returns the mean request duration across the whole
// log, or 0 when the log is empty.
func (c *Collector) AverageRequestDuration() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return averageDuration(c.log)
}

// AverageRequestDurationForTool returns the mean request duration for one
// tool, or 0 when no entries match.
func (c *Collector) AverageRequestDurationForTool(name string) time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return averageDuration(filterByTool(c.log, name))
}

// ToolNames returns the distinct tool names present in the log, in first-seen
// order.
func (c *Collector) ToolNames() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	seen := make(map[string]struct{})
	var names []string
	for _, m := range c.log {
		if _, ok := seen[m.ToolName]; !ok {
			seen[m.ToolName] = struct{}{}
			names = append(names, m.ToolName)
		}
	}
	return names
}

// Reset clears the log.
func (c *Collector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.log = nil
}

func filterByTool(log []domain.Metric, name string) []domain.Metric {
	var out []domain.Metric
	for _, m := range log {
		if m.ToolName == name {
			out = append(out, m)
		}
	}
	return out
}

func errorRate(log []domain.Metric) float64 {
	if len(log) == 0 {
		return 0
	}
	failed := 0
	for _, m := range log {
		if !m.Success {
			failed++
		}
	}
	return float64(failed) / float64(len(log))
}

func averageDuration(log []domain.Metric) time.Duration {
	if len(log) == 0 {
		return 0
	}
	var total time.Duration
	for _, m := range log {
		total += m.RequestDuration
	}
	return total / time.Duration(len(log))
}

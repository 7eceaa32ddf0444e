// Package memory provides an in-memory InvocationStore, used when no durable
// audit trail is configured and in tests.
package memory

import (
	"context"
	"sync"

	"github.com/trackops/issuegate/internal/storage"
)

// Store is an in-memory implementation of storage.InvocationStore.
type Store struct {
	mu      sync.RWMutex
	records []*storage.InvocationRecord
}

var _ storage.InvocationStore = (*Store)(nil)

// New creates a new in-memory store.
func New() *Store {
	return &Store{}
}

func (s *Store) RecordInvocation(ctx context.Context, rec *storage.InvocationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *rec
	s.records = append(s.records, &cp)
	return nil
}

func (s *Store) ListInvocations(ctx context.Context, opts storage.ListOptions) ([]*storage.InvocationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*storage.InvocationRecord
	for _, rec := range s.records {
		if opts.ToolName != "" && rec.ToolName != opts.ToolName {
			continue
		}
		cp := *rec
		out = append(out, &cp)
		if opts.Limit > 0 && len(out) >= opts.Limit {
			break
		}
	}
	return out, nil
}

func (s *Store) Close() error {
	return nil
}

// internal/store/batch_store.go
package store

import (
	"sync"

	"github.com/google/uuid"

	"github.com/unclebandit/mailpanel-backend/internal/batch"
	appErrors "github.com/unclebandit/mailpanel-backend/internal/errors"
)

// BatchStore keeps the live campaign batches in memory for the lifetime of
// the view that imported them. The original panel runs on a single UI event
// loop; here each batch is kept single-writer by running every mutation
// under the entry lock, and the dispatching flag refuses re-entrant
// dispatches the way the UI disables its send button.
type BatchStore struct {
	mu      sync.Mutex
	entries map[string]*entry
}

type entry struct {
	mu          sync.Mutex
	batch       *batch.Batch
	dispatching bool
}

// NewBatchStore creates an empty store
func NewBatchStore() *BatchStore {
	return &BatchStore{
		entries: make(map[string]*entry),
	}
}

// Put registers a freshly imported batch and returns its ID.
func (s *BatchStore) Put(b *batch.Batch) string {
	id := uuid.NewString()
	s.mu.Lock()
	s.entries[id] = &entry{batch: b}
	s.mu.Unlock()
	return id
}

// Delete discards a batch when its view unmounts. Nothing is persisted.
func (s *BatchStore) Delete(id string) {
	s.mu.Lock()
	delete(s.entries, id)
	s.mu.Unlock()
}

func (s *BatchStore) lookup(id string) (*entry, error) {
	s.mu.Lock()
	e, ok := s.entries[id]
	s.mu.Unlock()
	if !ok {
		return nil, appErrors.NewBatchNotFound(id)
	}
	return e, nil
}

// With runs fn with exclusive access to the batch.
func (s *BatchStore) With(id string, fn func(b *batch.Batch) error) error {
	e, err := s.lookup(id)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(e.batch)
}

// BeginDispatch marks the batch busy and runs fn under the entry lock.
// A second dispatch while one is in flight gets a BusyError; the
// coordinator itself is reentrancy-unsafe and relies on this guard.
func (s *BatchStore) BeginDispatch(id string, fn func(b *batch.Batch) error) error {
	e, err := s.lookup(id)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.dispatching {
		return appErrors.NewBusy(id, "dispatch")
	}
	if err := fn(e.batch); err != nil {
		return err
	}
	e.dispatching = true
	return nil
}

// EndDispatch clears the busy flag after the outcome (or rollback) has
// been applied via fn.
func (s *BatchStore) EndDispatch(id string, fn func(b *batch.Batch) error) error {
	e, err := s.lookup(id)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.dispatching = false
	if fn != nil {
		return fn(e.batch)
	}
	return nil
}

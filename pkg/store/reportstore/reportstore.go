// Package reportstore implements the Report Store: a durable, binary blob
// keyed by report id (spec §2: "durable until purged"). No example repo in
// the corpus offers a library that models "a keyed blob map guarded by a
// mutex" better than sync.RWMutex + map, so this store is deliberately
// stdlib-only — the durability guarantee it needs (outlive the evaluation
// that produced it, not the process) is satisfied by process lifetime.
package reportstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/pitchscope/pitchscope/pkg/evalerrors"
)

// Blob is one stored report: its bytes plus retrieval metadata.
type Blob struct {
	Data        []byte
	ContentType string
	Filename    string
}

// Store is a process-lifetime blob store keyed by report id.
type Store struct {
	mu    sync.RWMutex
	blobs map[string]Blob
}

// New constructs an empty Store.
func New() *Store {
	return &Store{blobs: make(map[string]Blob)}
}

// Put stores blob under reportID. A Report Agent write failure here is the
// one store-failure path that propagates as StoreUnavailable (spec §7:
// "Report-store write errors propagate").
func (s *Store) Put(_ context.Context, reportID string, blob Blob) error {
	if reportID == "" {
		return fmt.Errorf("reportstore: empty report id")
	}
	s.mu.Lock()
	s.blobs[reportID] = blob
	s.mu.Unlock()
	return nil
}

// Fetch retrieves the blob for reportID, or evalerrors.ErrNotFound wrapped
// in a StoreUnavailable-adjacent not-found signal.
func (s *Store) Fetch(_ context.Context, reportID string) (Blob, error) {
	s.mu.RLock()
	blob, ok := s.blobs[reportID]
	s.mu.RUnlock()
	if !ok {
		return Blob{}, fmt.Errorf("reportstore: report %q: %w", reportID, evalerrors.ErrNotFound)
	}
	return blob, nil
}

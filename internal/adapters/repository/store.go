// Package repository loads the static roster and serves it read-only.
package repository

import (
	"context"

	"github.com/okian/surveytarget/internal/domain/model"
)

// Store provides read access to the loaded roster.
type Store interface {
	// All returns a copy of every record in source order.
	All(ctx context.Context) []model.Record
	// Count returns the number of records.
	Count(ctx context.Context) int
	// Source names where the records came from.
	Source() string
}

// MemoryStore is an immutable in-memory Store.
type MemoryStore struct {
	source  string
	records []model.Record
}

// NewMemoryStore builds a store over a private copy of records.
func NewMemoryStore(source string, records []model.Record) *MemoryStore {
	cp := make([]model.Record, len(records))
	copy(cp, records)
	return &MemoryStore{source: source, records: cp}
}

// All returns a copy so callers cannot mutate the roster.
func (s *MemoryStore) All(_ context.Context) []model.Record {
	cp := make([]model.Record, len(s.records))
	copy(cp, s.records)
	return cp
}

// Count returns the number of records.
func (s *MemoryStore) Count(_ context.Context) int {
	return len(s.records)
}

// Source returns the path the roster was loaded from.
func (s *MemoryStore) Source() string {
	return s.source
}

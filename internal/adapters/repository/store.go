// Package repository holds the ranked in-memory record store.
package repository

import (
	"context"

	"github.com/okian/lifelines/internal/domain/model"
)

// Entry is a record together with its 1-based position in the ranking.
type Entry struct {
	Rank   int
	Record model.Record
}

// Store provides read/write access to the record set.
//
// Ranking order is prominence desc, then birth year asc, then ID asc: the
// same order the layout engine uses when it has to drop records.
type Store interface {
	// Replace swaps the whole record set. Duplicate IDs keep the last one.
	Replace(ctx context.Context, records []model.Record) error

	// Upsert inserts or replaces a single record.
	Upsert(ctx context.Context, r model.Record) error

	// Get returns the record and its rank. Returns ErrNotFound if unknown.
	Get(ctx context.Context, id string) (Entry, error)

	// TopN returns up to n entries in ranking order.
	TopN(ctx context.Context, n int) ([]Entry, error)

	// All returns every record in ranking order. The slice is shared and
	// must not be modified.
	All(ctx context.Context) []model.Record

	// Count returns the number of records.
	Count(ctx context.Context) int

	// Version increases on every mutation.
	Version(ctx context.Context) uint64
}

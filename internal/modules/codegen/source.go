package codegen

import (
	"context"
	"log"
	"strings"

	"vehiclerent/internal/pkg/codes"
)

// SequenceSource yields the next sequence number for a day prefix such as "BOOK-20250301-".
type SequenceSource interface {
	Next(ctx context.Context, dayPrefix string) (int64, error)
}

type CounterStore interface {
	Increment(ctx context.Context, name string) (int64, error)
}

type CodeStore interface {
	LastCode(ctx context.Context, table, column, prefix string) (string, error)
}

// CounterSource draws from a dedicated atomic counter per day prefix.
type CounterSource struct {
	store CounterStore
}

func NewCounterSource(store CounterStore) *CounterSource {
	return &CounterSource{store: store}
}

func (s *CounterSource) Next(ctx context.Context, dayPrefix string) (int64, error) {
	return s.store.Increment(ctx, strings.TrimSuffix(dayPrefix, "-"))
}

// ScanSource reads the largest existing code carrying the prefix and adds one.
// Two concurrent readers can see the same value; the unique index on the
// column decides the winner and the loser retries.
type ScanSource struct {
	store  CodeStore
	table  string
	column string
}

func NewScanSource(store CodeStore, table, column string) *ScanSource {
	return &ScanSource{store: store, table: table, column: column}
}

func (s *ScanSource) Next(ctx context.Context, dayPrefix string) (int64, error) {
	last, err := s.store.LastCode(ctx, s.table, s.column, dayPrefix)
	if err != nil {
		return 0, err
	}
	if last == "" {
		return 1, nil
	}

	seq, err := codes.ParseSeq(last, dayPrefix)
	if err != nil {
		// lenient recovery: an unreadable code restarts the day at 1
		log.Printf("codegen: unparseable code table=%s code=%q, restarting sequence at 1", s.table, last)
		return 1, nil
	}
	return seq + 1, nil
}

type Store interface {
	CounterStore
	CodeStore
}

// NewSource picks the sequence strategy: "scan" or the default "counter".
func NewSource(strategy string, store Store, table, column string) SequenceSource {
	if strategy == "scan" {
		return NewScanSource(store, table, column)
	}
	return NewCounterSource(store)
}

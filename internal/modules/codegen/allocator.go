// Package codegen allocates day-scoped human-readable identifiers such as
// BOOK-20250301-000042. Uniqueness is enforced by the store; allocation is
// optimistic and retried when a concurrent writer takes the same code.
package codegen

import (
	"context"
	"errors"
	"fmt"
	"time"

	"vehiclerent/internal/pkg/codes"
)

const (
	DefaultMaxAttempts = 5
	DefaultMaxBackoff  = 100 * time.Millisecond
)

type Options struct {
	MaxAttempts int
	Backoff     Backoff
	// IsConflict recognises the store's uniqueness violation on the code column.
	IsConflict func(error) bool
	Now        func() time.Time
}

type Allocator struct {
	prefix string
	source SequenceSource
	opts   Options
}

func NewAllocator(prefix string, source SequenceSource, opts Options) *Allocator {
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = DefaultMaxAttempts
	}
	if opts.Backoff == nil {
		opts.Backoff = RandomBackoff(DefaultMaxBackoff)
	}
	if opts.IsConflict == nil {
		opts.IsConflict = func(error) bool { return false }
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Allocator{prefix: prefix, source: source, opts: opts}
}

// Next computes a candidate code for the current UTC day without persisting it.
func (a *Allocator) Next(ctx context.Context) (string, error) {
	now := a.opts.Now()
	seq, err := a.source.Next(ctx, codes.DayPrefix(a.prefix, now))
	if err != nil {
		return "", fmt.Errorf("next %s sequence: %w", a.prefix, err)
	}
	if seq < 1 || seq > codes.MaxSeq {
		return "", ErrSequenceOverflow
	}
	return codes.Format(a.prefix, now, seq), nil
}

// Create runs read-increment-write cycles: each attempt computes a fresh code
// and hands it to persist, which must write the record carrying it. A
// uniqueness conflict from persist triggers another attempt.
func (a *Allocator) Create(ctx context.Context, persist func(ctx context.Context, code string) error) (string, error) {
	var code string
	err := RetryOnConflict(ctx, a.opts.MaxAttempts, a.opts.Backoff, a.opts.IsConflict, func(int) error {
		c, err := a.Next(ctx)
		if err != nil {
			return err
		}
		if err := persist(ctx, c); err != nil {
			return err
		}
		code = c
		return nil
	})
	if err != nil {
		var ex *AllocationExhaustedError
		if errors.As(err, &ex) {
			ex.Prefix = a.prefix
		}
		return "", err
	}
	return code, nil
}

package codegen

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errDuplicate = errors.New("UNIQUE constraint failed: bookings.booking_code")

func isDuplicate(err error) bool { return errors.Is(err, errDuplicate) }

// memStore is a tiny code table with a unique constraint.
type memStore struct {
	mu       sync.Mutex
	codes    map[string]bool
	counters map[string]int64
}

func newMemStore() *memStore {
	return &memStore{codes: map[string]bool{}, counters: map[string]int64{}}
}

func (m *memStore) LastCode(_ context.Context, _, _, prefix string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var matching []string
	for c := range m.codes {
		if strings.HasPrefix(c, prefix) {
			matching = append(matching, c)
		}
	}
	if len(matching) == 0 {
		return "", nil
	}
	sort.Strings(matching)
	return matching[len(matching)-1], nil
}

func (m *memStore) Increment(_ context.Context, name string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[name]++
	return m.counters[name], nil
}

func (m *memStore) insert(code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.codes[code] {
		return errDuplicate
	}
	m.codes[code] = true
	return nil
}

var fixedNow = func() time.Time { return time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC) }

func newTestAllocator(src SequenceSource) *Allocator {
	return NewAllocator("BOOK", src, Options{
		MaxAttempts: 5,
		Backoff:     RandomBackoff(0),
		IsConflict:  isDuplicate,
		Now:         fixedNow,
	})
}

func TestAllocator_FirstCodeOfDay(t *testing.T) {
	store := newMemStore()
	alloc := newTestAllocator(NewScanSource(store, "bookings", "booking_code"))

	code, err := alloc.Create(context.Background(), func(_ context.Context, c string) error {
		return store.insert(c)
	})

	require.NoError(t, err)
	assert.Equal(t, "BOOK-20250301-000001", code)
}

func TestAllocator_IncrementsLastCode(t *testing.T) {
	store := newMemStore()
	require.NoError(t, store.insert("BOOK-20250301-000041"))
	require.NoError(t, store.insert("BOOK-20250228-000900"))
	alloc := newTestAllocator(NewScanSource(store, "bookings", "booking_code"))

	code, err := alloc.Create(context.Background(), func(_ context.Context, c string) error {
		return store.insert(c)
	})

	require.NoError(t, err)
	assert.Equal(t, "BOOK-20250301-000042", code)
}

func TestAllocator_RetriesAfterLosingRace(t *testing.T) {
	store := newMemStore()
	require.NoError(t, store.insert("BOOK-20250301-000010"))
	alloc := newTestAllocator(NewScanSource(store, "bookings", "booking_code"))

	attempts := 0
	var conflicting []string
	code, err := alloc.Create(context.Background(), func(_ context.Context, c string) error {
		attempts++
		if attempts <= 2 {
			// a concurrent writer commits the same code first
			require.NoError(t, store.insert(c))
			conflicting = append(conflicting, c)
		}
		return store.insert(c)
	})

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
	assert.Equal(t, []string{"BOOK-20250301-000011", "BOOK-20250301-000012"}, conflicting)
	assert.Equal(t, "BOOK-20250301-000013", code)
}

func TestAllocator_ExhaustsAfterMaxAttempts(t *testing.T) {
	store := newMemStore()
	alloc := newTestAllocator(NewScanSource(store, "bookings", "booking_code"))

	attempts := 0
	_, err := alloc.Create(context.Background(), func(_ context.Context, c string) error {
		attempts++
		return errDuplicate
	})

	assert.Equal(t, 5, attempts)
	assert.ErrorIs(t, err, ErrAllocationExhausted)
	var ex *AllocationExhaustedError
	require.ErrorAs(t, err, &ex)
	assert.Equal(t, "BOOK", ex.Prefix)
	assert.Equal(t, 5, ex.Attempts)
	assert.ErrorIs(t, err, errDuplicate)
}

func TestAllocator_DoesNotRetryOtherErrors(t *testing.T) {
	store := newMemStore()
	alloc := newTestAllocator(NewScanSource(store, "bookings", "booking_code"))
	boom := errors.New("connection reset")

	attempts := 0
	_, err := alloc.Create(context.Background(), func(_ context.Context, c string) error {
		attempts++
		return boom
	})

	assert.Equal(t, 1, attempts)
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrAllocationExhausted)
}

func TestScanSource_CorruptCodeRestartsAtOne(t *testing.T) {
	store := newMemStore()
	require.NoError(t, store.insert("BOOK-20250301-00x001"))
	src := NewScanSource(store, "bookings", "booking_code")

	seq, err := src.Next(context.Background(), "BOOK-20250301-")

	require.NoError(t, err)
	assert.Equal(t, int64(1), seq)
}

func TestAllocator_SequenceOverflow(t *testing.T) {
	store := newMemStore()
	require.NoError(t, store.insert("BOOK-20250301-999999"))
	alloc := newTestAllocator(NewScanSource(store, "bookings", "booking_code"))

	_, err := alloc.Create(context.Background(), func(_ context.Context, c string) error {
		return store.insert(c)
	})

	assert.ErrorIs(t, err, ErrSequenceOverflow)
}

func TestCounterSource_ConcurrentAllocationsAreDistinct(t *testing.T) {
	store := newMemStore()
	alloc := newTestAllocator(NewCounterSource(store))

	const n = 50
	var wg sync.WaitGroup
	results := make([]string, n)
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = alloc.Create(context.Background(), func(_ context.Context, c string) error {
				return store.insert(c)
			})
		}(i)
	}
	wg.Wait()

	seen := map[string]bool{}
	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
		assert.Regexp(t, `^BOOK-20250301-\d{6}$`, results[i])
		assert.False(t, seen[results[i]], "duplicate %s", results[i])
		seen[results[i]] = true
	}
	assert.Equal(t, int64(n), store.counters["BOOK-20250301"])
}

func TestScanSource_ConcurrentAllocationsAreDistinct(t *testing.T) {
	store := newMemStore()
	alloc := NewAllocator("BOOK", NewScanSource(store, "bookings", "booking_code"), Options{
		MaxAttempts: 50,
		Backoff:     RandomBackoff(time.Millisecond),
		IsConflict:  isDuplicate,
		Now:         fixedNow,
	})

	const n = 10
	var wg sync.WaitGroup
	results := make(chan string, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			code, err := alloc.Create(context.Background(), func(_ context.Context, c string) error {
				return store.insert(c)
			})
			if err != nil {
				t.Errorf("allocation failed: %v", err)
				return
			}
			results <- code
		}()
	}
	wg.Wait()
	close(results)

	seen := map[string]bool{}
	for c := range results {
		assert.False(t, seen[c], "duplicate %s", c)
		seen[c] = true
	}
	assert.Len(t, seen, n)
	for i := 1; i <= n; i++ {
		assert.True(t, seen[fmt.Sprintf("BOOK-20250301-%06d", i)])
	}
}

func TestRetryOnConflict_StopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0
	err := RetryOnConflict(ctx, 5, func(int) time.Duration { return time.Second }, isDuplicate, func(int) error {
		attempts++
		cancel()
		return errDuplicate
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, attempts)
}

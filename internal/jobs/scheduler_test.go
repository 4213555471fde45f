package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingStarter struct {
	calls atomic.Int32
	err   error
}

func (c *countingStarter) StartDue(context.Context) (int, error) {
	c.calls.Add(1)
	return 1, c.err
}

func TestNew_DisabledWithoutInterval(t *testing.T) {
	s, err := New(&countingStarter{}, 0)
	require.NoError(t, err)
	assert.Nil(t, s)

	s.Start()
	assert.NoError(t, s.Shutdown())
}

func TestScheduler_RunsStartDue(t *testing.T) {
	starter := &countingStarter{}
	s, err := New(starter, 20*time.Millisecond)
	require.NoError(t, err)
	require.NotNil(t, s)

	s.Start()
	defer s.Shutdown()

	assert.Eventually(t, func() bool { return starter.calls.Load() >= 2 }, 2*time.Second, 10*time.Millisecond)
}

func TestRunStartDue_LogsFailure(t *testing.T) {
	starter := &countingStarter{err: errors.New("db down")}
	runStartDue(starter)
	assert.Equal(t, int32(1), starter.calls.Load())
}

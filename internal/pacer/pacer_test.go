package pacer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errThrottled = errors.New("429 Too Many Requests")

func TestAdaptive_BacksOffAndRecovers(t *testing.T) {
	p := NewAdaptive(time.Second, 5*time.Second, nil)
	assert.Equal(t, time.Second, p.Interval())

	p.Observe(errThrottled)
	assert.Equal(t, 2*time.Second, p.Interval())
	p.Observe(errThrottled)
	p.Observe(errThrottled)
	assert.Equal(t, 5*time.Second, p.Interval())

	p.Observe(errors.New("insufficient gas"))
	assert.Equal(t, 5*time.Second, p.Interval())

	p.Observe(nil)
	assert.Equal(t, 2500*time.Millisecond, p.Interval())
	p.Observe(nil)
	p.Observe(nil)
	assert.Equal(t, time.Second, p.Interval())
}

func TestAdaptive_FirstWaitIsImmediate(t *testing.T) {
	p := NewAdaptive(time.Hour, time.Hour, nil)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, p.Wait(ctx))
	// the next token is an hour away
	assert.Error(t, p.Wait(ctx))
}

func TestAdaptive_ZeroIntervalNeverBlocks(t *testing.T) {
	p := NewAdaptive(0, 0, nil)
	for i := 0; i < 5; i++ {
		require.NoError(t, p.Wait(context.Background()))
	}
	p.Observe(errThrottled)
	assert.Equal(t, time.Duration(0), p.Interval())
}

func TestNoop(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	assert.NoError(t, Noop{}.Wait(ctx))
	cancel()
	assert.Error(t, Noop{}.Wait(ctx))
}

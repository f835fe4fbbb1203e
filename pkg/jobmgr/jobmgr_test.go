package jobmgr

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func blocking(stopped *atomic.Bool) func(context.Context) error {
	return func(ctx context.Context) error {
		<-ctx.Done()
		stopped.Store(true)
		return nil
	}
}

func TestStartStop(t *testing.T) {
	m := NewManager()
	var stopped atomic.Bool

	require.NoError(t, m.Start("janitor", blocking(&stopped)))
	assert.Error(t, m.Start("janitor", blocking(&stopped)))
	assert.Equal(t, []string{"janitor"}, m.List())

	require.NoError(t, m.Stop("janitor"))
	assert.True(t, stopped.Load())
	assert.Empty(t, m.List())
	assert.Error(t, m.Stop("janitor"))
}

func TestStopAllWaits(t *testing.T) {
	m := NewManager()
	var a, b atomic.Bool
	require.NoError(t, m.Start("b", blocking(&b)))
	require.NoError(t, m.Start("a", blocking(&a)))
	assert.Equal(t, []string{"a", "b"}, m.List())

	m.StopAll()
	assert.True(t, a.Load())
	assert.True(t, b.Load())
	assert.Empty(t, m.List())
}

func TestFinishedJobsRemoveThemselves(t *testing.T) {
	m := NewManager()
	require.NoError(t, m.Start("once", func(context.Context) error { return errors.New("boom") }))

	assert.Eventually(t, func() bool { return len(m.List()) == 0 }, time.Second, time.Millisecond)
	require.NoError(t, m.Start("once", func(context.Context) error { return nil }))
}

package badge

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSetter records every badge value the engine pushed to the platform.
type fakeSetter struct {
	mu        sync.Mutex
	supported bool
	values    []int
	failures  int // number of calls to fail before succeeding
}

func (f *fakeSetter) Supported() bool { return f.supported }

func (f *fakeSetter) Set(_ context.Context, count int) error {
	return f.record(count)
}

func (f *fakeSetter) Clear(_ context.Context) error {
	return f.record(0)
}

func (f *fakeSetter) record(count int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failures > 0 {
		f.failures--
		return errors.New("badge API unavailable")
	}
	f.values = append(f.values, count)
	return nil
}

func (f *fakeSetter) last() (int, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.values) == 0 {
		return 0, false
	}
	return f.values[len(f.values)-1], true
}

func staticCount(n int) CountFunc {
	return func(context.Context) (int, error) { return n, nil }
}

func newStartedEngine(t *testing.T, setter Setter, fetch CountFunc) *Engine {
	e := New(setter, fetch)
	e.setDelay = time.Millisecond
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	e.Start(ctx)
	return e
}

func TestEngine_IncrementAdvancesBadge(t *testing.T) {
	setter := &fakeSetter{supported: true}
	e := newStartedEngine(t, setter, staticCount(0))

	e.Increment()
	e.Increment()

	assert.Eventually(t, func() bool { return e.Current() == 2 },
		time.Second, 10*time.Millisecond)
	last, ok := setter.last()
	require.True(t, ok)
	assert.Equal(t, 2, last)
}

func TestEngine_ResyncOverridesIncrement(t *testing.T) {
	setter := &fakeSetter{supported: true}
	e := newStartedEngine(t, setter, staticCount(5))

	e.Increment()
	require.NoError(t, e.Resync(context.Background()))

	assert.Eventually(t, func() bool { return e.Current() == 5 },
		time.Second, 10*time.Millisecond)
}

func TestEngine_StaleIncrementDroppedAfterResync(t *testing.T) {
	setter := &fakeSetter{supported: true}
	e := New(setter, staticCount(3))
	e.setDelay = time.Millisecond

	// Reproduce the race where the increment was issued before the resync
	// but arrives after it: the authoritative set must win.
	stale := op{kind: opIncrement, epoch: e.epoch.Load()}
	e.ops <- op{kind: opSet, count: 3, epoch: e.epoch.Add(1)}
	e.ops <- stale

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	e.Start(ctx)

	assert.Eventually(t, func() bool { return e.Current() == 3 },
		time.Second, 10*time.Millisecond)
	// Give the stale increment a chance to (wrongly) apply.
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 3, e.Current())
}

func TestEngine_StaleResyncDroppedAfterNewerSet(t *testing.T) {
	setter := &fakeSetter{supported: true}

	fetchStarted := make(chan struct{})
	release := make(chan struct{})
	slowFetch := func(context.Context) (int, error) {
		close(fetchStarted)
		<-release
		return 1, nil
	}

	e := newStartedEngine(t, setter, slowFetch)

	done := make(chan error, 1)
	go func() { done <- e.Resync(context.Background()) }()
	<-fetchStarted

	// A newer authoritative count arrives while the fetch is in flight.
	e.SetCount(7)
	assert.Eventually(t, func() bool { return e.Current() == 7 },
		time.Second, 10*time.Millisecond)

	close(release)
	require.NoError(t, <-done)

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 7, e.Current(), "stale resync must not clobber the newer set")
}

func TestEngine_ClearResetsToZero(t *testing.T) {
	setter := &fakeSetter{supported: true}
	e := newStartedEngine(t, setter, staticCount(0))

	e.SetCount(9)
	e.Clear()

	assert.Eventually(t, func() bool {
		last, ok := setter.last()
		return ok && last == 0 && e.Current() == 0
	}, time.Second, 10*time.Millisecond)
}

func TestEngine_UnsupportedPlatformIsNoOp(t *testing.T) {
	setter := &fakeSetter{supported: false}
	e := newStartedEngine(t, setter, staticCount(10))

	e.Increment()
	e.SetCount(5)
	e.Clear()
	require.NoError(t, e.Resync(context.Background()))

	time.Sleep(50 * time.Millisecond)
	_, ok := setter.last()
	assert.False(t, ok, "no badge calls on an unsupported platform")
	assert.Equal(t, 0, e.Current())
}

func TestEngine_FlakyBadgeAPIRetried(t *testing.T) {
	setter := &fakeSetter{supported: true, failures: 2}
	e := newStartedEngine(t, setter, staticCount(0))

	e.SetCount(4)

	assert.Eventually(t, func() bool {
		last, ok := setter.last()
		return ok && last == 4
	}, time.Second, 10*time.Millisecond)
}

func TestEngine_BadgeFailureSwallowed(t *testing.T) {
	setter := &fakeSetter{supported: true, failures: 1000}
	e := newStartedEngine(t, setter, staticCount(0))

	e.SetCount(4)

	// The count still advances even though the platform call keeps failing.
	assert.Eventually(t, func() bool { return e.Current() == 4 },
		time.Second, 10*time.Millisecond)
}

func TestEngine_PollResyncsAndStops(t *testing.T) {
	setter := &fakeSetter{supported: true}
	e := newStartedEngine(t, setter, staticCount(6))

	ctx, cancel := context.WithCancel(context.Background())
	e.StartPoll(ctx, 10*time.Millisecond)

	assert.Eventually(t, func() bool { return e.Current() == 6 },
		time.Second, 5*time.Millisecond)

	cancel()
}

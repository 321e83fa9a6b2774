// Package badge keeps the app-icon unread counter consistent with the server
// notification list. Four uncoordinated triggers feed it: a received push, a
// visibility change, an explicit clear, and the periodic poll.
package badge

import (
	"context"
	"log"
	"sync/atomic"
	"time"

	"github.com/codeGROOVE-dev/retry"
)

// Setter abstracts the platform badging API. On platforms without one,
// Supported returns false and the engine turns every operation into a no-op;
// callers never branch on badge support themselves.
type Setter interface {
	Supported() bool
	Set(ctx context.Context, count int) error
	Clear(ctx context.Context) error
}

// CountFunc fetches the authoritative unread count, which is the length of
// the server-side notification list.
type CountFunc func(ctx context.Context) (int, error)

type opKind int

const (
	opIncrement opKind = iota
	opSet
)

type op struct {
	kind  opKind
	count int
	// epoch sequences operations: an authoritative set carries a fresh
	// epoch, an increment carries the epoch it observed when issued. A
	// stale increment racing in after a resync is dropped.
	epoch uint64
}

// Engine serializes all badge updates through a single goroutine. There is
// no shared state between triggers; everything flows through the ops channel.
type Engine struct {
	setter Setter
	fetch  CountFunc

	ops     chan op
	epoch   atomic.Uint64
	current atomic.Int64

	setAttempts uint
	setDelay    time.Duration
}

// New creates a badge engine. Start must be called before any trigger fires.
func New(setter Setter, fetch CountFunc) *Engine {
	return &Engine{
		setter:      setter,
		fetch:       fetch,
		ops:         make(chan op, 32),
		setAttempts: 3,
		setDelay:    100 * time.Millisecond,
	}
}

// Start launches the engine goroutine. It stops when ctx is cancelled.
func (e *Engine) Start(ctx context.Context) {
	go e.run(ctx)
}

func (e *Engine) run(ctx context.Context) {
	var applied uint64
	for {
		select {
		case o := <-e.ops:
			if o.epoch < applied {
				// Issued before a newer authoritative set; the
				// resync already accounts for it.
				continue
			}
			switch o.kind {
			case opIncrement:
				e.apply(ctx, int(e.current.Load())+1)
			case opSet:
				applied = o.epoch
				e.apply(ctx, o.count)
			}
		case <-ctx.Done():
			return
		}
	}
}

// apply mirrors the count into the OS badge with a small bounded retry. A
// badge that refuses to update is cosmetic; failures are logged and dropped.
func (e *Engine) apply(ctx context.Context, count int) {
	if count < 0 {
		count = 0
	}
	e.current.Store(int64(count))

	if !e.setter.Supported() {
		return
	}

	err := retry.Do(
		func() error {
			if count == 0 {
				return e.setter.Clear(ctx)
			}
			return e.setter.Set(ctx, count)
		},
		retry.Attempts(e.setAttempts),
		retry.Delay(e.setDelay),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		log.Printf("Badge set to %d failed after %d attempts: %v", count, e.setAttempts, err)
	}
}

// Increment records one newly received push. It loses against any
// authoritative set issued after it.
func (e *Engine) Increment() {
	if !e.setter.Supported() {
		return
	}
	e.ops <- op{kind: opIncrement, epoch: e.epoch.Load()}
}

// Clear sets the badge to zero: the user has now seen everything up to this
// point. The system tracks no per-notification read state, so this is an
// approximation and deliberately so.
func (e *Engine) Clear() {
	e.SetCount(0)
}

// SetCount applies an explicit authoritative count, as pushed by the
// background worker right after it recorded a new notification.
func (e *Engine) SetCount(count int) {
	if !e.setter.Supported() {
		return
	}
	e.ops <- op{kind: opSet, count: count, epoch: e.epoch.Add(1)}
}

// Resync re-derives the count from the server notification list and applies
// it authoritatively, overriding any drift from local increments. Called on
// visibility change and by the periodic poll.
func (e *Engine) Resync(ctx context.Context) error {
	if !e.setter.Supported() {
		return nil
	}
	// The epoch is claimed before the fetch so increments issued while the
	// fetch is in flight lose to the resynced value.
	epoch := e.epoch.Add(1)

	count, err := e.fetch(ctx)
	if err != nil {
		return err
	}
	e.ops <- op{kind: opSet, count: count, epoch: epoch}
	return nil
}

// StartPoll resyncs at the given interval until ctx is cancelled. It is the
// fallback for platforms without reliable background push.
func (e *Engine) StartPoll(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := e.Resync(ctx); err != nil {
					log.Printf("Badge poll resync failed: %v", err)
				}
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Current returns the engine's view of the unread count.
func (e *Engine) Current() int {
	return int(e.current.Load())
}

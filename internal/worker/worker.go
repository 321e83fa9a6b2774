// Package worker is the background push-handling context on the client. It
// has no shared memory with open views; everything it learns is forwarded
// over the typed message bus or re-fetched from the server.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"time"

	"community-hub-backend/internal/badge"
	"community-hub-backend/internal/push"
	"community-hub-backend/internal/swbus"
)

// Notifier abstracts the native system-notification display.
type Notifier interface {
	Show(ctx context.Context, title, body string, data map[string]string) error
}

// CountSource yields the authoritative unread count. Implemented by
// push.Client against GET /api/notifications.
type CountSource interface {
	NotificationCount(ctx context.Context) (int, error)
}

// Worker receives pushes, drives the badge engine and keeps open views
// informed through the bus.
type Worker struct {
	notifier  Notifier
	presenter *push.Presenter
	engine    *badge.Engine
	bus       *swbus.Bus
	counts    CountSource

	pollInterval time.Duration
}

// New creates a worker. pollInterval is the fallback resync cadence for
// platforms without reliable background push.
func New(notifier Notifier, presenter *push.Presenter, engine *badge.Engine, bus *swbus.Bus, counts CountSource, pollInterval time.Duration) *Worker {
	return &Worker{
		notifier:     notifier,
		presenter:    presenter,
		engine:       engine,
		bus:          bus,
		counts:       counts,
		pollInterval: pollInterval,
	}
}

// DecodeEnvelope parses the wire payload delivered with a push event.
func DecodeEnvelope(data []byte) (push.Payload, error) {
	var payload push.Payload
	if err := json.Unmarshal(data, &payload); err != nil {
		return push.Payload{}, fmt.Errorf("malformed push payload: %w", err)
	}
	return payload, nil
}

// HandlePush processes one incoming push event: display the notification
// (native first, in-app fallback), advance the badge, then correct it
// against server truth and fan the authoritative count out to open views.
func (w *Worker) HandlePush(ctx context.Context, data []byte) error {
	payload, err := DecodeEnvelope(data)
	if err != nil {
		return err
	}

	w.display(ctx, payload)

	// Badge correction is best effort: when the count fetch fails the
	// local increment stands until the next resync.
	if count, err := w.counts.NotificationCount(ctx); err == nil {
		w.engine.SetCount(count)
		w.bus.Publish(swbus.UpdateBadge{Count: count})
	} else {
		log.Printf("Could not fetch authoritative count after push: %v", err)
	}
	return nil
}

// display shows the notification and advances the badge. The native and
// fallback paths end in the same badge state; if even the fallback fails,
// the payload is forwarded so any open view can render it.
func (w *Worker) display(ctx context.Context, payload push.Payload) {
	data := map[string]string{
		"url": payload.URL,
		"id":  strconv.FormatInt(payload.ID, 10),
	}
	if payload.Link != "" {
		data["link"] = payload.Link
	}

	if err := w.notifier.Show(ctx, payload.Title, payload.Body, data); err == nil {
		w.engine.Increment()
		return
	} else {
		log.Printf("Native notification display failed, using in-app fallback: %v", err)
	}

	if err := w.presenter.Present(ctx, payload); err != nil {
		log.Printf("In-app fallback failed too, forwarding to views: %v", err)
		w.bus.Publish(swbus.ShowNotification{
			Title: payload.Title,
			Body:  payload.Body,
			Data:  data,
		})
		w.engine.Increment()
	}
}

// Run announces activation and resyncs the badge on a fixed cadence until
// ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	w.bus.Publish(swbus.Activated{})

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			count, err := w.counts.NotificationCount(ctx)
			if err != nil {
				log.Printf("Badge poll failed: %v", err)
				continue
			}
			w.engine.SetCount(count)
			w.bus.Publish(swbus.UpdateBadge{Count: count})
		case <-ctx.Done():
			return
		}
	}
}

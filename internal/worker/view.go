package worker

import (
	"context"
	"log"

	"community-hub-backend/internal/badge"
	"community-hub-backend/internal/push"
	"community-hub-backend/internal/swbus"
)

// View is the badge-facing side of one open page. It applies bus messages to
// the local badge engine and reports user actions back.
type View struct {
	engine *badge.Engine
	bus    *swbus.Bus

	// OnShow renders a notification forwarded by the worker when neither
	// display path worked in the background context. Optional.
	OnShow func(payload push.Payload)
}

// NewView creates a view facade over the engine and bus.
func NewView(engine *badge.Engine, bus *swbus.Bus) *View {
	return &View{engine: engine, bus: bus}
}

// Listen consumes bus messages until ctx is cancelled.
func (v *View) Listen(ctx context.Context) {
	ch, cancel := v.bus.Subscribe()
	defer cancel()

	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return
			}
			v.handle(msg)
		case <-ctx.Done():
			return
		}
	}
}

func (v *View) handle(msg swbus.Message) {
	switch m := msg.(type) {
	case swbus.UpdateBadge:
		v.engine.SetCount(m.Count)
	case swbus.BadgeCleared:
		v.engine.SetCount(0)
	case swbus.ShowNotification:
		if v.OnShow != nil {
			payload := push.Payload{Title: m.Title, Body: m.Body}
			if m.Data != nil {
				payload.URL = m.Data["url"]
				payload.Link = m.Data["link"]
			}
			v.OnShow(payload)
		}
	case swbus.Activated:
		// Nothing to apply; the next resync picks up worker state.
	}
}

// OnVisible re-derives the badge from the server notification list. Called
// when the page returns to the foreground.
func (v *View) OnVisible(ctx context.Context) {
	if err := v.engine.Resync(ctx); err != nil {
		log.Printf("Foreground resync failed: %v", err)
	}
}

// OpenNotifications clears the badge after the user has seen the list and
// tells other views to do the same.
func (v *View) OpenNotifications() {
	v.engine.Clear()
	v.bus.Publish(swbus.BadgeCleared{})
}

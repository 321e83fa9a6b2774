package push

import (
	"context"
	"fmt"
	"time"

	"community-hub-backend/internal/badge"
)

// Payload is the notification content handed to either display path. It
// matches the wire payload pushed to endpoints: URL is the default in-app
// destination, Link takes precedence when the user interacts.
type Payload struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	URL   string `json:"url"`
	Link  string `json:"link,omitempty"`
	ID    int64  `json:"id"`
}

// Destination returns where a tap on the notification should navigate.
func (p Payload) Destination() string {
	if p.Link != "" {
		return p.Link
	}
	return p.URL
}

// Alert is a transient in-app notification surface.
type Alert struct {
	Title string
	Body  string
	OnTap func()
}

// Display renders a dismissible alert and returns its dismiss handle.
type Display interface {
	Show(ctx context.Context, alert Alert) (dismiss func(), err error)
}

// Navigator opens a destination when the user taps the alert.
type Navigator func(url string)

// Presenter is the fallback path when the platform cannot show a native
// system notification. It must be observationally equivalent to the native
// path for the rest of the system, so it drives the same badge update.
type Presenter struct {
	display  Display
	engine   *badge.Engine
	navigate Navigator
	ttl      time.Duration
}

// NewPresenter creates a fallback presenter with an auto-expiry of several
// seconds.
func NewPresenter(display Display, engine *badge.Engine, navigate Navigator) *Presenter {
	return &Presenter{
		display:  display,
		engine:   engine,
		navigate: navigate,
		ttl:      6 * time.Second,
	}
}

// Present shows the payload as a transient in-app alert and advances the
// badge exactly as a successful native display would.
func (p *Presenter) Present(ctx context.Context, payload Payload) error {
	alert := Alert{
		Title: payload.Title,
		Body:  payload.Body,
	}
	if dest := payload.Destination(); dest != "" {
		alert.OnTap = func() { p.navigate(dest) }
	}

	dismiss, err := p.display.Show(ctx, alert)
	if err != nil {
		return fmt.Errorf("failed to display in-app alert: %w", err)
	}
	time.AfterFunc(p.ttl, dismiss)

	p.engine.Increment()
	return nil
}

package api

import (
	"context"

	"github.com/SherClockHolmes/webpush-go"

	"community-hub-backend/internal/notification"
	"community-hub-backend/internal/store"
)

// Broadcaster is the slice of the fan-out service the handlers need.
type Broadcaster interface {
	Broadcast(ctx context.Context, msg notification.Message) (int, error)
}

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store     store.Store
	webpush   *webpush.Options
	fanout    Broadcaster
	pushReady bool
}

// NewHandler creates a new API handler. pushReady is false when VAPID keys
// are absent; the push endpoints then answer "not configured" instead of
// failing.
func NewHandler(s store.Store, webpushOptions *webpush.Options, fanout Broadcaster, pushReady bool) *Handler {
	return &Handler{
		store:     s,
		webpush:   webpushOptions,
		fanout:    fanout,
		pushReady: pushReady,
	}
}

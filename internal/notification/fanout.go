package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/SherClockHolmes/webpush-go"

	"community-hub-backend/internal/model"
	"community-hub-backend/internal/store"
)

// ErrNoSubscribers is returned by Broadcast when there is no active endpoint
// to deliver to. Nothing is persisted in that case.
var ErrNoSubscribers = errors.New("no active subscribers")

// Message is the admin-supplied content of one broadcast.
type Message struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	Link  string `json:"link,omitempty"`
}

// payload is the wire format pushed to each endpoint. URL is the default
// in-app destination; Link, when set, takes precedence on interaction.
type payload struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	URL   string `json:"url"`
	Link  string `json:"link,omitempty"`
	ID    int64  `json:"id"`
}

// Sender defines the interface for sending a web push notification.
type Sender interface {
	Send(ctx context.Context, payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is the real implementation of Sender using the webpush library.
type WebPushSender struct{}

// Send sends a notification using the webpush library.
func (s *WebPushSender) Send(ctx context.Context, payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotificationWithContext(ctx, payload, sub, options)
}

// Service fans a broadcast out to every active subscription. Dispatches are
// concurrent and isolated: one dead or slow endpoint cannot abort or delay
// the rest of the batch.
type Service struct {
	store       store.Store
	webpush     *webpush.Options
	sender      Sender
	defaultPath string
	poolSize    int
}

// NewService creates a fan-out service. poolSize bounds how many endpoint
// dispatches run at once.
func NewService(s store.Store, webpushOptions *webpush.Options, defaultPath string, poolSize int) *Service {
	if poolSize <= 0 {
		poolSize = 1
	}
	return &Service{
		store:       s,
		webpush:     webpushOptions,
		sender:      &WebPushSender{},
		defaultPath: defaultPath,
		poolSize:    poolSize,
	}
}

// SetSender replaces the push sender. Used by tests.
func (s *Service) SetSender(sender Sender) {
	s.sender = sender
}

// Broadcast records the message once and attempts delivery to every active
// endpoint. It returns the number of successful deliveries. Partial failure
// is not an error; the only hard failure is having nobody to send to, which
// is checked before anything is persisted.
func (s *Service) Broadcast(ctx context.Context, msg Message) (int, error) {
	subs, err := s.store.ListActiveSubscriptions(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load subscriptions: %w", err)
	}
	if len(subs) == 0 {
		return 0, ErrNoSubscribers
	}

	record := model.Notification{
		Title: msg.Title,
		Body:  msg.Body,
		Link:  msg.Link,
	}
	if err := s.store.CreateNotification(ctx, &record); err != nil {
		return 0, fmt.Errorf("failed to record notification: %w", err)
	}

	body, err := json.Marshal(payload{
		Title: msg.Title,
		Body:  msg.Body,
		URL:   s.defaultPath,
		Link:  msg.Link,
		ID:    record.ID,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to encode push payload: %w", err)
	}

	var (
		sent int64
		wg   sync.WaitGroup
		sem  = make(chan struct{}, s.poolSize)
	)
	for _, sub := range subs {
		wg.Add(1)
		sem <- struct{}{}
		go func(sub model.PushSubscription) {
			defer wg.Done()
			defer func() { <-sem }()
			if s.dispatch(ctx, sub, body) {
				atomic.AddInt64(&sent, 1)
			}
		}(sub)
	}
	wg.Wait()

	log.Printf("Broadcast %d delivered to %d/%d endpoints", record.ID, sent, len(subs))
	return int(atomic.LoadInt64(&sent)), nil
}

// dispatch sends the payload to a single endpoint and classifies the outcome.
// Transient failures are logged and the endpoint stays active for the next
// broadcast; a Gone/Not Found status deactivates it.
func (s *Service) dispatch(ctx context.Context, sub model.PushSubscription, body []byte) bool {
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	resp, err := s.sender.Send(ctx, body, wpSub, s.webpush)
	if err != nil {
		log.Printf("Error sending notification to %s: %v", sub.Endpoint, err)
		return false
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return true
	case resp.StatusCode == http.StatusGone || resp.StatusCode == http.StatusNotFound:
		log.Printf("Subscription for endpoint %s is expired. Deactivating.", sub.Endpoint)
		if err := s.store.DeactivateSubscription(ctx, sub.Endpoint); err != nil {
			log.Printf("Failed to deactivate expired subscription %s: %v", sub.Endpoint, err)
		}
		return false
	default:
		log.Printf("Push service returned %d for %s; will retry on next broadcast", resp.StatusCode, sub.Endpoint)
		return false
	}
}

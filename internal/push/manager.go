package push

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"community-hub-backend/internal/localstore"
)

// ServerAPI is the slice of the backend the subscription manager talks to.
type ServerAPI interface {
	VAPIDPublicKey(ctx context.Context) (string, error)
	RegisterSubscription(ctx context.Context, userID int64, reg *Registration) error
}

// Manager produces and maintains exactly one active registration per device.
// Subscribe is serialized so concurrent calls cannot race to create two.
type Manager struct {
	mu       sync.Mutex
	platform Platform
	server   ServerAPI
	cache    *localstore.Cache

	capOnce    sync.Once
	capability Capability

	promptTimeout time.Duration
}

// NewManager creates a subscription manager.
func NewManager(platform Platform, server ServerAPI, cache *localstore.Cache) *Manager {
	return &Manager{
		platform:      platform,
		server:        server,
		cache:         cache,
		promptTimeout: 5 * time.Second,
	}
}

// Capability computes the device capability once and caches it.
func (m *Manager) Capability() Capability {
	m.capOnce.Do(func() {
		m.capability = DetectCapability(m.platform)
		m.cache.Put(localstore.KeyCapability, m.capability.String())
	})
	return m.capability
}

// RequestPermission asks for notification permission. It fails fast when the
// permission is already denied: re-prompting a denied permission is a no-op
// on every platform, so a clear error beats a hang. The prompt itself is
// bounded by a timeout because some OS/browser combinations never resolve it.
func (m *Manager) RequestPermission(ctx context.Context) error {
	switch m.Capability() {
	case CapabilityUnsupported:
		return ErrUnsupported
	case CapabilityNeedsInstall:
		return ErrNeedsInstall
	}

	switch m.platform.Permission() {
	case PermissionGranted:
		return nil
	case PermissionDenied:
		return ErrPermissionDenied
	}

	promptCtx, cancel := context.WithTimeout(ctx, m.promptTimeout)
	defer cancel()

	type result struct {
		state PermissionState
		err   error
	}
	resCh := make(chan result, 1)
	go func() {
		state, err := m.platform.RequestPermission(promptCtx)
		resCh <- result{state, err}
	}()

	select {
	case res := <-resCh:
		if res.err != nil {
			if errors.Is(res.err, context.DeadlineExceeded) {
				return ErrPermissionTimeout
			}
			return fmt.Errorf("permission prompt failed: %w", res.err)
		}
		if res.state != PermissionGranted {
			return ErrPermissionDenied
		}
		return nil
	case <-promptCtx.Done():
		// Treated as denied for this session, but reported distinctly so
		// the UI can suggest trying again rather than pointing at settings.
		return ErrPermissionTimeout
	}
}

// Subscribe ensures this device holds exactly one active registration and
// reports it to the server under the given user. Calling it with a live
// registration re-reports that registration instead of creating a second.
func (m *Manager) Subscribe(ctx context.Context, userID int64) (*Registration, error) {
	if err := m.RequestPermission(ctx); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	return m.subscribeLocked(ctx, userID)
}

func (m *Manager) subscribeLocked(ctx context.Context, userID int64) (*Registration, error) {
	m.cache.Put(localstore.KeySubscriptionStatus, localstore.StatusPending)

	reg, err := m.platform.Registration(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read existing registration: %w", err)
	}

	if reg == nil {
		key, err := m.server.VAPIDPublicKey(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch application key: %w", err)
		}
		appKey, err := decodeApplicationKey(key)
		if err != nil {
			return nil, fmt.Errorf("invalid application key: %w", err)
		}

		regCtx, cancel := context.WithTimeout(ctx, m.promptTimeout)
		reg, err = m.platform.Register(regCtx, appKey)
		cancel()
		if err != nil {
			return nil, fmt.Errorf("failed to create registration: %w", err)
		}
	}

	if err := m.server.RegisterSubscription(ctx, userID, reg); err != nil {
		return nil, fmt.Errorf("failed to report subscription: %w", err)
	}

	m.cache.Put(localstore.KeySubscriptionStatus, localstore.StatusActive)
	m.cache.Put(localstore.KeyEndpoint, reg.Endpoint)
	return reg, nil
}

// Refresh tears down the current registration and creates a fresh one.
// Registrations can silently go stale; this is the remediation path. Safe to
// call when no registration exists.
func (m *Manager) Refresh(ctx context.Context, userID int64) (*Registration, error) {
	if err := m.RequestPermission(ctx); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.platform.Unregister(ctx); err != nil {
		return nil, fmt.Errorf("failed to drop stale registration: %w", err)
	}
	m.cache.Put(localstore.KeySubscriptionStatus, localstore.StatusUnregistered)
	m.cache.Delete(localstore.KeyEndpoint)

	return m.subscribeLocked(ctx, userID)
}

// decodeApplicationKey converts the server's base64url VAPID public key into
// the binary form the platform registration API requires. Keys arrive both
// padded and unpadded in the wild.
func decodeApplicationKey(key string) ([]byte, error) {
	trimmed := strings.TrimRight(key, "=")
	raw, err := base64.RawURLEncoding.DecodeString(trimmed)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("empty key")
	}
	return raw, nil
}

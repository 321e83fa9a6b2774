// Package localstore is the client-side key-value cache for subscription
// state. It is a cache with defined staleness, not ambient global state:
// every entry carries the time it was last synced with the server.
package localstore

import (
	"time"

	"github.com/patrickmn/go-cache"
)

// Keys of the client cache schema.
const (
	KeySubscriptionStatus = "subscription_status"
	KeyEndpoint           = "endpoint"
	KeyCapability         = "capability"
)

// Subscription status values stored under KeySubscriptionStatus.
const (
	StatusUnregistered = "unregistered"
	StatusPending      = "pending"
	StatusActive       = "active"
)

// Entry is one cached value with its last-synced timestamp.
type Entry struct {
	Value    string
	SyncedAt time.Time
}

// Cache wraps an in-memory TTL store with the schema above.
type Cache struct {
	store *cache.Cache
	now   func() time.Time
}

// New creates a cache whose entries expire after ttl.
func New(ttl time.Duration) *Cache {
	return &Cache{
		store: cache.New(ttl, 2*ttl),
		now:   time.Now,
	}
}

// Put stores a value and stamps it as synced now.
func (c *Cache) Put(key, value string) {
	c.store.SetDefault(key, Entry{Value: value, SyncedAt: c.now()})
}

// Get returns the entry for key.
func (c *Cache) Get(key string) (Entry, bool) {
	v, found := c.store.Get(key)
	if !found {
		return Entry{}, false
	}
	return v.(Entry), true
}

// Stale reports whether the entry is missing or older than maxAge. Callers
// use it to decide when a server round-trip is due.
func (c *Cache) Stale(key string, maxAge time.Duration) bool {
	entry, found := c.Get(key)
	if !found {
		return true
	}
	return c.now().Sub(entry.SyncedAt) > maxAge
}

// Delete removes an entry.
func (c *Cache) Delete(key string) {
	c.store.Delete(key)
}

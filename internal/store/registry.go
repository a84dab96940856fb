package store

import (
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"plume/internal/gateway"
)

// Session pairs one browser session's gateway client with its state
// store.
type Session struct {
	Client *gateway.Client
	Store  *Store

	expiresAt time.Time
}

// Registry keeps per-session stores in a bounded LRU with a sliding
// TTL. Evicted or expired sessions are closed so their auth
// subscription is released.
type Registry struct {
	mu        sync.Mutex
	cache     *lru.Cache[string, *Session]
	ttl       time.Duration
	newClient func() *gateway.Client
}

// NewRegistry creates a registry holding at most size sessions.
// newClient builds a fresh gateway client for an unseen session id.
func NewRegistry(size int, ttl time.Duration, newClient func() *gateway.Client) (*Registry, error) {
	cache, err := lru.NewWithEvict[string, *Session](size, func(_ string, sess *Session) {
		sess.Store.Close()
	})
	if err != nil {
		return nil, err
	}
	return &Registry{cache: cache, ttl: ttl, newClient: newClient}, nil
}

// Get returns the session for id, creating it when absent or expired;
// created reports which happened. Each access slides the expiry
// forward.
func (r *Registry) Get(id string) (sess *Session, created bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if sess, ok := r.cache.Get(id); ok {
		if time.Now().Before(sess.expiresAt) {
			sess.expiresAt = time.Now().Add(r.ttl)
			return sess, false
		}
		r.cache.Remove(id) // expired, eviction hook closes it
	}

	gw := r.newClient()
	sess = &Session{
		Client:    gw,
		Store:     New(gw),
		expiresAt: time.Now().Add(r.ttl),
	}
	r.cache.Add(id, sess)
	return sess, true
}

// Drop removes a session eagerly (logout).
func (r *Registry) Drop(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache.Remove(id)
}

// Len reports the live session count.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cache.Len()
}

// Package gateway wraps the backing providers (relational store, object
// storage, mail) behind domain-level operations. One Client exists per
// browser session and carries that session's authenticated user, so the
// data operations can resolve ownership without threading the user
// through every call site.
package gateway

import (
	"context"
	"io"
	"sync"

	"gorm.io/gorm"

	"plume/internal/models"
)

// ObjectStorage is the object-storage provider contract: write a blob
// under a key and resolve the key to a public URL.
type ObjectStorage interface {
	Put(ctx context.Context, key, contentType string, body io.Reader) error
	PublicURL(key string) string
}

// Mailer sends the registration confirmation code. Nil disables the
// confirmation flow entirely.
type Mailer interface {
	SendConfirmationEmail(to, code string) error
}

type Client struct {
	db      *gorm.DB
	storage ObjectStorage
	mailer  Mailer

	// confirmSignup gates whether Register issues a session
	// immediately or waits for the emailed code.
	confirmSignup bool

	mu      sync.Mutex
	user    *models.User
	subs    map[int]func(*models.User)
	nextSub int
}

// Options configures a Client. Storage may be nil (uploads fail with a
// StorageError); Mailer may be nil (registration signs in immediately).
type Options struct {
	DB            *gorm.DB
	Storage       ObjectStorage
	Mailer        Mailer
	ConfirmSignup bool
}

func NewClient(opts Options) *Client {
	return &Client{
		db:            opts.DB,
		storage:       opts.Storage,
		mailer:        opts.Mailer,
		confirmSignup: opts.ConfirmSignup && opts.Mailer != nil,
		subs:          make(map[int]func(*models.User)),
	}
}

// CurrentUser returns the session's user, or nil when signed out. It
// never fails; a broken session is the same as no session.
func (c *Client) CurrentUser() *models.User {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.user
}

// SubscribeAuthChanges registers fn to run on every session transition
// (sign-in, sign-out, restore). The returned handle must be called
// exactly once to release the listener.
func (c *Client) SubscribeAuthChanges(fn func(*models.User)) (unsubscribe func()) {
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.subs, id)
			c.mu.Unlock()
		})
	}
}

// setUser swaps the session principal and notifies subscribers.
// Callbacks run outside the lock; a subscriber may re-enter the client.
func (c *Client) setUser(user *models.User) {
	c.mu.Lock()
	c.user = user
	fns := make([]func(*models.User), 0, len(c.subs))
	for _, fn := range c.subs {
		fns = append(fns, fn)
	}
	c.mu.Unlock()

	for _, fn := range fns {
		fn(user)
	}
}

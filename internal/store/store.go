// Package store holds the per-session client state container. It is
// split into three independent slices (auth, posts, comments); each
// slice owns disjoint state that only its own operations mutate.
//
// Every asynchronous operation moves through three observable phases:
// pending (loading set, error cleared), fulfilled and rejected. An
// operation records the slice generation when it starts; a completion
// whose generation no longer matches is stale (a newer operation took
// over the slice) and its state update is discarded.
package store

import (
	"plume/internal/gateway"
)

// Store aggregates the three slices for one browser session.
type Store struct {
	Auth     *AuthSlice
	Posts    *PostsSlice
	Comments *CommentsSlice

	unsubscribe func()
}

// New builds a store wired to gw and subscribes the auth slice to the
// gateway's session transitions, making the subscription the single
// source of truth for the signed-in user.
func New(gw *gateway.Client) *Store {
	s := &Store{
		Auth:     newAuthSlice(gw),
		Posts:    newPostsSlice(gw),
		Comments: newCommentsSlice(gw),
	}
	s.unsubscribe = gw.SubscribeAuthChanges(s.Auth.SetUser)
	return s
}

// Close releases the auth subscription. Must be called exactly once
// when the session is evicted, or the gateway leaks the listener.
func (s *Store) Close() {
	s.unsubscribe()
}

// errMsg renders an error for slice state; nil is the empty string.
func errMsg(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

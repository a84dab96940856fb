package store

import (
	"context"
	"sync"

	"plume/internal/gateway"
	"plume/internal/models"
)

// CommentsState is scoped to the single post being viewed.
type CommentsState struct {
	Items     []models.Comment
	IsLoading bool
	Error     string
}

type CommentsSlice struct {
	gw *gateway.Client

	mu    sync.Mutex
	gen   uint64
	state CommentsState
}

func newCommentsSlice(gw *gateway.Client) *CommentsSlice {
	return &CommentsSlice{gw: gw}
}

func (s *CommentsSlice) State() CommentsState {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state
	st.Items = append([]models.Comment(nil), s.state.Items...)
	return st
}

func (s *CommentsSlice) begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.state.IsLoading = true
	s.state.Error = ""
	return s.gen
}

// FetchForPost replaces the comment list with postID's comments,
// oldest first.
func (s *CommentsSlice) FetchForPost(ctx context.Context, postID uint) error {
	gen := s.begin()
	comments, err := s.gw.ListComments(ctx, postID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return err
	}
	s.state.IsLoading = false
	if err != nil {
		s.state.Error = errMsg(err)
		return err
	}
	s.state.Items = comments
	return nil
}

// Add appends the new comment; the backend orders ascending and the
// new comment is newest, so chronological order is preserved.
func (s *CommentsSlice) Add(ctx context.Context, postID uint, data models.CommentFormData) (*models.Comment, error) {
	gen := s.begin()
	comment, err := s.gw.AddComment(ctx, postID, data)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return comment, err
	}
	s.state.IsLoading = false
	if err != nil {
		s.state.Error = errMsg(err)
		return nil, err
	}
	s.state.Items = append(s.state.Items, *comment)
	return comment, nil
}

// Clear must run whenever the viewed post changes, so a new post never
// shows the previous post's comments.
func (s *CommentsSlice) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Items = nil
	s.state.Error = ""
	s.state.IsLoading = false
	s.gen++ // in-flight fetches for the old post become stale
}

func (s *CommentsSlice) ClearError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Error = ""
}

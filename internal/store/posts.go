package store

import (
	"context"
	"sync"

	"plume/internal/gateway"
	"plume/internal/models"
)

const DefaultPageSize = 10

// PostsState is a snapshot of the posts slice. Items mirrors the
// current listing page; CurrentItem is the working-set cache for the
// post being viewed.
type PostsState struct {
	Items       []models.Post
	CurrentItem *models.Post
	IsLoading   bool
	Error       string
	TotalCount  int64
	CurrentPage int
	PageSize    int
}

type PostsSlice struct {
	gw *gateway.Client

	mu    sync.Mutex
	gen   uint64
	state PostsState
}

func newPostsSlice(gw *gateway.Client) *PostsSlice {
	return &PostsSlice{gw: gw, state: PostsState{CurrentPage: 1, PageSize: DefaultPageSize}}
}

func (s *PostsSlice) State() PostsState {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state
	st.Items = append([]models.Post(nil), s.state.Items...)
	return st
}

func (s *PostsSlice) begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.state.IsLoading = true
	s.state.Error = ""
	return s.gen
}

// FetchList replaces the listing page. On failure the previous items
// stay visible and only the error is surfaced.
func (s *PostsSlice) FetchList(ctx context.Context, page, pageSize int) error {
	gen := s.begin()
	pageData, err := s.gw.ListPosts(ctx, page, pageSize)

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
	s.state.Items = pageData.Items
	s.state.TotalCount = pageData.TotalCount
	s.state.CurrentPage = pageData.Page
	s.state.PageSize = pageSize
	return nil
}

// FetchByID loads the working-set post. Errors leave CurrentItem nil.
func (s *PostsSlice) FetchByID(ctx context.Context, id uint) (*models.Post, error) {
	gen := s.begin()
	post, err := s.gw.GetPost(ctx, id)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return post, err
	}
	s.state.IsLoading = false
	if err != nil {
		s.state.CurrentItem = nil
		s.state.Error = errMsg(err)
		return nil, err
	}
	s.state.CurrentItem = post
	return post, nil
}

// Create inserts a post and prepends it to the listing, consistent
// with the newest-first ordering. Any image upload must have resolved
// to a URL in data before this is called; a failed upload never
// reaches here.
func (s *PostsSlice) Create(ctx context.Context, data models.PostFormData) (*models.Post, error) {
	gen := s.begin()
	post, err := s.gw.CreatePost(ctx, data)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return post, err
	}
	s.state.IsLoading = false
	if err != nil {
		s.state.Error = errMsg(err)
		return nil, err
	}
	s.state.Items = append([]models.Post{*post}, s.state.Items...)
	s.state.TotalCount++
	return post, nil
}

// Update fully replaces the post, then mirrors it into Items and
// CurrentItem wherever the id matches.
func (s *PostsSlice) Update(ctx context.Context, id uint, data models.PostFormData) (*models.Post, error) {
	gen := s.begin()
	post, err := s.gw.UpdatePost(ctx, id, data)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return post, err
	}
	s.state.IsLoading = false
	if err != nil {
		s.state.Error = errMsg(err)
		return nil, err
	}
	for i := range s.state.Items {
		if s.state.Items[i].ID == id {
			s.state.Items[i] = *post
			break
		}
	}
	if s.state.CurrentItem != nil && s.state.CurrentItem.ID == id {
		s.state.CurrentItem = post
	}
	return post, nil
}

// Remove deletes the post and evicts it from the cached listing.
func (s *PostsSlice) Remove(ctx context.Context, id uint) error {
	gen := s.begin()
	err := s.gw.DeletePost(ctx, id)

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
	filtered := s.state.Items[:0]
	for _, p := range s.state.Items {
		if p.ID != id {
			filtered = append(filtered, p)
		}
	}
	s.state.Items = filtered
	if s.state.TotalCount > 0 {
		s.state.TotalCount--
	}
	if s.state.CurrentItem != nil && s.state.CurrentItem.ID == id {
		s.state.CurrentItem = nil
	}
	return nil
}

func (s *PostsSlice) SetCurrentPage(page int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.CurrentPage = page
}

// ClearCurrent drops the working-set post on navigation away.
func (s *PostsSlice) ClearCurrent() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.CurrentItem = nil
}

func (s *PostsSlice) ClearError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Error = ""
}

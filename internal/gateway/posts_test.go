package gateway

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plume/internal/models"
)

func seedPosts(t *testing.T, c *Client, n int) []models.Post {
	t.Helper()
	posts := make([]models.Post, 0, n)
	base := time.Now().Add(-time.Duration(n) * time.Minute)
	for i := 0; i < n; i++ {
		post, err := c.CreatePost(context.Background(), models.PostFormData{
			Title:   fmt.Sprintf("Post %d", i+1),
			Content: "some content",
		})
		require.NoError(t, err)
		// spread creation times so ordering is unambiguous
		createdAt := base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, c.db.Model(post).UpdateColumns(map[string]interface{}{
			"created_at": createdAt,
			"updated_at": createdAt,
		}).Error)
		posts = append(posts, *post)
	}
	return posts
}

func TestCreatePostRequiresSession(t *testing.T) {
	c, _ := newTestClient(t)

	_, err := c.CreatePost(context.Background(), models.PostFormData{Title: "Hi", Content: "x"})
	var ae *AuthError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "not authenticated", ae.Message)
}

func TestCreatePostAssignsOwnerAndTimestamps(t *testing.T) {
	c, _ := newTestClient(t)
	user := signUp(t, c, "ada@example.com")

	post, err := c.CreatePost(context.Background(), models.PostFormData{
		Title:    "First post",
		Content:  "hello world",
		ImageURL: "https://cdn.test/post/1/x.jpg",
	})
	require.NoError(t, err)
	assert.NotZero(t, post.ID)
	assert.Equal(t, user.ID, post.UserID)
	assert.False(t, post.CreatedAt.IsZero())
	assert.GreaterOrEqual(t, post.UpdatedAt.UnixNano(), post.CreatedAt.UnixNano())
}

func TestListPostsNewestFirst(t *testing.T) {
	c, _ := newTestClient(t)
	signUp(t, c, "ada@example.com")
	seedPosts(t, c, 3)

	page, err := c.ListPosts(context.Background(), 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Items, 3)
	assert.Equal(t, int64(3), page.TotalCount)
	assert.Equal(t, "Post 3", page.Items[0].Title)
	assert.Equal(t, "Post 1", page.Items[2].Title)
}

func TestListPostsPaginationBoundaries(t *testing.T) {
	c, _ := newTestClient(t)
	signUp(t, c, "ada@example.com")
	seedPosts(t, c, 25)

	// totalCount=25, pageSize=10: pages of 10, 10, 5
	for _, tc := range []struct {
		page    int
		want    int
		first   string
		last    string
	}{
		{1, 10, "Post 25", "Post 16"},
		{2, 10, "Post 15", "Post 6"},
		{3, 5, "Post 5", "Post 1"},
	} {
		page, err := c.ListPosts(context.Background(), tc.page, 10)
		require.NoError(t, err)
		require.Len(t, page.Items, tc.want, "page %d", tc.page)
		assert.Equal(t, int64(25), page.TotalCount)
		assert.Equal(t, tc.page, page.Page)
		assert.Equal(t, tc.first, page.Items[0].Title)
		assert.Equal(t, tc.last, page.Items[len(page.Items)-1].Title)
	}

	// past the end: clamped to the last page, count intact
	page, err := c.ListPosts(context.Background(), 4, 10)
	require.NoError(t, err)
	assert.Equal(t, 3, page.Page)
	assert.Len(t, page.Items, 5)
	assert.Equal(t, int64(25), page.TotalCount)

	// page < 1 normalizes to the first page
	page, err = c.ListPosts(context.Background(), 0, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Len(t, page.Items, 10)
}

func TestListPostsFillsCommentCounts(t *testing.T) {
	c, _ := newTestClient(t)
	signUp(t, c, "ada@example.com")
	posts := seedPosts(t, c, 2)

	for i := 0; i < 3; i++ {
		_, err := c.AddComment(context.Background(), posts[0].ID, models.CommentFormData{Content: "hi"})
		require.NoError(t, err)
	}

	page, err := c.ListPosts(context.Background(), 1, 10)
	require.NoError(t, err)
	byTitle := map[string]int{}
	for _, p := range page.Items {
		byTitle[p.Title] = p.CommentCount
	}
	assert.Equal(t, 3, byTitle["Post 1"])
	assert.Equal(t, 0, byTitle["Post 2"])
}

func TestGetPostNotFound(t *testing.T) {
	c, _ := newTestClient(t)

	_, err := c.GetPost(context.Background(), 42)
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}

func TestUpdatePostReplacesAndBumpsUpdatedAt(t *testing.T) {
	c, _ := newTestClient(t)
	signUp(t, c, "ada@example.com")

	post, err := c.CreatePost(context.Background(), models.PostFormData{Title: "T1", Content: "C1"})
	require.NoError(t, err)
	prev := post.UpdatedAt

	time.Sleep(20 * time.Millisecond)
	updated, err := c.UpdatePost(context.Background(), post.ID, models.PostFormData{Title: "T2", Content: "C2"})
	require.NoError(t, err)
	assert.Equal(t, "T2", updated.Title)
	assert.Equal(t, "C2", updated.Content)
	assert.Equal(t, "", updated.ImageURL, "full replace clears an omitted image")
	assert.True(t, updated.UpdatedAt.After(prev), "updated_at must move forward")

	got, err := c.GetPost(context.Background(), post.ID)
	require.NoError(t, err)
	assert.Equal(t, "T2", got.Title)
	assert.Equal(t, "C2", got.Content)
}

func TestUpdatePostOwnerOnly(t *testing.T) {
	c, _ := newTestClient(t)
	signUp(t, c, "ada@example.com")
	post, err := c.CreatePost(context.Background(), models.PostFormData{Title: "Mine", Content: "x"})
	require.NoError(t, err)

	signUp(t, c, "bob@example.com") // switches the session to bob
	_, err = c.UpdatePost(context.Background(), post.ID, models.PostFormData{Title: "Stolen", Content: "x"})
	var ae *AuthError
	require.ErrorAs(t, err, &ae)

	err = c.DeletePost(context.Background(), post.ID)
	require.ErrorAs(t, err, &ae)
}

func TestDeletePostIdempotentAndCascades(t *testing.T) {
	c, _ := newTestClient(t)
	signUp(t, c, "ada@example.com")

	post, err := c.CreatePost(context.Background(), models.PostFormData{Title: "Gone soon", Content: "x"})
	require.NoError(t, err)
	_, err = c.AddComment(context.Background(), post.ID, models.CommentFormData{Content: "hi"})
	require.NoError(t, err)

	require.NoError(t, c.DeletePost(context.Background(), post.ID))

	page, err := c.ListPosts(context.Background(), 1, 10)
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Equal(t, int64(0), page.TotalCount)

	comments, err := c.ListComments(context.Background(), post.ID)
	require.NoError(t, err)
	assert.Empty(t, comments, "comments go with their post")

	// deleting again is not an error
	require.NoError(t, c.DeletePost(context.Background(), post.ID))
}

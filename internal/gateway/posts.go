package gateway

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"plume/internal/models"
)

// PostPage is one page of the listing plus the collection total.
// Page is the page actually served, after clamping to the last one.
type PostPage struct {
	Items      []models.Post
	TotalCount int64
	Page       int
}

// fillCommentCounts 批量填充帖子的评论数量
func (c *Client) fillCommentCounts(ctx context.Context, posts []models.Post) {
	if len(posts) == 0 {
		return
	}

	postIDs := make([]uint, len(posts))
	for i, p := range posts {
		postIDs[i] = p.ID
	}

	type countResult struct {
		PostID uint
		Count  int
	}
	var results []countResult
	c.db.WithContext(ctx).Model(&models.Comment{}).
		Select("post_id, COUNT(*) as count").
		Where("post_id IN ?", postIDs).
		Group("post_id").
		Scan(&results)

	countMap := make(map[uint]int)
	for _, r := range results {
		countMap[r.PostID] = r.Count
	}
	for i := range posts {
		posts[i].CommentCount = countMap[posts[i].ID]
	}
}

// ListPosts returns page (1-indexed) of posts, newest first, together
// with the total count so the caller can derive the page count.
func (c *Client) ListPosts(ctx context.Context, page, pageSize int) (*PostPage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}

	var total int64
	if err := c.db.WithContext(ctx).Model(&models.Post{}).Count(&total).Error; err != nil {
		return nil, dataErr("failed to load posts", err)
	}

	// 请求页超出末页时退到末页
	lastPage := int((total + int64(pageSize) - 1) / int64(pageSize))
	if lastPage < 1 {
		lastPage = 1
	}
	if page > lastPage {
		page = lastPage
	}
	offset := (page - 1) * pageSize

	var posts []models.Post
	err := c.db.WithContext(ctx).Preload("User").
		Order("created_at DESC, id DESC").
		Limit(pageSize).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, dataErr("failed to load posts", err)
	}

	c.fillCommentCounts(ctx, posts)

	return &PostPage{Items: posts, TotalCount: total, Page: page}, nil
}

// GetPost looks a post up by id.
func (c *Client) GetPost(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := c.db.WithContext(ctx).Preload("User").First(&post, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFoundErr("post not found")
	}
	if err != nil {
		return nil, dataErr("failed to load post", err)
	}
	return &post, nil
}

// CreatePost inserts a post owned by the session user. Id and
// timestamps are assigned here, never by the caller.
func (c *Client) CreatePost(ctx context.Context, data models.PostFormData) (*models.Post, error) {
	user := c.CurrentUser()
	if user == nil {
		return nil, authErr("not authenticated", nil)
	}

	post := models.Post{
		UserID:   user.ID,
		Title:    data.Title,
		Content:  data.Content,
		ImageURL: data.ImageURL,
	}
	if err := c.db.WithContext(ctx).Create(&post).Error; err != nil {
		return nil, dataErr("failed to create post", err)
	}
	post.User = *user
	return &post, nil
}

// UpdatePost fully replaces title/content/image of an owned post and
// refreshes updated_at. Partial patches are deliberately not offered.
func (c *Client) UpdatePost(ctx context.Context, id uint, data models.PostFormData) (*models.Post, error) {
	user := c.CurrentUser()
	if user == nil {
		return nil, authErr("not authenticated", nil)
	}

	var post models.Post
	err := c.db.WithContext(ctx).First(&post, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFoundErr("post not found")
	}
	if err != nil {
		return nil, dataErr("failed to load post", err)
	}
	if post.UserID != user.ID {
		return nil, authErr("not the post owner", nil)
	}

	post.Title = data.Title
	post.Content = data.Content
	post.ImageURL = data.ImageURL
	if err := c.db.WithContext(ctx).Save(&post).Error; err != nil {
		return nil, dataErr("failed to update post", err)
	}
	post.User = *user
	return &post, nil
}

// DeletePost removes an owned post and its comments. Deleting a post
// that is already gone is not an error.
func (c *Client) DeletePost(ctx context.Context, id uint) error {
	user := c.CurrentUser()
	if user == nil {
		return authErr("not authenticated", nil)
	}

	var post models.Post
	err := c.db.WithContext(ctx).First(&post, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil // idempotent
	}
	if err != nil {
		return dataErr("failed to load post", err)
	}
	if post.UserID != user.ID {
		return authErr("not the post owner", nil)
	}

	err = c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", post.ID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&post).Error
	})
	if err != nil {
		return dataErr("failed to delete post", err)
	}
	return nil
}

package gateway

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"plume/internal/models"
)

// ListComments returns a post's comments oldest first.
func (c *Client) ListComments(ctx context.Context, postID uint) ([]models.Comment, error) {
	var comments []models.Comment
	err := c.db.WithContext(ctx).Preload("User").
		Where("post_id = ?", postID).
		Order("created_at ASC, id ASC").
		Find(&comments).Error
	if err != nil {
		return nil, dataErr("failed to load comments", err)
	}
	return comments, nil
}

// AddComment appends a comment by the session user. The post must
// exist; comments on deleted posts are rejected.
func (c *Client) AddComment(ctx context.Context, postID uint, data models.CommentFormData) (*models.Comment, error) {
	user := c.CurrentUser()
	if user == nil {
		return nil, authErr("not authenticated", nil)
	}

	var post models.Post
	err := c.db.WithContext(ctx).First(&post, postID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFoundErr("post not found")
	}
	if err != nil {
		return nil, dataErr("failed to load post", err)
	}

	comment := models.Comment{
		PostID:   postID,
		UserID:   user.ID,
		Content:  data.Content,
		ImageURL: data.ImageURL,
	}
	if err := c.db.WithContext(ctx).Create(&comment).Error; err != nil {
		return nil, dataErr("failed to add comment", err)
	}
	comment.User = *user
	return &comment, nil
}

package gateway

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Upload purposes; they prefix the storage key so post and comment
// images live under separate trees.
const (
	PurposePost    = "post"
	PurposeComment = "comment"
)

// UploadImage stores an image under {purpose}/{userID}/{uuid}{ext} and
// returns its public URL. The extension comes from the original
// filename, .jpg when none is detectable.
func (c *Client) UploadImage(ctx context.Context, purpose, filename, contentType string, body io.Reader) (string, error) {
	user := c.CurrentUser()
	if user == nil {
		return "", authErr("not authenticated", nil)
	}
	if purpose != PurposePost && purpose != PurposeComment {
		return "", storageErr(fmt.Sprintf("unknown upload purpose %q", purpose), nil)
	}
	if c.storage == nil {
		return "", storageErr("image storage is not configured", nil)
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		ext = ".jpg"
	}
	key := fmt.Sprintf("%s/%d/%s%s", purpose, user.ID, uuid.NewString(), ext)

	if err := c.storage.Put(ctx, key, contentType, body); err != nil {
		return "", storageErr("image upload failed", err)
	}
	return c.storage.PublicURL(key), nil
}

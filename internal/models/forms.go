package models

// PostFormData carries user input for creating or updating a post.
// ImageURL is resolved by the caller before the write is issued.
type PostFormData struct {
	Title    string `form:"title"`
	Content  string `form:"content"`
	ImageURL string `form:"-"`
}

// CommentFormData carries user input for a new comment.
type CommentFormData struct {
	Content  string `form:"content"`
	ImageURL string `form:"-"`
}

package handlers

import (
	"errors"
	"math"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"plume/internal/gateway"
	"plume/internal/middleware"
	"plume/internal/models"
	"plume/internal/store"
	"plume/internal/utils"
)

const maxImageSize = 10 * 1024 * 1024 // 10MB

type BlogHandler struct{}

func NewBlogHandler() *BlogHandler {
	return &BlogHandler{}
}

// validatePostForm enforces the client-side rules: trimmed title of at
// least 3 characters, non-empty trimmed content. Advisory only, never
// a security boundary.
func validatePostForm(title, content string) string {
	if len(strings.TrimSpace(title)) < 3 {
		return "Title must be at least 3 characters"
	}
	if strings.TrimSpace(content) == "" {
		return "Content is required"
	}
	return ""
}

// checkImageFile rejects non-image and oversized uploads before any
// bytes leave the process.
func checkImageFile(header *multipart.FileHeader) string {
	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		return "Only image files can be uploaded"
	}
	if header.Size > maxImageSize {
		return "Images must be smaller than 10MB"
	}
	return ""
}

// uploadFormImage resolves the optional "image" form file to a public
// URL. The upload must succeed before the dependent create/update is
// issued; (url="", uploaded=false) means no file was attached.
func uploadFormImage(c *gin.Context, sess *store.Session, purpose string) (url string, uploaded bool, errMsg string) {
	header, err := c.FormFile("image")
	if err != nil {
		return "", false, "" // no file attached
	}
	if msg := checkImageFile(header); msg != "" {
		return "", false, msg
	}

	file, err := header.Open()
	if err != nil {
		return "", false, "Failed to read the image, retry or remove it"
	}
	defer file.Close()

	url, err = sess.Client.UploadImage(c.Request.Context(), purpose,
		header.Filename, header.Header.Get("Content-Type"), file)
	if err != nil {
		return "", false, "Image upload failed, retry or remove the image"
	}
	return url, true, ""
}

// parseID reads the numeric :id route parameter; 0 means malformed.
func parseID(c *gin.Context) uint {
	return uint(utils.StringToInt(c.Param("id")))
}

func postPath(id uint) string {
	return "/post/" + strconv.FormatUint(uint64(id), 10)
}

// List 首页文章列表，按创建时间倒序分页
func (h *BlogHandler) List(c *gin.Context) {
	page := 1
	if p := c.Query("page"); p != "" {
		if n := utils.StringToInt(p); n > 0 {
			page = n
		}
	}

	sess := middleware.ClientSession(c)
	sess.Store.Posts.FetchList(c.Request.Context(), page, store.DefaultPageSize)

	st := sess.Store.Posts.State()
	totalPages := int(math.Ceil(float64(st.TotalCount) / float64(st.PageSize)))

	Render(c, http.StatusOK, "blog/list.html", gin.H{
		"Posts":       st.Items,
		"Error":       st.Error,
		"CurrentPage": st.CurrentPage,
		"TotalPages":  totalPages,
		"TotalCount":  st.TotalCount,
	})
}

// renderDetail loads the working set for one post and renders the
// detail page. Comments are cleared first so a stale post's comments
// never show under the new one.
func (h *BlogHandler) renderDetail(c *gin.Context, id uint, code int, extra gin.H) {
	sess := middleware.ClientSession(c)

	post, err := sess.Store.Posts.FetchByID(c.Request.Context(), id)
	if err != nil {
		if gateway.IsNotFound(err) {
			RenderError(c, http.StatusNotFound, "This post does not exist")
		} else {
			RenderError(c, http.StatusInternalServerError, sess.Store.Posts.State().Error)
		}
		return
	}

	sess.Store.Comments.Clear()
	sess.Store.Comments.FetchForPost(c.Request.Context(), id)
	comments := sess.Store.Comments.State()

	isOwner := false
	if user, exists := c.Get(middleware.CheckUserKey); exists {
		isOwner = user.(*models.User).ID == post.UserID
	}

	data := gin.H{
		"Title":         post.Title,
		"Post":          post,
		"ContentHTML":   utils.RenderMarkdown(post.Content),
		"Comments":      comments.Items,
		"CommentsError": comments.Error,
		"IsOwner":       isOwner,
	}
	for k, v := range extra {
		data[k] = v
	}
	Render(c, code, "blog/detail.html", data)
}

// Detail 文章详情页，公开访问
func (h *BlogHandler) Detail(c *gin.Context) {
	h.renderDetail(c, parseID(c), http.StatusOK, nil)
}

func (h *BlogHandler) ShowCreate(c *gin.Context) {
	Render(c, http.StatusOK, "blog/create.html", nil)
}

// Create 发布新文章。配图先上传，失败则整个发布中止
func (h *BlogHandler) Create(c *gin.Context) {
	title := c.PostForm("title")
	content := c.PostForm("content")

	form := gin.H{"FormTitle": title, "FormContent": content}
	if msg := validatePostForm(title, content); msg != "" {
		form["Error"] = msg
		Render(c, http.StatusBadRequest, "blog/create.html", form)
		return
	}

	sess := middleware.ClientSession(c)
	imageURL, _, uploadErr := uploadFormImage(c, sess, gateway.PurposePost)
	if uploadErr != "" {
		form["Error"] = uploadErr
		Render(c, http.StatusBadRequest, "blog/create.html", form)
		return
	}

	post, err := sess.Store.Posts.Create(c.Request.Context(), models.PostFormData{
		Title:    strings.TrimSpace(title),
		Content:  content,
		ImageURL: imageURL,
	})
	if err != nil {
		form["Error"] = sess.Store.Posts.State().Error
		Render(c, http.StatusInternalServerError, "blog/create.html", form)
		return
	}

	c.Redirect(http.StatusFound, postPath(post.ID))
}

// ShowEdit 编辑页面，仅作者可见，其他人重定向回首页
func (h *BlogHandler) ShowEdit(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)

	sess := middleware.ClientSession(c)
	post, err := sess.Store.Posts.FetchByID(c.Request.Context(), parseID(c))
	if err != nil {
		c.Redirect(http.StatusFound, "/")
		return
	}
	if post.UserID != user.ID {
		c.Redirect(http.StatusFound, "/")
		return
	}

	Render(c, http.StatusOK, "blog/edit.html", gin.H{"Post": post})
}

// Update 保存编辑。配图策略：新文件优先，其次显式移除，否则保留原图
func (h *BlogHandler) Update(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)
	id := parseID(c)

	sess := middleware.ClientSession(c)
	post, err := sess.Store.Posts.FetchByID(c.Request.Context(), id)
	if err != nil {
		c.Redirect(http.StatusFound, "/")
		return
	}
	if post.UserID != user.ID {
		c.Redirect(http.StatusFound, "/")
		return
	}

	title := c.PostForm("title")
	content := c.PostForm("content")

	form := gin.H{"Post": post, "FormTitle": title, "FormContent": content}
	if msg := validatePostForm(title, content); msg != "" {
		form["Error"] = msg
		Render(c, http.StatusBadRequest, "blog/edit.html", form)
		return
	}

	imageURL, uploaded, uploadErr := uploadFormImage(c, sess, gateway.PurposePost)
	if uploadErr != "" {
		form["Error"] = uploadErr
		Render(c, http.StatusBadRequest, "blog/edit.html", form)
		return
	}
	if !uploaded {
		if c.PostForm("remove_image") != "" {
			imageURL = ""
		} else {
			imageURL = post.ImageURL
		}
	}

	if _, err := sess.Store.Posts.Update(c.Request.Context(), id, models.PostFormData{
		Title:    strings.TrimSpace(title),
		Content:  content,
		ImageURL: imageURL,
	}); err != nil {
		form["Error"] = sess.Store.Posts.State().Error
		Render(c, http.StatusInternalServerError, "blog/edit.html", form)
		return
	}

	c.Redirect(http.StatusFound, postPath(id))
}

// Delete 删除文章（含其评论），随后回首页
func (h *BlogHandler) Delete(c *gin.Context) {
	sess := middleware.ClientSession(c)
	if err := sess.Store.Posts.Remove(c.Request.Context(), parseID(c)); err != nil {
		var ae *gateway.AuthError
		if errors.As(err, &ae) {
			RenderError(c, http.StatusForbidden, ae.Message)
			return
		}
		RenderError(c, http.StatusInternalServerError, sess.Store.Posts.State().Error)
		return
	}
	c.Redirect(http.StatusFound, "/")
}

// CreateComment 发表评论，需登录（未登录由路由守卫重定向到 /login）
func (h *BlogHandler) CreateComment(c *gin.Context) {
	id := parseID(c)
	content := c.PostForm("content")

	if strings.TrimSpace(content) == "" {
		h.renderDetail(c, id, http.StatusBadRequest, gin.H{
			"CommentFormError": "Comment content is required",
			"CommentDraft":     content,
		})
		return
	}

	sess := middleware.ClientSession(c)
	imageURL, _, uploadErr := uploadFormImage(c, sess, gateway.PurposeComment)
	if uploadErr != "" {
		h.renderDetail(c, id, http.StatusBadRequest, gin.H{
			"CommentFormError": uploadErr,
			"CommentDraft":     content,
		})
		return
	}

	if _, err := sess.Store.Comments.Add(c.Request.Context(), id, models.CommentFormData{
		Content:  content,
		ImageURL: imageURL,
	}); err != nil {
		h.renderDetail(c, id, http.StatusInternalServerError, gin.H{
			"CommentFormError": sess.Store.Comments.State().Error,
			"CommentDraft":     content,
		})
		return
	}

	c.Redirect(http.StatusFound, postPath(id))
}

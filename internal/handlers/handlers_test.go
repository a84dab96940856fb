package handlers_test

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-contrib/multitemplate"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"plume/internal/gateway"
	"plume/internal/models"
	"plume/internal/router"
	"plume/internal/store"
	"plume/internal/utils"
)

const templatesDir = "../../web/templates"

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, conn.AutoMigrate(&models.User{}, &models.Post{}, &models.Comment{}))
	return conn
}

type fakeStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
	failPut bool
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: make(map[string][]byte)}
}

func (f *fakeStorage) Put(_ context.Context, key, _ string, body io.Reader) error {
	if f.failPut {
		return fmt.Errorf("bucket does not exist")
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = data
	return nil
}

func (f *fakeStorage) PublicURL(key string) string {
	return "https://cdn.test/" + key
}

func loadTestTemplates(t *testing.T) multitemplate.Renderer {
	t.Helper()
	r := multitemplate.NewRenderer()

	layouts, err := filepath.Glob(templatesDir + "/layouts/*.html")
	require.NoError(t, err)
	components, err := filepath.Glob(templatesDir + "/components/*.html")
	require.NoError(t, err)
	require.NotEmpty(t, layouts)

	assemble := func(view string) []string {
		files := make([]string, 0)
		files = append(files, layouts...)
		files = append(files, components...)
		files = append(files, view)
		return files
	}

	funcMap := template.FuncMap{
		"add":      func(a, b int) int { return a + b },
		"timeAgo":  func(interface{}) string { return "now" },
		"truncate": utils.Truncate,
		"markdown": utils.RenderMarkdown,
	}

	for key, view := range map[string]string{
		"auth/login.html":    "/views/auth/login.html",
		"auth/register.html": "/views/auth/register.html",
		"auth/confirm.html":  "/views/auth/confirm.html",
		"blog/list.html":     "/views/blog/list.html",
		"blog/detail.html":   "/views/blog/detail.html",
		"blog/create.html":   "/views/blog/create.html",
		"blog/edit.html":     "/views/blog/edit.html",
		"error.html":         "/views/error.html",
	} {
		r.AddFromFilesFuncs(key, funcMap, assemble(templatesDir+view)...)
	}
	return r
}

func newTestApp(t *testing.T, st gateway.ObjectStorage) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	conn := newTestDB(t)
	reg, err := store.NewRegistry(100, time.Hour, func() *gateway.Client {
		return gateway.NewClient(gateway.Options{DB: conn, Storage: st})
	})
	require.NoError(t, err)

	r := gin.New()
	r.Use(sessions.Sessions("plume_session", cookie.NewStore([]byte("test-secret"))))
	r.HTMLRender = loadTestTemplates(t)
	router.RegisterRoutes(r, reg)
	return r, conn
}

// browser is a minimal cookie-keeping test client.
type browser struct {
	t *testing.T
	r *gin.Engine

	cookies map[string]*http.Cookie
}

func newBrowser(t *testing.T, r *gin.Engine) *browser {
	return &browser{t: t, r: r, cookies: make(map[string]*http.Cookie)}
}

func (b *browser) send(req *http.Request) *httptest.ResponseRecorder {
	for _, c := range b.cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	b.r.ServeHTTP(w, req)
	for _, c := range w.Result().Cookies() {
		b.cookies[c.Name] = c
	}
	return w
}

func (b *browser) get(path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	return b.send(req)
}

func (b *browser) postForm(path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return b.send(req)
}

// postMultipart submits a form with an attached file, as the create and
// edit pages do.
func (b *browser) postMultipart(path string, fields map[string]string, filename, contentType string, data []byte) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(b.t, w.WriteField(k, v))
	}
	if filename != "" {
		hdr := make(map[string][]string)
		hdr["Content-Disposition"] = []string{fmt.Sprintf(`form-data; name="image"; filename="%s"`, filename)}
		hdr["Content-Type"] = []string{contentType}
		part, err := w.CreatePart(hdr)
		require.NoError(b.t, err)
		_, err = part.Write(data)
		require.NoError(b.t, err)
	}
	require.NoError(b.t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return b.send(req)
}

func (b *browser) register(email string) {
	w := b.postForm("/register", url.Values{"email": {email}, "password": {"secret123"}})
	require.Equal(b.t, http.StatusFound, w.Code)
}

func (b *browser) createPost(title, content string) {
	w := b.postForm("/create", url.Values{"title": {title}, "content": {content}})
	require.Equal(b.t, http.StatusFound, w.Code)
}

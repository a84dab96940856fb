package store

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"plume/internal/gateway"
	"plume/internal/models"
)

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

type testEnv struct {
	store *Store
	gw    *gateway.Client
	db    *gorm.DB
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	conn := newTestDB(t)
	gw := gateway.NewClient(gateway.Options{DB: conn})
	return &testEnv{store: New(gw), gw: gw, db: conn}
}

// breakDB closes the underlying connection so every following gateway
// call fails at the transport.
func (e *testEnv) breakDB(t *testing.T) {
	t.Helper()
	sqlDB, err := e.db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())
}

func (e *testEnv) login(t *testing.T, email string) *models.User {
	t.Helper()
	user, err := e.store.Auth.Register(context.Background(), email, "secret123")
	require.NoError(t, err)
	require.NotNil(t, user)
	return user
}

func (e *testEnv) createPosts(t *testing.T, n int) []models.Post {
	t.Helper()
	out := make([]models.Post, 0, n)
	for i := 0; i < n; i++ {
		post, err := e.store.Posts.Create(context.Background(), models.PostFormData{
			Title:   fmt.Sprintf("Post %d", i+1),
			Content: "content",
		})
		require.NoError(t, err)
		out = append(out, *post)
	}
	return out
}

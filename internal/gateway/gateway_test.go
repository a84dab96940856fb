package gateway

import (
	"context"
	"fmt"
	"io"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

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
	// one connection so every query sees the same in-memory database
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

type fakeMailer struct {
	mu   sync.Mutex
	sent []string // recipient:code
	fail bool
}

func (m *fakeMailer) SendConfirmationEmail(to, code string) error {
	if m.fail {
		return fmt.Errorf("smtp unreachable")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, to+":"+code)
	return nil
}

func newTestClient(t *testing.T) (*Client, *fakeStorage) {
	t.Helper()
	st := newFakeStorage()
	c := NewClient(Options{DB: newTestDB(t), Storage: st})
	return c, st
}

// signUp registers and signs in a user for tests that need a session.
func signUp(t *testing.T, c *Client, email string) *models.User {
	t.Helper()
	user, err := c.Register(context.Background(), email, "secret123")
	require.NoError(t, err)
	require.NotNil(t, user)
	return user
}

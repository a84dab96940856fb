package middleware

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"plume/internal/store"
)

const CheckUserKey = "user"
const SessionKey = "client_session"

// AttachSession binds the request to its per-browser session: looks up
// (or creates) the session's store, restores the signed-in user after
// a process restart, and exposes both on the gin context.
func AttachSession(reg *store.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		cookie := sessions.Default(c)
		sid, _ := cookie.Get("sid").(string)
		if sid == "" {
			sid = uuid.NewString()
			cookie.Set("sid", sid)
			cookie.Save()
		}

		sess, created := reg.Get(sid)

		// Cookie outlives the in-memory client; rebuild the principal
		// from the persisted user id when they disagree.
		if uid, ok := cookie.Get("user_id").(uint); ok && sess.Client.CurrentUser() == nil {
			sess.Client.RestoreSession(c.Request.Context(), uid)
		}
		if created {
			sess.Store.Auth.CheckAuth(c.Request.Context())
		}

		c.Set(SessionKey, sess)
		if user := sess.Store.Auth.State().User; user != nil {
			c.Set(CheckUserKey, user)
		}
		c.Next()
	}
}

// AuthRequired redirects to the login page when no user is signed in.
// It runs after AttachSession.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, exists := c.Get(CheckUserKey); !exists {
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}
		c.Next()
	}
}

// ClientSession pulls the request's session out of the gin context.
func ClientSession(c *gin.Context) *store.Session {
	return c.MustGet(SessionKey).(*store.Session)
}

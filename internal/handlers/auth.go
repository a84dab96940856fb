package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"plume/internal/middleware"
)

type AuthHandler struct{}

func NewAuthHandler() *AuthHandler {
	return &AuthHandler{}
}

func (h *AuthHandler) ShowRegister(c *gin.Context) {
	Render(c, http.StatusOK, "auth/register.html", nil)
}

func (h *AuthHandler) Register(c *gin.Context) {
	email := strings.TrimSpace(c.PostForm("email"))
	password := c.PostForm("password")

	sess := middleware.ClientSession(c)
	user, err := sess.Store.Auth.Register(c.Request.Context(), email, password)
	if err != nil {
		Render(c, http.StatusBadRequest, "auth/register.html", gin.H{
			"Error": sess.Store.Auth.State().Error,
			"Email": email,
		})
		return
	}

	if user == nil {
		// 确认模式：验证码已发送至邮箱
		Render(c, http.StatusOK, "auth/confirm.html", gin.H{
			"Email":   email,
			"Success": "A confirmation code was sent to your email.",
		})
		return
	}

	cookie := sessions.Default(c)
	cookie.Set("user_id", user.ID)
	cookie.Save()

	c.Redirect(http.StatusFound, "/")
}

func (h *AuthHandler) ShowConfirm(c *gin.Context) {
	Render(c, http.StatusOK, "auth/confirm.html", gin.H{"Email": c.Query("email")})
}

func (h *AuthHandler) Confirm(c *gin.Context) {
	email := strings.TrimSpace(c.PostForm("email"))
	code := strings.TrimSpace(c.PostForm("code"))

	sess := middleware.ClientSession(c)
	user, err := sess.Store.Auth.Confirm(c.Request.Context(), email, code)
	if err != nil {
		Render(c, http.StatusBadRequest, "auth/confirm.html", gin.H{
			"Error": sess.Store.Auth.State().Error,
			"Email": email,
		})
		return
	}

	cookie := sessions.Default(c)
	cookie.Set("user_id", user.ID)
	cookie.Save()

	c.Redirect(http.StatusFound, "/")
}

func (h *AuthHandler) ShowLogin(c *gin.Context) {
	Render(c, http.StatusOK, "auth/login.html", nil)
}

func (h *AuthHandler) Login(c *gin.Context) {
	email := strings.TrimSpace(c.PostForm("email"))
	password := c.PostForm("password")

	sess := middleware.ClientSession(c)
	user, err := sess.Store.Auth.Login(c.Request.Context(), email, password)
	if err != nil {
		Render(c, http.StatusUnauthorized, "auth/login.html", gin.H{
			"Error": sess.Store.Auth.State().Error,
			"Email": email,
		})
		return
	}

	cookie := sessions.Default(c)
	cookie.Set("user_id", user.ID)
	cookie.Save()

	c.Redirect(http.StatusFound, "/")
}

func (h *AuthHandler) Logout(c *gin.Context) {
	sess := middleware.ClientSession(c)
	sess.Store.Auth.Logout(c.Request.Context())

	cookie := sessions.Default(c)
	cookie.Delete("user_id")
	cookie.Save()

	c.Redirect(http.StatusFound, "/")
}

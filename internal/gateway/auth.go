package gateway

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"

	"plume/internal/models"
	"plume/internal/utils"
)

var validate = validator.New()

// Register creates an account. When the confirmation policy is active
// it mails a code and returns (nil, nil): no session until the code is
// confirmed. Otherwise the new user is signed in immediately.
func (c *Client) Register(ctx context.Context, email, password string) (*models.User, error) {
	if err := validate.Var(email, "required,email"); err != nil {
		return nil, authErr("invalid email address", err)
	}
	if len(password) < 6 {
		return nil, authErr("password must be at least 6 characters", nil)
	}

	var existing models.User
	err := c.db.WithContext(ctx).Where("email = ?", email).First(&existing).Error
	if err == nil {
		return nil, authErr("email already registered", nil)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, authErr("registration failed", err)
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, authErr("registration failed", err)
	}

	user := models.User{
		Email:       email,
		Password:    hash,
		IsActivated: !c.confirmSignup,
	}
	if c.confirmSignup {
		user.VerifyCode = utils.GenerateRandomCode(6)
	}

	if err := c.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, authErr("email already registered", err)
	}

	if c.confirmSignup {
		if err := c.mailer.SendConfirmationEmail(email, user.VerifyCode); err != nil {
			return nil, authErr("failed to send confirmation email", err)
		}
		// 账号已创建，待确认后才有会话
		return nil, nil
	}

	c.setUser(&user)
	return &user, nil
}

// ConfirmRegistration validates the emailed code, activates the
// account and signs the session in.
func (c *Client) ConfirmRegistration(ctx context.Context, email, code string) (*models.User, error) {
	var user models.User
	if err := c.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, authErr("account not found", err)
	}
	if user.IsActivated {
		// 已激活账号只能走登录，验证码不再是凭证
		return nil, authErr("account already confirmed, please log in", nil)
	}
	if code == "" || user.VerifyCode == "" || user.VerifyCode != code {
		return nil, authErr("invalid confirmation code", nil)
	}
	user.IsActivated = true
	user.VerifyCode = ""
	if err := c.db.WithContext(ctx).Save(&user).Error; err != nil {
		return nil, authErr("confirmation failed", err)
	}

	c.setUser(&user)
	return &user, nil
}

// Login verifies credentials and always yields a session on success.
func (c *Client) Login(ctx context.Context, email, password string) (*models.User, error) {
	var user models.User
	if err := c.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, authErr("invalid email or password", err)
	}
	if !utils.CheckPasswordHash(password, user.Password) {
		return nil, authErr("invalid email or password", nil)
	}
	if !user.IsActivated {
		return nil, authErr("account not confirmed, check your email", nil)
	}

	c.setUser(&user)
	return &user, nil
}

// Logout drops the session. Best-effort: there is nothing remote to
// revoke here, so it cannot fail, but the signature keeps the contract.
func (c *Client) Logout(ctx context.Context) error {
	c.setUser(nil)
	return nil
}

// RestoreSession re-establishes the principal from a persisted user id
// (the cookie session survives process restarts, the client does not).
// An unknown or deactivated id leaves the session signed out.
func (c *Client) RestoreSession(ctx context.Context, userID uint) {
	var user models.User
	if err := c.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		c.setUser(nil)
		return
	}
	if !user.IsActivated {
		c.setUser(nil)
		return
	}
	c.setUser(&user)
}

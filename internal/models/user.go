package models

import (
	"time"
)

type User struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Email       string    `gorm:"uniqueIndex;not null" json:"email"`
	Password    string    `gorm:"not null" json:"-"`                 // Hash
	IsActivated bool      `gorm:"default:false" json:"is_activated"` // 注册确认后为 true
	VerifyCode  string    `gorm:"size:20" json:"-"`                  // 注册确认验证码
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	// No DeletedAt for hard delete
}

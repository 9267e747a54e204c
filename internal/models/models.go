package models

import (
	"time"
)

// LocalSession is the persisted login. There is at most one row.
type LocalSession struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	UserID       string    `gorm:"not null" json:"user_id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Role         string    `json:"role"`
	AccessToken  string    `gorm:"type:text;not null" json:"-"`
	RefreshToken string    `gorm:"type:text" json:"-"`
	TokenType    string    `json:"token_type"`
	Expiry       time.Time `json:"expiry"`
}

// Setting is a small key/value row, the local-storage equivalent.
type Setting struct {
	Key       string `gorm:"primaryKey"`
	Value     string `gorm:"type:text"`
	UpdatedAt time.Time
}

// OnboardingDraft mirrors the wizard draft per user. It is a cache, the
// profile on the server is authoritative.
type OnboardingDraft struct {
	UserID    string `gorm:"primaryKey"`
	Data      string `gorm:"type:text;not null"`
	UpdatedAt time.Time
}

// SeenNotification dedups notifications already reported by the watcher.
type SeenNotification struct {
	ID        string `gorm:"primaryKey"`
	CreatedAt time.Time
}

// All lists every model for AutoMigrate.
func All() []any {
	return []any{&LocalSession{}, &Setting{}, &OnboardingDraft{}, &SeenNotification{}}
}

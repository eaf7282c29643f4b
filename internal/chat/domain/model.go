// Package domain contains core types for chat session storage.
package domain

import (
	"encoding/json"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

const (
	// DefaultTitle is used when a session is created without one.
	DefaultTitle = "New Chat"

	// FallbackTitle is shown for stored sessions whose title is empty.
	FallbackTitle = "Untitled Chat"

	// ListLimit caps how many sessions a listing returns.
	ListLimit = 50
)

// Session is one persisted conversation. Messages are an opaque JSON array
// owned by the client; the server never inspects individual entries.
type Session struct {
	ID        snowflake.ID   `gorm:"primaryKey"`
	OwnerID   string         `gorm:"column:owner_id;type:text;not null;index"`
	Title     string         `gorm:"type:text;not null"`
	Messages  datatypes.JSON `gorm:"type:jsonb;not null;default:'[]'"`
	CreatedAt time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Session) TableName() string { return "chat_sessions" }

// SessionView is the client-facing shape of a session.
type SessionView struct {
	ID        string          `json:"id"`
	Title     string          `json:"title"`
	Messages  json.RawMessage `json:"messages"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// CreateRequest creates a new session. Zero values fall back to defaults.
type CreateRequest struct {
	Title    string
	Messages json.RawMessage
}

// UpdateRequest patches a session. Nil fields are left untouched.
type UpdateRequest struct {
	Title    *string
	Messages json.RawMessage
}

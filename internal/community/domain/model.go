// Package domain contains core types for community testimonials.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

const (
	// ListLimit caps how many posts the public listing returns.
	ListLimit = 50

	// DefaultRating is used when a post is created without one.
	DefaultRating = 5

	MinRating = 1
	MaxRating = 5

	// Fallbacks when the author's record gives us nothing to display.
	AnonymousAuthor   = "Anonymous"
	DefaultAuthorRole = "Healthcare Professional"
)

// Post is a public testimonial. Author fields are denormalized at creation
// time so later profile edits do not rewrite published posts.
type Post struct {
	ID         snowflake.ID `gorm:"primaryKey"`
	OwnerID    string       `gorm:"column:owner_id;type:text;not null;default:'';index"`
	AuthorName string       `gorm:"column:author_name;type:text;not null"`
	AuthorRole string       `gorm:"column:author_role;type:text;not null"`
	Content    string       `gorm:"type:text;not null"`
	Rating     int          `gorm:"not null"`
	Approved   bool         `gorm:"not null;default:true"`
	CreatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Post) TableName() string { return "community_posts" }

// PostView is the client-facing shape of a post.
type PostView struct {
	ID         string    `json:"id"`
	AuthorName string    `json:"authorName"`
	AuthorRole string    `json:"authorRole"`
	Content    string    `json:"content"`
	Rating     int       `json:"rating"`
	CreatedAt  time.Time `json:"createdAt"`
}

// CreateRequest creates a new post. A zero rating takes the default.
type CreateRequest struct {
	Content string
	Rating  int
}

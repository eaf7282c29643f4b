// Package domain contains core types for the user directory.
package domain

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Role classifies a directory account.
type Role string

const (
	RoleDoctor       Role = "doctor"
	RoleOrganization Role = "organization"
)

// Valid reports whether the role is one the directory accepts.
func (r Role) Valid() bool {
	return r == RoleDoctor || r == RoleOrganization
}

// User is a directory account bound to an external identity.
type User struct {
	ID         snowflake.ID   `gorm:"primaryKey"`
	ExternalID string         `gorm:"column:external_id;type:text;not null;uniqueIndex"`
	Email      string         `gorm:"type:text;not null;uniqueIndex"`
	Role       Role           `gorm:"type:text;not null"`
	Profile    datatypes.JSON `gorm:"type:jsonb;not null;default:'{}'"`
	CreatedAt  time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt  time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (User) TableName() string { return "users" }

// Profile is the role-specific slice of a user record. Each role has
// exactly one variant; unknown roles have none.
type Profile interface {
	// DisplayName is the name shown when the user authors public content.
	DisplayName() string
}

// DoctorProfile belongs to individual practitioner accounts.
type DoctorProfile struct {
	Name      string `json:"name"`
	Specialty string `json:"specialty,omitempty"`
}

func (p DoctorProfile) DisplayName() string { return strings.TrimSpace(p.Name) }

// OrganizationProfile belongs to clinic and hospital accounts.
type OrganizationProfile struct {
	Organization string `json:"organization"`
	Admin        string `json:"admin,omitempty"`
}

// DisplayName prefers the administrator's name over the organization name.
func (p OrganizationProfile) DisplayName() string {
	if name := strings.TrimSpace(p.Admin); name != "" {
		return name
	}
	return strings.TrimSpace(p.Organization)
}

// ParseProfile decodes raw profile JSON into the variant for the role.
// Fields outside the variant are dropped; unknown roles are rejected.
func ParseProfile(role Role, raw json.RawMessage) (Profile, error) {
	if len(raw) == 0 {
		raw = json.RawMessage(`{}`)
	}
	switch role {
	case RoleDoctor:
		var p DoctorProfile
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, ErrInvalidProfile
		}
		return p, nil
	case RoleOrganization:
		var p OrganizationProfile
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, ErrInvalidProfile
		}
		return p, nil
	default:
		return nil, ErrInvalidRole
	}
}

// Intent says whether a bind request expects to create the directory record.
type Intent string

const (
	IntentSignup Intent = "signup"
	IntentLogin  Intent = "login"
)

// BindRequest carries a verified-provider credential into the directory.
type BindRequest struct {
	IDToken string
	Intent  Intent
	Role    Role
	Profile json.RawMessage
}

// UserView is the client-facing shape of a directory account.
type UserView struct {
	ID        string          `json:"id"`
	Email     string          `json:"email"`
	Role      Role            `json:"role"`
	Profile   json.RawMessage `json:"profile"`
	CreatedAt time.Time       `json:"createdAt"`
}

// BindResult is a freshly minted session plus its account.
type BindResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      UserView  `json:"user"`
}

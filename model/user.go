package model

import (
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// User represents a registered account in the system
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Email            string `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash     string `json:"-"` // empty for social-login-only accounts
	Role             string `gorm:"type:varchar(20);default:'user'" json:"role"` // user, admin, student
	ProfileCompleted bool   `gorm:"default:false" json:"profile_completed"`

	// Social login identifiers (set by the OAuth callback, out of band)
	GoogleID string `gorm:"index" json:"-"`
	GithubID string `gorm:"index" json:"-"`

	// Password reset token lifecycle. Only the SHA-256 digest of the raw
	// token is ever stored; both fields are set and cleared together.
	ResetPasswordToken   *string    `gorm:"index" json:"-"`
	ResetPasswordExpires *time.Time `json:"-"`

	// Per-user display preferences (dashboard view, theme, ...)
	Preferences datatypes.JSON `gorm:"type:jsonb" json:"preferences,omitempty"`

	// Relationships
	Profile     *Profile             `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"profile,omitempty"`
	Experiences []ExperienceMetadata `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for User
func (User) TableName() string {
	return "users"
}

// IsSocialLoginOnly reports whether the account has no local password
// and can only authenticate through an OAuth provider.
func (u *User) IsSocialLoginOnly() bool {
	return u.PasswordHash == "" && (u.GoogleID != "" || u.GithubID != "")
}

// HasLiveResetToken reports whether an unconsumed reset token digest is
// stored on the account.
func (u *User) HasLiveResetToken() bool {
	return u.ResetPasswordToken != nil && u.ResetPasswordExpires != nil
}

// NormalizeEmail lowercases and trims an email address. Every lookup and
// every write of User.Email goes through this.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

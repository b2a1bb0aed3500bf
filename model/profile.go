package model

import (
	"time"

	"gorm.io/gorm"
)

// Profile holds the display data a user fills in after signup. Experience
// detail pages read the full name from here; platform stats count mentors.
type Profile struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	UserID          uint   `gorm:"uniqueIndex;not null" json:"user_id"`
	FullName        string `gorm:"type:varchar(100)" json:"full_name"`
	Batch           string `gorm:"type:varchar(20);index" json:"batch"` // graduation year, e.g. "2026"
	WillingToMentor bool   `gorm:"default:false;index" json:"willing_to_mentor"`
	LinkedinURL     string `gorm:"type:varchar(255)" json:"linkedin_url"`
	GithubURL       string `gorm:"type:varchar(255)" json:"github_url"`

	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for Profile
func (Profile) TableName() string {
	return "profiles"
}

package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Experience lifecycle statuses. Drafts are private to their author,
// pending entries await moderation, approved entries are publicly
// visible and accrue views.
const (
	ExperienceStatusDraft    = "draft"
	ExperienceStatusPending  = "pending"
	ExperienceStatusApproved = "approved"
	ExperienceStatusRejected = "rejected"
)

// ExperienceMetadata is the header record of one user-authored placement
// interview report. Round narratives and preparation materials live in
// satellite records that share this record's lifetime.
type ExperienceMetadata struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	UserID          uint   `gorm:"not null;index" json:"user_id"`
	CompanyName     string `gorm:"type:varchar(100);not null;index" json:"company_name"`
	RoleAppliedFor  string `gorm:"type:varchar(100)" json:"role_applied_for"`
	InterviewMonth  string `gorm:"type:varchar(20)" json:"interview_month"`
	InterviewYear   int    `json:"interview_year"`
	Batch           string `gorm:"type:varchar(20);index" json:"batch"`
	Outcome         string `gorm:"type:varchar(30);index" json:"outcome"` // selected, rejected, waitlisted, ...
	PlacementSeason string `gorm:"type:varchar(30)" json:"placement_season"`

	OverallExperienceRating int `gorm:"default:0" json:"overall_experience_rating"` // 1-5
	DifficultyRating        int `gorm:"default:0;index" json:"difficulty_rating"`   // 1-5

	Status string `gorm:"type:varchar(20);default:'draft';index" json:"status"`
	Views  int64  `gorm:"default:0" json:"views"`

	// Relationships
	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for ExperienceMetadata
func (ExperienceMetadata) TableName() string {
	return "experience_metadata"
}

// IsApproved reports whether the experience is publicly visible.
func (e *ExperienceMetadata) IsApproved() bool {
	return e.Status == ExperienceStatusApproved
}

// RoundEntry is one interview round narrative inside an ExperienceRound.
type RoundEntry struct {
	RoundNumber int    `json:"round_number"`
	RoundType   string `json:"round_type"` // online assessment, technical, HR, ...
	Description string `json:"description"`
	Duration    string `json:"duration,omitempty"`
	Result      string `json:"result,omitempty"`
}

// MaterialEntry is one linked preparation resource inside an
// ExperienceMaterial.
type MaterialEntry struct {
	Title string `json:"title"`
	URL   string `json:"url"`
	Kind  string `json:"kind,omitempty"` // article, video, sheet, pdf, ...
}

// ExperienceRound holds the ordered round list for one experience.
// Exactly zero or one row exists per experience; saves replace the whole
// list rather than merging.
type ExperienceRound struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	ExperienceID uint           `gorm:"uniqueIndex;not null" json:"experience_id"`
	UserID       uint           `gorm:"not null;index" json:"user_id"`
	Rounds       datatypes.JSON `gorm:"type:jsonb" json:"rounds"`

	Experience ExperienceMetadata `gorm:"foreignKey:ExperienceID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for ExperienceRound
func (ExperienceRound) TableName() string {
	return "experience_rounds"
}

// ExperienceMaterial holds the ordered material-link list for one
// experience. Same zero-or-one and wholesale-replace semantics as rounds.
type ExperienceMaterial struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	ExperienceID uint           `gorm:"uniqueIndex;not null" json:"experience_id"`
	UserID       uint           `gorm:"not null;index" json:"user_id"`
	Materials    datatypes.JSON `gorm:"type:jsonb" json:"materials"`

	Experience ExperienceMetadata `gorm:"foreignKey:ExperienceID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for ExperienceMaterial
func (ExperienceMaterial) TableName() string {
	return "experience_materials"
}

package model

import (
	"time"

	"gorm.io/gorm"
)

// Question is one crowd-sourced interview question. The question bank has
// its own surface elsewhere; the core only counts these for platform
// stats.
type Question struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	UserID      uint   `gorm:"not null;index" json:"user_id"`
	CompanyName string `gorm:"type:varchar(100);index" json:"company_name"`
	Topic       string `gorm:"type:varchar(100)" json:"topic"`
	Text        string `gorm:"type:text;not null" json:"text"`

	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for Question
func (Question) TableName() string {
	return "questions"
}

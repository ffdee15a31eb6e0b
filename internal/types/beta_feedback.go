package types

import (
	"time"

	"github.com/google/uuid"
)

type BetaFeedback struct {
	ID           uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	AuthorID     uuid.UUID      `gorm:"type:uuid;not null;index;column:author_id" json:"author_id"`
	Author       *AuthorProfile `gorm:"constraint:OnDelete:CASCADE;foreignKey:AuthorID;references:ID" json:"author,omitempty"`
	ManuscriptID *uuid.UUID     `gorm:"type:uuid;index;column:manuscript_id" json:"manuscript_id,omitempty"`
	Category     string         `gorm:"column:category;not null" json:"category"`
	Message      string         `gorm:"column:message;type:text;not null" json:"message"`
	PageContext  string         `gorm:"column:page_context" json:"page_context"`
	CreatedAt    time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"not null;default:now()" json:"updated_at"`
}

func (BetaFeedback) TableName() string { return "beta_feedback" }

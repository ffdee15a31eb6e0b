package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Chapter struct {
	ID               uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ManuscriptID     uuid.UUID      `gorm:"type:uuid;not null;index:idx_manuscript_chapter,unique;column:manuscript_id" json:"manuscript_id"`
	Manuscript       *Manuscript    `gorm:"constraint:OnDelete:CASCADE;foreignKey:ManuscriptID;references:ID" json:"manuscript,omitempty"`
	ChapterNumber    int            `gorm:"not null;index:idx_manuscript_chapter,unique;column:chapter_number" json:"chapter_number"`
	Title            string         `gorm:"column:title" json:"title"`
	Content          string         `gorm:"column:content;type:text" json:"content"`
	Phase1ApprovedAt *time.Time     `gorm:"column:phase1_approved_at" json:"phase1_approved_at,omitempty"`
	Phase2ApprovedAt *time.Time     `gorm:"column:phase2_approved_at" json:"phase2_approved_at,omitempty"`
	Phase3ApprovedAt *time.Time     `gorm:"column:phase3_approved_at" json:"phase3_approved_at,omitempty"`
	CreatedAt        time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt        time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Chapter) TableName() string { return "chapters" }

// ApprovalForPhase returns the approval timestamp for editing phases 1..3,
// nil for any other phase number.
func (c *Chapter) ApprovalForPhase(phase int) *time.Time {
	if c == nil {
		return nil
	}
	switch phase {
	case 1:
		return c.Phase1ApprovedAt
	case 2:
		return c.Phase2ApprovedAt
	case 3:
		return c.Phase3ApprovedAt
	}
	return nil
}

func (c *Chapter) SetApprovalForPhase(phase int, at time.Time) bool {
	if c == nil {
		return false
	}
	switch phase {
	case 1:
		c.Phase1ApprovedAt = &at
	case 2:
		c.Phase2ApprovedAt = &at
	case 3:
		c.Phase3ApprovedAt = &at
	default:
		return false
	}
	return true
}

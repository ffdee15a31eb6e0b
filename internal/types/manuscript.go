package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ManuscriptStatusActive   = "active"
	ManuscriptStatusArchived = "archived"
)

// Phase numbers 1..3 are editing phases; 4 is publishing and 5 is
// marketing, both unlocked by purchase.
const (
	FirstPhase     = 1
	LastPhase      = 5
	PhasePublishing = 4
	PhaseMarketing  = 5
)

type Manuscript struct {
	ID           uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	AuthorID     uuid.UUID      `gorm:"type:uuid;not null;index;column:author_id" json:"author_id"`
	Author       *AuthorProfile `gorm:"constraint:OnDelete:CASCADE;foreignKey:AuthorID;references:ID" json:"author,omitempty"`
	Title        string         `gorm:"column:title;not null" json:"title"`
	Genre        string         `gorm:"column:genre" json:"genre"`
	WordCount    int            `gorm:"column:word_count;not null;default:0" json:"word_count"`
	ChapterCount int            `gorm:"column:chapter_count;not null;default:0" json:"chapter_count"`
	CurrentPhase int            `gorm:"column:current_phase;not null;default:1" json:"current_phase"`
	Status       string         `gorm:"column:status;not null;default:'active'" json:"status"`
	CreatedAt    time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Manuscript) TableName() string { return "manuscripts" }

package types

import (
	"time"

	"github.com/google/uuid"
)

const VersionTypeApprovedSnapshot = "approved_snapshot"

// ManuscriptVersion is write-once: inserted when a phase completes, never
// updated afterward.
type ManuscriptVersion struct {
	ID              uuid.UUID   `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ManuscriptID    uuid.UUID   `gorm:"type:uuid;not null;index;column:manuscript_id" json:"manuscript_id"`
	Manuscript      *Manuscript `gorm:"constraint:OnDelete:CASCADE;foreignKey:ManuscriptID;references:ID" json:"manuscript,omitempty"`
	PhaseNumber     int         `gorm:"column:phase_number;not null" json:"phase_number"`
	VersionType     string      `gorm:"column:version_type;not null" json:"version_type"`
	Content         string      `gorm:"column:content;type:text" json:"content"`
	WordCount       int         `gorm:"column:word_count;not null;default:0" json:"word_count"`
	CreatedByEditor string      `gorm:"column:created_by_editor" json:"created_by_editor"`
	CreatedAt       time.Time   `gorm:"not null;default:now()" json:"created_at"`
}

func (ManuscriptVersion) TableName() string { return "manuscript_versions" }

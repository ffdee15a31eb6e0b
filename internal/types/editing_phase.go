package types

import (
	"time"

	"github.com/google/uuid"
)

const (
	PhaseStatusPending  = "pending"
	PhaseStatusActive   = "active"
	PhaseStatusComplete = "complete"
)

// EditingPhase is one row per (manuscript, phase_number 1..5). At most one
// row per manuscript is active at a time; activation happens strictly in
// increasing phase order through PhaseService.
type EditingPhase struct {
	ID               uuid.UUID   `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ManuscriptID     uuid.UUID   `gorm:"type:uuid;not null;index:idx_manuscript_phase,unique;column:manuscript_id" json:"manuscript_id"`
	Manuscript       *Manuscript `gorm:"constraint:OnDelete:CASCADE;foreignKey:ManuscriptID;references:ID" json:"manuscript,omitempty"`
	PhaseNumber      int         `gorm:"not null;index:idx_manuscript_phase,unique;column:phase_number" json:"phase_number"`
	Status           string      `gorm:"column:status;not null;default:'pending'" json:"status"`
	StartedAt        *time.Time  `gorm:"column:started_at" json:"started_at,omitempty"`
	CompletedAt      *time.Time  `gorm:"column:completed_at" json:"completed_at,omitempty"`
	ChaptersApproved int         `gorm:"column:chapters_approved;not null;default:0" json:"chapters_approved"`
	CreatedAt        time.Time   `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt        time.Time   `gorm:"not null;default:now()" json:"updated_at"`
}

func (EditingPhase) TableName() string { return "editing_phases" }

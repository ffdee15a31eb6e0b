package types

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Publishing workflow step identifiers. The full ordered list a manuscript
// sees is derived from these plus the assessment answers; see
// services.ResolveSteps.
const (
	StepOverview      = "overview"
	StepAssessment    = "assessment"
	StepCoverDesign   = "cover-design"
	StepFrontMatter   = "front-matter"
	StepBackMatter    = "back-matter"
	StepFormatting    = "formatting"
	StepPlatformSetup = "platform-setup"
	StepMetadata      = "metadata"
	StepISBN          = "isbn"
	StepPreLaunch     = "pre-launch"
)

// CoverDesign is an element of the cover_designs jsonb list, not its own
// table. Exactly one entry may have Selected true at a time.
type CoverDesign struct {
	ID        int       `json:"id"`
	URL       string    `json:"url"`
	Prompt    string    `json:"prompt"`
	Selected  bool      `json:"selected"`
	CreatedAt time.Time `json:"created_at"`
}

// AssessmentAnswers is the structured answer bag collected by the
// publishing assessment step.
type AssessmentAnswers struct {
	PublishingGoal string   `json:"publishing_goal"`
	Platforms      []string `json:"platforms"`
	Timeline       string   `json:"timeline"`
	Budget         string   `json:"budget"`
	HasISBN        bool     `json:"has_isbn"`
	Notes          string   `json:"notes"`
}

// PublishingProgress is the singleton per-manuscript publishing workflow
// record. RowVersion is bumped on every write and used both as the
// optimistic-concurrency token on updates and as the staleness guard on
// realtime deliveries.
type PublishingProgress struct {
	ID                    uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ManuscriptID          uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex;column:manuscript_id" json:"manuscript_id"`
	Manuscript            *Manuscript    `gorm:"constraint:OnDelete:CASCADE;foreignKey:ManuscriptID;references:ID" json:"manuscript,omitempty"`
	CurrentStep           string         `gorm:"column:current_step;not null;default:'assessment'" json:"current_step"`
	AssessmentCompleted   bool           `gorm:"column:assessment_completed;not null;default:false" json:"assessment_completed"`
	AssessmentAnswers     datatypes.JSON `gorm:"type:jsonb;column:assessment_answers" json:"assessment_answers"`
	CoverDesigns          datatypes.JSON `gorm:"type:jsonb;column:cover_designs" json:"cover_designs"`
	SelectedCoverID       *int           `gorm:"column:selected_cover_id" json:"selected_cover_id,omitempty"`
	CoverSelectedAt       *time.Time     `gorm:"column:cover_selected_at" json:"cover_selected_at,omitempty"`
	StepData              datatypes.JSON `gorm:"type:jsonb;column:step_data" json:"step_data"`
	CompletedSteps        datatypes.JSON `gorm:"type:jsonb;column:completed_steps" json:"completed_steps"`
	FormattingCompletedAt *time.Time     `gorm:"column:formatting_completed_at" json:"formatting_completed_at,omitempty"`
	MetadataCompletedAt   *time.Time     `gorm:"column:metadata_completed_at" json:"metadata_completed_at,omitempty"`
	AllStepsCompletedAt   *time.Time     `gorm:"column:all_steps_completed_at" json:"all_steps_completed_at,omitempty"`
	RowVersion            int64          `gorm:"column:row_version;not null;default:1" json:"row_version"`
	CreatedAt             time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt             time.Time      `gorm:"not null;default:now()" json:"updated_at"`
}

func (PublishingProgress) TableName() string { return "publishing_progress" }

func (p *PublishingProgress) DecodedAnswers() (AssessmentAnswers, error) {
	var answers AssessmentAnswers
	if len(p.AssessmentAnswers) == 0 {
		return answers, nil
	}
	err := json.Unmarshal(p.AssessmentAnswers, &answers)
	return answers, err
}

func (p *PublishingProgress) DecodedCoverDesigns() ([]CoverDesign, error) {
	if len(p.CoverDesigns) == 0 {
		return nil, nil
	}
	var designs []CoverDesign
	if err := json.Unmarshal(p.CoverDesigns, &designs); err != nil {
		return nil, err
	}
	return designs, nil
}

func (p *PublishingProgress) DecodedCompletedSteps() ([]string, error) {
	if len(p.CompletedSteps) == 0 {
		return nil, nil
	}
	var steps []string
	if err := json.Unmarshal(p.CompletedSteps, &steps); err != nil {
		return nil, err
	}
	return steps, nil
}

func (p *PublishingProgress) DecodedStepData() (map[string]bool, error) {
	data := map[string]bool{}
	if len(p.StepData) == 0 {
		return data, nil
	}
	if err := json.Unmarshal(p.StepData, &data); err != nil {
		return nil, err
	}
	return data, nil
}

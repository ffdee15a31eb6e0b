package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/storyloft/storyloft-backend/internal/logger"
	"github.com/storyloft/storyloft-backend/internal/repos"
	"github.com/storyloft/storyloft-backend/internal/sse"
	"github.com/storyloft/storyloft-backend/internal/types"
)

// casAttempts bounds the read-modify-write retry loop on row_version
// conflicts before the operation reports failure.
const casAttempts = 3

var ErrProgressConflict = fmt.Errorf("publishing progress was modified concurrently")

var errCoverNotFound = fmt.Errorf("cover design not found")

type PublishingService interface {
	InitProgress(ctx context.Context, tx *gorm.DB, manuscriptID uuid.UUID) error
	GetProgress(ctx context.Context, manuscriptID uuid.UUID) (*types.PublishingProgress, []StepState, error)
	CompleteAssessment(ctx context.Context, manuscriptID uuid.UUID, answers types.AssessmentAnswers) error
	// SelectCover marks exactly one cover design selected. The whole list
	// is rewritten under a row_version guard so two racing selections can
	// never both land.
	SelectCover(ctx context.Context, manuscriptID uuid.UUID, coverID int) (bool, error)
	CompleteStep(ctx context.Context, manuscriptID uuid.UUID, stepID string) error
	AddCoverDesigns(ctx context.Context, manuscriptID uuid.UUID, designs []types.CoverDesign) error
}

type publishingService struct {
	db           *gorm.DB
	log          *logger.Logger
	progressRepo repos.PublishingProgressRepo
	notifier     ProgressNotifier
}

func NewPublishingService(
	db *gorm.DB,
	baseLog *logger.Logger,
	progressRepo repos.PublishingProgressRepo,
	notifier ProgressNotifier,
) PublishingService {
	return &publishingService{
		db:           db,
		log:          baseLog.With("service", "PublishingService"),
		progressRepo: progressRepo,
		notifier:     notifier,
	}
}

// ApplyCoverSelection maps every entry's selected flag to (id == coverID).
// Returns false when coverID is not present; the input is not modified.
func ApplyCoverSelection(designs []types.CoverDesign, coverID int) ([]types.CoverDesign, bool) {
	found := false
	out := make([]types.CoverDesign, len(designs))
	for i, d := range designs {
		d.Selected = d.ID == coverID
		if d.Selected {
			found = true
		}
		out[i] = d
	}
	if !found {
		return nil, false
	}
	return out, true
}

func (s *publishingService) InitProgress(ctx context.Context, tx *gorm.DB, manuscriptID uuid.UUID) error {
	row := &types.PublishingProgress{
		ID:           uuid.New(),
		ManuscriptID: manuscriptID,
		CurrentStep:  types.StepAssessment,
		RowVersion:   1,
	}
	if _, err := s.progressRepo.Create(ctx, tx, []*types.PublishingProgress{row}); err != nil {
		return fmt.Errorf("seed publishing progress: %w", err)
	}
	return nil
}

func (s *publishingService) GetProgress(ctx context.Context, manuscriptID uuid.UUID) (*types.PublishingProgress, []StepState, error) {
	progress, err := s.progressRepo.GetByManuscriptID(ctx, nil, manuscriptID)
	if err != nil {
		return nil, nil, fmt.Errorf("load publishing progress: %w", err)
	}
	if progress == nil {
		return nil, nil, nil
	}
	steps, err := ResolveSteps(progress)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve steps: %w", err)
	}
	return progress, steps, nil
}

func (s *publishingService) CompleteAssessment(ctx context.Context, manuscriptID uuid.UUID, answers types.AssessmentAnswers) error {
	raw, err := json.Marshal(answers)
	if err != nil {
		return fmt.Errorf("encode answers: %w", err)
	}

	return s.guardedUpdate(ctx, manuscriptID, sse.SSEEventPublishingUpdated, func(progress *types.PublishingProgress) (map[string]interface{}, error) {
		completed, err := appendStep(progress, types.StepAssessment)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{
			"assessment_completed": true,
			"assessment_answers":   datatypes.JSON(raw),
			"completed_steps":      completed,
			"current_step":         types.StepCoverDesign,
		}, nil
	})
}

func (s *publishingService) SelectCover(ctx context.Context, manuscriptID uuid.UUID, coverID int) (bool, error) {
	err := s.guardedUpdate(ctx, manuscriptID, sse.SSEEventPublishingUpdated, func(progress *types.PublishingProgress) (map[string]interface{}, error) {
		designs, err := progress.DecodedCoverDesigns()
		if err != nil {
			return nil, fmt.Errorf("decode cover designs: %w", err)
		}
		updated, ok := ApplyCoverSelection(designs, coverID)
		if !ok {
			return nil, errCoverNotFound
		}
		rawDesigns, err := json.Marshal(updated)
		if err != nil {
			return nil, fmt.Errorf("encode cover designs: %w", err)
		}
		completed, err := appendStep(progress, types.StepCoverDesign)
		if err != nil {
			return nil, err
		}
		now := time.Now()
		return map[string]interface{}{
			"cover_designs":     datatypes.JSON(rawDesigns),
			"selected_cover_id": coverID,
			"cover_selected_at": now,
			"current_step":      types.StepFormatting,
			"completed_steps":   completed,
		}, nil
	})
	if errors.Is(err, errCoverNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *publishingService) CompleteStep(ctx context.Context, manuscriptID uuid.UUID, stepID string) error {
	return s.guardedUpdate(ctx, manuscriptID, sse.SSEEventPublishingUpdated, func(progress *types.PublishingProgress) (map[string]interface{}, error) {
		steps, err := ResolveSteps(progress)
		if err != nil {
			return nil, fmt.Errorf("resolve steps: %w", err)
		}
		var target *StepState
		for i := range steps {
			if steps[i].ID == stepID {
				target = &steps[i]
				break
			}
		}
		if target == nil {
			return nil, fmt.Errorf("step %q not in this manuscript's workflow", stepID)
		}
		if target.Locked {
			return nil, fmt.Errorf("step %q is locked until the assessment is complete", stepID)
		}

		stepData, err := progress.DecodedStepData()
		if err != nil {
			return nil, fmt.Errorf("decode step data: %w", err)
		}
		stepData[stepID] = true
		rawStepData, err := json.Marshal(stepData)
		if err != nil {
			return nil, fmt.Errorf("encode step data: %w", err)
		}
		completed, err := appendStep(progress, stepID)
		if err != nil {
			return nil, err
		}

		now := time.Now()
		fields := map[string]interface{}{
			"step_data":       datatypes.JSON(rawStepData),
			"completed_steps": completed,
		}
		switch stepID {
		case types.StepFormatting:
			fields["formatting_completed_at"] = now
		case types.StepMetadata:
			fields["metadata_completed_at"] = now
		}

		if next := nextIncompleteStep(steps, stepID); next != "" {
			fields["current_step"] = next
		} else {
			fields["current_step"] = types.StepPreLaunch
			fields["all_steps_completed_at"] = now
		}
		return fields, nil
	})
}

func (s *publishingService) AddCoverDesigns(ctx context.Context, manuscriptID uuid.UUID, designs []types.CoverDesign) error {
	if len(designs) == 0 {
		return nil
	}
	return s.guardedUpdate(ctx, manuscriptID, sse.SSEEventCoverDesignsUpdated, func(progress *types.PublishingProgress) (map[string]interface{}, error) {
		existing, err := progress.DecodedCoverDesigns()
		if err != nil {
			return nil, fmt.Errorf("decode cover designs: %w", err)
		}
		nextID := 1
		for _, d := range existing {
			if d.ID >= nextID {
				nextID = d.ID + 1
			}
		}
		for i := range designs {
			if designs[i].ID == 0 {
				designs[i].ID = nextID
				nextID++
			}
			if designs[i].CreatedAt.IsZero() {
				designs[i].CreatedAt = time.Now()
			}
			designs[i].Selected = false
		}
		raw, err := json.Marshal(append(existing, designs...))
		if err != nil {
			return nil, fmt.Errorf("encode cover designs: %w", err)
		}
		return map[string]interface{}{
			"cover_designs": datatypes.JSON(raw),
		}, nil
	})
}

// guardedUpdate runs the read-modify-write loop: load the row, let compute
// derive the field set from it, apply under the row_version guard, retry on
// conflict. On success the fresh row is pushed to subscribed clients.
func (s *publishingService) guardedUpdate(ctx context.Context, manuscriptID uuid.UUID, event sse.SSEEvent, compute func(progress *types.PublishingProgress) (map[string]interface{}, error)) error {
	if manuscriptID == uuid.Nil {
		return fmt.Errorf("manuscript id required")
	}

	for attempt := 0; attempt < casAttempts; attempt++ {
		progress, err := s.progressRepo.GetByManuscriptID(ctx, nil, manuscriptID)
		if err != nil {
			return fmt.Errorf("load publishing progress: %w", err)
		}
		if progress == nil {
			return fmt.Errorf("no publishing progress for manuscript %s", manuscriptID)
		}

		fields, err := compute(progress)
		if err != nil {
			return err
		}

		applied, err := s.progressRepo.UpdateGuarded(ctx, nil, manuscriptID, progress.RowVersion, fields)
		if err != nil {
			return fmt.Errorf("update publishing progress: %w", err)
		}
		if !applied {
			s.log.Debug("Row version conflict, retrying", "manuscript_id", manuscriptID, "attempt", attempt+1)
			continue
		}

		if s.notifier != nil {
			fresh, err := s.progressRepo.GetByManuscriptID(ctx, nil, manuscriptID)
			if err != nil {
				s.log.Warn("Could not reload progress for realtime push", "error", err)
			} else if fresh != nil {
				s.notifier.PublishingUpdated(ctx, fresh, event)
			}
		}
		return nil
	}
	return ErrProgressConflict
}

func appendStep(progress *types.PublishingProgress, stepID string) (datatypes.JSON, error) {
	completed, err := progress.DecodedCompletedSteps()
	if err != nil {
		return nil, fmt.Errorf("decode completed steps: %w", err)
	}
	for _, id := range completed {
		if id == stepID {
			raw, err := json.Marshal(completed)
			return datatypes.JSON(raw), err
		}
	}
	raw, err := json.Marshal(append(completed, stepID))
	if err != nil {
		return nil, fmt.Errorf("encode completed steps: %w", err)
	}
	return datatypes.JSON(raw), nil
}

func nextIncompleteStep(steps []StepState, justCompleted string) string {
	for _, s := range steps {
		if s.ID == justCompleted || s.Completed {
			continue
		}
		return s.ID
	}
	return ""
}

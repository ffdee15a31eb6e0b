package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storyloft/storyloft-backend/internal/logger"
	"github.com/storyloft/storyloft-backend/internal/repos"
	"github.com/storyloft/storyloft-backend/internal/types"
)

type PhaseService interface {
	// TransitionToNextPhase advances a manuscript out of currentPhase once
	// every chapter carries an approval timestamp for it. Returns
	// (false, nil) with no writes when any chapter is still unapproved.
	// The completion mark, next-phase activation, and denormalized
	// current_phase update happen in one transaction.
	TransitionToNextPhase(ctx context.Context, manuscriptID uuid.UUID, currentPhase int) (bool, error)
	ApproveChapter(ctx context.Context, chapterID uuid.UUID, phase int) error
	GetPhases(ctx context.Context, manuscriptID uuid.UUID) ([]*types.EditingPhase, error)
	InitPhases(ctx context.Context, tx *gorm.DB, manuscriptID uuid.UUID) error
}

type phaseService struct {
	db             *gorm.DB
	log            *logger.Logger
	manuscriptRepo repos.ManuscriptRepo
	chapterRepo    repos.ChapterRepo
	phaseRepo      repos.EditingPhaseRepo
	notifier       ProgressNotifier
}

func NewPhaseService(
	db *gorm.DB,
	baseLog *logger.Logger,
	manuscriptRepo repos.ManuscriptRepo,
	chapterRepo repos.ChapterRepo,
	phaseRepo repos.EditingPhaseRepo,
	notifier ProgressNotifier,
) PhaseService {
	return &phaseService{
		db:             db,
		log:            baseLog.With("service", "PhaseService"),
		manuscriptRepo: manuscriptRepo,
		chapterRepo:    chapterRepo,
		phaseRepo:      phaseRepo,
		notifier:       notifier,
	}
}

func (ps *phaseService) transact(ctx context.Context, fn func(tx *gorm.DB) error) error {
	if ps.db == nil {
		return fn(nil)
	}
	return ps.db.WithContext(ctx).Transaction(fn)
}

func (ps *phaseService) TransitionToNextPhase(ctx context.Context, manuscriptID uuid.UUID, currentPhase int) (bool, error) {
	if manuscriptID == uuid.Nil {
		return false, fmt.Errorf("manuscript id required")
	}
	if currentPhase < types.FirstPhase || currentPhase > types.LastPhase {
		return false, fmt.Errorf("phase %d out of range", currentPhase)
	}

	advanced := false
	err := ps.transact(ctx, func(tx *gorm.DB) error {
		active, err := ps.phaseRepo.GetActiveByManuscriptID(ctx, tx, manuscriptID)
		if err != nil {
			return fmt.Errorf("load active phase: %w", err)
		}
		if active == nil || active.PhaseNumber != currentPhase {
			return fmt.Errorf("phase %d is not the active phase", currentPhase)
		}

		total, err := ps.chapterRepo.CountByManuscriptID(ctx, tx, manuscriptID)
		if err != nil {
			return fmt.Errorf("count chapters: %w", err)
		}
		approved := total
		if currentPhase <= 3 {
			approved, err = ps.chapterRepo.CountApprovedForPhase(ctx, tx, manuscriptID, currentPhase)
			if err != nil {
				return fmt.Errorf("count approved chapters: %w", err)
			}
		}
		if total == 0 || approved < total {
			ps.log.Debug("Transition blocked; chapters pending approval",
				"manuscript_id", manuscriptID, "phase", currentPhase, "approved", approved, "total", total)
			return nil
		}

		now := time.Now()
		if err := ps.phaseRepo.MarkComplete(ctx, tx, manuscriptID, currentPhase, now, int(approved)); err != nil {
			return fmt.Errorf("mark phase complete: %w", err)
		}

		nextPhase := currentPhase
		if currentPhase < types.LastPhase {
			nextPhase = currentPhase + 1
			if err := ps.phaseRepo.Activate(ctx, tx, manuscriptID, nextPhase, now); err != nil {
				return fmt.Errorf("activate phase %d: %w", nextPhase, err)
			}
		}

		if err := ps.manuscriptRepo.UpdateCurrentPhase(ctx, tx, manuscriptID, nextPhase); err != nil {
			return fmt.Errorf("update manuscript current phase: %w", err)
		}

		advanced = true
		return nil
	})
	if err != nil {
		return false, err
	}
	if !advanced {
		return false, nil
	}

	ps.log.Info("Manuscript advanced to next phase", "manuscript_id", manuscriptID, "from_phase", currentPhase)
	if ps.notifier != nil {
		phases, err := ps.phaseRepo.GetByManuscriptID(ctx, nil, manuscriptID)
		if err != nil {
			ps.log.Warn("Could not load phases for realtime push", "error", err)
		} else {
			ps.notifier.PhasesUpdated(ctx, manuscriptID, phases)
		}
	}
	return true, nil
}

func (ps *phaseService) ApproveChapter(ctx context.Context, chapterID uuid.UUID, phase int) error {
	if phase < 1 || phase > 3 {
		return fmt.Errorf("chapter approval only applies to editing phases 1..3, got %d", phase)
	}

	chapters, err := ps.chapterRepo.GetByIDs(ctx, nil, []uuid.UUID{chapterID})
	if err != nil {
		return fmt.Errorf("load chapter: %w", err)
	}
	if len(chapters) == 0 || chapters[0] == nil {
		return fmt.Errorf("chapter not found")
	}
	chapter := chapters[0]

	return ps.transact(ctx, func(tx *gorm.DB) error {
		now := time.Now()
		if err := ps.chapterRepo.SetApproval(ctx, tx, chapterID, phase, now); err != nil {
			return fmt.Errorf("set approval: %w", err)
		}
		approved, err := ps.chapterRepo.CountApprovedForPhase(ctx, tx, chapter.ManuscriptID, phase)
		if err != nil {
			return fmt.Errorf("count approved chapters: %w", err)
		}
		if err := ps.phaseRepo.SetChaptersApproved(ctx, tx, chapter.ManuscriptID, phase, int(approved)); err != nil {
			return fmt.Errorf("update chapters_approved: %w", err)
		}
		return nil
	})
}

func (ps *phaseService) GetPhases(ctx context.Context, manuscriptID uuid.UUID) ([]*types.EditingPhase, error) {
	return ps.phaseRepo.GetByManuscriptID(ctx, nil, manuscriptID)
}

// InitPhases seeds the five phase rows for a new manuscript, phase 1
// active, the rest pending. Runs inside the caller's transaction.
func (ps *phaseService) InitPhases(ctx context.Context, tx *gorm.DB, manuscriptID uuid.UUID) error {
	now := time.Now()
	rows := make([]*types.EditingPhase, 0, types.LastPhase)
	for phase := types.FirstPhase; phase <= types.LastPhase; phase++ {
		row := &types.EditingPhase{
			ID:           uuid.New(),
			ManuscriptID: manuscriptID,
			PhaseNumber:  phase,
			Status:       types.PhaseStatusPending,
		}
		if phase == types.FirstPhase {
			row.Status = types.PhaseStatusActive
			row.StartedAt = &now
		}
		rows = append(rows, row)
	}
	if _, err := ps.phaseRepo.Create(ctx, tx, rows); err != nil {
		return fmt.Errorf("seed editing phases: %w", err)
	}
	return nil
}

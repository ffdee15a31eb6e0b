package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storyloft/storyloft-backend/internal/logger"
	"github.com/storyloft/storyloft-backend/internal/types"
)

type EditingPhaseRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rows []*types.EditingPhase) ([]*types.EditingPhase, error)
	GetByManuscriptID(ctx context.Context, tx *gorm.DB, manuscriptID uuid.UUID) ([]*types.EditingPhase, error)
	GetByManuscriptAndPhase(ctx context.Context, tx *gorm.DB, manuscriptID uuid.UUID, phase int) (*types.EditingPhase, error)
	GetActiveByManuscriptID(ctx context.Context, tx *gorm.DB, manuscriptID uuid.UUID) (*types.EditingPhase, error)
	MarkComplete(ctx context.Context, tx *gorm.DB, manuscriptID uuid.UUID, phase int, completedAt time.Time, chaptersApproved int) error
	Activate(ctx context.Context, tx *gorm.DB, manuscriptID uuid.UUID, phase int, startedAt time.Time) error
	SetChaptersApproved(ctx context.Context, tx *gorm.DB, manuscriptID uuid.UUID, phase int, approved int) error
}

type editingPhaseRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEditingPhaseRepo(db *gorm.DB, baseLog *logger.Logger) EditingPhaseRepo {
	return &editingPhaseRepo{db: db, log: baseLog.With("repo", "EditingPhaseRepo")}
}

func (r *editingPhaseRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.EditingPhase) ([]*types.EditingPhase, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(rows) == 0 {
		return []*types.EditingPhase{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *editingPhaseRepo) GetByManuscriptID(ctx context.Context, tx *gorm.DB, manuscriptID uuid.UUID) ([]*types.EditingPhase, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.EditingPhase
	if manuscriptID == uuid.Nil {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("manuscript_id = ?", manuscriptID).
		Order("phase_number ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *editingPhaseRepo) GetByManuscriptAndPhase(ctx context.Context, tx *gorm.DB, manuscriptID uuid.UUID, phase int) (*types.EditingPhase, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var result types.EditingPhase
	err := transaction.WithContext(ctx).
		Where("manuscript_id = ? AND phase_number = ?", manuscriptID, phase).
		First(&result).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *editingPhaseRepo) GetActiveByManuscriptID(ctx context.Context, tx *gorm.DB, manuscriptID uuid.UUID) (*types.EditingPhase, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var result types.EditingPhase
	err := transaction.WithContext(ctx).
		Where("manuscript_id = ? AND status = ?", manuscriptID, types.PhaseStatusActive).
		Order("phase_number ASC").
		First(&result).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *editingPhaseRepo) MarkComplete(ctx context.Context, tx *gorm.DB, manuscriptID uuid.UUID, phase int, completedAt time.Time, chaptersApproved int) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	return transaction.WithContext(ctx).
		Model(&types.EditingPhase{}).
		Where("manuscript_id = ? AND phase_number = ?", manuscriptID, phase).
		Updates(map[string]interface{}{
			"status":            types.PhaseStatusComplete,
			"completed_at":      completedAt,
			"chapters_approved": chaptersApproved,
		}).Error
}

func (r *editingPhaseRepo) Activate(ctx context.Context, tx *gorm.DB, manuscriptID uuid.UUID, phase int, startedAt time.Time) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	return transaction.WithContext(ctx).
		Model(&types.EditingPhase{}).
		Where("manuscript_id = ? AND phase_number = ?", manuscriptID, phase).
		Updates(map[string]interface{}{
			"status":     types.PhaseStatusActive,
			"started_at": startedAt,
		}).Error
}

func (r *editingPhaseRepo) SetChaptersApproved(ctx context.Context, tx *gorm.DB, manuscriptID uuid.UUID, phase int, approved int) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	return transaction.WithContext(ctx).
		Model(&types.EditingPhase{}).
		Where("manuscript_id = ? AND phase_number = ?", manuscriptID, phase).
		Update("chapters_approved", approved).Error
}

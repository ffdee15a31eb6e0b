package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storyloft/storyloft-backend/internal/logger"
	"github.com/storyloft/storyloft-backend/internal/types"
)

type BetaFeedbackRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rows []*types.BetaFeedback) ([]*types.BetaFeedback, error)
	GetByAuthorID(ctx context.Context, tx *gorm.DB, authorID uuid.UUID) ([]*types.BetaFeedback, error)
}

type betaFeedbackRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewBetaFeedbackRepo(db *gorm.DB, baseLog *logger.Logger) BetaFeedbackRepo {
	return &betaFeedbackRepo{db: db, log: baseLog.With("repo", "BetaFeedbackRepo")}
}

func (r *betaFeedbackRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.BetaFeedback) ([]*types.BetaFeedback, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(rows) == 0 {
		return []*types.BetaFeedback{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *betaFeedbackRepo) GetByAuthorID(ctx context.Context, tx *gorm.DB, authorID uuid.UUID) ([]*types.BetaFeedback, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.BetaFeedback
	if authorID == uuid.Nil {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("author_id = ?", authorID).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storyloft/storyloft-backend/internal/logger"
	"github.com/storyloft/storyloft-backend/internal/types"
)

type PublishingProgressRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rows []*types.PublishingProgress) ([]*types.PublishingProgress, error)
	GetByManuscriptID(ctx context.Context, tx *gorm.DB, manuscriptID uuid.UUID) (*types.PublishingProgress, error)
	// UpdateGuarded applies fields to the row for manuscriptID only if its
	// row_version still equals expectedVersion, bumping row_version by one.
	// Returns false without error when the guard misses (concurrent write).
	UpdateGuarded(ctx context.Context, tx *gorm.DB, manuscriptID uuid.UUID, expectedVersion int64, fields map[string]interface{}) (bool, error)
}

type publishingProgressRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPublishingProgressRepo(db *gorm.DB, baseLog *logger.Logger) PublishingProgressRepo {
	return &publishingProgressRepo{db: db, log: baseLog.With("repo", "PublishingProgressRepo")}
}

func (r *publishingProgressRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.PublishingProgress) ([]*types.PublishingProgress, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(rows) == 0 {
		return []*types.PublishingProgress{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *publishingProgressRepo) GetByManuscriptID(ctx context.Context, tx *gorm.DB, manuscriptID uuid.UUID) (*types.PublishingProgress, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if manuscriptID == uuid.Nil {
		return nil, nil
	}

	var result types.PublishingProgress
	err := transaction.WithContext(ctx).
		Where("manuscript_id = ?", manuscriptID).
		First(&result).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *publishingProgressRepo) UpdateGuarded(ctx context.Context, tx *gorm.DB, manuscriptID uuid.UUID, expectedVersion int64, fields map[string]interface{}) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if manuscriptID == uuid.Nil || len(fields) == 0 {
		return false, nil
	}

	updates := make(map[string]interface{}, len(fields)+1)
	for k, v := range fields {
		updates[k] = v
	}
	updates["row_version"] = expectedVersion + 1

	result := transaction.WithContext(ctx).
		Model(&types.PublishingProgress{}).
		Where("manuscript_id = ? AND row_version = ?", manuscriptID, expectedVersion).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

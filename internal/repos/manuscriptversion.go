package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storyloft/storyloft-backend/internal/logger"
	"github.com/storyloft/storyloft-backend/internal/types"
)

// ManuscriptVersionRepo has no update methods: version rows are write-once.
type ManuscriptVersionRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rows []*types.ManuscriptVersion) ([]*types.ManuscriptVersion, error)
	GetByManuscriptID(ctx context.Context, tx *gorm.DB, manuscriptID uuid.UUID) ([]*types.ManuscriptVersion, error)
}

type manuscriptVersionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewManuscriptVersionRepo(db *gorm.DB, baseLog *logger.Logger) ManuscriptVersionRepo {
	return &manuscriptVersionRepo{db: db, log: baseLog.With("repo", "ManuscriptVersionRepo")}
}

func (r *manuscriptVersionRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.ManuscriptVersion) ([]*types.ManuscriptVersion, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(rows) == 0 {
		return []*types.ManuscriptVersion{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *manuscriptVersionRepo) GetByManuscriptID(ctx context.Context, tx *gorm.DB, manuscriptID uuid.UUID) ([]*types.ManuscriptVersion, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.ManuscriptVersion
	if manuscriptID == uuid.Nil {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("manuscript_id = ?", manuscriptID).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

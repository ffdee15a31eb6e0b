package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storyloft/storyloft-backend/internal/logger"
	"github.com/storyloft/storyloft-backend/internal/types"
)

type ManuscriptRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rows []*types.Manuscript) ([]*types.Manuscript, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Manuscript, error)
	GetByAuthorID(ctx context.Context, tx *gorm.DB, authorID uuid.UUID) ([]*types.Manuscript, error)
	Update(ctx context.Context, tx *gorm.DB, row *types.Manuscript) error
	UpdateCurrentPhase(ctx context.Context, tx *gorm.DB, id uuid.UUID, phase int) error
	UpdateStatus(ctx context.Context, tx *gorm.DB, id uuid.UUID, status string) error
	UpdateCounts(ctx context.Context, tx *gorm.DB, id uuid.UUID, wordCount, chapterCount int) error
}

type manuscriptRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewManuscriptRepo(db *gorm.DB, baseLog *logger.Logger) ManuscriptRepo {
	return &manuscriptRepo{db: db, log: baseLog.With("repo", "ManuscriptRepo")}
}

func (r *manuscriptRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.Manuscript) ([]*types.Manuscript, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(rows) == 0 {
		return []*types.Manuscript{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *manuscriptRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Manuscript, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Manuscript
	if len(ids) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *manuscriptRepo) GetByAuthorID(ctx context.Context, tx *gorm.DB, authorID uuid.UUID) ([]*types.Manuscript, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Manuscript
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

func (r *manuscriptRepo) Update(ctx context.Context, tx *gorm.DB, row *types.Manuscript) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if row == nil {
		return nil
	}

	return transaction.WithContext(ctx).Save(row).Error
}

func (r *manuscriptRepo) UpdateCurrentPhase(ctx context.Context, tx *gorm.DB, id uuid.UUID, phase int) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	return transaction.WithContext(ctx).
		Model(&types.Manuscript{}).
		Where("id = ?", id).
		Update("current_phase", phase).Error
}

func (r *manuscriptRepo) UpdateStatus(ctx context.Context, tx *gorm.DB, id uuid.UUID, status string) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	return transaction.WithContext(ctx).
		Model(&types.Manuscript{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *manuscriptRepo) UpdateCounts(ctx context.Context, tx *gorm.DB, id uuid.UUID, wordCount, chapterCount int) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	return transaction.WithContext(ctx).
		Model(&types.Manuscript{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"word_count":    wordCount,
			"chapter_count": chapterCount,
		}).Error
}

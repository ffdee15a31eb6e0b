package repos

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storyloft/storyloft-backend/internal/logger"
	"github.com/storyloft/storyloft-backend/internal/types"
)

type ChapterRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rows []*types.Chapter) ([]*types.Chapter, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Chapter, error)
	GetByManuscriptID(ctx context.Context, tx *gorm.DB, manuscriptID uuid.UUID) ([]*types.Chapter, error)
	CountByManuscriptID(ctx context.Context, tx *gorm.DB, manuscriptID uuid.UUID) (int64, error)
	CountApprovedForPhase(ctx context.Context, tx *gorm.DB, manuscriptID uuid.UUID, phase int) (int64, error)
	UpdateContent(ctx context.Context, tx *gorm.DB, id uuid.UUID, title, content string) error
	SetApproval(ctx context.Context, tx *gorm.DB, id uuid.UUID, phase int, at time.Time) error
}

type chapterRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewChapterRepo(db *gorm.DB, baseLog *logger.Logger) ChapterRepo {
	return &chapterRepo{db: db, log: baseLog.With("repo", "ChapterRepo")}
}

func approvalColumn(phase int) (string, error) {
	switch phase {
	case 1:
		return "phase1_approved_at", nil
	case 2:
		return "phase2_approved_at", nil
	case 3:
		return "phase3_approved_at", nil
	}
	return "", fmt.Errorf("no approval column for phase %d", phase)
}

func (r *chapterRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.Chapter) ([]*types.Chapter, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(rows) == 0 {
		return []*types.Chapter{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *chapterRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Chapter, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Chapter
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

func (r *chapterRepo) GetByManuscriptID(ctx context.Context, tx *gorm.DB, manuscriptID uuid.UUID) ([]*types.Chapter, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Chapter
	if manuscriptID == uuid.Nil {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("manuscript_id = ?", manuscriptID).
		Order("chapter_number ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *chapterRepo) CountByManuscriptID(ctx context.Context, tx *gorm.DB, manuscriptID uuid.UUID) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.Chapter{}).
		Where("manuscript_id = ?", manuscriptID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *chapterRepo) CountApprovedForPhase(ctx context.Context, tx *gorm.DB, manuscriptID uuid.UUID, phase int) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	column, err := approvalColumn(phase)
	if err != nil {
		return 0, err
	}

	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.Chapter{}).
		Where("manuscript_id = ?", manuscriptID).
		Where(column + " IS NOT NULL").
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *chapterRepo) UpdateContent(ctx context.Context, tx *gorm.DB, id uuid.UUID, title, content string) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	return transaction.WithContext(ctx).
		Model(&types.Chapter{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"title":   title,
			"content": content,
		}).Error
}

func (r *chapterRepo) SetApproval(ctx context.Context, tx *gorm.DB, id uuid.UUID, phase int, at time.Time) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	column, err := approvalColumn(phase)
	if err != nil {
		return err
	}

	return transaction.WithContext(ctx).
		Model(&types.Chapter{}).
		Where("id = ?", id).
		Update(column, at).Error
}

package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storyloft/storyloft-backend/internal/logger"
	"github.com/storyloft/storyloft-backend/internal/types"
)

type AuthorProfileRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rows []*types.AuthorProfile) ([]*types.AuthorProfile, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.AuthorProfile, error)
	GetByEmails(ctx context.Context, tx *gorm.DB, emails []string) ([]*types.AuthorProfile, error)
	EmailExists(ctx context.Context, tx *gorm.DB, email string) (bool, error)
	Update(ctx context.Context, tx *gorm.DB, row *types.AuthorProfile) error
	UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, fields map[string]interface{}) error
	StampLastLogin(ctx context.Context, tx *gorm.DB, id uuid.UUID, at time.Time) error
}

type authorProfileRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAuthorProfileRepo(db *gorm.DB, baseLog *logger.Logger) AuthorProfileRepo {
	return &authorProfileRepo{db: db, log: baseLog.With("repo", "AuthorProfileRepo")}
}

func (r *authorProfileRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.AuthorProfile) ([]*types.AuthorProfile, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(rows) == 0 {
		return []*types.AuthorProfile{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *authorProfileRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.AuthorProfile, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.AuthorProfile
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

func (r *authorProfileRepo) GetByEmails(ctx context.Context, tx *gorm.DB, emails []string) ([]*types.AuthorProfile, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.AuthorProfile
	if len(emails) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("email IN ?", emails).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *authorProfileRepo) EmailExists(ctx context.Context, tx *gorm.DB, email string) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.AuthorProfile{}).
		Where("email = ?", email).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *authorProfileRepo) Update(ctx context.Context, tx *gorm.DB, row *types.AuthorProfile) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if row == nil {
		return nil
	}

	return transaction.WithContext(ctx).Save(row).Error
}

func (r *authorProfileRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, fields map[string]interface{}) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if id == uuid.Nil || len(fields) == 0 {
		return nil
	}

	return transaction.WithContext(ctx).
		Model(&types.AuthorProfile{}).
		Where("id = ?", id).
		Updates(fields).Error
}

func (r *authorProfileRepo) StampLastLogin(ctx context.Context, tx *gorm.DB, id uuid.UUID, at time.Time) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	return transaction.WithContext(ctx).
		Model(&types.AuthorProfile{}).
		Where("id = ?", id).
		Update("last_login_at", at).Error
}

package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storyloft/storyloft-backend/internal/logger"
	"github.com/storyloft/storyloft-backend/internal/types"
)

type UserPurchaseRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rows []*types.UserPurchase) ([]*types.UserPurchase, error)
	GetByAuthorID(ctx context.Context, tx *gorm.DB, authorID uuid.UUID) ([]*types.UserPurchase, error)
	GetByCheckoutSessionID(ctx context.Context, tx *gorm.DB, sessionID string) (*types.UserPurchase, error)
	MarkCompleted(ctx context.Context, tx *gorm.DB, sessionID string, purchasedAt time.Time) error
}

type userPurchaseRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserPurchaseRepo(db *gorm.DB, baseLog *logger.Logger) UserPurchaseRepo {
	return &userPurchaseRepo{db: db, log: baseLog.With("repo", "UserPurchaseRepo")}
}

func (r *userPurchaseRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.UserPurchase) ([]*types.UserPurchase, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(rows) == 0 {
		return []*types.UserPurchase{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *userPurchaseRepo) GetByAuthorID(ctx context.Context, tx *gorm.DB, authorID uuid.UUID) ([]*types.UserPurchase, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.UserPurchase
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

func (r *userPurchaseRepo) GetByCheckoutSessionID(ctx context.Context, tx *gorm.DB, sessionID string) (*types.UserPurchase, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if sessionID == "" {
		return nil, nil
	}

	var result types.UserPurchase
	err := transaction.WithContext(ctx).
		Where("checkout_session_id = ?", sessionID).
		First(&result).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *userPurchaseRepo) MarkCompleted(ctx context.Context, tx *gorm.DB, sessionID string, purchasedAt time.Time) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	return transaction.WithContext(ctx).
		Model(&types.UserPurchase{}).
		Where("checkout_session_id = ?", sessionID).
		Updates(map[string]interface{}{
			"status":       types.PurchaseStatusCompleted,
			"purchased_at": purchasedAt,
		}).Error
}

package types

import (
	"time"

	"github.com/google/uuid"
)

const (
	PackagePublishing = "publishing"
	PackageMarketing  = "marketing"
	PackageComplete   = "complete"
)

const (
	PurchaseStatusPending   = "pending"
	PurchaseStatusCompleted = "completed"
	PurchaseStatusFailed    = "failed"
)

type UserPurchase struct {
	ID                 uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	AuthorID           uuid.UUID      `gorm:"type:uuid;not null;index;column:author_id" json:"author_id"`
	Author             *AuthorProfile `gorm:"constraint:OnDelete:CASCADE;foreignKey:AuthorID;references:ID" json:"author,omitempty"`
	ManuscriptID       *uuid.UUID     `gorm:"type:uuid;index;column:manuscript_id" json:"manuscript_id,omitempty"`
	Package            string         `gorm:"column:package;not null" json:"package"`
	CheckoutSessionID  string         `gorm:"uniqueIndex;column:checkout_session_id" json:"checkout_session_id"`
	AmountCents        int64          `gorm:"column:amount_cents;not null;default:0" json:"amount_cents"`
	Currency           string         `gorm:"column:currency;not null;default:'usd'" json:"currency"`
	Status             string         `gorm:"column:status;not null;default:'pending'" json:"status"`
	PurchasedAt        *time.Time     `gorm:"column:purchased_at" json:"purchased_at,omitempty"`
	CreatedAt          time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt          time.Time      `gorm:"not null;default:now()" json:"updated_at"`
}

func (UserPurchase) TableName() string { return "user_purchases" }

func ValidPackage(pkg string) bool {
	switch pkg {
	case PackagePublishing, PackageMarketing, PackageComplete:
		return true
	}
	return false
}

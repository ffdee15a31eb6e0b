package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleAuthor     = "author"
	RoleAdmin      = "admin"
	RoleSuperAdmin = "super_admin"
)

type AuthorProfile struct {
	ID                 uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Email              string         `gorm:"uniqueIndex;not null;column:email" json:"email"`
	Password           string         `gorm:"not null;column:password" json:"-"`
	FirstName          string         `gorm:"not null;column:first_name" json:"first_name"`
	LastName           string         `gorm:"not null;column:last_name" json:"last_name"`
	PenName            string         `gorm:"column:pen_name" json:"pen_name"`
	Phone              string         `gorm:"column:phone" json:"phone"`
	Role               string         `gorm:"column:role;not null;default:'author'" json:"role"`
	IsBetaTester       bool           `gorm:"column:is_beta_tester;not null;default:false" json:"is_beta_tester"`
	OnboardingComplete bool           `gorm:"column:onboarding_complete;not null;default:false" json:"onboarding_complete"`
	CreatedBy          *uuid.UUID     `gorm:"type:uuid;column:created_by" json:"created_by,omitempty"`
	LastLoginAt        *time.Time     `gorm:"column:last_login_at" json:"last_login_at,omitempty"`
	CreatedAt          time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt          time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (AuthorProfile) TableName() string { return "author_profiles" }

func (p *AuthorProfile) IsAdmin() bool {
	return p != nil && (p.Role == RoleAdmin || p.Role == RoleSuperAdmin)
}

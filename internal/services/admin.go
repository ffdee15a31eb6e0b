package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/storyloft/storyloft-backend/internal/logger"
	"github.com/storyloft/storyloft-backend/internal/normalization"
	"github.com/storyloft/storyloft-backend/internal/repos"
	"github.com/storyloft/storyloft-backend/internal/types"
)

var ErrNotAdmin = fmt.Errorf("caller is not an admin")

type CreateUserInput struct {
	Email        string
	TempPassword string
	FirstName    string
	LastName     string
	IsBetaTester bool
}

type AdminService interface {
	// CreateUser performs the privileged account creation. The caller's
	// stored role is re-checked against the database, not just the token;
	// a rejection leaves no partial row behind.
	CreateUser(ctx context.Context, callerID uuid.UUID, input CreateUserInput) (*types.AuthorProfile, error)
}

type adminService struct {
	db          *gorm.DB
	log         *logger.Logger
	profileRepo repos.AuthorProfileRepo
}

func NewAdminService(db *gorm.DB, baseLog *logger.Logger, profileRepo repos.AuthorProfileRepo) AdminService {
	return &adminService{
		db:          db,
		log:         baseLog.With("service", "AdminService"),
		profileRepo: profileRepo,
	}
}

func (s *adminService) CreateUser(ctx context.Context, callerID uuid.UUID, input CreateUserInput) (*types.AuthorProfile, error) {
	callers, err := s.profileRepo.GetByIDs(ctx, nil, []uuid.UUID{callerID})
	if err != nil {
		return nil, fmt.Errorf("load caller profile: %w", err)
	}
	if len(callers) == 0 || !callers[0].IsAdmin() {
		return nil, ErrNotAdmin
	}

	email := normalization.ParseInputString(input.Email)
	if email == "" {
		return nil, fmt.Errorf("email required")
	}
	if input.TempPassword == "" {
		return nil, fmt.Errorf("temporary password required")
	}
	exists, err := s.profileRepo.EmailExists(ctx, nil, email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("email is already in use")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.TempPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash temporary password: %w", err)
	}

	profile := &types.AuthorProfile{
		ID:           uuid.New(),
		Email:        email,
		Password:     string(hashed),
		FirstName:    normalization.TrimInputString(input.FirstName),
		LastName:     normalization.TrimInputString(input.LastName),
		Role:         types.RoleAuthor,
		IsBetaTester: input.IsBetaTester,
		CreatedBy:    &callerID,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.profileRepo.Create(ctx, tx, []*types.AuthorProfile{profile}); err != nil {
			return fmt.Errorf("create author profile: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Admin created user", "created_id", profile.ID, "created_by", callerID, "beta_tester", input.IsBetaTester)
	return profile, nil
}

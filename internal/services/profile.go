package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storyloft/storyloft-backend/internal/logger"
	"github.com/storyloft/storyloft-backend/internal/repos"
	"github.com/storyloft/storyloft-backend/internal/types"
)

type ProfileUpdate struct {
	FirstName          *string
	LastName           *string
	PenName            *string
	Phone              *string
	OnboardingComplete *bool
}

type ProfileService interface {
	GetProfile(ctx context.Context, authorID uuid.UUID) (*types.AuthorProfile, error)
	UpdateProfile(ctx context.Context, authorID uuid.UUID, update ProfileUpdate) error
}

type profileService struct {
	db          *gorm.DB
	log         *logger.Logger
	profileRepo repos.AuthorProfileRepo
}

func NewProfileService(db *gorm.DB, baseLog *logger.Logger, profileRepo repos.AuthorProfileRepo) ProfileService {
	return &profileService{
		db:          db,
		log:         baseLog.With("service", "ProfileService"),
		profileRepo: profileRepo,
	}
}

func (s *profileService) GetProfile(ctx context.Context, authorID uuid.UUID) (*types.AuthorProfile, error) {
	profiles, err := s.profileRepo.GetByIDs(ctx, nil, []uuid.UUID{authorID})
	if err != nil {
		return nil, fmt.Errorf("load author profile: %w", err)
	}
	if len(profiles) == 0 {
		return nil, fmt.Errorf("author not found")
	}
	return profiles[0], nil
}

func (s *profileService) UpdateProfile(ctx context.Context, authorID uuid.UUID, update ProfileUpdate) error {
	fields := map[string]interface{}{}
	if update.FirstName != nil {
		fields["first_name"] = *update.FirstName
	}
	if update.LastName != nil {
		fields["last_name"] = *update.LastName
	}
	if update.PenName != nil {
		fields["pen_name"] = *update.PenName
	}
	if update.Phone != nil {
		fields["phone"] = *update.Phone
	}
	if update.OnboardingComplete != nil {
		fields["onboarding_complete"] = *update.OnboardingComplete
	}
	if len(fields) == 0 {
		return nil
	}
	return s.profileRepo.UpdateFields(ctx, nil, authorID, fields)
}

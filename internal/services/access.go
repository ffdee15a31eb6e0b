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

// Access describes what a signed-in author may reach: editing phases 1..3
// come with the product, 4 and 5 are unlocked by purchase, and admins and
// beta testers see everything.
type Access struct {
	AuthorID       uuid.UUID `json:"author_id"`
	Role           string    `json:"role"`
	IsBetaTester   bool      `json:"is_beta_tester"`
	UnlockedPhases []int     `json:"unlocked_phases"`
	Packages       []string  `json:"packages"`
}

type AccessService interface {
	ResolveAccess(ctx context.Context, authorID uuid.UUID) (*Access, error)
}

type accessService struct {
	db           *gorm.DB
	log          *logger.Logger
	profileRepo  repos.AuthorProfileRepo
	purchaseRepo repos.UserPurchaseRepo
}

func NewAccessService(
	db *gorm.DB,
	baseLog *logger.Logger,
	profileRepo repos.AuthorProfileRepo,
	purchaseRepo repos.UserPurchaseRepo,
) AccessService {
	return &accessService{
		db:           db,
		log:          baseLog.With("service", "AccessService"),
		profileRepo:  profileRepo,
		purchaseRepo: purchaseRepo,
	}
}

// UnlockedPhases is the pure unlock rule, separated so it can be checked
// without a database.
func UnlockedPhases(profile *types.AuthorProfile, purchases []*types.UserPurchase) []int {
	if profile == nil {
		return nil
	}
	if profile.IsAdmin() || profile.IsBetaTester {
		return []int{1, 2, 3, 4, 5}
	}

	phases := []int{1, 2, 3}
	publishing := false
	marketing := false
	for _, p := range purchases {
		if p == nil || p.Status != types.PurchaseStatusCompleted {
			continue
		}
		switch p.Package {
		case types.PackagePublishing:
			publishing = true
		case types.PackageMarketing:
			marketing = true
		case types.PackageComplete:
			publishing = true
			marketing = true
		}
	}
	if publishing {
		phases = append(phases, types.PhasePublishing)
	}
	if marketing {
		phases = append(phases, types.PhaseMarketing)
	}
	return phases
}

func (s *accessService) ResolveAccess(ctx context.Context, authorID uuid.UUID) (*Access, error) {
	profiles, err := s.profileRepo.GetByIDs(ctx, nil, []uuid.UUID{authorID})
	if err != nil {
		return nil, fmt.Errorf("load author profile: %w", err)
	}
	if len(profiles) == 0 {
		return nil, fmt.Errorf("author not found")
	}
	profile := profiles[0]

	purchases, err := s.purchaseRepo.GetByAuthorID(ctx, nil, authorID)
	if err != nil {
		return nil, fmt.Errorf("load purchases: %w", err)
	}

	packages := make([]string, 0, len(purchases))
	for _, p := range purchases {
		if p != nil && p.Status == types.PurchaseStatusCompleted {
			packages = append(packages, p.Package)
		}
	}

	return &Access{
		AuthorID:       profile.ID,
		Role:           profile.Role,
		IsBetaTester:   profile.IsBetaTester,
		UnlockedPhases: UnlockedPhases(profile, purchases),
		Packages:       packages,
	}, nil
}

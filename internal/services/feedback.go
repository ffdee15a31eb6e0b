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

type FeedbackService interface {
	SubmitFeedback(ctx context.Context, row *types.BetaFeedback) error
	GetAuthorFeedback(ctx context.Context, authorID uuid.UUID) ([]*types.BetaFeedback, error)
}

type feedbackService struct {
	db           *gorm.DB
	log          *logger.Logger
	feedbackRepo repos.BetaFeedbackRepo
}

func NewFeedbackService(db *gorm.DB, baseLog *logger.Logger, feedbackRepo repos.BetaFeedbackRepo) FeedbackService {
	return &feedbackService{
		db:           db,
		log:          baseLog.With("service", "FeedbackService"),
		feedbackRepo: feedbackRepo,
	}
}

func (s *feedbackService) SubmitFeedback(ctx context.Context, row *types.BetaFeedback) error {
	if row == nil || row.AuthorID == uuid.Nil {
		return fmt.Errorf("author id required")
	}
	if row.Message == "" {
		return fmt.Errorf("message required")
	}
	if row.Category == "" {
		row.Category = "general"
	}
	row.ID = uuid.New()
	if _, err := s.feedbackRepo.Create(ctx, nil, []*types.BetaFeedback{row}); err != nil {
		return fmt.Errorf("create feedback: %w", err)
	}
	return nil
}

func (s *feedbackService) GetAuthorFeedback(ctx context.Context, authorID uuid.UUID) ([]*types.BetaFeedback, error) {
	return s.feedbackRepo.GetByAuthorID(ctx, nil, authorID)
}

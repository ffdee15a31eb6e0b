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

type ChapterInput struct {
	ChapterNumber int    `json:"chapter_number"`
	Title         string `json:"title"`
	Content       string `json:"content"`
}

type ManuscriptService interface {
	CreateManuscript(ctx context.Context, authorID uuid.UUID, title, genre string, chapters []ChapterInput) (*types.Manuscript, error)
	GetManuscript(ctx context.Context, manuscriptID uuid.UUID) (*types.Manuscript, error)
	GetAuthorManuscripts(ctx context.Context, authorID uuid.UUID) ([]*types.Manuscript, error)
	GetChapters(ctx context.Context, manuscriptID uuid.UUID) ([]*types.Chapter, error)
	UpdateChapterContent(ctx context.Context, chapterID uuid.UUID, title, content string) error
	ArchiveManuscript(ctx context.Context, manuscriptID uuid.UUID) error
}

type manuscriptService struct {
	db                *gorm.DB
	log               *logger.Logger
	manuscriptRepo    repos.ManuscriptRepo
	chapterRepo       repos.ChapterRepo
	phaseService      PhaseService
	publishingService PublishingService
}

func NewManuscriptService(
	db *gorm.DB,
	baseLog *logger.Logger,
	manuscriptRepo repos.ManuscriptRepo,
	chapterRepo repos.ChapterRepo,
	phaseService PhaseService,
	publishingService PublishingService,
) ManuscriptService {
	return &manuscriptService{
		db:                db,
		log:               baseLog.With("service", "ManuscriptService"),
		manuscriptRepo:    manuscriptRepo,
		chapterRepo:       chapterRepo,
		phaseService:      phaseService,
		publishingService: publishingService,
	}
}

// CreateManuscript inserts the manuscript, its chapters, the five phase
// rows and the publishing progress singleton in one transaction, so a new
// manuscript is never observable half-seeded.
func (ms *manuscriptService) CreateManuscript(ctx context.Context, authorID uuid.UUID, title, genre string, chapters []ChapterInput) (*types.Manuscript, error) {
	if authorID == uuid.Nil {
		return nil, fmt.Errorf("author id required")
	}
	if title == "" {
		return nil, fmt.Errorf("title required")
	}

	wordCount := 0
	for _, ch := range chapters {
		wordCount += CountWords(ch.Content)
	}

	manuscript := &types.Manuscript{
		ID:           uuid.New(),
		AuthorID:     authorID,
		Title:        title,
		Genre:        genre,
		WordCount:    wordCount,
		ChapterCount: len(chapters),
		CurrentPhase: types.FirstPhase,
		Status:       types.ManuscriptStatusActive,
	}

	err := ms.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := ms.manuscriptRepo.Create(ctx, tx, []*types.Manuscript{manuscript}); err != nil {
			return fmt.Errorf("create manuscript: %w", err)
		}

		rows := make([]*types.Chapter, 0, len(chapters))
		for _, ch := range chapters {
			rows = append(rows, &types.Chapter{
				ID:            uuid.New(),
				ManuscriptID:  manuscript.ID,
				ChapterNumber: ch.ChapterNumber,
				Title:         ch.Title,
				Content:       ch.Content,
			})
		}
		if _, err := ms.chapterRepo.Create(ctx, tx, rows); err != nil {
			return fmt.Errorf("create chapters: %w", err)
		}

		if err := ms.phaseService.InitPhases(ctx, tx, manuscript.ID); err != nil {
			return err
		}
		if err := ms.publishingService.InitProgress(ctx, tx, manuscript.ID); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		ms.log.Error("CreateManuscript failed", "error", err, "author_id", authorID)
		return nil, err
	}

	ms.log.Info("Manuscript created", "manuscript_id", manuscript.ID, "chapters", len(chapters), "word_count", wordCount)
	return manuscript, nil
}

func (ms *manuscriptService) GetManuscript(ctx context.Context, manuscriptID uuid.UUID) (*types.Manuscript, error) {
	manuscripts, err := ms.manuscriptRepo.GetByIDs(ctx, nil, []uuid.UUID{manuscriptID})
	if err != nil {
		return nil, fmt.Errorf("load manuscript: %w", err)
	}
	if len(manuscripts) == 0 {
		return nil, nil
	}
	return manuscripts[0], nil
}

func (ms *manuscriptService) GetAuthorManuscripts(ctx context.Context, authorID uuid.UUID) ([]*types.Manuscript, error) {
	return ms.manuscriptRepo.GetByAuthorID(ctx, nil, authorID)
}

func (ms *manuscriptService) GetChapters(ctx context.Context, manuscriptID uuid.UUID) ([]*types.Chapter, error) {
	return ms.chapterRepo.GetByManuscriptID(ctx, nil, manuscriptID)
}

func (ms *manuscriptService) UpdateChapterContent(ctx context.Context, chapterID uuid.UUID, title, content string) error {
	chapters, err := ms.chapterRepo.GetByIDs(ctx, nil, []uuid.UUID{chapterID})
	if err != nil {
		return fmt.Errorf("load chapter: %w", err)
	}
	if len(chapters) == 0 || chapters[0] == nil {
		return fmt.Errorf("chapter not found")
	}
	chapter := chapters[0]

	return ms.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ms.chapterRepo.UpdateContent(ctx, tx, chapterID, title, content); err != nil {
			return fmt.Errorf("update chapter: %w", err)
		}
		all, err := ms.chapterRepo.GetByManuscriptID(ctx, tx, chapter.ManuscriptID)
		if err != nil {
			return fmt.Errorf("reload chapters: %w", err)
		}
		total := 0
		for _, ch := range all {
			if ch == nil {
				continue
			}
			if ch.ID == chapterID {
				total += CountWords(content)
			} else {
				total += CountWords(ch.Content)
			}
		}
		if err := ms.manuscriptRepo.UpdateCounts(ctx, tx, chapter.ManuscriptID, total, len(all)); err != nil {
			return fmt.Errorf("update manuscript counts: %w", err)
		}
		return nil
	})
}

func (ms *manuscriptService) ArchiveManuscript(ctx context.Context, manuscriptID uuid.UUID) error {
	return ms.manuscriptRepo.UpdateStatus(ctx, nil, manuscriptID, types.ManuscriptStatusArchived)
}

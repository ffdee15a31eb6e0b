package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storyloft/storyloft-backend/internal/logger"
	"github.com/storyloft/storyloft-backend/internal/repos"
	"github.com/storyloft/storyloft-backend/internal/types"
)

// SectionSeparator joins chapter sections in a collated snapshot.
const SectionSeparator = "\n\n---\n\n"

type SnapshotService interface {
	// CreateApprovedSnapshot collates every chapter of the manuscript in
	// chapter_number order into one immutable approved_snapshot version.
	// Always a full rewrite; no diffing against prior versions.
	CreateApprovedSnapshot(ctx context.Context, manuscriptID uuid.UUID, phaseNumber int, editorName string) (bool, error)
	GetVersions(ctx context.Context, manuscriptID uuid.UUID) ([]*types.ManuscriptVersion, error)
}

type snapshotService struct {
	db          *gorm.DB
	log         *logger.Logger
	chapterRepo repos.ChapterRepo
	versionRepo repos.ManuscriptVersionRepo
	notifier    ProgressNotifier
}

func NewSnapshotService(
	db *gorm.DB,
	baseLog *logger.Logger,
	chapterRepo repos.ChapterRepo,
	versionRepo repos.ManuscriptVersionRepo,
	notifier ProgressNotifier,
) SnapshotService {
	return &snapshotService{
		db:          db,
		log:         baseLog.With("service", "SnapshotService"),
		chapterRepo: chapterRepo,
		versionRepo: versionRepo,
		notifier:    notifier,
	}
}

// SectionLabel names a chapter's section in the collated document.
// Chapter 0 is the prologue by convention.
func SectionLabel(chapterNumber int) string {
	if chapterNumber == 0 {
		return "Prologue"
	}
	return fmt.Sprintf("Chapter %d", chapterNumber)
}

// CollateChapters renders chapters, already ordered by chapter_number, as
// labeled sections joined by the fixed separator.
func CollateChapters(chapters []*types.Chapter) string {
	sections := make([]string, 0, len(chapters))
	for _, ch := range chapters {
		if ch == nil {
			continue
		}
		sections = append(sections, SectionLabel(ch.ChapterNumber)+"\n\n"+ch.Content)
	}
	return strings.Join(sections, SectionSeparator)
}

// CountWords counts whitespace-delimited tokens.
func CountWords(content string) int {
	return len(strings.Fields(content))
}

func (ss *snapshotService) CreateApprovedSnapshot(ctx context.Context, manuscriptID uuid.UUID, phaseNumber int, editorName string) (bool, error) {
	if manuscriptID == uuid.Nil {
		return false, fmt.Errorf("manuscript id required")
	}

	chapters, err := ss.chapterRepo.GetByManuscriptID(ctx, nil, manuscriptID)
	if err != nil {
		return false, fmt.Errorf("load chapters: %w", err)
	}
	if len(chapters) == 0 {
		return false, fmt.Errorf("manuscript has no chapters to snapshot")
	}

	content := CollateChapters(chapters)
	version := &types.ManuscriptVersion{
		ID:              uuid.New(),
		ManuscriptID:    manuscriptID,
		PhaseNumber:     phaseNumber,
		VersionType:     types.VersionTypeApprovedSnapshot,
		Content:         content,
		WordCount:       CountWords(content),
		CreatedByEditor: editorName,
	}

	if _, err := ss.versionRepo.Create(ctx, nil, []*types.ManuscriptVersion{version}); err != nil {
		ss.log.Error("CreateApprovedSnapshot insert failed", "error", err, "manuscript_id", manuscriptID, "phase", phaseNumber)
		return false, fmt.Errorf("insert version: %w", err)
	}

	ss.log.Info("Approved snapshot created", "manuscript_id", manuscriptID, "phase", phaseNumber, "word_count", version.WordCount)
	if ss.notifier != nil {
		ss.notifier.SnapshotCreated(ctx, manuscriptID, version)
	}
	return true, nil
}

func (ss *snapshotService) GetVersions(ctx context.Context, manuscriptID uuid.UUID) ([]*types.ManuscriptVersion, error) {
	return ss.versionRepo.GetByManuscriptID(ctx, nil, manuscriptID)
}

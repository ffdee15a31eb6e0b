package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storyloft/storyloft-backend/internal/logger"
	"github.com/storyloft/storyloft-backend/internal/types"
)

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	return log
}

type fakeManuscriptRepo struct {
	rows          map[uuid.UUID]*types.Manuscript
	currentPhases map[uuid.UUID]int
}

func newFakeManuscriptRepo() *fakeManuscriptRepo {
	return &fakeManuscriptRepo{
		rows:          map[uuid.UUID]*types.Manuscript{},
		currentPhases: map[uuid.UUID]int{},
	}
}

func (f *fakeManuscriptRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.Manuscript) ([]*types.Manuscript, error) {
	for _, r := range rows {
		f.rows[r.ID] = r
	}
	return rows, nil
}

func (f *fakeManuscriptRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Manuscript, error) {
	out := []*types.Manuscript{}
	for _, id := range ids {
		if r, ok := f.rows[id]; ok {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeManuscriptRepo) GetByAuthorID(ctx context.Context, tx *gorm.DB, authorID uuid.UUID) ([]*types.Manuscript, error) {
	out := []*types.Manuscript{}
	for _, r := range f.rows {
		if r.AuthorID == authorID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeManuscriptRepo) Update(ctx context.Context, tx *gorm.DB, row *types.Manuscript) error {
	f.rows[row.ID] = row
	return nil
}

func (f *fakeManuscriptRepo) UpdateCurrentPhase(ctx context.Context, tx *gorm.DB, id uuid.UUID, phase int) error {
	f.currentPhases[id] = phase
	return nil
}

func (f *fakeManuscriptRepo) UpdateStatus(ctx context.Context, tx *gorm.DB, id uuid.UUID, status string) error {
	if r, ok := f.rows[id]; ok {
		r.Status = status
	}
	return nil
}

func (f *fakeManuscriptRepo) UpdateCounts(ctx context.Context, tx *gorm.DB, id uuid.UUID, wordCount, chapterCount int) error {
	return nil
}

type fakeChapterRepo struct {
	rows []*types.Chapter
}

func (f *fakeChapterRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.Chapter) ([]*types.Chapter, error) {
	f.rows = append(f.rows, rows...)
	return rows, nil
}

func (f *fakeChapterRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Chapter, error) {
	out := []*types.Chapter{}
	for _, id := range ids {
		for _, r := range f.rows {
			if r.ID == id {
				out = append(out, r)
			}
		}
	}
	return out, nil
}

func (f *fakeChapterRepo) GetByManuscriptID(ctx context.Context, tx *gorm.DB, manuscriptID uuid.UUID) ([]*types.Chapter, error) {
	out := []*types.Chapter{}
	for _, r := range f.rows {
		if r.ManuscriptID == manuscriptID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeChapterRepo) CountByManuscriptID(ctx context.Context, tx *gorm.DB, manuscriptID uuid.UUID) (int64, error) {
	var n int64
	for _, r := range f.rows {
		if r.ManuscriptID == manuscriptID {
			n++
		}
	}
	return n, nil
}

func (f *fakeChapterRepo) CountApprovedForPhase(ctx context.Context, tx *gorm.DB, manuscriptID uuid.UUID, phase int) (int64, error) {
	var n int64
	for _, r := range f.rows {
		if r.ManuscriptID == manuscriptID && r.ApprovalForPhase(phase) != nil {
			n++
		}
	}
	return n, nil
}

func (f *fakeChapterRepo) UpdateContent(ctx context.Context, tx *gorm.DB, id uuid.UUID, title, content string) error {
	for _, r := range f.rows {
		if r.ID == id {
			r.Title = title
			r.Content = content
		}
	}
	return nil
}

func (f *fakeChapterRepo) SetApproval(ctx context.Context, tx *gorm.DB, id uuid.UUID, phase int, at time.Time) error {
	for _, r := range f.rows {
		if r.ID == id {
			r.SetApprovalForPhase(phase, at)
		}
	}
	return nil
}

type fakePhaseRepo struct {
	rows []*types.EditingPhase
}

func (f *fakePhaseRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.EditingPhase) ([]*types.EditingPhase, error) {
	f.rows = append(f.rows, rows...)
	return rows, nil
}

func (f *fakePhaseRepo) GetByManuscriptID(ctx context.Context, tx *gorm.DB, manuscriptID uuid.UUID) ([]*types.EditingPhase, error) {
	out := []*types.EditingPhase{}
	for _, r := range f.rows {
		if r.ManuscriptID == manuscriptID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakePhaseRepo) GetByManuscriptAndPhase(ctx context.Context, tx *gorm.DB, manuscriptID uuid.UUID, phase int) (*types.EditingPhase, error) {
	for _, r := range f.rows {
		if r.ManuscriptID == manuscriptID && r.PhaseNumber == phase {
			return r, nil
		}
	}
	return nil, nil
}

func (f *fakePhaseRepo) GetActiveByManuscriptID(ctx context.Context, tx *gorm.DB, manuscriptID uuid.UUID) (*types.EditingPhase, error) {
	for _, r := range f.rows {
		if r.ManuscriptID == manuscriptID && r.Status == types.PhaseStatusActive {
			return r, nil
		}
	}
	return nil, nil
}

func (f *fakePhaseRepo) MarkComplete(ctx context.Context, tx *gorm.DB, manuscriptID uuid.UUID, phase int, completedAt time.Time, chaptersApproved int) error {
	for _, r := range f.rows {
		if r.ManuscriptID == manuscriptID && r.PhaseNumber == phase {
			r.Status = types.PhaseStatusComplete
			r.CompletedAt = &completedAt
			r.ChaptersApproved = chaptersApproved
		}
	}
	return nil
}

func (f *fakePhaseRepo) Activate(ctx context.Context, tx *gorm.DB, manuscriptID uuid.UUID, phase int, startedAt time.Time) error {
	for _, r := range f.rows {
		if r.ManuscriptID == manuscriptID && r.PhaseNumber == phase && r.Status != types.PhaseStatusComplete {
			r.Status = types.PhaseStatusActive
			r.StartedAt = &startedAt
		}
	}
	return nil
}

func (f *fakePhaseRepo) SetChaptersApproved(ctx context.Context, tx *gorm.DB, manuscriptID uuid.UUID, phase int, approved int) error {
	for _, r := range f.rows {
		if r.ManuscriptID == manuscriptID && r.PhaseNumber == phase {
			r.ChaptersApproved = approved
		}
	}
	return nil
}

func seedPhaseFixture(t *testing.T, approved bool) (PhaseService, *fakeManuscriptRepo, *fakeChapterRepo, *fakePhaseRepo, uuid.UUID) {
	t.Helper()
	manuscriptID := uuid.New()
	now := time.Now()

	chapterRepo := &fakeChapterRepo{}
	for i := 1; i <= 3; i++ {
		ch := &types.Chapter{ID: uuid.New(), ManuscriptID: manuscriptID, ChapterNumber: i}
		if approved {
			ch.Phase1ApprovedAt = &now
		}
		chapterRepo.rows = append(chapterRepo.rows, ch)
	}

	phaseRepo := &fakePhaseRepo{}
	for p := types.FirstPhase; p <= types.LastPhase; p++ {
		row := &types.EditingPhase{ID: uuid.New(), ManuscriptID: manuscriptID, PhaseNumber: p, Status: types.PhaseStatusPending}
		if p == 1 {
			row.Status = types.PhaseStatusActive
		}
		phaseRepo.rows = append(phaseRepo.rows, row)
	}

	manuscriptRepo := newFakeManuscriptRepo()
	svc := NewPhaseService(nil, newTestLogger(t), manuscriptRepo, chapterRepo, phaseRepo, nil)
	return svc, manuscriptRepo, chapterRepo, phaseRepo, manuscriptID
}

func TestTransitionBlockedWhenChaptersUnapproved(t *testing.T) {
	svc, manuscriptRepo, _, phaseRepo, manuscriptID := seedPhaseFixture(t, false)

	advanced, err := svc.TransitionToNextPhase(context.Background(), manuscriptID, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if advanced {
		t.Fatalf("advanced: want=false got=true")
	}
	// no writes: phase 1 still active, no current_phase update recorded
	active, _ := phaseRepo.GetActiveByManuscriptID(context.Background(), nil, manuscriptID)
	if active == nil || active.PhaseNumber != 1 {
		t.Fatalf("active phase: want=1 got=%+v", active)
	}
	if _, ok := manuscriptRepo.currentPhases[manuscriptID]; ok {
		t.Fatalf("current_phase was written on a blocked transition")
	}
}

func TestTransitionAdvancesWhenAllApproved(t *testing.T) {
	svc, manuscriptRepo, _, phaseRepo, manuscriptID := seedPhaseFixture(t, true)

	advanced, err := svc.TransitionToNextPhase(context.Background(), manuscriptID, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !advanced {
		t.Fatalf("advanced: want=true got=false")
	}

	phase1, _ := phaseRepo.GetByManuscriptAndPhase(context.Background(), nil, manuscriptID, 1)
	if phase1.Status != types.PhaseStatusComplete {
		t.Fatalf("phase 1 status: want=%q got=%q", types.PhaseStatusComplete, phase1.Status)
	}
	if phase1.CompletedAt == nil {
		t.Fatalf("phase 1 completed_at not set")
	}
	if phase1.ChaptersApproved != 3 {
		t.Fatalf("phase 1 chapters_approved: want=3 got=%d", phase1.ChaptersApproved)
	}
	phase2, _ := phaseRepo.GetByManuscriptAndPhase(context.Background(), nil, manuscriptID, 2)
	if phase2.Status != types.PhaseStatusActive {
		t.Fatalf("phase 2 status: want=%q got=%q", types.PhaseStatusActive, phase2.Status)
	}
	if got := manuscriptRepo.currentPhases[manuscriptID]; got != 2 {
		t.Fatalf("manuscript current_phase: want=2 got=%d", got)
	}
}

func TestTransitionRejectsInactivePhase(t *testing.T) {
	svc, _, _, _, manuscriptID := seedPhaseFixture(t, true)

	if _, err := svc.TransitionToNextPhase(context.Background(), manuscriptID, 2); err == nil {
		t.Fatalf("expected error for transition out of a non-active phase")
	}
}

func TestTransitionAtLastPhaseDoesNotOverflow(t *testing.T) {
	svc, manuscriptRepo, _, phaseRepo, manuscriptID := seedPhaseFixture(t, true)
	// force phase 5 active
	for _, r := range phaseRepo.rows {
		r.Status = types.PhaseStatusPending
		if r.PhaseNumber == types.LastPhase {
			r.Status = types.PhaseStatusActive
		}
	}

	advanced, err := svc.TransitionToNextPhase(context.Background(), manuscriptID, types.LastPhase)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !advanced {
		t.Fatalf("advanced: want=true got=false")
	}
	phase5, _ := phaseRepo.GetByManuscriptAndPhase(context.Background(), nil, manuscriptID, types.LastPhase)
	if phase5.Status != types.PhaseStatusComplete {
		t.Fatalf("phase 5 status: want=%q got=%q", types.PhaseStatusComplete, phase5.Status)
	}
	if got := manuscriptRepo.currentPhases[manuscriptID]; got != types.LastPhase {
		t.Fatalf("current_phase past last: want=%d got=%d", types.LastPhase, got)
	}
}

func TestApproveChapterRecountsApproved(t *testing.T) {
	svc, _, chapterRepo, phaseRepo, manuscriptID := seedPhaseFixture(t, false)
	chapterID := chapterRepo.rows[0].ID

	if err := svc.ApproveChapter(context.Background(), chapterID, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if chapterRepo.rows[0].Phase1ApprovedAt == nil {
		t.Fatalf("phase1_approved_at not stamped")
	}
	phase1, _ := phaseRepo.GetByManuscriptAndPhase(context.Background(), nil, manuscriptID, 1)
	if phase1.ChaptersApproved != 1 {
		t.Fatalf("chapters_approved: want=1 got=%d", phase1.ChaptersApproved)
	}
}

func TestApproveChapterRejectsPublishingPhases(t *testing.T) {
	svc, _, chapterRepo, _, _ := seedPhaseFixture(t, false)

	if err := svc.ApproveChapter(context.Background(), chapterRepo.rows[0].ID, 4); err == nil {
		t.Fatalf("expected error approving chapter for phase 4")
	}
}

func TestInitPhasesSeedsFiveRows(t *testing.T) {
	phaseRepo := &fakePhaseRepo{}
	svc := NewPhaseService(nil, newTestLogger(t), newFakeManuscriptRepo(), &fakeChapterRepo{}, phaseRepo, nil)
	manuscriptID := uuid.New()

	if err := svc.InitPhases(context.Background(), nil, manuscriptID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(phaseRepo.rows) != types.LastPhase {
		t.Fatalf("phase rows: want=%d got=%d", types.LastPhase, len(phaseRepo.rows))
	}
	for _, r := range phaseRepo.rows {
		want := types.PhaseStatusPending
		if r.PhaseNumber == types.FirstPhase {
			want = types.PhaseStatusActive
		}
		if r.Status != want {
			t.Fatalf("phase %d status: want=%q got=%q", r.PhaseNumber, want, r.Status)
		}
	}
}

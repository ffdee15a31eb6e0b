package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/storyloft/storyloft-backend/internal/types"
)

type fakeProgressRepo struct {
	row *types.PublishingProgress
	// conflictsLeft forces UpdateGuarded to miss its guard this many times
	conflictsLeft int
	updates       int
}

func (f *fakeProgressRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.PublishingProgress) ([]*types.PublishingProgress, error) {
	if len(rows) > 0 {
		f.row = rows[0]
	}
	return rows, nil
}

func (f *fakeProgressRepo) GetByManuscriptID(ctx context.Context, tx *gorm.DB, manuscriptID uuid.UUID) (*types.PublishingProgress, error) {
	if f.row == nil || f.row.ManuscriptID != manuscriptID {
		return nil, nil
	}
	copied := *f.row
	return &copied, nil
}

func (f *fakeProgressRepo) UpdateGuarded(ctx context.Context, tx *gorm.DB, manuscriptID uuid.UUID, expectedVersion int64, fields map[string]interface{}) (bool, error) {
	if f.conflictsLeft > 0 {
		f.conflictsLeft--
		// simulate a concurrent writer bumping the row
		f.row.RowVersion++
		return false, nil
	}
	if f.row == nil || f.row.RowVersion != expectedVersion {
		return false, nil
	}
	f.updates++
	f.row.RowVersion = expectedVersion + 1
	if v, ok := fields["assessment_completed"].(bool); ok {
		f.row.AssessmentCompleted = v
	}
	if v, ok := fields["assessment_answers"].(datatypes.JSON); ok {
		f.row.AssessmentAnswers = v
	}
	if v, ok := fields["cover_designs"].(datatypes.JSON); ok {
		f.row.CoverDesigns = v
	}
	if v, ok := fields["completed_steps"].(datatypes.JSON); ok {
		f.row.CompletedSteps = v
	}
	if v, ok := fields["step_data"].(datatypes.JSON); ok {
		f.row.StepData = v
	}
	if v, ok := fields["current_step"].(string); ok {
		f.row.CurrentStep = v
	}
	if v, ok := fields["selected_cover_id"].(int); ok {
		f.row.SelectedCoverID = &v
	}
	return true, nil
}

func seedProgress(manuscriptID uuid.UUID) *types.PublishingProgress {
	return &types.PublishingProgress{
		ID:           uuid.New(),
		ManuscriptID: manuscriptID,
		CurrentStep:  types.StepAssessment,
		RowVersion:   1,
	}
}

func newPublishingFixture(t *testing.T) (PublishingService, *fakeProgressRepo, uuid.UUID) {
	t.Helper()
	manuscriptID := uuid.New()
	repo := &fakeProgressRepo{row: seedProgress(manuscriptID)}
	svc := NewPublishingService(nil, newTestLogger(t), repo, nil)
	return svc, repo, manuscriptID
}

func TestApplyCoverSelectionSelectsExactlyOne(t *testing.T) {
	designs := []types.CoverDesign{
		{ID: 1, Selected: false},
		{ID: 2, Selected: false},
	}

	updated, ok := ApplyCoverSelection(designs, 2)
	if !ok {
		t.Fatalf("ok: want=true got=false")
	}
	if updated[0].Selected {
		t.Fatalf("design 1 selected: want=false got=true")
	}
	if !updated[1].Selected {
		t.Fatalf("design 2 selected: want=true got=false")
	}
	// input untouched
	if designs[1].Selected {
		t.Fatalf("input slice was mutated")
	}
}

func TestApplyCoverSelectionClearsPreviousSelection(t *testing.T) {
	designs := []types.CoverDesign{
		{ID: 1, Selected: true},
		{ID: 2},
		{ID: 3},
	}

	updated, ok := ApplyCoverSelection(designs, 3)
	if !ok {
		t.Fatalf("ok: want=true got=false")
	}
	selected := 0
	for _, d := range updated {
		if d.Selected {
			selected++
			if d.ID != 3 {
				t.Fatalf("selected id: want=3 got=%d", d.ID)
			}
		}
	}
	if selected != 1 {
		t.Fatalf("selected count: want=1 got=%d", selected)
	}
}

func TestApplyCoverSelectionUnknownID(t *testing.T) {
	designs := []types.CoverDesign{{ID: 1}, {ID: 2}}

	if updated, ok := ApplyCoverSelection(designs, 9); ok || updated != nil {
		t.Fatalf("unknown id: want=(nil,false) got=(%v,%v)", updated, ok)
	}
}

func TestCompleteAssessmentAdvancesToCoverDesign(t *testing.T) {
	svc, repo, manuscriptID := newPublishingFixture(t)

	answers := types.AssessmentAnswers{PublishingGoal: "self-publish-all", Platforms: []string{"amazon-kdp"}}
	if err := svc.CompleteAssessment(context.Background(), manuscriptID, answers); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !repo.row.AssessmentCompleted {
		t.Fatalf("assessment_completed: want=true got=false")
	}
	if repo.row.CurrentStep != types.StepCoverDesign {
		t.Fatalf("current_step: want=%q got=%q", types.StepCoverDesign, repo.row.CurrentStep)
	}
	if repo.row.RowVersion != 2 {
		t.Fatalf("row_version: want=2 got=%d", repo.row.RowVersion)
	}

	decoded, err := repo.row.DecodedAnswers()
	if err != nil {
		t.Fatalf("decode answers: %v", err)
	}
	if decoded.PublishingGoal != "self-publish-all" {
		t.Fatalf("publishing_goal: want=%q got=%q", "self-publish-all", decoded.PublishingGoal)
	}
}

func TestSelectCoverRewritesListUnderGuard(t *testing.T) {
	svc, repo, manuscriptID := newPublishingFixture(t)
	raw, _ := json.Marshal([]types.CoverDesign{{ID: 1}, {ID: 2}})
	repo.row.CoverDesigns = datatypes.JSON(raw)

	found, err := svc.SelectCover(context.Background(), manuscriptID, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !found {
		t.Fatalf("found: want=true got=false")
	}
	designs, err := repo.row.DecodedCoverDesigns()
	if err != nil {
		t.Fatalf("decode designs: %v", err)
	}
	if designs[0].Selected || !designs[1].Selected {
		t.Fatalf("selection: want only id 2 selected, got %+v", designs)
	}
	if repo.row.SelectedCoverID == nil || *repo.row.SelectedCoverID != 2 {
		t.Fatalf("selected_cover_id: want=2 got=%v", repo.row.SelectedCoverID)
	}
	if repo.row.CurrentStep != types.StepFormatting {
		t.Fatalf("current_step: want=%q got=%q", types.StepFormatting, repo.row.CurrentStep)
	}
}

func TestSelectCoverUnknownID(t *testing.T) {
	svc, repo, manuscriptID := newPublishingFixture(t)
	raw, _ := json.Marshal([]types.CoverDesign{{ID: 1}})
	repo.row.CoverDesigns = datatypes.JSON(raw)

	found, err := svc.SelectCover(context.Background(), manuscriptID, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found {
		t.Fatalf("found: want=false got=true")
	}
	if repo.updates != 0 {
		t.Fatalf("updates: want=0 got=%d", repo.updates)
	}
}

func TestCompleteStepRejectsLockedStep(t *testing.T) {
	svc, _, manuscriptID := newPublishingFixture(t)

	err := svc.CompleteStep(context.Background(), manuscriptID, types.StepFormatting)
	if err == nil {
		t.Fatalf("expected locked-step error before assessment completes")
	}
}

func TestGuardedUpdateRetriesThenSucceeds(t *testing.T) {
	svc, repo, manuscriptID := newPublishingFixture(t)
	repo.conflictsLeft = 2

	answers := types.AssessmentAnswers{PublishingGoal: "hybrid"}
	if err := svc.CompleteAssessment(context.Background(), manuscriptID, answers); err != nil {
		t.Fatalf("unexpected error after retries: %v", err)
	}
	if repo.updates != 1 {
		t.Fatalf("applied updates: want=1 got=%d", repo.updates)
	}
}

func TestGuardedUpdateGivesUpAfterBoundedRetries(t *testing.T) {
	svc, repo, manuscriptID := newPublishingFixture(t)
	repo.conflictsLeft = casAttempts

	err := svc.CompleteAssessment(context.Background(), manuscriptID, types.AssessmentAnswers{})
	if !errors.Is(err, ErrProgressConflict) {
		t.Fatalf("error: want=ErrProgressConflict got=%v", err)
	}
	if repo.updates != 0 {
		t.Fatalf("applied updates: want=0 got=%d", repo.updates)
	}
}

func TestAddCoverDesignsAssignsIncreasingIDs(t *testing.T) {
	svc, repo, manuscriptID := newPublishingFixture(t)
	raw, _ := json.Marshal([]types.CoverDesign{{ID: 4, Selected: true}})
	repo.row.CoverDesigns = datatypes.JSON(raw)

	err := svc.AddCoverDesigns(context.Background(), manuscriptID, []types.CoverDesign{
		{URL: "https://cdn.example.com/a.png"},
		{URL: "https://cdn.example.com/b.png", Selected: true},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	designs, err := repo.row.DecodedCoverDesigns()
	if err != nil {
		t.Fatalf("decode designs: %v", err)
	}
	if len(designs) != 3 {
		t.Fatalf("designs: want=3 got=%d", len(designs))
	}
	if designs[1].ID != 5 || designs[2].ID != 6 {
		t.Fatalf("assigned ids: want=5,6 got=%d,%d", designs[1].ID, designs[2].ID)
	}
	// new designs never come in selected
	if designs[1].Selected || designs[2].Selected {
		t.Fatalf("new designs must not be selected")
	}
	if !designs[0].Selected {
		t.Fatalf("existing selection must be preserved")
	}
}

package services

import (
	"encoding/json"
	"testing"

	"gorm.io/datatypes"

	"github.com/storyloft/storyloft-backend/internal/types"
)

func progressWithAnswers(t *testing.T, answers types.AssessmentAnswers, assessmentDone bool) *types.PublishingProgress {
	t.Helper()
	raw, err := json.Marshal(answers)
	if err != nil {
		t.Fatalf("encode answers: %v", err)
	}
	return &types.PublishingProgress{
		CurrentStep:         types.StepAssessment,
		AssessmentCompleted: assessmentDone,
		AssessmentAnswers:   datatypes.JSON(raw),
		RowVersion:          1,
	}
}

func stepIDs(steps []StepState) []string {
	ids := make([]string, 0, len(steps))
	for _, s := range steps {
		ids = append(ids, s.ID)
	}
	return ids
}

func containsStep(steps []StepState, id string) bool {
	for _, s := range steps {
		if s.ID == id {
			return true
		}
	}
	return false
}

func TestResolveStepsBaseGraph(t *testing.T) {
	progress := &types.PublishingProgress{CurrentStep: types.StepAssessment, RowVersion: 1}

	steps, err := ResolveSteps(progress)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// no answers yet: platform-setup and isbn are both excluded
	want := []string{
		types.StepAssessment,
		types.StepCoverDesign,
		types.StepFrontMatter,
		types.StepBackMatter,
		types.StepFormatting,
		types.StepMetadata,
		types.StepPreLaunch,
	}
	got := stepIDs(steps)
	if len(got) != len(want) {
		t.Fatalf("step ids: want=%v got=%v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("step ids: want=%v got=%v", want, got)
		}
	}
}

func TestResolveStepsLocksUntilAssessmentComplete(t *testing.T) {
	progress := &types.PublishingProgress{CurrentStep: types.StepAssessment, RowVersion: 1}

	steps, err := ResolveSteps(progress)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, s := range steps {
		if s.ID == types.StepAssessment {
			if s.Locked {
				t.Fatalf("assessment must never be locked")
			}
			continue
		}
		if !s.Locked {
			t.Fatalf("step %q: want locked before assessment completes", s.ID)
		}
	}

	progress.AssessmentCompleted = true
	steps, err = ResolveSteps(progress)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, s := range steps {
		if s.Locked {
			t.Fatalf("step %q: still locked after assessment completed", s.ID)
		}
	}
}

func TestResolveStepsPlatformSetupMembership(t *testing.T) {
	cases := []struct {
		name      string
		platforms []string
		want      bool
	}{
		{"no platforms", nil, false},
		{"only unsure", []string{"unsure"}, false},
		{"one platform", []string{"amazon-kdp"}, true},
		{"unsure among others", []string{"unsure", "ingramspark"}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			progress := progressWithAnswers(t, types.AssessmentAnswers{Platforms: tc.platforms}, true)
			steps, err := ResolveSteps(progress)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := containsStep(steps, types.StepPlatformSetup); got != tc.want {
				t.Fatalf("platform-setup present: want=%v got=%v", tc.want, got)
			}
		})
	}
}

func TestResolveStepsISBNMembership(t *testing.T) {
	cases := []struct {
		goal string
		want bool
	}{
		{"self-publish-all", true},
		{"self-publish-amazon", true},
		{"hybrid", true},
		{"traditional", false},
		{"", false},
	}
	for _, tc := range cases {
		progress := progressWithAnswers(t, types.AssessmentAnswers{PublishingGoal: tc.goal}, true)
		steps, err := ResolveSteps(progress)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := containsStep(steps, types.StepISBN); got != tc.want {
			t.Fatalf("goal %q: isbn present: want=%v got=%v", tc.goal, tc.want, got)
		}
	}
}

func TestResolveStepsNilProgress(t *testing.T) {
	steps, err := ResolveSteps(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if steps != nil {
		t.Fatalf("steps: want=nil got=%v", steps)
	}
}

func TestPercentComplete(t *testing.T) {
	if got := PercentComplete(nil); got != 0 {
		t.Fatalf("empty list: want=0 got=%d", got)
	}
	steps := []StepState{
		{ID: "a", Completed: true},
		{ID: "b", Completed: true},
		{ID: "c"},
		{ID: "d"},
	}
	if got := PercentComplete(steps); got != 50 {
		t.Fatalf("half done: want=50 got=%d", got)
	}
	steps[2].Completed = true
	steps[3].Completed = true
	if got := PercentComplete(steps); got != 100 {
		t.Fatalf("all done: want=100 got=%d", got)
	}
}

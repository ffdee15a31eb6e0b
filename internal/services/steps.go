package services

import (
	"github.com/storyloft/storyloft-backend/internal/types"
)

// StepDef declares one node of the publishing workflow. Include decides
// from the assessment answers whether the step appears at all; nil means
// always. Steps appear in declaration order.
type StepDef struct {
	ID      string
	Title   string
	Include func(answers types.AssessmentAnswers) bool
}

// StepState is one resolved entry of the step list for a given progress
// row: whether the step is reachable yet, and whether it is done.
type StepState struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Locked    bool   `json:"locked"`
	Completed bool   `json:"completed"`
	Current   bool   `json:"current"`
}

// goals that put ISBN acquisition on the author rather than a publisher
var isbnGoals = map[string]bool{
	"self-publish-all":    true,
	"self-publish-amazon": true,
	"hybrid":              true,
}

func includePlatformSetup(answers types.AssessmentAnswers) bool {
	if len(answers.Platforms) == 0 {
		return false
	}
	if len(answers.Platforms) == 1 && answers.Platforms[0] == "unsure" {
		return false
	}
	return true
}

func includeISBN(answers types.AssessmentAnswers) bool {
	return isbnGoals[answers.PublishingGoal]
}

// publishingSteps is the full step graph. front-matter, back-matter and
// formatting are unordered relative to each other; the slice order is the
// presentation order only.
var publishingSteps = []StepDef{
	{ID: types.StepAssessment, Title: "Publishing Assessment"},
	{ID: types.StepCoverDesign, Title: "Cover Design"},
	{ID: types.StepFrontMatter, Title: "Front Matter"},
	{ID: types.StepBackMatter, Title: "Back Matter"},
	{ID: types.StepFormatting, Title: "Formatting"},
	{ID: types.StepPlatformSetup, Title: "Platform Setup", Include: includePlatformSetup},
	{ID: types.StepMetadata, Title: "Book Metadata"},
	{ID: types.StepISBN, Title: "ISBN", Include: includeISBN},
	{ID: types.StepPreLaunch, Title: "Pre-Launch Checklist"},
}

// ResolveSteps derives the visible step list and its lock/completion state
// purely from the progress row. Callers re-run it after every row change;
// there is no cached step state anywhere.
func ResolveSteps(progress *types.PublishingProgress) ([]StepState, error) {
	if progress == nil {
		return nil, nil
	}
	answers, err := progress.DecodedAnswers()
	if err != nil {
		return nil, err
	}
	stepData, err := progress.DecodedStepData()
	if err != nil {
		return nil, err
	}
	completedList, err := progress.DecodedCompletedSteps()
	if err != nil {
		return nil, err
	}
	completed := make(map[string]bool, len(completedList))
	for _, id := range completedList {
		completed[id] = true
	}

	states := make([]StepState, 0, len(publishingSteps))
	for _, def := range publishingSteps {
		if def.Include != nil && !def.Include(answers) {
			continue
		}
		state := StepState{
			ID:        def.ID,
			Title:     def.Title,
			Completed: completed[def.ID] || stepData[def.ID],
			Current:   progress.CurrentStep == def.ID,
		}
		if def.ID == types.StepAssessment {
			state.Completed = state.Completed || progress.AssessmentCompleted
		} else {
			// everything past the assessment stays locked until it is done
			state.Locked = !progress.AssessmentCompleted
		}
		states = append(states, state)
	}
	return states, nil
}

// PercentComplete recomputes overall progress from a resolved step list.
func PercentComplete(steps []StepState) int {
	if len(steps) == 0 {
		return 0
	}
	done := 0
	for _, s := range steps {
		if s.Completed {
			done++
		}
	}
	return done * 100 / len(steps)
}

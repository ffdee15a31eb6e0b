package handlers

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storyloft/storyloft-backend/internal/logger"
	"github.com/storyloft/storyloft-backend/internal/requestdata"
	"github.com/storyloft/storyloft-backend/internal/services"
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

type fakeManuscriptService struct {
	manuscript *types.Manuscript
}

func (f *fakeManuscriptService) CreateManuscript(ctx context.Context, authorID uuid.UUID, title, genre string, chapters []services.ChapterInput) (*types.Manuscript, error) {
	return nil, nil
}

func (f *fakeManuscriptService) GetManuscript(ctx context.Context, manuscriptID uuid.UUID) (*types.Manuscript, error) {
	if f.manuscript != nil && f.manuscript.ID == manuscriptID {
		return f.manuscript, nil
	}
	return nil, nil
}

func (f *fakeManuscriptService) GetAuthorManuscripts(ctx context.Context, authorID uuid.UUID) ([]*types.Manuscript, error) {
	return nil, nil
}

func (f *fakeManuscriptService) GetChapters(ctx context.Context, manuscriptID uuid.UUID) ([]*types.Chapter, error) {
	return nil, nil
}

func (f *fakeManuscriptService) UpdateChapterContent(ctx context.Context, chapterID uuid.UUID, title, content string) error {
	return nil
}

func (f *fakeManuscriptService) ArchiveManuscript(ctx context.Context, manuscriptID uuid.UUID) error {
	return nil
}

type fakePublishingService struct {
	assessmentCalls int
	gotAnswers      types.AssessmentAnswers
}

func (f *fakePublishingService) InitProgress(ctx context.Context, tx *gorm.DB, manuscriptID uuid.UUID) error {
	return nil
}

func (f *fakePublishingService) GetProgress(ctx context.Context, manuscriptID uuid.UUID) (*types.PublishingProgress, []services.StepState, error) {
	return nil, nil, nil
}

func (f *fakePublishingService) CompleteAssessment(ctx context.Context, manuscriptID uuid.UUID, answers types.AssessmentAnswers) error {
	f.assessmentCalls++
	f.gotAnswers = answers
	return nil
}

func (f *fakePublishingService) SelectCover(ctx context.Context, manuscriptID uuid.UUID, coverID int) (bool, error) {
	return false, nil
}

func (f *fakePublishingService) CompleteStep(ctx context.Context, manuscriptID uuid.UUID, stepID string) error {
	return nil
}

func (f *fakePublishingService) AddCoverDesigns(ctx context.Context, manuscriptID uuid.UUID, designs []types.CoverDesign) error {
	return nil
}

func newPublishingFixture(t *testing.T) (*PublishingHandler, *fakePublishingService, *types.Manuscript) {
	t.Helper()
	authorID := uuid.New()
	manuscript := &types.Manuscript{ID: uuid.New(), AuthorID: authorID}
	log := newTestLogger(t)
	manuscriptHandler := NewManuscriptHandler(log, &fakeManuscriptService{manuscript: manuscript}, nil)
	publishingService := &fakePublishingService{}
	return NewPublishingHandler(log, manuscriptHandler, publishingService), publishingService, manuscript
}

func postJSON(t *testing.T, manuscript *types.Manuscript, body string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rd := &requestdata.RequestData{AuthorID: manuscript.AuthorID, SessionID: uuid.New()}
	c.Request = req.WithContext(requestdata.WithRequestData(req.Context(), rd))
	c.Params = gin.Params{{Key: "id", Value: manuscript.ID.String()}}
	return c, w
}

func TestCompleteAssessmentCarriesAllAnswerFields(t *testing.T) {
	handler, publishingService, manuscript := newPublishingFixture(t)

	body := `{
		"publishing_goal": "self-publish-amazon",
		"platforms": ["amazon", "kobo"],
		"timeline": "3-months",
		"budget": "under-500",
		"has_isbn": true,
		"notes": "second edition"
	}`
	c, w := postJSON(t, manuscript, body)
	handler.CompleteAssessment(c)

	if w.Code != http.StatusOK {
		t.Fatalf("status: want=%d got=%d body=%s", http.StatusOK, w.Code, w.Body.String())
	}
	if publishingService.assessmentCalls != 1 {
		t.Fatalf("assessment calls: want=1 got=%d", publishingService.assessmentCalls)
	}
	want := types.AssessmentAnswers{
		PublishingGoal: "self-publish-amazon",
		Platforms:      []string{"amazon", "kobo"},
		Timeline:       "3-months",
		Budget:         "under-500",
		HasISBN:        true,
		Notes:          "second edition",
	}
	if !reflect.DeepEqual(publishingService.gotAnswers, want) {
		t.Fatalf("answers: want=%+v got=%+v", want, publishingService.gotAnswers)
	}
}

func TestCompleteAssessmentRequiresGoal(t *testing.T) {
	handler, publishingService, manuscript := newPublishingFixture(t)

	c, w := postJSON(t, manuscript, `{"platforms": ["amazon"]}`)
	handler.CompleteAssessment(c)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status: want=%d got=%d", http.StatusBadRequest, w.Code)
	}
	if publishingService.assessmentCalls != 0 {
		t.Fatalf("assessment calls: want=0 got=%d", publishingService.assessmentCalls)
	}
}

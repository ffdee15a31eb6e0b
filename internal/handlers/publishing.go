package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/storyloft/storyloft-backend/internal/logger"
	"github.com/storyloft/storyloft-backend/internal/services"
	"github.com/storyloft/storyloft-backend/internal/types"
)

type PublishingHandler struct {
	log               *logger.Logger
	manuscriptHandler *ManuscriptHandler
	publishingService services.PublishingService
}

func NewPublishingHandler(log *logger.Logger, manuscriptHandler *ManuscriptHandler, publishingService services.PublishingService) *PublishingHandler {
	return &PublishingHandler{
		log:               log.With("handler", "PublishingHandler"),
		manuscriptHandler: manuscriptHandler,
		publishingService: publishingService,
	}
}

func (h *PublishingHandler) GetProgress(c *gin.Context) {
	manuscriptID, ok := h.manuscriptHandler.requireOwnedManuscript(c)
	if !ok {
		return
	}
	progress, steps, err := h.publishingService.GetProgress(c.Request.Context(), manuscriptID)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "load_progress_failed", err)
		return
	}
	RespondOK(c, gin.H{
		"progress":         progress,
		"steps":            steps,
		"percent_complete": services.PercentComplete(steps),
	})
}

type assessmentRequest struct {
	PublishingGoal string   `json:"publishing_goal" validate:"required"`
	Platforms      []string `json:"platforms"`
	Timeline       string   `json:"timeline"`
	Budget         string   `json:"budget"`
	HasISBN        bool     `json:"has_isbn"`
	Notes          string   `json:"notes"`
}

func (req assessmentRequest) answers() types.AssessmentAnswers {
	return types.AssessmentAnswers{
		PublishingGoal: req.PublishingGoal,
		Platforms:      req.Platforms,
		Timeline:       req.Timeline,
		Budget:         req.Budget,
		HasISBN:        req.HasISBN,
		Notes:          req.Notes,
	}
}

func (h *PublishingHandler) CompleteAssessment(c *gin.Context) {
	manuscriptID, ok := h.manuscriptHandler.requireOwnedManuscript(c)
	if !ok {
		return
	}
	var req assessmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	if err := validate.Struct(req); err != nil {
		RespondError(c, http.StatusBadRequest, "validation_failed", err)
		return
	}
	if err := h.publishingService.CompleteAssessment(c.Request.Context(), manuscriptID, req.answers()); err != nil {
		h.respondProgressError(c, "assessment_failed", err)
		return
	}
	RespondOK(c, gin.H{"message": "assessment recorded"})
}

type selectCoverRequest struct {
	CoverID int `json:"cover_id" validate:"required,min=1"`
}

func (h *PublishingHandler) SelectCover(c *gin.Context) {
	manuscriptID, ok := h.manuscriptHandler.requireOwnedManuscript(c)
	if !ok {
		return
	}
	var req selectCoverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	if err := validate.Struct(req); err != nil {
		RespondError(c, http.StatusBadRequest, "validation_failed", err)
		return
	}
	found, err := h.publishingService.SelectCover(c.Request.Context(), manuscriptID, req.CoverID)
	if err != nil {
		h.respondProgressError(c, "select_cover_failed", err)
		return
	}
	if !found {
		RespondError(c, http.StatusNotFound, "cover_not_found", nil)
		return
	}
	RespondOK(c, gin.H{"message": "cover selected"})
}

type completeStepRequest struct {
	StepID string `json:"step_id" validate:"required"`
}

func (h *PublishingHandler) CompleteStep(c *gin.Context) {
	manuscriptID, ok := h.manuscriptHandler.requireOwnedManuscript(c)
	if !ok {
		return
	}
	var req completeStepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	if err := validate.Struct(req); err != nil {
		RespondError(c, http.StatusBadRequest, "validation_failed", err)
		return
	}
	if err := h.publishingService.CompleteStep(c.Request.Context(), manuscriptID, req.StepID); err != nil {
		h.respondProgressError(c, "complete_step_failed", err)
		return
	}
	RespondOK(c, gin.H{"message": "step completed"})
}

type coverDesignInput struct {
	URL    string `json:"url" validate:"required,url"`
	Prompt string `json:"prompt"`
}

type addCoverDesignsRequest struct {
	Designs []coverDesignInput `json:"designs" validate:"required,min=1,dive"`
}

func (h *PublishingHandler) AddCoverDesigns(c *gin.Context) {
	manuscriptID, ok := h.manuscriptHandler.requireOwnedManuscript(c)
	if !ok {
		return
	}
	var req addCoverDesignsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	if err := validate.Struct(req); err != nil {
		RespondError(c, http.StatusBadRequest, "validation_failed", err)
		return
	}
	designs := make([]types.CoverDesign, 0, len(req.Designs))
	for _, d := range req.Designs {
		designs = append(designs, types.CoverDesign{URL: d.URL, Prompt: d.Prompt})
	}
	if err := h.publishingService.AddCoverDesigns(c.Request.Context(), manuscriptID, designs); err != nil {
		h.respondProgressError(c, "add_covers_failed", err)
		return
	}
	RespondOK(c, gin.H{"message": "cover designs added"})
}

// Concurrent edits surface as a retryable 409 rather than a 500.
func (h *PublishingHandler) respondProgressError(c *gin.Context, code string, err error) {
	if errors.Is(err, services.ErrProgressConflict) {
		RespondError(c, http.StatusConflict, "progress_conflict", err)
		return
	}
	RespondError(c, http.StatusInternalServerError, code, err)
}

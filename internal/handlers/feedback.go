package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/storyloft/storyloft-backend/internal/logger"
	"github.com/storyloft/storyloft-backend/internal/requestdata"
	"github.com/storyloft/storyloft-backend/internal/services"
	"github.com/storyloft/storyloft-backend/internal/types"
)

type FeedbackHandler struct {
	log             *logger.Logger
	feedbackService services.FeedbackService
}

func NewFeedbackHandler(log *logger.Logger, feedbackService services.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{
		log:             log.With("handler", "FeedbackHandler"),
		feedbackService: feedbackService,
	}
}

type submitFeedbackRequest struct {
	Category     string `json:"category" validate:"required"`
	Message      string `json:"message" validate:"required"`
	PageContext  string `json:"page_context"`
	ManuscriptID string `json:"manuscript_id"`
}

func (h *FeedbackHandler) Submit(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.AuthorID == uuid.Nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	var req submitFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	if err := validate.Struct(req); err != nil {
		RespondError(c, http.StatusBadRequest, "validation_failed", err)
		return
	}
	row := &types.BetaFeedback{
		AuthorID:    rd.AuthorID,
		Category:    req.Category,
		Message:     req.Message,
		PageContext: req.PageContext,
	}
	if req.ManuscriptID != "" {
		id, err := uuid.Parse(req.ManuscriptID)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "invalid_manuscript_id", err)
			return
		}
		row.ManuscriptID = &id
	}
	if err := h.feedbackService.SubmitFeedback(c.Request.Context(), row); err != nil {
		RespondError(c, http.StatusInternalServerError, "submit_feedback_failed", err)
		return
	}
	RespondOK(c, gin.H{"feedback": row})
}

func (h *FeedbackHandler) List(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.AuthorID == uuid.Nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	rows, err := h.feedbackService.GetAuthorFeedback(c.Request.Context(), rd.AuthorID)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "load_feedback_failed", err)
		return
	}
	RespondOK(c, gin.H{"feedback": rows})
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/storyloft/storyloft-backend/internal/logger"
	"github.com/storyloft/storyloft-backend/internal/services"
)

type ChapterHandler struct {
	log               *logger.Logger
	manuscriptHandler *ManuscriptHandler
	manuscriptService services.ManuscriptService
	phaseService      services.PhaseService
}

func NewChapterHandler(log *logger.Logger, manuscriptHandler *ManuscriptHandler, manuscriptService services.ManuscriptService, phaseService services.PhaseService) *ChapterHandler {
	return &ChapterHandler{
		log:               log.With("handler", "ChapterHandler"),
		manuscriptHandler: manuscriptHandler,
		manuscriptService: manuscriptService,
		phaseService:      phaseService,
	}
}

func (h *ChapterHandler) List(c *gin.Context) {
	manuscriptID, ok := h.manuscriptHandler.requireOwnedManuscript(c)
	if !ok {
		return
	}
	chapters, err := h.manuscriptService.GetChapters(c.Request.Context(), manuscriptID)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "load_chapters_failed", err)
		return
	}
	RespondOK(c, gin.H{"chapters": chapters})
}

type updateChapterRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

func (h *ChapterHandler) UpdateContent(c *gin.Context) {
	if _, ok := h.manuscriptHandler.requireOwnedManuscript(c); !ok {
		return
	}
	chapterID, err := uuid.Parse(c.Param("chapterId"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_chapter_id", err)
		return
	}
	var req updateChapterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	if err := h.manuscriptService.UpdateChapterContent(c.Request.Context(), chapterID, req.Title, req.Content); err != nil {
		RespondError(c, http.StatusInternalServerError, "update_chapter_failed", err)
		return
	}
	RespondOK(c, gin.H{"message": "chapter updated"})
}

type approveChapterRequest struct {
	Phase int `json:"phase" validate:"required,min=1,max=3"`
}

func (h *ChapterHandler) Approve(c *gin.Context) {
	if _, ok := h.manuscriptHandler.requireOwnedManuscript(c); !ok {
		return
	}
	chapterID, err := uuid.Parse(c.Param("chapterId"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_chapter_id", err)
		return
	}
	var req approveChapterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	if err := validate.Struct(req); err != nil {
		RespondError(c, http.StatusBadRequest, "validation_failed", err)
		return
	}
	if err := h.phaseService.ApproveChapter(c.Request.Context(), chapterID, req.Phase); err != nil {
		RespondError(c, http.StatusInternalServerError, "approve_chapter_failed", err)
		return
	}
	RespondOK(c, gin.H{"message": "chapter approved"})
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/storyloft/storyloft-backend/internal/logger"
	"github.com/storyloft/storyloft-backend/internal/requestdata"
	"github.com/storyloft/storyloft-backend/internal/services"
)

type ManuscriptHandler struct {
	log               *logger.Logger
	manuscriptService services.ManuscriptService
	snapshotService   services.SnapshotService
}

func NewManuscriptHandler(log *logger.Logger, manuscriptService services.ManuscriptService, snapshotService services.SnapshotService) *ManuscriptHandler {
	return &ManuscriptHandler{
		log:               log.With("handler", "ManuscriptHandler"),
		manuscriptService: manuscriptService,
		snapshotService:   snapshotService,
	}
}

// requireOwnedManuscript resolves the :id param and checks ownership
// against the signed-in author. Admins bypass the ownership check.
func (h *ManuscriptHandler) requireOwnedManuscript(c *gin.Context) (uuid.UUID, bool) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.AuthorID == uuid.Nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return uuid.Nil, false
	}
	manuscriptID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_manuscript_id", err)
		return uuid.Nil, false
	}
	manuscript, err := h.manuscriptService.GetManuscript(c.Request.Context(), manuscriptID)
	if err != nil {
		h.log.Error("Manuscript lookup failed", "error", err, "manuscript_id", manuscriptID)
		RespondError(c, http.StatusInternalServerError, "load_manuscript_failed", err)
		return uuid.Nil, false
	}
	if manuscript == nil {
		RespondError(c, http.StatusNotFound, "manuscript_not_found", nil)
		return uuid.Nil, false
	}
	isAdmin := rd.Role == "admin" || rd.Role == "super_admin"
	if manuscript.AuthorID != rd.AuthorID && !isAdmin {
		RespondError(c, http.StatusForbidden, "not_owner", nil)
		return uuid.Nil, false
	}
	return manuscriptID, true
}

type createManuscriptRequest struct {
	Title    string                   `json:"title" validate:"required"`
	Genre    string                   `json:"genre"`
	Chapters []services.ChapterInput `json:"chapters"`
}

func (h *ManuscriptHandler) Create(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.AuthorID == uuid.Nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	var req createManuscriptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	if err := validate.Struct(req); err != nil {
		RespondError(c, http.StatusBadRequest, "validation_failed", err)
		return
	}
	manuscript, err := h.manuscriptService.CreateManuscript(c.Request.Context(), rd.AuthorID, req.Title, req.Genre, req.Chapters)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "create_manuscript_failed", err)
		return
	}
	RespondOK(c, gin.H{"manuscript": manuscript})
}

func (h *ManuscriptHandler) List(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.AuthorID == uuid.Nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	manuscripts, err := h.manuscriptService.GetAuthorManuscripts(c.Request.Context(), rd.AuthorID)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "load_manuscripts_failed", err)
		return
	}
	RespondOK(c, gin.H{"manuscripts": manuscripts})
}

func (h *ManuscriptHandler) Get(c *gin.Context) {
	manuscriptID, ok := h.requireOwnedManuscript(c)
	if !ok {
		return
	}
	manuscript, err := h.manuscriptService.GetManuscript(c.Request.Context(), manuscriptID)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "load_manuscript_failed", err)
		return
	}
	RespondOK(c, gin.H{"manuscript": manuscript})
}

func (h *ManuscriptHandler) Archive(c *gin.Context) {
	manuscriptID, ok := h.requireOwnedManuscript(c)
	if !ok {
		return
	}
	if err := h.manuscriptService.ArchiveManuscript(c.Request.Context(), manuscriptID); err != nil {
		RespondError(c, http.StatusInternalServerError, "archive_failed", err)
		return
	}
	RespondOK(c, gin.H{"message": "manuscript archived"})
}

func (h *ManuscriptHandler) ListVersions(c *gin.Context) {
	manuscriptID, ok := h.requireOwnedManuscript(c)
	if !ok {
		return
	}
	versions, err := h.snapshotService.GetVersions(c.Request.Context(), manuscriptID)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "load_versions_failed", err)
		return
	}
	RespondOK(c, gin.H{"versions": versions})
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/storyloft/storyloft-backend/internal/logger"
	"github.com/storyloft/storyloft-backend/internal/services"
)

type PhaseHandler struct {
	log               *logger.Logger
	manuscriptHandler *ManuscriptHandler
	phaseService      services.PhaseService
	snapshotService   services.SnapshotService
}

func NewPhaseHandler(log *logger.Logger, manuscriptHandler *ManuscriptHandler, phaseService services.PhaseService, snapshotService services.SnapshotService) *PhaseHandler {
	return &PhaseHandler{
		log:               log.With("handler", "PhaseHandler"),
		manuscriptHandler: manuscriptHandler,
		phaseService:      phaseService,
		snapshotService:   snapshotService,
	}
}

func (h *PhaseHandler) List(c *gin.Context) {
	manuscriptID, ok := h.manuscriptHandler.requireOwnedManuscript(c)
	if !ok {
		return
	}
	phases, err := h.phaseService.GetPhases(c.Request.Context(), manuscriptID)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "load_phases_failed", err)
		return
	}
	RespondOK(c, gin.H{"phases": phases})
}

type transitionRequest struct {
	CurrentPhase int `json:"current_phase" validate:"required,min=1,max=5"`
}

func (h *PhaseHandler) Transition(c *gin.Context) {
	manuscriptID, ok := h.manuscriptHandler.requireOwnedManuscript(c)
	if !ok {
		return
	}
	var req transitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	if err := validate.Struct(req); err != nil {
		RespondError(c, http.StatusBadRequest, "validation_failed", err)
		return
	}
	advanced, err := h.phaseService.TransitionToNextPhase(c.Request.Context(), manuscriptID, req.CurrentPhase)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "phase_transition_failed", err)
		return
	}
	if !advanced {
		RespondError(c, http.StatusConflict, "phase_not_ready", nil)
		return
	}
	RespondOK(c, gin.H{"advanced": true})
}

type snapshotRequest struct {
	PhaseNumber int    `json:"phase_number" validate:"required,min=1,max=5"`
	EditorName  string `json:"editor_name"`
}

func (h *PhaseHandler) CreateSnapshot(c *gin.Context) {
	manuscriptID, ok := h.manuscriptHandler.requireOwnedManuscript(c)
	if !ok {
		return
	}
	var req snapshotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	if err := validate.Struct(req); err != nil {
		RespondError(c, http.StatusBadRequest, "validation_failed", err)
		return
	}
	created, err := h.snapshotService.CreateApprovedSnapshot(c.Request.Context(), manuscriptID, req.PhaseNumber, req.EditorName)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "snapshot_failed", err)
		return
	}
	RespondOK(c, gin.H{"created": created})
}

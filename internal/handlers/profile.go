package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/storyloft/storyloft-backend/internal/logger"
	"github.com/storyloft/storyloft-backend/internal/requestdata"
	"github.com/storyloft/storyloft-backend/internal/services"
)

type ProfileHandler struct {
	log            *logger.Logger
	profileService services.ProfileService
	accessService  services.AccessService
}

func NewProfileHandler(log *logger.Logger, profileService services.ProfileService, accessService services.AccessService) *ProfileHandler {
	return &ProfileHandler{
		log:            log.With("handler", "ProfileHandler"),
		profileService: profileService,
		accessService:  accessService,
	}
}

func (h *ProfileHandler) GetMe(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.AuthorID == uuid.Nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	profile, err := h.profileService.GetProfile(c.Request.Context(), rd.AuthorID)
	if err != nil {
		h.log.Error("GetMe failed", "error", err, "author_id", rd.AuthorID)
		RespondError(c, http.StatusInternalServerError, "load_profile_failed", err)
		return
	}
	RespondOK(c, gin.H{"profile": profile})
}

func (h *ProfileHandler) GetAccess(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.AuthorID == uuid.Nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	access, err := h.accessService.ResolveAccess(c.Request.Context(), rd.AuthorID)
	if err != nil {
		h.log.Error("GetAccess failed", "error", err, "author_id", rd.AuthorID)
		RespondError(c, http.StatusInternalServerError, "resolve_access_failed", err)
		return
	}
	RespondOK(c, gin.H{"access": access})
}

type updateProfileRequest struct {
	FirstName          *string `json:"first_name"`
	LastName           *string `json:"last_name"`
	PenName            *string `json:"pen_name"`
	Phone              *string `json:"phone"`
	OnboardingComplete *bool   `json:"onboarding_complete"`
}

func (h *ProfileHandler) UpdateMe(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.AuthorID == uuid.Nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	update := services.ProfileUpdate{
		FirstName:          req.FirstName,
		LastName:           req.LastName,
		PenName:            req.PenName,
		Phone:              req.Phone,
		OnboardingComplete: req.OnboardingComplete,
	}
	if err := h.profileService.UpdateProfile(c.Request.Context(), rd.AuthorID, update); err != nil {
		h.log.Error("UpdateMe failed", "error", err, "author_id", rd.AuthorID)
		RespondError(c, http.StatusInternalServerError, "update_profile_failed", err)
		return
	}
	RespondOK(c, gin.H{"message": "profile updated"})
}

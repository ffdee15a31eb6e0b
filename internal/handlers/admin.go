package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/storyloft/storyloft-backend/internal/logger"
	"github.com/storyloft/storyloft-backend/internal/requestdata"
	"github.com/storyloft/storyloft-backend/internal/services"
)

type AdminHandler struct {
	log          *logger.Logger
	adminService services.AdminService
}

func NewAdminHandler(log *logger.Logger, adminService services.AdminService) *AdminHandler {
	return &AdminHandler{
		log:          log.With("handler", "AdminHandler"),
		adminService: adminService,
	}
}

type createUserRequest struct {
	Email        string `json:"email" validate:"required,email"`
	TempPassword string `json:"temp_password" validate:"required,min=8"`
	FirstName    string `json:"first_name" validate:"required"`
	LastName     string `json:"last_name" validate:"required"`
	IsBetaTester bool   `json:"is_beta_tester"`
}

func (h *AdminHandler) CreateUser(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	if err := validate.Struct(req); err != nil {
		RespondError(c, http.StatusBadRequest, "validation_failed", err)
		return
	}
	profile, err := h.adminService.CreateUser(c.Request.Context(), rd.AuthorID, services.CreateUserInput{
		Email:        req.Email,
		TempPassword: req.TempPassword,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		IsBetaTester: req.IsBetaTester,
	})
	if err != nil {
		if errors.Is(err, services.ErrNotAdmin) {
			RespondError(c, http.StatusForbidden, "forbidden", err)
			return
		}
		RespondError(c, http.StatusInternalServerError, "create_user_failed", err)
		return
	}
	RespondOK(c, gin.H{"profile": profile})
}

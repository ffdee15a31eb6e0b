package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/storyloft/storyloft-backend/internal/logger"
	"github.com/storyloft/storyloft-backend/internal/requestdata"
	"github.com/storyloft/storyloft-backend/internal/services"
	"github.com/storyloft/storyloft-backend/internal/types"
)

type CheckoutHandler struct {
	log               *logger.Logger
	manuscriptHandler *ManuscriptHandler
	checkoutService   services.CheckoutService
}

func NewCheckoutHandler(log *logger.Logger, manuscriptHandler *ManuscriptHandler, checkoutService services.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{
		log:               log.With("handler", "CheckoutHandler"),
		manuscriptHandler: manuscriptHandler,
		checkoutService:   checkoutService,
	}
}

type createCheckoutRequest struct {
	Package string `json:"package" validate:"required"`
}

func (h *CheckoutHandler) CreateSession(c *gin.Context) {
	manuscriptID, ok := h.manuscriptHandler.requireOwnedManuscript(c)
	if !ok {
		return
	}
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	var req createCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	if !types.ValidPackage(req.Package) {
		RespondError(c, http.StatusBadRequest, "invalid_package", nil)
		return
	}
	session, err := h.checkoutService.CreateCheckoutSession(c.Request.Context(), rd.AuthorID, manuscriptID, req.Package)
	if err != nil {
		RespondError(c, http.StatusBadGateway, "checkout_session_failed", err)
		return
	}
	RespondOK(c, session)
}

// Webhook is unauthenticated; the signature header is the only trust
// anchor, so the raw body must be verified before any parsing.
func (h *CheckoutHandler) Webhook(c *gin.Context) {
	payload, err := c.GetRawData()
	if err != nil {
		RespondError(c, http.StatusBadRequest, "read_body_failed", err)
		return
	}
	signature := c.GetHeader("Stripe-Signature")
	if err := h.checkoutService.HandleWebhook(c.Request.Context(), payload, signature); err != nil {
		h.log.Warn("webhook rejected", "error", err)
		RespondError(c, http.StatusBadRequest, "webhook_rejected", err)
		return
	}
	RespondOK(c, gin.H{"received": true})
}

package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/storyloft/storyloft-backend/internal/logger"
	"github.com/storyloft/storyloft-backend/internal/services"
)

// 50 MB, matches the frontend upload cap.
const maxUploadBytes = 50 << 20

type WordCountHandler struct {
	log    *logger.Logger
	client services.WordCountClient
}

func NewWordCountHandler(log *logger.Logger, client services.WordCountClient) *WordCountHandler {
	return &WordCountHandler{
		log:    log.With("handler", "WordCountHandler"),
		client: client,
	}
}

func (h *WordCountHandler) Analyze(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "missing_file", err)
		return
	}
	if fileHeader.Size > maxUploadBytes {
		RespondError(c, http.StatusRequestEntityTooLarge, "file_too_large", nil)
		return
	}
	phaseType := c.PostForm("phaseType")

	file, err := fileHeader.Open()
	if err != nil {
		RespondError(c, http.StatusBadRequest, "open_file_failed", err)
		return
	}
	defer file.Close()
	pdf, err := io.ReadAll(file)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "read_file_failed", err)
		return
	}

	result, err := h.client.Extract(c.Request.Context(), fileHeader.Filename, pdf, phaseType)
	if err != nil {
		// The analyzer being down should never block an upload flow.
		h.log.Warn("Word count extraction failed, using size estimate", "error", err)
		result = services.FallbackEstimate(int(fileHeader.Size))
	}
	RespondOK(c, result)
}

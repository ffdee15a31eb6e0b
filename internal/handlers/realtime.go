package handlers

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/storyloft/storyloft-backend/internal/logger"
	"github.com/storyloft/storyloft-backend/internal/requestdata"
	"github.com/storyloft/storyloft-backend/internal/services"
	"github.com/storyloft/storyloft-backend/internal/sse"
)

type RealtimeHandler struct {
	log *logger.Logger
	hub *sse.SSEHub

	mu      sync.RWMutex
	clients map[uuid.UUID]*sse.SSEClient // keyed by SessionID, one stream per session
}

func NewRealtimeHandler(log *logger.Logger, hub *sse.SSEHub) *RealtimeHandler {
	return &RealtimeHandler{
		log:     log.With("handler", "RealtimeHandler"),
		hub:     hub,
		clients: make(map[uuid.UUID]*sse.SSEClient),
	}
}

func (h *RealtimeHandler) SSEStream(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.AuthorID == uuid.Nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	sessionID := rd.SessionID
	if sessionID == uuid.Nil {
		RespondError(c, http.StatusUnauthorized, "missing_session", nil)
		return
	}
	h.log.Info("SSE stream open", "author_id", rd.AuthorID, "session_id", sessionID)

	h.mu.Lock()
	// A reconnecting session replaces its previous stream.
	if existing, ok := h.clients[sessionID]; ok {
		h.hub.CloseClient(existing)
	}
	client := h.hub.NewSSEClient(rd.AuthorID)
	h.clients[sessionID] = client
	h.mu.Unlock()

	// Every session listens on the author's own channel; manuscript
	// channels are opt-in via Subscribe.
	h.hub.AddChannel(client, rd.AuthorID.String())

	h.hub.ServeHTTP(c.Writer, c.Request, client)

	// The session may already have been taken over by a newer stream;
	// only unregister if the map still points at this client.
	h.mu.Lock()
	if h.clients[sessionID] == client {
		delete(h.clients, sessionID)
	}
	h.mu.Unlock()
	h.hub.CloseClient(client)
}

type channelRequest struct {
	Channel      string `json:"channel"`
	ManuscriptID string `json:"manuscript_id"`
}

// resolveChannel accepts either an explicit channel name or a manuscript
// id to derive one from.
func (req *channelRequest) resolveChannel() string {
	if req.Channel != "" {
		return req.Channel
	}
	if id, err := uuid.Parse(req.ManuscriptID); err == nil {
		return services.ManuscriptChannel(id)
	}
	return ""
}

func (h *RealtimeHandler) SSESubscribe(c *gin.Context) {
	client, ok := h.sessionClient(c)
	if !ok {
		return
	}
	var req channelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	channel := req.resolveChannel()
	if channel == "" {
		RespondError(c, http.StatusBadRequest, "invalid_channel", nil)
		return
	}
	h.hub.AddChannel(client, channel)
	RespondOK(c, gin.H{"message": "subscribed", "channel": channel})
}

func (h *RealtimeHandler) SSEUnsubscribe(c *gin.Context) {
	client, ok := h.sessionClient(c)
	if !ok {
		return
	}
	var req channelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	channel := req.resolveChannel()
	if channel == "" {
		RespondError(c, http.StatusBadRequest, "invalid_channel", nil)
		return
	}
	h.hub.RemoveChannel(client, channel)
	RespondOK(c, gin.H{"message": "unsubscribed", "channel": channel})
}

func (h *RealtimeHandler) sessionClient(c *gin.Context) (*sse.SSEClient, bool) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.AuthorID == uuid.Nil || rd.SessionID == uuid.Nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return nil, false
	}
	h.mu.RLock()
	client, exists := h.clients[rd.SessionID]
	h.mu.RUnlock()
	if !exists {
		RespondError(c, http.StatusConflict, "no_active_stream", nil)
		return nil, false
	}
	return client, true
}

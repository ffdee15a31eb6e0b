package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/storyloft/storyloft-backend/internal/requestdata"
	"github.com/storyloft/storyloft-backend/internal/sse"
)

func newRealtimeFixture(t *testing.T) *RealtimeHandler {
	t.Helper()
	log := newTestLogger(t)
	return NewRealtimeHandler(log, sse.NewSSEHub(log))
}

func streamContext(t *testing.T, authorID, sessionID uuid.UUID) (*gin.Context, context.CancelFunc) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	ctx, cancel := context.WithCancel(context.Background())
	ctx = requestdata.WithRequestData(ctx, &requestdata.RequestData{AuthorID: authorID, SessionID: sessionID})
	req := httptest.NewRequest(http.MethodGet, "/api/sse/stream", nil)
	c.Request = req.WithContext(ctx)
	return c, cancel
}

func registeredClient(h *RealtimeHandler, sessionID uuid.UUID) *sse.SSEClient {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.clients[sessionID]
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

// A session reconnecting mid-stream must shut down its old stream without
// panicking and leave the new stream registered for subscribe calls.
func TestSSEStreamReconnectReplacesOldStream(t *testing.T) {
	h := newRealtimeFixture(t)
	authorID := uuid.New()
	sessionID := uuid.New()

	c1, cancel1 := streamContext(t, authorID, sessionID)
	defer cancel1()
	done1 := make(chan struct{})
	go func() { h.SSEStream(c1); close(done1) }()

	var first *sse.SSEClient
	waitFor(t, "first stream to register", func() bool {
		first = registeredClient(h, sessionID)
		return first != nil
	})

	c2, cancel2 := streamContext(t, authorID, sessionID)
	done2 := make(chan struct{})
	go func() { h.SSEStream(c2); close(done2) }()

	select {
	case <-done1:
	case <-time.After(2 * time.Second):
		t.Fatal("first stream did not shut down on reconnect")
	}

	second := registeredClient(h, sessionID)
	if second == nil {
		t.Fatal("reconnect left the session without a registered stream")
	}
	if second == first {
		t.Fatal("reconnect did not replace the old stream's client")
	}

	cancel2()
	select {
	case <-done2:
	case <-time.After(2 * time.Second):
		t.Fatal("second stream did not shut down on context cancel")
	}
	if registeredClient(h, sessionID) != nil {
		t.Fatal("session still registered after its stream ended")
	}
}

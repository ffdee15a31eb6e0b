package ssedata

import (
	"context"

	"github.com/storyloft/storyloft-backend/internal/sse"
)

type key struct{}

var sseDataKey key

// SSEData queues realtime messages produced while handling a request so
// they can be published after the surrounding transaction commits.
type SSEData struct {
	Messages []sse.SSEMessage
}

func WithSSEData(ctx context.Context) context.Context {
	data := &SSEData{
		Messages: make([]sse.SSEMessage, 0),
	}
	return context.WithValue(ctx, sseDataKey, data)
}

func GetSSEData(ctx context.Context) *SSEData {
	val := ctx.Value(sseDataKey)
	ssd, ok := val.(*SSEData)
	if !ok {
		return nil
	}
	return ssd
}

func (d *SSEData) AppendMessage(msg sse.SSEMessage) {
	d.Messages = append(d.Messages, msg)
}

// Drain returns the queued messages and empties the queue.
func (d *SSEData) Drain() []sse.SSEMessage {
	msgs := d.Messages
	d.Messages = nil
	return msgs
}

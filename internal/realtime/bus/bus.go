package bus

import (
	"context"

	"github.com/storyloft/storyloft-backend/internal/sse"
)

// Bus decouples realtime producers from the connected-client fan-out so
// every running instance delivers the same row updates.
type Bus interface {
	Publish(ctx context.Context, msg sse.SSEMessage) error
	StartForwarder(ctx context.Context, onMsg func(m sse.SSEMessage)) error
	Close() error
}

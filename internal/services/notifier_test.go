package services

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/storyloft/storyloft-backend/internal/sse"
	"github.com/storyloft/storyloft-backend/internal/ssedata"
	"github.com/storyloft/storyloft-backend/internal/types"
)

type recordingEmitter struct {
	msgs []sse.SSEMessage
}

func (e *recordingEmitter) Emit(ctx context.Context, msg sse.SSEMessage) {
	e.msgs = append(e.msgs, msg)
}

func TestNotifierQueuesOnRequestBuffer(t *testing.T) {
	emitter := &recordingEmitter{}
	notifier := NewProgressNotifier(emitter)
	ctx := ssedata.WithSSEData(context.Background())

	progress := &types.PublishingProgress{ManuscriptID: uuid.New(), RowVersion: 3}
	notifier.PublishingUpdated(ctx, progress, sse.SSEEventPublishingUpdated)

	if len(emitter.msgs) != 0 {
		t.Fatalf("emitted before drain: want=0 got=%d", len(emitter.msgs))
	}
	queued := ssedata.GetSSEData(ctx).Drain()
	if len(queued) != 1 {
		t.Fatalf("queued messages: want=1 got=%d", len(queued))
	}
	if queued[0].Channel != ManuscriptChannel(progress.ManuscriptID) {
		t.Fatalf("channel: want=%s got=%s", ManuscriptChannel(progress.ManuscriptID), queued[0].Channel)
	}
	if queued[0].Version != 3 {
		t.Fatalf("version: want=3 got=%d", queued[0].Version)
	}
	if left := ssedata.GetSSEData(ctx).Drain(); len(left) != 0 {
		t.Fatalf("drain did not clear the queue: got=%d", len(left))
	}
}

func TestNotifierEmitsDirectlyWithoutBuffer(t *testing.T) {
	emitter := &recordingEmitter{}
	notifier := NewProgressNotifier(emitter)
	authorID := uuid.New()

	notifier.PurchaseCompleted(context.Background(), authorID, &types.UserPurchase{AuthorID: authorID})

	if len(emitter.msgs) != 1 {
		t.Fatalf("emitted messages: want=1 got=%d", len(emitter.msgs))
	}
	if emitter.msgs[0].Channel != authorID.String() {
		t.Fatalf("channel: want=%s got=%s", authorID, emitter.msgs[0].Channel)
	}
}

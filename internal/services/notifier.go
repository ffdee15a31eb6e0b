package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/storyloft/storyloft-backend/internal/sse"
	"github.com/storyloft/storyloft-backend/internal/ssedata"
	"github.com/storyloft/storyloft-backend/internal/types"
)

// ManuscriptChannel is the realtime channel carrying every row update for
// one manuscript. Consumers replace local state with each delivered row
// image wholesale and re-derive any computed view from it.
func ManuscriptChannel(manuscriptID uuid.UUID) string {
	return "manuscript:" + manuscriptID.String()
}

// ProgressNotifier pushes full row images to connected clients whenever a
// workflow record changes, whether the change came from a user action or a
// webhook-driven background job.
type ProgressNotifier interface {
	PublishingUpdated(ctx context.Context, progress *types.PublishingProgress, event sse.SSEEvent)
	PhasesUpdated(ctx context.Context, manuscriptID uuid.UUID, phases []*types.EditingPhase)
	SnapshotCreated(ctx context.Context, manuscriptID uuid.UUID, version *types.ManuscriptVersion)
	PurchaseCompleted(ctx context.Context, authorID uuid.UUID, purchase *types.UserPurchase)
}

type progressNotifier struct {
	emit SSEEmitter
}

func NewProgressNotifier(emit SSEEmitter) ProgressNotifier {
	return &progressNotifier{emit: emit}
}

// send queues onto the request's message buffer when one is present, so
// deliveries only go out once the whole request has finished its writes.
// Contexts without a buffer (webhooks, background work) emit directly.
func (n *progressNotifier) send(ctx context.Context, msg sse.SSEMessage) {
	if d := ssedata.GetSSEData(ctx); d != nil {
		d.AppendMessage(msg)
		return
	}
	n.emit.Emit(ctx, msg)
}

func (n *progressNotifier) PublishingUpdated(ctx context.Context, progress *types.PublishingProgress, event sse.SSEEvent) {
	if n == nil || n.emit == nil || progress == nil {
		return
	}
	n.send(ctx, sse.SSEMessage{
		Channel: ManuscriptChannel(progress.ManuscriptID),
		Event:   event,
		Version: progress.RowVersion,
		Data:    map[string]any{"publishing_progress": progress},
	})
}

func (n *progressNotifier) PhasesUpdated(ctx context.Context, manuscriptID uuid.UUID, phases []*types.EditingPhase) {
	if n == nil || n.emit == nil || manuscriptID == uuid.Nil {
		return
	}
	n.send(ctx, sse.SSEMessage{
		Channel: ManuscriptChannel(manuscriptID),
		Event:   sse.SSEEventPhaseAdvanced,
		Data:    map[string]any{"editing_phases": phases},
	})
}

func (n *progressNotifier) SnapshotCreated(ctx context.Context, manuscriptID uuid.UUID, version *types.ManuscriptVersion) {
	if n == nil || n.emit == nil || manuscriptID == uuid.Nil {
		return
	}
	n.send(ctx, sse.SSEMessage{
		Channel: ManuscriptChannel(manuscriptID),
		Event:   sse.SSEEventSnapshotCreated,
		Data:    map[string]any{"version": version},
	})
}

func (n *progressNotifier) PurchaseCompleted(ctx context.Context, authorID uuid.UUID, purchase *types.UserPurchase) {
	if n == nil || n.emit == nil || authorID == uuid.Nil {
		return
	}
	n.send(ctx, sse.SSEMessage{
		Channel: authorID.String(),
		Event:   sse.SSEEventPurchaseCompleted,
		Data:    map[string]any{"purchase": purchase},
	})
}

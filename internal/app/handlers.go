package app

import (
	"github.com/storyloft/storyloft-backend/internal/handlers"
	"github.com/storyloft/storyloft-backend/internal/logger"
	"github.com/storyloft/storyloft-backend/internal/sse"
)

type Handlers struct {
	Auth       *handlers.AuthHandler
	Profile    *handlers.ProfileHandler
	Manuscript *handlers.ManuscriptHandler
	Chapter    *handlers.ChapterHandler
	Phase      *handlers.PhaseHandler
	Publishing *handlers.PublishingHandler
	Checkout   *handlers.CheckoutHandler
	WordCount  *handlers.WordCountHandler
	Realtime   *handlers.RealtimeHandler
	Admin      *handlers.AdminHandler
	Feedback   *handlers.FeedbackHandler
}

func wireHandlers(log *logger.Logger, s Services, hub *sse.SSEHub) Handlers {
	log.Info("Wiring handlers...")
	manuscriptHandler := handlers.NewManuscriptHandler(log, s.Manuscript, s.Snapshot)
	return Handlers{
		Auth:       handlers.NewAuthHandler(s.Auth),
		Profile:    handlers.NewProfileHandler(log, s.Profile, s.Access),
		Manuscript: manuscriptHandler,
		Chapter:    handlers.NewChapterHandler(log, manuscriptHandler, s.Manuscript, s.Phase),
		Phase:      handlers.NewPhaseHandler(log, manuscriptHandler, s.Phase, s.Snapshot),
		Publishing: handlers.NewPublishingHandler(log, manuscriptHandler, s.Publishing),
		Checkout:   handlers.NewCheckoutHandler(log, manuscriptHandler, s.Checkout),
		WordCount:  handlers.NewWordCountHandler(log, s.WordCount),
		Realtime:   handlers.NewRealtimeHandler(log, hub),
		Admin:      handlers.NewAdminHandler(log, s.Admin),
		Feedback:   handlers.NewFeedbackHandler(log, s.Feedback),
	}
}

package app

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/storyloft/storyloft-backend/internal/logger"
	"github.com/storyloft/storyloft-backend/internal/realtime/bus"
	"github.com/storyloft/storyloft-backend/internal/services"
	"github.com/storyloft/storyloft-backend/internal/sse"
)

type Services struct {
	Auth       services.AuthService
	Profile    services.ProfileService
	Access     services.AccessService
	Manuscript services.ManuscriptService
	Phase      services.PhaseService
	Snapshot   services.SnapshotService
	Publishing services.PublishingService
	Checkout   services.CheckoutService
	Admin      services.AdminService
	Feedback   services.FeedbackService
	WordCount  services.WordCountClient
	Notifier   services.ProgressNotifier
	Emitter    services.SSEEmitter
	Bus        bus.Bus
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, r Repos, hub *sse.SSEHub) (Services, error) {
	log.Info("Wiring services...")

	// With Redis configured, updates go through pub/sub so every
	// instance's hub sees them. Without it, straight to the local hub.
	var emitter services.SSEEmitter
	var realtimeBus bus.Bus
	if cfg.RedisAddr != "" {
		b, err := bus.NewRedisBus(log)
		if err != nil {
			return Services{}, fmt.Errorf("init redis bus: %w", err)
		}
		realtimeBus = b
		emitter = &services.RedisEmitter{Bus: b}
	} else {
		emitter = &services.HubEmitter{Hub: hub}
	}
	notifier := services.NewProgressNotifier(emitter)

	authService := services.NewAuthService(
		db, log,
		r.AuthorProfile, r.UserToken,
		cfg.JWTSecretKey, cfg.AccessTokenTTL, cfg.RefreshTokenTTL,
	)
	profileService := services.NewProfileService(db, log, r.AuthorProfile)
	accessService := services.NewAccessService(db, log, r.AuthorProfile, r.UserPurchase)
	phaseService := services.NewPhaseService(db, log, r.Manuscript, r.Chapter, r.EditingPhase, notifier)
	snapshotService := services.NewSnapshotService(db, log, r.Chapter, r.ManuscriptVersion, notifier)
	publishingService := services.NewPublishingService(db, log, r.PublishingProgress, notifier)
	manuscriptService := services.NewManuscriptService(db, log, r.Manuscript, r.Chapter, phaseService, publishingService)
	checkoutService, err := services.NewCheckoutService(db, log, r.UserPurchase, r.EditingPhase, notifier)
	if err != nil {
		return Services{}, fmt.Errorf("init checkout service: %w", err)
	}
	adminService := services.NewAdminService(db, log, r.AuthorProfile)
	feedbackService := services.NewFeedbackService(db, log, r.BetaFeedback)
	wordCountClient, err := services.NewWordCountClient(log)
	if err != nil {
		return Services{}, fmt.Errorf("init word count client: %w", err)
	}

	return Services{
		Auth:       authService,
		Profile:    profileService,
		Access:     accessService,
		Manuscript: manuscriptService,
		Phase:      phaseService,
		Snapshot:   snapshotService,
		Publishing: publishingService,
		Checkout:   checkoutService,
		Admin:      adminService,
		Feedback:   feedbackService,
		WordCount:  wordCountClient,
		Notifier:   notifier,
		Emitter:    emitter,
		Bus:        realtimeBus,
	}, nil
}

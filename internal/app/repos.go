package app

import (
	"gorm.io/gorm"

	"github.com/storyloft/storyloft-backend/internal/logger"
	"github.com/storyloft/storyloft-backend/internal/repos"
)

type Repos struct {
	AuthorProfile      repos.AuthorProfileRepo
	UserToken          repos.UserTokenRepo
	Manuscript         repos.ManuscriptRepo
	Chapter            repos.ChapterRepo
	EditingPhase       repos.EditingPhaseRepo
	ManuscriptVersion  repos.ManuscriptVersionRepo
	PublishingProgress repos.PublishingProgressRepo
	UserPurchase       repos.UserPurchaseRepo
	BetaFeedback       repos.BetaFeedbackRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		AuthorProfile:      repos.NewAuthorProfileRepo(db, log),
		UserToken:          repos.NewUserTokenRepo(db, log),
		Manuscript:         repos.NewManuscriptRepo(db, log),
		Chapter:            repos.NewChapterRepo(db, log),
		EditingPhase:       repos.NewEditingPhaseRepo(db, log),
		ManuscriptVersion:  repos.NewManuscriptVersionRepo(db, log),
		PublishingProgress: repos.NewPublishingProgressRepo(db, log),
		UserPurchase:       repos.NewUserPurchaseRepo(db, log),
		BetaFeedback:       repos.NewBetaFeedbackRepo(db, log),
	}
}

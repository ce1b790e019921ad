package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/checkia-backend/internal/data/repos"
	"github.com/yungbote/checkia-backend/internal/platform/logger"
)

type Repos struct {
	Submission        repos.SubmissionRepo
	ImageVerification repos.ImageVerificationRepo
	Fact              repos.FactRepo
	Keyword           repos.KeywordRepo
	JobRun            repos.JobRunRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Submission:        repos.NewSubmissionRepo(db, log),
		ImageVerification: repos.NewImageVerificationRepo(db, log),
		Fact:              repos.NewFactRepo(db, log),
		Keyword:           repos.NewKeywordRepo(db, log),
		JobRun:            repos.NewJobRunRepo(db, log),
	}
}

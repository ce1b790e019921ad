package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/checkia-backend/internal/data/repos/factcheck"
	"github.com/yungbote/checkia-backend/internal/data/repos/jobs"
	"github.com/yungbote/checkia-backend/internal/platform/logger"
)

type SubmissionRepo = factcheck.SubmissionRepo
type ImageVerificationRepo = factcheck.ImageVerificationRepo
type FactRepo = factcheck.FactRepo
type KeywordRepo = factcheck.KeywordRepo

type JobRunRepo = jobs.JobRunRepo

func NewSubmissionRepo(db *gorm.DB, baseLog *logger.Logger) SubmissionRepo {
	return factcheck.NewSubmissionRepo(db, baseLog)
}
func NewImageVerificationRepo(db *gorm.DB, baseLog *logger.Logger) ImageVerificationRepo {
	return factcheck.NewImageVerificationRepo(db, baseLog)
}
func NewFactRepo(db *gorm.DB, baseLog *logger.Logger) FactRepo {
	return factcheck.NewFactRepo(db, baseLog)
}
func NewKeywordRepo(db *gorm.DB, baseLog *logger.Logger) KeywordRepo {
	return factcheck.NewKeywordRepo(db, baseLog)
}

func NewJobRunRepo(db *gorm.DB, baseLog *logger.Logger) JobRunRepo {
	return jobs.NewJobRunRepo(db, baseLog)
}

var IsUniqueViolation = factcheck.IsUniqueViolation

package analyze_text

import (
	"context"

	"gorm.io/gorm"

	"github.com/yungbote/checkia-backend/internal/data/repos"
	types "github.com/yungbote/checkia-backend/internal/domain"
	"github.com/yungbote/checkia-backend/internal/platform/logger"
	"github.com/yungbote/checkia-backend/internal/services"
	"github.com/yungbote/checkia-backend/internal/verification"
)

type Analyzer interface {
	AnalyzeText(ctx context.Context, submissionID, claim string) verification.TextVerdict
}

// VerdictObserver counts final verdicts per path.
type VerdictObserver interface {
	ObserveVerdict(path, verdict string)
}

type Pipeline struct {
	db          *gorm.DB
	log         *logger.Logger
	submissions repos.SubmissionRepo
	analyzer    Analyzer
	store       services.VerdictStore
	observer    VerdictObserver
}

func New(
	db *gorm.DB,
	baseLog *logger.Logger,
	submissions repos.SubmissionRepo,
	analyzer Analyzer,
	store services.VerdictStore,
	observer VerdictObserver,
) *Pipeline {
	return &Pipeline{
		db:          db,
		log:         baseLog.With("job", types.JobTypeAnalyzeSubmissionText),
		submissions: submissions,
		analyzer:    analyzer,
		store:       store,
		observer:    observer,
	}
}

func (p *Pipeline) Type() string { return types.JobTypeAnalyzeSubmissionText }

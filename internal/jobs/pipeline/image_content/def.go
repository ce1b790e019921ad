package image_content

import (
	"context"

	"gorm.io/gorm"

	"github.com/yungbote/checkia-backend/internal/data/repos"
	types "github.com/yungbote/checkia-backend/internal/domain"
	"github.com/yungbote/checkia-backend/internal/jobs/pipeline/imageinput"
	"github.com/yungbote/checkia-backend/internal/platform/logger"
	"github.com/yungbote/checkia-backend/internal/services"
	"github.com/yungbote/checkia-backend/internal/verification"
)

type Analyzer interface {
	VerifyImageContent(ctx context.Context, verificationID string, img verification.ImageInput, claim string) verification.ImageVerdict
}

type VerdictObserver interface {
	ObserveVerdict(path, verdict string)
}

type Pipeline struct {
	db       *gorm.DB
	log      *logger.Logger
	images   repos.ImageVerificationRepo
	input    *imageinput.Preparer
	analyzer Analyzer
	store    services.VerdictStore
	observer VerdictObserver
}

func New(
	db *gorm.DB,
	baseLog *logger.Logger,
	images repos.ImageVerificationRepo,
	input *imageinput.Preparer,
	analyzer Analyzer,
	store services.VerdictStore,
	observer VerdictObserver,
) *Pipeline {
	return &Pipeline{
		db:       db,
		log:      baseLog.With("job", types.JobTypeVerifyImageContent),
		images:   images,
		input:    input,
		analyzer: analyzer,
		store:    store,
		observer: observer,
	}
}

func (p *Pipeline) Type() string { return types.JobTypeVerifyImageContent }

package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/checkia-backend/internal/observability"
	"github.com/yungbote/checkia-backend/internal/platform/logger"
	"github.com/yungbote/checkia-backend/internal/services"
	"github.com/yungbote/checkia-backend/internal/verification"
)

type Services struct {
	Auth              services.AuthService
	Jobs              services.JobService
	Notifier          services.JobNotifier
	Verdicts          services.VerdictStore
	Images            services.ImageStore
	Submission        services.SubmissionService
	ImageVerification services.ImageVerificationService
	Fact              services.FactService
	Analyzer          *verification.Analyzer
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, repos Repos, clients Clients, metrics *observability.Metrics) Services {
	log.Info("Wiring services...")

	notifier := services.NewJobNotifier(log, clients.EventBus)
	jobs := services.NewJobService(db, log, repos.JobRun, notifier, clients.Temporal, services.JobServiceConfig{
		TaskQueue:   cfg.Temporal.TaskQueue,
		MaxAttempts: cfg.WorkerMaxAttempts,
	})
	verdicts := services.NewVerdictStore(db, log, repos.Submission, repos.ImageVerification, repos.Fact, repos.Keyword)
	images := services.NewImageStore(log, clients.Bucket)

	analyzer := verification.NewAnalyzer(verification.AnalyzerDeps{
		Log:          log,
		Translator:   clients.Translator,
		Classifier:   clients.Classifier,
		Retriever:    clients.Retriever,
		Forensic:     clients.Forensic,
		TextModel:    clients.LLM,
		TextModelID:  cfg.TextModel,
		VisionModel:  clients.LLM,
		VisionID:     cfg.VisionModel,
		StageTimeout: cfg.StageTimeout,
		Observer:     metrics,
	})

	return Services{
		Auth:              services.NewAuthService(log, cfg.JWTSecret, cfg.JWTAudience),
		Jobs:              jobs,
		Notifier:          notifier,
		Verdicts:          verdicts,
		Images:            images,
		Submission:        services.NewSubmissionService(db, log, repos.Submission, jobs, verdicts),
		ImageVerification: services.NewImageVerificationService(db, log, repos.ImageVerification, images, jobs, verdicts, cfg.VisionModel),
		Fact:              services.NewFactService(db, log, repos.Fact, repos.Keyword, clients.Translator),
		Analyzer:          analyzer,
	}
}

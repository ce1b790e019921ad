package app

import (
	"gorm.io/gorm"

	httpH "github.com/yungbote/checkia-backend/internal/http/handlers"
	httpMW "github.com/yungbote/checkia-backend/internal/http/middleware"
	"github.com/yungbote/checkia-backend/internal/platform/logger"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

type Handlers struct {
	Health            *httpH.HealthHandler
	Submission        *httpH.SubmissionHandler
	ImageVerification *httpH.ImageVerificationHandler
	Task              *httpH.TaskHandler
	Fact              *httpH.FactHandler
}

func wireHandlers(db *gorm.DB, log *logger.Logger, svc Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:            httpH.NewHealthHandler(db),
		Submission:        httpH.NewSubmissionHandler(svc.Submission),
		ImageVerification: httpH.NewImageVerificationHandler(svc.ImageVerification),
		Task:              httpH.NewTaskHandler(svc.Jobs),
		Fact:              httpH.NewFactHandler(svc.Fact),
	}
}

func wireMiddleware(log *logger.Logger, svc Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{Auth: httpMW.NewAuthMiddleware(log, svc.Auth)}
}

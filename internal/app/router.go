package app

import (
	httpserver "github.com/yungbote/checkia-backend/internal/http"
	"github.com/yungbote/checkia-backend/internal/observability"
	"github.com/yungbote/checkia-backend/internal/platform/logger"
)

const serviceName = "checkia-api"

func wireServer(log *logger.Logger, cfg Config, handlers Handlers, mw Middleware, metrics *observability.Metrics) *httpserver.Server {
	log.Info("Wiring router...")
	return httpserver.NewServer(httpserver.RouterConfig{
		Log:            log,
		Metrics:        metrics,
		CORSOrigins:    cfg.CORSOrigins,
		ServiceName:    serviceName,
		AuthMiddleware: mw.Auth,

		SubmissionHandler:        handlers.Submission,
		ImageVerificationHandler: handlers.ImageVerification,
		TaskHandler:              handlers.Task,
		FactHandler:              handlers.Fact,
		HealthHandler:            handlers.Health,
	})
}

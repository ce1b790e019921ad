package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/checkia-backend/internal/http/handlers"
	httpMW "github.com/yungbote/checkia-backend/internal/http/middleware"
	"github.com/yungbote/checkia-backend/internal/observability"
	"github.com/yungbote/checkia-backend/internal/platform/logger"
	"github.com/yungbote/checkia-backend/internal/services"
)

// Multipart overhead on top of the largest accepted image.
const maxUploadBody = services.MaxImageBytes + 1<<20

type RouterConfig struct {
	Log            *logger.Logger
	Metrics        *observability.Metrics
	CORSOrigins    []string
	ServiceName    string
	AuthMiddleware *httpMW.AuthMiddleware

	SubmissionHandler        *httpH.SubmissionHandler
	ImageVerificationHandler *httpH.ImageVerificationHandler
	TaskHandler              *httpH.TaskHandler
	FactHandler              *httpH.FactHandler
	HealthHandler            *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	api := r.Group("/api")
	if cfg.HealthHandler != nil {
		api.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	protected := api.Group("/")
	{
		protected.Use(httpMW.RequestLogger(cfg.Log))
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		// Text claims
		if cfg.SubmissionHandler != nil {
			protected.POST("/submissions", cfg.SubmissionHandler.Create)
			protected.GET("/submissions", cfg.SubmissionHandler.List)
			protected.GET("/submissions/:id", cfg.SubmissionHandler.Get)
		}

		// Images
		if cfg.ImageVerificationHandler != nil {
			upload := httpMW.LimitBody(maxUploadBody)
			protected.POST("/verify-image-content", upload, cfg.ImageVerificationHandler.VerifyContent)
			protected.POST("/detect-ai-image", upload, cfg.ImageVerificationHandler.DetectAI)
			protected.GET("/image-verifications", cfg.ImageVerificationHandler.List)
			protected.GET("/image-verifications/:id", cfg.ImageVerificationHandler.Get)
			protected.DELETE("/image-verifications/:id", cfg.ImageVerificationHandler.Delete)
		}

		// Jobs
		if cfg.TaskHandler != nil {
			protected.GET("/task-status/:task_id", cfg.TaskHandler.Status)
		}

		// Library
		if cfg.FactHandler != nil {
			protected.GET("/facts", cfg.FactHandler.List)
			protected.GET("/facts_translated", cfg.FactHandler.ListTranslated)
			protected.GET("/keywords", cfg.FactHandler.Keywords)
		}
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"message": "route not found", "code": "not_found"}})
	})
	return r
}

package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"rezum-backend/internal/services/health"
	"rezum-backend/internal/shared/config"
	"rezum-backend/internal/shared/metrics"
	"rezum-backend/internal/shared/server/middleware"
	"rezum-backend/internal/shared/server/respond"
)

// RouteRegistrar attaches a component's routes to a group.
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// RouterDeps carries the handlers mounted by NewRouter.
type RouterDeps struct {
	Config   config.Config
	Uploads  RouteRegistrar
	Analyses RouteRegistrar
	Web      RouteRegistrar
	Health   *health.Service
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.MaxMultipartMemory = deps.Config.MaxUploadBytes

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
	)

	r.NoRoute(func(c *gin.Context) {
		respond.Error(c, http.StatusNotFound, "not_found", "Route not found", nil)
	})

	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	checker := deps.Health
	if checker == nil {
		checker = health.NewService("", "", nil)
	}
	api.GET("/health", func(c *gin.Context) {
		st := checker.Status(c.Request.Context())
		status := http.StatusOK
		if !st.OK {
			status = http.StatusServiceUnavailable
		}
		respond.JSON(c, status, st)
	})
	if deps.Uploads != nil {
		deps.Uploads.RegisterRoutes(api)
	}
	if deps.Analyses != nil {
		deps.Analyses.RegisterRoutes(api)
	}
	if deps.Web != nil {
		deps.Web.RegisterRoutes(&r.RouterGroup)
	}

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":3400"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}

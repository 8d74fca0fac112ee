package router

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/edu-crm-api/internal/handler"
	internalmiddleware "github.com/noah-isme/edu-crm-api/internal/middleware"
	"github.com/noah-isme/edu-crm-api/internal/models"
	"github.com/noah-isme/edu-crm-api/internal/service"
	appErrors "github.com/noah-isme/edu-crm-api/pkg/errors"
	"github.com/noah-isme/edu-crm-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/edu-crm-api/pkg/middleware/cors"
	"github.com/noah-isme/edu-crm-api/pkg/middleware/ratelimit"
	reqidmiddleware "github.com/noah-isme/edu-crm-api/pkg/middleware/requestid"
	"github.com/noah-isme/edu-crm-api/pkg/response"
)

// Options toggles optional route groups.
type Options struct {
	APIPrefix      string
	AllowedOrigins []string
	EnableDocs     bool
	EnableSystem   bool
}

// Deps holds everything the router mounts. Nil handlers leave their routes
// unregistered.
type Deps struct {
	Auth           internalmiddleware.TokenValidator
	Audit          internalmiddleware.AuditWriter
	Metrics        *service.MetricsService
	Logger         *zap.Logger
	ComputeLimiter *ratelimit.Limiter

	AuthHandler      *handler.AuthHandler
	DashboardHandler *handler.DashboardHandler
	ComputeHandler   *handler.ComputeHandler
	ReportHandler    *handler.ReportHandler
	MetricsHandler   *handler.MetricsHandler
}

var (
	adminRoles     = []models.UserRole{models.RoleSuperAdmin, models.RoleAdmin}
	counselorRoles = []models.UserRole{models.RoleSuperAdmin, models.RoleAdmin, models.RoleCounselor}
	partnerRoles   = []models.UserRole{models.RoleSuperAdmin, models.RoleAdmin, models.RolePartner}
)

// New builds the gin engine with the shared middleware chain and every
// configured route group.
func New(deps Deps, opts Options) *gin.Engine {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}
	prefix := strings.TrimRight(opts.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api/v1"
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(log))
	r.Use(corsmiddleware.New(opts.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(deps.Metrics))
	r.Use(internalmiddleware.WithResponseMeta())

	r.NoRoute(func(c *gin.Context) {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "route not found"))
	})

	if h := deps.MetricsHandler; h != nil {
		r.GET("/health", h.Health)
		r.GET("/ready", h.Ready)
		r.GET("/metrics", h.Prometheus)
	} else {
		r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	}

	if opts.EnableDocs {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	audit := func(action, resource string) gin.HandlerFunc {
		return internalmiddleware.Audit(deps.Audit, log, action, resource)
	}

	api := r.Group(prefix)

	if h := deps.AuthHandler; h != nil {
		auth := api.Group("/auth")
		auth.POST("/login", audit(models.AuditActionLogin, "auth"), h.Login)
		auth.POST("/refresh", h.Refresh)
		if deps.Auth != nil {
			auth.GET("/me", internalmiddleware.JWT(deps.Auth), h.Me)
		}
	}

	if h := deps.ReportHandler; h != nil {
		// Download links are signed, so they work without a bearer token.
		api.GET("/export/:token", audit(models.AuditActionReportDownload, "report_exports"), h.DownloadReport)
	}

	if deps.Auth == nil {
		log.Warn("no token validator configured; secured routes disabled")
		return r
	}

	secured := api.Group("")
	secured.Use(internalmiddleware.JWT(deps.Auth))

	if h := deps.DashboardHandler; h != nil {
		dashboard := secured.Group("/dashboard")
		dashboard.GET("/overview", internalmiddleware.RequireRoles(adminRoles...), h.Overview)
		dashboard.GET("/applications", internalmiddleware.RequireRoles(adminRoles...), h.Applications)
		dashboard.GET("/leads", internalmiddleware.RequireRoles(adminRoles...), h.Leads)
		dashboard.GET("/financials", internalmiddleware.RequireRoles(adminRoles...), h.Financials)
		dashboard.GET("/leaderboard", internalmiddleware.RequireRoles(adminRoles...), h.Leaderboard)
		dashboard.GET("/counselor", internalmiddleware.RequireRoles(counselorRoles...), h.Counselor)
		dashboard.GET("/partner", internalmiddleware.RequireRoles(partnerRoles...), h.Partner)
	}

	if h := deps.ComputeHandler; h != nil {
		chain := []gin.HandlerFunc{audit(models.AuditActionCompute, "metrics")}
		if deps.ComputeLimiter != nil {
			chain = append(chain, ratelimit.Middleware(deps.ComputeLimiter, log))
		}
		chain = append(chain, h.Compute)
		secured.POST("/metrics/compute", chain...)
	}

	if h := deps.MetricsHandler; h != nil && opts.EnableSystem {
		secured.GET("/metrics/system", internalmiddleware.RequireRoles(adminRoles...), h.System)
	}

	if h := deps.ReportHandler; h != nil {
		reports := secured.Group("/reports")
		reports.Use(internalmiddleware.RequireRoles(adminRoles...))
		reports.POST("/generate", audit(models.AuditActionReportGenerate, "report_jobs"), h.GenerateReport)
		reports.GET("/status/:id", h.ReportStatus)
	}

	return r
}

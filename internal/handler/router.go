package handler

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/techskill-console/internal/middleware"
	"github.com/noah-isme/techskill-console/internal/service"
	"github.com/noah-isme/techskill-console/pkg/logger"
	corsmiddleware "github.com/noah-isme/techskill-console/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/techskill-console/pkg/middleware/requestid"
)

// RouterParams carries everything the console HTTP surface is built from.
type RouterParams struct {
	Logger         *zap.Logger
	Metrics        *service.MetricsService
	Sessions       middleware.SessionAuthenticator
	AllowedOrigins []string
	APIPrefix      string
	EnableDocs     bool

	Auth       *AuthHandler
	Enquiries  *EnquiryHandler
	Admissions *AdmissionHandler
	Courses    *CourseHandler
	Fees       *FeeHandler
	Receipts   *ReceiptHandler
	Documents  *DocumentHandler
	Settings   *SettingsHandler
	Dashboard  *DashboardHandler
	System     *MetricsHandler
}

// NewRouter builds the gin engine with every console route registered.
func NewRouter(p RouterParams) *gin.Engine {
	if p.Logger == nil {
		p.Logger = zap.NewNop()
	}
	if p.APIPrefix == "" {
		p.APIPrefix = "/api/v1"
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(p.Logger))
	r.Use(corsmiddleware.New(p.AllowedOrigins))
	r.Use(middleware.Metrics(p.Metrics))
	r.Use(middleware.ResponseMeta())

	r.GET("/health", p.System.Health)
	r.GET("/ready", p.System.Ready)
	r.GET("/metrics", p.System.Prometheus)
	if p.EnableDocs {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(p.APIPrefix)
	api.POST("/auth/login", p.Auth.Login)
	api.GET("/receipts/download", p.Receipts.Download)

	secured := api.Group("")
	secured.Use(middleware.Session(p.Sessions))
	secured.POST("/auth/logout", p.Auth.Logout)
	secured.GET("/dashboard", p.Dashboard.Summary)
	secured.GET("/metrics/summary", p.System.Snapshot)

	enquiries := secured.Group("/enquiries", middleware.Audit(p.Logger, "enquiry"))
	enquiries.GET("", p.Enquiries.List)
	enquiries.POST("", p.Enquiries.Create)
	enquiries.GET("/export", p.Enquiries.Export)
	enquiries.GET("/:id", p.Enquiries.Get)
	enquiries.PUT("/:id", p.Enquiries.Update)
	enquiries.DELETE("/:id", p.Enquiries.Delete)
	enquiries.GET("/:id/followups", p.Enquiries.Followups)
	enquiries.POST("/:id/followups", p.Enquiries.AddFollowup)

	admissions := secured.Group("/admissions", middleware.Audit(p.Logger, "admission"))
	admissions.GET("", p.Admissions.List)
	admissions.POST("", p.Admissions.Create)
	admissions.GET("/:id", p.Admissions.Get)
	admissions.PUT("/:id", p.Admissions.Update)
	admissions.DELETE("/:id", p.Admissions.Delete)
	admissions.GET("/:id/form", p.Admissions.Form)

	courses := secured.Group("/courses", middleware.Audit(p.Logger, "course"))
	courses.GET("", p.Courses.List)
	courses.POST("", p.Courses.Create)
	courses.GET("/:id", p.Courses.Get)
	courses.PUT("/:id", p.Courses.Update)
	courses.DELETE("/:id", p.Courses.Delete)

	fees := secured.Group("/fees", middleware.Audit(p.Logger, "fee"))
	fees.GET("", p.Fees.List)
	fees.POST("", p.Fees.Create)
	fees.GET("/:id", p.Fees.Get)
	fees.DELETE("/:id", p.Fees.Delete)
	fees.GET("/:id/receipt", p.Fees.Receipt)
	secured.GET("/students/:id/fees/summary", p.Fees.Summary)

	receipts := secured.Group("/receipts", middleware.Audit(p.Logger, "receipt"))
	receipts.GET("", p.Receipts.History)
	receipts.POST("", p.Receipts.Issue)
	receipts.GET("/:number", p.Receipts.Reprint)

	documents := secured.Group("/documents", middleware.Audit(p.Logger, "document"))
	documents.GET("", p.Documents.List)
	documents.POST("", p.Documents.Upload)
	documents.DELETE("/:id", p.Documents.Delete)
	documents.POST("/admission-form/preview", p.Admissions.Preview)

	settings := secured.Group("/settings", middleware.Audit(p.Logger, "settings"))
	settings.GET("", p.Settings.Get)
	settings.PUT("", p.Settings.Update)

	return r
}

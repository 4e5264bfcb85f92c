package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	_ "github.com/noah-isme/techskill-console/api/swagger"
	"github.com/noah-isme/techskill-console/internal/backend"
	"github.com/noah-isme/techskill-console/internal/document"
	"github.com/noah-isme/techskill-console/internal/handler"
	"github.com/noah-isme/techskill-console/internal/notify"
	"github.com/noah-isme/techskill-console/internal/reconcile"
	"github.com/noah-isme/techskill-console/internal/repository"
	"github.com/noah-isme/techskill-console/internal/service"
	"github.com/noah-isme/techskill-console/pkg/cache"
	"github.com/noah-isme/techskill-console/pkg/config"
	"github.com/noah-isme/techskill-console/pkg/database"
	"github.com/noah-isme/techskill-console/pkg/export"
	"github.com/noah-isme/techskill-console/pkg/logger"
	"github.com/noah-isme/techskill-console/pkg/storage"
)

// @title TechSkill Institute Console API
// @version 1.0.0
// @description Admin console for enquiries, admissions, courses, fees and receipts
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logr.Warn("unknown timezone, using UTC", zap.String("timezone", cfg.Timezone), zap.Error(err))
		loc = time.UTC
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics := service.NewMetricsService()
	client := backend.New(backend.Config{
		BaseURL:       cfg.Backend.BaseURL,
		UploadBaseURL: cfg.Backend.UploadBaseURL,
		Timeout:       cfg.Backend.Timeout,
		Retries:       cfg.Backend.Retries,
		RetryWait:     cfg.Backend.RetryWait,
		Logger:        logr,
		Observer:      metrics,
	})

	checks := map[string]handler.ReadinessCheck{}

	var redisClient *redis.Client
	if cfg.Cache.Enabled {
		redisClient, err = cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, caching disabled", zap.Error(err))
		} else {
			defer redisClient.Close() //nolint:errcheck
		}
	}
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	if redisClient != nil {
		checks["redis"] = cacheRepo.Ping
	}
	cacheSvc := service.NewCacheService(
		cacheRepo,
		metrics,
		cfg.Cache.ListTTL,
		logr,
		redisClient != nil,
	)

	validate := validator.New()
	reconciler := reconcile.New(loc)
	exporter := service.NewExportService(logr, export.NewCSVExporter(), export.NewPDFExporter())

	authSvc := service.NewAuthService(client, cacheSvc, validate, logr)
	enquirySvc := service.NewEnquiryService(client, reconciler, cacheSvc, exporter, validate, logr, service.EnquiryServiceConfig{
		PageSize:    cfg.Enquiry.PageSize,
		SourcesTTL:  cfg.Cache.ListTTL,
		LoadTimeout: cfg.Backend.Timeout * time.Duration(cfg.Backend.Retries+1),
	})
	settingsSvc := service.NewSettingsService(client, cacheSvc, validate, logr, cfg.Cache.SettingsTTL)
	courseSvc := service.NewCourseService(client, validate, logr)
	admissionSvc := service.NewAdmissionService(client, settingsSvc, cacheSvc, validate, logr, loc)
	feeSvc := service.NewFeeService(client, validate, logr)
	documentSvc := service.NewStudentDocumentService(client, logr)
	dashboardSvc := service.NewDashboardService(service.DashboardServiceParams{
		Backend:    client,
		Reconciler: reconciler,
		Cache:      cacheSvc,
		Logger:     logr,
		Config:     service.DashboardServiceConfig{CacheTTL: cfg.Cache.ListTTL},
	})

	receiptParams := service.ReceiptServiceParams{
		Fees:          feeSvc,
		Settings:      settingsSvc,
		Issuer:        document.NewIssuer(nil, nil),
		Metrics:       metrics,
		Logger:        logr,
		Location:      loc,
		LedgerEnabled: cfg.Receipts.LedgerEnabled,
		DownloadPath:  cfg.APIPrefix + "/receipts/download",
	}
	if cfg.Receipts.LedgerEnabled {
		db, archive, err := openReceiptLedger(ctx, cfg)
		if err != nil {
			logr.Error("receipt ledger unavailable", zap.Error(err))
		} else {
			defer db.Close() //nolint:errcheck
			receiptParams.Ledger = repository.NewReceiptRepository(db)
			receiptParams.Archive = archive
			receiptParams.Signer = storage.NewSignedURLSigner(cfg.Receipts.SignedURLSecret, cfg.Receipts.SignedURLTTL)
			checks["postgres"] = db.PingContext
		}
	}
	receiptSvc := service.NewReceiptService(receiptParams)

	if digest := newDigest(cfg, client, enquirySvc, metrics, logr, loc); digest != nil {
		if err := digest.Start(ctx); err != nil {
			logr.Error("overdue digest not started", zap.Error(err))
		} else {
			defer digest.Stop()
		}
	}

	router := handler.NewRouter(handler.RouterParams{
		Logger:         logr,
		Metrics:        metrics,
		Sessions:       authSvc,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		APIPrefix:      cfg.APIPrefix,
		EnableDocs:     cfg.Docs.Enabled && cfg.Env != config.EnvProduction,

		Auth:       handler.NewAuthHandler(authSvc),
		Enquiries:  handler.NewEnquiryHandler(enquirySvc),
		Admissions: handler.NewAdmissionHandler(admissionSvc),
		Courses:    handler.NewCourseHandler(courseSvc),
		Fees:       handler.NewFeeHandler(feeSvc, receiptSvc),
		Receipts:   handler.NewReceiptHandler(receiptSvc),
		Documents:  handler.NewDocumentHandler(documentSvc),
		Settings:   handler.NewSettingsHandler(settingsSvc),
		Dashboard:  handler.NewDashboardHandler(dashboardSvc),
		System:     handler.NewMetricsHandler(metrics, checks),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "backend", cfg.Backend.BaseURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}

func openReceiptLedger(ctx context.Context, cfg *config.Config) (*sqlx.DB, *storage.LocalStorage, error) {
	if cfg.Receipts.SignedURLSecret == "" {
		return nil, nil, errors.New("RECEIPTS_SIGNED_URL_SECRET is required")
	}
	archive, err := storage.NewLocalStorage(cfg.Receipts.StorageDir)
	if err != nil {
		return nil, nil, err
	}
	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("connect postgres: %w", err)
	}
	return db, archive, nil
}

func newDigest(cfg *config.Config, client *backend.Client, enquiries *service.EnquiryService, metrics *service.MetricsService, logr *zap.Logger, loc *time.Location) *service.DigestService {
	if !cfg.Digest.Enabled {
		return nil
	}
	if len(cfg.Digest.ChatIDs) == 0 || cfg.Digest.ServiceUser == "" {
		logr.Warn("overdue digest enabled without chats or service credentials; skipping")
		return nil
	}
	sender, err := notify.NewTelegramSender(cfg.Digest.TelegramToken, cfg.Backend.Timeout)
	if err != nil {
		logr.Warn("overdue digest disabled", zap.Error(err))
		return nil
	}
	return service.NewDigestService(service.DigestServiceParams{
		Auth:      client,
		Enquiries: enquiries,
		Sender:    sender,
		Metrics:   metrics,
		Logger:    logr,
		Location:  loc,
		Config: service.DigestConfig{
			Schedule:        cfg.Digest.Cron,
			ChatIDs:         cfg.Digest.ChatIDs,
			ServiceUser:     cfg.Digest.ServiceUser,
			ServicePassword: cfg.Digest.ServicePassword,
			MaxEntries:      cfg.Digest.MaxEntries,
			Workers:         cfg.Digest.Workers,
			Retries:         cfg.Digest.Retries,
		},
	})
}

package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/MASTFAX12/MAKERS/api/swagger"
	"github.com/MASTFAX12/MAKERS/internal/handler"
	"github.com/MASTFAX12/MAKERS/internal/middleware"
	"github.com/MASTFAX12/MAKERS/internal/mirror"
	"github.com/MASTFAX12/MAKERS/internal/repository"
	"github.com/MASTFAX12/MAKERS/internal/service"
	"github.com/MASTFAX12/MAKERS/internal/store"
	"github.com/MASTFAX12/MAKERS/pkg/ai"
	"github.com/MASTFAX12/MAKERS/pkg/cache"
	"github.com/MASTFAX12/MAKERS/pkg/config"
	"github.com/MASTFAX12/MAKERS/pkg/database"
	"github.com/MASTFAX12/MAKERS/pkg/logger"
	corsmiddleware "github.com/MASTFAX12/MAKERS/pkg/middleware/cors"
	reqidmiddleware "github.com/MASTFAX12/MAKERS/pkg/middleware/requestid"
	"github.com/MASTFAX12/MAKERS/pkg/storage"
)

const (
	uploadsDir    = "./uploads"
	downloadTTL   = 15 * time.Minute
	shutdownGrace = 10 * time.Second
)

// @title MAKERS Team HQ API
// @version 1.0.0
// @description Team roster, project lifecycle, priority scoring and passwordless access
// @BasePath /api/v1
// @schemes http

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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Local store: Postgres when reachable, in-memory otherwise. The
	// in-memory fallback keeps the HQ usable on a laptop with no services.
	var kv store.Store
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Warn("postgres unavailable, falling back to in-memory store", zap.Error(err))
		kv = store.NewMemory()
	} else {
		defer db.Close() //nolint:errcheck
		kv = store.NewPostgres(db, logr)
	}
	store.Seed(ctx, kv, logr)

	// Remote mirror: best effort, fully optional.
	var remote mirror.Mirror
	var replicator *mirror.Replicator
	if cfg.Mirror.Enabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, mirror disabled", zap.Error(err))
		} else {
			remote = mirror.NewRedis(redisClient, cfg.Mirror.CallTimeout, logr)
		}
	}
	replicator = mirror.NewReplicator(remote, mirror.ReplicatorConfig{
		Workers:     cfg.Mirror.ReplicaWorkers,
		MaxRetries:  cfg.Mirror.MaxRetries,
		RetryDelay:  cfg.Mirror.RetryDelay,
		CallTimeout: cfg.Mirror.CallTimeout,
	}, logr)
	replicator.Start(ctx)
	defer replicator.Stop()

	deps := &repository.Deps{
		Store:      kv,
		Remote:     remote,
		Replicator: replicator,
		Logger:     logr,
	}

	memberRepo := repository.NewMemberRepository(deps)
	projectRepo := repository.NewProjectRepository(deps)
	inviteRepo := repository.NewInviteRepository(deps)
	settingsRepo := repository.NewSettingsRepository(deps)
	activityRepo := repository.NewActivityRepository(deps)
	notificationRepo := repository.NewNotificationRepository(deps)

	metricsSvc := service.NewMetricsService()
	activitySvc := service.NewActivityService(activityRepo, logr)
	notificationSvc := service.NewNotificationService(notificationRepo, logr)
	scoringSvc := service.NewScoringService(memberRepo, logr)
	authSvc := service.NewAuthService(settingsRepo, memberRepo, activitySvc, cfg.Auth, logr)
	inviteSvc := service.NewInviteService(inviteRepo, memberRepo, authSvc, activitySvc, cfg.Invites, cfg.Auth.LoginBaseURL, logr)
	memberSvc := service.NewMemberService(memberRepo, activitySvc, logr)

	var files service.AttachmentStore
	var signer *storage.SignedURLSigner
	if local, err := storage.NewLocalStorage(uploadsDir); err != nil {
		logr.Warn("attachment storage unavailable", zap.Error(err))
	} else {
		files = local
		signer = storage.NewSignedURLSigner(cfg.Auth.SessionSecret, downloadTTL)
	}

	projectSvc := service.NewProjectService(projectRepo, settingsRepo, scoringSvc, activitySvc, notificationSvc, files, signer, logr)
	reportSvc := service.NewReportService(cfg.Reports, memberRepo, projectRepo, activitySvc, logr)

	var aiClient *ai.Client
	if cfg.AI.Enabled && cfg.AI.APIKey != "" {
		aiClient = ai.NewClient(ai.ClientConfig{
			APIKey:            cfg.AI.APIKey,
			Endpoint:          cfg.AI.Endpoint,
			RequestsPerMinute: cfg.AI.RequestsPerMinute,
			CacheTTL:          cfg.AI.CacheTTL,
			CallTimeout:       cfg.AI.CallTimeout,
			Logger:            logr,
		})
	}
	aiSvc := service.NewAIService(aiClient, scoringSvc, memberRepo, logr)

	// The leader credential must exist before anyone can log in. The raw
	// token appears in this log line exactly once per bootstrap.
	if tokenState, err := authSvc.EnsureLeaderToken(ctx, true); err != nil {
		logr.Error("leader token bootstrap failed", zap.Error(err))
	} else if tokenState.Created {
		logr.Info("leader token minted, store the link now",
			zap.String("login_link", tokenState.Link))
	}

	if cfg.Notifications.Enabled {
		watcher := service.NewDeadlineWatcher(projectSvc, notificationSvc,
			cfg.Notifications.PollInterval, cfg.Notifications.Lookahead, logr)
		watcher.Start(ctx)
		defer watcher.Stop()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ready",
			"mirror": replicator.Online(),
		})
	})
	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	handler.RegisterRoutes(r, cfg.APIPrefix, authSvc, handler.Handlers{
		Auth:          handler.NewAuthHandler(authSvc),
		Invites:       handler.NewInviteHandler(inviteSvc),
		Members:       handler.NewMemberHandler(memberSvc),
		Projects:      handler.NewProjectHandler(projectSvc),
		Scoring:       handler.NewScoringHandler(scoringSvc, metricsSvc),
		Activity:      handler.NewActivityHandler(activitySvc),
		Notifications: handler.NewNotificationHandler(notificationSvc),
		Dashboard:     handler.NewDashboardHandler(memberSvc, projectSvc, scoringSvc, replicator, cfg.Notifications.Lookahead),
		Reports:       handler.NewReportHandler(reportSvc),
		AI:            handler.NewAIHandler(aiSvc),
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("shutdown failed", "error", err)
	}
}

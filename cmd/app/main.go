package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"crowdfund-backend/docs"
	"crowdfund-backend/internal/common/cache"
	"crowdfund-backend/internal/common/config"
	"crowdfund-backend/internal/common/logger"
	"crowdfund-backend/internal/common/middleware"
	campaignhttp "crowdfund-backend/internal/features/campaign/delivery/http"
	"crowdfund-backend/internal/features/campaign/events"
	"crowdfund-backend/internal/features/campaign/leaderboard"
	campaignrepo "crowdfund-backend/internal/features/campaign/repository"
	campaignmemory "crowdfund-backend/internal/features/campaign/repository/memory"
	campaignredis "crowdfund-backend/internal/features/campaign/repository/redis"
	campaignservice "crowdfund-backend/internal/features/campaign/service"
	userhttp "crowdfund-backend/internal/features/user/delivery/http"
	userrepo "crowdfund-backend/internal/features/user/repository"
	usermemory "crowdfund-backend/internal/features/user/repository/memory"
	userredis "crowdfund-backend/internal/features/user/repository/redis"
	userservice "crowdfund-backend/internal/features/user/service"
	"crowdfund-backend/internal/platform/redis"
	"crowdfund-backend/internal/platform/storage"
	"crowdfund-backend/internal/platform/telegram"
	"crowdfund-backend/internal/workers"
)

const serviceName = "crowdfund-backend"

// @title           Crowdfunding API
// @version         1.0
// @description     Campaign and donation API for the crowdfunding Telegram Mini App. Writes require Telegram init data.

// @BasePath  /api/v1

// @securityDefinitions.apikey TelegramInitData
// @in header
// @name X-Telegram-Init-Data
// @description Telegram Mini App init data string

// @tag.name campaigns
// @tag.description Campaign creation, editing and donations

// @tag.name users
// @tag.description User profiles and per-user campaign listings

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(logger.Options{
		Service: serviceName,
		Debug:   cfg.Debug,
		JSON:    cfg.LogFormat == config.LogFormatJSON,
	})
	logger.Info().
		Bool("debug", cfg.Debug).
		Str("store_backend", cfg.Storage.Backend).
		Msg("starting crowdfund backend")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	objects, err := storage.NewFileStore(cfg.Storage.MediaDir, cfg.Server.PublicURL+"/media")
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize media storage")
	}

	var (
		campaigns   campaignrepo.CampaignRepository
		users       userrepo.UserRepository
		rdb         *redis.Client
		deps        campaignservice.Dependencies
		eventWorker *workers.CampaignEventsWorker
	)

	switch cfg.Storage.Backend {
	case config.StoreBackendRedis:
		rdb, err = redis.OpenFromConfig(ctx, cfg)
		if err != nil {
			logger.Fatal().Err(err).Str("addr", cfg.RedisAddr()).Msg("failed to connect to redis")
		}
		defer rdb.Close()
		logger.Info().Str("addr", cfg.RedisAddr()).Msg("redis connection established")

		campaigns = campaignredis.NewCampaignRepository(rdb)
		users = userredis.NewUserRepository(rdb)

		cacheService := cache.NewCacheService(rdb)
		board := leaderboard.New(rdb)
		deps = campaignservice.Dependencies{
			Cache:   cacheService,
			Events:  events.NewStreamPublisher(rdb, cfg.Events.Stream, 10000),
			Ranking: board,
		}

		eventWorker = workers.NewCampaignEventsWorker(rdb, workers.CampaignEventsConfig{
			Stream:   cfg.Events.Stream,
			Group:    cfg.Events.Group,
			Consumer: consumerName(cfg.Events.Consumer),
		}, board, cacheService)
		if cfg.Telegram.NotifyOwners {
			eventWorker.WithNotifier(telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.APIURL), campaigns)
		}
	default:
		logger.Warn().Msg("using in-memory storage, data is lost on restart")
		campaigns = campaignmemory.NewCampaignRepository()
		users = usermemory.NewUserRepository()
	}

	deps.Repo = campaigns
	deps.Objects = objects
	deps.ListTTL = cfg.Cache.CampaignListTTL

	userSvc := userservice.NewUserService(users)
	campaignSvc := campaignservice.NewCampaignService(deps)

	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	httpLog := logger.Component("http")
	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(httpLog))
	router.Use(middleware.ErrorHandler(httpLog))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Server.Origin}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Content-Type", "Accept", middleware.HeaderInitData, middleware.HeaderRequestID}
	router.Use(cors.New(corsConfig))

	router.Static("/media", objects.BasePath())

	docs.SwaggerInfo.BasePath = "/api/v1"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	setupHealth(router, rdb)

	requireAuth := middleware.RequireAuth(httpLog)
	v1 := router.Group("/api/v1")
	v1.Use(middleware.TelegramAuth(cfg.Telegram.BotToken, cfg.Telegram.InitDataTTL, httpLog))
	v1.Use(middleware.AutoCreateUser(userSvc, httpLog))

	campaignhttp.NewCampaignHandler(campaignSvc, userSvc, cfg.MaxUploadBytes(), httpLog).RegisterRoutes(v1, requireAuth)
	userhttp.NewUserHandler(userSvc, httpLog).RegisterRoutes(v1, requireAuth)

	if eventWorker != nil {
		go eventWorker.Start(ctx)
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Int("port", cfg.Server.Port).Msg("starting HTTP server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server forced to shutdown")
	}

	logger.Info().Msg("server exited")
}

func setupHealth(router *gin.Engine, rdb *redis.Client) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().UTC(),
			"service":   serviceName,
		})
	})

	router.GET("/live", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	router.GET("/ready", func(c *gin.Context) {
		if rdb != nil {
			if err := rdb.HealthCheck(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{
					"status":  "unready",
					"error":   "redis unavailable",
					"details": err.Error(),
				})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{
			"status":    "ready",
			"timestamp": time.Now().UTC(),
			"service":   serviceName,
		})
	})
}

func consumerName(configured string) string {
	if configured != "" {
		return configured
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return "crowdfund_" + host
	}
	return workers.DefaultConsumerName
}

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

	"credibly/internal/config"
	"credibly/internal/handlers"
	"credibly/internal/middleware"
	"credibly/internal/observability"
	"credibly/internal/repositories/mongodb"
	"credibly/internal/services"
	"credibly/internal/utils"
	"credibly/pkg/cache"
	"credibly/pkg/database"
	"credibly/pkg/logger"
	"credibly/routes"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// A missing .env is fine; the environment may already be set.
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger, err := logger.NewLogger(&logger.Config{
		Level:   logger.LogLevel(cfg.App.LogLevel),
		Format:  cfg.App.LogFormat,
		Output:  cfg.App.LogOutput,
		AppName: cfg.App.Name,
		Version: cfg.App.Version,
	})
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Storage
	mongoDB, err := database.NewMongoDB(&database.DatabaseConfig{
		URI:            cfg.Database.URI,
		Database:       cfg.Database.Database,
		AppName:        cfg.App.Name,
		MaxPoolSize:    cfg.Database.MaxPoolSize,
		MinPoolSize:    cfg.Database.MinPoolSize,
		ConnectTimeout: cfg.Database.ConnectTimeout,
		SocketTimeout:  cfg.Database.SocketTimeout,
	})
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to connect to MongoDB")
	}
	defer mongoDB.Close()

	if cfg.Database.AutoMigrate {
		migrator := database.NewMigrator(mongoDB.Database, database.MigrationOptions{
			UniqueRatingPerPair: cfg.Ratings.OnePerPair,
		}, appLogger.Entry())
		if err := migrator.Up(context.Background()); err != nil {
			appLogger.WithError(err).Fatal("Failed to run migrations")
		}
	}

	var (
		userCache  cache.Cache
		staleQueue services.StaleAggregateQueue
		checks     = map[string]handlers.Pinger{"mongodb": mongoDB}
	)
	if cfg.Redis.Enabled {
		redisCache, err := cache.NewRedisCache(&cache.RedisConfig{
			Host:         cfg.Redis.Host,
			Port:         cfg.Redis.Port,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		})
		if err != nil {
			appLogger.WithError(err).Fatal("Failed to connect to Redis")
		}
		defer redisCache.Close()

		userCache = redisCache
		staleQueue = services.NewRedisStaleQueue(redisCache)
		checks["redis"] = redisCache
	} else {
		appLogger.Warn("Redis disabled: user cache off, stale aggregate queue is in-process")
		staleQueue = services.NewMemoryStaleQueue()
	}

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := observability.NewMetrics(registry)

	// Repositories
	db := mongoDB.Database
	userRepo := mongodb.NewUserRepository(db, userCache, cfg.Redis.UserCacheTTL)
	ratingRepo := mongodb.NewRatingRepository(db)
	connectionRepo := mongodb.NewConnectionRepository(db)
	blockRepo := mongodb.NewBlockRepository(db)
	reportRepo := mongodb.NewReportRepository(db)
	activityRepo := mongodb.NewActivityRepository(db)
	auditRepo := mongodb.NewAuditLogRepository(db)
	useTransactions := cfg.Database.Transactions
	if useTransactions {
		supported, err := mongoDB.SupportsTransactions(context.Background())
		if err != nil || !supported {
			appLogger.WithError(err).Warn("MongoDB deployment does not support transactions, running report resolution without one")
			useTransactions = false
		}
	}
	transactor := mongodb.NewTransactor(mongoDB, useTransactions)

	// Services
	tokenManager := utils.NewTokenManager(cfg.Security.JWTSecret, cfg.Security.JWTAccessTokenTTL, cfg.Security.JWTRefreshTokenTTL)
	emailSender := services.NewLogEmailSender(appLogger)

	aggregator := services.NewRatingAggregator(ratingRepo, userRepo, staleQueue, cfg.Ratings.AggregateMaxRetries, metrics, appLogger)
	activityService := services.NewActivityService(activityRepo, connectionRepo, blockRepo, appLogger)
	authService := services.NewAuthService(userRepo, activityService, emailSender, tokenManager, *cfg.Security, cfg.App.BaseURL, appLogger)
	ratingService := services.NewRatingService(ratingRepo, userRepo, blockRepo, auditRepo, aggregator, activityService, *cfg.Ratings, appLogger)
	userService := services.NewUserService(userRepo, blockRepo, appLogger)
	connectionService := services.NewConnectionService(connectionRepo, blockRepo, userRepo, activityService, appLogger)
	blockService := services.NewBlockService(blockRepo, connectionRepo, userRepo, appLogger)
	reportService := services.NewReportService(reportRepo, userRepo, ratingRepo, appLogger)
	adminService := services.NewAdminService(userRepo, ratingRepo, reportRepo, auditRepo, transactor, aggregator, staleQueue, appLogger)

	// Background work
	workerCtx, stopWorker := context.WithCancel(context.Background())
	defer stopWorker()

	worker := services.NewRecomputeWorker(aggregator, staleQueue, cfg.Worker.StaleQueueInterval, cfg.Worker.StaleQueueBatchSize, metrics, appLogger)
	worker.Start(workerCtx)

	rateLimiter := middleware.NewRateLimiter(cfg.Security.RateLimitPerMinute, cfg.Security.RateLimitBurst)
	stopCleanup := make(chan struct{})
	rateLimiter.StartCleanup(time.Minute, stopCleanup)

	router := routes.SetupRouter(&routes.RouterConfig{
		Logger:         appLogger,
		Metrics:        metrics,
		MetricsHandler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		AuthService:    authService,
		RateLimiter:    rateLimiter,
		RequestTimeout: cfg.App.RequestTimeout,
		AllowedOrigins: cfg.Security.CORSAllowedOrigins,
		TrustedProxies: cfg.Security.TrustedProxies,
	}, &routes.Handlers{
		Auth:       handlers.NewAuthHandler(authService),
		Rating:     handlers.NewRatingHandler(ratingService, cfg.Ratings.CommentMaxLength),
		User:       handlers.NewUserHandler(userService, ratingService),
		Connection: handlers.NewConnectionHandler(connectionService, blockService),
		Report:     handlers.NewReportHandler(reportService),
		Feed:       handlers.NewFeedHandler(activityService),
		Admin:      handlers.NewAdminHandler(adminService),
		Health:     handlers.NewHealthHandler(cfg.App.Version, checks),
	})

	// Start server
	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.App.Host, cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		appLogger.Infof("Starting server on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.WithError(err).Fatal("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		appLogger.WithError(err).Error("Server forced to shutdown")
	}

	close(stopCleanup)
	worker.Stop()
	adminService.Wait()

	appLogger.Info("Server exited")
}

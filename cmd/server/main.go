package main

import (
	"context"
	"time"

	"fitpro-backend/config"
	"fitpro-backend/gemini"
	"fitpro-backend/handlers"
	"fitpro-backend/repository"
	"fitpro-backend/service"
	"fitpro-backend/storage"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"
)

func main() {
	// Load .env file from project root (relative to cmd/server/)
	// Try current directory first, then project root
	envLoaded := config.LoadDotEnv(".env", "../../.env")
	cfg := config.Load()

	logger := newLogger(cfg)
	defer logger.Sync()

	if !envLoaded {
		logger.Info("no .env file found, using environment variables")
	}

	// Initialize database. The pool connects lazily, so while Postgres is
	// unreachable only session and profile calls fail.
	var db repository.DBTX
	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		logger.Error("invalid Postgres configuration", zap.Error(err))
		db = repository.UnavailableDB(err)
	} else {
		defer pool.Close()
		db = pool
		initPostgres(pool, logger)
	}

	// Initialize repositories
	accountRepo := repository.NewAccountRepository(db)
	profileRepo := repository.NewProfileRepository(db)

	// Initialize object storage. Without it profiles still save, only
	// picture uploads fail.
	var objects *storage.ObjectStore
	backend, err := storage.NewStorage(cfg.Storage)
	if err != nil {
		logger.Error("failed to initialize storage", zap.Error(err))
	} else {
		objects = storage.NewObjectStore(backend, storage.DefaultPublicURL(cfg.Storage))
		logger.Info("storage initialized", zap.String("type", string(cfg.Storage.Type)))
	}

	// Initialize Gemini client. A missing key only fails chat requests.
	if cfg.GeminiAPIKey == "" {
		logger.Warn("GEMINI_API_KEY not set")
	}
	geminiClient := gemini.NewClient(cfg.GeminiAPIKey,
		gemini.WithModel(cfg.GeminiModel),
		gemini.WithLogger(logger),
	)
	defer geminiClient.Close()

	// Initialize services
	notifier := service.NewNotifier(service.DefaultNoticeWindow)

	sessionService := service.NewSessionService(
		service.SessionWithAccountGateway(accountRepo),
		service.SessionWithNotifier(notifier),
		service.SessionWithLogger(logger),
	)

	profileOpts := []service.ProfileServiceOption{
		service.ProfileWithIdentitySource(sessionService),
		service.ProfileWithStore(profileRepo, cfg.ProfileCollection),
		service.ProfileWithNotifier(notifier),
		service.ProfileWithLogger(logger),
	}
	if objects != nil {
		profileOpts = append(profileOpts, service.ProfileWithObjectStore(objects, cfg.ProfileBucket))
	}
	profileService := service.NewProfileService(profileOpts...)

	chatService := service.NewChatService(
		service.ChatWithGateway(geminiClient),
		service.ChatWithNotifier(notifier),
		service.ChatWithLogger(logger),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := sessionService.Initialize(ctx); err != nil {
		logger.Warn("session check failed", zap.Error(err))
	}
	cancel()

	// Initialize handlers
	routes := handlers.Routes{
		Session: handlers.NewSessionHandler(sessionService, notifier),
		Profile: handlers.NewProfileHandler(profileService),
		Chat:    handlers.NewChatHandler(chatService),
	}
	if objects != nil && cfg.Storage.Type != storage.StorageTypeS3 {
		routes.Files = handlers.NewFileHandler(objects)
	}

	// Setup Gin router
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), handlers.RequestLogger(logger))
	routes.Register(r)

	logger.Info("server starting", zap.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}
}

func newLogger(cfg *config.Config) *zap.Logger {
	var (
		logger *zap.Logger
		err    error
	)
	if cfg.IsProduction() {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// initPostgres pings and migrates once, then keeps retrying the migrations
// in the background when that fails
func initPostgres(pool *pgxpool.Pool, logger *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	err := pool.Ping(ctx)
	if err == nil {
		err = repository.RunMigrations(ctx, pool)
	}
	cancel()
	if err == nil {
		logger.Info("Postgres connection established")
		return
	}

	logger.Error("Postgres not ready, retrying migrations in background", zap.Error(err))
	go func() {
		backoff := retry.WithCappedDuration(30*time.Second, retry.NewExponential(time.Second))
		err := repository.MigrateWithRetry(context.Background(), pool, backoff, func(err error) {
			logger.Warn("migration attempt failed", zap.Error(err))
		})
		if err != nil {
			logger.Error("migrations abandoned", zap.Error(err))
			return
		}
		logger.Info("Postgres connection established")
	}()
}

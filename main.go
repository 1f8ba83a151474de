package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jonesrussell/tooldex/internal/api"
	"github.com/jonesrussell/tooldex/internal/auth"
	"github.com/jonesrussell/tooldex/internal/cache"
	"github.com/jonesrussell/tooldex/internal/config"
	"github.com/jonesrussell/tooldex/internal/handler"
	"github.com/jonesrussell/tooldex/internal/logger"
	"github.com/jonesrussell/tooldex/internal/metrics"
	"github.com/jonesrussell/tooldex/internal/moderation"
	"github.com/jonesrussell/tooldex/internal/search"
	"github.com/jonesrussell/tooldex/internal/storage"

	_ "github.com/lib/pq"
)

// Database connection timeout.
const dbPingTimeout = 5 * time.Second

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}

	log, err := createLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		return 1
	}
	defer func() { _ = log.Sync() }()

	db, err := connectDatabase(cfg, log)
	if err != nil {
		log.Error("Failed to connect to database", logger.Error(err))
		return 1
	}
	defer func() { _ = db.Close() }()

	return runServer(cfg, log, db)
}

// loadConfig loads and validates configuration.
func loadConfig() (*config.Config, error) {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config.yml"
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if validationErr := cfg.Validate(); validationErr != nil {
		return nil, fmt.Errorf("validate config: %w", validationErr)
	}
	return cfg, nil
}

// createLogger creates a logger instance from configuration.
func createLogger(cfg *config.Config) (logger.Logger, error) {
	log, err := logger.New(logger.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Service.Debug,
	})
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	return log.With(logger.String("service", cfg.Service.Name)), nil
}

// connectDatabase opens and verifies a database connection.
func connectDatabase(cfg *config.Config, log logger.Logger) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), dbPingTimeout)
	defer cancel()

	if pingErr := db.PingContext(ctx); pingErr != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", pingErr)
	}

	log.Info("Database connected",
		logger.String("host", cfg.Database.Host),
		logger.Int("port", cfg.Database.Port),
		logger.String("database", cfg.Database.Database),
	)

	return db, nil
}

// runServer creates all dependencies and runs the HTTP server until a
// shutdown signal arrives.
func runServer(cfg *config.Config, log logger.Logger, db *sql.DB) int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Authorization
	allowList := auth.NewAllowList(cfg.Auth.AdminEmailList())
	if allowList.Len() == 0 {
		log.Warn("Admin allow-list is empty; bootstrap will refuse everyone")
	}
	verifier := auth.NewJWTVerifier(cfg.Auth.JWTSecret)

	// Stores
	claimStore := storage.NewClaimStore(db)
	submissionStore := storage.NewSubmissionStore(db)
	toolStore := storage.NewToolStore(db)

	buf := storage.NewBuffer(cfg.Clicks.BufferSize)
	clickStore := storage.NewClickStore(db, buf, log, cfg.Clicks.FlushInterval, cfg.Clicks.FlushThreshold)
	clickStore.Start()
	defer clickStore.Stop()

	// Search stack
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer func() { _ = redisClient.Close() }()

	searchCache := cache.NewSearchCache(redisClient, cfg.Redis.CacheTTL, log)

	esClient, err := search.NewClient(cfg.Elasticsearch.URL, log)
	if err != nil {
		log.Error("Failed to create Elasticsearch client", logger.Error(err))
		return 1
	}
	indexer := search.NewIndexer(esClient, cfg.Elasticsearch.Index, toolStore, log)
	if err := indexer.Reindex(ctx); err != nil {
		log.Warn("Initial search reindex failed", logger.Error(err))
	}

	// Services
	hooks := &publishHooks{cache: searchCache, indexer: indexer, logger: log}
	modService := moderation.NewService(submissionStore, toolStore, hooks, log)
	bootstrapper := auth.NewBootstrapper(verifier, allowList, claimStore, log)

	// Handlers
	m := metrics.New()
	deps := &api.Dependencies{
		Health:      handler.NewHealthHandler(cfg.Service.Version),
		Redirect:    handler.NewRedirectHandler(buf, m, log),
		Submissions: handler.NewSubmissionsHandler(modService, m, log),
		Bootstrap:   handler.NewBootstrapHandler(bootstrapper, m, log),
		Search:      handler.NewSearchHandler(toolStore, searchCache, log),
		Metrics:     m,
		Verifier:    verifier,
		AllowList:   allowList,
		Claims:      claimStore,
	}

	server := api.NewServer(cfg, deps, log)

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	log.Info("Tooldex starting",
		logger.Int("port", cfg.Service.Port),
		logger.Int("admin_emails", allowList.Len()),
	)

	select {
	case err := <-errCh:
		if err != nil {
			log.Error("Server error", logger.Error(err))
			return 1
		}
	case <-ctx.Done():
		log.Info("Shutdown signal received")
		if err := server.Shutdown(context.Background()); err != nil {
			log.Error("Shutdown error", logger.Error(err))
			return 1
		}
	}

	log.Info("Tooldex exited cleanly")
	return 0
}

// publishHooks refreshes the search consumers after a catalog change.
type publishHooks struct {
	cache   *cache.SearchCache
	indexer *search.Indexer
	logger  logger.Logger
}

// ToolPublished invalidates the cached payload and rebuilds the index.
func (p *publishHooks) ToolPublished(ctx context.Context) {
	p.cache.Invalidate(ctx)
	if err := p.indexer.Reindex(ctx); err != nil {
		p.logger.Warn("Search reindex after publish failed", logger.Error(err))
	}
}

package entrypoint

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookshelf/internal/auth"
	"github.com/mrlokans/bookshelf/internal/config"
	"github.com/mrlokans/bookshelf/internal/covers"
	"github.com/mrlokans/bookshelf/internal/database"
	"github.com/mrlokans/bookshelf/internal/database/books"
	"github.com/mrlokans/bookshelf/internal/database/users"
	http_controllers "github.com/mrlokans/bookshelf/internal/http"
	"github.com/mrlokans/bookshelf/internal/metadata"
	"github.com/mrlokans/bookshelf/internal/metrics"
	"github.com/mrlokans/bookshelf/internal/scheduler"
	"github.com/mrlokans/bookshelf/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) error {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Printf("Starting server at %s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serveErr <- err
		}
	}()

	// kill (no param) sends SIGTERM, kill -2 is SIGINT
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-serveErr:
		return fmt.Errorf("listen: %w", err)
	case <-quit:
	}
	log.Printf("Shutdown Server, waiting %v before killing", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Stop background work before the listener goes away
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	log.Println("Server exiting")
	return nil
}

// NewResolver builds the ISBN resolver from lookup settings. ISBNdb is only
// consulted when an API key is configured.
func NewResolver(cfg config.Lookup) *metadata.Resolver {
	clientCfg := metadata.ClientConfig{
		Timeout:           cfg.HTTPTimeout,
		RequestsPerSecond: cfg.RequestsPerSecond,
	}

	var primary metadata.Provider
	if cfg.ISBNdbAPIKey != "" {
		isbndbCfg := clientCfg
		isbndbCfg.BaseURL = cfg.ISBNdbBaseURL
		primary = metadata.NewISBNdbClient(cfg.ISBNdbAPIKey, isbndbCfg)
	} else {
		log.Printf("WARNING: ISBNDB_API_KEY is not set. Lookups will use Google Books only.")
	}

	googleCfg := clientCfg
	googleCfg.BaseURL = cfg.GoogleBooksBaseURL
	secondary := metadata.NewGoogleBooksClient(googleCfg)

	cache := metadata.NewLRUCache(cfg.CacheSize, cfg.CacheTTL)
	return metadata.NewResolver(cache, primary, secondary)
}

func Run(cfg *config.Config, version string) error {
	log.Printf("Starting Bookshelf v%s", version)

	metrics.Register()

	db, err := database.NewDatabase(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	booksRepo := books.NewRepository(db.DB)
	if count, err := booksRepo.CountBooks(); err == nil {
		metrics.SetBooksTotal(int(count))
	}
	resolver := NewResolver(cfg.Lookup)
	enricher := metadata.NewEnricher(resolver, database.NewMetadataUpdater(booksRepo))

	coverCache, err := covers.NewCache(cfg.Covers.Dir)
	if err != nil {
		log.Printf("WARNING: Failed to initialize cover cache: %v", err)
		coverCache = nil
	} else {
		log.Printf("Cover cache initialized at %s", cfg.Covers.Dir)
		enricher.SetCoverInvalidator(coverCache)
	}

	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	if cfg.Tasks.Enabled {
		taskClient, err = tasks.NewClient(cfg.Database.Path, tasks.ConfigFrom(cfg.Tasks))
		if err != nil {
			return fmt.Errorf("failed to initialize task queue: %w", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task client: %v", err)
			}
		}()

		taskClient.Register(
			tasks.NewEnrichBookQueue(enricher),
			tasks.NewEnrichAllBooksQueue(enricher),
			tasks.NewCleanupOrphansQueue(booksRepo),
		)

		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)
	}

	var syncScheduler *scheduler.EnrichSyncScheduler
	if cfg.EnrichSync.Enabled {
		syncScheduler = scheduler.NewEnrichSyncScheduler(cfg.EnrichSync.Schedule, enrichmentRun(enricher, taskClient))
		if err := syncScheduler.Start(context.Background()); err != nil {
			return err
		}
	}

	authCfg := cfg.Auth
	authService, err := auth.NewService(users.NewRepository(db.DB), authCfg)
	if err != nil {
		return fmt.Errorf("failed to initialize auth: %w", err)
	}
	authController := auth.NewAuthController(authService, authCfg)
	if authCfg.Mode == config.AuthModeNone {
		log.Printf("Authentication mode: none (no authentication required)")
	} else {
		log.Printf("Authentication mode: local")
	}

	routerCfg := http_controllers.RouterConfig{
		Version:            version,
		CORSAllowedOrigins: cfg.HTTP.CORSAllowedOrigins,
		Database:           db,
		Books:              booksRepo,
		Resolver:           resolver,
		Enricher:           enricher,
		TaskClient:         taskClient,
		AuthService:        authService,
		AuthController:     authController,
		AuthConfig:         authCfg,
	}
	if coverCache != nil {
		routerCfg.CoverCache = coverCache
	}

	router := http_controllers.NewRouter(routerCfg)

	onShutdown := func(ctx context.Context) {
		if syncScheduler != nil {
			syncScheduler.Stop()
		}
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
		authController.Stop()
	}

	return Serve(router, cfg, onShutdown)
}

// enrichmentRun hands scheduled runs to the task queue when there is one,
// otherwise enriches inline.
func enrichmentRun(enricher *metadata.Enricher, taskClient *tasks.Client) scheduler.RunFunc {
	return func(ctx context.Context) error {
		if taskClient != nil {
			taskID, err := taskClient.EnqueueEnrichAll()
			if err != nil {
				return err
			}
			log.Printf("Enrichment scheduler: enqueued task %s", taskID)
			return nil
		}

		result, err := enricher.EnrichAllMissing(ctx)
		if err != nil {
			return err
		}
		log.Printf("Enrichment scheduler: enriched %d of %d books (%d failed, %d skipped)",
			result.Enriched, result.TotalBooks, result.Failed, result.Skipped)
		return nil
	}
}

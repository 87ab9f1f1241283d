package http

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mrlokans/bookshelf/internal/auth"
	"github.com/mrlokans/bookshelf/internal/config"
	"github.com/mrlokans/bookshelf/internal/tasks"
)

// RouterConfig holds the dependencies of the HTTP API. Optional features
// are switched off by leaving their field nil.
type RouterConfig struct {
	Version            string
	CORSAllowedOrigins []string

	Database Pinger
	Books    BookStore
	Resolver ISBNResolver

	Enricher   BookEnricher
	CoverCache CoverCache
	TaskClient *tasks.Client

	AuthService    *auth.Service
	AuthController *auth.AuthController
	AuthConfig     config.Auth
}

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(CORSMiddleware(cfg.CORSAllowedOrigins))
	router.Use(auth.SecurityHeadersMiddleware())
	router.Use(auth.StrictTransportSecurityMiddleware(31536000))
	router.Use(ErrorMiddleware())

	requireAuth := auth.NewMiddleware(cfg.AuthService, cfg.AuthConfig).RequireAuth()

	queue := cfg.TaskClient

	// Health endpoints
	health := NewHealthController(cfg.Database, cfg.Version)
	router.GET("/health", health.Status)
	router.GET("/ping", Ping)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if cfg.AuthController != nil {
		cfg.AuthController.RegisterRoutes(router)
	}

	booksGroup := router.Group("/books")

	var enrichQueue EnrichmentQueue
	if queue != nil {
		enrichQueue = queue
	}
	booksController := NewBooksController(cfg.Books, enrichQueue)
	booksGroup.GET("", booksController.ListBooks)
	booksGroup.GET("/:id", booksController.GetBook)
	booksGroup.POST("", requireAuth, booksController.CreateBook)
	booksGroup.PUT("/:id", requireAuth, booksController.UpdateBook)
	booksGroup.DELETE("/:id", requireAuth, booksController.DeleteBook)

	if cfg.Resolver != nil {
		lookupController := NewLookupController(cfg.Resolver)
		booksGroup.GET("/isbn-query/:isbn", lookupController.LookupISBN)
	}

	if cfg.Enricher != nil {
		var bulkQueue BulkEnrichmentQueue
		if queue != nil {
			bulkQueue = queue
		}
		metadataController := NewMetadataController(cfg.Enricher, bulkQueue)
		booksGroup.POST("/:id/enrich", requireAuth, metadataController.EnrichBook)
		booksGroup.POST("/enrich-all", requireAuth, metadataController.EnrichAllMissing)
	}

	if cfg.CoverCache != nil {
		coversController := NewCoversController(cfg.CoverCache, cfg.Books)
		booksGroup.GET("/:id/cover", coversController.GetCover)
	}

	if queue != nil {
		tasksController := NewTasksController(queue)
		router.GET("/api/tasks/:id", requireAuth, tasksController.GetTaskStatus)
	}

	return router
}

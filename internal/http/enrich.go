package http

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mrlokans/bookshelf/internal/metadata"
)

// BookEnricher fills in missing book metadata from the ISBN providers.
type BookEnricher interface {
	EnrichBook(ctx context.Context, bookID uint) (*metadata.EnrichmentResult, error)
	IsRunning() bool
}

// BulkEnrichmentQueue schedules enrichment of the whole library.
type BulkEnrichmentQueue interface {
	EnqueueEnrichAll() (string, error)
}

// MetadataController handles book metadata enrichment endpoints.
type MetadataController struct {
	enricher BookEnricher
	queue    BulkEnrichmentQueue
}

// NewMetadataController creates a MetadataController. queue may be nil when
// the task queue is disabled, in which case bulk enrichment is unavailable.
func NewMetadataController(enricher BookEnricher, queue BulkEnrichmentQueue) *MetadataController {
	return &MetadataController{enricher: enricher, queue: queue}
}

// EnrichBook handles POST /books/:id/enrich.
func (mc *MetadataController) EnrichBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	result, err := mc.enricher.EnrichBook(ctx, id)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		respondError(c, http.StatusNotFound, "Book not found.")
	case errors.Is(err, metadata.ErrNoISBN):
		respondError(c, http.StatusBadRequest, "Book has no ISBN.")
	case errors.Is(err, metadata.ErrNotFound):
		respondError(c, http.StatusNotFound, "No metadata found for this ISBN.")
	case err != nil:
		_ = c.Error(err)
	default:
		c.JSON(http.StatusOK, result)
	}
}

// EnrichAllMissing handles POST /books/enrich-all by enqueuing a bulk run.
func (mc *MetadataController) EnrichAllMissing(c *gin.Context) {
	if mc.queue == nil {
		respondError(c, http.StatusServiceUnavailable, "task queue is not enabled")
		return
	}
	if mc.enricher.IsRunning() {
		respondError(c, http.StatusConflict, "metadata enrichment is already in progress")
		return
	}

	taskID, err := mc.queue.EnqueueEnrichAll()
	if err != nil {
		_ = c.Error(err)
		return
	}
	log.Printf("Enqueued bulk enrichment task %s", taskID)

	c.JSON(http.StatusAccepted, gin.H{
		"message": "metadata enrichment started",
		"taskId":  taskID,
	})
}

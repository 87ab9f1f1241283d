package tasks

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/bookshelf/internal/metadata"
)

// BulkEnricher enriches every book that is missing metadata.
type BulkEnricher interface {
	EnrichAllMissing(ctx context.Context) (*metadata.BulkEnrichmentResult, error)
}

// EnrichAllBooksTask triggers enrichment for all books missing metadata.
type EnrichAllBooksTask struct{}

// Config returns the queue configuration for bulk enrichment tasks.
func (t EnrichAllBooksTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "enrich_all_books",
		MaxAttempts: 1,
		Backoff:     time.Minute,
		Timeout:     60 * time.Minute, // Allow time to process all books
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// EnrichAllBooksProcessor creates a processor function for EnrichAllBooksTask.
func EnrichAllBooksProcessor(enricher BulkEnricher) backlite.QueueProcessor[EnrichAllBooksTask] {
	return func(ctx context.Context, task EnrichAllBooksTask) error {
		if enricher == nil {
			return fmt.Errorf("enricher not configured")
		}

		result, err := enricher.EnrichAllMissing(ctx)
		if errors.Is(err, metadata.ErrEnrichmentRunning) {
			log.Printf("[TASK] Bulk enrichment skipped: another run is in progress")
			return nil
		}
		if err != nil {
			return fmt.Errorf("enrich all books: %w", err)
		}

		log.Printf("[TASK] Enrichment complete: %d total, %d enriched, %d skipped, %d failed",
			result.TotalBooks, result.Enriched, result.Skipped, result.Failed)

		return nil
	}
}

// NewEnrichAllBooksQueue creates a backlite queue for bulk enrichment tasks.
func NewEnrichAllBooksQueue(enricher BulkEnricher) backlite.Queue {
	return backlite.NewQueue(EnrichAllBooksProcessor(enricher))
}

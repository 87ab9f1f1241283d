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

// BookEnricher fills in a single book's missing metadata.
type BookEnricher interface {
	EnrichBook(ctx context.Context, bookID uint) (*metadata.EnrichmentResult, error)
}

// EnrichBookTask enriches a single book's metadata from the ISBN providers.
type EnrichBookTask struct {
	BookID uint `json:"book_id"`
}

// Config returns the queue configuration for book enrichment tasks.
func (t EnrichBookTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "enrich_book",
		MaxAttempts: 3,
		Backoff:     30 * time.Second,
		Timeout:     2 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// EnrichBookProcessor creates a processor function for EnrichBookTask.
// Only transport failures are returned as errors so backlite retries them;
// a book without an ISBN or an ISBN nobody knows will not improve on retry.
func EnrichBookProcessor(enricher BookEnricher) backlite.QueueProcessor[EnrichBookTask] {
	return func(ctx context.Context, task EnrichBookTask) error {
		if enricher == nil {
			return fmt.Errorf("enricher not configured")
		}

		result, err := enricher.EnrichBook(ctx, task.BookID)
		switch {
		case errors.Is(err, metadata.ErrNoISBN), errors.Is(err, metadata.ErrNotFound):
			log.Printf("[TASK] Book %d: nothing to enrich (%v)", task.BookID, err)
			return nil
		case err != nil:
			return fmt.Errorf("enrich book %d: %w", task.BookID, err)
		}

		if len(result.FieldsUpdated) > 0 {
			log.Printf("[TASK] Enriched book %d (%s): updated %v via %s",
				task.BookID, result.Book.Title, result.FieldsUpdated, result.Source)
		} else {
			log.Printf("[TASK] Book %d (%s): no metadata updates needed",
				task.BookID, result.Book.Title)
		}

		return nil
	}
}

// NewEnrichBookQueue creates a backlite queue for book enrichment tasks.
func NewEnrichBookQueue(enricher BookEnricher) backlite.Queue {
	return backlite.NewQueue(EnrichBookProcessor(enricher))
}

package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"
)

// OrphanCleaner removes authors and genres that no book refers to.
type OrphanCleaner interface {
	DeleteOrphanAuthorsAndGenres() (authors, genres int64, err error)
}

// CleanupOrphansTask removes authors and genres left behind by deleted or edited books.
type CleanupOrphansTask struct{}

// Config returns the queue configuration for cleanup tasks.
func (t CleanupOrphansTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "cleanup_orphans",
		MaxAttempts: 1,
		Backoff:     time.Minute,
		Timeout:     time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// CleanupOrphansProcessor creates a processor function for CleanupOrphansTask.
func CleanupOrphansProcessor(cleaner OrphanCleaner) backlite.QueueProcessor[CleanupOrphansTask] {
	return func(ctx context.Context, task CleanupOrphansTask) error {
		if cleaner == nil {
			return fmt.Errorf("orphan cleaner not configured")
		}

		authors, genres, err := cleaner.DeleteOrphanAuthorsAndGenres()
		if err != nil {
			return fmt.Errorf("cleanup orphans: %w", err)
		}

		log.Printf("[TASK] Cleaned up %d orphan authors and %d orphan genres", authors, genres)
		return nil
	}
}

// NewCleanupOrphansQueue creates a backlite queue for orphan cleanup tasks.
func NewCleanupOrphansQueue(cleaner OrphanCleaner) backlite.Queue {
	return backlite.NewQueue(CleanupOrphansProcessor(cleaner))
}

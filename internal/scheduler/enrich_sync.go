// Package scheduler runs periodic background jobs on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// RunFunc performs one enrichment pass.
type RunFunc func(ctx context.Context) error

// EnrichSyncScheduler periodically fills in missing metadata for the library.
type EnrichSyncScheduler struct {
	schedule string
	run      RunFunc
	timeout  time.Duration

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	isSyncing  bool
	cancelFunc context.CancelFunc
}

// NewEnrichSyncScheduler creates a scheduler that calls run on the given
// five-field cron schedule.
func NewEnrichSyncScheduler(schedule string, run RunFunc) *EnrichSyncScheduler {
	return &EnrichSyncScheduler{
		schedule: schedule,
		run:      run,
		timeout:  time.Hour,
		cron:     cron.New(cron.WithParser(parser)),
	}
}

// Start registers the job and starts the cron loop. The scheduler stops when ctx is done.
func (s *EnrichSyncScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if err := ValidateSchedule(s.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", s.schedule, err)
	}

	entryID, err := s.cron.AddFunc(s.schedule, s.runSync)
	if err != nil {
		return fmt.Errorf("failed to schedule enrichment job: %w", err)
	}
	s.entryID = entryID

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true

	log.Printf("Enrichment scheduler: started with schedule '%s' (%s)",
		s.schedule, DescribeSchedule(s.schedule))

	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop stops the cron loop and waits for a running job to finish.
func (s *EnrichSyncScheduler) Stop() {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = false
	cancel := s.cancelFunc
	s.cancelFunc = nil
	s.mu.Unlock()

	// The job itself takes the lock, so wait outside of it.
	<-s.cron.Stop().Done()
	s.cron.Remove(s.entryID)
	if cancel != nil {
		cancel()
	}

	log.Printf("Enrichment scheduler: stopped")
}

// RunNow triggers an immediate enrichment pass in the background.
func (s *EnrichSyncScheduler) RunNow() {
	go s.runSync()
}

// IsRunning returns whether the scheduler is active.
func (s *EnrichSyncScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// IsSyncing returns whether an enrichment pass is in progress.
func (s *EnrichSyncScheduler) IsSyncing() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isSyncing
}

// NextRunTime returns when the next pass will occur, or nil when stopped.
func (s *EnrichSyncScheduler) NextRunTime() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}

	for _, entry := range s.cron.Entries() {
		if entry.ID == s.entryID {
			t := entry.Next
			return &t
		}
	}
	return nil
}

func (s *EnrichSyncScheduler) runSync() {
	s.mu.Lock()
	if s.isSyncing {
		s.mu.Unlock()
		log.Printf("Enrichment sync: skipped (already syncing)")
		return
	}
	s.isSyncing = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.isSyncing = false
		s.mu.Unlock()
	}()

	log.Printf("Enrichment sync: starting")
	startTime := time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if err := s.run(ctx); err != nil {
		log.Printf("Enrichment sync: failed after %v: %v", time.Since(startTime).Round(time.Millisecond), err)
		return
	}
	log.Printf("Enrichment sync: finished in %v", time.Since(startTime).Round(time.Millisecond))
}

// ValidateSchedule checks that schedule is a valid five-field cron expression.
func ValidateSchedule(schedule string) error {
	_, err := parser.Parse(schedule)
	return err
}

// DescribeSchedule returns a human-readable description of common schedules.
func DescribeSchedule(schedule string) string {
	switch schedule {
	case "0 * * * *":
		return "Every hour at :00"
	case "0 */6 * * *":
		return "Every 6 hours"
	case "0 0 * * *":
		return "Daily at midnight"
	case "0 3 * * *":
		return "Daily at 03:00"
	case "0 0 * * 0":
		return "Weekly on Sunday at midnight"
	default:
		return "Custom schedule: " + schedule
	}
}

// Package scheduler runs the periodic maintenance jobs.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"libroteca/internal/services"
)

// BlacklistPurgeScheduler sweeps expired token-blacklist entries on a
// cron schedule. One sweep also runs immediately at start so entries
// accumulated across a restart do not wait for the first tick.
type BlacklistPurgeScheduler struct {
	auth     *services.AuthService
	schedule string

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	cancelFunc context.CancelFunc
}

// NewBlacklistPurgeScheduler creates a scheduler with a standard
// five-field cron schedule.
func NewBlacklistPurgeScheduler(auth *services.AuthService, schedule string) *BlacklistPurgeScheduler {
	return &BlacklistPurgeScheduler{
		auth:     auth,
		schedule: schedule,
		cron:     cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
	}
}

// Start runs the startup sweep and begins the periodic schedule.
func (s *BlacklistPurgeScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	s.runPurge()

	entryID, err := s.cron.AddFunc(s.schedule, s.runPurge)
	if err != nil {
		return fmt.Errorf("failed to schedule blacklist purge: %w", err)
	}
	s.entryID = entryID

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true

	log.Printf("Blacklist purge scheduler: started with schedule '%s'", s.schedule)

	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop gracefully stops the scheduler, waiting for a running sweep.
func (s *BlacklistPurgeScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()

	s.isRunning = false
	s.cancelFunc = nil

	log.Printf("Blacklist purge scheduler: stopped")
}

// IsRunning returns whether the scheduler is active.
func (s *BlacklistPurgeScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// NextRunTime returns when the next sweep will occur.
func (s *BlacklistPurgeScheduler) NextRunTime() *time.Time {
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

func (s *BlacklistPurgeScheduler) runPurge() {
	if _, err := s.auth.PurgeBlacklist(); err != nil {
		log.Printf("Blacklist purge failed: %v", err)
	}
}

package scheduler

import (
	"context"
	"log"
	"time"

	"powerhub/internal/db"
	"powerhub/internal/rules"

	"github.com/robfig/cron/v3"
)

const historyRetentionDays = 30

// Scheduler runs the periodic maintenance jobs: reconciling the in-memory
// rule store with the database and pruning old device history.
type Scheduler struct {
	cron  *cron.Cron
	store *rules.Store
	db    *db.DB
}

// NewScheduler creates a scheduler; Start registers and runs the jobs
func NewScheduler(store *rules.Store, database *db.DB) *Scheduler {
	return &Scheduler{
		cron:  cron.New(),
		store: store,
		db:    database,
	}
}

// Start registers the maintenance jobs and starts the cron loop
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc("*/15 * * * *", s.reconcileRules); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc("30 3 * * *", s.pruneHistory); err != nil {
		return err
	}
	s.cron.Start()
	log.Println("SCHEDULER: maintenance jobs registered")
	return nil
}

// Stop halts the cron loop, waiting for running jobs to finish
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("SCHEDULER: stopped")
}

func (s *Scheduler) reconcileRules() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := s.store.Load(ctx); err != nil {
		log.Printf("SCHEDULER: rule reconcile failed: %v", err)
		return
	}
	log.Printf("SCHEDULER: rule store reconciled, %d rules", s.store.Len())
}

func (s *Scheduler) pruneHistory() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	pruned, err := s.db.PruneDeviceHistory(ctx, historyRetentionDays)
	if err != nil {
		log.Printf("SCHEDULER: history prune failed: %v", err)
		return
	}
	log.Printf("SCHEDULER: pruned %d history rows older than %d days", pruned, historyRetentionDays)
}

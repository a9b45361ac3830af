// Package scheduler runs background dividend maintenance: the nightly
// refresh cron job and an async per-symbol refresh queue fed by holding
// creation.
package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/dividendlab/cashflow-backend/internal/dividend"
)

// refreshQueueSize bounds pending per-symbol refresh tasks. Submissions
// beyond the bound are dropped with a log line; the nightly sweep covers
// any symbol that slips through.
const refreshQueueSize = 64

// taskTimeout caps one queued per-symbol refresh.
const taskTimeout = 2 * time.Minute

// Scheduler owns the cron runner and the refresh worker.
type Scheduler struct {
	cron     *cron.Cron
	service  *dividend.Service
	tasks    chan string
	done     chan struct{}
	stopOnce bool
}

// New creates a Scheduler around the dividend service.
func New(service *dividend.Service) *Scheduler {
	return &Scheduler{
		cron:    cron.New(cron.WithSeconds()),
		service: service,
		tasks:   make(chan string, refreshQueueSize),
		done:    make(chan struct{}),
	}
}

// Start registers the nightly refresh at the given cron spec (with seconds
// field) and launches the queue worker.
func (s *Scheduler) Start(spec string) error {
	_, err := s.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
		defer cancel()

		updated, err := s.service.RefreshAllDividends(ctx)
		if err != nil {
			log.Printf("Scheduler: nightly dividend refresh failed: %v", err)
			return
		}
		log.Printf("Scheduler: nightly dividend refresh updated %d symbols", updated)
	})
	if err != nil {
		return err
	}

	go s.worker()
	s.cron.Start()
	log.Printf("Scheduler: started with refresh spec %q", spec)
	return nil
}

// Stop halts the cron runner, waits for a running job to finish, and drains
// the worker.
func (s *Scheduler) Stop() {
	if s.stopOnce {
		return
	}
	s.stopOnce = true

	<-s.cron.Stop().Done()
	close(s.tasks)
	<-s.done
	log.Println("Scheduler: stopped")
}

// SubmitRefresh queues an async dividend refresh for one symbol, typically
// right after a holding is created. Non-blocking; a full queue drops the
// task.
func (s *Scheduler) SubmitRefresh(symbol string) {
	select {
	case s.tasks <- symbol:
	default:
		log.Printf("Scheduler: refresh queue full, dropping %s", symbol)
	}
}

// worker drains the refresh queue one symbol at a time. Refreshes are
// idempotent, so a retried or duplicated task is harmless.
func (s *Scheduler) worker() {
	defer close(s.done)

	for symbol := range s.tasks {
		ctx, cancel := context.WithTimeout(context.Background(), taskTimeout)
		inserted, err := s.service.RefreshSymbol(ctx, symbol)
		cancel()

		if err != nil {
			log.Printf("Scheduler: refresh for %s failed: %v", symbol, err)
			continue
		}
		if inserted > 0 {
			log.Printf("Scheduler: refresh for %s stored %d new events", symbol, inserted)
		}
	}
}

// Package scheduler wires up the cron job that periodically triggers a batch
// ingestion run, in addition to the externally-triggered HTTP endpoint.
package scheduler

import (
	"context"
	"fmt"
	"log"

	"github.com/robfig/cron/v3"

	"go-jobharvest/internal/models"
)

// Runner is one batch ingestion run.
type Runner interface {
	Run(ctx context.Context) models.RunResult
}

// Notifier receives the run outcome; used for the optional Telegram push.
type Notifier interface {
	NotifyRun(result models.RunResult)
}

type Scheduler struct {
	cron     *cron.Cron
	runner   Runner
	notifier Notifier
	spec     string
}

// New creates a Scheduler that fires every intervalHours hours. notifier may
// be nil.
func New(runner Runner, notifier Notifier, intervalHours int) *Scheduler {
	return &Scheduler{
		cron:     cron.New(cron.WithLogger(cron.DefaultLogger)),
		runner:   runner,
		notifier: notifier,
		spec:     fmt.Sprintf("@every %dh", intervalHours),
	}
}

// Start registers the job and starts the scheduler.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		s.runOnce(ctx)
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	s.cron.Start()
	log.Printf("[scheduler] cron started, spec: %s", s.spec)
	return nil
}

// Stop gracefully shuts down the scheduler.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	log.Println("[scheduler] cron stopped")
}

func (s *Scheduler) runOnce(ctx context.Context) {
	log.Println("[scheduler] scrape cycle started")
	result := s.runner.Run(ctx)
	if !result.Success {
		log.Printf("[scheduler] run failed: %s", result.Error)
	} else {
		log.Printf("[scheduler] run finished: found=%d saved=%d", result.JobsFound, result.JobsSaved)
	}
	if s.notifier != nil {
		s.notifier.NotifyRun(result)
	}
}

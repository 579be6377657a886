package jobs

import (
	"log"

	"github.com/robfig/cron/v3"
)

// Scheduler runs report generation on a cron schedule.
type Scheduler struct {
	cron *cron.Cron
}

// NewScheduler creates a new report scheduler.
func NewScheduler() *Scheduler {
	return &Scheduler{cron: cron.New()}
}

// Add registers fn to run on the given cron expression. It returns an
// error when the expression does not parse.
func (s *Scheduler) Add(spec string, fn func()) error {
	_, err := s.cron.AddFunc(spec, fn)
	return err
}

// Start starts the scheduler.
func (s *Scheduler) Start() {
	s.cron.Start()
	log.Println("Report scheduler started")
}

// Stop stops the scheduler. Runs already in flight finish.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	log.Println("Report scheduler stopped")
}

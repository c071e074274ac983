package reminders

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/unicoop/convenios-backend/internal/platform/logger"
)

// Runner is satisfied by *Job.
type Runner interface {
	Run(ctx context.Context) (int, error)
}

type Scheduler struct {
	cron    *cron.Cron
	runner  Runner
	timeout time.Duration
}

// NewScheduler uses six-field cron specs, seconds first.
func NewScheduler(runner Runner) *Scheduler {
	return &Scheduler{
		cron:    cron.New(cron.WithSeconds()),
		runner:  runner,
		timeout: 5 * time.Minute,
	}
}

// Start registers the job on spec and starts the cron loop.
func (s *Scheduler) Start(spec string) error {
	_, err := s.cron.AddFunc(spec, s.runOnce)
	if err != nil {
		return err
	}

	log.Printf("Reminder scheduler started (spec %q)", spec)
	s.cron.Start()
	return nil
}

// Stop waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Scheduler) runOnce() {
	ctx, cancel := context.WithTimeout(logger.WithRequestID(context.Background(), "cron-reminders"), s.timeout)
	defer cancel()

	if _, err := s.runner.Run(ctx); err != nil {
		logger.New(ctx).Error("reminders.schedule", err)
	}
}

// Package reminders nudges owners whose agreements have been waiting on review too long.
package reminders

import (
	"context"
	"time"

	"github.com/unicoop/convenios-backend/internal/convenios/domain"
	notifdomain "github.com/unicoop/convenios-backend/internal/notifications/domain"
	notifsvc "github.com/unicoop/convenios-backend/internal/notifications/service"
	"github.com/unicoop/convenios-backend/internal/platform/logger"
)

// StaleStore is satisfied by *repository.ConvenioRepository.
type StaleStore interface {
	ListStale(ctx context.Context, statuses []string, before time.Time) ([]domain.Convenio, error)
}

type Notifier interface {
	Notify(ctx context.Context, req notifsvc.Request) error
}

// pendingStatuses are the statuses that still need someone to act.
var pendingStatuses = []string{domain.StatusSubmitted, domain.StatusInReview}

type Job struct {
	store    StaleStore
	notifier Notifier
	after    time.Duration
	now      func() time.Time
}

// NewJob reminds about agreements untouched for staleDays. Values below one default to seven.
func NewJob(store StaleStore, notifier Notifier, staleDays int) *Job {
	if staleDays < 1 {
		staleDays = 7
	}
	return &Job{
		store:    store,
		notifier: notifier,
		after:    time.Duration(staleDays) * 24 * time.Hour,
		now:      time.Now,
	}
}

// Run sends one reminder per stale agreement and returns how many were sent.
func (j *Job) Run(ctx context.Context) (int, error) {
	log := logger.New(ctx)

	stale, err := j.store.ListStale(ctx, pendingStatuses, j.now().Add(-j.after))
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, c := range stale {
		err := j.notifier.Notify(ctx, notifsvc.Request{
			Event:      notifdomain.EventReminder,
			UserID:     c.OwnerID,
			ConvenioID: c.ID,
			Params:     notifdomain.Params{ConvenioTitle: c.Title},
		})
		if err != nil {
			log.Errorf("reminders.run", "convenio_id=%s error=%v", c.ID, err)
			continue
		}
		sent++
	}
	log.Infof("reminders.run", "stale=%d sent=%d", len(stale), sent)
	return sent, nil
}

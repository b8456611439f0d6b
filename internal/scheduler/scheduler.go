// Package scheduler publishes reminders for events that are about to start.
package scheduler

import (
	"context"
	"sort"
	"time"

	"github.com/lomoval/weekcal/internal/app"
	"github.com/lomoval/weekcal/internal/rabbit"
	log "github.com/sirupsen/logrus"
)

type Config struct {
	CheckInterval time.Duration
	// Lead is how long before its start an event is announced.
	Lead time.Duration
}

type Scheduler struct {
	calendar  *app.App
	publisher rabbit.Publisher
	owner     string
	interval  time.Duration
	lead      time.Duration
	clock     func() time.Time
	// sent holds the events already announced in a window that failed part way.
	sent map[string]struct{}
}

func New(config Config, calendar *app.App, publisher rabbit.Publisher, ownerID string) *Scheduler {
	return &Scheduler{
		calendar:  calendar,
		publisher: publisher,
		owner:     ownerID,
		interval:  config.CheckInterval,
		lead:      config.Lead,
		clock:     time.Now,
		sent:      make(map[string]struct{}),
	}
}

// Run checks every interval until ctx is done. The first check covers the
// starts from now to now+lead, each next one continues from the previous
// window end. A failed window is retried and its sent reminders are skipped.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	from := s.clock()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			to := s.clock().Add(s.lead)
			if err := s.Check(ctx, from, to); err != nil {
				log.Errorf("failed to check events: %v", err)
				continue
			}
			from = to
			clear(s.sent)
		}
	}
}

// Check publishes a reminder for every event starting in [from:to) that was
// not sent by an earlier failed check of the window.
func (s *Scheduler) Check(ctx context.Context, from, to time.Time) error {
	log.Debugf("get events: %s - %s", from, to)
	events, err := s.calendar.UpcomingEvents(ctx, s.owner, from, to)
	if err != nil {
		return err
	}
	sort.Slice(events, func(i, j int) bool { return events[i].Start.Before(events[j].Start) })
	now := s.clock()
	for _, e := range events {
		if _, ok := s.sent[e.ID]; ok {
			continue
		}
		log.Debugf("send reminder: %s %q", e.ID, e.Title)
		if err := rabbit.PublishMessage(ctx, s.publisher, rabbit.NewReminder(e, now)); err != nil {
			return err
		}
		s.sent[e.ID] = struct{}{}
	}
	return nil
}

package app

import (
	"context"
	"time"

	"github.com/lomoval/weekcal/internal/storage"
)

type Action string

const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
	ActionDeleted Action = "deleted"
)

// Change describes a committed mutation of an event.
type Change struct {
	Action Action
	Event  storage.Event
	At     time.Time
}

// Notifier receives committed changes. Implementations must not block the
// caller for long and handle their own failures.
type Notifier interface {
	Notify(ctx context.Context, change Change)
}

type NotifierFunc func(ctx context.Context, change Change)

func (f NotifierFunc) Notify(ctx context.Context, change Change) {
	f(ctx, change)
}

func (a *App) notify(ctx context.Context, action Action, e storage.Event) {
	change := Change{Action: action, Event: e, At: time.Now()}
	for _, n := range a.notifiers {
		n.Notify(ctx, change)
	}
}

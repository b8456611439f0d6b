package storage

import (
	"context"
	"errors"
	"sort"
	"time"
)

var (
	ErrNotFoundEvent    = errors.New("event not found")
	ErrStoreUnavailable = errors.New("store unavailable")
)

// Storage persists events. Every read and write is scoped by the owner ID;
// an event of another owner is reported exactly like a missing one.
type Storage interface {
	Connect(ctx context.Context) error
	Close(ctx context.Context) error
	AddEvent(ctx context.Context, e *Event) error
	QueryOverlapping(ctx context.Context, ownerID string, start, end time.Time) ([]Event, error)
	UpdateEvent(ctx context.Context, id, ownerID string, p Patch) (Event, error)
	RemoveEvent(ctx context.Context, id, ownerID string) (Event, error)
}

// SortByStart orders events by start time, then by ID.
func SortByStart(events []Event) {
	sort.Slice(events, func(i, j int) bool {
		if events[i].Start.Equal(events[j].Start) {
			return events[i].ID < events[j].ID
		}
		return events[i].Start.Before(events[j].Start)
	})
}

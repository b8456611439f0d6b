package storage

import (
	"time"
)

// DefaultColor is stored when an event is created without a color.
const DefaultColor = "#3b82f6"

type Event struct {
	ID          string    `db:"id" json:"id"`
	OwnerID     string    `db:"owner_id" json:"ownerId"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	Start       time.Time `db:"start_timestamp" json:"start"`
	End         time.Time `db:"end_timestamp" json:"end"`
	Color       string    `db:"color" json:"color"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`
}

// Overlaps reports whether the event intersects the half-open range [start:end).
func (e Event) Overlaps(start, end time.Time) bool {
	return e.Start.Before(end) && e.End.After(start)
}

// Prepare fills the store-maintained fields of a new event.
func (e *Event) Prepare(now time.Time) {
	if e.Color == "" {
		e.Color = DefaultColor
	}
	e.CreatedAt = now
	e.UpdatedAt = now
}

// Patch holds a partial update. Nil fields are left unchanged.
type Patch struct {
	Title       *string
	Description *string
	Start       *time.Time
	End         *time.Time
	Color       *string
}

func (p Patch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Start == nil && p.End == nil && p.Color == nil
}

// Apply copies the supplied fields into e and bumps UpdatedAt.
func (p Patch) Apply(e *Event, now time.Time) {
	if p.Title != nil {
		e.Title = *p.Title
	}
	if p.Description != nil {
		e.Description = *p.Description
	}
	if p.Start != nil {
		e.Start = *p.Start
	}
	if p.End != nil {
		e.End = *p.End
	}
	if p.Color != nil {
		e.Color = *p.Color
	}
	e.UpdatedAt = now
}

// Now returns the current time at the precision events are stored with.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

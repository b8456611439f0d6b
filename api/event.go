// Package api holds the JSON shapes shared by the calendar server and its clients.
package api

import (
	"time"

	"github.com/lomoval/weekcal/internal/storage"
)

// TimeLayout is the wire form of instants: UTC with milliseconds.
const TimeLayout = "2006-01-02T15:04:05.000Z07:00"

type Event struct {
	ID          string `json:"_id,omitempty"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Start       string `json:"start"`
	End         string `json:"end"`
	Color       string `json:"color,omitempty"`
	CreatedAt   string `json:"createdAt,omitempty"`
	UpdatedAt   string `json:"updatedAt,omitempty"`
}

// EventCreate is the body of a create request. Start and End are kept as
// strings so the service can tell a missing bound from a malformed one.
type EventCreate struct {
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
	Start       string  `json:"start"`
	End         string  `json:"end"`
	Color       *string `json:"color,omitempty"`
}

// EventPatch is the body of an update request, absent members are left untouched.
type EventPatch struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Start       *string `json:"start,omitempty"`
	End         *string `json:"end,omitempty"`
	Color       *string `json:"color,omitempty"`
}

type CreateResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    Event  `json:"data"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type RangeRequest struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type EventsResponse struct {
	Events []Event `json:"events"`
}

type UpdateRequest struct {
	ID    string     `json:"id"`
	Patch EventPatch `json:"patch"`
}

type RemoveRequest struct {
	ID string `json:"id"`
}

func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

func FromStorage(e storage.Event) Event {
	ev := Event{
		ID:          e.ID,
		Title:       e.Title,
		Description: e.Description,
		Start:       FormatTime(e.Start),
		End:         FormatTime(e.End),
		Color:       e.Color,
	}
	if !e.CreatedAt.IsZero() {
		ev.CreatedAt = FormatTime(e.CreatedAt)
	}
	if !e.UpdatedAt.IsZero() {
		ev.UpdatedAt = FormatTime(e.UpdatedAt)
	}
	return ev
}

func FromStorageList(events []storage.Event) []Event {
	apiEvents := make([]Event, 0, len(events))
	for _, e := range events {
		apiEvents = append(apiEvents, FromStorage(e))
	}
	return apiEvents
}

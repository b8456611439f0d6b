// Package ics renders calendar events as an iCalendar document.
package ics

import (
	"io"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/lomoval/weekcal/internal/storage"
)

const (
	productID   = "-//weekcal//calendar//EN"
	uidDomain   = "@weekcal"
	ContentType = "text/calendar; charset=utf-8"
)

func Calendar(events []storage.Event, now time.Time) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)

	for _, e := range events {
		ve := cal.AddEvent(e.ID + uidDomain)
		ve.SetDtStampTime(now)
		ve.SetStartAt(e.Start)
		ve.SetEndAt(e.End)
		ve.SetSummary(e.Title)
		if e.Description != "" {
			ve.SetDescription(e.Description)
		}
		if !e.CreatedAt.IsZero() {
			ve.SetCreatedTime(e.CreatedAt)
		}
		if !e.UpdatedAt.IsZero() {
			ve.SetModifiedAt(e.UpdatedAt)
		}
		if e.Color != "" {
			ve.SetProperty(ical.ComponentProperty("COLOR"), e.Color)
		}
	}
	return cal
}

func Write(w io.Writer, events []storage.Event, now time.Time) error {
	_, err := io.WriteString(w, Calendar(events, now).Serialize())
	return err
}

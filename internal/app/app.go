package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lomoval/weekcal/internal/storage"
	"github.com/lomoval/weekcal/internal/validator"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	ErrMissingField = errors.New("required field is missing")
	ErrInvalidRange = errors.New("invalid time range")
	ErrInvalidField = errors.New("invalid field value")
)

var tracer = otel.Tracer("github.com/lomoval/weekcal/internal/app")

type CreateInput struct {
	Title       string  `validate:"required|maxlen:256"`
	Description *string `validate:"maxlen:4096"`
	Start       string  `validate:"required"`
	End         string  `validate:"required"`
	Color       *string `validate:"maxlen:32"`
}

// UpdateInput is a partial update, nil fields are not changed.
type UpdateInput struct {
	Title       *string `validate:"required|maxlen:256"`
	Description *string `validate:"maxlen:4096"`
	Start       *string `validate:"required"`
	End         *string `validate:"required"`
	Color       *string `validate:"maxlen:32"`
}

type App struct {
	Storage   storage.Storage
	notifiers []Notifier
}

func New(storage storage.Storage, notifiers ...Notifier) *App {
	return &App{Storage: storage, notifiers: notifiers}
}

func (a *App) ListInRange(ctx context.Context, ownerID, start, end string) (events []storage.Event, err error) {
	ctx, span := startSpan(ctx, "app.ListInRange", ownerID)
	defer func() { endSpan(span, err) }()

	if start == "" || end == "" {
		return nil, fmt.Errorf("start and end are required: %w", ErrMissingField)
	}
	startTime, err := ParseInstant(start)
	if err != nil {
		return nil, err
	}
	endTime, err := ParseInstant(end)
	if err != nil {
		return nil, err
	}
	return a.Storage.QueryOverlapping(ctx, ownerID, startTime, endTime)
}

func (a *App) CreateEvent(ctx context.Context, ownerID string, in CreateInput) (e storage.Event, err error) {
	ctx, span := startSpan(ctx, "app.CreateEvent", ownerID)
	defer func() { endSpan(span, err) }()

	if err := validate(in); err != nil {
		return storage.Event{}, err
	}
	e = storage.Event{OwnerID: ownerID, Title: in.Title}
	if e.Start, err = ParseInstant(in.Start); err != nil {
		return storage.Event{}, err
	}
	if e.End, err = ParseInstant(in.End); err != nil {
		return storage.Event{}, err
	}
	if in.Description != nil {
		e.Description = *in.Description
	}
	if in.Color != nil {
		e.Color = *in.Color
	}

	if err := a.Storage.AddEvent(ctx, &e); err != nil {
		return storage.Event{}, err
	}
	a.notify(ctx, ActionCreated, e)
	return e, nil
}

func (a *App) UpdateEvent(ctx context.Context, id, ownerID string, in UpdateInput) (e storage.Event, err error) {
	ctx, span := startSpan(ctx, "app.UpdateEvent", ownerID)
	defer func() { endSpan(span, err) }()

	if err := validate(in); err != nil {
		return storage.Event{}, err
	}
	p := storage.Patch{Title: in.Title, Description: in.Description, Color: in.Color}
	if in.Start != nil {
		start, err := ParseInstant(*in.Start)
		if err != nil {
			return storage.Event{}, err
		}
		p.Start = &start
	}
	if in.End != nil {
		end, err := ParseInstant(*in.End)
		if err != nil {
			return storage.Event{}, err
		}
		p.End = &end
	}

	e, err = a.Storage.UpdateEvent(ctx, id, ownerID, p)
	if err != nil {
		return storage.Event{}, err
	}
	// an empty patch only touches updatedAt, listeners have nothing to redraw
	if !p.IsEmpty() {
		a.notify(ctx, ActionUpdated, e)
	}
	return e, nil
}

func (a *App) RemoveEvent(ctx context.Context, id, ownerID string) (e storage.Event, err error) {
	ctx, span := startSpan(ctx, "app.RemoveEvent", ownerID)
	defer func() { endSpan(span, err) }()

	e, err = a.Storage.RemoveEvent(ctx, id, ownerID)
	if err != nil {
		return storage.Event{}, err
	}
	a.notify(ctx, ActionDeleted, e)
	return e, nil
}

// UpcomingEvents returns events starting in [from:to).
func (a *App) UpcomingEvents(ctx context.Context, ownerID string, from, to time.Time) ([]storage.Event, error) {
	events, err := a.Storage.QueryOverlapping(ctx, ownerID, from, to)
	if err != nil {
		return nil, err
	}
	upcoming := events[:0]
	for _, e := range events {
		if !e.Start.Before(from) && e.Start.Before(to) {
			upcoming = append(upcoming, e)
		}
	}
	return upcoming, nil
}

func validate(in interface{}) error {
	err := validator.Validate(in)
	if err == nil {
		return nil
	}
	var vErrors validator.ValidationErrors
	switch {
	case errors.Is(err, validator.ErrValidateRequired):
		return fmt.Errorf("%w: %v", ErrMissingField, err)
	case errors.As(err, &vErrors):
		return fmt.Errorf("%w: %v", ErrInvalidField, err)
	default:
		return err
	}
}

func startSpan(ctx context.Context, name, ownerID string) (context.Context, trace.Span) {
	return tracer.Start(ctx, name, trace.WithAttributes(attribute.String("calendar.owner", ownerID)))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// Package weekview holds the state of a Monday-aligned week view: the shown
// week, its events and the editor opened from a slot or an event.
package weekview

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/lomoval/weekcal/internal/client"
	"github.com/lomoval/weekcal/internal/util"
	log "github.com/sirupsen/logrus"
)

const (
	DaysInWeek   = 7
	DefaultColor = "#3b82f6"
	slotLength   = time.Hour
)

var (
	ErrIncompleteDraft = errors.New("title, start and end are required")
	ErrNothingSelected = errors.New("no event is selected")
	ErrStaleResponse   = errors.New("response is older than the latest request")
)

// Gateway is the remote side of the view, implemented by client.Client.
type Gateway interface {
	List(ctx context.Context, start, end time.Time) ([]client.Event, error)
	Create(ctx context.Context, d client.Draft) (client.Event, error)
	Update(ctx context.Context, id string, p client.Patch) (client.Event, error)
	Delete(ctx context.Context, id string) error
}

type Slot struct {
	Start time.Time
	End   time.Time
}

// Form is the editor content. An empty ID saves a new event.
type Form struct {
	ID          string
	Title       string
	Description string
	Start       time.Time
	End         time.Time
	Color       string
}

type Snapshot struct {
	CurrentDate time.Time
	WeekStart   time.Time
	WeekEnd     time.Time
	Days        []time.Time
	Events      []client.Event
	Selected    *client.Event
	Slot        *Slot
	ModalOpen   bool
}

type View struct {
	mu        sync.Mutex
	gateway   Gateway
	loc       *time.Location
	clock     func() time.Time
	current   time.Time
	events    []client.Event
	selected  *client.Event
	slot      *Slot
	modalOpen bool
	token     uint64
}

type Option func(v *View)

func WithLocation(loc *time.Location) Option {
	return func(v *View) {
		v.loc = loc
	}
}

func WithClock(clock func() time.Time) Option {
	return func(v *View) {
		v.clock = clock
	}
}

// New creates a view anchored at the current date. Nothing is fetched until
// the first Refresh or navigation.
func New(gateway Gateway, opts ...Option) *View {
	v := &View{gateway: gateway, loc: time.Local, clock: time.Now}
	for _, opt := range opts {
		opt(v)
	}
	v.current = v.clock().In(v.loc)
	return v
}

// WeekStart is the Monday midnight of the anchored week and WeekEnd the
// exclusive end seven days later.
func (v *View) WeekStart() time.Time {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.weekStart()
}

func (v *View) WeekEnd() time.Time {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.weekStart().AddDate(0, 0, DaysInWeek)
}

func (v *View) weekStart() time.Time {
	return util.StartOfWeek(v.current, time.Monday)
}

func (v *View) SetDate(ctx context.Context, t time.Time) error {
	v.mu.Lock()
	v.current = t.In(v.loc)
	v.mu.Unlock()
	return v.Refresh(ctx)
}

func (v *View) NextWeek(ctx context.Context) error {
	return v.shift(ctx, DaysInWeek)
}

func (v *View) PrevWeek(ctx context.Context) error {
	return v.shift(ctx, -DaysInWeek)
}

func (v *View) Today(ctx context.Context) error {
	return v.SetDate(ctx, v.clock())
}

func (v *View) shift(ctx context.Context, days int) error {
	v.mu.Lock()
	v.current = v.current.AddDate(0, 0, days)
	v.mu.Unlock()
	return v.Refresh(ctx)
}

// Refresh replaces the events with the anchored week's. When a newer
// refresh starts before this one completes, this result is dropped and
// ErrStaleResponse is returned.
func (v *View) Refresh(ctx context.Context) error {
	v.mu.Lock()
	v.token++
	token := v.token
	start := v.weekStart()
	end := start.AddDate(0, 0, DaysInWeek)
	v.mu.Unlock()

	events, err := v.gateway.List(ctx, start, end)

	v.mu.Lock()
	defer v.mu.Unlock()
	if token != v.token {
		log.Debugf("dropping events of %s: a newer request is pending", start.Format(time.DateOnly))
		return ErrStaleResponse
	}
	if err != nil {
		return fmt.Errorf("failed to load week of %s: %w", start.Format(time.DateOnly), err)
	}
	v.events = events
	return nil
}

// ClickSlot opens a one-hour draft at hour of day.
func (v *View) ClickSlot(day time.Time, hour int) {
	start := util.TruncateToDay(day.In(v.loc)).Add(time.Duration(hour) * time.Hour)

	v.mu.Lock()
	defer v.mu.Unlock()
	v.slot = &Slot{Start: start, End: start.Add(slotLength)}
	v.selected = nil
	v.modalOpen = true
}

func (v *View) ClickEvent(e client.Event) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.selected = &e
	v.slot = nil
	v.modalOpen = true
}

func (v *View) CloseModal() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.closeModal()
}

func (v *View) closeModal() {
	v.modalOpen = false
	v.selected = nil
	v.slot = nil
}

// Editor returns the form prefilled from the selected event or the clicked slot.
func (v *View) Editor() Form {
	v.mu.Lock()
	defer v.mu.Unlock()
	switch {
	case v.selected != nil:
		f := Form{
			ID:          v.selected.ID,
			Title:       v.selected.Title,
			Description: v.selected.Description,
			Start:       v.selected.Start,
			End:         v.selected.End,
			Color:       v.selected.Color,
		}
		if f.Color == "" {
			f.Color = DefaultColor
		}
		return f
	case v.slot != nil:
		return Form{Start: v.slot.Start, End: v.slot.End, Color: DefaultColor}
	default:
		return Form{Color: DefaultColor}
	}
}

// Save creates or updates the event of the form. The editor closes only
// after the gateway call succeeds.
func (v *View) Save(ctx context.Context, f Form) error {
	if strings.TrimSpace(f.Title) == "" || f.Start.IsZero() || f.End.IsZero() {
		return ErrIncompleteDraft
	}

	if f.ID == "" {
		created, err := v.gateway.Create(ctx, client.Draft{
			Title:       f.Title,
			Description: f.Description,
			Start:       f.Start,
			End:         f.End,
			Color:       f.Color,
		})
		if err != nil {
			return fmt.Errorf("failed to create event: %w", err)
		}
		v.mu.Lock()
		v.events = append(v.events, created)
		v.closeModal()
		v.mu.Unlock()
		return nil
	}

	updated, err := v.gateway.Update(ctx, f.ID, client.Patch{
		Title:       &f.Title,
		Description: &f.Description,
		Start:       &f.Start,
		End:         &f.End,
		Color:       &f.Color,
	})
	if err != nil {
		return fmt.Errorf("failed to update event %q: %w", f.ID, err)
	}
	v.mu.Lock()
	for i := range v.events {
		if v.events[i].ID == updated.ID {
			v.events[i] = updated
		}
	}
	v.closeModal()
	v.mu.Unlock()
	return nil
}

// Delete removes the selected event.
func (v *View) Delete(ctx context.Context) error {
	v.mu.Lock()
	if v.selected == nil || v.selected.ID == "" {
		v.mu.Unlock()
		return ErrNothingSelected
	}
	id := v.selected.ID
	v.mu.Unlock()

	if err := v.gateway.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete event %q: %w", id, err)
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	kept := v.events[:0]
	for _, e := range v.events {
		if e.ID != id {
			kept = append(kept, e)
		}
	}
	v.events = kept
	v.closeModal()
	return nil
}

func (v *View) Snapshot() Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()
	start := v.weekStart()
	s := Snapshot{
		CurrentDate: v.current,
		WeekStart:   start,
		WeekEnd:     start.AddDate(0, 0, DaysInWeek),
		Days:        util.Days(start, DaysInWeek),
		Events:      append([]client.Event(nil), v.events...),
		ModalOpen:   v.modalOpen,
	}
	if v.selected != nil {
		e := *v.selected
		s.Selected = &e
	}
	if v.slot != nil {
		slot := *v.slot
		s.Slot = &slot
	}
	return s
}

// RangeLabel is the header of the shown week: "Jan 1 – 7, 2024" or
// "Jan 29 – Feb 4, 2024" when the week spans two months.
func (v *View) RangeLabel() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return RangeLabel(v.weekStart())
}

func RangeLabel(weekStart time.Time) string {
	last := weekStart.AddDate(0, 0, DaysInWeek-1)
	if weekStart.Month() == last.Month() {
		return weekStart.Format("Jan 2") + " – " + last.Format("2, 2006")
	}
	return weekStart.Format("Jan 2") + " – " + last.Format("Jan 2, 2006")
}

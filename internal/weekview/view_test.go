package weekview

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/lomoval/weekcal/internal/client"
	"github.com/stretchr/testify/require"
)

type listCall struct {
	start, end time.Time
}

type fakeGateway struct {
	mu      sync.Mutex
	lists   []listCall
	events  map[time.Time][]client.Event
	block   map[time.Time]chan struct{}
	err     error
	nextID  int
	deleted []string
	updates []client.Patch
}

func newGateway() *fakeGateway {
	return &fakeGateway{events: map[time.Time][]client.Event{}, block: map[time.Time]chan struct{}{}}
}

func (g *fakeGateway) List(_ context.Context, start, end time.Time) ([]client.Event, error) {
	g.mu.Lock()
	g.lists = append(g.lists, listCall{start, end})
	wait := g.block[start]
	events := g.events[start]
	err := g.err
	g.mu.Unlock()
	if wait != nil {
		<-wait
	}
	return events, err
}

func (g *fakeGateway) Create(_ context.Context, d client.Draft) (client.Event, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.err != nil {
		return client.Event{}, g.err
	}
	g.nextID++
	return client.Event{
		ID:          fmt.Sprintf("id-%d", g.nextID),
		Title:       d.Title,
		Description: d.Description,
		Start:       d.Start,
		End:         d.End,
		Color:       d.Color,
	}, nil
}

func (g *fakeGateway) Update(_ context.Context, id string, p client.Patch) (client.Event, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.err != nil {
		return client.Event{}, g.err
	}
	g.updates = append(g.updates, p)
	return client.Event{ID: id, Title: *p.Title, Start: *p.Start, End: *p.End, Color: *p.Color}, nil
}

func (g *fakeGateway) Delete(_ context.Context, id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.err != nil {
		return g.err
	}
	g.deleted = append(g.deleted, id)
	return nil
}

func date(year int, month time.Month, day, hour int) time.Time {
	return time.Date(year, month, day, hour, 0, 0, 0, time.UTC)
}

func newView(g Gateway, now time.Time) *View {
	return New(g, WithLocation(time.UTC), WithClock(func() time.Time { return now }))
}

func TestWeekBoundaries(t *testing.T) {
	tests := []struct {
		current time.Time
		start   time.Time
	}{
		{date(2024, time.January, 1, 0), date(2024, time.January, 1, 0)},
		{date(2024, time.January, 3, 15), date(2024, time.January, 1, 0)},
		{date(2024, time.January, 7, 23), date(2024, time.January, 1, 0)},
		{date(2024, time.January, 8, 0), date(2024, time.January, 8, 0)},
		{date(2025, time.January, 1, 12), date(2024, time.December, 30, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.current.Format(time.DateTime), func(t *testing.T) {
			v := newView(newGateway(), tt.current)
			require.Equal(t, tt.start, v.WeekStart())
			require.Equal(t, tt.start.AddDate(0, 0, 7), v.WeekEnd())
			require.Equal(t, time.Monday, v.WeekStart().Weekday())
		})
	}
}

func TestNavigationFetchesWeek(t *testing.T) {
	g := newGateway()
	monday := date(2024, time.January, 1, 0)
	g.events[monday] = []client.Event{{ID: "a"}}
	g.events[monday.AddDate(0, 0, 7)] = []client.Event{{ID: "b"}, {ID: "c"}}

	v := newView(g, date(2024, time.January, 3, 10))
	ctx := context.Background()

	require.NoError(t, v.Refresh(ctx))
	require.Len(t, v.Snapshot().Events, 1)

	require.NoError(t, v.NextWeek(ctx))
	snap := v.Snapshot()
	require.Equal(t, monday.AddDate(0, 0, 7), snap.WeekStart)
	require.Len(t, snap.Events, 2)
	require.Len(t, snap.Days, 7)
	require.Equal(t, monday.AddDate(0, 0, 13), snap.Days[6])

	require.NoError(t, v.PrevWeek(ctx))
	require.NoError(t, v.PrevWeek(ctx))
	require.Equal(t, monday.AddDate(0, 0, -7), v.WeekStart())
	require.Empty(t, v.Snapshot().Events)

	require.NoError(t, v.Today(ctx))
	require.Equal(t, monday, v.WeekStart())

	require.NoError(t, v.SetDate(ctx, date(2024, time.March, 14, 9)))
	require.Equal(t, date(2024, time.March, 11, 0), v.WeekStart())

	require.Len(t, g.lists, 6)
	for _, call := range g.lists {
		require.Equal(t, call.start.AddDate(0, 0, 7), call.end)
	}
}

func TestStaleFetchIsDiscarded(t *testing.T) {
	g := newGateway()
	first := date(2024, time.January, 1, 0)
	second := first.AddDate(0, 0, 7)
	g.events[first] = []client.Event{{ID: "old"}}
	g.events[second] = []client.Event{{ID: "new"}}
	release := make(chan struct{})
	g.block[first] = release

	v := newView(g, date(2024, time.January, 2, 0))
	ctx := context.Background()

	staleErr := make(chan error, 1)
	go func() {
		staleErr <- v.Refresh(ctx)
	}()
	require.Eventually(t, func() bool {
		g.mu.Lock()
		defer g.mu.Unlock()
		return len(g.lists) == 1
	}, 2*time.Second, 5*time.Millisecond)

	require.NoError(t, v.NextWeek(ctx))
	close(release)

	require.ErrorIs(t, <-staleErr, ErrStaleResponse)
	events := v.Snapshot().Events
	require.Len(t, events, 1)
	require.Equal(t, "new", events[0].ID)
}

func TestRefreshError(t *testing.T) {
	g := newGateway()
	g.err = errors.New("connection refused")
	v := newView(g, date(2024, time.January, 2, 0))

	err := v.Refresh(context.Background())
	require.ErrorIs(t, err, g.err)
}

func TestClickSlot(t *testing.T) {
	v := newView(newGateway(), date(2024, time.January, 2, 0))
	v.ClickEvent(client.Event{ID: "x"})
	v.ClickSlot(date(2024, time.January, 3, 17), 9)

	snap := v.Snapshot()
	require.True(t, snap.ModalOpen)
	require.Nil(t, snap.Selected)
	require.Equal(t, &Slot{Start: date(2024, time.January, 3, 9), End: date(2024, time.January, 3, 10)}, snap.Slot)

	f := v.Editor()
	require.Empty(t, f.ID)
	require.Empty(t, f.Title)
	require.Equal(t, date(2024, time.January, 3, 9), f.Start)
	require.Equal(t, DefaultColor, f.Color)
}

func TestClickEvent(t *testing.T) {
	v := newView(newGateway(), date(2024, time.January, 2, 0))
	v.ClickSlot(date(2024, time.January, 3, 0), 9)
	e := client.Event{ID: "x", Title: "Meeting", Start: date(2024, time.January, 3, 9), End: date(2024, time.January, 3, 10)}
	v.ClickEvent(e)

	snap := v.Snapshot()
	require.True(t, snap.ModalOpen)
	require.Nil(t, snap.Slot)
	require.Equal(t, &e, snap.Selected)

	f := v.Editor()
	require.Equal(t, "x", f.ID)
	require.Equal(t, "Meeting", f.Title)
	require.Equal(t, DefaultColor, f.Color)

	v.CloseModal()
	snap = v.Snapshot()
	require.False(t, snap.ModalOpen)
	require.Nil(t, snap.Selected)
}

func TestSaveCreatesAndAppends(t *testing.T) {
	g := newGateway()
	monday := date(2024, time.January, 1, 0)
	g.events[monday] = []client.Event{{ID: "a"}}
	v := newView(g, monday)
	ctx := context.Background()
	require.NoError(t, v.Refresh(ctx))

	v.ClickSlot(monday, 10)
	f := v.Editor()
	f.Title = "Meeting"
	require.NoError(t, v.Save(ctx, f))

	snap := v.Snapshot()
	require.False(t, snap.ModalOpen)
	require.Len(t, snap.Events, 2)
	require.Equal(t, "id-1", snap.Events[1].ID)
	require.Equal(t, date(2024, time.January, 1, 10), snap.Events[1].Start)
	require.Equal(t, date(2024, time.January, 1, 11), snap.Events[1].End)
}

func TestSaveUpdatesInPlace(t *testing.T) {
	g := newGateway()
	monday := date(2024, time.January, 1, 0)
	original := client.Event{ID: "a", Title: "Old", Start: date(2024, time.January, 1, 9), End: date(2024, time.January, 1, 10)}
	g.events[monday] = []client.Event{{ID: "z"}, original}
	v := newView(g, monday)
	ctx := context.Background()
	require.NoError(t, v.Refresh(ctx))

	v.ClickEvent(original)
	f := v.Editor()
	f.Title = "New"
	require.NoError(t, v.Save(ctx, f))

	snap := v.Snapshot()
	require.False(t, snap.ModalOpen)
	require.Len(t, snap.Events, 2)
	require.Equal(t, "z", snap.Events[0].ID)
	require.Equal(t, "New", snap.Events[1].Title)
	require.Equal(t, DefaultColor, *g.updates[0].Color)
}

func TestSaveRefusesIncompleteDraft(t *testing.T) {
	g := newGateway()
	v := newView(g, date(2024, time.January, 1, 0))
	v.ClickSlot(date(2024, time.January, 1, 0), 10)

	f := v.Editor()
	require.ErrorIs(t, v.Save(context.Background(), f), ErrIncompleteDraft)
	f.Title = "   "
	require.ErrorIs(t, v.Save(context.Background(), f), ErrIncompleteDraft)
	f.Title = "x"
	f.End = time.Time{}
	require.ErrorIs(t, v.Save(context.Background(), f), ErrIncompleteDraft)

	require.True(t, v.Snapshot().ModalOpen)
	require.Zero(t, g.nextID)
}

func TestSaveFailureKeepsModalOpen(t *testing.T) {
	g := newGateway()
	v := newView(g, date(2024, time.January, 1, 0))
	v.ClickSlot(date(2024, time.January, 1, 0), 10)
	g.err = &client.StatusError{StatusCode: 400, Message: "end must be after start"}

	f := v.Editor()
	f.Title = "x"
	err := v.Save(context.Background(), f)
	var statusErr *client.StatusError
	require.True(t, errors.As(err, &statusErr))

	snap := v.Snapshot()
	require.True(t, snap.ModalOpen)
	require.Empty(t, snap.Events)
}

func TestDelete(t *testing.T) {
	g := newGateway()
	monday := date(2024, time.January, 1, 0)
	g.events[monday] = []client.Event{{ID: "a"}, {ID: "b"}}
	v := newView(g, monday)
	ctx := context.Background()
	require.NoError(t, v.Refresh(ctx))

	require.ErrorIs(t, v.Delete(ctx), ErrNothingSelected)

	v.ClickEvent(client.Event{ID: "a"})
	require.NoError(t, v.Delete(ctx))
	snap := v.Snapshot()
	require.False(t, snap.ModalOpen)
	require.Equal(t, []client.Event{{ID: "b"}}, snap.Events)
	require.Equal(t, []string{"a"}, g.deleted)

	g.err = errors.New("offline")
	v.ClickEvent(client.Event{ID: "b"})
	require.Error(t, v.Delete(ctx))
	require.True(t, v.Snapshot().ModalOpen)
	require.Len(t, v.Snapshot().Events, 1)
}

func TestRangeLabel(t *testing.T) {
	tests := []struct {
		start    time.Time
		expected string
	}{
		{date(2024, time.January, 1, 0), "Jan 1 – 7, 2024"},
		{date(2024, time.January, 29, 0), "Jan 29 – Feb 4, 2024"},
		{date(2024, time.December, 30, 0), "Dec 30 – Jan 5, 2025"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.expected, RangeLabel(tt.start))
	}

	v := newView(newGateway(), date(2024, time.January, 31, 8))
	require.Equal(t, "Jan 29 – Feb 4, 2024", v.RangeLabel())
}

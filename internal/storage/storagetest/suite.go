// Package storagetest holds the behaviour every storage backend must share.
package storagetest

import (
	"context"
	"testing"
	"time"

	"github.com/lomoval/weekcal/internal/storage"
	"github.com/stretchr/testify/require"
)

const (
	owner      = "owner-1"
	otherOwner = "owner-2"
)

// Factory returns an empty, connected storage. Cleanup is up to the factory.
type Factory func(t *testing.T) storage.Storage

var initDate = time.Date(2300, 1, 1, 0, 0, 0, 0, time.UTC)

func Run(t *testing.T, newStorage Factory) {
	t.Helper()

	t.Run("add event", func(t *testing.T) {
		s := newStorage(t)
		e := newEvent(owner, initDate.Add(time.Hour), initDate.Add(2*time.Hour))
		e.Color = ""

		require.NoError(t, s.AddEvent(context.Background(), &e))
		require.NotEmpty(t, e.ID)
		require.Equal(t, storage.DefaultColor, e.Color)
		require.False(t, e.CreatedAt.IsZero())

		events, err := s.QueryOverlapping(context.Background(), owner, initDate, initDate.AddDate(0, 0, 1))
		require.NoError(t, err)
		require.Len(t, events, 1)
		CompareEvents(t, e, events[0])
	})

	t.Run("overlap", func(t *testing.T) {
		s := newStorage(t)
		rangeStart := initDate.Add(10 * time.Hour)
		rangeEnd := initDate.Add(12 * time.Hour)

		tests := []struct {
			name     string
			owner    string
			start    time.Time
			end      time.Time
			expected bool
		}{
			{"inside", owner, rangeStart.Add(30 * time.Minute), rangeStart.Add(time.Hour), true},
			{"covers range", owner, rangeStart.Add(-time.Hour), rangeEnd.Add(time.Hour), true},
			{"crosses start", owner, rangeStart.Add(-time.Hour), rangeStart.Add(time.Minute), true},
			{"crosses end", owner, rangeEnd.Add(-time.Minute), rangeEnd.Add(time.Hour), true},
			{"same as range", owner, rangeStart, rangeEnd, true},
			{"ends at range start", owner, rangeStart.Add(-time.Hour), rangeStart, false},
			{"starts at range end", owner, rangeEnd, rangeEnd.Add(time.Hour), false},
			{"before", owner, initDate, initDate.Add(time.Hour), false},
			{"after", owner, rangeEnd.Add(time.Hour), rangeEnd.Add(2 * time.Hour), false},
			{"other owner", otherOwner, rangeStart, rangeEnd, false},
		}

		expected := make(map[string]string)
		for _, tt := range tests {
			e := newEvent(tt.owner, tt.start, tt.end)
			e.Title = tt.name
			require.NoError(t, s.AddEvent(context.Background(), &e))
			if tt.expected {
				expected[e.ID] = tt.name
			}
		}

		events, err := s.QueryOverlapping(context.Background(), owner, rangeStart, rangeEnd)
		require.NoError(t, err)
		actual := make(map[string]string)
		for _, e := range events {
			actual[e.ID] = e.Title
		}
		require.Equal(t, expected, actual)
	})

	t.Run("ordered by start", func(t *testing.T) {
		s := newStorage(t)
		for _, h := range []int{5, 1, 3} {
			start := initDate.Add(time.Duration(h) * time.Hour)
			e := newEvent(owner, start, start.Add(time.Hour))
			require.NoError(t, s.AddEvent(context.Background(), &e))
		}

		events, err := s.QueryOverlapping(context.Background(), owner, initDate, initDate.AddDate(0, 0, 1))
		require.NoError(t, err)
		require.Len(t, events, 3)
		for i := 1; i < len(events); i++ {
			require.True(t, events[i-1].Start.Before(events[i].Start))
		}
	})

	t.Run("update title only", func(t *testing.T) {
		s := newStorage(t)
		e := newEvent(owner, initDate.Add(time.Hour), initDate.Add(2*time.Hour))
		require.NoError(t, s.AddEvent(context.Background(), &e))

		title := "updated title"
		updated, err := s.UpdateEvent(context.Background(), e.ID, owner, storage.Patch{Title: &title})
		require.NoError(t, err)

		expected := e
		expected.Title = title
		expected.UpdatedAt = updated.UpdatedAt
		CompareEvents(t, expected, updated)
		require.False(t, updated.UpdatedAt.Before(e.UpdatedAt))

		events, err := s.QueryOverlapping(context.Background(), owner, initDate, initDate.AddDate(0, 0, 1))
		require.NoError(t, err)
		require.Len(t, events, 1)
		CompareEvents(t, updated, events[0])
	})

	t.Run("update all fields", func(t *testing.T) {
		s := newStorage(t)
		e := newEvent(owner, initDate.Add(time.Hour), initDate.Add(2*time.Hour))
		require.NoError(t, s.AddEvent(context.Background(), &e))

		title, description, color := "t", "d", "#000000"
		start, end := initDate.AddDate(0, 0, 3), initDate.AddDate(0, 0, 3).Add(30*time.Minute)
		updated, err := s.UpdateEvent(context.Background(), e.ID, owner, storage.Patch{
			Title:       &title,
			Description: &description,
			Start:       &start,
			End:         &end,
			Color:       &color,
		})
		require.NoError(t, err)
		require.Equal(t, title, updated.Title)
		require.Equal(t, description, updated.Description)
		require.Equal(t, color, updated.Color)
		require.True(t, start.Equal(updated.Start))
		require.True(t, end.Equal(updated.End))

		events, err := s.QueryOverlapping(context.Background(), owner, initDate, initDate.AddDate(0, 0, 1))
		require.NoError(t, err)
		require.Empty(t, events)
	})

	t.Run("empty patch", func(t *testing.T) {
		s := newStorage(t)
		e := newEvent(owner, initDate.Add(time.Hour), initDate.Add(2*time.Hour))
		require.NoError(t, s.AddEvent(context.Background(), &e))

		updated, err := s.UpdateEvent(context.Background(), e.ID, owner, storage.Patch{})
		require.NoError(t, err)
		e.UpdatedAt = updated.UpdatedAt
		CompareEvents(t, e, updated)
	})

	t.Run("remove event", func(t *testing.T) {
		s := newStorage(t)
		e := newEvent(owner, initDate.Add(time.Hour), initDate.Add(2*time.Hour))
		require.NoError(t, s.AddEvent(context.Background(), &e))

		removed, err := s.RemoveEvent(context.Background(), e.ID, owner)
		require.NoError(t, err)
		CompareEvents(t, e, removed)

		events, err := s.QueryOverlapping(context.Background(), owner, initDate, initDate.AddDate(0, 0, 1))
		require.NoError(t, err)
		require.Empty(t, events)

		_, err = s.RemoveEvent(context.Background(), e.ID, owner)
		require.ErrorIs(t, err, storage.ErrNotFoundEvent)
	})

	t.Run("not found", func(t *testing.T) {
		s := newStorage(t)
		e := newEvent(owner, initDate.Add(time.Hour), initDate.Add(2*time.Hour))
		require.NoError(t, s.AddEvent(context.Background(), &e))
		title := "hijacked"

		for _, tc := range []struct {
			name  string
			id    string
			owner string
		}{
			{"other owner", e.ID, otherOwner},
			{"unknown id", "00000000-0000-0000-0000-000000000000", owner},
			{"malformed id", "___not_exists___", owner},
		} {
			t.Run(tc.name, func(t *testing.T) {
				_, err := s.UpdateEvent(context.Background(), tc.id, tc.owner, storage.Patch{Title: &title})
				require.ErrorIs(t, err, storage.ErrNotFoundEvent)

				_, err = s.RemoveEvent(context.Background(), tc.id, tc.owner)
				require.ErrorIs(t, err, storage.ErrNotFoundEvent)
			})
		}

		events, err := s.QueryOverlapping(context.Background(), owner, initDate, initDate.AddDate(0, 0, 1))
		require.NoError(t, err)
		require.Len(t, events, 1)
		CompareEvents(t, e, events[0])
	})
}

// CompareEvents compares events with instants compared by value, ignoring
// the location they were decoded with.
func CompareEvents(t *testing.T, expected storage.Event, actual storage.Event) {
	t.Helper()
	for _, pair := range [][2]time.Time{
		{expected.Start, actual.Start},
		{expected.End, actual.End},
		{expected.CreatedAt, actual.CreatedAt},
		{expected.UpdatedAt, actual.UpdatedAt},
	} {
		require.True(t, pair[0].Equal(pair[1]), "time is not equal %q != %q", pair[0], pair[1])
	}
	expected.Start, expected.End = actual.Start, actual.End
	expected.CreatedAt, expected.UpdatedAt = actual.CreatedAt, actual.UpdatedAt
	require.Equal(t, expected, actual)
}

func newEvent(ownerID string, start, end time.Time) storage.Event {
	return storage.Event{
		OwnerID:     ownerID,
		Title:       "test",
		Description: "description",
		Start:       start,
		End:         end,
		Color:       "#ff0000",
	}
}

package rabbit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lomoval/weekcal/internal/app"
	"github.com/lomoval/weekcal/internal/storage"
	"github.com/stretchr/testify/require"
)

type fakePublisher struct {
	bodies [][]byte
	err    error
}

func (f *fakePublisher) Publish(_ context.Context, body []byte) error {
	if f.err != nil {
		return f.err
	}
	f.bodies = append(f.bodies, body)
	return nil
}

var testEvent = storage.Event{
	ID:      "e1",
	OwnerID: "demo-user",
	Title:   "Meeting",
	Start:   time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC),
	End:     time.Date(2024, 1, 1, 11, 0, 0, 0, time.UTC),
}

func TestChangePublisher(t *testing.T) {
	p := &fakePublisher{}
	at := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	NewChangePublisher(p).Notify(context.Background(), app.Change{Action: app.ActionUpdated, Event: testEvent, At: at})

	require.Len(t, p.bodies, 1)
	m, err := Decode(p.bodies[0])
	require.NoError(t, err)
	require.Equal(t, Message{
		Kind:    KindChange,
		Action:  "updated",
		ID:      "e1",
		Title:   "Meeting",
		Start:   testEvent.Start,
		OwnerID: "demo-user",
		At:      at,
	}, m)
}

func TestChangePublisherFailureDoesNotPanic(t *testing.T) {
	p := &fakePublisher{err: errors.New("broker is gone")}
	NewChangePublisher(p).Notify(context.Background(), app.Change{Action: app.ActionCreated, Event: testEvent})
	require.Empty(t, p.bodies)
}

func TestReminder(t *testing.T) {
	p := &fakePublisher{}
	at := time.Date(2024, 1, 1, 9, 50, 0, 0, time.UTC)
	require.NoError(t, PublishMessage(context.Background(), p, NewReminder(testEvent, at)))

	m, err := Decode(p.bodies[0])
	require.NoError(t, err)
	require.Equal(t, KindReminder, m.Kind)
	require.Empty(t, m.Action)
	require.Equal(t, testEvent.Start, m.Start)
	require.Equal(t, at, m.At)
}

func TestDecodeInvalid(t *testing.T) {
	_, err := Decode([]byte("{"))
	require.Error(t, err)
}

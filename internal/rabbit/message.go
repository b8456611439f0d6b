package rabbit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lomoval/weekcal/internal/app"
	"github.com/lomoval/weekcal/internal/storage"
	log "github.com/sirupsen/logrus"
)

type Kind string

const (
	KindChange   Kind = "change"
	KindReminder Kind = "reminder"
)

type Message struct {
	Kind    Kind      `json:"kind"`
	Action  string    `json:"action,omitempty"`
	ID      string    `json:"id"`
	Title   string    `json:"title"`
	Start   time.Time `json:"start"`
	OwnerID string    `json:"ownerId"`
	At      time.Time `json:"at"`
}

func NewReminder(e storage.Event, at time.Time) Message {
	return Message{
		Kind:    KindReminder,
		ID:      e.ID,
		Title:   e.Title,
		Start:   e.Start,
		OwnerID: e.OwnerID,
		At:      at,
	}
}

func NewChange(change app.Change) Message {
	return Message{
		Kind:    KindChange,
		Action:  string(change.Action),
		ID:      change.Event.ID,
		Title:   change.Event.Title,
		Start:   change.Event.Start,
		OwnerID: change.Event.OwnerID,
		At:      change.At,
	}
}

func Decode(body []byte) (Message, error) {
	var m Message
	if err := json.Unmarshal(body, &m); err != nil {
		return Message{}, fmt.Errorf("failed to parse message: %w", err)
	}
	return m, nil
}

type Publisher interface {
	Publish(ctx context.Context, body []byte) error
}

func PublishMessage(ctx context.Context, p Publisher, m Message) error {
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}
	return p.Publish(ctx, data)
}

// ChangePublisher forwards committed changes to the queue. Failures are
// logged, the change itself is already stored.
type ChangePublisher struct {
	publisher Publisher
}

func NewChangePublisher(p Publisher) *ChangePublisher {
	return &ChangePublisher{publisher: p}
}

func (c *ChangePublisher) Notify(ctx context.Context, change app.Change) {
	if err := PublishMessage(ctx, c.publisher, NewChange(change)); err != nil {
		log.Errorf("failed to publish %s change of event %q: %v", change.Action, change.Event.ID, err)
	}
}

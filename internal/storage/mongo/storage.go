package mongostorage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lomoval/weekcal/internal/storage"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	defaultDatabase   = "calendar"
	defaultCollection = "events"
)

type Config struct {
	URI        string
	Database   string
	Collection string
}

// document is the stored shape of an event.
type document struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	UserID      string             `bson:"userId"`
	Title       string             `bson:"title"`
	Description string             `bson:"description,omitempty"`
	Start       time.Time          `bson:"start"`
	End         time.Time          `bson:"end"`
	Color       string             `bson:"color"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

type Storage struct {
	uri        string
	database   string
	collection string
	client     *mongo.Client
	events     *mongo.Collection
}

func New(config Config) *Storage {
	s := &Storage{uri: config.URI, database: config.Database, collection: config.Collection}
	if s.database == "" {
		s.database = defaultDatabase
	}
	if s.collection == "" {
		s.collection = defaultCollection
	}
	return s
}

func (s *Storage) Connect(ctx context.Context) error {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(s.uri))
	if err != nil {
		return fmt.Errorf("connect to %q: %w: %w", s.database, storage.ErrStoreUnavailable, err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		client.Disconnect(ctx) //nolint:errcheck
		log.Errorf("failed to ping mongo: %v", err)
		return fmt.Errorf("ping: %w: %w", storage.ErrStoreUnavailable, err)
	}

	events := client.Database(s.database).Collection(s.collection)
	_, err = events.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "userId", Value: 1}, {Key: "start", Value: 1}, {Key: "end", Value: 1}},
	})
	if err != nil {
		client.Disconnect(ctx) //nolint:errcheck
		return wrapErr("create index", err)
	}

	s.client = client
	s.events = events
	return nil
}

func (s *Storage) Close(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	if err := s.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("failed to close connection: %w", err)
	}
	return nil
}

func (s *Storage) AddEvent(ctx context.Context, e *storage.Event) error {
	e.Prepare(storage.Now())
	doc := toDocument(*e)
	doc.ID = primitive.NewObjectID()
	if _, err := s.events.InsertOne(ctx, doc); err != nil {
		return wrapErr("insert event", err)
	}
	e.ID = doc.ID.Hex()
	return nil
}

func (s *Storage) QueryOverlapping(
	ctx context.Context,
	ownerID string,
	start time.Time,
	end time.Time,
) ([]storage.Event, error) {
	opts := options.Find().SetSort(bson.D{{Key: "start", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := s.events.Find(ctx, overlapFilter(ownerID, start, end), opts)
	if err != nil {
		return nil, wrapErr("find events", err)
	}

	var docs []document
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, wrapErr("decode events", err)
	}
	events := make([]storage.Event, 0, len(docs))
	for _, doc := range docs {
		events = append(events, fromDocument(doc))
	}
	return events, nil
}

func (s *Storage) UpdateEvent(ctx context.Context, id, ownerID string, p storage.Patch) (storage.Event, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return storage.Event{}, fmt.Errorf("failed to update event with id %q: %w", id, storage.ErrNotFoundEvent)
	}

	var doc document
	err = s.events.FindOneAndUpdate(
		ctx,
		ownedFilter(oid, ownerID),
		bson.M{"$set": patchSet(p, storage.Now())},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return storage.Event{}, fmt.Errorf("failed to update event with id %q: %w", id, storage.ErrNotFoundEvent)
	}
	if err != nil {
		return storage.Event{}, wrapErr("update event", err)
	}
	return fromDocument(doc), nil
}

func (s *Storage) RemoveEvent(ctx context.Context, id, ownerID string) (storage.Event, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return storage.Event{}, fmt.Errorf("failed to remove event with id %q: %w", id, storage.ErrNotFoundEvent)
	}

	var doc document
	err = s.events.FindOneAndDelete(ctx, ownedFilter(oid, ownerID)).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return storage.Event{}, fmt.Errorf("failed to remove event with id %q: %w", id, storage.ErrNotFoundEvent)
	}
	if err != nil {
		return storage.Event{}, wrapErr("remove event", err)
	}
	return fromDocument(doc), nil
}

// overlapFilter matches the owner's events with start < end and end > start.
func overlapFilter(ownerID string, start, end time.Time) bson.M {
	return bson.M{
		"userId": ownerID,
		"start":  bson.M{"$lt": end.UTC()},
		"end":    bson.M{"$gt": start.UTC()},
	}
}

func ownedFilter(oid primitive.ObjectID, ownerID string) bson.M {
	return bson.M{"_id": oid, "userId": ownerID}
}

// patchSet is the $set document of p, updatedAt is always written.
func patchSet(p storage.Patch, now time.Time) bson.M {
	set := bson.M{"updatedAt": now}
	if p.Title != nil {
		set["title"] = *p.Title
	}
	if p.Description != nil {
		set["description"] = *p.Description
	}
	if p.Start != nil {
		set["start"] = p.Start.UTC()
	}
	if p.End != nil {
		set["end"] = p.End.UTC()
	}
	if p.Color != nil {
		set["color"] = *p.Color
	}
	return set
}

func toDocument(e storage.Event) document {
	return document{
		UserID:      e.OwnerID,
		Title:       e.Title,
		Description: e.Description,
		Start:       e.Start.UTC(),
		End:         e.End.UTC(),
		Color:       e.Color,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

func fromDocument(d document) storage.Event {
	return storage.Event{
		ID:          d.ID.Hex(),
		OwnerID:     d.UserID,
		Title:       d.Title,
		Description: d.Description,
		Start:       d.Start.UTC(),
		End:         d.End.UTC(),
		Color:       d.Color,
		CreatedAt:   d.CreatedAt.UTC(),
		UpdatedAt:   d.UpdatedAt.UTC(),
	}
}

func wrapErr(op string, err error) error {
	if mongo.IsNetworkError(err) || mongo.IsTimeout(err) || errors.Is(err, mongo.ErrClientDisconnected) {
		return fmt.Errorf("%s: %w: %w", op, storage.ErrStoreUnavailable, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

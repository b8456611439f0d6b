package mongostorage

import (
	"testing"
	"time"

	"github.com/lomoval/weekcal/internal/storage"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestDocumentRoundTrip(t *testing.T) {
	e := storage.Event{
		OwnerID:   "demo-user",
		Title:     "Meeting",
		Start:     time.Date(2024, 1, 1, 10, 0, 0, 0, time.FixedZone("UTC+3", 3*60*60)),
		End:       time.Date(2024, 1, 1, 11, 0, 0, 0, time.UTC),
		Color:     storage.DefaultColor,
		CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 123000000, time.UTC),
		UpdatedAt: time.Date(2024, 1, 1, 0, 0, 0, 123000000, time.UTC),
	}
	doc := toDocument(e)
	doc.ID = primitive.NewObjectID()

	raw, err := bson.Marshal(doc)
	require.NoError(t, err)
	var fields bson.M
	require.NoError(t, bson.Unmarshal(raw, &fields))
	require.Equal(t, doc.ID, fields["_id"])
	require.Equal(t, "demo-user", fields["userId"])
	require.NotContains(t, fields, "description")
	require.NotContains(t, fields, "ownerId")

	var decoded document
	require.NoError(t, bson.Unmarshal(raw, &decoded))
	got := fromDocument(decoded)
	require.Equal(t, doc.ID.Hex(), got.ID)
	require.Equal(t, "demo-user", got.OwnerID)
	require.Equal(t, time.Date(2024, 1, 1, 7, 0, 0, 0, time.UTC), got.Start)
	require.Equal(t, e.End, got.End)
	require.Equal(t, e.CreatedAt, got.CreatedAt)
	require.Empty(t, got.Description)
}

func TestOverlapFilter(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 7)

	require.Equal(t, bson.M{
		"userId": "demo-user",
		"start":  bson.M{"$lt": end},
		"end":    bson.M{"$gt": start},
	}, overlapFilter("demo-user", start, end))
}

func TestPatchSet(t *testing.T) {
	now := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	title := "X"
	start := time.Date(2024, 1, 1, 12, 0, 0, 0, time.FixedZone("UTC+1", 60*60))

	require.Equal(t, bson.M{"updatedAt": now}, patchSet(storage.Patch{}, now))
	require.Equal(t, bson.M{
		"updatedAt": now,
		"title":     "X",
		"start":     time.Date(2024, 1, 1, 11, 0, 0, 0, time.UTC),
	}, patchSet(storage.Patch{Title: &title, Start: &start}, now))
}

func TestForeignIDIsNotFound(t *testing.T) {
	s := New(Config{})

	_, err := s.UpdateEvent(t.Context(), "not-an-object-id", "demo-user", storage.Patch{})
	require.ErrorIs(t, err, storage.ErrNotFoundEvent)
	_, err = s.RemoveEvent(t.Context(), "not-an-object-id", "demo-user")
	require.ErrorIs(t, err, storage.ErrNotFoundEvent)
}

func TestWrapErr(t *testing.T) {
	require.ErrorIs(t, wrapErr("find events", mongo.ErrClientDisconnected), storage.ErrStoreUnavailable)
	require.NotErrorIs(t, wrapErr("find events", mongo.ErrNoDocuments), storage.ErrStoreUnavailable)
}

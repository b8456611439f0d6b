package sqlstorage_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/lomoval/weekcal/internal/storage"
	sqlstorage "github.com/lomoval/weekcal/internal/storage/sql"
	"github.com/lomoval/weekcal/internal/storage/storagetest"
	"github.com/stretchr/testify/require"
)

func TestSQLiteStorage(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storage.Storage {
		t.Helper()
		return connect(t, sqlstorage.Config{Driver: sqlstorage.DriverSQLite, Path: ":memory:"})
	})
}

func TestSQLiteFileReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calendar.db")
	config := sqlstorage.Config{Driver: sqlstorage.DriverSQLite, Path: path}
	start := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

	s := connect(t, config)
	e := storage.Event{OwnerID: "demo-user", Title: "persisted", Start: start, End: start.Add(time.Hour)}
	require.NoError(t, s.AddEvent(context.Background(), &e))
	require.NoError(t, s.Close(context.Background()))

	// migrations must be idempotent on an existing database
	reopened := connect(t, config)
	events, err := reopened.QueryOverlapping(context.Background(), "demo-user", start, start.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, events, 1)
	storagetest.CompareEvents(t, e, events[0])
}

func connect(t *testing.T, config sqlstorage.Config) *sqlstorage.Storage {
	t.Helper()
	s := sqlstorage.New(config)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, s.Connect(ctx))
	t.Cleanup(func() {
		s.Close(context.Background())
	})
	return s
}

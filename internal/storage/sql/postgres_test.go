//go:build sql

package sqlstorage_test

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lomoval/weekcal/internal/storage"
	sqlstorage "github.com/lomoval/weekcal/internal/storage/sql"
	"github.com/lomoval/weekcal/internal/storage/storagetest"
	"github.com/stretchr/testify/require"
)

var pgConfig = sqlstorage.Config{
	Driver:   sqlstorage.DriverPostgres,
	Host:     "127.0.0.1",
	Port:     5432,
	Database: "testing",
	Username: "postgres",
	Password: "pas",
}

func TestPostgresStorage(t *testing.T) {
	if host := os.Getenv("POSTGRES_HOST"); host != "" {
		pgConfig.Host = host
	}
	if port := os.Getenv("POSTGRES_PORT"); port != "" {
		var err error
		pgConfig.Port, err = strconv.Atoi(port)
		require.NoError(t, err)
	}

	storagetest.Run(t, func(t *testing.T) storage.Storage {
		t.Helper()
		s := connect(t, pgConfig)
		require.NoError(t, cleanupDB())
		t.Cleanup(func() {
			require.NoError(t, cleanupDB())
		})
		return s
	})
}

func cleanupDB() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	db, err := sqlx.ConnectContext(
		ctx,
		"postgres",
		fmt.Sprintf("sslmode=disable host=%s port=%d dbname=%s user=%s password=%s",
			pgConfig.Host, pgConfig.Port, pgConfig.Database, pgConfig.Username, pgConfig.Password),
	)
	if err != nil {
		return err
	}
	defer db.Close()

	_, err = db.ExecContext(ctx, "TRUNCATE TABLE events")
	return err
}

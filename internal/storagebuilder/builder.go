package storagebuilder

import (
	"context"
	"fmt"
	"time"

	"github.com/lomoval/weekcal/internal/storage"
	memorystorage "github.com/lomoval/weekcal/internal/storage/memory"
	mongostorage "github.com/lomoval/weekcal/internal/storage/mongo"
	sqlstorage "github.com/lomoval/weekcal/internal/storage/sql"
)

const connectTimeout = 15 * time.Second

type Config struct {
	StorageType string
	Database    sqlstorage.Config
	Mongo       mongostorage.Config
}

// New creates the configured storage and connects it.
func New(config Config) (storage.Storage, error) {
	var s storage.Storage
	switch config.StorageType {
	case "memory":
		return memorystorage.New(), nil
	case "sql":
		s = sqlstorage.New(config.Database)
	case "mongo":
		s = mongostorage.New(config.Mongo)
	default:
		return nil, fmt.Errorf("unknown storage type %q", config.StorageType)
	}

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	if err := s.Connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to %s storage: %w", config.StorageType, err)
	}
	return s, nil
}

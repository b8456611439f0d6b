package sqlstorage

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // registers the postgres driver
	"github.com/lomoval/weekcal/internal/storage"
	"github.com/pressly/goose/v3"
	log "github.com/sirupsen/logrus"
	_ "modernc.org/sqlite" // registers the sqlite driver
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

//go:embed migrations/*/*.sql
var migrations embed.FS

var ErrConnectionFailed = errors.New("failed to connect")

type Config struct {
	Driver   string
	Host     string
	Port     int
	Database string
	Username string
	Password string
	// Path is the database file of the sqlite driver, ":memory:" is allowed.
	Path string
}

type Storage struct {
	driver string
	dsn    string
	db     *sqlx.DB
}

func New(config Config) *Storage {
	s := &Storage{driver: config.Driver}
	switch config.Driver {
	case DriverSQLite:
		s.dsn = sqliteDSN(config.Path)
	default:
		s.driver = DriverPostgres
		s.dsn = fmt.Sprintf(
			"sslmode=disable host=%s port=%d dbname=%s user=%s password=%s",
			config.Host, config.Port, config.Database, config.Username, config.Password)
	}
	return s
}

func sqliteDSN(path string) string {
	if path == "" {
		path = ":memory:"
	}
	return path + "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)&_time_format=sqlite"
}

func (s *Storage) Connect(ctx context.Context) error {
	db, err := sqlx.ConnectContext(ctx, s.driver, s.dsn)
	if err != nil {
		log.Errorf("failed to connect: %v", err)
		return fmt.Errorf("%w: %w", ErrConnectionFailed, storage.ErrStoreUnavailable)
	}
	if s.driver == DriverSQLite {
		// Every connection to ":memory:" opens its own database.
		db.SetMaxOpenConns(1)
	}
	if err := migrate(ctx, s.driver, db.DB); err != nil {
		db.Close()
		return err
	}
	s.db = db
	return nil
}

func migrate(ctx context.Context, driver string, db *sql.DB) error {
	dialect := goose.DialectPostgres
	if driver == DriverSQLite {
		dialect = goose.DialectSQLite3
	}
	fsys, err := fs.Sub(migrations, "migrations/"+driver)
	if err != nil {
		return fmt.Errorf("migrations for %q: %w", driver, err)
	}
	provider, err := goose.NewProvider(dialect, db, fsys)
	if err != nil {
		return fmt.Errorf("prepare migrations: %w", err)
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	for _, r := range results {
		log.Debugf("migration applied: %s", r)
	}
	return nil
}

func (s *Storage) Close(_ context.Context) error {
	if s.db == nil {
		return nil
	}
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close connection: %w", err)
	}
	return nil
}

func (s *Storage) AddEvent(ctx context.Context, e *storage.Event) error {
	e.ID = uuid.NewString()
	e.Prepare(storage.Now())
	_, err := s.db.ExecContext(
		ctx,
		s.db.Rebind("INSERT INTO events(id, owner_id, title, description, start_timestamp, end_timestamp, color, "+
			"created_at, updated_at) VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?)"),
		e.ID, e.OwnerID, e.Title, e.Description, e.Start.UTC(), e.End.UTC(), e.Color, e.CreatedAt, e.UpdatedAt)
	if err != nil {
		e.ID = ""
		return wrapErr("insert event", err)
	}
	return nil
}

// QueryOverlapping selects events intersecting [start:end).
func (s *Storage) QueryOverlapping(
	ctx context.Context,
	ownerID string,
	start time.Time,
	end time.Time,
) ([]storage.Event, error) {
	events := make([]storage.Event, 0)
	err := s.db.SelectContext(
		ctx,
		&events,
		s.db.Rebind(selectEvents+"WHERE owner_id=? AND start_timestamp<? AND end_timestamp>? "+
			"ORDER BY start_timestamp, id"),
		ownerID, end.UTC(), start.UTC(),
	)
	if err != nil {
		return nil, wrapErr("select events", err)
	}
	for i := range events {
		normalize(&events[i])
	}
	return events, nil
}

func (s *Storage) UpdateEvent(ctx context.Context, id, ownerID string, p storage.Patch) (storage.Event, error) {
	sets := make([]string, 0, 6)
	args := make([]interface{}, 0, 8)
	if p.Title != nil {
		sets, args = append(sets, "title=?"), append(args, *p.Title)
	}
	if p.Description != nil {
		sets, args = append(sets, "description=?"), append(args, *p.Description)
	}
	if p.Start != nil {
		sets, args = append(sets, "start_timestamp=?"), append(args, p.Start.UTC())
	}
	if p.End != nil {
		sets, args = append(sets, "end_timestamp=?"), append(args, p.End.UTC())
	}
	if p.Color != nil {
		sets, args = append(sets, "color=?"), append(args, *p.Color)
	}
	sets, args = append(sets, "updated_at=?"), append(args, storage.Now())
	args = append(args, id, ownerID)

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return storage.Event{}, wrapErr("begin update", err)
	}
	defer tx.Rollback() //nolint:errcheck

	res, err := tx.ExecContext(
		ctx,
		tx.Rebind("UPDATE events SET "+strings.Join(sets, ", ")+" WHERE id=? AND owner_id=?"),
		args...,
	)
	if err != nil {
		return storage.Event{}, wrapErr("update event", err)
	}
	if n, err := res.RowsAffected(); err != nil || n == 0 {
		return storage.Event{}, fmt.Errorf("failed to update event with id %q: %w", id, storage.ErrNotFoundEvent)
	}

	e, err := getOwned(ctx, tx, id, ownerID)
	if err != nil {
		return storage.Event{}, err
	}
	if err := tx.Commit(); err != nil {
		return storage.Event{}, wrapErr("commit update", err)
	}
	return e, nil
}

func (s *Storage) RemoveEvent(ctx context.Context, id, ownerID string) (storage.Event, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return storage.Event{}, wrapErr("begin remove", err)
	}
	defer tx.Rollback() //nolint:errcheck

	e, err := getOwned(ctx, tx, id, ownerID)
	if err != nil {
		return storage.Event{}, err
	}
	if _, err := tx.ExecContext(ctx, tx.Rebind("DELETE FROM events WHERE id=? AND owner_id=?"), id, ownerID); err != nil {
		return storage.Event{}, wrapErr("delete event", err)
	}
	if err := tx.Commit(); err != nil {
		return storage.Event{}, wrapErr("commit remove", err)
	}
	return e, nil
}

const selectEvents = "SELECT id, owner_id, title, description, start_timestamp, end_timestamp, color, " +
	"created_at, updated_at FROM events "

func getOwned(ctx context.Context, tx *sqlx.Tx, id, ownerID string) (storage.Event, error) {
	var e storage.Event
	err := tx.GetContext(ctx, &e, tx.Rebind(selectEvents+"WHERE id=? AND owner_id=?"), id, ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.Event{}, fmt.Errorf("event with id %q: %w", id, storage.ErrNotFoundEvent)
	}
	if err != nil {
		return storage.Event{}, wrapErr("select event", err)
	}
	normalize(&e)
	return e, nil
}

func normalize(e *storage.Event) {
	e.Start = e.Start.UTC()
	e.End = e.End.UTC()
	e.CreatedAt = e.CreatedAt.UTC()
	e.UpdatedAt = e.UpdatedAt.UTC()
}

func wrapErr(op string, err error) error {
	var netErr *net.OpError
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) || errors.As(err, &netErr) {
		return fmt.Errorf("%s: %w: %w", op, storage.ErrStoreUnavailable, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

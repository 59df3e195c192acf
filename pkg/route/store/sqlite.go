package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mattn/go-sqlite3"

	"portico-gw/portico/pkg/route"
)

// SQLiteConfig contains configuration for the SQLite route store.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string

	// MaxOpenConns is the maximum number of open connections to the database.
	// Default: 10
	MaxOpenConns int

	// MaxIdleConns is the maximum number of idle connections.
	// Default: 5
	MaxIdleConns int

	// WALMode enables Write-Ahead Logging mode for better concurrency.
	// Default: true
	WALMode bool

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// DefaultSQLiteConfig returns the default SQLite configuration.
func DefaultSQLiteConfig() *SQLiteConfig {
	return &SQLiteConfig{
		Path:         "data/portico.db",
		MaxOpenConns: 10,
		MaxIdleConns: 5,
		WALMode:      true,
		BusyTimeout:  5 * time.Second,
	}
}

// SQLiteStore implements route.Store using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	config *SQLiteConfig
	logger *slog.Logger
}

// NewSQLiteStore creates a new SQLite route store.
// It initializes the database schema and enables WAL mode if configured.
func NewSQLiteStore(config *SQLiteConfig) (*SQLiteStore, error) {
	if config == nil {
		config = DefaultSQLiteConfig()
	}

	logger := slog.Default().With("component", "route.store.sqlite")

	db, err := sql.Open("sqlite3", config.Path)
	if err != nil {
		return nil, route.NewStoreError("open", err)
	}

	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)

	s := &SQLiteStore{
		db:     db,
		config: config,
		logger: logger,
	}

	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("SQLite route store initialized",
		"path", config.Path,
		"wal_mode", config.WALMode,
		"max_open_conns", config.MaxOpenConns,
	)

	return s, nil
}

// initialize sets up the database schema and enables WAL mode.
func (s *SQLiteStore) initialize() error {
	if s.config.WALMode {
		if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			return route.NewStoreError("enable_wal", err)
		}
		s.logger.Debug("WAL mode enabled")
	}

	busyTimeoutMs := s.config.BusyTimeout.Milliseconds()
	if _, err := s.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", busyTimeoutMs)); err != nil {
		return route.NewStoreError("set_busy_timeout", err)
	}

	if _, err := s.db.Exec(Schema); err != nil {
		return route.NewStoreError("create_schema", err)
	}

	if _, err := s.db.Exec(InsertSchemaVersion, SchemaVersion); err != nil {
		return route.NewStoreError("insert_schema_version", err)
	}

	var version int
	err := s.db.QueryRow(GetSchemaVersion).Scan(&version)
	if err != nil && err != sql.ErrNoRows {
		return route.NewStoreError("get_schema_version", err)
	}
	if version != SchemaVersion {
		return route.NewStoreError("schema_version_mismatch",
			fmt.Errorf("expected schema version %d, got %d", SchemaVersion, version))
	}

	return nil
}

// Insert persists a new route. CreatedAt and UpdatedAt are both set to the
// current time; the caller's values are ignored.
func (s *SQLiteStore) Insert(ctx context.Context, r *route.Route) (*route.Route, error) {
	now := time.Now().UTC()

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO routes (path, target_url, capacity, refill_rate_per_second, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		r.Path, r.TargetURL, r.Capacity, r.RefillRatePerSecond, now, now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, route.ErrDuplicatePath
		}
		return nil, route.NewStoreError("insert", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, route.NewStoreError("insert", err)
	}

	created := *r
	created.ID = id
	created.CreatedAt = now
	created.UpdatedAt = now
	return &created, nil
}

// FindAll returns every stored route.
func (s *SQLiteStore) FindAll(ctx context.Context) ([]*route.Route, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, path, target_url, capacity, refill_rate_per_second, created_at, updated_at FROM routes`)
	if err != nil {
		return nil, route.NewStoreError("find_all", err)
	}
	defer rows.Close()

	routes := []*route.Route{}
	for rows.Next() {
		r, err := scanRoute(rows)
		if err != nil {
			return nil, route.NewStoreError("scan", err)
		}
		routes = append(routes, r)
	}
	if err := rows.Err(); err != nil {
		return nil, route.NewStoreError("find_all", err)
	}

	return routes, nil
}

// FindByID returns the route with the given id, or route.ErrNotFound.
func (s *SQLiteStore) FindByID(ctx context.Context, id int64) (*route.Route, error) {
	return s.findOne(ctx, `WHERE id = ?`, id)
}

// FindByPath returns the route whose path exactly matches, or route.ErrNotFound.
func (s *SQLiteStore) FindByPath(ctx context.Context, path string) (*route.Route, error) {
	return s.findOne(ctx, `WHERE path = ?`, path)
}

func (s *SQLiteStore) findOne(ctx context.Context, where string, arg interface{}) (*route.Route, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, path, target_url, capacity, refill_rate_per_second, created_at, updated_at FROM routes `+where,
		arg)
	if err != nil {
		return nil, route.NewStoreError("find_one", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, route.NewStoreError("find_one", err)
		}
		return nil, route.ErrNotFound
	}

	r, err := scanRoute(rows)
	if err != nil {
		return nil, route.NewStoreError("scan", err)
	}
	return r, nil
}

// Update overwrites the mutable fields of an existing route and bumps
// UpdatedAt. CreatedAt is never touched.
func (s *SQLiteStore) Update(ctx context.Context, id int64, r *route.Route) (*route.Route, error) {
	now := time.Now().UTC()

	result, err := s.db.ExecContext(ctx, `
		UPDATE routes
		SET path = ?, target_url = ?, capacity = ?, refill_rate_per_second = ?, updated_at = ?
		WHERE id = ?`,
		r.Path, r.TargetURL, r.Capacity, r.RefillRatePerSecond, now, id,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, route.ErrDuplicatePath
		}
		return nil, route.NewStoreError("update", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, route.NewStoreError("update", err)
	}
	if affected == 0 {
		return nil, route.ErrNotFound
	}

	return s.FindByID(ctx, id)
}

// Delete removes the route with the given id. The boolean reports whether
// a route existed.
func (s *SQLiteStore) Delete(ctx context.Context, id int64) (bool, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM routes WHERE id = ?`, id)
	if err != nil {
		return false, route.NewStoreError("delete", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, route.NewStoreError("delete", err)
	}
	return affected > 0, nil
}

// Close releases the database connection pool.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return route.NewStoreError("close", err)
	}
	s.logger.Info("SQLite route store closed")
	return nil
}

// scanRoute scans a database row into a Route.
func scanRoute(rows *sql.Rows) (*route.Route, error) {
	var r route.Route
	var capacity, refillRate sql.NullInt64

	err := rows.Scan(&r.ID, &r.Path, &r.TargetURL, &capacity, &refillRate, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if capacity.Valid {
		c := int(capacity.Int64)
		r.Capacity = &c
	}
	if refillRate.Valid {
		rr := int(refillRate.Int64)
		r.RefillRatePerSecond = &rr
	}

	return &r, nil
}

// isUniqueViolation reports whether the error is a unique-constraint
// violation from the sqlite3 driver.
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

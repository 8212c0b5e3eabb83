// ABOUTME: Core SQLite store for the console.
// ABOUTME: Handles database initialization, versioned migrations and connection management.

package store

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// Migration version constants
const (
	MigrationV1 = 1 // request_logs table
	MigrationV2 = 2 // composite indexes for dashboard queries
	MigrationV3 = 3 // schema_cache table
	MigrationV4 = 4 // resources table backing the development backend
)

// CurrentSchemaVersion is the target version for the database schema
const CurrentSchemaVersion = MigrationV4

type Store struct {
	db     *sql.DB
	logger *zap.Logger
}

// New opens (or creates) the database at dbPath and migrates it.
func New(dbPath string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	dsn := dbPath
	if dbPath != ":memory:" {
		// connection parameters apply to every pooled connection, not just the first
		dsn = "file:" + dbPath + "?_busy_timeout=5000&_journal_mode=WAL&_foreign_keys=on&_synchronous=NORMAL"
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// every connection to ":memory:" is a separate database
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
	}
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, err
		}
	}

	s := &Store{db: db, logger: logger.Named("store")}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// migration is one schema step.
type migration struct {
	version     int
	description string
	statements  []string
}

var migrations = []migration{
	{
		version:     MigrationV1,
		description: "Create request_logs table and indexes",
		statements: []string{`
			CREATE TABLE IF NOT EXISTS request_logs (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				timestamp TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
				app TEXT DEFAULT '',
				resource TEXT DEFAULT '',
				method TEXT NOT NULL,
				path TEXT NOT NULL,
				status_code INTEGER,
				duration_ms INTEGER,
				user_id TEXT,
				ip_address TEXT,
				user_agent TEXT,
				request_body TEXT,
				response_body TEXT,
				error TEXT
			)`,
			"CREATE INDEX IF NOT EXISTS idx_request_logs_timestamp ON request_logs(timestamp DESC)",
			"CREATE INDEX IF NOT EXISTS idx_request_logs_path ON request_logs(path)",
			"CREATE INDEX IF NOT EXISTS idx_request_logs_status ON request_logs(status_code)",
			"CREATE INDEX IF NOT EXISTS idx_request_logs_app ON request_logs(app)",
		},
	},
	{
		version:     MigrationV2,
		description: "Add composite indexes for aggregation and filtering queries",
		statements: []string{
			// GetTopEndpoints groups by path
			"CREATE INDEX IF NOT EXISTS idx_request_logs_path_count ON request_logs(path, status_code)",
			// GetAppRequestCount and GetAppErrorRate filter by app and time
			"CREATE INDEX IF NOT EXISTS idx_request_logs_app_timestamp ON request_logs(app, timestamp DESC)",
			"CREATE INDEX IF NOT EXISTS idx_request_logs_app_method_status ON request_logs(app, method, status_code)",
			"CREATE INDEX IF NOT EXISTS idx_request_logs_user_id ON request_logs(user_id) WHERE user_id != ''",
		},
	},
	{
		version:     MigrationV3,
		description: "Create schema_cache table",
		statements: []string{`
			CREATE TABLE IF NOT EXISTS schema_cache (
				key TEXT PRIMARY KEY,
				value BLOB NOT NULL,
				expires_at INTEGER NOT NULL
			)`,
		},
	},
	{
		version:     MigrationV4,
		description: "Create resources table",
		statements: []string{`
			CREATE TABLE IF NOT EXISTS resources (
				app TEXT NOT NULL,
				resource TEXT NOT NULL,
				id TEXT NOT NULL,
				data TEXT NOT NULL,
				created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
				PRIMARY KEY (app, resource, id)
			)`,
			"CREATE INDEX IF NOT EXISTS idx_resources_created ON resources(app, resource, created_at)",
		},
	},
}

// migrate runs all pending migrations
func (s *Store) migrate() error {
	if _, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			description TEXT
		)
	`); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	var current int
	if err := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&current); err != nil {
		return fmt.Errorf("failed to get current migration version: %w", err)
	}

	s.logger.Debug("Database schema version",
		zap.Int("current", current),
		zap.Int("target", CurrentSchemaVersion))

	for _, m := range migrations {
		if current >= m.version {
			continue
		}
		if err := s.apply(m); err != nil {
			return fmt.Errorf("migration v%d failed: %w", m.version, err)
		}
		s.logger.Info("Applied migration", zap.Int("version", m.version), zap.String("description", m.description))
	}
	return nil
}

func (s *Store) apply(m migration) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, stmt := range m.statements {
		if _, err := tx.Exec(stmt); err != nil {
			return err
		}
	}
	if _, err := tx.Exec("INSERT INTO schema_migrations (version, description) VALUES (?, ?)", m.version, m.description); err != nil {
		return err
	}
	return tx.Commit()
}

// SchemaVersion returns the highest applied migration.
func (s *Store) SchemaVersion() (int, error) {
	var version int
	err := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&version)
	return version, err
}

package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/werktag/shopfloor/internal/domain"
	"github.com/werktag/shopfloor/internal/repository/sqlite/migrations"
	_ "modernc.org/sqlite"
)

// DB bundles the SQLite connection with accessors for each repository.
// It implements domain.Database.
type DB struct {
	SqlDB *sql.DB
}

// New opens a SQLite database at the given path and configures it for use.
// It enables WAL mode and foreign keys.
func New(dbPath string) (*DB, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	// Enable foreign key enforcement.
	if _, err := db.ExecContext(context.Background(), "PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	// Set a reasonable connection pool for SQLite.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &DB{SqlDB: db}, nil
}

// Migrate applies all pending schema migrations.
func (db *DB) Migrate(ctx context.Context) error {
	return migrations.Run(ctx, db.SqlDB)
}

// Close closes the underlying connection.
func (db *DB) Close() error {
	return db.SqlDB.Close()
}

// Users returns the user repository backed by this database.
func (db *DB) Users() domain.UserRepository {
	return NewUserRepository(db)
}

// Orders returns the work order repository backed by this database.
func (db *DB) Orders() domain.OrderRepository {
	return NewOrderRepository(db)
}

// Processes returns the process step repository backed by this database.
func (db *DB) Processes() domain.ProcessRepository {
	return NewProcessRepository(db)
}

// TimeEntries returns the time entry repository backed by this database.
func (db *DB) TimeEntries() domain.TimeEntryRepository {
	return NewTimeEntryRepository(db)
}

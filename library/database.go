package library

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

const (
	dialectSQLite  = "sqlite3"
	tableSnapshots = "snapshots"
	colName        = "name"
	colData        = "data"
	colRevision    = "revision"
	colSavedAt     = "saved_at"

	catalogSnapshot = "catalog"
)

// Database keeps the catalog snapshot as a single row in SQLite. The row holds
// the same JSON document the file backend writes.
type Database struct {
	db *sqlx.DB
}

// NewDatabase opens (or creates) the SQLite database at dbPath and applies
// schema migrations.
func NewDatabase(dbPath string) (*Database, error) {
	// Ensure directory exists so first-run succeeds.
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000", dbPath)
	db, err := sqlx.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := applyMigrations(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Database{db: db}, nil
}

// Close closes the DB.
func (d *Database) Close() error { return d.db.Close() }

// ---------------------------------------------------------------------------
// Schema migration
// ---------------------------------------------------------------------------

const schemaVersion = 1

func applyMigrations(db *sqlx.DB) error {
	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		return fmt.Errorf("enable WAL: %w", err)
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS meta (key TEXT PRIMARY KEY, value TEXT);`); err != nil {
		return err
	}

	var current int
	_ = db.Get(&current, `SELECT value FROM meta WHERE key='schema_version';`)
	if current >= schemaVersion {
		return nil
	}

	tx, err := db.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`CREATE TABLE IF NOT EXISTS snapshots (
            name TEXT PRIMARY KEY,
            data TEXT NOT NULL,
            revision TEXT NOT NULL,
            saved_at TEXT NOT NULL
        );`); err != nil {
		return fmt.Errorf("apply migration: %w", err)
	}
	if _, err := tx.Exec(`INSERT INTO meta(key,value) VALUES('schema_version',?)
            ON CONFLICT(key) DO UPDATE SET value=excluded.value;`, schemaVersion); err != nil {
		return fmt.Errorf("apply migration: %w", err)
	}

	return tx.Commit()
}

// ---------------------------------------------------------------------------
// Snapshot access
// ---------------------------------------------------------------------------

// Load returns the stored catalog, or an empty one when nothing was saved yet.
func (d *Database) Load() ([]Book, error) {
	query, args, err := goqu.Dialect(dialectSQLite).
		From(tableSnapshots).
		Prepared(true).
		Select(colData).
		Where(goqu.C(colName).Eq(catalogSnapshot)).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build snapshot query: %w", err)
	}

	var data string
	if err := d.db.Get(&data, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return []Book{}, nil
		}
		return nil, fmt.Errorf("reading catalog: %w", err)
	}
	return Parse([]byte(data))
}

// Save replaces the stored snapshot in one transaction and stamps it with a
// fresh revision.
func (d *Database) Save(books []Book) error {
	data, err := Marshal(books)
	if err != nil {
		return errors.Join(ErrSavingSnapshotFailed, err)
	}

	builder := goqu.Dialect(dialectSQLite)

	deleteSQL, deleteArgs, err := builder.
		Delete(tableSnapshots).
		Prepared(true).
		Where(goqu.C(colName).Eq(catalogSnapshot)).
		ToSQL()
	if err != nil {
		return errors.Join(ErrSavingSnapshotFailed, err)
	}

	insertSQL, insertArgs, err := builder.
		Insert(tableSnapshots).
		Prepared(true).
		Rows(goqu.Record{
			colName:     catalogSnapshot,
			colData:     string(data),
			colRevision: uuid.NewString(),
			colSavedAt:  time.Now().UTC().Format(time.RFC3339Nano),
		}).
		ToSQL()
	if err != nil {
		return errors.Join(ErrSavingSnapshotFailed, err)
	}

	tx, err := d.db.Beginx()
	if err != nil {
		return errors.Join(ErrSavingSnapshotFailed, err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(deleteSQL, deleteArgs...); err != nil {
		return errors.Join(ErrSavingSnapshotFailed, err)
	}
	if _, err := tx.Exec(insertSQL, insertArgs...); err != nil {
		return errors.Join(ErrSavingSnapshotFailed, err)
	}
	if err := tx.Commit(); err != nil {
		return errors.Join(ErrSavingSnapshotFailed, err)
	}
	return nil
}

// Revision returns the id of the last saved snapshot, or "" if none exists.
func (d *Database) Revision() (string, error) {
	query, args, err := goqu.Dialect(dialectSQLite).
		From(tableSnapshots).
		Prepared(true).
		Select(colRevision).
		Where(goqu.C(colName).Eq(catalogSnapshot)).
		ToSQL()
	if err != nil {
		return "", fmt.Errorf("build revision query: %w", err)
	}

	var revision string
	if err := d.db.Get(&revision, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", err
	}
	return revision, nil
}

// unreadableDatabase stands in for a database file that exists but could not
// be opened. Load reports it as malformed so the catalog starts empty; the
// first Save moves the file aside and writes a fresh database.
type unreadableDatabase struct {
	path  string
	cause error
	db    *Database
}

func (u *unreadableDatabase) Load() ([]Book, error) {
	if u.db != nil {
		return u.db.Load()
	}
	return nil, errors.Join(ErrMalformedSnapshot, u.cause)
}

func (u *unreadableDatabase) Save(books []Book) error {
	if u.db == nil {
		if err := os.Rename(u.path, u.path+".corrupt"); err != nil && !os.IsNotExist(err) {
			return errors.Join(ErrSavingSnapshotFailed, err)
		}
		for _, suffix := range []string{"-wal", "-shm"} {
			_ = os.Remove(u.path + suffix)
		}
		db, err := NewDatabase(u.path)
		if err != nil {
			return errors.Join(ErrSavingSnapshotFailed, err)
		}
		u.db = db
	}
	return u.db.Save(books)
}

func (u *unreadableDatabase) Close() error {
	if u.db == nil {
		return nil
	}
	return u.db.Close()
}

package library

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Store persists whole-catalog snapshots. Load of a snapshot that was never
// written returns an empty slice, not an error.
type Store interface {
	Load() ([]Book, error)
	Save(books []Book) error
	Close() error
}

const (
	DriverJSON   = "json"
	DriverSQLite = "sqlite"
)

var ErrUnknownDriver = errors.New("unknown catalog driver")

// OpenStore builds the snapshot backend named by driver.
func OpenStore(driver, path string) (Store, error) {
	switch driver {
	case "", DriverJSON:
		return NewFileStore(path), nil
	case DriverSQLite:
		db, err := NewDatabase(path)
		if err != nil {
			if _, statErr := os.Stat(path); statErr != nil {
				return nil, err
			}
			return &unreadableDatabase{path: path, cause: err}, nil
		}
		return db, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
}

// FileStore keeps the snapshot in a single JSON file.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Path() string { return s.path }

// Load reads the snapshot file. A missing file is an empty catalog.
func (s *FileStore) Load() ([]Book, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []Book{}, nil
		}
		return nil, fmt.Errorf("reading catalog: %w", err)
	}
	return Parse(data)
}

// Save writes the snapshot next to the target and renames it into place.
func (s *FileStore) Save(books []Book) error {
	data, err := Marshal(books)
	if err != nil {
		return errors.Join(ErrSavingSnapshotFailed, err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Join(ErrSavingSnapshotFailed, err)
	}

	tmp, err := os.CreateTemp(dir, ".catalog-*.json")
	if err != nil {
		return errors.Join(ErrSavingSnapshotFailed, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Join(ErrSavingSnapshotFailed, err)
	}
	if err := tmp.Close(); err != nil {
		return errors.Join(ErrSavingSnapshotFailed, err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return errors.Join(ErrSavingSnapshotFailed, err)
	}
	return nil
}

func (s *FileStore) Close() error { return nil }

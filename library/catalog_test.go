package library

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tempStore(t *testing.T) *FileStore {
	t.Helper()
	return NewFileStore(filepath.Join(t.TempDir(), "library.json"))
}

func fixedClock() time.Time { return day1 }

func openCatalog(t *testing.T, store Store) *Catalog {
	t.Helper()
	cat, err := Open(store, WithClock(fixedClock))
	require.NoError(t, err)
	return cat
}

// failingStore loads fine but refuses to save.
type failingStore struct{ books []Book }

func (s *failingStore) Load() ([]Book, error) { return s.books, nil }
func (s *failingStore) Save([]Book) error     { return errors.New("disk full") }
func (s *failingStore) Close() error          { return nil }

func TestOpen_SeedsEmptyStorageAndPersists(t *testing.T) {
	store := tempStore(t)

	cat := openCatalog(t, store)
	require.Equal(t, 9, cat.Len())

	reloaded := openCatalog(t, store)
	assert.Equal(t, cat.Books(), reloaded.Books())
	assert.Equal(t, DefaultBooks(), reloaded.Books())
}

func TestOpen_CorruptStorageIsTreatedAsEmpty(t *testing.T) {
	store := tempStore(t)
	require.NoError(t, os.WriteFile(store.Path(), []byte("{ definitely not a catalog"), 0o644))

	cat := openCatalog(t, store)

	assert.Equal(t, 9, cat.Len())
	books, err := store.Load()
	require.NoError(t, err)
	assert.Len(t, books, 9)
}

func TestOpen_CorruptStorageIsQuietAtWarnLevel(t *testing.T) {
	store := tempStore(t)
	require.NoError(t, os.WriteFile(store.Path(), []byte("[{\"title\": 1}]"), 0o644))

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelWarn}))
	cat, err := Open(store, WithClock(fixedClock), WithLogger(logger))
	require.NoError(t, err)

	assert.Equal(t, 9, cat.Len())
	assert.Empty(t, logs.String())
}

func TestOpen_KeepsExistingCatalog(t *testing.T) {
	store := tempStore(t)
	require.NoError(t, store.Save([]Book{NewBook("Only", "One", 2000)}))

	cat := openCatalog(t, store)

	require.Equal(t, 1, cat.Len())
	b, err := cat.At(0)
	require.NoError(t, err)
	assert.Equal(t, "Only", b.Title)
}

func TestAdd_PersistsImmediately(t *testing.T) {
	store := tempStore(t)
	cat := openCatalog(t, store)

	b, err := cat.Add("  The Go Programming Language ", "Donovan", 2015)
	require.NoError(t, err)
	assert.Equal(t, "The Go Programming Language", b.Title)
	assert.False(t, b.IsBorrowed)
	assert.Empty(t, b.WaitingList)

	books, err := store.Load()
	require.NoError(t, err)
	require.Len(t, books, 10)
	assert.Equal(t, b, books[9])

	_, err = cat.Add("   ", "x", 1)
	assert.ErrorIs(t, err, ErrEmptyTitle)
	assert.Equal(t, 10, cat.Len())
}

func TestRemoveAt(t *testing.T) {
	store := tempStore(t)
	require.NoError(t, store.Save([]Book{
		NewBook("A", "a", 1), NewBook("B", "b", 2), NewBook("C", "c", 3),
		NewBook("D", "d", 4), NewBook("E", "e", 5),
	}))
	cat := openCatalog(t, store)

	t.Run("out of range leaves catalog unchanged", func(t *testing.T) {
		before := cat.Books()
		for _, i := range []int{99, 5, -1} {
			_, err := cat.RemoveAt(i)
			assert.ErrorIs(t, err, ErrInvalidPosition)
		}
		assert.Equal(t, before, cat.Books())
	})

	t.Run("valid position shifts later books", func(t *testing.T) {
		removed, err := cat.RemoveAt(1)
		require.NoError(t, err)
		assert.Equal(t, "B", removed.Title)

		var titles []string
		for _, b := range cat.Books() {
			titles = append(titles, b.Title)
		}
		assert.Equal(t, []string{"A", "C", "D", "E"}, titles)

		books, err := store.Load()
		require.NoError(t, err)
		assert.Len(t, books, 4)
	})
}

func TestFind_SortsThenSearches(t *testing.T) {
	cat := openCatalog(t, tempStore(t))

	i, b, ok := cat.Find("Machine Learning")
	require.True(t, ok)
	assert.Equal(t, "Andrew Ng", b.Author)

	at, err := cat.At(i)
	require.NoError(t, err)
	assert.Equal(t, b, at)

	books := cat.Books()
	for j := 1; j < len(books); j++ {
		assert.LessOrEqual(t, books[j-1].Title, books[j].Title)
	}

	i, _, ok = cat.Find("machine learning")
	assert.False(t, ok)
	assert.Equal(t, NotFound, i)
}

func TestSort_EmptyCatalogIsNoop(t *testing.T) {
	cat, err := NewCatalog(tempStore(t))
	require.NoError(t, err)

	cat.Sort(ByTitle)
	_, _, ok := cat.Find("anything")

	assert.False(t, ok)
	assert.Zero(t, cat.Len())
}

func TestBorrowAndReturn_ThroughCatalog(t *testing.T) {
	store := tempStore(t)
	cat := openCatalog(t, store)

	_, err := cat.Borrow(42, "X")
	assert.ErrorIs(t, err, ErrInvalidPosition)
	_, err = cat.Borrow(0, "  ")
	assert.ErrorIs(t, err, ErrEmptyName)
	_, err = cat.Return(-1)
	assert.ErrorIs(t, err, ErrInvalidPosition)

	out, err := cat.Borrow(0, "X")
	require.NoError(t, err)
	assert.Equal(t, BorrowIssued, out.Kind)

	out, err = cat.Borrow(0, "Y")
	require.NoError(t, err)
	assert.Equal(t, BorrowQueued, out.Kind)

	assert.Len(t, cat.Queues(), 1)

	books, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "X", books[0].Borrower)
	assert.Equal(t, []string{"Y"}, books[0].WaitingList)

	ret, err := cat.Return(0)
	require.NoError(t, err)
	assert.Equal(t, ReturnReissued, ret.Kind)
	assert.Equal(t, "Y", ret.ReissuedTo)

	ret, err = cat.Return(0)
	require.NoError(t, err)
	assert.Equal(t, ReturnSettled, ret.Kind)

	ret, err = cat.Return(0)
	require.NoError(t, err)
	assert.Equal(t, ReturnNotBorrowed, ret.Kind)

	books, err = store.Load()
	require.NoError(t, err)
	assert.False(t, books[0].IsBorrowed)
	assert.Empty(t, cat.Queues())
}

func TestSaveFailurePropagates(t *testing.T) {
	cat, err := NewCatalog(&failingStore{books: []Book{NewBook("A", "a", 1)}})
	require.NoError(t, err)
	cat.Load()

	_, err = cat.Add("B", "b", 2)
	assert.Error(t, err)

	_, err = cat.Borrow(0, "X")
	assert.Error(t, err)

	_, err = NewCatalog(&failingStore{}, WithClock(nil))
	assert.Error(t, err)

	_, err = Open(&failingStore{})
	assert.Error(t, err)
}

func TestOpenStore(t *testing.T) {
	dir := t.TempDir()

	s, err := OpenStore(DriverJSON, filepath.Join(dir, "c.json"))
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, s)

	s, err = OpenStore(DriverSQLite, filepath.Join(dir, "c.db"))
	require.NoError(t, err)
	assert.IsType(t, &Database{}, s)
	require.NoError(t, s.Close())

	_, err = OpenStore("csv", "x")
	assert.ErrorIs(t, err, ErrUnknownDriver)
}

func TestOpenStore_UnreadableDatabaseStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.db")
	require.NoError(t, os.WriteFile(path, []byte(strings.Repeat("not a sqlite database ", 64)), 0o644))

	s, err := OpenStore(DriverSQLite, path)
	require.NoError(t, err)

	_, err = s.Load()
	assert.ErrorIs(t, err, ErrMalformedSnapshot)

	cat := openCatalog(t, s)
	assert.Equal(t, 9, cat.Len())
	require.NoError(t, s.Close())

	_, err = os.Stat(path + ".corrupt")
	assert.NoError(t, err, "unreadable file should be kept aside")

	reopened, err := OpenStore(DriverSQLite, path)
	require.NoError(t, err)
	defer reopened.Close()
	assert.IsType(t, &Database{}, reopened)

	books, err := reopened.Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultBooks(), books)
}

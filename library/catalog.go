package library

import (
	"errors"
	"io"
	"log/slog"
	"strings"
	"time"
)

// Logger receives operational messages from the catalog. *slog.Logger satisfies it.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Option configures a Catalog.
type Option func(*Catalog) error

// WithLogger sets the logger for the catalog.
func WithLogger(logger Logger) Option {
	return func(c *Catalog) error {
		if logger == nil {
			return errors.New("nil logger supplied")
		}
		c.logger = logger
		return nil
	}
}

// WithClock replaces time.Now as the source of borrow dates.
func WithClock(now func() time.Time) Option {
	return func(c *Catalog) error {
		if now == nil {
			return errors.New("nil clock supplied")
		}
		c.now = now
		return nil
	}
}

// Catalog owns the ordered book collection. Position in the collection is the
// only identity a book has; every mutation is followed by a full snapshot save.
type Catalog struct {
	store  Store
	books  []Book
	now    func() time.Time
	logger Logger
}

// NewCatalog returns an empty catalog bound to store. Call Load to read it.
func NewCatalog(store Store, opts ...Option) (*Catalog, error) {
	c := &Catalog{
		store:  store,
		books:  []Book{},
		now:    time.Now,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Open loads the catalog from store and seeds it when it comes back empty.
func Open(store Store, opts ...Option) (*Catalog, error) {
	c, err := NewCatalog(store, opts...)
	if err != nil {
		return nil, err
	}
	c.Load()
	if _, err := c.EnsureDefaults(); err != nil {
		return nil, err
	}
	return c, nil
}

// Load replaces the in-memory collection with the stored snapshot. A snapshot
// that cannot be read or parsed leaves the catalog empty.
func (c *Catalog) Load() {
	books, err := c.store.Load()
	if err != nil {
		c.logger.Info("catalog snapshot unreadable, starting empty", "error", err)
		c.books = []Book{}
		return
	}
	c.books = books
	c.logger.Debug("catalog loaded", "books", len(books))
}

// Save writes the whole collection, replacing the previous snapshot.
func (c *Catalog) Save() error {
	if err := c.store.Save(c.books); err != nil {
		c.logger.Error("catalog save failed", "error", err)
		return err
	}
	c.logger.Debug("catalog saved", "books", len(c.books))
	return nil
}

// EnsureDefaults seeds an empty catalog with DefaultBooks and saves it. It
// reports whether seeding happened.
func (c *Catalog) EnsureDefaults() (bool, error) {
	if len(c.books) > 0 {
		return false, nil
	}
	c.books = append(c.books, DefaultBooks()...)
	c.logger.Info("catalog seeded with default books", "books", len(c.books))
	return true, c.Save()
}

// Len returns the number of books.
func (c *Catalog) Len() int { return len(c.books) }

// Books returns a copy of the collection in its current order.
func (c *Catalog) Books() []Book {
	out := make([]Book, len(c.books))
	for i, b := range c.books {
		out[i] = b.clone()
	}
	return out
}

// At returns the book at index.
func (c *Catalog) At(index int) (Book, error) {
	if !c.valid(index) {
		return Book{}, ErrInvalidPosition
	}
	return c.books[index].clone(), nil
}

// Queues returns the books that have someone waiting, in catalog order.
func (c *Catalog) Queues() []Book {
	var out []Book
	for _, b := range c.books {
		if len(b.WaitingList) > 0 {
			out = append(out, b.clone())
		}
	}
	return out
}

// Add appends a new available book and saves.
func (c *Catalog) Add(title, author string, year int) (Book, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return Book{}, ErrEmptyTitle
	}
	b := NewBook(title, strings.TrimSpace(author), year)
	c.books = append(c.books, b)
	c.logger.Info("book added", "title", b.Title)
	return b.clone(), c.Save()
}

// RemoveAt deletes the book at index and saves. Later books shift down by one.
func (c *Catalog) RemoveAt(index int) (Book, error) {
	if !c.valid(index) {
		return Book{}, ErrInvalidPosition
	}
	removed := c.books[index]
	c.books = append(c.books[:index], c.books[index+1:]...)
	c.logger.Info("book removed", "title", removed.Title)
	return removed, c.Save()
}

// Sort reorders the collection with compare. Records themselves are untouched.
func (c *Catalog) Sort(compare func(a, b Book) int) {
	if len(c.books) <= 1 {
		return
	}
	c.books = QuickSort(c.books, compare)
}

// Find sorts the catalog by title and then binary-searches it. The returned
// index is valid in the freshly sorted order.
func (c *Catalog) Find(title string) (int, Book, bool) {
	c.Sort(ByTitle)
	i := BinarySearch(c.books, title, TitleOf)
	if i == NotFound {
		return NotFound, Book{}, false
	}
	return i, c.books[i].clone(), true
}

// Borrow lends the book at index to name, or queues name behind the current
// holder, and saves.
func (c *Catalog) Borrow(index int, name string) (BorrowOutcome, error) {
	if !c.valid(index) {
		return BorrowOutcome{}, ErrInvalidPosition
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return BorrowOutcome{}, ErrEmptyName
	}

	outcome := c.books[index].Borrow(name, c.now())
	c.logger.Info("borrow", "title", outcome.Book.Title, "name", name, "queued", outcome.Kind == BorrowQueued)
	return outcome, c.Save()
}

// Return takes back the book at index, reissuing it to the next person waiting,
// and saves when anything changed.
func (c *Catalog) Return(index int) (ReturnOutcome, error) {
	if !c.valid(index) {
		return ReturnOutcome{}, ErrInvalidPosition
	}

	outcome := c.books[index].Return(c.now())
	if !outcome.Changed() {
		return outcome, nil
	}
	c.logger.Info("return", "title", outcome.Book.Title, "reissued_to", outcome.ReissuedTo)
	return outcome, c.Save()
}

func (c *Catalog) valid(index int) bool {
	return index >= 0 && index < len(c.books)
}

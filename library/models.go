package library

import (
	"errors"
	"fmt"
	"time"
)

// DateLayout is the format borrow dates are kept and persisted in.
const DateLayout = "2006-01-02"

var (
	ErrInvalidPosition = errors.New("invalid book number")
	ErrEmptyTitle      = errors.New("title must not be empty")
	ErrEmptyName       = errors.New("borrower name must not be empty")
)

// Book is one record in the catalog together with its circulation state.
// BorrowedDate and Borrower are set exactly when IsBorrowed is true, and the
// WaitingList can only be non-empty while the book is out.
type Book struct {
	Title        string   `json:"title"`
	Author       string   `json:"author"`
	Year         int      `json:"year"`
	IsBorrowed   bool     `json:"isBorrowed"`
	Borrower     string   `json:"borrower,omitempty"`
	BorrowedDate string   `json:"borrowedDate,omitempty"`
	WaitingList  []string `json:"waitingList"`
}

// State is the circulation state of a single book.
type State int

const (
	Available State = iota
	Borrowed
)

func (s State) String() string {
	if s == Borrowed {
		return "Borrowed"
	}
	return "Available"
}

// NewBook returns an available book with an empty waiting list.
func NewBook(title, author string, year int) Book {
	return Book{Title: title, Author: author, Year: year, WaitingList: []string{}}
}

// State derives the circulation state from the borrowed flag.
func (b Book) State() State {
	if b.IsBorrowed {
		return Borrowed
	}
	return Available
}

func (b Book) String() string {
	return fmt.Sprintf("%s - %s (%d) [%s]", b.Title, b.Author, b.Year, b.State())
}

// clone copies the book so callers never share its waiting list.
func (b Book) clone() Book {
	b.WaitingList = append([]string{}, b.WaitingList...)
	return b
}

// validate checks the record invariants a persisted snapshot must satisfy.
func (b Book) validate() error {
	if b.Title == "" {
		return ErrEmptyTitle
	}
	if !b.IsBorrowed {
		if b.BorrowedDate != "" {
			return fmt.Errorf("%q has a borrow date but is not borrowed", b.Title)
		}
		if b.Borrower != "" {
			return fmt.Errorf("%q has a holder but is not borrowed", b.Title)
		}
		if len(b.WaitingList) > 0 {
			return fmt.Errorf("%q has a waiting list but is not borrowed", b.Title)
		}
		return nil
	}
	if b.BorrowedDate == "" {
		return fmt.Errorf("%q is borrowed without a borrow date", b.Title)
	}
	if _, err := time.Parse(DateLayout, b.BorrowedDate); err != nil {
		return fmt.Errorf("%q borrow date: %w", b.Title, err)
	}
	return nil
}

// DefaultBooks is the seed collection written when a catalog loads empty.
func DefaultBooks() []Book {
	seed := []struct {
		title, author string
		year          int
	}{
		{"Pemrograman Python", "Guido van Rossum", 2010},
		{"Algoritma dan Struktur Data", "Donald Knuth", 2005},
		{"Machine Learning", "Andrew Ng", 2018},
		{"Clean Code", "Robert C. Martin", 2008},
		{"The Pragmatic Programmer", "Andrew Hunt dan David Thomas", 1999},
		{"Introduction to Algorithms", "Thomas H. Cormen", 2009},
		{"Design Patterns", "Erich Gamma et al.", 1994},
		{"Automate the Boring Stuff with Python", "Al Sweigart", 2015},
		{"Eloquent JavaScript", "Marijn Haverbeke", 2011},
	}
	books := make([]Book, 0, len(seed))
	for _, s := range seed {
		books = append(books, NewBook(s.title, s.author, s.year))
	}
	return books
}

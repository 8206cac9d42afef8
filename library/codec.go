package library

import (
	"bytes"
	"errors"
	"fmt"

	jsoniter "github.com/json-iterator/go"
)

var (
	ErrMalformedSnapshot    = errors.New("catalog snapshot is malformed")
	ErrSavingSnapshotFailed = errors.New("saving catalog snapshot failed")
)

// snapshotJSON refuses fields it does not know about, so any record whose
// shape drifted from bookRecord fails the whole parse.
var snapshotJSON = jsoniter.Config{
	EscapeHTML:             false,
	SortMapKeys:            true,
	ValidateJsonRawMessage: true,
	DisallowUnknownFields:  true,
}.Froze()

// bookRecord is the on-disk schema. Pointers mark the fields that must be present.
type bookRecord struct {
	Title        *string   `json:"title"`
	Author       *string   `json:"author"`
	Year         *int      `json:"year"`
	IsBorrowed   *bool     `json:"isBorrowed"`
	Borrower     string    `json:"borrower"`
	BorrowedDate *string   `json:"borrowedDate"`
	WaitingList  *[]string `json:"waitingList"`
}

func (r bookRecord) book() (Book, error) {
	switch {
	case r.Title == nil:
		return Book{}, errors.New("missing title")
	case r.Author == nil:
		return Book{}, errors.New("missing author")
	case r.Year == nil:
		return Book{}, errors.New("missing year")
	case r.IsBorrowed == nil:
		return Book{}, errors.New("missing isBorrowed")
	case r.WaitingList == nil:
		return Book{}, errors.New("missing waitingList")
	}

	b := Book{
		Title:       *r.Title,
		Author:      *r.Author,
		Year:        *r.Year,
		IsBorrowed:  *r.IsBorrowed,
		Borrower:    r.Borrower,
		WaitingList: append([]string{}, *r.WaitingList...),
	}
	if r.BorrowedDate != nil {
		b.BorrowedDate = *r.BorrowedDate
	}
	if err := b.validate(); err != nil {
		return Book{}, err
	}
	return b, nil
}

// Parse decodes a snapshot. Empty input is an empty catalog; anything that
// does not match the schema is ErrMalformedSnapshot.
func Parse(data []byte) ([]Book, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return []Book{}, nil
	}

	var records []bookRecord
	if err := snapshotJSON.Unmarshal(data, &records); err != nil {
		return nil, errors.Join(ErrMalformedSnapshot, err)
	}

	books := make([]Book, 0, len(records))
	for i, r := range records {
		b, err := r.book()
		if err != nil {
			return nil, errors.Join(ErrMalformedSnapshot, fmt.Errorf("record %d: %w", i+1, err))
		}
		books = append(books, b)
	}
	return books, nil
}

// Marshal encodes the whole collection as an indented JSON array.
func Marshal(books []Book) ([]byte, error) {
	out := make([]Book, len(books))
	for i, b := range books {
		out[i] = b.clone()
	}
	data, err := snapshotJSON.MarshalIndent(out, "", "    ")
	if err != nil {
		return nil, fmt.Errorf("encoding catalog: %w", err)
	}
	return append(data, '\n'), nil
}

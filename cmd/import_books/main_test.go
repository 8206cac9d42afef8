package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-catalog/library"
)

func TestReadEntries(t *testing.T) {
	in := `- title: Refactoring
  author: Martin Fowler
  year: 1999
- title: Dune
  author: Frank Herbert
  year: 1965
`
	entries, err := readEntries(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, entry{Title: "Dune", Author: "Frank Herbert", Year: 1965}, entries[1])
}

func TestReadEntriesEmptyFile(t *testing.T) {
	entries, err := readEntries(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestReadEntriesRejectsUnknownKeys(t *testing.T) {
	_, err := readEntries(strings.NewReader("- title: X\n  isbn: 123\n"))
	assert.Error(t, err)
}

func TestImportEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "library.json")
	cat, err := library.Open(library.NewFileStore(path))
	require.NoError(t, err)

	var out bytes.Buffer
	imported, skipped, err := importEntries(cat, []entry{
		{Title: "Refactoring", Author: "Martin Fowler", Year: 1999},
		{Title: "", Author: "Nobody", Year: 2000},
	}, &out)
	require.NoError(t, err)
	assert.Equal(t, 1, imported)
	assert.Equal(t, 1, skipped)
	assert.Contains(t, out.String(), "Refactoring - Martin Fowler (1999) [Available]")

	books, err := library.NewFileStore(path).Load()
	require.NoError(t, err)
	assert.Len(t, books, 10)
	assert.Equal(t, "Refactoring", books[9].Title)
}

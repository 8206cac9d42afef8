package library

import (
	"cmp"
	"errors"
	"fmt"
	"strings"
)

// NotFound is returned by BinarySearch when no element matches.
const NotFound = -1

var ErrUnknownSortField = errors.New("unknown sort field")

// QuickSort returns a sorted copy of items. The middle element of each slice
// is the pivot; elements comparing equal to it are kept together in input
// order and never recursed into.
func QuickSort[T any](items []T, compare func(a, b T) int) []T {
	if len(items) <= 1 {
		return append([]T(nil), items...)
	}

	pivot := items[len(items)/2]
	var less, equal, greater []T
	for _, item := range items {
		switch c := compare(item, pivot); {
		case c < 0:
			less = append(less, item)
		case c > 0:
			greater = append(greater, item)
		default:
			equal = append(equal, item)
		}
	}

	out := make([]T, 0, len(items))
	out = append(out, QuickSort(less, compare)...)
	out = append(out, equal...)
	return append(out, QuickSort(greater, compare)...)
}

// BinarySearch looks for target in items, which must already be sorted by
// the key compare inspects. It returns the matching position or NotFound.
func BinarySearch[T, K any](items []T, target K, compare func(item T, target K) int) int {
	low, high := 0, len(items)-1
	for low <= high {
		mid := low + (high-low)/2
		switch c := compare(items[mid], target); {
		case c == 0:
			return mid
		case c < 0:
			low = mid + 1
		default:
			high = mid - 1
		}
	}
	return NotFound
}

// ByTitle orders books by title.
func ByTitle(a, b Book) int { return strings.Compare(a.Title, b.Title) }

// ByAuthor orders books by author, then title.
func ByAuthor(a, b Book) int {
	if c := strings.Compare(a.Author, b.Author); c != 0 {
		return c
	}
	return ByTitle(a, b)
}

// ByYear orders books by publication year, then title.
func ByYear(a, b Book) int {
	if c := cmp.Compare(a.Year, b.Year); c != 0 {
		return c
	}
	return ByTitle(a, b)
}

// TitleOf compares a book's title to a search target.
func TitleOf(b Book, title string) int { return strings.Compare(b.Title, title) }

// Comparator resolves a sort field name as accepted on the command line.
func Comparator(field string) (func(a, b Book) int, error) {
	switch strings.ToLower(strings.TrimSpace(field)) {
	case "", "title":
		return ByTitle, nil
	case "author":
		return ByAuthor, nil
	case "year":
		return ByYear, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSortField, field)
	}
}

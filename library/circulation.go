package library

import "time"

// BorrowKind tells which branch a borrow request took.
type BorrowKind int

const (
	// BorrowIssued means the book was available and is now held by the requester.
	BorrowIssued BorrowKind = iota + 1
	// BorrowQueued means the book was out and the requester joined its waiting list.
	BorrowQueued
)

// BorrowOutcome describes the result of Book.Borrow.
type BorrowOutcome struct {
	Kind BorrowKind
	Book Book
	// Position is the 1-based place in the waiting list for BorrowQueued.
	Position int
}

// ReturnKind tells which branch a return took.
type ReturnKind int

const (
	// ReturnNotBorrowed means the book was not out; nothing changed.
	ReturnNotBorrowed ReturnKind = iota + 1
	// ReturnSettled means the book is available again.
	ReturnSettled
	// ReturnReissued means the head of the waiting list now holds the book.
	ReturnReissued
)

// ReturnOutcome describes the result of Book.Return.
type ReturnOutcome struct {
	Kind       ReturnKind
	Book       Book
	ReturnedBy string
	ReissuedTo string
}

// Changed reports whether the return mutated the book.
func (o ReturnOutcome) Changed() bool { return o.Kind != ReturnNotBorrowed }

// Borrow hands the book to name, or appends name to the waiting list when
// someone already holds it.
func (b *Book) Borrow(name string, now time.Time) BorrowOutcome {
	if b.IsBorrowed {
		b.WaitingList = append(b.WaitingList, name)
		return BorrowOutcome{Kind: BorrowQueued, Book: b.clone(), Position: len(b.WaitingList)}
	}
	b.issue(name, now)
	return BorrowOutcome{Kind: BorrowIssued, Book: b.clone()}
}

// Return takes the book back from its holder. If anyone is waiting, the first
// of them receives it in the same step.
func (b *Book) Return(now time.Time) ReturnOutcome {
	if !b.IsBorrowed {
		return ReturnOutcome{Kind: ReturnNotBorrowed, Book: b.clone()}
	}

	returnedBy := b.Borrower
	b.IsBorrowed = false
	b.Borrower = ""
	b.BorrowedDate = ""

	if len(b.WaitingList) == 0 {
		return ReturnOutcome{Kind: ReturnSettled, Book: b.clone(), ReturnedBy: returnedBy}
	}

	next := b.WaitingList[0]
	b.WaitingList = append([]string{}, b.WaitingList[1:]...)
	b.issue(next, now)
	return ReturnOutcome{Kind: ReturnReissued, Book: b.clone(), ReturnedBy: returnedBy, ReissuedTo: next}
}

func (b *Book) issue(name string, now time.Time) {
	b.IsBorrowed = true
	b.Borrower = name
	b.BorrowedDate = now.Format(DateLayout)
	if b.WaitingList == nil {
		b.WaitingList = []string{}
	}
}

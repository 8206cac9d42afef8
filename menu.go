package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"

	"library-catalog/auth"
	"library-catalog/library"
)

func isTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// console runs the text menus against one catalog.
type console struct {
	sc   *bufio.Scanner
	out  io.Writer
	cat  *library.Catalog
	gate *auth.Gate

	readSecret func(prompt string) (string, error)
}

func newConsole(in io.Reader, out io.Writer, cat *library.Catalog, gate *auth.Gate) *console {
	c := &console{
		sc:   bufio.NewScanner(in),
		out:  out,
		cat:  cat,
		gate: gate,
	}
	c.readSecret = c.readLine
	if f, isFile := in.(*os.File); isFile && term.IsTerminal(int(f.Fd())) {
		c.readSecret = func(prompt string) (string, error) {
			return readPassword(out, f, prompt)
		}
	}
	return c
}

// readPassword reads a secret with masking.
func readPassword(out io.Writer, f *os.File, prompt string) (string, error) {
	fmt.Fprint(out, prompt)
	bytePassword, err := term.ReadPassword(int(f.Fd()))
	if err != nil {
		return "", err
	}
	fmt.Fprintln(out)
	return strings.TrimSpace(string(bytePassword)), nil
}

func (c *console) readLine(prompt string) (string, error) {
	fmt.Fprint(c.out, prompt)
	if !c.sc.Scan() {
		if err := c.sc.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(c.sc.Text()), nil
}

// Credentials and Rejected make the console an auth.Prompter.
func (c *console) Credentials() (string, string, error) {
	identity, err := c.readLine("\nUsername: ")
	if err != nil {
		return "", "", err
	}
	secret, err := c.readSecret("Password: ")
	if err != nil {
		return "", "", err
	}
	return identity, secret, nil
}

func (c *console) Rejected(remaining int) {
	warn(c.out, "Wrong username or password! Try again. (%d attempts left)", remaining)
}

// modeMenu asks for a role until the operator exits or input runs out.
func (c *console) modeMenu() error {
	fmt.Fprintln(c.out, "Welcome to the Digital Library!")
	for {
		header(c.out, "\nChoose mode:")
		fmt.Fprintln(c.out, "1. Admin")
		fmt.Fprintln(c.out, "2. Patron")
		fmt.Fprintln(c.out, "3. Exit")

		choice, err := c.readLine("Enter choice: ")
		if err != nil {
			return inputDone(err)
		}

		switch choice {
		case "1":
			err = c.adminSession()
		case "2":
			err = c.patronMenu()
		case "3":
			fmt.Fprintln(c.out, "Goodbye!")
			return nil
		default:
			warn(c.out, "Invalid choice!")
		}
		if err != nil {
			return err
		}
	}
}

// adminSession logs in through the gate and then runs the admin menu.
func (c *console) adminSession() error {
	who, err := c.gate.Login(c)
	switch {
	case errors.Is(err, auth.ErrTooManyAttempts):
		warn(c.out, "Too many attempts. Access denied.")
		return nil
	case err != nil:
		return inputDone(err)
	}
	ok(c.out, "Logged in as %s.", who)
	return c.adminMenu()
}

func (c *console) adminMenu() error {
	for {
		header(c.out, "\nLibrary Menu:")
		fmt.Fprintln(c.out, "1. Display Books")
		fmt.Fprintln(c.out, "2. Add Book")
		fmt.Fprintln(c.out, "3. Remove Book")
		fmt.Fprintln(c.out, "4. Search Book")
		fmt.Fprintln(c.out, "5. View Waiting Lists")
		fmt.Fprintln(c.out, "6. Exit")

		choice, err := c.readLine("Enter choice: ")
		if err != nil {
			return inputDone(err)
		}

		switch choice {
		case "1":
			c.handleDisplay()
		case "2":
			err = c.handleAddBook()
		case "3":
			err = c.handleRemoveBook()
		case "4":
			err = c.handleSearch()
		case "5":
			c.handleQueues()
		case "6":
			fmt.Fprintln(c.out, "Thank you for using the library!")
			return nil
		default:
			warn(c.out, "Invalid choice!")
		}
		if err != nil {
			return inputDone(err)
		}
	}
}

func (c *console) patronMenu() error {
	for {
		header(c.out, "\nLibrary Menu:")
		fmt.Fprintln(c.out, "1. Display Books")
		fmt.Fprintln(c.out, "2. Search Book")
		fmt.Fprintln(c.out, "3. Borrow Book")
		fmt.Fprintln(c.out, "4. Return Book")
		fmt.Fprintln(c.out, "5. Exit")

		choice, err := c.readLine("Enter choice: ")
		if err != nil {
			return inputDone(err)
		}

		switch choice {
		case "1":
			c.handleDisplay()
		case "2":
			err = c.handleSearch()
		case "3":
			err = c.handleBorrow()
		case "4":
			err = c.handleReturn()
		case "5":
			fmt.Fprintln(c.out, "Thank you for using the library!")
			return nil
		default:
			warn(c.out, "Invalid choice!")
		}
		if err != nil {
			return inputDone(err)
		}
	}
}

// inputDone turns end of input into a clean exit.
func inputDone(err error) error {
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// handleDisplay sorts the catalog by title and prints it. The numbers shown
// are the positions the other handlers accept.
func (c *console) handleDisplay() {
	if c.cat.Len() == 0 {
		warn(c.out, "No books in the library.")
		return
	}
	c.cat.Sort(library.ByTitle)
	header(c.out, "\nBook List:")
	fmt.Fprint(c.out, renderBooks(c.cat.Books()))
}

func (c *console) handleAddBook() error {
	title, err := c.readLine("Title: ")
	if err != nil {
		return err
	}
	author, err := c.readLine("Author: ")
	if err != nil {
		return err
	}
	yearStr, err := c.readLine("Year: ")
	if err != nil {
		return err
	}
	year, err := strconv.Atoi(yearStr)
	if err != nil {
		warn(c.out, "Invalid year: %s", yearStr)
		return nil
	}

	b, err := c.cat.Add(title, author, year)
	if errors.Is(err, library.ErrEmptyTitle) {
		warn(c.out, "Title cannot be empty!")
		return nil
	}
	if err != nil {
		return err
	}
	ok(c.out, "Book '%s' added!", b.Title)
	return nil
}

func (c *console) handleRemoveBook() error {
	c.handleDisplay()
	index, valid, err := c.readIndex("Number of the book to remove: ")
	if err != nil || !valid {
		return err
	}

	b, err := c.cat.RemoveAt(index)
	if errors.Is(err, library.ErrInvalidPosition) {
		warn(c.out, "Invalid book number!")
		return nil
	}
	if err != nil {
		return err
	}
	ok(c.out, "Book '%s' removed!", b.Title)
	return nil
}

func (c *console) handleSearch() error {
	title, err := c.readLine("Title to search for: ")
	if err != nil {
		return err
	}
	i, b, found := c.cat.Find(title)
	if !found {
		warn(c.out, "Book not found!")
		return nil
	}
	ok(c.out, "Book found: %d. %s", i+1, b)
	return nil
}

func (c *console) handleQueues() {
	books := c.cat.Queues()
	if len(books) == 0 {
		fmt.Fprintln(c.out, "Nobody is waiting for any book.")
		return
	}
	header(c.out, "\nWaiting Lists:")
	for _, b := range books {
		fmt.Fprintf(c.out, "%s: %s\n", b.Title, strings.Join(b.WaitingList, ", "))
	}
}

func (c *console) handleBorrow() error {
	c.handleDisplay()
	index, valid, err := c.readIndex("Number of the book to borrow: ")
	if err != nil || !valid {
		return err
	}
	name, err := c.readLine("Borrower name: ")
	if err != nil {
		return err
	}

	out, err := c.cat.Borrow(index, name)
	switch {
	case errors.Is(err, library.ErrInvalidPosition):
		warn(c.out, "Invalid book number!")
		return nil
	case errors.Is(err, library.ErrEmptyName):
		warn(c.out, "Borrower name cannot be empty!")
		return nil
	case err != nil:
		return err
	}

	if out.Kind == library.BorrowQueued {
		warn(c.out, "Book is currently borrowed. %s joined the waiting list at position %d.", name, out.Position)
		return nil
	}
	ok(c.out, "Book '%s' borrowed by %s!", out.Book.Title, out.Book.Borrower)
	return nil
}

func (c *console) handleReturn() error {
	c.handleDisplay()
	index, valid, err := c.readIndex("Number of the book to return: ")
	if err != nil || !valid {
		return err
	}

	out, err := c.cat.Return(index)
	if errors.Is(err, library.ErrInvalidPosition) {
		warn(c.out, "Invalid book number!")
		return nil
	}
	if err != nil {
		return err
	}

	switch out.Kind {
	case library.ReturnNotBorrowed:
		warn(c.out, "This book is not borrowed!")
	case library.ReturnReissued:
		ok(c.out, "Book '%s' is now borrowed by %s!", out.Book.Title, out.ReissuedTo)
	default:
		ok(c.out, "Book '%s' returned!", out.Book.Title)
	}
	return nil
}

// readIndex reads a 1-based book number and converts it to a position.
// A non-numeric answer is reported and valid is false.
func (c *console) readIndex(prompt string) (index int, valid bool, err error) {
	s, err := c.readLine(prompt)
	if err != nil {
		return 0, false, err
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		warn(c.out, "Invalid book number!")
		return 0, false, nil
	}
	return n - 1, true, nil
}

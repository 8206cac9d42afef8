package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"

	"library-catalog/library"
)

const (
	titleWidth  = 40
	authorWidth = 28
)

var (
	numStyle       = lipgloss.NewStyle().Width(5).Align(lipgloss.Right).PaddingRight(1)
	titleStyle     = lipgloss.NewStyle().Width(titleWidth + 2).PaddingRight(2)
	authorStyle    = lipgloss.NewStyle().Width(authorWidth + 2).PaddingRight(2)
	yearStyle      = lipgloss.NewStyle().Width(6).PaddingRight(2)
	headingStyle   = lipgloss.NewStyle().Bold(true)
	availableStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("28"))
	borrowedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// renderBooks lays out books as a numbered table. Numbers are 1-based
// positions in the order given.
func renderBooks(books []library.Book) string {
	var sb strings.Builder
	sb.WriteString(headingStyle.Render(row("#", "Title", "Author", "Year", "Status")))
	sb.WriteString("\n")

	for i, b := range books {
		status := availableStyle.Render(library.Available.String())
		if b.IsBorrowed {
			status = borrowedStyle.Render(fmt.Sprintf("%s by %s since %s", library.Borrowed, b.Borrower, b.BorrowedDate))
			if n := len(b.WaitingList); n > 0 {
				status += dimStyle.Render(fmt.Sprintf(" (%d waiting)", n))
			}
		}
		sb.WriteString(row(fmt.Sprintf("%d.", i+1), b.Title, b.Author, fmt.Sprint(b.Year), status))
		sb.WriteString("\n")
	}
	return sb.String()
}

func row(num, title, author, year, status string) string {
	return lipgloss.JoinHorizontal(lipgloss.Top,
		numStyle.Render(num),
		titleStyle.Render(truncateString(title, titleWidth)),
		authorStyle.Render(truncateString(author, authorWidth)),
		yearStyle.Render(year),
		status,
	)
}

func truncateString(s string, maxLength int) string {
	r := []rune(s)
	if len(r) <= maxLength {
		return s
	}
	if maxLength <= 3 {
		return string(r[:maxLength])
	}
	return string(r[:maxLength-3]) + "..."
}

// ok prints a green success line.
func ok(w io.Writer, format string, a ...interface{}) {
	fmt.Fprintln(w, color.GreenString("✓"), fmt.Sprintf(format, a...))
}

// warn prints a yellow warning line.
func warn(w io.Writer, format string, a ...interface{}) {
	fmt.Fprintln(w, color.YellowString("!"), fmt.Sprintf(format, a...))
}

// header prints a cyan section heading.
func header(w io.Writer, format string, a ...interface{}) {
	fmt.Fprintln(w, color.CyanString(fmt.Sprintf(format, a...)))
}

// initColor disables color when asked to or when stdout is not a terminal.
func initColor(noColor bool) {
	if noColor || !isTTY() {
		color.NoColor = true
	}
}

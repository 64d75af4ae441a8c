// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"boardctl/internal/service"
)

const (
	// ListSeparator is the separator line for list sections.
	ListSeparator = "------------"

	// DeadlineLayout is how deadlines are displayed.
	DeadlineLayout = "2006-01-02 15:04"
)

// FormatBoardHeader formats the board line printed above its content.
func FormatBoardHeader(w io.Writer, boardID string, updated time.Time) {
	if updated.IsZero() {
		fmt.Fprintf(w, "board %s\n", boardID)
		return
	}
	fmt.Fprintf(w, "board %s (synced %s)\n", boardID, updated.Local().Format(DeadlineLayout))
}

// FormatNote formats a note line.
// Format: "{ID:>6}  {TEXT}\n"
func FormatNote(w io.Writer, note service.Note) {
	fmt.Fprintf(w, "%6s  %s\n", note.ID, normalizeText(note.Text))
}

// FormatListHeader formats a todo list section header with its progress.
func FormatListHeader(w io.Writer, list service.TodoList) {
	done := 0
	for _, it := range list.Items {
		if it.Completed {
			done++
		}
	}
	title := fmt.Sprintf("%s  #%s  [%d/%d]", normalizeListTitle(list.Title), list.ID, done, len(list.Items))
	if list.Deadline != nil {
		title += "  due " + list.Deadline.Format(DeadlineLayout)
	}
	fmt.Fprintln(w, ListSeparator)
	fmt.Fprintln(w, title)
	fmt.Fprintln(w, ListSeparator)
}

// FormatItem formats a todo item line.
// Format: "    [x] {ID:>4}  {TEXT}\n"
func FormatItem(w io.Writer, item service.TodoItem) {
	mark := " "
	if item.Completed {
		mark = "x"
	}
	fmt.Fprintf(w, "    [%s] %4s  %s\n", mark, item.ID, normalizeText(item.Text))
}

// FormatList formats a whole todo list.
func FormatList(w io.Writer, list service.TodoList) {
	FormatListHeader(w, list)
	for _, it := range list.Items {
		FormatItem(w, it)
	}
}

// normalizeText normalizes note and item text for single-line display.
// - Empty or whitespace-only text becomes "(empty)"
// - Newlines are replaced with spaces
func normalizeText(text string) string {
	text = strings.ReplaceAll(text, "\r", " ")
	text = strings.ReplaceAll(text, "\n", " ")
	if strings.TrimSpace(text) == "" {
		return "(empty)"
	}
	return text
}

// normalizeListTitle normalizes a list title for display.
func normalizeListTitle(title string) string {
	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return title
}

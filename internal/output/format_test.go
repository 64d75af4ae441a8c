package output_test

import (
	"bytes"
	"testing"
	"time"

	"boardctl/internal/output"
	"boardctl/internal/service"
)

func TestFormatNote(t *testing.T) {
	tests := []struct {
		name string
		note service.Note
		want string
	}{
		{"plain", service.Note{ID: "12", Text: "hello"}, "    12  hello\n"},
		{"multiline", service.Note{ID: "3", Text: "a\nb\r\nc"}, "     3  a b  c\n"},
		{"blank", service.Note{ID: "4", Text: "  "}, "     4  (empty)\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			output.FormatNote(&buf, tt.note)
			if buf.String() != tt.want {
				t.Errorf("expected %q, got %q", tt.want, buf.String())
			}
		})
	}
}

func TestFormatList(t *testing.T) {
	deadline := time.Date(2026, 10, 31, 20, 0, 0, 0, time.UTC)
	list := service.TodoList{
		ID:       "7",
		Title:    "Party",
		Deadline: &deadline,
		Items: []service.TodoItem{
			{ID: "8", Text: "Invite", Completed: true},
			{ID: "9", Text: "Cake"},
		},
	}

	var buf bytes.Buffer
	output.FormatList(&buf, list)

	want := "------------\n" +
		"Party  #7  [1/2]  due 2026-10-31 20:00\n" +
		"------------\n" +
		"    [x]    8  Invite\n" +
		"    [ ]    9  Cake\n"
	if buf.String() != want {
		t.Errorf("expected %q, got %q", want, buf.String())
	}
}

func TestFormatListHeader_Untitled(t *testing.T) {
	var buf bytes.Buffer
	output.FormatListHeader(&buf, service.TodoList{ID: "1"})

	want := "------------\n(untitled)  #1  [0/0]\n------------\n"
	if buf.String() != want {
		t.Errorf("expected %q, got %q", want, buf.String())
	}
}

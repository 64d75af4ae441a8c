package commands_test

import (
	"testing"

	"boardctl/internal/commands"
)

func TestRegistry_FindIsCaseInsensitive(t *testing.T) {
	r := commands.NewRegistry()
	if err := r.Register(&commands.ShowCmd{}); err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{"show", "SHOW", "ls"} {
		if _, ok := r.Find(name); !ok {
			t.Errorf("expected %q to resolve", name)
		}
	}
}

func TestRegistry_RejectsClash(t *testing.T) {
	r := commands.NewRegistry()
	if err := r.Register(&commands.AddNoteCmd{}); err != nil {
		t.Fatal(err)
	}
	if err := r.Register(&commands.AddNoteCmd{}); err == nil {
		t.Error("expected duplicate name to be rejected")
	}
}

func TestRegistry_AllGroupsByAccess(t *testing.T) {
	r := commands.NewRegistry()
	for _, c := range []commands.Command{
		&commands.AddNoteCmd{},
		&commands.VersionCmd{},
		&commands.LoginCmd{},
		&commands.ShowCmd{},
	} {
		if err := r.Register(c); err != nil {
			t.Fatal(err)
		}
	}

	var names []string
	for _, c := range r.All() {
		names = append(names, c.Name())
	}
	want := []string{"show", "version", "login", "addnote"}
	if len(names) != len(want) {
		t.Fatalf("expected %v, got %v", want, names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, names)
		}
	}
}

func TestDefaultRegistry_HasUndone(t *testing.T) {
	cmd := findCommand(t, "undone")
	if cmd.Access() != commands.Auth {
		t.Errorf("undone should need a session")
	}
}

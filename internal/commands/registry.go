package commands

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"sync"
)

// Registry maps command names and aliases to commands.
type Registry struct {
	mu    sync.RWMutex
	names map[string]Command
	cmds  []Command
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{names: make(map[string]Command)}
}

// Register adds c under its name and aliases. Names are case-insensitive;
// a name already taken is an error and leaves the registry unchanged.
func (r *Registry) Register(c Command) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	keys := append([]string{c.Name()}, c.Aliases()...)
	for i, k := range keys {
		keys[i] = strings.ToLower(k)
		if _, taken := r.names[keys[i]]; taken {
			return fmt.Errorf("command name already registered: %s", k)
		}
	}
	for _, k := range keys {
		r.names[k] = c
	}
	r.cmds = append(r.cmds, c)
	return nil
}

// Find looks up a command by name or alias.
func (r *Registry) Find(name string) (Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cmd, ok := r.names[strings.ToLower(name)]
	return cmd, ok
}

// All returns every command once, grouped by Access and sorted by name
// within a group.
func (r *Registry) All() []Command {
	r.mu.RLock()
	out := slices.Clone(r.cmds)
	r.mu.RUnlock()

	slices.SortFunc(out, func(a, b Command) int {
		if c := cmp.Compare(a.Access(), b.Access()); c != 0 {
			return c
		}
		return cmp.Compare(a.Name(), b.Name())
	})
	return out
}

// DefaultRegistry is the registry the dispatcher uses.
var DefaultRegistry = NewRegistry()

// Register adds c to DefaultRegistry and panics on a name clash.
func Register(c Command) {
	if err := DefaultRegistry.Register(c); err != nil {
		panic(err)
	}
}

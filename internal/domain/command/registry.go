package command

import (
	"fmt"
	"sort"
	"sync"
)

// Registration pairs a command definition with its handler
type Registration struct {
	Command Command
	Handler Handler
}

// Registry maps command names to handlers. Population happens once at the
// composition root; duplicate registration is a startup failure.
type Registry struct {
	mu       sync.RWMutex
	commands map[Name]Registration
}

// NewRegistry creates an empty command registry
func NewRegistry() *Registry {
	return &Registry{commands: make(map[Name]Registration)}
}

// Register adds a command; it fails fast on duplicate names
func (r *Registry) Register(cmd Command, handler Handler) error {
	if _, err := ParseName(cmd.Name.String()); err != nil {
		return err
	}
	if handler == nil {
		return fmt.Errorf("command %s: handler must not be nil", cmd.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.commands[cmd.Name]; exists {
		return fmt.Errorf("command %s: already registered", cmd.Name)
	}
	r.commands[cmd.Name] = Registration{Command: cmd, Handler: handler}
	return nil
}

// MustRegister registers or panics; for use at startup only
func (r *Registry) MustRegister(cmd Command, handler Handler) {
	if err := r.Register(cmd, handler); err != nil {
		panic(err)
	}
}

// Resolve finds a registered command by name
func (r *Registry) Resolve(name Name) (Registration, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	reg, ok := r.commands[name]
	return reg, ok
}

// Names returns all registered command names, sorted
func (r *Registry) Names() []Name {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]Name, 0, len(r.commands))
	for n := range r.commands {
		names = append(names, n)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

package tools

import (
	"fmt"
	"sort"

	"github.com/agentdesk/agentdesk/internal/models"
)

// Registry holds the tools available to agent configurations. It is filled
// at startup and frozen before the server accepts requests; after Freeze the
// maps are never written again, so lookups need no locking.
type Registry struct {
	tools  map[string]Tool
	frozen bool
}

// NewRegistry creates an empty, unfrozen registry
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Tool)}
}

// Register adds a tool. Names are unique.
func (r *Registry) Register(t Tool) error {
	if r.frozen {
		return fmt.Errorf("register %q: %w", t.Name, models.ErrRegistryFrozen)
	}
	if t.Name == "" {
		return fmt.Errorf("register: tool name is required")
	}
	if t.Invoke == nil {
		return fmt.Errorf("register %q: Invoke is nil", t.Name)
	}
	if _, ok := r.tools[t.Name]; ok {
		return fmt.Errorf("register %q: %w", t.Name, models.ErrDuplicateTool)
	}
	r.tools[t.Name] = t
	return nil
}

// MustRegister is Register for startup wiring where a failure is a bug
func (r *Registry) MustRegister(tools ...Tool) {
	for _, t := range tools {
		if err := r.Register(t); err != nil {
			panic(err)
		}
	}
}

// Freeze makes the registry read-only
func (r *Registry) Freeze() {
	r.frozen = true
}

// Lookup returns the named tool or an error wrapping models.ErrToolNotFound
func (r *Registry) Lookup(name string) (Tool, error) {
	t, ok := r.tools[name]
	if !ok {
		return Tool{}, fmt.Errorf("%q: %w", name, models.ErrToolNotFound)
	}
	return t, nil
}

// Select resolves a tool set in the given order
func (r *Registry) Select(names ...string) ([]Tool, error) {
	set := make([]Tool, 0, len(names))
	for _, n := range names {
		t, err := r.Lookup(n)
		if err != nil {
			return nil, err
		}
		set = append(set, t)
	}
	return set, nil
}

// Names returns registered tool names, sorted
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.tools))
	for n := range r.tools {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

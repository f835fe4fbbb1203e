package command

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrDuplicateName is returned when a name or alias is already taken.
var ErrDuplicateName = errors.New("duplicate command name")

// Registry maps command names and aliases to handlers. It is filled once at
// startup and only read afterwards, so lookups take no locks.
type Registry struct {
	caseSensitive bool
	byName        map[string]Handler
	handlers      []Handler
}

// NewRegistry returns an empty registry. Unless caseSensitive is set, names
// and lookups are folded to lower case.
func NewRegistry(caseSensitive bool) *Registry {
	return &Registry{
		caseSensitive: caseSensitive,
		byName:        make(map[string]Handler),
	}
}

func (r *Registry) key(name string) string {
	if r.caseSensitive {
		return name
	}
	return strings.ToLower(name)
}

// Register adds h under its name and aliases. On any collision nothing is
// registered and the error wraps ErrDuplicateName.
func (r *Registry) Register(h Handler) error {
	keys := append([]string{h.Name()}, h.Aliases()...)
	seen := make(map[string]bool, len(keys))
	for _, k := range keys {
		k = r.key(k)
		if k == "" {
			return fmt.Errorf("command %q: empty name or alias", h.Name())
		}
		if seen[k] {
			return fmt.Errorf("command %q: %w: %q repeated", h.Name(), ErrDuplicateName, k)
		}
		if other, ok := r.byName[k]; ok {
			return fmt.Errorf("command %q: %w: %q already used by %q", h.Name(), ErrDuplicateName, k, other.Name())
		}
		seen[k] = true
	}
	for k := range seen {
		r.byName[k] = h
	}
	r.handlers = append(r.handlers, h)
	return nil
}

// MustRegister registers every handler and panics on the first error.
// Startup must not continue with colliding names.
func (r *Registry) MustRegister(hs ...Handler) {
	for _, h := range hs {
		if err := r.Register(h); err != nil {
			panic(err)
		}
	}
}

// Resolve returns the handler registered under name or alias.
func (r *Registry) Resolve(name string) (Handler, bool) {
	h, ok := r.byName[r.key(name)]
	return h, ok
}

// All returns every handler once, sorted by name.
func (r *Registry) All() []Handler {
	list := make([]Handler, len(r.handlers))
	copy(list, r.handlers)
	sort.Slice(list, func(i, j int) bool {
		return list[i].Name() < list[j].Name()
	})
	return list
}

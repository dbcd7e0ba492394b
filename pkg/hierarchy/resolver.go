package hierarchy

import "github.com/matzehuels/componentscope/pkg/normalize"

// Resolver maps normalized component names to canonical ids.
//
// A Resolver belongs to a single build. The first declaration of a name wins;
// later declarations with an equal key are ignored, so resolution does not
// depend on how many duplicates a file carries.
type Resolver struct {
	ids map[normalize.Key]string
}

// NewResolver returns an empty resolver.
func NewResolver() *Resolver {
	return &Resolver{ids: make(map[normalize.Key]string)}
}

// Declare registers id under the normalized form of name. It reports whether
// the declaration was recorded (false when the key was already taken).
func (r *Resolver) Declare(name, id string) bool {
	key := normalize.Normalize(name)
	if _, exists := r.ids[key]; exists {
		return false
	}
	r.ids[key] = id
	return true
}

// Lookup returns the canonical id declared for name.
func (r *Resolver) Lookup(name string) (string, bool) {
	id, ok := r.ids[normalize.Normalize(name)]
	return id, ok
}

// Resolve returns the canonical id for name, or fallback when the name was
// never declared. The boolean reports whether a declaration matched.
func (r *Resolver) Resolve(name, fallback string) (string, bool) {
	if id, ok := r.Lookup(name); ok {
		return id, true
	}
	return fallback, false
}

// Len returns the number of distinct declared keys.
func (r *Resolver) Len() int { return len(r.ids) }

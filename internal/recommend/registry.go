package recommend

import "strings"

// TagRegistry is the growing vocabulary of every tag the engine has seen.
type TagRegistry struct {
	order []string
	seen  map[string]struct{}
}

func NewTagRegistry(initial ...string) *TagRegistry {
	r := &TagRegistry{seen: make(map[string]struct{})}
	r.Observe(initial...)
	return r
}

// Observe folds tags in; blank tags are ignored.
func (r *TagRegistry) Observe(tags ...string) {
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, ok := r.seen[tag]; ok {
			continue
		}
		r.seen[tag] = struct{}{}
		r.order = append(r.order, tag)
	}
}

func (r *TagRegistry) Contains(tag string) bool {
	_, ok := r.seen[tag]
	return ok
}

func (r *TagRegistry) Len() int {
	return len(r.order)
}

// Known returns tags in first-seen order.
func (r *TagRegistry) Known() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

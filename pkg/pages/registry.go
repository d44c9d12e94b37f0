package pages

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// ErrDuplicateRoute is returned when a route is registered twice.
var ErrDuplicateRoute = errors.New("pages: duplicate route")

// Registry holds layouts keyed by route. It is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	layouts map[string]Layout
}

// NewRegistry returns a registry seeded with layouts.
func NewRegistry(layouts ...Layout) (*Registry, error) {
	reg := &Registry{layouts: make(map[string]Layout, len(layouts))}
	for _, layout := range layouts {
		if err := reg.Register(layout); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// Register adds a layout. Routes are normalised to a leading slash without a
// trailing one and titles are sanitised.
func (r *Registry) Register(layout Layout) error {
	if r == nil {
		return errors.New("pages: registry is nil")
	}
	route := NormalizeRoute(layout.Route)
	if route == "" {
		return errors.New("pages: route is required")
	}
	title := SanitizeText(layout.Metadata.Title)
	if title == "" {
		return fmt.Errorf("pages: route %s has no title", route)
	}
	layout.Route = route
	layout.Metadata.Title = title
	layout.Metadata.Description = SanitizeText(layout.Metadata.Description)

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.layouts == nil {
		r.layouts = make(map[string]Layout)
	}
	if _, exists := r.layouts[route]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateRoute, route)
	}
	r.layouts[route] = layout
	return nil
}

// Lookup returns the layout registered for route.
func (r *Registry) Lookup(route string) (Layout, bool) {
	if r == nil {
		return Layout{}, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	layout, ok := r.layouts[NormalizeRoute(route)]
	return layout, ok
}

// Layouts returns every layout sorted by route.
func (r *Registry) Layouts() []Layout {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	out := make([]Layout, 0, len(r.layouts))
	for _, layout := range r.layouts {
		out = append(out, layout)
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Route < out[j].Route })
	return out
}

// NormalizeRoute trims whitespace, ensures a leading slash and drops a
// trailing one.
func NormalizeRoute(route string) string {
	trimmed := strings.TrimSpace(route)
	if trimmed == "" {
		return ""
	}
	if !strings.HasPrefix(trimmed, "/") {
		trimmed = "/" + trimmed
	}
	if len(trimmed) > 1 {
		trimmed = strings.TrimRight(trimmed, "/")
		if trimmed == "" {
			trimmed = "/"
		}
	}
	return trimmed
}

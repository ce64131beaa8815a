package usecases

import (
	"strings"
)

// VisibilityFilter derives, from the live search query, which marker
// handles are shown. Filtering is a visual toggle only: handles are never
// created or destroyed here.
type VisibilityFilter struct {
	registry *MarkerRegistry
	query    string
}

// NewVisibilityFilter creates a filter over registry with no active query.
func NewVisibilityFilter(registry *MarkerRegistry) *VisibilityFilter {
	return &VisibilityFilter{registry: registry}
}

// Apply sets the current query and updates every handle. A blank or
// whitespace-only query shows everything; otherwise a case-insensitive
// substring match against the entity name decides.
func (f *VisibilityFilter) Apply(query string) {
	f.query = strings.TrimSpace(query)
	f.Reapply()
}

// Reapply re-evaluates the active query against the current handle set.
// The session calls this after every reconcile so newly created markers
// inherit the filter state instead of defaulting to visible.
func (f *VisibilityFilter) Reapply() {
	if f.query == "" {
		f.registry.Each(func(h *MarkerHandle) {
			f.registry.setVisible(h, true)
		})
		return
	}

	needle := strings.ToLower(f.query)
	f.registry.Each(func(h *MarkerHandle) {
		match := strings.Contains(strings.ToLower(h.Entity.Name), needle)
		f.registry.setVisible(h, match)
	})
}

// Query returns the active (trimmed) query.
func (f *VisibilityFilter) Query() string { return f.query }

package pages

import (
	"context"
	"net/http"
)

// Built-in routes and titles.
const (
	RouteProfileEmail    = "/profile/email"
	RouteProfileSettings = "/profile/settings"

	TitleProfileEmail    = "Email Settings | Allama"
	TitleProfileSettings = "Profile Settings | Allama"
)

// Metadata is what an external renderer reads for a page.
type Metadata struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// Layout binds static Metadata to a route.
type Layout struct {
	Route    string   `json:"route"`
	Metadata Metadata `json:"metadata"`
}

// Title returns the static page title.
func (l Layout) Title() string {
	return l.Metadata.Title
}

type metadataKey struct{}

// Wrap returns a handler that serves children unchanged. The only effect is
// that MetadataFromContext returns the layout metadata inside children.
func (l Layout) Wrap(children http.Handler) http.Handler {
	if children == nil {
		children = http.NotFoundHandler()
	}
	meta := l.Metadata
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		children.ServeHTTP(w, r.WithContext(WithMetadata(r.Context(), meta)))
	})
}

// WithMetadata stores meta on ctx.
func WithMetadata(ctx context.Context, meta Metadata) context.Context {
	return context.WithValue(ctx, metadataKey{}, meta)
}

// MetadataFromContext returns the metadata published by the closest Wrap.
func MetadataFromContext(ctx context.Context) (Metadata, bool) {
	if ctx == nil {
		return Metadata{}, false
	}
	meta, ok := ctx.Value(metadataKey{}).(Metadata)
	return meta, ok
}

// DefaultLayouts returns the built-in profile layouts.
func DefaultLayouts() []Layout {
	return []Layout{
		{Route: RouteProfileEmail, Metadata: Metadata{Title: TitleProfileEmail}},
		{Route: RouteProfileSettings, Metadata: Metadata{Title: TitleProfileSettings}},
	}
}

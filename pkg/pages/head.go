package pages

import (
	"context"
	"errors"
	"io"

	"github.com/goliatone/go-editorschema/pkg/render/template"
	"github.com/goliatone/go-editorschema/pkg/render/template/gotemplate"
)

const headTemplate = "head"

// HeadRenderer renders the <head> fragment for page metadata.
type HeadRenderer struct {
	renderer template.TemplateRenderer
}

// NewHeadRenderer wraps renderer. A nil renderer selects the embedded
// templates.
func NewHeadRenderer(renderer template.TemplateRenderer) (*HeadRenderer, error) {
	if renderer == nil {
		engine, err := gotemplate.New(gotemplate.WithFS(TemplatesFS()))
		if err != nil {
			return nil, err
		}
		renderer = engine
	}
	return &HeadRenderer{renderer: renderer}, nil
}

// Render renders meta, writing the output to out when supplied.
func (h *HeadRenderer) Render(meta Metadata, out ...io.Writer) (string, error) {
	if h == nil || h.renderer == nil {
		return "", errors.New("pages: head renderer is nil")
	}
	return h.renderer.RenderTemplate(headTemplate, map[string]any{
		"title":       meta.Title,
		"description": meta.Description,
	}, out...)
}

// RenderContext renders the metadata published on ctx by Layout.Wrap.
func (h *HeadRenderer) RenderContext(ctx context.Context, out ...io.Writer) (string, error) {
	meta, ok := MetadataFromContext(ctx)
	if !ok {
		return "", errors.New("pages: no layout metadata on context")
	}
	return h.Render(meta, out...)
}

// Package editorschema is the entry point for loading JSON Schema documents
// and reporting the editor components they declare under the
// "x-allama-component" extension.
package editorschema

import (
	"context"
	"errors"
	"fmt"

	internalloader "github.com/goliatone/go-editorschema/internal/loader"
	"github.com/goliatone/go-editorschema/pkg/document"
	"github.com/goliatone/go-editorschema/pkg/editor"
	"github.com/goliatone/go-editorschema/pkg/openapi"
)

// ComponentKey re-exports the reserved extension name.
const ComponentKey = editor.ComponentKey

// NewLoader builds a document loader. HTTP sources stay disabled unless an
// HTTP option is supplied.
func NewLoader(options ...document.LoaderOption) document.Loader {
	return internalloader.New(document.NewLoaderOptions(options...))
}

// Report summarises the annotations of a schema document.
type Report struct {
	Location string `json:"location"`
	// Root is the annotation on the document root.
	Root editor.Annotation `json:"-"`
	// Components are the valid components on the root node.
	Components []editor.Component `json:"components"`
	// Multiple mirrors HasMultipleComponents for the root node.
	Multiple bool `json:"multiple"`
	// Bindings lists every annotated node, the root included.
	Bindings []editor.Binding `json:"bindings"`
}

// Dropped returns the number of invalid entries across all bindings.
func (r Report) Dropped() int {
	total := 0
	for _, binding := range r.Bindings {
		total += len(binding.Dropped)
	}
	return total
}

// Inspect loads src and reports its annotations.
func Inspect(ctx context.Context, loader document.Loader, src document.Source) (Report, error) {
	doc, err := load(ctx, loader, src)
	if err != nil {
		return Report{}, err
	}
	return InspectDocument(doc)
}

// InspectDocument reports the annotations of an already loaded document.
func InspectDocument(doc document.Document) (Report, error) {
	schema, err := doc.Decode()
	if err != nil {
		return Report{}, err
	}
	report := InspectSchema(schema)
	report.Location = doc.Location()
	return report, nil
}

// InspectSchema reports the annotations of a decoded schema. It never fails.
func InspectSchema(schema editor.Schema) Report {
	bindings := editor.Collect(schema)
	if bindings == nil {
		bindings = []editor.Binding{}
	}
	return Report{
		Root:       editor.ParseAnnotation(schema),
		Components: editor.Components(schema),
		Multiple:   editor.HasMultipleComponents(schema),
		Bindings:   bindings,
	}
}

// InspectOpenAPI loads src as an OpenAPI 3 document and returns the
// annotated schemas of its operations.
func InspectOpenAPI(ctx context.Context, loader document.Loader, src document.Source, opts openapi.Options) ([]openapi.OperationBinding, error) {
	doc, err := load(ctx, loader, src)
	if err != nil {
		return nil, err
	}
	return openapi.Bindings(ctx, doc, opts)
}

func load(ctx context.Context, loader document.Loader, src document.Source) (document.Document, error) {
	if loader == nil {
		return document.Document{}, errors.New("editorschema: loader is nil")
	}
	doc, err := loader.Load(ctx, src)
	if err != nil {
		return document.Document{}, fmt.Errorf("editorschema: load: %w", err)
	}
	return doc, nil
}

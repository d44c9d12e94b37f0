package document

import (
	"bytes"
	"errors"
	"fmt"
	"path"
	"strings"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-editorschema/pkg/editor"
)

// Format is the encoding of a schema document.
type Format string

const (
	FormatUnknown Format = ""
	FormatJSON    Format = "json"
	FormatYAML    Format = "yaml"
)

// Document pairs the raw schema bytes with their origin.
type Document struct {
	source Source
	raw    []byte
}

// New wraps raw bytes read from src.
func New(src Source, raw []byte) (Document, error) {
	if src == nil {
		return Document{}, errors.New("document: source is required")
	}
	if len(raw) == 0 {
		return Document{}, fmt.Errorf("document: %s is empty", src.Location())
	}
	return Document{source: src, raw: append([]byte(nil), raw...)}, nil
}

// MustNew panics if the document cannot be created. Useful for tests.
func MustNew(src Source, raw []byte) Document {
	doc, err := New(src, raw)
	if err != nil {
		panic(err)
	}
	return doc
}

// Source returns the document origin.
func (d Document) Source() Source { return d.source }

// Raw returns a copy of the payload.
func (d Document) Raw() []byte { return append([]byte(nil), d.raw...) }

// Location returns the origin identifier.
func (d Document) Location() string {
	if d.source == nil {
		return ""
	}
	return d.source.Location()
}

// Format guesses the encoding from the location extension.
func (d Document) Format() Format {
	location := d.Location()
	if d.source != nil && d.source.Kind() == SourceKindURL {
		if idx := strings.IndexAny(location, "?#"); idx >= 0 {
			location = location[:idx]
		}
	}
	switch strings.ToLower(path.Ext(location)) {
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatUnknown
	}
}

// Decode parses the payload into the root schema object. JSON is tried first
// for unknown formats, then YAML.
func (d Document) Decode() (editor.Schema, error) {
	if len(d.raw) == 0 {
		return nil, errors.New("document: payload is empty")
	}
	switch d.Format() {
	case FormatJSON:
		return decodeJSON(d.raw, d.Location())
	case FormatYAML:
		return decodeYAML(d.raw, d.Location())
	}
	if schema, err := decodeJSON(d.raw, d.Location()); err == nil {
		return schema, nil
	}
	if schema, err := decodeYAML(d.raw, d.Location()); err == nil {
		return schema, nil
	}
	return nil, fmt.Errorf("document: parse %s: invalid JSON or YAML", d.Location())
}

// decodeJSON keeps numbers as json.Number so Encode writes them back
// unchanged.
func decodeJSON(raw []byte, location string) (editor.Schema, error) {
	var out map[string]any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("document: parse %s as JSON: %w", location, err)
	}
	if dec.More() {
		return nil, fmt.Errorf("document: parse %s as JSON: trailing data after top-level value", location)
	}
	if out == nil {
		return nil, fmt.Errorf("document: %s is not a JSON object", location)
	}
	return editor.Schema(out), nil
}

func decodeYAML(raw []byte, location string) (editor.Schema, error) {
	var out map[string]any
	if err := yaml.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("document: parse %s as YAML: %w", location, err)
	}
	if out == nil {
		return nil, fmt.Errorf("document: %s is not a YAML mapping", location)
	}
	return editor.Schema(out), nil
}

// Encode serialises schema in the requested format with stable key order.
// JSON output is indented and does not escape HTML characters.
func Encode(schema editor.Schema, format Format) ([]byte, error) {
	switch format {
	case FormatYAML:
		out, err := yaml.Marshal(map[string]any(schema))
		if err != nil {
			return nil, fmt.Errorf("document: encode YAML: %w", err)
		}
		return out, nil
	default:
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		if err := enc.Encode(map[string]any(schema)); err != nil {
			return nil, fmt.Errorf("document: encode JSON: %w", err)
		}
		return buf.Bytes(), nil
	}
}

// Package lint reports malformed x-allama-component annotations. It is the
// strict counterpart of pkg/editor, which silently drops what it cannot use.
package lint

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/goliatone/go-editorschema/pkg/document"
	"github.com/goliatone/go-editorschema/pkg/editor"
	"github.com/goliatone/go-editorschema/pkg/openapi"
)

// Severity grades a violation.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Violation is a single lint finding.
type Violation struct {
	File     string   `json:"file"`
	Location string   `json:"location"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

func (v Violation) String() string {
	return fmt.Sprintf("%s: %s -> %s (%s)", v.File, v.Location, v.Message, v.Severity)
}

// Linter loads documents and lints their annotations.
type Linter struct {
	loader document.Loader
	// UnknownIDs toggles the warning for component ids outside
	// editor.KnownComponentIDs.
	UnknownIDs bool
}

// New returns a Linter backed by loader.
func New(loader document.Loader) *Linter {
	return &Linter{loader: loader, UnknownIDs: true}
}

// File lints a single source. OpenAPI documents are linted per operation;
// anything else is treated as a plain JSON Schema.
func (l *Linter) File(ctx context.Context, src document.Source) ([]Violation, error) {
	if l == nil || l.loader == nil {
		return nil, errors.New("lint: loader is nil")
	}
	doc, err := l.loader.Load(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("lint: load %s: %w", src.Location(), err)
	}
	schema, err := doc.Decode()
	if err != nil {
		return nil, fmt.Errorf("lint: decode %s: %w", src.Location(), err)
	}

	if _, ok := schema["openapi"]; ok {
		bindings, err := openapi.Bindings(ctx, doc, openapi.Options{})
		if err != nil {
			return nil, fmt.Errorf("lint: parse %s: %w", src.Location(), err)
		}
		return l.Operations(doc.Location(), bindings), nil
	}
	return l.Schema(doc.Location(), schema), nil
}

// Files lints every source and returns the sorted union of violations. The
// first load or decode failure aborts the run.
func (l *Linter) Files(ctx context.Context, sources ...document.Source) ([]Violation, error) {
	var result []Violation
	for _, src := range sources {
		linted, err := l.File(ctx, src)
		if err != nil {
			return nil, err
		}
		result = append(result, linted...)
	}
	Sort(result)
	return result, nil
}

// Schema lints every annotated node of a decoded JSON Schema.
func (l *Linter) Schema(file string, root editor.Schema) []Violation {
	var result []Violation
	for _, binding := range editor.Collect(root) {
		result = append(result, l.check(file, binding.Pointer, finding{
			sequence:   binding.Sequence,
			components: binding.Components,
			dropped:    binding.Dropped,
			multiple:   binding.Multiple,
		})...)
	}
	Sort(result)
	return result
}

// Operations lints annotations collected from an OpenAPI document.
func (l *Linter) Operations(file string, bindings []openapi.OperationBinding) []Violation {
	var result []Violation
	for _, binding := range bindings {
		location := strings.Join([]string{binding.Location, binding.Pointer}, " ")
		if binding.OperationID != "" {
			location = "operation " + binding.OperationID + " " + location
		}
		result = append(result, l.check(file, location, finding{
			sequence:   binding.Sequence,
			components: binding.Components,
			dropped:    binding.Dropped,
			multiple:   binding.Multiple,
		})...)
	}
	Sort(result)
	return result
}

type finding struct {
	sequence   bool
	components []editor.Component
	dropped    []int
	multiple   bool
}

func (l *Linter) check(file, location string, f finding) []Violation {
	if !f.sequence {
		return []Violation{{
			File:     file,
			Location: location,
			Message:  editor.ComponentKey + " must be an array of component records",
			Severity: SeverityError,
		}}
	}

	var result []Violation
	for _, idx := range f.dropped {
		result = append(result, Violation{
			File:     file,
			Location: location,
			Message:  fmt.Sprintf("entry %d is not a component record with a string %s", idx, editor.ComponentIDField),
			Severity: SeverityError,
		})
	}
	for _, component := range f.components {
		id := component.ID()
		if !editor.IsKnownComponentID(id) {
			if l.UnknownIDs {
				result = append(result, Violation{
					File:     file,
					Location: location,
					Message:  fmt.Sprintf("unknown component id %q", id),
					Severity: SeverityWarning,
				})
			}
			continue
		}
		if _, err := editor.DecodeTyped(component); err != nil {
			result = append(result, Violation{
				File:     file,
				Location: location,
				Message:  fmt.Sprintf("invalid %q options: %v", id, err),
				Severity: SeverityError,
			})
		}
	}
	if f.multiple && len(f.components) < 2 {
		result = append(result, Violation{
			File:     file,
			Location: location,
			Message:  fmt.Sprintf("multiple entries declared but only %d valid component(s)", len(f.components)),
			Severity: SeverityWarning,
		})
	}
	return result
}

// Sort orders violations by file, location and message.
func Sort(violations []Violation) {
	sort.SliceStable(violations, func(i, j int) bool {
		if violations[i].File == violations[j].File {
			if violations[i].Location == violations[j].Location {
				return violations[i].Message < violations[j].Message
			}
			return violations[i].Location < violations[j].Location
		}
		return violations[i].File < violations[j].File
	})
}

// HasErrors reports whether any violation has error severity.
func HasErrors(violations []Violation) bool {
	for _, v := range violations {
		if v.Severity == SeverityError {
			return true
		}
	}
	return false
}

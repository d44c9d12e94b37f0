package editor

import (
	"errors"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// SkipChildren may be returned by a WalkFunc to skip the nested schemas of
// the current node.
var SkipChildren = errors.New("editor: skip children")

// WalkFunc is called for every schema node. pointer is a JSON pointer
// fragment rooted at "#".
type WalkFunc func(pointer string, node Schema) error

// Keywords whose value is a map of subschemas.
var schemaMapKeywords = []string{
	"$defs",
	"definitions",
	"dependentSchemas",
	"patternProperties",
	"properties",
}

// Keywords whose value is a single subschema.
var schemaKeywords = []string{
	"additionalItems",
	"additionalProperties",
	"contains",
	"else",
	"if",
	"items",
	"not",
	"propertyNames",
	"then",
	"unevaluatedItems",
	"unevaluatedProperties",
}

// Keywords whose value is a list of subschemas. items is included for the
// tuple form used by older drafts.
var schemaListKeywords = []string{
	"allOf",
	"anyOf",
	"items",
	"oneOf",
	"prefixItems",
}

// Walk visits root and every nested schema depth-first. Nodes that are not
// objects are ignored. A node already on the current path is not entered
// again, so self-referencing maps terminate.
func Walk(root Schema, fn WalkFunc) error {
	if root == nil || fn == nil {
		return nil
	}
	w := walker{fn: fn, active: make(map[uintptr]struct{})}
	return w.visit("#", map[string]any(root))
}

type walker struct {
	fn     WalkFunc
	active map[uintptr]struct{}
}

func (w *walker) visit(pointer string, node map[string]any) error {
	id := reflect.ValueOf(node).Pointer()
	if _, seen := w.active[id]; seen {
		return nil
	}
	w.active[id] = struct{}{}
	defer delete(w.active, id)

	if err := w.fn(pointer, Schema(node)); err != nil {
		if errors.Is(err, SkipChildren) {
			return nil
		}
		return err
	}

	for _, keyword := range schemaMapKeywords {
		children, ok := asObject(node[keyword])
		if !ok {
			continue
		}
		for _, name := range sortedKeys(children) {
			if err := w.child(joinPointer(pointer, keyword, name), children[name]); err != nil {
				return err
			}
		}
	}
	for _, keyword := range schemaKeywords {
		if err := w.child(joinPointer(pointer, keyword), node[keyword]); err != nil {
			return err
		}
	}
	for _, keyword := range schemaListKeywords {
		items, ok := asSequence(node[keyword])
		if !ok {
			continue
		}
		for idx, item := range items {
			if err := w.child(joinPointer(pointer, keyword, strconv.Itoa(idx)), item); err != nil {
				return err
			}
		}
	}
	return nil
}

func (w *walker) child(pointer string, value any) error {
	node, ok := asObject(value)
	if !ok {
		return nil
	}
	return w.visit(pointer, node)
}

// Binding is an annotated schema node found by Collect.
type Binding struct {
	Pointer    string      `json:"pointer"`
	Components []Component `json:"components"`
	Multiple   bool        `json:"multiple"`
	Dropped    []int       `json:"dropped,omitempty"`
	Sequence   bool        `json:"sequence"`
}

// Collect returns every node under root that carries ComponentKey, in walk
// order.
func Collect(root Schema) []Binding {
	var out []Binding
	_ = Walk(root, func(pointer string, node Schema) error {
		annotation := ParseAnnotation(node)
		if !annotation.Present {
			return nil
		}
		out = append(out, Binding{
			Pointer:    pointer,
			Components: annotation.Components,
			Multiple:   annotation.Multiple(),
			Dropped:    annotation.Dropped,
			Sequence:   annotation.Sequence,
		})
		return nil
	})
	return out
}

// Resolve returns the node addressed by a JSON pointer fragment produced by
// Walk ("#", "#/properties/name", ...).
func Resolve(root Schema, pointer string) (Schema, bool) {
	trimmed := strings.TrimPrefix(strings.TrimSpace(pointer), "#")
	if trimmed == "" || trimmed == "/" {
		return root, root != nil
	}
	if !strings.HasPrefix(trimmed, "/") {
		return nil, false
	}
	var current any = map[string]any(root)
	for _, raw := range strings.Split(trimmed[1:], "/") {
		segment := unescapePointer(raw)
		if obj, ok := asObject(current); ok {
			next, found := obj[segment]
			if !found {
				return nil, false
			}
			current = next
			continue
		}
		items, ok := asSequence(current)
		if !ok {
			return nil, false
		}
		idx, err := strconv.Atoi(segment)
		if err != nil || idx < 0 || idx >= len(items) {
			return nil, false
		}
		current = items[idx]
	}
	node, ok := asObject(current)
	if !ok {
		return nil, false
	}
	return Schema(node), true
}

func joinPointer(pointer string, segments ...string) string {
	if pointer == "" {
		pointer = "#"
	}
	for _, segment := range segments {
		pointer += "/" + escapePointer(segment)
	}
	return pointer
}

func escapePointer(value string) string {
	return strings.NewReplacer("~", "~0", "/", "~1").Replace(value)
}

func unescapePointer(value string) string {
	return strings.NewReplacer("~1", "/", "~0", "~").Replace(value)
}

func sortedKeys(payload map[string]any) []string {
	keys := make([]string, 0, len(payload))
	for key := range payload {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

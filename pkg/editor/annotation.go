package editor

// Annotation is the parsed form of the ComponentKey value of a single schema
// node.
type Annotation struct {
	// Present is true when the node carries ComponentKey.
	Present bool
	// Sequence is true when the value is an ordered sequence.
	Sequence bool
	// Raw is the number of entries in the sequence, valid or not.
	Raw int
	// Components holds the valid records in their original order.
	Components []Component
	// Dropped lists the indexes of entries that are not valid components.
	Dropped []int
}

// Multiple mirrors HasMultipleComponents for the parsed value.
func (a Annotation) Multiple() bool {
	return a.Sequence && a.Raw > 1
}

// Clean reports whether the annotation is a sequence without dropped entries.
func (a Annotation) Clean() bool {
	return a.Present && a.Sequence && len(a.Dropped) == 0
}

// ParseAnnotation inspects the ComponentKey value of node. It never fails:
// non-object nodes produce a zero Annotation and a non-sequence value is
// reported through the Sequence flag.
func ParseAnnotation(node any) Annotation {
	value, found, _ := lookup(node, ComponentKey)
	out := Annotation{Present: found, Components: []Component{}}
	if !found {
		return out
	}
	items, ok := asSequence(value)
	if !ok {
		return out
	}
	out.Sequence = true
	out.Raw = len(items)
	for idx, item := range items {
		component, ok := toComponent(item)
		if !ok || !IsValidComponent(item) {
			out.Dropped = append(out.Dropped, idx)
			continue
		}
		out.Components = append(out.Components, component)
	}
	return out
}

// Annotate returns a shallow copy of schema with ComponentKey set to the
// supplied components. Passing no components removes the key. The input is
// left untouched.
func Annotate(schema Schema, components ...Component) Schema {
	out := make(Schema, len(schema)+1)
	for key, value := range schema {
		out[key] = value
	}
	if len(components) == 0 {
		delete(out, ComponentKey)
		return out
	}
	list := make([]any, len(components))
	for i, component := range components {
		list[i] = component
	}
	out[ComponentKey] = list
	return out
}

// NewComponent builds a component record with the given identifier and
// extra fields. Fields never override the identifier.
func NewComponent(id string, fields map[string]any) Component {
	out := make(Component, len(fields)+1)
	for key, value := range fields {
		out[key] = value
	}
	out[ComponentIDField] = id
	return out
}

package openapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-editorschema/pkg/document"
	"github.com/goliatone/go-editorschema/pkg/editor"
)

// OperationBinding is an annotated schema inside an operation.
type OperationBinding struct {
	OperationID string             `json:"operationId"`
	Method      string             `json:"method"`
	Path        string             `json:"path"`
	Location    string             `json:"location"`
	Pointer     string             `json:"pointer"`
	Components  []editor.Component `json:"components"`
	Multiple    bool               `json:"multiple"`
	Dropped     []int              `json:"dropped,omitempty"`
	Sequence    bool               `json:"sequence"`
}

// Options configures Bindings.
type Options struct {
	// ResolveExternalRefs allows kin-openapi to follow external $ref values.
	ResolveExternalRefs bool
}

// Bindings parses doc and returns every annotated schema reachable from an
// operation, sorted by operation id, location and pointer. Annotated
// components.schemas entries that no operation reaches are reported with an
// empty operation id and a "components.schemas.<name>" location.
func Bindings(ctx context.Context, doc document.Document, opts Options) ([]OperationBinding, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw := doc.Raw()
	if len(raw) == 0 {
		return nil, errors.New("openapi: document payload is empty")
	}

	loader := openapi3.NewLoader()
	loader.Context = ctx
	loader.IsExternalRefsAllowed = opts.ResolveExternalRefs

	api, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("openapi: load %s: %w", doc.Location(), err)
	}
	return FromOpenAPI(api), nil
}

// FromOpenAPI collects bindings from an already loaded OpenAPI document.
func FromOpenAPI(api *openapi3.T) []OperationBinding {
	if api == nil {
		return nil
	}

	reported := make(map[*openapi3.Schema]struct{})
	var out []OperationBinding
	if api.Paths != nil {
		for path, item := range api.Paths.Map() {
			if item == nil {
				continue
			}
			for method, op := range item.Operations() {
				if op == nil {
					continue
				}
				c := collector{
					base: OperationBinding{
						OperationID: operationID(op, method, path),
						Method:      strings.ToUpper(method),
						Path:        path,
					},
					active:   make(map[*openapi3.Schema]struct{}),
					reported: reported,
				}
				c.operation(op)
				out = append(out, c.out...)
			}
		}
	}

	if api.Components != nil {
		names := make([]string, 0, len(api.Components.Schemas))
		for name := range api.Components.Schemas {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			c := collector{
				active:   make(map[*openapi3.Schema]struct{}),
				reported: reported,
				orphans:  true,
			}
			c.schema("components.schemas."+name, "#", api.Components.Schemas[name])
			out = append(out, c.out...)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].OperationID != out[j].OperationID {
			return out[i].OperationID < out[j].OperationID
		}
		if out[i].Location != out[j].Location {
			return out[i].Location < out[j].Location
		}
		return out[i].Pointer < out[j].Pointer
	})
	return out
}

func operationID(op *openapi3.Operation, method, path string) string {
	if id := strings.TrimSpace(op.OperationID); id != "" {
		return id
	}
	return strings.ToUpper(method) + " " + path
}

type collector struct {
	base   OperationBinding
	active map[*openapi3.Schema]struct{}
	out    []OperationBinding

	// reported holds annotated schemas already bound to an operation.
	reported map[*openapi3.Schema]struct{}
	// orphans limits output to annotated schemas absent from reported.
	orphans bool
}

func (c *collector) operation(op *openapi3.Operation) {
	for _, param := range op.Parameters {
		if param == nil || param.Value == nil || param.Value.Schema == nil {
			continue
		}
		location := "parameters." + param.Value.In + "." + param.Value.Name
		c.schema(location, "#", param.Value.Schema)
	}

	if op.RequestBody != nil && op.RequestBody.Value != nil {
		c.content("requestBody", op.RequestBody.Value.Content)
	}

	if op.Responses == nil {
		return
	}
	responses := op.Responses.Map()
	codes := make([]string, 0, len(responses))
	for code := range responses {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	for _, code := range codes {
		response := responses[code]
		if response == nil || response.Value == nil {
			continue
		}
		c.content("responses."+code, response.Value.Content)
	}
}

func (c *collector) content(prefix string, content openapi3.Content) {
	mediaTypes := make([]string, 0, len(content))
	for mediaType := range content {
		mediaTypes = append(mediaTypes, mediaType)
	}
	sort.Strings(mediaTypes)
	for _, mediaType := range mediaTypes {
		media := content[mediaType]
		if media == nil || media.Schema == nil {
			continue
		}
		c.schema(prefix+"."+mediaType, "#", media.Schema)
	}
}

func (c *collector) schema(location, pointer string, ref *openapi3.SchemaRef) {
	if ref == nil || ref.Value == nil {
		return
	}
	node := ref.Value
	if _, seen := c.active[node]; seen {
		return
	}
	c.active[node] = struct{}{}
	defer delete(c.active, node)

	if value, ok := node.Extensions[editor.ComponentKey]; ok && c.bind(node) {
		annotation := editor.ParseAnnotation(map[string]any{editor.ComponentKey: extensionValue(value)})
		binding := c.base
		binding.Location = location
		binding.Pointer = pointer
		binding.Components = annotation.Components
		binding.Multiple = annotation.Multiple()
		binding.Dropped = annotation.Dropped
		binding.Sequence = annotation.Sequence
		c.out = append(c.out, binding)
	}

	names := make([]string, 0, len(node.Properties))
	for name := range node.Properties {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		c.schema(location, join(pointer, "properties", name), node.Properties[name])
	}
	c.schema(location, join(pointer, "items"), node.Items)
	c.schema(location, join(pointer, "not"), node.Not)
	c.schema(location, join(pointer, "additionalProperties"), node.AdditionalProperties.Schema)
	for keyword, list := range map[string]openapi3.SchemaRefs{
		"allOf": node.AllOf,
		"anyOf": node.AnyOf,
		"oneOf": node.OneOf,
	} {
		for idx, item := range list {
			c.schema(location, join(pointer, keyword, strconv.Itoa(idx)), item)
		}
	}
}

func (c *collector) bind(node *openapi3.Schema) bool {
	if c.orphans {
		_, done := c.reported[node]
		return !done
	}
	c.reported[node] = struct{}{}
	return true
}

// extensionValue decodes raw JSON extension payloads left undecoded by older
// kin-openapi releases.
func extensionValue(value any) any {
	switch v := value.(type) {
	case json.RawMessage:
		var decoded any
		if err := json.Unmarshal(v, &decoded); err != nil {
			return nil
		}
		return decoded
	default:
		return value
	}
}

func join(pointer string, segments ...string) string {
	replacer := strings.NewReplacer("~", "~0", "/", "~1")
	for _, segment := range segments {
		pointer += "/" + replacer.Replace(segment)
	}
	return pointer
}

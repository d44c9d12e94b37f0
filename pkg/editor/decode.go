package editor

import (
	"errors"
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// ErrUnknownComponent is returned by DecodeTyped for identifiers that have no
// typed configuration.
var ErrUnknownComponent = errors.New("editor: unknown component id")

// CodeEditor configures the code editor component.
type CodeEditor struct {
	ComponentID string `mapstructure:"component_id" json:"component_id"`
	Lang        string `mapstructure:"lang" json:"lang,omitempty"`
}

// Select configures a single or multi select.
type Select struct {
	ComponentID string   `mapstructure:"component_id" json:"component_id"`
	Options     []string `mapstructure:"options" json:"options,omitempty"`
	Multiple    bool     `mapstructure:"multiple" json:"multiple,omitempty"`
}

// TextArea configures a multi-line text input.
type TextArea struct {
	ComponentID string `mapstructure:"component_id" json:"component_id"`
	Rows        int    `mapstructure:"rows" json:"rows,omitempty"`
	Placeholder string `mapstructure:"placeholder" json:"placeholder,omitempty"`
}

// Integer configures a bounded integer input.
type Integer struct {
	ComponentID string `mapstructure:"component_id" json:"component_id"`
	MinVal      *int64 `mapstructure:"min_val" json:"min_val,omitempty"`
	MaxVal      *int64 `mapstructure:"max_val" json:"max_val,omitempty"`
	Step        *int64 `mapstructure:"step" json:"step,omitempty"`
}

// Float configures a bounded floating point input.
type Float struct {
	ComponentID string   `mapstructure:"component_id" json:"component_id"`
	MinVal      *float64 `mapstructure:"min_val" json:"min_val,omitempty"`
	MaxVal      *float64 `mapstructure:"max_val" json:"max_val,omitempty"`
	Step        *float64 `mapstructure:"step" json:"step,omitempty"`
}

// Toggle configures a boolean switch.
type Toggle struct {
	ComponentID string `mapstructure:"component_id" json:"component_id"`
	LabelOn     string `mapstructure:"label_on" json:"label_on,omitempty"`
	LabelOff    string `mapstructure:"label_off" json:"label_off,omitempty"`
}

// TagInput configures a free-form tag list.
type TagInput struct {
	ComponentID string `mapstructure:"component_id" json:"component_id"`
	Placeholder string `mapstructure:"placeholder" json:"placeholder,omitempty"`
}

// KeyValue configures a key/value pair editor.
type KeyValue struct {
	ComponentID      string `mapstructure:"component_id" json:"component_id"`
	KeyPlaceholder   string `mapstructure:"key_placeholder" json:"key_placeholder,omitempty"`
	ValuePlaceholder string `mapstructure:"value_placeholder" json:"value_placeholder,omitempty"`
}

// Text configures a single line text input.
type Text struct {
	ComponentID string `mapstructure:"component_id" json:"component_id"`
	Placeholder string `mapstructure:"placeholder" json:"placeholder,omitempty"`
}

// Plain covers components without options (yaml, action-type,
// workflow-alias, expression).
type Plain struct {
	ComponentID string `mapstructure:"component_id" json:"component_id"`
}

// Decode maps the component onto out, which must be a pointer to a struct
// using mapstructure tags. Unknown fields are ignored.
func Decode(c Component, out any) error {
	if !IsValidComponent(c) {
		return errors.New("editor: component_id is missing or not a string")
	}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  out,
		TagName: "mapstructure",
	})
	if err != nil {
		return fmt.Errorf("editor: build decoder: %w", err)
	}
	if err := decoder.Decode(map[string]any(c)); err != nil {
		return fmt.Errorf("editor: decode %q: %w", c.ID(), err)
	}
	return nil
}

// DecodeTyped decodes the component into the typed configuration registered
// for its identifier and returns a pointer to it.
func DecodeTyped(c Component) (any, error) {
	var out any
	switch c.ID() {
	case ComponentCode:
		out = &CodeEditor{}
	case ComponentSelect:
		out = &Select{}
	case ComponentTextArea:
		out = &TextArea{}
	case ComponentInteger:
		out = &Integer{}
	case ComponentFloat:
		out = &Float{}
	case ComponentToggle:
		out = &Toggle{}
	case ComponentTagInput:
		out = &TagInput{}
	case ComponentKeyValue:
		out = &KeyValue{}
	case ComponentText:
		out = &Text{}
	case ComponentYAML, ComponentActionType, ComponentWorkflowAlias, ComponentExpression:
		out = &Plain{}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownComponent, c.ID())
	}
	if err := Decode(c, out); err != nil {
		return nil, err
	}
	return out, nil
}

package editor

import "sort"

// Editor component identifiers understood by the product UI.
const (
	ComponentCode          = "code"
	ComponentSelect        = "select"
	ComponentTextArea      = "text-area"
	ComponentInteger       = "integer"
	ComponentFloat         = "float"
	ComponentToggle        = "toggle"
	ComponentTagInput      = "tag-input"
	ComponentKeyValue      = "key-value"
	ComponentText          = "text"
	ComponentYAML          = "yaml"
	ComponentActionType    = "action-type"
	ComponentWorkflowAlias = "workflow-alias"
	ComponentExpression    = "expression"
)

var knownComponentIDs = map[string]struct{}{
	ComponentCode:          {},
	ComponentSelect:        {},
	ComponentTextArea:      {},
	ComponentInteger:       {},
	ComponentFloat:         {},
	ComponentToggle:        {},
	ComponentTagInput:      {},
	ComponentKeyValue:      {},
	ComponentText:          {},
	ComponentYAML:          {},
	ComponentActionType:    {},
	ComponentWorkflowAlias: {},
	ComponentExpression:    {},
}

// IsKnownComponentID reports whether id is one of the built-in identifiers.
func IsKnownComponentID(id string) bool {
	_, ok := knownComponentIDs[id]
	return ok
}

// KnownComponentIDs returns the built-in identifiers in sorted order.
func KnownComponentIDs() []string {
	out := make([]string, 0, len(knownComponentIDs))
	for id := range knownComponentIDs {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

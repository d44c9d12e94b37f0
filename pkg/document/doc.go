// Package document wraps raw JSON Schema payloads together with their origin
// and decodes them into editor.Schema values.
package document

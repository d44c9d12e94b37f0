// Package editor reads the editor-component annotation embedded in JSON Schema
// documents under the reserved "x-allama-component" key.
//
// The readers in this package are fail-safe: they accept values of unknown
// shape (decoded JSON, YAML, hand-built maps) and degrade to false or an empty
// result instead of returning errors. Callers that want a typed view of a
// component opt into Decode, which does report errors.
package editor

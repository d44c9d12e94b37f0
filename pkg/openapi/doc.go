// Package openapi reports editor-component annotations found in the request
// bodies and parameters of OpenAPI 3 documents. Documents are parsed with
// kin-openapi; annotations are read with the fail-safe helpers from
// pkg/editor, so malformed values are reported as empty bindings rather than
// parse errors.
package openapi

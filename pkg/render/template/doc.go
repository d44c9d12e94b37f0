// Package template defines the renderer contract used to produce page markup
// and the pongo2 backed implementation in the gotemplate subpackage.
package template

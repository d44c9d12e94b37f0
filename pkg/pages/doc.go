// Package pages associates static page metadata with routes.
//
// A Layout is a route plus a title. Wrapping a handler with a Layout leaves
// the handler's output untouched and publishes the layout metadata on the
// request context, where a head renderer (see HeadRenderer) or any other
// consumer can read it. Layouts are usually loaded from YAML or JSON files;
// the embedded defaults cover the profile email and settings pages.
package pages

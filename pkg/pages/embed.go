package pages

import (
	"embed"
	"io/fs"
)

//go:embed layouts/*.yaml
var embeddedLayouts embed.FS

//go:embed templates/*.tpl
var embeddedTemplates embed.FS

// EmbeddedFS returns the bundled layout files for LoadFS.
func EmbeddedFS() fs.FS {
	sub, err := fs.Sub(embeddedLayouts, "layouts")
	if err != nil {
		panic(err)
	}
	return sub
}

// TemplatesFS returns the bundled head templates.
func TemplatesFS() fs.FS {
	sub, err := fs.Sub(embeddedTemplates, "templates")
	if err != nil {
		panic(err)
	}
	return sub
}

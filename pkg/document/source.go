package document

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

// Source identifies where a schema document came from so loaders can read
// files, fs.FS entries or URLs behind one interface.
type Source interface {
	Kind() SourceKind
	Location() string
}

// SourceKind enumerates the loader strategies.
type SourceKind string

const (
	SourceKindFile SourceKind = "file"
	SourceKindFS   SourceKind = "fs"
	SourceKindURL  SourceKind = "url"
)

type fileSource struct{ path string }

func (s fileSource) Kind() SourceKind { return SourceKindFile }
func (s fileSource) Location() string { return s.path }

// SourceFromFile returns a Source for a path on disk.
func SourceFromFile(path string) Source {
	return fileSource{path: filepath.Clean(path)}
}

type fsSource struct{ name string }

func (s fsSource) Kind() SourceKind { return SourceKindFS }
func (s fsSource) Location() string { return s.name }

// SourceFromFS returns a Source naming an entry inside an fs.FS.
func SourceFromFS(name string) Source {
	return fsSource{name: name}
}

type urlSource struct{ raw string }

func (s urlSource) Kind() SourceKind { return SourceKindURL }
func (s urlSource) Location() string { return s.raw }

// SourceFromURL returns a Source for an HTTP(S) endpoint. It panics on an
// invalid URL so configuration mistakes surface early; use ParseSource for
// user input.
func SourceFromURL(raw string) Source {
	src, err := urlSourceFrom(raw)
	if err != nil {
		panic(err)
	}
	return src
}

// ParseSource turns user input (CLI argument, config value) into a Source.
// Strings starting with http:// or https:// become URL sources; anything else
// is treated as a file path.
func ParseSource(raw string) (Source, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, fmt.Errorf("document: empty source")
	}
	if strings.HasPrefix(value, "http://") || strings.HasPrefix(value, "https://") {
		return urlSourceFrom(value)
	}
	return SourceFromFile(value), nil
}

func urlSourceFrom(raw string) (Source, error) {
	if raw == "" {
		return nil, fmt.Errorf("document: empty URL source")
	}
	if _, err := url.ParseRequestURI(raw); err != nil {
		return nil, fmt.Errorf("document: invalid URL %q: %w", raw, err)
	}
	return urlSource{raw: raw}, nil
}

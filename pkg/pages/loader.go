package pages

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

type layoutsFile struct {
	Layouts []layoutEntry `json:"layouts" yaml:"layouts"`
}

type layoutEntry struct {
	Route       string `json:"route" yaml:"route"`
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
}

// LoadFS reads every .json, .yaml and .yml file in fsys and registers the
// layouts they declare. A nil fsys yields an empty registry.
func LoadFS(fsys fs.FS) (*Registry, error) {
	reg, _ := NewRegistry()
	if fsys == nil {
		return reg, nil
	}

	err := fs.WalkDir(fsys, ".", func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !isLayoutFile(path) {
			return nil
		}
		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("pages: read %s: %w", path, err)
		}
		file, err := parseLayouts(data, path)
		if err != nil {
			return err
		}
		for idx, item := range file.Layouts {
			layout := Layout{
				Route:    item.Route,
				Metadata: Metadata{Title: item.Title, Description: item.Description},
			}
			if err := reg.Register(layout); err != nil {
				return fmt.Errorf("pages: %s layouts[%d]: %w", path, idx, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return reg, nil
}

// LoadDefault loads the embedded profile layouts.
func LoadDefault() (*Registry, error) {
	return LoadFS(EmbeddedFS())
}

func parseLayouts(data []byte, source string) (layoutsFile, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return layoutsFile{}, fmt.Errorf("pages: file %s is empty", source)
	}
	var file layoutsFile
	if err := json.Unmarshal(data, &file); err == nil {
		return file, nil
	}
	file = layoutsFile{}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return layoutsFile{}, errors.Join(fmt.Errorf("pages: parse %s: invalid JSON or YAML", source), err)
	}
	return file, nil
}

func isLayoutFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}

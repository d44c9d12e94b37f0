package gotemplate

import (
	"bytes"
	"strings"
	"testing"
	"testing/fstest"
)

func newEngine(t *testing.T, options ...Option) *Engine {
	t.Helper()
	files := fstest.MapFS{
		"title.tpl":  {Data: []byte(`<title>{{ title }}</title>`)},
		"global.tpl": {Data: []byte(`{{ product }}:{{ title }}`)},
	}
	engine, err := New(append([]Option{WithFS(files)}, options...)...)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return engine
}

func TestNewRequiresLoader(t *testing.T) {
	if _, err := New(); err == nil {
		t.Fatalf("expected error without templates")
	}
}

func TestRenderTemplateEscapesAndWrites(t *testing.T) {
	engine := newEngine(t)

	var buf bytes.Buffer
	got, err := engine.RenderTemplate("title", map[string]any{"title": "Email <Settings>"}, &buf)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	want := "<title>Email &lt;Settings&gt;</title>"
	if got != want {
		t.Fatalf("render mismatch\nwant: %q\n got: %q", want, got)
	}
	if buf.String() != want {
		t.Fatalf("writer mismatch\nwant: %q\n got: %q", want, buf.String())
	}
}

func TestRenderTemplateStructData(t *testing.T) {
	engine := newEngine(t)
	data := struct {
		Title string `json:"title"`
	}{Title: "Profile Settings"}

	got, err := engine.RenderTemplate("title.tpl", data)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "<title>Profile Settings</title>" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestGlobalContext(t *testing.T) {
	engine := newEngine(t, WithGlobalData(map[string]any{"product": "Allama"}))

	got, err := engine.RenderTemplate("global", map[string]any{"title": "Email"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "Allama:Email" {
		t.Fatalf("unexpected output %q", got)
	}

	if err := engine.GlobalContext(map[string]any{"product": "Other"}); err != nil {
		t.Fatalf("global context: %v", err)
	}
	got, err = engine.RenderString(`{{ product }}`, nil)
	if err != nil {
		t.Fatalf("render string: %v", err)
	}
	if got != "Other" {
		t.Fatalf("expected updated global, got %q", got)
	}
}

func TestRegisterFilter(t *testing.T) {
	engine := newEngine(t)
	name := "editorschema_upper_test"
	err := engine.RegisterFilter(name, func(input any, _ any) (any, error) {
		s, _ := input.(string)
		return strings.ToUpper(s), nil
	})
	if err != nil {
		t.Fatalf("register filter: %v", err)
	}
	got, err := engine.RenderString(`{{ title|`+name+` }}`, map[string]any{"title": "email"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "EMAIL" {
		t.Fatalf("unexpected output %q", got)
	}

	if err := engine.RegisterFilter(name, func(any, any) (any, error) { return nil, nil }); err == nil {
		t.Fatalf("expected duplicate filter error")
	}
}

func TestBaseDir(t *testing.T) {
	engine, err := New(WithBaseDir("testdata"))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	got, err := engine.RenderTemplate("heading", map[string]any{"heading": "Profile"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "<h1>Profile</h1>" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestMissingTemplate(t *testing.T) {
	engine := newEngine(t)
	if _, err := engine.RenderTemplate("missing", nil); err == nil {
		t.Fatalf("expected error for missing template")
	}
}

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/goliatone/go-editorschema/pkg/document"
	"github.com/goliatone/go-editorschema/pkg/editor"
)

const querySchema = `{
  "type": "object",
  "properties": {
    "query": {
      "type": "string",
      "x-allama-component": [{"component_id": "code", "lang": "sql"}]
    },
    "name": {"type": "string"}
  }
}
`

func newTestCLI() *cli {
	c := newCLI()
	c.logger = zap.NewNop()
	c.environ = func() []string { return nil }
	c.prompt = func(string, []string) (string, error) {
		return "", errors.New("unexpected prompt")
	}
	return c
}

func execute(t *testing.T, c *cli, args ...string) (string, error) {
	t.Helper()
	cmd := c.rootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLintCommand(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.json", querySchema)
	writeFile(t, dir, "bad.yaml", "x-allama-component: code\n")
	writeFile(t, dir, "notes.txt", "ignored")

	out, err := execute(t, newTestCLI(), "lint", good)
	if err != nil {
		t.Fatalf("lint good: %v\n%s", err, out)
	}
	if !strings.Contains(out, "1 file(s) clean") {
		t.Fatalf("unexpected output %q", out)
	}

	out, err = execute(t, newTestCLI(), "lint", dir)
	if !errors.Is(err, errLintFailed) {
		t.Fatalf("expected lint failure, got %v", err)
	}
	want := filepath.Join(dir, "bad.yaml") + ": # -> x-allama-component must be an array of component records (error)"
	if !strings.Contains(out, want) {
		t.Fatalf("expected %q in %q", want, out)
	}
}

func TestInspectCommandJSON(t *testing.T) {
	path := writeFile(t, t.TempDir(), "schema.json", querySchema)

	out, err := execute(t, newTestCLI(), "inspect", path)
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}

	var got struct {
		Location   string             `json:"location"`
		Components []editor.Component `json:"components"`
		Bindings   []editor.Binding   `json:"bindings"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out)
	}
	if got.Location != path || len(got.Components) != 0 {
		t.Fatalf("unexpected report %#v", got)
	}
	want := []editor.Binding{{
		Pointer:    "#/properties/query",
		Components: []editor.Component{{"component_id": "code", "lang": "sql"}},
		Sequence:   true,
	}}
	if diff := cmp.Diff(want, got.Bindings); diff != "" {
		t.Fatalf("bindings mismatch (-want +got):\n%s", diff)
	}
}

func TestInspectCommandMarkdown(t *testing.T) {
	path := writeFile(t, t.TempDir(), "schema.json", querySchema)

	out, err := execute(t, newTestCLI(), "inspect", path, "--format", "markdown")
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	if !strings.Contains(out, "| `#/properties/query` | `code` | no | 0 |") {
		t.Fatalf("unexpected markdown %q", out)
	}

	if _, err := execute(t, newTestCLI(), "inspect", path, "--format", "xml"); err == nil {
		t.Fatalf("expected error for unsupported format")
	}
}

func TestAnnotateCommand(t *testing.T) {
	path := writeFile(t, t.TempDir(), "schema.json", querySchema)

	_, err := execute(t, newTestCLI(), "annotate", path,
		"--pointer", "#/properties/name",
		"--component", editor.ComponentTextArea,
		"--field", "rows=4",
	)
	if err != nil {
		t.Fatalf("annotate: %v", err)
	}

	c := newTestCLI()
	c.prompt = func(message string, options []string) (string, error) {
		if len(options) != len(editor.KnownComponentIDs()) {
			t.Errorf("unexpected options %v", options)
		}
		return editor.ComponentYAML, nil
	}
	if _, err := execute(t, c, "annotate", path, "--pointer", "#/properties/query", "--append"); err != nil {
		t.Fatalf("annotate with prompt: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	root, err := document.MustNew(document.SourceFromFile(path), raw).Decode()
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	name, _ := editor.Resolve(root, "#/properties/name")
	if diff := cmp.Diff([]editor.Component{{"component_id": "text-area", "rows": json.Number("4")}}, editor.Components(name)); diff != "" {
		t.Fatalf("name components mismatch (-want +got):\n%s", diff)
	}
	query, _ := editor.Resolve(root, "#/properties/query")
	want := []editor.Component{
		{"component_id": "code", "lang": "sql"},
		{"component_id": "yaml"},
	}
	if diff := cmp.Diff(want, editor.Components(query)); diff != "" {
		t.Fatalf("query components mismatch (-want +got):\n%s", diff)
	}

	if _, err := execute(t, newTestCLI(), "annotate", path, "--pointer", "#/properties/missing", "--component", "code"); err == nil {
		t.Fatalf("expected error for unknown pointer")
	}
}

func TestAnnotateDryRunKeepsOtherValues(t *testing.T) {
	path := writeFile(t, t.TempDir(), "schema.json", `{
  "type": "object",
  "properties": {
    "q": {"type": "string", "pattern": "^a&b$"},
    "n": {"type": "integer", "maximum": 9007199254740993}
  }
}`)

	out, err := execute(t, newTestCLI(), "annotate", path, "--pointer", "#/properties/q", "--component", editor.ComponentCode, "--dry-run")
	if err != nil {
		t.Fatalf("annotate: %v", err)
	}
	for _, want := range []string{`"maximum": 9007199254740993`, `"pattern": "^a&b$"`, `"component_id": "code"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in %s", want, out)
		}
	}
}

func TestPagesCommand(t *testing.T) {
	out, err := execute(t, newTestCLI(), "pages")
	if err != nil {
		t.Fatalf("pages: %v", err)
	}
	for _, want := range []string{"/profile/email", "Email Settings | Allama", "/profile/settings", "Profile Settings | Allama"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in %q", want, out)
		}
	}

	dir := t.TempDir()
	layouts := filepath.Join(dir, "layouts")
	if err := os.Mkdir(layouts, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	writeFile(t, layouts, "cases.yaml", "layouts:\n  - route: /cases\n    title: Cases | Allama\n")
	cfg := writeFile(t, dir, "editorschema.yaml", "pages:\n  dir: "+layouts+"\n")

	out, err = execute(t, newTestCLI(), "--config", cfg, "pages", "--json")
	if err != nil {
		t.Fatalf("pages --json: %v", err)
	}
	if !strings.Contains(out, `"route": "/cases"`) {
		t.Fatalf("expected custom layout in %q", out)
	}
}

func TestHTTPHandler(t *testing.T) {
	c := newTestCLI()
	if err := c.setup(); err != nil {
		t.Fatalf("setup: %v", err)
	}
	handler, err := c.httpHandler()
	if err != nil {
		t.Fatalf("handler: %v", err)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/profile/settings", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "<title>Profile Settings | Allama</title>") {
		t.Fatalf("unexpected response %d %q", rec.Code, rec.Body.String())
	}
}

func TestServeStopsOnCancel(t *testing.T) {
	c := newTestCLI()
	if err := c.setup(); err != nil {
		t.Fatalf("setup: %v", err)
	}
	c.cfg.Server.Addr = "127.0.0.1:0"

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(50*time.Millisecond, cancel)
	if err := c.serve(ctx, http.NotFoundHandler()); err != nil {
		t.Fatalf("serve: %v", err)
	}
}

func TestHTTPServerTimeouts(t *testing.T) {
	c := newTestCLI()
	if err := c.setup(); err != nil {
		t.Fatalf("setup: %v", err)
	}
	c.cfg.Server.ReadTimeout = 3 * time.Second

	srv := c.httpServer(http.NotFoundHandler())
	if srv.ReadTimeout != 3*time.Second || srv.ReadHeaderTimeout != 3*time.Second {
		t.Fatalf("unexpected timeouts read=%v header=%v", srv.ReadTimeout, srv.ReadHeaderTimeout)
	}
	if srv.Addr != c.cfg.Server.Addr {
		t.Fatalf("unexpected addr %q", srv.Addr)
	}
}

func TestWatchPaths(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	dir := t.TempDir()
	path := writeFile(t, dir, "schema.json", querySchema)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runs := make(chan struct{}, 8)
	done := make(chan error, 1)
	go func() {
		done <- watchPaths(ctx, zap.NewNop(), []string{dir}, 20*time.Millisecond, func() {
			runs <- struct{}{}
		})
	}()

	select {
	case <-runs:
	case <-time.After(5 * time.Second):
		t.Fatalf("initial run did not happen")
	}

	writeFile(t, dir, filepath.Base(path), `{"x-allama-component": []}`)

	select {
	case <-runs:
	case <-time.After(5 * time.Second):
		t.Fatalf("change did not trigger a run")
	}

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("watch: %v", err)
	}
}

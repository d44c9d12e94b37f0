package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("", nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadFileAndEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "editorschema.yaml")
	content := `server:
  addr: ":9090"
  read_timeout: 3s
loader:
  allow_http: true
  timeout: 2
pages:
  dir: ./layouts
log:
  level: debug
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path, []string{
		"EDITORSCHEMA_SERVER_ADDR=127.0.0.1:7000",
		"EDITORSCHEMA_LOG_DEVELOPMENT=true",
		"HOME=/root",
	})
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	want := Default()
	want.Server.Addr = "127.0.0.1:7000"
	want.Server.ReadTimeout = 3 * time.Second
	want.Loader.AllowHTTP = true
	want.Loader.Timeout = 2 * time.Second
	want.Pages.Dir = "./layouts"
	want.Log.Level = "debug"
	want.Log.Development = true
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
	if got := len(cfg.LoaderOptions()); got != 2 {
		t.Fatalf("expected two loader options, got %d", got)
	}
}

func TestLoadIgnoresUnrelatedEnvironment(t *testing.T) {
	cfg, err := Load("", []string{
		"EDITORSCHEMA_FOO_BAR=1",
		"EDITORSCHEMA_SERVER_UNKNOWN=x",
		"EDITORSCHEMA_SERVER_READ_TIMEOUT=7s",
	})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := Default()
	want.Server.ReadTimeout = 7 * time.Second
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]string{
		"unknown key":   "server:\n  port: 80\n",
		"invalid yaml":  "server: [\n",
		"empty address": "server:\n  addr: \"\"\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name+".yaml")
			if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
				t.Fatalf("write config: %v", err)
			}
			if _, err := Load(path, nil); err == nil {
				t.Fatalf("expected error")
			}
		})
	}

	if _, err := Load(filepath.Join(dir, "missing.yaml"), nil); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

package pages

import (
	"errors"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"
)

func TestRegistryRegisterAndLookup(t *testing.T) {
	reg, err := NewRegistry(DefaultLayouts()...)
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}

	layout, ok := reg.Lookup("profile/email/")
	if !ok {
		t.Fatalf("expected normalised lookup to succeed")
	}
	if layout.Title() != TitleProfileEmail {
		t.Fatalf("unexpected title %q", layout.Title())
	}

	err = reg.Register(Layout{Route: "/profile/email", Metadata: Metadata{Title: "Again"}})
	if !errors.Is(err, ErrDuplicateRoute) {
		t.Fatalf("expected ErrDuplicateRoute, got %v", err)
	}
	if err := reg.Register(Layout{Route: " ", Metadata: Metadata{Title: "x"}}); err == nil {
		t.Fatalf("expected error for empty route")
	}
	if err := reg.Register(Layout{Route: "/blank", Metadata: Metadata{Title: "<b></b>"}}); err == nil {
		t.Fatalf("expected error for title that sanitises to empty")
	}
}

func TestRegistryLayoutsSorted(t *testing.T) {
	reg, err := NewRegistry(
		Layout{Route: "/z", Metadata: Metadata{Title: "Z"}},
		Layout{Route: "/a", Metadata: Metadata{Title: "A"}},
	)
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}
	var routes []string
	for _, layout := range reg.Layouts() {
		routes = append(routes, layout.Route)
	}
	if diff := cmp.Diff([]string{"/a", "/z"}, routes); diff != "" {
		t.Fatalf("routes mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalizeRoute(t *testing.T) {
	cases := map[string]string{
		"":                   "",
		"/":                  "/",
		"///":                "/",
		"profile/email":      "/profile/email",
		" /profile/email/ ":  "/profile/email",
		"/profile/settings/": "/profile/settings",
	}
	for in, want := range cases {
		if got := NormalizeRoute(in); got != want {
			t.Fatalf("NormalizeRoute(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSanitizeText(t *testing.T) {
	cases := map[string]string{
		"Email Settings | Allama":          "Email Settings | Allama",
		"  Profile\n  Settings ":           "Profile Settings",
		"<script>alert(1)</script>Profile": "Profile",
		"Tom & Jerry":                      "Tom & Jerry",
	}
	for in, want := range cases {
		if got := SanitizeText(in); got != want {
			t.Fatalf("SanitizeText(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestLoadDefault(t *testing.T) {
	reg, err := LoadDefault()
	if err != nil {
		t.Fatalf("load default: %v", err)
	}
	want := DefaultLayouts()
	if diff := cmp.Diff(want, reg.Layouts()); diff != "" {
		t.Fatalf("layouts mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadFS(t *testing.T) {
	files := fstest.MapFS{
		"a.json": {Data: []byte(`{"layouts":[{"route":"/workspace","title":"Workspace | Allama","description":"Members"}]}`)},
		"b.yml":  {Data: []byte("layouts:\n  - route: cases\n    title: Cases | Allama\n")},
		"c.txt":  {Data: []byte("ignored")},
	}
	reg, err := LoadFS(files)
	if err != nil {
		t.Fatalf("load fs: %v", err)
	}
	layout, ok := reg.Lookup("/cases")
	if !ok || layout.Title() != "Cases | Allama" {
		t.Fatalf("unexpected cases layout: %#v", layout)
	}
	layout, ok = reg.Lookup("/workspace")
	if !ok || layout.Metadata.Description != "Members" {
		t.Fatalf("unexpected workspace layout: %#v", layout)
	}
}

func TestLoadFSErrors(t *testing.T) {
	cases := map[string]fstest.MapFS{
		"duplicate": {
			"a.yaml": {Data: []byte("layouts:\n  - route: /x\n    title: X\n")},
			"b.yaml": {Data: []byte("layouts:\n  - route: /x\n    title: Y\n")},
		},
		"empty":   {"a.yaml": {Data: []byte("   ")}},
		"invalid": {"a.yaml": {Data: []byte("layouts: [")}},
		"missing title": {
			"a.yaml": {Data: []byte("layouts:\n  - route: /x\n")},
		},
	}
	for name, files := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := LoadFS(files); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestLoadFSNil(t *testing.T) {
	reg, err := LoadFS(nil)
	if err != nil {
		t.Fatalf("load nil fs: %v", err)
	}
	if len(reg.Layouts()) != 0 {
		t.Fatalf("expected empty registry")
	}
}

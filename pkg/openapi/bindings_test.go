package openapi

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-editorschema/pkg/document"
	"github.com/goliatone/go-editorschema/pkg/editor"
)

const actionsJSON = `{
  "openapi": "3.0.3",
  "info": {"title": "Actions", "version": "1.0.0"},
  "paths": {
    "/actions/run": {
      "post": {
        "operationId": "runAction",
        "parameters": [
          {
            "name": "mode",
            "in": "query",
            "schema": {
              "type": "string",
              "x-allama-component": [{"component_id": "select", "options": ["fast", "safe"]}]
            }
          }
        ],
        "requestBody": {
          "content": {
            "application/json": {
              "schema": {"$ref": "#/components/schemas/RunInput"}
            }
          }
        },
        "responses": {"200": {"description": "ok"}}
      }
    },
    "/actions": {
      "get": {
        "responses": {"200": {"description": "ok"}}
      }
    }
  },
  "components": {
    "schemas": {
      "RunInput": {
        "type": "object",
        "properties": {
          "script": {
            "type": "string",
            "x-allama-component": [
              {"component_id": "code", "lang": "python"},
              {"lang": "missing-id"}
            ]
          },
          "tags": {
            "type": "array",
            "items": {
              "type": "string",
              "x-allama-component": [{"component_id": "tag-input"}]
            }
          },
          "plain": {"type": "string"}
        }
      }
    }
  }
}`

func TestBindings(t *testing.T) {
	doc := document.MustNew(document.SourceFromFS("actions.json"), []byte(actionsJSON))

	got, err := Bindings(context.Background(), doc, Options{})
	if err != nil {
		t.Fatalf("bindings: %v", err)
	}

	want := []OperationBinding{
		{
			OperationID: "runAction",
			Method:      "POST",
			Path:        "/actions/run",
			Location:    "parameters.query.mode",
			Pointer:     "#",
			Components:  []editor.Component{{"component_id": "select", "options": []any{"fast", "safe"}}},
			Sequence:    true,
		},
		{
			OperationID: "runAction",
			Method:      "POST",
			Path:        "/actions/run",
			Location:    "requestBody.application/json",
			Pointer:     "#/properties/script",
			Components:  []editor.Component{{"component_id": "code", "lang": "python"}},
			Multiple:    true,
			Dropped:     []int{1},
			Sequence:    true,
		},
		{
			OperationID: "runAction",
			Method:      "POST",
			Path:        "/actions/run",
			Location:    "requestBody.application/json",
			Pointer:     "#/properties/tags/items",
			Components:  []editor.Component{{"component_id": "tag-input"}},
			Sequence:    true,
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("bindings mismatch (-want +got):\n%s", diff)
	}
}

func TestBindingsInvalidDocument(t *testing.T) {
	doc := document.MustNew(document.SourceFromFS("broken.json"), []byte(`{"openapi": `))
	if _, err := Bindings(context.Background(), doc, Options{}); err == nil {
		t.Fatalf("expected error for malformed document")
	}
}

func TestBindingsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	doc := document.MustNew(document.SourceFromFS("actions.json"), []byte(actionsJSON))
	if _, err := Bindings(ctx, doc, Options{}); err == nil {
		t.Fatalf("expected error for cancelled context")
	}
}

func TestFromOpenAPINil(t *testing.T) {
	if got := FromOpenAPI(nil); got != nil {
		t.Fatalf("expected nil bindings, got %#v", got)
	}
}

const responsesJSON = `{
  "openapi": "3.0.3",
  "info": {"title": "Reports", "version": "1.0.0"},
  "paths": {
    "/reports": {
      "get": {
        "operationId": "listReports",
        "responses": {
          "200": {
            "description": "ok",
            "content": {
              "application/json": {
                "schema": {
                  "type": "object",
                  "x-allama-component": "code",
                  "properties": {
                    "owner": {"$ref": "#/components/schemas/Owner"}
                  }
                }
              }
            }
          },
          "404": {"description": "missing"}
        }
      }
    }
  },
  "components": {
    "schemas": {
      "Owner": {
        "type": "string",
        "x-allama-component": [{"component_id": "text"}]
      },
      "Draft": {
        "type": "object",
        "properties": {
          "body": {
            "type": "string",
            "x-allama-component": [{"component_id": "markdown"}]
          }
        }
      }
    }
  }
}`

func TestBindingsResponsesAndUnreferencedComponents(t *testing.T) {
	doc := document.MustNew(document.SourceFromFS("reports.json"), []byte(responsesJSON))

	got, err := Bindings(context.Background(), doc, Options{})
	if err != nil {
		t.Fatalf("bindings: %v", err)
	}

	want := []OperationBinding{
		{
			Location:   "components.schemas.Draft",
			Pointer:    "#/properties/body",
			Components: []editor.Component{{"component_id": "markdown"}},
			Sequence:   true,
		},
		{
			OperationID: "listReports",
			Method:      "GET",
			Path:        "/reports",
			Location:    "responses.200.application/json",
			Pointer:     "#",
			Components:  []editor.Component{},
		},
		{
			OperationID: "listReports",
			Method:      "GET",
			Path:        "/reports",
			Location:    "responses.200.application/json",
			Pointer:     "#/properties/owner",
			Components:  []editor.Component{{"component_id": "text"}},
			Sequence:    true,
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("bindings mismatch (-want +got):\n%s", diff)
	}
}

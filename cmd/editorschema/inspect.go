package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/goliatone/go-editorschema"
	"github.com/goliatone/go-editorschema/pkg/document"
	"github.com/goliatone/go-editorschema/pkg/editor"
	"github.com/goliatone/go-editorschema/pkg/openapi"
)

const (
	formatJSON     = "json"
	formatMarkdown = "markdown"
)

func (c *cli) inspectCmd() *cobra.Command {
	var (
		format     string
		useOpenAPI bool
	)
	cmd := &cobra.Command{
		Use:   "inspect <path|url>",
		Short: "List the editor components declared by a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != formatJSON && format != formatMarkdown {
				return fmt.Errorf("inspect: unsupported format %q", format)
			}
			src, err := document.ParseSource(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if useOpenAPI {
				bindings, err := editorschema.InspectOpenAPI(cmd.Context(), c.loader(), src, openapi.Options{})
				if err != nil {
					return err
				}
				c.logger.Debug("inspected openapi document", zap.String("source", src.Location()), zap.Int("bindings", len(bindings)))
				if format == formatJSON {
					return writeJSON(out, bindings)
				}
				return writeMarkdown(out, operationsMarkdown(src.Location(), bindings))
			}

			report, err := editorschema.Inspect(cmd.Context(), c.loader(), src)
			if err != nil {
				return err
			}
			c.logger.Debug("inspected schema", zap.String("source", src.Location()), zap.Int("bindings", len(report.Bindings)), zap.Int("dropped", report.Dropped()))
			if format == formatJSON {
				return writeJSON(out, report)
			}
			return writeMarkdown(out, reportMarkdown(report))
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", formatJSON, "output format: json or markdown")
	cmd.Flags().BoolVar(&useOpenAPI, "openapi", false, "treat the document as an OpenAPI 3 description")
	return cmd
}

func writeJSON(out io.Writer, payload any) error {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("inspect: encode: %w", err)
	}
	_, err = fmt.Fprintln(out, string(data))
	return err
}

// writeMarkdown renders through glamour when out is a terminal and writes the
// raw markdown otherwise.
func writeMarkdown(out io.Writer, markdown string) error {
	file, ok := out.(*os.File)
	if !ok || !term.IsTerminal(int(file.Fd())) {
		_, err := io.WriteString(out, markdown)
		return err
	}

	width := 80
	if w, _, err := term.GetSize(int(file.Fd())); err == nil && w > 0 {
		width = w
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return fmt.Errorf("inspect: markdown renderer: %w", err)
	}
	rendered, err := renderer.Render(markdown)
	if err != nil {
		return fmt.Errorf("inspect: render markdown: %w", err)
	}
	_, err = io.WriteString(out, rendered)
	return err
}

func reportMarkdown(report editorschema.Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", report.Location)
	if len(report.Components) == 0 {
		b.WriteString("The root schema declares no editor components.\n\n")
	} else {
		fmt.Fprintf(&b, "Root components: %s\n\n", componentList(report.Components))
	}
	if len(report.Bindings) == 0 {
		return b.String()
	}

	b.WriteString("| Pointer | Components | Multiple | Dropped |\n")
	b.WriteString("|---|---|---|---|\n")
	for _, binding := range report.Bindings {
		components := componentList(binding.Components)
		if !binding.Sequence {
			components = "_not a list_"
		}
		fmt.Fprintf(&b, "| `%s` | %s | %s | %d |\n", binding.Pointer, components, yesNo(binding.Multiple), len(binding.Dropped))
	}
	return b.String()
}

func operationsMarkdown(location string, bindings []openapi.OperationBinding) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", location)
	if len(bindings) == 0 {
		b.WriteString("No operation declares editor components.\n")
		return b.String()
	}
	b.WriteString("| Operation | Location | Pointer | Components | Multiple |\n")
	b.WriteString("|---|---|---|---|---|\n")
	for _, binding := range bindings {
		operation := binding.OperationID
		if operation == "" {
			operation = "-"
		}
		fmt.Fprintf(&b, "| %s | %s | `%s` | %s | %s |\n",
			operation, binding.Location, binding.Pointer,
			componentList(binding.Components), yesNo(binding.Multiple))
	}
	return b.String()
}

func componentList(components []editor.Component) string {
	if len(components) == 0 {
		return "-"
	}
	ids := make([]string, len(components))
	for i, component := range components {
		ids[i] = "`" + component.ID() + "`"
	}
	return strings.Join(ids, ", ")
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}

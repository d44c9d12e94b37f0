package main

import (
	"errors"
	"fmt"
	"maps"
	"os"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-editorschema/pkg/document"
	"github.com/goliatone/go-editorschema/pkg/editor"
)

// promptFunc asks the user to pick one of options.
type promptFunc func(message string, options []string) (string, error)

func surveyPrompt(message string, options []string) (string, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return "", errors.New("annotate: --component is required when stdin is not a terminal")
	}
	var out string
	prompt := &survey.Select{
		Message:  message,
		Options:  options,
		PageSize: len(options),
	}
	if err := survey.AskOne(prompt, &out); err != nil {
		if errors.Is(err, terminal.InterruptErr) {
			return "", errors.New("annotate: cancelled")
		}
		return "", err
	}
	return out, nil
}

func (c *cli) annotateCmd() *cobra.Command {
	var (
		pointer   string
		component string
		fields    map[string]string
		appendTo  bool
		dryRun    bool
	)
	cmd := &cobra.Command{
		Use:   "annotate <path>",
		Short: "Set the editor component of a schema node",
		Long: `Sets x-allama-component on the node addressed by --pointer and writes the
document back in its original format. Without --component the id is picked
interactively from the known component ids.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			doc, err := c.loader().Load(cmd.Context(), document.SourceFromFile(path))
			if err != nil {
				return err
			}
			root, err := doc.Decode()
			if err != nil {
				return err
			}
			node, ok := editor.Resolve(root, pointer)
			if !ok {
				return fmt.Errorf("annotate: pointer %q does not address a schema object", pointer)
			}

			if component == "" {
				component, err = c.prompt(fmt.Sprintf("Component for %s", pointer), editor.KnownComponentIDs())
				if err != nil {
					return err
				}
			}
			if !editor.IsKnownComponentID(component) {
				c.logger.Warn("unknown component id", zap.String("component_id", component))
			}

			var components []editor.Component
			if appendTo {
				components = editor.Components(node)
			}
			components = append(components, editor.NewComponent(component, fieldValues(fields)))
			maps.Copy(node, editor.Annotate(node, components...))

			data, err := document.Encode(root, doc.Format())
			if err != nil {
				return err
			}
			if dryRun {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(path, data, 0o644); err != nil {
				return fmt.Errorf("annotate: write %s: %w", path, err)
			}
			c.logger.Info("annotated schema", zap.String("path", path), zap.String("pointer", pointer), zap.String("component_id", component))
			return nil
		},
	}
	cmd.Flags().StringVarP(&pointer, "pointer", "p", "#", "JSON pointer of the node to annotate")
	cmd.Flags().StringVar(&component, "component", "", "component id to set")
	cmd.Flags().StringToStringVar(&fields, "field", nil, "extra component fields as key=value")
	cmd.Flags().BoolVar(&appendTo, "append", false, "keep the existing valid components")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the result instead of writing the file")
	return cmd
}

// fieldValues decodes flag values as YAML scalars so rows=4 is stored as a
// number and multiple=true as a boolean.
func fieldValues(fields map[string]string) map[string]any {
	if len(fields) == 0 {
		return nil
	}
	out := make(map[string]any, len(fields))
	for key, raw := range fields {
		var value any
		if err := yaml.Unmarshal([]byte(raw), &value); err != nil || value == nil {
			out[key] = raw
			continue
		}
		out[key] = value
	}
	return out
}

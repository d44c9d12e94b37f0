package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-editorschema/pkg/pages"
)

func (c *cli) pagesCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "pages",
		Short: "List the registered page layouts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			registry, err := c.registry()
			if err != nil {
				return err
			}
			layouts := registry.Layouts()
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), layouts)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ROUTE\tTITLE")
			for _, layout := range layouts {
				fmt.Fprintf(tw, "%s\t%s\n", layout.Route, layout.Title())
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print layouts as JSON")
	return cmd
}

// registry returns the built-in layouts plus the ones found in the
// configured pages directory.
func (c *cli) registry() (*pages.Registry, error) {
	registry, err := pages.LoadDefault()
	if err != nil {
		return nil, err
	}
	if c.cfg.Pages.Dir == "" {
		return registry, nil
	}

	extra, err := pages.LoadFS(os.DirFS(c.cfg.Pages.Dir))
	if err != nil {
		return nil, fmt.Errorf("pages: load %s: %w", c.cfg.Pages.Dir, err)
	}
	for _, layout := range extra.Layouts() {
		if err := registry.Register(layout); err != nil {
			return nil, fmt.Errorf("pages: %s: %w", c.cfg.Pages.Dir, err)
		}
	}
	return registry, nil
}

package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/getmockd/dogql/pkg/cli/templates"
	"github.com/getmockd/dogql/pkg/config"
	"github.com/spf13/cobra"
)

func newInitCmd() *cobra.Command {
	var (
		template string
		out      string
		force    bool
	)
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a starter configuration file",
		Example: `  dogql init
  dogql init --template development -o dev.yaml
  dogql init --template list`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := cmd.OutOrStdout()
			if template == "list" {
				fmt.Fprint(w, templates.FormatList())
				return nil
			}

			data, err := templates.Get(template)
			if err != nil {
				return fmt.Errorf("%w\n\nRun 'dogql init --template list' to see available templates", err)
			}

			if !force {
				if _, err := os.Stat(out); err == nil {
					return fmt.Errorf("%s already exists (use --force to overwrite)", out)
				} else if !errors.Is(err, fs.ErrNotExist) {
					return fmt.Errorf("failed to check %s: %w", out, err)
				}
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return fmt.Errorf("failed to write file: %w", err)
			}

			fmt.Fprintf(w, "Created %s (template: %s)\n\n", out, template)
			fmt.Fprintln(w, "Next steps:")
			fmt.Fprintf(w, "  dogql serve --config %s\n", out)
			fmt.Fprintln(w, `  curl -X POST http://localhost:4000/graphql -H 'Content-Type: application/json' -d '{"query": "{ randomDog { image status } }"}'`)
			return nil
		},
	}
	cmd.Flags().StringVarP(&template, "template", "t", "default", "Template to use ('list' shows all)")
	cmd.Flags().StringVarP(&out, "output", "o", config.LocalConfigFileNames[0], "File to write")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")
	return cmd
}

package cli

import (
	"fmt"

	"github.com/getmockd/dogql/pkg/dogql"
	"github.com/spf13/cobra"
)

func newSchemaCmd(rf *rootFlags) *cobra.Command {
	var noHusky bool
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the GraphQL schema (SDL)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := rf.load()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("no-husky") {
				cfg.GraphQL.Husky = !noHusky
			}

			schema, err := dogql.Schema(cfg.GraphQL.Husky)
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), schema.Source())
			return err
		},
	}
	cmd.Flags().BoolVar(&noHusky, "no-husky", false, "Leave huskyCrazy out of the schema")
	return cmd
}

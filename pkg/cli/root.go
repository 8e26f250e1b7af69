package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Version is injected during build
	Version = "dev"
	// Commit is injected during build
	Commit = "none"
	// BuildDate is injected during build
	BuildDate = "unknown"
)

// rootFlags are the persistent flags shared by every command.
type rootFlags struct {
	configFile string
	logLevel   string
	logFormat  string
}

// NewRootCmd builds the dogql command tree. Running it without a subcommand
// starts the server, as "dogql serve" does.
func NewRootCmd() *cobra.Command {
	rf := &rootFlags{}
	sf := &serveFlags{}

	cmd := &cobra.Command{
		Use:   "dogql",
		Short: "dogql serves the dog.ceo API over GraphQL",
		Long: `dogql is a GraphQL facade over the public dog.ceo REST API. It answers
randomDog, breed(name) and huskyCrazy by calling dog.ceo and reshaping the
result.

Configuration can be provided via flags, environment variables, or a
configuration file. By default, dogql looks for ./dogql.yaml.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true, // We handle errors in Execute()
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, rf, sf)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&rf.configFile, "config", "c", "", "Path to configuration file (default: ./dogql.yaml if present)")
	pf.StringVar(&rf.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	pf.StringVar(&rf.logFormat, "log-format", "", "Log format (text, json)")

	sf.register(cmd)

	cmd.AddCommand(
		newServeCmd(rf),
		newQueryCmd(rf),
		newSchemaCmd(rf),
		newInitCmd(),
		newVersionCmd(),
	)
	return cmd
}

// Execute runs the root command and exits non-zero on failure.
// This is called by main.main().
func Execute() {
	if err := NewRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

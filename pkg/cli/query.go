package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/getmockd/dogql/pkg/cli/internal/output"
	"github.com/getmockd/dogql/pkg/dogapi"
	"github.com/getmockd/dogql/pkg/graphql"
	"github.com/spf13/cobra"
)

// ErrQueryFailed is returned when the response carries GraphQL errors. The
// response is still printed.
var ErrQueryFailed = errors.New("query returned errors")

type queryFlags struct {
	upstreamFlags

	file      string
	variables string
	operation string
	trace     bool
}

func newQueryCmd(rf *rootFlags) *cobra.Command {
	qf := &queryFlags{}
	cmd := &cobra.Command{
		Use:   "query [document]",
		Short: "Execute a GraphQL document without starting a server",
		Long: `Execute a GraphQL document in-process against the upstream API and print
the response as JSON. The document is read from the argument, from --file,
or from stdin when neither is given or the argument is "-".`,
		Example: `  dogql query '{ randomDog { image status } }'

  dogql query 'query($n: String!) { breed(name: $n) { image } }' --variables '{"n":"hu sky"}'

  echo '{ huskyCrazy { status } }' | dogql query`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, rf, qf, args)
		},
	}

	qf.upstreamFlags.register(cmd)
	cmd.Flags().StringVarP(&qf.file, "file", "f", "", "Read the document from a file")
	cmd.Flags().StringVar(&qf.variables, "variables", "", "Variables as a JSON object")
	cmd.Flags().StringVarP(&qf.operation, "operation", "o", "", "Operation name to execute")
	cmd.Flags().BoolVar(&qf.trace, "trace", false, "Include the Apollo tracing extension")
	return cmd
}

func runQuery(cmd *cobra.Command, rf *rootFlags, qf *queryFlags, args []string) error {
	cfg, err := rf.load()
	if err != nil {
		return err
	}
	qf.apply(cmd, cfg)
	cfg.GraphQL.Tracing = qf.trace
	if err := cfg.Validate(); err != nil {
		return err
	}

	doc, err := qf.document(cmd.InOrStdin(), args)
	if err != nil {
		return err
	}
	vars, err := parseVariables(qf.variables)
	if err != nil {
		return err
	}

	a, err := newApp(cfg, cmd.ErrOrStderr(), cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	ctx := dogapi.NewContext(cmd.Context(), a.clients.New())
	resp := a.executor.Execute(ctx, &graphql.GraphQLRequest{
		Query:         doc,
		OperationName: qf.operation,
		Variables:     vars,
	})
	// Flush remaining spans.
	_ = a.tracer.Shutdown(ctx)

	if err := output.JSON(cmd.OutOrStdout(), resp); err != nil {
		return err
	}
	if len(resp.Errors) > 0 {
		return fmt.Errorf("%w: %s", ErrQueryFailed, resp.Errors[0].Message)
	}
	return nil
}

func (f *queryFlags) document(stdin io.Reader, args []string) (string, error) {
	var data []byte
	var err error
	switch {
	case f.file != "" && len(args) > 0:
		return "", errors.New("pass the document as an argument or with --file, not both")
	case f.file != "":
		data, err = os.ReadFile(f.file)
		if err != nil {
			return "", fmt.Errorf("failed to read document: %w", err)
		}
	case len(args) == 1 && args[0] != "-":
		data = []byte(args[0])
	default:
		data, err = io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read document from stdin: %w", err)
		}
	}

	doc := strings.TrimSpace(string(data))
	if doc == "" {
		return "", errors.New("empty GraphQL document")
	}
	return doc, nil
}

func parseVariables(raw string) (map[string]any, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var vars map[string]any
	if err := json.Unmarshal([]byte(raw), &vars); err != nil {
		return nil, fmt.Errorf("invalid --variables: %w", err)
	}
	return vars, nil
}

package dogql

import (
	_ "embed"

	"github.com/getmockd/dogql/pkg/graphql"
	"github.com/vektah/gqlparser/v2/ast"
)

var (
	//go:embed schema.graphql
	baseSDL string

	//go:embed husky.graphql
	huskySDL string
)

// Schema parses the dogql schema. With husky false the huskyCrazy query and
// HuskyList type are left out.
func Schema(husky bool) (*graphql.Schema, error) {
	sources := []*ast.Source{{Name: "schema.graphql", Input: baseSDL}}
	if husky {
		sources = append(sources, &ast.Source{Name: "husky.graphql", Input: huskySDL})
	}
	return graphql.ParseSources(sources...)
}

// NewExecutor builds an executor over Schema(husky) with all resolvers bound.
func NewExecutor(husky bool, opts ...graphql.ExecutorOption) (*graphql.Executor, error) {
	schema, err := Schema(husky)
	if err != nil {
		return nil, err
	}
	resolvers := Resolvers()
	if !husky {
		delete(resolvers, "Query.huskyCrazy")
	}
	return graphql.NewExecutor(schema, resolvers, opts...), nil
}

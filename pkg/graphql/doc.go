// Package graphql is a small GraphQL execution engine built on gqlparser.
//
// It parses SDL into a Schema, executes query documents against a registry
// of Go resolver functions, and serves the result over HTTP.
//
// Basic usage:
//
//	schema, err := graphql.ParseSchema(`
//	    type Query {
//	        dog(name: String!): Dog
//	    }
//	    type Dog {
//	        image: String
//	        status: String!
//	    }
//	`)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	exec := graphql.NewExecutor(schema, graphql.ResolverMap{
//	    "Query.dog": func(ctx context.Context, p graphql.ResolveParams) (any, error) {
//	        return map[string]any{"image": "https://...", "status": "success"}, nil
//	    },
//	})
//
//	http.Handle("/graphql", graphql.NewHandler(exec))
//
// Fields without a registered resolver are read from the parent value: map
// keys first, then exported struct fields matched by json tag or name.
//
// Supported: queries, variables, aliases, named and inline fragments,
// @skip and @include, __typename, and introspection (__schema, __type).
// Mutations and subscriptions are rejected.
//
// With tracing enabled every response carries the Apollo tracing extension
// (version 1) under extensions.tracing.
package graphql

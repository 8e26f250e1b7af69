// Package dogql is the GraphQL schema and resolvers for the dog.ceo API.
//
// Resolvers read the request-scoped *dogapi.Client from the context (see
// dogapi.NewContext); executing a query without one is an error.
package dogql

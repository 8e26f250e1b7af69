// Package dogapi is a client for the dog.ceo REST API.
//
// The client exposes the four lookups the GraphQL layer needs:
//
//	RandomDog         GET breeds/image/random
//	AllBreeds         GET breeds/list/all
//	RandomDogByBreed  GET breeds/list/all, then GET breed/{breed}/images
//	AllHusky          GET breed/husky/images
//
// Every call is a single request: no retries and no caching. A Client is
// meant to live for one GraphQL request; Factory builds them from a shared
// transport and NewContext/FromContext carry them through resolvers.
package dogapi

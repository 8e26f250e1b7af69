package dogql

import (
	"context"
	"strings"
	"unicode"

	"github.com/getmockd/dogql/pkg/dogapi"
	"github.com/getmockd/dogql/pkg/graphql"
)

// Resolvers returns the resolver map for the dogql schema.
func Resolvers() graphql.ResolverMap {
	return graphql.ResolverMap{
		"Query.randomDog":  randomDog,
		"Query.breed":      breed,
		"Query.huskyCrazy": huskyCrazy,
		"Dog.image":        dogImage,
	}
}

func client(ctx context.Context) (*dogapi.Client, error) {
	c := dogapi.FromContext(ctx)
	if c == nil {
		return nil, &codedError{err: ErrNoClient, code: CodeDataSourceUnavailable}
	}
	return c, nil
}

func randomDog(ctx context.Context, _ graphql.ResolveParams) (any, error) {
	c, err := client(ctx)
	if err != nil {
		return nil, err
	}
	img, err := c.RandomDog(ctx)
	if err != nil {
		return nil, wrapUpstream(err)
	}
	return img, nil
}

func breed(ctx context.Context, p graphql.ResolveParams) (any, error) {
	c, err := client(ctx)
	if err != nil {
		return nil, err
	}
	name, _ := p.Args["name"].(string)
	img, err := c.RandomDogByBreed(ctx, StripSpace(name))
	if err != nil {
		return nil, wrapUpstream(err)
	}
	if img == nil {
		return nil, nil
	}
	return img, nil
}

func huskyCrazy(ctx context.Context, _ graphql.ResolveParams) (any, error) {
	c, err := client(ctx)
	if err != nil {
		return nil, err
	}
	list, err := c.AllHusky(ctx)
	if err != nil {
		return nil, wrapUpstream(err)
	}
	return list, nil
}

// dogImage exposes the upstream message as image. An empty message, as on
// an unknown breed, is null.
func dogImage(_ context.Context, p graphql.ResolveParams) (any, error) {
	img, ok := p.Parent.(*dogapi.Image)
	if !ok || img == nil || img.Message == "" {
		return nil, nil
	}
	return img.Message, nil
}

// StripSpace removes every Unicode whitespace character from s.
func StripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

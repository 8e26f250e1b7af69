package dogapi

import (
	"context"
	"net/http"
)

type clientKey struct{}

// NewContext returns a copy of ctx carrying c.
func NewContext(ctx context.Context, c *Client) context.Context {
	return context.WithValue(ctx, clientKey{}, c)
}

// FromContext returns the Client stored in ctx, or nil.
func FromContext(ctx context.Context) *Client {
	c, _ := ctx.Value(clientKey{}).(*Client)
	return c
}

// Factory builds request-scoped clients that share one http.Client.
type Factory struct {
	baseURL string
	opts    []Option
}

// NewFactory validates baseURL and returns a Factory whose clients are
// configured with opts.
func NewFactory(baseURL string, opts ...Option) (*Factory, error) {
	if _, err := parseBaseURL(baseURL); err != nil {
		return nil, err
	}
	return &Factory{baseURL: baseURL, opts: opts}, nil
}

// New returns a fresh Client.
func (f *Factory) New() *Client {
	// baseURL was validated in NewFactory.
	c, _ := New(f.baseURL, f.opts...)
	return c
}

// Middleware stores a fresh Client in every request's context.
func (f *Factory) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(NewContext(r.Context(), f.New())))
	})
}

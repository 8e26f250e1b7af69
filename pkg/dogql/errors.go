package dogql

import (
	"errors"

	"github.com/getmockd/dogql/pkg/dogapi"
)

// Values of extensions.code on errors returned by resolvers.
const (
	CodeUpstreamError         = "UPSTREAM_ERROR"
	CodeBreedListUnavailable  = "BREED_LIST_UNAVAILABLE"
	CodeDataSourceUnavailable = "INTERNAL_SERVER_ERROR"
)

// ErrNoClient is returned when a resolver runs without a dogapi.Client in
// its context.
var ErrNoClient = errors.New("dogql: no dog API client in context")

// upstreamError tags an upstream failure with a GraphQL error code.
type upstreamError struct {
	err  error
	code string
}

func wrapUpstream(err error) error {
	if err == nil {
		return nil
	}
	code := CodeUpstreamError
	if errors.Is(err, dogapi.ErrBreedListUnavailable) {
		code = CodeBreedListUnavailable
	}
	return &upstreamError{err: err, code: code}
}

func (e *upstreamError) Error() string { return e.err.Error() }

func (e *upstreamError) Unwrap() error { return e.err }

// Extensions reports the error code and, for non-2xx responses, the
// upstream HTTP status.
func (e *upstreamError) Extensions() map[string]any {
	ext := map[string]any{"code": e.code}
	var herr *dogapi.HTTPError
	if errors.As(e.err, &herr) {
		ext["upstreamStatus"] = herr.StatusCode
	}
	return ext
}

type codedError struct {
	err  error
	code string
}

func (e *codedError) Error() string { return e.err.Error() }

func (e *codedError) Unwrap() error { return e.err }

func (e *codedError) Extensions() map[string]any { return map[string]any{"code": e.code} }

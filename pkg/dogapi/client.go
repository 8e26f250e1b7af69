package dogapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/getmockd/dogql/pkg/logging"
	"github.com/getmockd/dogql/pkg/tracing"
	"github.com/getmockd/dogql/pkg/util"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// DefaultBaseURL is the public dog.ceo API root.
const DefaultBaseURL = "https://dog.ceo/api/"

// maxBodySize caps how much of an upstream response is read.
const maxBodySize = 4 << 20

// maxErrorBodySize caps the body kept on an HTTPError.
const maxErrorBodySize = 512

// Client calls the dog.ceo API.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	tracer     *tracing.Tracer
	log        *slog.Logger
	intn       func(n int) int
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the http.Client used for upstream calls.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTracer emits a client span per upstream request.
func WithTracer(t *tracing.Tracer) Option {
	return func(c *Client) { c.tracer = t }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.log = logging.OrNop(l) }
}

// WithRandom replaces the random index source used by RandomDogByBreed.
// intn must return a value in [0, n).
func WithRandom(intn func(n int) int) Option {
	return func(c *Client) {
		if intn != nil {
			c.intn = intn
		}
	}
}

// New creates a Client for the API rooted at baseURL. An empty baseURL
// uses DefaultBaseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	c := &Client{
		baseURL:    u,
		httpClient: http.DefaultClient,
		log:        logging.Nop(),
		intn:       rand.Intn,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func parseBaseURL(raw string) (*url.URL, error) {
	if strings.TrimSpace(raw) == "" {
		raw = DefaultBaseURL
	}
	u, err := url.ParseRequestURI(raw)
	if err != nil {
		return nil, fmt.Errorf("dogapi: invalid base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("dogapi: invalid base url %q: scheme must be http or https", raw)
	}
	// Relative paths resolve against the last segment unless the base ends in /.
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u, nil
}

// BaseURL returns the API root the client resolves paths against.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// RandomDog returns one random image from any breed.
func (c *Client) RandomDog(ctx context.Context) (*Image, error) {
	schemas, err := loadEnvelopes()
	if err != nil {
		return nil, err
	}
	var img Image
	if err := c.getJSON(ctx, "breeds/image/random", schemas.image, &img); err != nil {
		return nil, err
	}
	return &img, nil
}

// AllBreeds returns the names of all known breeds, sorted.
func (c *Client) AllBreeds(ctx context.Context) ([]string, error) {
	schemas, err := loadEnvelopes()
	if err != nil {
		return nil, err
	}
	var env breedListEnvelope
	if err := c.getJSON(ctx, "breeds/list/all", schemas.breedList, &env); err != nil {
		return nil, err
	}
	breeds := make([]string, 0, len(env.Message))
	for name := range env.Message {
		breeds = append(breeds, name)
	}
	slices.Sort(breeds)
	return breeds, nil
}

// RandomDogByBreed returns a random image of breed.
//
// A breed missing from AllBreeds yields an Image with StatusUnknownBreed and
// no message. A missing, malformed or empty image list yields (nil, nil).
// If the breed list cannot be fetched the error wraps ErrBreedListUnavailable.
func (c *Client) RandomDogByBreed(ctx context.Context, breed string) (*Image, error) {
	breeds, err := c.AllBreeds(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBreedListUnavailable, err)
	}
	if _, ok := slices.BinarySearch(breeds, breed); !ok {
		return &Image{Status: StatusUnknownBreed}, nil
	}

	schemas, err := loadEnvelopes()
	if err != nil {
		return nil, err
	}
	var env imagesEnvelope
	err = c.getJSON(ctx, "breed/"+url.PathEscape(breed)+"/images", schemas.images, &env)
	if errors.Is(err, ErrInvalidPayload) {
		c.log.Debug("discarding malformed breed images payload", "breed", breed, "error", err)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if len(env.Message) == 0 {
		return nil, nil
	}

	return &Image{
		Message: env.Message[c.intn(len(env.Message))],
		Status:  env.Status,
	}, nil
}

// AllHusky returns every husky image.
func (c *Client) AllHusky(ctx context.Context) (*ImageList, error) {
	schemas, err := loadEnvelopes()
	if err != nil {
		return nil, err
	}
	var env imagesEnvelope
	if err := c.getJSON(ctx, "breed/husky/images", schemas.images, &env); err != nil {
		return nil, err
	}
	return &ImageList{Images: env.Message, Status: env.Status}, nil
}

// getJSON issues GET path, checks the response against schema and decodes
// it into out. Schema and decode failures wrap ErrInvalidPayload.
func (c *Client) getJSON(ctx context.Context, path string, schema *jsonschema.Schema, out any) (err error) {
	ctx, span := c.tracer.Start(ctx, "GET "+path, tracing.WithSpanKind(tracing.SpanKindClient))
	defer func() {
		if err != nil {
			span.RecordError(err)
		}
		span.End()
	}()

	target := c.baseURL.ResolveReference(&url.URL{Path: path})
	span.SetAttribute("http.method", http.MethodGet)
	span.SetAttribute("http.url", target.String())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return fmt.Errorf("dogapi: new request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	tracing.Inject(ctx, req.Header)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("dogapi: GET %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	span.SetAttribute("http.status_code", strconv.Itoa(resp.StatusCode))
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return fmt.Errorf("dogapi: GET %s: read body: %w", path, err)
	}

	c.log.Debug("upstream response", "path", path, "status", resp.StatusCode, "bytes", len(raw))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &HTTPError{
			Path:       path,
			StatusCode: resp.StatusCode,
			Body:       util.TruncateBody(strings.TrimSpace(string(raw)), maxErrorBodySize),
		}
	}

	var doc any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return fmt.Errorf("%w: GET %s: %v", ErrInvalidPayload, path, err)
	}
	if err := validateEnvelope(schema, doc); err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: GET %s: %v", ErrInvalidPayload, path, err)
	}
	return nil
}

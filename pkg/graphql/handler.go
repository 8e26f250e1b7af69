package graphql

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"time"

	"github.com/getmockd/dogql/pkg/httputil"
	"github.com/getmockd/dogql/pkg/logging"
)

// MaxRequestBodySize is the maximum allowed request body size (1MB).
const MaxRequestBodySize = 1 << 20 // 1MB

// Executable runs GraphQL requests. *Executor implements it.
type Executable interface {
	Execute(ctx context.Context, req *GraphQLRequest) *GraphQLResponse
}

// Handler serves GraphQL over HTTP.
//
// POST accepts application/json ({"query", "operationName", "variables"})
// and application/graphql (the raw document). GET reads the query,
// operationName and variables URL parameters. Requests that cannot be
// decoded get HTTP 400; everything that reaches the executor gets 200,
// with GraphQL errors reported in the body.
type Handler struct {
	executor Executable
	log      *slog.Logger
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithHandlerLogger sets the handler's logger.
func WithHandlerLogger(l *slog.Logger) HandlerOption {
	return func(h *Handler) { h.log = logging.OrNop(l) }
}

// NewHandler creates a new GraphQL HTTP handler.
func NewHandler(executor Executable, opts ...HandlerOption) *Handler {
	h := &Handler{
		executor: executor,
		log:      logging.Nop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// ServeHTTP handles GET and POST GraphQL requests.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	startTime := time.Now()

	var req *GraphQLRequest
	var err error
	switch r.Method {
	case http.MethodGet:
		req, err = parseGetRequest(r)
	case http.MethodPost:
		req, err = parsePostRequest(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if err != nil {
		h.log.Debug("rejecting graphql request", "method", r.Method, "error", err)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp := h.executor.Execute(r.Context(), req)
	httputil.WriteOK(w, resp)

	h.log.Debug("graphql request",
		"operation", req.OperationName,
		"errors", len(resp.Errors),
		"duration", time.Since(startTime))
}

// parseGetRequest parses a GraphQL request from GET query parameters.
func parseGetRequest(r *http.Request) (*GraphQLRequest, error) {
	query := r.URL.Query()

	req := &GraphQLRequest{
		Query:         query.Get("query"),
		OperationName: query.Get("operationName"),
	}
	if req.Query == "" {
		return nil, &parseError{message: "query parameter is required"}
	}

	if varsStr := query.Get("variables"); varsStr != "" {
		var variables map[string]any
		if err := json.Unmarshal([]byte(varsStr), &variables); err != nil {
			return nil, &parseError{message: "invalid variables JSON"}
		}
		req.Variables = variables
	}

	return req, nil
}

// parsePostRequest parses a GraphQL request from a POST body.
func parsePostRequest(w http.ResponseWriter, r *http.Request) (*GraphQLRequest, error) {
	defer func() { _ = r.Body.Close() }()

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxRequestBodySize))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, &parseError{message: "request body too large"}
		}
		return nil, &parseError{message: "failed to read request body"}
	}
	if len(body) == 0 {
		return nil, &parseError{message: "empty request body"}
	}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/graphql" {
		return &GraphQLRequest{Query: string(body)}, nil
	}

	// Default to application/json
	var req GraphQLRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, &parseError{message: "invalid JSON request body"}
	}
	if req.Query == "" {
		return nil, &parseError{message: "query is required"}
	}
	return &req, nil
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, statusCode int, message string) {
	httputil.WriteJSON(w, statusCode, &GraphQLResponse{
		Errors: []GraphQLError{{Message: message}},
	})
}

// parseError represents a request parsing error.
type parseError struct {
	message string
}

func (e *parseError) Error() string {
	return e.message
}

package graphql

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/getmockd/dogql/pkg/logging"
	"github.com/getmockd/dogql/pkg/tracing"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"
	"github.com/vektah/gqlparser/v2/parser"
	"github.com/vektah/gqlparser/v2/validator"

	// Registers the specified validation rules used by validator.Validate.
	_ "github.com/vektah/gqlparser/v2/validator/rules"
)

// Error codes set in extensions.code for failures the executor detects
// itself. Resolver errors carry whatever code the resolver supplies.
const (
	CodeParseFailed         = "GRAPHQL_PARSE_FAILED"
	CodeValidationFailed    = "GRAPHQL_VALIDATION_FAILED"
	CodeBadUserInput        = "BAD_USER_INPUT"
	CodeOperationResolution = "OPERATION_RESOLUTION_FAILURE"
	CodeInternal            = "INTERNAL_SERVER_ERROR"
)

// Executor executes GraphQL operations against registered resolvers.
type Executor struct {
	schema        *Schema
	resolvers     map[string]ResolverFunc
	introspection bool
	tracing       bool
	tracer        *tracing.Tracer
	log           *slog.Logger
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithIntrospection enables or disables __schema and __type. Enabled by default.
func WithIntrospection(enabled bool) ExecutorOption {
	return func(e *Executor) { e.introspection = enabled }
}

// WithTracing adds the Apollo tracing extension to every response.
func WithTracing(enabled bool) ExecutorOption {
	return func(e *Executor) { e.tracing = enabled }
}

// WithTracer emits one span per executed operation.
func WithTracer(t *tracing.Tracer) ExecutorOption {
	return func(e *Executor) { e.tracer = t }
}

// WithLogger sets the logger. Resolver errors are logged at debug level.
func WithLogger(l *slog.Logger) ExecutorOption {
	return func(e *Executor) { e.log = logging.OrNop(l) }
}

// NewExecutor creates a new GraphQL executor with the given schema and resolvers.
func NewExecutor(schema *Schema, resolvers ResolverMap, opts ...ExecutorOption) *Executor {
	e := &Executor{
		schema:        schema,
		resolvers:     make(map[string]ResolverFunc),
		introspection: true,
		log:           logging.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}

	e.registerIntrospection()
	for path, fn := range resolvers {
		e.Register(path, fn)
	}
	return e
}

// Register binds fn to the field at path ("Type.field"). It must not be
// called concurrently with Execute.
func (e *Executor) Register(path string, fn ResolverFunc) {
	e.resolvers[path] = fn
}

// Schema returns the executor's schema.
func (e *Executor) Schema() *Schema {
	return e.schema
}

// Execute executes a GraphQL request and returns a response. Failures are
// reported in the response's errors; Execute never returns nil.
func (e *Executor) Execute(ctx context.Context, req *GraphQLRequest) *GraphQLResponse {
	var trace *apolloTrace
	if e.tracing {
		trace = newApolloTrace(time.Now())
	}

	resp := e.execute(ctx, req, trace)

	if trace != nil {
		if resp.Extensions == nil {
			resp.Extensions = make(map[string]any, 1)
		}
		resp.Extensions["tracing"] = trace.finish(time.Now())
	}
	return resp
}

func (e *Executor) execute(ctx context.Context, req *GraphQLRequest, trace *apolloTrace) *GraphQLResponse {
	if req == nil || strings.TrimSpace(req.Query) == "" {
		return errorResponse(GraphQLError{
			Message:    "query is required",
			Extensions: map[string]any{"code": CodeBadUserInput},
		})
	}

	start := time.Now()
	doc, perr := parser.ParseQuery(&ast.Source{Name: "query", Input: req.Query})
	trace.parsed(start, time.Now())
	if perr != nil {
		return &GraphQLResponse{Errors: convertErrors(perr, CodeParseFailed)}
	}

	start = time.Now()
	verrs := validator.Validate(e.schema.AST(), doc)
	trace.validated(start, time.Now())
	if len(verrs) > 0 {
		return &GraphQLResponse{Errors: convertErrors(verrs, CodeValidationFailed)}
	}

	op, gqlErr := selectOperation(doc, req.OperationName)
	if gqlErr != nil {
		return errorResponse(*gqlErr)
	}
	if op.Operation != ast.Query {
		return errorResponse(GraphQLError{
			Message:    fmt.Sprintf("%s operations are not supported", op.Operation),
			Locations:  locationOf(op.Position),
			Extensions: map[string]any{"code": CodeValidationFailed},
		})
	}

	vars, verr := validator.VariableValues(e.schema.AST(), op, req.Variables)
	if verr != nil {
		return &GraphQLResponse{Errors: convertErrors(verr, CodeBadUserInput)}
	}

	ctx, span := e.tracer.Start(ctx, "graphql.execute")
	defer span.End()
	span.SetAttribute("graphql.operation.type", string(op.Operation))
	if op.Name != "" {
		span.SetAttribute("graphql.operation.name", op.Name)
	}

	x := &execution{
		executor: e,
		schema:   e.schema.AST(),
		doc:      doc,
		vars:     vars,
		trace:    trace,
	}

	root := e.schema.AST().Query
	fields := x.collectFields(root, op.SelectionSet)
	if !e.introspection {
		for _, cf := range fields {
			if name := cf.fields[0].Name; name == "__schema" || name == "__type" {
				return errorResponse(GraphQLError{
					Message:    "introspection is disabled",
					Locations:  locationOf(cf.fields[0].Position),
					Extensions: map[string]any{"code": CodeValidationFailed},
				})
			}
		}
	}

	resp := &GraphQLResponse{}
	data, ok := x.executeFields(ctx, root, fields, nil, nil)
	if ok {
		resp.Data = data
	} else {
		resp.Data = nullData
	}
	resp.Errors = x.errors
	if len(resp.Errors) > 0 {
		span.SetStatus(tracing.StatusError, resp.Errors[0].Message)
	}
	return resp
}

// selectOperation picks the operation to run from doc.
func selectOperation(doc *ast.QueryDocument, name string) (*ast.OperationDefinition, *GraphQLError) {
	if name != "" {
		if op := doc.Operations.ForName(name); op != nil {
			return op, nil
		}
		return nil, &GraphQLError{
			Message:    fmt.Sprintf("Unknown operation named %q.", name),
			Extensions: map[string]any{"code": CodeOperationResolution},
		}
	}
	switch len(doc.Operations) {
	case 0:
		return nil, &GraphQLError{
			Message:    "no operation found in query",
			Extensions: map[string]any{"code": CodeOperationResolution},
		}
	case 1:
		return doc.Operations[0], nil
	default:
		return nil, &GraphQLError{
			Message:    "Must provide operation name if query contains multiple operations.",
			Extensions: map[string]any{"code": CodeOperationResolution},
		}
	}
}

func errorResponse(errs ...GraphQLError) *GraphQLResponse {
	return &GraphQLResponse{Errors: errs}
}

// convertErrors turns gqlparser errors into response errors, tagging each
// with code unless it already carries one.
func convertErrors(err error, code string) []GraphQLError {
	var list gqlerror.List
	var single *gqlerror.Error
	switch {
	case errors.As(err, &list):
	case errors.As(err, &single):
		list = gqlerror.List{single}
	default:
		return []GraphQLError{{Message: err.Error(), Extensions: map[string]any{"code": code}}}
	}

	out := make([]GraphQLError, 0, len(list))
	for _, ge := range list {
		if ge == nil {
			continue
		}
		e := GraphQLError{Message: ge.Message}
		for _, loc := range ge.Locations {
			e.Locations = append(e.Locations, GraphQLErrorLocation{Line: loc.Line, Column: loc.Column})
		}
		for _, p := range ge.Path {
			switch p := p.(type) {
			case ast.PathName:
				e.Path = append(e.Path, string(p))
			case ast.PathIndex:
				e.Path = append(e.Path, int(p))
			}
		}
		e.Extensions = make(map[string]any, len(ge.Extensions)+1)
		for k, v := range ge.Extensions {
			e.Extensions[k] = v
		}
		if _, ok := e.Extensions["code"]; !ok {
			e.Extensions["code"] = code
		}
		out = append(out, e)
	}
	return out
}

func locationOf(pos *ast.Position) []GraphQLErrorLocation {
	if pos == nil || pos.Line == 0 {
		return nil
	}
	return []GraphQLErrorLocation{{Line: pos.Line, Column: pos.Column}}
}

package graphql

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"

	"github.com/vektah/gqlparser/v2/ast"
)

// GraphQLError represents a GraphQL error in the response format.
type GraphQLError struct {
	// Message is the error message.
	Message string `json:"message"`
	// Locations indicates where in the query the error occurred.
	Locations []GraphQLErrorLocation `json:"locations,omitempty"`
	// Path is the response field path where the error occurred.
	Path []any `json:"path,omitempty"`
	// Extensions contains additional error metadata.
	Extensions map[string]any `json:"extensions,omitempty"`
}

// Error implements the error interface, so resolvers may return a
// *GraphQLError to control the message and extensions directly.
func (e *GraphQLError) Error() string {
	return e.Message
}

// GraphQLErrorLocation represents a location in the GraphQL query where an error occurred.
type GraphQLErrorLocation struct {
	// Line is the line number (1-indexed).
	Line int `json:"line"`
	// Column is the column number (1-indexed).
	Column int `json:"column"`
}

// ExtendedError is implemented by resolver errors that carry response
// extensions such as an error code.
type ExtendedError interface {
	error
	Extensions() map[string]any
}

// GraphQLRequest represents an incoming GraphQL request.
type GraphQLRequest struct {
	// Query is the GraphQL query string.
	Query string `json:"query"`
	// OperationName is the name of the operation to execute (for multi-operation documents).
	OperationName string `json:"operationName,omitempty"`
	// Variables are the variable values for the query.
	Variables map[string]any `json:"variables,omitempty"`
}

// GraphQLResponse represents a GraphQL response.
type GraphQLResponse struct {
	// Data contains the result of the query execution. It is omitted when the
	// request failed before execution started.
	Data any `json:"data,omitempty"`
	// Errors contains any errors that occurred during execution.
	Errors []GraphQLError `json:"errors,omitempty"`
	// Extensions contains additional response metadata.
	Extensions map[string]any `json:"extensions,omitempty"`
}

// nullData marks a response whose execution ran but produced null data.
var nullData = json.RawMessage("null")

// FieldPath represents a path to a field in the schema (e.g., "Query.breed").
type FieldPath struct {
	// TypeName is the parent type name (e.g., "Query", "Dog").
	TypeName string
	// FieldName is the field name.
	FieldName string
}

// String returns the string representation of the field path.
func (fp FieldPath) String() string {
	return fp.TypeName + "." + fp.FieldName
}

// ParseFieldPath parses a field path string (e.g., "Query.breed") into a FieldPath.
func ParseFieldPath(path string) FieldPath {
	typeName, fieldName, ok := strings.Cut(path, ".")
	if !ok {
		return FieldPath{FieldName: path}
	}
	return FieldPath{TypeName: typeName, FieldName: fieldName}
}

// ResolveParams is passed to a resolver.
type ResolveParams struct {
	// Parent is the resolved value of the enclosing object. It is nil for
	// root fields.
	Parent any
	// Args holds the coerced field arguments, defaults applied.
	Args map[string]any
	// Field is the selected field. With aliases or merged selections it is
	// the first occurrence.
	Field *ast.Field
	// ParentType is the object type that owns the field.
	ParentType *ast.Definition
	// Path is the response path of the field.
	Path []any
}

// ResolverFunc produces the value of one field.
type ResolverFunc func(ctx context.Context, p ResolveParams) (any, error)

// ResolverMap maps "Type.field" paths to resolvers.
type ResolverMap map[string]ResolverFunc

// Typed is implemented by values returned for interface or union fields to
// name their concrete object type.
type Typed interface {
	GraphQLTypeName() string
}

// Object is a response object that keeps its keys in selection order.
type Object struct {
	keys   []string
	values map[string]any
}

func newObject(size int) *Object {
	return &Object{
		keys:   make([]string, 0, size),
		values: make(map[string]any, size),
	}
}

// Set stores value under key, appending key if it is new.
func (o *Object) Set(key string, value any) {
	if _, ok := o.values[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.values[key] = value
}

// Get returns the value stored under key.
func (o *Object) Get(key string) (any, bool) {
	v, ok := o.values[key]
	return v, ok
}

// Keys returns the keys in insertion order.
func (o *Object) Keys() []string {
	return o.keys
}

// Len returns the number of keys.
func (o *Object) Len() int {
	return len(o.keys)
}

// MarshalJSON writes the object with its keys in order.
func (o *Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		b, err := json.Marshal(o.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(b)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

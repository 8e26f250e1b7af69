package graphql

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
)

// Schema represents a parsed GraphQL schema with convenient accessors
// for types and root fields.
type Schema struct {
	ast     *ast.Schema
	sources []*ast.Source
	types   map[string]*ast.Definition
	queries map[string]*ast.FieldDefinition
}

// ParseSchema parses one or more GraphQL SDL strings as a single schema.
// Later strings may extend types declared by earlier ones.
func ParseSchema(sdl ...string) (*Schema, error) {
	sources := make([]*ast.Source, len(sdl))
	for i, s := range sdl {
		name := "schema"
		if i > 0 {
			name = fmt.Sprintf("schema.%d", i)
		}
		sources[i] = &ast.Source{Name: name, Input: s}
	}
	return ParseSources(sources...)
}

// ParseSources parses named SDL sources as a single schema.
func ParseSources(sources ...*ast.Source) (*Schema, error) {
	if len(sources) == 0 {
		return nil, fmt.Errorf("failed to parse GraphQL schema: no sources")
	}
	schema, err := gqlparser.LoadSchema(sources...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse GraphQL schema: %w", err)
	}
	return newSchema(schema, sources), nil
}

// ParseSchemaFile parses a GraphQL schema from a file and returns a Schema.
func ParseSchemaFile(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file %s: %w", path, err)
	}
	return ParseSources(&ast.Source{Name: path, Input: string(data)})
}

// newSchema creates a new Schema from a parsed ast.Schema.
func newSchema(schema *ast.Schema, sources []*ast.Source) *Schema {
	s := &Schema{
		ast:     schema,
		sources: sources,
		types:   make(map[string]*ast.Definition, len(schema.Types)),
		queries: make(map[string]*ast.FieldDefinition),
	}

	for name, def := range schema.Types {
		s.types[name] = def
	}

	// Index query fields (excluding introspection fields)
	if schema.Query != nil {
		for _, field := range schema.Query.Fields {
			if !isIntrospectionField(field.Name) {
				s.queries[field.Name] = field
			}
		}
	}

	return s
}

// isIntrospectionField returns true if the field name is a built-in introspection field.
func isIntrospectionField(name string) bool {
	return strings.HasPrefix(name, "__")
}

// AST returns the underlying gqlparser AST schema.
func (s *Schema) AST() *ast.Schema {
	return s.ast
}

// Source returns the SDL sources joined in parse order.
func (s *Schema) Source() string {
	parts := make([]string, len(s.sources))
	for i, src := range s.sources {
		parts[i] = strings.TrimSpace(src.Input)
	}
	return strings.Join(parts, "\n\n") + "\n"
}

// GetType returns a type definition by name, or nil if not found.
func (s *Schema) GetType(name string) *ast.Definition {
	return s.types[name]
}

// GetQueryField returns a query field definition by name, or nil if not found.
func (s *Schema) GetQueryField(name string) *ast.FieldDefinition {
	return s.queries[name]
}

// GetField returns a field definition by type and field name.
func (s *Schema) GetField(typeName, fieldName string) *ast.FieldDefinition {
	def := s.GetType(typeName)
	if def == nil {
		return nil
	}
	return def.Fields.ForName(fieldName)
}

// ListQueries returns all query field names in sorted order.
func (s *Schema) ListQueries() []string {
	names := make([]string, 0, len(s.queries))
	for name := range s.queries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ListTypes returns all type names in sorted order, optionally filtering by kind.
// If kinds is empty, all types are returned.
func (s *Schema) ListTypes(kinds ...ast.DefinitionKind) []string {
	kindSet := make(map[ast.DefinitionKind]bool)
	for _, k := range kinds {
		kindSet[k] = true
	}

	names := make([]string, 0, len(s.types))
	for name, def := range s.types {
		if len(kindSet) == 0 || kindSet[def.Kind] {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// HasQuery returns true if the schema has a query type with fields.
func (s *Schema) HasQuery() bool {
	return s.ast.Query != nil && len(s.queries) > 0
}

// HasMutation returns true if the schema has a mutation type with fields.
func (s *Schema) HasMutation() bool {
	return s.ast.Mutation != nil && len(s.ast.Mutation.Fields) > 0
}

// HasSubscription returns true if the schema has a subscription type with fields.
func (s *Schema) HasSubscription() bool {
	return s.ast.Subscription != nil && len(s.ast.Subscription.Fields) > 0
}

// Validate performs checks beyond what gqlparser enforces while parsing.
func (s *Schema) Validate() error {
	if !s.HasQuery() {
		return fmt.Errorf("schema must define a Query type with at least one field")
	}
	return nil
}

// IsScalarType returns true if the given type name is a scalar type.
func (s *Schema) IsScalarType(name string) bool {
	def := s.GetType(name)
	return def != nil && def.Kind == ast.Scalar
}

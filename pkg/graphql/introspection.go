package graphql

import (
	"context"
	"sort"
	"strings"

	"github.com/vektah/gqlparser/v2/ast"
)

// introType wraps a named definition or a list/non-null type reference as
// a __Type value.
type introType struct {
	schema *ast.Schema
	def    *ast.Definition
	ref    *ast.Type // set for LIST and NON_NULL wrappers
}

// introInputValue is an argument or input field as an __InputValue value.
type introInputValue struct {
	name         string
	description  string
	typ          *ast.Type
	defaultValue *ast.Value
	directives   ast.DirectiveList
}

func wrapDefinition(s *ast.Schema, def *ast.Definition) any {
	if def == nil {
		return nil
	}
	return &introType{schema: s, def: def}
}

func wrapTypeRef(s *ast.Schema, t *ast.Type) any {
	if t == nil {
		return nil
	}
	if t.NonNull || t.Elem != nil {
		return &introType{schema: s, ref: t}
	}
	return wrapDefinition(s, s.Types[t.NamedType])
}

func (t *introType) kind() string {
	if t.ref != nil {
		if t.ref.NonNull {
			return "NON_NULL"
		}
		return "LIST"
	}
	switch t.def.Kind {
	case ast.Scalar:
		return "SCALAR"
	case ast.Interface:
		return "INTERFACE"
	case ast.Union:
		return "UNION"
	case ast.Enum:
		return "ENUM"
	case ast.InputObject:
		return "INPUT_OBJECT"
	default:
		return "OBJECT"
	}
}

func (t *introType) ofType() any {
	switch {
	case t.ref == nil:
		return nil
	case t.ref.NonNull:
		inner := *t.ref
		inner.NonNull = false
		return wrapTypeRef(t.schema, &inner)
	default:
		return wrapTypeRef(t.schema, t.ref.Elem)
	}
}

func deprecation(dirs ast.DirectiveList) (bool, any) {
	d := dirs.ForName("deprecated")
	if d == nil {
		return false, nil
	}
	if arg := d.Arguments.ForName("reason"); arg != nil && arg.Value != nil {
		return true, arg.Value.Raw
	}
	return true, "No longer supported"
}

func optionalString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func includeDeprecated(args map[string]any) bool {
	v, _ := args["includeDeprecated"].(bool)
	return v
}

func inputValues(args ast.ArgumentDefinitionList, withDeprecated bool) []*introInputValue {
	out := make([]*introInputValue, 0, len(args))
	for _, a := range args {
		if dep, _ := deprecation(a.Directives); dep && !withDeprecated {
			continue
		}
		out = append(out, &introInputValue{
			name:         a.Name,
			description:  a.Description,
			typ:          a.Type,
			defaultValue: a.DefaultValue,
			directives:   a.Directives,
		})
	}
	return out
}

// registerIntrospection binds the resolvers behind __schema and __type.
// They read the gqlparser schema directly; the introspection types come
// from the gqlparser prelude.
func (e *Executor) registerIntrospection() {
	s := e.schema.AST()

	typeOf := func(p ResolveParams) *introType {
		t, _ := p.Parent.(*introType)
		return t
	}
	fieldOf := func(p ResolveParams) *ast.FieldDefinition {
		f, _ := p.Parent.(*ast.FieldDefinition)
		return f
	}
	inputOf := func(p ResolveParams) *introInputValue {
		v, _ := p.Parent.(*introInputValue)
		return v
	}
	enumOf := func(p ResolveParams) *ast.EnumValueDefinition {
		v, _ := p.Parent.(*ast.EnumValueDefinition)
		return v
	}
	directiveOf := func(p ResolveParams) *ast.DirectiveDefinition {
		d, _ := p.Parent.(*ast.DirectiveDefinition)
		return d
	}
	value := func(fn func(p ResolveParams) any) ResolverFunc {
		return func(_ context.Context, p ResolveParams) (any, error) {
			return fn(p), nil
		}
	}

	resolvers := ResolverMap{
		"Query.__schema": value(func(ResolveParams) any { return s }),
		"Query.__type": value(func(p ResolveParams) any {
			name, _ := p.Args["name"].(string)
			return wrapDefinition(s, s.Types[name])
		}),

		"__Schema.description": value(func(ResolveParams) any { return nil }),
		"__Schema.types": value(func(ResolveParams) any {
			names := make([]string, 0, len(s.Types))
			for name := range s.Types {
				names = append(names, name)
			}
			sort.Strings(names)
			out := make([]any, len(names))
			for i, name := range names {
				out[i] = wrapDefinition(s, s.Types[name])
			}
			return out
		}),
		"__Schema.queryType":        value(func(ResolveParams) any { return wrapDefinition(s, s.Query) }),
		"__Schema.mutationType":     value(func(ResolveParams) any { return wrapDefinition(s, s.Mutation) }),
		"__Schema.subscriptionType": value(func(ResolveParams) any { return wrapDefinition(s, s.Subscription) }),
		"__Schema.directives": value(func(ResolveParams) any {
			names := make([]string, 0, len(s.Directives))
			for name := range s.Directives {
				names = append(names, name)
			}
			sort.Strings(names)
			out := make([]*ast.DirectiveDefinition, len(names))
			for i, name := range names {
				out[i] = s.Directives[name]
			}
			return out
		}),

		"__Type.kind": value(func(p ResolveParams) any { return typeOf(p).kind() }),
		"__Type.name": value(func(p ResolveParams) any {
			if t := typeOf(p); t.def != nil {
				return t.def.Name
			}
			return nil
		}),
		"__Type.description": value(func(p ResolveParams) any {
			if t := typeOf(p); t.def != nil {
				return optionalString(t.def.Description)
			}
			return nil
		}),
		"__Type.specifiedByURL": value(func(p ResolveParams) any {
			t := typeOf(p)
			if t.def == nil || t.def.Kind != ast.Scalar {
				return nil
			}
			if d := t.def.Directives.ForName("specifiedBy"); d != nil {
				if arg := d.Arguments.ForName("url"); arg != nil && arg.Value != nil {
					return arg.Value.Raw
				}
			}
			return nil
		}),
		"__Type.fields": value(func(p ResolveParams) any {
			t := typeOf(p)
			if t.def == nil || (t.def.Kind != ast.Object && t.def.Kind != ast.Interface) {
				return nil
			}
			withDeprecated := includeDeprecated(p.Args)
			out := make([]*ast.FieldDefinition, 0, len(t.def.Fields))
			for _, f := range t.def.Fields {
				if strings.HasPrefix(f.Name, "__") {
					continue
				}
				if dep, _ := deprecation(f.Directives); dep && !withDeprecated {
					continue
				}
				out = append(out, f)
			}
			return out
		}),
		"__Type.interfaces": value(func(p ResolveParams) any {
			t := typeOf(p)
			if t.def == nil || (t.def.Kind != ast.Object && t.def.Kind != ast.Interface) {
				return nil
			}
			out := make([]any, 0, len(t.def.Interfaces))
			for _, name := range t.def.Interfaces {
				out = append(out, wrapDefinition(s, s.Types[name]))
			}
			return out
		}),
		"__Type.possibleTypes": value(func(p ResolveParams) any {
			t := typeOf(p)
			if t.def == nil || !t.def.IsAbstractType() {
				return nil
			}
			possible := s.GetPossibleTypes(t.def)
			out := make([]any, 0, len(possible))
			for _, def := range possible {
				out = append(out, wrapDefinition(s, def))
			}
			return out
		}),
		"__Type.enumValues": value(func(p ResolveParams) any {
			t := typeOf(p)
			if t.def == nil || t.def.Kind != ast.Enum {
				return nil
			}
			withDeprecated := includeDeprecated(p.Args)
			out := make([]*ast.EnumValueDefinition, 0, len(t.def.EnumValues))
			for _, v := range t.def.EnumValues {
				if dep, _ := deprecation(v.Directives); dep && !withDeprecated {
					continue
				}
				out = append(out, v)
			}
			return out
		}),
		"__Type.inputFields": value(func(p ResolveParams) any {
			t := typeOf(p)
			if t.def == nil || t.def.Kind != ast.InputObject {
				return nil
			}
			withDeprecated := includeDeprecated(p.Args)
			out := make([]*introInputValue, 0, len(t.def.Fields))
			for _, f := range t.def.Fields {
				if dep, _ := deprecation(f.Directives); dep && !withDeprecated {
					continue
				}
				out = append(out, &introInputValue{
					name:         f.Name,
					description:  f.Description,
					typ:          f.Type,
					defaultValue: f.DefaultValue,
					directives:   f.Directives,
				})
			}
			return out
		}),
		"__Type.ofType": value(func(p ResolveParams) any { return typeOf(p).ofType() }),
		"__Type.isOneOf": value(func(p ResolveParams) any {
			t := typeOf(p)
			if t.def == nil || t.def.Kind != ast.InputObject {
				return nil
			}
			return t.def.Directives.ForName("oneOf") != nil
		}),

		"__Field.name":        value(func(p ResolveParams) any { return fieldOf(p).Name }),
		"__Field.description": value(func(p ResolveParams) any { return optionalString(fieldOf(p).Description) }),
		"__Field.args": value(func(p ResolveParams) any {
			return inputValues(fieldOf(p).Arguments, includeDeprecated(p.Args))
		}),
		"__Field.type": value(func(p ResolveParams) any { return wrapTypeRef(s, fieldOf(p).Type) }),
		"__Field.isDeprecated": value(func(p ResolveParams) any {
			dep, _ := deprecation(fieldOf(p).Directives)
			return dep
		}),
		"__Field.deprecationReason": value(func(p ResolveParams) any {
			_, reason := deprecation(fieldOf(p).Directives)
			return reason
		}),

		"__InputValue.name":        value(func(p ResolveParams) any { return inputOf(p).name }),
		"__InputValue.description": value(func(p ResolveParams) any { return optionalString(inputOf(p).description) }),
		"__InputValue.type":        value(func(p ResolveParams) any { return wrapTypeRef(s, inputOf(p).typ) }),
		"__InputValue.defaultValue": value(func(p ResolveParams) any {
			if v := inputOf(p).defaultValue; v != nil {
				return v.String()
			}
			return nil
		}),
		"__InputValue.isDeprecated": value(func(p ResolveParams) any {
			dep, _ := deprecation(inputOf(p).directives)
			return dep
		}),
		"__InputValue.deprecationReason": value(func(p ResolveParams) any {
			_, reason := deprecation(inputOf(p).directives)
			return reason
		}),

		"__EnumValue.name":        value(func(p ResolveParams) any { return enumOf(p).Name }),
		"__EnumValue.description": value(func(p ResolveParams) any { return optionalString(enumOf(p).Description) }),
		"__EnumValue.isDeprecated": value(func(p ResolveParams) any {
			dep, _ := deprecation(enumOf(p).Directives)
			return dep
		}),
		"__EnumValue.deprecationReason": value(func(p ResolveParams) any {
			_, reason := deprecation(enumOf(p).Directives)
			return reason
		}),

		"__Directive.name":        value(func(p ResolveParams) any { return directiveOf(p).Name }),
		"__Directive.description": value(func(p ResolveParams) any { return optionalString(directiveOf(p).Description) }),
		"__Directive.locations": value(func(p ResolveParams) any {
			d := directiveOf(p)
			out := make([]string, len(d.Locations))
			for i, loc := range d.Locations {
				out[i] = string(loc)
			}
			return out
		}),
		"__Directive.args": value(func(p ResolveParams) any {
			return inputValues(directiveOf(p).Arguments, includeDeprecated(p.Args))
		}),
		"__Directive.isRepeatable": value(func(p ResolveParams) any { return directiveOf(p).IsRepeatable }),
	}

	for path, fn := range resolvers {
		e.Register(path, fn)
	}
}

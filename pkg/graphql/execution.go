package graphql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"runtime/debug"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/vektah/gqlparser/v2/ast"
)

// execution holds the state of one operation. Fields are resolved serially,
// so it needs no locking.
type execution struct {
	executor *Executor
	schema   *ast.Schema
	doc      *ast.QueryDocument
	vars     map[string]any
	trace    *apolloTrace
	errors   []GraphQLError
}

// collectedField groups the selections that share one response key.
type collectedField struct {
	key    string
	fields []*ast.Field
}

func (x *execution) collectFields(objType *ast.Definition, set ast.SelectionSet) []collectedField {
	var out []collectedField
	index := make(map[string]int)
	x.collect(objType, set, make(map[string]bool), &out, index)
	return out
}

func (x *execution) collect(objType *ast.Definition, set ast.SelectionSet, visited map[string]bool, out *[]collectedField, index map[string]int) {
	for _, sel := range set {
		switch s := sel.(type) {
		case *ast.Field:
			if !x.shouldInclude(s.Directives) {
				continue
			}
			key := s.Alias
			if key == "" {
				key = s.Name
			}
			if i, ok := index[key]; ok {
				(*out)[i].fields = append((*out)[i].fields, s)
				continue
			}
			index[key] = len(*out)
			*out = append(*out, collectedField{key: key, fields: []*ast.Field{s}})

		case *ast.FragmentSpread:
			if !x.shouldInclude(s.Directives) || visited[s.Name] {
				continue
			}
			visited[s.Name] = true
			frag := s.Definition
			if frag == nil {
				frag = x.doc.Fragments.ForName(s.Name)
			}
			if frag == nil || !x.fragmentApplies(objType, frag.TypeCondition) {
				continue
			}
			x.collect(objType, frag.SelectionSet, visited, out, index)

		case *ast.InlineFragment:
			if !x.shouldInclude(s.Directives) {
				continue
			}
			if s.TypeCondition != "" && !x.fragmentApplies(objType, s.TypeCondition) {
				continue
			}
			x.collect(objType, s.SelectionSet, visited, out, index)
		}
	}
}

// shouldInclude evaluates @skip and @include.
func (x *execution) shouldInclude(dirs ast.DirectiveList) bool {
	if d := dirs.ForName("skip"); d != nil && d.Definition != nil {
		if skip, _ := d.ArgumentMap(x.vars)["if"].(bool); skip {
			return false
		}
	}
	if d := dirs.ForName("include"); d != nil && d.Definition != nil {
		if include, _ := d.ArgumentMap(x.vars)["if"].(bool); !include {
			return false
		}
	}
	return true
}

func (x *execution) fragmentApplies(objType *ast.Definition, condition string) bool {
	if condition == "" || condition == objType.Name {
		return true
	}
	cond := x.schema.Types[condition]
	if cond == nil || !cond.IsAbstractType() {
		return false
	}
	for _, pt := range x.schema.GetPossibleTypes(cond) {
		if pt.Name == objType.Name {
			return true
		}
	}
	return false
}

func (x *execution) executeSelectionSet(ctx context.Context, objType *ast.Definition, set ast.SelectionSet, parent any, path []any) (*Object, bool) {
	return x.executeFields(ctx, objType, x.collectFields(objType, set), parent, path)
}

// executeFields resolves fields in order. ok is false when a non-null
// field resolved to null, in which case the whole object is null.
func (x *execution) executeFields(ctx context.Context, objType *ast.Definition, fields []collectedField, parent any, path []any) (*Object, bool) {
	obj := newObject(len(fields))
	for _, cf := range fields {
		v, ok := x.executeField(ctx, objType, parent, cf.fields, appendPath(path, cf.key))
		if !ok {
			return nil, false
		}
		obj.Set(cf.key, v)
	}
	return obj, true
}

func (x *execution) executeField(ctx context.Context, objType *ast.Definition, parent any, fields []*ast.Field, path []any) (any, bool) {
	field := fields[0]
	if field.Name == "__typename" {
		return objType.Name, true
	}

	def := objType.Fields.ForName(field.Name)
	if def == nil {
		def = field.Definition
	}
	if def == nil {
		x.addError(field, path, fmt.Errorf("cannot query field %q on type %q", field.Name, objType.Name))
		return nil, true
	}

	var args map[string]any
	if field.Definition != nil {
		args = field.ArgumentMap(x.vars)
	}

	start := time.Now()
	value, err := x.resolve(ctx, ResolveParams{
		Parent:     parent,
		Args:       args,
		Field:      field,
		ParentType: objType,
		Path:       path,
	})
	x.trace.resolver(path, objType.Name, field.Name, def.Type.String(), start, time.Now())

	if err != nil {
		x.addError(field, path, err)
		return nil, !def.Type.NonNull
	}
	return x.completeValue(ctx, def.Type, fields, value, path)
}

func (x *execution) resolve(ctx context.Context, p ResolveParams) (value any, err error) {
	fn := x.executor.resolvers[p.ParentType.Name+"."+p.Field.Name]
	if fn == nil {
		return defaultResolve(p.Parent, p.Field.Name)
	}

	defer func() {
		if r := recover(); r != nil {
			x.executor.log.Error("resolver panic",
				"field", p.ParentType.Name+"."+p.Field.Name,
				"panic", r,
				"stack", string(debug.Stack()))
			value = nil
			err = &GraphQLError{
				Message:    "internal server error",
				Extensions: map[string]any{"code": CodeInternal},
			}
		}
	}()
	return fn(ctx, p)
}

// completeValue shapes a resolved value according to its schema type. ok
// is false when a null must propagate to the parent.
func (x *execution) completeValue(ctx context.Context, t *ast.Type, fields []*ast.Field, v any, path []any) (any, bool) {
	if t.NonNull {
		inner := *t
		inner.NonNull = false
		r, ok := x.completeNullable(ctx, &inner, fields, v, path)
		if !ok {
			return nil, false
		}
		if r == nil {
			x.addError(fields[0], path, fmt.Errorf("Cannot return null for non-nullable field %s.", fieldName(path)))
			return nil, false
		}
		return r, true
	}

	r, ok := x.completeNullable(ctx, t, fields, v, path)
	if !ok {
		return nil, true
	}
	return r, true
}

func (x *execution) completeNullable(ctx context.Context, t *ast.Type, fields []*ast.Field, v any, path []any) (any, bool) {
	if isNil(v) {
		return nil, true
	}

	if t.Elem != nil {
		rv := reflect.Indirect(reflect.ValueOf(v))
		if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
			x.addError(fields[0], path, fmt.Errorf("expected a list for field %s, got %T", fieldName(path), v))
			return nil, false
		}
		items := make([]any, rv.Len())
		for i := range items {
			item, ok := x.completeValue(ctx, t.Elem, fields, rv.Index(i).Interface(), appendPath(path, i))
			if !ok {
				return nil, false
			}
			items[i] = item
		}
		return items, true
	}

	def := x.schema.Types[t.NamedType]
	if def == nil {
		x.addError(fields[0], path, fmt.Errorf("unknown type %q", t.NamedType))
		return nil, false
	}

	switch def.Kind {
	case ast.Scalar:
		out, err := serializeScalar(def.Name, v)
		if err != nil {
			x.addError(fields[0], path, err)
			return nil, false
		}
		return out, true

	case ast.Enum:
		out, err := serializeEnum(def, v)
		if err != nil {
			x.addError(fields[0], path, err)
			return nil, false
		}
		return out, true

	case ast.Object:
		return x.completeObject(ctx, def, fields, v, path)

	case ast.Interface, ast.Union:
		typed, ok := v.(Typed)
		if !ok {
			x.addError(fields[0], path, fmt.Errorf("cannot determine the concrete type of %T for abstract type %q", v, def.Name))
			return nil, false
		}
		concrete := x.schema.Types[typed.GraphQLTypeName()]
		if concrete == nil || !x.fragmentApplies(concrete, def.Name) {
			x.addError(fields[0], path, fmt.Errorf("type %q is not a possible type for %q", typed.GraphQLTypeName(), def.Name))
			return nil, false
		}
		return x.completeObject(ctx, concrete, fields, v, path)
	}

	x.addError(fields[0], path, fmt.Errorf("type %q cannot be used as an output type", def.Name))
	return nil, false
}

// completeObject merges the sub-selections of all fields sharing the
// response key and executes them against v.
func (x *execution) completeObject(ctx context.Context, def *ast.Definition, fields []*ast.Field, v any, path []any) (any, bool) {
	var set ast.SelectionSet
	for _, f := range fields {
		set = append(set, f.SelectionSet...)
	}
	obj, ok := x.executeSelectionSet(ctx, def, set, v, path)
	if !ok {
		return nil, false
	}
	return obj, true
}

// addError records err against field. Messages and extensions come from a
// wrapped *GraphQLError or ExtendedError when present.
func (x *execution) addError(field *ast.Field, path []any, err error) {
	gqlErr := GraphQLError{
		Message:   err.Error(),
		Locations: locationOf(field.Position),
		Path:      path,
	}

	var ge *GraphQLError
	if errors.As(err, &ge) {
		gqlErr.Message = ge.Message
		gqlErr.Extensions = copyExtensions(ge.Extensions)
	}
	var ext ExtendedError
	if errors.As(err, &ext) {
		if gqlErr.Extensions == nil {
			gqlErr.Extensions = make(map[string]any)
		}
		for k, v := range ext.Extensions() {
			gqlErr.Extensions[k] = v
		}
	}

	x.executor.log.Debug("field error", "path", fieldName(path), "error", err)
	x.errors = append(x.errors, gqlErr)
}

func copyExtensions(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func appendPath(path []any, elem any) []any {
	out := make([]any, len(path)+1)
	copy(out, path)
	out[len(path)] = elem
	return out
}

// fieldName renders a response path as "a.b.0.c".
func fieldName(path []any) string {
	parts := make([]string, len(path))
	for i, p := range path {
		parts[i] = fmt.Sprint(p)
	}
	return strings.Join(parts, ".")
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}

// indirect dereferences pointers down to the underlying value.
func indirect(v any) any {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if !rv.IsValid() {
		return nil
	}
	return rv.Interface()
}

func serializeScalar(name string, v any) (any, error) {
	v = indirect(v)
	if n, ok := v.(json.Number); ok {
		switch name {
		case "String", "ID":
			return n.String(), nil
		case "Int":
			i, err := n.Int64()
			if err != nil || i < math.MinInt32 || i > math.MaxInt32 {
				return nil, fmt.Errorf("Int cannot represent non 32-bit signed integer value: %s", n)
			}
			return int(i), nil
		case "Float":
			f, err := n.Float64()
			if err != nil {
				return nil, fmt.Errorf("Float cannot represent value: %s", n)
			}
			return f, nil
		}
	}

	rv := reflect.ValueOf(v)
	switch name {
	case "String":
		switch rv.Kind() {
		case reflect.String:
			return rv.String(), nil
		case reflect.Bool:
			return strconv.FormatBool(rv.Bool()), nil
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
			reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
			reflect.Float32, reflect.Float64:
			return fmt.Sprint(v), nil
		}
		if s, ok := v.(fmt.Stringer); ok {
			return s.String(), nil
		}
		return nil, fmt.Errorf("String cannot represent value: %v", v)

	case "ID":
		switch rv.Kind() {
		case reflect.String:
			return rv.String(), nil
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return strconv.FormatInt(rv.Int(), 10), nil
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			return strconv.FormatUint(rv.Uint(), 10), nil
		}
		return nil, fmt.Errorf("ID cannot represent value: %v", v)

	case "Int":
		var i int64
		switch rv.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			i = rv.Int()
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			if rv.Uint() > math.MaxInt32 {
				return nil, fmt.Errorf("Int cannot represent non 32-bit signed integer value: %v", v)
			}
			i = int64(rv.Uint())
		case reflect.Float32, reflect.Float64:
			f := rv.Float()
			if f != math.Trunc(f) {
				return nil, fmt.Errorf("Int cannot represent non-integer value: %v", v)
			}
			i = int64(f)
		default:
			return nil, fmt.Errorf("Int cannot represent value: %v", v)
		}
		if i < math.MinInt32 || i > math.MaxInt32 {
			return nil, fmt.Errorf("Int cannot represent non 32-bit signed integer value: %v", v)
		}
		return int(i), nil

	case "Float":
		switch rv.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return float64(rv.Int()), nil
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			return float64(rv.Uint()), nil
		case reflect.Float32, reflect.Float64:
			return rv.Float(), nil
		}
		return nil, fmt.Errorf("Float cannot represent value: %v", v)

	case "Boolean":
		if rv.Kind() == reflect.Bool {
			return rv.Bool(), nil
		}
		return nil, fmt.Errorf("Boolean cannot represent value: %v", v)
	}

	// Custom scalars pass through unchanged.
	return v, nil
}

func serializeEnum(def *ast.Definition, v any) (any, error) {
	v = indirect(v)
	var name string
	switch t := v.(type) {
	case string:
		name = t
	case fmt.Stringer:
		name = t.String()
	default:
		rv := reflect.ValueOf(v)
		if rv.Kind() != reflect.String {
			return nil, fmt.Errorf("Enum %q cannot represent value: %v", def.Name, v)
		}
		name = rv.String()
	}
	if def.EnumValues.ForName(name) == nil {
		return nil, fmt.Errorf("Enum %q cannot represent value: %q", def.Name, name)
	}
	return name, nil
}

// defaultResolve reads field name from parent: a map key, or an exported
// struct field whose json tag (or name, case-insensitively) matches.
func defaultResolve(parent any, name string) (any, error) {
	switch p := parent.(type) {
	case nil:
		return nil, nil
	case map[string]any:
		return p[name], nil
	case *Object:
		v, _ := p.Get(name)
		return v, nil
	}

	rv := reflect.ValueOf(parent)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, nil
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, nil
		}
		mv := rv.MapIndex(reflect.ValueOf(name).Convert(rv.Type().Key()))
		if !mv.IsValid() {
			return nil, nil
		}
		return mv.Interface(), nil

	case reflect.Struct:
		idx, ok := structFieldIndex(rv.Type(), name)
		if !ok {
			return nil, nil
		}
		fv, err := rv.FieldByIndexErr(idx)
		if err != nil || !fv.CanInterface() {
			// nil embedded pointer or unexported embedding
			return nil, nil
		}
		return fv.Interface(), nil
	}
	return nil, nil
}

type fieldKey struct {
	t    reflect.Type
	name string
}

var structFieldCache sync.Map // fieldKey -> []int (nil when absent)

func structFieldIndex(t reflect.Type, name string) ([]int, bool) {
	key := fieldKey{t, name}
	if idx, ok := structFieldCache.Load(key); ok {
		return idx.([]int), idx.([]int) != nil
	}

	var found, fallback []int
	for _, f := range reflect.VisibleFields(t) {
		if !f.IsExported() || f.Anonymous {
			continue
		}
		tag, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if tag == "-" {
			continue
		}
		if tag == name {
			found = f.Index
			break
		}
		if tag == "" && fallback == nil && strings.EqualFold(f.Name, name) {
			fallback = f.Index
		}
	}
	if found == nil {
		found = fallback
	}
	structFieldCache.Store(key, found)
	return found, found != nil
}

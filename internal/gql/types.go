package gql

import (
	"encoding/json"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/language/ast"
)

var timeType = reflect.TypeOf(time.Time{})

// typeBuilder derives GraphQL object types from Go structs, using their json tags as
// field names. Embedded structs are flattened.
type typeBuilder struct {
	objects map[reflect.Type]*graphql.Object
	fields  map[reflect.Type]graphql.Fields
}

func newTypeBuilder() *typeBuilder {
	return &typeBuilder{
		objects: make(map[reflect.Type]*graphql.Object),
		fields:  make(map[reflect.Type]graphql.Fields),
	}
}

// extend adds a computed field to the object of t. Fields are resolved lazily, so this
// works until the schema is built.
func (b *typeBuilder) extend(t reflect.Type, name string, f *graphql.Field) {
	b.object(t)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	b.fields[t][name] = f
}

func (b *typeBuilder) object(t reflect.Type) *graphql.Object {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if o, ok := b.objects[t]; ok {
		return o
	}
	fields := graphql.Fields{}
	o := graphql.NewObject(graphql.ObjectConfig{
		Name: t.Name(),
		Fields: graphql.FieldsThunk(func() graphql.Fields {
			return fields
		}),
	})
	b.objects[t] = o
	b.fields[t] = fields
	b.collect(t, nil, fields)
	return o
}

func (b *typeBuilder) collect(t reflect.Type, index []int, fields graphql.Fields) {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		idx := append(append([]int(nil), index...), i)
		if f.Anonymous && f.Type.Kind() == reflect.Struct {
			b.collect(f.Type, idx, fields)
			continue
		}
		if !f.IsExported() {
			continue
		}
		name := jsonName(f)
		if name == "" {
			continue
		}
		fields[name] = &graphql.Field{
			Type:    b.output(f.Type),
			Resolve: fieldResolver(idx),
		}
	}
}

func (b *typeBuilder) output(t reflect.Type) graphql.Output {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t == timeType {
		return graphql.DateTime
	}
	switch t.Kind() {
	case reflect.String:
		return graphql.String
	case reflect.Bool:
		return graphql.Boolean
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return graphql.Int
	case reflect.Float32, reflect.Float64:
		return graphql.Float
	case reflect.Slice:
		return graphql.NewList(b.output(t.Elem()))
	case reflect.Struct:
		return b.object(t)
	}
	return JSON
}

func jsonName(f reflect.StructField) string {
	tag := f.Tag.Get("json")
	if tag == "-" {
		return ""
	}
	name, _, _ := strings.Cut(tag, ",")
	if name == "" {
		return f.Name
	}
	return name
}

func fieldResolver(index []int) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (any, error) {
		v := reflect.ValueOf(p.Source)
		for v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface {
			if v.IsNil() {
				return nil, nil
			}
			v = v.Elem()
		}
		if v.Kind() != reflect.Struct {
			return nil, nil
		}
		return plain(v.FieldByIndex(index)), nil
	}
}

// plain unwraps pointers and named string types so the built-in scalars serialize them.
func plain(v reflect.Value) any {
	for v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}
	switch {
	case v.Kind() == reflect.String:
		return v.String()
	case v.Kind() == reflect.Slice && v.Type().Elem().Kind() == reflect.String:
		out := make([]string, v.Len())
		for i := range out {
			out[i] = v.Index(i).String()
		}
		return out
	}
	return v.Interface()
}

// JSON is an untyped scalar carrying document inputs, so that the field rules stay in
// the validation layer rather than in the GraphQL input types.
var JSON = graphql.NewScalar(graphql.ScalarConfig{
	Name:        "JSON",
	Description: "Arbitrary JSON value.",
	Serialize:   func(v any) any { return v },
	ParseValue:  func(v any) any { return v },
	ParseLiteral: func(v ast.Value) any {
		return literal(v)
	},
})

func literal(v ast.Value) any {
	switch v := v.(type) {
	case *ast.StringValue:
		return v.Value
	case *ast.EnumValue:
		return v.Value
	case *ast.BooleanValue:
		return v.Value
	case *ast.IntValue:
		n, err := strconv.ParseInt(v.Value, 10, 64)
		if err != nil {
			return nil
		}
		return n
	case *ast.FloatValue:
		f, err := strconv.ParseFloat(v.Value, 64)
		if err != nil {
			return nil
		}
		return f
	case *ast.ListValue:
		out := make([]any, 0, len(v.Values))
		for _, item := range v.Values {
			out = append(out, literal(item))
		}
		return out
	case *ast.ObjectValue:
		out := make(map[string]any, len(v.Fields))
		for _, f := range v.Fields {
			out[f.Name.Value] = literal(f.Value)
		}
		return out
	}
	return nil
}

// rawInput re-encodes a JSON argument for the service layer.
func rawInput(v any) (json.RawMessage, error) {
	if s, ok := v.(string); ok {
		return json.RawMessage(s), nil
	}
	return json.Marshal(v)
}

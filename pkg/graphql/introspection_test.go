package graphql

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const introspectionQuery = `
query IntrospectionQuery {
  __schema {
    queryType { name }
    mutationType { name }
    subscriptionType { name }
    types { ...FullType }
    directives {
      name
      description
      locations
      args { ...InputValue }
    }
  }
}

fragment FullType on __Type {
  kind
  name
  description
  fields(includeDeprecated: true) {
    name
    description
    args { ...InputValue }
    type { ...TypeRef }
    isDeprecated
    deprecationReason
  }
  inputFields { ...InputValue }
  interfaces { ...TypeRef }
  enumValues(includeDeprecated: true) {
    name
    description
    isDeprecated
    deprecationReason
  }
  possibleTypes { ...TypeRef }
}

fragment InputValue on __InputValue {
  name
  description
  type { ...TypeRef }
  defaultValue
}

fragment TypeRef on __Type {
  kind
  name
  ofType {
    kind
    name
    ofType {
      kind
      name
      ofType { kind name }
    }
  }
}
`

const deprecatedSDL = `
"The root"
type Query {
  dog: Dog
  old: String @deprecated(reason: "use dog")
  greet(name: String = "world"): String
}

"A dog"
type Dog {
  image: String
  status: String!
  tags: [String!]
}
`

func TestIntrospection_Type(t *testing.T) {
	e := newTestExecutor(t)

	resp := run(t, e, `{ __type(name: "Dog") { name kind fields { name type { kind name ofType { name } } } } }`, nil)
	require.Empty(t, resp.Errors)
	assert.JSONEq(t, `{"__type":{"name":"Dog","kind":"OBJECT","fields":[
		{"name":"image","type":{"kind":"SCALAR","name":"String","ofType":null}},
		{"name":"status","type":{"kind":"NON_NULL","name":null,"ofType":{"name":"String"}}},
		{"name":"tags","type":{"kind":"LIST","name":null,"ofType":{"name":"String"}}}
	]}}`, dataJSON(t, resp))
}

func TestIntrospection_UnknownType(t *testing.T) {
	e := newTestExecutor(t)

	resp := run(t, e, `{ __type(name: "Nope") { name } }`, nil)
	require.Empty(t, resp.Errors)
	assert.JSONEq(t, `{"__type":null}`, dataJSON(t, resp))
}

func TestIntrospection_EnumAndInterface(t *testing.T) {
	e := newTestExecutor(t)

	resp := run(t, e, `{
  mood: __type(name: "Mood") { kind enumValues { name } fields { name } }
  pet: __type(name: "Pet") { kind possibleTypes { name } }
  cat: __type(name: "Cat") { interfaces { name } }
}`, nil)
	require.Empty(t, resp.Errors)
	assert.JSONEq(t, `{
  "mood":{"kind":"ENUM","enumValues":[{"name":"HAPPY"},{"name":"SLEEPY"}],"fields":null},
  "pet":{"kind":"INTERFACE","possibleTypes":[{"name":"Cat"}]},
  "cat":{"interfaces":[{"name":"Pet"}]}
}`, dataJSON(t, resp))
}

func TestIntrospection_Deprecation(t *testing.T) {
	s, err := ParseSchema(deprecatedSDL)
	require.NoError(t, err)
	e := NewExecutor(s, nil)

	resp := run(t, e, `{
  visible: __type(name: "Query") { description fields { name } }
  all: __type(name: "Query") { fields(includeDeprecated: true) { name isDeprecated deprecationReason } }
  greet: __type(name: "Query") { fields { name args { name defaultValue } } }
}`, nil)
	require.Empty(t, resp.Errors)

	var data struct {
		Visible struct {
			Description string
			Fields      []struct{ Name string }
		}
		All struct {
			Fields []struct {
				Name              string
				IsDeprecated      bool
				DeprecationReason *string
			}
		}
		Greet struct {
			Fields []struct {
				Name string
				Args []struct {
					Name         string
					DefaultValue *string
				}
			}
		}
	}
	require.NoError(t, json.Unmarshal([]byte(dataJSON(t, resp)), &data))

	assert.Equal(t, "The root", data.Visible.Description)
	assert.Len(t, data.Visible.Fields, 2)

	require.Len(t, data.All.Fields, 3)
	old := data.All.Fields[1]
	assert.Equal(t, "old", old.Name)
	assert.True(t, old.IsDeprecated)
	require.NotNil(t, old.DeprecationReason)
	assert.Equal(t, "use dog", *old.DeprecationReason)

	greet := data.Greet.Fields[1]
	require.Len(t, greet.Args, 1)
	require.NotNil(t, greet.Args[0].DefaultValue)
	assert.Equal(t, `"world"`, *greet.Args[0].DefaultValue)
}

func TestIntrospection_FullQuery(t *testing.T) {
	e := newTestExecutor(t)

	resp := e.Execute(context.Background(), &GraphQLRequest{Query: introspectionQuery, OperationName: "IntrospectionQuery"})
	require.Empty(t, resp.Errors)

	var data struct {
		Schema struct {
			QueryType    struct{ Name string }
			MutationType *struct{ Name string }
			Types        []struct {
				Kind string
				Name string
			}
			Directives []struct{ Name string }
		} `json:"__schema"`
	}
	require.NoError(t, json.Unmarshal([]byte(dataJSON(t, resp)), &data))

	assert.Equal(t, "Query", data.Schema.QueryType.Name)
	assert.Nil(t, data.Schema.MutationType)

	kinds := map[string]string{}
	for _, typ := range data.Schema.Types {
		kinds[typ.Name] = typ.Kind
	}
	assert.Equal(t, "OBJECT", kinds["Dog"])
	assert.Equal(t, "ENUM", kinds["Mood"])
	assert.Equal(t, "SCALAR", kinds["String"])
	assert.Equal(t, "OBJECT", kinds["__Schema"])

	var directives []string
	for _, d := range data.Schema.Directives {
		directives = append(directives, d.Name)
	}
	assert.Contains(t, directives, "skip")
	assert.Contains(t, directives, "include")
}

func TestIntrospection_Disabled(t *testing.T) {
	e := newTestExecutor(t, WithIntrospection(false))

	for _, q := range []string{
		`{ __schema { queryType { name } } }`,
		`{ __type(name: "Dog") { name } }`,
		`query { ...Q } fragment Q on Query { __schema { queryType { name } } }`,
	} {
		resp := run(t, e, q, nil)
		assert.Nil(t, resp.Data, q)
		require.Len(t, resp.Errors, 1, q)
		assert.Equal(t, "introspection is disabled", resp.Errors[0].Message)
	}

	resp := run(t, e, `{ hello __typename }`, nil)
	require.Empty(t, resp.Errors)
	assert.JSONEq(t, `{"hello":"hello world","__typename":"Query"}`, dataJSON(t, resp))
}

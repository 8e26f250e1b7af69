package graphql

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, h http.Handler, r *http.Request) (*httptest.ResponseRecorder, GraphQLResponse) {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	var resp GraphQLResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return w, resp
}

func TestHandler_PostJSON(t *testing.T) {
	h := NewHandler(newTestExecutor(t))

	body := `{"query":"query($n: String){ hello(name: $n) }","variables":{"n":"rex"}}`
	r := httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")

	w, resp := serve(t, h, r)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.Empty(t, resp.Errors)
	assert.Equal(t, map[string]any{"hello": "hello rex"}, resp.Data)
}

func TestHandler_PostGraphQL(t *testing.T) {
	h := NewHandler(newTestExecutor(t))

	r := httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(`{ hello }`))
	r.Header.Set("Content-Type", "application/graphql; charset=utf-8")

	w, resp := serve(t, h, r)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, map[string]any{"hello": "hello world"}, resp.Data)
}

func TestHandler_Get(t *testing.T) {
	h := NewHandler(newTestExecutor(t))

	q := url.Values{}
	q.Set("query", `query A { a: hello } query B($n: String) { b: hello(name: $n) }`)
	q.Set("operationName", "B")
	q.Set("variables", `{"n":"get"}`)
	r := httptest.NewRequest(http.MethodGet, "/graphql?"+q.Encode(), nil)

	w, resp := serve(t, h, r)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, map[string]any{"b": "hello get"}, resp.Data)
}

func TestHandler_GraphQLErrorsAreOK(t *testing.T) {
	h := NewHandler(newTestExecutor(t))

	r := httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(`{"query":"{ nope }"}`))
	w, resp := serve(t, h, r)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, resp.Data)
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, CodeValidationFailed, resp.Errors[0].Extensions["code"])
}

func TestHandler_BadRequests(t *testing.T) {
	h := NewHandler(newTestExecutor(t))

	tests := []struct {
		name    string
		req     *http.Request
		message string
	}{
		{
			name:    "empty body",
			req:     httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader("")),
			message: "empty request body",
		},
		{
			name:    "invalid json",
			req:     httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader("{")),
			message: "invalid JSON request body",
		},
		{
			name:    "json without query",
			req:     httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(`{"variables":{}}`)),
			message: "query is required",
		},
		{
			name:    "get without query",
			req:     httptest.NewRequest(http.MethodGet, "/graphql", nil),
			message: "query parameter is required",
		},
		{
			name:    "get with invalid variables",
			req:     httptest.NewRequest(http.MethodGet, "/graphql?query=%7Bhello%7D&variables=nope", nil),
			message: "invalid variables JSON",
		},
		{
			name: "body too large",
			req: httptest.NewRequest(http.MethodPost, "/graphql",
				strings.NewReader(`{"query":"`+strings.Repeat(" ", MaxRequestBodySize)+`{ hello }"}`)),
			message: "request body too large",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, resp := serve(t, h, tt.req)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			require.Len(t, resp.Errors, 1)
			assert.Equal(t, tt.message, resp.Errors[0].Message)
		})
	}
}

func TestHandler_MethodNotAllowed(t *testing.T) {
	h := NewHandler(newTestExecutor(t))

	for _, method := range []string{http.MethodPut, http.MethodDelete, http.MethodPatch} {
		w, resp := serve(t, h, httptest.NewRequest(method, "/graphql", nil))
		assert.Equal(t, http.StatusMethodNotAllowed, w.Code, method)
		assert.Equal(t, "GET, POST", w.Header().Get("Allow"))
		require.Len(t, resp.Errors, 1)
	}
}

func TestHandler_TracingExtension(t *testing.T) {
	h := NewHandler(newTestExecutor(t, WithTracing(true)))

	r := httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(`{"query":"{ hello }"}`))
	_, resp := serve(t, h, r)

	tracing, ok := resp.Extensions["tracing"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(1), tracing["version"])
	execution := tracing["execution"].(map[string]any)
	assert.Len(t, execution["resolvers"], 1)
}

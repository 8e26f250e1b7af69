package dogapitest

import (
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Message json.RawMessage `json:"message"`
	Status  string          `json:"status"`
}

func get(t *testing.T, s *Server, path string) (int, envelope) {
	t.Helper()
	resp, err := s.Client().Get(s.URL() + path)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var env envelope
	_ = json.Unmarshal(body, &env)
	return resp.StatusCode, env
}

func TestServer_Endpoints(t *testing.T) {
	s := New(t).
		WithBreed("husky", "a.jpg", "b.jpg").
		WithBreed("pug").
		WithSubBreeds("hound", "afghan", "basset").
		WithRandom("random.jpg")

	status, env := get(t, s, PathRandom)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, StatusSuccess, env.Status)
	assert.JSONEq(t, `"random.jpg"`, string(env.Message))

	status, env = get(t, s, PathBreedList)
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"husky":[],"pug":[],"hound":["afghan","basset"]}`, string(env.Message))

	_, env = get(t, s, BreedImagesPath("husky"))
	assert.JSONEq(t, `["a.jpg","b.jpg"]`, string(env.Message))

	_, env = get(t, s, BreedImagesPath("pug"))
	assert.JSONEq(t, `[]`, string(env.Message))

	status, env = get(t, s, BreedImagesPath("cat"))
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "error", env.Status)

	assert.Equal(t, []string{"hound", "husky", "pug"}, s.Breeds())
}

func TestServer_Overrides(t *testing.T) {
	s := New(t).WithBreed("husky", "a.jpg")

	s.Fail(PathBreedList, http.StatusServiceUnavailable)
	status, env := get(t, s, PathBreedList)
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, "error", env.Status)

	s.Respond(BreedImagesPath("husky"), http.StatusOK, `not json`)
	resp, err := s.Client().Get(s.URL() + BreedImagesPath("husky"))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, "not json", string(body))
}

func TestServer_RequestLog(t *testing.T) {
	s := New(t)

	req, err := http.NewRequest(http.MethodGet, s.URL()+PathRandom, nil)
	require.NoError(t, err)
	req.Header.Set("traceparent", "00-0af7651916cd43dd8448eb211c80319c-b7ad6b7169203331-01")
	resp, err := s.Client().Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	resp, err = s.Client().Post(s.URL()+PathRandom, "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)

	s.AssertCalledTimes(t, PathRandom, 2)
	s.AssertNotCalled(t, PathBreedList)

	reqs := s.Requests()
	require.Len(t, reqs, 2)
	assert.Equal(t, http.MethodGet, reqs[0].Method)
	assert.Equal(t, PathRandom, reqs[0].Path)
	assert.NotEmpty(t, reqs[0].Header.Get("traceparent"))

	s.Reset()
	assert.Empty(t, s.Requests())
	assert.Zero(t, s.CallCount(PathRandom))
}

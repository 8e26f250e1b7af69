package dogql

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/getmockd/dogql/pkg/dogapi"
	"github.com/getmockd/dogql/pkg/dogapi/dogapitest"
	"github.com/getmockd/dogql/pkg/graphql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var huskyImages = []string{
	"https://images.dog.ceo/breeds/husky/n02110185_1469.jpg",
	"https://images.dog.ceo/breeds/husky/n02110185_10047.jpg",
	"https://images.dog.ceo/breeds/husky/n02110185_10116.jpg",
	"https://images.dog.ceo/breeds/husky/n02110185_10171.jpg",
}

func newUpstream(t *testing.T) *dogapitest.Server {
	t.Helper()
	return dogapitest.New(t).
		WithBreed("husky", huskyImages...).
		WithSubBreeds("hound", "afghan").
		WithBreed("pug")
}

type harness struct {
	exec   *graphql.Executor
	client *dogapi.Client
}

func newHarness(t *testing.T, u *dogapitest.Server, husky bool, opts ...dogapi.Option) *harness {
	t.Helper()
	c, err := dogapi.New(u.URL(), opts...)
	require.NoError(t, err)
	exec, err := NewExecutor(husky)
	require.NoError(t, err)
	return &harness{exec: exec, client: c}
}

func (h *harness) query(t *testing.T, query string, vars map[string]any) (map[string]any, []graphql.GraphQLError) {
	t.Helper()
	ctx := dogapi.NewContext(context.Background(), h.client)
	resp := h.exec.Execute(ctx, &graphql.GraphQLRequest{Query: query, Variables: vars})

	b, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	var data map[string]any
	require.NoError(t, json.Unmarshal(b, &data))
	return data, resp.Errors
}

func TestBreed_ValidBreedReturnsImageFromList(t *testing.T) {
	h := newHarness(t, newUpstream(t), true)

	for i := 0; i < 10; i++ {
		data, errs := h.query(t, `{ breed(name: "husky") { image status } }`, nil)
		require.Empty(t, errs)
		dog := data["breed"].(map[string]any)
		assert.Contains(t, huskyImages, dog["image"])
		assert.Equal(t, "success", dog["status"])
	}
}

func TestBreed_UnknownBreed(t *testing.T) {
	u := newUpstream(t)
	h := newHarness(t, u, true)

	data, errs := h.query(t, `{ breed(name: "not-a-real-breed") { image status } }`, nil)
	require.Empty(t, errs)
	assert.Equal(t, map[string]any{"image": nil, "status": "error: unknown breed"}, data["breed"])

	u.AssertCalledTimes(t, dogapitest.PathBreedList, 1)
	u.AssertNotCalled(t, dogapitest.BreedImagesPath("not-a-real-breed"))
}

func TestBreed_WhitespaceIsStripped(t *testing.T) {
	pick := func(n int) int { return 2 }
	u := newUpstream(t)
	h := newHarness(t, u, true, dogapi.WithRandom(pick))

	spaced, errs := h.query(t, `query($n: String!) { breed(name: $n) { image status } }`, map[string]any{"n": "hu sky"})
	require.Empty(t, errs)
	plain, errs := h.query(t, `{ breed(name: "husky") { image status } }`, nil)
	require.Empty(t, errs)

	assert.Equal(t, plain, spaced)
	assert.Equal(t, huskyImages[2], spaced["breed"].(map[string]any)["image"])
	u.AssertCalledTimes(t, dogapitest.BreedImagesPath("husky"), 2)
}

func TestRandomDog(t *testing.T) {
	h := newHarness(t, newUpstream(t), true)

	data, errs := h.query(t, `{ randomDog { image status } }`, nil)
	require.Empty(t, errs)
	dog := data["randomDog"].(map[string]any)
	assert.NotEmpty(t, dog["status"])
	assert.IsType(t, "", dog["image"])
}

func TestHuskyCrazy(t *testing.T) {
	h := newHarness(t, newUpstream(t), true)

	data, errs := h.query(t, `{ huskyCrazy { images status } }`, nil)
	require.Empty(t, errs)
	list := data["huskyCrazy"].(map[string]any)
	assert.Len(t, list["images"], len(huskyImages))
	assert.Equal(t, "success", list["status"])
}

func TestBreed_EmptyImageListIsNull(t *testing.T) {
	h := newHarness(t, newUpstream(t), true)

	data, errs := h.query(t, `{ breed(name: "pug") { image status } }`, nil)
	require.Empty(t, errs)
	assert.Contains(t, data, "breed")
	assert.Nil(t, data["breed"])
}

func TestBreed_BreedListUnavailable(t *testing.T) {
	u := newUpstream(t).Fail(dogapitest.PathBreedList, http.StatusServiceUnavailable)
	h := newHarness(t, u, true)

	data, errs := h.query(t, `{ breed(name: "husky") { image } }`, nil)
	assert.Nil(t, data["breed"])
	require.Len(t, errs, 1)
	assert.Equal(t, []any{"breed"}, errs[0].Path)
	assert.Equal(t, CodeBreedListUnavailable, errs[0].Extensions["code"])
	assert.Equal(t, http.StatusServiceUnavailable, errs[0].Extensions["upstreamStatus"])
}

func TestRandomDog_UpstreamFailure(t *testing.T) {
	u := newUpstream(t).Respond(dogapitest.PathRandom, http.StatusOK, `not json`)
	h := newHarness(t, u, true)

	data, errs := h.query(t, `{ randomDog { image } huskyCrazy { status } }`, nil)
	assert.Nil(t, data["randomDog"])
	assert.NotNil(t, data["huskyCrazy"])
	require.Len(t, errs, 1)
	assert.Equal(t, CodeUpstreamError, errs[0].Extensions["code"])
}

func TestResolvers_RequireClient(t *testing.T) {
	exec, err := NewExecutor(true)
	require.NoError(t, err)

	resp := exec.Execute(context.Background(), &graphql.GraphQLRequest{Query: `{ randomDog { status } }`})
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, ErrNoClient.Error(), resp.Errors[0].Message)
	assert.Equal(t, CodeDataSourceUnavailable, resp.Errors[0].Extensions["code"])
}

func TestSchema_Variants(t *testing.T) {
	full, err := Schema(true)
	require.NoError(t, err)
	assert.Equal(t, []string{"breed", "huskyCrazy", "randomDog"}, full.ListQueries())
	assert.NotNil(t, full.GetType("HuskyList"))

	small, err := Schema(false)
	require.NoError(t, err)
	assert.Equal(t, []string{"breed", "randomDog"}, small.ListQueries())
	assert.Nil(t, small.GetType("HuskyList"))

	exec, err := NewExecutor(false)
	require.NoError(t, err)
	resp := exec.Execute(context.Background(), &graphql.GraphQLRequest{Query: `{ huskyCrazy { status } }`})
	assert.Nil(t, resp.Data)
	assert.Equal(t, graphql.CodeValidationFailed, resp.Errors[0].Extensions["code"])
}

func TestStripSpace(t *testing.T) {
	tests := map[string]string{
		"husky":          "husky",
		"hu sky":         "husky",
		" \thu\nsk y \r": "husky",
		"bull\u00a0dog":  "bulldog",
		"":               "",
	}
	for in, want := range tests {
		assert.Equal(t, want, StripSpace(in), "%q", in)
	}
}

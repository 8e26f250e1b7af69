// Package dogapitest provides a fake dog.ceo API for tests.
//
// The fake serves the four endpoints dogql calls, under /api/, from
// breeds and images configured with a fluent API. Every request is logged
// so tests can assert which upstream calls a query made.
//
// # Basic Usage
//
//	func TestBreed(t *testing.T) {
//	    api := dogapitest.New(t).
//	        WithBreed("husky", "https://images.dog.ceo/breeds/husky/1.jpg").
//	        WithBreed("pug") // listed, but no images
//
//	    client, _ := dogapi.New(api.URL())
//	    img, err := client.RandomDogByBreed(ctx, "husky")
//	    ...
//	    api.AssertCalledTimes(t, dogapitest.PathBreedList, 1)
//	}
//
// # Failures
//
// Fail and Respond replace an endpoint's response, which covers upstream
// outages and malformed payloads:
//
//	api.Fail(dogapitest.PathBreedList, http.StatusServiceUnavailable)
//	api.Respond(dogapitest.PathRandom, http.StatusOK, `not json`)
//
// The server is closed automatically when the test completes.
package dogapitest

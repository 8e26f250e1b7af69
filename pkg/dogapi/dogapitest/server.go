package dogapitest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
)

// Endpoint paths relative to the API root.
const (
	PathRandom    = "breeds/image/random"
	PathBreedList = "breeds/list/all"
)

// StatusSuccess is the status dog.ceo reports on every successful call.
const StatusSuccess = "success"

// DefaultRandomImage is served by PathRandom until WithRandom is called.
const DefaultRandomImage = "https://images.dog.ceo/breeds/hound-afghan/n02088094_1003.jpg"

const notFoundBody = `{"status":"error","message":"Breed not found (main breed does not exist)","code":404}`

// BreedImagesPath returns the images endpoint path for breed.
func BreedImagesPath(breed string) string {
	return "breed/" + breed + "/images"
}

// RequestLog is one request received by the fake.
type RequestLog struct {
	Method string
	// Path is relative to the API root, e.g. "breeds/list/all".
	Path   string
	Header http.Header
}

type response struct {
	status int
	body   string
}

// Server is a fake dog.ceo API backed by httptest.
type Server struct {
	srv *httptest.Server

	mu        sync.Mutex
	breeds    map[string][]string
	images    map[string][]string
	random    string
	overrides map[string]response
	requests  []RequestLog
}

// New starts an empty fake. It is closed when the test completes.
func New(t testing.TB) *Server {
	t.Helper()
	s := &Server{
		breeds:    make(map[string][]string),
		images:    make(map[string][]string),
		random:    DefaultRandomImage,
		overrides: make(map[string]response),
	}
	s.srv = httptest.NewServer(s)
	t.Cleanup(s.srv.Close)
	return s
}

// URL returns the API root, ending in /api/.
func (s *Server) URL() string {
	return s.srv.URL + "/api/"
}

// Client returns an http.Client for the fake.
func (s *Server) Client() *http.Client {
	return s.srv.Client()
}

// WithBreed lists breed and serves images from its images endpoint. With no
// images the endpoint returns an empty list.
func (s *Server) WithBreed(breed string, images ...string) *Server {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.breeds[breed] = []string{}
	s.images[breed] = append([]string{}, images...)
	return s
}

// WithSubBreeds sets the sub-breeds reported for breed in the breed list.
func (s *Server) WithSubBreeds(breed string, subBreeds ...string) *Server {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.breeds[breed] = append([]string{}, subBreeds...)
	if _, ok := s.images[breed]; !ok {
		s.images[breed] = []string{}
	}
	return s
}

// WithRandom sets the image served by PathRandom.
func (s *Server) WithRandom(image string) *Server {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.random = image
	return s
}

// Fail makes path answer with status and a dog.ceo style error body.
func (s *Server) Fail(path string, status int) *Server {
	body, _ := json.Marshal(map[string]any{
		"status":  "error",
		"message": http.StatusText(status),
		"code":    status,
	})
	return s.Respond(path, status, string(body))
}

// Respond makes path answer with status and a raw body.
func (s *Server) Respond(path string, status int, body string) *Server {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overrides[path] = response{status: status, body: body}
	return s
}

// Reset clears the request log. Configured breeds and overrides are kept.
func (s *Server) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = nil
}

// Requests returns a copy of every request received so far.
func (s *Server) Requests() []RequestLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]RequestLog(nil), s.requests...)
}

// CallCount returns how many requests were made to path.
func (s *Server) CallCount(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, r := range s.requests {
		if r.Path == path {
			n++
		}
	}
	return n
}

// AssertCalled asserts that path was requested at least once.
func (s *Server) AssertCalled(t testing.TB, path string) {
	t.Helper()
	if s.CallCount(path) == 0 {
		t.Errorf("expected %s to be called, but it was not called", path)
	}
}

// AssertCalledTimes asserts that path was requested exactly times times.
func (s *Server) AssertCalledTimes(t testing.TB, path string, times int) {
	t.Helper()
	if count := s.CallCount(path); count != times {
		t.Errorf("expected %s to be called %d times, but was called %d times", path, times, count)
	}
}

// AssertNotCalled asserts that path was never requested.
func (s *Server) AssertNotCalled(t testing.TB, path string) {
	t.Helper()
	if count := s.CallCount(path); count > 0 {
		t.Errorf("expected %s to not be called, but it was called %d times", path, count)
	}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/")
	status, body := s.respond(r, path)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

// respond logs the request and builds the response under the lock.
func (s *Server) respond(r *http.Request, path string) (int, string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.requests = append(s.requests, RequestLog{Method: r.Method, Path: path, Header: r.Header.Clone()})

	if r.Method != http.MethodGet {
		return http.StatusMethodNotAllowed, `{"status":"error","message":"method not allowed"}`
	}
	if o, ok := s.overrides[path]; ok {
		return o.status, o.body
	}

	switch {
	case path == PathRandom:
		return success(s.random)
	case path == PathBreedList:
		return success(s.breeds)
	case strings.HasPrefix(path, "breed/") && strings.HasSuffix(path, "/images"):
		breed := strings.TrimSuffix(strings.TrimPrefix(path, "breed/"), "/images")
		if images, ok := s.images[breed]; ok {
			return success(images)
		}
	}
	return http.StatusNotFound, notFoundBody
}

// Breeds returns the configured breed names, sorted.
func (s *Server) Breeds() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.breeds))
	for name := range s.breeds {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func success(message any) (int, string) {
	b, err := json.Marshal(map[string]any{"message": message, "status": StatusSuccess})
	if err != nil {
		return http.StatusInternalServerError, `{"status":"error"}`
	}
	return http.StatusOK, string(b)
}

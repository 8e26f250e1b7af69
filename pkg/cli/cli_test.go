package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/getmockd/dogql/pkg/dogapi/dogapitest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var huskyImages = []string{
	"https://images.dog.ceo/breeds/husky/n02110185_1469.jpg",
	"https://images.dog.ceo/breeds/husky/n02110185_10047.jpg",
}

const randomImage = "https://images.dog.ceo/breeds/pug/1.jpg"

func newFakeDogAPI(t *testing.T) *dogapitest.Server {
	t.Helper()
	return dogapitest.New(t).
		WithBreed("husky", huskyImages...).
		WithBreed("pug").
		WithRandom(randomImage)
}

// isolateEnv clears the environment variables config.Load reads.
func isolateEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{"PORT", "HOST", "DOGQL_UPSTREAM_URL", "DOGQL_TRACING", "DOGQL_INTROSPECTION", "LOG_LEVEL", "LOG_FORMAT"} {
		t.Setenv(name, "")
	}
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

type result struct {
	stdout string
	stderr string
	err    error
}

func runCLI(t *testing.T, stdin io.Reader, args ...string) result {
	t.Helper()
	cmd := NewRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	if stdin != nil {
		cmd.SetIn(stdin)
	}
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return result{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

// syncBuffer is a bytes.Buffer safe for concurrent writers and readers.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestRoot_Help(t *testing.T) {
	isolateEnv(t)

	res := runCLI(t, nil, "--help")
	require.NoError(t, res.err)
	for _, sub := range []string{"serve", "query", "schema", "init", "version"} {
		assert.Contains(t, res.stdout, sub)
	}
	assert.Contains(t, res.stdout, "--config")
}

func TestRoot_UnknownCommand(t *testing.T) {
	isolateEnv(t)

	res := runCLI(t, nil, "bark")
	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), "bark")
}

func TestSchemaCommand(t *testing.T) {
	isolateEnv(t)

	res := runCLI(t, nil, "schema")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "randomDog: Dog")
	assert.Contains(t, res.stdout, "breed(name: String!): Dog")
	assert.Contains(t, res.stdout, "huskyCrazy: HuskyList")

	res = runCLI(t, nil, "schema", "--no-husky")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "randomDog: Dog")
	assert.NotContains(t, res.stdout, "huskyCrazy")
	assert.NotContains(t, res.stdout, "HuskyList")
}

func TestVersionCommand(t *testing.T) {
	isolateEnv(t)

	res := runCLI(t, nil, "version")
	require.NoError(t, res.err)
	assert.True(t, strings.HasPrefix(res.stdout, "dogql "))

	res = runCLI(t, nil, "version", "--json")
	require.NoError(t, res.err)
	var out VersionOutput
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &out))
	assert.NotEmpty(t, out.Version)
	assert.NotEmpty(t, out.Commit)
	assert.NotEmpty(t, out.Go)
	assert.NotEmpty(t, out.OS)
	assert.NotEmpty(t, out.Arch)
}

package templates

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/getmockd/dogql/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplatesLoadAndValidate(t *testing.T) {
	for _, id := range List() {
		t.Run(id, func(t *testing.T) {
			data, err := Get(id)
			require.NoError(t, err)

			path := filepath.Join(t.TempDir(), "dogql.yaml")
			require.NoError(t, os.WriteFile(path, data, 0o644))

			cfg := config.Default()
			require.NoError(t, config.LoadFile(cfg, path))
			assert.NoError(t, cfg.Validate())
		})
	}
}

func TestMinimalTemplateDropsHusky(t *testing.T) {
	data, err := Get("MINIMAL")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "dogql.yaml")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	cfg := config.Default()
	require.NoError(t, config.LoadFile(cfg, path))
	assert.False(t, cfg.GraphQL.Husky)
	assert.False(t, cfg.GraphQL.Tracing)
	assert.False(t, cfg.GraphQL.Introspection)
}

func TestGetTemplate(t *testing.T) {
	tmpl, err := GetTemplate("development")
	require.NoError(t, err)
	assert.Equal(t, "development.yaml", tmpl.Filename)

	_, err = GetTemplate("nope")
	assert.Error(t, err)
	_, err = Get("nope")
	assert.Error(t, err)
}

func TestFormatList(t *testing.T) {
	out := FormatList()
	assert.Contains(t, out, "Available templates:")
	for _, tmpl := range AvailableTemplates {
		assert.Contains(t, out, tmpl.ID)
		assert.Contains(t, out, tmpl.Description)
	}
	assert.Contains(t, out, "dogql init --template <name>")
}

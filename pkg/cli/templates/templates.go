// Package templates provides embedded starter configuration files for dogql init.
package templates

import (
	"embed"
	"fmt"
	"sort"
	"strings"
)

//go:embed *.yaml
var templateFS embed.FS

// Template describes a starter configuration.
type Template struct {
	ID          string
	Description string
	Filename    string
}

// AvailableTemplates returns all starter configurations.
var AvailableTemplates = []Template{
	{
		ID:          "default",
		Description: "Defaults spelled out: port 4000, dog.ceo upstream, tracing on",
		Filename:    "default.yaml",
	},
	{
		ID:          "development",
		Description: "Debug JSON logs and stdout span export",
		Filename:    "development.yaml",
	},
	{
		ID:          "minimal",
		Description: "randomDog and breed only; no tracing, no introspection",
		Filename:    "minimal.yaml",
	},
}

// Get returns the template content by ID.
func Get(id string) ([]byte, error) {
	t, err := GetTemplate(id)
	if err != nil {
		return nil, err
	}
	return templateFS.ReadFile(t.Filename)
}

// GetTemplate returns the Template metadata by ID.
func GetTemplate(id string) (*Template, error) {
	for i := range AvailableTemplates {
		if strings.EqualFold(AvailableTemplates[i].ID, id) {
			return &AvailableTemplates[i], nil
		}
	}
	return nil, fmt.Errorf("unknown template: %s", id)
}

// List returns all template IDs sorted alphabetically.
func List() []string {
	ids := make([]string, len(AvailableTemplates))
	for i, t := range AvailableTemplates {
		ids[i] = t.ID
	}
	sort.Strings(ids)
	return ids
}

// FormatList returns a formatted string listing all available templates.
func FormatList() string {
	var sb strings.Builder
	sb.WriteString("Available templates:\n\n")

	maxLen := 0
	for _, t := range AvailableTemplates {
		maxLen = max(maxLen, len(t.ID))
	}
	for _, t := range AvailableTemplates {
		fmt.Fprintf(&sb, "  %-*s  %s\n", maxLen, t.ID, t.Description)
	}

	sb.WriteString("\nUsage:\n")
	sb.WriteString("  dogql init --template <name>\n")
	sb.WriteString("  dogql init -t development -o dev.yaml\n")
	return sb.String()
}

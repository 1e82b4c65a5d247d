package billing

import (
	"strings"
	"text/template"

	"meilenstein-backend/models"
)

// descriptionContext is what a milestone description template may reference,
// e.g. {{.Record.Project.DisplayName}}.
type descriptionContext struct {
	Record *models.Milestone
}

// Describe renders the milestone's description template for an invoice line.
// An empty or unrenderable description falls back to the milestone number.
func Describe(m *models.Milestone) string {
	if strings.TrimSpace(m.Description) == "" {
		return m.DisplayName()
	}
	tmpl, err := template.New("description").Parse(m.Description)
	if err != nil {
		return m.DisplayName()
	}
	var out strings.Builder
	if err := tmpl.Execute(&out, descriptionContext{Record: m}); err != nil {
		return m.DisplayName()
	}
	return out.String()
}

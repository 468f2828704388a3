// Package mapper derives the ticket's target field set from an issue and
// the resolved sync settings.
package mapper

import (
	"fmt"
	"strings"

	"github.com/issuebridge/issuebridge/internal/logging"
	"github.com/issuebridge/issuebridge/pkg/models"
)

// descriptionTemplate embeds the issue URL, which doubles as the marker
// the locator searches for. Changing the first line breaks correlation
// with every previously created ticket.
const descriptionTemplate = `
This issue was created from GitHub Issue %s
Issue was submitted by: %s

PLEASE KEEP ALL THE CONVERSATION ON GITHUB

%s
`

// defaultIssueType is used when no issue label is present in the label mapping.
const defaultIssueType = "Bug"

// ComponentLister is the read-only lookup of a project's valid component
// names, satisfied by the ticketing client.
type ComponentLister interface {
	ProjectComponents(projectKey string) ([]string, error)
}

// MapFields builds the desired ticket field set for one reconciliation
// pass. renderedBody is the issue body already converted to ticket markup
// (empty when description sync is off). The component lookup is only
// consulted when the settings request components; configured names the
// project does not know are dropped silently.
func MapFields(issue models.Issue, cfg *models.Settings, renderedBody string, components ComponentLister) (models.TicketFields, error) {
	fields := models.TicketFields{
		ProjectKey:  cfg.JiraProjectKey,
		Summary:     issue.Title,
		Description: fmt.Sprintf(descriptionTemplate, issue.HTMLURL, issue.AuthorLogin, renderedBody),
		IssueType:   resolveIssueType(issue.Labels, cfg.LabelMapping),
		ParentKey:   cfg.EpicKey,
	}

	if len(cfg.Components) > 0 {
		valid, err := components.ProjectComponents(cfg.JiraProjectKey)
		if err != nil {
			return models.TicketFields{}, fmt.Errorf("failed to list project components: %w", err)
		}
		fields.Components = intersectComponents(cfg.Components, valid)
		if len(fields.Components) < len(cfg.Components) {
			logging.Debug("dropped unknown components",
				"configured", len(cfg.Components),
				"kept", len(fields.Components))
		}
	}

	return fields, nil
}

// resolveIssueType scans the issue labels in their given order and returns
// the mapped type of the first label present in the mapping. Mapping keys
// are expected in lowercase; labels are folded before lookup.
func resolveIssueType(labels []string, mapping map[string]string) string {
	for _, label := range labels {
		if mapped, ok := mapping[strings.ToLower(label)]; ok {
			return mapped
		}
	}
	return defaultIssueType
}

// intersectComponents keeps the desired names the project actually has,
// preserving the configured order.
func intersectComponents(desired, valid []string) []string {
	validSet := make(map[string]struct{}, len(valid))
	for _, name := range valid {
		validSet[name] = struct{}{}
	}

	kept := make([]string, 0, len(desired))
	for _, name := range desired {
		if _, ok := validSet[name]; ok {
			kept = append(kept, name)
		}
	}
	return kept
}

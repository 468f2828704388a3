package mapper

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/issuebridge/issuebridge/pkg/models"
)

type fakeComponentLister struct {
	components []string
	err        error
	calls      int
}

func (f *fakeComponentLister) ProjectComponents(projectKey string) ([]string, error) {
	f.calls++
	return f.components, f.err
}

func testIssue() models.Issue {
	return models.Issue{
		Number:      42,
		Title:       "Widget crashes on start",
		Body:        "it crashes",
		HTMLURL:     "https://github.com/acme/widgets/issues/42",
		AuthorLogin: "contributor",
		Labels:      []string{"feature", "bug"},
	}
}

func TestMapFieldsDescription(t *testing.T) {
	cfg := &models.Settings{JiraProjectKey: "PROJ"}

	fields, err := MapFields(testIssue(), cfg, "rendered body", nil)
	require.NoError(t, err)

	assert.Equal(t, "PROJ", fields.ProjectKey)
	assert.Equal(t, "Widget crashes on start", fields.Summary)
	assert.Contains(t, fields.Description, "https://github.com/acme/widgets/issues/42")
	assert.Contains(t, fields.Description, "Issue was submitted by: contributor")
	assert.Contains(t, fields.Description, "PLEASE KEEP ALL THE CONVERSATION ON GITHUB")
	assert.Contains(t, fields.Description, "rendered body")
}

func TestMapFieldsEmptyBody(t *testing.T) {
	// description sync off: the template still carries the marker
	cfg := &models.Settings{JiraProjectKey: "PROJ"}

	fields, err := MapFields(testIssue(), cfg, "", nil)
	require.NoError(t, err)
	assert.Contains(t, fields.Description, "https://github.com/acme/widgets/issues/42")
	assert.NotContains(t, fields.Description, "it crashes")
}

func TestResolveIssueType(t *testing.T) {
	tests := []struct {
		name     string
		labels   []string
		mapping  map[string]string
		expected string
	}{
		{
			name:     "No mapping defaults to Bug",
			labels:   []string{"feature"},
			mapping:  nil,
			expected: "Bug",
		},
		{
			name:     "No matching label defaults to Bug",
			labels:   []string{"docs"},
			mapping:  map[string]string{"bug": "Bug"},
			expected: "Bug",
		},
		{
			name:     "First label in label order wins",
			labels:   []string{"feature", "bug"},
			mapping:  map[string]string{"bug": "Bug", "feature": "Story"},
			expected: "Story",
		},
		{
			name:     "Label case is folded before lookup",
			labels:   []string{"Feature"},
			mapping:  map[string]string{"feature": "Story"},
			expected: "Story",
		},
		{
			name:     "Unmapped labels are skipped, not defaulted",
			labels:   []string{"docs", "bug"},
			mapping:  map[string]string{"bug": "Bug"},
			expected: "Bug",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			issue := testIssue()
			issue.Labels = tt.labels
			cfg := &models.Settings{
				JiraProjectKey: "PROJ",
				LabelMapping:   tt.mapping,
			}

			fields, err := MapFields(issue, cfg, "", nil)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, fields.IssueType)
		})
	}
}

func TestMapFieldsComponents(t *testing.T) {
	t.Run("Unknown names dropped silently", func(t *testing.T) {
		lister := &fakeComponentLister{components: []string{"Kernel", "Userland"}}
		cfg := &models.Settings{
			JiraProjectKey: "PROJ",
			Components:     []string{"Userland", "Imaginary", "Kernel"},
		}

		fields, err := MapFields(testIssue(), cfg, "", lister)
		require.NoError(t, err)
		assert.Equal(t, []string{"Userland", "Kernel"}, fields.Components)
		assert.Equal(t, 1, lister.calls)
	})

	t.Run("No configured components skips the lookup", func(t *testing.T) {
		lister := &fakeComponentLister{components: []string{"Kernel"}}
		cfg := &models.Settings{JiraProjectKey: "PROJ"}

		fields, err := MapFields(testIssue(), cfg, "", lister)
		require.NoError(t, err)
		assert.Empty(t, fields.Components)
		assert.Zero(t, lister.calls)
	})

	t.Run("Lookup failure propagates", func(t *testing.T) {
		lister := &fakeComponentLister{err: errors.New("boom")}
		cfg := &models.Settings{
			JiraProjectKey: "PROJ",
			Components:     []string{"Kernel"},
		}

		_, err := MapFields(testIssue(), cfg, "", lister)
		assert.Error(t, err)
	})
}

func TestMapFieldsParent(t *testing.T) {
	cfg := &models.Settings{JiraProjectKey: "PROJ", EpicKey: "PROJ-100"}

	fields, err := MapFields(testIssue(), cfg, "", nil)
	require.NoError(t, err)
	assert.Equal(t, "PROJ-100", fields.ParentKey)

	cfg.EpicKey = ""
	fields, err = MapFields(testIssue(), cfg, "", nil)
	require.NoError(t, err)
	assert.Empty(t, fields.ParentKey)
}

package jira

import (
	"testing"

	jira "github.com/andygrunwald/go-jira"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/issuebridge/issuebridge/internal/config"
	"github.com/issuebridge/issuebridge/pkg/models"
)

func TestNewClientValidation(t *testing.T) {
	testCases := []struct {
		name          string
		cfg           config.JiraConfig
		wantError     bool
		errorContains string
	}{
		{
			name: "All credentials provided",
			cfg: config.JiraConfig{
				URL:      "https://example.atlassian.net",
				Username: "test@example.com",
				Token:    "test-token",
			},
			wantError: false,
		},
		{
			name: "Missing URL",
			cfg: config.JiraConfig{
				Username: "test@example.com",
				Token:    "test-token",
			},
			wantError:     true,
			errorContains: "JIRA_URL",
		},
		{
			name: "Missing username",
			cfg: config.JiraConfig{
				URL:   "https://example.atlassian.net",
				Token: "test-token",
			},
			wantError:     true,
			errorContains: "JIRA_USERNAME",
		},
		{
			name: "Missing token",
			cfg: config.JiraConfig{
				URL:      "https://example.atlassian.net",
				Username: "test@example.com",
			},
			wantError:     true,
			errorContains: "JIRA_TOKEN",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			client, err := NewClient(tc.cfg)
			if tc.wantError {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.errorContains)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, client)
			assert.Equal(t, "https://example.atlassian.net/browse/PROJ-1", client.permalink("PROJ-1"))
		})
	}
}

func TestNilClientGuards(t *testing.T) {
	client := &Client{}

	_, err := client.SearchTickets("PROJ", "marker")
	assert.ErrorContains(t, err, "not initialized")

	_, err = client.CreateTicket(models.TicketFields{})
	assert.ErrorContains(t, err, "not initialized")

	assert.ErrorContains(t, client.TransitionTicket("PROJ-1", "Done"), "not initialized")
	assert.ErrorContains(t, client.UpdateTicket("PROJ-1", models.TicketFields{}), "not initialized")
	assert.ErrorContains(t, client.AddTicketComment("PROJ-1", "hi"), "not initialized")

	_, err = client.ProjectComponents("PROJ")
	assert.ErrorContains(t, err, "not initialized")
}

func TestToIssueFields(t *testing.T) {
	client := &Client{baseURL: "https://jira.example.com"}

	t.Run("Minimal fields", func(t *testing.T) {
		fields := client.toIssueFields(models.TicketFields{
			ProjectKey:  "PROJ",
			Summary:     "Widget crashes",
			Description: "description",
			IssueType:   "Bug",
		})

		assert.Equal(t, "PROJ", fields.Project.Key)
		assert.Equal(t, "Widget crashes", fields.Summary)
		assert.Equal(t, "Bug", fields.Type.Name)
		assert.Nil(t, fields.Parent)
		assert.Nil(t, fields.Components)
	})

	t.Run("Parent and components", func(t *testing.T) {
		fields := client.toIssueFields(models.TicketFields{
			ProjectKey: "PROJ",
			IssueType:  "Story",
			ParentKey:  "PROJ-100",
			Components: []string{"Kernel", "Userland"},
		})

		require.NotNil(t, fields.Parent)
		assert.Equal(t, "PROJ-100", fields.Parent.Key)
		require.Len(t, fields.Components, 2)
		assert.Equal(t, "Kernel", fields.Components[0].Name)
		assert.Equal(t, "Userland", fields.Components[1].Name)
	})
}

func TestToTicket(t *testing.T) {
	client := &Client{baseURL: "https://jira.example.com"}

	issue := &jira.Issue{
		Key: "PROJ-7",
		Fields: &jira.IssueFields{
			Status: &jira.Status{Name: "To Do"},
			Components: []*jira.Component{
				{Name: "Kernel"},
				{Name: "Userland"},
			},
		},
	}

	ticket := client.toTicket(issue)
	assert.Equal(t, "PROJ-7", ticket.Key)
	assert.Equal(t, "https://jira.example.com/browse/PROJ-7", ticket.Permalink)
	assert.Equal(t, "To Do", ticket.Status)
	assert.Equal(t, []string{"Kernel", "Userland"}, ticket.Components)
}

func TestToTicketNoFields(t *testing.T) {
	client := &Client{baseURL: "https://jira.example.com"}

	ticket := client.toTicket(&jira.Issue{Key: "PROJ-8"})
	assert.Equal(t, "PROJ-8", ticket.Key)
	assert.Empty(t, ticket.Status)
	assert.Empty(t, ticket.Components)
}

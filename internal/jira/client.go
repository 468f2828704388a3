// Package jira provides functionality for interacting with the JIRA API.
package jira

import (
	"fmt"
	"strings"

	jira "github.com/andygrunwald/go-jira"

	"github.com/issuebridge/issuebridge/internal/config"
	"github.com/issuebridge/issuebridge/internal/logging"
	"github.com/issuebridge/issuebridge/pkg/models"
)

// Client handles interactions with the JIRA API. It satisfies the
// reconciler's searcher/store interfaces and the mapper's component lookup.
type Client struct {
	client  *jira.Client
	baseURL string
}

// NewClient creates a new JIRA client from the provided configuration.
func NewClient(cfg config.JiraConfig) (*Client, error) {
	var missing []string
	if cfg.URL == "" {
		missing = append(missing, "JIRA_URL")
	}
	if cfg.Username == "" {
		missing = append(missing, "JIRA_USERNAME")
	}
	if cfg.Token == "" {
		missing = append(missing, "JIRA_TOKEN")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing jira configuration: %v", missing)
	}

	tp := jira.BasicAuthTransport{
		Username: cfg.Username,
		Password: cfg.Token,
	}

	client, err := jira.NewClient(tp.Client(), cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to create jira client: %w", err)
	}

	logging.Info("jira client configured",
		"url", cfg.URL,
		"username", cfg.Username,
		"token", logging.MaskSensitive(cfg.Token))

	return &Client{
		client:  client,
		baseURL: strings.TrimRight(cfg.URL, "/"),
	}, nil
}

// SearchTickets returns the tickets in the project whose description
// contains the marker substring, in the order the API returns them.
func (c *Client) SearchTickets(projectKey, marker string) ([]models.Ticket, error) {
	if c.client == nil {
		return nil, fmt.Errorf("jira client not initialized")
	}

	jql := fmt.Sprintf("project = %s AND description ~ %q", projectKey, marker)
	issues, resp, err := c.client.Issue.Search(jql, &jira.SearchOptions{MaxResults: 50})
	if err != nil {
		return nil, fmt.Errorf("failed to search jira issues: %v%s", err, statusSuffix(resp))
	}

	tickets := make([]models.Ticket, 0, len(issues))
	for _, issue := range issues {
		tickets = append(tickets, c.toTicket(&issue))
	}

	logging.Debug("searched tickets by marker",
		"project", projectKey,
		"matches", len(tickets))
	return tickets, nil
}

// CreateTicket creates a ticket with the mapped fields and returns it.
func (c *Client) CreateTicket(fields models.TicketFields) (models.Ticket, error) {
	if c.client == nil {
		return models.Ticket{}, fmt.Errorf("jira client not initialized")
	}

	created, resp, err := c.client.Issue.Create(&jira.Issue{Fields: c.toIssueFields(fields)})
	if err != nil {
		return models.Ticket{}, fmt.Errorf("failed to create jira ticket: %v%s", err, statusSuffix(resp))
	}

	return models.Ticket{
		Key:        created.Key,
		Permalink:  c.permalink(created.Key),
		Components: fields.Components,
	}, nil
}

// TransitionTicket moves a ticket to the workflow status with the given
// name. The transition whose target status matches is resolved first; a
// status unreachable from the ticket's current state is an error.
func (c *Client) TransitionTicket(key, status string) error {
	if c.client == nil {
		return fmt.Errorf("jira client not initialized")
	}

	transitions, resp, err := c.client.Issue.GetTransitions(key)
	if err != nil {
		return fmt.Errorf("failed to list transitions for %s: %v%s", key, err, statusSuffix(resp))
	}

	for _, transition := range transitions {
		if strings.EqualFold(transition.To.Name, status) || strings.EqualFold(transition.Name, status) {
			resp, err := c.client.Issue.DoTransition(key, transition.ID)
			if err != nil {
				return fmt.Errorf("failed to transition %s to %q: %v%s", key, status, err, statusSuffix(resp))
			}
			return nil
		}
	}

	return fmt.Errorf("no transition to status %q available for %s", status, key)
}

// UpdateTicket overwrites the ticket's mapped fields. Component union is
// the reconciler's responsibility; this sends exactly what it is given.
func (c *Client) UpdateTicket(key string, fields models.TicketFields) error {
	if c.client == nil {
		return fmt.Errorf("jira client not initialized")
	}

	_, resp, err := c.client.Issue.Update(&jira.Issue{
		Key:    key,
		Fields: c.toIssueFields(fields),
	})
	if err != nil {
		return fmt.Errorf("failed to update jira ticket %s: %v%s", key, err, statusSuffix(resp))
	}
	return nil
}

// AddTicketComment appends a comment to the ticket.
func (c *Client) AddTicketComment(key, body string) error {
	if c.client == nil {
		return fmt.Errorf("jira client not initialized")
	}

	_, resp, err := c.client.Issue.AddComment(key, &jira.Comment{Body: body})
	if err != nil {
		return fmt.Errorf("failed to comment on jira ticket %s: %v%s", key, err, statusSuffix(resp))
	}
	return nil
}

// ProjectComponents returns the valid component names of a project.
func (c *Client) ProjectComponents(projectKey string) ([]string, error) {
	if c.client == nil {
		return nil, fmt.Errorf("jira client not initialized")
	}

	project, resp, err := c.client.Project.Get(projectKey)
	if err != nil {
		return nil, fmt.Errorf("failed to get jira project %s: %v%s", projectKey, err, statusSuffix(resp))
	}

	names := make([]string, 0, len(project.Components))
	for _, component := range project.Components {
		names = append(names, component.Name)
	}
	return names, nil
}

// toIssueFields converts the mapped field set to the wire representation.
func (c *Client) toIssueFields(fields models.TicketFields) *jira.IssueFields {
	issueFields := &jira.IssueFields{
		Project: jira.Project{
			Key: fields.ProjectKey,
		},
		Summary:     fields.Summary,
		Description: fields.Description,
		Type: jira.IssueType{
			Name: fields.IssueType,
		},
	}

	if fields.ParentKey != "" {
		issueFields.Parent = &jira.Parent{Key: fields.ParentKey}
	}

	if len(fields.Components) > 0 {
		components := make([]*jira.Component, 0, len(fields.Components))
		for _, name := range fields.Components {
			components = append(components, &jira.Component{Name: name})
		}
		issueFields.Components = components
	}

	return issueFields
}

// toTicket converts an API issue to the internal ticket model.
func (c *Client) toTicket(issue *jira.Issue) models.Ticket {
	ticket := models.Ticket{
		Key:       issue.Key,
		Permalink: c.permalink(issue.Key),
	}
	if issue.Fields != nil {
		if issue.Fields.Status != nil {
			ticket.Status = issue.Fields.Status.Name
		}
		for _, component := range issue.Fields.Components {
			if component != nil {
				ticket.Components = append(ticket.Components, component.Name)
			}
		}
	}
	return ticket
}

func (c *Client) permalink(key string) string {
	return c.baseURL + "/browse/" + key
}

// statusSuffix formats the HTTP status for error messages when a response
// is available.
func statusSuffix(resp *jira.Response) string {
	if resp == nil || resp.Response == nil {
		return ""
	}
	return fmt.Sprintf(" (status: %d)", resp.StatusCode)
}

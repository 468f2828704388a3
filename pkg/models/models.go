// Package models defines data structures shared across the application.
package models

// WebhookEvent is the decoded shape of a GitHub issue/comment webhook
// delivery. Optional payload sections are pointers so that an absent key
// is distinguishable from an empty one; the classifier treats missing
// required sections as a reason to ignore the event rather than fail.
type WebhookEvent struct {
	Action     string           `json:"action"`
	Sender     *Account         `json:"sender"`
	Issue      *IssuePayload    `json:"issue"`
	Comment    *CommentPayload  `json:"comment"`
	Repository *RepositoryOwner `json:"repository"`
}

// Account identifies a GitHub user or bot account.
type Account struct {
	Login string `json:"login"`
}

// IssuePayload is the issue section of a webhook delivery.
type IssuePayload struct {
	Number  int      `json:"number"`
	Title   string   `json:"title"`
	Body    string   `json:"body"`
	HTMLURL string   `json:"html_url"`
	User    *Account `json:"user"`
	Labels  []Label  `json:"labels"`
}

// CommentPayload is the comment section of a webhook delivery, present on
// issue_comment events only.
type CommentPayload struct {
	Body string `json:"body"`
}

// Label is a GitHub issue label.
type Label struct {
	Name string `json:"name"`
}

// RepositoryOwner identifies the repository a delivery originated from.
type RepositoryOwner struct {
	Name  string   `json:"name"`
	Owner *Account `json:"owner"`
}

// LabelNames returns the issue's label names in payload order.
func (p *IssuePayload) LabelNames() []string {
	names := make([]string, 0, len(p.Labels))
	for _, label := range p.Labels {
		names = append(names, label.Name)
	}
	return names
}

// Issue is an issue as fetched from the tracker API. The bridge re-fetches
// the issue per event instead of trusting the payload copy, so the title,
// body and author here are authoritative.
type Issue struct {
	// Number is the issue number in GitHub (e.g., 42)
	Number int

	// Title is the issue's title or summary
	Title string

	// Body is the full body text of the issue
	Body string

	// HTMLURL is the issue's canonical browser URL. It doubles as the
	// marker embedded in ticket descriptions.
	HTMLURL string

	// AuthorLogin is the login of the account that opened the issue
	AuthorLogin string

	// Labels is a slice of label names attached to the issue
	Labels []string
}

// Settings is the per-repository sync configuration after merging the
// repo-local document with the process-wide defaults.
type Settings struct {
	// JiraProjectKey is the target project for all tickets (e.g., "PROJ")
	JiraProjectKey string `yaml:"jira_project_key"`

	// StatusMapping names the ticket statuses for open and closed issues
	StatusMapping StatusMapping `yaml:"status_mapping"`

	// Labels is an allow-list of issue labels; empty means every issue
	// is eligible for syncing
	Labels []string `yaml:"labels"`

	// LabelMapping maps an issue label to a ticket issue type
	LabelMapping map[string]string `yaml:"label_mapping"`

	// EpicKey, when set, becomes the parent of every created ticket
	EpicKey string `yaml:"epic_key"`

	// Components are the desired ticket component names, in order
	Components []string `yaml:"components"`

	// SyncDescription controls whether the issue body is copied into the
	// ticket description
	SyncDescription bool `yaml:"sync_description"`

	// SyncComments controls whether new issue comments are appended to
	// the ticket
	SyncComments bool `yaml:"sync_comments"`

	// AddComment controls whether a link-back comment is posted on the
	// issue after ticket creation
	AddComment bool `yaml:"add_gh_comment"`
}

// StatusMapping pairs issue states with ticket status names.
type StatusMapping struct {
	Opened string `yaml:"opened"`
	Closed string `yaml:"closed"`
}

// TicketFields is the desired target state of a ticket's editable
// attributes for one reconciliation pass.
type TicketFields struct {
	ProjectKey  string
	Summary     string
	Description string
	IssueType   string

	// ParentKey links the ticket under an epic; empty means no parent
	ParentKey string

	// Components are component names to set on the ticket. On edit the
	// reconciler unions these with the ticket's existing components.
	Components []string
}

// Ticket is a ticket as known to the ticketing system.
type Ticket struct {
	// Key is the full ticket identifier (e.g., "PROJ-123")
	Key string

	// Permalink is the ticket's browser URL
	Permalink string

	// Status is the current workflow status name
	Status string

	// Components are the component names currently set on the ticket
	Components []string
}

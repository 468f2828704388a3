// Package bridge orchestrates one webhook delivery through configuration
// resolution, classification, ticket location, field mapping and
// reconciliation, and posts any resulting feedback on the source issue.
package bridge

import (
	"context"
	"errors"
	"fmt"

	"github.com/issuebridge/issuebridge/internal/classifier"
	"github.com/issuebridge/issuebridge/internal/github"
	"github.com/issuebridge/issuebridge/internal/logging"
	"github.com/issuebridge/issuebridge/internal/mapper"
	"github.com/issuebridge/issuebridge/internal/markup"
	"github.com/issuebridge/issuebridge/internal/reconcile"
	"github.com/issuebridge/issuebridge/internal/settings"
	"github.com/issuebridge/issuebridge/pkg/models"
)

// IssueTracker is the bridge's view of the source issue tracker.
type IssueTracker interface {
	FetchConfig(ctx context.Context, owner, repo, path string) ([]byte, error)
	GetIssue(ctx context.Context, owner, repo string, number int) (models.Issue, error)
	PostIssueComment(ctx context.Context, owner, repo string, number int, body string) error
}

// TicketSystem is the bridge's view of the ticketing system.
type TicketSystem interface {
	reconcile.TicketSearcher
	reconcile.TicketStore
	mapper.ComponentLister
}

// Disposition classifies how a delivery ended.
type Disposition string

const (
	// DispositionIgnored means the event was not actionable.
	DispositionIgnored Disposition = "ignored"
	// DispositionConfigError means a diagnostic was posted on the issue
	// and processing stopped; the delivery itself succeeded.
	DispositionConfigError Disposition = "config_error"
	// DispositionSynced means the event was reconciled (possibly as a
	// no-op against an already up-to-date ticket).
	DispositionSynced Disposition = "synced"
)

// Outcome summarizes one processed delivery.
type Outcome struct {
	Disposition Disposition
	Reason      string
	Ticket      *models.Ticket
	Actions     []reconcile.Action
}

// Bridge processes webhook deliveries. It holds no per-event state; the
// default settings are read-only after construction, so one Bridge serves
// concurrent deliveries.
type Bridge struct {
	tracker  IssueTracker
	tickets  TicketSystem
	defaults map[string]any
	botName  string

	// render converts issue markdown to ticket markup; replaceable in tests
	render func(string) (string, error)
}

// New creates a Bridge. defaults is the process-wide default settings
// document; it is never mutated.
func New(tracker IssueTracker, tickets TicketSystem, defaults map[string]any, botName string) *Bridge {
	return &Bridge{
		tracker:  tracker,
		tickets:  tickets,
		defaults: defaults,
		botName:  botName,
		render:   markup.Render,
	}
}

// Handle processes one verified webhook delivery to completion. A non-nil
// error is an upstream failure; user-fixable configuration problems are
// reported on the issue and end with a neutral outcome instead.
func (b *Bridge) Handle(ctx context.Context, event *models.WebhookEvent) (Outcome, error) {
	decision := classifier.Screen(event, b.botName)
	if !decision.Actionable() {
		logging.Info("ignoring event", "reason", decision.Reason, "action", event.Action)
		return Outcome{Disposition: DispositionIgnored, Reason: decision.Reason}, nil
	}

	if event.Repository == nil || event.Repository.Owner == nil {
		return Outcome{Disposition: DispositionIgnored, Reason: "payload has no repository"}, nil
	}
	owner := event.Repository.Owner.Login
	repo := event.Repository.Name

	cfg, outcome, err := b.resolveSettings(ctx, event, owner, repo)
	if cfg == nil {
		return outcome, err
	}

	decision = classifier.Classify(event, cfg, b.botName)
	if !decision.Actionable() {
		logging.Info("ignoring event", "reason", decision.Reason,
			"repository", owner+"/"+repo, "issue_number", event.Issue.Number)
		return Outcome{Disposition: DispositionIgnored, Reason: decision.Reason}, nil
	}

	issue, err := b.tracker.GetIssue(ctx, owner, repo, event.Issue.Number)
	if err != nil {
		return Outcome{}, err
	}

	existing, err := reconcile.Locate(b.tickets, cfg.JiraProjectKey, issue.HTMLURL)
	if err != nil {
		return Outcome{}, err
	}

	fields, err := b.mapFields(issue, cfg)
	if err != nil {
		return Outcome{}, err
	}

	comment, err := b.syncedComment(event, decision.Intent)
	if err != nil {
		return Outcome{}, err
	}

	result, err := reconcile.Reconcile(b.tickets, existing, decision.Intent, fields, cfg, comment)
	if err != nil {
		return Outcome{}, err
	}

	if result.Feedback != "" {
		if err := b.tracker.PostIssueComment(ctx, owner, repo, issue.Number, result.Feedback); err != nil {
			return Outcome{}, err
		}
	}

	outcome = Outcome{
		Disposition: DispositionSynced,
		Ticket:      result.Ticket,
		Actions:     result.Actions,
	}
	if result.NoOp() {
		outcome.Reason = "ticket already up to date"
	}
	logging.Info("processed event",
		"repository", owner+"/"+repo,
		"issue_number", issue.Number,
		"intent", string(decision.Intent),
		"actions", len(result.Actions))
	return outcome, nil
}

// resolveSettings loads and validates the repository's sync configuration.
// On a user-fixable problem it posts the diagnostic and returns a nil
// config with the terminal outcome.
func (b *Bridge) resolveSettings(ctx context.Context, event *models.WebhookEvent, owner, repo string) (*models.Settings, Outcome, error) {
	raw, err := b.tracker.FetchConfig(ctx, owner, repo, settings.ConfigPath)
	if err != nil && !errors.Is(err, github.ErrConfigNotFound) {
		return nil, Outcome{}, err
	}

	cfg, err := settings.Resolve(raw, b.defaults)
	if err != nil {
		var cfgErr *settings.Error
		if !errors.As(err, &cfgErr) {
			return nil, Outcome{}, err
		}

		logging.Error("configuration rejected",
			"repository", owner+"/"+repo,
			"error", err)
		if postErr := b.tracker.PostIssueComment(ctx, owner, repo, event.Issue.Number, cfgErr.Diagnostic()); postErr != nil {
			return nil, Outcome{}, postErr
		}
		return nil, Outcome{Disposition: DispositionConfigError, Reason: err.Error()}, nil
	}

	return cfg, Outcome{}, nil
}

// mapFields renders the issue body (when description sync is on) and
// derives the ticket's target fields.
func (b *Bridge) mapFields(issue models.Issue, cfg *models.Settings) (models.TicketFields, error) {
	body := ""
	if cfg.SyncDescription {
		rendered, err := b.render(issue.Body)
		if err != nil {
			return models.TicketFields{}, fmt.Errorf("failed to render issue body: %w", err)
		}
		body = rendered
	}

	return mapper.MapFields(issue, cfg, body, b.tickets)
}

// syncedComment renders the new issue comment for comment-sync events.
func (b *Bridge) syncedComment(event *models.WebhookEvent, intent classifier.Intent) (*reconcile.Comment, error) {
	if intent != classifier.IntentComment || event.Comment == nil {
		return nil, nil
	}

	rendered, err := b.render(event.Comment.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to render comment body: %w", err)
	}

	author := ""
	if event.Sender != nil {
		author = event.Sender.Login
	}
	return &reconcile.Comment{Author: author, Body: rendered}, nil
}

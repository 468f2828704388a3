package reconcile

import (
	"fmt"

	"github.com/issuebridge/issuebridge/internal/classifier"
	"github.com/issuebridge/issuebridge/internal/logging"
	"github.com/issuebridge/issuebridge/pkg/models"
)

// feedbackTemplate is the comment posted back on the issue after a ticket
// is created, when add_gh_comment is enabled.
const feedbackTemplate = `
Thank you for reporting us your feedback!

The internal ticket has been created: %s.

> This message was autogenerated
`

// ticketCommentTemplate formats a synced issue comment for the ticket.
const ticketCommentTemplate = "User *%s* commented:\n %s"

// TicketStore is the mutating side of the ticketing system, satisfied by
// the ticketing client. Failures are not retried here; they fail the event.
type TicketStore interface {
	CreateTicket(fields models.TicketFields) (models.Ticket, error)
	TransitionTicket(key, status string) error
	UpdateTicket(key string, fields models.TicketFields) error
	AddTicketComment(key, body string) error
}

// Action names a side effect the reconciler performed.
type Action string

const (
	ActionCreated      Action = "created"
	ActionTransitioned Action = "transitioned"
	ActionUpdated      Action = "updated"
	ActionCommented    Action = "commented"
)

// Comment is a newly created issue comment to sync, with its author login.
type Comment struct {
	Author string
	Body   string
}

// Result records what one reconciliation pass did. Feedback, when
// non-empty, is a comment body the caller must post on the source issue.
type Result struct {
	Ticket   *models.Ticket
	Actions  []Action
	Feedback string
}

// NoOp reports whether the pass changed nothing.
func (r Result) NoOp() bool {
	return len(r.Actions) == 0
}

// Reconcile performs the minimal state transition for (existing ticket,
// intent). comment carries the rendered issue comment for comment-sync
// events and is nil otherwise.
func Reconcile(store TicketStore, existing *models.Ticket, intent classifier.Intent, fields models.TicketFields, cfg *models.Settings, comment *Comment) (Result, error) {
	result := Result{Ticket: existing}

	if existing == nil {
		// Never create a ticket solely to close it.
		if intent == classifier.IntentClose {
			logging.Info("no ticket to close, skipping")
			return result, nil
		}

		created, err := store.CreateTicket(fields)
		if err != nil {
			return result, fmt.Errorf("failed to create ticket: %w", err)
		}
		logging.Info("created ticket", "ticket", created.Key)

		result.Ticket = &created
		result.Actions = append(result.Actions, ActionCreated)
		if cfg.AddComment {
			result.Feedback = fmt.Sprintf(feedbackTemplate, created.Permalink)
		}
	} else {
		switch intent {
		case classifier.IntentClose:
			if err := store.TransitionTicket(existing.Key, cfg.StatusMapping.Closed); err != nil {
				return result, fmt.Errorf("failed to transition ticket %s: %w", existing.Key, err)
			}
			logging.Info("transitioned ticket", "ticket", existing.Key, "status", cfg.StatusMapping.Closed)
			result.Actions = append(result.Actions, ActionTransitioned)

		case classifier.IntentReopen:
			if err := store.TransitionTicket(existing.Key, cfg.StatusMapping.Opened); err != nil {
				return result, fmt.Errorf("failed to transition ticket %s: %w", existing.Key, err)
			}
			logging.Info("transitioned ticket", "ticket", existing.Key, "status", cfg.StatusMapping.Opened)
			result.Actions = append(result.Actions, ActionTransitioned)

		case classifier.IntentEdit:
			// Components accumulate across edits: a user may have added
			// some on the ticket side, and overwriting would lose them.
			if len(fields.Components) > 0 {
				fields.Components = unionComponents(fields.Components, existing.Components)
			}
			if err := store.UpdateTicket(existing.Key, fields); err != nil {
				return result, fmt.Errorf("failed to update ticket %s: %w", existing.Key, err)
			}
			logging.Info("updated ticket", "ticket", existing.Key)
			result.Actions = append(result.Actions, ActionUpdated)
		}
		// IntentCreate on an existing ticket is the replayed-delivery
		// case: the create already happened, nothing to do.
	}

	if intent == classifier.IntentComment && cfg.SyncComments && comment != nil {
		body := fmt.Sprintf(ticketCommentTemplate, comment.Author, comment.Body)
		if err := store.AddTicketComment(result.Ticket.Key, body); err != nil {
			return result, fmt.Errorf("failed to add comment to ticket %s: %w", result.Ticket.Key, err)
		}
		logging.Info("added ticket comment", "ticket", result.Ticket.Key)
		result.Actions = append(result.Actions, ActionCommented)
	}

	return result, nil
}

// unionComponents merges mapped and existing component names, mapped
// first, without duplicates.
func unionComponents(mapped, existing []string) []string {
	seen := make(map[string]struct{}, len(mapped)+len(existing))
	union := make([]string, 0, len(mapped)+len(existing))
	for _, name := range mapped {
		if _, ok := seen[name]; !ok {
			seen[name] = struct{}{}
			union = append(union, name)
		}
	}
	for _, name := range existing {
		if _, ok := seen[name]; !ok {
			seen[name] = struct{}{}
			union = append(union, name)
		}
	}
	return union
}

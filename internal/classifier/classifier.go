// Package classifier decides whether a webhook event is actionable and,
// if so, which reconciliation intent it implies.
package classifier

import (
	"strings"

	"github.com/issuebridge/issuebridge/pkg/models"
)

// Intent is the classified action a reconciliation event implies.
type Intent string

const (
	// IntentNone marks an event that must be ignored.
	IntentNone Intent = "none"
	// IntentCreate covers an opened issue and any other first-seen,
	// non-closing action.
	IntentCreate Intent = "create"
	// IntentClose transitions the ticket to the closed status.
	IntentClose Intent = "close"
	// IntentReopen transitions the ticket back to the opened status.
	IntentReopen Intent = "reopen"
	// IntentEdit merge-updates the ticket fields.
	IntentEdit Intent = "edit"
	// IntentComment appends the new issue comment to the ticket.
	IntentComment Intent = "comment"
)

// Decision is the classifier outcome. Reason is only set for ignored
// events and exists for logging.
type Decision struct {
	Intent Intent
	Reason string
}

// Actionable reports whether the event should be reconciled.
func (d Decision) Actionable() bool {
	return d.Intent != IntentNone
}

// Classify runs the event through the decision table, first match wins.
// Structural validity is checked before business rules, business rules
// before the label feature gate.
func Classify(event *models.WebhookEvent, cfg *models.Settings, botName string) Decision {
	decision := Screen(event, botName)
	if !decision.Actionable() {
		return decision
	}

	// 5. Label gate: an empty allow-list admits every issue.
	if len(cfg.Labels) > 0 && !anyLabelAllowed(event.Issue.LabelNames(), cfg.Labels) {
		return Decision{Intent: IntentNone, Reason: "issue not labeled with an allowed label"}
	}

	return decision
}

// Screen applies the guards that need no repository settings (rules 1-4 of
// the decision table) and derives the provisional intent. The bridge runs
// it before fetching any configuration so that bot-triggered and malformed
// deliveries never cause API calls or diagnostic comments.
func Screen(event *models.WebhookEvent, botName string) Decision {
	// 1. An event without an issue section has nothing to reconcile
	// against; this also rejects malformed deliveries claiming "opened".
	if event.Issue == nil || event.Action == "" {
		return Decision{Intent: IntentNone, Reason: "payload has no issue"}
	}

	// 2. The bot's own comments and edits come back as deliveries too.
	if botName != "" && event.Sender != nil && event.Sender.Login == botName {
		return Decision{Intent: IntentNone, Reason: "event triggered by bot"}
	}

	// 3. Deletions and unlabeling are never synced.
	if event.Action == "deleted" || event.Action == "unlabeled" {
		return Decision{Intent: IntentNone, Reason: "action not synced"}
	}

	// 4. Comment edits are not synced, only comment creation is.
	if event.Action == "edited" && event.Comment != nil {
		return Decision{Intent: IntentNone, Reason: "comment edits not synced"}
	}

	switch event.Action {
	case "closed":
		return Decision{Intent: IntentClose}
	case "reopened":
		return Decision{Intent: IntentReopen}
	case "edited":
		return Decision{Intent: IntentEdit}
	case "created":
		if event.Comment != nil {
			return Decision{Intent: IntentComment}
		}
		return Decision{Intent: IntentCreate}
	default:
		// "opened" and any other action on a not-yet-synced issue take
		// the create path; the reconciler turns it into a no-op when a
		// ticket already exists.
		return Decision{Intent: IntentCreate}
	}
}

// anyLabelAllowed reports whether any issue label is in the allow-list,
// compared case-insensitively.
func anyLabelAllowed(labels, allowed []string) bool {
	for _, label := range labels {
		for _, candidate := range allowed {
			if strings.EqualFold(label, candidate) {
				return true
			}
		}
	}
	return false
}

// Package reconcile decides and performs the minimal ticket-system state
// transition for one classified webhook event.
package reconcile

import (
	"fmt"

	"github.com/issuebridge/issuebridge/internal/logging"
	"github.com/issuebridge/issuebridge/pkg/models"
)

// TicketSearcher finds tickets whose description contains a marker
// substring, satisfied by the ticketing client.
type TicketSearcher interface {
	SearchTickets(projectKey, marker string) ([]models.Ticket, error)
}

// Locate returns the ticket already linked to the issue identified by
// marker, or nil when none exists. The first match is canonical if
// duplicates ever exist.
//
// The search result is the system's only idempotence check: a replayed
// "opened" delivery finds the first-created ticket here and takes the
// update path. Two near-simultaneous creates for the same issue can both
// observe no match and both create a ticket; callers wanting a stronger
// guarantee need mutual exclusion keyed by the marker, which this core
// deliberately does not own.
func Locate(searcher TicketSearcher, projectKey, marker string) (*models.Ticket, error) {
	matches, err := searcher.SearchTickets(projectKey, marker)
	if err != nil {
		return nil, fmt.Errorf("failed to search for existing tickets: %w", err)
	}

	if len(matches) == 0 {
		return nil, nil
	}
	if len(matches) > 1 {
		logging.Warn("multiple tickets match marker, using first",
			"marker", marker,
			"count", len(matches),
			"ticket", matches[0].Key)
	}

	ticket := matches[0]
	return &ticket, nil
}

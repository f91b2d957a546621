// Package notify adapts the core's fire-and-forget notification port.
// Delivery targets are selected by the tagged-variant rules defined in
// ports (role-equals, city-equals, all) evaluated against a typed
// recipient context.
package notify

import (
	"context"
	"log/slog"

	"hackboard/src/core/ports"
)

// Recipient is one deliverable endpoint with its matching attributes.
type Recipient struct {
	Address string
	Context ports.RecipientContext
}

// LogNotifier resolves recipients from a static directory and logs the
// deliveries it would perform. Real transports (email, push) slot in
// behind the same port without touching the core.
type LogNotifier struct {
	recipients []Recipient
	log        *slog.Logger
}

// NewLogNotifier creates a notifier over a fixed recipient directory.
func NewLogNotifier(recipients []Recipient, log *slog.Logger) *LogNotifier {
	return &LogNotifier{recipients: recipients, log: log}
}

// Notify selects recipients via the notification's target rule and logs
// one delivery line per match. It never blocks on network calls.
func (n *LogNotifier) Notify(_ context.Context, msg ports.Notification) error {
	matched := 0
	for _, r := range n.recipients {
		if !msg.Target.Matches(r.Context) {
			continue
		}
		matched++
		n.log.Info("notification dispatched",
			"notification_id", msg.ID,
			"event", msg.Event,
			"hackathon_id", msg.HackathonID,
			"team_id", msg.TeamID,
			"recipient", r.Address,
		)
	}
	if matched == 0 {
		n.log.Debug("notification matched no recipients",
			"notification_id", msg.ID,
			"event", msg.Event,
		)
	}
	return nil
}

var _ ports.Notifier = (*LogNotifier)(nil)

// Package queue defines message payloads exchanged over the message broker
// together with the publisher and the background consumer.
package queue

// BookingQueueName is the durable queue carrying BookingChangedEvent.
const BookingQueueName = "booking.changed"

// Booking change actions.
const (
	ActionReserved  = "reserved"
	ActionReleased  = "released"
	ActionUnblocked = "unblocked"
	ActionClaimed   = "claimed"
)

// BookingChangedEvent is published after a ledger operation commits.  It
// contains enough information for downstream consumers to log, notify
// organizers or rebuild a view without querying the primary database.
type BookingChangedEvent struct {
	EventID     uint64   `json:"event_id"`
	Action      string   `json:"action"`
	BedID       string   `json:"bed_id"`
	Name        string   `json:"name,omitempty"`
	Restriction string   `json:"restriction,omitempty"`
	Affected    []string `json:"affected_beds,omitempty"`
	OccurredAt  string   `json:"occurred_at"`
}

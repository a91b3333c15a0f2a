// Package events carries the domain events emitted on successful
// balance-affecting operations. Emission is best-effort and fire-and-forget:
// events are published only after the owning write commits, and a publishing
// failure never rolls back or blocks the financial write. Delivery (websocket
// fan-out, notifications) is an external collaborator.
package events

import (
	"time"

	"github.com/google/uuid"
)

// Event types for every balance-affecting operation.
const (
	TypeGroupCreated     = "group.created"
	TypeGroupDeleted     = "group.deleted"
	TypeMemberJoined     = "group.member.joined"
	TypeMemberRemoved    = "group.member.removed"
	TypeExpenseCreated   = "group.expense.created"
	TypeExpenseUpdated   = "group.expense.updated"
	TypeExpenseDeleted   = "group.expense.deleted"
	TypePaymentCreated   = "group.payment.created"
	TypePaymentConfirmed = "group.payment.confirmed"
	TypePaymentDeleted   = "group.payment.deleted"
	TypeGroupResplit     = "group.resplit"
)

// Event is one domain event.
type Event struct {
	ID        uuid.UUID      `json:"id"`
	Type      string         `json:"type"`
	GroupID   string         `json:"group_id,omitempty"`
	MemberID  string         `json:"member_id,omitempty"`
	Payload   map[string]any `json:"payload,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// New builds an event for a group with the given payload.
func New(eventType, groupID string, payload map[string]any) Event {
	return Event{
		ID:        uuid.New(),
		Type:      eventType,
		GroupID:   groupID,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}
}

// NewMember builds an event about one specific member of a group.
func NewMember(eventType, groupID, memberID string, payload map[string]any) Event {
	e := New(eventType, groupID, payload)
	e.MemberID = memberID
	return e
}

// Publisher accepts events without blocking the caller.
type Publisher interface {
	Publish(Event)
}

// Discard is a Publisher that drops every event. Useful as a default and in
// tests that don't care about events.
type Discard struct{}

func (Discard) Publish(Event) {}

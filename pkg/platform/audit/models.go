package audit

import (
	"context"
	"time"

	id "parley/pkg/domain"
)

// EventCategory classifies audit events by their primary purpose so stores
// can apply different retention.
type EventCategory string

const (
	// CategoryCompliance covers events that change who holds which attribute
	// data: decisions, shares and peer copies. Long retention.
	CategoryCompliance EventCategory = "compliance"

	// CategoryOperations covers lifecycle bookkeeping useful for debugging.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted by the controllers on every lifecycle step. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Category    EventCategory
	Timestamp   time.Time
	RequestID   id.RequestID
	AttributeID id.AttributeID
	Peer        id.Address
	Action      string
	OldStatus   string
	NewStatus   string
	Decision    string
	Reason      string
}

type AuditEvent string

const (
	// Request lifecycle
	EventRequestCreated   AuditEvent = "request_created"
	EventRequestSent      AuditEvent = "request_sent"
	EventRequestReceived  AuditEvent = "request_received"
	EventRequestDecided   AuditEvent = "request_decided"
	EventRequestAnswered  AuditEvent = "request_answered"
	EventRequestCompleted AuditEvent = "request_completed"
	EventRequestFailed    AuditEvent = "request_failed"

	// Attribute side effects
	EventAttributeCreated      AuditEvent = "attribute_created"
	EventAttributeSucceeded    AuditEvent = "attribute_succeeded"
	EventAttributeShared       AuditEvent = "attribute_shared"
	EventPeerAttributeRecorded AuditEvent = "peer_attribute_recorded"
	EventSuccessionRepaired    AuditEvent = "succession_repaired"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventRequestDecided:        CategoryCompliance,
	EventRequestCompleted:      CategoryCompliance,
	EventAttributeShared:       CategoryCompliance,
	EventPeerAttributeRecorded: CategoryCompliance,
	EventAttributeSucceeded:    CategoryCompliance,

	EventRequestCreated:     CategoryOperations,
	EventRequestSent:        CategoryOperations,
	EventRequestReceived:    CategoryOperations,
	EventRequestAnswered:    CategoryOperations,
	EventRequestFailed:      CategoryOperations,
	EventAttributeCreated:   CategoryOperations,
	EventSuccessionRepaired: CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByRequest(ctx context.Context, requestID id.RequestID) ([]Event, error)
}

// Publisher stamps and forwards events to a Store. It is append-only.
type Publisher struct {
	store Store
	now   func() time.Time
}

func NewPublisher(store Store) *Publisher {
	return &Publisher{store: store, now: time.Now}
}

func (p *Publisher) Emit(ctx context.Context, event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = p.now()
	}
	if event.Category == "" {
		event.Category = AuditEvent(event.Action).Category()
	}
	return p.store.Append(ctx, event)
}

func (p *Publisher) List(ctx context.Context, requestID id.RequestID) ([]Event, error) {
	return p.store.ListByRequest(ctx, requestID)
}

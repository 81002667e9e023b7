package events

import "time"

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventAccountRegistered  EventType = "account_registered"
	EventAccountUpdated     EventType = "account_updated"
	EventAccountDeactivated EventType = "account_deactivated"
	EventProductCreated     EventType = "product_created"
	EventProductUpdated     EventType = "product_updated"
	EventProductDeleted     EventType = "product_deleted"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	SubjectID string      `json:"subject_id"`
	ActorID   string      `json:"actor_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload,omitempty"`
}

// AccountUpdatedPayload lists which profile fields changed.
type AccountUpdatedPayload struct {
	NameChanged     bool `json:"name_changed"`
	EmailChanged    bool `json:"email_changed"`
	PasswordChanged bool `json:"password_changed"`
}

// ProductPayload carries the product state after the change.
type ProductPayload struct {
	OwnerID string  `json:"owner_id"`
	Name    string  `json:"name"`
	Price   float64 `json:"price"`
}

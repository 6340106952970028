package domain

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors for the registration workflow.
var (
	ErrRegistrationClosed   = errors.New("registration for this event has closed")
	ErrEventFull            = errors.New("no seats available for this event")
	ErrAlreadyRegistered    = errors.New("already registered for this event")
	ErrRegistrationNotFound = errors.New("registration not found")
)

// EventRegistration links a student to an event. The event's registrant list
// and the user's registered-events list are both views over these rows, so
// the two sides of the relationship cannot diverge.
// swagger:model EventRegistration
type EventRegistration struct {
	ID           string    `json:"id"`
	EventID      string    `json:"event_id"`
	UserID       string    `json:"user_id"`
	RegisteredAt time.Time `json:"registered_at"`
}

// RegistrationConfirmation is the success payload returned to a registrant.
// Deliberately not the full event document: it must not leak other
// registrants' data.
// swagger:model RegistrationConfirmation
type RegistrationConfirmation struct {
	EventID string    `json:"id"`
	Name    string    `json:"name"`
	Date    time.Time `json:"date"`
	Time    string    `json:"time"`
	Venue   string    `json:"venue"`
}

// RegistrantSummary is the profile-safe subset of a registrant shown to the
// event's organizer.
// swagger:model RegistrantSummary
type RegistrantSummary struct {
	Name             string  `json:"name"`
	Email            string  `json:"email"`
	PhoneNumber      *string `json:"phone_number"`
	EnrollmentNumber *string `json:"enrollment_number"`
	Class            *string `json:"class"`
	Year             *int    `json:"year"`
	Semester         *int    `json:"semester"`
}

// RegistrationEntry is one row of the organizer's registrations listing.
// User is nil and Error is set when the registrant lookup failed; one bad
// entry never aborts the whole listing.
// swagger:model RegistrationEntry
type RegistrationEntry struct {
	RegistrationID string             `json:"registration_id"`
	RegisteredAt   time.Time          `json:"registered_at"`
	UserID         string             `json:"user_id"`
	User           *RegistrantSummary `json:"user"`
	Error          string             `json:"error,omitempty"`
}

// RegistrationRepository defines storage operations for event registrations.
type RegistrationRepository interface {
	// Register books one seat in a single transaction: it locks the event row,
	// re-checks available seats and the duplicate under the lock, decrements
	// the seat counter, and inserts the registration row. Returns
	// ErrEventNotFound, ErrEventFull, or ErrAlreadyRegistered.
	Register(ctx context.Context, eventID, userID string, registeredAt time.Time) (*EventRegistration, error)
	GetByEventAndUser(ctx context.Context, eventID, userID string) (*EventRegistration, error)
	ListByEventID(ctx context.Context, eventID string) ([]*EventRegistration, error)
}

// RegistrationService orchestrates the registration workflow and the
// organizer-facing registrations listing.
type RegistrationService interface {
	// RegisterForEvent runs the full precondition chain (user exists, student
	// role, profile gate, event exists, deadline, seats, duplicate) and books
	// the seat atomically on success.
	RegisterForEvent(ctx context.Context, eventID, userID string) (*RegistrationConfirmation, error)
	// ListEventRegistrations returns the registrants of an event to its
	// organizer. requesterID must match the event's OrganizerID.
	ListEventRegistrations(ctx context.Context, eventID, requesterID string) ([]*RegistrationEntry, error)
	// ListUserRegisteredEvents returns the events the user is registered for.
	ListUserRegisteredEvents(ctx context.Context, userID string) ([]*Event, error)
}

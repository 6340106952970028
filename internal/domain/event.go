package domain

import (
	"context"
	"errors"
	"math"
	"time"
)

// Sentinel errors for event operations.
var (
	ErrEventNotFound = errors.New("event not found")
	ErrForbidden     = errors.New("forbidden")
	ErrInvalidInput  = errors.New("invalid input")
	ErrSeatUnderflow = errors.New("available seats cannot be negative")
)

// Category is the closed set of event categories.
type Category string

const (
	CategoryTechnical Category = "Technical"
	CategoryCultural  Category = "Cultural"
	CategorySports    Category = "Sports"
	CategoryWorkshop  Category = "Workshop"
	CategorySeminar   Category = "Seminar"
	CategoryOther     Category = "Other"
)

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryTechnical, CategoryCultural, CategorySports, CategoryWorkshop, CategorySeminar, CategoryOther:
		return true
	}
	return false
}

// Event represents a campus event. AvailableSeats is the stored seat counter;
// the invariant 0 <= AvailableSeats <= TotalSeats holds at all times and every
// mutation of it goes through the registration workflow or the seat-delta edit.
// swagger:model Event
type Event struct {
	ID                   string    `json:"id"`
	Name                 string    `json:"name"`
	Description          string    `json:"description"`
	Date                 time.Time `json:"date"`
	Time                 string    `json:"time"`
	Venue                string    `json:"venue"`
	OrganizedBy          string    `json:"organized_by"`
	OrganizerID          string    `json:"organizer_id"`
	Price                float64   `json:"price"`
	TotalSeats           int       `json:"total_seats"`
	AvailableSeats       int       `json:"available_seats"`
	Category             Category  `json:"category"`
	RegistrationDeadline time.Time `json:"registration_deadline"`
	IsExpired            bool      `json:"is_expired"`
	ContactEmail         string    `json:"contact_email"`
	ContactPhone         string    `json:"contact_phone"`
	Tags                 []string  `json:"tags"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// Capacity is the derived seat-accounting view attached to every event read.
// It is never stored; it is recomputed from the live counters each time.
// swagger:model Capacity
type Capacity struct {
	Total            int `json:"total"`
	Available        int `json:"available"`
	Filled           int `json:"filled"`
	PercentageFilled int `json:"percentage_filled"`
}

// Capacity derives the seat-accounting view from the stored counters.
// TotalSeats is at least 1 for correctly constructed events; a malformed
// event reports 0% filled rather than dividing by zero.
func (e *Event) Capacity() Capacity {
	filled := e.TotalSeats - e.AvailableSeats
	pct := 0
	if e.TotalSeats > 0 {
		pct = int(math.Round(float64(filled) / float64(e.TotalSeats) * 100))
	}
	return Capacity{
		Total:            e.TotalSeats,
		Available:        e.AvailableSeats,
		Filled:           filled,
		PercentageFilled: pct,
	}
}

// RegistrationOpen reports whether registration is still accepted at the given
// instant. Open strictly before the deadline: the deadline instant itself is
// closed.
func (e *Event) RegistrationOpen(now time.Time) bool {
	return now.Before(e.RegistrationDeadline)
}

// EventFilter selects events on list reads. Nil fields match everything.
type EventFilter struct {
	Category *Category
	Expired  *bool
}

// EventUpdate carries a partial event edit. Nil fields are left unchanged.
// A TotalSeats change is applied as a delta to AvailableSeats by the
// repository, never recomputed from scratch.
type EventUpdate struct {
	Name                 *string
	Description          *string
	Date                 *time.Time
	Time                 *string
	Venue                *string
	OrganizedBy          *string
	Price                *float64
	TotalSeats           *int
	Category             *Category
	RegistrationDeadline *time.Time
	ContactEmail         *string
	ContactPhone         *string
	Tags                 []string
}

// EventRepository defines the interface for event storage.
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	List(ctx context.Context, filter EventFilter) ([]*Event, error)
	ListByOrganizerID(ctx context.Context, organizerID string) ([]*Event, error)
	ListRegisteredByUserID(ctx context.Context, userID string) ([]*Event, error)
	// Update applies the partial edit atomically. When upd.TotalSeats is set it
	// locks the event row, shifts AvailableSeats by the seat delta, and returns
	// ErrSeatUnderflow if the result would be negative.
	Update(ctx context.Context, eventID string, upd EventUpdate) (*Event, error)
	Delete(ctx context.Context, id string) error
}

// EventService defines organizer-facing event management.
type EventService interface {
	CreateEvent(ctx context.Context, organizerID string, event *Event) (*Event, error)
	GetEvent(ctx context.Context, id string) (*Event, error)
	ListEvents(ctx context.Context, filter EventFilter) ([]*Event, error)
	ListOrganizerEvents(ctx context.Context, organizerID string) ([]*Event, error)
	UpdateEvent(ctx context.Context, eventID, requesterID string, upd EventUpdate) (*Event, error)
	DeleteEvent(ctx context.Context, eventID, requesterID string) error
}

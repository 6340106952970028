package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"campusevents/internal/domain"
)

type registrationService struct {
	userRepo         domain.UserRepository
	eventRepo        domain.EventRepository
	registrationRepo domain.RegistrationRepository
	now              func() time.Time
}

// NewRegistrationService creates a RegistrationService with the given repositories.
func NewRegistrationService(
	userRepo domain.UserRepository,
	eventRepo domain.EventRepository,
	registrationRepo domain.RegistrationRepository,
) domain.RegistrationService {
	return &registrationService{
		userRepo:         userRepo,
		eventRepo:        eventRepo,
		registrationRepo: registrationRepo,
		now:              time.Now,
	}
}

// RegisterForEvent runs the registration preconditions in a fixed order, each
// failure short-circuiting with its own outcome, then books the seat in one
// transaction. The pre-flight seat and duplicate checks give fast, precise
// rejections; the repository re-checks both under the event row lock, which is
// what actually protects the seat invariant against concurrent requests.
func (s *registrationService) RegisterForEvent(ctx context.Context, eventID, userID string) (*domain.RegistrationConfirmation, error) {
	// 1. User exists.
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	// 2. Only students register.
	if user.Role != domain.RoleStudent {
		return nil, domain.ErrStudentOnly
	}

	// 3. Profile gate.
	if err := domain.CheckEligible(user); err != nil {
		return nil, err
	}

	// 4. Event exists.
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrEventNotFound) {
			return nil, domain.ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	// 5. Deadline. Only the registration deadline gates new registrations;
	// the cached occurrence-expiry flag is not consulted here.
	now := s.now()
	if !event.RegistrationOpen(now) {
		return nil, domain.ErrRegistrationClosed
	}

	// 6. Seats remain.
	if event.AvailableSeats <= 0 {
		return nil, domain.ErrEventFull
	}

	// 7. Not already registered. The registrations table is the single source
	// of both the event's registrant list and the user's registered-events
	// list, so one lookup covers both sides of the relationship.
	if _, err := s.registrationRepo.GetByEventAndUser(ctx, eventID, userID); err == nil {
		return nil, domain.ErrAlreadyRegistered
	} else if !errors.Is(err, domain.ErrRegistrationNotFound) {
		return nil, fmt.Errorf("failed to check registration: %w", err)
	}

	if _, err := s.registrationRepo.Register(ctx, eventID, userID, now); err != nil {
		switch {
		case errors.Is(err, domain.ErrEventNotFound),
			errors.Is(err, domain.ErrEventFull),
			errors.Is(err, domain.ErrAlreadyRegistered):
			return nil, err
		}
		return nil, fmt.Errorf("failed to register: %w", err)
	}

	// Confirmation only; never the full event document with its registrant list.
	return &domain.RegistrationConfirmation{
		EventID: event.ID,
		Name:    event.Name,
		Date:    event.Date,
		Time:    event.Time,
		Venue:   event.Venue,
	}, nil
}

// ListEventRegistrations returns the registrants of an event to its organizer.
// A failed registrant lookup degrades that single entry instead of aborting
// the listing.
func (s *registrationService) ListEventRegistrations(ctx context.Context, eventID, requesterID string) ([]*domain.RegistrationEntry, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrEventNotFound) {
			return nil, domain.ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	if event.OrganizerID != requesterID {
		return nil, domain.ErrForbidden
	}

	regs, err := s.registrationRepo.ListByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list registrations: %w", err)
	}

	entries := make([]*domain.RegistrationEntry, 0, len(regs))
	for _, reg := range regs {
		entry := &domain.RegistrationEntry{
			RegistrationID: reg.ID,
			RegisteredAt:   reg.RegisteredAt,
			UserID:         reg.UserID,
		}
		registrant, err := s.userRepo.GetByID(ctx, reg.UserID)
		if err != nil {
			entry.Error = "failed to retrieve user data"
		} else {
			entry.User = &domain.RegistrantSummary{
				Name:             registrant.Name,
				Email:            registrant.Email,
				PhoneNumber:      registrant.PhoneNumber,
				EnrollmentNumber: registrant.EnrollmentNumber,
				Class:            registrant.Class,
				Year:             registrant.Year,
				Semester:         registrant.Semester,
			}
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (s *registrationService) ListUserRegisteredEvents(ctx context.Context, userID string) ([]*domain.Event, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	events, err := s.eventRepo.ListRegisteredByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list registered events: %w", err)
	}
	return events, nil
}

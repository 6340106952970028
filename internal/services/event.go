package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"campusevents/internal/domain"
)

type eventService struct {
	eventRepo domain.EventRepository
	userRepo  domain.UserRepository
}

// NewEventService creates an EventService with the given repositories.
func NewEventService(eventRepo domain.EventRepository, userRepo domain.UserRepository) domain.EventService {
	return &eventService{eventRepo: eventRepo, userRepo: userRepo}
}

// CreateEvent creates an event owned by the organizer. Students cannot create
// events. availableSeats always starts equal to totalSeats.
func (s *eventService) CreateEvent(ctx context.Context, organizerID string, event *domain.Event) (*domain.Event, error) {
	organizer, err := s.userRepo.GetByID(ctx, organizerID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get organizer: %w", err)
	}
	if !organizer.Role.IsOrganizer() {
		return nil, domain.ErrForbidden
	}

	event.Name = strings.TrimSpace(event.Name)
	if event.Name == "" {
		return nil, fmt.Errorf("event name is required: %w", domain.ErrInvalidInput)
	}
	if event.TotalSeats < 1 {
		return nil, fmt.Errorf("total seats must be at least 1: %w", domain.ErrInvalidInput)
	}
	if !event.Category.Valid() {
		return nil, fmt.Errorf("unknown category %q: %w", event.Category, domain.ErrInvalidInput)
	}
	if event.Date.IsZero() || event.RegistrationDeadline.IsZero() {
		return nil, fmt.Errorf("date and registration deadline are required: %w", domain.ErrInvalidInput)
	}

	now := time.Now()
	event.OrganizerID = organizerID
	event.AvailableSeats = event.TotalSeats
	event.IsExpired = event.Date.Before(now)
	event.CreatedAt = now
	event.UpdatedAt = now
	if event.Tags == nil {
		event.Tags = []string{}
	}
	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}
	return event, nil
}

func (s *eventService) GetEvent(ctx context.Context, id string) (*domain.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrEventNotFound) {
			return nil, domain.ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return event, nil
}

func (s *eventService) ListEvents(ctx context.Context, filter domain.EventFilter) ([]*domain.Event, error) {
	events, err := s.eventRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return events, nil
}

func (s *eventService) ListOrganizerEvents(ctx context.Context, organizerID string) ([]*domain.Event, error) {
	events, err := s.eventRepo.ListByOrganizerID(ctx, organizerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list organizer events: %w", err)
	}
	return events, nil
}

// UpdateEvent applies a partial edit after authorizing the requester as the
// event's organizer. Seat-count changes go through the repository's delta
// rule so already-consumed seats are never re-opened.
func (s *eventService) UpdateEvent(ctx context.Context, eventID, requesterID string, upd domain.EventUpdate) (*domain.Event, error) {
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
	if upd.TotalSeats != nil && *upd.TotalSeats < 1 {
		return nil, fmt.Errorf("total seats must be at least 1: %w", domain.ErrInvalidInput)
	}
	if upd.Category != nil && !upd.Category.Valid() {
		return nil, fmt.Errorf("unknown category %q: %w", *upd.Category, domain.ErrInvalidInput)
	}

	updated, err := s.eventRepo.Update(ctx, eventID, upd)
	if err != nil {
		if errors.Is(err, domain.ErrSeatUnderflow) || errors.Is(err, domain.ErrEventNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update event: %w", err)
	}
	return updated, nil
}

func (s *eventService) DeleteEvent(ctx context.Context, eventID, requesterID string) error {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrEventNotFound) {
			return domain.ErrEventNotFound
		}
		return fmt.Errorf("failed to get event: %w", err)
	}
	if event.OrganizerID != requesterID {
		return domain.ErrForbidden
	}
	if err := s.eventRepo.Delete(ctx, eventID); err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	return nil
}

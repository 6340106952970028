package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"campusevents/internal/domain"
)

func TestEventService_CreateEvent(t *testing.T) {
	now := time.Now()
	validEvent := func() *domain.Event {
		return &domain.Event{
			Name:                 "Robotics Workshop",
			Date:                 now.Add(72 * time.Hour),
			Time:                 "2:00 PM",
			Venue:                "Lab 3",
			TotalSeats:           30,
			Category:             domain.CategoryWorkshop,
			RegistrationDeadline: now.Add(48 * time.Hour),
		}
	}

	tests := []struct {
		name        string
		userRepo    *mockUserRepository
		organizerID string
		mutate      func(*domain.Event)
		wantErr     error
	}{
		{
			name: "student cannot create events",
			userRepo: &mockUserRepository{usersByID: map[string]*domain.User{
				"u1": {ID: "u1", Role: domain.RoleStudent},
			}},
			organizerID: "u1",
			wantErr:     domain.ErrForbidden,
		},
		{
			name:        "organizer not found",
			userRepo:    &mockUserRepository{usersByID: map[string]*domain.User{}},
			organizerID: "ghost",
			wantErr:     domain.ErrUserNotFound,
		},
		{
			name: "empty name rejected",
			userRepo: &mockUserRepository{usersByID: map[string]*domain.User{
				"org1": {ID: "org1", Role: domain.RoleISTE},
			}},
			organizerID: "org1",
			mutate:      func(ev *domain.Event) { ev.Name = "   " },
			wantErr:     domain.ErrInvalidInput,
		},
		{
			name: "zero seats rejected",
			userRepo: &mockUserRepository{usersByID: map[string]*domain.User{
				"org1": {ID: "org1", Role: domain.RoleISTE},
			}},
			organizerID: "org1",
			mutate:      func(ev *domain.Event) { ev.TotalSeats = 0 },
			wantErr:     domain.ErrInvalidInput,
		},
		{
			name: "unknown category rejected",
			userRepo: &mockUserRepository{usersByID: map[string]*domain.User{
				"org1": {ID: "org1", Role: domain.RoleISTE},
			}},
			organizerID: "org1",
			mutate:      func(ev *domain.Event) { ev.Category = "Party" },
			wantErr:     domain.ErrInvalidInput,
		},
		{
			name: "success",
			userRepo: &mockUserRepository{usersByID: map[string]*domain.User{
				"org1": {ID: "org1", Role: domain.RoleISTE},
			}},
			organizerID: "org1",
			wantErr:     nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			evRepo := &mockEventRepository{events: map[string]*domain.Event{}}
			svc := &eventService{eventRepo: evRepo, userRepo: tt.userRepo}
			ev := validEvent()
			if tt.mutate != nil {
				tt.mutate(ev)
			}
			got, err := svc.CreateEvent(context.Background(), tt.organizerID, ev)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				if len(evRepo.created) != 0 {
					t.Errorf("expected no event created on rejection")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.OrganizerID != tt.organizerID {
				t.Errorf("expected organizer %q, got %q", tt.organizerID, got.OrganizerID)
			}
			if got.AvailableSeats != got.TotalSeats {
				t.Errorf("expected available seats to start at total (%d), got %d", got.TotalSeats, got.AvailableSeats)
			}
			if got.IsExpired {
				t.Error("future event should not be expired")
			}
		})
	}
}

func TestEventService_UpdateEvent(t *testing.T) {
	event := &domain.Event{ID: "e1", Name: "Seminar", OrganizerID: "org1", TotalSeats: 30, AvailableSeats: 10}

	t.Run("only the owning organizer may edit", func(t *testing.T) {
		svc := &eventService{
			eventRepo: &mockEventRepository{events: map[string]*domain.Event{"e1": event}},
			userRepo:  &mockUserRepository{},
		}
		_, err := svc.UpdateEvent(context.Background(), "e1", "org2", domain.EventUpdate{Name: strptr("Renamed")})
		if !errors.Is(err, domain.ErrForbidden) {
			t.Fatalf("expected ErrForbidden, got %v", err)
		}
	})

	t.Run("seat underflow from repository surfaces unchanged", func(t *testing.T) {
		svc := &eventService{
			eventRepo: &mockEventRepository{
				events:    map[string]*domain.Event{"e1": event},
				updateErr: domain.ErrSeatUnderflow,
			},
			userRepo: &mockUserRepository{},
		}
		_, err := svc.UpdateEvent(context.Background(), "e1", "org1", domain.EventUpdate{TotalSeats: intptr(15)})
		if !errors.Is(err, domain.ErrSeatUnderflow) {
			t.Fatalf("expected ErrSeatUnderflow, got %v", err)
		}
	})

	t.Run("zero total seats rejected before the repository", func(t *testing.T) {
		evRepo := &mockEventRepository{events: map[string]*domain.Event{"e1": event}}
		svc := &eventService{eventRepo: evRepo, userRepo: &mockUserRepository{}}
		_, err := svc.UpdateEvent(context.Background(), "e1", "org1", domain.EventUpdate{TotalSeats: intptr(0)})
		if !errors.Is(err, domain.ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("success", func(t *testing.T) {
		svc := &eventService{
			eventRepo: &mockEventRepository{events: map[string]*domain.Event{"e1": event}},
			userRepo:  &mockUserRepository{},
		}
		got, err := svc.UpdateEvent(context.Background(), "e1", "org1", domain.EventUpdate{Name: strptr("Renamed")})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got == nil {
			t.Fatal("expected non-nil event")
		}
	})
}

func TestEventService_DeleteEvent(t *testing.T) {
	t.Run("forbidden for non-owner", func(t *testing.T) {
		svc := &eventService{
			eventRepo: &mockEventRepository{events: map[string]*domain.Event{
				"e1": {ID: "e1", OrganizerID: "org1"},
			}},
			userRepo: &mockUserRepository{},
		}
		err := svc.DeleteEvent(context.Background(), "e1", "org2")
		if !errors.Is(err, domain.ErrForbidden) {
			t.Fatalf("expected ErrForbidden, got %v", err)
		}
	})

	t.Run("success", func(t *testing.T) {
		evRepo := &mockEventRepository{events: map[string]*domain.Event{
			"e1": {ID: "e1", OrganizerID: "org1"},
		}}
		svc := &eventService{eventRepo: evRepo, userRepo: &mockUserRepository{}}
		if err := svc.DeleteEvent(context.Background(), "e1", "org1"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, ok := evRepo.events["e1"]; ok {
			t.Error("expected event to be deleted")
		}
	})
}

package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"campusevents/internal/domain"
)

type mockUserRepository struct {
	usersByID    map[string]*domain.User
	usersByEmail map[string]*domain.User
	err          error

	updatedProfiles  map[string]*domain.Profile
	updatedPasswords map[string][2]string
	updatedRoles     map[string]domain.Role
}

func (m *mockUserRepository) Create(ctx context.Context, user *domain.User) error {
	if m.err != nil {
		return m.err
	}
	if m.usersByEmail != nil {
		if _, ok := m.usersByEmail[user.Email]; ok {
			return domain.ErrDuplicateEmail
		}
	}
	user.ID = "new-user"
	return nil
}

func (m *mockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	u, ok := m.usersByEmail[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return u, nil
}

func (m *mockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	u, ok := m.usersByID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return u, nil
}

func (m *mockUserRepository) UpdateProfile(ctx context.Context, userID string, p *domain.Profile) error {
	if m.err != nil {
		return m.err
	}
	if m.updatedProfiles == nil {
		m.updatedProfiles = map[string]*domain.Profile{}
	}
	m.updatedProfiles[userID] = p
	if u, ok := m.usersByID[userID]; ok {
		u.HasCompletedProfile = true
	}
	return nil
}

func (m *mockUserRepository) UpdatePassword(ctx context.Context, userID, passwordHash, salt string) error {
	if m.updatedPasswords == nil {
		m.updatedPasswords = map[string][2]string{}
	}
	m.updatedPasswords[userID] = [2]string{passwordHash, salt}
	return nil
}

func (m *mockUserRepository) UpdateRole(ctx context.Context, userID string, role domain.Role) error {
	if m.updatedRoles == nil {
		m.updatedRoles = map[string]domain.Role{}
	}
	m.updatedRoles[userID] = role
	if u, ok := m.usersByID[userID]; ok {
		u.Role = role
	}
	return nil
}

type mockEventRepository struct {
	events    map[string]*domain.Event
	byUser    map[string][]*domain.Event
	updateErr error
	err       error

	created []*domain.Event
}

func (m *mockEventRepository) Create(ctx context.Context, event *domain.Event) error {
	if m.err != nil {
		return m.err
	}
	event.ID = "new-event"
	m.created = append(m.created, event)
	return nil
}

func (m *mockEventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	if m.err != nil {
		return nil, m.err
	}
	ev, ok := m.events[id]
	if !ok {
		return nil, domain.ErrEventNotFound
	}
	return ev, nil
}

func (m *mockEventRepository) List(ctx context.Context, filter domain.EventFilter) ([]*domain.Event, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := make([]*domain.Event, 0, len(m.events))
	for _, ev := range m.events {
		out = append(out, ev)
	}
	return out, nil
}

func (m *mockEventRepository) ListByOrganizerID(ctx context.Context, organizerID string) ([]*domain.Event, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []*domain.Event
	for _, ev := range m.events {
		if ev.OrganizerID == organizerID {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (m *mockEventRepository) ListRegisteredByUserID(ctx context.Context, userID string) ([]*domain.Event, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.byUser[userID], nil
}

func (m *mockEventRepository) Update(ctx context.Context, eventID string, upd domain.EventUpdate) (*domain.Event, error) {
	if m.updateErr != nil {
		return nil, m.updateErr
	}
	ev, ok := m.events[eventID]
	if !ok {
		return nil, domain.ErrEventNotFound
	}
	return ev, nil
}

func (m *mockEventRepository) Delete(ctx context.Context, id string) error {
	if m.err != nil {
		return m.err
	}
	if _, ok := m.events[id]; !ok {
		return domain.ErrEventNotFound
	}
	delete(m.events, id)
	return nil
}

type mockRegistrationRepository struct {
	regByEventAndUser map[string]*domain.EventRegistration
	regsByEvent       map[string][]*domain.EventRegistration
	registerErr       error
	err               error

	registerCalls int
}

func (m *mockRegistrationRepository) Register(ctx context.Context, eventID, userID string, registeredAt time.Time) (*domain.EventRegistration, error) {
	m.registerCalls++
	if m.registerErr != nil {
		return nil, m.registerErr
	}
	return &domain.EventRegistration{ID: "new-reg", EventID: eventID, UserID: userID, RegisteredAt: registeredAt}, nil
}

func (m *mockRegistrationRepository) GetByEventAndUser(ctx context.Context, eventID, userID string) (*domain.EventRegistration, error) {
	if m.err != nil {
		return nil, m.err
	}
	if reg, ok := m.regByEventAndUser[eventID+":"+userID]; ok {
		return reg, nil
	}
	return nil, domain.ErrRegistrationNotFound
}

func (m *mockRegistrationRepository) ListByEventID(ctx context.Context, eventID string) ([]*domain.EventRegistration, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.regsByEvent[eventID], nil
}

func strptr(s string) *string { return &s }
func intptr(i int) *int       { return &i }

func completeStudent(id string) *domain.User {
	year, sem := 2, 4
	return &domain.User{
		ID:                  id,
		Name:                "Student " + id,
		Email:               id + "@college.edu",
		Role:                domain.RoleStudent,
		PhoneNumber:         strptr("9876543210"),
		EnrollmentNumber:    strptr("EN-" + id),
		Class:               strptr("CSE-A"),
		Year:                &year,
		Semester:            &sem,
		HasCompletedProfile: true,
	}
}

func TestRegistrationService_RegisterForEvent(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	openEvent := func() *domain.Event {
		return &domain.Event{
			ID:                   "e1",
			Name:                 "Tech Symposium",
			Date:                 now.Add(48 * time.Hour),
			Time:                 "10:00 AM",
			Venue:                "Main Auditorium",
			OrganizerID:          "org1",
			TotalSeats:           50,
			AvailableSeats:       10,
			RegistrationDeadline: now.Add(24 * time.Hour),
		}
	}

	tests := []struct {
		name     string
		userRepo *mockUserRepository
		evRepo   *mockEventRepository
		regRepo  *mockRegistrationRepository
		eventID  string
		userID   string
		now      time.Time
		wantErr  error
	}{
		{
			name:     "user not found",
			userRepo: &mockUserRepository{usersByID: map[string]*domain.User{}},
			evRepo:   &mockEventRepository{events: map[string]*domain.Event{"e1": openEvent()}},
			regRepo:  &mockRegistrationRepository{},
			eventID:  "e1",
			userID:   "ghost",
			now:      now,
			wantErr:  domain.ErrUserNotFound,
		},
		{
			name: "organizer cannot register",
			userRepo: &mockUserRepository{usersByID: map[string]*domain.User{
				"u1": {ID: "u1", Role: domain.RoleFaculty},
			}},
			evRepo:  &mockEventRepository{events: map[string]*domain.Event{"e1": openEvent()}},
			regRepo: &mockRegistrationRepository{},
			eventID: "e1",
			userID:  "u1",
			now:     now,
			wantErr: domain.ErrStudentOnly,
		},
		{
			name: "incomplete profile blocks registration",
			userRepo: &mockUserRepository{usersByID: map[string]*domain.User{
				"u1": {ID: "u1", Role: domain.RoleStudent, HasCompletedProfile: false},
			}},
			evRepo:  &mockEventRepository{events: map[string]*domain.Event{"e1": openEvent()}},
			regRepo: &mockRegistrationRepository{},
			eventID: "e1",
			userID:  "u1",
			now:     now,
			wantErr: domain.ErrProfileRequired,
		},
		{
			name:     "event not found",
			userRepo: &mockUserRepository{usersByID: map[string]*domain.User{"u1": completeStudent("u1")}},
			evRepo:   &mockEventRepository{events: map[string]*domain.Event{}},
			regRepo:  &mockRegistrationRepository{},
			eventID:  "missing",
			userID:   "u1",
			now:      now,
			wantErr:  domain.ErrEventNotFound,
		},
		{
			name:     "deadline passed",
			userRepo: &mockUserRepository{usersByID: map[string]*domain.User{"u1": completeStudent("u1")}},
			evRepo:   &mockEventRepository{events: map[string]*domain.Event{"e1": openEvent()}},
			regRepo:  &mockRegistrationRepository{},
			eventID:  "e1",
			userID:   "u1",
			now:      now.Add(25 * time.Hour),
			wantErr:  domain.ErrRegistrationClosed,
		},
		{
			name:     "deadline instant itself is closed",
			userRepo: &mockUserRepository{usersByID: map[string]*domain.User{"u1": completeStudent("u1")}},
			evRepo:   &mockEventRepository{events: map[string]*domain.Event{"e1": openEvent()}},
			regRepo:  &mockRegistrationRepository{},
			eventID:  "e1",
			userID:   "u1",
			now:      now.Add(24 * time.Hour),
			wantErr:  domain.ErrRegistrationClosed,
		},
		{
			name:     "event full",
			userRepo: &mockUserRepository{usersByID: map[string]*domain.User{"u1": completeStudent("u1")}},
			evRepo: &mockEventRepository{events: map[string]*domain.Event{"e1": func() *domain.Event {
				ev := openEvent()
				ev.AvailableSeats = 0
				return ev
			}()}},
			regRepo: &mockRegistrationRepository{},
			eventID: "e1",
			userID:  "u1",
			now:     now,
			wantErr: domain.ErrEventFull,
		},
		{
			name:     "duplicate registration",
			userRepo: &mockUserRepository{usersByID: map[string]*domain.User{"u1": completeStudent("u1")}},
			evRepo:   &mockEventRepository{events: map[string]*domain.Event{"e1": openEvent()}},
			regRepo: &mockRegistrationRepository{
				regByEventAndUser: map[string]*domain.EventRegistration{
					"e1:u1": {ID: "r1", EventID: "e1", UserID: "u1"},
				},
			},
			eventID: "e1",
			userID:  "u1",
			now:     now,
			wantErr: domain.ErrAlreadyRegistered,
		},
		{
			name:     "success",
			userRepo: &mockUserRepository{usersByID: map[string]*domain.User{"u1": completeStudent("u1")}},
			evRepo:   &mockEventRepository{events: map[string]*domain.Event{"e1": openEvent()}},
			regRepo:  &mockRegistrationRepository{},
			eventID:  "e1",
			userID:   "u1",
			now:      now,
			wantErr:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &registrationService{
				userRepo:         tt.userRepo,
				eventRepo:        tt.evRepo,
				registrationRepo: tt.regRepo,
				now:              func() time.Time { return tt.now },
			}
			got, err := svc.RegisterForEvent(context.Background(), tt.eventID, tt.userID)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				if tt.regRepo.registerCalls != 0 {
					t.Errorf("expected no Register call on rejection, got %d", tt.regRepo.registerCalls)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got == nil {
				t.Fatal("expected non-nil confirmation")
			}
			if got.EventID != "e1" || got.Name != "Tech Symposium" || got.Venue != "Main Auditorium" {
				t.Errorf("unexpected confirmation: %+v", got)
			}
			if tt.regRepo.registerCalls != 1 {
				t.Errorf("expected exactly one Register call, got %d", tt.regRepo.registerCalls)
			}
		})
	}
}

func TestRegistrationService_RegisterForEvent_RepoConflict(t *testing.T) {
	// A concurrent registrant can win the row lock between the pre-flight
	// checks and the booking transaction; the repository error comes back as-is.
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	svc := &registrationService{
		userRepo: &mockUserRepository{usersByID: map[string]*domain.User{"u1": completeStudent("u1")}},
		eventRepo: &mockEventRepository{events: map[string]*domain.Event{
			"e1": {ID: "e1", Name: "Workshop", TotalSeats: 1, AvailableSeats: 1, RegistrationDeadline: now.Add(time.Hour)},
		}},
		registrationRepo: &mockRegistrationRepository{registerErr: domain.ErrEventFull},
		now:              func() time.Time { return now },
	}
	_, err := svc.RegisterForEvent(context.Background(), "e1", "u1")
	if !errors.Is(err, domain.ErrEventFull) {
		t.Fatalf("expected ErrEventFull, got %v", err)
	}
}

func TestRegistrationService_ListEventRegistrations(t *testing.T) {
	now := time.Now()
	event := &domain.Event{ID: "e1", Name: "Hackathon", OrganizerID: "org1"}

	t.Run("event not found", func(t *testing.T) {
		svc := &registrationService{
			userRepo:         &mockUserRepository{usersByID: map[string]*domain.User{}},
			eventRepo:        &mockEventRepository{events: map[string]*domain.Event{}},
			registrationRepo: &mockRegistrationRepository{},
			now:              time.Now,
		}
		_, err := svc.ListEventRegistrations(context.Background(), "missing", "org1")
		if !errors.Is(err, domain.ErrEventNotFound) {
			t.Fatalf("expected ErrEventNotFound, got %v", err)
		}
	})

	t.Run("only the organizer may view registrations", func(t *testing.T) {
		svc := &registrationService{
			userRepo:         &mockUserRepository{usersByID: map[string]*domain.User{}},
			eventRepo:        &mockEventRepository{events: map[string]*domain.Event{"e1": event}},
			registrationRepo: &mockRegistrationRepository{},
			now:              time.Now,
		}
		_, err := svc.ListEventRegistrations(context.Background(), "e1", "someone-else")
		if !errors.Is(err, domain.ErrForbidden) {
			t.Fatalf("expected ErrForbidden, got %v", err)
		}
	})

	t.Run("failed registrant lookup degrades the entry", func(t *testing.T) {
		svc := &registrationService{
			userRepo: &mockUserRepository{usersByID: map[string]*domain.User{
				"u1": completeStudent("u1"),
			}},
			eventRepo: &mockEventRepository{events: map[string]*domain.Event{"e1": event}},
			registrationRepo: &mockRegistrationRepository{
				regsByEvent: map[string][]*domain.EventRegistration{
					"e1": {
						{ID: "r1", EventID: "e1", UserID: "u1", RegisteredAt: now},
						{ID: "r2", EventID: "e1", UserID: "deleted-user", RegisteredAt: now},
					},
				},
			},
			now: time.Now,
		}
		got, err := svc.ListEventRegistrations(context.Background(), "e1", "org1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("expected 2 entries, got %d", len(got))
		}
		if got[0].User == nil || got[0].User.Email != "u1@college.edu" {
			t.Errorf("expected resolved registrant, got %+v", got[0])
		}
		if got[1].User != nil || got[1].Error == "" {
			t.Errorf("expected degraded entry with error marker, got %+v", got[1])
		}
	})
}

func TestRegistrationService_ListUserRegisteredEvents(t *testing.T) {
	t.Run("user not found", func(t *testing.T) {
		svc := &registrationService{
			userRepo:         &mockUserRepository{usersByID: map[string]*domain.User{}},
			eventRepo:        &mockEventRepository{},
			registrationRepo: &mockRegistrationRepository{},
			now:              time.Now,
		}
		_, err := svc.ListUserRegisteredEvents(context.Background(), "ghost")
		if !errors.Is(err, domain.ErrUserNotFound) {
			t.Fatalf("expected ErrUserNotFound, got %v", err)
		}
	})

	t.Run("returns registered events", func(t *testing.T) {
		svc := &registrationService{
			userRepo: &mockUserRepository{usersByID: map[string]*domain.User{"u1": completeStudent("u1")}},
			eventRepo: &mockEventRepository{
				byUser: map[string][]*domain.Event{
					"u1": {{ID: "e1"}, {ID: "e2"}},
				},
			},
			registrationRepo: &mockRegistrationRepository{},
			now:              time.Now,
		}
		got, err := svc.ListUserRegisteredEvents(context.Background(), "u1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("expected 2 events, got %d", len(got))
		}
	})
}

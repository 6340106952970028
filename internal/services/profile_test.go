package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"campusevents/internal/domain"
)

func validProfile() *domain.Profile {
	return &domain.Profile{
		PhoneNumber:      "9876543210",
		EnrollmentNumber: "EN-2024-001",
		Birthdate:        time.Date(2005, 6, 15, 0, 0, 0, 0, time.UTC),
		Class:            "CSE-A",
		Year:             2,
		Semester:         4,
	}
}

func TestProfileService_CreateProfile(t *testing.T) {
	tests := []struct {
		name     string
		userRepo *mockUserRepository
		userID   string
		mutate   func(*domain.Profile)
		wantErr  error
	}{
		{
			name:     "user not found",
			userRepo: &mockUserRepository{usersByID: map[string]*domain.User{}},
			userID:   "ghost",
			wantErr:  domain.ErrUserNotFound,
		},
		{
			name: "organizers have no student profile",
			userRepo: &mockUserRepository{usersByID: map[string]*domain.User{
				"u1": {ID: "u1", Role: domain.RoleFaculty},
			}},
			userID:  "u1",
			wantErr: domain.ErrStudentOnly,
		},
		{
			name: "profile already exists",
			userRepo: &mockUserRepository{usersByID: map[string]*domain.User{
				"u1": completeStudent("u1"),
			}},
			userID:  "u1",
			wantErr: domain.ErrProfileExists,
		},
		{
			name: "missing phone number",
			userRepo: &mockUserRepository{usersByID: map[string]*domain.User{
				"u1": {ID: "u1", Role: domain.RoleStudent},
			}},
			userID:  "u1",
			mutate:  func(p *domain.Profile) { p.PhoneNumber = "" },
			wantErr: domain.ErrInvalidInput,
		},
		{
			name: "year out of range",
			userRepo: &mockUserRepository{usersByID: map[string]*domain.User{
				"u1": {ID: "u1", Role: domain.RoleStudent},
			}},
			userID:  "u1",
			mutate:  func(p *domain.Profile) { p.Year = 7 },
			wantErr: domain.ErrInvalidInput,
		},
		{
			name: "semester out of range",
			userRepo: &mockUserRepository{usersByID: map[string]*domain.User{
				"u1": {ID: "u1", Role: domain.RoleStudent},
			}},
			userID:  "u1",
			mutate:  func(p *domain.Profile) { p.Semester = 0 },
			wantErr: domain.ErrInvalidInput,
		},
		{
			name: "success marks profile complete",
			userRepo: &mockUserRepository{usersByID: map[string]*domain.User{
				"u1": {ID: "u1", Name: "Asha", Role: domain.RoleStudent},
			}},
			userID:  "u1",
			wantErr: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &profileService{userRepo: tt.userRepo}
			p := validProfile()
			if tt.mutate != nil {
				tt.mutate(p)
			}
			got, err := svc.CreateProfile(context.Background(), tt.userID, p)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.HasCompletedProfile {
				t.Error("expected profile to be marked complete")
			}
			if tt.userRepo.updatedProfiles[tt.userID] == nil {
				t.Error("expected profile to be persisted")
			}
		})
	}
}

func TestProfileService_GetProfile(t *testing.T) {
	t.Run("incomplete profile reports not found", func(t *testing.T) {
		svc := &profileService{userRepo: &mockUserRepository{usersByID: map[string]*domain.User{
			"u1": {ID: "u1", Role: domain.RoleStudent, HasCompletedProfile: false},
		}}}
		_, err := svc.GetProfile(context.Background(), "u1")
		if !errors.Is(err, domain.ErrProfileNotFound) {
			t.Fatalf("expected ErrProfileNotFound, got %v", err)
		}
	})

	t.Run("complete profile returned", func(t *testing.T) {
		svc := &profileService{userRepo: &mockUserRepository{usersByID: map[string]*domain.User{
			"u1": completeStudent("u1"),
		}}}
		got, err := svc.GetProfile(context.Background(), "u1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.PhoneNumber == nil {
			t.Error("expected profile fields to be present")
		}
	})
}

func TestProfileService_ChangeUserRole(t *testing.T) {
	tests := []struct {
		name        string
		userRepo    *mockUserRepository
		requesterID string
		email       string
		newRole     domain.Role
		wantErr     error
	}{
		{
			name: "non-admin forbidden",
			userRepo: &mockUserRepository{
				usersByID: map[string]*domain.User{
					"u1": {ID: "u1", Role: domain.RoleFaculty},
				},
			},
			requesterID: "u1",
			email:       "target@college.edu",
			newRole:     domain.RoleISTE,
			wantErr:     domain.ErrForbidden,
		},
		{
			name: "unknown role rejected",
			userRepo: &mockUserRepository{
				usersByID: map[string]*domain.User{
					"admin": {ID: "admin", Role: domain.RoleAdmin},
				},
			},
			requesterID: "admin",
			email:       "target@college.edu",
			newRole:     "Superuser",
			wantErr:     domain.ErrInvalidInput,
		},
		{
			name: "target not found",
			userRepo: &mockUserRepository{
				usersByID: map[string]*domain.User{
					"admin": {ID: "admin", Role: domain.RoleAdmin},
				},
				usersByEmail: map[string]*domain.User{},
			},
			requesterID: "admin",
			email:       "nobody@college.edu",
			newRole:     domain.RoleISTE,
			wantErr:     domain.ErrUserNotFound,
		},
		{
			name: "success",
			userRepo: &mockUserRepository{
				usersByID: map[string]*domain.User{
					"admin": {ID: "admin", Role: domain.RoleAdmin},
					"u2":    {ID: "u2", Role: domain.RoleStudent},
				},
				usersByEmail: map[string]*domain.User{
					"target@college.edu": {ID: "u2", Role: domain.RoleStudent},
				},
			},
			requesterID: "admin",
			email:       "Target@College.edu",
			newRole:     domain.RoleIEEE,
			wantErr:     nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &profileService{userRepo: tt.userRepo}
			got, err := svc.ChangeUserRole(context.Background(), tt.requesterID, tt.email, tt.newRole)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Role != tt.newRole {
				t.Errorf("expected role %q, got %q", tt.newRole, got.Role)
			}
		})
	}
}

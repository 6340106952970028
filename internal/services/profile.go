package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"campusevents/internal/domain"
)

type profileService struct {
	userRepo domain.UserRepository
}

// NewProfileService creates a ProfileService with the given user repository.
func NewProfileService(userRepo domain.UserRepository) domain.ProfileService {
	return &profileService{userRepo: userRepo}
}

// CreateProfile records the mandatory student profile fields and marks the
// profile complete, which opens the registration gate for the student.
func (s *profileService) CreateProfile(ctx context.Context, userID string, p *domain.Profile) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user.Role != domain.RoleStudent {
		return nil, domain.ErrStudentOnly
	}
	if user.HasCompletedProfile {
		return nil, domain.ErrProfileExists
	}
	if err := validateProfile(p); err != nil {
		return nil, err
	}
	if err := s.userRepo.UpdateProfile(ctx, userID, p); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return s.userRepo.GetByID(ctx, userID)
}

func (s *profileService) GetProfile(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user.Role != domain.RoleStudent {
		return nil, domain.ErrStudentOnly
	}
	if !user.HasCompletedProfile {
		return nil, domain.ErrProfileNotFound
	}
	return user, nil
}

func (s *profileService) UpdateProfile(ctx context.Context, userID string, p *domain.Profile) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user.Role != domain.RoleStudent {
		return nil, domain.ErrStudentOnly
	}
	if !user.HasCompletedProfile {
		return nil, domain.ErrProfileNotFound
	}
	if err := validateProfile(p); err != nil {
		return nil, err
	}
	if err := s.userRepo.UpdateProfile(ctx, userID, p); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return s.userRepo.GetByID(ctx, userID)
}

// ChangeUserRole moves a user to a new role. Admin only.
func (s *profileService) ChangeUserRole(ctx context.Context, requesterID, email string, newRole domain.Role) (*domain.User, error) {
	requester, err := s.userRepo.GetByID(ctx, requesterID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get requester: %w", err)
	}
	if requester.Role != domain.RoleAdmin {
		return nil, domain.ErrForbidden
	}
	if !newRole.Valid() {
		return nil, fmt.Errorf("unknown role %q: %w", newRole, domain.ErrInvalidInput)
	}
	target, err := s.userRepo.GetByEmail(ctx, strings.TrimSpace(strings.ToLower(email)))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if err := s.userRepo.UpdateRole(ctx, target.ID, newRole); err != nil {
		return nil, fmt.Errorf("failed to update role: %w", err)
	}
	return s.userRepo.GetByID(ctx, target.ID)
}

func validateProfile(p *domain.Profile) error {
	if p == nil {
		return fmt.Errorf("profile is required: %w", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(p.PhoneNumber) == "" {
		return fmt.Errorf("phone number is required: %w", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(p.EnrollmentNumber) == "" {
		return fmt.Errorf("enrollment number is required: %w", domain.ErrInvalidInput)
	}
	if p.Birthdate.IsZero() {
		return fmt.Errorf("birthdate is required: %w", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(p.Class) == "" {
		return fmt.Errorf("class is required: %w", domain.ErrInvalidInput)
	}
	if p.Year < 1 || p.Year > 5 {
		return fmt.Errorf("year must be between 1 and 5: %w", domain.ErrInvalidInput)
	}
	if p.Semester < 1 || p.Semester > 10 {
		return fmt.Errorf("semester must be between 1 and 10: %w", domain.ErrInvalidInput)
	}
	return nil
}

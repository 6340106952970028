package domain

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors for user operations.
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrDuplicateEmail     = errors.New("email already in use")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidResetCode   = errors.New("invalid or expired code")
	ErrProfileRequired    = errors.New("profile incomplete")
	ErrProfileExists      = errors.New("profile already exists")
	ErrProfileNotFound    = errors.New("profile not found")
	ErrStudentOnly        = errors.New("only students can perform this action")
)

// Role is the closed set of application roles. Only Student participates in
// event registration; every other role is an organizer role.
type Role string

const (
	RoleStudent   Role = "Student"
	RoleFaculty   Role = "Faculty"
	RoleHOD       Role = "HOD"
	RolePrincipal Role = "Principal"
	RoleISTE      Role = "ISTE"
	RoleIEEE      Role = "IEEE"
	RoleETTC      Role = "ETTC"
	RoleAdmin     Role = "Admin"
)

// Roles lists every valid role.
func Roles() []Role {
	return []Role{RoleStudent, RoleFaculty, RoleHOD, RolePrincipal, RoleISTE, RoleIEEE, RoleETTC, RoleAdmin}
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	for _, known := range Roles() {
		if r == known {
			return true
		}
	}
	return false
}

// IsOrganizer reports whether r may create and manage events.
func (r Role) IsOrganizer() bool {
	return r.Valid() && r != RoleStudent
}

// User represents an account in the campus system. The profile fields are nil
// until a student completes their profile.
// swagger:model User
type User struct {
	ID                  string     `json:"id"`
	Name                string     `json:"name"`
	Email               string     `json:"email"`
	PasswordHash        string     `json:"-"`
	Salt                string     `json:"-"`
	Role                Role       `json:"role"`
	PhoneNumber         *string    `json:"phone_number,omitempty"`
	EnrollmentNumber    *string    `json:"enrollment_number,omitempty"`
	Birthdate           *time.Time `json:"birthdate,omitempty"`
	Class               *string    `json:"class,omitempty"`
	Year                *int       `json:"year,omitempty"`
	Semester            *int       `json:"semester,omitempty"`
	HasCompletedProfile bool       `json:"has_completed_profile"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// NewUser returns a new User with the given fields. ID is typically set by the
// repository on create.
func NewUser(name, email string, role Role, createdAt, updatedAt time.Time) *User {
	return &User{
		Name:      name,
		Email:     email,
		Role:      role,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}
}

// Profile holds the mandatory student profile fields. A student must supply
// all of them before registering for events.
// swagger:model Profile
type Profile struct {
	PhoneNumber      string    `json:"phone_number"`
	EnrollmentNumber string    `json:"enrollment_number"`
	Birthdate        time.Time `json:"birthdate"`
	Class            string    `json:"class"`
	Year             int       `json:"year"`
	Semester         int       `json:"semester"`
}

// CheckEligible is the profile gate: it reports whether the user may register
// for events. Non-students pass unconditionally; students must have completed
// their profile. Pure read, no side effects.
func CheckEligible(u *User) error {
	if u.Role != RoleStudent {
		return nil
	}
	if !u.HasCompletedProfile {
		return ErrProfileRequired
	}
	return nil
}

// PasswordHasher handles salt generation, hashing, and verification.
// Implementations may use bcrypt, argon2, etc.
type PasswordHasher interface {
	GenerateSalt() (string, error)
	Hash(salt, password string) (hash string, err error)
	Compare(hash, salt, password string) error
}

// TokenIssuer issues tokens (e.g. JWT) for an authenticated user.
type TokenIssuer interface {
	Issue(userID, email string, role Role, expiry time.Duration) (string, error)
}

// TokenVerifier verifies a token and returns the authenticated user ID.
type TokenVerifier interface {
	Verify(token string) (userID string, err error)
}

// UserRepository defines the interface for user storage.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	UpdateProfile(ctx context.Context, userID string, p *Profile) error
	UpdatePassword(ctx context.Context, userID, passwordHash, salt string) error
	UpdateRole(ctx context.Context, userID string, role Role) error
}

// PasswordResetCodeRepository stores hashed one-time password reset codes.
type PasswordResetCodeRepository interface {
	Create(ctx context.Context, email, codeHash string, expiresAt time.Time) error
	Consume(ctx context.Context, email, codeHash string) (consumed bool, err error)
}

// AuthService defines signup, signin, and password recovery.
type AuthService interface {
	SignUp(ctx context.Context, name, email, password string) (*User, error)
	SignIn(ctx context.Context, email, password string) (token string, user *User, err error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, email, code, newPassword string) error
	GetByID(ctx context.Context, id string) (*User, error)
}

// ProfileService defines student profile management.
type ProfileService interface {
	CreateProfile(ctx context.Context, userID string, p *Profile) (*User, error)
	GetProfile(ctx context.Context, userID string) (*User, error)
	UpdateProfile(ctx context.Context, userID string, p *Profile) (*User, error)
	ChangeUserRole(ctx context.Context, requesterID, email string, newRole Role) (*User, error)
}

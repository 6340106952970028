package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"campusevents/internal/domain"
)

const uniqueViolation = "23505"

type userRepository struct {
	DB *sql.DB
}

// NewUserRepository returns a domain.UserRepository implemented with Postgres.
func NewUserRepository(db *sql.DB) domain.UserRepository {
	return &userRepository{DB: db}
}

func (r *userRepository) Create(ctx context.Context, u *domain.User) error {
	query := `
		INSERT INTO users (name, email, password_hash, salt, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query, u.Name, u.Email, u.PasswordHash, u.Salt, string(u.Role), u.CreatedAt, u.UpdatedAt).Scan(&u.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return domain.ErrDuplicateEmail
		}
		return err
	}
	return nil
}

const userColumns = `
	id, name, email, password_hash, salt, role,
	phone_number, enrollment_number, birthdate, class, year, semester,
	has_completed_profile, created_at, updated_at
`

func scanUser(row *sql.Row) (*domain.User, error) {
	u := &domain.User{}
	var role string
	var phoneNull, enrollNull, classNull sql.NullString
	var birthNull sql.NullTime
	var yearNull, semesterNull sql.NullInt64
	err := row.Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Salt, &role,
		&phoneNull, &enrollNull, &birthNull, &classNull, &yearNull, &semesterNull,
		&u.HasCompletedProfile, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	u.Role = domain.Role(role)
	if phoneNull.Valid {
		u.PhoneNumber = &phoneNull.String
	}
	if enrollNull.Valid {
		u.EnrollmentNumber = &enrollNull.String
	}
	if birthNull.Valid {
		u.Birthdate = &birthNull.Time
	}
	if classNull.Valid {
		u.Class = &classNull.String
	}
	if yearNull.Valid {
		year := int(yearNull.Int64)
		u.Year = &year
	}
	if semesterNull.Valid {
		semester := int(semesterNull.Int64)
		u.Semester = &semester
	}
	return u, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(r.DB.QueryRowContext(ctx, query, email))
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.DB.QueryRowContext(ctx, query, id))
}

func (r *userRepository) UpdateProfile(ctx context.Context, userID string, p *domain.Profile) error {
	query := `
		UPDATE users
		SET phone_number = $1, enrollment_number = $2, birthdate = $3,
		    class = $4, year = $5, semester = $6,
		    has_completed_profile = TRUE, updated_at = NOW()
		WHERE id = $7
	`
	result, err := r.DB.ExecContext(ctx, query,
		p.PhoneNumber, p.EnrollmentNumber, p.Birthdate, p.Class, p.Year, p.Semester, userID)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *userRepository) UpdatePassword(ctx context.Context, userID, passwordHash, salt string) error {
	query := `UPDATE users SET password_hash = $1, salt = $2, updated_at = NOW() WHERE id = $3`
	result, err := r.DB.ExecContext(ctx, query, passwordHash, salt, userID)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *userRepository) UpdateRole(ctx context.Context, userID string, role domain.Role) error {
	query := `UPDATE users SET role = $1, updated_at = NOW() WHERE id = $2`
	result, err := r.DB.ExecContext(ctx, query, string(role), userID)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

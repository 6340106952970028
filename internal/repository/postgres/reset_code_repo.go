package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"campusevents/internal/domain"
)

type resetCodeRepository struct {
	DB *sql.DB
}

// NewResetCodeRepository returns a domain.PasswordResetCodeRepository implemented with Postgres.
func NewResetCodeRepository(db *sql.DB) domain.PasswordResetCodeRepository {
	return &resetCodeRepository{DB: db}
}

func (r *resetCodeRepository) Create(ctx context.Context, email, codeHash string, expiresAt time.Time) error {
	query := `
		INSERT INTO password_reset_codes (email, code_hash, expires_at)
		VALUES ($1, $2, $3)
	`
	_, err := r.DB.ExecContext(ctx, query, email, codeHash, expiresAt)
	return err
}

// Consume deletes the matching unexpired code and reports whether one
// existed. A single DELETE .. RETURNING keeps consumption atomic, so two
// concurrent attempts with the same code cannot both succeed.
func (r *resetCodeRepository) Consume(ctx context.Context, email, codeHash string) (consumed bool, err error) {
	query := `
		DELETE FROM password_reset_codes
		WHERE email = $1 AND code_hash = $2 AND expires_at > NOW()
		RETURNING id
	`
	var id string
	err = r.DB.QueryRowContext(ctx, query, email, codeHash).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"campusevents/internal/domain"
)

type registrationRepository struct {
	DB *sql.DB
}

// NewRegistrationRepository returns a domain.RegistrationRepository implemented with Postgres.
func NewRegistrationRepository(db *sql.DB) domain.RegistrationRepository {
	return &registrationRepository{DB: db}
}

// Register books one seat atomically. Correctness under concurrent requests
// comes from the database, not process-local locks: the event row is locked
// with SELECT ... FOR UPDATE, so two racing registrations for the last seat
// serialize on the row lock and the loser sees zero available seats. The seat
// decrement and the registration insert commit together or not at all, which
// keeps the event-side and user-side views of the relationship consistent.
func (r *registrationRepository) Register(ctx context.Context, eventID, userID string, registeredAt time.Time) (*domain.EventRegistration, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var availableSeats int
	err = tx.QueryRowContext(ctx,
		`SELECT available_seats FROM events WHERE id = $1 FOR UPDATE`,
		eventID,
	).Scan(&availableSeats)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrEventNotFound
		}
		return nil, fmt.Errorf("lock event row: %w", err)
	}

	// Re-check the duplicate under the lock; the pre-flight check in the
	// service can race with another request by the same user.
	var exists bool
	err = tx.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM event_registrations WHERE event_id = $1 AND user_id = $2)`,
		eventID, userID,
	).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("check duplicate registration: %w", err)
	}
	if exists {
		err = domain.ErrAlreadyRegistered
		return nil, err
	}

	if availableSeats <= 0 {
		err = domain.ErrEventFull
		return nil, err
	}

	if _, err = tx.ExecContext(ctx,
		`UPDATE events SET available_seats = available_seats - 1, updated_at = NOW() WHERE id = $1`,
		eventID,
	); err != nil {
		return nil, fmt.Errorf("decrement available seats: %w", err)
	}

	reg := &domain.EventRegistration{
		ID:           uuid.New().String(),
		EventID:      eventID,
		UserID:       userID,
		RegisteredAt: registeredAt,
	}
	if _, err = tx.ExecContext(ctx,
		`INSERT INTO event_registrations (id, event_id, user_id, registered_at)
		 VALUES ($1, $2, $3, $4)`,
		reg.ID, reg.EventID, reg.UserID, reg.RegisteredAt,
	); err != nil {
		return nil, fmt.Errorf("insert registration: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	return reg, nil
}

func (r *registrationRepository) GetByEventAndUser(ctx context.Context, eventID, userID string) (*domain.EventRegistration, error) {
	query := `
		SELECT id, event_id, user_id, registered_at
		FROM event_registrations
		WHERE event_id = $1 AND user_id = $2
	`
	reg := &domain.EventRegistration{}
	err := r.DB.QueryRowContext(ctx, query, eventID, userID).
		Scan(&reg.ID, &reg.EventID, &reg.UserID, &reg.RegisteredAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrRegistrationNotFound
		}
		return nil, err
	}
	return reg, nil
}

func (r *registrationRepository) ListByEventID(ctx context.Context, eventID string) ([]*domain.EventRegistration, error) {
	query := `
		SELECT id, event_id, user_id, registered_at
		FROM event_registrations
		WHERE event_id = $1
		ORDER BY registered_at ASC
	`
	rows, err := r.DB.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	regs := make([]*domain.EventRegistration, 0)
	for rows.Next() {
		reg := &domain.EventRegistration{}
		if err := rows.Scan(&reg.ID, &reg.EventID, &reg.UserID, &reg.RegisteredAt); err != nil {
			return nil, err
		}
		regs = append(regs, reg)
	}
	return regs, rows.Err()
}

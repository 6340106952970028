package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"campusevents/internal/domain"
)

type eventRepository struct {
	DB *sql.DB
}

// NewEventRepository returns a domain.EventRepository implemented with Postgres.
func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{DB: db}
}

const eventColumns = `
	id, name, description, date, time, venue, organized_by, organizer_id,
	price, total_seats, available_seats, category, registration_deadline,
	is_expired, contact_email, contact_phone, tags, created_at, updated_at
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (*domain.Event, error) {
	e := &domain.Event{}
	var category string
	err := row.Scan(
		&e.ID, &e.Name, &e.Description, &e.Date, &e.Time, &e.Venue, &e.OrganizedBy, &e.OrganizerID,
		&e.Price, &e.TotalSeats, &e.AvailableSeats, &category, &e.RegistrationDeadline,
		&e.IsExpired, &e.ContactEmail, &e.ContactPhone, pq.Array(&e.Tags), &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrEventNotFound
		}
		return nil, err
	}
	e.Category = domain.Category(category)
	if e.Tags == nil {
		e.Tags = []string{}
	}
	return e, nil
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	query := `
		INSERT INTO events (
			name, description, date, time, venue, organized_by, organizer_id,
			price, total_seats, available_seats, category, registration_deadline,
			is_expired, contact_email, contact_phone, tags, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query,
		e.Name, e.Description, e.Date, e.Time, e.Venue, e.OrganizedBy, e.OrganizerID,
		e.Price, e.TotalSeats, e.AvailableSeats, string(e.Category), e.RegistrationDeadline,
		e.IsExpired, e.ContactEmail, e.ContactPhone, pq.Array(e.Tags), e.CreatedAt, e.UpdatedAt,
	).Scan(&e.ID)
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`
	return scanEvent(r.DB.QueryRowContext(ctx, query, id))
}

func (r *eventRepository) List(ctx context.Context, filter domain.EventFilter) ([]*domain.Event, error) {
	whereClauses := []string{}
	args := []any{}
	n := 1
	if filter.Category != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("category = $%d", n))
		args = append(args, string(*filter.Category))
		n++
	}
	if filter.Expired != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("is_expired = $%d", n))
		args = append(args, *filter.Expired)
		n++
	}
	query := `SELECT ` + eventColumns + ` FROM events`
	if len(whereClauses) > 0 {
		query += " WHERE " + strings.Join(whereClauses, " AND ")
	}
	query += " ORDER BY date ASC"

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectEvents(rows)
}

func (r *eventRepository) ListByOrganizerID(ctx context.Context, organizerID string) ([]*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE organizer_id = $1 ORDER BY date ASC`
	rows, err := r.DB.QueryContext(ctx, query, organizerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectEvents(rows)
}

func (r *eventRepository) ListRegisteredByUserID(ctx context.Context, userID string) ([]*domain.Event, error) {
	query := `
		SELECT
			e.id, e.name, e.description, e.date, e.time, e.venue, e.organized_by, e.organizer_id,
			e.price, e.total_seats, e.available_seats, e.category, e.registration_deadline,
			e.is_expired, e.contact_email, e.contact_phone, e.tags, e.created_at, e.updated_at
		FROM events e
		JOIN event_registrations reg ON reg.event_id = e.id
		WHERE reg.user_id = $1
		ORDER BY reg.registered_at ASC
	`
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectEvents(rows)
}

func collectEvents(rows *sql.Rows) ([]*domain.Event, error) {
	events := make([]*domain.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// Update applies a partial edit inside a transaction. A totalSeats change is
// applied as a delta against the locked availableSeats so seats already
// consumed by registrants are never re-opened; a delta that would make
// availableSeats negative fails with ErrSeatUnderflow. is_expired is
// recomputed from the event date on every edit.
func (r *eventRepository) Update(ctx context.Context, eventID string, upd domain.EventUpdate) (*domain.Event, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var totalSeats, availableSeats int
	err = tx.QueryRowContext(ctx,
		`SELECT total_seats, available_seats FROM events WHERE id = $1 FOR UPDATE`,
		eventID,
	).Scan(&totalSeats, &availableSeats)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrEventNotFound
		}
		return nil, fmt.Errorf("lock event row: %w", err)
	}

	setClauses := []string{"updated_at = NOW()"}
	args := []any{}
	n := 1
	addClause := func(column string, value any) {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, n))
		args = append(args, value)
		n++
	}
	if upd.Name != nil {
		addClause("name", *upd.Name)
	}
	if upd.Description != nil {
		addClause("description", *upd.Description)
	}
	if upd.Date != nil {
		addClause("date", *upd.Date)
	}
	if upd.Time != nil {
		addClause("time", *upd.Time)
	}
	if upd.Venue != nil {
		addClause("venue", *upd.Venue)
	}
	if upd.OrganizedBy != nil {
		addClause("organized_by", *upd.OrganizedBy)
	}
	if upd.Price != nil {
		addClause("price", *upd.Price)
	}
	if upd.TotalSeats != nil {
		newAvailable := availableSeats + (*upd.TotalSeats - totalSeats)
		if newAvailable < 0 {
			err = domain.ErrSeatUnderflow
			return nil, err
		}
		addClause("total_seats", *upd.TotalSeats)
		addClause("available_seats", newAvailable)
	}
	if upd.Category != nil {
		addClause("category", string(*upd.Category))
	}
	if upd.RegistrationDeadline != nil {
		addClause("registration_deadline", *upd.RegistrationDeadline)
	}
	if upd.ContactEmail != nil {
		addClause("contact_email", *upd.ContactEmail)
	}
	if upd.ContactPhone != nil {
		addClause("contact_phone", *upd.ContactPhone)
	}
	if upd.Tags != nil {
		addClause("tags", pq.Array(upd.Tags))
	}

	args = append(args, eventID)
	query := fmt.Sprintf(`UPDATE events SET %s WHERE id = $%d`, strings.Join(setClauses, ", "), n)
	if _, err = tx.ExecContext(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}

	// Refresh the cached expiry flag against the (possibly new) event date.
	if _, err = tx.ExecContext(ctx,
		`UPDATE events SET is_expired = (date < NOW()) WHERE id = $1`, eventID); err != nil {
		return nil, fmt.Errorf("refresh expiry flag: %w", err)
	}

	var e *domain.Event
	e, err = scanEvent(tx.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1`, eventID))
	if err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	return e, nil
}

func (r *eventRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM events WHERE id = $1`
	result, err := r.DB.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrEventNotFound
	}
	return nil
}

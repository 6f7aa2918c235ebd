package calendar

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/keyxmakerx/calview/internal/apperror"
)

// EventRepository defines persistence operations for calendar events.
// Lists come back in insertion order.
type EventRepository interface {
	Create(ctx context.Context, evt *Event) error
	FindByID(ctx context.Context, id string) (*Event, error)
	Update(ctx context.Context, evt *Event) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]Event, error)
	ListRange(ctx context.Context, from, to time.Time) ([]Event, error)
}

// MariaDB error numbers the repository translates.
const (
	mysqlDuplicateEntry = 1062 // ER_DUP_ENTRY
	mysqlDataTooLong    = 1406 // ER_DATA_TOO_LONG
)

// eventRepo is the MariaDB implementation of EventRepository.
type eventRepo struct {
	db *sql.DB
}

// NewEventRepository creates a new MariaDB-backed event repository.
func NewEventRepository(db *sql.DB) EventRepository {
	return &eventRepo{db: db}
}

// eventCols is the column list for event queries.
const eventCols = `id, title, description, start_at, end_at, color, category`

// scanEvent reads a row into an Event struct.
func scanEvent(scanner interface{ Scan(...any) error }) (*Event, error) {
	evt := &Event{}
	err := scanner.Scan(
		&evt.ID, &evt.Title, &evt.Description,
		&evt.Start, &evt.End, &evt.Color, &evt.Category,
	)
	if err != nil {
		return nil, err
	}
	return evt, nil
}

// Create inserts a new event. A duplicate ID is a conflict.
func (r *eventRepo) Create(ctx context.Context, evt *Event) error {
	query := `INSERT INTO calendar_events (` + eventCols + `) VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		evt.ID, evt.Title, evt.Description, evt.Start, evt.End, evt.Color, evt.Category,
	)
	if err != nil {
		return writeError("insert event", err)
	}
	return nil
}

// writeError maps constraint failures to client errors so an import can
// count the row and carry on. Anything else stays an internal error.
func writeError(op string, err error) error {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case mysqlDuplicateEntry:
			return apperror.NewConflict("an event with this id already exists")
		case mysqlDataTooLong:
			return apperror.NewValidation("a field is longer than the store allows")
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

// FindByID returns the event with the given ID.
func (r *eventRepo) FindByID(ctx context.Context, id string) (*Event, error) {
	query := `SELECT ` + eventCols + ` FROM calendar_events WHERE id = ?`
	evt, err := scanEvent(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NewNotFound("event not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}
	return evt, nil
}

// Update overwrites every mutable column of an existing event.
func (r *eventRepo) Update(ctx context.Context, evt *Event) error {
	query := `UPDATE calendar_events
	          SET title = ?, description = ?, start_at = ?, end_at = ?, color = ?, category = ?
	          WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query,
		evt.Title, evt.Description, evt.Start, evt.End, evt.Color, evt.Category, evt.ID,
	)
	if err != nil {
		return writeError("update event", err)
	}
	return requireRow(res, "event not found")
}

// Delete removes an event by ID.
func (r *eventRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM calendar_events WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	return requireRow(res, "event not found")
}

// List returns every event in insertion order.
func (r *eventRepo) List(ctx context.Context) ([]Event, error) {
	query := `SELECT ` + eventCols + ` FROM calendar_events ORDER BY seq`
	return r.queryEvents(ctx, query)
}

// ListRange returns events whose start or end falls in [from, to] or whose
// span covers it, in insertion order.
func (r *eventRepo) ListRange(ctx context.Context, from, to time.Time) ([]Event, error) {
	query := `SELECT ` + eventCols + ` FROM calendar_events
	          WHERE (start_at BETWEEN ? AND ?)
	             OR (end_at BETWEEN ? AND ?)
	             OR (start_at <= ? AND end_at >= ?)
	          ORDER BY seq`
	return r.queryEvents(ctx, query, from, to, from, to, from, to)
}

func (r *eventRepo) queryEvents(ctx context.Context, query string, args ...any) ([]Event, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	events := make([]Event, 0)
	for rows.Next() {
		evt, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, *evt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return events, nil
}

// requireRow maps a zero-row update or delete to a not-found error. The
// DSN sets clientFoundRows, so an UPDATE that changes nothing still counts
// its matched row.
func requireRow(res sql.Result, notFound string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return apperror.NewNotFound(notFound)
	}
	return nil
}

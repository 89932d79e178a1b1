package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/sysu-ecnc-dev/staff-scheduler/backend/internal/domain"
)

const eventColumns = `
	id, title, to_char(date, 'YYYY-MM-DD'),
	to_char(start_time, 'HH24:MI'), to_char(end_time, 'HH24:MI'),
	status, created_by, assignee_ids, participant_ids, course_id
`

const toolRentalColumns = `
	id, tool_name, renter_id,
	to_char(rental_start_date, 'YYYY-MM-DD'), to_char(rental_end_date, 'YYYY-MM-DD'),
	to_char(pickup_time, 'HH24:MI'), to_char(return_time, 'HH24:MI'),
	status
`

func scanEvent(row pgx.Row) (*domain.Event, error) {
	e := &domain.Event{}
	dst := []any{
		&e.ID, &e.Title, &e.Date,
		&e.StartTime, &e.EndTime,
		&e.Status, &e.CreatedBy, &e.AssigneeIDs, &e.ParticipantIDs, &e.CourseID,
	}
	if err := row.Scan(dst...); err != nil {
		return nil, translateError(err)
	}
	return e, nil
}

func scanToolRental(row pgx.Row) (*domain.ToolRental, error) {
	t := &domain.ToolRental{}
	dst := []any{
		&t.ID, &t.ToolName, &t.RenterID,
		&t.RentalStartDate, &t.RentalEndDate,
		&t.PickupTime, &t.ReturnTime,
		&t.Status,
	}
	if err := row.Scan(dst...); err != nil {
		return nil, translateError(err)
	}
	return t, nil
}

// ListEventsBetween 返回 [from, to] 内的活动，可见性由 calendar 包判断
func (r *Repository) ListEventsBetween(ctx context.Context, from, to string) ([]*domain.Event, error) {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	query := `SELECT` + eventColumns + `FROM events WHERE date BETWEEN $1 AND $2 ORDER BY date, start_time, id`

	rows, err := r.dbpool.Query(ctx, query, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]*domain.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return events, nil
}

// ListToolRentalsBetween 返回租借区间与 [from, to] 相交且尚未归还的租借
func (r *Repository) ListToolRentalsBetween(ctx context.Context, from, to string) ([]*domain.ToolRental, error) {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	query := `SELECT` + toolRentalColumns + `
		FROM tool_rentals
		WHERE rental_start_date <= $2 AND rental_end_date >= $1 AND status <> 'returned'
		ORDER BY rental_start_date, id
	`

	rows, err := r.dbpool.Query(ctx, query, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rentals := make([]*domain.ToolRental, 0)
	for rows.Next() {
		t, err := scanToolRental(rows)
		if err != nil {
			return nil, err
		}
		rentals = append(rentals, t)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return rentals, nil
}

func (r *Repository) CreateEvent(ctx context.Context, e *domain.Event) error {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	query := `
		INSERT INTO events (title, date, start_time, end_time, status, created_by, assignee_ids, participant_ids, course_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`

	args := []any{e.Title, e.Date, e.StartTime, e.EndTime, e.Status, e.CreatedBy, e.AssigneeIDs, e.ParticipantIDs, e.CourseID}
	if err := r.dbpool.QueryRow(ctx, query, args...).Scan(&e.ID); err != nil {
		return translateError(err)
	}

	return nil
}

func (r *Repository) CreateToolRental(ctx context.Context, t *domain.ToolRental) error {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	query := `
		INSERT INTO tool_rentals (tool_name, renter_id, rental_start_date, rental_end_date, pickup_time, return_time, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	args := []any{t.ToolName, t.RenterID, t.RentalStartDate, t.RentalEndDate, t.PickupTime, t.ReturnTime, t.Status}
	if err := r.dbpool.QueryRow(ctx, query, args...).Scan(&t.ID); err != nil {
		return translateError(err)
	}

	return nil
}

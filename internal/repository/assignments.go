package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/sysu-ecnc-dev/staff-scheduler/backend/internal/domain"
)

const assignmentColumns = `
	id, shift_id, worker_id, to_char(date, 'YYYY-MM-DD'),
	time_slots, break_periods, notes, status,
	created_by, approved_by, created_at, updated_at, version
`

func scanAssignment(row pgx.Row) (*domain.Assignment, error) {
	a := &domain.Assignment{}
	dst := []any{
		&a.ID, &a.ShiftID, &a.WorkerID, &a.Date,
		&a.TimeSlots, &a.BreakPeriods, &a.Notes, &a.Status,
		&a.CreatedBy, &a.ApprovedBy, &a.CreatedAt, &a.UpdatedAt, &a.Version,
	}
	if err := row.Scan(dst...); err != nil {
		return nil, translateError(err)
	}
	if a.TimeSlots == nil {
		a.TimeSlots = []domain.TimeSlot{}
	}
	if a.BreakPeriods == nil {
		a.BreakPeriods = []domain.BreakPeriod{}
	}
	return a, nil
}

func collectAssignments(rows pgx.Rows) ([]*domain.Assignment, error) {
	defer rows.Close()

	assignments := make([]*domain.Assignment, 0)
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, err
		}
		assignments = append(assignments, a)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return assignments, nil
}

func (r *Repository) GetAssignment(ctx context.Context, id int64) (*domain.Assignment, error) {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	query := `SELECT` + assignmentColumns + `FROM assignments WHERE id = $1`

	return scanAssignment(r.dbpool.QueryRow(ctx, query, id))
}

// ListAssignmentsBetween 返回 [from, to] 内的所有排班，包括已拒绝的
func (r *Repository) ListAssignmentsBetween(ctx context.Context, from, to string) ([]*domain.Assignment, error) {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	query := `SELECT` + assignmentColumns + `FROM assignments WHERE date BETWEEN $1 AND $2 ORDER BY date, id`

	rows, err := r.dbpool.Query(ctx, query, from, to)
	if err != nil {
		return nil, err
	}

	return collectAssignments(rows)
}

func (r *Repository) ListAssignmentsForShift(ctx context.Context, shiftID int64, date string) ([]*domain.Assignment, error) {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	query := `SELECT` + assignmentColumns + `FROM assignments WHERE shift_id = $1 AND date = $2 ORDER BY id`

	rows, err := r.dbpool.Query(ctx, query, shiftID, date)
	if err != nil {
		return nil, err
	}

	return collectAssignments(rows)
}

// CreateAssignment 在一个可串行化事务中读取同一 (worker, shift, date) 的有效排班，
// 交给 guard 检查通过后再插入。部分唯一索引 assignments_active_unique 作为最后一道防线。
func (r *Repository) CreateAssignment(ctx context.Context, a *domain.Assignment, guard func(active []*domain.Assignment) error) error {
	err := r.withTx(ctx, serializable, func(ctx context.Context, tx pgx.Tx) error {
		query := `SELECT` + assignmentColumns + `
			FROM assignments
			WHERE worker_id = $1 AND shift_id = $2 AND date = $3 AND status <> 'rejected'
			FOR UPDATE
		`
		rows, err := tx.Query(ctx, query, a.WorkerID, a.ShiftID, a.Date)
		if err != nil {
			return err
		}
		active, err := collectAssignments(rows)
		if err != nil {
			return err
		}

		if err := guard(active); err != nil {
			return err
		}

		query = `
			INSERT INTO assignments (shift_id, worker_id, date, time_slots, break_periods, notes, status, created_by, approved_by)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			RETURNING id, created_at, updated_at, version
		`
		args := []any{a.ShiftID, a.WorkerID, a.Date, a.TimeSlots, a.BreakPeriods, a.Notes, a.Status, a.CreatedBy, a.ApprovedBy}
		if err := tx.QueryRow(ctx, query, args...).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt, &a.Version); err != nil {
			return translateError(err)
		}

		return nil
	})

	return conflictAsDuplicate(err)
}

// UpdateAssignment 锁定排班后交给 mutate 修改，再整体写回
func (r *Repository) UpdateAssignment(ctx context.Context, id int64, mutate func(a *domain.Assignment) error) (*domain.Assignment, error) {
	var updated *domain.Assignment

	err := r.withTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx pgx.Tx) error {
		query := `SELECT` + assignmentColumns + `FROM assignments WHERE id = $1 FOR UPDATE`
		a, err := scanAssignment(tx.QueryRow(ctx, query, id))
		if err != nil {
			return err
		}

		if err := mutate(a); err != nil {
			return err
		}

		query = `
			UPDATE assignments
			SET
				time_slots = $1,
				break_periods = $2,
				notes = $3,
				status = $4,
				approved_by = $5,
				updated_at = NOW(),
				version = version + 1
			WHERE id = $6 AND version = $7
			RETURNING updated_at, version
		`
		args := []any{a.TimeSlots, a.BreakPeriods, a.Notes, a.Status, a.ApprovedBy, a.ID, a.Version}
		if err := tx.QueryRow(ctx, query, args...).Scan(&a.UpdatedAt, &a.Version); err != nil {
			return translateError(err)
		}

		updated = a
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

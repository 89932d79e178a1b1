package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/sysu-ecnc-dev/staff-scheduler/backend/internal/domain"
)

const shiftTemplateColumns = `
	id, name, names,
	to_char(open_time, 'HH24:MI'), to_char(close_time, 'HH24:MI'),
	recurring_days, requirements, color, created_at, version
`

func scanShiftTemplate(row pgx.Row) (*domain.ShiftTemplate, error) {
	st := &domain.ShiftTemplate{}
	dst := []any{
		&st.ID, &st.Name, &st.Names,
		&st.OpenTime, &st.CloseTime,
		&st.RecurringDays, &st.Requirements, &st.Color, &st.CreatedAt, &st.Version,
	}
	if err := row.Scan(dst...); err != nil {
		return nil, translateError(err)
	}
	if st.RecurringDays == nil {
		st.RecurringDays = []int32{}
	}
	if st.Requirements == nil {
		st.Requirements = []domain.HourlyRequirement{}
	}
	return st, nil
}

func (r *Repository) GetAllShiftTemplates(ctx context.Context) ([]*domain.ShiftTemplate, error) {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	query := `SELECT` + shiftTemplateColumns + `FROM shift_templates ORDER BY open_time, id`

	rows, err := r.dbpool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	templates := make([]*domain.ShiftTemplate, 0)
	for rows.Next() {
		st, err := scanShiftTemplate(rows)
		if err != nil {
			return nil, err
		}
		templates = append(templates, st)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return templates, nil
}

func (r *Repository) GetShiftTemplate(ctx context.Context, id int64) (*domain.ShiftTemplate, error) {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	query := `SELECT` + shiftTemplateColumns + `FROM shift_templates WHERE id = $1`

	return scanShiftTemplate(r.dbpool.QueryRow(ctx, query, id))
}

func (r *Repository) CreateShiftTemplate(ctx context.Context, st *domain.ShiftTemplate) error {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	query := `
		INSERT INTO shift_templates (name, names, open_time, close_time, recurring_days, requirements, color)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, version
	`

	args := []any{st.Name, st.Names, st.OpenTime, st.CloseTime, st.RecurringDays, st.Requirements, st.Color}
	if err := r.dbpool.QueryRow(ctx, query, args...).Scan(&st.ID, &st.CreatedAt, &st.Version); err != nil {
		return translateError(err)
	}

	return nil
}

// UpdateShiftTemplate 使用 version 做乐观锁，版本不匹配时返回 ErrNotFound
func (r *Repository) UpdateShiftTemplate(ctx context.Context, st *domain.ShiftTemplate) error {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	query := `
		UPDATE shift_templates
		SET
			name = $1,
			names = $2,
			open_time = $3,
			close_time = $4,
			recurring_days = $5,
			requirements = $6,
			color = $7,
			version = version + 1
		WHERE id = $8 AND version = $9
		RETURNING created_at, version
	`

	args := []any{st.Name, st.Names, st.OpenTime, st.CloseTime, st.RecurringDays, st.Requirements, st.Color, st.ID, st.Version}
	if err := r.dbpool.QueryRow(ctx, query, args...).Scan(&st.CreatedAt, &st.Version); err != nil {
		return translateError(err)
	}

	return nil
}

func (r *Repository) DeleteShiftTemplate(ctx context.Context, id int64) error {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	query := `
		DELETE FROM shift_templates WHERE id = $1
	`

	tag, err := r.dbpool.Exec(ctx, query, id)
	if err != nil {
		return translateError(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}

	return nil
}

package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/sysu-ecnc-dev/staff-scheduler/backend/internal/domain"
)

const userColumns = `
	id, username, full_name, email,
	is_staff, worker_tag, instructor_tag, tool_handler_tag, manager_tag, rental_approved_tag,
	is_dev, is_active, created_at, version
`

func scanUser(row pgx.Row) (*domain.User, error) {
	user := &domain.User{}
	dst := []any{
		&user.ID, &user.Username, &user.FullName, &user.Email,
		&user.Tags.IsStaff, &user.Tags.WorkerTag, &user.Tags.InstructorTag, &user.Tags.ToolHandlerTag, &user.Tags.ManagerTag, &user.Tags.RentalApprovedTag,
		&user.IsDev, &user.IsActive, &user.CreatedAt, &user.Version,
	}
	if err := row.Scan(dst...); err != nil {
		return nil, translateError(err)
	}
	return user, nil
}

func (r *Repository) GetUserByID(ctx context.Context, id int64) (*domain.User, error) {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	query := `SELECT` + userColumns + `FROM users WHERE id = $1`

	return scanUser(r.dbpool.QueryRow(ctx, query, id))
}

func (r *Repository) GetAllUsers(ctx context.Context) ([]*domain.User, error) {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	query := `SELECT` + userColumns + `FROM users ORDER BY id`

	rows, err := r.dbpool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]*domain.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return users, nil
}

// CreateUser 不翻译唯一约束错误，调用方据此判断用户是否已经存在
func (r *Repository) CreateUser(ctx context.Context, user *domain.User) error {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	query := `
		INSERT INTO users (
			username, full_name, email,
			is_staff, worker_tag, instructor_tag, tool_handler_tag, manager_tag, rental_approved_tag,
			is_dev
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, is_active, created_at, version
	`

	args := []any{
		user.Username, user.FullName, user.Email,
		user.Tags.IsStaff, user.Tags.WorkerTag, user.Tags.InstructorTag, user.Tags.ToolHandlerTag, user.Tags.ManagerTag, user.Tags.RentalApprovedTag,
		user.IsDev,
	}
	dst := []any{&user.ID, &user.IsActive, &user.CreatedAt, &user.Version}

	return r.dbpool.QueryRow(ctx, query, args...).Scan(dst...)
}

// UpdateUserTags 在事务中锁定目标用户，由 compute 计算新的标记后一次性写入全部标记
func (r *Repository) UpdateUserTags(ctx context.Context, id int64, compute func(target *domain.User) (domain.Tags, error)) (*domain.User, error) {
	var updated *domain.User

	err := r.withTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx pgx.Tx) error {
		query := `SELECT` + userColumns + `FROM users WHERE id = $1 FOR UPDATE`
		target, err := scanUser(tx.QueryRow(ctx, query, id))
		if err != nil {
			return err
		}

		tags, err := compute(target)
		if err != nil {
			return err
		}

		query = `
			UPDATE users
			SET
				is_staff = $1,
				worker_tag = $2,
				instructor_tag = $3,
				tool_handler_tag = $4,
				manager_tag = $5,
				rental_approved_tag = $6,
				version = version + 1
			WHERE id = $7 AND version = $8
			RETURNING version
		`
		args := []any{tags.IsStaff, tags.WorkerTag, tags.InstructorTag, tags.ToolHandlerTag, tags.ManagerTag, tags.RentalApprovedTag, target.ID, target.Version}
		if err := tx.QueryRow(ctx, query, args...).Scan(&target.Version); err != nil {
			return translateError(err)
		}

		target.Tags = tags
		updated = target
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

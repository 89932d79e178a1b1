package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sysu-ecnc-dev/staff-scheduler/backend/internal/config"
	"github.com/sysu-ecnc-dev/staff-scheduler/backend/internal/domain"
)

const (
	uniqueViolationCode     = "23505"
	foreignKeyViolationCode = "23503"
	checkViolationCode      = "23514"
	serializationFailure    = "40001"
)

// DBPool 由 *pgxpool.Pool 实现，测试中使用 pgxmock
type DBPool interface {
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type Repository struct {
	cfg    *config.Config
	dbpool DBPool
}

func NewRepository(cfg *config.Config, dbpool DBPool) *Repository {
	return &Repository{
		cfg:    cfg,
		dbpool: dbpool,
	}
}

func (r *Repository) queryContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
}

// withTx 在一个事务中执行 fn，fn 返回错误时回滚
//
// 检查后插入这类操作使用 Serializable 隔离级别，保证并发请求不会同时通过检查。
func (r *Repository) withTx(ctx context.Context, opts pgx.TxOptions, fn func(ctx context.Context, tx pgx.Tx) error) error {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("无法开启事务: %w", err)
	}

	if err := fn(ctx, tx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			return errors.Join(err, fmt.Errorf("回滚失败: %w", rbErr))
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return translateError(err)
	}

	return nil
}

var serializable = pgx.TxOptions{IsoLevel: pgx.Serializable, AccessMode: pgx.ReadWrite}

// translateError 把数据库错误转换为领域错误，未识别的错误原样返回
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolationCode:
			switch pgErr.ConstraintName {
			case "assignments_active_unique":
				return domain.ErrDuplicateAssignment
			case "course_enrollments_active_unique":
				return fmt.Errorf("已经报名过该课程: %w", domain.ErrDuplicateAssignment)
			}
		case foreignKeyViolationCode:
			return fmt.Errorf("引用的记录不存在 (%s): %w", pgErr.ConstraintName, domain.ErrNotFound)
		case checkViolationCode:
			switch pgErr.ConstraintName {
			case "users_manager_requires_worker":
				return fmt.Errorf("经理标记要求同时拥有 worker 标记: %w", domain.ErrInvariantViolation)
			case "shift_templates_time_range", "tool_rentals_date_range", "events_time_range", "tool_rentals_time_range":
				return fmt.Errorf("%s: %w", pgErr.ConstraintName, domain.ErrInvalidTimeRange)
			default:
				return fmt.Errorf("%s: %w", pgErr.ConstraintName, domain.ErrInvariantViolation)
			}
		}
	}

	return err
}

// conflictAsDuplicate 用于检查后插入的事务：序列化失败说明并发的另一个请求已经插入了同一组数据
func conflictAsDuplicate(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == serializationFailure {
		return fmt.Errorf("并发请求冲突: %w", domain.ErrDuplicateAssignment)
	}
	return err
}

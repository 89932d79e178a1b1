package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/staff-scheduler/backend/internal/config"
	"github.com/sysu-ecnc-dev/staff-scheduler/backend/internal/domain"
	"github.com/sysu-ecnc-dev/staff-scheduler/backend/internal/lifecycle"
	"github.com/sysu-ecnc-dev/staff-scheduler/backend/internal/permission"
)

func newTestRepository(t *testing.T) (*Repository, pgxmock.PgxPoolIface) {
	t.Helper()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	cfg := &config.Config{}
	cfg.Database.QueryTimeout = 5
	cfg.Database.TransactionTimeout = 5

	return NewRepository(cfg, mock), mock
}

var (
	assignmentCols = []string{"id", "shift_id", "worker_id", "date", "time_slots", "break_periods", "notes", "status", "created_by", "approved_by", "created_at", "updated_at", "version"}
	userCols       = []string{"id", "username", "full_name", "email", "is_staff", "worker_tag", "instructor_tag", "tool_handler_tag", "manager_tag", "rental_approved_tag", "is_dev", "is_active", "created_at", "version"}
	courseCols     = []string{"id", "title", "instructor_id", "max_participants", "participant_count", "created_at", "version"}
	enrollmentCols = []string{"id", "course_id", "student_id", "status", "created_at", "version"}
)

func workerRequest() *domain.Assignment {
	return &domain.Assignment{
		ShiftID:      10,
		WorkerID:     2,
		Date:         "2026-10-19",
		TimeSlots:    []domain.TimeSlot{{StartTime: "09:00", EndTime: "12:00"}},
		BreakPeriods: []domain.BreakPeriod{},
		Status:       domain.AssignmentPendingManagerApproval,
		CreatedBy:    2,
	}
}

func TestCreateAssignmentInsertsWhenGuardPasses(t *testing.T) {
	t.Parallel()

	repo, mock := newTestRepository(t)
	now := time.Now().UTC()
	a := workerRequest()

	mock.ExpectBeginTx(serializable)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE worker_id = $1 AND shift_id = $2 AND date = $3 AND status <> 'rejected'")).
		WithArgs(int64(2), int64(10), "2026-10-19").
		WillReturnRows(pgxmock.NewRows(assignmentCols))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO assignments")).
		WithArgs(int64(10), int64(2), "2026-10-19", pgxmock.AnyArg(), pgxmock.AnyArg(), "", domain.AssignmentPendingManagerApproval, int64(2), pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at", "version"}).AddRow(int64(7), now, now, int32(1)))
	mock.ExpectCommit()

	err := repo.CreateAssignment(context.Background(), a, func(active []*domain.Assignment) error {
		return lifecycle.CheckUnique(a, active)
	})
	require.NoError(t, err)

	assert.Equal(t, int64(7), a.ID)
	assert.Equal(t, int32(1), a.Version)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateAssignmentGuardRejectsDuplicate(t *testing.T) {
	t.Parallel()

	repo, mock := newTestRepository(t)
	now := time.Now().UTC()
	a := workerRequest()

	mock.ExpectBeginTx(serializable)
	mock.ExpectQuery(regexp.QuoteMeta("FROM assignments")).
		WithArgs(int64(2), int64(10), "2026-10-19").
		WillReturnRows(pgxmock.NewRows(assignmentCols).AddRow(
			int64(3), int64(10), int64(2), "2026-10-19",
			[]domain.TimeSlot{}, []domain.BreakPeriod{}, "", domain.AssignmentPendingManagerApproval,
			int64(2), (*int64)(nil), now, now, int32(1),
		))
	mock.ExpectRollback()

	err := repo.CreateAssignment(context.Background(), a, func(active []*domain.Assignment) error {
		return lifecycle.CheckUnique(a, active)
	})
	assert.True(t, errors.Is(err, domain.ErrDuplicateAssignment))
	assert.Zero(t, a.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateAssignmentMapsUniqueIndexViolation(t *testing.T) {
	t.Parallel()

	repo, mock := newTestRepository(t)
	a := workerRequest()

	mock.ExpectBeginTx(serializable)
	mock.ExpectQuery(regexp.QuoteMeta("FROM assignments")).
		WithArgs(int64(2), int64(10), "2026-10-19").
		WillReturnRows(pgxmock.NewRows(assignmentCols))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO assignments")).
		WillReturnError(&pgconn.PgError{Code: uniqueViolationCode, ConstraintName: "assignments_active_unique"})
	mock.ExpectRollback()

	err := repo.CreateAssignment(context.Background(), a, func([]*domain.Assignment) error { return nil })
	assert.True(t, errors.Is(err, domain.ErrDuplicateAssignment))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateAssignmentSerializationFailureIsDuplicate(t *testing.T) {
	t.Parallel()

	repo, mock := newTestRepository(t)
	now := time.Now().UTC()
	a := workerRequest()

	mock.ExpectBeginTx(serializable)
	mock.ExpectQuery(regexp.QuoteMeta("FROM assignments")).
		WithArgs(int64(2), int64(10), "2026-10-19").
		WillReturnRows(pgxmock.NewRows(assignmentCols))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO assignments")).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at", "version"}).AddRow(int64(7), now, now, int32(1)))
	mock.ExpectCommit().WillReturnError(&pgconn.PgError{Code: serializationFailure})

	err := repo.CreateAssignment(context.Background(), a, func([]*domain.Assignment) error { return nil })
	assert.True(t, errors.Is(err, domain.ErrDuplicateAssignment))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateAssignmentWritesMutation(t *testing.T) {
	t.Parallel()

	repo, mock := newTestRepository(t)
	now := time.Now().UTC()
	manager := permission.ActorOf(&domain.User{ID: 1, Tags: domain.Tags{IsStaff: true, WorkerTag: true, ManagerTag: true}})

	mock.ExpectBeginTx(pgx.TxOptions{})
	mock.ExpectQuery(regexp.QuoteMeta("FROM assignments WHERE id = $1 FOR UPDATE")).
		WithArgs(int64(3)).
		WillReturnRows(pgxmock.NewRows(assignmentCols).AddRow(
			int64(3), int64(10), int64(2), "2026-10-19",
			[]domain.TimeSlot{}, []domain.BreakPeriod{}, "", domain.AssignmentPendingManagerApproval,
			int64(2), (*int64)(nil), now, now, int32(4),
		))
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE assignments")).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), "", domain.AssignmentConfirmed, pgxmock.AnyArg(), int64(3), int32(4)).
		WillReturnRows(pgxmock.NewRows([]string{"updated_at", "version"}).AddRow(now, int32(5)))
	mock.ExpectCommit()

	a, err := repo.UpdateAssignment(context.Background(), 3, func(a *domain.Assignment) error {
		return lifecycle.Approve(manager, a)
	})
	require.NoError(t, err)

	assert.Equal(t, domain.AssignmentConfirmed, a.Status)
	require.NotNil(t, a.ApprovedBy)
	assert.Equal(t, int64(1), *a.ApprovedBy)
	assert.Equal(t, int32(5), a.Version)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateAssignmentNotFound(t *testing.T) {
	t.Parallel()

	repo, mock := newTestRepository(t)

	mock.ExpectBeginTx(pgx.TxOptions{})
	mock.ExpectQuery(regexp.QuoteMeta("FROM assignments WHERE id = $1 FOR UPDATE")).
		WithArgs(int64(99)).
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectRollback()

	_, err := repo.UpdateAssignment(context.Background(), 99, func(*domain.Assignment) error {
		t.Fatal("mutate 不应被调用")
		return nil
	})
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateUserTagsRejectsManagerWithoutWorker(t *testing.T) {
	t.Parallel()

	repo, mock := newTestRepository(t)
	now := time.Now().UTC()
	manager := permission.ActorOf(&domain.User{ID: 1, Tags: domain.Tags{IsStaff: true, WorkerTag: true, ManagerTag: true}})
	managerOnly := true

	mock.ExpectBeginTx(pgx.TxOptions{})
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id = $1 FOR UPDATE")).
		WithArgs(int64(5)).
		WillReturnRows(pgxmock.NewRows(userCols).AddRow(
			int64(5), "zhangsan", "张三", "zhangsan@example.com",
			true, false, false, false, false, false,
			false, true, now, int32(1),
		))
	mock.ExpectRollback()

	_, err := repo.UpdateUserTags(context.Background(), 5, func(target *domain.User) (domain.Tags, error) {
		return lifecycle.UpdateTags(manager, target, domain.TagsPatch{ManagerTag: &managerOnly})
	})
	assert.True(t, errors.Is(err, domain.ErrInvariantViolation))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateUserTagsWritesAllTagsAtOnce(t *testing.T) {
	t.Parallel()

	repo, mock := newTestRepository(t)
	now := time.Now().UTC()
	yes := true

	mock.ExpectBeginTx(pgx.TxOptions{})
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id = $1 FOR UPDATE")).
		WithArgs(int64(5)).
		WillReturnRows(pgxmock.NewRows(userCols).AddRow(
			int64(5), "zhangsan", "张三", "zhangsan@example.com",
			true, false, false, false, false, false,
			false, true, now, int32(1),
		))
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE users")).
		WithArgs(true, true, false, false, true, false, int64(5), int32(1)).
		WillReturnRows(pgxmock.NewRows([]string{"version"}).AddRow(int32(2)))
	mock.ExpectCommit()

	user, err := repo.UpdateUserTags(context.Background(), 5, func(target *domain.User) (domain.Tags, error) {
		return domain.TagsPatch{WorkerTag: &yes, ManagerTag: &yes}.Apply(target.Tags), nil
	})
	require.NoError(t, err)

	assert.True(t, user.Tags.ManagerTag)
	assert.True(t, user.Tags.WorkerTag)
	assert.Equal(t, int32(2), user.Version)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateEnrollmentAdjustsCounterInSameTransaction(t *testing.T) {
	t.Parallel()

	repo, mock := newTestRepository(t)
	now := time.Now().UTC()
	student := domain.Actor{UserID: 20}

	mock.ExpectBeginTx(pgx.TxOptions{})
	mock.ExpectQuery(regexp.QuoteMeta("FROM course_enrollments WHERE id = $1 FOR UPDATE")).
		WithArgs(int64(8)).
		WillReturnRows(pgxmock.NewRows(enrollmentCols).AddRow(int64(8), int64(1), int64(20), domain.EnrollmentApproved, now, int32(2)))
	mock.ExpectQuery(regexp.QuoteMeta("FROM courses WHERE id = $1 FOR UPDATE")).
		WithArgs(int64(1)).
		WillReturnRows(pgxmock.NewRows(courseCols).AddRow(int64(1), "木工入门", int64(7), int32(10), int32(0), now, int32(3)))
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE course_enrollments")).
		WithArgs(domain.EnrollmentCancelled, int64(8), int32(2)).
		WillReturnRows(pgxmock.NewRows([]string{"version"}).AddRow(int32(3)))
	mock.ExpectQuery(regexp.QuoteMeta("GREATEST(participant_count + $1, 0)")).
		WithArgs(int32(-1), int64(1)).
		WillReturnRows(pgxmock.NewRows([]string{"participant_count", "version"}).AddRow(int32(0), int32(4)))
	mock.ExpectCommit()

	e, c, err := repo.UpdateEnrollment(context.Background(), 8, func(course *domain.Course, e *domain.CourseEnrollment) (int32, error) {
		return lifecycle.CancelEnrollment(student, course, e)
	})
	require.NoError(t, err)

	assert.Equal(t, domain.EnrollmentCancelled, e.Status)
	assert.Equal(t, int32(0), c.ParticipantCount)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetShiftTemplateNotFound(t *testing.T) {
	t.Parallel()

	repo, mock := newTestRepository(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM shift_templates WHERE id = $1")).
		WithArgs(int64(404)).
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetShiftTemplate(context.Background(), 404)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteShiftTemplateMissing(t *testing.T) {
	t.Parallel()

	repo, mock := newTestRepository(t)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM shift_templates WHERE id = $1")).
		WithArgs(int64(404)).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err := repo.DeleteShiftTemplate(context.Background(), 404)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTranslateError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want error
	}{
		{name: "无记录", err: pgx.ErrNoRows, want: domain.ErrNotFound},
		{name: "排班唯一索引", err: &pgconn.PgError{Code: uniqueViolationCode, ConstraintName: "assignments_active_unique"}, want: domain.ErrDuplicateAssignment},
		{name: "报名唯一索引", err: &pgconn.PgError{Code: uniqueViolationCode, ConstraintName: "course_enrollments_active_unique"}, want: domain.ErrDuplicateAssignment},
		{name: "外键", err: &pgconn.PgError{Code: foreignKeyViolationCode, ConstraintName: "assignments_shift_id_fkey"}, want: domain.ErrNotFound},
		{name: "标记约束", err: &pgconn.PgError{Code: checkViolationCode, ConstraintName: "users_manager_requires_worker"}, want: domain.ErrInvariantViolation},
		{name: "时间约束", err: &pgconn.PgError{Code: checkViolationCode, ConstraintName: "shift_templates_time_range"}, want: domain.ErrInvalidTimeRange},
		{name: "活动时间约束", err: &pgconn.PgError{Code: checkViolationCode, ConstraintName: "events_time_range"}, want: domain.ErrInvalidTimeRange},
		{name: "租借时间约束", err: &pgconn.PgError{Code: checkViolationCode, ConstraintName: "tool_rentals_time_range"}, want: domain.ErrInvalidTimeRange},
		{name: "计数约束", err: &pgconn.PgError{Code: checkViolationCode, ConstraintName: "courses_participant_count_check"}, want: domain.ErrInvariantViolation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.True(t, errors.Is(translateError(tt.err), tt.want))
		})
	}

	other := errors.New("other")
	assert.Equal(t, other, translateError(other))

	username := &pgconn.PgError{Code: uniqueViolationCode, ConstraintName: "users_username_key"}
	assert.Equal(t, error(username), translateError(username))
	assert.Nil(t, translateError(nil))
}

func TestCreateEventMapsTimeRangeViolation(t *testing.T) {
	t.Parallel()

	repo, mock := newTestRepository(t)
	e := &domain.Event{Title: "例会", Date: "2026-10-19", StartTime: "12:00", EndTime: "11:00", Status: domain.EventApproved, CreatedBy: 1}

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO events")).
		WillReturnError(&pgconn.PgError{Code: checkViolationCode, ConstraintName: "events_time_range"})

	err := repo.CreateEvent(context.Background(), e)
	assert.True(t, errors.Is(err, domain.ErrInvalidTimeRange))
	assert.Zero(t, e.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateToolRentalMapsTimeRangeViolation(t *testing.T) {
	t.Parallel()

	repo, mock := newTestRepository(t)
	r := &domain.ToolRental{ToolName: "电钻", RenterID: 4, RentalStartDate: "2026-10-19", RentalEndDate: "2026-10-19", PickupTime: "18:00", ReturnTime: "09:00", Status: domain.RentalPending}

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO tool_rentals")).
		WillReturnError(&pgconn.PgError{Code: checkViolationCode, ConstraintName: "tool_rentals_time_range"})

	err := repo.CreateToolRental(context.Background(), r)
	assert.True(t, errors.Is(err, domain.ErrInvalidTimeRange))
	require.NoError(t, mock.ExpectationsWereMet())
}

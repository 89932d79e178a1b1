package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/sysu-ecnc-dev/staff-scheduler/backend/internal/domain"
)

const courseColumns = `
	id, title, instructor_id, max_participants, participant_count, created_at, version
`

const enrollmentColumns = `
	id, course_id, student_id, status, created_at, version
`

func scanCourse(row pgx.Row) (*domain.Course, error) {
	c := &domain.Course{}
	dst := []any{&c.ID, &c.Title, &c.InstructorID, &c.MaxParticipants, &c.ParticipantCount, &c.CreatedAt, &c.Version}
	if err := row.Scan(dst...); err != nil {
		return nil, translateError(err)
	}
	return c, nil
}

func scanEnrollment(row pgx.Row) (*domain.CourseEnrollment, error) {
	e := &domain.CourseEnrollment{}
	dst := []any{&e.ID, &e.CourseID, &e.StudentID, &e.Status, &e.CreatedAt, &e.Version}
	if err := row.Scan(dst...); err != nil {
		return nil, translateError(err)
	}
	return e, nil
}

func collectEnrollments(rows pgx.Rows) ([]*domain.CourseEnrollment, error) {
	defer rows.Close()

	enrollments := make([]*domain.CourseEnrollment, 0)
	for rows.Next() {
		e, err := scanEnrollment(rows)
		if err != nil {
			return nil, err
		}
		enrollments = append(enrollments, e)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return enrollments, nil
}

func (r *Repository) GetAllCourses(ctx context.Context) ([]*domain.Course, error) {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	query := `SELECT` + courseColumns + `FROM courses ORDER BY id`

	rows, err := r.dbpool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	courses := make([]*domain.Course, 0)
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, err
		}
		courses = append(courses, c)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return courses, nil
}

func (r *Repository) GetCourse(ctx context.Context, id int64) (*domain.Course, error) {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	query := `SELECT` + courseColumns + `FROM courses WHERE id = $1`

	return scanCourse(r.dbpool.QueryRow(ctx, query, id))
}

func (r *Repository) CreateCourse(ctx context.Context, c *domain.Course) error {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	query := `
		INSERT INTO courses (title, instructor_id, max_participants)
		VALUES ($1, $2, $3)
		RETURNING id, participant_count, created_at, version
	`

	args := []any{c.Title, c.InstructorID, c.MaxParticipants}
	if err := r.dbpool.QueryRow(ctx, query, args...).Scan(&c.ID, &c.ParticipantCount, &c.CreatedAt, &c.Version); err != nil {
		return translateError(err)
	}

	return nil
}

func (r *Repository) ListEnrollments(ctx context.Context, courseID int64) ([]*domain.CourseEnrollment, error) {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	query := `SELECT` + enrollmentColumns + `FROM course_enrollments WHERE course_id = $1 ORDER BY id`

	rows, err := r.dbpool.Query(ctx, query, courseID)
	if err != nil {
		return nil, err
	}

	return collectEnrollments(rows)
}

// CreateEnrollment 与 CreateAssignment 相同，先在可串行化事务中读取学员已有的报名再插入
func (r *Repository) CreateEnrollment(ctx context.Context, courseID, studentID int64, build func(course *domain.Course, existing []*domain.CourseEnrollment) (*domain.CourseEnrollment, error)) (*domain.CourseEnrollment, error) {
	var created *domain.CourseEnrollment

	err := r.withTx(ctx, serializable, func(ctx context.Context, tx pgx.Tx) error {
		query := `SELECT` + courseColumns + `FROM courses WHERE id = $1`
		course, err := scanCourse(tx.QueryRow(ctx, query, courseID))
		if err != nil {
			return err
		}

		query = `SELECT` + enrollmentColumns + `
			FROM course_enrollments
			WHERE course_id = $1 AND student_id = $2 AND status IN ('pending', 'approved')
			FOR UPDATE
		`
		rows, err := tx.Query(ctx, query, courseID, studentID)
		if err != nil {
			return err
		}
		existing, err := collectEnrollments(rows)
		if err != nil {
			return err
		}

		e, err := build(course, existing)
		if err != nil {
			return err
		}

		query = `
			INSERT INTO course_enrollments (course_id, student_id, status)
			VALUES ($1, $2, $3)
			RETURNING id, created_at, version
		`
		if err := tx.QueryRow(ctx, query, e.CourseID, e.StudentID, e.Status).Scan(&e.ID, &e.CreatedAt, &e.Version); err != nil {
			return translateError(err)
		}

		created = e
		return nil
	})
	if err != nil {
		return nil, conflictAsDuplicate(err)
	}

	return created, nil
}

// UpdateEnrollment 锁定报名及其课程，mutate 返回参与人数的变化量，状态和计数在同一事务中写入
func (r *Repository) UpdateEnrollment(ctx context.Context, id int64, mutate func(course *domain.Course, e *domain.CourseEnrollment) (int32, error)) (*domain.CourseEnrollment, *domain.Course, error) {
	var (
		enrollment *domain.CourseEnrollment
		course     *domain.Course
	)

	err := r.withTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx pgx.Tx) error {
		query := `SELECT` + enrollmentColumns + `FROM course_enrollments WHERE id = $1 FOR UPDATE`
		e, err := scanEnrollment(tx.QueryRow(ctx, query, id))
		if err != nil {
			return err
		}

		query = `SELECT` + courseColumns + `FROM courses WHERE id = $1 FOR UPDATE`
		c, err := scanCourse(tx.QueryRow(ctx, query, e.CourseID))
		if err != nil {
			return err
		}

		delta, err := mutate(c, e)
		if err != nil {
			return err
		}

		query = `
			UPDATE course_enrollments
			SET status = $1, version = version + 1
			WHERE id = $2 AND version = $3
			RETURNING version
		`
		if err := tx.QueryRow(ctx, query, e.Status, e.ID, e.Version).Scan(&e.Version); err != nil {
			return translateError(err)
		}

		if delta != 0 {
			// 计数减到零以下时截断为零
			query = `
				UPDATE courses
				SET participant_count = GREATEST(participant_count + $1, 0), version = version + 1
				WHERE id = $2
				RETURNING participant_count, version
			`
			if err := tx.QueryRow(ctx, query, delta, c.ID).Scan(&c.ParticipantCount, &c.Version); err != nil {
				return translateError(err)
			}
		}

		enrollment, course = e, c
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return enrollment, course, nil
}

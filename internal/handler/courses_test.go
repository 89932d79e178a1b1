package handler

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/staff-scheduler/backend/internal/domain"
)

func TestEnrollmentCounter(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPost, "/courses/1/enrollments", customerID, nil)
	require.True(t, resp.Success, resp.Message)
	var first domain.CourseEnrollment
	resp.decode(t, &first)
	assert.Equal(t, domain.EnrollmentPending, first.Status)

	t.Run("duplicate enrollment", func(t *testing.T) {
		resp := env.do(t, http.MethodPost, "/courses/1/enrollments", customerID, nil)
		assert.Equal(t, domain.ReasonDuplicateAssignment, resp.Reason)
	})

	t.Run("student cannot approve", func(t *testing.T) {
		resp := env.do(t, http.MethodPost, fmt.Sprintf("/enrollments/%d/approve", first.ID), customerID, nil)
		assert.Equal(t, domain.ReasonPermissionDenied, resp.Reason)
	})

	t.Run("instructor approves", func(t *testing.T) {
		resp := env.do(t, http.MethodPost, fmt.Sprintf("/enrollments/%d/approve", first.ID), instructorID, nil)
		require.True(t, resp.Success, resp.Message)

		var out enrollmentResponse
		resp.decode(t, &out)
		assert.Equal(t, domain.EnrollmentApproved, out.Enrollment.Status)
		assert.Equal(t, int32(1), out.Course.ParticipantCount)

		msgs := env.publisher.messages(t)
		require.Len(t, msgs, 1)
		assert.Equal(t, domain.MailEnrollmentDecided, msgs[0].Type)
		assert.Equal(t, "customer@example.com", msgs[0].To)
	})

	t.Run("full course", func(t *testing.T) {
		resp := env.do(t, http.MethodPost, "/courses/1/enrollments", workerID, nil)
		require.True(t, resp.Success, resp.Message)
		var second domain.CourseEnrollment
		resp.decode(t, &second)

		resp = env.do(t, http.MethodPost, fmt.Sprintf("/enrollments/%d/approve", second.ID), managerID, nil)
		assert.Equal(t, domain.ReasonInvariantViolation, resp.Reason)
		assert.Equal(t, int32(1), env.store.courses[1].ParticipantCount)
	})

	t.Run("student cancels approved", func(t *testing.T) {
		resp := env.do(t, http.MethodPost, fmt.Sprintf("/enrollments/%d/cancel", first.ID), customerID, nil)
		require.True(t, resp.Success, resp.Message)

		var out enrollmentResponse
		resp.decode(t, &out)
		assert.Equal(t, domain.EnrollmentCancelled, out.Enrollment.Status)
		assert.Equal(t, int32(0), out.Course.ParticipantCount)

		// 学员自己取消不发通知
		assert.Len(t, env.publisher.messages(t), 1)
	})

	t.Run("cancel twice", func(t *testing.T) {
		resp := env.do(t, http.MethodPost, fmt.Sprintf("/enrollments/%d/cancel", first.ID), customerID, nil)
		assert.Equal(t, domain.ReasonInvariantViolation, resp.Reason)
	})
}

func TestCourseEnrollmentsVisibility(t *testing.T) {
	env := newTestEnv(t)
	env.store.enrollments[70] = &domain.CourseEnrollment{ID: 70, CourseID: 1, StudentID: customerID, Status: domain.EnrollmentPending}

	resp := env.do(t, http.MethodGet, "/courses/1/enrollments", instructorID, nil)
	require.True(t, resp.Success, resp.Message)
	var enrollments []domain.CourseEnrollment
	resp.decode(t, &enrollments)
	assert.Len(t, enrollments, 1)

	resp = env.do(t, http.MethodGet, "/courses/1/enrollments", workerID, nil)
	assert.Equal(t, domain.ReasonPermissionDenied, resp.Reason)

	// 其他教练不能查看
	env.store.users[7] = &domain.User{ID: 7, Username: "coach2", Tags: domain.Tags{IsStaff: true, InstructorTag: true}, IsActive: true}
	resp = env.do(t, http.MethodGet, "/courses/1/enrollments", 7, nil)
	assert.Equal(t, domain.ReasonPermissionDenied, resp.Reason)

	resp = env.do(t, http.MethodGet, "/courses/2/enrollments", managerID, nil)
	assert.Equal(t, domain.ReasonNotFound, resp.Reason)
}

func TestCreateCourse(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPost, "/courses", managerID, map[string]any{"title": "抱石进阶", "instructorID": instructorID, "maxParticipants": 8})
	require.True(t, resp.Success, resp.Message)
	var c domain.Course
	resp.decode(t, &c)
	assert.NotZero(t, c.ID)
	assert.Equal(t, int32(0), c.ParticipantCount)

	resp = env.do(t, http.MethodPost, "/courses", managerID, map[string]any{"title": "抱石进阶", "instructorID": workerID})
	assert.Equal(t, domain.ReasonInvariantViolation, resp.Reason)

	resp = env.do(t, http.MethodPost, "/courses", instructorID, map[string]any{"title": "抱石进阶", "instructorID": instructorID})
	assert.Equal(t, domain.ReasonPermissionDenied, resp.Reason)

	resp = env.do(t, http.MethodPost, "/courses", managerID, map[string]any{"instructorID": instructorID})
	assert.False(t, resp.Success)
	assert.Empty(t, resp.Reason)
}

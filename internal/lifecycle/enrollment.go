package lifecycle

import (
	"fmt"

	"github.com/sysu-ecnc-dev/staff-scheduler/backend/internal/domain"
)

func enrollmentActive(s domain.CourseEnrollmentStatus) bool {
	return s == domain.EnrollmentPending || s == domain.EnrollmentApproved
}

func canManageCourse(actor domain.Actor, course *domain.Course) bool {
	if actor.Can(domain.PermissionManager) {
		return true
	}
	return actor.Can(domain.PermissionInstructor) && course.InstructorID == actor.UserID
}

// Enroll 学员为自己报名课程
func Enroll(actor domain.Actor, course *domain.Course, existing []*domain.CourseEnrollment) (*domain.CourseEnrollment, error) {
	for _, e := range existing {
		if e.CourseID == course.ID && e.StudentID == actor.UserID && enrollmentActive(e.Status) {
			return nil, fmt.Errorf("已经报名过该课程: %w", domain.ErrDuplicateAssignment)
		}
	}
	return &domain.CourseEnrollment{
		CourseID:  course.ID,
		StudentID: actor.UserID,
		Status:    domain.EnrollmentPending,
	}, nil
}

// ApproveEnrollment 返回参与人数的变化量，需要与状态变更在同一事务中写入
func ApproveEnrollment(actor domain.Actor, course *domain.Course, e *domain.CourseEnrollment) (int32, error) {
	if !canManageCourse(actor, course) {
		return 0, fmt.Errorf("只有课程教练或经理可以审批报名: %w", domain.ErrPermissionDenied)
	}
	if e.Status != domain.EnrollmentPending {
		return 0, fmt.Errorf("当前状态为 %s: %w", e.Status, domain.ErrInvalidTransition)
	}
	if course.MaxParticipants > 0 && course.ParticipantCount >= course.MaxParticipants {
		return 0, fmt.Errorf("课程名额已满: %w", domain.ErrInvariantViolation)
	}

	e.Status = domain.EnrollmentApproved
	return 1, nil
}

func RejectEnrollment(actor domain.Actor, course *domain.Course, e *domain.CourseEnrollment) (int32, error) {
	if !canManageCourse(actor, course) {
		return 0, fmt.Errorf("只有课程教练或经理可以拒绝报名: %w", domain.ErrPermissionDenied)
	}
	if !enrollmentActive(e.Status) {
		return 0, fmt.Errorf("当前状态为 %s: %w", e.Status, domain.ErrInvalidTransition)
	}

	var delta int32
	if e.Status == domain.EnrollmentApproved {
		delta = -1
	}
	e.Status = domain.EnrollmentRejected
	return delta, nil
}

// CancelEnrollment 学员本人、课程教练或经理都可以取消
func CancelEnrollment(actor domain.Actor, course *domain.Course, e *domain.CourseEnrollment) (int32, error) {
	if actor.UserID != e.StudentID && !canManageCourse(actor, course) {
		return 0, fmt.Errorf("无权取消该报名: %w", domain.ErrPermissionDenied)
	}
	if !enrollmentActive(e.Status) {
		return 0, fmt.Errorf("当前状态为 %s: %w", e.Status, domain.ErrInvalidTransition)
	}

	var delta int32
	if e.Status == domain.EnrollmentApproved {
		delta = -1
	}
	e.Status = domain.EnrollmentCancelled
	return delta, nil
}

// ApplyCounter 参与人数只是缓存，减到零以下时截断为零
func ApplyCounter(count, delta int32) int32 {
	return max(count+delta, 0)
}

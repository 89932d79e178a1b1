package handler

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/sysu-ecnc-dev/staff-scheduler/backend/internal/domain"
	"github.com/sysu-ecnc-dev/staff-scheduler/backend/internal/lifecycle"
	"github.com/sysu-ecnc-dev/staff-scheduler/backend/internal/permission"
)

func (h *Handler) GetAllCourses(w http.ResponseWriter, r *http.Request) {
	courses, err := h.store.GetAllCourses(r.Context())
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取所有课程成功", courses)
}

func (h *Handler) CreateCourse(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title           string `json:"title" validate:"required,max=100"`
		InstructorID    int64  `json:"instructorID" validate:"required,gt=0"`
		MaxParticipants int32  `json:"maxParticipants" validate:"gte=0"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	instructor, err := h.store.GetUserByID(r.Context(), req.InstructorID)
	if err != nil {
		h.rejected(w, r, fmt.Errorf("教练不存在: %w", err))
		return
	}
	if !permission.ForUser(instructor).Instructor {
		h.rejected(w, r, fmt.Errorf("用户 %s 没有 instructor 标记: %w", instructor.Username, domain.ErrInvariantViolation))
		return
	}

	c := &domain.Course{
		Title:           req.Title,
		InstructorID:    req.InstructorID,
		MaxParticipants: req.MaxParticipants,
	}
	if err := h.store.CreateCourse(r.Context(), c); err != nil {
		h.rejected(w, r, err)
		return
	}

	h.successResponse(w, r, "创建课程成功", c)
}

func (h *Handler) GetCourse(w http.ResponseWriter, r *http.Request) {
	c := r.Context().Value(CourseCtx).(*domain.Course)

	h.successResponse(w, r, "获取课程成功", c)
}

func (h *Handler) GetCourseEnrollments(w http.ResponseWriter, r *http.Request) {
	c := r.Context().Value(CourseCtx).(*domain.Course)
	actor := actorFrom(r)

	// 教练只能查看自己的课程
	if !actor.Can(domain.PermissionManager) && c.InstructorID != actor.UserID {
		h.rejected(w, r, fmt.Errorf("只能查看自己课程的报名: %w", domain.ErrPermissionDenied))
		return
	}

	enrollments, err := h.store.ListEnrollments(r.Context(), c.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取课程报名成功", enrollments)
}

func (h *Handler) EnrollInCourse(w http.ResponseWriter, r *http.Request) {
	c := r.Context().Value(CourseCtx).(*domain.Course)
	actor := actorFrom(r)

	e, err := h.store.CreateEnrollment(r.Context(), c.ID, actor.UserID, func(course *domain.Course, existing []*domain.CourseEnrollment) (*domain.CourseEnrollment, error) {
		return lifecycle.Enroll(actor, course, existing)
	})
	if err != nil {
		h.rejected(w, r, err)
		return
	}

	h.successResponse(w, r, "报名课程成功", e)
}

type enrollmentResponse struct {
	Enrollment *domain.CourseEnrollment `json:"enrollment"`
	Course     *domain.Course           `json:"course"`
}

func (h *Handler) transitionEnrollment(w http.ResponseWriter, r *http.Request, msg string, notifyStudent bool, transition func(actor domain.Actor, course *domain.Course, e *domain.CourseEnrollment) (int32, error)) {
	actor := actorFrom(r)

	id, err := idParam(r)
	if err != nil {
		h.errorResponse(w, r, "报名ID无效")
		return
	}

	e, c, err := h.store.UpdateEnrollment(r.Context(), id, func(course *domain.Course, e *domain.CourseEnrollment) (int32, error) {
		return transition(actor, course, e)
	})
	if err != nil {
		h.rejected(w, r, err)
		return
	}

	// 课程的一次课会出现在日历中，参与人数变化后需要刷新
	h.cache.invalidate(r.Context())

	if notifyStudent && e.StudentID != actor.UserID {
		student, err := h.store.GetUserByID(r.Context(), e.StudentID)
		if err != nil {
			slog.Warn("获取通知对象失败", "userID", e.StudentID, "error", err)
		} else {
			h.notify(r.Context(), domain.MailMessage{
				Type: domain.MailEnrollmentDecided,
				To:   student.Email,
				Data: domain.EnrollmentMailData{
					FullName:    student.FullName,
					CourseTitle: c.Title,
					Status:      e.Status,
				},
			})
		}
	}

	h.successResponse(w, r, msg, enrollmentResponse{Enrollment: e, Course: c})
}

func (h *Handler) ApproveEnrollment(w http.ResponseWriter, r *http.Request) {
	h.transitionEnrollment(w, r, "批准报名成功", true, lifecycle.ApproveEnrollment)
}

func (h *Handler) RejectEnrollment(w http.ResponseWriter, r *http.Request) {
	h.transitionEnrollment(w, r, "拒绝报名成功", true, lifecycle.RejectEnrollment)
}

func (h *Handler) CancelEnrollment(w http.ResponseWriter, r *http.Request) {
	h.transitionEnrollment(w, r, "取消报名成功", false, lifecycle.CancelEnrollment)
}

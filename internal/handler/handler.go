package handler

import (
	"context"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/sysu-ecnc-dev/staff-scheduler/backend/internal/config"
	"github.com/sysu-ecnc-dev/staff-scheduler/backend/internal/domain"
)

// Store 是 handler 需要的存储操作，由 *repository.Repository 实现
type Store interface {
	GetUserByID(ctx context.Context, id int64) (*domain.User, error)
	GetAllUsers(ctx context.Context) ([]*domain.User, error)
	UpdateUserTags(ctx context.Context, id int64, compute func(target *domain.User) (domain.Tags, error)) (*domain.User, error)

	GetAllShiftTemplates(ctx context.Context) ([]*domain.ShiftTemplate, error)
	GetShiftTemplate(ctx context.Context, id int64) (*domain.ShiftTemplate, error)
	CreateShiftTemplate(ctx context.Context, st *domain.ShiftTemplate) error
	UpdateShiftTemplate(ctx context.Context, st *domain.ShiftTemplate) error
	DeleteShiftTemplate(ctx context.Context, id int64) error

	GetAssignment(ctx context.Context, id int64) (*domain.Assignment, error)
	ListAssignmentsBetween(ctx context.Context, from, to string) ([]*domain.Assignment, error)
	ListAssignmentsForShift(ctx context.Context, shiftID int64, date string) ([]*domain.Assignment, error)
	CreateAssignment(ctx context.Context, a *domain.Assignment, guard func(active []*domain.Assignment) error) error
	UpdateAssignment(ctx context.Context, id int64, mutate func(a *domain.Assignment) error) (*domain.Assignment, error)

	GetAllCourses(ctx context.Context) ([]*domain.Course, error)
	GetCourse(ctx context.Context, id int64) (*domain.Course, error)
	CreateCourse(ctx context.Context, c *domain.Course) error
	ListEnrollments(ctx context.Context, courseID int64) ([]*domain.CourseEnrollment, error)
	CreateEnrollment(ctx context.Context, courseID, studentID int64, build func(course *domain.Course, existing []*domain.CourseEnrollment) (*domain.CourseEnrollment, error)) (*domain.CourseEnrollment, error)
	UpdateEnrollment(ctx context.Context, id int64, mutate func(course *domain.Course, e *domain.CourseEnrollment) (int32, error)) (*domain.CourseEnrollment, *domain.Course, error)

	ListEventsBetween(ctx context.Context, from, to string) ([]*domain.Event, error)
	ListToolRentalsBetween(ctx context.Context, from, to string) ([]*domain.ToolRental, error)
}

// MailPublisher 由 *amqp.Channel 实现
type MailPublisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type Handler struct {
	validate    *validator.Validate
	config      *config.Config
	store       Store
	translator  ut.Translator
	mailChannel MailPublisher
	cache       *calendarCache
	limiter     *rateLimiter

	Mux *chi.Mux
}

// NewHandler 中 rdb 可以为 nil，此时不缓存日历
func NewHandler(cfg *config.Config, store Store, mailCh MailPublisher, rdb redis.Cmdable) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	zh := zh.New()
	uni := ut.New(zh, zh)
	trans, _ := uni.GetTranslator("zh")
	if err := zh_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}
	if err := registerCustomValidations(validate, trans); err != nil {
		return nil, err
	}

	return &Handler{
		validate:    validate,
		config:      cfg,
		store:       store,
		translator:  trans,
		mailChannel: mailCh,
		cache:       newCalendarCache(rdb, cfg),
		limiter:     newRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst),

		Mux: chi.NewRouter(),
	}, nil
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)

	// 日历对未登录用户开放，只能看到已批准的活动和班次
	h.Mux.Group(func(r chi.Router) {
		r.Use(h.optionalAuth)
		r.Use(h.actor)
		r.Route("/calendar", func(r chi.Router) {
			r.Get("/", h.GetCalendar)
			r.Get("/day", h.GetCalendarDay)
		})
	})

	// 以下 API 必须携带有效的身份令牌
	h.Mux.Group(func(r chi.Router) {
		r.Use(h.auth)
		r.Use(h.actor)
		r.Use(h.preventInactiveUser)

		r.Get("/me", h.GetMe)

		r.Route("/users", func(r chi.Router) {
			r.Use(h.RequiredPermission(domain.PermissionStaff))
			r.Get("/", h.GetAllUsers)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.userInfo)
				r.Get("/", h.GetUser)
				r.With(h.rateLimit).Patch("/tags", h.UpdateUserTags)
			})
		})

		r.Route("/shift-templates", func(r chi.Router) {
			r.Get("/", h.GetAllShiftTemplates)
			r.With(h.RequiredPermission(domain.PermissionManager), h.rateLimit).Post("/", h.CreateShiftTemplate)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.shiftTemplate)
				r.Get("/", h.GetShiftTemplate)
				r.With(h.RequiredPermission(domain.PermissionStaff)).Get("/staffing", h.GetShiftStaffing)
				r.With(h.RequiredPermission(domain.PermissionManager), h.rateLimit).Patch("/", h.UpdateShiftTemplate)
				r.With(h.RequiredPermission(domain.PermissionManager), h.rateLimit).Delete("/", h.DeleteShiftTemplate)
			})
		})

		r.Route("/assignments", func(r chi.Router) {
			r.Use(h.RequiredPermission(domain.PermissionStaff, domain.PermissionWorker))
			r.Get("/", h.GetAssignments)
			r.With(h.rateLimit).Post("/request", h.RequestToJoinShift)
			r.With(h.RequiredPermission(domain.PermissionManager), h.rateLimit).Post("/", h.AssignWorker)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.rateLimit)
				r.Post("/approve", h.ApproveAssignment)
				r.Post("/reject", h.RejectAssignment)
				r.Post("/cancel", h.CancelAssignment)
				r.Patch("/", h.UpdateAssignmentTimes)
			})
		})

		r.Route("/courses", func(r chi.Router) {
			r.Get("/", h.GetAllCourses)
			r.With(h.RequiredPermission(domain.PermissionManager), h.rateLimit).Post("/", h.CreateCourse)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.course)
				r.Get("/", h.GetCourse)
				r.With(h.RequiredPermission(domain.PermissionInstructor, domain.PermissionManager)).Get("/enrollments", h.GetCourseEnrollments)
				r.With(h.rateLimit).Post("/enrollments", h.EnrollInCourse)
			})
		})

		r.Route("/enrollments/{id}", func(r chi.Router) {
			r.Use(h.rateLimit)
			r.Post("/approve", h.ApproveEnrollment)
			r.Post("/reject", h.RejectEnrollment)
			r.Post("/cancel", h.CancelEnrollment)
		})
	})
}

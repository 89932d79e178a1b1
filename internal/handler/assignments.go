package handler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/sysu-ecnc-dev/staff-scheduler/backend/internal/domain"
	"github.com/sysu-ecnc-dev/staff-scheduler/backend/internal/lifecycle"
	"github.com/sysu-ecnc-dev/staff-scheduler/backend/internal/permission"
	"github.com/sysu-ecnc-dev/staff-scheduler/backend/internal/utils"
)

type timeSlotRequest struct {
	StartTime string `json:"startTime" validate:"required,hhmm"`
	EndTime   string `json:"endTime" validate:"required,hhmm"`
}

type breakPeriodRequest struct {
	StartTime string `json:"startTime" validate:"required,hhmm"`
	EndTime   string `json:"endTime" validate:"required,hhmm"`
	IsPaid    bool   `json:"isPaid"`
}

func toTimeSlots(reqs []timeSlotRequest) []domain.TimeSlot {
	out := make([]domain.TimeSlot, 0, len(reqs))
	for _, req := range reqs {
		out = append(out, domain.TimeSlot{StartTime: req.StartTime, EndTime: req.EndTime})
	}
	return out
}

func toBreakPeriods(reqs []breakPeriodRequest) []domain.BreakPeriod {
	out := make([]domain.BreakPeriod, 0, len(reqs))
	for _, req := range reqs {
		out = append(out, domain.BreakPeriod{StartTime: req.StartTime, EndTime: req.EndTime, IsPaid: req.IsPaid})
	}
	return out
}

// parseRange 解析 from/to 查询参数并检查顺序
func parseRange(r *http.Request) (string, string, error) {
	from, to := r.URL.Query().Get("from"), r.URL.Query().Get("to")
	fromDate, err := utils.ParseDate(from)
	if err != nil {
		return "", "", err
	}
	toDate, err := utils.ParseDate(to)
	if err != nil {
		return "", "", err
	}
	if fromDate.After(toDate) {
		return "", "", fmt.Errorf("开始日期不能晚于结束日期: %w", domain.ErrInvalidTimeRange)
	}
	return from, to, nil
}

func (h *Handler) GetAssignments(w http.ResponseWriter, r *http.Request) {
	actor := actorFrom(r)

	from, to, err := parseRange(r)
	if err != nil {
		h.invalidInput(w, r, err)
		return
	}

	assignments, err := h.store.ListAssignmentsBetween(r.Context(), from, to)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	// 经理以外的人只能看到自己的排班
	if !actor.Can(domain.PermissionManager) {
		own := make([]*domain.Assignment, 0)
		for _, a := range assignments {
			if a.WorkerID == actor.UserID {
				own = append(own, a)
			}
		}
		assignments = own
	}

	h.successResponse(w, r, "获取排班成功", assignments)
}

type createAssignmentRequest struct {
	ShiftID      int64                `json:"shiftID" validate:"required,gt=0"`
	WorkerID     int64                `json:"workerID"`
	Date         string               `json:"date" validate:"required,date"`
	TimeSlots    []timeSlotRequest    `json:"timeSlots" validate:"dive"`
	BreakPeriods []breakPeriodRequest `json:"breakPeriods" validate:"dive"`
	Notes        string               `json:"notes" validate:"max=500"`
}

func (h *Handler) readCreateAssignment(w http.ResponseWriter, r *http.Request) (*lifecycle.CreateInput, bool) {
	var req createAssignmentRequest
	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return nil, false
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return nil, false
	}

	st, err := h.store.GetShiftTemplate(r.Context(), req.ShiftID)
	if err != nil {
		h.rejected(w, r, fmt.Errorf("班次不存在: %w", err))
		return nil, false
	}

	return &lifecycle.CreateInput{
		Shift:        st,
		WorkerID:     req.WorkerID,
		Date:         req.Date,
		TimeSlots:    toTimeSlots(req.TimeSlots),
		BreakPeriods: toBreakPeriods(req.BreakPeriods),
		Notes:        req.Notes,
	}, true
}

func (h *Handler) createAssignment(w http.ResponseWriter, r *http.Request, a *domain.Assignment) bool {
	// 唯一性检查与插入在同一个可串行化事务中完成
	err := h.store.CreateAssignment(r.Context(), a, func(active []*domain.Assignment) error {
		return lifecycle.CheckUnique(a, active)
	})
	if err != nil {
		h.rejected(w, r, err)
		return false
	}

	h.cache.invalidate(r.Context())
	return true
}

func (h *Handler) RequestToJoinShift(w http.ResponseWriter, r *http.Request) {
	actor := actorFrom(r)

	in, ok := h.readCreateAssignment(w, r)
	if !ok {
		return
	}

	a, err := lifecycle.RequestToJoin(actor, *in)
	if err != nil {
		h.invalidInput(w, r, err)
		return
	}

	if !h.createAssignment(w, r, a) {
		return
	}

	if a.Status == domain.AssignmentPendingManagerApproval {
		h.notifyManagers(r.Context(), myInfoFrom(r), in.Shift.Name, a)
	}

	h.successResponse(w, r, "申请班次成功", a)
}

// notifyManagers 通知所有在职经理有新的班次申请等待审批
func (h *Handler) notifyManagers(ctx context.Context, requester *domain.User, shiftName string, a *domain.Assignment) {
	if h.mailChannel == nil {
		return
	}

	users, err := h.store.GetAllUsers(ctx)
	if err != nil {
		slog.Error("无法获取经理列表", "error", err)
		return
	}

	for _, u := range users {
		if !u.IsActive || u.ID == requester.ID || !permission.ForUser(u).Manager {
			continue
		}
		h.notify(ctx, domain.MailMessage{
			Type: domain.MailAssignmentRequested,
			To:   u.Email,
			Data: domain.AssignmentMailData{
				FullName:  u.FullName,
				ShiftName: shiftName,
				Date:      a.Date,
				ActorName: requester.FullName,
				Status:    a.Status,
				TimeSlots: a.TimeSlots,
			},
		})
	}
}

func (h *Handler) AssignWorker(w http.ResponseWriter, r *http.Request) {
	actor := actorFrom(r)

	in, ok := h.readCreateAssignment(w, r)
	if !ok {
		return
	}

	worker, err := h.store.GetUserByID(r.Context(), in.WorkerID)
	if err != nil {
		h.rejected(w, r, fmt.Errorf("员工不存在: %w", err))
		return
	}

	a, err := lifecycle.AssignWorker(actor, permission.ForUser(worker), *in)
	if err != nil {
		h.invalidInput(w, r, err)
		return
	}

	if !h.createAssignment(w, r, a) {
		return
	}

	if a.Status == domain.AssignmentPendingWorkerApproval {
		myInfo := myInfoFrom(r)
		h.notify(r.Context(), domain.MailMessage{
			Type: domain.MailAssignmentAssigned,
			To:   worker.Email,
			Data: domain.AssignmentMailData{
				FullName:   worker.FullName,
				ShiftName:  in.Shift.Name,
				Date:       a.Date,
				ActorName:  myInfo.FullName,
				Status:     a.Status,
				TimeSlots:  a.TimeSlots,
				AssignedBy: myInfo.FullName,
			},
		})
	}

	h.successResponse(w, r, "安排员工成功", a)
}

// transitionAssignment 在事务内重新读取排班后执行状态转换
func (h *Handler) transitionAssignment(w http.ResponseWriter, r *http.Request, msg string, transition func(actor domain.Actor, a *domain.Assignment) error) {
	actor := actorFrom(r)

	id, err := idParam(r)
	if err != nil {
		h.errorResponse(w, r, "排班ID无效")
		return
	}

	// 记录转换前的状态，用于决定通知对象
	var before domain.AssignmentStatus
	a, err := h.store.UpdateAssignment(r.Context(), id, func(a *domain.Assignment) error {
		before = a.Status
		return transition(actor, a)
	})
	if err != nil {
		h.rejected(w, r, err)
		return
	}

	h.cache.invalidate(r.Context())
	h.notifyDecision(r.Context(), myInfoFrom(r), before, a)

	h.successResponse(w, r, msg, a)
}

// notifyDecision 把审批结果通知给发起这条排班的一方
func (h *Handler) notifyDecision(ctx context.Context, decider *domain.User, before domain.AssignmentStatus, a *domain.Assignment) {
	if !before.IsPending() {
		return
	}

	recipientID := a.WorkerID
	if before == domain.AssignmentPendingWorkerApproval {
		recipientID = a.CreatedBy
	}
	if recipientID == decider.ID {
		return
	}

	recipient, err := h.store.GetUserByID(ctx, recipientID)
	if err != nil {
		slog.Warn("获取通知对象失败", "userID", recipientID, "error", err)
		return
	}
	st, err := h.store.GetShiftTemplate(ctx, a.ShiftID)
	if err != nil {
		slog.Warn("获取班次失败", "shiftID", a.ShiftID, "error", err)
		return
	}

	h.notify(ctx, domain.MailMessage{
		Type: domain.MailAssignmentDecided,
		To:   recipient.Email,
		Data: domain.AssignmentMailData{
			FullName:  recipient.FullName,
			ShiftName: st.Name,
			Date:      a.Date,
			ActorName: decider.FullName,
			Status:    a.Status,
			TimeSlots: a.TimeSlots,
		},
	})
}

func (h *Handler) ApproveAssignment(w http.ResponseWriter, r *http.Request) {
	h.transitionAssignment(w, r, "批准排班成功", lifecycle.Approve)
}

func (h *Handler) RejectAssignment(w http.ResponseWriter, r *http.Request) {
	h.transitionAssignment(w, r, "拒绝排班成功", lifecycle.Reject)
}

func (h *Handler) CancelAssignment(w http.ResponseWriter, r *http.Request) {
	h.transitionAssignment(w, r, "取消排班成功", lifecycle.Cancel)
}

func (h *Handler) UpdateAssignmentTimes(w http.ResponseWriter, r *http.Request) {
	actor := actorFrom(r)

	id, err := idParam(r)
	if err != nil {
		h.errorResponse(w, r, "排班ID无效")
		return
	}

	var req struct {
		TimeSlots    []timeSlotRequest    `json:"timeSlots" validate:"dive"`
		BreakPeriods []breakPeriodRequest `json:"breakPeriods" validate:"dive"`
	}
	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	current, err := h.store.GetAssignment(r.Context(), id)
	if err != nil {
		h.rejected(w, r, err)
		return
	}
	st, err := h.store.GetShiftTemplate(r.Context(), current.ShiftID)
	if err != nil {
		h.rejected(w, r, err)
		return
	}

	a, err := h.store.UpdateAssignment(r.Context(), id, func(a *domain.Assignment) error {
		return lifecycle.UpdateTimes(actor, st, a, toTimeSlots(req.TimeSlots), toBreakPeriods(req.BreakPeriods))
	})
	if err != nil {
		h.rejected(w, r, err)
		return
	}

	h.cache.invalidate(r.Context())

	h.successResponse(w, r, "修改排班时间成功", a)
}

package lifecycle

import (
	"fmt"
	"slices"

	"github.com/sysu-ecnc-dev/staff-scheduler/backend/internal/domain"
)

// CreateInput 描述一条新排班，WorkerID 在员工自行申请时会被忽略
type CreateInput struct {
	Shift        *domain.ShiftTemplate
	WorkerID     int64
	Date         string
	TimeSlots    []domain.TimeSlot
	BreakPeriods []domain.BreakPeriod
	Notes        string
}

func validateTimes(shift *domain.ShiftTemplate, slots []domain.TimeSlot, breaks []domain.BreakPeriod) error {
	if err := ValidateTimeSlots(slots, shift.OpenTime, shift.CloseTime); err != nil {
		return err
	}
	return ValidateBreakPeriods(breaks)
}

func newAssignment(actor domain.Actor, workerID int64, in CreateInput, status domain.AssignmentStatus) *domain.Assignment {
	a := &domain.Assignment{
		ShiftID:      in.Shift.ID,
		WorkerID:     workerID,
		Date:         in.Date,
		TimeSlots:    slices.Clone(in.TimeSlots),
		BreakPeriods: slices.Clone(in.BreakPeriods),
		Notes:        in.Notes,
		Status:       status,
		CreatedBy:    actor.UserID,
	}
	if a.TimeSlots == nil {
		a.TimeSlots = []domain.TimeSlot{}
	}
	if a.BreakPeriods == nil {
		a.BreakPeriods = []domain.BreakPeriod{}
	}
	if status == domain.AssignmentConfirmed {
		approver := actor.UserID
		a.ApprovedBy = &approver
	}
	return a
}

// RequestToJoin 员工申请加入班次，经理的申请直接确认
func RequestToJoin(actor domain.Actor, in CreateInput) (*domain.Assignment, error) {
	if !actor.Can(domain.PermissionWorker) {
		return nil, fmt.Errorf("只有值班员工可以申请班次: %w", domain.ErrPermissionDenied)
	}
	if err := validateTimes(in.Shift, in.TimeSlots, in.BreakPeriods); err != nil {
		return nil, err
	}

	status := domain.AssignmentPendingManagerApproval
	if actor.Can(domain.PermissionManager) {
		status = domain.AssignmentConfirmed
	}

	return newAssignment(actor, actor.UserID, in, status), nil
}

// AssignWorker 经理把员工安排到班次，需要员工接受；经理安排自己时直接确认
func AssignWorker(actor domain.Actor, worker domain.Permissions, in CreateInput) (*domain.Assignment, error) {
	if !actor.Can(domain.PermissionManager) {
		return nil, fmt.Errorf("只有经理可以安排员工: %w", domain.ErrPermissionDenied)
	}
	if !worker.Worker && !worker.Dev {
		return nil, fmt.Errorf("被安排的用户不是值班员工: %w", domain.ErrPermissionDenied)
	}
	if err := validateTimes(in.Shift, in.TimeSlots, in.BreakPeriods); err != nil {
		return nil, err
	}

	status := domain.AssignmentPendingWorkerApproval
	if in.WorkerID == actor.UserID {
		status = domain.AssignmentConfirmed
	}

	return newAssignment(actor, in.WorkerID, in, status), nil
}

// CheckUnique 要求同一 (worker, shift, date) 最多只有一条未被拒绝的排班
func CheckUnique(a *domain.Assignment, existing []*domain.Assignment) error {
	for _, e := range existing {
		if e.ID == a.ID && a.ID != 0 {
			continue
		}
		if e.WorkerID == a.WorkerID && e.ShiftID == a.ShiftID && e.Date == a.Date && e.Status.IsActive() {
			return fmt.Errorf("已存在状态为 %s 的排班: %w", e.Status, domain.ErrDuplicateAssignment)
		}
	}
	return nil
}

// canDecide 判断 actor 能否处理当前待审批的排班
func canDecide(actor domain.Actor, a *domain.Assignment) (bool, error) {
	switch a.Status {
	case domain.AssignmentPendingWorkerApproval:
		return actor.UserID == a.WorkerID || actor.Permissions.Dev, nil
	case domain.AssignmentPendingManagerApproval:
		return actor.Can(domain.PermissionManager), nil
	default:
		return false, fmt.Errorf("当前状态为 %s: %w", a.Status, domain.ErrInvalidTransition)
	}
}

func Approve(actor domain.Actor, a *domain.Assignment) error {
	ok, err := canDecide(actor, a)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("无权批准该排班: %w", domain.ErrPermissionDenied)
	}

	approver := actor.UserID
	a.Status = domain.AssignmentConfirmed
	a.ApprovedBy = &approver
	return nil
}

func Reject(actor domain.Actor, a *domain.Assignment) error {
	ok, err := canDecide(actor, a)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("无权拒绝该排班: %w", domain.ErrPermissionDenied)
	}

	a.Status = domain.AssignmentRejected
	return nil
}

// Cancel 由排班本人或经理取消尚未被拒绝的排班
func Cancel(actor domain.Actor, a *domain.Assignment) error {
	if !a.Status.IsActive() {
		return fmt.Errorf("排班已被拒绝: %w", domain.ErrInvalidTransition)
	}
	if actor.UserID != a.WorkerID && !actor.Can(domain.PermissionManager) {
		return fmt.Errorf("无权取消该排班: %w", domain.ErrPermissionDenied)
	}

	a.Status = domain.AssignmentRejected
	return nil
}

// UpdateTimes 经理可以随时修改时间段，员工本人只能在待审批时修改
func UpdateTimes(actor domain.Actor, shift *domain.ShiftTemplate, a *domain.Assignment, slots []domain.TimeSlot, breaks []domain.BreakPeriod) error {
	if !a.Status.IsActive() {
		return fmt.Errorf("排班已被拒绝: %w", domain.ErrInvalidTransition)
	}
	owner := actor.UserID == a.WorkerID && a.Status.IsPending()
	if !owner && !actor.Can(domain.PermissionManager) {
		return fmt.Errorf("无权修改该排班: %w", domain.ErrPermissionDenied)
	}
	if err := validateTimes(shift, slots, breaks); err != nil {
		return err
	}

	a.TimeSlots = slices.Clone(slots)
	a.BreakPeriods = slices.Clone(breaks)
	return nil
}

package domain

import (
	"errors"
	"fmt"
)

var (
	ErrPermissionDenied     = errors.New("权限不足")
	ErrNotFound             = errors.New("记录不存在")
	ErrInvalidTimeRange     = errors.New("时间范围无效")
	ErrOverlappingTimeSlots = errors.New("时间段重叠")
	ErrDuplicateAssignment  = errors.New("该员工在此班次当天已有排班")
	ErrInvariantViolation   = errors.New("违反数据约束")

	// ErrInvalidTransition 归类为 InvariantViolation
	ErrInvalidTransition = fmt.Errorf("状态转换无效: %w", ErrInvariantViolation)
)

type Reason string

const (
	ReasonPermissionDenied     Reason = "permission_denied"
	ReasonNotFound             Reason = "not_found"
	ReasonInvalidTimeRange     Reason = "invalid_time_range"
	ReasonOverlappingTimeSlots Reason = "overlapping_time_slots"
	ReasonDuplicateAssignment  Reason = "duplicate_assignment"
	ReasonInvariantViolation   Reason = "invariant_violation"
)

// ReasonOf 返回 err 所属的拒绝原因，不属于任何原因时返回空串
func ReasonOf(err error) Reason {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrPermissionDenied):
		return ReasonPermissionDenied
	case errors.Is(err, ErrNotFound):
		return ReasonNotFound
	case errors.Is(err, ErrOverlappingTimeSlots):
		return ReasonOverlappingTimeSlots
	case errors.Is(err, ErrInvalidTimeRange):
		return ReasonInvalidTimeRange
	case errors.Is(err, ErrDuplicateAssignment):
		return ReasonDuplicateAssignment
	case errors.Is(err, ErrInvariantViolation):
		return ReasonInvariantViolation
	}
	return ""
}

// SlotOverlapError 记录第一对冲突的时间段，下标从 1 开始
type SlotOverlapError struct {
	First  int
	Second int
	A      TimeSlot
	B      TimeSlot
}

func (e *SlotOverlapError) Error() string {
	return fmt.Sprintf("时间段 %d (%s-%s) 与时间段 %d (%s-%s) 重叠",
		e.First, e.A.StartTime, e.A.EndTime, e.Second, e.B.StartTime, e.B.EndTime)
}

func (e *SlotOverlapError) Unwrap() error {
	return ErrOverlappingTimeSlots
}

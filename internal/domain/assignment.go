package domain

import "time"

type AssignmentStatus string

const (
	AssignmentPendingWorkerApproval  AssignmentStatus = "pending_worker_approval"
	AssignmentPendingManagerApproval AssignmentStatus = "pending_manager_approval"
	AssignmentConfirmed              AssignmentStatus = "confirmed"
	AssignmentRejected               AssignmentStatus = "rejected"
)

// IsActive 除了 rejected 以外的状态都会占用 (worker, shift, date)
func (s AssignmentStatus) IsActive() bool {
	return s != AssignmentRejected
}

func (s AssignmentStatus) IsPending() bool {
	return s == AssignmentPendingWorkerApproval || s == AssignmentPendingManagerApproval
}

type TimeSlot struct {
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

type BreakPeriod struct {
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	IsPaid    bool   `json:"isPaid"`
}

type Assignment struct {
	ID           int64            `json:"id"`
	ShiftID      int64            `json:"shiftID"`
	WorkerID     int64            `json:"workerID"`
	Date         string           `json:"date"` // YYYY-MM-DD
	TimeSlots    []TimeSlot       `json:"timeSlots"`
	BreakPeriods []BreakPeriod    `json:"breakPeriods"`
	Notes        string           `json:"notes"`
	Status       AssignmentStatus `json:"status"`
	CreatedBy    int64            `json:"createdBy"`
	ApprovedBy   *int64           `json:"approvedBy"`
	CreatedAt    time.Time        `json:"createdAt"`
	UpdatedAt    time.Time        `json:"updatedAt"`
	Version      int32            `json:"-"`
}

package domain

const (
	MailAssignmentAssigned  = "assignment_assigned"
	MailAssignmentRequested = "assignment_requested"
	MailAssignmentDecided   = "assignment_decided"
	MailEnrollmentDecided   = "enrollment_decided"
)

type MailMessage struct {
	Type string `json:"type"`
	To   string `json:"to"`
	Data any    `json:"data"`
}

type AssignmentMailData struct {
	FullName   string           `json:"fullName"`
	ShiftName  string           `json:"shiftName"`
	Date       string           `json:"date"`
	ActorName  string           `json:"actorName"`
	Status     AssignmentStatus `json:"status"`
	TimeSlots  []TimeSlot       `json:"timeSlots"`
	AssignedBy string           `json:"assignedBy,omitempty"`
}

type EnrollmentMailData struct {
	FullName    string                 `json:"fullName"`
	CourseTitle string                 `json:"courseTitle"`
	Status      CourseEnrollmentStatus `json:"status"`
}

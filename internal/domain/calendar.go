package domain

import "time"

type EventStatus string

const (
	EventPending  EventStatus = "pending"
	EventApproved EventStatus = "approved"
	EventRejected EventStatus = "rejected"
)

type Event struct {
	ID             int64       `json:"id"`
	Title          string      `json:"title"`
	Date           string      `json:"date"`
	StartTime      string      `json:"startTime"`
	EndTime        string      `json:"endTime"`
	Status         EventStatus `json:"status"`
	CreatedBy      int64       `json:"createdBy"`
	AssigneeIDs    []int64     `json:"assigneeIDs"`
	ParticipantIDs []int64     `json:"participantIDs"`
	CourseID       *int64      `json:"courseID"` // 非空表示这是某个课程的一次课
}

type ToolRentalStatus string

const (
	RentalPending  ToolRentalStatus = "pending"
	RentalApproved ToolRentalStatus = "approved"
	RentalActive   ToolRentalStatus = "active"
	RentalReturned ToolRentalStatus = "returned"
	RentalRejected ToolRentalStatus = "rejected"
)

type ToolRental struct {
	ID              int64            `json:"id"`
	ToolName        string           `json:"toolName"`
	RenterID        int64            `json:"renterID"`
	RentalStartDate string           `json:"rentalStartDate"`
	RentalEndDate   string           `json:"rentalEndDate"`
	PickupTime      string           `json:"pickupTime"`
	ReturnTime      string           `json:"returnTime"`
	Status          ToolRentalStatus `json:"status"`
}

type CalendarItemKind string

const (
	KindEvent      CalendarItemKind = "event"
	KindShift      CalendarItemKind = "shift"
	KindToolRental CalendarItemKind = "tool_rental"
)

// CalendarItem 是每次查询时生成的投影，不做持久化
type CalendarItem struct {
	ID              string           `json:"id"`
	Kind            CalendarItemKind `json:"kind"`
	SourceID        int64            `json:"sourceID"`
	Title           string           `json:"title"`
	Date            string           `json:"date"`
	EndDate         string           `json:"endDate,omitempty"`
	StartTime       string           `json:"startTime"`
	EndTime         string           `json:"endTime"`
	Status          string           `json:"status"`
	PendingApproval bool             `json:"pendingApproval"`
	CanEdit         bool             `json:"canEdit"`
	CanApprove      bool             `json:"canApprove"`
	Color           string           `json:"color,omitempty"`
	Staffing        *StaffingSummary `json:"staffing,omitempty"`
}

func (i CalendarItem) TimedID() string                { return i.ID }
func (i CalendarItem) TimeRange() (start, end string) { return i.StartTime, i.EndTime }

// MultiDay 跨天的工具租借在日视图中作为全天条目显示
func (i CalendarItem) MultiDay() bool { return i.EndDate != "" && i.EndDate != i.Date }

type CalendarSummary struct {
	TotalItems       int                      `json:"totalItems"`
	PendingApprovals int                      `json:"pendingApprovals"`
	ByKind           map[CalendarItemKind]int `json:"byKind"`
}

type CalendarProjection struct {
	Items   []CalendarItem  `json:"items"`
	Summary CalendarSummary `json:"summary"`
}

type CourseEnrollmentStatus string

const (
	EnrollmentPending   CourseEnrollmentStatus = "pending"
	EnrollmentApproved  CourseEnrollmentStatus = "approved"
	EnrollmentRejected  CourseEnrollmentStatus = "rejected"
	EnrollmentCancelled CourseEnrollmentStatus = "cancelled"
)

type Course struct {
	ID               int64     `json:"id"`
	Title            string    `json:"title"`
	InstructorID     int64     `json:"instructorID"`
	MaxParticipants  int32     `json:"maxParticipants"` // 0 表示不限
	ParticipantCount int32     `json:"participantCount"`
	CreatedAt        time.Time `json:"createdAt"`
	Version          int32     `json:"-"`
}

type CourseEnrollment struct {
	ID        int64                  `json:"id"`
	CourseID  int64                  `json:"courseID"`
	StudentID int64                  `json:"studentID"`
	Status    CourseEnrollmentStatus `json:"status"`
	CreatedAt time.Time              `json:"createdAt"`
	Version   int32                  `json:"-"`
}

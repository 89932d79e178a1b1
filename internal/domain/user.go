package domain

import (
	"time"
)

// Tags 是用户档案上的布尔能力标记，由 permission 包组合成具名权限
type Tags struct {
	IsStaff           bool `json:"isStaff"`
	WorkerTag         bool `json:"workerTag"`
	InstructorTag     bool `json:"instructorTag"`
	ToolHandlerTag    bool `json:"toolHandlerTag"`
	ManagerTag        bool `json:"managerTag"`
	RentalApprovedTag bool `json:"rentalApprovedTag"`
}

type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	FullName  string    `json:"fullName"`
	Email     string    `json:"email"`
	Tags      Tags      `json:"tags"`
	IsDev     bool      `json:"isDev"` // 开发者绕过所有权限检查
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	Version   int32     `json:"-"`
}

// TagsPatch 描述一次标记修改，nil 表示保持不变
type TagsPatch struct {
	IsStaff           *bool `json:"isStaff"`
	WorkerTag         *bool `json:"workerTag"`
	InstructorTag     *bool `json:"instructorTag"`
	ToolHandlerTag    *bool `json:"toolHandlerTag"`
	ManagerTag        *bool `json:"managerTag"`
	RentalApprovedTag *bool `json:"rentalApprovedTag"`
}

// Apply 返回应用修改后的标记，不修改接收者
func (p TagsPatch) Apply(t Tags) Tags {
	if p.IsStaff != nil {
		t.IsStaff = *p.IsStaff
	}
	if p.WorkerTag != nil {
		t.WorkerTag = *p.WorkerTag
	}
	if p.InstructorTag != nil {
		t.InstructorTag = *p.InstructorTag
	}
	if p.ToolHandlerTag != nil {
		t.ToolHandlerTag = *p.ToolHandlerTag
	}
	if p.ManagerTag != nil {
		t.ManagerTag = *p.ManagerTag
	}
	if p.RentalApprovedTag != nil {
		t.RentalApprovedTag = *p.RentalApprovedTag
	}
	return t
}

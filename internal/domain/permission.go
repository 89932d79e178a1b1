package domain

type Permission string

const (
	PermissionStaff          Permission = "staff"
	PermissionWorker         Permission = "worker"
	PermissionInstructor     Permission = "instructor"
	PermissionToolHandler    Permission = "tool_handler"
	PermissionManager        Permission = "manager"
	PermissionRentalApproved Permission = "rental_approved"
	PermissionToolRentals    Permission = "tool_rentals"
)

// Permissions 是解析后的有效权限，所有调用方都通过它判断能力，而不是自行组合标记
type Permissions struct {
	Staff          bool `json:"staff"`
	Worker         bool `json:"worker"`
	Instructor     bool `json:"instructor"`
	ToolHandler    bool `json:"toolHandler"`
	Manager        bool `json:"manager"`
	RentalApproved bool `json:"rentalApproved"`
	ToolRentals    bool `json:"toolRentals"`
	Dev            bool `json:"dev"`
}

// Actor 是执行某个操作的用户及其有效权限
type Actor struct {
	UserID      int64
	Permissions Permissions
}

// Can 判断 actor 是否拥有某个权限，开发者总是拥有
func (a Actor) Can(p Permission) bool {
	return a.Permissions.Dev || a.Permissions.Has(p)
}

// Has 对未知的权限名返回 false
func (p Permissions) Has(name Permission) bool {
	switch name {
	case PermissionStaff:
		return p.Staff
	case PermissionWorker:
		return p.Worker
	case PermissionInstructor:
		return p.Instructor
	case PermissionToolHandler:
		return p.ToolHandler
	case PermissionManager:
		return p.Manager
	case PermissionRentalApproved:
		return p.RentalApproved
	case PermissionToolRentals:
		return p.ToolRentals
	default:
		return false
	}
}

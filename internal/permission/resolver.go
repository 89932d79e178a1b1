package permission

import "github.com/sysu-ecnc-dev/staff-scheduler/backend/internal/domain"

// Resolve 将用户标记组合为具名权限，是唯一计算权限的地方
func Resolve(tags domain.Tags) domain.Permissions {
	staff := tags.IsStaff
	return domain.Permissions{
		Staff:          staff,
		Worker:         staff && tags.WorkerTag,
		Instructor:     staff && tags.InstructorTag,
		ToolHandler:    staff && tags.ToolHandlerTag,
		Manager:        staff && tags.WorkerTag && tags.ManagerTag,
		RentalApproved: !staff && tags.RentalApprovedTag,
		ToolRentals:    (staff && tags.ToolHandlerTag) || (!staff && tags.RentalApprovedTag),
	}
}

// ForUser 在 Resolve 的基础上带上开发者身份
func ForUser(u *domain.User) domain.Permissions {
	p := Resolve(u.Tags)
	p.Dev = u.IsDev
	return p
}

func ActorOf(u *domain.User) domain.Actor {
	return domain.Actor{UserID: u.ID, Permissions: ForUser(u)}
}

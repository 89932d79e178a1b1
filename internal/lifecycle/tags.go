package lifecycle

import (
	"fmt"

	"github.com/sysu-ecnc-dev/staff-scheduler/backend/internal/domain"
)

// UpdateTags 计算修改后的标记。经理和开发者可以修改他人，只有开发者可以修改自己（用于模拟身份）。
// 结果必须满足 managerTag ⇒ workerTag，调用方需要一次性写入全部标记。
func UpdateTags(actor domain.Actor, target *domain.User, patch domain.TagsPatch) (domain.Tags, error) {
	if target.ID == actor.UserID {
		if !actor.Permissions.Dev {
			return domain.Tags{}, fmt.Errorf("不能修改自己的标记: %w", domain.ErrPermissionDenied)
		}
	} else if !actor.Can(domain.PermissionManager) {
		return domain.Tags{}, fmt.Errorf("只有经理可以修改用户标记: %w", domain.ErrPermissionDenied)
	}

	next := patch.Apply(target.Tags)
	if err := CheckTags(next); err != nil {
		return domain.Tags{}, err
	}
	return next, nil
}

func CheckTags(t domain.Tags) error {
	if t.ManagerTag && !t.WorkerTag {
		return fmt.Errorf("经理标记要求同时拥有 worker 标记: %w", domain.ErrInvariantViolation)
	}
	return nil
}

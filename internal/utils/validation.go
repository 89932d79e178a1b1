package utils

import (
	"fmt"
	"slices"

	"github.com/sysu-ecnc-dev/staff-scheduler/backend/internal/domain"
)

// ValidateShiftTemplate 检查营业时间、适用日期以及每个需求区间
func ValidateShiftTemplate(st *domain.ShiftTemplate) error {
	openAt, err := ParseClock(st.OpenTime)
	if err != nil {
		return fmt.Errorf("开始营业时间: %w", err)
	}
	closeAt, err := ParseClock(st.CloseTime)
	if err != nil {
		return fmt.Errorf("结束营业时间: %w", err)
	}
	if openAt >= closeAt {
		return fmt.Errorf("结束营业时间必须晚于开始营业时间: %w", domain.ErrInvalidTimeRange)
	}

	for _, day := range st.RecurringDays {
		if day < 1 || day > 7 {
			return fmt.Errorf("适用日期 %d 无效", day)
		}
	}
	if hasDuplicateDay(st.RecurringDays) {
		return fmt.Errorf("适用日期存在重复")
	}

	for i, req := range st.Requirements {
		start, err := ParseClock(req.StartTime)
		if err != nil {
			return fmt.Errorf("需求区间 %d 的开始时间: %w", i+1, err)
		}
		end, err := ParseClock(req.EndTime)
		if err != nil {
			return fmt.Errorf("需求区间 %d 的结束时间: %w", i+1, err)
		}
		if start >= end {
			return fmt.Errorf("需求区间 %d 的结束时间必须晚于开始时间: %w", i+1, domain.ErrInvalidTimeRange)
		}
		if start < openAt || end > closeAt {
			return fmt.Errorf("需求区间 %d 超出了营业时间 %s-%s: %w", i+1, st.OpenTime, st.CloseTime, domain.ErrInvalidTimeRange)
		}
		if req.MinWorkers < 0 || req.OptimalWorkers < req.MinWorkers {
			return fmt.Errorf("需求区间 %d 的理想人数不能少于最少人数", i+1)
		}
	}

	return nil
}

func hasDuplicateDay(days []int32) bool {
	sorted := slices.Clone(days)
	slices.Sort(sorted)
	return len(slices.Compact(sorted)) != len(days)
}

// ValidateEvent 要求日期合法并且开始时间早于结束时间
func ValidateEvent(e *domain.Event) error {
	if _, err := ParseDate(e.Date); err != nil {
		return err
	}
	start, err := ParseClock(e.StartTime)
	if err != nil {
		return fmt.Errorf("开始时间: %w", err)
	}
	end, err := ParseClock(e.EndTime)
	if err != nil {
		return fmt.Errorf("结束时间: %w", err)
	}
	if start >= end {
		return fmt.Errorf("活动 %s 的结束时间必须晚于开始时间: %w", e.Title, domain.ErrInvalidTimeRange)
	}
	return nil
}

// ValidateToolRental 跨天租借只检查日期，当天租借还要求取件早于归还
func ValidateToolRental(t *domain.ToolRental) error {
	startDate, err := ParseDate(t.RentalStartDate)
	if err != nil {
		return err
	}
	endDate, err := ParseDate(t.RentalEndDate)
	if err != nil {
		return err
	}
	pickup, err := ParseClock(t.PickupTime)
	if err != nil {
		return fmt.Errorf("取件时间: %w", err)
	}
	ret, err := ParseClock(t.ReturnTime)
	if err != nil {
		return fmt.Errorf("归还时间: %w", err)
	}

	if endDate.Before(startDate) {
		return fmt.Errorf("租借 %s 的结束日期早于开始日期: %w", t.ToolName, domain.ErrInvalidTimeRange)
	}
	if endDate.Equal(startDate) && pickup >= ret {
		return fmt.Errorf("租借 %s 的归还时间必须晚于取件时间: %w", t.ToolName, domain.ErrInvalidTimeRange)
	}
	return nil
}

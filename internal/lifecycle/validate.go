package lifecycle

import (
	"fmt"

	"github.com/sysu-ecnc-dev/staff-scheduler/backend/internal/domain"
	"github.com/sysu-ecnc-dev/staff-scheduler/backend/internal/utils"
)

// ValidateTimeSlots 检查每个时间段都在营业时间内，且同一排班的时间段互不重叠
func ValidateTimeSlots(slots []domain.TimeSlot, openTime, closeTime string) error {
	openAt, err := utils.ParseClock(openTime)
	if err != nil {
		return err
	}
	closeAt, err := utils.ParseClock(closeTime)
	if err != nil {
		return err
	}

	type bounds struct{ start, end int }
	parsed := make([]bounds, len(slots))

	for i, slot := range slots {
		start, err := utils.ParseClock(slot.StartTime)
		if err != nil {
			return fmt.Errorf("时间段 %d: %w", i+1, err)
		}
		end, err := utils.ParseClock(slot.EndTime)
		if err != nil {
			return fmt.Errorf("时间段 %d: %w", i+1, err)
		}
		if start >= end {
			return fmt.Errorf("时间段 %d 的结束时间必须晚于开始时间: %w", i+1, domain.ErrInvalidTimeRange)
		}
		if start < openAt || end > closeAt {
			return fmt.Errorf("时间段 %d 超出了班次时间 %s-%s: %w", i+1, openTime, closeTime, domain.ErrInvalidTimeRange)
		}
		parsed[i] = bounds{start, end}
	}

	for i := 0; i < len(parsed); i++ {
		for j := i + 1; j < len(parsed); j++ {
			if utils.Overlaps(parsed[i].start, parsed[i].end, parsed[j].start, parsed[j].end) {
				return &domain.SlotOverlapError{First: i + 1, Second: j + 1, A: slots[i], B: slots[j]}
			}
		}
	}

	return nil
}

// ValidateBreakPeriods 只检查开始时间早于结束时间，不检查是否在营业时间内
func ValidateBreakPeriods(breaks []domain.BreakPeriod) error {
	for i, b := range breaks {
		start, err := utils.ParseClock(b.StartTime)
		if err != nil {
			return fmt.Errorf("休息时间 %d: %w", i+1, err)
		}
		end, err := utils.ParseClock(b.EndTime)
		if err != nil {
			return fmt.Errorf("休息时间 %d: %w", i+1, err)
		}
		if start >= end {
			return fmt.Errorf("休息时间 %d 的结束时间必须晚于开始时间: %w", i+1, domain.ErrInvalidTimeRange)
		}
	}
	return nil
}

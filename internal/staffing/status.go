package staffing

import (
	"fmt"

	"github.com/sysu-ecnc-dev/staff-scheduler/backend/internal/domain"
	"github.com/sysu-ecnc-dev/staff-scheduler/backend/internal/utils"
)

// Classify 是人手状态的唯一判定规则
func Classify(current, minWorkers, optimalWorkers int32) domain.StaffingStatus {
	switch {
	case current < minWorkers:
		return domain.StaffingUnderstaffed
	case current == minWorkers:
		return domain.StaffingMinimum
	case current <= optimalWorkers:
		return domain.StaffingGood
	default:
		return domain.StaffingOverstaffed
	}
}

func countConfirmed(assignments []*domain.Assignment) int32 {
	var n int32
	for _, a := range assignments {
		if a.Status == domain.AssignmentConfirmed {
			n++
		}
	}
	return n
}

// Aggregate 计算班次卡片上的总体状态
//
// 最少/理想人数取所有需求区间中的最大值而不是总和。没有需求区间时不给出状态。
func Aggregate(requirements []domain.HourlyRequirement, assignments []*domain.Assignment) domain.StaffingSummary {
	summary := domain.StaffingSummary{
		CurrentWorkers: countConfirmed(assignments),
	}
	if len(requirements) == 0 {
		return summary
	}

	for _, req := range requirements {
		summary.MinWorkers = max(summary.MinWorkers, req.MinWorkers)
		summary.OptimalWorkers = max(summary.OptimalWorkers, req.OptimalWorkers)
	}
	summary.Status = Classify(summary.CurrentWorkers, summary.MinWorkers, summary.OptimalWorkers)

	return summary
}

type span struct {
	start, end int
}

func parseSpan(start, end string) (span, error) {
	s, err := utils.ParseClock(start)
	if err != nil {
		return span{}, err
	}
	e, err := utils.ParseClock(end)
	if err != nil {
		return span{}, err
	}
	return span{s, e}, nil
}

// Hourly 计算时间轴上每个整点的人手状态，没有匹配需求区间的小时会被跳过
func Hourly(openTime, closeTime string, requirements []domain.HourlyRequirement, assignments []*domain.Assignment) ([]domain.HourlyStaffing, error) {
	shift, err := parseSpan(openTime, closeTime)
	if err != nil {
		return nil, fmt.Errorf("班次营业时间: %w", err)
	}

	ranges := make([]span, len(requirements))
	for i, req := range requirements {
		if ranges[i], err = parseSpan(req.StartTime, req.EndTime); err != nil {
			return nil, fmt.Errorf("需求区间 %d: %w", i+1, err)
		}
	}

	// 没有填写时间段的排班视为覆盖整个班次
	covered := make([][]span, 0, len(assignments))
	for _, a := range assignments {
		if a.Status != domain.AssignmentConfirmed {
			continue
		}
		if len(a.TimeSlots) == 0 {
			covered = append(covered, []span{shift})
			continue
		}
		slots := make([]span, len(a.TimeSlots))
		for i, slot := range a.TimeSlots {
			if slots[i], err = parseSpan(slot.StartTime, slot.EndTime); err != nil {
				return nil, fmt.Errorf("排班 %d 的时间段 %d: %w", a.ID, i+1, err)
			}
		}
		covered = append(covered, slots)
	}

	result := make([]domain.HourlyStaffing, 0)
	for hour := shift.start / 60; hour*60 < shift.end; hour++ {
		hourStart := hour * 60

		matched := -1
		for i, r := range ranges {
			if r.start <= hourStart && hourStart < r.end {
				matched = i
				break
			}
		}
		if matched < 0 {
			continue
		}

		var current int32
		for _, slots := range covered {
			for _, s := range slots {
				if utils.Overlaps(s.start, s.end, hourStart, hourStart+60) {
					current++
					break
				}
			}
		}

		req := requirements[matched]
		result = append(result, domain.HourlyStaffing{
			Hour: hour,
			StaffingSummary: domain.StaffingSummary{
				Status:         Classify(current, req.MinWorkers, req.OptimalWorkers),
				CurrentWorkers: current,
				MinWorkers:     req.MinWorkers,
				OptimalWorkers: req.OptimalWorkers,
			},
		})
	}

	return result, nil
}

// ForShift 同时计算总体状态和逐小时状态
func ForShift(st *domain.ShiftTemplate, assignments []*domain.Assignment) (domain.StaffingSummary, []domain.HourlyStaffing, error) {
	hourly, err := Hourly(st.OpenTime, st.CloseTime, st.Requirements, assignments)
	if err != nil {
		return domain.StaffingSummary{}, nil, err
	}
	return Aggregate(st.Requirements, assignments), hourly, nil
}

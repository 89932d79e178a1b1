package domain

// StaffingStatus 是班次卡片和时间轴共用的唯一人手状态
type StaffingStatus string

const (
	StaffingUnderstaffed StaffingStatus = "understaffed"
	StaffingMinimum      StaffingStatus = "minimum"
	StaffingGood         StaffingStatus = "good"
	StaffingOverstaffed  StaffingStatus = "overstaffed"
)

// Rank 越大表示人手越充足
func (s StaffingStatus) Rank() int {
	switch s {
	case StaffingUnderstaffed:
		return 0
	case StaffingMinimum:
		return 1
	case StaffingGood:
		return 2
	case StaffingOverstaffed:
		return 3
	}
	return -1
}

type StaffingSummary struct {
	Status         StaffingStatus `json:"status"`
	CurrentWorkers int32          `json:"currentWorkers"`
	MinWorkers     int32          `json:"minWorkers"`
	OptimalWorkers int32          `json:"optimalWorkers"`
}

type HourlyStaffing struct {
	Hour int `json:"hour"`
	StaffingSummary
}

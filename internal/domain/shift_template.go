package domain

import (
	"time"
)

type HourlyRequirement struct {
	StartTime      string `json:"startTime"`
	EndTime        string `json:"endTime"`
	MinWorkers     int32  `json:"minWorkers"`
	OptimalWorkers int32  `json:"optimalWorkers"`
	Note           string `json:"note,omitempty"`
}

type ShiftTemplate struct {
	ID            int64               `json:"id"`
	Name          string              `json:"name"`
	Names         LocalizedText       `json:"names"`
	OpenTime      string              `json:"openTime"`
	CloseTime     string              `json:"closeTime"`
	RecurringDays []int32             `json:"recurringDays"` // 1 表示周一，7 表示周日
	Requirements  []HourlyRequirement `json:"requirements"`
	Color         string              `json:"color"`
	CreatedAt     time.Time           `json:"createdAt"`
	Version       int32               `json:"-"`
}

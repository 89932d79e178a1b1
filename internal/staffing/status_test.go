package staffing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/staff-scheduler/backend/internal/domain"
)

func confirmed(id int64, slots ...domain.TimeSlot) *domain.Assignment {
	return &domain.Assignment{ID: id, Status: domain.AssignmentConfirmed, TimeSlots: slots}
}

func TestClassifyThresholds(t *testing.T) {
	t.Parallel()

	assert.Equal(t, domain.StaffingUnderstaffed, Classify(1, 2, 3))
	assert.Equal(t, domain.StaffingMinimum, Classify(2, 2, 3))
	assert.Equal(t, domain.StaffingGood, Classify(3, 2, 3))
	assert.Equal(t, domain.StaffingOverstaffed, Classify(4, 2, 3))
	assert.Equal(t, domain.StaffingMinimum, Classify(2, 2, 2))
}

func TestClassifyIsMonotonic(t *testing.T) {
	t.Parallel()

	for minW := int32(0); minW <= 5; minW++ {
		for optW := minW; optW <= 8; optW++ {
			prev := Classify(0, minW, optW)
			for cur := int32(1); cur <= 12; cur++ {
				next := Classify(cur, minW, optW)
				assert.GreaterOrEqual(t, next.Rank(), prev.Rank(), "min=%d opt=%d cur=%d", minW, optW, cur)
				prev = next
			}
		}
	}
}

func TestHourlyMorningRange(t *testing.T) {
	t.Parallel()

	reqs := []domain.HourlyRequirement{
		{StartTime: "09:00", EndTime: "13:00", MinWorkers: 2, OptimalWorkers: 3},
	}
	morning := domain.TimeSlot{StartTime: "09:00", EndTime: "13:00"}

	hourly, err := Hourly("09:00", "17:00", reqs, []*domain.Assignment{confirmed(1, morning)})
	require.NoError(t, err)
	require.Len(t, hourly, 4)
	for i, h := range hourly {
		assert.Equal(t, 9+i, h.Hour)
		assert.Equal(t, domain.StaffingUnderstaffed, h.Status)
		assert.Equal(t, int32(1), h.CurrentWorkers)
	}

	hourly, err = Hourly("09:00", "17:00", reqs, []*domain.Assignment{confirmed(1, morning), confirmed(2, morning)})
	require.NoError(t, err)
	require.Len(t, hourly, 4)
	for _, h := range hourly {
		assert.Equal(t, domain.StaffingMinimum, h.Status)
	}
}

func TestHourlyIgnoresUnconfirmedAssignments(t *testing.T) {
	t.Parallel()

	reqs := []domain.HourlyRequirement{{StartTime: "09:00", EndTime: "10:00", MinWorkers: 1, OptimalWorkers: 1}}
	assignments := []*domain.Assignment{
		{ID: 1, Status: domain.AssignmentPendingManagerApproval},
		{ID: 2, Status: domain.AssignmentPendingWorkerApproval},
		{ID: 3, Status: domain.AssignmentRejected},
	}

	hourly, err := Hourly("09:00", "12:00", reqs, assignments)
	require.NoError(t, err)
	require.Len(t, hourly, 1)
	assert.Equal(t, int32(0), hourly[0].CurrentWorkers)
	assert.Equal(t, domain.StaffingUnderstaffed, hourly[0].Status)

	agg := Aggregate(reqs, assignments)
	assert.Equal(t, int32(0), agg.CurrentWorkers)
}

func TestHourlyPartialSlotsAndWholeShiftAssignments(t *testing.T) {
	t.Parallel()

	reqs := []domain.HourlyRequirement{
		{StartTime: "08:00", EndTime: "10:00", MinWorkers: 1, OptimalWorkers: 2},
		{StartTime: "14:00", EndTime: "16:00", MinWorkers: 1, OptimalWorkers: 1},
	}
	assignments := []*domain.Assignment{
		confirmed(1, domain.TimeSlot{StartTime: "08:30", EndTime: "09:15"}),
		confirmed(2),
	}

	hourly, err := Hourly("08:00", "16:00", reqs, assignments)
	require.NoError(t, err)

	got := map[int]domain.StaffingSummary{}
	for _, h := range hourly {
		got[h.Hour] = h.StaffingSummary
	}
	assert.Len(t, got, 4)
	assert.Equal(t, int32(2), got[8].CurrentWorkers)
	assert.Equal(t, domain.StaffingGood, got[8].Status)
	assert.Equal(t, int32(2), got[9].CurrentWorkers)
	assert.Equal(t, int32(1), got[14].CurrentWorkers)
	assert.Equal(t, domain.StaffingMinimum, got[15].Status)
	_, hasNoon := got[12]
	assert.False(t, hasNoon)
}

func TestAggregateUsesMaximumAcrossRanges(t *testing.T) {
	t.Parallel()

	// 两个不相交的区间各需 2 人，总体状态仍只要求 2 人
	reqs := []domain.HourlyRequirement{
		{StartTime: "08:00", EndTime: "12:00", MinWorkers: 2, OptimalWorkers: 3},
		{StartTime: "13:00", EndTime: "17:00", MinWorkers: 2, OptimalWorkers: 2},
	}
	assignments := []*domain.Assignment{
		confirmed(1, domain.TimeSlot{StartTime: "08:00", EndTime: "12:00"}),
		confirmed(2, domain.TimeSlot{StartTime: "13:00", EndTime: "17:00"}),
	}

	agg := Aggregate(reqs, assignments)
	assert.Equal(t, domain.StaffingSummary{
		Status:         domain.StaffingMinimum,
		CurrentWorkers: 2,
		MinWorkers:     2,
		OptimalWorkers: 3,
	}, agg)

	// 逐小时视图会暴露出每个区间实际只有 1 人
	hourly, err := Hourly("08:00", "17:00", reqs, assignments)
	require.NoError(t, err)
	for _, h := range hourly {
		assert.Equal(t, domain.StaffingUnderstaffed, h.Status, "hour %d", h.Hour)
	}
}

func TestAggregateWithoutRequirements(t *testing.T) {
	t.Parallel()

	agg := Aggregate(nil, []*domain.Assignment{confirmed(1)})
	assert.Equal(t, domain.StaffingStatus(""), agg.Status)
	assert.Equal(t, int32(1), agg.CurrentWorkers)
}

// 两个不相交的区间各需要 2 人：总体状态按最大值只要求 2 人，逐小时视图才能看出每个区间各缺人
func TestAggregateDisjointRanges(t *testing.T) {
	t.Parallel()

	reqs := []domain.HourlyRequirement{
		{StartTime: "09:00", EndTime: "11:00", MinWorkers: 2, OptimalWorkers: 2},
		{StartTime: "14:00", EndTime: "16:00", MinWorkers: 2, OptimalWorkers: 2},
	}
	assignments := []*domain.Assignment{
		confirmed(1, domain.TimeSlot{StartTime: "09:00", EndTime: "11:00"}),
		confirmed(2, domain.TimeSlot{StartTime: "14:00", EndTime: "16:00"}),
	}

	summary := Aggregate(reqs, assignments)
	assert.Equal(t, int32(2), summary.MinWorkers)
	assert.Equal(t, int32(2), summary.CurrentWorkers)
	assert.Equal(t, domain.StaffingMinimum, summary.Status)

	hourly, err := Hourly("09:00", "17:00", reqs, assignments)
	require.NoError(t, err)
	require.Len(t, hourly, 4)
	for _, h := range hourly {
		assert.Equal(t, int32(1), h.CurrentWorkers, "hour %d", h.Hour)
		assert.Equal(t, domain.StaffingUnderstaffed, h.Status, "hour %d", h.Hour)
	}
	assert.Equal(t, []int{9, 10, 14, 15}, []int{hourly[0].Hour, hourly[1].Hour, hourly[2].Hour, hourly[3].Hour})
}

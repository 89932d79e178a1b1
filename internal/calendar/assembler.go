package calendar

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"

	"github.com/sysu-ecnc-dev/staff-scheduler/backend/internal/domain"
	"github.com/sysu-ecnc-dev/staff-scheduler/backend/internal/staffing"
	"github.com/sysu-ecnc-dev/staff-scheduler/backend/internal/utils"
)

// Filters 是日历查询的可选过滤条件
type Filters struct {
	ShowPendingOnly bool
	Kinds           []domain.CalendarItemKind // 为空表示全部类型
}

func (f Filters) wants(kind domain.CalendarItemKind) bool {
	return len(f.Kinds) == 0 || slices.Contains(f.Kinds, kind)
}

// Snapshot 是存储层为一次查询准备的数据，Assignments 只需包含日期范围内的排班
type Snapshot struct {
	Shifts      []*domain.ShiftTemplate
	Assignments []*domain.Assignment
	Events      []*domain.Event
	Rentals     []*domain.ToolRental
}

// Assemble 把 [from, to]（含两端）内的活动、班次和工具租借合并成一个有序列表
func Assemble(from, to string, viewer domain.Actor, filters Filters, snap Snapshot) (*domain.CalendarProjection, error) {
	start, err := utils.ParseDate(from)
	if err != nil {
		return nil, err
	}
	end, err := utils.ParseDate(to)
	if err != nil {
		return nil, err
	}
	if start.After(end) {
		return nil, fmt.Errorf("开始日期 %s 晚于结束日期 %s: %w", from, to, domain.ErrInvalidTimeRange)
	}

	items := make([]domain.CalendarItem, 0)

	if filters.wants(domain.KindEvent) {
		for _, e := range snap.Events {
			if e.Date < from || e.Date > to || !eventVisible(viewer, e) {
				continue
			}
			items = append(items, eventItem(viewer, e))
		}
	}

	if filters.wants(domain.KindShift) {
		byShiftDate := make(map[string][]*domain.Assignment)
		for _, a := range snap.Assignments {
			key := shiftDateKey(a.ShiftID, a.Date)
			byShiftDate[key] = append(byShiftDate[key], a)
		}

		for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
			date := day.Format(utils.DateLayout)
			weekday := utils.ISOWeekday(day)
			for _, st := range snap.Shifts {
				if !slices.Contains(st.RecurringDays, weekday) {
					continue
				}
				items = append(items, shiftItem(viewer, st, date, byShiftDate[shiftDateKey(st.ID, date)]))
			}
		}
	}

	if filters.wants(domain.KindToolRental) {
		for _, r := range snap.Rentals {
			if r.Status == domain.RentalReturned || r.RentalEndDate < from || r.RentalStartDate > to {
				continue
			}
			items = append(items, rentalItem(viewer, r))
		}
	}

	if filters.ShowPendingOnly {
		items = slices.DeleteFunc(items, func(i domain.CalendarItem) bool { return !i.PendingApproval })
	}

	slices.SortStableFunc(items, func(a, b domain.CalendarItem) int {
		return cmp.Or(cmp.Compare(a.Date, b.Date), cmp.Compare(a.StartTime, b.StartTime))
	})

	return &domain.CalendarProjection{Items: items, Summary: summarize(items)}, nil
}

func summarize(items []domain.CalendarItem) domain.CalendarSummary {
	summary := domain.CalendarSummary{
		TotalItems: len(items),
		ByKind: map[domain.CalendarItemKind]int{
			domain.KindEvent:      0,
			domain.KindShift:      0,
			domain.KindToolRental: 0,
		},
	}
	for _, item := range items {
		summary.ByKind[item.Kind]++
		if item.PendingApproval {
			summary.PendingApprovals++
		}
	}
	return summary
}

func shiftDateKey(shiftID int64, date string) string {
	return strconv.FormatInt(shiftID, 10) + "@" + date
}

// isStaffViewer 包括所有内部人员，顾客和未登录用户不算
func isStaffViewer(viewer domain.Actor) bool {
	p := viewer.Permissions
	return p.Dev || p.Staff || p.Worker || p.Manager
}

func involved(viewer domain.Actor, e *domain.Event) bool {
	if viewer.UserID == 0 {
		return false
	}
	return e.CreatedBy == viewer.UserID ||
		slices.Contains(e.AssigneeIDs, viewer.UserID) ||
		slices.Contains(e.ParticipantIDs, viewer.UserID)
}

func eventVisible(viewer domain.Actor, e *domain.Event) bool {
	if viewer.Can(domain.PermissionManager) {
		return true
	}
	if e.Status == domain.EventApproved {
		return true
	}
	return isStaffViewer(viewer) && involved(viewer, e)
}

func eventItem(viewer domain.Actor, e *domain.Event) domain.CalendarItem {
	manager := viewer.Can(domain.PermissionManager)
	pending := e.Status == domain.EventPending
	return domain.CalendarItem{
		ID:              "event-" + strconv.FormatInt(e.ID, 10),
		Kind:            domain.KindEvent,
		SourceID:        e.ID,
		Title:           e.Title,
		Date:            e.Date,
		StartTime:       e.StartTime,
		EndTime:         e.EndTime,
		Status:          string(e.Status),
		PendingApproval: pending,
		CanEdit:         manager || (viewer.UserID != 0 && e.CreatedBy == viewer.UserID),
		CanApprove:      manager && pending,
	}
}

func shiftItem(viewer domain.Actor, st *domain.ShiftTemplate, date string, assignments []*domain.Assignment) domain.CalendarItem {
	item := domain.CalendarItem{
		ID:        "shift-" + strconv.FormatInt(st.ID, 10) + "-" + date,
		Kind:      domain.KindShift,
		SourceID:  st.ID,
		Title:     st.Name,
		Date:      date,
		StartTime: st.OpenTime,
		EndTime:   st.CloseTime,
		Status:    string(domain.EventApproved),
		CanEdit:   viewer.Can(domain.PermissionManager),
		Color:     st.Color,
	}
	if isStaffViewer(viewer) {
		summary := staffing.Aggregate(st.Requirements, assignments)
		item.Staffing = &summary
	}
	return item
}

// rentalItem 租借对所有人可见，只有工具管理员、经理和租借人本人可以操作
func rentalItem(viewer domain.Actor, r *domain.ToolRental) domain.CalendarItem {
	handler := viewer.Can(domain.PermissionToolHandler) || viewer.Can(domain.PermissionManager)
	pending := r.Status == domain.RentalPending
	return domain.CalendarItem{
		ID:              "tool_rental-" + strconv.FormatInt(r.ID, 10),
		Kind:            domain.KindToolRental,
		SourceID:        r.ID,
		Title:           r.ToolName,
		Date:            r.RentalStartDate,
		EndDate:         r.RentalEndDate,
		StartTime:       r.PickupTime,
		EndTime:         r.ReturnTime,
		Status:          string(r.Status),
		PendingApproval: pending,
		CanEdit:         handler || (viewer.UserID != 0 && r.RenterID == viewer.UserID && pending),
		CanApprove:      handler && pending,
	}
}

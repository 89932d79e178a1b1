package calendar

import (
	"github.com/sysu-ecnc-dev/staff-scheduler/backend/internal/domain"
	"github.com/sysu-ecnc-dev/staff-scheduler/backend/internal/layout"
)

// PlacedItem 是日视图中带有横向位置的条目
type PlacedItem struct {
	domain.CalendarItem
	Left     string          `json:"left"`
	Width    string          `json:"width"`
	Position layout.Position `json:"position"`
}

// DayView 中 AllDay 为跨天条目，不参与宽度分配
type DayView struct {
	Date   string                `json:"date"`
	Timed  []PlacedItem          `json:"timed"`
	AllDay []domain.CalendarItem `json:"allDay"`
}

// DayLayout 对某一天的条目运行重叠分组和宽度分配，时长为零的条目不会出现在 Timed 中
func DayLayout(items []domain.CalendarItem, date string, paddingPx int) (*DayView, error) {
	view := &DayView{
		Date:   date,
		Timed:  make([]PlacedItem, 0),
		AllDay: make([]domain.CalendarItem, 0),
	}

	timed := make([]layout.TimedItem, 0, len(items))
	byID := make(map[string]domain.CalendarItem, len(items))
	for _, item := range items {
		if item.MultiDay() {
			if item.Date <= date && date <= item.EndDate {
				view.AllDay = append(view.AllDay, item)
			}
			continue
		}
		if item.Date != date {
			continue
		}
		timed = append(timed, item)
		byID[item.ID] = item
	}

	positions, err := layout.Compute(timed, paddingPx)
	if err != nil {
		return nil, err
	}

	for _, t := range timed {
		pos, ok := positions[t.TimedID()]
		if !ok {
			continue
		}
		left, width := pos.CSS()
		view.Timed = append(view.Timed, PlacedItem{
			CalendarItem: byID[t.TimedID()],
			Left:         left,
			Width:        width,
			Position:     pos,
		})
	}

	return view, nil
}

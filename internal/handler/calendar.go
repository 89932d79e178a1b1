package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/sysu-ecnc-dev/staff-scheduler/backend/internal/calendar"
	"github.com/sysu-ecnc-dev/staff-scheduler/backend/internal/domain"
	"github.com/sysu-ecnc-dev/staff-scheduler/backend/internal/utils"
)

func parseFilters(r *http.Request) (calendar.Filters, error) {
	var filters calendar.Filters

	if v := r.URL.Query().Get("pendingOnly"); v != "" {
		pendingOnly, err := strconv.ParseBool(v)
		if err != nil {
			return filters, fmt.Errorf("pendingOnly 必须是布尔值")
		}
		filters.ShowPendingOnly = pendingOnly
	}

	if v := r.URL.Query().Get("kinds"); v != "" {
		for _, k := range strings.Split(v, ",") {
			kind := domain.CalendarItemKind(strings.TrimSpace(k))
			switch kind {
			case domain.KindEvent, domain.KindShift, domain.KindToolRental:
				filters.Kinds = append(filters.Kinds, kind)
			default:
				return filters, fmt.Errorf("未知的日历条目类型: %q", k)
			}
		}
	}

	return filters, nil
}

// projection 优先读取缓存，未命中时从存储层取快照后组装
func (h *Handler) projection(ctx context.Context, viewer domain.Actor, from, to string, filters calendar.Filters) (*domain.CalendarProjection, error) {
	if cached, ok := h.cache.get(ctx, viewer, from, to, filters); ok {
		return cached, nil
	}

	shifts, err := h.store.GetAllShiftTemplates(ctx)
	if err != nil {
		return nil, err
	}
	assignments, err := h.store.ListAssignmentsBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}
	events, err := h.store.ListEventsBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}
	rentals, err := h.store.ListToolRentalsBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}

	projection, err := calendar.Assemble(from, to, viewer, filters, calendar.Snapshot{
		Shifts:      shifts,
		Assignments: assignments,
		Events:      events,
		Rentals:     rentals,
	})
	if err != nil {
		return nil, err
	}

	h.cache.set(ctx, viewer, from, to, filters, projection)
	return projection, nil
}

func (h *Handler) GetCalendar(w http.ResponseWriter, r *http.Request) {
	viewer := actorFrom(r)

	from, to, err := parseRange(r)
	if err != nil {
		h.invalidInput(w, r, err)
		return
	}

	fromDate, _ := utils.ParseDate(from)
	toDate, _ := utils.ParseDate(to)
	if days := int(toDate.Sub(fromDate).Hours()/24) + 1; days > h.config.Calendar.MaxRangeDays {
		h.rejected(w, r, fmt.Errorf("查询范围不能超过 %d 天: %w", h.config.Calendar.MaxRangeDays, domain.ErrInvalidTimeRange))
		return
	}

	filters, err := parseFilters(r)
	if err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}

	projection, err := h.projection(r.Context(), viewer, from, to, filters)
	if err != nil {
		h.rejected(w, r, err)
		return
	}

	h.successResponse(w, r, "获取日历成功", projection)
}

func (h *Handler) GetCalendarDay(w http.ResponseWriter, r *http.Request) {
	viewer := actorFrom(r)

	date := r.URL.Query().Get("date")
	if _, err := utils.ParseDate(date); err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}

	filters, err := parseFilters(r)
	if err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}

	projection, err := h.projection(r.Context(), viewer, date, date, filters)
	if err != nil {
		h.rejected(w, r, err)
		return
	}

	view, err := calendar.DayLayout(projection.Items, date, h.config.Layout.PaddingPx)
	if err != nil {
		h.rejected(w, r, err)
		return
	}

	h.successResponse(w, r, "获取日视图成功", view)
}

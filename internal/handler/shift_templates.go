package handler

import (
	"net/http"
	"slices"

	"github.com/sysu-ecnc-dev/staff-scheduler/backend/internal/domain"
	"github.com/sysu-ecnc-dev/staff-scheduler/backend/internal/staffing"
	"github.com/sysu-ecnc-dev/staff-scheduler/backend/internal/utils"
)

type requirementRequest struct {
	StartTime      string `json:"startTime" validate:"required,hhmm"`
	EndTime        string `json:"endTime" validate:"required,hhmm"`
	MinWorkers     int32  `json:"minWorkers" validate:"gte=0"`
	OptimalWorkers int32  `json:"optimalWorkers" validate:"gte=0"`
	Note           string `json:"note"`
}

func toRequirements(reqs []requirementRequest) []domain.HourlyRequirement {
	out := make([]domain.HourlyRequirement, 0, len(reqs))
	for _, req := range reqs {
		out = append(out, domain.HourlyRequirement{
			StartTime:      req.StartTime,
			EndTime:        req.EndTime,
			MinWorkers:     req.MinWorkers,
			OptimalWorkers: req.OptimalWorkers,
			Note:           req.Note,
		})
	}
	return out
}

func toLocalizedText(names map[string]string) domain.LocalizedText {
	var t domain.LocalizedText
	for k, v := range names {
		lang, err := domain.ParseLanguage(k)
		if err != nil {
			continue
		}
		t.Set(lang, v)
	}
	return t
}

func (h *Handler) GetAllShiftTemplates(w http.ResponseWriter, r *http.Request) {
	sts, err := h.store.GetAllShiftTemplates(r.Context())
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取所有班次成功", sts)
}

func (h *Handler) CreateShiftTemplate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name          string               `json:"name" validate:"required"`
		Names         map[string]string    `json:"names" validate:"dive,keys,language,endkeys"`
		OpenTime      string               `json:"openTime" validate:"required,hhmm"`
		CloseTime     string               `json:"closeTime" validate:"required,hhmm"`
		RecurringDays []int32              `json:"recurringDays" validate:"required,dive,gte=1,lte=7"`
		Requirements  []requirementRequest `json:"requirements" validate:"dive"`
		Color         string               `json:"color" validate:"omitempty,hexcolor"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	st := &domain.ShiftTemplate{
		Name:          req.Name,
		Names:         toLocalizedText(req.Names),
		OpenTime:      req.OpenTime,
		CloseTime:     req.CloseTime,
		RecurringDays: req.RecurringDays,
		Requirements:  toRequirements(req.Requirements),
		Color:         req.Color,
	}

	if err := utils.ValidateShiftTemplate(st); err != nil {
		h.invalidInput(w, r, err)
		return
	}

	if err := h.store.CreateShiftTemplate(r.Context(), st); err != nil {
		h.rejected(w, r, err)
		return
	}

	h.cache.invalidate(r.Context())

	h.successResponse(w, r, "创建班次成功", st)
}

func (h *Handler) GetShiftTemplate(w http.ResponseWriter, r *http.Request) {
	st := r.Context().Value(ShiftTemplateCtx).(*domain.ShiftTemplate)

	h.successResponse(w, r, "获取班次成功", st)
}

func (h *Handler) UpdateShiftTemplate(w http.ResponseWriter, r *http.Request) {
	st := r.Context().Value(ShiftTemplateCtx).(*domain.ShiftTemplate)

	var req struct {
		Name          *string               `json:"name" validate:"omitnil,min=1"`
		Names         map[string]string     `json:"names" validate:"omitempty,dive,keys,language,endkeys"`
		OpenTime      *string               `json:"openTime" validate:"omitnil,hhmm"`
		CloseTime     *string               `json:"closeTime" validate:"omitnil,hhmm"`
		RecurringDays []int32               `json:"recurringDays" validate:"omitempty,dive,gte=1,lte=7"`
		Requirements  *[]requirementRequest `json:"requirements" validate:"omitnil,dive"`
		Color         *string               `json:"color" validate:"omitempty,hexcolor"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if req.Name != nil {
		st.Name = *req.Name
	}
	if req.Names != nil {
		st.Names = toLocalizedText(req.Names)
	}
	if req.OpenTime != nil {
		st.OpenTime = *req.OpenTime
	}
	if req.CloseTime != nil {
		st.CloseTime = *req.CloseTime
	}
	if req.RecurringDays != nil {
		st.RecurringDays = slices.Clone(req.RecurringDays)
	}
	if req.Requirements != nil {
		st.Requirements = toRequirements(*req.Requirements)
	}
	if req.Color != nil {
		st.Color = *req.Color
	}

	if err := utils.ValidateShiftTemplate(st); err != nil {
		h.invalidInput(w, r, err)
		return
	}

	if err := h.store.UpdateShiftTemplate(r.Context(), st); err != nil {
		h.rejected(w, r, err)
		return
	}

	h.cache.invalidate(r.Context())

	h.successResponse(w, r, "更新班次成功", st)
}

func (h *Handler) DeleteShiftTemplate(w http.ResponseWriter, r *http.Request) {
	st := r.Context().Value(ShiftTemplateCtx).(*domain.ShiftTemplate)

	if err := h.store.DeleteShiftTemplate(r.Context(), st.ID); err != nil {
		h.rejected(w, r, err)
		return
	}

	h.cache.invalidate(r.Context())

	h.successResponse(w, r, "删除班次成功", nil)
}

type shiftStaffingResponse struct {
	ShiftID   int64                   `json:"shiftID"`
	Date      string                  `json:"date"`
	Scheduled bool                    `json:"scheduled"` // 该日期是否属于班次的适用日期
	Summary   domain.StaffingSummary  `json:"summary"`
	Hourly    []domain.HourlyStaffing `json:"hourly"`
}

func (h *Handler) GetShiftStaffing(w http.ResponseWriter, r *http.Request) {
	st := r.Context().Value(ShiftTemplateCtx).(*domain.ShiftTemplate)

	date := r.URL.Query().Get("date")
	day, err := utils.ParseDate(date)
	if err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}

	assignments, err := h.store.ListAssignmentsForShift(r.Context(), st.ID, date)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	summary, hourly, err := staffing.ForShift(st, assignments)
	if err != nil {
		h.invalidInput(w, r, err)
		return
	}

	h.successResponse(w, r, "获取班次人手情况成功", shiftStaffingResponse{
		ShiftID:   st.ID,
		Date:      date,
		Scheduled: slices.Contains(st.RecurringDays, utils.ISOWeekday(day)),
		Summary:   summary,
		Hourly:    hourly,
	})
}

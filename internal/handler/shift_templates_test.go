package handler

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/staff-scheduler/backend/internal/domain"
)

func validTemplate() map[string]any {
	return map[string]any{
		"name":          "晚班",
		"names":         map[string]string{"en": "Evening", "fr": "Soir"},
		"openTime":      "17:00",
		"closeTime":     "22:00",
		"recurringDays": []int{5, 6},
		"requirements": []map[string]any{
			{"startTime": "17:00", "endTime": "19:00", "minWorkers": 1, "optimalWorkers": 2},
			{"startTime": "19:00", "endTime": "22:00", "minWorkers": 2, "optimalWorkers": 3},
		},
		"color": "#ff9800",
	}
}

func TestShiftTemplateCRUD(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPost, "/shift-templates", managerID, validTemplate())
	require.True(t, resp.Success, resp.Message)

	var st domain.ShiftTemplate
	resp.decode(t, &st)
	assert.NotZero(t, st.ID)
	assert.Equal(t, "Evening", st.Names.Get(domain.LanguageEN))
	assert.Equal(t, "Soir", st.Names.Get(domain.LanguageFR))
	assert.Empty(t, st.Names.Get(domain.LanguageHE))

	path := fmt.Sprintf("/shift-templates/%d", st.ID)

	resp = env.do(t, http.MethodGet, path, workerID, nil)
	require.True(t, resp.Success, resp.Message)

	resp = env.do(t, http.MethodPatch, path, managerID, map[string]any{"closeTime": "23:00", "names": map[string]string{"he": "ערב"}})
	require.True(t, resp.Success, resp.Message)
	resp.decode(t, &st)
	assert.Equal(t, "23:00", st.CloseTime)
	assert.Equal(t, "ערב", st.Names.Get(domain.LanguageHE))
	assert.Empty(t, st.Names.Get(domain.LanguageEN))

	// 缩短营业时间后需求区间超出范围
	resp = env.do(t, http.MethodPatch, path, managerID, map[string]any{"closeTime": "21:00"})
	assert.Equal(t, domain.ReasonInvalidTimeRange, resp.Reason)
	assert.Equal(t, "23:00", env.store.templates[st.ID].CloseTime)

	resp = env.do(t, http.MethodDelete, path, workerID, nil)
	assert.Equal(t, domain.ReasonPermissionDenied, resp.Reason)

	resp = env.do(t, http.MethodDelete, path, managerID, nil)
	require.True(t, resp.Success, resp.Message)

	resp = env.do(t, http.MethodGet, path, managerID, nil)
	assert.Equal(t, domain.ReasonNotFound, resp.Reason)
}

func TestCreateShiftTemplateValidation(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name   string
		mutate func(body map[string]any)
		reason domain.Reason
	}{
		{
			name:   "requirement outside opening hours",
			mutate: func(body map[string]any) { body["openTime"] = "18:00" },
			reason: domain.ReasonInvalidTimeRange,
		},
		{
			name:   "close before open",
			mutate: func(body map[string]any) { body["closeTime"] = "16:00" },
			reason: domain.ReasonInvalidTimeRange,
		},
		{
			name:   "malformed time",
			mutate: func(body map[string]any) { body["openTime"] = "5pm" },
		},
		{
			name:   "unsupported language",
			mutate: func(body map[string]any) { body["names"] = map[string]string{"de": "Abend"} },
		},
		{
			name:   "weekday out of range",
			mutate: func(body map[string]any) { body["recurringDays"] = []int{0} },
		},
		{
			name: "optimal below minimum",
			mutate: func(body map[string]any) {
				body["requirements"] = []map[string]any{{"startTime": "17:00", "endTime": "19:00", "minWorkers": 3, "optimalWorkers": 2}}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := validTemplate()
			tt.mutate(body)

			resp := env.do(t, http.MethodPost, "/shift-templates", managerID, body)
			assert.False(t, resp.Success)
			assert.Equal(t, tt.reason, resp.Reason)
		})
	}

	assert.Len(t, env.store.templates, 1)
}

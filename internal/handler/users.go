package handler

import (
	"net/http"

	"github.com/sysu-ecnc-dev/staff-scheduler/backend/internal/domain"
	"github.com/sysu-ecnc-dev/staff-scheduler/backend/internal/lifecycle"
)

func (h *Handler) GetAllUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.store.GetAllUsers(r.Context())
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取所有用户成功", users)
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	user := r.Context().Value(UserInfoCtx).(*domain.User)
	h.successResponse(w, r, "获取用户信息成功", user)
}

func (h *Handler) UpdateUserTags(w http.ResponseWriter, r *http.Request) {
	user := r.Context().Value(UserInfoCtx).(*domain.User)
	actor := actorFrom(r)

	var req domain.TagsPatch
	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	// 以事务内重新读取的用户为准计算标记
	updated, err := h.store.UpdateUserTags(r.Context(), user.ID, func(target *domain.User) (domain.Tags, error) {
		return lifecycle.UpdateTags(actor, target, req)
	})
	if err != nil {
		h.rejected(w, r, err)
		return
	}

	// 标记决定了日历的可见范围
	h.cache.invalidate(r.Context())

	h.successResponse(w, r, "更新用户标记成功", updated)
}

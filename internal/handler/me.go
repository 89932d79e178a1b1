package handler

import (
	"net/http"

	"github.com/sysu-ecnc-dev/staff-scheduler/backend/internal/domain"
)

func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	myInfo := myInfoFrom(r)
	actor := actorFrom(r)

	h.successResponse(w, r, "获取个人信息成功", struct {
		*domain.User
		Permissions domain.Permissions `json:"permissions"`
	}{
		User:        myInfo,
		Permissions: actor.Permissions,
	})
}

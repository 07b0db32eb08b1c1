package rest

import (
	"errors"
	"net/http"

	"github.com/membervault/api/domain"
)

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := domain.QueryUserOptions{}
	err := h.Svc.QueryUsers(ctx, &query)
	if err != nil {
		h.HandleError(ctx, w, err)
		return
	}

	respData := make([]UserResponse, 0, len(query.Result))
	for _, user := range query.Result {
		roleName, err := h.Svc.RoleName(ctx, user.RoleID)
		if err != nil {
			h.HandleError(ctx, w, err)
			return
		}
		respData = append(respData, newUserResponse(user, roleName))
	}
	response := NewSuccessResponse(&respData)
	h.JSONResponse(ctx, w, http.StatusOK, response)
}

type UpdateUserRequest struct {
	RoleID   *string `json:"roleID,omitempty"`
	IsActive *bool   `json:"isActive,omitempty"`
}

// UpdateUser covers the two admin levers on an account: role reassignment
// and activation toggling.
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req UpdateUserRequest
	err := h.JSONBind(r, &req)
	if err != nil {
		h.ErrorResponse(ctx, w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	claims, ok := h.GetClaimsFromContext(ctx)
	if !ok {
		h.ErrorResponse(ctx, w, http.StatusUnauthorized, "Unauthorized", errors.New("claims not found"))
		return
	}

	user, changes, err := h.Svc.UpdateUser(ctx, &claims, h.GetPathParam(r, "id"), domain.UpdateUserOptions{
		RoleID:   req.RoleID,
		IsActive: req.IsActive,
	})
	if err != nil {
		h.HandleError(ctx, w, err)
		return
	}

	if len(changes) == 0 {
		SkipAudit(ctx)
	} else {
		StageAudit(ctx, user.ID, changes)
	}

	roleName, err := h.Svc.RoleName(ctx, user.RoleID)
	if err != nil {
		h.HandleError(ctx, w, err)
		return
	}

	respData := newUserResponse(user, roleName)
	response := NewSuccessResponse(&respData)
	h.JSONResponse(ctx, w, http.StatusOK, response)
}

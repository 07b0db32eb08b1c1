package rest

import (
	"errors"
	"net/http"

	"github.com/membervault/api/domain"
)

type RoleResponse struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Permissions []string `json:"permissions"`
	CreatedAt   int64    `json:"createdAt"`
	UpdatedAt   int64    `json:"updatedAt"`
}

func newRoleResponse(role *domain.Role) RoleResponse {
	return RoleResponse{
		ID:          role.ID.Hex(),
		Name:        role.Name,
		Description: role.Description,
		Permissions: role.Permissions,
		CreatedAt:   role.CreatedTime,
		UpdatedAt:   role.UpdatedTime,
	}
}

func roleSnapshot(role *domain.Role) map[string]any {
	return map[string]any{
		"name":        role.Name,
		"description": role.Description,
		"permissions": role.Permissions,
	}
}

func (h *Handler) ListRoles(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := domain.QueryRoleOptions{}
	err := h.Svc.QueryRoles(ctx, &query)
	if err != nil {
		h.HandleError(ctx, w, err)
		return
	}

	respData := make([]RoleResponse, 0, len(query.Result))
	for _, role := range query.Result {
		respData = append(respData, newRoleResponse(role))
	}
	response := NewSuccessResponse(&respData)
	h.JSONResponse(ctx, w, http.StatusOK, response)
}

type CreateRoleRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Permissions []string `json:"permissions"`
}

func (h *Handler) CreateRole(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req CreateRoleRequest
	err := h.JSONBind(r, &req)
	if err != nil {
		h.ErrorResponse(ctx, w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Name == "" {
		h.ErrorResponse(ctx, w, http.StatusUnprocessableEntity, "Role name is required", errors.New("role name is empty"))
		return
	}

	claims, ok := h.GetClaimsFromContext(ctx)
	if !ok {
		h.ErrorResponse(ctx, w, http.StatusUnauthorized, "Unauthorized", errors.New("claims not found"))
		return
	}

	role := &domain.Role{
		Name:        req.Name,
		Description: req.Description,
		Permissions: req.Permissions,
	}
	err = h.Svc.CreateRole(ctx, &claims, role)
	if err != nil {
		h.HandleError(ctx, w, err)
		return
	}

	StageAudit(ctx, role.ID, roleSnapshot(role))

	respData := newRoleResponse(role)
	response := NewSuccessResponse(&respData)
	h.JSONResponse(ctx, w, http.StatusCreated, response)
}

type UpdateRoleRequest struct {
	Name        *string   `json:"name,omitempty"`
	Description *string   `json:"description,omitempty"`
	Permissions *[]string `json:"permissions,omitempty"`
}

func (h *Handler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req UpdateRoleRequest
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

	role, changes, err := h.Svc.UpdateRole(ctx, &claims, h.GetPathParam(r, "id"), domain.UpdateRoleOptions{
		Name:        req.Name,
		Description: req.Description,
		Permissions: req.Permissions,
	})
	if err != nil {
		h.HandleError(ctx, w, err)
		return
	}

	if len(changes) == 0 {
		SkipAudit(ctx)
	} else {
		StageAudit(ctx, role.ID, changes)
	}

	respData := newRoleResponse(role)
	response := NewSuccessResponse(&respData)
	h.JSONResponse(ctx, w, http.StatusOK, response)
}

func (h *Handler) DeleteRole(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	claims, ok := h.GetClaimsFromContext(ctx)
	if !ok {
		h.ErrorResponse(ctx, w, http.StatusUnauthorized, "Unauthorized", errors.New("claims not found"))
		return
	}

	role, err := h.Svc.DeleteRole(ctx, &claims, h.GetPathParam(r, "id"))
	if err != nil {
		h.HandleError(ctx, w, err)
		return
	}

	StageAudit(ctx, role.ID, roleSnapshot(role))

	response := NewSuccessResponse[string](nil)
	h.JSONResponse(ctx, w, http.StatusOK, response)
}

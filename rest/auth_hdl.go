package rest

import (
	"errors"
	"net/http"

	"github.com/membervault/api/domain"
	"go.mongodb.org/mongo-driver/v2/bson"
)

type UserResponse struct {
	ID        string `json:"id"`
	UserName  string `json:"username"`
	Email     string `json:"email"`
	RoleID    string `json:"roleID"`
	RoleName  string `json:"roleName,omitempty"`
	IsActive  bool   `json:"isActive"`
	LastLogin int64  `json:"lastLogin,omitempty"`
	CreatedAt int64  `json:"createdAt"`
}

func newUserResponse(user *domain.User, roleName string) UserResponse {
	return UserResponse{
		ID:        user.ID.Hex(),
		UserName:  user.UserName,
		Email:     user.Email,
		RoleID:    user.RoleID.Hex(),
		RoleName:  roleName,
		IsActive:  user.IsActive,
		LastLogin: user.LastLogin,
		CreatedAt: user.CreatedTime,
	}
}

type RegisterRequest struct {
	UserName string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req RegisterRequest
	err := h.JSONBind(r, &req)
	if err != nil {
		h.ErrorResponse(ctx, w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.UserName == "" || req.Email == "" || req.Password == "" {
		h.ErrorResponse(ctx, w, http.StatusUnprocessableEntity, "Username, email and password are required", errors.New("missing registration fields"))
		return
	}

	user := &domain.User{
		UserName: req.UserName,
		Email:    req.Email,
		Password: domain.EncryptedPassword(req.Password),
	}
	err = h.Svc.Register(ctx, user)
	if err != nil {
		h.HandleError(ctx, w, err)
		return
	}

	StageAudit(ctx, user.ID, nil)
	StageAuditActor(ctx, user.ID)

	respData := newUserResponse(user, "")
	response := NewSuccessResponse(&respData)
	h.JSONResponse(ctx, w, http.StatusCreated, response)
}

type LoginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req LoginRequest
	err := h.JSONBind(r, &req)
	if err != nil {
		h.ErrorResponse(ctx, w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Login == "" || req.Password == "" {
		h.ErrorResponse(ctx, w, http.StatusUnprocessableEntity, "Login and password are required", errors.New("login or password is empty"))
		return
	}

	user, token, err := h.Svc.Login(ctx, req.Login, req.Password)
	if err != nil {
		h.HandleError(ctx, w, err)
		return
	}

	// login runs before any token exists, so the actor is staged here
	StageAudit(ctx, user.ID, nil)
	StageAuditActor(ctx, user.ID)

	roleName, err := h.Svc.RoleName(ctx, user.RoleID)
	if err != nil {
		h.HandleError(ctx, w, err)
		return
	}

	respData := LoginResponse{
		Token: token,
		User:  newUserResponse(user, roleName),
	}
	response := NewSuccessResponse(&respData)
	h.JSONResponse(ctx, w, http.StatusOK, response)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	claims, ok := h.GetClaimsFromContext(ctx)
	if !ok {
		h.ErrorResponse(ctx, w, http.StatusUnauthorized, "Unauthorized", errors.New("claims not found"))
		return
	}
	if uid, err := claims.GetBsonObjectUID(); err == nil {
		StageAudit(ctx, uid, nil)
	}

	// tokens are stateless; logout exists for the activity trail
	response := NewSuccessResponse[string](nil)
	h.JSONResponse(ctx, w, http.StatusOK, response)
}

type RefreshTokenResponse struct {
	Token string `json:"token"`
}

func (h *Handler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	claims, ok := h.GetClaimsFromContext(ctx)
	if !ok {
		h.ErrorResponse(ctx, w, http.StatusUnauthorized, "Unauthorized", errors.New("claims not found"))
		return
	}

	token, err := h.Svc.RefreshToken(ctx, &claims)
	if err != nil {
		h.HandleError(ctx, w, err)
		return
	}
	respData := RefreshTokenResponse{
		Token: token,
	}
	response := NewSuccessResponse(&respData)
	h.JSONResponse(ctx, w, http.StatusOK, response)
}

func (h *Handler) GetSelfUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	claims, ok := h.GetClaimsFromContext(ctx)
	if !ok {
		h.ErrorResponse(ctx, w, http.StatusUnauthorized, "Unauthorized", errors.New("claims not found"))
		return
	}
	uid, err := claims.GetBsonObjectUID()
	if err != nil {
		h.ErrorResponse(ctx, w, http.StatusUnauthorized, "Unauthorized", errors.New("invalid user ID in claims"))
		return
	}

	query := domain.QueryUserOptions{
		IDs: []bson.ObjectID{uid},
	}
	err = h.Svc.QueryUsers(ctx, &query)
	if err != nil {
		h.HandleError(ctx, w, err)
		return
	}
	if len(query.Result) == 0 {
		h.ErrorResponse(ctx, w, http.StatusUnauthorized, "Unauthorized", errors.New("user not found"))
		return
	}
	user := query.Result[0]

	roleName, err := h.Svc.RoleName(ctx, user.RoleID)
	if err != nil {
		h.HandleError(ctx, w, err)
		return
	}

	respData := newUserResponse(user, roleName)
	response := NewSuccessResponse(&respData)
	h.JSONResponse(ctx, w, http.StatusOK, response)
}

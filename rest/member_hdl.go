package rest

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/membervault/api/domain"
	"github.com/membervault/api/service"
	"github.com/rs/xid"
	"go.mongodb.org/mongo-driver/v2/bson"
)

const maxUploadBytes = 5 << 20

var allowedPictureExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

type MemberResponse struct {
	ID             string `json:"id"`
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	Email          string `json:"email"`
	Phone          string `json:"phone,omitempty"`
	Address        string `json:"address,omitempty"`
	City           string `json:"city,omitempty"`
	State          string `json:"state,omitempty"`
	ZipCode        string `json:"zipCode,omitempty"`
	DateOfBirth    int64  `json:"dateOfBirth,omitempty"`
	Gender         string `json:"gender,omitempty"`
	Status         string `json:"status"`
	RoleID         string `json:"roleID,omitempty"`
	ProfilePicture string `json:"profilePicture,omitempty"`
	Notes          string `json:"notes,omitempty"`
	CreatedAt      int64  `json:"createdAt"`
	UpdatedAt      int64  `json:"updatedAt"`
}

func newMemberResponse(member *domain.Member) MemberResponse {
	resp := MemberResponse{
		ID:             member.ID.Hex(),
		FirstName:      member.FirstName,
		LastName:       member.LastName,
		Email:          member.Email,
		Phone:          member.Phone,
		Address:        member.Address,
		City:           member.City,
		State:          member.State,
		ZipCode:        member.ZipCode,
		DateOfBirth:    member.DateOfBirth,
		Gender:         member.Gender,
		Status:         string(member.Status),
		ProfilePicture: member.ProfilePicture,
		Notes:          member.Notes,
		CreatedAt:      member.CreatedTime,
		UpdatedAt:      member.UpdatedTime,
	}
	if !member.RoleID.IsZero() {
		resp.RoleID = member.RoleID.Hex()
	}
	return resp
}

func (h *Handler) ListMembers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	opt := domain.ListMemberOptions{
		Search: q.Get("search"),
		Status: domain.MemberStatus(q.Get("status")),
		SortBy: q.Get("sortBy"),
	}
	if opt.Status != "" && !opt.Status.Valid() {
		h.ErrorResponse(ctx, w, http.StatusBadRequest, "invalid status filter", errors.New("status must be active, inactive or pending"))
		return
	}
	if roleHex := q.Get("role"); roleHex != "" {
		roleID, err := bson.ObjectIDFromHex(roleHex)
		if err != nil {
			h.ErrorResponse(ctx, w, http.StatusBadRequest, "invalid role filter", err)
			return
		}
		opt.RoleID = roleID
	}
	if page := q.Get("page"); page != "" {
		opt.Page, _ = strconv.Atoi(page)
	}
	if limit := q.Get("limit"); limit != "" {
		opt.Limit, _ = strconv.Atoi(limit)
	}
	sortOrder := q.Get("sortOrder")
	if sortOrder == "" {
		// older clients send "order" instead
		sortOrder = q.Get("order")
	}
	switch sortOrder {
	case "desc":
		opt.SortDesc = true
	case "", "asc":
	default:
		h.ErrorResponse(ctx, w, http.StatusBadRequest, "invalid sort order", errors.New("sortOrder must be asc or desc"))
		return
	}

	err := h.Svc.ListMembers(ctx, &opt)
	if err != nil {
		h.HandleError(ctx, w, err)
		return
	}

	respData := make([]MemberResponse, 0, len(opt.Result))
	for _, member := range opt.Result {
		respData = append(respData, newMemberResponse(member))
	}
	response := ListResponse[MemberResponse]{
		Success: true,
		Data:    respData,
		Total:   opt.Total,
		Page:    opt.Page,
		Pages:   opt.Pages,
	}
	h.JSONResponse(ctx, w, http.StatusOK, response)
}

func (h *Handler) GetMember(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	member, err := h.Svc.GetMember(ctx, h.GetPathParam(r, "id"))
	if err != nil {
		h.HandleError(ctx, w, err)
		return
	}
	respData := newMemberResponse(member)
	response := NewSuccessResponse(&respData)
	h.JSONResponse(ctx, w, http.StatusOK, response)
}

type CreateMemberRequest struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Address     string `json:"address"`
	City        string `json:"city"`
	State       string `json:"state"`
	ZipCode     string `json:"zipCode"`
	DateOfBirth int64  `json:"dateOfBirth"`
	Gender      string `json:"gender"`
	Status      string `json:"status"`
	RoleID      string `json:"roleID"`
	Notes       string `json:"notes"`
}

func (h *Handler) CreateMember(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req CreateMemberRequest
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

	member := &domain.Member{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		Phone:       req.Phone,
		Address:     req.Address,
		City:        req.City,
		State:       req.State,
		ZipCode:     req.ZipCode,
		DateOfBirth: req.DateOfBirth,
		Gender:      req.Gender,
		Status:      domain.MemberStatus(req.Status),
		Notes:       req.Notes,
	}
	if req.RoleID != "" {
		roleID, err := bson.ObjectIDFromHex(req.RoleID)
		if err != nil {
			h.ErrorResponse(ctx, w, http.StatusBadRequest, "invalid role ID", err)
			return
		}
		member.RoleID = roleID
	}

	err = h.Svc.CreateMember(ctx, &claims, member)
	if err != nil {
		h.HandleError(ctx, w, err)
		return
	}

	StageAudit(ctx, member.ID, service.MemberSnapshot(member))

	respData := newMemberResponse(member)
	response := NewSuccessResponse(&respData)
	h.JSONResponse(ctx, w, http.StatusCreated, response)
}

type UpdateMemberRequest struct {
	FirstName   *string `json:"firstName,omitempty"`
	LastName    *string `json:"lastName,omitempty"`
	Email       *string `json:"email,omitempty"`
	Phone       *string `json:"phone,omitempty"`
	Address     *string `json:"address,omitempty"`
	City        *string `json:"city,omitempty"`
	State       *string `json:"state,omitempty"`
	ZipCode     *string `json:"zipCode,omitempty"`
	DateOfBirth *int64  `json:"dateOfBirth,omitempty"`
	Gender      *string `json:"gender,omitempty"`
	Status      *string `json:"status,omitempty"`
	RoleID      *string `json:"roleID,omitempty"`
	Notes       *string `json:"notes,omitempty"`
}

func (h *Handler) UpdateMember(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req UpdateMemberRequest
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

	opt := domain.UpdateMemberOptions{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		Phone:       req.Phone,
		Address:     req.Address,
		City:        req.City,
		State:       req.State,
		ZipCode:     req.ZipCode,
		DateOfBirth: req.DateOfBirth,
		Gender:      req.Gender,
		RoleID:      req.RoleID,
		Notes:       req.Notes,
	}
	if req.Status != nil {
		status := domain.MemberStatus(*req.Status)
		opt.Status = &status
	}

	member, changes, err := h.Svc.UpdateMember(ctx, &claims, h.GetPathParam(r, "id"), opt)
	if err != nil {
		h.HandleError(ctx, w, err)
		return
	}

	if len(changes) == 0 {
		SkipAudit(ctx)
	} else {
		StageAudit(ctx, member.ID, changes)
	}

	respData := newMemberResponse(member)
	response := NewSuccessResponse(&respData)
	h.JSONResponse(ctx, w, http.StatusOK, response)
}

func (h *Handler) DeleteMember(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	claims, ok := h.GetClaimsFromContext(ctx)
	if !ok {
		h.ErrorResponse(ctx, w, http.StatusUnauthorized, "Unauthorized", errors.New("claims not found"))
		return
	}

	member, err := h.Svc.DeleteMember(ctx, &claims, h.GetPathParam(r, "id"))
	if err != nil {
		h.HandleError(ctx, w, err)
		return
	}

	StageAudit(ctx, member.ID, service.MemberSnapshot(member))

	response := NewSuccessResponse[string](nil)
	h.JSONResponse(ctx, w, http.StatusOK, response)
}

type UploadPictureResponse struct {
	ProfilePicture string `json:"profilePicture"`
}

// UploadProfilePicture stores the uploaded file under the configured upload
// directory and points the member's profilePicture at it. File names are
// always regenerated; the client-supplied name is only used for its extension.
func (h *Handler) UploadProfilePicture(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	claims, ok := h.GetClaimsFromContext(ctx)
	if !ok {
		h.ErrorResponse(ctx, w, http.StatusUnauthorized, "Unauthorized", errors.New("claims not found"))
		return
	}
	memberID := h.GetPathParam(r, "id")

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		h.ErrorResponse(ctx, w, http.StatusBadRequest, "missing or oversized file upload", err)
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedPictureExts[ext] {
		h.ErrorResponse(ctx, w, http.StatusBadRequest, "unsupported image type", fmt.Errorf("extension %q not allowed", ext))
		return
	}

	fileName := xid.New().String() + ext
	if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
		h.HandleError(ctx, w, err)
		return
	}
	dst, err := os.Create(filepath.Join(h.uploadDir, fileName))
	if err != nil {
		h.HandleError(ctx, w, err)
		return
	}
	defer dst.Close()
	if _, err := io.Copy(dst, file); err != nil {
		h.HandleError(ctx, w, err)
		return
	}

	pictureRef := "/uploads/" + fileName
	oldRef, err := h.Svc.SetMemberPicture(ctx, &claims, memberID, pictureRef)
	if err != nil {
		h.HandleError(ctx, w, err)
		return
	}

	if id, err := bson.ObjectIDFromHex(memberID); err == nil {
		StageAudit(ctx, id, map[string]any{
			"profilePicture": domain.FieldChange{From: oldRef, To: pictureRef},
		})
	}

	respData := UploadPictureResponse{
		ProfilePicture: pictureRef,
	}
	response := NewSuccessResponse(&respData)
	h.JSONResponse(ctx, w, http.StatusOK, response)
}

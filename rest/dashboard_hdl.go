package rest

import (
	"net/http"
	"strconv"

	"github.com/membervault/api/domain"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func (h *Handler) GetDashboardStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	stats, err := h.Svc.DashboardStats(ctx)
	if err != nil {
		h.HandleError(ctx, w, err)
		return
	}
	response := NewSuccessResponse(stats)
	h.JSONResponse(ctx, w, http.StatusOK, response)
}

type MemberGrowthResponse struct {
	Growth []domain.MonthlyCount `json:"growth"`
}

func (h *Handler) GetMemberGrowth(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	growth, err := h.Svc.MemberGrowth(ctx)
	if err != nil {
		h.HandleError(ctx, w, err)
		return
	}
	respData := MemberGrowthResponse{
		Growth: growth,
	}
	response := NewSuccessResponse(&respData)
	h.JSONResponse(ctx, w, http.StatusOK, response)
}

type ActivityLogResponse struct {
	ID         string         `json:"id"`
	Action     string         `json:"action"`
	Collection string         `json:"collection"`
	DocumentID string         `json:"documentID,omitempty"`
	UserID     string         `json:"userID,omitempty"`
	UserName   string         `json:"userName,omitempty"`
	Changes    map[string]any `json:"changes,omitempty"`
	IP         string         `json:"ip,omitempty"`
	Timestamp  int64          `json:"timestamp"`
}

func (h *Handler) GetRecentActivity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	entries, err := h.Svc.RecentActivity(ctx, limit)
	if err != nil {
		h.HandleError(ctx, w, err)
		return
	}

	respData := make([]ActivityLogResponse, 0, len(entries))
	for _, entry := range entries {
		item := ActivityLogResponse{
			ID:         entry.ID.Hex(),
			Action:     string(entry.Action),
			Collection: string(entry.Collection),
			UserName:   entry.UserName,
			Changes:    entry.Changes,
			IP:         entry.IP,
			Timestamp:  entry.Timestamp,
		}
		if !entry.DocumentID.IsZero() {
			item.DocumentID = entry.DocumentID.Hex()
		}
		if !entry.UserID.IsZero() {
			item.UserID = entry.UserID.Hex()
		}
		respData = append(respData, item)
	}
	response := NewSuccessResponse(&respData)
	h.JSONResponse(ctx, w, http.StatusOK, response)
}

// ListActivityLogs is the filtered view over the audit trail, separate from
// the dashboard's fixed-size recent feed.
func (h *Handler) ListActivityLogs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	opt := domain.QueryAuditLogOptions{}
	if from := q.Get("from"); from != "" {
		opt.TimestampGTE, _ = strconv.ParseInt(from, 10, 64)
	}
	if to := q.Get("to"); to != "" {
		opt.TimestampLTE, _ = strconv.ParseInt(to, 10, 64)
	}
	if userHex := q.Get("user"); userHex != "" {
		userID, err := bson.ObjectIDFromHex(userHex)
		if err != nil {
			h.ErrorResponse(ctx, w, http.StatusBadRequest, "invalid user filter", err)
			return
		}
		opt.UserIDs = []bson.ObjectID{userID}
	}
	if docHex := q.Get("document"); docHex != "" {
		docID, err := bson.ObjectIDFromHex(docHex)
		if err != nil {
			h.ErrorResponse(ctx, w, http.StatusBadRequest, "invalid document filter", err)
			return
		}
		opt.DocumentIDs = []bson.ObjectID{docID}
	}
	if action := q.Get("action"); action != "" {
		opt.Actions = []domain.AuditAction{domain.AuditAction(action)}
	}
	if limit := q.Get("limit"); limit != "" {
		opt.Limit, _ = strconv.Atoi(limit)
	}

	err := h.Svc.QueryAuditLogs(ctx, &opt)
	if err != nil {
		h.HandleError(ctx, w, err)
		return
	}

	respData := make([]ActivityLogResponse, 0, len(opt.Result))
	for _, entry := range opt.Result {
		item := ActivityLogResponse{
			ID:         entry.ID.Hex(),
			Action:     string(entry.Action),
			Collection: string(entry.Collection),
			Changes:    entry.Changes,
			IP:         entry.IP,
			Timestamp:  entry.Timestamp,
		}
		if !entry.DocumentID.IsZero() {
			item.DocumentID = entry.DocumentID.Hex()
		}
		if !entry.UserID.IsZero() {
			item.UserID = entry.UserID.Hex()
		}
		respData = append(respData, item)
	}
	response := NewSuccessResponse(&respData)
	h.JSONResponse(ctx, w, http.StatusOK, response)
}

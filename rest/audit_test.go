package rest

import (
	"net/http"
	"testing"
	"time"

	"github.com/membervault/api/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func TestClassifyRoute(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		path       string
		audited    bool
		action     domain.AuditAction
		collection domain.AuditCollection
	}{
		{"login", http.MethodPost, "/api/auth/login", true, domain.AuditActionLogin, domain.AuditCollectionUser},
		{"logout", http.MethodPost, "/api/auth/logout", true, domain.AuditActionLogout, domain.AuditCollectionUser},
		{"register", http.MethodPost, "/api/auth/register", true, domain.AuditActionCreate, domain.AuditCollectionUser},
		{"refresh not audited", http.MethodPost, "/api/auth/refresh-token", false, "", ""},
		{"me not audited", http.MethodGet, "/api/auth/me", false, "", ""},
		{"member list not audited", http.MethodGet, "/api/members", false, "", ""},
		{"member read not audited", http.MethodGet, "/api/members/abc", false, "", ""},
		{"member create", http.MethodPost, "/api/members", true, domain.AuditActionCreate, domain.AuditCollectionMember},
		{"member update", http.MethodPut, "/api/members/abc", true, domain.AuditActionUpdate, domain.AuditCollectionMember},
		{"member delete", http.MethodDelete, "/api/members/abc", true, domain.AuditActionDelete, domain.AuditCollectionMember},
		{"picture upload is an update", http.MethodPost, "/api/members/abc/upload", true, domain.AuditActionUpdate, domain.AuditCollectionMember},
		{"user update", http.MethodPut, "/api/users/abc", true, domain.AuditActionUpdate, domain.AuditCollectionUser},
		{"role create", http.MethodPost, "/api/roles", true, domain.AuditActionCreate, domain.AuditCollectionRole},
		{"role delete", http.MethodDelete, "/api/roles/abc", true, domain.AuditActionDelete, domain.AuditCollectionRole},
		{"unknown path", http.MethodPost, "/api/widgets", false, "", ""},
		{"health", http.MethodGet, "/health", false, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			class, audited := classifyRoute(tt.method, tt.path)
			require.Equal(t, tt.audited, audited)
			if audited {
				assert.Equal(t, tt.action, class.Action)
				assert.Equal(t, tt.collection, class.Collection)
			}
		})
	}
}

func waitForRecord(t *testing.T, ch chan *domain.AuditLog) *domain.AuditLog {
	t.Helper()
	select {
	case record := <-ch:
		return record
	case <-time.After(2 * time.Second):
		t.Fatal("no audit record written")
		return nil
	}
}

func assertNoRecord(t *testing.T, ch chan *domain.AuditLog) {
	t.Helper()
	select {
	case record := <-ch:
		t.Fatalf("unexpected audit record: %+v", record)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestActivityLoggerWritesStagedRecord(t *testing.T) {
	svc := newStubService()
	h := &Handler{Svc: svc}

	docID := bson.NewObjectID()
	actorID := bson.NewObjectID()
	handler := h.ActivityLoggerMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		StageAudit(r.Context(), docID, map[string]any{"firstName": "Alice"})
		StageAuditActor(r.Context(), actorID)
		w.WriteHeader(http.StatusCreated)
	}))

	rec := doRequest(handler, http.MethodPost, "/api/members", `{"firstName":"Alice"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	record := waitForRecord(t, svc.recorded)
	assert.Equal(t, domain.AuditActionCreate, record.Action)
	assert.Equal(t, domain.AuditCollectionMember, record.Collection)
	assert.Equal(t, docID, record.DocumentID)
	assert.Equal(t, actorID, record.UserID)
	assert.Equal(t, "Alice", record.Changes["firstName"])
	assert.NotZero(t, record.Timestamp)
}

func TestActivityLoggerSkipsFailedRequests(t *testing.T) {
	svc := newStubService()
	h := &Handler{Svc: svc}

	handler := h.ActivityLoggerMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		StageAudit(r.Context(), bson.NewObjectID(), nil)
		w.WriteHeader(http.StatusBadRequest)
	}))

	rec := doRequest(handler, http.MethodPost, "/api/members", `{}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assertNoRecord(t, svc.recorded)
}

func TestActivityLoggerHonorsSkip(t *testing.T) {
	svc := newStubService()
	h := &Handler{Svc: svc}

	handler := h.ActivityLoggerMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		SkipAudit(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	rec := doRequest(handler, http.MethodPut, "/api/members/abc", `{"notes":"x"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assertNoRecord(t, svc.recorded)
}

func TestActivityLoggerIgnoresReads(t *testing.T) {
	svc := newStubService()
	h := &Handler{Svc: svc}

	handler := h.ActivityLoggerMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := doRequest(handler, http.MethodGet, "/api/members", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assertNoRecord(t, svc.recorded)
}

func TestActivityLoggerUpdateFallbackUsesBody(t *testing.T) {
	svc := newStubService()
	h := &Handler{Svc: svc}

	handler := h.ActivityLoggerMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := doRequest(handler, http.MethodPut, "/api/users/abc", `{"isActive":false,"password":"secret"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	record := waitForRecord(t, svc.recorded)
	assert.Equal(t, domain.AuditActionUpdate, record.Action)
	assert.Equal(t, false, record.Changes["isActive"])
	assert.NotContains(t, record.Changes, "password", "credentials never reach the audit trail")
}

func TestActivityLoggerCreateParsesDocumentID(t *testing.T) {
	svc := newStubService()
	h := &Handler{Svc: svc}

	docID := bson.NewObjectID()
	handler := h.ActivityLoggerMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"success":true,"data":{"id":"` + docID.Hex() + `"}}`))
	}))

	rec := doRequest(handler, http.MethodPost, "/api/roles", `{"name":"staff"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	record := waitForRecord(t, svc.recorded)
	assert.Equal(t, docID, record.DocumentID, "document id recovered from the response envelope")
}

func TestActivityLoggerFailureDoesNotAffectResponse(t *testing.T) {
	svc := newStubService()
	svc.recordErr = assert.AnError
	h := &Handler{Svc: svc}

	handler := h.ActivityLoggerMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		StageAudit(r.Context(), bson.NewObjectID(), nil)
		w.WriteHeader(http.StatusOK)
	}))

	rec := doRequest(handler, http.MethodDelete, "/api/members/abc", "")
	require.Equal(t, http.StatusOK, rec.Code, "audit write failures stay on the background path")
}

func TestActivityLoggerRestoresRequestBody(t *testing.T) {
	svc := newStubService()
	h := &Handler{Svc: svc}

	var seenBody string
	handler := h.ActivityLoggerMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			FirstName string `json:"firstName"`
		}
		hh := &Handler{}
		require.NoError(t, hh.JSONBind(r, &req))
		seenBody = req.FirstName
		SkipAudit(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	rec := doRequest(handler, http.MethodPost, "/api/members", `{"firstName":"Alice"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Alice", seenBody, "handler must see the body the middleware already read")
}

package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/membervault/api/domain"
	"github.com/membervault/api/pkg/logger"
	"go.mongodb.org/mongo-driver/v2/bson"
)

const auditWriteTimeout = 5 * time.Second

// AuditEntry is the per-request staging area for the activity log. The
// middleware injects an empty entry before the handler runs; handlers fill in
// whatever the route classifier cannot infer (document IDs, field diffs, the
// actor of a login). After the response is written the middleware turns the
// entry into one AuditLog record.
type AuditEntry struct {
	DocumentID bson.ObjectID
	ActorID    bson.ObjectID
	Changes    map[string]any
	Skip       bool
}

type auditEntryKey struct{}

func withAuditEntry(ctx context.Context, entry *AuditEntry) context.Context {
	return context.WithValue(ctx, auditEntryKey{}, entry)
}

func auditEntryFromContext(ctx context.Context) *AuditEntry {
	entry, _ := ctx.Value(auditEntryKey{}).(*AuditEntry)
	return entry
}

// StageAudit records the target document and field changes for the current
// request's activity log. A nil changes map is fine for create and delete
// routes whose snapshot is staged separately.
func StageAudit(ctx context.Context, documentID bson.ObjectID, changes map[string]any) {
	entry := auditEntryFromContext(ctx)
	if entry == nil {
		return
	}
	entry.DocumentID = documentID
	entry.Changes = changes
}

// StageAuditActor sets the acting user explicitly. Login is the one route
// where the actor comes from the handler rather than the token claims.
func StageAuditActor(ctx context.Context, actorID bson.ObjectID) {
	if entry := auditEntryFromContext(ctx); entry != nil {
		entry.ActorID = actorID
	}
}

// SkipAudit suppresses the activity log for the current request, used when an
// update turned out to be a no-op.
func SkipAudit(ctx context.Context) {
	if entry := auditEntryFromContext(ctx); entry != nil {
		entry.Skip = true
	}
}

type routeClass struct {
	Action     domain.AuditAction
	Collection domain.AuditCollection
}

// classifyRoute maps a mutating request to its audit action and collection.
// The second return is false for routes that are never audited, reads
// included. Classification is by table, not by guessing from verbs alone.
func classifyRoute(method, path string) (routeClass, bool) {
	switch {
	case strings.HasSuffix(path, "/auth/login"):
		return routeClass{domain.AuditActionLogin, domain.AuditCollectionUser}, true
	case strings.HasSuffix(path, "/auth/logout"):
		return routeClass{domain.AuditActionLogout, domain.AuditCollectionUser}, true
	case strings.HasSuffix(path, "/auth/register"):
		return routeClass{domain.AuditActionCreate, domain.AuditCollectionUser}, true
	case strings.HasSuffix(path, "/auth/refresh-token"), strings.HasSuffix(path, "/auth/me"):
		return routeClass{}, false
	case strings.HasSuffix(path, "/upload"):
		// uploads are POST but modify an existing document
		return routeClass{domain.AuditActionUpdate, domain.AuditCollectionMember}, true
	}

	if method == http.MethodGet || method == http.MethodHead || method == http.MethodOptions {
		return routeClass{}, false
	}

	var collection domain.AuditCollection
	switch {
	case strings.Contains(path, "/users"):
		collection = domain.AuditCollectionUser
	case strings.Contains(path, "/roles"):
		collection = domain.AuditCollectionRole
	case strings.Contains(path, "/members"):
		collection = domain.AuditCollectionMember
	default:
		return routeClass{}, false
	}

	switch method {
	case http.MethodPost:
		return routeClass{domain.AuditActionCreate, collection}, true
	case http.MethodDelete:
		return routeClass{domain.AuditActionDelete, collection}, true
	default:
		return routeClass{domain.AuditActionUpdate, collection}, true
	}
}

// ActivityLoggerMiddleware writes one activity log record per successful
// mutation, after the response has gone out. A failed write never changes
// the response; it is logged and counted instead.
func (h *Handler) ActivityLoggerMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		class, audited := classifyRoute(r.Method, r.URL.Path)
		if !audited {
			next.ServeHTTP(w, r)
			return
		}

		// keep a copy of JSON bodies for the update fallback diff; multipart
		// uploads stream straight through
		var reqBody []byte
		if r.Body != nil && strings.Contains(r.Header.Get("Content-Type"), "application/json") {
			reqBody, _ = io.ReadAll(io.LimitReader(r.Body, 1<<20))
			r.Body.Close()
			r.Body = io.NopCloser(bytes.NewReader(reqBody))
		}

		entry := &AuditEntry{}
		ctx := withAuditEntry(r.Context(), entry)
		r = r.WithContext(ctx)

		rw, ok := w.(*responseWriter)
		if !ok {
			rw = NewResponseWriter(w)
		}
		next.ServeHTTP(rw, r)

		status := rw.StatusCode()
		if status < 200 || status >= 300 || entry.Skip {
			return
		}

		record := h.buildAuditRecord(ctx, r, class, entry, reqBody, rw.responseBody.Bytes())
		go h.persistAuditRecord(record)
	})
}

func (h *Handler) buildAuditRecord(ctx context.Context, r *http.Request, class routeClass, entry *AuditEntry, reqBody, respBody []byte) *domain.AuditLog {
	record := &domain.AuditLog{
		Action:     class.Action,
		Collection: class.Collection,
		DocumentID: entry.DocumentID,
		UserID:     entry.ActorID,
		Changes:    entry.Changes,
		IP:         realIP(r),
		UserAgent:  r.UserAgent(),
		RequestID:  requestIDFromContext(ctx),
		Timestamp:  time.Now().UnixMilli(),
	}

	if record.DocumentID.IsZero() && class.Action == domain.AuditActionCreate {
		record.DocumentID = documentIDFromResponse(respBody)
	}

	if record.Changes == nil && class.Action == domain.AuditActionUpdate && len(reqBody) > 0 {
		var raw map[string]any
		if err := json.Unmarshal(reqBody, &raw); err == nil {
			delete(raw, "password")
			record.Changes = raw
		}
	}
	return record
}

// persistAuditRecord runs detached from the request; the parent context is
// already done by the time this executes.
func (h *Handler) persistAuditRecord(record *domain.AuditLog) {
	ctx, cancel := context.WithTimeout(context.Background(), auditWriteTimeout)
	defer cancel()

	if err := h.Svc.RecordActivity(ctx, record); err != nil {
		auditWritesTotal.WithLabelValues("error").Inc()
		logger.Logger(ctx).Warn().Err(err).
			Str("action", string(record.Action)).
			Str("collection", string(record.Collection)).
			Str("req_id", record.RequestID).
			Msg("Failed to write activity log")
		return
	}
	auditWritesTotal.WithLabelValues("ok").Inc()
}

// documentIDFromResponse pulls the created document's ID out of the standard
// success envelope.
func documentIDFromResponse(body []byte) bson.ObjectID {
	var envelope struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return bson.ObjectID{}
	}
	id, err := bson.ObjectIDFromHex(envelope.Data.ID)
	if err != nil {
		return bson.ObjectID{}
	}
	return id
}

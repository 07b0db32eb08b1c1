package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/membervault/api/config"
	"github.com/membervault/api/domain"
	"github.com/membervault/api/errs"
	"github.com/membervault/api/pkg/logger"
	"go.uber.org/fx"
)

type SuccessResponse[T any] struct {
	Success bool `json:"success"`
	Data    *T   `json:"data,omitempty"`
}

func NewSuccessResponse[T any](data *T) SuccessResponse[T] {
	return SuccessResponse[T]{Success: true, Data: data}
}

type ListResponse[T any] struct {
	Success bool  `json:"success"`
	Data    []T   `json:"data"`
	Total   int64 `json:"total"`
	Page    int   `json:"page"`
	Pages   int   `json:"pages"`
}

type ErrorDetail struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Stack      string `json:"stack,omitempty"`
}

type ErrorResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Error   *ErrorDetail `json:"error,omitempty"`
}

type Params struct {
	fx.In
	Svc       domain.Service
	ServerCfg config.ServerConfig
	UploadCfg config.UploadConfig
}

func NewHandler(params Params) (*Handler, error) {
	return &Handler{
		Svc:        params.Svc,
		production: params.ServerCfg.IsProduction(),
		uploadDir:  params.UploadCfg.Dir,
	}, nil
}

type Handler struct {
	Svc        domain.Service
	production bool
	uploadDir  string
}

func (h *Handler) JSONResponse(ctx context.Context, w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(data)
	if err != nil {
		logger.Logger(ctx).Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func (h *Handler) JSONBind(r *http.Request, dst any) error {
	decoder := json.NewDecoder(r.Body)
	return decoder.Decode(dst)
}

func (h *Handler) ErrorResponse(ctx context.Context, w http.ResponseWriter, status int, errMsg string, originalErr error) {
	if originalErr != nil {
		logger.Logger(ctx).Warn().Err(originalErr).Int("status", status).Msg(errMsg)
	}
	detail := &ErrorDetail{
		StatusCode: status,
		Message:    errMsg,
	}
	if originalErr != nil && !h.production {
		detail.Stack = fmt.Sprintf("%+v", originalErr)
	}
	resp := ErrorResponse{
		Success: false,
		Message: errMsg,
		Error:   detail,
	}
	h.JSONResponse(ctx, w, status, resp)
}

// HandleError maps service errors to the wire taxonomy: NotFound 404,
// status-carrying errors verbatim, everything else a generic 500.
func (h *Handler) HandleError(ctx context.Context, w http.ResponseWriter, err error) {
	if httpErr, ok := errs.IsHTTPStatusError(err); ok {
		h.ErrorResponse(ctx, w, httpErr.StatusCode, httpErr.Message, httpErr.OriginalErr)
		return
	}
	if errors.Is(err, domain.ErrNotFound) {
		h.ErrorResponse(ctx, w, http.StatusNotFound, "resource not found", err)
		return
	}
	logger.Logger(ctx).Error().Err(err).Msg("unhandled error")
	h.ErrorResponse(ctx, w, http.StatusInternalServerError, "internal server error", err)
}

type claimsKey struct{}

func (h *Handler) SetClaimsInContext(ctx context.Context, claims domain.Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, claims)
}

func (h *Handler) GetClaimsFromContext(ctx context.Context) (domain.Claims, bool) {
	claims, ok := ctx.Value(claimsKey{}).(domain.Claims)
	return claims, ok
}

func (h *Handler) Version(w http.ResponseWriter, r *http.Request) {
	response := map[string]string{
		"message": "MemberVault API Server",
		"version": "1.0.0",
	}
	h.JSONResponse(r.Context(), w, http.StatusOK, response)
}

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response := map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   "MemberVault API Server",
	}
	h.JSONResponse(r.Context(), w, http.StatusOK, response)
}

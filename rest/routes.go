package rest

import (
	"context"
	"net/http"

	"github.com/membervault/api/domain"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (h *Handler) SetupRoutes(engine *echo.Echo) {
	engine.GET("/health", h.echoHandler(h.HealthCheck))
	engine.GET("/version", h.echoHandler(h.Version))
	engine.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	engine.Static("/uploads", h.uploadDir)

	api := engine.Group("/api",
		echo.WrapMiddleware(LoggerMiddleware),
		echo.WrapMiddleware(h.ActivityLoggerMiddleware),
	)
	{
		// auth routes
		api.POST("/auth/register", h.echoHandler(h.Register))
		api.POST("/auth/login", h.echoHandler(h.Login))
		api.POST("/auth/logout", h.echoHandler(h.Logout), echo.WrapMiddleware(h.GetAuthMiddleware()))
		api.POST("/auth/refresh-token", h.echoHandler(h.RefreshToken), echo.WrapMiddleware(h.GetAuthMiddleware()))
		api.GET("/auth/me", h.echoHandler(h.GetSelfUser), echo.WrapMiddleware(h.GetAuthMiddleware()))

		// member routes
		api.GET("/members", h.echoHandler(h.ListMembers), echo.WrapMiddleware(h.GetAuthMiddleware()))
		api.GET("/members/:id", h.echoHandlerWithParams(h.GetMember), echo.WrapMiddleware(h.GetAuthMiddleware()))
		api.POST("/members", h.echoHandler(h.CreateMember), echo.WrapMiddleware(h.GetAuthMiddleware(domain.AdminRole)))
		api.PUT("/members/:id", h.echoHandlerWithParams(h.UpdateMember), echo.WrapMiddleware(h.GetAuthMiddleware(domain.AdminRole)))
		api.DELETE("/members/:id", h.echoHandlerWithParams(h.DeleteMember), echo.WrapMiddleware(h.GetAuthMiddleware(domain.AdminRole)))
		api.POST("/members/:id/upload", h.echoHandlerWithParams(h.UploadProfilePicture), echo.WrapMiddleware(h.GetAuthMiddleware(domain.AdminRole)))

		// account and role administration
		api.GET("/users", h.echoHandler(h.ListUsers), echo.WrapMiddleware(h.GetAuthMiddleware(domain.AdminRole)))
		api.PUT("/users/:id", h.echoHandlerWithParams(h.UpdateUser), echo.WrapMiddleware(h.GetAuthMiddleware(domain.AdminRole)))
		api.GET("/roles", h.echoHandler(h.ListRoles), echo.WrapMiddleware(h.GetAuthMiddleware()))
		api.POST("/roles", h.echoHandler(h.CreateRole), echo.WrapMiddleware(h.GetAuthMiddleware(domain.AdminRole)))
		api.PUT("/roles/:id", h.echoHandlerWithParams(h.UpdateRole), echo.WrapMiddleware(h.GetAuthMiddleware(domain.AdminRole)))
		api.DELETE("/roles/:id", h.echoHandlerWithParams(h.DeleteRole), echo.WrapMiddleware(h.GetAuthMiddleware(domain.AdminRole)))

		// dashboard routes
		api.GET("/dashboard/stats", h.echoHandler(h.GetDashboardStats), echo.WrapMiddleware(h.GetAuthMiddleware(domain.AdminRole)))
		api.GET("/dashboard/member-stats", h.echoHandler(h.GetMemberGrowth), echo.WrapMiddleware(h.GetAuthMiddleware(domain.AdminRole)))
		api.GET("/dashboard/activity-logs", h.echoHandler(h.GetRecentActivity), echo.WrapMiddleware(h.GetAuthMiddleware(domain.AdminRole)))
		api.GET("/activity-logs", h.echoHandler(h.ListActivityLogs), echo.WrapMiddleware(h.GetAuthMiddleware(domain.AdminRole)))
	}
}

func (h *Handler) echoHandler(handlerFunc func(w http.ResponseWriter, r *http.Request)) echo.HandlerFunc {
	return echo.WrapHandler(http.HandlerFunc(handlerFunc))
}

// echoHandlerWithParams wraps a handler function and injects path parameters into request context
func (h *Handler) echoHandlerWithParams(handlerFunc func(w http.ResponseWriter, r *http.Request)) echo.HandlerFunc {
	return func(c echo.Context) error {
		r := c.Request()
		// Store path params in request context
		for _, name := range c.ParamNames() {
			r = r.WithContext(context.WithValue(r.Context(), pathParamKey(name), c.Param(name)))
		}
		handlerFunc(c.Response().Writer, r)
		return nil
	}
}

// pathParamKey is a type for path parameter context keys
type pathParamKey string

// GetPathParam retrieves a path parameter from request context
func (h *Handler) GetPathParam(r *http.Request, name string) string {
	if val, ok := r.Context().Value(pathParamKey(name)).(string); ok {
		return val
	}
	return ""
}

package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/dreamslms/api/internal/domain"
	"github.com/dreamslms/api/internal/service"
	"github.com/dreamslms/api/internal/util"
)

type DashboardHandler struct {
	dashboards *service.DashboardService
}

func RegisterDashboards(e *echo.Echo, auth *service.AuthService, dashboards *service.DashboardService) {
	handler := &DashboardHandler{dashboards: dashboards}

	group := e.Group("/api/v1/dashboard", RequireAuth(auth))
	group.GET("/student", handler.studentDashboard, RequireRole(domain.RoleStudent))
	group.GET("/admin", handler.adminDashboard, RequireRole(domain.RoleAdmin))
}

func (h *DashboardHandler) studentDashboard(c echo.Context) error {
	account, ok := CurrentAccount(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}

	dash, err := h.dashboards.StudentDashboard(c.Request().Context(), account.ID)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dash)
}

func (h *DashboardHandler) adminDashboard(c echo.Context) error {
	dash, err := h.dashboards.AdminDashboard(c.Request().Context())
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dash)
}

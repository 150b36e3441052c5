package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/dreamslms/api/internal/domain"
	"github.com/dreamslms/api/internal/service"
	"github.com/dreamslms/api/internal/util"
)

type AdminHandler struct {
	auth *service.AuthService
}

func RegisterAdmin(e *echo.Echo, auth *service.AuthService) {
	handler := &AdminHandler{auth: auth}

	group := e.Group("/api/v1/admin", RequireAuth(auth), RequireRole(domain.RoleAdmin))
	group.GET("/users", handler.listUsers)
	group.PUT("/users/:id", handler.updateUser)
	group.DELETE("/users/:id", handler.deleteUser)
}

// listUsers returns accounts, optionally filtered by role, newest first.
func (h *AdminHandler) listUsers(c echo.Context) error {
	var role *domain.Role
	if raw := strings.TrimSpace(c.QueryParam("role")); raw != "" {
		parsed, ok := domain.ParseRole(raw)
		if !ok {
			return c.JSON(http.StatusBadRequest, util.Error("unknown role filter"))
		}
		role = &parsed
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))

	accounts, err := h.auth.ListAccounts(c.Request().Context(), role, limit, offset)
	if err != nil {
		return writeServiceError(c, err)
	}
	views := accountViews(accounts)
	return c.JSON(http.StatusOK, AccountsListResponse{
		Accounts: views,
		Meta:     AccountsMeta{Limit: limit, Offset: offset, Count: len(views)},
	})
}

type adminUpdateRequest struct {
	Name  *string     `json:"name"`
	Phone *string     `json:"phoneNumber"`
	Bio   *string     `json:"bio"`
	DOB   *string     `json:"dob"`
	Age   json.Number `json:"age"`
}

func (h *AdminHandler) updateUser(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid account id"))
	}

	var req adminUpdateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}
	input := service.ProfileUpdateInput{
		Name:  req.Name,
		Phone: req.Phone,
		Bio:   req.Bio,
		DOB:   req.DOB,
	}
	if req.Age != "" {
		age, err := strconv.Atoi(req.Age.String())
		if err != nil {
			return c.JSON(http.StatusBadRequest, util.Error("age must be a number"))
		}
		input.Age = &age
	}

	updated, err := h.auth.AdminUpdateAccount(c.Request().Context(), id, input)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, accountView(updated))
}

func (h *AdminHandler) deleteUser(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid account id"))
	}
	actor, ok := CurrentAccount(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}

	if err := h.auth.DeleteAccount(c.Request().Context(), actor, id); err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, util.Message("account deleted"))
}

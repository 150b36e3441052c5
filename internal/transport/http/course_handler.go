package http

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/dreamslms/api/internal/domain"
	"github.com/dreamslms/api/internal/repository/ports"
	"github.com/dreamslms/api/internal/service"
	"github.com/dreamslms/api/internal/util"
)

type CourseHandler struct {
	courses ports.CourseRepository
	stats   *service.CourseStatsService
}

func RegisterCourses(e *echo.Echo, auth *service.AuthService, courses ports.CourseRepository, stats *service.CourseStatsService) {
	handler := &CourseHandler{courses: courses, stats: stats}

	e.GET("/api/v1/courses", handler.listCourses)
	e.GET("/api/v1/courses/:id", handler.getCourse, OptionalAuth(auth))
	e.GET("/api/v1/admin/courses/top", handler.topCourses, RequireAuth(auth), RequireRole(domain.RoleAdmin))
}

func (h *CourseHandler) listCourses(c echo.Context) error {
	category := strings.TrimSpace(c.QueryParam("category"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	courses, err := h.courses.List(c.Request().Context(), category, limit, offset)
	if err != nil {
		return writeServiceError(c, err)
	}
	if courses == nil {
		courses = []domain.Course{}
	}
	return c.JSON(http.StatusOK, util.Data("courses", courses))
}

func (h *CourseHandler) getCourse(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid course id"))
	}

	course, err := h.courses.FindByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, util.Error("course not found"))
		}
		return writeServiceError(c, err)
	}

	h.recordView(c, id)
	return c.JSON(http.StatusOK, util.Data("course", course))
}

// recordView indexes the view off the request path. Stats must never
// slow down or fail a course page.
func (h *CourseHandler) recordView(c echo.Context, courseID uuid.UUID) {
	if h.stats == nil {
		return
	}
	var accountID *uuid.UUID
	if account, ok := CurrentAccount(c); ok && account != nil {
		accountID = &account.ID
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := h.stats.RecordView(ctx, courseID, accountID); err != nil && !errors.Is(err, service.ErrStatsUnavailable) {
			log.Printf("course view record failed: %v", err)
		}
	}()
}

func (h *CourseHandler) topCourses(c echo.Context) error {
	if h.stats == nil {
		return c.JSON(http.StatusServiceUnavailable, util.Error("course view stats unavailable"))
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	counts, err := h.stats.TopCourses(c.Request().Context(), 30*24*time.Hour, limit)
	if err != nil {
		if errors.Is(err, service.ErrStatsUnavailable) {
			return c.JSON(http.StatusServiceUnavailable, util.Error("course view stats unavailable"))
		}
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, util.Data("courses", counts))
}

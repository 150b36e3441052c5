package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/dreamslms/api/internal/domain"
	"github.com/dreamslms/api/internal/service"
	"github.com/dreamslms/api/internal/util"
)

type ProfileHandler struct {
	auth *service.AuthService
}

func RegisterProfile(e *echo.Echo, auth *service.AuthService) {
	handler := &ProfileHandler{auth: auth}

	group := e.Group("/api/v1/profile", RequireAuth(auth))
	group.GET("", handler.getProfile)
	group.PUT("", handler.updateProfile)
	group.POST("/password", handler.changePassword)
}

func (h *ProfileHandler) getProfile(c echo.Context) error {
	account, ok := CurrentAccount(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}
	return c.JSON(http.StatusOK, accountView(account))
}

// updateProfile accepts multipart form data so the avatar can travel
// with the field edits. Education and experience arrive as JSON strings.
func (h *ProfileHandler) updateProfile(c echo.Context) error {
	account, ok := CurrentAccount(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}

	input, image, err := parseProfileForm(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
	}
	if image != nil {
		defer image.close()
	}

	var profileImage *service.ProfileImage
	if image != nil {
		profileImage = &image.upload
	}
	updated, err := h.auth.UpdateProfile(c.Request().Context(), account.ID, input, profileImage)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, accountView(updated))
}

func (h *ProfileHandler) changePassword(c echo.Context) error {
	account, ok := CurrentAccount(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}

	var req ChangePasswordRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}
	if err := h.auth.ChangePassword(c.Request().Context(), account.ID, req.CurrentPassword, req.NewPassword); err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, util.Message("password updated"))
}

type profileImageForm struct {
	upload service.ProfileImage
	close  func()
}

// parseProfileForm reads the multipart profile payload. Unknown fields
// are ignored; password, role and reset state have no form fields at
// all.
func parseProfileForm(c echo.Context) (service.ProfileUpdateInput, *profileImageForm, error) {
	var input service.ProfileUpdateInput

	formValue := func(name string) *string {
		value := c.FormValue(name)
		if strings.TrimSpace(value) == "" {
			return nil
		}
		return &value
	}

	input.Name = formValue("name")
	input.Phone = formValue("phoneNumber")
	input.Bio = formValue("bio")
	input.DOB = formValue("dob")

	if raw := formValue("age"); raw != nil {
		age, err := strconv.Atoi(strings.TrimSpace(*raw))
		if err != nil {
			return input, nil, errors.New("age must be a number")
		}
		input.Age = &age
	}
	if raw := formValue("education"); raw != nil {
		var education domain.EducationList
		if err := json.Unmarshal([]byte(*raw), &education); err != nil {
			return input, nil, errors.New("education must be a JSON array")
		}
		input.Education = education
	}
	if raw := formValue("experience"); raw != nil {
		var experience domain.ExperienceList
		if err := json.Unmarshal([]byte(*raw), &experience); err != nil {
			return input, nil, errors.New("experience must be a JSON array")
		}
		input.Experience = experience
	}
	if raw := formValue("profileImage"); raw != nil && *raw == "null" {
		input.ClearImage = true
	}

	fileHeader, err := c.FormFile("profileImage")
	if err != nil {
		// No file part; field edits alone are fine.
		return input, nil, nil
	}
	file, err := fileHeader.Open()
	if err != nil {
		return input, nil, errors.New("unable to read the uploaded image")
	}

	return input, &profileImageForm{
		upload: service.ProfileImage{
			Reader:      file,
			Size:        fileHeader.Size,
			FileName:    fileHeader.Filename,
			ContentType: fileHeader.Header.Get(echo.HeaderContentType),
		},
		close: func() { _ = file.Close() },
	}, nil
}

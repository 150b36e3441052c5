package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/dreamslms/api/internal/service"
	"github.com/dreamslms/api/internal/util"
)

type AuthHandler struct {
	auth *service.AuthService
}

func RegisterAuth(e *echo.Echo, auth *service.AuthService) {
	handler := &AuthHandler{auth: auth}

	group := e.Group("/api/v1/auth")
	group.POST("/signup", handler.signup)
	group.POST("/signin", handler.signin)
	group.POST("/google", handler.signinWithGoogle)
	group.POST("/forgot-password", handler.forgotPassword)
	group.POST("/reset-password", handler.resetPassword)
	group.GET("/logout", handler.logout, RequireAuth(auth))
}

// signup registers a student or teacher account.
func (h *AuthHandler) signup(c echo.Context) error {
	var req SignupRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}

	account, err := h.auth.Signup(c.Request().Context(), service.SignupInput{
		Name:            req.Name,
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
		Role:            req.Role,
	})
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, accountView(account))
}

// signin exchanges credentials for a session token.
func (h *AuthHandler) signin(c echo.Context) error {
	var req SigninRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}

	result, err := h.auth.Signin(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, signinResponse(result))
}

// signinWithGoogle verifies a Google ID token and opens a session.
func (h *AuthHandler) signinWithGoogle(c echo.Context) error {
	var req GoogleSigninRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}

	result, err := h.auth.SigninWithGoogle(c.Request().Context(), req.IDToken)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, signinResponse(result))
}

// forgotPassword starts the OTP reset flow. The response does not reveal
// whether the address is registered, and it never carries the token or
// the OTP. Both travel by email only.
func (h *AuthHandler) forgotPassword(c echo.Context) error {
	var req ForgotPasswordRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}
	if req.Email == "" {
		return c.JSON(http.StatusBadRequest, util.Error("email is required"))
	}

	if err := h.auth.RequestPasswordReset(c.Request().Context(), req.Email); err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, util.Message("if the address is registered, a reset email is on its way"))
}

// resetPassword completes the OTP reset flow.
func (h *AuthHandler) resetPassword(c echo.Context) error {
	var req ResetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}

	result, err := h.auth.ConfirmPasswordReset(c.Request().Context(), service.ConfirmResetInput{
		Token:           req.Token,
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
		OTP:             req.OTP,
	})
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, ResetPasswordResponse{
		Message:     "password has been reset",
		Role:        result.Role,
		RedirectURL: result.RedirectURL,
	})
}

// logout deactivates the presented session token.
func (h *AuthHandler) logout(c echo.Context) error {
	if err := h.auth.Logout(c.Request().Context(), currentToken(c)); err != nil {
		return c.JSON(http.StatusInternalServerError, util.Error("unable to sign out"))
	}
	return c.JSON(http.StatusOK, util.Message("signed out"))
}

func signinResponse(result *service.SigninResult) SigninResponse {
	return SigninResponse{
		Token:       result.Token,
		ExpiresAt:   result.ExpiresAt,
		Role:        result.Role,
		RedirectURL: result.RedirectURL,
		Account:     accountView(result.Account),
	}
}

// writeServiceError maps service sentinels onto HTTP statuses. Unknown
// errors become opaque 500s so internals never leak to clients.
func writeServiceError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, service.ErrPasswordTooWeak),
		errors.Is(err, service.ErrPasswordMismatch),
		errors.Is(err, service.ErrEmailAlreadyUsed),
		errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrInvalidResetToken),
		errors.Is(err, service.ErrResetOTPInvalid),
		errors.Is(err, service.ErrResetOTPExpired):
		return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
	case errors.Is(err, service.ErrUnauthorized):
		return c.JSON(http.StatusUnauthorized, util.Error(err.Error()))
	case errors.Is(err, service.ErrForbidden):
		return c.JSON(http.StatusForbidden, util.Error(err.Error()))
	case errors.Is(err, service.ErrAccountNotFound):
		return c.JSON(http.StatusNotFound, util.Error(err.Error()))
	case errors.Is(err, service.ErrResetEmailFailed):
		return c.JSON(http.StatusBadGateway, util.Error(err.Error()))
	default:
		c.Logger().Errorf("request failed: %v", err)
		return c.JSON(http.StatusInternalServerError, util.Error("internal server error"))
	}
}

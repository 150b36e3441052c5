package http

import (
	"time"

	"github.com/dreamslms/api/internal/domain"
)

// ErrorResponse represents a generic error payload.
type ErrorResponse struct {
	Error string `json:"error" example:"incorrect email or password"`
}

// AccountView is the sanitized account representation returned by the
// API. Password material never appears here.
type AccountView struct {
	ID         string                `json:"id" example:"9fd13fd2-63c5-4f29-a210-4a1a8e285f74"`
	Email      string                `json:"email" example:"user@example.com"`
	Name       string                `json:"name" example:"Maya Iyer"`
	Role       domain.Role           `json:"role" example:"student"`
	Phone      *string               `json:"phoneNumber,omitempty" example:"+1 555 0100"`
	Bio        *string               `json:"bio,omitempty"`
	DOB        *string               `json:"dob,omitempty" example:"1999-12-31"`
	Age        *int                  `json:"age,omitempty" example:"25"`
	ImageURL   *string               `json:"profileImage,omitempty" example:"https://cdn.example.com/avatar.png"`
	Education  domain.EducationList  `json:"education,omitempty"`
	Experience domain.ExperienceList `json:"experience,omitempty"`
	CreatedAt  time.Time             `json:"createdAt" example:"2024-01-01T12:00:00Z"`
}

func accountView(a *domain.Account) AccountView {
	view := AccountView{
		ID:         a.ID.String(),
		Email:      a.Email,
		Name:       a.Name,
		Role:       a.Role,
		Phone:      a.Phone,
		Bio:        a.Bio,
		Age:        a.Age,
		ImageURL:   a.ImageURL,
		Education:  a.Education,
		Experience: a.Experience,
		CreatedAt:  a.CreatedAt,
	}
	if a.DOB != nil {
		dob := a.DOB.Format("2006-01-02")
		view.DOB = &dob
	}
	return view
}

func accountViews(accounts []domain.Account) []AccountView {
	views := make([]AccountView, 0, len(accounts))
	for i := range accounts {
		views = append(views, accountView(&accounts[i]))
	}
	return views
}

// SignupRequest is the self-registration payload.
type SignupRequest struct {
	Name            string `json:"name" example:"Maya Iyer"`
	Email           string `json:"email" example:"user@example.com"`
	Password        string `json:"password" example:"longenough"`
	ConfirmPassword string `json:"confirmPassword" example:"longenough"`
	Role            string `json:"role" example:"student"`
}

type SigninRequest struct {
	Email    string `json:"email" example:"user@example.com"`
	Password string `json:"password" example:"longenough"`
}

type GoogleSigninRequest struct {
	IDToken string `json:"id_token"`
}

// SigninResponse is returned by endpoints that open a session.
type SigninResponse struct {
	Token       string      `json:"token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	ExpiresAt   time.Time   `json:"expiresAt" example:"2024-01-02T09:30:00Z"`
	Role        domain.Role `json:"role" example:"student"`
	RedirectURL string      `json:"redirectUrl" example:"/student/dashboard"`
	Account     AccountView `json:"account"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" example:"user@example.com"`
}

// ResetPasswordRequest carries the emailed token and OTP together with
// the replacement password.
type ResetPasswordRequest struct {
	Token           string `json:"token"`
	Email           string `json:"email" example:"user@example.com"`
	Password        string `json:"password" example:"brandnewpw"`
	ConfirmPassword string `json:"confirmPassword" example:"brandnewpw"`
	OTP             string `json:"otp" example:"482913"`
}

type ResetPasswordResponse struct {
	Message     string      `json:"message" example:"password has been reset"`
	Role        domain.Role `json:"role" example:"student"`
	RedirectURL string      `json:"redirectUrl" example:"/student/dashboard"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// AccountsMeta describes pagination metadata for account listings.
type AccountsMeta struct {
	Limit  int `json:"limit" example:"50"`
	Offset int `json:"offset" example:"0"`
	Count  int `json:"count" example:"2"`
}

type AccountsListResponse struct {
	Accounts []AccountView `json:"accounts"`
	Meta     AccountsMeta  `json:"meta"`
}

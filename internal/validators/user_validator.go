package validators

import (
	"fmt"

	"credibly/internal/utils"
)

type UserRegistrationRequest struct {
	FirstName string `json:"firstName" validate:"required,min=1,max=50"`
	LastName  string `json:"lastName" validate:"required,min=1,max=50"`
	Email     string `json:"email" validate:"required,email,max=254"`
	Password  string `json:"password" validate:"required,max=128,password_policy"`
	Headline  string `json:"headline" validate:"omitempty,max=120"`
}

type UserLoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type VerifyEmailRequest struct {
	Token string `json:"token" validate:"required,min=16,max=128"`
}

type ResendVerificationRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type UserUpdateRequest struct {
	FirstName *string `json:"firstName" validate:"omitempty,min=1,max=50"`
	LastName  *string `json:"lastName" validate:"omitempty,min=1,max=50"`
	Headline  *string `json:"headline" validate:"omitempty,max=120"`
	Bio       *string `json:"bio" validate:"omitempty,max=2000"`
	JobTitle  *string `json:"jobTitle" validate:"omitempty,max=100"`
	Company   *string `json:"company" validate:"omitempty,max=100"`
	Location  *string `json:"location" validate:"omitempty,max=100"`
	AvatarURL *string `json:"avatarUrl" validate:"omitempty,url,max=2048"`
}

func ValidateUserRegistration(req *UserRegistrationRequest, passwordMinLength int) ValidationErrors {
	req.Email = utils.NormalizeEmail(req.Email)
	errs := ValidateStruct(req)

	if len(req.Password) < passwordMinLength {
		errs = append(errs, ValidationError{
			Field:   "password",
			Tag:     "min",
			Message: fmt.Sprintf("password must be at least %d characters", passwordMinLength),
		})
	}

	return errs
}

func ValidateUserUpdate(req *UserUpdateRequest) ValidationErrors {
	req.FirstName = utils.TrimPtr(req.FirstName)
	req.LastName = utils.TrimPtr(req.LastName)
	req.Headline = utils.TrimPtr(req.Headline)
	req.JobTitle = utils.TrimPtr(req.JobTitle)
	req.Company = utils.TrimPtr(req.Company)
	req.Location = utils.TrimPtr(req.Location)
	return ValidateStruct(req)
}

package validator

import (
	"net/mail"
	"strings"

	"go-event-cms/modules/auth/dto"
)

const minPasswordLength = 8

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ValidationResult struct {
	Errors []ValidationError `json:"errors"`
}

func (r *ValidationResult) HasError() bool {
	return len(r.Errors) > 0
}

func (r *ValidationResult) Add(field, message string) {
	r.Errors = append(r.Errors, ValidationError{Field: field, Message: message})
}

func ValidateRegisterRequest(req *dto.RegisterRequest) *ValidationResult {
	result := &ValidationResult{}
	validateEmail(req.Email, result)
	if strings.TrimSpace(req.FullName) == "" {
		result.Add("full_name", "full name is required")
	}
	if len(req.Password) < minPasswordLength {
		result.Add("password", "password must be at least 8 characters")
	}
	return result
}

func ValidateLoginRequest(req *dto.LoginRequest) *ValidationResult {
	result := &ValidationResult{}
	validateEmail(req.Email, result)
	if req.Password == "" {
		result.Add("password", "password is required")
	}
	return result
}

func validateEmail(email string, result *ValidationResult) {
	if email == "" {
		result.Add("email", "email is required")
		return
	}
	if _, err := mail.ParseAddress(email); err != nil {
		result.Add("email", "invalid email address")
	}
}

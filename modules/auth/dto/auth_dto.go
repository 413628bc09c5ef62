package dto

import (
	"time"

	"go-event-cms/modules/auth/entity"
)

type RegisterRequest struct {
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type TokenResponse struct {
	AccessToken  string        `json:"access_token"`
	RefreshToken string        `json:"refresh_token"`
	User         *UserResponse `json:"user,omitempty"`
}

type UserResponse struct {
	ID         string          `json:"id"`
	Email      string          `json:"email"`
	FullName   string          `json:"full_name"`
	Privileges map[string]bool `json:"privileges"`
	CreatedAt  time.Time       `json:"created_at"`
}

func ToUserResponse(user *entity.User) *UserResponse {
	return &UserResponse{
		ID:         user.ID.Hex(),
		Email:      user.Email,
		FullName:   user.FullName,
		Privileges: user.Privileges,
		CreatedAt:  user.CreatedAt,
	}
}

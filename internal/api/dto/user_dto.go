package dto

import (
	"time"

	"github.com/spec-kit/auth-service/internal/domain"
)

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse carries both tokens.
type LoginResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// RefreshResponse carries the new access token.
type RefreshResponse struct {
	AccessToken string `json:"accessToken"`
}

// UserRequest payload for creating or replacing a user.
type UserRequest struct {
	Name        string   `json:"name" validate:"omitempty,max=120"`
	Email       string   `json:"email" validate:"required,email"`
	Password    string   `json:"password" validate:"required,min=1,max=72"`
	Permissions []string `json:"permissions" validate:"omitempty,dive,required"`
}

// UserResponse never exposes the password hash.
type UserResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Permissions []string  `json:"permissions"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewUserResponse maps a user to its public representation.
func NewUserResponse(user *domain.User) UserResponse {
	perms := user.Permissions
	if perms == nil {
		perms = []string{}
	}
	return UserResponse{
		ID:          user.ID,
		Name:        user.Name,
		Email:       user.Email,
		Permissions: perms,
		CreatedAt:   user.CreatedAt,
		UpdatedAt:   user.UpdatedAt,
	}
}

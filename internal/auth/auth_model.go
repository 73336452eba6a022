package auth

import (
	"time"

	"github.com/BizDaniel/go2play/internal/models"
	"github.com/BizDaniel/go2play/internal/user"
)

type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=30,alphanum" example:"john_doe"`
	Email    string `json:"email" binding:"required,email" example:"john@example.com"`
	Password string `json:"password" binding:"required,min=8,max=72" example:"password123"`
	Age      *int   `json:"age,omitempty" binding:"omitempty,gte=13,lte=100"`
	Level    string `json:"level,omitempty" example:"intermediate"`
}

type LoginRequest struct {
	LoginIdentifier string `json:"login_identifier" binding:"required" example:"john@example.com"` // Can be email or username
	Password        string `json:"password" binding:"required" example:"password123"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type LogoutRequest struct {
	RefreshToken          string `json:"refresh_token"`           // Optional: specific token to invalidate
	InvalidateAllSessions bool   `json:"invalidate_all_sessions"` // If true, invalidate all user's sessions
}

type UpdateProfileRequest struct {
	Username       *string             `json:"username,omitempty" binding:"omitempty,min=3,max=30,alphanum"`
	Age            *int                `json:"age,omitempty" binding:"omitempty,gte=13,lte=100"`
	Level          *string             `json:"level,omitempty"`
	PreferredRoles *models.StringSlice `json:"preferred_roles,omitempty"`
	Avatar         *string             `json:"avatar,omitempty"`
}

type AuthResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	User         UserResponse `json:"user"`
}

type UserResponse struct {
	ID             uint      `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	Age            *int      `json:"age,omitempty"`
	Level          string    `json:"level,omitempty"`
	PreferredRoles []string  `json:"preferred_roles,omitempty"`
	Avatar         string    `json:"avatar,omitempty"`
	LastActive     time.Time `json:"last_active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type UsernameAvailabilityResponse struct {
	Username  string `json:"username"`
	Available bool   `json:"available"`
}

func FilterUserRecord(u *user.User) UserResponse {
	return UserResponse{
		ID:             u.ID,
		Username:       u.Username,
		Email:          u.Email,
		Age:            u.Age,
		Level:          u.Level,
		PreferredRoles: u.PreferredRoles,
		Avatar:         u.Avatar,
		LastActive:     u.LastActive,
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
	}
}

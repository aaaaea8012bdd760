package auth

import (
	"time"

	"github.com/quattro-app/quattro/internal/level"
	"github.com/quattro-app/quattro/internal/user"
)

type RegisterRequest struct {
	Username      string `json:"username" binding:"required,min=3,max=30" example:"marta_p"`
	Email         string `json:"email" binding:"required,email" example:"marta@example.com"`
	Password      string `json:"password" binding:"required,min=8,max=72" example:"password123"`
	DeclaredLevel string `json:"declared_level" binding:"required,oneof=beginner intermediate advanced professional" example:"intermediate"`
}

type LoginRequest struct {
	LoginIdentifier string `json:"login_identifier" binding:"required" example:"marta@example.com"` // Can be email or username
	Password        string `json:"password" binding:"required" example:"password123"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
}

type LogoutRequest struct {
	RefreshToken          string `json:"refresh_token"`           // Optional: specific token to invalidate
	InvalidateAllSessions bool   `json:"invalidate_all_sessions"` // If true, invalidate all user's sessions
}

type AuthResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	User         UserResponse `json:"user"`
}

type UserResponse struct {
	ID             uint         `json:"id"`
	Username       string       `json:"username"`
	Email          string       `json:"email"`
	Role           string       `json:"role"`
	DeclaredLevel  level.Level  `json:"declared_level"`
	PerceivedLevel *level.Level `json:"perceived_level,omitempty"`
	MatchesPlayed  int          `json:"matches_played"`
	CreatedAt      time.Time    `json:"created_at"`
}

func FilterUserRecord(u *user.User) UserResponse {
	return UserResponse{
		ID:             u.ID,
		Username:       u.Username,
		Email:          u.Email,
		Role:           u.Role,
		DeclaredLevel:  u.DeclaredLevel,
		PerceivedLevel: u.PerceivedLevel,
		MatchesPlayed:  u.MatchesPlayed,
		CreatedAt:      u.CreatedAt,
	}
}

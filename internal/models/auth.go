package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// LoginRequest holds credentials for authenticating a user.
type LoginRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required"`
	IP        string `json:"-"`
	UserAgent string `json:"-"`
}

// LoginResponse returns the issued token and user info.
type LoginResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresIn   int64     `json:"expires_in"`
	User        UserInfo  `json:"user"`
	IssuedAt    time.Time `json:"issued_at"`
}

// UserInfo describes the authenticated user in responses.
type UserInfo struct {
	ID       string   `json:"id"`
	Email    string   `json:"email"`
	FullName string   `json:"full_name"`
	Role     UserRole `json:"role"`
}

// JWTClaims represents the JWT payload for access tokens.
type JWTClaims struct {
	UserID   string   `json:"user_id"`
	Role     UserRole `json:"role"`
	Email    string   `json:"email"`
	FullName string   `json:"full_name"`
	jwt.RegisteredClaims
}

// ActorContext carries everything permission checks need about the
// acting user. Team slices are resolved once per request from the
// membership table.
type ActorContext struct {
	UserID      string   `json:"user_id"`
	Role        UserRole `json:"role"`
	TeamIDs     []string `json:"team_ids"`
	LeadOfTeams []string `json:"lead_of_teams"`
}

// Leads reports whether the actor leads the given team.
func (a ActorContext) Leads(teamID string) bool {
	for _, id := range a.LeadOfTeams {
		if id == teamID {
			return true
		}
	}
	return false
}

// MemberOf reports whether the actor belongs to the given team.
func (a ActorContext) MemberOf(teamID string) bool {
	for _, id := range a.TeamIDs {
		if id == teamID {
			return true
		}
	}
	return false
}

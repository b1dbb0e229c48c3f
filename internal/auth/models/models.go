// Package models defines the user account aggregate. Gamification progress
// lives in the stats snapshot owned by the gamify module; this package covers
// identity and credentials only.
package models

import (
	"time"

	id "bisaathi/pkg/domain"
)

// Role values. Officers triage complaints; users earn points.
const (
	RoleUser    = "user"
	RoleOfficer = "officer"
)

// User is a registered account.
type User struct {
	ID           id.UserID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

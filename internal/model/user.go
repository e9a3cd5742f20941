// Package model defines the domain models.
package model

import "time"

// User represents a registered account.
type User struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	Role         Role
	Banned       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Role determines which dashboard and capabilities a session can access.
type Role string

const (
	// RoleStudent can search listings, request bookings and post reviews.
	RoleStudent Role = "student"
	// RoleOwner can create and manage listings and handle booking requests.
	RoleOwner Role = "owner"
	// RoleAdmin can moderate users, listings, testimonials and flags.
	RoleAdmin Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleOwner, RoleAdmin:
		return true
	}
	return false
}

// Session represents a logged-in user session.
type Session struct {
	ID        string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}

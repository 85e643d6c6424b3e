package models

import (
	"strings"
	"time"
)

// User is a profile created from the identity provider on first sign-in.
// @Description User profile
type User struct {
	ID        string    `json:"id" example:"123456789"`
	Username  string    `json:"username" example:"janedoe"`
	FirstName string    `json:"first_name" example:"Jane"`
	LastName  string    `json:"last_name" example:"Doe"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserResponse is the public view of a user.
// @Description Public user profile
type UserResponse struct {
	ID          string    `json:"id" example:"123456789"`
	Username    string    `json:"username" example:"janedoe"`
	FirstName   string    `json:"first_name" example:"Jane"`
	LastName    string    `json:"last_name" example:"Doe"`
	DisplayName string    `json:"display_name" example:"Jane Doe"`
	CreatedAt   time.Time `json:"created_at"`
}

// DisplayName is the name shown as a campaign owner: first and last name,
// else the username, else the id.
func (u *User) DisplayName() string {
	if name := strings.TrimSpace(u.FirstName + " " + u.LastName); name != "" {
		return name
	}
	if u.Username != "" {
		return u.Username
	}
	return u.ID
}

// SameProfile reports whether u already holds the given identity fields.
func (u *User) SameProfile(username, firstName, lastName string) bool {
	return u.Username == username && u.FirstName == firstName && u.LastName == lastName
}

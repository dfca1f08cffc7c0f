// Package model defines domain entities for the application.
package model

import "time"

// AvatarURLPrefix is the URL prefix under which stored avatars are served.
const AvatarURLPrefix = "/uploads/"

// User is a registered account. Records are created once by registration
// and never updated or deleted by any exposed route.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Age          string    `json:"age"`
	Avatar       *string   `json:"avatar,omitempty"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// HasAvatar reports whether the user uploaded an avatar at registration.
func (u *User) HasAvatar() bool {
	return u.Avatar != nil && *u.Avatar != ""
}

// AvatarPath returns the stored avatar path or "" when absent.
func (u *User) AvatarPath() string {
	if u.Avatar == nil {
		return ""
	}
	return *u.Avatar
}

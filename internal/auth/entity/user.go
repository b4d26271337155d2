package entity

import "time"

// User represents an account row in the `users` table. The reset-code
// columns back the forgot-password flow and are null outside it.
type User struct {
	ID                 int64      `db:"id"`
	FirstName          string     `db:"first_name"`
	LastName           *string    `db:"last_name"`
	Email              string     `db:"email"`
	PasswordHash       string     `db:"password_hash"`
	Role               string     `db:"role"`
	Bio                *string    `db:"bio"`
	ProfilePictureURL  *string    `db:"profile_picture_url"`
	ResetCode          *string    `db:"reset_code"`
	ResetCodeExpiresAt *time.Time `db:"reset_code_expires_at"`
	CreatedAt          time.Time  `db:"created_at"`
	UpdatedAt          time.Time  `db:"updated_at"`
}

// PublicUser is the sanitized projection returned to clients. It never
// carries credential material.
type PublicUser struct {
	ID                int64   `json:"id"`
	Name              string  `json:"name"`
	Email             string  `json:"email"`
	Role              string  `json:"role"`
	ProfilePictureURL *string `json:"profile_picture_url,omitempty"`
}

// Public builds the sanitized projection of a user.
func (u *User) Public() PublicUser {
	name := u.FirstName
	if u.LastName != nil && *u.LastName != "" {
		name = name + " " + *u.LastName
	}
	return PublicUser{
		ID:                u.ID,
		Name:              name,
		Email:             u.Email,
		Role:              u.Role,
		ProfilePictureURL: u.ProfilePictureURL,
	}
}

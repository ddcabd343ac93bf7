package users

import "time"

// User is the profile record for the currently authenticated account.
// It is owned exclusively by the session state; collaborators receive copies.
type User struct {
	ID         int64     `json:"id,omitempty"`          // Unique identifier for the user
	Username   string    `json:"username,omitempty"`    // Unique username
	Email      string    `json:"email,omitempty"`       // User's email address
	FirstName  string    `json:"first_name,omitempty"`  // First name of the user
	LastName   string    `json:"last_name,omitempty"`   // Last name of the user
	DateJoined time.Time `json:"date_joined,omitempty"` // Date and time when the user registered
	LastLogin  time.Time `json:"last_login,omitempty"`  // Last time the user logged in
}

// DisplayName returns the best human-readable name available for the user.
func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	if u.FirstName != "" && u.LastName != "" {
		return u.FirstName + " " + u.LastName
	}
	if u.FirstName != "" {
		return u.FirstName
	}
	return u.Username
}

// Clone returns a copy so callers cannot mutate session-owned state.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

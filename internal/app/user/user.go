/*
Package user contains core data structures related to user identity.

It defines the representation of a registered account within the chat system,
the role vocabulary, and the trimmed public view embedded in chat events.
*/
package user

import "time"

// Role classifies an account and drives permission checks.
type Role string

const (
	RoleUser      Role = "User"
	RoleStudent   Role = "Student"
	RoleProfessor Role = "Professor"
	RoleMod       Role = "Mod"
	RoleAdmin     Role = "Admin"
)

// IsPrivileged reports whether the role is exempt from the message length cap
// and may moderate message status.
func (r Role) IsPrivileged() bool {
	return r == RoleMod || r == RoleAdmin
}

// IsValid reports whether the role belongs to the known vocabulary.
func (r Role) IsValid() bool {
	switch r {
	case RoleUser, RoleStudent, RoleProfessor, RoleMod, RoleAdmin:
		return true
	}
	return false
}

// Account lifecycle states.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
	StatusBanned   = "banned"
	StatusLocked   = "locked"
	StatusDeleted  = "deleted"
)

// User represents a registered account.
type User struct {
	ID            string    `json:"id"`
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	PasswordHash  string    `json:"-"`
	DisplayName   string    `json:"displayName"`
	Role          Role      `json:"role"`
	ProfilePic    string    `json:"profilePic"`
	Bio           string    `json:"bio"`
	AccountStatus string    `json:"accountStatus"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// IsActive reports whether the account may open chat connections.
func (u *User) IsActive() bool {
	return u.AccountStatus == StatusActive
}

// Public is the display snapshot of a user embedded in chat events.
type Public struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	ProfilePic  string `json:"profilePic"`
}

// Public returns the trimmed view of the user for broadcast payloads.
func (u *User) Public() Public {
	return Public{
		ID:          u.ID,
		DisplayName: u.DisplayName,
		ProfilePic:  u.ProfilePic,
	}
}

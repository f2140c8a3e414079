package model

import "time"

// UserLevel represents the permission level of a user account
type UserLevel string

const (
	UserLevelUser  UserLevel = "user"  // Default level
	UserLevelAdmin UserLevel = "admin" // Bypasses ownership checks
)

// User represents a user account. The username and email are stored
// lowercased for case-insensitive lookups; DisplayName preserves the case the
// user registered with.
type User struct {
	ID          ID        `json:"_id"`
	DisplayName string    `json:"display_name"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	Hash        string    `json:"-"` // Never expose the credential hash
	Level       UserLevel `json:"level"`
	CreatedAt   time.Time `json:"created_at"`
}

// IsAdmin returns true if the user has the admin level.
func (u *User) IsAdmin() bool {
	return u.Level == UserLevelAdmin
}

// CanModify returns true if the user may mutate a record owned by ownerID.
// Owners and admins may; everyone else may not.
func (u *User) CanModify(ownerID ID) bool {
	return u.ID == ownerID || u.IsAdmin()
}

// Public returns a copy safe to hand to callers: identical to the user but
// with the credential hash cleared.
func (u *User) Public() *User {
	public := *u
	public.Hash = ""
	return &public
}

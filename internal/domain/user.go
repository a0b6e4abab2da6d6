package domain

import "strings"

// User is the identity anchor that owns bookmarks, tags and directories.
type User struct {
	Syncable
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatarUrl"`
}

// DisplayName returns the user's full name, or just the first name if no
// last name is set.
func (u *User) DisplayName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

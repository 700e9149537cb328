package models

import "strings"

type User struct {
	ID       string `json:"_id,omitempty"`
	NID      string `json:"nid,omitempty"`
	Name     string `json:"name,omitempty"`
	Email    string `json:"email"`
	Contact  string `json:"contact,omitempty"`
	PhotoURL string `json:"photoURL,omitempty"`
	Role     Role   `json:"role,omitempty"`
}

// IsAdmin reports whether the record carries the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Identity is the authenticated principal behind a session.
type Identity struct {
	Email       string `json:"email"`
	DisplayName string `json:"displayName,omitempty"`
	PhotoURL    string `json:"photoURL,omitempty"`
}

// DisplayLabel returns the display name, falling back to the email.
func (i *Identity) DisplayLabel() string {
	if name := strings.TrimSpace(i.DisplayName); name != "" {
		return name
	}
	return i.Email
}

// Is reports whether i and email denote the same account.
func (i *Identity) Is(email string) bool {
	return i != nil && i.Email != "" && NormalizeEmail(i.Email) == NormalizeEmail(email)
}

// NormalizeEmail lowercases and trims an email for comparisons.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

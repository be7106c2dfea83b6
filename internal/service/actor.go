package service

import "github.com/Chakyiu/chakyiu-blog/internal/data"

// Actor is the caller identity supplied by the authentication layer. An
// empty ID means an anonymous visitor.
type Actor struct {
	ID   string
	Role data.Role
}

// Anonymous is the actor for visitors without a session.
var Anonymous = Actor{}

// SignedIn reports whether the actor has an account.
func (a Actor) SignedIn() bool { return a.ID != "" }

// IsAdmin reports whether the actor holds the admin role.
func (a Actor) IsAdmin() bool { return a.SignedIn() && a.Role == data.RoleAdmin }

func requireSignedIn(a Actor) error {
	if !a.SignedIn() {
		return PolicyViolation("You must be signed in")
	}
	return nil
}

func requireAdmin(a Actor) error {
	if !a.IsAdmin() {
		return PolicyViolation("Admin access required")
	}
	return nil
}

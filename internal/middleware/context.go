package middleware

import (
	"context"
	"github.com/Chakyiu/chakyiu-blog/internal/data"
	"github.com/Chakyiu/chakyiu-blog/internal/service"
)

// contextKey defines a custom type for context keys to avoid collisions.
type contextKey string

const userContextKey = contextKey("user")

// AnonymousSubject is the casbin subject for requests without a session.
const AnonymousSubject = "anonymous"

// UserInfo represents the essential user information stored in the session and request context.
type UserInfo struct {
	Subject string
	Roles   []string
}

// IsAnonymous reports whether the request has no signed-in user.
func (u *UserInfo) IsAnonymous() bool {
	return u.Subject == "" || u.Subject == AnonymousSubject
}

// HasRole reports whether role is among the user's roles.
func (u *UserInfo) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Actor converts the request identity into the caller the services expect.
func (u *UserInfo) Actor() service.Actor {
	if u.IsAnonymous() {
		return service.Anonymous
	}
	role := data.RoleUser
	if u.HasRole(string(data.RoleAdmin)) {
		role = data.RoleAdmin
	}
	return service.Actor{ID: u.Subject, Role: role}
}

// GetUserInfo retrieves the user information from the request context.
func GetUserInfo(ctx context.Context) *UserInfo {
	if userInfo, ok := ctx.Value(userContextKey).(*UserInfo); ok {
		return userInfo
	}
	// Return an anonymous user if no user info is found in the context.
	return &UserInfo{Subject: AnonymousSubject}
}

// SetUserInfo adds the user information to the request context.
func SetUserInfo(ctx context.Context, userInfo *UserInfo) context.Context {
	return context.WithValue(ctx, userContextKey, userInfo)
}

// ActorFromContext is shorthand for GetUserInfo(ctx).Actor().
func ActorFromContext(ctx context.Context) service.Actor {
	return GetUserInfo(ctx).Actor()
}

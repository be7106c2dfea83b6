package service

import (
	"context"
	"errors"
	"fmt"
	"github.com/Chakyiu/chakyiu-blog/internal/data"
	"github.com/Chakyiu/chakyiu-blog/internal/logger"
	"strings"
)

// UserRepository defines the storage operations for users.
type UserRepository interface {
	GetUserByID(ctx context.Context, id string) (*data.User, error)
	GetAllUsers(ctx context.Context) ([]*data.User, error)
	UpsertUser(ctx context.Context, u *data.User) (*data.User, error)
	UpdateUserRole(ctx context.Context, id string, role data.Role) error
	DeleteUser(ctx context.Context, id string) error
}

// RoleSyncer mirrors a user's role into the authorization layer.
type RoleSyncer interface {
	SyncRole(userID string, role data.Role) error
	RemoveUser(userID string) error
}

type roleInput struct {
	Role string `validate:"required,oneof=admin user"`
}

// UserService manages accounts and roles.
type UserService struct {
	repo        UserRepository
	roles       RoleSyncer
	notifier    Notifier
	adminEmails map[string]struct{}
	log         logger.Logger
}

// NewUserService creates a new UserService. Users signing in with one of
// adminEmails are promoted to admin.
func NewUserService(repo UserRepository, roles RoleSyncer, notifier Notifier, adminEmails []string, log logger.Logger) *UserService {
	emails := make(map[string]struct{}, len(adminEmails))
	for _, e := range adminEmails {
		emails[strings.ToLower(strings.TrimSpace(e))] = struct{}{}
	}
	return &UserService{repo: repo, roles: roles, notifier: notifier, adminEmails: emails, log: log}
}

// SyncUser records a successful login and returns the stored account.
func (s *UserService) SyncUser(ctx context.Context, id, name, email string) (*data.User, error) {
	if id == "" {
		return nil, ValidationError("Subject is required")
	}
	if name == "" {
		name = email
	}
	u, err := s.repo.UpsertUser(ctx, &data.User{ID: id, Name: name, Email: email, Role: data.RoleUser})
	if err != nil {
		return nil, InternalError("failed to save user", err)
	}

	if _, ok := s.adminEmails[strings.ToLower(email)]; ok && u.Role != data.RoleAdmin {
		if err := s.repo.UpdateUserRole(ctx, u.ID, data.RoleAdmin); err != nil {
			return nil, InternalError("failed to promote user", err)
		}
		u.Role = data.RoleAdmin
	}

	if err := s.roles.SyncRole(u.ID, u.Role); err != nil {
		return nil, InternalError("failed to sync user role", err)
	}
	return u, nil
}

// GetUser returns a user by ID.
func (s *UserService) GetUser(ctx context.Context, id string) (*data.User, error) {
	u, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, data.ErrNotFound) {
			return nil, NotFoundError("User not found")
		}
		return nil, InternalError("failed to load user", err)
	}
	return u, nil
}

// ListUsers returns all users for the admin screen.
func (s *UserService) ListUsers(ctx context.Context, actor Actor) ([]*data.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	users, err := s.repo.GetAllUsers(ctx)
	if err != nil {
		return nil, InternalError("failed to load users", err)
	}
	return users, nil
}

// SetUserRole changes another user's role and notifies them.
func (s *UserService) SetUserRole(ctx context.Context, actor Actor, userID string, role data.Role) (*data.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if err := checkStruct(roleInput{Role: string(role)}); err != nil {
		return nil, err
	}
	if userID == actor.ID {
		return nil, PolicyViolation("Cannot change your own role")
	}

	u, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateUserRole(ctx, userID, role); err != nil {
		return nil, InternalError("failed to update role", err)
	}
	u.Role = role

	if err := s.roles.SyncRole(userID, role); err != nil {
		// The stored role is authoritative and is re-synced on next login.
		s.log.With(map[string]interface{}{"user_id": userID}).Error(err, "Failed to sync role to enforcer")
	}

	s.notifier.Notify(ctx, userID, data.NotificationRoleChanged, fmt.Sprintf("Your role has been changed to %s", role), nil)
	return u, nil
}

// DeleteUser removes another user's account. Their comments remain and are
// shown as written by a deleted user.
func (s *UserService) DeleteUser(ctx context.Context, actor Actor, userID string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if userID == actor.ID {
		return PolicyViolation("Cannot delete your own account")
	}
	if err := s.repo.DeleteUser(ctx, userID); err != nil {
		if errors.Is(err, data.ErrNotFound) {
			return NotFoundError("User not found")
		}
		return InternalError("failed to delete user", err)
	}
	if err := s.roles.RemoveUser(userID); err != nil {
		s.log.With(map[string]interface{}{"user_id": userID}).Error(err, "Failed to remove user from enforcer")
	}
	return nil
}

//go:build unit

package service

import (
	"context"
	"errors"
	"github.com/Chakyiu/chakyiu-blog/internal/data"
	"github.com/Chakyiu/chakyiu-blog/internal/logger"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService_SyncUser(t *testing.T) {
	ctx := context.Background()

	t.Run("first login creates user", func(t *testing.T) {
		repo := newMockUserRepository()
		roles := &mockRoleSyncer{}
		svc := NewUserService(repo, roles, &mockNotifier{}, nil, logger.Nop())

		u, err := svc.SyncUser(ctx, "alice", "", "alice@example.com")
		require.NoError(t, err)
		assert.Equal(t, data.RoleUser, u.Role)
		assert.Equal(t, "alice@example.com", u.Name)
		assert.Equal(t, data.RoleUser, roles.roles["alice"])
	})

	t.Run("admin email is promoted", func(t *testing.T) {
		repo := newMockUserRepository()
		roles := &mockRoleSyncer{}
		svc := NewUserService(repo, roles, &mockNotifier{}, []string{" Boss@Example.com "}, logger.Nop())

		u, err := svc.SyncUser(ctx, "boss", "Boss", "boss@example.com")
		require.NoError(t, err)
		assert.Equal(t, data.RoleAdmin, u.Role)
		assert.Equal(t, data.RoleAdmin, repo.users["boss"].Role)
		assert.Equal(t, data.RoleAdmin, roles.roles["boss"])
	})

	t.Run("stored role survives relogin", func(t *testing.T) {
		repo := newMockUserRepository(&data.User{ID: "root", Name: "Root", Role: data.RoleAdmin})
		svc := NewUserService(repo, &mockRoleSyncer{}, &mockNotifier{}, nil, logger.Nop())
		u, err := svc.SyncUser(ctx, "root", "Root2", "root@example.com")
		require.NoError(t, err)
		assert.Equal(t, data.RoleAdmin, u.Role)
		assert.Equal(t, "Root2", repo.users["root"].Name)
	})

	t.Run("missing subject", func(t *testing.T) {
		svc := NewUserService(newMockUserRepository(), &mockRoleSyncer{}, &mockNotifier{}, nil, logger.Nop())
		_, err := svc.SyncUser(ctx, "", "x", "x@example.com")
		assert.Equal(t, KindValidation, KindOf(err))
	})
}

func TestUserService_SetUserRole(t *testing.T) {
	ctx := context.Background()
	seed := func() *mockUserRepository {
		return newMockUserRepository(
			&data.User{ID: "root", Role: data.RoleAdmin},
			&data.User{ID: "alice", Role: data.RoleUser},
		)
	}

	t.Run("promotes and notifies", func(t *testing.T) {
		repo := seed()
		roles := &mockRoleSyncer{}
		notifier := &mockNotifier{}
		svc := NewUserService(repo, roles, notifier, nil, logger.Nop())

		u, err := svc.SetUserRole(ctx, admin, "alice", data.RoleAdmin)
		require.NoError(t, err)
		assert.Equal(t, data.RoleAdmin, u.Role)
		assert.Equal(t, data.RoleAdmin, repo.users["alice"].Role)
		assert.Equal(t, data.RoleAdmin, roles.roles["alice"])

		require.Len(t, notifier.calls, 1)
		assert.Equal(t, "alice", notifier.calls[0].UserID)
		assert.Equal(t, data.NotificationRoleChanged, notifier.calls[0].Type)
		assert.Equal(t, "Your role has been changed to admin", notifier.calls[0].Message)
		assert.Nil(t, notifier.calls[0].ReferenceID)
	})

	t.Run("own role rejected", func(t *testing.T) {
		repo := seed()
		notifier := &mockNotifier{}
		svc := NewUserService(repo, &mockRoleSyncer{}, notifier, nil, logger.Nop())
		_, err := svc.SetUserRole(ctx, admin, "root", data.RoleUser)
		assert.Equal(t, KindPolicy, KindOf(err))
		assert.Equal(t, "Cannot change your own role", PublicMessage(err))
		assert.Equal(t, data.RoleAdmin, repo.users["root"].Role)
		assert.Empty(t, notifier.calls)
	})

	t.Run("invalid role", func(t *testing.T) {
		svc := NewUserService(seed(), &mockRoleSyncer{}, &mockNotifier{}, nil, logger.Nop())
		_, err := svc.SetUserRole(ctx, admin, "alice", data.Role("superuser"))
		assert.Equal(t, KindValidation, KindOf(err))
		assert.Equal(t, "Role must be one of: admin user", PublicMessage(err))
	})

	t.Run("non admin rejected", func(t *testing.T) {
		svc := NewUserService(seed(), &mockRoleSyncer{}, &mockNotifier{}, nil, logger.Nop())
		_, err := svc.SetUserRole(ctx, alice, "root", data.RoleUser)
		assert.Equal(t, KindPolicy, KindOf(err))
	})

	t.Run("unknown user", func(t *testing.T) {
		svc := NewUserService(seed(), &mockRoleSyncer{}, &mockNotifier{}, nil, logger.Nop())
		_, err := svc.SetUserRole(ctx, admin, "ghost", data.RoleUser)
		assert.Equal(t, KindNotFound, KindOf(err))
	})

	t.Run("enforcer failure does not fail the change", func(t *testing.T) {
		repo := seed()
		svc := NewUserService(repo, &mockRoleSyncer{errToReturn: errors.New("adapter down")}, &mockNotifier{}, nil, logger.Nop())
		_, err := svc.SetUserRole(ctx, admin, "alice", data.RoleAdmin)
		require.NoError(t, err)
		assert.Equal(t, data.RoleAdmin, repo.users["alice"].Role)
	})
}

func TestUserService_DeleteUser(t *testing.T) {
	ctx := context.Background()
	repo := newMockUserRepository(&data.User{ID: "root", Role: data.RoleAdmin}, &data.User{ID: "alice", Role: data.RoleUser})
	roles := &mockRoleSyncer{}
	svc := NewUserService(repo, roles, &mockNotifier{}, nil, logger.Nop())

	assert.Equal(t, KindPolicy, KindOf(svc.DeleteUser(ctx, admin, "root")))
	assert.Equal(t, KindPolicy, KindOf(svc.DeleteUser(ctx, alice, "root")))

	require.NoError(t, svc.DeleteUser(ctx, admin, "alice"))
	assert.NotContains(t, repo.users, "alice")
	assert.Equal(t, []string{"alice"}, roles.removed)

	assert.Equal(t, KindNotFound, KindOf(svc.DeleteUser(ctx, admin, "alice")))

	users, err := svc.ListUsers(ctx, admin)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

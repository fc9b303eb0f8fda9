package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vncsmyrnk/election/internal/core/domain"
	"github.com/vncsmyrnk/election/internal/core/services"
)

func TestProfile_Sessions(t *testing.T) {
	e := newEnv(t)
	auth := newAuthService(e)
	users := services.NewUserService(e.store.Users(), e.store.Auth(), services.WithClock(e.clock.Now))
	ctx := context.Background()

	_, first, err := auth.LoginWithGoogle(ctx, "valid_token", "192.0.2.10")
	require.NoError(t, err)
	_, _, err = auth.LoginWithGoogle(ctx, "valid_token", "192.0.2.11")
	require.NoError(t, err)

	user, err := e.store.Users().GetByEmail(ctx, "voter@example.com")
	require.NoError(t, err)

	// 1. Two logins, two sessions
	profile, err := users.Profile(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "voter@example.com", profile.Email)
	assert.Equal(t, []domain.Role{domain.RoleVoter}, profile.Roles)
	assert.Equal(t, domain.Permissions{}, profile.Permissions)
	assert.Equal(t, 2, profile.ActiveSessions)

	// 2. Logout ends one of them
	require.NoError(t, auth.Logout(ctx, first, "192.0.2.10"))
	profile, err = users.Profile(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, profile.ActiveSessions)

	// 3. Expired tokens no longer count
	e.clock.Advance(8 * 24 * time.Hour)
	profile, err = users.Profile(ctx, user.ID)
	require.NoError(t, err)
	assert.Zero(t, profile.ActiveSessions)
}

func TestProfile_Roles(t *testing.T) {
	e := newEnv(t)
	users := services.NewUserService(e.store.Users(), e.store.Auth())
	ctx := context.Background()

	tests := []struct {
		role  domain.Role
		roles []domain.Role
		perms domain.Permissions
	}{
		{domain.RoleVoter, []domain.Role{domain.RoleVoter}, domain.Permissions{}},
		{domain.RoleTallyOfficer, []domain.Role{domain.RoleVoter, domain.RoleTallyOfficer},
			domain.Permissions{ExportResults: true, ReadAudit: true, ListAll: true}},
		{domain.RoleAdmin, []domain.Role{domain.RoleVoter, domain.RoleAdmin},
			domain.Permissions{ManageElections: true, ExportResults: true, ReadAudit: true, ListAll: true}},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			user := &domain.User{Email: string(tt.role) + "@example.com", Name: "Test", Role: tt.role}
			require.NoError(t, e.store.Users().Create(ctx, user))

			profile, err := users.Profile(ctx, user.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.role, profile.Role)
			assert.Equal(t, tt.roles, profile.Roles)
			assert.Equal(t, tt.perms, profile.Permissions)
		})
	}
}

func TestProfile_UnknownUser(t *testing.T) {
	e := newEnv(t)
	users := services.NewUserService(e.store.Users(), e.store.Auth())

	_, err := users.Profile(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/mwells/saasdash/internal/domain"
	"github.com/mwells/saasdash/internal/repository/postgres"
	"github.com/mwells/saasdash/internal/service"
	"github.com/mwells/saasdash/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthService_Register(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	services := service.NewServices(repos, testutil.TestConfig())
	ctx := context.Background()

	tests := []struct {
		name    string
		input   service.RegisterInput
		setup   func()
		wantErr error
	}{
		{
			name: "successful registration",
			input: service.RegisterInput{
				Email:            "A@X.com",
				Password:         "Secur3Pass!",
				Name:             "A",
				OrganizationName: "Acme",
			},
		},
		{
			name: "duplicate email",
			input: service.RegisterInput{
				Email:            "existing@x.com",
				Password:         "Secur3Pass!",
				Name:             "B",
				OrganizationName: "Beta",
			},
			setup: func() {
				testutil.NewUserBuilder().WithEmail("existing@x.com").Build(t, testDB.DB)
			},
			wantErr: service.ErrEmailExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testDB.Truncate(t)

			if tt.setup != nil {
				tt.setup()
			}

			result, err := services.Auth.Register(ctx, tt.input)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			// Email is normalized to lowercase.
			assert.Equal(t, "a@x.com", result.User.Email)
			require.NotNil(t, result.User.DefaultOrganizationID)
			assert.Equal(t, result.Membership.OrganizationID, *result.User.DefaultOrganizationID)
			assert.Equal(t, domain.RoleOwner, result.Membership.Role)
			assert.Equal(t, "Acme", result.Membership.Organization.Name)

			// Exactly one membership exists for the new user.
			memberships, err := repos.Membership.ListByUser(ctx, result.User.ID)
			require.NoError(t, err)
			assert.Len(t, memberships, 1)
		})
	}
}

func TestAuthService_RegisterAtomicity(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	services := service.NewServices(repos, testutil.TestConfig())
	ctx := context.Background()

	// Drop the credentials table so registration fails after the
	// organization and user inserts have already run inside the
	// transaction.
	require.NoError(t, testDB.DB.Exec("DROP TABLE credentials").Error)

	_, err := services.Auth.Register(ctx, service.RegisterInput{
		Email:            "atomic@x.com",
		Password:         "Secur3Pass!",
		Name:             "Atomic",
		OrganizationName: "Orphaned Org",
	})
	require.Error(t, err)

	// Nothing from the failed registration may survive.
	var orgCount int64
	require.NoError(t, testDB.DB.Table("organizations").Count(&orgCount).Error)
	assert.Zero(t, orgCount)

	var userCount int64
	require.NoError(t, testDB.DB.Table("users").Count(&userCount).Error)
	assert.Zero(t, userCount)
}

func TestAuthService_Authenticate(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	services := service.NewServices(repos, testutil.TestConfig())
	ctx := context.Background()

	user, password := testutil.NewUserBuilder().WithEmail("a@x.com").Build(t, testDB.DB)
	testutil.NewOrganizationBuilder().WithName("Acme").WithMember(user.ID, domain.RoleOwner).Build(t, testDB.DB)

	t.Run("valid credentials", func(t *testing.T) {
		result, err := services.Auth.Authenticate(ctx, service.LoginInput{
			Email:    "A@X.com", // case-insensitive lookup
			Password: password,
		})
		require.NoError(t, err)
		assert.Equal(t, user.ID, result.User.ID)
		require.Len(t, result.Memberships, 1)
		assert.Equal(t, domain.RoleOwner, result.Memberships[0].Role)
		assert.Equal(t, "Acme", result.Memberships[0].Organization.Name)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := services.Auth.Authenticate(ctx, service.LoginInput{
			Email:    "a@x.com",
			Password: "wrong-password",
		})
		assert.ErrorIs(t, err, service.ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := services.Auth.Authenticate(ctx, service.LoginInput{
			Email:    "nobody@x.com",
			Password: password,
		})
		assert.ErrorIs(t, err, service.ErrInvalidCredentials)
	})

	t.Run("user without credential row", func(t *testing.T) {
		orphan := &domain.User{ID: uuid.New(), Email: "nocred@x.com", Name: "No Credential"}
		require.NoError(t, testDB.DB.Create(orphan).Error)

		_, err := services.Auth.Authenticate(ctx, service.LoginInput{
			Email:    "nocred@x.com",
			Password: password,
		})
		assert.ErrorIs(t, err, service.ErrInvalidCredentials)
	})

	t.Run("uniform error for both failure causes", func(t *testing.T) {
		_, unknownErr := services.Auth.Authenticate(ctx, service.LoginInput{
			Email:    "nobody@x.com",
			Password: "whatever",
		})
		_, wrongErr := services.Auth.Authenticate(ctx, service.LoginInput{
			Email:    "a@x.com",
			Password: "wrong-password",
		})
		// No-such-account and wrong-password are indistinguishable.
		assert.Equal(t, unknownErr, wrongErr)
	})
}

func TestSelectActiveOrganization(t *testing.T) {
	defaultOrg := uuid.New()
	ownerOrg := uuid.New()
	memberOrg := uuid.New()

	tests := []struct {
		name        string
		user        *domain.User
		memberships []*domain.Membership
		wantOrg     string
	}{
		{
			name: "prefers default organization",
			user: &domain.User{DefaultOrganizationID: &defaultOrg},
			memberships: []*domain.Membership{
				{OrganizationID: ownerOrg, Role: domain.RoleOwner},
				{OrganizationID: defaultOrg, Role: domain.RoleMember},
			},
			wantOrg: defaultOrg.String(),
		},
		{
			name: "falls back to first owner membership",
			user: &domain.User{},
			memberships: []*domain.Membership{
				{OrganizationID: memberOrg, Role: domain.RoleMember},
				{OrganizationID: ownerOrg, Role: domain.RoleOwner},
			},
			wantOrg: ownerOrg.String(),
		},
		{
			name: "stale default falls back to owner membership",
			user: &domain.User{DefaultOrganizationID: &defaultOrg},
			memberships: []*domain.Membership{
				{OrganizationID: ownerOrg, Role: domain.RoleOwner},
			},
			wantOrg: ownerOrg.String(),
		},
		{
			name: "falls back to first membership",
			user: &domain.User{},
			memberships: []*domain.Membership{
				{OrganizationID: memberOrg, Role: domain.RoleMember},
			},
			wantOrg: memberOrg.String(),
		},
		{
			name:        "no memberships",
			user:        &domain.User{},
			memberships: nil,
			wantOrg:     "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := service.SelectActiveOrganization(tt.user, tt.memberships)
			if tt.wantOrg == "" {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.wantOrg, got.String())
		})
	}
}

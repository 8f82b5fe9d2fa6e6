package handlers_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/mwells/saasdash/internal/domain"
	"github.com/mwells/saasdash/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// membersResponse is the wire shape of member-list endpoints.
type membersResponse struct {
	Success bool                        `json:"success"`
	Members []domain.OrganizationMember `json:"members"`
	Error   string                      `json:"error"`
}

func membersURL(ts *testutil.TestServer, orgID uuid.UUID) string {
	return ts.APIURL(fmt.Sprintf("/organizations/%s/members", orgID))
}

func memberURL(ts *testutil.TestServer, orgID, userID uuid.UUID) string {
	return ts.APIURL(fmt.Sprintf("/organizations/%s/members/%s", orgID, userID))
}

func TestAddMember(t *testing.T) {
	ts := testutil.NewTestServer(t)

	ownerClient, ownerResp := ts.RegisterViaAPI(t, "owner@x.com", "Secur3Pass!", "Owner", "Acme")
	orgID := ownerResp.ActiveOrganizationID

	// An existing user outside the organization.
	invitee, _ := testutil.NewUserBuilder().WithEmail("b@x.com").Build(t, ts.DB.DB)

	var resp membersResponse
	httpResp := testutil.PostJSON(t, ownerClient, membersURL(ts, orgID), map[string]string{
		"email": "b@x.com",
		"role":  "member",
	}, &resp)

	assert.Equal(t, http.StatusOK, httpResp.StatusCode)
	require.Len(t, resp.Members, 2)

	byID := make(map[uuid.UUID]domain.OrganizationMember)
	for _, m := range resp.Members {
		byID[m.UserID] = m
	}
	assert.Equal(t, domain.RoleOwner, byID[ownerResp.User.ID].Role)
	assert.Equal(t, domain.RoleMember, byID[invitee.ID].Role)

	t.Run("add is idempotent", func(t *testing.T) {
		var again membersResponse
		httpResp := testutil.PostJSON(t, ownerClient, membersURL(ts, orgID), map[string]string{
			"email": "b@x.com",
			"role":  "admin",
		}, &again)

		// The existing membership is untouched, role included.
		assert.Equal(t, http.StatusOK, httpResp.StatusCode)
		require.Len(t, again.Members, 2)
		for _, m := range again.Members {
			if m.UserID == invitee.ID {
				assert.Equal(t, domain.RoleMember, m.Role)
			}
		}
	})

	t.Run("unknown email", func(t *testing.T) {
		httpResp := testutil.PostJSON(t, ownerClient, membersURL(ts, orgID), map[string]string{
			"email": "missing@x.com",
		}, nil)
		assert.Equal(t, http.StatusNotFound, httpResp.StatusCode)
	})

	t.Run("owner role cannot be granted", func(t *testing.T) {
		httpResp := testutil.PostJSON(t, ownerClient, membersURL(ts, orgID), map[string]string{
			"email": "b@x.com",
			"role":  "owner",
		}, nil)
		assert.Equal(t, http.StatusBadRequest, httpResp.StatusCode)
	})
}

func TestAddMemberRequiresManagementRole(t *testing.T) {
	ts := testutil.NewTestServer(t)

	_, ownerResp := ts.RegisterViaAPI(t, "owner@x.com", "Secur3Pass!", "Owner", "Acme")
	orgID := ownerResp.ActiveOrganizationID

	// A plain member of the same organization.
	member, memberPassword := testutil.NewUserBuilder().WithEmail("member@x.com").Build(t, ts.DB.DB)
	require.NoError(t, ts.Repos.Membership.Create(context.Background(), &domain.Membership{
		OrganizationID: orgID,
		UserID:         member.ID,
		Role:           domain.RoleMember,
	}))
	testutil.NewUserBuilder().WithEmail("c@x.com").Build(t, ts.DB.DB)

	memberClient := testutil.NewClient(t)
	loginResp := testutil.PostJSON(t, memberClient, ts.APIURL("/auth/login"), map[string]string{
		"email":    "member@x.com",
		"password": memberPassword,
	}, nil)
	require.Equal(t, http.StatusOK, loginResp.StatusCode)

	httpResp := testutil.PostJSON(t, memberClient, membersURL(ts, orgID), map[string]string{
		"email": "c@x.com",
	}, nil)
	assert.Equal(t, http.StatusForbidden, httpResp.StatusCode)
}

func TestRemoveMemberLastOwner(t *testing.T) {
	ts := testutil.NewTestServer(t)

	ownerClient, ownerResp := ts.RegisterViaAPI(t, "owner@x.com", "Secur3Pass!", "Owner", "Acme")
	orgID := ownerResp.ActiveOrganizationID

	// The sole owner cannot remove themselves.
	var resp membersResponse
	httpResp := testutil.DeleteJSON(t, ownerClient, memberURL(ts, orgID, ownerResp.User.ID), &resp)
	assert.Equal(t, http.StatusBadRequest, httpResp.StatusCode)
	assert.Equal(t, "Cannot remove the last owner", resp.Error)

	// With a second owner in place, removal succeeds.
	second, _ := testutil.NewUserBuilder().WithEmail("second@x.com").Build(t, ts.DB.DB)
	require.NoError(t, ts.Repos.Membership.Create(context.Background(), &domain.Membership{
		OrganizationID: orgID,
		UserID:         second.ID,
		Role:           domain.RoleOwner,
	}))

	var removed membersResponse
	httpResp = testutil.DeleteJSON(t, ownerClient, memberURL(ts, orgID, ownerResp.User.ID), &removed)
	assert.Equal(t, http.StatusOK, httpResp.StatusCode)
	require.Len(t, removed.Members, 1)
	assert.Equal(t, second.ID, removed.Members[0].UserID)
}

func TestRemoveMemberAsMemberForbidden(t *testing.T) {
	ts := testutil.NewTestServer(t)

	_, ownerResp := ts.RegisterViaAPI(t, "owner@x.com", "Secur3Pass!", "Owner", "Acme")
	orgID := ownerResp.ActiveOrganizationID

	member, memberPassword := testutil.NewUserBuilder().WithEmail("member@x.com").Build(t, ts.DB.DB)
	require.NoError(t, ts.Repos.Membership.Create(context.Background(), &domain.Membership{
		OrganizationID: orgID,
		UserID:         member.ID,
		Role:           domain.RoleMember,
	}))

	memberClient := testutil.NewClient(t)
	loginResp := testutil.PostJSON(t, memberClient, ts.APIURL("/auth/login"), map[string]string{
		"email":    "member@x.com",
		"password": memberPassword,
	}, nil)
	require.Equal(t, http.StatusOK, loginResp.StatusCode)

	httpResp := testutil.DeleteJSON(t, memberClient, memberURL(ts, orgID, ownerResp.User.ID), nil)
	assert.Equal(t, http.StatusForbidden, httpResp.StatusCode)
}

func TestListMembersRequiresMembership(t *testing.T) {
	ts := testutil.NewTestServer(t)

	_, ownerResp := ts.RegisterViaAPI(t, "owner@x.com", "Secur3Pass!", "Owner", "Acme")
	outsiderClient, _ := ts.RegisterViaAPI(t, "outsider@x.com", "Secur3Pass!", "Outsider", "Beta")

	httpResp := testutil.GetJSON(t, outsiderClient, membersURL(ts, ownerResp.ActiveOrganizationID), nil)
	assert.Equal(t, http.StatusForbidden, httpResp.StatusCode)
}

func TestCreateOrganization(t *testing.T) {
	ts := testutil.NewTestServer(t)

	client, _ := ts.RegisterViaAPI(t, "a@x.com", "Secur3Pass!", "A", "Acme")

	var created struct {
		Success      bool `json:"success"`
		Organization struct {
			ID   uuid.UUID `json:"id"`
			Name string    `json:"name"`
		} `json:"organization"`
		ActiveOrganizationID uuid.UUID `json:"activeOrganizationId"`
	}
	httpResp := testutil.PostJSON(t, client, ts.APIURL("/organizations/"), map[string]string{
		"name": "Side Project",
	}, &created)

	assert.Equal(t, http.StatusOK, httpResp.StatusCode)
	assert.Equal(t, "Side Project", created.Organization.Name)
	assert.Equal(t, created.Organization.ID, created.ActiveOrganizationID)

	// The creator is the owner and the session now points at the new org.
	var meResp testutil.AuthResponse
	testutil.GetJSON(t, client, ts.APIURL("/auth/me"), &meResp)
	assert.Equal(t, created.Organization.ID, meResp.ActiveOrganizationID)
	assert.Len(t, meResp.Memberships, 2)
}

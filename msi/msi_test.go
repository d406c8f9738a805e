package msi

import (
	"context"
	"net/http"
	"sort"
	"testing"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/authorization/armauthorization/v2"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/msi/armmsi"
	"github.com/entigolabs/azure-fluent/arm"
	"github.com/entigolabs/azure-fluent/fluent"
	"github.com/entigolabs/azure-fluent/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeIdentity struct {
	identityType IdentityType
	principalID  string
	assigned     map[string]*struct{}
}

func (f *fakeIdentity) IdentityType() IdentityType { return f.identityType }

func (f *fakeIdentity) PrincipalID() string { return f.principalID }

func (f *fakeIdentity) TenantID() string { return "tenant" }

func (f *fakeIdentity) UserAssignedIdentityIDs() []string {
	ids := UserAssignedIDs(f.assigned)
	sort.Strings(ids)
	return ids
}

func (f *fakeIdentity) SetIdentity(identityType IdentityType, userAssigned map[string]bool) {
	f.identityType = identityType
	f.assigned = ApplyChanges(f.assigned, userAssigned)
}

func newTestClient(t *testing.T, transport *test.Transport) (*arm.Client, string) {
	subscriptionID := test.SubscriptionID()
	client, err := arm.NewClient(subscriptionID, test.Credential{}, transport.ClientOptions())
	require.NoError(t, err)
	return client, subscriptionID
}

func newTestHandler(t *testing.T, transport *test.Transport) (*Handler, string) {
	client, subscriptionID := newTestClient(t, transport)
	roles, err := NewRoleAssignments(client)
	require.NoError(t, err)
	identities, err := NewIdentities(client)
	require.NoError(t, err)
	return NewHandler(roles, identities), subscriptionID
}

func TestHandlerApplySystemAssigned(t *testing.T) {
	handler, _ := newTestHandler(t, test.NewTransport())
	accessor := &fakeIdentity{}
	handler.WithSystemAssigned()
	handler.Apply(accessor)

	assert.Equal(t, IdentityTypeSystemAssigned, accessor.identityType)
	assert.Nil(t, accessor.assigned)
}

func TestHandlerApplyUserAssignedChanges(t *testing.T) {
	handler, _ := newTestHandler(t, test.NewTransport())
	accessor := &fakeIdentity{
		identityType: IdentityTypeSystemAssignedUserAssigned,
		assigned:     map[string]*struct{}{"/id/old": {}, "/id/keep": {}},
	}
	handler.WithExistingUserAssigned("/id/new")
	handler.WithoutUserAssigned("/id/old")
	handler.Apply(accessor)

	assert.Equal(t, IdentityTypeSystemAssignedUserAssigned, accessor.identityType)
	assert.Equal(t, []string{"/id/keep", "/id/new"}, accessor.UserAssignedIdentityIDs())
	value, found := accessor.assigned["/id/old"]
	assert.True(t, found)
	assert.Nil(t, value)
}

func TestHandlerApplyRemovingLastUserAssigned(t *testing.T) {
	handler, _ := newTestHandler(t, test.NewTransport())
	accessor := &fakeIdentity{
		identityType: IdentityTypeUserAssigned,
		assigned:     map[string]*struct{}{"/id/only": {}},
	}
	handler.WithoutUserAssigned("/id/only")
	handler.Apply(accessor)

	assert.Equal(t, IdentityTypeNone, accessor.identityType)
	assert.Nil(t, accessor.assigned)
}

func TestHandlerApplyWithoutChangesKeepsIdentity(t *testing.T) {
	handler, _ := newTestHandler(t, test.NewTransport())
	accessor := &fakeIdentity{identityType: IdentityTypeUserAssigned, assigned: map[string]*struct{}{"/id/a": {}}}
	handler.Apply(accessor)
	assert.Equal(t, IdentityTypeUserAssigned, accessor.identityType)
	assert.Len(t, accessor.assigned, 1)
}

func TestHandlerCreatesUserAssignedIdentity(t *testing.T) {
	transport := test.NewTransport()
	handler, subscriptionID := newTestHandler(t, transport)
	identityID := "/subscriptions/" + subscriptionID + "/resourceGroups/rg1/providers/Microsoft.ManagedIdentity/userAssignedIdentities/id1"
	transport.OnFunc(http.MethodPut, ".*/userAssignedIdentities/id1", func(req test.Request) (int, any) {
		var body armmsi.Identity
		_ = req.JSON(&body)
		return http.StatusCreated, armmsi.Identity{
			ID:       to.Ptr(identityID),
			Name:     to.Ptr("id1"),
			Location: body.Location,
		}
	})
	handler.WithNewUserAssigned(handler.identities.Define("id1"))

	tasks := fluent.NewTaskGroup()
	keys := handler.Prepare(tasks, "westeurope", "rg1")
	require.Len(t, keys, 1)
	require.NoError(t, tasks.Run(context.Background()))

	accessor := &fakeIdentity{}
	handler.Apply(accessor)
	assert.Equal(t, IdentityTypeUserAssigned, accessor.identityType)
	assert.Equal(t, []string{identityID}, accessor.UserAssignedIdentityIDs())
	var body armmsi.Identity
	require.NoError(t, transport.Requests(http.MethodPut, "userAssignedIdentities/id1")[0].JSON(&body))
	assert.Equal(t, "westeurope", *body.Location)
}

func onRoleDefinition(transport *test.Transport, subscriptionID string) string {
	definitionID := "/subscriptions/" + subscriptionID + "/providers/Microsoft.Authorization/roleDefinitions/ba92f5b4-2d11-453d-a403-e96b0029c9fe"
	transport.On(http.MethodGet, ".*/providers/Microsoft.Authorization/roleDefinitions", http.StatusOK,
		armauthorization.RoleDefinitionListResult{
			Value: []*armauthorization.RoleDefinition{{ID: to.Ptr(definitionID)}},
		})
	return definitionID
}

func TestHandlerAssignRoles(t *testing.T) {
	transport := test.NewTransport()
	handler, subscriptionID := newTestHandler(t, transport)
	definitionID := onRoleDefinition(transport, subscriptionID)
	transport.On(http.MethodGet, ".*/providers/Microsoft.Authorization/roleAssignments", http.StatusOK,
		armauthorization.RoleAssignmentListResult{})
	transport.On(http.MethodPut, ".*/providers/Microsoft.Authorization/roleAssignments/[0-9a-f-]+", http.StatusCreated,
		armauthorization.RoleAssignment{})
	resourceGroupID := test.ResourceGroupID(subscriptionID, "rg1")

	handler.WithAccessToCurrentResourceGroup("Storage Blob Data Contributor")
	err := handler.AssignRoles(context.Background(), &fakeIdentity{principalID: "principal-1"}, resourceGroupID)
	require.NoError(t, err)

	definitions := transport.Requests(http.MethodGet, "roleDefinitions")
	require.Len(t, definitions, 1)
	assert.Equal(t, "roleName eq 'Storage Blob Data Contributor'", definitions[0].Query.Get("$filter"))
	assignments := transport.Requests(http.MethodGet, "roleAssignments")
	require.Len(t, assignments, 1)
	assert.Equal(t, "assignedTo('principal-1')", assignments[0].Query.Get("$filter"))

	creates := transport.Requests(http.MethodPut, "roleAssignments")
	require.Len(t, creates, 1)
	assert.Contains(t, creates[0].Path, resourceGroupID+"/providers/Microsoft.Authorization/roleAssignments/")
	var body armauthorization.RoleAssignmentCreateParameters
	require.NoError(t, creates[0].JSON(&body))
	assert.Equal(t, "principal-1", *body.Properties.PrincipalID)
	assert.Equal(t, definitionID, *body.Properties.RoleDefinitionID)
	assert.False(t, handler.HasRoleAssignments())
}

func TestAssignRoleSkipsExistingAssignment(t *testing.T) {
	transport := test.NewTransport()
	client, subscriptionID := newTestClient(t, transport)
	definitionID := onRoleDefinition(transport, subscriptionID)
	transport.On(http.MethodGet, ".*/providers/Microsoft.Authorization/roleAssignments", http.StatusOK,
		armauthorization.RoleAssignmentListResult{
			Value: []*armauthorization.RoleAssignment{{
				Properties: &armauthorization.RoleAssignmentProperties{RoleDefinitionID: to.Ptr(definitionID)},
			}},
		})
	roles, err := NewRoleAssignments(client)
	require.NoError(t, err)

	err = roles.AssignRole(context.Background(), "principal-1", "Reader", "/subscriptions/"+subscriptionID)
	require.NoError(t, err)
	assert.Empty(t, transport.Requests(http.MethodPut, ""))
}

func TestAssignRoleToleratesExistingConflict(t *testing.T) {
	transport := test.NewTransport()
	client, subscriptionID := newTestClient(t, transport)
	transport.On(http.MethodGet, ".*/providers/Microsoft.Authorization/roleAssignments", http.StatusOK,
		armauthorization.RoleAssignmentListResult{})
	transport.On(http.MethodPut, ".*/roleAssignments/.*", http.StatusConflict, map[string]any{
		"error": map[string]string{"code": "RoleAssignmentExists", "message": "exists"},
	})
	roles, err := NewRoleAssignments(client)
	require.NoError(t, err)

	err = roles.AssignRoleDefinition(context.Background(), "principal-1", "acdd72a7-3385-48ef-bd42-f606fba81ae7",
		"/subscriptions/"+subscriptionID)
	require.NoError(t, err)
	var body armauthorization.RoleAssignmentCreateParameters
	require.NoError(t, transport.Requests(http.MethodPut, "roleAssignments")[0].JSON(&body))
	assert.Equal(t, "/subscriptions/"+subscriptionID+"/providers/Microsoft.Authorization/roleDefinitions/acdd72a7-3385-48ef-bd42-f606fba81ae7",
		*body.Properties.RoleDefinitionID)
}

func TestAssignRolesRequiresPrincipal(t *testing.T) {
	handler, _ := newTestHandler(t, test.NewTransport())
	handler.WithAccessTo("/subscriptions/sub", "Reader")
	err := handler.AssignRoles(context.Background(), &fakeIdentity{}, "")
	assert.ErrorContains(t, err, "principal id is not available")
}

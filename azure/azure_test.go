package azure

import (
	"context"
	"net/http"
	"testing"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/resources/armresources"
	"github.com/entigolabs/azure-fluent/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthenticateSharesOneClient(t *testing.T) {
	transport := test.NewTransport()
	subscriptionID := test.SubscriptionID()

	azure, err := Authenticate(test.Credential{}, subscriptionID, transport.ClientOptions())
	require.NoError(t, err)

	assert.Equal(t, subscriptionID, azure.SubscriptionID())
	assert.Same(t, azure.Client(), azure.AppServices().Client())
	assert.Same(t, azure.Client(), azure.Compute().Client())
	assert.Same(t, azure.Client(), azure.Storage().Client())
	assert.Same(t, azure.WebApps(), azure.WebApps())
	assert.Same(t, azure.VirtualMachines(), azure.VirtualMachines())
	assert.Same(t, azure.Disks(), azure.Disks())
	assert.NotNil(t, azure.FunctionApps())
	assert.NotNil(t, azure.AppServicePlans())
	assert.NotNil(t, azure.VirtualMachineScaleSets())
	assert.NotNil(t, azure.AvailabilitySets())
	assert.NotNil(t, azure.StorageAccounts())
	assert.NotNil(t, azure.Networks())
	assert.NotNil(t, azure.NetworkInterfaces())
	identities, err := azure.Identities()
	require.NoError(t, err)
	assert.NotNil(t, identities)
}

func TestAuthenticateRequiresSubscription(t *testing.T) {
	_, err := Authenticate(test.Credential{}, "", nil)
	assert.ErrorContains(t, err, "subscription id is required")
}

func TestResourceGroupsThroughUmbrella(t *testing.T) {
	transport := test.NewTransport()
	subscriptionID := test.SubscriptionID()
	name := test.Name("rg")
	transport.On(http.MethodGet, "/subscriptions/"+subscriptionID+"/resourcegroups/"+name, http.StatusOK, armresources.ResourceGroup{
		ID:       to.Ptr(test.ResourceGroupID(subscriptionID, name)),
		Name:     to.Ptr(name),
		Location: to.Ptr("westeurope"),
	})
	azure, err := Authenticate(test.Credential{}, subscriptionID, transport.ClientOptions())
	require.NoError(t, err)

	group, err := azure.ResourceGroups().GetByName(context.Background(), name)
	require.NoError(t, err)
	assert.Equal(t, "westeurope", group.RegionName())
}

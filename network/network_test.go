package network

import (
	"context"
	"net/http"
	"testing"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/network/armnetwork"
	"github.com/entigolabs/azure-fluent/arm"
	"github.com/entigolabs/azure-fluent/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T, transport *test.Transport) (*Manager, string) {
	subscriptionID := test.SubscriptionID()
	client, err := arm.NewClient(subscriptionID, test.Credential{}, transport.ClientOptions())
	require.NoError(t, err)
	return NewManager(client), subscriptionID
}

func echoNetwork(subscriptionID string) test.Responder {
	return func(req test.Request) (int, any) {
		var body armnetwork.VirtualNetwork
		_ = req.JSON(&body)
		body.ID = to.Ptr("/subscriptions/" + subscriptionID + "/resourceGroups/rg1/providers/Microsoft.Network/virtualNetworks/vnet1")
		body.Name = to.Ptr("vnet1")
		return http.StatusOK, body
	}
}

func TestNetworkCreate(t *testing.T) {
	transport := test.NewTransport()
	manager, subscriptionID := newTestManager(t, transport)
	transport.OnFunc(http.MethodPut, ".*/virtualNetworks/vnet1", echoNetwork(subscriptionID))

	network, err := manager.Networks().Define("vnet1").
		WithRegion("westeurope").
		WithExistingResourceGroup("rg1").
		WithAddressSpace("10.0.0.0/16").
		WithSubnet("default", "10.0.0.0/24").
		Create(context.Background())
	require.NoError(t, err)

	assert.False(t, network.IsInCreateMode())
	assert.Equal(t, []string{"10.0.0.0/16"}, network.AddressSpaces())
	assert.Equal(t, map[string]string{"default": "10.0.0.0/24"}, network.Subnets())
	assert.Equal(t, network.ID()+"/subnets/default", network.SubnetID("default"))
}

func TestNetworkInterfaceWithNewPrimaryNetwork(t *testing.T) {
	transport := test.NewTransport()
	manager, subscriptionID := newTestManager(t, transport)
	transport.OnFunc(http.MethodPut, ".*/virtualNetworks/vnet1", echoNetwork(subscriptionID))
	transport.OnFunc(http.MethodPut, ".*/networkInterfaces/nic1", func(req test.Request) (int, any) {
		var body armnetwork.Interface
		_ = req.JSON(&body)
		body.ID = to.Ptr("/subscriptions/" + subscriptionID + "/resourceGroups/rg1/providers/Microsoft.Network/networkInterfaces/nic1")
		body.Properties.IPConfigurations[0].Properties.PrivateIPAddress = to.Ptr("10.0.0.4")
		return http.StatusOK, body
	})

	network := manager.Networks().Define("vnet1").
		WithAddressSpace("10.0.0.0/16").
		WithSubnet("subnet1", "10.0.0.0/24")
	nic, err := manager.NetworkInterfaces().Define("nic1").
		WithRegion("westeurope").
		WithExistingResourceGroup("rg1").
		WithNewPrimaryNetwork(network, "subnet1").
		WithPrimaryPrivateIPAddressDynamic().
		Create(context.Background())
	require.NoError(t, err)

	calls := transport.Calls()
	require.Len(t, calls, 2)
	assert.Contains(t, calls[0], "virtualNetworks/vnet1")
	assert.Contains(t, calls[1], "networkInterfaces/nic1")
	assert.Equal(t, "10.0.0.4", nic.PrimaryPrivateIP())
	assert.Equal(t, network.SubnetID("subnet1"), nic.PrimarySubnetID())
	assert.Equal(t, "westeurope", network.RegionName())
}

func TestNetworkInterfaceRequiresSubnet(t *testing.T) {
	manager, _ := newTestManager(t, test.NewTransport())
	_, err := manager.NetworkInterfaces().Define("nic1").
		WithRegion("westeurope").
		WithExistingResourceGroup("rg1").
		Create(context.Background())
	assert.ErrorContains(t, err, "primary subnet is required")
}

func TestNetworksWrapModel(t *testing.T) {
	manager, _ := newTestManager(t, test.NewTransport())
	inner := &armnetwork.VirtualNetwork{
		ID:       to.Ptr("/subscriptions/sub/resourceGroups/rg9/providers/Microsoft.Network/virtualNetworks/vnet9"),
		Name:     to.Ptr("vnet9"),
		Location: to.Ptr("eastus"),
		Tags:     map[string]*string{"env": to.Ptr("prod")},
		Properties: &armnetwork.VirtualNetworkPropertiesFormat{
			AddressSpace: &armnetwork.AddressSpace{AddressPrefixes: []*string{to.Ptr("172.16.0.0/12")}},
		},
	}
	network := manager.Networks().WrapModel(inner)
	assert.Equal(t, "vnet9", network.Name())
	assert.Equal(t, "rg9", network.ResourceGroupName())
	assert.Equal(t, "eastus", network.RegionName())
	assert.Equal(t, map[string]string{"env": "prod"}, network.Tags())
	assert.Equal(t, []string{"172.16.0.0/12"}, network.AddressSpaces())
	assert.Same(t, inner, network.Inner())
}

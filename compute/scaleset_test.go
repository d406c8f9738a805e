package compute

import (
	"context"
	"net/http"
	"testing"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/compute/armcompute/v2"
	"github.com/entigolabs/azure-fluent/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScaleSetCreateOnNewNetwork(t *testing.T) {
	transport := test.NewTransport()
	manager, subscriptionID := newTestManager(t, transport)
	transport.OnFunc(http.MethodPut, ".*/virtualNetworks/vnet1", echo)
	transport.OnFunc(http.MethodPut, ".*/virtualMachineScaleSets/vmss1", echo)
	vnet := manager.NetworkManager().Networks().Define("vnet1").
		WithAddressSpace("10.2.0.0/16").
		WithSubnet("nodes", "10.2.0.0/24")

	set, err := manager.VirtualMachineScaleSets().Define("vmss1").
		WithRegion("westeurope").
		WithExistingResourceGroup(resourceGroup).
		WithSku("Standard_B2s").
		WithCapacity(3).
		WithUpgradeMode(armcompute.UpgradeModeAutomatic).
		WithExistingPrimaryNetworkSubnet(vnet, "nodes").
		WithPopularLinuxImage(UbuntuServer2004).
		WithRootUsername("azureuser").
		WithRootPassword("P@ssw0rd-123").
		WithOSDiskStorageAccountType(armcompute.StorageAccountTypesStandardSSDLRS).
		Create(context.Background())
	require.NoError(t, err)

	calls := transport.Calls()
	require.Len(t, calls, 2)
	assert.Less(t, indexOf(calls, "/virtualNetworks/vnet1"), indexOf(calls, "/virtualMachineScaleSets/vmss1"))

	subnetID := test.ResourceGroupID(subscriptionID, resourceGroup) + "/providers/Microsoft.Network/virtualNetworks/vnet1/subnets/nodes"
	assert.Equal(t, subnetID, set.PrimarySubnetID())
	assert.Equal(t, "Standard_B2s", set.SkuName())
	assert.Equal(t, int64(3), set.Capacity())
	assert.Equal(t, armcompute.UpgradeModeAutomatic, set.UpgradeMode())
	assert.Equal(t, "vmss1", set.ComputerNamePrefix())

	var body armcompute.VirtualMachineScaleSet
	require.NoError(t, transport.Requests(http.MethodPut, "/virtualMachineScaleSets/")[0].JSON(&body))
	profile := body.Properties.VirtualMachineProfile
	assert.False(t, *profile.OSProfile.LinuxConfiguration.DisablePasswordAuthentication)
	assert.Equal(t, armcompute.StorageAccountTypesStandardSSDLRS, *profile.StorageProfile.OSDisk.ManagedDisk.StorageAccountType)
	assert.Equal(t, "0001-com-ubuntu-server-focal", *profile.StorageProfile.ImageReference.Offer)
}

func TestScaleSetRequiresSubnet(t *testing.T) {
	transport := test.NewTransport()
	manager, _ := newTestManager(t, transport)

	_, err := manager.VirtualMachineScaleSets().Define("vmss1").
		WithRegion("westeurope").
		WithExistingResourceGroup(resourceGroup).
		WithPopularLinuxImage(Debian11).
		WithRootUsername("azureuser").
		WithSSH("ssh-rsa key").
		Create(context.Background())

	assert.ErrorContains(t, err, "primary subnet is required")
	assert.Empty(t, transport.Calls())
}

func TestScaleSetScale(t *testing.T) {
	transport := test.NewTransport()
	manager, subscriptionID := newTestManager(t, transport)
	transport.OnFunc(http.MethodPut, ".*/virtualMachineScaleSets/vmss1", echo)
	set := manager.VirtualMachineScaleSets().WrapModel(&armcompute.VirtualMachineScaleSet{
		ID:       to.Ptr(computeID(subscriptionID, "virtualMachineScaleSets", "vmss1")),
		Name:     to.Ptr("vmss1"),
		Location: to.Ptr("westeurope"),
		SKU:      &armcompute.SKU{Name: to.Ptr("Standard_B2s"), Capacity: to.Ptr[int64](2)},
		Properties: &armcompute.VirtualMachineScaleSetProperties{
			UpgradePolicy:     &armcompute.UpgradePolicy{Mode: to.Ptr(armcompute.UpgradeModeManual)},
			ProvisioningState: to.Ptr("Succeeded"),
		},
	})

	require.NoError(t, set.Scale(context.Background(), 5))

	assert.Equal(t, int64(5), set.Capacity())
	assert.Equal(t, "Standard_B2s", set.SkuName())
	var body armcompute.VirtualMachineScaleSet
	require.NoError(t, transport.Requests(http.MethodPut, "/virtualMachineScaleSets/")[0].JSON(&body))
	assert.Nil(t, body.Properties.ProvisioningState)
	assert.Equal(t, armcompute.UpgradeModeManual, *body.Properties.UpgradePolicy.Mode)
}

func TestScaleSetPowerActions(t *testing.T) {
	transport := test.NewTransport()
	manager, subscriptionID := newTestManager(t, transport)
	transport.On(http.MethodPost, ".*/virtualMachineScaleSets/vmss1/.*", http.StatusOK, nil)
	set := manager.VirtualMachineScaleSets().WrapModel(&armcompute.VirtualMachineScaleSet{
		ID:   to.Ptr(computeID(subscriptionID, "virtualMachineScaleSets", "vmss1")),
		Name: to.Ptr("vmss1"),
	})
	ctx := context.Background()

	require.NoError(t, set.Start(ctx))
	require.NoError(t, set.PowerOff(ctx))
	require.NoError(t, set.Restart(ctx))
	require.NoError(t, set.Deallocate(ctx))

	prefix := "POST " + set.ID()
	assert.Equal(t, []string{prefix + "/start", prefix + "/powerOff", prefix + "/restart", prefix + "/deallocate"}, transport.Calls())
}

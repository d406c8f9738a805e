package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/compute/armcompute/v2"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/resources/armresources"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/storage/armstorage"
	"github.com/entigolabs/azure-fluent/model"
	"github.com/entigolabs/azure-fluent/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyCreatesAndUpdates(t *testing.T) {
	transport := test.NewTransport()
	client, subscriptionID := newTestAzure(t, transport)
	diskID := test.ResourceGroupID(subscriptionID, resourceGroup) + "/providers/Microsoft.Compute/disks/data1"
	transport.OnFunc(http.MethodPut, "/subscriptions/.*/resourcegroups/"+resourceGroup, echo)
	transport.OnFunc(http.MethodPut, ".*/storageAccounts/st1", echo)
	transport.OnFunc(http.MethodPut, ".*/storageAccounts/st1/blobServices/default/containers/releases", echo)
	transport.OnFunc(http.MethodPut, ".*/availabilitySets/avset1", echo)
	transport.On(http.MethodGet, ".*/disks/data1", http.StatusOK, armcompute.Disk{
		ID:         to.Ptr(diskID),
		Name:       to.Ptr("data1"),
		Location:   to.Ptr("westeurope"),
		Properties: &armcompute.DiskProperties{DiskSizeGB: to.Ptr[int32](10)},
	})
	transport.OnFunc(http.MethodPatch, ".*/disks/data1", echo)

	config := model.Config{
		Location:       "westeurope",
		Tags:           map[string]string{"owner": "platform"},
		ResourceGroups: []model.ResourceGroup{{Name: resourceGroup}},
		StorageAccounts: []model.StorageAccount{{
			Resource:   model.Resource{Name: "st1", ResourceGroup: resourceGroup},
			Sku:        string(armstorage.SKUNameStandardGRS),
			Containers: []string{"releases"},
		}},
		AvailabilitySets: []model.AvailabilitySet{{
			Resource:         model.Resource{Name: "avset1", ResourceGroup: resourceGroup, Tags: map[string]string{"tier": "web"}},
			FaultDomainCount: 3,
		}},
		Disks: []model.Disk{{Resource: model.Resource{Name: "data1", ResourceGroup: resourceGroup}, SizeInGB: 20}},
	}

	require.NoError(t, NewApplier(client, config).Apply(context.Background()))

	calls := transport.Calls()
	groupIndex := indexOf(calls, "PUT /subscriptions/"+subscriptionID+"/resourcegroups/"+resourceGroup)
	accountIndex := indexOf(calls, "PUT "+test.ResourceGroupID(subscriptionID, resourceGroup)+"/providers/Microsoft.Storage/storageAccounts/st1")
	containerIndex := indexOf(calls, "/containers/releases")
	require.NotEqual(t, -1, groupIndex)
	assert.Less(t, groupIndex, accountIndex)
	assert.Less(t, accountIndex, containerIndex)

	var group armresources.ResourceGroup
	require.NoError(t, transport.Requests(http.MethodPut, "/resourcegroups/"+resourceGroup)[0].JSON(&group))
	assert.Equal(t, "westeurope", *group.Location)
	assert.Equal(t, "platform", *group.Tags["owner"])

	var account armstorage.AccountCreateParameters
	require.NoError(t, transport.Requests(http.MethodPut, "/storageAccounts/st1")[0].JSON(&account))
	assert.Equal(t, armstorage.SKUNameStandardGRS, *account.SKU.Name)

	var set armcompute.AvailabilitySet
	require.NoError(t, transport.Requests(http.MethodPut, "/availabilitySets/avset1")[0].JSON(&set))
	assert.Equal(t, int32(3), *set.Properties.PlatformFaultDomainCount)
	assert.Equal(t, "web", *set.Tags["tier"])
	assert.Equal(t, "platform", *set.Tags["owner"])

	assert.Empty(t, transport.Requests(http.MethodPut, "/disks/"))
	patches := transport.Requests(http.MethodPatch, "/disks/data1")
	require.Len(t, patches, 1)
	var update armcompute.DiskUpdate
	require.NoError(t, patches[0].JSON(&update))
	assert.Equal(t, int32(20), *update.Properties.DiskSizeGB)
}

func TestApplyStopsOnFailure(t *testing.T) {
	transport := test.NewTransport()
	client, _ := newTestAzure(t, transport)
	transport.On(http.MethodGet, ".*/availabilitySets/avset1", http.StatusForbidden, map[string]any{
		"error": map[string]string{"code": "AuthorizationFailed", "message": "denied"},
	})

	err := NewApplier(client, model.Config{
		Location:         "westeurope",
		AvailabilitySets: []model.AvailabilitySet{{Resource: model.Resource{Name: "avset1", ResourceGroup: resourceGroup}}},
		Disks:            []model.Disk{{Resource: model.Resource{Name: "data1", ResourceGroup: resourceGroup}, SizeInGB: 20}},
	}).Apply(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to apply availability sets")
	assert.Empty(t, transport.Requests(http.MethodGet, "/disks/"))
}

func TestApplyCreatesVirtualMachineWithDataDisks(t *testing.T) {
	transport := test.NewTransport()
	client, _ := newTestAzure(t, transport)
	transport.OnFunc(http.MethodPut, ".*/virtualNetworks/vm1-vnet", echo)
	transport.OnFunc(http.MethodPut, ".*/networkInterfaces/vm1-nic", echo)
	transport.OnFunc(http.MethodPut, ".*/virtualMachines/vm1", echo)
	lun := int32(4)

	err := NewApplier(client, model.Config{
		Location: "westeurope",
		VirtualMachines: []model.VirtualMachine{{
			Resource:      model.Resource{Name: "vm1", ResourceGroup: resourceGroup},
			Image:         "ubuntu2204",
			AdminUsername: "azureuser",
			SSHPublicKey:  "ssh-rsa AAAA",
			Size:          "Standard_B2s",
			DataDisks:     []model.DataDisk{{SizeInGB: 16, Lun: &lun}, {SizeInGB: 32}},
		}},
	}).Apply(context.Background())
	require.NoError(t, err)

	requests := transport.Requests(http.MethodPut, "/virtualMachines/vm1")
	require.Len(t, requests, 1)
	var vm armcompute.VirtualMachine
	require.NoError(t, requests[0].JSON(&vm))
	assert.Equal(t, armcompute.VirtualMachineSizeTypes("Standard_B2s"), *vm.Properties.HardwareProfile.VMSize)
	assert.Equal(t, "azureuser", *vm.Properties.OSProfile.AdminUsername)
	assert.True(t, *vm.Properties.OSProfile.LinuxConfiguration.DisablePasswordAuthentication)
	disks := vm.Properties.StorageProfile.DataDisks
	require.Len(t, disks, 2)
	assert.Equal(t, int32(0), *disks[0].Lun)
	assert.Equal(t, int32(32), *disks[0].DiskSizeGB)
	assert.Equal(t, int32(4), *disks[1].Lun)
	assert.Equal(t, int32(16), *disks[1].DiskSizeGB)
}

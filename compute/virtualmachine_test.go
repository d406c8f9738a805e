package compute

import (
	"context"
	"net/http"
	"testing"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/compute/armcompute/v2"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/network/armnetwork"
	"github.com/brianvoe/gofakeit/v6"
	"github.com/entigolabs/azure-fluent/model"
	"github.com/entigolabs/azure-fluent/test"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func onComputeCreates(transport *test.Transport) {
	for _, resourceType := range []string{"virtualNetworks", "networkInterfaces", "availabilitySets", "disks", "virtualMachines"} {
		transport.OnFunc(http.MethodPut, ".*/"+resourceType+"/[^/]+", echo)
	}
}

func existingVM(manager *Manager, subscriptionID string, disks ...*armcompute.DataDisk) *VirtualMachine {
	return manager.VirtualMachines().WrapModel(&armcompute.VirtualMachine{
		ID:       to.Ptr(computeID(subscriptionID, "virtualMachines", "vm1")),
		Name:     to.Ptr("vm1"),
		Location: to.Ptr("westeurope"),
		Properties: &armcompute.VirtualMachineProperties{
			HardwareProfile: &armcompute.HardwareProfile{VMSize: to.Ptr(armcompute.VirtualMachineSizeTypes("Standard_B2s"))},
			StorageProfile:  &armcompute.StorageProfile{DataDisks: disks},
			InstanceView:    &armcompute.VirtualMachineInstanceView{},
		},
	})
}

func TestVirtualMachineCreateWithNewDependencies(t *testing.T) {
	transport := test.NewTransport()
	manager, subscriptionID := newTestManager(t, transport)
	onComputeCreates(transport)
	key := "ssh-rsa " + gofakeit.LetterN(32)
	disk := manager.Disks().Define("data1").WithSizeInGB(16)

	vm, err := manager.VirtualMachines().Define("vm1").
		WithRegion("westeurope").
		WithExistingResourceGroup(resourceGroup).
		WithNewPrimaryNetwork("10.0.0.0/28").
		WithPopularLinuxImage(UbuntuServer2204).
		WithRootUsername("azureuser").
		WithSSH(key).
		WithSize("Standard_D2s_v3").
		WithNewDataDisk(10, AutoLun, armcompute.CachingTypesReadWrite).
		WithExistingDataDisk(disk, 3, armcompute.CachingTypesReadOnly).
		WithNewAvailabilitySet("avset1").
		WithTag("env", "test").
		Create(context.Background())
	require.NoError(t, err)

	calls := transport.Calls()
	require.Len(t, calls, 5)
	vmCall := indexOf(calls, "/virtualMachines/vm1")
	assert.Less(t, indexOf(calls, "/virtualNetworks/vm1-vnet"), indexOf(calls, "/networkInterfaces/vm1-nic"))
	assert.Less(t, indexOf(calls, "/networkInterfaces/vm1-nic"), vmCall)
	assert.Less(t, indexOf(calls, "/availabilitySets/avset1"), vmCall)
	assert.Less(t, indexOf(calls, "/disks/data1"), vmCall)

	nics := transport.Requests(http.MethodPut, "/networkInterfaces/")
	var nic armnetwork.Interface
	require.NoError(t, nics[0].JSON(&nic))
	assert.Equal(t, test.ResourceGroupID(subscriptionID, resourceGroup)+"/providers/Microsoft.Network/virtualNetworks/vm1-vnet/subnets/subnet1",
		*nic.Properties.IPConfigurations[0].Properties.Subnet.ID)

	var body armcompute.VirtualMachine
	require.NoError(t, transport.Requests(http.MethodPut, "/virtualMachines/")[0].JSON(&body))
	assert.Equal(t, "test", *body.Tags["env"])
	assert.Equal(t, armcompute.VirtualMachineSizeTypes("Standard_D2s_v3"), *body.Properties.HardwareProfile.VMSize)
	assert.Equal(t, "Canonical", *body.Properties.StorageProfile.ImageReference.Publisher)
	assert.Equal(t, armcompute.OperatingSystemTypesLinux, *body.Properties.StorageProfile.OSDisk.OSType)
	assert.Equal(t, armcompute.DiskCreateOptionTypesFromImage, *body.Properties.StorageProfile.OSDisk.CreateOption)

	osProfile := body.Properties.OSProfile
	assert.Equal(t, "vm1", *osProfile.ComputerName)
	assert.Equal(t, "azureuser", *osProfile.AdminUsername)
	assert.Nil(t, osProfile.AdminPassword)
	assert.True(t, *osProfile.LinuxConfiguration.DisablePasswordAuthentication)
	assert.Equal(t, "/home/azureuser/.ssh/authorized_keys", *osProfile.LinuxConfiguration.SSH.PublicKeys[0].Path)
	assert.Equal(t, key, *osProfile.LinuxConfiguration.SSH.PublicKeys[0].KeyData)

	dataDisks := body.Properties.StorageProfile.DataDisks
	require.Len(t, dataDisks, 2)
	assert.Equal(t, int32(0), *dataDisks[0].Lun)
	assert.Equal(t, armcompute.DiskCreateOptionTypesEmpty, *dataDisks[0].CreateOption)
	assert.Equal(t, int32(10), *dataDisks[0].DiskSizeGB)
	assert.Equal(t, int32(3), *dataDisks[1].Lun)
	assert.Equal(t, armcompute.DiskCreateOptionTypesAttach, *dataDisks[1].CreateOption)
	assert.Equal(t, computeID(subscriptionID, "disks", "data1"), *dataDisks[1].ManagedDisk.ID)

	assert.Equal(t, computeID(subscriptionID, "availabilitySets", "avset1"), *body.Properties.AvailabilitySet.ID)
	assert.True(t, *body.Properties.NetworkProfile.NetworkInterfaces[0].Properties.Primary)

	assert.False(t, vm.IsInCreateMode())
	assert.Equal(t, "Standard_D2s_v3", vm.Size())
	assert.Equal(t, computeID(subscriptionID, "availabilitySets", "avset1"), vm.AvailabilitySetID())
	assert.Equal(t, test.ResourceGroupID(subscriptionID, resourceGroup)+"/providers/Microsoft.Network/networkInterfaces/vm1-nic",
		vm.PrimaryNetworkInterfaceID())
	assert.Len(t, vm.DataDisks(), 2)
}

func TestVirtualMachineSpecializedOSDisk(t *testing.T) {
	transport := test.NewTransport()
	manager, subscriptionID := newTestManager(t, transport)
	onComputeCreates(transport)
	osDisk := manager.Disks().WrapModel(&armcompute.Disk{
		ID:   to.Ptr(computeID(subscriptionID, "disks", "os1")),
		Name: to.Ptr("os1"),
	})
	nic := manager.NetworkManager().NetworkInterfaces().Define("nic1").
		WithExistingSubnetID(test.ResourceGroupID(subscriptionID, resourceGroup) + "/providers/Microsoft.Network/virtualNetworks/v/subnets/s")

	_, err := manager.VirtualMachines().Define("vm1").
		WithRegion("westeurope").
		WithExistingResourceGroup(resourceGroup).
		WithExistingPrimaryNetworkInterface(nic).
		WithSpecializedOSDisk(osDisk, armcompute.OperatingSystemTypesWindows).
		Create(context.Background())
	require.NoError(t, err)

	var body armcompute.VirtualMachine
	require.NoError(t, transport.Requests(http.MethodPut, "/virtualMachines/")[0].JSON(&body))
	assert.Nil(t, body.Properties.OSProfile)
	assert.Nil(t, body.Properties.StorageProfile.ImageReference)
	assert.Equal(t, armcompute.DiskCreateOptionTypesAttach, *body.Properties.StorageProfile.OSDisk.CreateOption)
	assert.Equal(t, osDisk.ID(), *body.Properties.StorageProfile.OSDisk.ManagedDisk.ID)
	assert.Equal(t, armcompute.VirtualMachineSizeTypes(defaultSize), *body.Properties.HardwareProfile.VMSize)
}

func TestVirtualMachineValidation(t *testing.T) {
	tests := []struct {
		name   string
		vm     func(vm *VirtualMachine) *VirtualMachine
		reason string
	}{
		{
			name:   "image",
			vm:     func(vm *VirtualMachine) *VirtualMachine { return vm.WithNewPrimaryNetwork("10.0.0.0/24") },
			reason: "image or specialized os disk is required",
		},
		{
			name:   "network",
			vm:     func(vm *VirtualMachine) *VirtualMachine { return vm.WithPopularLinuxImage(Debian12) },
			reason: "primary network is required",
		},
		{
			name: "username",
			vm: func(vm *VirtualMachine) *VirtualMachine {
				return vm.WithNewPrimaryNetwork("10.0.0.0/24").WithPopularLinuxImage(Debian12)
			},
			reason: "admin username is required",
		},
		{
			name: "linux credentials",
			vm: func(vm *VirtualMachine) *VirtualMachine {
				return vm.WithNewPrimaryNetwork("10.0.0.0/24").WithPopularLinuxImage(Debian12).WithRootUsername("root1")
			},
			reason: "root password or ssh key is required",
		},
		{
			name: "windows password",
			vm: func(vm *VirtualMachine) *VirtualMachine {
				return vm.WithNewPrimaryNetwork("10.0.0.0/24").WithPopularWindowsImage(WindowsServer2022Datacenter).
					WithAdminUsername("admin1").WithSSH("ssh-rsa key")
			},
			reason: "admin password is required",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transport := test.NewTransport()
			manager, _ := newTestManager(t, transport)
			vm := manager.VirtualMachines().Define("vm1").
				WithRegion("westeurope").
				WithExistingResourceGroup(resourceGroup)

			_, err := tt.vm(vm).Create(context.Background())

			var validation model.ValidationError
			require.ErrorAs(t, err, &validation)
			assert.Equal(t, tt.reason, validation.Reason)
			assert.Empty(t, transport.Calls())
		})
	}
}

func TestVirtualMachineWindowsProfile(t *testing.T) {
	transport := test.NewTransport()
	manager, _ := newTestManager(t, transport)
	onComputeCreates(transport)
	password := gofakeit.Password(true, true, true, true, false, 16)

	_, err := manager.VirtualMachines().Define("win1").
		WithRegion("westeurope").
		WithExistingResourceGroup(resourceGroup).
		WithNewPrimaryNetwork("10.1.0.0/24").
		WithPopularWindowsImage(WindowsServer2019Datacenter).
		WithAdminUsername("admin1").
		WithAdminPassword(password).
		WithComputerName("winhost").
		WithOSDiskSizeInGB(256).
		WithOSDiskStorageAccountType(armcompute.StorageAccountTypesPremiumLRS).
		WithOSDiskCaching(armcompute.CachingTypesReadOnly).
		WithOSDiskName("win1-os").
		Create(context.Background())
	require.NoError(t, err)

	var body armcompute.VirtualMachine
	require.NoError(t, transport.Requests(http.MethodPut, "/virtualMachines/")[0].JSON(&body))
	profile := body.Properties.OSProfile
	assert.Equal(t, "winhost", *profile.ComputerName)
	assert.Equal(t, password, *profile.AdminPassword)
	assert.Nil(t, profile.LinuxConfiguration)
	assert.True(t, *profile.WindowsConfiguration.ProvisionVMAgent)
	osDisk := body.Properties.StorageProfile.OSDisk
	assert.Equal(t, int32(256), *osDisk.DiskSizeGB)
	assert.Equal(t, armcompute.StorageAccountTypesPremiumLRS, *osDisk.ManagedDisk.StorageAccountType)
	assert.Equal(t, armcompute.CachingTypesReadOnly, *osDisk.Caching)
	assert.Equal(t, "win1-os", *osDisk.Name)
}

func TestVirtualMachineUpdateDataDisks(t *testing.T) {
	transport := test.NewTransport()
	manager, subscriptionID := newTestManager(t, transport)
	onComputeCreates(transport)
	vm := existingVM(manager, subscriptionID,
		&armcompute.DataDisk{Lun: to.Ptr[int32](0), CreateOption: to.Ptr(armcompute.DiskCreateOptionTypesEmpty), DiskSizeGB: to.Ptr[int32](8)},
		&armcompute.DataDisk{Lun: to.Ptr[int32](1), CreateOption: to.Ptr(armcompute.DiskCreateOptionTypesEmpty), DiskSizeGB: to.Ptr[int32](8)},
	)

	_, err := vm.Update().
		WithoutDataDisk(0).
		WithDataDiskDefaultStorageAccountType(armcompute.StorageAccountTypesStandardSSDLRS).
		WithNewDataDisk(20, AutoLun, armcompute.CachingTypesNone).
		WithNewDataDiskOfType(30, AutoLun, armcompute.CachingTypesNone, armcompute.StorageAccountTypesPremiumLRS).
		WithSize("Standard_B4ms").
		Apply(context.Background())
	require.NoError(t, err)

	require.Equal(t, []string{"PUT " + computeID(subscriptionID, "virtualMachines", "vm1")}, transport.Calls())
	var body armcompute.VirtualMachine
	require.NoError(t, transport.Requests(http.MethodPut, "/virtualMachines/")[0].JSON(&body))
	assert.Nil(t, body.Properties.InstanceView)
	assert.Equal(t, armcompute.VirtualMachineSizeTypes("Standard_B4ms"), *body.Properties.HardwareProfile.VMSize)
	disks := body.Properties.StorageProfile.DataDisks
	luns := lo.Map(disks, func(disk *armcompute.DataDisk, _ int) int32 { return *disk.Lun })
	assert.Equal(t, []int32{0, 1, 2}, luns)
	assert.Equal(t, int32(20), *disks[0].DiskSizeGB)
	assert.Equal(t, armcompute.StorageAccountTypesStandardSSDLRS, *disks[0].ManagedDisk.StorageAccountType)
	assert.Equal(t, int32(8), *disks[1].DiskSizeGB)
	assert.Equal(t, armcompute.StorageAccountTypesPremiumLRS, *disks[2].ManagedDisk.StorageAccountType)
}

func TestVirtualMachineLunConflict(t *testing.T) {
	transport := test.NewTransport()
	manager, subscriptionID := newTestManager(t, transport)
	vm := existingVM(manager, subscriptionID,
		&armcompute.DataDisk{Lun: to.Ptr[int32](1), CreateOption: to.Ptr(armcompute.DiskCreateOptionTypesEmpty)},
	)

	_, err := vm.Update().WithNewDataDisk(10, 1, armcompute.CachingTypesNone).Apply(context.Background())

	assert.ErrorContains(t, err, "lun 1 is already in use")
	assert.Empty(t, transport.Requests(http.MethodPut, ""))
}

func TestVirtualMachinePowerActions(t *testing.T) {
	tests := []struct {
		action string
		run    func(vm *VirtualMachine, ctx context.Context) error
		state  PowerState
	}{
		{action: "start", run: (*VirtualMachine).Start, state: PowerStateRunning},
		{action: "powerOff", run: (*VirtualMachine).PowerOff, state: PowerStateStopped},
		{action: "restart", run: (*VirtualMachine).Restart, state: PowerStateRunning},
		{action: "deallocate", run: (*VirtualMachine).Deallocate, state: PowerStateDeallocated},
	}
	for _, tt := range tests {
		t.Run(tt.action, func(t *testing.T) {
			transport := test.NewTransport()
			manager, subscriptionID := newTestManager(t, transport)
			transport.On(http.MethodPost, ".*/virtualMachines/vm1/"+tt.action, http.StatusOK, nil)
			transport.On(http.MethodGet, ".*/virtualMachines/vm1/instanceView", http.StatusOK, armcompute.VirtualMachineInstanceView{
				Statuses: []*armcompute.InstanceViewStatus{
					{Code: to.Ptr("ProvisioningState/succeeded")},
					{Code: to.Ptr(string(tt.state))},
				},
			})
			vm := existingVM(manager, subscriptionID)
			assert.Equal(t, PowerStateUnknown, vm.PowerState())

			require.NoError(t, tt.run(vm, context.Background()))

			assert.Equal(t, tt.state, vm.PowerState())
			assert.Len(t, transport.Requests(http.MethodPost, "/"+tt.action), 1)
		})
	}
}

func TestVirtualMachineGeneralize(t *testing.T) {
	transport := test.NewTransport()
	manager, subscriptionID := newTestManager(t, transport)
	transport.On(http.MethodPost, ".*/virtualMachines/vm1/generalize", http.StatusOK, nil)

	require.NoError(t, existingVM(manager, subscriptionID).Generalize(context.Background()))

	assert.Equal(t, []string{"POST " + computeID(subscriptionID, "virtualMachines", "vm1") + "/generalize"}, transport.Calls())
}

func TestVirtualMachineActionFailure(t *testing.T) {
	transport := test.NewTransport()
	manager, subscriptionID := newTestManager(t, transport)

	err := existingVM(manager, subscriptionID).Start(context.Background())

	assert.ErrorContains(t, err, "failed to start virtual machine vm1")
	assert.Empty(t, transport.Requests(http.MethodGet, "/instanceView"))
}

func TestVirtualMachineSystemAssignedIdentity(t *testing.T) {
	transport := test.NewTransport()
	manager, subscriptionID := newTestManager(t, transport)
	onComputeCreates(transport)
	identityID := test.ResourceGroupID(subscriptionID, resourceGroup) + "/providers/Microsoft.ManagedIdentity/userAssignedIdentities/id1"

	_, err := existingVM(manager, subscriptionID).Update().
		WithSystemAssignedManagedServiceIdentity().
		WithExistingUserAssignedManagedServiceIdentity(identityID).
		Apply(context.Background())
	require.NoError(t, err)

	var body armcompute.VirtualMachine
	require.NoError(t, transport.Requests(http.MethodPut, "/virtualMachines/")[0].JSON(&body))
	assert.Equal(t, armcompute.ResourceIdentityTypeSystemAssignedUserAssigned, *body.Identity.Type)
	assert.Contains(t, body.Identity.UserAssignedIdentities, identityID)
}

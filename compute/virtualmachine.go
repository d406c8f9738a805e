package compute

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/compute/armcompute/v2"
	"github.com/entigolabs/azure-fluent/arm"
	"github.com/entigolabs/azure-fluent/fluent"
	"github.com/entigolabs/azure-fluent/msi"
	"github.com/entigolabs/azure-fluent/network"
	"github.com/samber/lo"
)

const (
	defaultSize      = "Standard_B1s"
	powerStatePrefix = "PowerState/"
)

// AutoLun assigns the lowest free lun to a data disk.
const AutoLun int32 = -1

type PowerState string

const (
	PowerStateRunning      PowerState = "PowerState/running"
	PowerStateDeallocating PowerState = "PowerState/deallocating"
	PowerStateDeallocated  PowerState = "PowerState/deallocated"
	PowerStateStarting     PowerState = "PowerState/starting"
	PowerStateStopped      PowerState = "PowerState/stopped"
	PowerStateStopping     PowerState = "PowerState/stopping"
	PowerStateUnknown      PowerState = "PowerState/unknown"
)

type VirtualMachines struct {
	*fluent.Collection[armcompute.VirtualMachine, *VirtualMachine]
	manager *Manager
}

func (v *VirtualMachines) Define(name string) *VirtualMachine {
	return v.newVM(&armcompute.VirtualMachine{Name: to.Ptr(name)})
}

func (v *VirtualMachines) WrapModel(inner *armcompute.VirtualMachine) *VirtualMachine {
	vm := v.newVM(inner)
	vm.Load(inner.ID, inner.Name, inner.Location, inner.Tags)
	return vm
}

func (v *VirtualMachines) newVM(inner *armcompute.VirtualMachine) *VirtualMachine {
	vm := &VirtualMachine{vms: v, inner: inner, msi: v.manager.identities.NewHandler()}
	vm.identityOptions = identityOptions[*VirtualMachine]{self: vm, handler: vm.msi}
	vm.Groupable = fluent.NewGroupable(vm, v.manager.resources.ResourceGroups(), lo.FromPtr(inner.Name))
	return vm
}

type dataDisk struct {
	lun         int32
	size        int32
	caching     armcompute.CachingTypes
	storageType *armcompute.StorageAccountTypes
	disk        *Disk
}

// VirtualMachine is the fluent wrapper of armcompute.VirtualMachine.
type VirtualMachine struct {
	*fluent.Groupable[*VirtualMachine]
	identityOptions[*VirtualMachine]
	vms          *VirtualMachines
	inner        *armcompute.VirtualMachine
	instanceView *armcompute.VirtualMachineInstanceView
	msi          *msi.Handler

	image         *armcompute.ImageReference
	osType        *armcompute.OperatingSystemTypes
	specializedOS *Disk
	computerName  string
	adminUsername string
	adminPassword string
	sshKeys       []string
	size          string

	osDiskCaching *armcompute.CachingTypes
	osDiskSize    *int32
	osDiskType    *armcompute.StorageAccountTypes
	osDiskName    string

	dataDiskType *armcompute.StorageAccountTypes
	dataDisks    []dataDisk
	detachLuns   []int32

	availabilitySet   *AvailabilitySet
	availabilitySetID string
	nic               *network.NetworkInterface
	privateIP         string
}

func (v *VirtualMachine) Inner() *armcompute.VirtualMachine {
	return v.inner
}

func (v *VirtualMachine) ID() string {
	return lo.FromPtr(v.inner.ID)
}

func (v *VirtualMachine) IsInCreateMode() bool {
	return v.inner.ID == nil
}

func (v *VirtualMachine) properties() *armcompute.VirtualMachineProperties {
	if v.inner.Properties == nil {
		return &armcompute.VirtualMachineProperties{}
	}
	return v.inner.Properties
}

func (v *VirtualMachine) storageProfile() *armcompute.StorageProfile {
	if v.properties().StorageProfile == nil {
		return &armcompute.StorageProfile{}
	}
	return v.properties().StorageProfile
}

func (v *VirtualMachine) osDisk() *armcompute.OSDisk {
	if v.storageProfile().OSDisk == nil {
		return &armcompute.OSDisk{}
	}
	return v.storageProfile().OSDisk
}

func (v *VirtualMachine) VMID() string {
	return lo.FromPtr(v.properties().VMID)
}

func (v *VirtualMachine) ProvisioningState() string {
	return lo.FromPtr(v.properties().ProvisioningState)
}

func (v *VirtualMachine) Size() string {
	if v.properties().HardwareProfile == nil {
		return ""
	}
	return string(lo.FromPtr(v.properties().HardwareProfile.VMSize))
}

func (v *VirtualMachine) ComputerName() string {
	if v.properties().OSProfile == nil {
		return ""
	}
	return lo.FromPtr(v.properties().OSProfile.ComputerName)
}

func (v *VirtualMachine) AdminUsername() string {
	if v.properties().OSProfile == nil {
		return ""
	}
	return lo.FromPtr(v.properties().OSProfile.AdminUsername)
}

func (v *VirtualMachine) OSType() armcompute.OperatingSystemTypes {
	return lo.FromPtr(v.osDisk().OSType)
}

func (v *VirtualMachine) ImageReference() *armcompute.ImageReference {
	return v.storageProfile().ImageReference
}

func (v *VirtualMachine) OSDiskID() string {
	if v.osDisk().ManagedDisk == nil {
		return ""
	}
	return lo.FromPtr(v.osDisk().ManagedDisk.ID)
}

func (v *VirtualMachine) OSDiskSize() int32 {
	return lo.FromPtr(v.osDisk().DiskSizeGB)
}

func (v *VirtualMachine) OSDiskCachingType() armcompute.CachingTypes {
	return lo.FromPtr(v.osDisk().Caching)
}

func (v *VirtualMachine) OSDiskStorageAccountType() armcompute.StorageAccountTypes {
	if v.osDisk().ManagedDisk == nil {
		return ""
	}
	return lo.FromPtr(v.osDisk().ManagedDisk.StorageAccountType)
}

// DataDisks returns the attached data disks keyed by lun.
func (v *VirtualMachine) DataDisks() map[int32]*armcompute.DataDisk {
	return lo.Associate(lo.Filter(v.storageProfile().DataDisks, func(disk *armcompute.DataDisk, _ int) bool {
		return disk != nil && disk.Lun != nil
	}), func(disk *armcompute.DataDisk) (int32, *armcompute.DataDisk) {
		return *disk.Lun, disk
	})
}

func (v *VirtualMachine) AvailabilitySetID() string {
	if v.properties().AvailabilitySet == nil {
		return ""
	}
	return lo.FromPtr(v.properties().AvailabilitySet.ID)
}

func (v *VirtualMachine) NetworkInterfaceIDs() []string {
	if v.properties().NetworkProfile == nil {
		return nil
	}
	return lo.FilterMap(v.properties().NetworkProfile.NetworkInterfaces, func(ref *armcompute.NetworkInterfaceReference, _ int) (string, bool) {
		if ref == nil || ref.ID == nil {
			return "", false
		}
		return *ref.ID, true
	})
}

// PrimaryNetworkInterfaceID returns the interface flagged primary, or the only one.
func (v *VirtualMachine) PrimaryNetworkInterfaceID() string {
	if v.properties().NetworkProfile == nil {
		return ""
	}
	refs := v.properties().NetworkProfile.NetworkInterfaces
	primary, found := lo.Find(refs, func(ref *armcompute.NetworkInterfaceReference) bool {
		return ref != nil && ref.Properties != nil && lo.FromPtr(ref.Properties.Primary)
	})
	if found {
		return lo.FromPtr(primary.ID)
	}
	if len(refs) == 1 && refs[0] != nil {
		return lo.FromPtr(refs[0].ID)
	}
	return ""
}

func (v *VirtualMachine) SystemAssignedManagedServiceIdentityPrincipalID() string {
	return vmIdentity{vm: v.inner}.PrincipalID()
}

func (v *VirtualMachine) SystemAssignedManagedServiceIdentityTenantID() string {
	return vmIdentity{vm: v.inner}.TenantID()
}

func (v *VirtualMachine) UserAssignedManagedServiceIdentityIDs() []string {
	return vmIdentity{vm: v.inner}.UserAssignedIdentityIDs()
}

// InstanceView returns the last fetched instance view, nil before RefreshInstanceView.
func (v *VirtualMachine) InstanceView() *armcompute.VirtualMachineInstanceView {
	return v.instanceView
}

// PowerState reads the power state from the last fetched instance view.
func (v *VirtualMachine) PowerState() PowerState {
	if v.instanceView == nil {
		return PowerStateUnknown
	}
	for _, status := range v.instanceView.Statuses {
		if status != nil && strings.HasPrefix(lo.FromPtr(status.Code), powerStatePrefix) {
			return PowerState(*status.Code)
		}
	}
	return PowerStateUnknown
}

func (v *VirtualMachine) RefreshInstanceView(ctx context.Context) (*armcompute.VirtualMachineInstanceView, error) {
	path, err := v.vms.Resources().Path(v.ResourceGroupName(), v.Name())
	if err != nil {
		return nil, err
	}
	view, err := arm.Do[armcompute.VirtualMachineInstanceView](ctx, v.vms.Resources().Client(), http.MethodGet,
		path+"/instanceView", APIVersion, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get instance view of %s: %w", v.Name(), err)
	}
	v.instanceView = view
	return view, nil
}

func (v *VirtualMachine) Refresh(ctx context.Context) (*VirtualMachine, error) {
	inner, err := v.vms.Resources().Get(ctx, v.ResourceGroupName(), v.Name())
	if err != nil {
		return nil, err
	}
	v.inner = inner
	v.Load(inner.ID, inner.Name, inner.Location, inner.Tags)
	return v, nil
}

func (v *VirtualMachine) Delete(ctx context.Context) error {
	return v.vms.DeleteByResourceGroup(ctx, v.ResourceGroupName(), v.Name())
}

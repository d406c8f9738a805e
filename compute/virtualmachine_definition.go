package compute

import (
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/compute/armcompute/v2"
	"github.com/entigolabs/azure-fluent/network"
	"github.com/samber/lo"
)

const primarySubnet = "subnet1"

func (v *VirtualMachine) WithPopularLinuxImage(image Image) *VirtualMachine {
	return v.withImage(image, armcompute.OperatingSystemTypesLinux)
}

func (v *VirtualMachine) WithLatestLinuxImage(publisher, offer, sku string) *VirtualMachine {
	return v.withImage(Image{Publisher: publisher, Offer: offer, SKU: sku}, armcompute.OperatingSystemTypesLinux)
}

func (v *VirtualMachine) WithPopularWindowsImage(image Image) *VirtualMachine {
	return v.withImage(image, armcompute.OperatingSystemTypesWindows)
}

func (v *VirtualMachine) WithLatestWindowsImage(publisher, offer, sku string) *VirtualMachine {
	return v.withImage(Image{Publisher: publisher, Offer: offer, SKU: sku}, armcompute.OperatingSystemTypesWindows)
}

func (v *VirtualMachine) withImage(image Image, osType armcompute.OperatingSystemTypes) *VirtualMachine {
	v.image = image.reference()
	v.osType = to.Ptr(osType)
	v.specializedOS = nil
	return v
}

// WithSpecializedOSDisk boots from an existing or creatable managed disk holding a specialized OS.
// No OS profile is sent for such machines.
func (v *VirtualMachine) WithSpecializedOSDisk(disk *Disk, osType armcompute.OperatingSystemTypes) *VirtualMachine {
	v.specializedOS = disk
	v.osType = to.Ptr(osType)
	v.image = nil
	return v
}

func (v *VirtualMachine) WithRootUsername(username string) *VirtualMachine {
	v.adminUsername = username
	return v
}

func (v *VirtualMachine) WithRootPassword(password string) *VirtualMachine {
	v.adminPassword = password
	return v
}

// WithSSH adds an authorized public key for the root user.
func (v *VirtualMachine) WithSSH(publicKey string) *VirtualMachine {
	v.sshKeys = append(v.sshKeys, publicKey)
	return v
}

func (v *VirtualMachine) WithAdminUsername(username string) *VirtualMachine {
	return v.WithRootUsername(username)
}

func (v *VirtualMachine) WithAdminPassword(password string) *VirtualMachine {
	return v.WithRootPassword(password)
}

func (v *VirtualMachine) WithComputerName(name string) *VirtualMachine {
	v.computerName = name
	return v
}

func (v *VirtualMachine) WithSize(size string) *VirtualMachine {
	v.size = size
	return v
}

func (v *VirtualMachine) WithOSDiskCaching(caching armcompute.CachingTypes) *VirtualMachine {
	v.osDiskCaching = to.Ptr(caching)
	return v
}

func (v *VirtualMachine) WithOSDiskSizeInGB(size int32) *VirtualMachine {
	v.osDiskSize = to.Ptr(size)
	return v
}

func (v *VirtualMachine) WithOSDiskStorageAccountType(storageType armcompute.StorageAccountTypes) *VirtualMachine {
	v.osDiskType = to.Ptr(storageType)
	return v
}

func (v *VirtualMachine) WithOSDiskName(name string) *VirtualMachine {
	v.osDiskName = name
	return v
}

// WithDataDiskDefaultStorageAccountType sets the storage type of new empty data disks staged without one.
func (v *VirtualMachine) WithDataDiskDefaultStorageAccountType(storageType armcompute.StorageAccountTypes) *VirtualMachine {
	v.dataDiskType = to.Ptr(storageType)
	return v
}

// WithNewDataDisk attaches a new empty disk. A negative lun picks the next free one.
func (v *VirtualMachine) WithNewDataDisk(sizeInGB, lun int32, caching armcompute.CachingTypes) *VirtualMachine {
	v.dataDisks = append(v.dataDisks, dataDisk{lun: lun, size: sizeInGB, caching: caching})
	return v
}

func (v *VirtualMachine) WithNewDataDiskOfType(sizeInGB, lun int32, caching armcompute.CachingTypes,
	storageType armcompute.StorageAccountTypes,
) *VirtualMachine {
	v.dataDisks = append(v.dataDisks, dataDisk{lun: lun, size: sizeInGB, caching: caching, storageType: to.Ptr(storageType)})
	return v
}

// WithExistingDataDisk attaches a managed disk. Disks still in create mode are created first.
func (v *VirtualMachine) WithExistingDataDisk(disk *Disk, lun int32, caching armcompute.CachingTypes) *VirtualMachine {
	v.dataDisks = append(v.dataDisks, dataDisk{lun: lun, caching: caching, disk: disk})
	return v
}

func (v *VirtualMachine) WithNewDataDiskFromDefinition(disk *Disk, lun int32, caching armcompute.CachingTypes) *VirtualMachine {
	return v.WithExistingDataDisk(disk, lun, caching)
}

func (v *VirtualMachine) WithoutDataDisk(lun int32) *VirtualMachine {
	v.detachLuns = append(v.detachLuns, lun)
	v.dataDisks = lo.Filter(v.dataDisks, func(disk dataDisk, _ int) bool {
		return disk.lun != lun
	})
	return v
}

func (v *VirtualMachine) WithNewAvailabilitySet(name string) *VirtualMachine {
	return v.WithNewAvailabilitySetDefinition(v.vms.manager.AvailabilitySets().Define(name))
}

func (v *VirtualMachine) WithNewAvailabilitySetDefinition(set *AvailabilitySet) *VirtualMachine {
	v.availabilitySet = set
	v.availabilitySetID = ""
	return v
}

func (v *VirtualMachine) WithExistingAvailabilitySet(set *AvailabilitySet) *VirtualMachine {
	v.availabilitySet = nil
	v.availabilitySetID = set.ID()
	return v
}

// WithNewPrimaryNetwork creates a virtual network with addressSpace as its only subnet and a primary
// interface in it.
func (v *VirtualMachine) WithNewPrimaryNetwork(addressSpace string) *VirtualMachine {
	vnet := v.vms.manager.network.Networks().Define(v.Name() + "-vnet").
		WithAddressSpace(addressSpace).
		WithSubnet(primarySubnet, addressSpace)
	return v.WithNewPrimaryNetworkDefinition(vnet, primarySubnet)
}

func (v *VirtualMachine) WithNewPrimaryNetworkDefinition(vnet *network.Network, subnet string) *VirtualMachine {
	v.nic = v.newNetworkInterface().WithNewPrimaryNetwork(vnet, subnet)
	return v
}

func (v *VirtualMachine) WithExistingPrimaryNetwork(vnet *network.Network, subnet string) *VirtualMachine {
	v.nic = v.newNetworkInterface().WithExistingPrimaryNetwork(vnet, subnet)
	return v
}

func (v *VirtualMachine) WithExistingPrimaryNetworkInterface(nic *network.NetworkInterface) *VirtualMachine {
	v.nic = nic
	return v
}

func (v *VirtualMachine) WithPrimaryPrivateIPAddressDynamic() *VirtualMachine {
	v.privateIP = ""
	return v
}

func (v *VirtualMachine) WithPrimaryPrivateIPAddressStatic(address string) *VirtualMachine {
	v.privateIP = address
	return v
}

func (v *VirtualMachine) newNetworkInterface() *network.NetworkInterface {
	return v.vms.manager.network.NetworkInterfaces().Define(v.Name() + "-nic")
}

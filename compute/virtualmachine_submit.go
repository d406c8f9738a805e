package compute

import (
	"context"
	"fmt"
	"log"
	"sort"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/compute/armcompute/v2"
	"github.com/entigolabs/azure-fluent/fluent"
	"github.com/entigolabs/azure-fluent/model"
	"github.com/samber/lo"
)

func (v *VirtualMachine) Create(ctx context.Context) (*VirtualMachine, error) {
	if err := v.submit(ctx); err != nil {
		return nil, err
	}
	return v, nil
}

func (v *VirtualMachine) Update() *VirtualMachine {
	return v
}

func (v *VirtualMachine) Apply(ctx context.Context) (*VirtualMachine, error) {
	return v.Create(ctx)
}

func inherit[W any](child *fluent.Groupable[W], region, resourceGroup string) {
	if child.RegionName() == "" {
		child.WithRegion(region)
	}
	if child.ResourceGroupName() == "" {
		child.WithExistingResourceGroup(resourceGroup)
	}
}

func (v *VirtualMachine) validate() error {
	if err := v.Validate(); err != nil {
		return err
	}
	if !v.IsInCreateMode() {
		return nil
	}
	if v.image == nil && v.specializedOS == nil {
		return model.NewValidationError(v.Name(), "image or specialized os disk is required")
	}
	if v.nic == nil {
		return model.NewValidationError(v.Name(), "primary network is required")
	}
	if v.specializedOS != nil {
		return nil
	}
	if v.adminUsername == "" {
		return model.NewValidationError(v.Name(), "admin username is required")
	}
	if lo.FromPtr(v.osType) == armcompute.OperatingSystemTypesWindows {
		if v.adminPassword == "" {
			return model.NewValidationError(v.Name(), "admin password is required")
		}
	} else if v.adminPassword == "" && len(v.sshKeys) == 0 {
		return model.NewValidationError(v.Name(), "root password or ssh key is required")
	}
	return nil
}

func (v *VirtualMachine) submit(ctx context.Context) error {
	if err := v.validate(); err != nil {
		return err
	}
	if v.msi.HasIdentityChanges() || v.msi.HasRoleAssignments() {
		if err := v.vms.manager.identities.Err(); err != nil {
			return err
		}
	}
	creating := v.IsInCreateMode()
	tasks := fluent.NewTaskGroup()
	groupKey := v.PrepareResourceGroup(tasks)
	deps := []string{groupKey}
	if set := v.availabilitySet; set != nil && set.IsInCreateMode() && creating {
		inherit(set.Groupable, v.RegionName(), v.ResourceGroupName())
		key := "availabilityset/" + set.Name()
		tasks.Add(key, set.Submit, groupKey, set.Prepare(tasks))
		deps = append(deps, key)
	}
	if nic := v.nic; nic != nil && nic.IsInCreateMode() && creating {
		inherit(nic.Groupable, v.RegionName(), v.ResourceGroupName())
		if v.privateIP != "" {
			nic.WithPrimaryPrivateIPAddressStatic(v.privateIP)
		}
		key := "networkinterface/" + nic.Name()
		tasks.Add(key, nic.Submit, nic.Prepare(tasks, groupKey)...)
		deps = append(deps, key)
	}
	disks := lo.FilterMap(v.dataDisks, func(disk dataDisk, _ int) (*Disk, bool) {
		return disk.disk, disk.disk != nil && disk.disk.IsInCreateMode()
	})
	if v.specializedOS != nil && v.specializedOS.IsInCreateMode() {
		disks = append(disks, v.specializedOS)
	}
	for _, disk := range disks {
		inherit(disk.Groupable, v.RegionName(), v.ResourceGroupName())
		key := "disk/" + disk.Name()
		tasks.Add(key, disk.Submit, groupKey, disk.Prepare(tasks))
		deps = append(deps, key)
	}
	deps = append(deps, v.msi.Prepare(tasks, v.RegionName(), v.ResourceGroupName(), groupKey)...)

	vmKey := "virtualmachine/" + v.Name()
	tasks.Add(vmKey, v.submitVM, deps...)
	if v.msi.HasRoleAssignments() {
		tasks.Add("roles/"+v.Name(), func(ctx context.Context) error {
			return v.msi.AssignRoles(ctx, vmIdentity{vm: v.inner}, v.vms.manager.client.ResourceGroupID(v.ResourceGroupName()))
		}, vmKey)
	}
	if err := tasks.Run(ctx); err != nil {
		return err
	}
	v.CreatedResourceGroup()
	v.msi.Clear()
	if creating {
		log.Printf("Created virtual machine %s\n", v.Name())
	}
	return nil
}

func (v *VirtualMachine) submitVM(ctx context.Context) error {
	body, err := v.body()
	if err != nil {
		return err
	}
	v.msi.Apply(vmIdentity{vm: body})
	inner, err := v.vms.Resources().CreateOrUpdate(ctx, body, v.ResourceGroupName(), v.Name())
	if err != nil {
		return fmt.Errorf("failed to submit virtual machine %s: %w", v.Name(), err)
	}
	v.inner = inner
	v.clearStaged()
	return nil
}

// body builds the PUT body. Update mode sends the current server model with the staged changes.
func (v *VirtualMachine) body() (*armcompute.VirtualMachine, error) {
	properties := armcompute.VirtualMachineProperties{}
	if v.inner.Properties != nil {
		properties = *v.inner.Properties
	}
	properties.InstanceView = nil
	properties.ProvisioningState = nil
	body := &armcompute.VirtualMachine{
		Location:   to.Ptr(v.RegionName()),
		Tags:       v.TagPointers(),
		Zones:      v.inner.Zones,
		Plan:       v.inner.Plan,
		Properties: &properties,
	}
	if v.inner.Identity != nil {
		identity := *v.inner.Identity
		identity.PrincipalID = nil
		identity.TenantID = nil
		if identity.UserAssignedIdentities != nil {
			identity.UserAssignedIdentities = lo.Assign(identity.UserAssignedIdentities)
		}
		body.Identity = &identity
	}
	storage := armcompute.StorageProfile{}
	if properties.StorageProfile != nil {
		storage = *properties.StorageProfile
	}
	properties.StorageProfile = &storage
	if v.IsInCreateMode() {
		v.createProfiles(&properties, &storage)
	}
	if v.size != "" {
		properties.HardwareProfile = &armcompute.HardwareProfile{VMSize: to.Ptr(armcompute.VirtualMachineSizeTypes(v.size))}
	}
	dataDisks, err := v.mergeDataDisks(storage.DataDisks)
	if err != nil {
		return nil, err
	}
	storage.DataDisks = dataDisks
	return body, nil
}

func (v *VirtualMachine) createProfiles(properties *armcompute.VirtualMachineProperties, storage *armcompute.StorageProfile) {
	properties.HardwareProfile = &armcompute.HardwareProfile{VMSize: to.Ptr(armcompute.VirtualMachineSizeTypes(defaultSize))}
	osDisk := &armcompute.OSDisk{
		OSType:       v.osType,
		Caching:      to.Ptr(armcompute.CachingTypesReadWrite),
		CreateOption: to.Ptr(armcompute.DiskCreateOptionTypesFromImage),
		ManagedDisk:  &armcompute.ManagedDiskParameters{StorageAccountType: v.osDiskType},
		DiskSizeGB:   v.osDiskSize,
	}
	if v.osDiskCaching != nil {
		osDisk.Caching = v.osDiskCaching
	}
	if v.osDiskName != "" {
		osDisk.Name = to.Ptr(v.osDiskName)
	}
	if v.specializedOS != nil {
		osDisk.CreateOption = to.Ptr(armcompute.DiskCreateOptionTypesAttach)
		osDisk.ManagedDisk.ID = to.Ptr(v.specializedOS.ID())
	} else {
		storage.ImageReference = v.image
		properties.OSProfile = v.osProfile()
	}
	storage.OSDisk = osDisk

	nicID := v.nic.ID()
	properties.NetworkProfile = &armcompute.NetworkProfile{
		NetworkInterfaces: []*armcompute.NetworkInterfaceReference{{
			ID:         to.Ptr(nicID),
			Properties: &armcompute.NetworkInterfaceReferenceProperties{Primary: to.Ptr(true)},
		}},
	}
	if v.availabilitySet != nil {
		v.availabilitySetID = v.availabilitySet.ID()
	}
	if v.availabilitySetID != "" {
		properties.AvailabilitySet = &armcompute.SubResource{ID: to.Ptr(v.availabilitySetID)}
	}
}

func (v *VirtualMachine) osProfile() *armcompute.OSProfile {
	computerName := v.computerName
	if computerName == "" {
		computerName = v.Name()
	}
	profile := &armcompute.OSProfile{
		ComputerName:  to.Ptr(computerName),
		AdminUsername: to.Ptr(v.adminUsername),
	}
	if v.adminPassword != "" {
		profile.AdminPassword = to.Ptr(v.adminPassword)
	}
	if lo.FromPtr(v.osType) == armcompute.OperatingSystemTypesWindows {
		profile.WindowsConfiguration = windowsConfiguration()
	} else {
		profile.LinuxConfiguration = linuxConfiguration(v.adminUsername, v.adminPassword, v.sshKeys)
	}
	return profile
}

func windowsConfiguration() *armcompute.WindowsConfiguration {
	return &armcompute.WindowsConfiguration{
		ProvisionVMAgent:       to.Ptr(true),
		EnableAutomaticUpdates: to.Ptr(true),
	}
}

// linuxConfiguration disables password login when no password is set and authorizes keys for username.
func linuxConfiguration(username, password string, keys []string) *armcompute.LinuxConfiguration {
	linux := &armcompute.LinuxConfiguration{DisablePasswordAuthentication: to.Ptr(password == "")}
	if len(keys) > 0 {
		linux.SSH = &armcompute.SSHConfiguration{
			PublicKeys: lo.Map(keys, func(key string, _ int) *armcompute.SSHPublicKey {
				return &armcompute.SSHPublicKey{
					Path:    to.Ptr(fmt.Sprintf("/home/%s/.ssh/authorized_keys", username)),
					KeyData: to.Ptr(key),
				}
			}),
		}
	}
	return linux
}

func (v *VirtualMachine) mergeDataDisks(current []*armcompute.DataDisk) ([]*armcompute.DataDisk, error) {
	detached := model.ToSet(v.detachLuns)
	disks := lo.Filter(current, func(disk *armcompute.DataDisk, _ int) bool {
		return disk != nil && !detached.Contains(lo.FromPtr(disk.Lun))
	})
	used := model.ToSet(lo.Map(disks, func(disk *armcompute.DataDisk, _ int) int32 {
		return lo.FromPtr(disk.Lun)
	}))
	for _, staged := range v.dataDisks {
		if staged.lun >= 0 {
			if used.Contains(staged.lun) {
				return nil, model.NewValidationError(v.Name(), fmt.Sprintf("lun %d is already in use", staged.lun))
			}
			used.Add(staged.lun)
		}
	}
	next := int32(0)
	for _, staged := range v.dataDisks {
		lun := staged.lun
		if lun < 0 {
			for used.Contains(next) {
				next++
			}
			lun = next
			used.Add(lun)
		}
		disk := &armcompute.DataDisk{Lun: to.Ptr(lun), Caching: to.Ptr(staged.caching)}
		if staged.disk != nil {
			disk.CreateOption = to.Ptr(armcompute.DiskCreateOptionTypesAttach)
			disk.ManagedDisk = &armcompute.ManagedDiskParameters{ID: to.Ptr(staged.disk.ID())}
		} else {
			storageType := staged.storageType
			if storageType == nil {
				storageType = v.dataDiskType
			}
			disk.CreateOption = to.Ptr(armcompute.DiskCreateOptionTypesEmpty)
			disk.DiskSizeGB = to.Ptr(staged.size)
			disk.ManagedDisk = &armcompute.ManagedDiskParameters{StorageAccountType: storageType}
		}
		disks = append(disks, disk)
	}
	sort.Slice(disks, func(i, j int) bool {
		return lo.FromPtr(disks[i].Lun) < lo.FromPtr(disks[j].Lun)
	})
	return disks, nil
}

func (v *VirtualMachine) clearStaged() {
	v.image = nil
	v.specializedOS = nil
	v.computerName = ""
	v.adminPassword = ""
	v.sshKeys = nil
	v.size = ""
	v.osDiskCaching = nil
	v.osDiskSize = nil
	v.osDiskType = nil
	v.osDiskName = ""
	v.dataDisks = nil
	v.detachLuns = nil
	v.availabilitySet = nil
	v.availabilitySetID = ""
	v.nic = nil
	v.privateIP = ""
}

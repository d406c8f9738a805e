package compute

import (
	"context"
	"fmt"
	"log"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/compute/armcompute/v2"
	"github.com/entigolabs/azure-fluent/fluent"
	"github.com/entigolabs/azure-fluent/model"
	"github.com/entigolabs/azure-fluent/msi"
	"github.com/entigolabs/azure-fluent/network"
	"github.com/samber/lo"
)

const (
	defaultScaleSetSize     = "Standard_D2s_v3"
	defaultScaleSetCapacity = 2
	primaryConfiguration    = "primary-nic-cfg"
	primaryIPConfiguration  = "primary-nic-ip-cfg"
)

type VirtualMachineScaleSets struct {
	*fluent.Collection[armcompute.VirtualMachineScaleSet, *VirtualMachineScaleSet]
	manager *Manager
}

func (v *VirtualMachineScaleSets) Define(name string) *VirtualMachineScaleSet {
	return v.newScaleSet(&armcompute.VirtualMachineScaleSet{Name: to.Ptr(name)})
}

func (v *VirtualMachineScaleSets) WrapModel(inner *armcompute.VirtualMachineScaleSet) *VirtualMachineScaleSet {
	set := v.newScaleSet(inner)
	set.Load(inner.ID, inner.Name, inner.Location, inner.Tags)
	return set
}

func (v *VirtualMachineScaleSets) newScaleSet(inner *armcompute.VirtualMachineScaleSet) *VirtualMachineScaleSet {
	set := &VirtualMachineScaleSet{sets: v, inner: inner, msi: v.manager.identities.NewHandler()}
	set.identityOptions = identityOptions[*VirtualMachineScaleSet]{self: set, handler: set.msi}
	set.Groupable = fluent.NewGroupable(set, v.manager.resources.ResourceGroups(), lo.FromPtr(inner.Name))
	return set
}

// VirtualMachineScaleSet is the fluent wrapper of armcompute.VirtualMachineScaleSet.
type VirtualMachineScaleSet struct {
	*fluent.Groupable[*VirtualMachineScaleSet]
	identityOptions[*VirtualMachineScaleSet]
	sets  *VirtualMachineScaleSets
	inner *armcompute.VirtualMachineScaleSet
	msi   *msi.Handler

	sku                *string
	capacity           *int64
	upgradeMode        *armcompute.UpgradeMode
	subnetID           string
	network            *network.Network
	subnet             string
	image              *armcompute.ImageReference
	osType             *armcompute.OperatingSystemTypes
	computerNamePrefix string
	adminUsername      string
	adminPassword      string
	sshKeys            []string
	osDiskCaching      *armcompute.CachingTypes
	osDiskSize         *int32
	osDiskType         *armcompute.StorageAccountTypes
}

func (s *VirtualMachineScaleSet) Inner() *armcompute.VirtualMachineScaleSet {
	return s.inner
}

func (s *VirtualMachineScaleSet) ID() string {
	return lo.FromPtr(s.inner.ID)
}

func (s *VirtualMachineScaleSet) IsInCreateMode() bool {
	return s.inner.ID == nil
}

func (s *VirtualMachineScaleSet) properties() *armcompute.VirtualMachineScaleSetProperties {
	if s.inner.Properties == nil {
		return &armcompute.VirtualMachineScaleSetProperties{}
	}
	return s.inner.Properties
}

func (s *VirtualMachineScaleSet) profile() *armcompute.VirtualMachineScaleSetVMProfile {
	if s.properties().VirtualMachineProfile == nil {
		return &armcompute.VirtualMachineScaleSetVMProfile{}
	}
	return s.properties().VirtualMachineProfile
}

func (s *VirtualMachineScaleSet) SkuName() string {
	if s.inner.SKU == nil {
		return ""
	}
	return lo.FromPtr(s.inner.SKU.Name)
}

func (s *VirtualMachineScaleSet) Capacity() int64 {
	if s.inner.SKU == nil {
		return 0
	}
	return lo.FromPtr(s.inner.SKU.Capacity)
}

func (s *VirtualMachineScaleSet) UpgradeMode() armcompute.UpgradeMode {
	if s.properties().UpgradePolicy == nil {
		return ""
	}
	return lo.FromPtr(s.properties().UpgradePolicy.Mode)
}

func (s *VirtualMachineScaleSet) ComputerNamePrefix() string {
	if s.profile().OSProfile == nil {
		return ""
	}
	return lo.FromPtr(s.profile().OSProfile.ComputerNamePrefix)
}

func (s *VirtualMachineScaleSet) ProvisioningState() string {
	return lo.FromPtr(s.properties().ProvisioningState)
}

// PrimarySubnetID returns the subnet of the primary ip configuration of the primary nic configuration.
func (s *VirtualMachineScaleSet) PrimarySubnetID() string {
	if s.profile().NetworkProfile == nil {
		return ""
	}
	for _, configuration := range s.profile().NetworkProfile.NetworkInterfaceConfigurations {
		if configuration == nil || configuration.Properties == nil || !lo.FromPtr(configuration.Properties.Primary) {
			continue
		}
		for _, ip := range configuration.Properties.IPConfigurations {
			if ip != nil && ip.Properties != nil && ip.Properties.Subnet != nil {
				return lo.FromPtr(ip.Properties.Subnet.ID)
			}
		}
	}
	return ""
}

func (s *VirtualMachineScaleSet) SystemAssignedManagedServiceIdentityPrincipalID() string {
	return scaleSetIdentity{set: s.inner}.PrincipalID()
}

func (s *VirtualMachineScaleSet) UserAssignedManagedServiceIdentityIDs() []string {
	return scaleSetIdentity{set: s.inner}.UserAssignedIdentityIDs()
}

func (s *VirtualMachineScaleSet) WithSku(size string) *VirtualMachineScaleSet {
	s.sku = to.Ptr(size)
	return s
}

func (s *VirtualMachineScaleSet) WithCapacity(capacity int64) *VirtualMachineScaleSet {
	s.capacity = to.Ptr(capacity)
	return s
}

func (s *VirtualMachineScaleSet) WithUpgradeMode(mode armcompute.UpgradeMode) *VirtualMachineScaleSet {
	s.upgradeMode = to.Ptr(mode)
	return s
}

func (s *VirtualMachineScaleSet) WithExistingPrimaryNetworkSubnet(vnet *network.Network, subnet string) *VirtualMachineScaleSet {
	if vnet.IsInCreateMode() {
		s.network = vnet
		s.subnet = subnet
		return s
	}
	s.subnetID = vnet.SubnetID(subnet)
	return s
}

func (s *VirtualMachineScaleSet) WithExistingSubnetID(subnetID string) *VirtualMachineScaleSet {
	s.subnetID = subnetID
	s.network = nil
	return s
}

func (s *VirtualMachineScaleSet) WithPopularLinuxImage(image Image) *VirtualMachineScaleSet {
	return s.withImage(image, armcompute.OperatingSystemTypesLinux)
}

func (s *VirtualMachineScaleSet) WithLatestLinuxImage(publisher, offer, sku string) *VirtualMachineScaleSet {
	return s.withImage(Image{Publisher: publisher, Offer: offer, SKU: sku}, armcompute.OperatingSystemTypesLinux)
}

func (s *VirtualMachineScaleSet) WithPopularWindowsImage(image Image) *VirtualMachineScaleSet {
	return s.withImage(image, armcompute.OperatingSystemTypesWindows)
}

func (s *VirtualMachineScaleSet) withImage(image Image, osType armcompute.OperatingSystemTypes) *VirtualMachineScaleSet {
	s.image = image.reference()
	s.osType = to.Ptr(osType)
	return s
}

func (s *VirtualMachineScaleSet) WithComputerNamePrefix(prefix string) *VirtualMachineScaleSet {
	s.computerNamePrefix = prefix
	return s
}

func (s *VirtualMachineScaleSet) WithRootUsername(username string) *VirtualMachineScaleSet {
	s.adminUsername = username
	return s
}

func (s *VirtualMachineScaleSet) WithRootPassword(password string) *VirtualMachineScaleSet {
	s.adminPassword = password
	return s
}

func (s *VirtualMachineScaleSet) WithSSH(publicKey string) *VirtualMachineScaleSet {
	s.sshKeys = append(s.sshKeys, publicKey)
	return s
}

func (s *VirtualMachineScaleSet) WithAdminUsername(username string) *VirtualMachineScaleSet {
	return s.WithRootUsername(username)
}

func (s *VirtualMachineScaleSet) WithAdminPassword(password string) *VirtualMachineScaleSet {
	return s.WithRootPassword(password)
}

func (s *VirtualMachineScaleSet) WithOSDiskCaching(caching armcompute.CachingTypes) *VirtualMachineScaleSet {
	s.osDiskCaching = to.Ptr(caching)
	return s
}

func (s *VirtualMachineScaleSet) WithOSDiskSizeInGB(size int32) *VirtualMachineScaleSet {
	s.osDiskSize = to.Ptr(size)
	return s
}

func (s *VirtualMachineScaleSet) WithOSDiskStorageAccountType(storageType armcompute.StorageAccountTypes) *VirtualMachineScaleSet {
	s.osDiskType = to.Ptr(storageType)
	return s
}

func (s *VirtualMachineScaleSet) Create(ctx context.Context) (*VirtualMachineScaleSet, error) {
	if err := s.submit(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *VirtualMachineScaleSet) Update() *VirtualMachineScaleSet {
	return s
}

func (s *VirtualMachineScaleSet) Apply(ctx context.Context) (*VirtualMachineScaleSet, error) {
	return s.Create(ctx)
}

// Scale sets the instance count and submits it.
func (s *VirtualMachineScaleSet) Scale(ctx context.Context, capacity int64) error {
	_, err := s.WithCapacity(capacity).Apply(ctx)
	return err
}

func (s *VirtualMachineScaleSet) Refresh(ctx context.Context) (*VirtualMachineScaleSet, error) {
	inner, err := s.sets.Resources().Get(ctx, s.ResourceGroupName(), s.Name())
	if err != nil {
		return nil, err
	}
	s.inner = inner
	s.Load(inner.ID, inner.Name, inner.Location, inner.Tags)
	return s, nil
}

func (s *VirtualMachineScaleSet) Delete(ctx context.Context) error {
	return s.sets.DeleteByResourceGroup(ctx, s.ResourceGroupName(), s.Name())
}

func (s *VirtualMachineScaleSet) Start(ctx context.Context) error {
	return s.action(ctx, "start", "Started")
}

func (s *VirtualMachineScaleSet) PowerOff(ctx context.Context) error {
	return s.action(ctx, "powerOff", "Powered off")
}

func (s *VirtualMachineScaleSet) Restart(ctx context.Context) error {
	return s.action(ctx, "restart", "Restarted")
}

func (s *VirtualMachineScaleSet) Deallocate(ctx context.Context) error {
	return s.action(ctx, "deallocate", "Deallocated")
}

func (s *VirtualMachineScaleSet) action(ctx context.Context, action, done string) error {
	if err := s.sets.Resources().Action(ctx, action, nil, s.ResourceGroupName(), s.Name()); err != nil {
		return fmt.Errorf("failed to %s scale set %s: %w", action, s.Name(), err)
	}
	log.Printf("%s scale set %s\n", done, s.Name())
	return nil
}

func (s *VirtualMachineScaleSet) validate() error {
	if err := s.Validate(); err != nil {
		return err
	}
	if !s.IsInCreateMode() {
		return nil
	}
	if s.image == nil {
		return model.NewValidationError(s.Name(), "image is required")
	}
	if s.subnetID == "" && s.network == nil {
		return model.NewValidationError(s.Name(), "primary subnet is required")
	}
	if s.adminUsername == "" {
		return model.NewValidationError(s.Name(), "admin username is required")
	}
	if s.adminPassword == "" && (len(s.sshKeys) == 0 || lo.FromPtr(s.osType) == armcompute.OperatingSystemTypesWindows) {
		return model.NewValidationError(s.Name(), "admin password or ssh key is required")
	}
	return nil
}

func (s *VirtualMachineScaleSet) submit(ctx context.Context) error {
	if err := s.validate(); err != nil {
		return err
	}
	if s.msi.HasIdentityChanges() || s.msi.HasRoleAssignments() {
		if err := s.sets.manager.identities.Err(); err != nil {
			return err
		}
	}
	creating := s.IsInCreateMode()
	tasks := fluent.NewTaskGroup()
	groupKey := s.PrepareResourceGroup(tasks)
	deps := []string{groupKey}
	if vnet := s.network; vnet != nil && vnet.IsInCreateMode() {
		inherit(vnet.Groupable, s.RegionName(), s.ResourceGroupName())
		key := "network/" + vnet.Name()
		tasks.Add(key, func(ctx context.Context) error {
			_, err := vnet.Apply(ctx)
			return err
		}, groupKey)
		deps = append(deps, key)
	}
	deps = append(deps, s.msi.Prepare(tasks, s.RegionName(), s.ResourceGroupName(), groupKey)...)
	setKey := "scaleset/" + s.Name()
	tasks.Add(setKey, s.submitScaleSet, deps...)
	if s.msi.HasRoleAssignments() {
		tasks.Add("roles/"+s.Name(), func(ctx context.Context) error {
			return s.msi.AssignRoles(ctx, scaleSetIdentity{set: s.inner}, s.sets.manager.client.ResourceGroupID(s.ResourceGroupName()))
		}, setKey)
	}
	if err := tasks.Run(ctx); err != nil {
		return err
	}
	s.CreatedResourceGroup()
	s.msi.Clear()
	if creating {
		log.Printf("Created scale set %s\n", s.Name())
	}
	return nil
}

func (s *VirtualMachineScaleSet) submitScaleSet(ctx context.Context) error {
	body := s.body()
	s.msi.Apply(scaleSetIdentity{set: body})
	inner, err := s.sets.Resources().CreateOrUpdate(ctx, body, s.ResourceGroupName(), s.Name())
	if err != nil {
		return fmt.Errorf("failed to submit scale set %s: %w", s.Name(), err)
	}
	s.inner = inner
	s.clearStaged()
	return nil
}

func (s *VirtualMachineScaleSet) body() *armcompute.VirtualMachineScaleSet {
	properties := armcompute.VirtualMachineScaleSetProperties{}
	if s.inner.Properties != nil {
		properties = *s.inner.Properties
	}
	properties.ProvisioningState = nil
	sku := armcompute.SKU{}
	if s.inner.SKU != nil {
		sku = *s.inner.SKU
	}
	body := &armcompute.VirtualMachineScaleSet{
		Location:   to.Ptr(s.RegionName()),
		Tags:       s.TagPointers(),
		Zones:      s.inner.Zones,
		SKU:        &sku,
		Properties: &properties,
	}
	if s.inner.Identity != nil {
		identity := *s.inner.Identity
		identity.PrincipalID = nil
		identity.TenantID = nil
		if identity.UserAssignedIdentities != nil {
			identity.UserAssignedIdentities = lo.Assign(identity.UserAssignedIdentities)
		}
		body.Identity = &identity
	}
	if s.IsInCreateMode() {
		sku.Name = to.Ptr(defaultScaleSetSize)
		sku.Tier = to.Ptr("Standard")
		sku.Capacity = to.Ptr[int64](defaultScaleSetCapacity)
		properties.UpgradePolicy = &armcompute.UpgradePolicy{Mode: to.Ptr(armcompute.UpgradeModeManual)}
		properties.Overprovision = to.Ptr(true)
		properties.VirtualMachineProfile = s.createProfile()
	}
	if s.sku != nil {
		sku.Name = s.sku
	}
	if s.capacity != nil {
		sku.Capacity = s.capacity
	}
	if s.upgradeMode != nil {
		properties.UpgradePolicy = &armcompute.UpgradePolicy{Mode: s.upgradeMode}
	}
	return body
}

func (s *VirtualMachineScaleSet) createProfile() *armcompute.VirtualMachineScaleSetVMProfile {
	subnetID := s.subnetID
	if s.network != nil {
		subnetID = s.network.SubnetID(s.subnet)
	}
	prefix := s.computerNamePrefix
	if prefix == "" {
		prefix = s.Name()
	}
	osProfile := &armcompute.VirtualMachineScaleSetOSProfile{
		ComputerNamePrefix: to.Ptr(prefix),
		AdminUsername:      to.Ptr(s.adminUsername),
	}
	if s.adminPassword != "" {
		osProfile.AdminPassword = to.Ptr(s.adminPassword)
	}
	if lo.FromPtr(s.osType) == armcompute.OperatingSystemTypesWindows {
		osProfile.WindowsConfiguration = windowsConfiguration()
	} else {
		osProfile.LinuxConfiguration = linuxConfiguration(s.adminUsername, s.adminPassword, s.sshKeys)
	}
	osDisk := &armcompute.VirtualMachineScaleSetOSDisk{
		CreateOption: to.Ptr(armcompute.DiskCreateOptionTypesFromImage),
		Caching:      to.Ptr(armcompute.CachingTypesReadWrite),
		OSType:       s.osType,
		DiskSizeGB:   s.osDiskSize,
	}
	if s.osDiskCaching != nil {
		osDisk.Caching = s.osDiskCaching
	}
	if s.osDiskType != nil {
		osDisk.ManagedDisk = &armcompute.VirtualMachineScaleSetManagedDiskParameters{StorageAccountType: s.osDiskType}
	}
	return &armcompute.VirtualMachineScaleSetVMProfile{
		OSProfile: osProfile,
		StorageProfile: &armcompute.VirtualMachineScaleSetStorageProfile{
			ImageReference: s.image,
			OSDisk:         osDisk,
		},
		NetworkProfile: &armcompute.VirtualMachineScaleSetNetworkProfile{
			NetworkInterfaceConfigurations: []*armcompute.VirtualMachineScaleSetNetworkConfiguration{{
				Name: to.Ptr(primaryConfiguration),
				Properties: &armcompute.VirtualMachineScaleSetNetworkConfigurationProperties{
					Primary: to.Ptr(true),
					IPConfigurations: []*armcompute.VirtualMachineScaleSetIPConfiguration{{
						Name: to.Ptr(primaryIPConfiguration),
						Properties: &armcompute.VirtualMachineScaleSetIPConfigurationProperties{
							Subnet: &armcompute.APIEntityReference{ID: to.Ptr(subnetID)},
						},
					}},
				},
			}},
		},
	}
}

func (s *VirtualMachineScaleSet) clearStaged() {
	s.sku = nil
	s.capacity = nil
	s.upgradeMode = nil
	s.subnetID = ""
	s.network = nil
	s.subnet = ""
	s.image = nil
	s.computerNamePrefix = ""
	s.adminPassword = ""
	s.sshKeys = nil
	s.osDiskCaching = nil
	s.osDiskSize = nil
	s.osDiskType = nil
}

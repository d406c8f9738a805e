package compute

import (
	"sync"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	azarm "github.com/Azure/azure-sdk-for-go/sdk/azcore/arm"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/compute/armcompute/v2"
	"github.com/entigolabs/azure-fluent/arm"
	"github.com/entigolabs/azure-fluent/fluent"
	"github.com/entigolabs/azure-fluent/msi"
	"github.com/entigolabs/azure-fluent/network"
	"github.com/entigolabs/azure-fluent/resources"
)

const (
	APIVersion     = "2022-08-01"
	DiskAPIVersion = "2022-07-02"
)

var (
	vmSchema = arm.Schema[armcompute.VirtualMachine]{
		Namespace:  "Microsoft.Compute",
		Types:      []string{"virtualMachines"},
		APIVersion: APIVersion,
		ID:         func(v *armcompute.VirtualMachine) *string { return v.ID },
	}
	scaleSetSchema = arm.Schema[armcompute.VirtualMachineScaleSet]{
		Namespace:  "Microsoft.Compute",
		Types:      []string{"virtualMachineScaleSets"},
		APIVersion: APIVersion,
		ID:         func(v *armcompute.VirtualMachineScaleSet) *string { return v.ID },
	}
	availabilitySetSchema = arm.Schema[armcompute.AvailabilitySet]{
		Namespace:  "Microsoft.Compute",
		Types:      []string{"availabilitySets"},
		APIVersion: APIVersion,
		ID:         func(a *armcompute.AvailabilitySet) *string { return a.ID },
	}
	diskSchema = arm.Schema[armcompute.Disk]{
		Namespace:  "Microsoft.Compute",
		Types:      []string{"disks"},
		APIVersion: DiskAPIVersion,
		ID:         func(d *armcompute.Disk) *string { return d.ID },
	}
)

type Manager struct {
	client     *arm.Client
	resources  *resources.Manager
	network    *network.Manager
	identities *msi.Clients

	vmsOnce              sync.Once
	vms                  *VirtualMachines
	scaleSetsOnce        sync.Once
	scaleSets            *VirtualMachineScaleSets
	availabilitySetsOnce sync.Once
	availabilitySets     *AvailabilitySets
	disksOnce            sync.Once
	disks                *Disks
}

func Authenticate(credential azcore.TokenCredential, subscriptionID string, options *azarm.ClientOptions) (*Manager, error) {
	client, err := arm.NewClient(subscriptionID, credential, options)
	if err != nil {
		return nil, err
	}
	return NewManager(client), nil
}

func NewManager(client *arm.Client) *Manager {
	return &Manager{
		client:     client,
		resources:  resources.NewManager(client),
		network:    network.NewManager(client),
		identities: msi.NewClients(client),
	}
}

func (m *Manager) Client() *arm.Client {
	return m.client
}

func (m *Manager) NetworkManager() *network.Manager {
	return m.network
}

func (m *Manager) ResourceManager() *resources.Manager {
	return m.resources
}

// Identities gives access to user assigned identities that can be attached to machines and scale sets.
func (m *Manager) Identities() (*msi.Identities, error) {
	return m.identities.Identities()
}

func (m *Manager) VirtualMachines() *VirtualMachines {
	m.vmsOnce.Do(func() {
		vms := &VirtualMachines{manager: m}
		vms.Collection = fluent.NewCollection(arm.NewResources(m.client, vmSchema), vms.WrapModel)
		m.vms = vms
	})
	return m.vms
}

func (m *Manager) VirtualMachineScaleSets() *VirtualMachineScaleSets {
	m.scaleSetsOnce.Do(func() {
		sets := &VirtualMachineScaleSets{manager: m}
		sets.Collection = fluent.NewCollection(arm.NewResources(m.client, scaleSetSchema), sets.WrapModel)
		m.scaleSets = sets
	})
	return m.scaleSets
}

func (m *Manager) AvailabilitySets() *AvailabilitySets {
	m.availabilitySetsOnce.Do(func() {
		sets := &AvailabilitySets{manager: m}
		sets.Collection = fluent.NewCollection(arm.NewResources(m.client, availabilitySetSchema), sets.WrapModel)
		m.availabilitySets = sets
	})
	return m.availabilitySets
}

func (m *Manager) Disks() *Disks {
	m.disksOnce.Do(func() {
		disks := &Disks{manager: m}
		disks.Collection = fluent.NewCollection(arm.NewResources(m.client, diskSchema), disks.WrapModel)
		m.disks = disks
	})
	return m.disks
}

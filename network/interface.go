package network

import (
	"context"
	"fmt"
	"log"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/network/armnetwork"
	"github.com/entigolabs/azure-fluent/fluent"
	"github.com/entigolabs/azure-fluent/model"
	"github.com/samber/lo"
)

const primaryIPConfiguration = "primary"

type NetworkInterfaces struct {
	*fluent.Collection[armnetwork.Interface, *NetworkInterface]
	manager *Manager
}

func (n *NetworkInterfaces) Define(name string) *NetworkInterface {
	return n.newInterface(&armnetwork.Interface{Name: to.Ptr(name)})
}

func (n *NetworkInterfaces) WrapModel(inner *armnetwork.Interface) *NetworkInterface {
	nic := n.newInterface(inner)
	nic.Load(inner.ID, inner.Name, inner.Location, inner.Tags)
	return nic
}

func (n *NetworkInterfaces) newInterface(inner *armnetwork.Interface) *NetworkInterface {
	nic := &NetworkInterface{interfaces: n, inner: inner}
	nic.Groupable = fluent.NewGroupable(nic, n.manager.resources.ResourceGroups(), lo.FromPtr(inner.Name))
	return nic
}

// NetworkInterface is the fluent wrapper of armnetwork.Interface.
type NetworkInterface struct {
	*fluent.Groupable[*NetworkInterface]
	interfaces *NetworkInterfaces
	inner      *armnetwork.Interface
	network    *Network
	subnet     string
	subnetID   string
	privateIP  string
}

func (n *NetworkInterface) Inner() *armnetwork.Interface {
	return n.inner
}

func (n *NetworkInterface) ID() string {
	return lo.FromPtr(n.inner.ID)
}

func (n *NetworkInterface) IsInCreateMode() bool {
	return n.inner.ID == nil
}

func (n *NetworkInterface) primary() *armnetwork.InterfaceIPConfiguration {
	if n.inner.Properties == nil {
		return nil
	}
	for _, configuration := range n.inner.Properties.IPConfigurations {
		if configuration != nil && configuration.Properties != nil && lo.FromPtr(configuration.Properties.Primary) {
			return configuration
		}
	}
	if len(n.inner.Properties.IPConfigurations) > 0 {
		return n.inner.Properties.IPConfigurations[0]
	}
	return nil
}

func (n *NetworkInterface) PrimaryPrivateIP() string {
	configuration := n.primary()
	if configuration == nil || configuration.Properties == nil {
		return ""
	}
	return lo.FromPtr(configuration.Properties.PrivateIPAddress)
}

func (n *NetworkInterface) PrimarySubnetID() string {
	configuration := n.primary()
	if configuration == nil || configuration.Properties == nil || configuration.Properties.Subnet == nil {
		return ""
	}
	return lo.FromPtr(configuration.Properties.Subnet.ID)
}

// WithNewPrimaryNetwork resolves the subnet id from network once it has been created.
func (n *NetworkInterface) WithNewPrimaryNetwork(network *Network, subnet string) *NetworkInterface {
	n.network = network
	n.subnet = subnet
	return n
}

func (n *NetworkInterface) WithExistingPrimaryNetwork(network *Network, subnet string) *NetworkInterface {
	n.subnetID = network.SubnetID(subnet)
	return n
}

func (n *NetworkInterface) WithExistingSubnetID(subnetID string) *NetworkInterface {
	n.subnetID = subnetID
	return n
}

func (n *NetworkInterface) WithPrimaryPrivateIPAddressDynamic() *NetworkInterface {
	n.privateIP = ""
	return n
}

func (n *NetworkInterface) WithPrimaryPrivateIPAddressStatic(address string) *NetworkInterface {
	n.privateIP = address
	return n
}

func (n *NetworkInterface) Create(ctx context.Context) (*NetworkInterface, error) {
	if err := n.Validate(); err != nil {
		return nil, err
	}
	tasks := fluent.NewTaskGroup()
	deps := n.Prepare(tasks)
	tasks.Add("networkinterface/"+n.Name(), n.Submit, deps...)
	if err := tasks.Run(ctx); err != nil {
		return nil, err
	}
	n.CreatedResourceGroup()
	log.Printf("Created network interface %s\n", n.Name())
	return n, nil
}

// Prepare registers the creatables the interface depends on and returns their task keys. A new
// network also waits for dependsOn.
func (n *NetworkInterface) Prepare(tasks *fluent.TaskGroup, dependsOn ...string) []string {
	groupKey := n.PrepareResourceGroup(tasks)
	deps := append([]string{groupKey}, dependsOn...)
	if n.network != nil && n.network.IsInCreateMode() {
		network := n.network
		if network.RegionName() == "" {
			network.WithRegion(n.RegionName())
		}
		if network.ResourceGroupName() == "" {
			network.WithExistingResourceGroup(n.ResourceGroupName())
		}
		key := "network/" + network.Name()
		tasks.Add(key, network.submit, deps...)
		deps = append(deps, key)
	}
	return deps
}

// Submit issues the PUT for the interface.
func (n *NetworkInterface) Submit(ctx context.Context) error {
	subnetID := n.subnetID
	if n.network != nil {
		subnetID = n.network.SubnetID(n.subnet)
	}
	if subnetID == "" {
		subnetID = n.PrimarySubnetID()
	}
	if subnetID == "" {
		return model.NewValidationError(n.Name(), "primary subnet is required")
	}
	allocation := armnetwork.IPAllocationMethodDynamic
	var address *string
	if n.privateIP != "" {
		allocation = armnetwork.IPAllocationMethodStatic
		address = to.Ptr(n.privateIP)
	}
	body := armnetwork.Interface{
		Location: to.Ptr(n.RegionName()),
		Tags:     n.TagPointers(),
		Properties: &armnetwork.InterfacePropertiesFormat{
			IPConfigurations: []*armnetwork.InterfaceIPConfiguration{{
				Name: to.Ptr(primaryIPConfiguration),
				Properties: &armnetwork.InterfaceIPConfigurationPropertiesFormat{
					Primary:                   to.Ptr(true),
					PrivateIPAllocationMethod: to.Ptr(allocation),
					PrivateIPAddress:          address,
					Subnet:                    &armnetwork.Subnet{ID: to.Ptr(subnetID)},
				},
			}},
		},
	}
	inner, err := n.interfaces.Resources().CreateOrUpdate(ctx, body, n.ResourceGroupName(), n.Name())
	if err != nil {
		return fmt.Errorf("failed to create network interface %s: %w", n.Name(), err)
	}
	n.inner = inner
	n.network = nil
	return nil
}

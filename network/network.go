package network

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	azarm "github.com/Azure/azure-sdk-for-go/sdk/azcore/arm"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/network/armnetwork"
	"github.com/entigolabs/azure-fluent/arm"
	"github.com/entigolabs/azure-fluent/fluent"
	"github.com/entigolabs/azure-fluent/resources"
	"github.com/samber/lo"
)

const APIVersion = "2022-07-01"

var (
	networkSchema = arm.Schema[armnetwork.VirtualNetwork]{
		Namespace:  "Microsoft.Network",
		Types:      []string{"virtualNetworks"},
		APIVersion: APIVersion,
		ID:         func(n *armnetwork.VirtualNetwork) *string { return n.ID },
	}
	interfaceSchema = arm.Schema[armnetwork.Interface]{
		Namespace:  "Microsoft.Network",
		Types:      []string{"networkInterfaces"},
		APIVersion: APIVersion,
		ID:         func(n *armnetwork.Interface) *string { return n.ID },
	}
)

type Manager struct {
	client         *arm.Client
	resources      *resources.Manager
	networksOnce   sync.Once
	networks       *Networks
	interfacesOnce sync.Once
	interfaces     *NetworkInterfaces
}

func Authenticate(credential azcore.TokenCredential, subscriptionID string, options *azarm.ClientOptions) (*Manager, error) {
	client, err := arm.NewClient(subscriptionID, credential, options)
	if err != nil {
		return nil, err
	}
	return NewManager(client), nil
}

func NewManager(client *arm.Client) *Manager {
	return &Manager{client: client, resources: resources.NewManager(client)}
}

func (m *Manager) Networks() *Networks {
	m.networksOnce.Do(func() {
		n := &Networks{manager: m}
		n.Collection = fluent.NewCollection(arm.NewResources(m.client, networkSchema), n.WrapModel)
		m.networks = n
	})
	return m.networks
}

func (m *Manager) NetworkInterfaces() *NetworkInterfaces {
	m.interfacesOnce.Do(func() {
		n := &NetworkInterfaces{manager: m}
		n.Collection = fluent.NewCollection(arm.NewResources(m.client, interfaceSchema), n.WrapModel)
		m.interfaces = n
	})
	return m.interfaces
}

type Networks struct {
	*fluent.Collection[armnetwork.VirtualNetwork, *Network]
	manager *Manager
}

func (n *Networks) Define(name string) *Network {
	network := n.newNetwork(&armnetwork.VirtualNetwork{Name: to.Ptr(name)})
	return network
}

func (n *Networks) WrapModel(inner *armnetwork.VirtualNetwork) *Network {
	network := n.newNetwork(inner)
	network.Load(inner.ID, inner.Name, inner.Location, inner.Tags)
	return network
}

func (n *Networks) newNetwork(inner *armnetwork.VirtualNetwork) *Network {
	network := &Network{networks: n, inner: inner, subnets: map[string]string{}}
	network.Groupable = fluent.NewGroupable(network, n.manager.resources.ResourceGroups(), lo.FromPtr(inner.Name))
	return network
}

// Network is the fluent wrapper of armnetwork.VirtualNetwork.
type Network struct {
	*fluent.Groupable[*Network]
	networks      *Networks
	inner         *armnetwork.VirtualNetwork
	addressSpaces []string
	subnets       map[string]string
}

func (n *Network) Inner() *armnetwork.VirtualNetwork {
	return n.inner
}

func (n *Network) ID() string {
	return lo.FromPtr(n.inner.ID)
}

func (n *Network) IsInCreateMode() bool {
	return n.inner.ID == nil
}

func (n *Network) AddressSpaces() []string {
	if n.inner.Properties == nil || n.inner.Properties.AddressSpace == nil {
		return nil
	}
	return arm.Strings(n.inner.Properties.AddressSpace.AddressPrefixes)
}

// Subnets returns subnet address prefixes keyed by subnet name.
func (n *Network) Subnets() map[string]string {
	result := map[string]string{}
	if n.inner.Properties == nil {
		return result
	}
	for _, subnet := range n.inner.Properties.Subnets {
		if subnet == nil || subnet.Name == nil {
			continue
		}
		prefix := ""
		if subnet.Properties != nil {
			prefix = lo.FromPtr(subnet.Properties.AddressPrefix)
		}
		result[*subnet.Name] = prefix
	}
	return result
}

func (n *Network) SubnetID(name string) string {
	if n.inner.ID == nil {
		return ""
	}
	return *n.inner.ID + "/subnets/" + name
}

func (n *Network) WithAddressSpace(cidr string) *Network {
	n.addressSpaces = append(n.addressSpaces, cidr)
	return n
}

func (n *Network) WithSubnet(name, cidr string) *Network {
	n.subnets[name] = cidr
	return n
}

func (n *Network) Create(ctx context.Context) (*Network, error) {
	if err := n.Validate(); err != nil {
		return nil, err
	}
	tasks := fluent.NewTaskGroup()
	groupKey := n.PrepareResourceGroup(tasks)
	tasks.Add("network/"+n.Name(), n.submit, groupKey)
	if err := tasks.Run(ctx); err != nil {
		return nil, err
	}
	n.CreatedResourceGroup()
	log.Printf("Created virtual network %s\n", n.Name())
	return n, nil
}

func (n *Network) Update() *Network {
	return n
}

func (n *Network) Apply(ctx context.Context) (*Network, error) {
	if err := n.submit(ctx); err != nil {
		return nil, err
	}
	return n, nil
}

func (n *Network) Refresh(ctx context.Context) (*Network, error) {
	inner, err := n.networks.Resources().Get(ctx, n.ResourceGroupName(), n.Name())
	if err != nil {
		return nil, err
	}
	n.inner = inner
	n.Load(inner.ID, inner.Name, inner.Location, inner.Tags)
	return n, nil
}

func (n *Network) submit(ctx context.Context) error {
	properties := n.inner.Properties
	if properties == nil {
		properties = &armnetwork.VirtualNetworkPropertiesFormat{}
	}
	if len(n.addressSpaces) > 0 {
		existing := n.AddressSpaces()
		properties.AddressSpace = &armnetwork.AddressSpace{
			AddressPrefixes: to.SliceOfPtrs(lo.Uniq(append(existing, n.addressSpaces...))...),
		}
	}
	names := lo.Keys(n.subnets)
	sort.Strings(names)
	for _, name := range names {
		cidr := n.subnets[name]
		subnet, found := lo.Find(properties.Subnets, func(s *armnetwork.Subnet) bool {
			return s != nil && lo.FromPtr(s.Name) == name
		})
		if found {
			subnet.Properties = &armnetwork.SubnetPropertiesFormat{AddressPrefix: to.Ptr(cidr)}
			continue
		}
		properties.Subnets = append(properties.Subnets, &armnetwork.Subnet{
			Name:       to.Ptr(name),
			Properties: &armnetwork.SubnetPropertiesFormat{AddressPrefix: to.Ptr(cidr)},
		})
	}
	body := armnetwork.VirtualNetwork{
		Location:   to.Ptr(n.RegionName()),
		Tags:       n.TagPointers(),
		Properties: properties,
	}
	inner, err := n.networks.Resources().CreateOrUpdate(ctx, body, n.ResourceGroupName(), n.Name())
	if err != nil {
		return fmt.Errorf("failed to create virtual network %s: %w", n.Name(), err)
	}
	n.inner = inner
	n.addressSpaces = nil
	n.subnets = map[string]string{}
	return nil
}

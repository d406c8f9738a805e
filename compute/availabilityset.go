package compute

import (
	"context"
	"fmt"
	"log"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/compute/armcompute/v2"
	"github.com/entigolabs/azure-fluent/fluent"
	"github.com/samber/lo"
)

type AvailabilitySetSkuType string

const (
	AvailabilitySetSkuAligned AvailabilitySetSkuType = "Aligned"
	AvailabilitySetSkuClassic AvailabilitySetSkuType = "Classic"

	defaultFaultDomainCount  = 2
	defaultUpdateDomainCount = 5
)

type AvailabilitySets struct {
	*fluent.Collection[armcompute.AvailabilitySet, *AvailabilitySet]
	manager *Manager
}

func (a *AvailabilitySets) Define(name string) *AvailabilitySet {
	return a.newSet(&armcompute.AvailabilitySet{Name: to.Ptr(name)})
}

func (a *AvailabilitySets) WrapModel(inner *armcompute.AvailabilitySet) *AvailabilitySet {
	set := a.newSet(inner)
	set.Load(inner.ID, inner.Name, inner.Location, inner.Tags)
	return set
}

func (a *AvailabilitySets) newSet(inner *armcompute.AvailabilitySet) *AvailabilitySet {
	set := &AvailabilitySet{sets: a, inner: inner}
	set.Groupable = fluent.NewGroupable(set, a.manager.resources.ResourceGroups(), lo.FromPtr(inner.Name))
	return set
}

// AvailabilitySet is the fluent wrapper of armcompute.AvailabilitySet.
type AvailabilitySet struct {
	*fluent.Groupable[*AvailabilitySet]
	sets         *AvailabilitySets
	inner        *armcompute.AvailabilitySet
	faultDomains *int32
	updateDomain *int32
	sku          *AvailabilitySetSkuType
}

func (a *AvailabilitySet) Inner() *armcompute.AvailabilitySet {
	return a.inner
}

func (a *AvailabilitySet) ID() string {
	return lo.FromPtr(a.inner.ID)
}

func (a *AvailabilitySet) IsInCreateMode() bool {
	return a.inner.ID == nil
}

func (a *AvailabilitySet) properties() *armcompute.AvailabilitySetProperties {
	if a.inner.Properties == nil {
		return &armcompute.AvailabilitySetProperties{}
	}
	return a.inner.Properties
}

func (a *AvailabilitySet) FaultDomainCount() int32 {
	return lo.FromPtr(a.properties().PlatformFaultDomainCount)
}

func (a *AvailabilitySet) UpdateDomainCount() int32 {
	return lo.FromPtr(a.properties().PlatformUpdateDomainCount)
}

func (a *AvailabilitySet) Sku() AvailabilitySetSkuType {
	if a.inner.SKU == nil {
		return ""
	}
	return AvailabilitySetSkuType(lo.FromPtr(a.inner.SKU.Name))
}

// VirtualMachineIDs returns the ids of the virtual machines placed in the set.
func (a *AvailabilitySet) VirtualMachineIDs() []string {
	return lo.FilterMap(a.properties().VirtualMachines, func(vm *armcompute.SubResource, _ int) (string, bool) {
		if vm == nil || vm.ID == nil {
			return "", false
		}
		return *vm.ID, true
	})
}

func (a *AvailabilitySet) WithFaultDomainCount(count int32) *AvailabilitySet {
	a.faultDomains = to.Ptr(count)
	return a
}

func (a *AvailabilitySet) WithUpdateDomainCount(count int32) *AvailabilitySet {
	a.updateDomain = to.Ptr(count)
	return a
}

func (a *AvailabilitySet) WithSku(sku AvailabilitySetSkuType) *AvailabilitySet {
	a.sku = to.Ptr(sku)
	return a
}

func (a *AvailabilitySet) Create(ctx context.Context) (*AvailabilitySet, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}
	tasks := fluent.NewTaskGroup()
	tasks.Add("availabilityset/"+a.Name(), a.Submit, a.Prepare(tasks))
	if err := tasks.Run(ctx); err != nil {
		return nil, err
	}
	a.CreatedResourceGroup()
	log.Printf("Created availability set %s\n", a.Name())
	return a, nil
}

func (a *AvailabilitySet) Update() *AvailabilitySet {
	return a
}

func (a *AvailabilitySet) Apply(ctx context.Context) (*AvailabilitySet, error) {
	if err := a.Submit(ctx); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *AvailabilitySet) Refresh(ctx context.Context) (*AvailabilitySet, error) {
	inner, err := a.sets.Resources().Get(ctx, a.ResourceGroupName(), a.Name())
	if err != nil {
		return nil, err
	}
	a.inner = inner
	a.Load(inner.ID, inner.Name, inner.Location, inner.Tags)
	return a, nil
}

func (a *AvailabilitySet) Delete(ctx context.Context) error {
	return a.sets.DeleteByResourceGroup(ctx, a.ResourceGroupName(), a.Name())
}

// Prepare registers the resource group creatable, if any, and returns its task key.
func (a *AvailabilitySet) Prepare(tasks *fluent.TaskGroup) string {
	return a.PrepareResourceGroup(tasks)
}

// Submit issues the PUT for the set. New sets default to an aligned sku with 2 fault and 5 update domains.
func (a *AvailabilitySet) Submit(ctx context.Context) error {
	properties := &armcompute.AvailabilitySetProperties{
		PlatformFaultDomainCount:  a.properties().PlatformFaultDomainCount,
		PlatformUpdateDomainCount: a.properties().PlatformUpdateDomainCount,
	}
	sku := a.Sku()
	if a.IsInCreateMode() {
		properties.PlatformFaultDomainCount = to.Ptr[int32](defaultFaultDomainCount)
		properties.PlatformUpdateDomainCount = to.Ptr[int32](defaultUpdateDomainCount)
		sku = AvailabilitySetSkuAligned
	}
	if a.faultDomains != nil {
		properties.PlatformFaultDomainCount = a.faultDomains
	}
	if a.updateDomain != nil {
		properties.PlatformUpdateDomainCount = a.updateDomain
	}
	if a.sku != nil {
		sku = *a.sku
	}
	body := armcompute.AvailabilitySet{
		Location:   to.Ptr(a.RegionName()),
		Tags:       a.TagPointers(),
		Properties: properties,
	}
	if sku != "" {
		body.SKU = &armcompute.SKU{Name: to.Ptr(string(sku))}
	}
	inner, err := a.sets.Resources().CreateOrUpdate(ctx, body, a.ResourceGroupName(), a.Name())
	if err != nil {
		return fmt.Errorf("failed to create availability set %s: %w", a.Name(), err)
	}
	a.inner = inner
	a.faultDomains = nil
	a.updateDomain = nil
	a.sku = nil
	return nil
}

package service

import (
	"context"
	"fmt"

	"github.com/entigolabs/azure-fluent/azure"
	"github.com/entigolabs/azure-fluent/common"
	"github.com/entigolabs/azure-fluent/fluent"
)

type Resource struct {
	Name          string
	ResourceGroup string
	Region        string
	ID            string
}

type groupable interface {
	ID() string
	Name() string
	RegionName() string
	ResourceGroupName() string
}

// List returns resources of the kind in the resource group, or in the whole subscription when
// resourceGroup is empty.
func List(ctx context.Context, client *azure.Azure, kind common.ResourceKind, resourceGroup string) ([]Resource, error) {
	switch kind {
	case common.WebAppKind:
		return list(ctx, client.WebApps().Collection, resourceGroup)
	case common.FunctionAppKind:
		return list(ctx, client.FunctionApps().Collection, resourceGroup)
	case common.PlanKind:
		return list(ctx, client.AppServicePlans().Collection, resourceGroup)
	case common.VirtualMachineKind:
		return list(ctx, client.VirtualMachines().Collection, resourceGroup)
	case common.ScaleSetKind:
		return list(ctx, client.VirtualMachineScaleSets().Collection, resourceGroup)
	case common.DiskKind:
		return list(ctx, client.Disks().Collection, resourceGroup)
	case common.AvailabilitySetKind:
		return list(ctx, client.AvailabilitySets().Collection, resourceGroup)
	case common.StorageAccountKind:
		return list(ctx, client.StorageAccounts().Collection, resourceGroup)
	case common.ResourceGroupKind:
		groups, err := client.ResourceGroups().List(ctx)
		if err != nil {
			return nil, err
		}
		resources := make([]Resource, 0, len(groups))
		for _, group := range groups {
			resources = append(resources, Resource{Name: group.Name(), Region: group.RegionName(), ID: group.ID()})
		}
		return resources, nil
	default:
		return nil, fmt.Errorf("unsupported resource kind %s", kind)
	}
}

func list[T any, W groupable](ctx context.Context, collection *fluent.Collection[T, W], resourceGroup string) ([]Resource, error) {
	var wrappers []W
	var err error
	if resourceGroup == "" {
		wrappers, err = collection.List(ctx)
	} else {
		wrappers, err = collection.ListByResourceGroup(ctx, resourceGroup)
	}
	if err != nil {
		return nil, err
	}
	resources := make([]Resource, 0, len(wrappers))
	for _, wrapper := range wrappers {
		resources = append(resources, Resource{
			Name:          wrapper.Name(),
			ResourceGroup: wrapper.ResourceGroupName(),
			Region:        wrapper.RegionName(),
			ID:            wrapper.ID(),
		})
	}
	return resources, nil
}

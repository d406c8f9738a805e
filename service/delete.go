package service

import (
	"context"
	"fmt"
	"log"

	"github.com/entigolabs/azure-fluent/azure"
	"github.com/entigolabs/azure-fluent/common"
)

type deleter interface {
	DeleteByResourceGroup(ctx context.Context, resourceGroup, name string) error
}

func Delete(ctx context.Context, client *azure.Azure, kind common.ResourceKind, resourceGroup, name string) error {
	if kind == common.ResourceGroupKind {
		return client.ResourceGroups().DeleteByName(ctx, name)
	}
	var collection deleter
	switch kind {
	case common.WebAppKind:
		collection = client.WebApps()
	case common.FunctionAppKind:
		collection = client.FunctionApps()
	case common.PlanKind:
		collection = client.AppServicePlans()
	case common.VirtualMachineKind:
		collection = client.VirtualMachines()
	case common.ScaleSetKind:
		collection = client.VirtualMachineScaleSets()
	case common.DiskKind:
		collection = client.Disks()
	case common.AvailabilitySetKind:
		collection = client.AvailabilitySets()
	case common.StorageAccountKind:
		collection = client.StorageAccounts()
	default:
		return fmt.Errorf("unsupported resource kind %s", kind)
	}
	if err := collection.DeleteByResourceGroup(ctx, resourceGroup, name); err != nil {
		return fmt.Errorf("failed to delete %s %s: %w", kind, name, err)
	}
	log.Printf("Deleted %s %s from resource group %s\n", kind, name, resourceGroup)
	return nil
}

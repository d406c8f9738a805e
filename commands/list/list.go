package list

import (
	"context"
	"fmt"
	"log"

	"github.com/entigolabs/azure-fluent/common"
	"github.com/entigolabs/azure-fluent/service"
)

func List(ctx context.Context, flags *common.Flags) error {
	client, err := service.NewAzure(flags, nil)
	if err != nil {
		return err
	}
	resourceGroup := flags.Azure.ResourceGroup
	if flags.All {
		resourceGroup = ""
	}
	resources, err := service.List(ctx, client, common.ResourceKind(flags.Kind), resourceGroup)
	if err != nil {
		return err
	}
	if len(resources) == 0 {
		log.Println(common.PrefixWarning(fmt.Sprintf("no %s found", flags.Kind)))
		return nil
	}
	for _, resource := range resources {
		log.Printf("%-40s %-30s %-16s %s\n", resource.Name, resource.ResourceGroup, resource.Region, resource.ID)
	}
	return nil
}

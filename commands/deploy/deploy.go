package deploy

import (
	"context"

	"github.com/entigolabs/azure-fluent/common"
	"github.com/entigolabs/azure-fluent/service"
)

func Deploy(ctx context.Context, flags *common.Flags) error {
	client, err := service.NewAzure(flags, nil)
	if err != nil {
		return err
	}
	return service.Deploy(ctx, client, flags.Azure.ResourceGroup, flags.App, flags.War, flags.Zip)
}

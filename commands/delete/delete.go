package delete

import (
	"context"

	"github.com/entigolabs/azure-fluent/common"
	"github.com/entigolabs/azure-fluent/service"
)

func Delete(ctx context.Context, flags *common.Flags) error {
	client, err := service.NewAzure(flags, nil)
	if err != nil {
		return err
	}
	return service.Delete(ctx, client, common.ResourceKind(flags.Kind), flags.Azure.ResourceGroup, flags.Name)
}

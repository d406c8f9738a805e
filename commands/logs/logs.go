package logs

import (
	"context"
	"os"

	"github.com/entigolabs/azure-fluent/common"
	"github.com/entigolabs/azure-fluent/service"
)

func Logs(ctx context.Context, flags *common.Flags) error {
	client, err := service.NewAzure(flags, nil)
	if err != nil {
		return err
	}
	return service.StreamLogs(ctx, client, flags.Azure.ResourceGroup, flags.App, os.Stdout)
}

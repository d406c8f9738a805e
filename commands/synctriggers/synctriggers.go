package synctriggers

import (
	"context"
	"log"

	"github.com/entigolabs/azure-fluent/common"
	"github.com/entigolabs/azure-fluent/service"
)

func SyncTriggers(ctx context.Context, flags *common.Flags) error {
	client, err := service.NewAzure(flags, nil)
	if err != nil {
		return err
	}
	if err = service.SyncTriggers(ctx, client, flags.Azure.ResourceGroup, flags.App); err != nil {
		return err
	}
	log.Printf("Synced triggers of %s\n", flags.App)
	return nil
}

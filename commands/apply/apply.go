package apply

import (
	"context"
	"log"

	"github.com/entigolabs/azure-fluent/common"
	"github.com/entigolabs/azure-fluent/service"
)

func Apply(ctx context.Context, flags *common.Flags) error {
	config, err := service.GetConfig(flags.Config, flags.Azure)
	if err != nil {
		return err
	}
	client, err := service.NewAzure(flags, nil)
	if err != nil {
		return err
	}
	if err = service.NewApplier(client, config).Apply(ctx); err != nil {
		return err
	}
	log.Printf("Applied config %s\n", flags.Config)
	return nil
}

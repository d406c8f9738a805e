package cli

import (
	"context"
	"errors"

	"github.com/entigolabs/azure-fluent/commands/apply"
	"github.com/entigolabs/azure-fluent/commands/delete"
	"github.com/entigolabs/azure-fluent/commands/deploy"
	"github.com/entigolabs/azure-fluent/commands/list"
	"github.com/entigolabs/azure-fluent/commands/logs"
	"github.com/entigolabs/azure-fluent/commands/synctriggers"
	"github.com/entigolabs/azure-fluent/common"
	"github.com/urfave/cli/v3"
)

func action(cmd common.Command) cli.ActionFunc {
	return func(ctx context.Context, c *cli.Command) error {
		if cmd == common.ListCommand {
			flags.Kind = c.Args().First()
		}
		if err := flags.Setup(cmd); err != nil {
			return err
		}
		if cmd != common.VersionCommand {
			if err := common.ChooseLogger(flags.LoggingLevel); err != nil {
				return err
			}
		}
		return run(ctx, cmd)
	}
}

func run(ctx context.Context, cmd common.Command) error {
	switch cmd {
	case common.ListCommand:
		return list.List(ctx, flags)
	case common.ApplyCommand:
		return apply.Apply(ctx, flags)
	case common.DeployCommand:
		return deploy.Deploy(ctx, flags)
	case common.LogsCommand:
		return logs.Logs(ctx, flags)
	case common.SyncTriggersCommand:
		return synctriggers.SyncTriggers(ctx, flags)
	case common.DeleteCommand:
		return delete.Delete(ctx, flags)
	case common.VersionCommand:
		common.PrintVersion()
		return nil
	default:
		return errors.New("unsupported command")
	}
}

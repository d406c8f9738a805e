package cli

import (
	"github.com/entigolabs/azure-fluent/common"
	"github.com/urfave/cli/v3"
)

func cliFlags(cmd common.Command) []cli.Flag {
	var flags []cli.Flag
	flags = appendBaseFlags(flags)
	flags = appendCmdSpecificFlags(flags, cmd)
	return flags
}

func appendBaseFlags(flags []cli.Flag) []cli.Flag {
	return append(flags,
		loggingFlag(),
		subscriptionFlag(),
		resourceGroupFlag(),
	)
}

func appendCmdSpecificFlags(baseFlags []cli.Flag, cmd common.Command) []cli.Flag {
	switch cmd {
	case common.ListCommand:
		baseFlags = append(baseFlags, allFlag())
	case common.ApplyCommand:
		baseFlags = append(baseFlags, configFlag(), locationFlag())
	case common.DeployCommand:
		baseFlags = append(baseFlags, appFlag(), warFlag(), zipFlag())
	case common.LogsCommand, common.SyncTriggersCommand:
		baseFlags = append(baseFlags, appFlag())
	case common.DeleteCommand:
		baseFlags = append(baseFlags, kindFlag(), nameFlag())
	}
	return baseFlags
}

func loggingFlag() cli.Flag {
	return &cli.StringFlag{
		Name:        "logging",
		Aliases:     []string{"l"},
		Sources:     cli.EnvVars(common.LoggingEnv),
		Value:       string(common.ProdLogLevel),
		Usage:       "set `logging level` (prod | dev | debug | warn | error)",
		Destination: &flags.LoggingLevel,
	}
}

func subscriptionFlag() cli.Flag {
	return &cli.StringFlag{
		Name:        "subscription-id",
		Aliases:     []string{"s"},
		Sources:     cli.EnvVars(common.SubscriptionIdEnv),
		Usage:       "azure subscription id",
		Destination: &flags.Azure.SubscriptionId,
	}
}

func resourceGroupFlag() cli.Flag {
	return &cli.StringFlag{
		Name:        "resource-group",
		Aliases:     []string{"g"},
		Sources:     cli.EnvVars(common.ResourceGroupEnv),
		Usage:       "azure resource group",
		Destination: &flags.Azure.ResourceGroup,
	}
}

func locationFlag() cli.Flag {
	return &cli.StringFlag{
		Name:        "location",
		Sources:     cli.EnvVars(common.LocationEnv),
		Usage:       "default location of resources without one",
		Destination: &flags.Azure.Location,
	}
}

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:        "config",
		Aliases:     []string{"c"},
		Sources:     cli.EnvVars(common.ConfigEnv),
		Usage:       "set config file",
		Destination: &flags.Config,
		Required:    true,
	}
}

func allFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:        "all",
		Aliases:     []string{"a"},
		Usage:       "list resources of the whole subscription",
		Destination: &flags.All,
	}
}

func appFlag() cli.Flag {
	return &cli.StringFlag{
		Name:        "app",
		Usage:       "web or function app name",
		Destination: &flags.App,
		Required:    true,
	}
}

func warFlag() cli.Flag {
	return &cli.StringFlag{
		Name:        "war",
		Usage:       "war file to deploy",
		Destination: &flags.War,
	}
}

func zipFlag() cli.Flag {
	return &cli.StringFlag{
		Name:        "zip",
		Usage:       "zip file to deploy",
		Destination: &flags.Zip,
	}
}

func kindFlag() cli.Flag {
	return &cli.StringFlag{
		Name:        "kind",
		Aliases:     []string{"k"},
		Usage:       "resource kind",
		Destination: &flags.Kind,
		Required:    true,
	}
}

func nameFlag() cli.Flag {
	return &cli.StringFlag{
		Name:        "name",
		Aliases:     []string{"n"},
		Usage:       "resource name",
		Destination: &flags.Name,
		Required:    true,
	}
}

package cli

import (
	"strings"

	"github.com/entigolabs/azure-fluent/common"
	"github.com/samber/lo"
	"github.com/urfave/cli/v3"
)

func cliCommands() []*cli.Command {
	return []*cli.Command{
		listCommand(),
		applyCommand(),
		deployCommand(),
		logsCommand(),
		syncTriggersCommand(),
		deleteCommand(),
		versionCommand(),
	}
}

func listCommand() *cli.Command {
	kinds := lo.Map(common.ResourceKinds, func(kind common.ResourceKind, _ int) string { return string(kind) })
	return &cli.Command{
		Name:      string(common.ListCommand),
		Aliases:   []string{"ls"},
		Usage:     "list resources of a kind",
		ArgsUsage: strings.Join(kinds, "|"),
		Action:    action(common.ListCommand),
		Flags:     cliFlags(common.ListCommand),
	}
}

func applyCommand() *cli.Command {
	return &cli.Command{
		Name:   string(common.ApplyCommand),
		Usage:  "create or update resources declared in a config file",
		Action: action(common.ApplyCommand),
		Flags:  cliFlags(common.ApplyCommand),
	}
}

func deployCommand() *cli.Command {
	return &cli.Command{
		Name:   string(common.DeployCommand),
		Usage:  "deploy a war or zip package to a web or function app",
		Action: action(common.DeployCommand),
		Flags:  cliFlags(common.DeployCommand),
	}
}

func logsCommand() *cli.Command {
	return &cli.Command{
		Name:   string(common.LogsCommand),
		Usage:  "stream application logs of a web or function app",
		Action: action(common.LogsCommand),
		Flags:  cliFlags(common.LogsCommand),
	}
}

func syncTriggersCommand() *cli.Command {
	return &cli.Command{
		Name:   string(common.SyncTriggersCommand),
		Usage:  "sync triggers of a function app",
		Action: action(common.SyncTriggersCommand),
		Flags:  cliFlags(common.SyncTriggersCommand),
	}
}

func deleteCommand() *cli.Command {
	return &cli.Command{
		Name:    string(common.DeleteCommand),
		Aliases: []string{"del"},
		Usage:   "delete a resource",
		Action:  action(common.DeleteCommand),
		Flags:   cliFlags(common.DeleteCommand),
	}
}

func versionCommand() *cli.Command {
	return &cli.Command{
		Name:   string(common.VersionCommand),
		Usage:  "print version information",
		Action: action(common.VersionCommand),
	}
}

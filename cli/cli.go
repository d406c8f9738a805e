package cli

import (
	"context"
	"log"
	"os"

	"github.com/entigolabs/azure-fluent/common"
	"github.com/urfave/cli/v3"
)

var flags = new(common.Flags)

func Run(ctx context.Context) {
	app := newApp()
	err := app.Run(ctx, os.Args)
	if err != nil {
		log.Fatal(&common.PrefixedError{Reason: err})
	}
}

func newApp() *cli.Command {
	const name = "armctl"
	return &cli.Command{
		Name:     name,
		Usage:    "manage app service, compute and storage resources through azure resource manager",
		Version:  common.GetVersion().String(),
		Commands: cliCommands(),
	}
}

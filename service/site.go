package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/entigolabs/azure-fluent/appservice"
	"github.com/entigolabs/azure-fluent/azure"
	"github.com/entigolabs/azure-fluent/model"
)

const rootApp = "ROOT"

type site interface {
	Name() string
	WarDeploy(ctx context.Context, war io.Reader, appName string) error
	ZipDeploy(ctx context.Context, zip io.Reader) error
	StreamApplicationLogs(ctx context.Context) (io.ReadCloser, error)
}

// getSite resolves a site of either kind, function apps are wrapped by the function app collection.
func getSite(ctx context.Context, client *azure.Azure, resourceGroup, name string) (site, error) {
	app, err := client.WebApps().GetByResourceGroup(ctx, resourceGroup, name)
	if err != nil {
		return nil, err
	}
	if appservice.IsFunctionApp(app.Inner()) {
		return client.FunctionApps().WrapModel(app.Inner()), nil
	}
	return app, nil
}

// Deploy uploads a war or zip package through the Kudu endpoint of the site.
func Deploy(ctx context.Context, client *azure.Azure, resourceGroup, name, warFile, zipFile string) error {
	app, err := getSite(ctx, client, resourceGroup, name)
	if err != nil {
		return err
	}
	file := warFile
	if file == "" {
		file = zipFile
	}
	pkg, err := os.Open(file)
	if err != nil {
		return err
	}
	defer pkg.Close()
	if warFile != "" {
		appName := strings.TrimSuffix(filepath.Base(file), ".war")
		if strings.EqualFold(appName, rootApp) {
			appName = rootApp
		}
		err = app.WarDeploy(ctx, pkg, appName)
	} else {
		err = app.ZipDeploy(ctx, pkg)
	}
	if err != nil {
		return fmt.Errorf("failed to deploy %s to %s: %w", file, name, err)
	}
	log.Printf("Deployed %s to %s\n", file, name)
	return nil
}

// StreamLogs copies application logs of the site to out until the context is cancelled.
func StreamLogs(ctx context.Context, client *azure.Azure, resourceGroup, name string, out io.Writer) error {
	app, err := getSite(ctx, client, resourceGroup, name)
	if err != nil {
		return err
	}
	logs, err := app.StreamApplicationLogs(ctx)
	if err != nil {
		return err
	}
	defer logs.Close()
	_, err = io.Copy(out, logs)
	if err != nil && !errors.Is(err, context.Canceled) && ctx.Err() == nil {
		return err
	}
	return nil
}

func SyncTriggers(ctx context.Context, client *azure.Azure, resourceGroup, name string) error {
	app, err := client.FunctionApps().GetByResourceGroup(ctx, resourceGroup, name)
	if err != nil {
		return err
	}
	if !appservice.IsFunctionApp(app.Inner()) {
		return model.NewNotFoundError("function app " + name)
	}
	return app.SyncTriggers(ctx)
}

package appservice

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/appservice/armappservice/v2"
	"github.com/entigolabs/azure-fluent/arm"
	"github.com/entigolabs/azure-fluent/fluent"
	"github.com/entigolabs/azure-fluent/storage"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

const (
	webJobsStorageSetting      = "AzureWebJobsStorage"
	webJobsDashboardSetting    = "AzureWebJobsDashboard"
	contentConnectionSetting   = "WEBSITE_CONTENTAZUREFILECONNECTIONSTRING"
	contentShareSetting        = "WEBSITE_CONTENTSHARE"
	extensionVersionSetting    = "FUNCTIONS_EXTENSION_VERSION"
	workerRuntimeSetting       = "FUNCTIONS_WORKER_RUNTIME"
	defaultRuntimeVersion      = "~4"
	latestRuntimeVersion       = "latest"
	dashboardRuntimeVersion    = "~1"
	maxStorageNamePrefixLength = 16
)

var nonAlphanumeric = regexp.MustCompile("[^a-z0-9]")

type FunctionApps struct {
	*fluent.Collection[armappservice.Site, *FunctionApp]
	manager *Manager
}

// Define starts a function app definition on a new consumption plan with a new storage account.
func (f *FunctionApps) Define(name string) *FunctionApp {
	app := f.newFunctionApp(&armappservice.Site{Name: to.Ptr(name)})
	return app.WithNewConsumptionPlan()
}

func (f *FunctionApps) WrapModel(inner *armappservice.Site) *FunctionApp {
	return f.newFunctionApp(inner)
}

func (f *FunctionApps) newFunctionApp(inner *armappservice.Site) *FunctionApp {
	app := &FunctionApp{}
	sites, _ := f.manager.siteResources()
	app.siteBase = newSiteBase(app, f.manager, sites, inner, slotName(lo.FromPtr(inner.Name)))
	app.kind = kindFunctionApp
	app.hooks = siteHooks{prepare: app.prepareStorage, beforeSubmit: app.storageSettings}
	return app
}

// FunctionApp is the fluent wrapper of a Microsoft.Web/sites resource of kind functionapp.
type FunctionApp struct {
	*siteBase[*FunctionApp]
	storageAccount *storage.StorageAccount
	storageChanged bool
}

func generatedStorageName(siteName string) string {
	name := nonAlphanumeric.ReplaceAllString(strings.ToLower(siteName), "")
	if len(name) > maxStorageNamePrefixLength {
		name = name[:maxStorageNamePrefixLength]
	}
	return name + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

func (a *FunctionApp) WithNewConsumptionPlan() *FunctionApp {
	return a.WithNewAppServicePlan(a.definePlan(ConsumptionY1, OperatingSystemWindows))
}

func (a *FunctionApp) WithNewElasticPremiumPlan(tier PricingTier) *FunctionApp {
	return a.WithNewAppServicePlan(a.definePlan(tier, OperatingSystemWindows))
}

// WithNewStorageAccount creates a StorageV2 account in the app's region and resource group.
func (a *FunctionApp) WithNewStorageAccount(name string) *FunctionApp {
	return a.WithNewStorageAccountDefinition(a.manager.storage.StorageAccounts().Define(name).
		WithGeneralPurposeAccountKindV2())
}

func (a *FunctionApp) WithNewStorageAccountDefinition(account *storage.StorageAccount) *FunctionApp {
	a.storageAccount = account
	a.storageChanged = true
	return a
}

func (a *FunctionApp) WithExistingStorageAccount(account *storage.StorageAccount) *FunctionApp {
	a.storageAccount = account
	a.storageChanged = true
	return a
}

func (a *FunctionApp) StorageAccount() *storage.StorageAccount {
	return a.storageAccount
}

// WithRuntime sets the language worker, e.g. "dotnet", "node", "java" or "python".
func (a *FunctionApp) WithRuntime(runtime string) *FunctionApp {
	return a.WithAppSetting(workerRuntimeSetting, runtime)
}

func (a *FunctionApp) WithRuntimeVersion(version string) *FunctionApp {
	if !strings.HasPrefix(version, "~") && version != latestRuntimeVersion {
		version = "~" + version
	}
	return a.WithAppSetting(extensionVersionSetting, version)
}

func (a *FunctionApp) WithLatestRuntimeVersion() *FunctionApp {
	return a.WithAppSetting(extensionVersionSetting, latestRuntimeVersion)
}

func (a *FunctionApp) runtimeVersion() string {
	if version, found := a.settingsToAdd[extensionVersionSetting]; found {
		return version
	}
	return defaultRuntimeVersion
}

func (a *FunctionApp) prepareStorage(tasks *fluent.TaskGroup, groupKey string) []string {
	if a.storageAccount == nil && a.IsInCreateMode() {
		a.WithNewStorageAccount(generatedStorageName(a.Name()))
	}
	account := a.storageAccount
	if account == nil || !account.IsInCreateMode() {
		return nil
	}
	if account.RegionName() == "" {
		account.WithRegion(a.RegionName())
	}
	if account.ResourceGroupName() == "" {
		account.WithExistingResourceGroup(a.ResourceGroupName())
	}
	key := "storageaccount/" + account.Name()
	tasks.Add(key, account.Submit, groupKey, account.Prepare(tasks))
	return []string{key}
}

// storageSettings adds the settings the functions host needs to reach its storage account. A
// definition sends them with the site PUT so the content share exists before the first start.
func (a *FunctionApp) storageSettings(ctx context.Context, body *armappservice.Site) error {
	if !a.storageChanged || a.storageAccount == nil {
		return nil
	}
	connection, err := a.storageAccount.ConnectionString(ctx)
	if err != nil {
		return fmt.Errorf("failed to get connection string of storage account %s: %w", a.storageAccount.Name(), err)
	}
	version := a.runtimeVersion()
	settings := map[string]string{
		webJobsStorageSetting:   connection,
		extensionVersionSetting: version,
	}
	if version == dashboardRuntimeVersion {
		settings[webJobsDashboardSetting] = connection
	}
	tier := a.pricingTier()
	if tier.IsConsumption() || tier.IsElasticPremium() {
		settings[contentConnectionSetting] = connection
		settings[contentShareSetting] = strings.ToLower(a.Name()) + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	}
	if runtime, found := a.settingsToAdd[workerRuntimeSetting]; found {
		settings[workerRuntimeSetting] = runtime
	}
	if !a.IsInCreateMode() {
		for key, value := range settings {
			if key == contentShareSetting {
				continue
			}
			a.settingsToAdd[key] = value
		}
		a.storageChanged = false
		return nil
	}
	if body.Properties.SiteConfig == nil {
		body.Properties.SiteConfig = &armappservice.SiteConfig{}
	}
	for _, key := range sortedKeys(settings) {
		body.Properties.SiteConfig.AppSettings = append(body.Properties.SiteConfig.AppSettings,
			&armappservice.NameValuePair{Name: to.Ptr(key), Value: to.Ptr(settings[key])})
	}
	a.storageChanged = false
	return nil
}

// SyncTriggers refreshes the trigger metadata of the functions host. The endpoint answers 204;
// some hosts answer 200 with an empty body, which is not an error.
func (a *FunctionApp) SyncTriggers(ctx context.Context) error {
	path, err := a.path()
	if err != nil {
		return err
	}
	err = arm.Invoke(ctx, a.resources.Client(), http.MethodPost, path+"/syncfunctiontriggers", APIVersion, nil,
		http.StatusNoContent)
	if arm.StatusCode(err) == http.StatusOK {
		slog.Warn("Sync triggers returned status 200", "functionApp", a.Name())
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to sync triggers of %s: %w", a.Name(), err)
	}
	return nil
}

func (a *FunctionApp) MasterKey(ctx context.Context) (string, error) {
	path, err := a.path()
	if err != nil {
		return "", err
	}
	keys, err := arm.Do[armappservice.HostKeys](ctx, a.resources.Client(), http.MethodPost, path+"/host/default/listkeys",
		APIVersion, nil, http.StatusOK)
	if err != nil {
		return "", fmt.Errorf("failed to list host keys of %s: %w", a.Name(), err)
	}
	return lo.FromPtr(keys.MasterKey), nil
}

func (a *FunctionApp) DeploymentSlots() *DeploymentSlots {
	return newDeploymentSlots(a.manager, a)
}

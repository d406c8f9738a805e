package appservice

import (
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/appservice/armappservice/v2"
	"github.com/entigolabs/azure-fluent/arm"
	"github.com/samber/lo"
)

const (
	registryServerURLSetting      = "DOCKER_REGISTRY_SERVER_URL"
	registryServerUsernameSetting = "DOCKER_REGISTRY_SERVER_USERNAME"
	registryServerPasswordSetting = "DOCKER_REGISTRY_SERVER_PASSWORD"
	appServiceStorageSetting      = "WEBSITES_ENABLE_APP_SERVICE_STORAGE"
)

func (b *siteBase[W]) stagedConfig() *armappservice.SiteConfig {
	if b.config == nil {
		b.config = &armappservice.SiteConfig{}
	}
	return b.config
}

func (b *siteBase[W]) WithNewWindowsPlan(tier PricingTier) W {
	return b.WithNewAppServicePlan(b.definePlan(tier, OperatingSystemWindows))
}

func (b *siteBase[W]) WithNewLinuxPlan(tier PricingTier) W {
	return b.WithNewAppServicePlan(b.definePlan(tier, OperatingSystemLinux))
}

func (b *siteBase[W]) definePlan(tier PricingTier, os OperatingSystem) *AppServicePlan {
	return b.manager.AppServicePlans().Define(generatedPlanName(b.Name())).
		WithPricingTier(tier).
		WithOperatingSystem(os)
}

// WithNewAppServicePlan creates plan together with the site. A plan without region or resource
// group inherits the site's.
func (b *siteBase[W]) WithNewAppServicePlan(plan *AppServicePlan) W {
	b.newPlan = plan
	b.plan = plan
	b.planID = ""
	b.linux = plan.OperatingSystem() == OperatingSystemLinux
	return b.Self()
}

func (b *siteBase[W]) WithExistingAppServicePlan(plan *AppServicePlan) W {
	b.newPlan = nil
	b.plan = plan
	b.planID = plan.ID()
	b.linux = plan.OperatingSystem() == OperatingSystemLinux
	return b.Self()
}

// WithExistingAppServicePlanID uses a plan known only by id. Its tier is unknown, so function app
// content share settings are not added.
func (b *siteBase[W]) WithExistingAppServicePlanID(planID string, os OperatingSystem) W {
	b.newPlan = nil
	b.plan = nil
	b.planID = planID
	b.linux = os == OperatingSystemLinux
	return b.Self()
}

func (b *siteBase[W]) pricingTier() PricingTier {
	if b.plan == nil {
		return PricingTier{}
	}
	return b.plan.PricingTier()
}

func (b *siteBase[W]) WithAppSetting(key, value string) W {
	b.settingsToRemove.Remove(key)
	b.settingsToAdd[key] = value
	return b.Self()
}

func (b *siteBase[W]) WithAppSettings(settings map[string]string) W {
	for key, value := range settings {
		b.WithAppSetting(key, value)
	}
	return b.Self()
}

func (b *siteBase[W]) WithStickyAppSetting(key, value string) W {
	b.WithAppSetting(key, value)
	b.settingStickiness[key] = true
	return b.Self()
}

func (b *siteBase[W]) WithAppSettingStickiness(key string, sticky bool) W {
	b.settingStickiness[key] = sticky
	return b.Self()
}

func (b *siteBase[W]) WithoutAppSetting(key string) W {
	delete(b.settingsToAdd, key)
	b.settingsToRemove.Add(key)
	b.settingStickiness[key] = false
	return b.Self()
}

func (b *siteBase[W]) WithConnectionString(name, value string, connectionType armappservice.ConnectionStringType) W {
	b.connectionsToRemove.Remove(name)
	b.connectionsToAdd[name] = ConnectionString{Name: name, Value: value, Type: connectionType}
	return b.Self()
}

func (b *siteBase[W]) WithStickyConnectionString(name, value string, connectionType armappservice.ConnectionStringType) W {
	b.WithConnectionString(name, value, connectionType)
	b.connectionSticky[name] = true
	return b.Self()
}

func (b *siteBase[W]) WithConnectionStringStickiness(name string, sticky bool) W {
	b.connectionSticky[name] = sticky
	return b.Self()
}

func (b *siteBase[W]) WithoutConnectionString(name string) W {
	delete(b.connectionsToAdd, name)
	b.connectionsToRemove.Add(name)
	b.connectionSticky[name] = false
	return b.Self()
}

func (b *siteBase[W]) WithHostNameBinding(hostName string, recordType armappservice.CustomHostNameDNSRecordType) W {
	b.bindingsToRemove.Remove(hostName)
	b.bindingsToAdd[hostName] = hostNameBinding{recordType: recordType}
	return b.Self()
}

// WithManagedHostNameBindings binds subdomains of domain as CNAME records.
func (b *siteBase[W]) WithManagedHostNameBindings(domain string, subdomains ...string) W {
	for _, subdomain := range subdomains {
		hostName := domain
		if subdomain != "" && subdomain != "@" {
			hostName = subdomain + "." + domain
		}
		b.WithHostNameBinding(hostName, armappservice.CustomHostNameDNSRecordType("CName"))
	}
	return b.Self()
}

func (b *siteBase[W]) WithoutHostNameBinding(hostName string) W {
	delete(b.bindingsToAdd, hostName)
	b.bindingsToRemove.Add(hostName)
	return b.Self()
}

func (b *siteBase[W]) WithPhpVersion(version PhpVersion) W {
	b.stagedConfig().PhpVersion = to.Ptr(string(version))
	return b.Self()
}

func (b *siteBase[W]) WithoutPhp() W {
	return b.WithPhpVersion(PhpVersionOff)
}

func (b *siteBase[W]) WithJavaVersion(version JavaVersion) W {
	b.stagedConfig().JavaVersion = to.Ptr(string(version))
	return b.Self()
}

func (b *siteBase[W]) WithWebContainer(container WebContainer) W {
	name, version := container.split()
	config := b.stagedConfig()
	config.JavaContainer = to.Ptr(name)
	config.JavaContainerVersion = to.Ptr(version)
	return b.Self()
}

func (b *siteBase[W]) WithNetFrameworkVersion(version NetFrameworkVersion) W {
	b.stagedConfig().NetFrameworkVersion = to.Ptr(string(version))
	return b.Self()
}

func (b *siteBase[W]) WithPythonVersion(version PythonVersion) W {
	b.stagedConfig().PythonVersion = to.Ptr(string(version))
	return b.Self()
}

func (b *siteBase[W]) WithBuiltInImage(stack RuntimeStack) W {
	b.stagedConfig().LinuxFxVersion = to.Ptr(stack.String())
	b.linux = true
	b.container = false
	return b.Self()
}

func (b *siteBase[W]) WithPublicDockerHubImage(image string) W {
	b.stagedConfig().LinuxFxVersion = to.Ptr(dockerPrefix + image)
	b.linux, b.container = true, true
	b.WithAppSetting(appServiceStorageSetting, "false")
	return b.Self()
}

func (b *siteBase[W]) WithPrivateRegistryImage(image, serverURL, username, password string) W {
	b.stagedConfig().LinuxFxVersion = to.Ptr(dockerPrefix + SmartCompletionPrivateRegistryImage(image, serverURL))
	b.linux, b.container = true, true
	b.WithAppSetting(appServiceStorageSetting, "false")
	b.WithAppSetting(registryServerURLSetting, serverURL)
	b.WithAppSetting(registryServerUsernameSetting, username)
	b.WithAppSetting(registryServerPasswordSetting, password)
	return b.Self()
}

func (b *siteBase[W]) WithStartUpCommand(command string) W {
	b.stagedConfig().AppCommandLine = to.Ptr(command)
	return b.Self()
}

func (b *siteBase[W]) WithAlwaysOn(enabled bool) W {
	b.stagedConfig().AlwaysOn = to.Ptr(enabled)
	return b.Self()
}

func (b *siteBase[W]) WithWebSocketsEnabled(enabled bool) W {
	b.stagedConfig().WebSocketsEnabled = to.Ptr(enabled)
	return b.Self()
}

func (b *siteBase[W]) WithHTTP20Enabled(enabled bool) W {
	b.stagedConfig().HTTP20Enabled = to.Ptr(enabled)
	return b.Self()
}

func (b *siteBase[W]) With32BitWorkerProcess(enabled bool) W {
	b.stagedConfig().Use32BitWorkerProcess = to.Ptr(enabled)
	return b.Self()
}

func (b *siteBase[W]) WithHTTPSOnly(enabled bool) W {
	b.httpsOnly = to.Ptr(enabled)
	return b.Self()
}

func (b *siteBase[W]) WithClientAffinityEnabled(enabled bool) W {
	b.clientAffinity = to.Ptr(enabled)
	return b.Self()
}

func (b *siteBase[W]) WithRemoteDebuggingEnabled(version string) W {
	config := b.stagedConfig()
	config.RemoteDebuggingEnabled = to.Ptr(true)
	config.RemoteDebuggingVersion = to.Ptr(version)
	return b.Self()
}

func (b *siteBase[W]) WithRemoteDebuggingDisabled() W {
	b.stagedConfig().RemoteDebuggingEnabled = to.Ptr(false)
	return b.Self()
}

func (b *siteBase[W]) defaultDocuments() []string {
	if b.config != nil && b.config.DefaultDocuments != nil {
		return arm.Strings(b.config.DefaultDocuments)
	}
	return b.DefaultDocuments()
}

func (b *siteBase[W]) WithDefaultDocument(document string) W {
	documents := lo.Uniq(append(b.defaultDocuments(), document))
	b.stagedConfig().DefaultDocuments = to.SliceOfPtrs(documents...)
	return b.Self()
}

func (b *siteBase[W]) WithDefaultDocuments(documents []string) W {
	b.stagedConfig().DefaultDocuments = to.SliceOfPtrs(documents...)
	return b.Self()
}

func (b *siteBase[W]) WithoutDefaultDocument(document string) W {
	documents := lo.Without(b.defaultDocuments(), document)
	b.stagedConfig().DefaultDocuments = to.SliceOfPtrs(documents...)
	return b.Self()
}

func (b *siteBase[W]) WithFtpsState(state armappservice.FtpsState) W {
	b.stagedConfig().FtpsState = to.Ptr(state)
	return b.Self()
}

func (b *siteBase[W]) WithMinTLSVersion(version armappservice.SupportedTLSVersions) W {
	b.stagedConfig().MinTLSVersion = to.Ptr(version)
	return b.Self()
}

func (b *siteBase[W]) WithContainerSize(size int32) W {
	b.containerSize = to.Ptr(size)
	return b.Self()
}

// WithExternalGitRepository deploys from a public git repository with manual integration.
func (b *siteBase[W]) WithExternalGitRepository(repoURL, branch string) W {
	b.deleteSourceControl = false
	b.sourceControl = &armappservice.SiteSourceControlProperties{
		RepoURL:             to.Ptr(repoURL),
		Branch:              to.Ptr(branch),
		IsManualIntegration: to.Ptr(true),
		IsMercurial:         to.Ptr(false),
	}
	return b.Self()
}

func (b *siteBase[W]) WithExternalMercurialRepository(repoURL, branch string) W {
	b.WithExternalGitRepository(repoURL, branch)
	b.sourceControl.IsMercurial = to.Ptr(true)
	return b.Self()
}

// WithContinuouslyIntegratedRepository deploys on every push, which requires the repository to
// be authorized for the subscription.
func (b *siteBase[W]) WithContinuouslyIntegratedRepository(repoURL, branch string) W {
	b.WithExternalGitRepository(repoURL, branch)
	b.sourceControl.IsManualIntegration = to.Ptr(false)
	return b.Self()
}

func (b *siteBase[W]) WithLocalGitSourceControl() W {
	b.stagedConfig().ScmType = to.Ptr(armappservice.ScmType("LocalGit"))
	return b.Self()
}

func (b *siteBase[W]) WithoutSourceControl() W {
	b.sourceControl = nil
	b.deleteSourceControl = true
	return b.Self()
}

func (b *siteBase[W]) stagedAuthentication() *armappservice.SiteAuthSettingsProperties {
	if b.authentication == nil {
		b.authentication = &armappservice.SiteAuthSettingsProperties{Enabled: to.Ptr(true)}
	}
	return b.authentication
}

// WithDefaultAuthenticationProvider redirects anonymous requests to provider's login page.
func (b *siteBase[W]) WithDefaultAuthenticationProvider(provider armappservice.BuiltInAuthenticationProvider) W {
	auth := b.stagedAuthentication()
	auth.DefaultProvider = to.Ptr(provider)
	auth.UnauthenticatedClientAction = to.Ptr(armappservice.UnauthenticatedClientAction("RedirectToLoginPage"))
	return b.Self()
}

func (b *siteBase[W]) WithAnonymousAuthentication() W {
	b.stagedAuthentication().UnauthenticatedClientAction = to.Ptr(armappservice.UnauthenticatedClientAction("AllowAnonymous"))
	return b.Self()
}

func (b *siteBase[W]) WithActiveDirectory(clientID, issuer string) W {
	auth := b.stagedAuthentication()
	auth.ClientID = to.Ptr(clientID)
	auth.Issuer = to.Ptr(issuer)
	return b.Self()
}

func (b *siteBase[W]) WithFacebook(appID, appSecret string) W {
	auth := b.stagedAuthentication()
	auth.FacebookAppID = to.Ptr(appID)
	auth.FacebookAppSecret = to.Ptr(appSecret)
	return b.Self()
}

func (b *siteBase[W]) WithGoogle(clientID, clientSecret string) W {
	auth := b.stagedAuthentication()
	auth.GoogleClientID = to.Ptr(clientID)
	auth.GoogleClientSecret = to.Ptr(clientSecret)
	return b.Self()
}

func (b *siteBase[W]) WithMicrosoft(clientID, clientSecret string) W {
	auth := b.stagedAuthentication()
	auth.MicrosoftAccountClientID = to.Ptr(clientID)
	auth.MicrosoftAccountClientSecret = to.Ptr(clientSecret)
	return b.Self()
}

func (b *siteBase[W]) WithTwitter(consumerKey, consumerSecret string) W {
	auth := b.stagedAuthentication()
	auth.TwitterConsumerKey = to.Ptr(consumerKey)
	auth.TwitterConsumerSecret = to.Ptr(consumerSecret)
	return b.Self()
}

func (b *siteBase[W]) WithoutAuthentication() W {
	b.authentication = &armappservice.SiteAuthSettingsProperties{Enabled: to.Ptr(false)}
	return b.Self()
}

func (b *siteBase[W]) stagedLogs() *armappservice.SiteLogsConfigProperties {
	if b.logs == nil {
		b.logs = &armappservice.SiteLogsConfigProperties{}
	}
	return b.logs
}

// WithApplicationLogLevel sends application logs of level and above to the file system.
func (b *siteBase[W]) WithApplicationLogLevel(level armappservice.LogLevel) W {
	b.stagedLogs().ApplicationLogs = &armappservice.ApplicationLogsConfig{
		FileSystem: &armappservice.FileSystemApplicationLogsConfig{Level: to.Ptr(level)},
	}
	return b.Self()
}

func (b *siteBase[W]) WithDetailedErrorMessages(enabled bool) W {
	b.stagedLogs().DetailedErrorMessages = &armappservice.EnabledConfig{Enabled: to.Ptr(enabled)}
	return b.Self()
}

func (b *siteBase[W]) WithFailedRequestTracing(enabled bool) W {
	b.stagedLogs().FailedRequestsTracing = &armappservice.EnabledConfig{Enabled: to.Ptr(enabled)}
	return b.Self()
}

func (b *siteBase[W]) WithWebServerLogging(retentionDays, quotaMB int32) W {
	b.stagedLogs().HTTPLogs = &armappservice.HTTPLogsConfig{
		FileSystem: &armappservice.FileSystemHTTPLogsConfig{
			Enabled:         to.Ptr(true),
			RetentionInDays: to.Ptr(retentionDays),
			RetentionInMb:   to.Ptr(quotaMB),
		},
	}
	return b.Self()
}

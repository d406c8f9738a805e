package appservice

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/appservice/armappservice/v2"
	"github.com/entigolabs/azure-fluent/arm"
	"github.com/entigolabs/azure-fluent/fluent"
	"github.com/entigolabs/azure-fluent/model"
	"github.com/entigolabs/azure-fluent/msi"
	"github.com/samber/lo"
)

type AppSetting struct {
	Key    string
	Value  string
	Sticky bool
}

type ConnectionString struct {
	Name   string
	Value  string
	Type   armappservice.ConnectionStringType
	Sticky bool
}

type hostNameBinding struct {
	recordType armappservice.CustomHostNameDNSRecordType
}

type siteHooks struct {
	// prepare registers extra creatables and returns the keys the site task waits for.
	prepare func(tasks *fluent.TaskGroup, groupKey string) []string
	// beforeSubmit adjusts the site body right before the PUT.
	beforeSubmit func(ctx context.Context, body *armappservice.Site) error
}

// siteBase is shared by web apps, function apps and deployment slots. W is the concrete wrapper
// returned by the mutators.
type siteBase[W any] struct {
	*fluent.Groupable[W]
	manager   *Manager
	resources *arm.Resources[armappservice.Site]
	inner     *armappservice.Site
	// parent is the production site name of a deployment slot.
	parent string
	kind   string

	config         *armappservice.SiteConfig
	httpsOnly      *bool
	clientAffinity *bool
	containerSize  *int32

	settingsToAdd       map[string]string
	settingsToRemove    model.Set[string]
	settingStickiness   map[string]bool
	connectionsToAdd    map[string]ConnectionString
	connectionsToRemove model.Set[string]
	connectionSticky    map[string]bool

	bindingsToAdd    map[string]hostNameBinding
	bindingsToRemove model.Set[string]

	sourceControl       *armappservice.SiteSourceControlProperties
	deleteSourceControl bool
	authentication      *armappservice.SiteAuthSettingsProperties
	logs                *armappservice.SiteLogsConfigProperties

	newPlan   *AppServicePlan
	plan      *AppServicePlan
	planID    string
	linux     bool
	container bool

	msi   *msi.Handler
	hooks siteHooks
}

func newSiteBase[W any](self W, manager *Manager, resources *arm.Resources[armappservice.Site], inner *armappservice.Site, name string) *siteBase[W] {
	base := &siteBase[W]{
		manager:   manager,
		resources: resources,
		inner:     inner,
		msi:       manager.identities.NewHandler(),
	}
	base.Groupable = fluent.NewGroupable(self, manager.resources.ResourceGroups(), name)
	base.clearStaged()
	if inner.ID != nil {
		base.Load(inner.ID, nil, inner.Location, inner.Tags)
		base.planID = lo.FromPtr(base.properties().ServerFarmID)
	}
	return base
}

func (b *siteBase[W]) clearStaged() {
	b.config = nil
	b.httpsOnly, b.clientAffinity, b.containerSize = nil, nil, nil
	b.settingsToAdd = map[string]string{}
	b.settingsToRemove = model.NewSet[string]()
	b.settingStickiness = map[string]bool{}
	b.connectionsToAdd = map[string]ConnectionString{}
	b.connectionsToRemove = model.NewSet[string]()
	b.connectionSticky = map[string]bool{}
	b.bindingsToAdd = map[string]hostNameBinding{}
	b.bindingsToRemove = model.NewSet[string]()
	b.sourceControl, b.deleteSourceControl = nil, false
	b.authentication, b.logs = nil, nil
}

func (b *siteBase[W]) names() []string {
	if b.parent != "" {
		return []string{b.parent, b.Name()}
	}
	return []string{b.Name()}
}

func (b *siteBase[W]) path() (string, error) {
	return b.resources.Path(b.ResourceGroupName(), b.names()...)
}

func (b *siteBase[W]) Inner() *armappservice.Site {
	return b.inner
}

func (b *siteBase[W]) ID() string {
	return lo.FromPtr(b.inner.ID)
}

func (b *siteBase[W]) IsInCreateMode() bool {
	return b.inner.ID == nil
}

func (b *siteBase[W]) properties() *armappservice.SiteProperties {
	if b.inner.Properties == nil {
		return &armappservice.SiteProperties{}
	}
	return b.inner.Properties
}

func (b *siteBase[W]) siteConfig() *armappservice.SiteConfig {
	if b.inner.Properties == nil || b.inner.Properties.SiteConfig == nil {
		return &armappservice.SiteConfig{}
	}
	return b.inner.Properties.SiteConfig
}

func (b *siteBase[W]) Kind() string {
	return lo.FromPtr(b.inner.Kind)
}

func (b *siteBase[W]) State() string {
	return lo.FromPtr(b.properties().State)
}

func (b *siteBase[W]) DefaultHostName() string {
	return lo.FromPtr(b.properties().DefaultHostName)
}

func (b *siteBase[W]) HostNames() []string {
	return arm.Strings(b.properties().HostNames)
}

func (b *siteBase[W]) EnabledHostNames() []string {
	return arm.Strings(b.properties().EnabledHostNames)
}

func (b *siteBase[W]) RepositorySiteName() string {
	return lo.FromPtr(b.properties().RepositorySiteName)
}

func (b *siteBase[W]) AppServicePlanID() string {
	return lo.FromPtr(b.properties().ServerFarmID)
}

func (b *siteBase[W]) IsEnabled() bool {
	return lo.FromPtr(b.properties().Enabled)
}

func (b *siteBase[W]) IsHTTPSOnly() bool {
	return lo.FromPtr(b.properties().HTTPSOnly)
}

func (b *siteBase[W]) IsClientAffinityEnabled() bool {
	return lo.FromPtr(b.properties().ClientAffinityEnabled)
}

func (b *siteBase[W]) OutboundIPAddresses() []string {
	addresses := lo.FromPtr(b.properties().OutboundIPAddresses)
	if addresses == "" {
		return nil
	}
	return strings.Split(addresses, ",")
}

func (b *siteBase[W]) ContainerSize() int32 {
	return lo.FromPtr(b.properties().ContainerSize)
}

func (b *siteBase[W]) OperatingSystem() OperatingSystem {
	if lo.FromPtr(b.properties().Reserved) || lo.Contains(kindTokens(b.inner.Kind), kindLinux) {
		return OperatingSystemLinux
	}
	return OperatingSystemWindows
}

// PhpVersion falls back to PhpVersionOff when the config has no version.
func (b *siteBase[W]) PhpVersion() PhpVersion {
	version := lo.FromPtr(b.siteConfig().PhpVersion)
	if version == "" {
		return PhpVersionOff
	}
	return PhpVersion(version)
}

func (b *siteBase[W]) JavaVersion() JavaVersion {
	return JavaVersion(lo.FromPtr(b.siteConfig().JavaVersion))
}

func (b *siteBase[W]) JavaContainer() string {
	return lo.FromPtr(b.siteConfig().JavaContainer)
}

func (b *siteBase[W]) JavaContainerVersion() string {
	return lo.FromPtr(b.siteConfig().JavaContainerVersion)
}

func (b *siteBase[W]) NetFrameworkVersion() NetFrameworkVersion {
	return NetFrameworkVersion(lo.FromPtr(b.siteConfig().NetFrameworkVersion))
}

func (b *siteBase[W]) PythonVersion() PythonVersion {
	return PythonVersion(lo.FromPtr(b.siteConfig().PythonVersion))
}

func (b *siteBase[W]) NodeVersion() string {
	return lo.FromPtr(b.siteConfig().NodeVersion)
}

func (b *siteBase[W]) LinuxFxVersion() string {
	return lo.FromPtr(b.siteConfig().LinuxFxVersion)
}

func (b *siteBase[W]) WindowsFxVersion() string {
	return lo.FromPtr(b.siteConfig().WindowsFxVersion)
}

func (b *siteBase[W]) AppCommandLine() string {
	return lo.FromPtr(b.siteConfig().AppCommandLine)
}

func (b *siteBase[W]) IsAlwaysOn() bool {
	return lo.FromPtr(b.siteConfig().AlwaysOn)
}

func (b *siteBase[W]) IsWebSocketsEnabled() bool {
	return lo.FromPtr(b.siteConfig().WebSocketsEnabled)
}

func (b *siteBase[W]) IsHTTP20Enabled() bool {
	return lo.FromPtr(b.siteConfig().HTTP20Enabled)
}

func (b *siteBase[W]) IsUse32BitWorkerProcess() bool {
	return lo.FromPtr(b.siteConfig().Use32BitWorkerProcess)
}

func (b *siteBase[W]) IsRemoteDebuggingEnabled() bool {
	return lo.FromPtr(b.siteConfig().RemoteDebuggingEnabled)
}

func (b *siteBase[W]) RemoteDebuggingVersion() string {
	return lo.FromPtr(b.siteConfig().RemoteDebuggingVersion)
}

func (b *siteBase[W]) DefaultDocuments() []string {
	return arm.Strings(b.siteConfig().DefaultDocuments)
}

func (b *siteBase[W]) ScmType() armappservice.ScmType {
	return lo.FromPtr(b.siteConfig().ScmType)
}

func (b *siteBase[W]) FtpsState() armappservice.FtpsState {
	return lo.FromPtr(b.siteConfig().FtpsState)
}

func (b *siteBase[W]) MinTLSVersion() armappservice.SupportedTLSVersions {
	return lo.FromPtr(b.siteConfig().MinTLSVersion)
}

func (b *siteBase[W]) Start(ctx context.Context) error {
	return b.action(ctx, "start")
}

func (b *siteBase[W]) Stop(ctx context.Context) error {
	return b.action(ctx, "stop")
}

func (b *siteBase[W]) Restart(ctx context.Context) error {
	return b.action(ctx, "restart")
}

func (b *siteBase[W]) action(ctx context.Context, action string) error {
	path, err := b.path()
	if err != nil {
		return err
	}
	err = arm.Invoke(ctx, b.resources.Client(), http.MethodPost, path+"/"+action, APIVersion, nil,
		http.StatusOK, http.StatusNoContent)
	if err != nil {
		return fmt.Errorf("failed to %s site %s: %w", action, b.Name(), err)
	}
	_, err = b.Refresh(ctx)
	return err
}

// AppSettings returns the current app settings with their slot stickiness.
func (b *siteBase[W]) AppSettings(ctx context.Context) (map[string]AppSetting, error) {
	path, err := b.path()
	if err != nil {
		return nil, err
	}
	settings, err := b.listAppSettings(ctx, path)
	if err != nil {
		return nil, err
	}
	sticky, err := b.slotConfigNames(ctx)
	if err != nil {
		return nil, err
	}
	stickyNames := model.ToSet(arm.Strings(sticky.AppSettingNames))
	result := make(map[string]AppSetting, len(settings))
	for key, value := range settings {
		result[key] = AppSetting{Key: key, Value: value, Sticky: stickyNames.Contains(key)}
	}
	return result, nil
}

func (b *siteBase[W]) ConnectionStrings(ctx context.Context) (map[string]ConnectionString, error) {
	path, err := b.path()
	if err != nil {
		return nil, err
	}
	connections, err := b.listConnectionStrings(ctx, path)
	if err != nil {
		return nil, err
	}
	sticky, err := b.slotConfigNames(ctx)
	if err != nil {
		return nil, err
	}
	stickyNames := model.ToSet(arm.Strings(sticky.ConnectionStringNames))
	result := make(map[string]ConnectionString, len(connections))
	for name, connection := range connections {
		connection.Sticky = stickyNames.Contains(name)
		result[name] = connection
	}
	return result, nil
}

// HostNameBindings returns the bindings of the site keyed by host name.
func (b *siteBase[W]) HostNameBindings(ctx context.Context) (map[string]*armappservice.HostNameBinding, error) {
	path, err := b.path()
	if err != nil {
		return nil, err
	}
	bindings, err := arm.Collect(ctx, arm.NewPager[armappservice.HostNameBinding](b.resources.Client(),
		path+"/hostNameBindings", APIVersion))
	if err != nil {
		return nil, fmt.Errorf("failed to list host name bindings of %s: %w", b.Name(), err)
	}
	return lo.Associate(bindings, func(binding *armappservice.HostNameBinding) (string, *armappservice.HostNameBinding) {
		return slotName(lo.FromPtr(binding.Name)), binding
	}), nil
}

func (b *siteBase[W]) Refresh(ctx context.Context) (W, error) {
	path, err := b.path()
	if err != nil {
		var zero W
		return zero, err
	}
	if err := b.refresh(ctx, path); err != nil {
		var zero W
		return zero, err
	}
	return b.Self(), nil
}

func (b *siteBase[W]) refresh(ctx context.Context, path string) error {
	inner, err := arm.Do[armappservice.Site](ctx, b.resources.Client(), http.MethodGet, path, APIVersion, nil)
	if err != nil {
		return fmt.Errorf("failed to refresh site %s: %w", b.Name(), err)
	}
	config, err := arm.Do[armappservice.SiteConfigResource](ctx, b.resources.Client(), http.MethodGet,
		path+"/config/web", APIVersion, nil)
	if err != nil {
		return fmt.Errorf("failed to refresh site config of %s: %w", b.Name(), err)
	}
	if inner.Properties == nil {
		inner.Properties = &armappservice.SiteProperties{}
	}
	inner.Properties.SiteConfig = config.Properties
	b.setInner(inner)
	return nil
}

func (b *siteBase[W]) setInner(inner *armappservice.Site) {
	b.inner = inner
	b.Load(inner.ID, nil, inner.Location, inner.Tags)
	b.planID = lo.FromPtr(b.properties().ServerFarmID)
}

func (b *siteBase[W]) Delete(ctx context.Context) error {
	path, err := b.path()
	if err != nil {
		return err
	}
	return arm.Invoke(ctx, b.resources.Client(), http.MethodDelete, path, APIVersion, nil)
}

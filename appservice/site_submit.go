package appservice

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/appservice/armappservice/v2"
	"github.com/entigolabs/azure-fluent/arm"
	"github.com/entigolabs/azure-fluent/fluent"
	"github.com/entigolabs/azure-fluent/model"
	"github.com/samber/lo"
)

func (b *siteBase[W]) Create(ctx context.Context) (W, error) {
	if err := b.submit(ctx); err != nil {
		var zero W
		return zero, err
	}
	return b.Self(), nil
}

func (b *siteBase[W]) Update() W {
	return b.Self()
}

func (b *siteBase[W]) Apply(ctx context.Context) (W, error) {
	return b.Create(ctx)
}

func (b *siteBase[W]) submit(ctx context.Context) error {
	if err := b.Validate(); err != nil {
		return err
	}
	if b.msi.HasIdentityChanges() || b.msi.HasRoleAssignments() {
		if err := b.manager.identities.Err(); err != nil {
			return err
		}
	}
	if b.IsInCreateMode() && b.newPlan == nil && b.planID == "" {
		return model.NewValidationError(b.Name(), "app service plan is required")
	}
	tasks := fluent.NewTaskGroup()
	groupKey := b.PrepareResourceGroup(tasks)
	deps := []string{groupKey}
	if b.hooks.prepare != nil {
		deps = append(deps, b.hooks.prepare(tasks, groupKey)...)
	}
	if plan := b.newPlan; plan != nil && plan.IsInCreateMode() {
		if plan.RegionName() == "" {
			plan.WithRegion(b.RegionName())
		}
		if plan.ResourceGroupName() == "" {
			plan.WithExistingResourceGroup(b.ResourceGroupName())
		}
		key := "plan/" + plan.Name()
		tasks.Add(key, plan.Submit, groupKey, plan.Prepare(tasks))
		deps = append(deps, key)
	}
	deps = append(deps, b.msi.Prepare(tasks, b.RegionName(), b.ResourceGroupName(), groupKey)...)

	siteKey := "site/" + strings.Join(b.names(), "/")
	tasks.Add(siteKey, b.submitSite, deps...)
	if b.msi.HasRoleAssignments() {
		tasks.Add("roles/"+strings.Join(b.names(), "/"), func(ctx context.Context) error {
			return b.msi.AssignRoles(ctx, siteIdentity{site: b.inner}, b.manager.client.ResourceGroupID(b.ResourceGroupName()))
		}, siteKey)
	}
	if err := tasks.Run(ctx); err != nil {
		return err
	}
	b.CreatedResourceGroup()
	b.newPlan = nil
	b.msi.Clear()
	return nil
}

// siteBody builds the PUT body. Create mode carries the definition, update mode the current
// server model with the staged site level changes.
func (b *siteBase[W]) siteBody() *armappservice.Site {
	creating := b.IsInCreateMode()
	properties := armappservice.SiteProperties{}
	if b.inner.Properties != nil {
		properties = *b.inner.Properties
	}
	properties.SiteConfig = nil
	body := &armappservice.Site{
		Location:   to.Ptr(b.RegionName()),
		Tags:       b.TagPointers(),
		Kind:       b.inner.Kind,
		Properties: &properties,
	}
	if b.inner.Identity != nil {
		identity := *b.inner.Identity
		if identity.UserAssignedIdentities != nil {
			identity.UserAssignedIdentities = lo.Assign(identity.UserAssignedIdentities)
		}
		body.Identity = &identity
	}
	if b.newPlan != nil {
		b.planID = b.newPlan.ID()
	}
	if b.planID != "" {
		properties.ServerFarmID = to.Ptr(b.planID)
	}
	if creating {
		body.Kind = to.Ptr(siteKind(b.kind, b.linux, b.container))
		properties.Reserved = to.Ptr(b.linux)
		if b.config != nil {
			config := *b.config
			properties.SiteConfig = &config
		}
	}
	if b.httpsOnly != nil {
		properties.HTTPSOnly = b.httpsOnly
	}
	if b.clientAffinity != nil {
		properties.ClientAffinityEnabled = b.clientAffinity
	}
	if b.containerSize != nil {
		properties.ContainerSize = b.containerSize
	}
	return body
}

func (b *siteBase[W]) submitSite(ctx context.Context) error {
	creating := b.IsInCreateMode()
	body := b.siteBody()
	if b.hooks.beforeSubmit != nil {
		if err := b.hooks.beforeSubmit(ctx, body); err != nil {
			return err
		}
	}
	b.msi.Apply(siteIdentity{site: body})
	path, err := b.path()
	if err != nil {
		return err
	}
	slog.Debug("Submitting site", "path", path)
	inner, err := arm.DoLongRunning[armappservice.Site](ctx, b.resources.Client(), http.MethodPut, path, APIVersion, body)
	if err != nil {
		return fmt.Errorf("failed to submit site %s: %w", b.Name(), err)
	}
	b.inner = inner

	steps := []struct {
		name   string
		submit func(ctx context.Context, path string) error
	}{
		{name: "host name bindings", submit: b.submitHostNameBindings},
		{name: "site config", submit: b.submitSiteConfig},
		{name: "app settings", submit: b.submitAppSettings},
		{name: "connection strings", submit: b.submitConnectionStrings},
		{name: "slot config names", submit: b.submitStickiness},
		{name: "source control", submit: b.submitSourceControl},
		{name: "authentication", submit: b.submitAuthentication},
		{name: "diagnostic logs", submit: b.submitLogs},
	}
	for _, step := range steps {
		if err := step.submit(ctx, path); err != nil {
			return fmt.Errorf("failed to submit %s of %s: %w", step.name, b.Name(), err)
		}
	}
	if err := b.refresh(ctx, path); err != nil {
		return err
	}
	b.clearStaged()
	if creating {
		log.Printf("Created site %s\n", strings.Join(b.names(), "/"))
	}
	return nil
}

func (b *siteBase[W]) submitHostNameBindings(ctx context.Context, path string) error {
	client := b.resources.Client()
	for _, hostName := range sortedKeys(b.bindingsToRemove) {
		slog.Debug("Deleting host name binding", "site", b.Name(), "hostName", hostName)
		err := arm.Invoke(ctx, client, http.MethodDelete, path+"/hostNameBindings/"+url.PathEscape(hostName), APIVersion, nil)
		if err != nil && !arm.IsNotFound(err) {
			return err
		}
	}
	for _, hostName := range sortedKeys(b.bindingsToAdd) {
		binding := b.bindingsToAdd[hostName]
		slog.Debug("Creating host name binding", "site", b.Name(), "hostName", hostName)
		err := arm.Invoke(ctx, client, http.MethodPut, path+"/hostNameBindings/"+url.PathEscape(hostName), APIVersion,
			armappservice.HostNameBinding{
				Properties: &armappservice.HostNameBindingProperties{
					SiteName:                    to.Ptr(b.Name()),
					CustomHostNameDNSRecordType: to.Ptr(binding.recordType),
					HostNameType:                to.Ptr(armappservice.HostNameType("Verified")),
					AzureResourceType:           to.Ptr(armappservice.AzureResourceType("Website")),
				},
			})
		if err != nil {
			return err
		}
	}
	return nil
}

func (b *siteBase[W]) submitSiteConfig(ctx context.Context, path string) error {
	if b.config == nil {
		return nil
	}
	slog.Debug("Updating site config", "site", b.Name())
	return arm.Invoke(ctx, b.resources.Client(), http.MethodPut, path+"/config/web", APIVersion,
		armappservice.SiteConfigResource{Properties: b.config})
}

func (b *siteBase[W]) listAppSettings(ctx context.Context, path string) (map[string]string, error) {
	settings, err := arm.Do[armappservice.StringDictionary](ctx, b.resources.Client(), http.MethodPost,
		path+"/config/appsettings/list", APIVersion, nil, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return arm.FromStringMap(settings.Properties), nil
}

func (b *siteBase[W]) submitAppSettings(ctx context.Context, path string) error {
	if len(b.settingsToAdd) == 0 && b.settingsToRemove.Size() == 0 {
		return nil
	}
	settings, err := b.listAppSettings(ctx, path)
	if err != nil {
		return err
	}
	for key, value := range b.settingsToAdd {
		settings[key] = value
	}
	for key := range b.settingsToRemove {
		delete(settings, key)
	}
	slog.Debug("Updating app settings", "site", b.Name(), "count", len(settings))
	return arm.Invoke(ctx, b.resources.Client(), http.MethodPut, path+"/config/appsettings", APIVersion,
		armappservice.StringDictionary{Properties: arm.StringMap(settings)})
}

func (b *siteBase[W]) listConnectionStrings(ctx context.Context, path string) (map[string]ConnectionString, error) {
	connections, err := arm.Do[armappservice.ConnectionStringDictionary](ctx, b.resources.Client(), http.MethodPost,
		path+"/config/connectionstrings/list", APIVersion, nil, http.StatusOK)
	if err != nil {
		return nil, err
	}
	result := make(map[string]ConnectionString, len(connections.Properties))
	for name, value := range connections.Properties {
		if value == nil {
			continue
		}
		result[name] = ConnectionString{Name: name, Value: lo.FromPtr(value.Value), Type: lo.FromPtr(value.Type)}
	}
	return result, nil
}

func (b *siteBase[W]) submitConnectionStrings(ctx context.Context, path string) error {
	if len(b.connectionsToAdd) == 0 && b.connectionsToRemove.Size() == 0 {
		return nil
	}
	connections, err := b.listConnectionStrings(ctx, path)
	if err != nil {
		return err
	}
	for name, connection := range b.connectionsToAdd {
		connections[name] = connection
	}
	for name := range b.connectionsToRemove {
		delete(connections, name)
	}
	properties := make(map[string]*armappservice.ConnStringValueTypePair, len(connections))
	for name, connection := range connections {
		properties[name] = &armappservice.ConnStringValueTypePair{
			Value: to.Ptr(connection.Value),
			Type:  to.Ptr(connection.Type),
		}
	}
	slog.Debug("Updating connection strings", "site", b.Name(), "count", len(properties))
	return arm.Invoke(ctx, b.resources.Client(), http.MethodPut, path+"/config/connectionstrings", APIVersion,
		armappservice.ConnectionStringDictionary{Properties: properties})
}

// slotConfigNames reads the sticky setting names, which live on the production site.
func (b *siteBase[W]) slotConfigNames(ctx context.Context) (*armappservice.SlotConfigNames, error) {
	production := b.Name()
	if b.parent != "" {
		production = b.parent
	}
	sites, _ := b.manager.siteResources()
	path, err := sites.Path(b.ResourceGroupName(), production)
	if err != nil {
		return nil, err
	}
	resource, err := arm.Do[armappservice.SlotConfigNamesResource](ctx, b.resources.Client(), http.MethodGet,
		path+"/config/slotConfigNames", APIVersion, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to read slot config names: %w", err)
	}
	if resource.Properties == nil {
		return &armappservice.SlotConfigNames{}, nil
	}
	return resource.Properties, nil
}

func (b *siteBase[W]) submitStickiness(ctx context.Context, path string) error {
	if len(b.settingStickiness) == 0 && len(b.connectionSticky) == 0 {
		return nil
	}
	if b.parent != "" {
		slog.Debug("Ignoring setting stickiness of a deployment slot", "slot", b.Name())
		return nil
	}
	names, err := b.slotConfigNames(ctx)
	if err != nil {
		return err
	}
	names.AppSettingNames = to.SliceOfPtrs(applyStickiness(arm.Strings(names.AppSettingNames), b.settingStickiness)...)
	names.ConnectionStringNames = to.SliceOfPtrs(applyStickiness(arm.Strings(names.ConnectionStringNames), b.connectionSticky)...)
	return arm.Invoke(ctx, b.resources.Client(), http.MethodPut, path+"/config/slotConfigNames", APIVersion,
		armappservice.SlotConfigNamesResource{Properties: names})
}

func applyStickiness(current []string, stickiness map[string]bool) []string {
	names := model.ToSet(current)
	for name, sticky := range stickiness {
		if sticky {
			names.Add(name)
		} else {
			names.Remove(name)
		}
	}
	return sortedKeys(names)
}

func (b *siteBase[W]) submitSourceControl(ctx context.Context, path string) error {
	client := b.resources.Client()
	if b.deleteSourceControl {
		slog.Debug("Deleting source control", "site", b.Name())
		err := arm.Invoke(ctx, client, http.MethodDelete, path+"/sourcecontrols/web", APIVersion, nil)
		if err != nil && !arm.IsNotFound(err) {
			return err
		}
	}
	if b.sourceControl == nil {
		return nil
	}
	slog.Debug("Updating source control", "site", b.Name(), "repository", lo.FromPtr(b.sourceControl.RepoURL))
	_, err := arm.DoLongRunning[armappservice.SiteSourceControl](ctx, client, http.MethodPut, path+"/sourcecontrols/web",
		APIVersion, armappservice.SiteSourceControl{Properties: b.sourceControl})
	return err
}

func (b *siteBase[W]) submitAuthentication(ctx context.Context, path string) error {
	if b.authentication == nil {
		return nil
	}
	slog.Debug("Updating authentication settings", "site", b.Name())
	return arm.Invoke(ctx, b.resources.Client(), http.MethodPut, path+"/config/authsettings", APIVersion,
		armappservice.SiteAuthSettings{Properties: b.authentication})
}

func (b *siteBase[W]) submitLogs(ctx context.Context, path string) error {
	if b.logs == nil {
		return nil
	}
	slog.Debug("Updating diagnostic logs", "site", b.Name())
	return arm.Invoke(ctx, b.resources.Client(), http.MethodPut, path+"/config/logs", APIVersion,
		armappservice.SiteLogsConfig{Properties: b.logs})
}

func sortedKeys[V any](values map[string]V) []string {
	keys := lo.Keys(values)
	sort.Strings(keys)
	return keys
}

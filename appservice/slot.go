package appservice

import (
	"context"
	"fmt"
	"net/http"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/appservice/armappservice/v2"
	"github.com/entigolabs/azure-fluent/arm"
	"github.com/entigolabs/azure-fluent/fluent"
	"github.com/samber/lo"
)

// ProductionSlot is the swap target naming the parent site.
const ProductionSlot = "production"

// configSource is a site whose configuration a new slot can start from.
type configSource interface {
	Name() string
	Inner() *armappservice.Site
	AppSettings(ctx context.Context) (map[string]AppSetting, error)
	ConnectionStrings(ctx context.Context) (map[string]ConnectionString, error)
	webConfig(ctx context.Context) (*armappservice.SiteConfig, error)
}

type parentSite interface {
	configSource
	RegionName() string
	ResourceGroupName() string
	AppServicePlanID() string
	OperatingSystem() OperatingSystem
}

func (b *siteBase[W]) webConfig(ctx context.Context) (*armappservice.SiteConfig, error) {
	path, err := b.path()
	if err != nil {
		return nil, err
	}
	config, err := arm.Do[armappservice.SiteConfigResource](ctx, b.resources.Client(), http.MethodGet,
		path+"/config/web", APIVersion, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get site config of %s: %w", b.Name(), err)
	}
	if config.Properties == nil {
		return &armappservice.SiteConfig{}, nil
	}
	return config.Properties, nil
}

type DeploymentSlots struct {
	*fluent.ChildCollection[armappservice.Site, *DeploymentSlot]
	manager *Manager
	parent  parentSite
}

func newDeploymentSlots(manager *Manager, parent parentSite) *DeploymentSlots {
	_, slots := manager.siteResources()
	deploymentSlots := &DeploymentSlots{manager: manager, parent: parent}
	deploymentSlots.ChildCollection = fluent.NewChildCollection(slots, parent.ResourceGroupName(),
		[]string{parent.Name()}, deploymentSlots.WrapModel)
	return deploymentSlots
}

// Define starts a slot in the parent's region, resource group and plan with a brand new
// configuration.
func (d *DeploymentSlots) Define(name string) *DeploymentSlot {
	slot := d.newSlot(&armappservice.Site{Name: to.Ptr(name)})
	slot.WithRegion(d.parent.RegionName())
	slot.WithExistingResourceGroup(d.parent.ResourceGroupName())
	slot.planID = d.parent.AppServicePlanID()
	slot.linux = d.parent.OperatingSystem() == OperatingSystemLinux
	return slot
}

func (d *DeploymentSlots) WrapModel(inner *armappservice.Site) *DeploymentSlot {
	return d.newSlot(inner)
}

func (d *DeploymentSlots) newSlot(inner *armappservice.Site) *DeploymentSlot {
	slot := &DeploymentSlot{slots: d}
	_, slots := d.manager.siteResources()
	slot.siteBase = newSiteBase(slot, d.manager, slots, inner, slotName(lo.FromPtr(inner.Name)))
	slot.parent = d.parent.Name()
	slot.hooks = siteHooks{beforeSubmit: slot.copyConfiguration}
	return slot
}

// DeploymentSlot is the fluent wrapper of a Microsoft.Web/sites/slots resource.
type DeploymentSlot struct {
	*siteBase[*DeploymentSlot]
	slots  *DeploymentSlots
	source configSource
}

func (s *DeploymentSlot) Parent() string {
	return s.parent
}

func (s *DeploymentSlot) WithBrandNewConfiguration() *DeploymentSlot {
	s.source = nil
	return s
}

func (s *DeploymentSlot) WithConfigurationFromParent() *DeploymentSlot {
	s.source = s.slots.parent
	return s
}

func (s *DeploymentSlot) WithConfigurationFromDeploymentSlot(slot *DeploymentSlot) *DeploymentSlot {
	s.source = slot
	return s
}

// copyConfiguration starts a new slot from the source site. Sticky app settings and connection
// strings stay with their slot and settings staged on this slot win.
func (s *DeploymentSlot) copyConfiguration(ctx context.Context, body *armappservice.Site) error {
	if s.IsInCreateMode() {
		body.Kind = s.slots.parent.Inner().Kind
	}
	if s.source == nil || !s.IsInCreateMode() {
		return nil
	}
	config, err := s.source.webConfig(ctx)
	if err != nil {
		return err
	}
	body.Properties.SiteConfig = config
	settings, err := s.source.AppSettings(ctx)
	if err != nil {
		return err
	}
	for key, setting := range settings {
		if _, staged := s.settingsToAdd[key]; staged || setting.Sticky || s.settingsToRemove.Contains(key) {
			continue
		}
		s.settingsToAdd[key] = setting.Value
	}
	connections, err := s.source.ConnectionStrings(ctx)
	if err != nil {
		return err
	}
	for name, connection := range connections {
		if _, staged := s.connectionsToAdd[name]; staged || connection.Sticky || s.connectionsToRemove.Contains(name) {
			continue
		}
		connection.Sticky = false
		s.connectionsToAdd[name] = connection
	}
	s.source = nil
	return nil
}

// Swap swaps this slot with target, ProductionSlot for the parent site.
func (s *DeploymentSlot) Swap(ctx context.Context, target string) error {
	return swapSlots(ctx, s.siteBase, target)
}

package appservice

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/appservice/armappservice/v2"
	"github.com/entigolabs/azure-fluent/fluent"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

const maxPlanNameLength = 40

type AppServicePlans struct {
	*fluent.Collection[armappservice.Plan, *AppServicePlan]
	manager *Manager
}

func (p *AppServicePlans) Define(name string) *AppServicePlan {
	return p.newPlan(&armappservice.Plan{Name: to.Ptr(name)})
}

func (p *AppServicePlans) WrapModel(inner *armappservice.Plan) *AppServicePlan {
	plan := p.newPlan(inner)
	plan.Load(inner.ID, inner.Name, inner.Location, inner.Tags)
	return plan
}

func (p *AppServicePlans) newPlan(inner *armappservice.Plan) *AppServicePlan {
	plan := &AppServicePlan{plans: p, inner: inner}
	plan.Groupable = fluent.NewGroupable(plan, p.manager.resources.ResourceGroups(), lo.FromPtr(inner.Name))
	return plan
}

func generatedPlanName(siteName string) string {
	name := "plan" + siteName
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	if len(name) > maxPlanNameLength-len(suffix) {
		name = name[:maxPlanNameLength-len(suffix)]
	}
	return name + suffix
}

// AppServicePlan is the fluent wrapper of armappservice.Plan.
type AppServicePlan struct {
	*fluent.Groupable[*AppServicePlan]
	plans *AppServicePlans
	inner *armappservice.Plan

	tier           *PricingTier
	os             *OperatingSystem
	perSiteScaling *bool
	capacity       *int32
}

func (p *AppServicePlan) Inner() *armappservice.Plan {
	return p.inner
}

func (p *AppServicePlan) ID() string {
	return lo.FromPtr(p.inner.ID)
}

func (p *AppServicePlan) IsInCreateMode() bool {
	return p.inner.ID == nil
}

func (p *AppServicePlan) properties() *armappservice.PlanProperties {
	if p.inner.Properties == nil {
		return &armappservice.PlanProperties{}
	}
	return p.inner.Properties
}

// PricingTier returns the staged tier of a definition, otherwise the tier of the server model.
func (p *AppServicePlan) PricingTier() PricingTier {
	if p.tier != nil {
		return *p.tier
	}
	return pricingTierOf(p.inner.SKU)
}

func (p *AppServicePlan) OperatingSystem() OperatingSystem {
	if p.os != nil {
		return *p.os
	}
	if lo.FromPtr(p.properties().Reserved) {
		return OperatingSystemLinux
	}
	return OperatingSystemWindows
}

func (p *AppServicePlan) Capacity() int32 {
	if p.inner.SKU == nil {
		return 0
	}
	return lo.FromPtr(p.inner.SKU.Capacity)
}

func (p *AppServicePlan) NumberOfWebApps() int32 {
	return lo.FromPtr(p.properties().NumberOfSites)
}

func (p *AppServicePlan) MaxInstances() int32 {
	return lo.FromPtr(p.properties().MaximumNumberOfWorkers)
}

func (p *AppServicePlan) PerSiteScaling() bool {
	return lo.FromPtr(p.properties().PerSiteScaling)
}

func (p *AppServicePlan) WithPricingTier(tier PricingTier) *AppServicePlan {
	p.tier = &tier
	return p
}

func (p *AppServicePlan) WithOperatingSystem(os OperatingSystem) *AppServicePlan {
	p.os = &os
	return p
}

func (p *AppServicePlan) WithPerSiteScaling(enabled bool) *AppServicePlan {
	p.perSiteScaling = to.Ptr(enabled)
	return p
}

func (p *AppServicePlan) WithCapacity(capacity int32) *AppServicePlan {
	p.capacity = to.Ptr(capacity)
	return p
}

func (p *AppServicePlan) Create(ctx context.Context) (*AppServicePlan, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	tasks := fluent.NewTaskGroup()
	tasks.Add("plan/"+p.Name(), p.Submit, p.Prepare(tasks))
	if err := tasks.Run(ctx); err != nil {
		return nil, err
	}
	p.CreatedResourceGroup()
	return p, nil
}

// Prepare registers the plan's resource group creatable and returns its task key.
func (p *AppServicePlan) Prepare(tasks *fluent.TaskGroup) string {
	return p.PrepareResourceGroup(tasks)
}

func (p *AppServicePlan) Submit(ctx context.Context) error {
	creating := p.IsInCreateMode()
	tier := p.PricingTier()
	if creating && tier.Size == "" {
		tier = FreeF1
	}
	capacity := p.capacity
	if capacity == nil && p.inner.SKU != nil {
		capacity = p.inner.SKU.Capacity
	}
	properties := &armappservice.PlanProperties{
		PerSiteScaling: p.perSiteScaling,
		Reserved:       to.Ptr(p.OperatingSystem() == OperatingSystemLinux),
	}
	if !creating && p.perSiteScaling == nil {
		properties.PerSiteScaling = p.properties().PerSiteScaling
	}
	body := armappservice.Plan{
		Location:   to.Ptr(p.RegionName()),
		Kind:       to.Ptr(planKind(tier, p.OperatingSystem())),
		SKU:        tier.sku(capacity),
		Tags:       p.TagPointers(),
		Properties: properties,
	}
	inner, err := p.plans.Resources().CreateOrUpdate(ctx, body, p.ResourceGroupName(), p.Name())
	if err != nil {
		return fmt.Errorf("failed to submit app service plan %s: %w", p.Name(), err)
	}
	p.setInner(inner)
	if creating {
		log.Printf("Created app service plan %s\n", p.Name())
	}
	return nil
}

func planKind(tier PricingTier, os OperatingSystem) string {
	switch {
	case tier.IsConsumption():
		return kindFunctionApp
	case tier.IsElasticPremium():
		return "elastic"
	case os == OperatingSystemLinux:
		return kindLinux
	default:
		return kindApp
	}
}

func (p *AppServicePlan) Update() *AppServicePlan {
	return p
}

func (p *AppServicePlan) Apply(ctx context.Context) (*AppServicePlan, error) {
	if err := p.Submit(ctx); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *AppServicePlan) Refresh(ctx context.Context) (*AppServicePlan, error) {
	inner, err := p.plans.Resources().Get(ctx, p.ResourceGroupName(), p.Name())
	if err != nil {
		return nil, err
	}
	p.setInner(inner)
	return p, nil
}

func (p *AppServicePlan) Delete(ctx context.Context) error {
	return p.plans.DeleteByResourceGroup(ctx, p.ResourceGroupName(), p.Name())
}

func (p *AppServicePlan) setInner(inner *armappservice.Plan) {
	p.inner = inner
	p.Load(inner.ID, inner.Name, inner.Location, inner.Tags)
	p.tier, p.os, p.perSiteScaling, p.capacity = nil, nil, nil, nil
}

package resources

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	azarm "github.com/Azure/azure-sdk-for-go/sdk/azcore/arm"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/resources/armresources"
	"github.com/entigolabs/azure-fluent/arm"
	"github.com/samber/lo"
)

const APIVersion = "2021-04-01"

var groupSchema = arm.Schema[armresources.ResourceGroup]{
	Types:      []string{"resourcegroups"},
	APIVersion: APIVersion,
	ID:         func(g *armresources.ResourceGroup) *string { return g.ID },
}

type Manager struct {
	client     *arm.Client
	groupsOnce sync.Once
	groups     *ResourceGroups
}

func Authenticate(credential azcore.TokenCredential, subscriptionID string, options *azarm.ClientOptions) (*Manager, error) {
	client, err := arm.NewClient(subscriptionID, credential, options)
	if err != nil {
		return nil, err
	}
	return NewManager(client), nil
}

func NewManager(client *arm.Client) *Manager {
	return &Manager{client: client}
}

func (m *Manager) Client() *arm.Client {
	return m.client
}

func (m *Manager) ResourceGroups() *ResourceGroups {
	m.groupsOnce.Do(func() {
		m.groups = &ResourceGroups{resources: arm.NewResources(m.client, groupSchema)}
	})
	return m.groups
}

type ResourceGroups struct {
	resources *arm.Resources[armresources.ResourceGroup]
}

func (r *ResourceGroups) Define(name string) *ResourceGroup {
	return &ResourceGroup{
		groups: r,
		inner:  &armresources.ResourceGroup{Name: to.Ptr(name)},
		tags:   map[string]string{},
	}
}

func (r *ResourceGroups) WrapModel(inner *armresources.ResourceGroup) *ResourceGroup {
	group := &ResourceGroup{groups: r, inner: inner, tags: map[string]string{}}
	for key, value := range inner.Tags {
		if value != nil {
			group.tags[key] = *value
		}
	}
	return group
}

func (r *ResourceGroups) GetByName(ctx context.Context, name string) (*ResourceGroup, error) {
	inner, err := r.resources.Get(ctx, "", name)
	if err != nil {
		return nil, err
	}
	return r.WrapModel(inner), nil
}

func (r *ResourceGroups) Exists(ctx context.Context, name string) (bool, error) {
	path, err := r.resources.Path("", name)
	if err != nil {
		return false, err
	}
	return arm.Exists(ctx, r.resources.Client(), path, APIVersion)
}

func (r *ResourceGroups) List(ctx context.Context) ([]*ResourceGroup, error) {
	inners, err := r.resources.List(ctx)
	if err != nil {
		return nil, err
	}
	groups := make([]*ResourceGroup, 0, len(inners))
	for _, inner := range inners {
		groups = append(groups, r.WrapModel(inner))
	}
	return groups, nil
}

func (r *ResourceGroups) DeleteByName(ctx context.Context, name string) error {
	err := r.resources.Delete(ctx, "", name)
	if err != nil {
		return err
	}
	log.Printf("Deleted resource group %s\n", name)
	return nil
}

// ResourceGroup is the fluent wrapper of armresources.ResourceGroup.
type ResourceGroup struct {
	groups *ResourceGroups
	inner  *armresources.ResourceGroup
	tags   map[string]string
}

func (g *ResourceGroup) Inner() *armresources.ResourceGroup {
	return g.inner
}

func (g *ResourceGroup) ID() string {
	return lo.FromPtr(g.inner.ID)
}

func (g *ResourceGroup) Name() string {
	return lo.FromPtr(g.inner.Name)
}

func (g *ResourceGroup) RegionName() string {
	return lo.FromPtr(g.inner.Location)
}

func (g *ResourceGroup) Tags() map[string]string {
	return g.tags
}

func (g *ResourceGroup) ProvisioningState() string {
	if g.inner.Properties == nil {
		return ""
	}
	return lo.FromPtr(g.inner.Properties.ProvisioningState)
}

func (g *ResourceGroup) IsInCreateMode() bool {
	return g.inner.ID == nil
}

func (g *ResourceGroup) WithRegion(region string) *ResourceGroup {
	g.inner.Location = to.Ptr(region)
	return g
}

func (g *ResourceGroup) WithTag(key, value string) *ResourceGroup {
	g.tags[key] = value
	return g
}

func (g *ResourceGroup) WithTags(tags map[string]string) *ResourceGroup {
	for key, value := range tags {
		g.tags[key] = value
	}
	return g
}

func (g *ResourceGroup) WithoutTag(key string) *ResourceGroup {
	delete(g.tags, key)
	return g
}

func (g *ResourceGroup) Create(ctx context.Context) (*ResourceGroup, error) {
	if g.inner.Location == nil || *g.inner.Location == "" {
		return nil, fmt.Errorf("resource group %s requires a region", g.Name())
	}
	if err := g.submit(ctx); err != nil {
		return nil, err
	}
	log.Printf("Created resource group %s\n", g.Name())
	return g, nil
}

func (g *ResourceGroup) Update() *ResourceGroup {
	return g
}

func (g *ResourceGroup) Apply(ctx context.Context) (*ResourceGroup, error) {
	if err := g.submit(ctx); err != nil {
		return nil, err
	}
	return g, nil
}

func (g *ResourceGroup) Refresh(ctx context.Context) (*ResourceGroup, error) {
	inner, err := g.groups.resources.Get(ctx, "", g.Name())
	if err != nil {
		return nil, err
	}
	*g = *g.groups.WrapModel(inner)
	return g, nil
}

func (g *ResourceGroup) Delete(ctx context.Context) error {
	return g.groups.DeleteByName(ctx, g.Name())
}

func (g *ResourceGroup) submit(ctx context.Context) error {
	body := armresources.ResourceGroup{
		Location: g.inner.Location,
		Tags:     arm.StringMap(g.tags),
	}
	inner, err := g.groups.resources.CreateOrUpdate(ctx, body, "", g.Name())
	if err != nil {
		return fmt.Errorf("failed to create resource group %s: %w", g.Name(), err)
	}
	g.inner = inner
	return nil
}

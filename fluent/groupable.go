package fluent

import (
	"context"
	"fmt"
	"strings"

	"github.com/entigolabs/azure-fluent/arm"
	"github.com/entigolabs/azure-fluent/model"
	"github.com/entigolabs/azure-fluent/resources"
	"github.com/google/uuid"
)

// Groupable holds the region, resource group and tag state shared by every top level resource
// wrapper. W is the wrapper type returned by the mutators so calls chain on the concrete type.
type Groupable[W any] struct {
	self          W
	groups        *resources.ResourceGroups
	name          string
	region        string
	resourceGroup string
	newGroup      *resources.ResourceGroup
	tags          map[string]string
}

func NewGroupable[W any](self W, groups *resources.ResourceGroups, name string) *Groupable[W] {
	return &Groupable[W]{
		self:   self,
		groups: groups,
		name:   name,
		tags:   map[string]string{},
	}
}

// Load copies the common fields of a server response.
func (g *Groupable[W]) Load(id, name, location *string, tags map[string]*string) {
	if name != nil {
		g.name = *name
	}
	if location != nil {
		g.region = *location
	}
	if id != nil {
		g.resourceGroup = arm.ResourceGroupFromID(*id)
	}
	g.tags = arm.FromStringMap(tags)
}

func (g *Groupable[W]) Self() W {
	return g.self
}

func (g *Groupable[W]) Name() string {
	return g.name
}

func (g *Groupable[W]) RegionName() string {
	return g.region
}

func (g *Groupable[W]) ResourceGroupName() string {
	return g.resourceGroup
}

func (g *Groupable[W]) Tags() map[string]string {
	return g.tags
}

func (g *Groupable[W]) TagPointers() map[string]*string {
	return arm.StringMap(g.tags)
}

func (g *Groupable[W]) WithRegion(region string) W {
	g.region = strings.ReplaceAll(strings.ToLower(region), " ", "")
	return g.self
}

// WithNewResourceGroup creates the resource group before the resource. An empty name generates
// one from the resource name.
func (g *Groupable[W]) WithNewResourceGroup(name string) W {
	if name == "" {
		name = "rg" + g.name + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	}
	g.resourceGroup = name
	g.newGroup = g.groups.Define(name)
	return g.self
}

func (g *Groupable[W]) WithNewResourceGroupDefinition(group *resources.ResourceGroup) W {
	g.resourceGroup = group.Name()
	g.newGroup = group
	return g.self
}

func (g *Groupable[W]) WithExistingResourceGroup(name string) W {
	g.resourceGroup = name
	g.newGroup = nil
	return g.self
}

func (g *Groupable[W]) WithTag(key, value string) W {
	g.tags[key] = value
	return g.self
}

func (g *Groupable[W]) WithTags(tags map[string]string) W {
	for key, value := range tags {
		g.tags[key] = value
	}
	return g.self
}

func (g *Groupable[W]) WithoutTag(key string) W {
	delete(g.tags, key)
	return g.self
}

// Validate checks the definition holds everything a PUT needs.
func (g *Groupable[W]) Validate() error {
	if g.name == "" {
		return model.NewValidationError("resource", "name is required")
	}
	if g.region == "" {
		return model.NewValidationError(g.name, "region is required")
	}
	if g.resourceGroup == "" {
		return model.NewValidationError(g.name, "resource group is required")
	}
	return nil
}

// PrepareResourceGroup registers the new resource group creatable, if any, and returns its task key.
func (g *Groupable[W]) PrepareResourceGroup(tasks *TaskGroup) string {
	if g.newGroup == nil {
		return ""
	}
	group := g.newGroup
	key := "resourcegroup/" + group.Name()
	if group.RegionName() == "" {
		group.WithRegion(g.region)
	}
	tasks.Add(key, func(ctx context.Context) error {
		if _, err := group.Create(ctx); err != nil {
			return fmt.Errorf("failed to create resource group for %s: %w", g.name, err)
		}
		return nil
	})
	return key
}

// CreatedResourceGroup clears the new resource group once the definition has been submitted.
func (g *Groupable[W]) CreatedResourceGroup() {
	g.newGroup = nil
}

package fluent

import (
	"context"
	"log"

	"github.com/entigolabs/azure-fluent/arm"
	"github.com/samber/lo"
)

// Collection maps the ARM CRUD engine for T onto fluent wrappers W.
type Collection[T any, W any] struct {
	resources *arm.Resources[T]
	wrap      func(*T) W
	filter    func(*T) bool
}

func NewCollection[T any, W any](resources *arm.Resources[T], wrap func(*T) W) *Collection[T, W] {
	return &Collection[T, W]{resources: resources, wrap: wrap}
}

// WithFilter returns a copy of the collection that only exposes inner models matching filter.
func (c *Collection[T, W]) WithFilter(filter func(*T) bool) *Collection[T, W] {
	return &Collection[T, W]{resources: c.resources, wrap: c.wrap, filter: filter}
}

func (c *Collection[T, W]) Resources() *arm.Resources[T] {
	return c.resources
}

func (c *Collection[T, W]) WrapModel(inner *T) W {
	return c.wrap(inner)
}

func (c *Collection[T, W]) GetByResourceGroup(ctx context.Context, resourceGroup, name string) (W, error) {
	inner, err := c.resources.Get(ctx, resourceGroup, name)
	if err != nil {
		var zero W
		return zero, err
	}
	return c.wrap(inner), nil
}

func (c *Collection[T, W]) GetByID(ctx context.Context, id string) (W, error) {
	inner, err := c.resources.GetByID(ctx, id)
	if err != nil {
		var zero W
		return zero, err
	}
	return c.wrap(inner), nil
}

func (c *Collection[T, W]) List(ctx context.Context) ([]W, error) {
	inners, err := c.resources.List(ctx)
	if err != nil {
		return nil, err
	}
	return c.wrapAll(inners), nil
}

func (c *Collection[T, W]) ListByResourceGroup(ctx context.Context, resourceGroup string) ([]W, error) {
	inners, err := c.resources.ListByResourceGroup(ctx, resourceGroup)
	if err != nil {
		return nil, err
	}
	return c.wrapAll(inners), nil
}

func (c *Collection[T, W]) DeleteByResourceGroup(ctx context.Context, resourceGroup, name string) error {
	if err := c.resources.Delete(ctx, resourceGroup, name); err != nil {
		return err
	}
	log.Printf("Deleted %s %s\n", c.resources.Schema().ResourceType(), name)
	return nil
}

func (c *Collection[T, W]) DeleteByID(ctx context.Context, id string) error {
	if err := c.resources.DeleteByID(ctx, id); err != nil {
		return err
	}
	log.Printf("Deleted %s\n", id)
	return nil
}

func (c *Collection[T, W]) wrapAll(inners []*T) []W {
	if c.filter != nil {
		inners = lo.Filter(inners, func(inner *T, _ int) bool {
			return c.filter(inner)
		})
	}
	return lo.Map(inners, func(inner *T, _ int) W {
		return c.wrap(inner)
	})
}

// ChildCollection addresses resources nested under a parent, e.g. deployment slots of a site.
type ChildCollection[T any, W any] struct {
	resources     *arm.Resources[T]
	resourceGroup string
	parents       []string
	wrap          func(*T) W
}

func NewChildCollection[T any, W any](resources *arm.Resources[T], resourceGroup string, parents []string, wrap func(*T) W) *ChildCollection[T, W] {
	return &ChildCollection[T, W]{resources: resources, resourceGroup: resourceGroup, parents: parents, wrap: wrap}
}

func (c *ChildCollection[T, W]) Resources() *arm.Resources[T] {
	return c.resources
}

func (c *ChildCollection[T, W]) ResourceGroup() string {
	return c.resourceGroup
}

func (c *ChildCollection[T, W]) Parents() []string {
	return c.parents
}

func (c *ChildCollection[T, W]) WrapModel(inner *T) W {
	return c.wrap(inner)
}

func (c *ChildCollection[T, W]) GetByName(ctx context.Context, name string) (W, error) {
	inner, err := c.resources.Get(ctx, c.resourceGroup, c.names(name)...)
	if err != nil {
		var zero W
		return zero, err
	}
	return c.wrap(inner), nil
}

func (c *ChildCollection[T, W]) GetByID(ctx context.Context, id string) (W, error) {
	inner, err := c.resources.GetByID(ctx, id)
	if err != nil {
		var zero W
		return zero, err
	}
	return c.wrap(inner), nil
}

func (c *ChildCollection[T, W]) List(ctx context.Context) ([]W, error) {
	inners, err := c.resources.ListByResourceGroup(ctx, c.resourceGroup, c.parents...)
	if err != nil {
		return nil, err
	}
	return lo.Map(inners, func(inner *T, _ int) W {
		return c.wrap(inner)
	}), nil
}

func (c *ChildCollection[T, W]) DeleteByName(ctx context.Context, name string) error {
	if err := c.resources.Delete(ctx, c.resourceGroup, c.names(name)...); err != nil {
		return err
	}
	log.Printf("Deleted %s %s\n", c.resources.Schema().ResourceType(), name)
	return nil
}

func (c *ChildCollection[T, W]) names(name string) []string {
	return append(append([]string(nil), c.parents...), name)
}

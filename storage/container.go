package storage

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/storage/armstorage"
	"github.com/entigolabs/azure-fluent/arm"
	"github.com/entigolabs/azure-fluent/fluent"
	"github.com/samber/lo"
)

type BlobContainers struct {
	*fluent.ChildCollection[armstorage.BlobContainer, *BlobContainer]
	manager     *Manager
	accountName string
}

func (b *BlobContainers) Define(name string) *BlobContainer {
	return &BlobContainer{
		containers: b,
		name:       name,
		inner:      &armstorage.BlobContainer{Name: to.Ptr(name)},
		metadata:   map[string]string{},
	}
}

func (b *BlobContainers) WrapModel(inner *armstorage.BlobContainer) *BlobContainer {
	container := b.Define(lo.FromPtr(inner.Name))
	container.inner = inner
	return container
}

// BlobContainer is the fluent wrapper of armstorage.BlobContainer.
type BlobContainer struct {
	containers   *BlobContainers
	name         string
	inner        *armstorage.BlobContainer
	publicAccess *armstorage.PublicAccess
	metadata     map[string]string
}

func (c *BlobContainer) Inner() *armstorage.BlobContainer {
	return c.inner
}

func (c *BlobContainer) ID() string {
	return lo.FromPtr(c.inner.ID)
}

func (c *BlobContainer) Name() string {
	return c.name
}

func (c *BlobContainer) AccountName() string {
	return c.containers.accountName
}

func (c *BlobContainer) IsInCreateMode() bool {
	return c.inner.ID == nil
}

func (c *BlobContainer) PublicAccess() armstorage.PublicAccess {
	if c.inner.ContainerProperties == nil {
		return ""
	}
	return lo.FromPtr(c.inner.ContainerProperties.PublicAccess)
}

func (c *BlobContainer) Metadata() map[string]string {
	if c.inner.ContainerProperties == nil {
		return map[string]string{}
	}
	return arm.FromStringMap(c.inner.ContainerProperties.Metadata)
}

func (c *BlobContainer) LastModifiedTime() time.Time {
	if c.inner.ContainerProperties == nil {
		return time.Time{}
	}
	return lo.FromPtr(c.inner.ContainerProperties.LastModifiedTime)
}

func (c *BlobContainer) WithPublicAccess(access armstorage.PublicAccess) *BlobContainer {
	c.publicAccess = to.Ptr(access)
	return c
}

func (c *BlobContainer) WithMetadata(key, value string) *BlobContainer {
	c.metadata[key] = value
	return c
}

func (c *BlobContainer) Create(ctx context.Context) (*BlobContainer, error) {
	if err := c.submit(ctx); err != nil {
		return nil, err
	}
	log.Printf("Created blob container %s in %s\n", c.name, c.AccountName())
	return c, nil
}

func (c *BlobContainer) Update() *BlobContainer {
	return c
}

func (c *BlobContainer) Apply(ctx context.Context) (*BlobContainer, error) {
	if err := c.submit(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *BlobContainer) Delete(ctx context.Context) error {
	return c.containers.DeleteByName(ctx, c.name)
}

func (c *BlobContainer) submit(ctx context.Context) error {
	metadata := c.Metadata()
	for key, value := range c.metadata {
		metadata[key] = value
	}
	properties := &armstorage.ContainerProperties{PublicAccess: c.publicAccess}
	if properties.PublicAccess == nil && c.inner.ContainerProperties != nil {
		properties.PublicAccess = c.inner.ContainerProperties.PublicAccess
	}
	if len(metadata) > 0 {
		properties.Metadata = arm.StringMap(metadata)
	}
	names := append(append([]string(nil), c.containers.Parents()...), c.name)
	inner, err := c.containers.Resources().CreateOrUpdate(ctx, armstorage.BlobContainer{ContainerProperties: properties},
		c.containers.ResourceGroup(), names...)
	if err != nil {
		return fmt.Errorf("failed to create blob container %s: %w", c.name, err)
	}
	c.inner = inner
	c.publicAccess = nil
	c.metadata = map[string]string{}
	return nil
}

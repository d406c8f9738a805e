package msi

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/msi/armmsi"
	"github.com/entigolabs/azure-fluent/arm"
	"github.com/entigolabs/azure-fluent/model"
	"github.com/samber/lo"
)

type Identities struct {
	client UserAssignedIdentitiesClient
}

func NewIdentities(client *arm.Client) (*Identities, error) {
	identityClient, err := armmsi.NewUserAssignedIdentitiesClient(client.SubscriptionID(), client.Credential(), client.Options())
	if err != nil {
		return nil, fmt.Errorf("failed to create identity client: %w", err)
	}
	return NewIdentitiesWithClient(identityClient), nil
}

func NewIdentitiesWithClient(client UserAssignedIdentitiesClient) *Identities {
	return &Identities{client: client}
}

func (i *Identities) Define(name string) *Identity {
	return &Identity{identities: i, name: name, tags: map[string]string{}}
}

func (i *Identities) GetByResourceGroup(ctx context.Context, resourceGroup, name string) (*Identity, error) {
	resp, err := i.client.Get(ctx, resourceGroup, name, nil)
	if err != nil {
		return nil, err
	}
	identity := i.Define(name)
	identity.resourceGroup = resourceGroup
	identity.setInner(&resp.Identity)
	return identity, nil
}

func (i *Identities) DeleteByResourceGroup(ctx context.Context, resourceGroup, name string) error {
	_, err := i.client.Delete(ctx, resourceGroup, name, nil)
	if err != nil {
		var respErr *azcore.ResponseError
		if errors.As(err, &respErr) && respErr.StatusCode == 404 {
			return nil
		}
		return err
	}
	log.Printf("Deleted managed identity: %s\n", name)
	return nil
}

// Identity is a user assigned managed identity.
type Identity struct {
	identities    *Identities
	name          string
	region        string
	resourceGroup string
	tags          map[string]string
	inner         *armmsi.Identity
}

func (i *Identity) Inner() *armmsi.Identity {
	return i.inner
}

func (i *Identity) Name() string {
	return i.name
}

func (i *Identity) RegionName() string {
	return i.region
}

func (i *Identity) ResourceGroupName() string {
	return i.resourceGroup
}

func (i *Identity) IsInCreateMode() bool {
	return i.inner == nil || i.inner.ID == nil
}

func (i *Identity) ID() string {
	if i.inner == nil {
		return ""
	}
	return lo.FromPtr(i.inner.ID)
}

func (i *Identity) PrincipalID() string {
	if i.inner == nil || i.inner.Properties == nil {
		return ""
	}
	return lo.FromPtr(i.inner.Properties.PrincipalID)
}

func (i *Identity) ClientID() string {
	if i.inner == nil || i.inner.Properties == nil {
		return ""
	}
	return lo.FromPtr(i.inner.Properties.ClientID)
}

func (i *Identity) TenantID() string {
	if i.inner == nil || i.inner.Properties == nil {
		return ""
	}
	return lo.FromPtr(i.inner.Properties.TenantID)
}

func (i *Identity) WithRegion(region string) *Identity {
	i.region = region
	return i
}

func (i *Identity) WithExistingResourceGroup(resourceGroup string) *Identity {
	i.resourceGroup = resourceGroup
	return i
}

func (i *Identity) WithTag(key, value string) *Identity {
	i.tags[key] = value
	return i
}

func (i *Identity) Create(ctx context.Context) (*Identity, error) {
	if i.region == "" {
		return nil, model.NewValidationError(i.name, "region is required")
	}
	if i.resourceGroup == "" {
		return nil, model.NewValidationError(i.name, "resource group is required")
	}
	resp, err := i.identities.client.CreateOrUpdate(ctx, i.resourceGroup, i.name, armmsi.Identity{
		Location: to.Ptr(i.region),
		Tags:     arm.StringMap(i.tags),
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create managed identity: %w", err)
	}
	i.setInner(&resp.Identity)
	log.Printf("Created managed identity: %s\n", i.name)
	return i, nil
}

func (i *Identity) setInner(inner *armmsi.Identity) {
	i.inner = inner
	if inner.Location != nil {
		i.region = *inner.Location
	}
	i.tags = arm.FromStringMap(inner.Tags)
}

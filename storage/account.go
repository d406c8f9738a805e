package storage

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/storage/armstorage"
	"github.com/entigolabs/azure-fluent/arm"
	"github.com/entigolabs/azure-fluent/fluent"
	"github.com/samber/lo"
)

type StorageAccounts struct {
	*fluent.Collection[armstorage.Account, *StorageAccount]
	manager *Manager
}

func (s *StorageAccounts) Define(name string) *StorageAccount {
	return s.newAccount(&armstorage.Account{Name: to.Ptr(name)})
}

func (s *StorageAccounts) WrapModel(inner *armstorage.Account) *StorageAccount {
	account := s.newAccount(inner)
	account.Load(inner.ID, inner.Name, inner.Location, inner.Tags)
	return account
}

func (s *StorageAccounts) newAccount(inner *armstorage.Account) *StorageAccount {
	account := &StorageAccount{accounts: s, inner: inner}
	account.Groupable = fluent.NewGroupable(account, s.manager.resources.ResourceGroups(), lo.FromPtr(inner.Name))
	return account
}

type NameAvailability struct {
	Available bool
	Reason    string
	Message   string
}

func (s *StorageAccounts) CheckNameAvailability(ctx context.Context, name string) (*NameAvailability, error) {
	client := s.manager.client
	path := fmt.Sprintf("/subscriptions/%s/providers/Microsoft.Storage/checkNameAvailability", client.SubscriptionID())
	result, err := arm.Do[armstorage.CheckNameAvailabilityResult](ctx, client, http.MethodPost, path, APIVersion,
		armstorage.AccountCheckNameAvailabilityParameters{
			Name: to.Ptr(name),
			Type: to.Ptr(accountResourceType),
		}, http.StatusOK)
	if err != nil {
		return nil, fmt.Errorf("failed to check storage account name %s: %w", name, err)
	}
	availability := &NameAvailability{
		Available: lo.FromPtr(result.NameAvailable),
		Message:   lo.FromPtr(result.Message),
	}
	if result.Reason != nil {
		availability.Reason = string(*result.Reason)
	}
	return availability, nil
}

// StorageAccount is the fluent wrapper of armstorage.Account.
type StorageAccount struct {
	*fluent.Groupable[*StorageAccount]
	accounts *StorageAccounts
	inner    *armstorage.Account

	sku               *armstorage.SKUName
	kind              *armstorage.Kind
	accessTier        *armstorage.AccessTier
	httpsOnly         *bool
	minimumTLS        *armstorage.MinimumTLSVersion
	blobPublicAccess  *bool
	hierarchicalNames *bool
}

func (s *StorageAccount) Inner() *armstorage.Account {
	return s.inner
}

func (s *StorageAccount) ID() string {
	return lo.FromPtr(s.inner.ID)
}

func (s *StorageAccount) IsInCreateMode() bool {
	return s.inner.ID == nil
}

func (s *StorageAccount) SkuType() armstorage.SKUName {
	if s.inner.SKU == nil {
		return ""
	}
	return lo.FromPtr(s.inner.SKU.Name)
}

func (s *StorageAccount) Kind() armstorage.Kind {
	return lo.FromPtr(s.inner.Kind)
}

func (s *StorageAccount) properties() *armstorage.AccountProperties {
	if s.inner.Properties == nil {
		return &armstorage.AccountProperties{}
	}
	return s.inner.Properties
}

func (s *StorageAccount) AccessTier() armstorage.AccessTier {
	return lo.FromPtr(s.properties().AccessTier)
}

func (s *StorageAccount) IsHTTPSTrafficOnly() bool {
	return lo.FromPtr(s.properties().EnableHTTPSTrafficOnly)
}

func (s *StorageAccount) MinimumTLSVersion() armstorage.MinimumTLSVersion {
	return lo.FromPtr(s.properties().MinimumTLSVersion)
}

func (s *StorageAccount) IsBlobPublicAccessAllowed() bool {
	return lo.FromPtr(s.properties().AllowBlobPublicAccess)
}

func (s *StorageAccount) IsHnsEnabled() bool {
	return lo.FromPtr(s.properties().IsHnsEnabled)
}

func (s *StorageAccount) ProvisioningState() armstorage.ProvisioningState {
	return lo.FromPtr(s.properties().ProvisioningState)
}

func (s *StorageAccount) CreationTime() time.Time {
	return lo.FromPtr(s.properties().CreationTime)
}

func (s *StorageAccount) PrimaryEndpoints() armstorage.Endpoints {
	return lo.FromPtr(s.properties().PrimaryEndpoints)
}

func (s *StorageAccount) BlobEndpoint() string {
	if endpoint := lo.FromPtr(s.PrimaryEndpoints().Blob); endpoint != "" {
		return endpoint
	}
	return fmt.Sprintf("https://%s.blob.%s/", s.Name(), endpointSuffix)
}

func (s *StorageAccount) WithSku(sku armstorage.SKUName) *StorageAccount {
	s.sku = to.Ptr(sku)
	return s
}

func (s *StorageAccount) WithGeneralPurposeAccountKindV2() *StorageAccount {
	s.kind = to.Ptr(armstorage.KindStorageV2)
	return s
}

func (s *StorageAccount) WithGeneralPurposeAccountKind() *StorageAccount {
	s.kind = to.Ptr(armstorage.KindStorage)
	return s
}

func (s *StorageAccount) WithBlobStorageAccountKind() *StorageAccount {
	s.kind = to.Ptr(armstorage.KindBlobStorage)
	return s
}

func (s *StorageAccount) WithBlockBlobStorageAccountKind() *StorageAccount {
	s.kind = to.Ptr(armstorage.KindBlockBlobStorage)
	return s
}

func (s *StorageAccount) WithFileStorageAccountKind() *StorageAccount {
	s.kind = to.Ptr(armstorage.KindFileStorage)
	return s
}

func (s *StorageAccount) WithAccessTier(tier armstorage.AccessTier) *StorageAccount {
	s.accessTier = to.Ptr(tier)
	return s
}

func (s *StorageAccount) WithOnlyHTTPSTraffic() *StorageAccount {
	s.httpsOnly = to.Ptr(true)
	return s
}

func (s *StorageAccount) WithHTTPAndHTTPSTraffic() *StorageAccount {
	s.httpsOnly = to.Ptr(false)
	return s
}

func (s *StorageAccount) WithMinimumTLSVersion(version armstorage.MinimumTLSVersion) *StorageAccount {
	s.minimumTLS = to.Ptr(version)
	return s
}

func (s *StorageAccount) EnableBlobPublicAccess() *StorageAccount {
	s.blobPublicAccess = to.Ptr(true)
	return s
}

func (s *StorageAccount) DisableBlobPublicAccess() *StorageAccount {
	s.blobPublicAccess = to.Ptr(false)
	return s
}

func (s *StorageAccount) WithHnsEnabled(enabled bool) *StorageAccount {
	s.hierarchicalNames = to.Ptr(enabled)
	return s
}

func (s *StorageAccount) Create(ctx context.Context) (*StorageAccount, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	tasks := fluent.NewTaskGroup()
	tasks.Add("storageaccount/"+s.Name(), s.Submit, s.PrepareResourceGroup(tasks))
	if err := tasks.Run(ctx); err != nil {
		return nil, err
	}
	s.CreatedResourceGroup()
	return s, nil
}

// Prepare registers the resource group creatable of a storage account created as a dependency of
// another resource and returns its task key.
func (s *StorageAccount) Prepare(tasks *fluent.TaskGroup) string {
	return s.PrepareResourceGroup(tasks)
}

// Submit creates the account when it has no id yet, otherwise patches it.
func (s *StorageAccount) Submit(ctx context.Context) error {
	if !s.IsInCreateMode() {
		return s.update(ctx)
	}
	body := armstorage.AccountCreateParameters{
		Location: to.Ptr(s.RegionName()),
		Kind:     lo.Ternary(s.kind != nil, s.kind, to.Ptr(armstorage.KindStorageV2)),
		SKU: &armstorage.SKU{
			Name: lo.Ternary(s.sku != nil, s.sku, to.Ptr(armstorage.SKUNameStandardLRS)),
		},
		Properties: &armstorage.AccountPropertiesCreateParameters{
			AccessTier:             s.accessTier,
			AllowBlobPublicAccess:  lo.Ternary(s.blobPublicAccess != nil, s.blobPublicAccess, to.Ptr(false)),
			MinimumTLSVersion:      lo.Ternary(s.minimumTLS != nil, s.minimumTLS, to.Ptr(armstorage.MinimumTLSVersionTLS12)),
			EnableHTTPSTrafficOnly: lo.Ternary(s.httpsOnly != nil, s.httpsOnly, to.Ptr(true)),
			IsHnsEnabled:           s.hierarchicalNames,
		},
		Tags: s.TagPointers(),
	}
	inner, err := s.accounts.Resources().CreateOrUpdate(ctx, body, s.ResourceGroupName(), s.Name())
	if err != nil {
		return fmt.Errorf("failed to create storage account %s: %w", s.Name(), err)
	}
	s.setInner(inner)
	log.Printf("Created Azure Storage Account %s\n", s.Name())
	return nil
}

func (s *StorageAccount) Update() *StorageAccount {
	return s
}

func (s *StorageAccount) Apply(ctx context.Context) (*StorageAccount, error) {
	if err := s.update(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *StorageAccount) update(ctx context.Context) error {
	body := armstorage.AccountUpdateParameters{
		Kind: s.kind,
		Properties: &armstorage.AccountPropertiesUpdateParameters{
			AccessTier:             s.accessTier,
			AllowBlobPublicAccess:  s.blobPublicAccess,
			EnableHTTPSTrafficOnly: s.httpsOnly,
			MinimumTLSVersion:      s.minimumTLS,
		},
		Tags: s.TagPointers(),
	}
	if s.sku != nil {
		body.SKU = &armstorage.SKU{Name: s.sku}
	}
	inner, err := s.accounts.Resources().Update(ctx, body, s.ResourceGroupName(), s.Name())
	if err != nil {
		return fmt.Errorf("failed to update storage account %s: %w", s.Name(), err)
	}
	s.setInner(inner)
	return nil
}

func (s *StorageAccount) Refresh(ctx context.Context) (*StorageAccount, error) {
	inner, err := s.accounts.Resources().Get(ctx, s.ResourceGroupName(), s.Name())
	if err != nil {
		return nil, err
	}
	s.setInner(inner)
	return s, nil
}

func (s *StorageAccount) Delete(ctx context.Context) error {
	return s.accounts.DeleteByResourceGroup(ctx, s.ResourceGroupName(), s.Name())
}

func (s *StorageAccount) BlobContainers() *BlobContainers {
	return s.accounts.manager.BlobContainers(s.ResourceGroupName(), s.Name())
}

func (s *StorageAccount) setInner(inner *armstorage.Account) {
	s.inner = inner
	s.Load(inner.ID, inner.Name, inner.Location, inner.Tags)
	s.sku, s.kind, s.accessTier, s.httpsOnly, s.minimumTLS, s.blobPublicAccess, s.hierarchicalNames =
		nil, nil, nil, nil, nil, nil, nil
}

package storage

import (
	"sync"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	azarm "github.com/Azure/azure-sdk-for-go/sdk/azcore/arm"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/storage/armstorage"
	"github.com/entigolabs/azure-fluent/arm"
	"github.com/entigolabs/azure-fluent/fluent"
	"github.com/entigolabs/azure-fluent/resources"
)

const (
	APIVersion           = "2023-01-01"
	defaultBlobService   = "default"
	accountResourceType  = "Microsoft.Storage/storageAccounts"
	endpointSuffix       = "core.windows.net"
	connectionStringBase = "DefaultEndpointsProtocol=https;AccountName=%s;AccountKey=%s;EndpointSuffix=%s"
)

var (
	accountSchema = arm.Schema[armstorage.Account]{
		Namespace:  "Microsoft.Storage",
		Types:      []string{"storageAccounts"},
		APIVersion: APIVersion,
		ID:         func(a *armstorage.Account) *string { return a.ID },
	}
	containerSchema = arm.Schema[armstorage.BlobContainer]{
		Namespace:  "Microsoft.Storage",
		Types:      []string{"storageAccounts", "blobServices", "containers"},
		APIVersion: APIVersion,
		ID:         func(c *armstorage.BlobContainer) *string { return c.ID },
	}
)

type Manager struct {
	client       *arm.Client
	resources    *resources.Manager
	accountsOnce sync.Once
	accounts     *StorageAccounts
}

func Authenticate(credential azcore.TokenCredential, subscriptionID string, options *azarm.ClientOptions) (*Manager, error) {
	client, err := arm.NewClient(subscriptionID, credential, options)
	if err != nil {
		return nil, err
	}
	return NewManager(client), nil
}

func NewManager(client *arm.Client) *Manager {
	return &Manager{client: client, resources: resources.NewManager(client)}
}

func (m *Manager) Client() *arm.Client {
	return m.client
}

func (m *Manager) StorageAccounts() *StorageAccounts {
	m.accountsOnce.Do(func() {
		accounts := &StorageAccounts{manager: m}
		accounts.Collection = fluent.NewCollection(arm.NewResources(m.client, accountSchema), accounts.WrapModel)
		m.accounts = accounts
	})
	return m.accounts
}

// BlobContainers returns the containers of the default blob service of an account.
func (m *Manager) BlobContainers(resourceGroup, accountName string) *BlobContainers {
	containers := &BlobContainers{manager: m, accountName: accountName}
	containers.ChildCollection = fluent.NewChildCollection(arm.NewResources(m.client, containerSchema), resourceGroup,
		[]string{accountName, defaultBlobService}, containers.WrapModel)
	return containers
}

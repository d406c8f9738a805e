package azure

import (
	"fmt"
	"log"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	azarm "github.com/Azure/azure-sdk-for-go/sdk/azcore/arm"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/entigolabs/azure-fluent/appservice"
	"github.com/entigolabs/azure-fluent/arm"
	"github.com/entigolabs/azure-fluent/compute"
	"github.com/entigolabs/azure-fluent/msi"
	"github.com/entigolabs/azure-fluent/network"
	"github.com/entigolabs/azure-fluent/resources"
	"github.com/entigolabs/azure-fluent/storage"
)

// Azure bundles the managers of every service area over one ARM client.
type Azure struct {
	client     *arm.Client
	appService *appservice.Manager
	compute    *compute.Manager
	storage    *storage.Manager
	network    *network.Manager
	resources  *resources.Manager
	identities *msi.Clients
}

// NewDefaultCredential returns the azidentity default chain: environment, workload identity,
// managed identity and the Azure CLI.
func NewDefaultCredential() (azcore.TokenCredential, error) {
	credential, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Azure credentials: %w", err)
	}
	return credential, nil
}

func Authenticate(credential azcore.TokenCredential, subscriptionID string, options *azarm.ClientOptions) (*Azure, error) {
	client, err := arm.NewClient(subscriptionID, credential, options)
	if err != nil {
		return nil, err
	}
	log.Printf("Azure session initialized with subscription: %s\n", subscriptionID)
	return &Azure{
		client:     client,
		appService: appservice.NewManager(client),
		compute:    compute.NewManager(client),
		storage:    storage.NewManager(client),
		network:    network.NewManager(client),
		resources:  resources.NewManager(client),
		identities: msi.NewClients(client),
	}, nil
}

func (a *Azure) SubscriptionID() string {
	return a.client.SubscriptionID()
}

func (a *Azure) Client() *arm.Client {
	return a.client
}

func (a *Azure) AppServices() *appservice.Manager {
	return a.appService
}

func (a *Azure) Compute() *compute.Manager {
	return a.compute
}

func (a *Azure) Storage() *storage.Manager {
	return a.storage
}

func (a *Azure) Network() *network.Manager {
	return a.network
}

func (a *Azure) WebApps() *appservice.WebApps {
	return a.appService.WebApps()
}

func (a *Azure) FunctionApps() *appservice.FunctionApps {
	return a.appService.FunctionApps()
}

func (a *Azure) AppServicePlans() *appservice.AppServicePlans {
	return a.appService.AppServicePlans()
}

func (a *Azure) VirtualMachines() *compute.VirtualMachines {
	return a.compute.VirtualMachines()
}

func (a *Azure) VirtualMachineScaleSets() *compute.VirtualMachineScaleSets {
	return a.compute.VirtualMachineScaleSets()
}

func (a *Azure) AvailabilitySets() *compute.AvailabilitySets {
	return a.compute.AvailabilitySets()
}

func (a *Azure) Disks() *compute.Disks {
	return a.compute.Disks()
}

func (a *Azure) StorageAccounts() *storage.StorageAccounts {
	return a.storage.StorageAccounts()
}

func (a *Azure) BlobContainers(resourceGroup, accountName string) *storage.BlobContainers {
	return a.storage.BlobContainers(resourceGroup, accountName)
}

func (a *Azure) Networks() *network.Networks {
	return a.network.Networks()
}

func (a *Azure) NetworkInterfaces() *network.NetworkInterfaces {
	return a.network.NetworkInterfaces()
}

func (a *Azure) ResourceGroups() *resources.ResourceGroups {
	return a.resources.ResourceGroups()
}

func (a *Azure) Identities() (*msi.Identities, error) {
	return a.identities.Identities()
}

package appservice

import (
	"sync"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	azarm "github.com/Azure/azure-sdk-for-go/sdk/azcore/arm"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/appservice/armappservice/v2"
	"github.com/entigolabs/azure-fluent/arm"
	"github.com/entigolabs/azure-fluent/fluent"
	"github.com/entigolabs/azure-fluent/msi"
	"github.com/entigolabs/azure-fluent/resources"
	"github.com/entigolabs/azure-fluent/storage"
)

const (
	APIVersion = "2022-03-01"

	kuduAttempts = 30
	kuduDelay    = time.Second
)

var (
	siteSchema = arm.Schema[armappservice.Site]{
		Namespace:  "Microsoft.Web",
		Types:      []string{"sites"},
		APIVersion: APIVersion,
		ID:         func(s *armappservice.Site) *string { return s.ID },
	}
	slotSchema = arm.Schema[armappservice.Site]{
		Namespace:  "Microsoft.Web",
		Types:      []string{"sites", "slots"},
		APIVersion: APIVersion,
		ID:         func(s *armappservice.Site) *string { return s.ID },
	}
	planSchema = arm.Schema[armappservice.Plan]{
		Namespace:  "Microsoft.Web",
		Types:      []string{"serverfarms"},
		APIVersion: APIVersion,
		ID:         func(p *armappservice.Plan) *string { return p.ID },
	}
)

type Manager struct {
	client     *arm.Client
	resources  *resources.Manager
	storage    *storage.Manager
	identities *msi.Clients
	kuduDelay  time.Duration

	sitesOnce        sync.Once
	sites            *arm.Resources[armappservice.Site]
	slots            *arm.Resources[armappservice.Site]
	webAppsOnce      sync.Once
	webApps          *WebApps
	functionAppsOnce sync.Once
	functionApps     *FunctionApps
	plansOnce        sync.Once
	plans            *AppServicePlans
}

func Authenticate(credential azcore.TokenCredential, subscriptionID string, options *azarm.ClientOptions) (*Manager, error) {
	client, err := arm.NewClient(subscriptionID, credential, options)
	if err != nil {
		return nil, err
	}
	return NewManager(client), nil
}

func NewManager(client *arm.Client) *Manager {
	return &Manager{
		client:     client,
		resources:  resources.NewManager(client),
		storage:    storage.NewManager(client),
		identities: msi.NewClients(client),
		kuduDelay:  kuduDelay,
	}
}

func (m *Manager) Client() *arm.Client {
	return m.client
}

func (m *Manager) StorageManager() *storage.Manager {
	return m.storage
}

func (m *Manager) ResourceManager() *resources.Manager {
	return m.resources
}

// Identities gives access to user assigned identities that can be attached to sites.
func (m *Manager) Identities() (*msi.Identities, error) {
	return m.identities.Identities()
}

func (m *Manager) siteResources() (*arm.Resources[armappservice.Site], *arm.Resources[armappservice.Site]) {
	m.sitesOnce.Do(func() {
		m.sites = arm.NewResources(m.client, siteSchema)
		m.slots = arm.NewResources(m.client, slotSchema)
	})
	return m.sites, m.slots
}

func (m *Manager) WebApps() *WebApps {
	m.webAppsOnce.Do(func() {
		sites, _ := m.siteResources()
		apps := &WebApps{manager: m}
		apps.Collection = fluent.NewCollection(sites, apps.WrapModel).WithFilter(IsWebApp)
		m.webApps = apps
	})
	return m.webApps
}

func (m *Manager) FunctionApps() *FunctionApps {
	m.functionAppsOnce.Do(func() {
		sites, _ := m.siteResources()
		apps := &FunctionApps{manager: m}
		apps.Collection = fluent.NewCollection(sites, apps.WrapModel).WithFilter(IsFunctionApp)
		m.functionApps = apps
	})
	return m.functionApps
}

func (m *Manager) AppServicePlans() *AppServicePlans {
	m.plansOnce.Do(func() {
		plans := &AppServicePlans{manager: m}
		plans.Collection = fluent.NewCollection(arm.NewResources(m.client, planSchema), plans.WrapModel)
		m.plans = plans
	})
	return m.plans
}

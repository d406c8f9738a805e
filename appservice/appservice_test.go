package appservice

import (
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/appservice/armappservice/v2"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/storage/armstorage"
	"github.com/entigolabs/azure-fluent/arm"
	"github.com/entigolabs/azure-fluent/test"
	"github.com/stretchr/testify/require"
)

const resourceGroup = "rg1"

func newTestManager(t *testing.T, transport *test.Transport) (*Manager, string) {
	subscriptionID := test.SubscriptionID()
	client, err := arm.NewClient(subscriptionID, test.Credential{}, transport.ClientOptions())
	require.NoError(t, err)
	manager := NewManager(client)
	manager.kuduDelay = 0
	return manager, subscriptionID
}

func webID(subscriptionID string, segments ...string) string {
	return "/subscriptions/" + subscriptionID + "/resourceGroups/" + resourceGroup + "/providers/Microsoft.Web/" +
		strings.Join(segments, "/")
}

// webCalls returns the recorded requests with their path trimmed to the Microsoft.Web part.
func webCalls(transport *test.Transport) []string {
	var calls []string
	for _, call := range transport.Calls() {
		method, path, _ := strings.Cut(call, " ")
		if _, rest, found := strings.Cut(path, "/providers/Microsoft.Web/"); found {
			calls = append(calls, method+" "+rest)
		}
	}
	return calls
}

// fakeSite keeps the server side state of one site or slot behind a test transport.
type fakeSite struct {
	mu          sync.Mutex
	site        *armappservice.Site
	config      *armappservice.SiteConfig
	settings    map[string]*string
	connections map[string]*armappservice.ConnStringValueTypePair
	sticky      *armappservice.SlotConfigNames
	lastSite    *armappservice.Site
}

func newFakeSite(transport *test.Transport, id, kind string) *fakeSite {
	fake := &fakeSite{
		site: &armappservice.Site{
			ID:         to.Ptr(id),
			Name:       to.Ptr(arm.NameFromID(id)),
			Kind:       to.Ptr(kind),
			Location:   to.Ptr("westeurope"),
			Properties: &armappservice.SiteProperties{},
		},
		config:      &armappservice.SiteConfig{},
		settings:    map[string]*string{},
		connections: map[string]*armappservice.ConnStringValueTypePair{},
		sticky:      &armappservice.SlotConfigNames{},
	}
	path := ".*" + id[strings.Index(id, "/providers/"):]
	transport.OnFunc(http.MethodPut, path, func(req test.Request) (int, any) {
		var body armappservice.Site
		if err := req.JSON(&body); err != nil {
			return http.StatusBadRequest, err.Error()
		}
		fake.mu.Lock()
		defer fake.mu.Unlock()
		fake.lastSite = &body
		body.ID = fake.site.ID
		body.Name = fake.site.Name
		if body.Properties == nil {
			body.Properties = &armappservice.SiteProperties{}
		}
		body.Properties.DefaultHostName = to.Ptr(arm.NameFromID(id) + ".azurewebsites.net")
		if body.Properties.SiteConfig != nil {
			fake.config = body.Properties.SiteConfig
			for _, pair := range body.Properties.SiteConfig.AppSettings {
				fake.settings[*pair.Name] = pair.Value
			}
		}
		fake.site = &body
		return http.StatusOK, body
	})
	transport.OnFunc(http.MethodGet, path, func(test.Request) (int, any) {
		fake.mu.Lock()
		defer fake.mu.Unlock()
		return http.StatusOK, fake.site
	})
	transport.OnFunc(http.MethodGet, path+"/config/web", func(test.Request) (int, any) {
		fake.mu.Lock()
		defer fake.mu.Unlock()
		return http.StatusOK, armappservice.SiteConfigResource{Properties: fake.config}
	})
	transport.OnFunc(http.MethodPut, path+"/config/web", func(req test.Request) (int, any) {
		var body armappservice.SiteConfigResource
		_ = req.JSON(&body)
		fake.mu.Lock()
		defer fake.mu.Unlock()
		fake.config = body.Properties
		return http.StatusOK, body
	})
	transport.OnFunc(http.MethodPost, path+"/config/appsettings/list", func(test.Request) (int, any) {
		fake.mu.Lock()
		defer fake.mu.Unlock()
		return http.StatusOK, armappservice.StringDictionary{Properties: fake.settings}
	})
	transport.OnFunc(http.MethodPut, path+"/config/appsettings", func(req test.Request) (int, any) {
		var body armappservice.StringDictionary
		_ = req.JSON(&body)
		fake.mu.Lock()
		defer fake.mu.Unlock()
		fake.settings = body.Properties
		return http.StatusOK, body
	})
	transport.OnFunc(http.MethodPost, path+"/config/connectionstrings/list", func(test.Request) (int, any) {
		fake.mu.Lock()
		defer fake.mu.Unlock()
		return http.StatusOK, armappservice.ConnectionStringDictionary{Properties: fake.connections}
	})
	transport.OnFunc(http.MethodPut, path+"/config/connectionstrings", func(req test.Request) (int, any) {
		var body armappservice.ConnectionStringDictionary
		_ = req.JSON(&body)
		fake.mu.Lock()
		defer fake.mu.Unlock()
		fake.connections = body.Properties
		return http.StatusOK, body
	})
	transport.OnFunc(http.MethodGet, path+"/config/slotConfigNames", func(test.Request) (int, any) {
		fake.mu.Lock()
		defer fake.mu.Unlock()
		return http.StatusOK, armappservice.SlotConfigNamesResource{Properties: fake.sticky}
	})
	transport.OnFunc(http.MethodPut, path+"/config/slotConfigNames", func(req test.Request) (int, any) {
		var body armappservice.SlotConfigNamesResource
		_ = req.JSON(&body)
		fake.mu.Lock()
		defer fake.mu.Unlock()
		fake.sticky = body.Properties
		return http.StatusOK, body
	})
	transport.On(http.MethodPut, path+"/hostNameBindings/[^/]+", http.StatusOK, armappservice.HostNameBinding{})
	transport.On(http.MethodDelete, path+"/hostNameBindings/[^/]+", http.StatusOK, nil)
	transport.On(http.MethodPut, path+"/sourcecontrols/web", http.StatusOK, armappservice.SiteSourceControl{})
	transport.On(http.MethodDelete, path+"/sourcecontrols/web", http.StatusOK, nil)
	transport.On(http.MethodPut, path+"/config/authsettings", http.StatusOK, armappservice.SiteAuthSettings{})
	transport.On(http.MethodPut, path+"/config/logs", http.StatusOK, armappservice.SiteLogsConfig{})
	return fake
}

func (f *fakeSite) lastBody() *armappservice.Site {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastSite
}

func onPlans(transport *test.Transport, subscriptionID string) {
	transport.OnFunc(http.MethodPut, ".*/serverfarms/[^/]+", func(req test.Request) (int, any) {
		var body armappservice.Plan
		_ = req.JSON(&body)
		name := req.Path[strings.LastIndex(req.Path, "/")+1:]
		body.ID = to.Ptr(webID(subscriptionID, "serverfarms", name))
		body.Name = to.Ptr(name)
		return http.StatusOK, body
	})
}

func onStorageAccounts(transport *test.Transport, subscriptionID string) {
	transport.OnFunc(http.MethodPut, ".*/storageAccounts/[^/]+", func(req test.Request) (int, any) {
		var body armstorage.AccountCreateParameters
		_ = req.JSON(&body)
		name := req.Path[strings.LastIndex(req.Path, "/")+1:]
		return http.StatusOK, armstorage.Account{
			ID:       to.Ptr("/subscriptions/" + subscriptionID + "/resourceGroups/" + resourceGroup + "/providers/Microsoft.Storage/storageAccounts/" + name),
			Name:     to.Ptr(name),
			Location: body.Location,
			Kind:     body.Kind,
			SKU:      body.SKU,
		}
	})
	transport.On(http.MethodPost, ".*/storageAccounts/[^/]+/listKeys", http.StatusOK, armstorage.AccountListKeysResult{
		Keys: []*armstorage.AccountKey{{KeyName: to.Ptr("key1"), Value: to.Ptr("c2VjcmV0")}},
	})
}

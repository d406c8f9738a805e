package appservice

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/appservice/armappservice/v2"
	"github.com/entigolabs/azure-fluent/test"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func appSettingsOf(site *armappservice.Site) map[string]string {
	if site.Properties == nil || site.Properties.SiteConfig == nil {
		return nil
	}
	return lo.Associate(site.Properties.SiteConfig.AppSettings, func(pair *armappservice.NameValuePair) (string, string) {
		return *pair.Name, *pair.Value
	})
}

func TestFunctionAppCreateOnConsumptionPlan(t *testing.T) {
	transport := test.NewTransport()
	manager, subscriptionID := newTestManager(t, transport)
	name := test.Name("func")
	onPlans(transport, subscriptionID)
	onStorageAccounts(transport, subscriptionID)
	fake := newFakeSite(transport, webID(subscriptionID, "sites", name), kindFunctionApp)

	app, err := manager.FunctionApps().Define(name).
		WithRegion("westeurope").
		WithExistingResourceGroup(resourceGroup).
		WithRuntime("node").
		Create(context.Background())
	require.NoError(t, err)

	plans := transport.Requests(http.MethodPut, "/serverfarms/")
	require.Len(t, plans, 1)
	var plan armappservice.Plan
	require.NoError(t, plans[0].JSON(&plan))
	assert.Equal(t, "Y1", *plan.SKU.Name)
	assert.Equal(t, "Dynamic", *plan.SKU.Tier)
	assert.Equal(t, kindFunctionApp, *plan.Kind)

	accounts := transport.Requests(http.MethodPut, "/storageAccounts/")
	require.Len(t, accounts, 1)
	assert.True(t, strings.HasPrefix(accounts[0].Path[strings.LastIndex(accounts[0].Path, "/")+1:], name))

	body := fake.lastBody()
	assert.Equal(t, kindFunctionApp, *body.Kind)
	settings := appSettingsOf(body)
	assert.Contains(t, settings[webJobsStorageSetting], "AccountKey=c2VjcmV0")
	assert.Equal(t, settings[webJobsStorageSetting], settings[contentConnectionSetting])
	assert.True(t, strings.HasPrefix(settings[contentShareSetting], name))
	assert.Equal(t, "~4", settings[extensionVersionSetting])
	assert.Equal(t, "node", settings[workerRuntimeSetting])
	assert.NotContains(t, settings, webJobsDashboardSetting)

	assert.NotNil(t, app.StorageAccount())
	assert.False(t, app.IsInCreateMode())
}

func TestFunctionAppDashboardForRuntimeV1(t *testing.T) {
	transport := test.NewTransport()
	manager, subscriptionID := newTestManager(t, transport)
	name := test.Name("func")
	onPlans(transport, subscriptionID)
	onStorageAccounts(transport, subscriptionID)
	fake := newFakeSite(transport, webID(subscriptionID, "sites", name), kindFunctionApp)

	_, err := manager.FunctionApps().Define(name).
		WithRegion("westeurope").
		WithExistingResourceGroup(resourceGroup).
		WithNewWindowsPlan(StandardS1).
		WithRuntimeVersion("1").
		Create(context.Background())
	require.NoError(t, err)

	settings := appSettingsOf(fake.lastBody())
	assert.Equal(t, "~1", settings[extensionVersionSetting])
	assert.Equal(t, settings[webJobsStorageSetting], settings[webJobsDashboardSetting])
	assert.NotContains(t, settings, contentShareSetting)
	assert.NotContains(t, settings, contentConnectionSetting)
}

func TestFunctionAppSyncTriggers(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr bool
	}{
		{name: "no content", status: http.StatusNoContent},
		{name: "ok is suppressed", status: http.StatusOK},
		{name: "server error", status: http.StatusInternalServerError, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transport := test.NewTransport()
			manager, subscriptionID := newTestManager(t, transport)
			name := test.Name("func")
			transport.On(http.MethodPost, ".*/sites/"+name+"/syncfunctiontriggers", tt.status, nil)
			app := manager.FunctionApps().WrapModel(&armappservice.Site{
				ID:   to.Ptr(webID(subscriptionID, "sites", name)),
				Name: to.Ptr(name),
				Kind: to.Ptr(kindFunctionApp),
			})

			err := app.SyncTriggers(context.Background())

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Len(t, transport.Requests(http.MethodPost, "/syncfunctiontriggers"), 1)
		})
	}
}

func TestFunctionAppMasterKey(t *testing.T) {
	transport := test.NewTransport()
	manager, subscriptionID := newTestManager(t, transport)
	name := test.Name("func")
	transport.On(http.MethodPost, ".*/sites/"+name+"/host/default/listkeys", http.StatusOK, armappservice.HostKeys{
		MasterKey: to.Ptr("master-secret"),
	})
	app := manager.FunctionApps().WrapModel(&armappservice.Site{
		ID:   to.Ptr(webID(subscriptionID, "sites", name)),
		Name: to.Ptr(name),
	})

	key, err := app.MasterKey(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "master-secret", key)
}

func TestGeneratedNames(t *testing.T) {
	name := generatedStorageName("My-Function_App-With-A-Long-Name")
	assert.Len(t, name, 24)
	assert.True(t, strings.HasPrefix(name, "myfunctionappwit"))

	plan := generatedPlanName(strings.Repeat("a", 60))
	assert.Len(t, plan, maxPlanNameLength)
	assert.True(t, strings.HasPrefix(plan, "plan"))
}

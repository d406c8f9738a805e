package appservice

import (
	"context"
	"net/http"
	"testing"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/appservice/armappservice/v2"
	"github.com/entigolabs/azure-fluent/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeploymentSlotFromParentConfiguration(t *testing.T) {
	transport := test.NewTransport()
	manager, subscriptionID := newTestManager(t, transport)
	name := test.Name("app")
	planID := webID(subscriptionID, "serverfarms", "plan1")
	parent := newFakeSite(transport, webID(subscriptionID, "sites", name), "app,linux")
	parent.site.Properties.ServerFarmID = to.Ptr(planID)
	parent.config = &armappservice.SiteConfig{AlwaysOn: to.Ptr(true), LinuxFxVersion: to.Ptr("NODE|18-lts")}
	parent.settings = map[string]*string{"shared": to.Ptr("1"), "sticky": to.Ptr("2"), "override": to.Ptr("parent")}
	parent.connections = map[string]*armappservice.ConnStringValueTypePair{
		"db": {Value: to.Ptr("Server=db"), Type: to.Ptr(armappservice.ConnectionStringType("SQLAzure"))},
	}
	parent.sticky = &armappservice.SlotConfigNames{AppSettingNames: []*string{to.Ptr("sticky")}}
	slotFake := newFakeSite(transport, webID(subscriptionID, "sites", name, "slots", "staging"), "app,linux")

	app := manager.WebApps().WrapModel(parent.site)
	slot, err := app.DeploymentSlots().Define("staging").
		WithConfigurationFromParent().
		WithAppSetting("override", "slot").
		Create(context.Background())
	require.NoError(t, err)

	body := slotFake.lastBody()
	assert.Equal(t, "app,linux", *body.Kind)
	assert.Equal(t, "westeurope", *body.Location)
	assert.Equal(t, planID, *body.Properties.ServerFarmID)
	assert.True(t, *body.Properties.Reserved)
	assert.True(t, *body.Properties.SiteConfig.AlwaysOn)
	assert.Equal(t, "NODE|18-lts", *body.Properties.SiteConfig.LinuxFxVersion)

	assert.Equal(t, map[string]*string{"shared": to.Ptr("1"), "override": to.Ptr("slot")}, slotFake.settings)
	assert.Equal(t, "Server=db", *slotFake.connections["db"].Value)
	assert.Empty(t, transport.Requests(http.MethodPut, "/slotConfigNames"))

	assert.Equal(t, "staging", slot.Name())
	assert.Equal(t, name, slot.Parent())
	assert.Equal(t, resourceGroup, slot.ResourceGroupName())
}

func TestDeploymentSlotBrandNewConfiguration(t *testing.T) {
	transport := test.NewTransport()
	manager, subscriptionID := newTestManager(t, transport)
	name := test.Name("app")
	parent := newFakeSite(transport, webID(subscriptionID, "sites", name), kindApp)
	parent.site.Properties.ServerFarmID = to.Ptr(webID(subscriptionID, "serverfarms", "plan1"))
	slotFake := newFakeSite(transport, webID(subscriptionID, "sites", name, "slots", "blue"), kindApp)

	_, err := manager.WebApps().WrapModel(parent.site).DeploymentSlots().Define("blue").
		Create(context.Background())
	require.NoError(t, err)

	assert.Nil(t, slotFake.lastBody().Properties.SiteConfig)
	assert.Empty(t, transport.Requests(http.MethodPost, "/sites/"+name+"/config/appsettings/list"))
}

func TestDeploymentSlotSwapWithProduction(t *testing.T) {
	transport := test.NewTransport()
	manager, subscriptionID := newTestManager(t, transport)
	name := test.Name("app")
	parent := newFakeSite(transport, webID(subscriptionID, "sites", name), kindApp)
	slotFake := newFakeSite(transport, webID(subscriptionID, "sites", name, "slots", "staging"), kindApp)
	transport.On(http.MethodPost, ".*/sites/"+name+"/slots/staging/slotsswap", http.StatusOK, nil)

	slot := manager.WebApps().WrapModel(parent.site).DeploymentSlots().WrapModel(slotFake.site)
	require.NoError(t, slot.Swap(context.Background(), ProductionSlot))

	requests := transport.Requests(http.MethodPost, "/slotsswap")
	require.Len(t, requests, 1)
	var body armappservice.CsmSlotEntity
	require.NoError(t, requests[0].JSON(&body))
	assert.Equal(t, "production", *body.TargetSlot)
}

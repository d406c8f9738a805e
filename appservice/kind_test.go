package appservice

import (
	"testing"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/appservice/armappservice/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSiteKindPartition(t *testing.T) {
	tests := []struct {
		kind        *string
		webApp      bool
		functionApp bool
	}{
		{kind: nil, webApp: true},
		{kind: to.Ptr(""), webApp: true},
		{kind: to.Ptr("app"), webApp: true},
		{kind: to.Ptr("app,linux"), webApp: true},
		{kind: to.Ptr("app,linux,container"), webApp: true},
		{kind: to.Ptr("functionapp"), functionApp: true},
		{kind: to.Ptr("functionapp,linux"), functionApp: true},
		{kind: to.Ptr("FunctionApp, Linux"), functionApp: true},
		{kind: to.Ptr("api"), webApp: false},
	}
	for _, tt := range tests {
		name := "<nil>"
		if tt.kind != nil {
			name = *tt.kind
		}
		t.Run(name, func(t *testing.T) {
			site := &armappservice.Site{Kind: tt.kind}
			assert.Equal(t, tt.webApp, IsWebApp(site))
			assert.Equal(t, tt.functionApp, IsFunctionApp(site))
		})
	}
}

func TestSlotName(t *testing.T) {
	assert.Equal(t, "staging", slotName("myapp/staging"))
	assert.Equal(t, "staging", slotName("staging"))
	assert.Equal(t, "", slotName(""))
}

func TestSiteKind(t *testing.T) {
	assert.Equal(t, "app", siteKind(kindApp, false, false))
	assert.Equal(t, "app,linux", siteKind(kindApp, true, false))
	assert.Equal(t, "functionapp,linux,container", siteKind(kindFunctionApp, true, true))
}

func TestSmartCompletionPrivateRegistryImage(t *testing.T) {
	assert.Equal(t, "myregistry.io/myrepo/image:tag",
		SmartCompletionPrivateRegistryImage("myrepo/image:tag", "https://myregistry.io"))
	assert.Equal(t, "myregistry.io/myrepo/image:tag",
		SmartCompletionPrivateRegistryImage("myregistry.io/myrepo/image:tag", "https://myregistry.io"))
	assert.Equal(t, "other.azurecr.io/image:tag",
		SmartCompletionPrivateRegistryImage("other.azurecr.io/image:tag", "https://myregistry.io"))
	assert.Equal(t, "myregistry.io/image",
		SmartCompletionPrivateRegistryImage("image", "myregistry.io"))
}

func TestParsePricingTier(t *testing.T) {
	tests := map[string]PricingTier{
		"F1":   FreeF1,
		"D1":   SharedD1,
		"B2":   BasicB2,
		"S1":   StandardS1,
		"P1v2": PremiumP1v2,
		"P3v3": PremiumP3v3,
		"Y1":   ConsumptionY1,
		"EP2":  ElasticPremium2,
	}
	for size, expected := range tests {
		t.Run(size, func(t *testing.T) {
			tier, err := ParsePricingTier(size)
			require.NoError(t, err)
			assert.Equal(t, expected, tier)
		})
	}
	_, err := ParsePricingTier("X9")
	assert.Error(t, err)
}

func TestPricingTierKinds(t *testing.T) {
	assert.True(t, ConsumptionY1.IsConsumption())
	assert.True(t, ElasticPremium1.IsElasticPremium())
	assert.False(t, BasicB1.IsConsumption())
	assert.Equal(t, kindFunctionApp, planKind(ConsumptionY1, OperatingSystemWindows))
	assert.Equal(t, "elastic", planKind(ElasticPremium1, OperatingSystemWindows))
	assert.Equal(t, kindLinux, planKind(BasicB1, OperatingSystemLinux))
	assert.Equal(t, kindApp, planKind(StandardS1, OperatingSystemWindows))
}

func TestPhpVersionDefaultsToOff(t *testing.T) {
	site := &siteBase[struct{}]{inner: &armappservice.Site{}}
	assert.Equal(t, PhpVersionOff, site.PhpVersion())

	site.inner.Properties = &armappservice.SiteProperties{SiteConfig: &armappservice.SiteConfig{PhpVersion: to.Ptr("8.2")}}
	assert.Equal(t, PhpVersion82, site.PhpVersion())
}

func TestWebContainerSplit(t *testing.T) {
	container, version := Tomcat90.split()
	assert.Equal(t, "TOMCAT", container)
	assert.Equal(t, "9.0", version)
	assert.Equal(t, "NODE|18-lts", NodeJS18.String())
}

package appservice

import (
	"fmt"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/appservice/armappservice/v2"
	"github.com/samber/lo"
)

type PricingTier struct {
	Tier string
	Size string
}

var (
	FreeF1          = PricingTier{Tier: "Free", Size: "F1"}
	SharedD1        = PricingTier{Tier: "Shared", Size: "D1"}
	BasicB1         = PricingTier{Tier: "Basic", Size: "B1"}
	BasicB2         = PricingTier{Tier: "Basic", Size: "B2"}
	BasicB3         = PricingTier{Tier: "Basic", Size: "B3"}
	StandardS1      = PricingTier{Tier: "Standard", Size: "S1"}
	StandardS2      = PricingTier{Tier: "Standard", Size: "S2"}
	StandardS3      = PricingTier{Tier: "Standard", Size: "S3"}
	PremiumP1v2     = PricingTier{Tier: "PremiumV2", Size: "P1v2"}
	PremiumP2v2     = PricingTier{Tier: "PremiumV2", Size: "P2v2"}
	PremiumP3v2     = PricingTier{Tier: "PremiumV2", Size: "P3v2"}
	PremiumP1v3     = PricingTier{Tier: "PremiumV3", Size: "P1v3"}
	PremiumP2v3     = PricingTier{Tier: "PremiumV3", Size: "P2v3"}
	PremiumP3v3     = PricingTier{Tier: "PremiumV3", Size: "P3v3"}
	ConsumptionY1   = PricingTier{Tier: "Dynamic", Size: "Y1"}
	ElasticPremium1 = PricingTier{Tier: "ElasticPremium", Size: "EP1"}
	ElasticPremium2 = PricingTier{Tier: "ElasticPremium", Size: "EP2"}
	ElasticPremium3 = PricingTier{Tier: "ElasticPremium", Size: "EP3"}
)

var tierPrefixes = []struct {
	prefix string
	suffix string
	tier   string
}{
	{prefix: "ep", tier: "ElasticPremium"},
	{prefix: "p", suffix: "v3", tier: "PremiumV3"},
	{prefix: "p", suffix: "v2", tier: "PremiumV2"},
	{prefix: "p", tier: "Premium"},
	{prefix: "f", tier: "Free"},
	{prefix: "d", tier: "Shared"},
	{prefix: "b", tier: "Basic"},
	{prefix: "s", tier: "Standard"},
	{prefix: "y", tier: "Dynamic"},
	{prefix: "i", tier: "Isolated"},
}

// ParsePricingTier resolves the tier of a sku size such as "B1", "P1v3" or "EP1".
func ParsePricingTier(size string) (PricingTier, error) {
	lower := strings.ToLower(strings.TrimSpace(size))
	for _, candidate := range tierPrefixes {
		if strings.HasPrefix(lower, candidate.prefix) && strings.HasSuffix(lower, candidate.suffix) {
			return PricingTier{Tier: candidate.tier, Size: strings.TrimSpace(size)}, nil
		}
	}
	return PricingTier{}, fmt.Errorf("unknown app service plan size %s", size)
}

func (t PricingTier) String() string {
	return t.Tier + "_" + t.Size
}

func (t PricingTier) IsConsumption() bool {
	return strings.EqualFold(t.Tier, ConsumptionY1.Tier)
}

func (t PricingTier) IsElasticPremium() bool {
	return strings.EqualFold(t.Tier, ElasticPremium1.Tier)
}

func (t PricingTier) sku(capacity *int32) *armappservice.SKUDescription {
	return &armappservice.SKUDescription{
		Name:     to.Ptr(t.Size),
		Tier:     to.Ptr(t.Tier),
		Capacity: capacity,
	}
}

func pricingTierOf(sku *armappservice.SKUDescription) PricingTier {
	if sku == nil {
		return PricingTier{}
	}
	return PricingTier{Tier: lo.FromPtr(sku.Tier), Size: lo.FromPtr(sku.Name)}
}

type OperatingSystem string

const (
	OperatingSystemWindows OperatingSystem = "Windows"
	OperatingSystemLinux   OperatingSystem = "Linux"
)

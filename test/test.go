package test

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
)

func AddFakeConfigTypes() {
	gofakeit.AddFuncLookup("resourcename", gofakeit.Info{
		Category:    "custom",
		Description: "Random lowercase Azure resource name",
		Example:     "webapp1a2b3c",
		Output:      "string",
		Generate: func(r *rand.Rand, m *gofakeit.MapParams, info *gofakeit.Info) (interface{}, error) {
			return Name("res"), nil
		},
	})
	gofakeit.AddFuncLookup("region", gofakeit.Info{
		Category:    "custom",
		Description: "Random Azure region name",
		Example:     "westeurope",
		Output:      "string",
		Generate: func(r *rand.Rand, m *gofakeit.MapParams, info *gofakeit.Info) (interface{}, error) {
			return Region(), nil
		},
	})
}

// Name returns a random lowercase alphanumeric resource name with the given prefix.
func Name(prefix string) string {
	return prefix + strings.ToLower(gofakeit.Password(true, false, true, false, false, 8))
}

func Region() string {
	return gofakeit.RandomString([]string{"westeurope", "northeurope", "eastus", "westus2", "swedencentral"})
}

func SubscriptionID() string {
	return uuid.NewString()
}

func ResourceGroupID(subscriptionID, resourceGroup string) string {
	return fmt.Sprintf("/subscriptions/%s/resourceGroups/%s", subscriptionID, resourceGroup)
}

package appservice

import (
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/appservice/armappservice/v2"
	"github.com/samber/lo"
)

const (
	kindApp         = "app"
	kindFunctionApp = "functionapp"
	kindLinux       = "linux"
	kindContainer   = "container"
)

func kindTokens(kind *string) []string {
	if kind == nil || *kind == "" {
		return nil
	}
	return lo.FilterMap(strings.Split(*kind, ","), func(token string, _ int) (string, bool) {
		token = strings.ToLower(strings.TrimSpace(token))
		return token, token != ""
	})
}

// IsWebApp matches sites without a kind or whose kind tokens contain "app".
func IsWebApp(site *armappservice.Site) bool {
	tokens := kindTokens(site.Kind)
	return len(tokens) == 0 || lo.Contains(tokens, kindApp)
}

func IsFunctionApp(site *armappservice.Site) bool {
	return lo.Contains(kindTokens(site.Kind), kindFunctionApp)
}

func siteKind(base string, linux, container bool) string {
	kind := base
	if linux {
		kind += "," + kindLinux
	}
	if container {
		kind += "," + kindContainer
	}
	return kind
}

// slotName strips the "parent/" prefix ARM reports slot names with.
func slotName(name string) string {
	parts := strings.Split(name, "/")
	return parts[len(parts)-1]
}

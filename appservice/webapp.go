package appservice

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/appservice/armappservice/v2"
	"github.com/entigolabs/azure-fluent/arm"
	"github.com/entigolabs/azure-fluent/fluent"
	"github.com/samber/lo"
)

type WebApps struct {
	*fluent.Collection[armappservice.Site, *WebApp]
	manager *Manager
}

func (w *WebApps) Define(name string) *WebApp {
	return w.newWebApp(&armappservice.Site{Name: to.Ptr(name)})
}

func (w *WebApps) WrapModel(inner *armappservice.Site) *WebApp {
	return w.newWebApp(inner)
}

func (w *WebApps) newWebApp(inner *armappservice.Site) *WebApp {
	app := &WebApp{}
	sites, _ := w.manager.siteResources()
	app.siteBase = newSiteBase(app, w.manager, sites, inner, slotName(lo.FromPtr(inner.Name)))
	app.kind = kindApp
	return app
}

// WebApp is the fluent wrapper of a Microsoft.Web/sites resource of kind app.
type WebApp struct {
	*siteBase[*WebApp]
}

func (a *WebApp) DeploymentSlots() *DeploymentSlots {
	return newDeploymentSlots(a.manager, a)
}

// Swap swaps the production site with the given slot.
func (a *WebApp) Swap(ctx context.Context, slot string) error {
	return swapSlots(ctx, a.siteBase, slot)
}

func swapSlots[W any](ctx context.Context, site *siteBase[W], target string) error {
	path, err := site.path()
	if err != nil {
		return err
	}
	_, err = arm.DoLongRunning[struct{}](ctx, site.resources.Client(), http.MethodPost, path+"/slotsswap", APIVersion,
		armappservice.CsmSlotEntity{TargetSlot: to.Ptr(target), PreserveVnet: to.Ptr(true)})
	if err != nil {
		return fmt.Errorf("failed to swap %s with %s: %w", site.Name(), target, err)
	}
	log.Printf("Swapped %s with %s\n", site.Name(), target)
	_, err = site.Refresh(ctx)
	return err
}

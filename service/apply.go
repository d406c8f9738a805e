package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/compute/armcompute/v2"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/storage/armstorage"
	"github.com/entigolabs/azure-fluent/appservice"
	"github.com/entigolabs/azure-fluent/arm"
	"github.com/entigolabs/azure-fluent/azure"
	"github.com/entigolabs/azure-fluent/compute"
	"github.com/entigolabs/azure-fluent/model"
	"github.com/entigolabs/azure-fluent/storage"
	"github.com/samber/lo"
)

const defaultAddressSpace = "10.0.0.0/24"

// Applier creates the resources declared in a config or brings existing ones up to date.
type Applier struct {
	azure  *azure.Azure
	config model.Config
}

func NewApplier(client *azure.Azure, config model.Config) *Applier {
	return &Applier{azure: client, config: config}
}

// Apply processes the config in dependency order: resource groups, storage accounts, plans, apps,
// availability sets, disks and virtual machines.
func (a *Applier) Apply(ctx context.Context) error {
	steps := []struct {
		kind  string
		apply func(context.Context) error
	}{
		{"resource groups", a.applyResourceGroups},
		{"storage accounts", a.applyStorageAccounts},
		{"plans", a.applyPlans},
		{"web apps", a.applyWebApps},
		{"function apps", a.applyFunctionApps},
		{"availability sets", a.applyAvailabilitySets},
		{"disks", a.applyDisks},
		{"virtual machines", a.applyVirtualMachines},
	}
	for _, step := range steps {
		if err := step.apply(ctx); err != nil {
			return fmt.Errorf("failed to apply %s: %w", step.kind, err)
		}
	}
	return nil
}

func getOrDefine[W any](get func() (W, error), define func() W) (W, bool, error) {
	existing, err := get()
	if err == nil {
		return existing, false, nil
	}
	if !arm.IsNotFound(err) {
		var zero W
		return zero, false, err
	}
	return define(), true, nil
}

func (a *Applier) applyResourceGroups(ctx context.Context) error {
	groups := a.azure.ResourceGroups()
	for _, entry := range a.config.ResourceGroups {
		exists, err := groups.Exists(ctx, entry.Name)
		if err != nil {
			return err
		}
		tags := a.config.ResourceTags(entry.Tags)
		if exists {
			group, err := groups.GetByName(ctx, entry.Name)
			if err != nil {
				return err
			}
			_, err = group.Update().WithTags(tags).Apply(ctx)
			if err != nil {
				return err
			}
			continue
		}
		_, err = groups.Define(entry.Name).
			WithRegion(a.config.ResourceLocation(entry.Location)).
			WithTags(tags).
			Create(ctx)
		if err != nil {
			return err
		}
	}
	return nil
}

func (a *Applier) applyStorageAccounts(ctx context.Context) error {
	accounts := a.azure.StorageAccounts()
	for _, entry := range a.config.StorageAccounts {
		account, creating, err := getOrDefine(
			func() (*storage.StorageAccount, error) {
				return accounts.GetByResourceGroup(ctx, entry.ResourceGroup, entry.Name)
			},
			func() *storage.StorageAccount {
				return accounts.Define(entry.Name).
					WithRegion(a.config.ResourceLocation(entry.Location)).
					WithExistingResourceGroup(entry.ResourceGroup).
					WithGeneralPurposeAccountKindV2()
			})
		if err != nil {
			return err
		}
		if !creating {
			account = account.Update()
		}
		account = account.WithTags(a.config.ResourceTags(entry.Tags))
		if entry.Sku != "" {
			account = account.WithSku(armstorage.SKUName(entry.Sku))
		}
		if entry.HTTPSOnly != nil && *entry.HTTPSOnly {
			account = account.WithOnlyHTTPSTraffic()
		} else if entry.HTTPSOnly != nil {
			account = account.WithHTTPAndHTTPSTraffic()
		}
		if creating {
			account, err = account.Create(ctx)
		} else {
			account, err = account.Apply(ctx)
		}
		if err != nil {
			return err
		}
		for _, name := range entry.Containers {
			if _, err = account.BlobContainers().Define(name).Create(ctx); err != nil {
				return err
			}
		}
	}
	return nil
}

func (a *Applier) applyPlans(ctx context.Context) error {
	plans := a.azure.AppServicePlans()
	for _, entry := range a.config.Plans {
		tier, err := appservice.ParsePricingTier(entry.PricingTier)
		if err != nil {
			return err
		}
		plan, creating, err := getOrDefine(
			func() (*appservice.AppServicePlan, error) {
				return plans.GetByResourceGroup(ctx, entry.ResourceGroup, entry.Name)
			},
			func() *appservice.AppServicePlan {
				return plans.Define(entry.Name).
					WithRegion(a.config.ResourceLocation(entry.Location)).
					WithExistingResourceGroup(entry.ResourceGroup).
					WithOperatingSystem(operatingSystem(entry.OperatingSystem))
			})
		if err != nil {
			return err
		}
		if !creating {
			plan = plan.Update()
		}
		plan = plan.WithPricingTier(tier).WithTags(a.config.ResourceTags(entry.Tags))
		if entry.Capacity > 0 {
			plan = plan.WithCapacity(entry.Capacity)
		}
		if creating {
			_, err = plan.Create(ctx)
		} else {
			_, err = plan.Apply(ctx)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func operatingSystem(value string) appservice.OperatingSystem {
	if strings.EqualFold(value, string(appservice.OperatingSystemLinux)) {
		return appservice.OperatingSystemLinux
	}
	return appservice.OperatingSystemWindows
}

func (a *Applier) applyWebApps(ctx context.Context) error {
	apps := a.azure.WebApps()
	for _, entry := range a.config.WebApps {
		app, creating, err := getOrDefine(
			func() (*appservice.WebApp, error) {
				return apps.GetByResourceGroup(ctx, entry.ResourceGroup, entry.Name)
			},
			func() *appservice.WebApp {
				return apps.Define(entry.Name).
					WithRegion(a.config.ResourceLocation(entry.Location)).
					WithExistingResourceGroup(entry.ResourceGroup)
			})
		if err != nil {
			return err
		}
		if creating {
			app, err = a.withWebAppPlan(ctx, app, entry)
			if err != nil {
				return err
			}
		} else {
			app = app.Update()
		}
		app = withSiteSettings(app, a.config, entry.Site)
		if entry.RuntimeStack != "" {
			stack, version, _ := strings.Cut(entry.RuntimeStack, "|")
			app = app.WithBuiltInImage(appservice.RuntimeStack{Stack: stack, Version: version})
		}
		if entry.DockerImage != "" {
			app = app.WithPublicDockerHubImage(entry.DockerImage)
		}
		if entry.StartUpCommand != "" {
			app = app.WithStartUpCommand(entry.StartUpCommand)
		}
		if creating {
			_, err = app.Create(ctx)
		} else {
			_, err = app.Apply(ctx)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (a *Applier) withWebAppPlan(ctx context.Context, app *appservice.WebApp, entry model.WebApp) (*appservice.WebApp, error) {
	if entry.Plan != "" {
		plan, err := a.azure.AppServicePlans().GetByResourceGroup(ctx, entry.ResourceGroup, entry.Plan)
		if err != nil {
			return nil, fmt.Errorf("plan %s of web app %s: %w", entry.Plan, entry.Name, err)
		}
		return app.WithExistingAppServicePlan(plan), nil
	}
	tier, err := appservice.ParsePricingTier(entry.PricingTier)
	if err != nil {
		return nil, err
	}
	if entry.Linux {
		return app.WithNewLinuxPlan(tier), nil
	}
	return app.WithNewWindowsPlan(tier), nil
}

type siteSettings[W any] interface {
	WithTags(map[string]string) W
	WithAppSettings(map[string]string) W
	WithAlwaysOn(bool) W
	WithHTTPSOnly(bool) W
	WithSystemAssignedManagedServiceIdentity() W
}

func withSiteSettings[W siteSettings[W]](site W, config model.Config, entry model.Site) W {
	site = site.WithTags(config.ResourceTags(entry.Tags))
	if len(entry.AppSettings) > 0 {
		site = site.WithAppSettings(entry.AppSettings)
	}
	if entry.AlwaysOn != nil {
		site = site.WithAlwaysOn(*entry.AlwaysOn)
	}
	if entry.HTTPSOnly != nil {
		site = site.WithHTTPSOnly(*entry.HTTPSOnly)
	}
	if entry.SystemAssignedIdentity {
		site = site.WithSystemAssignedManagedServiceIdentity()
	}
	return site
}

func (a *Applier) applyFunctionApps(ctx context.Context) error {
	apps := a.azure.FunctionApps()
	for _, entry := range a.config.FunctionApps {
		app, creating, err := getOrDefine(
			func() (*appservice.FunctionApp, error) {
				return apps.GetByResourceGroup(ctx, entry.ResourceGroup, entry.Name)
			},
			func() *appservice.FunctionApp {
				return apps.Define(entry.Name).
					WithRegion(a.config.ResourceLocation(entry.Location)).
					WithExistingResourceGroup(entry.ResourceGroup)
			})
		if err != nil {
			return err
		}
		if creating {
			app, err = a.withFunctionAppDependencies(ctx, app, entry)
			if err != nil {
				return err
			}
		} else {
			app = app.Update()
		}
		app = withSiteSettings(app, a.config, entry.Site)
		if entry.Runtime != "" {
			app = app.WithRuntime(entry.Runtime)
		}
		if entry.RuntimeVersion != "" {
			app = app.WithRuntimeVersion(entry.RuntimeVersion)
		}
		if creating {
			_, err = app.Create(ctx)
		} else {
			_, err = app.Apply(ctx)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (a *Applier) withFunctionAppDependencies(ctx context.Context, app *appservice.FunctionApp, entry model.FunctionApp) (*appservice.FunctionApp, error) {
	if entry.StorageAccount != "" {
		account, err := a.azure.StorageAccounts().GetByResourceGroup(ctx, entry.ResourceGroup, entry.StorageAccount)
		if err != nil {
			return nil, fmt.Errorf("storage account %s of function app %s: %w", entry.StorageAccount, entry.Name, err)
		}
		app = app.WithExistingStorageAccount(account)
	}
	switch {
	case entry.Plan != "":
		plan, err := a.azure.AppServicePlans().GetByResourceGroup(ctx, entry.ResourceGroup, entry.Plan)
		if err != nil {
			return nil, fmt.Errorf("plan %s of function app %s: %w", entry.Plan, entry.Name, err)
		}
		return app.WithExistingAppServicePlan(plan), nil
	case entry.PricingTier != "":
		tier, err := appservice.ParsePricingTier(entry.PricingTier)
		if err != nil {
			return nil, err
		}
		if tier.IsElasticPremium() {
			return app.WithNewElasticPremiumPlan(tier), nil
		}
		if tier.IsConsumption() {
			return app.WithNewConsumptionPlan(), nil
		}
		return app.WithNewWindowsPlan(tier), nil
	default:
		return app.WithNewConsumptionPlan(), nil
	}
}

func (a *Applier) applyAvailabilitySets(ctx context.Context) error {
	sets := a.azure.AvailabilitySets()
	for _, entry := range a.config.AvailabilitySets {
		set, creating, err := getOrDefine(
			func() (*compute.AvailabilitySet, error) {
				return sets.GetByResourceGroup(ctx, entry.ResourceGroup, entry.Name)
			},
			func() *compute.AvailabilitySet {
				return sets.Define(entry.Name).
					WithRegion(a.config.ResourceLocation(entry.Location)).
					WithExistingResourceGroup(entry.ResourceGroup)
			})
		if err != nil {
			return err
		}
		if !creating {
			set = set.Update()
		}
		set = set.WithTags(a.config.ResourceTags(entry.Tags))
		if entry.FaultDomainCount > 0 {
			set = set.WithFaultDomainCount(entry.FaultDomainCount)
		}
		if entry.UpdateDomainCount > 0 {
			set = set.WithUpdateDomainCount(entry.UpdateDomainCount)
		}
		if creating {
			_, err = set.Create(ctx)
		} else {
			_, err = set.Apply(ctx)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (a *Applier) applyDisks(ctx context.Context) error {
	disks := a.azure.Disks()
	for _, entry := range a.config.Disks {
		disk, creating, err := getOrDefine(
			func() (*compute.Disk, error) {
				return disks.GetByResourceGroup(ctx, entry.ResourceGroup, entry.Name)
			},
			func() *compute.Disk {
				return disks.Define(entry.Name).
					WithRegion(a.config.ResourceLocation(entry.Location)).
					WithExistingResourceGroup(entry.ResourceGroup).
					WithData()
			})
		if err != nil {
			return err
		}
		if !creating {
			disk = disk.Update()
		}
		disk = disk.WithTags(a.config.ResourceTags(entry.Tags))
		if creating || disk.SizeInGB() < entry.SizeInGB {
			disk = disk.WithSizeInGB(entry.SizeInGB)
		}
		if entry.Sku != "" {
			disk = disk.WithSku(compute.DiskSkuType(entry.Sku))
		}
		if creating {
			_, err = disk.Create(ctx)
		} else {
			_, err = disk.Apply(ctx)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (a *Applier) applyVirtualMachines(ctx context.Context) error {
	vms := a.azure.VirtualMachines()
	for _, entry := range a.config.VirtualMachines {
		vm, err := vms.GetByResourceGroup(ctx, entry.ResourceGroup, entry.Name)
		if err == nil {
			vm = vm.Update().WithTags(a.config.ResourceTags(entry.Tags))
			if entry.Size != "" {
				vm = vm.WithSize(entry.Size)
			}
			if _, err = vm.Apply(ctx); err != nil {
				return err
			}
			continue
		}
		if !arm.IsNotFound(err) {
			return err
		}
		vm, err = a.defineVirtualMachine(ctx, entry)
		if err != nil {
			return err
		}
		if _, err = vm.Create(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (a *Applier) defineVirtualMachine(ctx context.Context, entry model.VirtualMachine) (*compute.VirtualMachine, error) {
	image, err := compute.ParseImage(entry.Image)
	if err != nil {
		return nil, err
	}
	vm := a.azure.VirtualMachines().Define(entry.Name).
		WithRegion(a.config.ResourceLocation(entry.Location)).
		WithExistingResourceGroup(entry.ResourceGroup).
		WithTags(a.config.ResourceTags(entry.Tags)).
		WithNewPrimaryNetwork(lo.Ternary(entry.AddressSpace != "", entry.AddressSpace, defaultAddressSpace))
	if image.IsWindows() {
		vm = vm.WithPopularWindowsImage(image).
			WithAdminUsername(entry.AdminUsername).
			WithAdminPassword(entry.AdminPassword)
	} else {
		vm = vm.WithPopularLinuxImage(image).WithRootUsername(entry.AdminUsername)
		if entry.AdminPassword != "" {
			vm = vm.WithRootPassword(entry.AdminPassword)
		}
		if entry.SSHPublicKey != "" {
			vm = vm.WithSSH(entry.SSHPublicKey)
		}
	}
	if entry.Size != "" {
		vm = vm.WithSize(entry.Size)
	}
	if entry.AvailabilitySet != "" {
		set, err := a.azure.AvailabilitySets().GetByResourceGroup(ctx, entry.ResourceGroup, entry.AvailabilitySet)
		if err != nil {
			return nil, fmt.Errorf("availability set %s of virtual machine %s: %w", entry.AvailabilitySet, entry.Name, err)
		}
		vm = vm.WithExistingAvailabilitySet(set)
	}
	for _, dataDisk := range entry.DataDisks {
		lun := compute.AutoLun
		if dataDisk.Lun != nil {
			lun = *dataDisk.Lun
		}
		if dataDisk.Disk == "" {
			vm = vm.WithNewDataDisk(dataDisk.SizeInGB, lun, armcompute.CachingTypesReadWrite)
			continue
		}
		disk, err := a.azure.Disks().GetByResourceGroup(ctx, entry.ResourceGroup, dataDisk.Disk)
		if err != nil {
			return nil, fmt.Errorf("disk %s of virtual machine %s: %w", dataDisk.Disk, entry.Name, err)
		}
		vm = vm.WithExistingDataDisk(disk, lun, armcompute.CachingTypesReadWrite)
	}
	if entry.SystemAssignedIdentity {
		vm = vm.WithSystemAssignedManagedServiceIdentity()
	}
	log.Printf("Creating virtual machine %s from image %s\n", entry.Name, entry.Image)
	return vm, nil
}

package service

import (
	"errors"
	"fmt"
	"os"

	"github.com/entigolabs/azure-fluent/appservice"
	"github.com/entigolabs/azure-fluent/common"
	"github.com/entigolabs/azure-fluent/compute"
	"github.com/entigolabs/azure-fluent/model"
	"gopkg.in/yaml.v3"
)

func GetConfig(configFile string, defaults common.Azure) (model.Config, error) {
	fileBytes, err := os.ReadFile(configFile)
	if err != nil {
		return model.Config{}, err
	}
	var config model.Config
	err = yaml.Unmarshal(fileBytes, &config)
	if err != nil {
		return model.Config{}, fmt.Errorf("failed to parse config %s: %w", configFile, err)
	}
	config = withDefaults(config, defaults)
	return config, validateConfig(config)
}

func withDefaults(config model.Config, defaults common.Azure) model.Config {
	if config.Location == "" {
		config.Location = defaults.Location
	}
	if defaults.ResourceGroup == "" {
		return config
	}
	setGroup := func(resource *model.Resource) {
		if resource.ResourceGroup == "" {
			resource.ResourceGroup = defaults.ResourceGroup
		}
	}
	for i := range config.StorageAccounts {
		setGroup(&config.StorageAccounts[i].Resource)
	}
	for i := range config.Plans {
		setGroup(&config.Plans[i].Resource)
	}
	for i := range config.WebApps {
		setGroup(&config.WebApps[i].Resource)
	}
	for i := range config.FunctionApps {
		setGroup(&config.FunctionApps[i].Resource)
	}
	for i := range config.AvailabilitySets {
		setGroup(&config.AvailabilitySets[i].Resource)
	}
	for i := range config.Disks {
		setGroup(&config.Disks[i].Resource)
	}
	for i := range config.VirtualMachines {
		setGroup(&config.VirtualMachines[i].Resource)
	}
	return config
}

func validateConfig(config model.Config) error {
	var errs []error
	groups := model.NewSet[string]()
	for _, group := range config.ResourceGroups {
		if group.Name == "" {
			errs = append(errs, errors.New("resource group name must be set"))
		} else if groups.Contains(group.Name) {
			errs = append(errs, fmt.Errorf("resource group %s is not unique", group.Name))
		}
		groups.Add(group.Name)
		if config.ResourceLocation(group.Location) == "" {
			errs = append(errs, fmt.Errorf("resource group %s has no location", group.Name))
		}
	}
	errs = append(errs, validateResources(config, "storage account", config.StorageAccounts,
		func(a model.StorageAccount) model.Resource { return a.Resource })...)
	errs = append(errs, validateResources(config, "plan", config.Plans,
		func(p model.Plan) model.Resource { return p.Resource })...)
	errs = append(errs, validateResources(config, "web app", config.WebApps,
		func(a model.WebApp) model.Resource { return a.Resource })...)
	errs = append(errs, validateResources(config, "function app", config.FunctionApps,
		func(a model.FunctionApp) model.Resource { return a.Resource })...)
	errs = append(errs, validateResources(config, "availability set", config.AvailabilitySets,
		func(a model.AvailabilitySet) model.Resource { return a.Resource })...)
	errs = append(errs, validateResources(config, "disk", config.Disks,
		func(d model.Disk) model.Resource { return d.Resource })...)
	errs = append(errs, validateResources(config, "virtual machine", config.VirtualMachines,
		func(v model.VirtualMachine) model.Resource { return v.Resource })...)

	for _, plan := range config.Plans {
		if _, err := appservice.ParsePricingTier(plan.PricingTier); err != nil {
			errs = append(errs, fmt.Errorf("plan %s: %w", plan.Name, err))
		}
	}
	for _, app := range config.WebApps {
		if app.Plan == "" && app.PricingTier == "" {
			errs = append(errs, fmt.Errorf("web app %s must set plan or pricing_tier", app.Name))
		}
		errs = append(errs, validateSite(app.Site)...)
	}
	for _, app := range config.FunctionApps {
		errs = append(errs, validateSite(app.Site)...)
	}
	for _, disk := range config.Disks {
		if disk.SizeInGB <= 0 {
			errs = append(errs, fmt.Errorf("disk %s must set size_gb", disk.Name))
		}
	}
	for _, vm := range config.VirtualMachines {
		if _, err := compute.ParseImage(vm.Image); err != nil {
			errs = append(errs, fmt.Errorf("virtual machine %s: %w", vm.Name, err))
		}
		if vm.AdminUsername == "" {
			errs = append(errs, fmt.Errorf("virtual machine %s must set admin_username", vm.Name))
		}
		if vm.AdminPassword == "" && vm.SSHPublicKey == "" {
			errs = append(errs, fmt.Errorf("virtual machine %s must set admin_password or ssh_public_key", vm.Name))
		}
	}
	return errors.Join(errs...)
}

func validateSite(site model.Site) []error {
	if site.Plan != "" && site.PricingTier != "" {
		return []error{fmt.Errorf("%s can not set both plan and pricing_tier", site.Name)}
	}
	if site.PricingTier == "" {
		return nil
	}
	if _, err := appservice.ParsePricingTier(site.PricingTier); err != nil {
		return []error{fmt.Errorf("%s: %w", site.Name, err)}
	}
	return nil
}

func validateResources[T any](config model.Config, kind string, entries []T, resource func(T) model.Resource) []error {
	var errs []error
	names := model.NewSet[string]()
	for _, entry := range entries {
		r := resource(entry)
		if r.Name == "" {
			errs = append(errs, fmt.Errorf("%s name must be set", kind))
			continue
		}
		if r.ResourceGroup == "" {
			errs = append(errs, fmt.Errorf("%s %s must set resource_group", kind, r.Name))
		}
		key := r.ResourceGroup + "/" + r.Name
		if names.Contains(key) {
			errs = append(errs, fmt.Errorf("%s %s is not unique", kind, key))
		}
		names.Add(key)
		if config.ResourceLocation(r.Location) == "" {
			errs = append(errs, fmt.Errorf("%s %s has no location", kind, r.Name))
		}
	}
	return errs
}

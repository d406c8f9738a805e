package model

import "github.com/samber/lo"

type Config struct {
	Location         string            `yaml:"location,omitempty" fake:"{region}"`
	Tags             map[string]string `yaml:"tags,omitempty"`
	ResourceGroups   []ResourceGroup   `yaml:"resource_groups,omitempty" fakesize:"1"`
	StorageAccounts  []StorageAccount  `yaml:"storage_accounts,omitempty" fakesize:"1"`
	Plans            []Plan            `yaml:"plans,omitempty" fakesize:"1"`
	WebApps          []WebApp          `yaml:"web_apps,omitempty" fakesize:"1"`
	FunctionApps     []FunctionApp     `yaml:"function_apps,omitempty" fakesize:"1"`
	AvailabilitySets []AvailabilitySet `yaml:"availability_sets,omitempty" fakesize:"1"`
	Disks            []Disk            `yaml:"disks,omitempty" fakesize:"1"`
	VirtualMachines  []VirtualMachine  `yaml:"virtual_machines,omitempty" fakesize:"1"`
}

// Resource holds the fields shared by every resource group scoped entry.
type Resource struct {
	Name          string            `yaml:"name" fake:"{resourcename}"`
	ResourceGroup string            `yaml:"resource_group" fake:"{resourcename}"`
	Location      string            `yaml:"location,omitempty" fake:"skip"`
	Tags          map[string]string `yaml:"tags,omitempty"`
}

type ResourceGroup struct {
	Name     string            `yaml:"name" fake:"{resourcename}"`
	Location string            `yaml:"location,omitempty" fake:"skip"`
	Tags     map[string]string `yaml:"tags,omitempty"`
}

type StorageAccount struct {
	Resource   `yaml:",inline"`
	Sku        string   `yaml:"sku,omitempty" fake:"{randomstring:[Standard_LRS,Standard_GRS]}"`
	HTTPSOnly  *bool    `yaml:"https_only,omitempty"`
	Containers []string `yaml:"containers,omitempty" fakesize:"2"`
}

type Plan struct {
	Resource        `yaml:",inline"`
	PricingTier     string `yaml:"pricing_tier" fake:"{randomstring:[B1,S1,P1v2]}"`
	OperatingSystem string `yaml:"os,omitempty" fake:"{randomstring:[linux,windows]}"`
	Capacity        int32  `yaml:"capacity,omitempty" fake:"skip"`
}

// Site is shared by web and function apps. Plan names an existing plan in the same resource group,
// PricingTier asks for a new plan instead.
type Site struct {
	Resource               `yaml:",inline"`
	Plan                   string            `yaml:"plan,omitempty" fake:"skip"`
	PricingTier            string            `yaml:"pricing_tier,omitempty" fake:"{randomstring:[B1,S1]}"`
	AppSettings            map[string]string `yaml:"app_settings,omitempty"`
	AlwaysOn               *bool             `yaml:"always_on,omitempty"`
	HTTPSOnly              *bool             `yaml:"https_only,omitempty"`
	SystemAssignedIdentity bool              `yaml:"system_assigned_identity,omitempty"`
}

type WebApp struct {
	Site           `yaml:",inline"`
	Linux          bool   `yaml:"linux,omitempty"`
	RuntimeStack   string `yaml:"runtime_stack,omitempty" fake:"skip"`
	DockerImage    string `yaml:"docker_image,omitempty" fake:"skip"`
	StartUpCommand string `yaml:"startup_command,omitempty" fake:"skip"`
}

type FunctionApp struct {
	Site           `yaml:",inline"`
	Runtime        string `yaml:"runtime,omitempty" fake:"{randomstring:[node,python,dotnet]}"`
	RuntimeVersion string `yaml:"runtime_version,omitempty" fake:"{randomstring:[4,~4]}"`
	StorageAccount string `yaml:"storage_account,omitempty" fake:"skip"`
}

type AvailabilitySet struct {
	Resource          `yaml:",inline"`
	FaultDomainCount  int32 `yaml:"fault_domains,omitempty" fake:"skip"`
	UpdateDomainCount int32 `yaml:"update_domains,omitempty" fake:"skip"`
}

type Disk struct {
	Resource `yaml:",inline"`
	SizeInGB int32  `yaml:"size_gb" fake:"skip"`
	Sku      string `yaml:"sku,omitempty" fake:"{randomstring:[Standard_LRS,Premium_LRS]}"`
}

type VirtualMachine struct {
	Resource               `yaml:",inline"`
	Image                  string     `yaml:"image" fake:"{randomstring:[ubuntu2204,debian12]}"`
	Size                   string     `yaml:"size,omitempty" fake:"{randomstring:[Standard_B1s,Standard_B2s]}"`
	AdminUsername          string     `yaml:"admin_username" fake:"{username}"`
	AdminPassword          string     `yaml:"admin_password,omitempty" fake:"{password:true,true,true,false,false,16}"`
	SSHPublicKey           string     `yaml:"ssh_public_key,omitempty" fake:"skip"`
	AddressSpace           string     `yaml:"address_space,omitempty" fake:"{randomstring:[10.0.0.0/24,10.1.0.0/24]}"`
	AvailabilitySet        string     `yaml:"availability_set,omitempty" fake:"skip"`
	DataDisks              []DataDisk `yaml:"data_disks,omitempty" fakesize:"1"`
	SystemAssignedIdentity bool       `yaml:"system_assigned_identity,omitempty"`
}

type DataDisk struct {
	SizeInGB int32  `yaml:"size_gb" fake:"skip"`
	Lun      *int32 `yaml:"lun,omitempty" fake:"skip"`
	Disk     string `yaml:"disk,omitempty" fake:"skip"`
}

// ResourceLocation returns the entry location or the config default.
func (c Config) ResourceLocation(location string) string {
	if location != "" {
		return location
	}
	return c.Location
}

// ResourceTags merges the config default tags with the entry tags, entry tags win.
func (c Config) ResourceTags(tags map[string]string) map[string]string {
	return lo.Assign(c.Tags, tags)
}

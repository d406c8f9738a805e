package common

type Command string

const (
	ListCommand         Command = "list"
	ApplyCommand        Command = "apply"
	DeployCommand       Command = "deploy"
	LogsCommand         Command = "logs"
	SyncTriggersCommand Command = "sync-triggers"
	DeleteCommand       Command = "delete"
	VersionCommand      Command = "version"
)

type LogLevel string

const (
	ProdLogLevel  LogLevel = "prod"
	DevLogLevel   LogLevel = "dev"
	DebugLogLevel LogLevel = "debug"
	WarnLogLevel  LogLevel = "warn"
	ErrorLogLevel LogLevel = "error"
)

type ResourceKind string

const (
	WebAppKind          ResourceKind = "webapps"
	FunctionAppKind     ResourceKind = "functionapps"
	PlanKind            ResourceKind = "plans"
	VirtualMachineKind  ResourceKind = "vms"
	ScaleSetKind        ResourceKind = "vmss"
	DiskKind            ResourceKind = "disks"
	AvailabilitySetKind ResourceKind = "availabilitysets"
	StorageAccountKind  ResourceKind = "storageaccounts"
	ResourceGroupKind   ResourceKind = "resourcegroups"
)

var ResourceKinds = []ResourceKind{WebAppKind, FunctionAppKind, PlanKind, VirtualMachineKind, ScaleSetKind, DiskKind,
	AvailabilitySetKind, StorageAccountKind, ResourceGroupKind}

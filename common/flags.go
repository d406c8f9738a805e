package common

const (
	SubscriptionIdEnv = "AZURE_SUBSCRIPTION_ID"
	ResourceGroupEnv  = "AZURE_RESOURCE_GROUP"
	LocationEnv       = "AZURE_LOCATION"
	LoggingEnv        = "LOGGING"
	ConfigEnv         = "CONFIG"
)

type Flags struct {
	LoggingLevel string
	Config       string
	Azure        Azure
	App          string
	Slot         string
	War          string
	Zip          string
	All          bool
	Kind         string
	Name         string
}

type Azure struct {
	SubscriptionId string
	ResourceGroup  string
	Location       string
}

func (f *Flags) Setup(cmd Command) error {
	if err := f.validate(cmd); err != nil {
		return err
	}
	f.cmdSpecificSetup(cmd)
	return nil
}

func (f *Flags) cmdSpecificSetup(cmd Command) {
	if cmd == DeployCommand && f.War != "" && f.Zip != "" {
		f.Zip = ""
	}
}

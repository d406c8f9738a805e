package common

import (
	"errors"
	"fmt"
	"slices"
)

func (f *Flags) validate(cmd Command) error {
	switch cmd {
	case ListCommand:
		if f.Kind == "" {
			return errors.New("resource kind must be set")
		}
		if !slices.Contains(ResourceKinds, ResourceKind(f.Kind)) {
			return fmt.Errorf("unsupported resource kind %s", f.Kind)
		}
		if !f.All && f.Azure.ResourceGroup == "" {
			return errors.New("resource group must be set unless listing the whole subscription")
		}
		return f.validateSubscription()
	case ApplyCommand:
		if f.Config == "" {
			return errors.New("config must be set")
		}
		return f.validateSubscription()
	case DeployCommand:
		if f.War == "" && f.Zip == "" {
			return errors.New("war or zip file must be set")
		}
		fallthrough
	case LogsCommand, SyncTriggersCommand:
		if f.App == "" {
			return errors.New("app name must be set")
		}
		if f.Azure.ResourceGroup == "" {
			return errors.New("resource group must be set")
		}
		return f.validateSubscription()
	case DeleteCommand:
		if f.Kind == "" || f.Name == "" {
			return errors.New("resource kind and name must be set")
		}
		if !slices.Contains(ResourceKinds, ResourceKind(f.Kind)) {
			return fmt.Errorf("unsupported resource kind %s", f.Kind)
		}
		if f.Azure.ResourceGroup == "" && ResourceKind(f.Kind) != ResourceGroupKind {
			return errors.New("resource group must be set")
		}
		return f.validateSubscription()
	default:
		return nil
	}
}

func (f *Flags) validateSubscription() error {
	if f.Azure.SubscriptionId == "" {
		return fmt.Errorf("azure subscription id must be set, use the flag or %s", SubscriptionIdEnv)
	}
	return nil
}

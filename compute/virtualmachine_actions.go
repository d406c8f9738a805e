package compute

import (
	"context"
	"fmt"
	"log"
)

func (v *VirtualMachine) Start(ctx context.Context) error {
	return v.powerAction(ctx, "start", "Started")
}

// PowerOff stops the machine without releasing its compute resources, billing continues.
func (v *VirtualMachine) PowerOff(ctx context.Context) error {
	return v.powerAction(ctx, "powerOff", "Powered off")
}

func (v *VirtualMachine) Restart(ctx context.Context) error {
	return v.powerAction(ctx, "restart", "Restarted")
}

func (v *VirtualMachine) Deallocate(ctx context.Context) error {
	return v.powerAction(ctx, "deallocate", "Deallocated")
}

// Generalize marks a deallocated, sysprepped or deprovisioned machine as a source for images.
func (v *VirtualMachine) Generalize(ctx context.Context) error {
	if err := v.vms.Resources().Action(ctx, "generalize", nil, v.ResourceGroupName(), v.Name()); err != nil {
		return fmt.Errorf("failed to generalize virtual machine %s: %w", v.Name(), err)
	}
	log.Printf("Generalized virtual machine %s\n", v.Name())
	return nil
}

func (v *VirtualMachine) powerAction(ctx context.Context, action, done string) error {
	if err := v.vms.Resources().Action(ctx, action, nil, v.ResourceGroupName(), v.Name()); err != nil {
		return fmt.Errorf("failed to %s virtual machine %s: %w", action, v.Name(), err)
	}
	log.Printf("%s virtual machine %s\n", done, v.Name())
	_, err := v.RefreshInstanceView(ctx)
	return err
}

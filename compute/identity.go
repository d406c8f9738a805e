package compute

import (
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/compute/armcompute/v2"
	"github.com/entigolabs/azure-fluent/msi"
	"github.com/samber/lo"
)

type vmIdentity struct {
	vm *armcompute.VirtualMachine
}

func (v vmIdentity) identity() *armcompute.VirtualMachineIdentity {
	if v.vm == nil || v.vm.Identity == nil {
		return &armcompute.VirtualMachineIdentity{}
	}
	return v.vm.Identity
}

func (v vmIdentity) IdentityType() msi.IdentityType {
	return identityType(v.identity().Type)
}

func (v vmIdentity) PrincipalID() string {
	return lo.FromPtr(v.identity().PrincipalID)
}

func (v vmIdentity) TenantID() string {
	return lo.FromPtr(v.identity().TenantID)
}

func (v vmIdentity) UserAssignedIdentityIDs() []string {
	return msi.UserAssignedIDs(v.identity().UserAssignedIdentities)
}

func (v vmIdentity) SetIdentity(identityType msi.IdentityType, userAssigned map[string]bool) {
	if v.vm.Identity == nil {
		v.vm.Identity = &armcompute.VirtualMachineIdentity{}
	}
	v.vm.Identity.Type = to.Ptr(armcompute.ResourceIdentityType(identityType))
	v.vm.Identity.UserAssignedIdentities = msi.ApplyChanges(v.vm.Identity.UserAssignedIdentities, userAssigned)
}

type scaleSetIdentity struct {
	set *armcompute.VirtualMachineScaleSet
}

func (s scaleSetIdentity) identity() *armcompute.VirtualMachineScaleSetIdentity {
	if s.set == nil || s.set.Identity == nil {
		return &armcompute.VirtualMachineScaleSetIdentity{}
	}
	return s.set.Identity
}

func (s scaleSetIdentity) IdentityType() msi.IdentityType {
	return identityType(s.identity().Type)
}

func (s scaleSetIdentity) PrincipalID() string {
	return lo.FromPtr(s.identity().PrincipalID)
}

func (s scaleSetIdentity) TenantID() string {
	return lo.FromPtr(s.identity().TenantID)
}

func (s scaleSetIdentity) UserAssignedIdentityIDs() []string {
	return msi.UserAssignedIDs(s.identity().UserAssignedIdentities)
}

func (s scaleSetIdentity) SetIdentity(identityType msi.IdentityType, userAssigned map[string]bool) {
	if s.set.Identity == nil {
		s.set.Identity = &armcompute.VirtualMachineScaleSetIdentity{}
	}
	s.set.Identity.Type = to.Ptr(armcompute.ResourceIdentityType(identityType))
	s.set.Identity.UserAssignedIdentities = msi.ApplyChanges(s.set.Identity.UserAssignedIdentities, userAssigned)
}

func identityType(value *armcompute.ResourceIdentityType) msi.IdentityType {
	if value == nil || *value == "" {
		return msi.IdentityTypeNone
	}
	return msi.IdentityType(*value)
}

// identityOptions holds the managed identity mutators shared by virtual machines and scale sets.
type identityOptions[W any] struct {
	self    W
	handler *msi.Handler
}

func (o identityOptions[W]) WithSystemAssignedManagedServiceIdentity() W {
	o.handler.WithSystemAssigned()
	return o.self
}

func (o identityOptions[W]) WithoutSystemAssignedManagedServiceIdentity() W {
	o.handler.WithoutSystemAssigned()
	return o.self
}

func (o identityOptions[W]) WithNewUserAssignedManagedServiceIdentity(identity *msi.Identity) W {
	o.handler.WithNewUserAssigned(identity)
	return o.self
}

func (o identityOptions[W]) WithExistingUserAssignedManagedServiceIdentity(id string) W {
	o.handler.WithExistingUserAssigned(id)
	return o.self
}

func (o identityOptions[W]) WithoutUserAssignedManagedServiceIdentity(id string) W {
	o.handler.WithoutUserAssigned(id)
	return o.self
}

// WithSystemAssignedIdentityBasedAccessTo grants the system assigned identity a built-in role on scope.
func (o identityOptions[W]) WithSystemAssignedIdentityBasedAccessTo(scope, roleName string) W {
	o.handler.WithAccessTo(scope, roleName)
	return o.self
}

func (o identityOptions[W]) WithSystemAssignedIdentityBasedAccessToCurrentResourceGroup(roleName string) W {
	o.handler.WithAccessToCurrentResourceGroup(roleName)
	return o.self
}

func (o identityOptions[W]) WithSystemAssignedIdentityBasedAccessToRoleDefinition(scope, roleDefinitionID string) W {
	o.handler.WithRoleDefinitionAccessTo(scope, roleDefinitionID)
	return o.self
}

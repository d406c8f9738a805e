package appservice

import (
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/appservice/armappservice/v2"
	"github.com/entigolabs/azure-fluent/msi"
	"github.com/samber/lo"
)

type siteIdentity struct {
	site *armappservice.Site
}

func (s siteIdentity) identity() *armappservice.ManagedServiceIdentity {
	if s.site == nil || s.site.Identity == nil {
		return &armappservice.ManagedServiceIdentity{}
	}
	return s.site.Identity
}

func (s siteIdentity) IdentityType() msi.IdentityType {
	identityType := lo.FromPtr(s.identity().Type)
	if identityType == "" {
		return msi.IdentityTypeNone
	}
	return msi.IdentityType(identityType)
}

func (s siteIdentity) PrincipalID() string {
	return lo.FromPtr(s.identity().PrincipalID)
}

func (s siteIdentity) TenantID() string {
	return lo.FromPtr(s.identity().TenantID)
}

func (s siteIdentity) UserAssignedIdentityIDs() []string {
	return msi.UserAssignedIDs(s.identity().UserAssignedIdentities)
}

func (s siteIdentity) SetIdentity(identityType msi.IdentityType, userAssigned map[string]bool) {
	if s.site.Identity == nil {
		s.site.Identity = &armappservice.ManagedServiceIdentity{}
	}
	s.site.Identity.Type = to.Ptr(armappservice.ManagedServiceIdentityType(identityType))
	s.site.Identity.UserAssignedIdentities = msi.ApplyChanges(s.site.Identity.UserAssignedIdentities, userAssigned)
}

func (b *siteBase[W]) SystemAssignedManagedServiceIdentityPrincipalID() string {
	return siteIdentity{site: b.inner}.PrincipalID()
}

func (b *siteBase[W]) SystemAssignedManagedServiceIdentityTenantID() string {
	return siteIdentity{site: b.inner}.TenantID()
}

func (b *siteBase[W]) UserAssignedManagedServiceIdentityIDs() []string {
	return siteIdentity{site: b.inner}.UserAssignedIdentityIDs()
}

func (b *siteBase[W]) WithSystemAssignedManagedServiceIdentity() W {
	b.msi.WithSystemAssigned()
	return b.Self()
}

func (b *siteBase[W]) WithoutSystemAssignedManagedServiceIdentity() W {
	b.msi.WithoutSystemAssigned()
	return b.Self()
}

func (b *siteBase[W]) WithNewUserAssignedManagedServiceIdentity(identity *msi.Identity) W {
	b.msi.WithNewUserAssigned(identity)
	return b.Self()
}

func (b *siteBase[W]) WithExistingUserAssignedManagedServiceIdentity(id string) W {
	b.msi.WithExistingUserAssigned(id)
	return b.Self()
}

func (b *siteBase[W]) WithoutUserAssignedManagedServiceIdentity(id string) W {
	b.msi.WithoutUserAssigned(id)
	return b.Self()
}

// WithSystemAssignedIdentityBasedAccessTo grants the system assigned identity a built-in role on scope.
func (b *siteBase[W]) WithSystemAssignedIdentityBasedAccessTo(scope, roleName string) W {
	b.msi.WithSystemAssigned()
	b.msi.WithAccessTo(scope, roleName)
	return b.Self()
}

func (b *siteBase[W]) WithSystemAssignedIdentityBasedAccessToCurrentResourceGroup(roleName string) W {
	b.msi.WithSystemAssigned()
	b.msi.WithAccessToCurrentResourceGroup(roleName)
	return b.Self()
}

func (b *siteBase[W]) WithSystemAssignedIdentityBasedAccessToRoleDefinition(scope, roleDefinitionID string) W {
	b.msi.WithSystemAssigned()
	b.msi.WithRoleDefinitionAccessTo(scope, roleDefinitionID)
	return b.Self()
}

package msi

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/entigolabs/azure-fluent/fluent"
	"github.com/entigolabs/azure-fluent/model"
)

type IdentityType string

const (
	IdentityTypeNone                       IdentityType = "None"
	IdentityTypeSystemAssigned             IdentityType = "SystemAssigned"
	IdentityTypeUserAssigned               IdentityType = "UserAssigned"
	IdentityTypeSystemAssignedUserAssigned IdentityType = "SystemAssigned, UserAssigned"
)

func (t IdentityType) HasSystemAssigned() bool {
	return strings.Contains(strings.ToLower(string(t)), "systemassigned")
}

func (t IdentityType) HasUserAssigned() bool {
	return strings.Contains(strings.ToLower(string(t)), "userassigned")
}

func identityTypeOf(system, user bool) IdentityType {
	switch {
	case system && user:
		return IdentityTypeSystemAssignedUserAssigned
	case system:
		return IdentityTypeSystemAssigned
	case user:
		return IdentityTypeUserAssigned
	default:
		return IdentityTypeNone
	}
}

// Accessor reads and writes the identity block of a resource inner model.
type Accessor interface {
	IdentityType() IdentityType
	PrincipalID() string
	TenantID() string
	UserAssignedIdentityIDs() []string
	// SetIdentity sets the identity type. A nil userAssigned clears the user assigned map,
	// otherwise true entries are added and false entries are sent as null for removal.
	SetIdentity(identityType IdentityType, userAssigned map[string]bool)
}

type roleRequest struct {
	scope              string
	roleName           string
	roleDefinitionID   string
	resourceGroupScope bool
}

// Handler stages identity changes of one resource and applies them around its submit.
type Handler struct {
	roles        *RoleAssignments
	identities   *Identities
	system       *bool
	toAdd        model.Set[string]
	toRemove     model.Set[string]
	created      []*Identity
	roleRequests []roleRequest
}

func NewHandler(roles *RoleAssignments, identities *Identities) *Handler {
	return &Handler{
		roles:      roles,
		identities: identities,
		toAdd:      model.NewSet[string](),
		toRemove:   model.NewSet[string](),
	}
}

func (h *Handler) WithSystemAssigned() {
	h.system = to.Ptr(true)
}

func (h *Handler) WithoutSystemAssigned() {
	h.system = to.Ptr(false)
}

func (h *Handler) WithNewUserAssigned(identity *Identity) {
	h.created = append(h.created, identity)
}

func (h *Handler) WithExistingUserAssigned(id string) {
	h.toRemove.Remove(id)
	h.toAdd.Add(id)
}

func (h *Handler) WithoutUserAssigned(id string) {
	h.toAdd.Remove(id)
	h.toRemove.Add(id)
}

// WithAccessTo grants the system assigned identity a role, by name, on scope.
func (h *Handler) WithAccessTo(scope, roleName string) {
	h.WithSystemAssigned()
	h.roleRequests = append(h.roleRequests, roleRequest{scope: scope, roleName: roleName})
}

func (h *Handler) WithAccessToCurrentResourceGroup(roleName string) {
	h.WithSystemAssigned()
	h.roleRequests = append(h.roleRequests, roleRequest{roleName: roleName, resourceGroupScope: true})
}

func (h *Handler) WithRoleDefinitionAccessTo(scope, roleDefinitionID string) {
	h.WithSystemAssigned()
	h.roleRequests = append(h.roleRequests, roleRequest{scope: scope, roleDefinitionID: roleDefinitionID})
}

func (h *Handler) HasIdentityChanges() bool {
	return h.system != nil || h.toAdd.Size() > 0 || h.toRemove.Size() > 0 || len(h.created) > 0
}

func (h *Handler) HasRoleAssignments() bool {
	return len(h.roleRequests) > 0
}

// Prepare registers the creatable user assigned identities and returns their task keys. Identities
// without a region or resource group inherit the resource's.
func (h *Handler) Prepare(tasks *fluent.TaskGroup, region, resourceGroup string, dependsOn ...string) []string {
	keys := make([]string, 0, len(h.created))
	for _, identity := range h.created {
		if !identity.IsInCreateMode() {
			continue
		}
		if identity.RegionName() == "" {
			identity.WithRegion(region)
		}
		if identity.ResourceGroupName() == "" {
			identity.WithExistingResourceGroup(resourceGroup)
		}
		key := "identity/" + identity.ResourceGroupName() + "/" + identity.Name()
		tasks.Add(key, func(ctx context.Context) error {
			_, err := identity.Create(ctx)
			return err
		}, dependsOn...)
		keys = append(keys, key)
	}
	return keys
}

// Apply writes the staged identity type and user assigned changes to the accessor.
func (h *Handler) Apply(accessor Accessor) {
	if !h.HasIdentityChanges() {
		return
	}
	current := accessor.IdentityType()
	system := current.HasSystemAssigned()
	if h.system != nil {
		system = *h.system
	}
	assigned := model.ToSet(accessor.UserAssignedIdentityIDs())
	changes := map[string]bool{}
	for id := range h.toAdd {
		changes[id] = true
		assigned.Add(id)
	}
	for _, identity := range h.created {
		if id := identity.ID(); id != "" {
			changes[id] = true
			assigned.Add(id)
		}
	}
	for id := range h.toRemove {
		if assigned.Contains(id) {
			changes[id] = false
			assigned.Remove(id)
		}
	}
	user := assigned.Size() > 0
	if !user {
		changes = nil
	}
	accessor.SetIdentity(identityTypeOf(system, user), changes)
}

// AssignRoles creates the staged role assignments for the system assigned principal.
func (h *Handler) AssignRoles(ctx context.Context, accessor Accessor, resourceGroupID string) error {
	if !h.HasRoleAssignments() {
		return nil
	}
	principalID := accessor.PrincipalID()
	if principalID == "" {
		return errors.New("system assigned identity principal id is not available for role assignment")
	}
	for _, request := range h.roleRequests {
		scope := request.scope
		if request.resourceGroupScope {
			scope = resourceGroupID
		}
		var err error
		if request.roleDefinitionID != "" {
			err = h.roles.AssignRoleDefinition(ctx, principalID, request.roleDefinitionID, scope)
		} else {
			err = h.roles.AssignRole(ctx, principalID, request.roleName, scope)
		}
		if err != nil {
			return fmt.Errorf("failed to assign role on %s: %w", scope, err)
		}
	}
	h.roleRequests = nil
	return nil
}

// Clear drops the staged identity changes after a successful submit.
func (h *Handler) Clear() {
	h.system = nil
	h.toAdd = model.NewSet[string]()
	h.toRemove = model.NewSet[string]()
	h.created = nil
}

// AddIdentity applies one user assigned change to an SDK identity map without naming its value type.
func AddIdentity[V any](identities map[string]*V, id string, add bool) map[string]*V {
	if identities == nil {
		identities = map[string]*V{}
	}
	if add {
		if existing, found := identities[id]; !found || existing == nil {
			identities[id] = new(V)
		}
		return identities
	}
	identities[id] = nil
	return identities
}

// UserAssignedIDs returns the non nil keys of an SDK identity map.
func UserAssignedIDs[V any](identities map[string]*V) []string {
	ids := make([]string, 0, len(identities))
	for id, value := range identities {
		if value != nil {
			ids = append(ids, id)
		}
	}
	return ids
}

// ApplyChanges merges SetIdentity changes into an SDK identity map.
func ApplyChanges[V any](identities map[string]*V, changes map[string]bool) map[string]*V {
	if changes == nil {
		return nil
	}
	for id, add := range changes {
		identities = AddIdentity(identities, id, add)
	}
	return identities
}

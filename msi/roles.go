package msi

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/authorization/armauthorization/v2"
	"github.com/entigolabs/azure-fluent/arm"
	"github.com/google/uuid"
)

const roleDefinitionsPath = "/providers/Microsoft.Authorization/roleDefinitions/"

// RoleAssignments grants roles to managed identity principals.
type RoleAssignments struct {
	subscriptionID string
	assignments    RoleAssignmentsClient
	definitions    RoleDefinitionsClient
}

func NewRoleAssignments(client *arm.Client) (*RoleAssignments, error) {
	assignments, err := armauthorization.NewRoleAssignmentsClient(client.SubscriptionID(), client.Credential(), client.Options())
	if err != nil {
		return nil, fmt.Errorf("failed to create role assignments client: %w", err)
	}
	definitions, err := armauthorization.NewRoleDefinitionsClient(client.Credential(), client.Options())
	if err != nil {
		return nil, fmt.Errorf("failed to create role definitions client: %w", err)
	}
	return NewRoleAssignmentsWithClients(client.SubscriptionID(), assignments, definitions), nil
}

func NewRoleAssignmentsWithClients(subscriptionID string, assignments RoleAssignmentsClient, definitions RoleDefinitionsClient) *RoleAssignments {
	return &RoleAssignments{
		subscriptionID: subscriptionID,
		assignments:    assignments,
		definitions:    definitions,
	}
}

// AssignRole grants a built-in or custom role, looked up by name, at scope.
func (r *RoleAssignments) AssignRole(ctx context.Context, principalID, roleName, scope string) error {
	roleDefinitionID, err := r.RoleDefinitionID(ctx, roleName)
	if err != nil {
		return err
	}
	return r.AssignRoleDefinition(ctx, principalID, roleDefinitionID, scope)
}

// AssignRoleDefinition grants a role definition id at scope unless the principal already has it.
func (r *RoleAssignments) AssignRoleDefinition(ctx context.Context, principalID, roleDefinitionID, scope string) error {
	if !strings.Contains(roleDefinitionID, "/") {
		roleDefinitionID = fmt.Sprintf("/subscriptions/%s%s%s", r.subscriptionID, roleDefinitionsPath, roleDefinitionID)
	}
	pager := r.assignments.NewListForScopePager(scope, &armauthorization.RoleAssignmentsClientListForScopeOptions{
		Filter: to.Ptr(fmt.Sprintf("assignedTo('%s')", principalID)),
	})
	for pager.More() {
		resp, err := pager.NextPage(ctx)
		if err != nil {
			return err
		}
		for _, assignment := range resp.Value {
			if assignment.Properties != nil && assignment.Properties.RoleDefinitionID != nil &&
				strings.EqualFold(*assignment.Properties.RoleDefinitionID, roleDefinitionID) {
				return nil
			}
		}
	}

	_, err := r.assignments.Create(ctx, scope, uuid.New().String(),
		armauthorization.RoleAssignmentCreateParameters{
			Properties: &armauthorization.RoleAssignmentProperties{
				PrincipalID:      to.Ptr(principalID),
				RoleDefinitionID: to.Ptr(roleDefinitionID),
				PrincipalType:    to.Ptr(armauthorization.PrincipalTypeServicePrincipal),
			},
		}, nil)
	if err != nil {
		var respErr *azcore.ResponseError
		if errors.As(err, &respErr) && respErr.ErrorCode == "RoleAssignmentExists" {
			return nil
		}
		return fmt.Errorf("failed to assign role: %w", err)
	}
	log.Printf("Assigned role %s to principal %s at scope %s\n", roleDefinitionID, principalID, scope)
	return nil
}

func (r *RoleAssignments) RoleDefinitionID(ctx context.Context, roleName string) (string, error) {
	scope := fmt.Sprintf("/subscriptions/%s", r.subscriptionID)
	pager := r.definitions.NewListPager(scope, &armauthorization.RoleDefinitionsClientListOptions{
		Filter: to.Ptr(fmt.Sprintf("roleName eq '%s'", roleName)),
	})
	for pager.More() {
		resp, err := pager.NextPage(ctx)
		if err != nil {
			return "", err
		}
		for _, roleDef := range resp.Value {
			if roleDef.ID != nil {
				return *roleDef.ID, nil
			}
		}
	}
	return "", fmt.Errorf("role definition not found: %s", roleName)
}

package msi

import (
	"context"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/runtime"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/authorization/armauthorization/v2"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/msi/armmsi"
)

// UserAssignedIdentitiesClient holds the armmsi methods this package uses.
type UserAssignedIdentitiesClient interface {
	CreateOrUpdate(ctx context.Context,
		resourceGroupName string, resourceName string,
		parameters armmsi.Identity,
		options *armmsi.UserAssignedIdentitiesClientCreateOrUpdateOptions,
	) (armmsi.UserAssignedIdentitiesClientCreateOrUpdateResponse, error)

	Delete(ctx context.Context,
		resourceGroupName string, resourceName string,
		options *armmsi.UserAssignedIdentitiesClientDeleteOptions,
	) (armmsi.UserAssignedIdentitiesClientDeleteResponse, error)

	Get(ctx context.Context,
		resourceGroupName string, resourceName string,
		options *armmsi.UserAssignedIdentitiesClientGetOptions,
	) (armmsi.UserAssignedIdentitiesClientGetResponse, error)
}

var _ UserAssignedIdentitiesClient = (*armmsi.UserAssignedIdentitiesClient)(nil)

type RoleAssignmentsClient interface {
	Create(ctx context.Context, scope string, roleAssignmentName string,
		parameters armauthorization.RoleAssignmentCreateParameters,
		options *armauthorization.RoleAssignmentsClientCreateOptions,
	) (armauthorization.RoleAssignmentsClientCreateResponse, error)

	NewListForScopePager(scope string,
		options *armauthorization.RoleAssignmentsClientListForScopeOptions,
	) *runtime.Pager[armauthorization.RoleAssignmentsClientListForScopeResponse]
}

var _ RoleAssignmentsClient = (*armauthorization.RoleAssignmentsClient)(nil)

type RoleDefinitionsClient interface {
	NewListPager(scope string,
		options *armauthorization.RoleDefinitionsClientListOptions,
	) *runtime.Pager[armauthorization.RoleDefinitionsClientListResponse]
}

var _ RoleDefinitionsClient = (*armauthorization.RoleDefinitionsClient)(nil)

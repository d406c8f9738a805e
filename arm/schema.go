package arm

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	azarm "github.com/Azure/azure-sdk-for-go/sdk/azcore/arm"
)

// Schema describes where a resource type lives in ARM. Types lists the type segments from the
// top level resource down to the addressed one, e.g. {"sites", "slots"}. An empty Namespace
// addresses subscription level types such as resource groups.
type Schema[T any] struct {
	Namespace  string
	Types      []string
	APIVersion string
	ID         func(*T) *string
}

func (s Schema[T]) ResourceType() string {
	return s.Namespace + "/" + strings.Join(s.Types, "/")
}

// Path returns the resource path, names holding one segment per entry in Types.
func (s Schema[T]) Path(subscriptionID, resourceGroup string, names ...string) (string, error) {
	if len(names) != len(s.Types) {
		return "", fmt.Errorf("%s expects %d name segments, got %d", s.ResourceType(), len(s.Types), len(names))
	}
	base, err := s.base(subscriptionID, resourceGroup)
	if err != nil {
		return "", err
	}
	var builder strings.Builder
	builder.WriteString(base)
	for i, name := range names {
		if name == "" {
			return "", fmt.Errorf("parameter %s name cannot be empty", s.Types[i])
		}
		builder.WriteString("/" + s.Types[i] + "/" + url.PathEscape(name))
	}
	return builder.String(), nil
}

// CollectionPath returns the list path under the given parents.
func (s Schema[T]) CollectionPath(subscriptionID, resourceGroup string, parents ...string) (string, error) {
	if len(parents) != len(s.Types)-1 {
		return "", fmt.Errorf("%s expects %d parent segments, got %d", s.ResourceType(), len(s.Types)-1, len(parents))
	}
	base, err := s.base(subscriptionID, resourceGroup)
	if err != nil {
		return "", err
	}
	var builder strings.Builder
	builder.WriteString(base)
	for i, parent := range parents {
		if parent == "" {
			return "", fmt.Errorf("parameter %s name cannot be empty", s.Types[i])
		}
		builder.WriteString("/" + s.Types[i] + "/" + url.PathEscape(parent))
	}
	builder.WriteString("/" + s.Types[len(s.Types)-1])
	return builder.String(), nil
}

func (s Schema[T]) SubscriptionPath(subscriptionID string) (string, error) {
	if subscriptionID == "" {
		return "", errors.New("parameter subscriptionID cannot be empty")
	}
	if len(s.Types) != 1 {
		return "", fmt.Errorf("%s is not a top level resource", s.ResourceType())
	}
	if s.Namespace == "" {
		return "/subscriptions/" + url.PathEscape(subscriptionID) + "/" + s.Types[0], nil
	}
	return "/subscriptions/" + url.PathEscape(subscriptionID) + "/providers/" + s.Namespace + "/" + s.Types[0], nil
}

func (s Schema[T]) base(subscriptionID, resourceGroup string) (string, error) {
	if subscriptionID == "" {
		return "", errors.New("parameter subscriptionID cannot be empty")
	}
	if s.Namespace == "" {
		return "/subscriptions/" + url.PathEscape(subscriptionID), nil
	}
	if resourceGroup == "" {
		return "", errors.New("parameter resourceGroupName cannot be empty")
	}
	return "/subscriptions/" + url.PathEscape(subscriptionID) + "/resourceGroups/" + url.PathEscape(resourceGroup) +
		"/providers/" + s.Namespace, nil
}

// ParseID splits a resource id into its resource group and the name segments of this schema.
func (s Schema[T]) ParseID(id string) (string, []string, error) {
	resourceID, err := azarm.ParseResourceID(id)
	if err != nil {
		return "", nil, fmt.Errorf("failed to parse resource id %s: %w", id, err)
	}
	names := make([]string, len(s.Types))
	current := resourceID
	for i := len(s.Types) - 1; i >= 0; i-- {
		if current == nil || !strings.EqualFold(current.ResourceType.Types[len(current.ResourceType.Types)-1], s.Types[i]) {
			return "", nil, fmt.Errorf("resource id %s is not of type %s", id, s.ResourceType())
		}
		names[i] = current.Name
		current = current.Parent
	}
	return resourceID.ResourceGroupName, names, nil
}

func ResourceGroupFromID(id string) string {
	resourceID, err := azarm.ParseResourceID(id)
	if err != nil {
		return ""
	}
	return resourceID.ResourceGroupName
}

func NameFromID(id string) string {
	resourceID, err := azarm.ParseResourceID(id)
	if err != nil {
		return ""
	}
	return resourceID.Name
}

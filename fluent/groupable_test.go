package fluent_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/resources/armresources"
	"github.com/entigolabs/azure-fluent/arm"
	"github.com/entigolabs/azure-fluent/fluent"
	"github.com/entigolabs/azure-fluent/model"
	"github.com/entigolabs/azure-fluent/resources"
	"github.com/entigolabs/azure-fluent/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type widget struct {
	*fluent.Groupable[*widget]
}

func newWidget(groups *resources.ResourceGroups, name string) *widget {
	w := &widget{}
	w.Groupable = fluent.NewGroupable(w, groups, name)
	return w
}

func newGroups(t *testing.T, transport *test.Transport) *resources.ResourceGroups {
	client, err := arm.NewClient(test.SubscriptionID(), test.Credential{}, transport.ClientOptions())
	require.NoError(t, err)
	return resources.NewManager(client).ResourceGroups()
}

func TestGroupableChainsOnWrapper(t *testing.T) {
	w := newWidget(nil, "app1").
		WithRegion("West Europe").
		WithExistingResourceGroup("rg1").
		WithTag("env", "dev").
		WithTags(map[string]string{"team": "core", "tmp": "x"}).
		WithoutTag("tmp")

	assert.Equal(t, "westeurope", w.RegionName())
	assert.Equal(t, "rg1", w.ResourceGroupName())
	assert.Equal(t, map[string]string{"env": "dev", "team": "core"}, w.Tags())
	assert.Equal(t, "dev", *w.TagPointers()["env"])
	assert.NoError(t, w.Validate())
}

func TestGroupableValidate(t *testing.T) {
	var validation model.ValidationError
	err := newWidget(nil, "app1").WithExistingResourceGroup("rg1").Validate()
	require.True(t, errors.As(err, &validation))
	assert.Contains(t, validation.Reason, "region")

	err = newWidget(nil, "app1").WithRegion("eastus").Validate()
	require.True(t, errors.As(err, &validation))
	assert.Contains(t, validation.Reason, "resource group")
}

func TestGroupableLoad(t *testing.T) {
	w := newWidget(nil, "")
	w.Load(to.Ptr("/subscriptions/sub/resourceGroups/rg2/providers/Microsoft.Web/sites/app2"), to.Ptr("app2"),
		to.Ptr("northeurope"), map[string]*string{"a": to.Ptr("b")})

	assert.Equal(t, "app2", w.Name())
	assert.Equal(t, "rg2", w.ResourceGroupName())
	assert.Equal(t, "northeurope", w.RegionName())
	assert.Equal(t, map[string]string{"a": "b"}, w.Tags())
}

func TestGroupableCreatesNewResourceGroup(t *testing.T) {
	transport := test.NewTransport()
	transport.OnFunc(http.MethodPut, ".*/resourcegroups/rg-new", func(req test.Request) (int, any) {
		var body armresources.ResourceGroup
		_ = req.JSON(&body)
		return http.StatusCreated, armresources.ResourceGroup{
			ID:       to.Ptr("/subscriptions/sub/resourceGroups/rg-new"),
			Name:     to.Ptr("rg-new"),
			Location: body.Location,
		}
	})
	w := newWidget(newGroups(t, transport), "app1").
		WithRegion("eastus").
		WithNewResourceGroup("rg-new")

	tasks := fluent.NewTaskGroup()
	key := w.PrepareResourceGroup(tasks)
	require.NotEmpty(t, key)
	require.NoError(t, tasks.Run(context.Background()))

	puts := transport.Requests(http.MethodPut, "resourcegroups/rg-new")
	require.Len(t, puts, 1)
	var body armresources.ResourceGroup
	require.NoError(t, puts[0].JSON(&body))
	assert.Equal(t, "eastus", *body.Location)
}

func TestGroupableGeneratesResourceGroupName(t *testing.T) {
	w := newWidget(newGroups(t, test.NewTransport()), "app1").WithNewResourceGroup("")
	assert.Regexp(t, "^rgapp1[0-9a-f]{8}$", w.ResourceGroupName())
	assert.Empty(t, newWidget(nil, "app1").PrepareResourceGroup(fluent.NewTaskGroup()))
}

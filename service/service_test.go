package service

import (
	"net/http"
	"strings"
	"testing"

	"github.com/entigolabs/azure-fluent/azure"
	"github.com/entigolabs/azure-fluent/test"
	"github.com/stretchr/testify/require"
)

const resourceGroup = "rg1"

func newTestAzure(t *testing.T, transport *test.Transport) (*azure.Azure, string) {
	subscriptionID := test.SubscriptionID()
	client, err := azure.Authenticate(test.Credential{}, subscriptionID, transport.ClientOptions())
	require.NoError(t, err)
	return client, subscriptionID
}

// echo answers a PUT or PATCH with its own body, adding the id and name taken from the request path.
func echo(req test.Request) (int, any) {
	body := map[string]any{}
	_ = req.JSON(&body)
	body["id"] = req.Path
	body["name"] = req.Path[strings.LastIndex(req.Path, "/")+1:]
	return http.StatusOK, body
}

func indexOf(calls []string, contains string) int {
	for i, call := range calls {
		if strings.Contains(strings.ToLower(call), strings.ToLower(contains)) {
			return i
		}
	}
	return -1
}

package arm

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	azarm "github.com/Azure/azure-sdk-for-go/sdk/azcore/arm"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/runtime"
)

const (
	moduleName    = "armfluent"
	moduleVersion = "v0.1.0"

	throttlingThreshold = 100
)

var throttlingHeaders = []string{
	"x-ms-ratelimit-remaining-subscription-reads",
	"x-ms-ratelimit-remaining-subscription-writes",
	"x-ms-ratelimit-remaining-subscription-deletes",
}

// Client is the shared ARM pipeline every resource collection of a manager is built on.
type Client struct {
	subscriptionID string
	credential     azcore.TokenCredential
	options        *azarm.ClientOptions
	internal       *azarm.Client
}

func NewClient(subscriptionID string, credential azcore.TokenCredential, options *azarm.ClientOptions) (*Client, error) {
	if subscriptionID == "" {
		return nil, errors.New("subscription id is required")
	}
	if credential == nil {
		return nil, errors.New("credential is required")
	}
	opts := &azarm.ClientOptions{}
	if options != nil {
		copied := *options
		opts = &copied
	}
	perCall := make([]policy.Policy, 0, len(opts.PerCallPolicies)+1)
	perCall = append(perCall, opts.PerCallPolicies...)
	opts.PerCallPolicies = append(perCall, &throttlingPolicy{})
	internal, err := azarm.NewClient(moduleName, moduleVersion, credential, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create ARM client: %w", err)
	}
	return &Client{
		subscriptionID: subscriptionID,
		credential:     credential,
		options:        options,
		internal:       internal,
	}, nil
}

func (c *Client) SubscriptionID() string {
	return c.subscriptionID
}

func (c *Client) Credential() azcore.TokenCredential {
	return c.credential
}

// Options returns the options the client was created with, so SDK clients built next to it
// share the same transport and cloud configuration.
func (c *Client) Options() *azarm.ClientOptions {
	return c.options
}

func (c *Client) Endpoint() string {
	return c.internal.Endpoint()
}

func (c *Client) Pipeline() runtime.Pipeline {
	return c.internal.Pipeline()
}

func (c *Client) ResourceGroupID(resourceGroup string) string {
	return fmt.Sprintf("/subscriptions/%s/resourceGroups/%s", c.subscriptionID, resourceGroup)
}

type throttlingPolicy struct{}

func (p *throttlingPolicy) Do(req *policy.Request) (*http.Response, error) {
	resp, err := req.Next()
	if err != nil || resp == nil {
		return resp, err
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		slog.Warn("ARM request throttled", "method", req.Raw().Method, "path", req.Raw().URL.Path,
			"retryAfter", resp.Header.Get("Retry-After"))
		return resp, err
	}
	for _, header := range throttlingHeaders {
		value := resp.Header.Get(header)
		if value == "" {
			continue
		}
		remaining, convErr := strconv.Atoi(value)
		if convErr == nil && remaining < throttlingThreshold {
			slog.Debug("ARM request quota running low", "header", header, "remaining", remaining)
		}
	}
	return resp, err
}

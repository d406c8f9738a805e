package arm

import (
	"context"
	"net/http"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/runtime"
)

func newRequest(ctx context.Context, client *Client, method, path, apiVersion string, body any) (*policy.Request, error) {
	req, err := runtime.NewRequest(ctx, method, runtime.JoinPaths(client.Endpoint(), path))
	if err != nil {
		return nil, err
	}
	reqQP := req.Raw().URL.Query()
	reqQP.Set("api-version", apiVersion)
	req.Raw().URL.RawQuery = reqQP.Encode()
	req.Raw().Header["Accept"] = []string{"application/json"}
	if body != nil {
		if err := runtime.MarshalAsJSON(req, body); err != nil {
			return nil, err
		}
	}
	return req, nil
}

func send(client *Client, req *policy.Request, statusCodes ...int) (*http.Response, error) {
	resp, err := client.Pipeline().Do(req)
	if err != nil {
		return nil, err
	}
	if !runtime.HasStatusCode(resp, statusCodes...) {
		return nil, runtime.NewResponseError(resp)
	}
	return resp, nil
}

// Do sends a request and decodes the JSON response into R.
func Do[R any](ctx context.Context, client *Client, method, path, apiVersion string, body any, statusCodes ...int) (*R, error) {
	req, err := newRequest(ctx, client, method, path, apiVersion, body)
	if err != nil {
		return nil, err
	}
	resp, err := send(client, req, defaultStatusCodes(method, statusCodes)...)
	if err != nil {
		return nil, err
	}
	var result R
	if err := runtime.UnmarshalAsJSON(resp, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// DoLongRunning sends a request that may complete asynchronously and polls it until done.
func DoLongRunning[R any](ctx context.Context, client *Client, method, path, apiVersion string, body any, statusCodes ...int) (*R, error) {
	req, err := newRequest(ctx, client, method, path, apiVersion, body)
	if err != nil {
		return nil, err
	}
	resp, err := send(client, req, defaultStatusCodes(method, statusCodes)...)
	if err != nil {
		return nil, err
	}
	poller, err := runtime.NewPoller[R](resp, client.Pipeline(), nil)
	if err != nil {
		return nil, err
	}
	result, err := poller.PollUntilDone(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Invoke sends a request whose response body is not needed.
func Invoke(ctx context.Context, client *Client, method, path, apiVersion string, body any, statusCodes ...int) error {
	req, err := newRequest(ctx, client, method, path, apiVersion, body)
	if err != nil {
		return err
	}
	resp, err := send(client, req, defaultStatusCodes(method, statusCodes)...)
	if err != nil {
		return err
	}
	return resp.Body.Close()
}

// DoRaw sends a request and returns the raw response payload.
func DoRaw(ctx context.Context, client *Client, method, path, apiVersion string, body any, statusCodes ...int) ([]byte, error) {
	req, err := newRequest(ctx, client, method, path, apiVersion, body)
	if err != nil {
		return nil, err
	}
	req.Raw().Header["Accept"] = []string{"*/*"}
	resp, err := send(client, req, defaultStatusCodes(method, statusCodes)...)
	if err != nil {
		return nil, err
	}
	return runtime.Payload(resp)
}

// Exists issues a HEAD request, treating 404 as a missing resource.
func Exists(ctx context.Context, client *Client, path, apiVersion string) (bool, error) {
	req, err := newRequest(ctx, client, http.MethodHead, path, apiVersion, nil)
	if err != nil {
		return false, err
	}
	resp, err := send(client, req, http.StatusNoContent, http.StatusOK, http.StatusNotFound)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()
	return resp.StatusCode != http.StatusNotFound, nil
}

func defaultStatusCodes(method string, statusCodes []int) []int {
	if len(statusCodes) > 0 {
		return statusCodes
	}
	switch method {
	case http.MethodPut:
		return []int{http.StatusOK, http.StatusCreated, http.StatusAccepted}
	case http.MethodDelete:
		return []int{http.StatusOK, http.StatusAccepted, http.StatusNoContent}
	case http.MethodPost:
		return []int{http.StatusOK, http.StatusAccepted}
	default:
		return []int{http.StatusOK}
	}
}

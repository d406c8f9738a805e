package common

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/avast/retry-go/v4"
)

// StatusError is a non 2xx response of a plain HTTP call.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("request failed with status code %d, body: %s", e.StatusCode, e.Body)
}

func HasStatusCode(err error, statusCode int) bool {
	var statusErr *StatusError
	return errors.As(err, &statusErr) && statusErr.StatusCode == statusCode
}

type HttpClient struct {
	client   *http.Client
	attempts uint
	delay    time.Duration
	retryIf  func(error) bool
}

// NewHttpClient creates a client retrying failed calls accepted by retryIf up to attempts times,
// waiting delay multiplied by the attempt number between them. A zero timeout disables it.
func NewHttpClient(timeout time.Duration, attempts uint, delay time.Duration, retryIf func(error) bool) *HttpClient {
	return &HttpClient{
		client: &http.Client{
			Timeout: timeout,
		},
		attempts: attempts,
		delay:    delay,
		retryIf:  retryIf,
	}
}

// Do sends the request once and returns the response for any 2xx status.
func (c *HttpClient) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	resp, err := c.client.Do(req.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode/100 != 2 {
		return nil, getFailedResponseError(resp)
	}
	return resp, nil
}

// DoWithRetry builds a fresh request for every attempt so request bodies can be replayed.
func (c *HttpClient) DoWithRetry(ctx context.Context, newRequest func() (*http.Request, error)) (*http.Response, error) {
	return retry.DoWithData(
		func() (*http.Response, error) {
			req, err := newRequest()
			if err != nil {
				return nil, retry.Unrecoverable(err)
			}
			return c.Do(ctx, req)
		},
		retry.Context(ctx),
		retry.Attempts(c.attempts),
		retry.DelayType(func(n uint, _ error, _ *retry.Config) time.Duration {
			return time.Duration(n+1) * c.delay
		}),
		retry.RetryIf(func(err error) bool {
			return retry.IsRecoverable(err) && c.retryIf != nil && c.retryIf(err)
		}),
		retry.OnRetry(func(n uint, err error) {
			slog.Debug("Retrying request", "attempt", n+1, "error", err)
		}),
		retry.LastErrorOnly(true),
	)
}

func getFailedResponseError(resp *http.Response) error {
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
}

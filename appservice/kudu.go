package appservice

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/entigolabs/azure-fluent/common"
)

// KuduClient talks to the SCM site of an app. Deployments are retried while the SCM site is
// still starting and answers with 502.
type KuduClient struct {
	baseURL  string
	username string
	password string
	http     *common.HttpClient
}

func newKuduClient(baseURL, username, password string, delay time.Duration) *KuduClient {
	return &KuduClient{
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		username: username,
		password: password,
		http: common.NewHttpClient(0, kuduAttempts, delay, func(err error) bool {
			return common.HasStatusCode(err, http.StatusBadGateway)
		}),
	}
}

func (k *KuduClient) WarDeploy(ctx context.Context, war io.Reader, appName string) error {
	query := url.Values{"isAsync": {"true"}}
	if appName != "" {
		query.Set("name", appName)
	}
	return k.deploy(ctx, "/api/wardeploy?"+query.Encode(), war)
}

func (k *KuduClient) ZipDeploy(ctx context.Context, zip io.Reader) error {
	return k.deploy(ctx, "/api/zipdeploy?isAsync=true", zip)
}

func (k *KuduClient) deploy(ctx context.Context, endpoint string, content io.Reader) error {
	body, err := seekable(content)
	if err != nil {
		return err
	}
	slog.Debug("Deploying to kudu", "url", k.baseURL+endpoint)
	resp, err := k.http.DoWithRetry(ctx, func() (*http.Request, error) {
		if _, err := body.Seek(0, io.SeekStart); err != nil {
			return nil, err
		}
		return k.newRequest(ctx, http.MethodPost, endpoint, io.NopCloser(body))
	})
	if err != nil {
		return fmt.Errorf("failed to deploy to %s: %w", k.baseURL, err)
	}
	return resp.Body.Close()
}

// StreamApplicationLogs opens the application log stream. The caller closes the returned reader.
func (k *KuduClient) StreamApplicationLogs(ctx context.Context) (io.ReadCloser, error) {
	req, err := k.newRequest(ctx, http.MethodGet, "/api/logstream/application", nil)
	if err != nil {
		return nil, err
	}
	resp, err := k.http.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to open log stream of %s: %w", k.baseURL, err)
	}
	return resp.Body, nil
}

func (k *KuduClient) newRequest(ctx context.Context, method, endpoint string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, k.baseURL+endpoint, body)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(k.username, k.password)
	if body != nil {
		req.Header.Set("Content-Type", "application/octet-stream")
	}
	return req, nil
}

func seekable(content io.Reader) (io.ReadSeeker, error) {
	if seeker, ok := content.(io.ReadSeeker); ok {
		return seeker, nil
	}
	data, err := io.ReadAll(content)
	if err != nil {
		return nil, fmt.Errorf("failed to read deployment content: %w", err)
	}
	return bytes.NewReader(data), nil
}

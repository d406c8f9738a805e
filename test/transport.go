package test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/arm"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
)

// Credential is a token credential that never leaves the process.
type Credential struct{}

func (Credential) GetToken(_ context.Context, _ policy.TokenRequestOptions) (azcore.AccessToken, error) {
	return azcore.AccessToken{Token: "fake-token", ExpiresOn: time.Now().Add(time.Hour)}, nil
}

type Request struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	Body   []byte
}

func (r Request) JSON(v any) error {
	return json.Unmarshal(r.Body, v)
}

func (r Request) String() string {
	return r.Method + " " + r.Path
}

// Responder builds the status and body for a matched request. A string or []byte body is sent
// as is, anything else is encoded as JSON.
type Responder func(req Request) (int, any)

type route struct {
	method  string
	pattern *regexp.Regexp
	respond Responder
}

// Transport is a policy.Transporter answering ARM requests from registered routes. Unmatched
// requests get an ARM style 404.
type Transport struct {
	mu       sync.Mutex
	routes   []route
	requests []Request
}

func NewTransport() *Transport {
	return &Transport{}
}

// On registers a fixed response for method and a path regular expression anchored at both ends.
// Later registrations take precedence.
func (t *Transport) On(method, pathPattern string, status int, body any) *Transport {
	return t.OnFunc(method, pathPattern, func(Request) (int, any) {
		return status, body
	})
}

func (t *Transport) OnFunc(method, pathPattern string, respond Responder) *Transport {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.routes = append(t.routes, route{
		method:  method,
		pattern: regexp.MustCompile("(?i)^" + pathPattern + "$"),
		respond: respond,
	})
	return t
}

func (t *Transport) Do(req *http.Request) (*http.Response, error) {
	var body []byte
	if req.Body != nil {
		var err error
		body, err = io.ReadAll(req.Body)
		if err != nil {
			return nil, err
		}
		_ = req.Body.Close()
	}
	recorded := Request{
		Method: req.Method,
		Path:   req.URL.Path,
		Query:  req.URL.Query(),
		Header: req.Header.Clone(),
		Body:   body,
	}
	t.mu.Lock()
	t.requests = append(t.requests, recorded)
	respond := t.match(req.Method, req.URL.Path)
	t.mu.Unlock()

	status, payload := http.StatusNotFound, any(map[string]any{
		"error": map[string]string{
			"code":    "ResourceNotFound",
			"message": fmt.Sprintf("no route for %s %s", req.Method, req.URL.Path),
		},
	})
	if respond != nil {
		status, payload = respond(recorded)
	}
	return newResponse(req, status, payload)
}

func (t *Transport) match(method, path string) Responder {
	for i := len(t.routes) - 1; i >= 0; i-- {
		r := t.routes[i]
		if r.method == method && r.pattern.MatchString(path) {
			return r.respond
		}
	}
	return nil
}

// Requests returns the recorded requests, optionally filtered by method and a path substring.
func (t *Transport) Requests(method, pathContains string) []Request {
	t.mu.Lock()
	defer t.mu.Unlock()
	var result []Request
	for _, r := range t.requests {
		if method != "" && r.Method != method {
			continue
		}
		if pathContains != "" && !strings.Contains(strings.ToLower(r.Path), strings.ToLower(pathContains)) {
			continue
		}
		result = append(result, r)
	}
	return result
}

// Calls returns "METHOD path" for every recorded request in order.
func (t *Transport) Calls() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	calls := make([]string, 0, len(t.requests))
	for _, r := range t.requests {
		calls = append(calls, r.String())
	}
	return calls
}

// ClientOptions returns ARM client options routing everything through the transport without
// retries or provider registration.
func (t *Transport) ClientOptions() *arm.ClientOptions {
	return &arm.ClientOptions{
		ClientOptions: policy.ClientOptions{
			Transport: t,
			Retry:     policy.RetryOptions{MaxRetries: -1},
		},
		DisableRPRegistration: true,
	}
}

func newResponse(req *http.Request, status int, payload any) (*http.Response, error) {
	var data []byte
	switch p := payload.(type) {
	case nil:
	case string:
		data = []byte(p)
	case []byte:
		data = p
	default:
		var err error
		data, err = json.Marshal(p)
		if err != nil {
			return nil, err
		}
	}
	header := http.Header{}
	if len(data) > 0 {
		header.Set("Content-Type", "application/json")
	}
	return &http.Response{
		StatusCode:    status,
		Status:        fmt.Sprintf("%d %s", status, http.StatusText(status)),
		Header:        header,
		Body:          io.NopCloser(bytes.NewReader(data)),
		ContentLength: int64(len(data)),
		Request:       req,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
	}, nil
}

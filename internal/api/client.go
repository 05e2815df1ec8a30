// Package api is the network boundary towards the accounts web application:
// record deletion, JSON calls and page fetches.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	applog "conti/internal/log"
)

// maxErrorBody caps how much of a failed response is kept in a StatusError.
const maxErrorBody = 4 << 10

var ErrEmptyID = errors.New("record id is empty")

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Code   int
	Status string
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body != "" {
		return e.Body
	}
	return e.Status
}

// Client talks to the web application that renders the record lists.
type Client struct {
	base   *url.URL
	http   *http.Client
	logger *applog.Logger
	group  singleflight.Group
}

// NewClient creates a client for baseURL. An empty baseURL only accepts absolute URLs.
func NewClient(baseURL string, timeout time.Duration, logger *applog.Logger) (*Client, error) {
	if logger == nil {
		logger = applog.Discard()
	}
	logger = logger.WithComponent(applog.ComponentAPI)

	var base *url.URL
	if baseURL != "" {
		u, err := url.Parse(baseURL)
		if err != nil {
			return nil, fmt.Errorf("parse base url: %w", err)
		}
		base = u
	}
	return &Client{
		base:   base,
		http:   newHTTPClientWithPooling(timeout, logger),
		logger: logger,
	}, nil
}

// newHTTPClientWithPooling creates an HTTP client with connection pooling and
// keep-alive, logging every request through applog.Transport.
func newHTTPClientWithPooling(timeout time.Duration, logger *applog.Logger) *http.Client {
	dialer := &net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	transport := &http.Transport{
		Proxy:       http.ProxyFromEnvironment,
		DialContext: dialer.DialContext,

		MaxIdleConns:        20,
		MaxIdleConnsPerHost: 5,
		IdleConnTimeout:     90 * time.Second,

		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		ForceAttemptHTTP2:     true,
	}

	return &http.Client{
		Transport: &applog.Transport{Base: transport, Logger: logger},
		Timeout:   timeout,
	}
}

// CloseIdleConnections releases pooled connections.
func (c *Client) CloseIdleConnections() {
	c.http.CloseIdleConnections()
}

// Resolve turns ref into an absolute URL against the base URL.
func (c *Client) Resolve(ref string) (string, error) {
	r, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("parse url %q: %w", ref, err)
	}
	if r.IsAbs() {
		return r.String(), nil
	}
	if c.base == nil {
		return "", fmt.Errorf("relative url %q without a base url", ref)
	}
	return c.base.ResolveReference(r).String(), nil
}

// RecordPath builds "<endpoint>/<escaped id>".
func RecordPath(endpoint, id string) string {
	return strings.TrimSuffix(endpoint, "/") + "/" + url.PathEscape(id)
}

// DeleteRecord issues DELETE <endpoint>/<id>. Any 2xx is success.
// Concurrent calls for the same record share one request.
func (c *Client) DeleteRecord(ctx context.Context, endpoint, id string) error {
	if id == "" {
		return ErrEmptyID
	}
	path := RecordPath(endpoint, id)
	_, err, shared := c.group.Do(http.MethodDelete+" "+path, func() (any, error) {
		return nil, c.do(ctx, http.MethodDelete, path, nil, nil)
	})
	if shared {
		c.logger.DebugContext(ctx, "Deletion shared an in-flight request",
			applog.NewFields().WithRecord(endpoint, id).ToSlice()...)
	}
	if err != nil {
		return fmt.Errorf("delete %s: %w", path, err)
	}
	return nil
}

// FetchJSON performs a request and decodes a JSON response into out.
// Non-JSON responses leave out untouched. A non-2xx response yields a
// StatusError carrying the response text, or the status when empty.
func (c *Client) FetchJSON(ctx context.Context, method, ref string, body, out any) error {
	return c.do(ctx, method, ref, body, out)
}

// FetchDocument GETs a rendered page.
func (c *Client) FetchDocument(ctx context.Context, ref string) ([]byte, error) {
	var buf bytes.Buffer
	if err := c.send(ctx, http.MethodGet, ref, nil, func(resp *http.Response) error {
		_, err := io.Copy(&buf, resp.Body)
		return err
	}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (c *Client) do(ctx context.Context, method, ref string, body, out any) error {
	return c.send(ctx, method, ref, body, func(resp *http.Response) error {
		if out == nil || !strings.Contains(resp.Header.Get("Content-Type"), "application/json") {
			_, _ = io.Copy(io.Discard, resp.Body)
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	})
}

func (c *Client) send(ctx context.Context, method, ref string, body any, handle func(*http.Response) error) error {
	target, err := c.Resolve(ref)
	if err != nil {
		return err
	}

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json, text/html;q=0.9, */*;q=0.5")
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{
			Code:   resp.StatusCode,
			Status: resp.Status,
			Body:   strings.TrimSpace(string(b)),
		}
	}
	return handle(resp)
}

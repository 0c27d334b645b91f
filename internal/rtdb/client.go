package rtdb

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"sort"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Authenticator supplies the query parameter that authorizes a request,
// e.g. ("auth", idToken) or ("access_token", oauthToken).
type Authenticator interface {
	QueryParam(ctx context.Context) (key, value string, err error)
}

// Client talks to one database over REST.
type Client struct {
	baseURL      string
	auth         Authenticator
	httpClient   *http.Client
	streamClient *http.Client
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets the client used for both requests and streams.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(cl *Client) {
		cl.httpClient = c
		cl.streamClient = c
	}
}

// NewClient creates a Client for databaseURL. A URL without a scheme is
// treated as https. auth may be nil for publicly readable databases.
func NewClient(databaseURL string, auth Authenticator, opts ...ClientOption) *Client {
	base := strings.TrimRight(strings.TrimSpace(databaseURL), "/")
	if !strings.Contains(base, "://") {
		base = "https://" + base
	}
	c := &Client{
		baseURL:      base,
		auth:         auth,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		streamClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the normalized database URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Get reads the value at p.
func (c *Client) Get(ctx context.Context, p string) (*Result, error) {
	p, err := normalizePath(p)
	if err != nil {
		return nil, err
	}
	body, err := c.do(ctx, http.MethodGet, p, nil)
	if err != nil {
		return nil, err
	}
	return NewResult(p, body), nil
}

// Set writes v at p, replacing whatever was there. The result is the value
// echoed back by the server.
func (c *Client) Set(ctx context.Context, p string, v any) (*Result, error) {
	p, err := normalizePath(p)
	if err != nil {
		return nil, err
	}
	payload, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal value for %s: %w", p, err)
	}
	body, err := c.do(ctx, http.MethodPut, p, payload)
	if err != nil {
		return nil, err
	}
	return NewResult(p, body), nil
}

// Update writes the given children of p without touching the others. Keys may
// be relative multi-segment paths such as "lock/state".
func (c *Client) Update(ctx context.Context, p string, values map[string]any) (*Result, error) {
	p, err := normalizePath(p)
	if err != nil {
		return nil, err
	}
	payload, err := updateBody(values)
	if err != nil {
		return nil, err
	}
	body, err := c.do(ctx, http.MethodPatch, p, payload)
	if err != nil {
		return nil, err
	}
	return NewResult(p, body), nil
}

// Push appends v under p with a server-generated key and returns that key.
func (c *Client) Push(ctx context.Context, p string, v any) (string, error) {
	p, err := normalizePath(p)
	if err != nil {
		return "", err
	}
	payload, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to marshal value for %s: %w", p, err)
	}
	body, err := c.do(ctx, http.MethodPost, p, payload)
	if err != nil {
		return "", err
	}
	name := gjson.GetBytes(body, "name").String()
	if name == "" {
		return "", fmt.Errorf("push to %s: response has no name", p)
	}
	return name, nil
}

// Delete removes the value at p.
func (c *Client) Delete(ctx context.Context, p string) error {
	p, err := normalizePath(p)
	if err != nil {
		return err
	}
	_, err = c.do(ctx, http.MethodDelete, p, nil)
	return err
}

func (c *Client) do(ctx context.Context, method, p string, payload []byte) ([]byte, error) {
	req, err := c.newRequest(ctx, method, p, payload)
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{"method": method, "path": p}).Debug("rtdb request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rtdb %s %s: %w", method, p, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response for %s: %w", p, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newError(resp.StatusCode, body)
	}
	return body, nil
}

func (c *Client) newRequest(ctx context.Context, method, p string, payload []byte) (*http.Request, error) {
	u, err := c.url(ctx, p)
	if err != nil {
		return nil, err
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", p, err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

func (c *Client) url(ctx context.Context, p string) (string, error) {
	segments := strings.Split(strings.Trim(p, "/"), "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	u := c.baseURL + "/" + strings.Join(segments, "/") + ".json"

	if c.auth == nil {
		return u, nil
	}
	key, value, err := c.auth.QueryParam(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to authorize request: %w", err)
	}
	if key == "" {
		return u, nil
	}
	q := url.Values{}
	q.Set(key, value)
	return u + "?" + q.Encode(), nil
}

// normalizePath returns p as a clean absolute path.
func normalizePath(p string) (string, error) {
	p = strings.TrimSpace(p)
	if strings.ContainsAny(p, ".$#[]") {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, p)
	}
	return path.Clean("/" + p), nil
}

// updateBody builds the multi-path update document. Keys are applied in
// sorted order so the body is deterministic.
func updateBody(values map[string]any) ([]byte, error) {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	body := []byte("{}")
	for _, k := range keys {
		if strings.Trim(k, "/") == "" || strings.ContainsAny(k, ".$#[]") {
			return nil, fmt.Errorf("%w: update key %q", ErrInvalidPath, k)
		}
		var err error
		body, err = sjson.SetBytes(body, escapeKey(strings.Trim(k, "/")), values[k])
		if err != nil {
			return nil, fmt.Errorf("failed to encode update key %q: %w", k, err)
		}
	}
	return body, nil
}

var keyEscaper = strings.NewReplacer(
	`\`, `\\`,
	`|`, `\|`,
	`@`, `\@`,
	`*`, `\*`,
	`?`, `\?`,
)

// escapeKey makes k a single literal sjson path component.
func escapeKey(k string) string {
	k = keyEscaper.Replace(k)
	if strings.HasPrefix(k, ":") {
		k = `\` + k
	}
	return k
}

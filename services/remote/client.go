// Package remotesvc talks to a remote document store and identity provider over HTTP.
package remotesvc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/campuscopilot/core"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error  string            `json:"error"`
	Kind   string            `json:"kind"`
	Fields []core.FieldError `json:"fields,omitempty"`
}

// Credentials is the body of sign-up and sign-in requests.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is returned by sign-up and sign-in.
type AuthResponse struct {
	UID   string `json:"uid"`
	Token string `json:"token"`
}

type Client struct {
	baseURL string
	http    *http.Client
	logger  core.Logger

	retryBase time.Duration
	retryMax  time.Duration

	mu    sync.RWMutex
	token string
}

var (
	_ core.DocumentStore    = (*Client)(nil) // interface compliance check
	_ core.IdentityProvider = (*Client)(nil)
)

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithReconnectBackoff sets the exponential backoff of watch reconnects.
func WithReconnectBackoff(base, max time.Duration) Option {
	return func(c *Client) { c.retryBase, c.retryMax = base, max }
}

// New returns a client of the backend at baseURL. token may be empty until SignIn.
func New(baseURL, token string, logger core.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL:   baseURL,
		http:      &http.Client{},
		logger:    logger,
		retryBase: 500 * time.Millisecond,
		retryMax:  30 * time.Second,
		token:     token,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Token returns the bearer token of the signed-in account.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

func (c *Client) url(parts ...string) string {
	u := c.baseURL + "/v1"
	for _, p := range parts {
		u += "/" + url.PathEscape(p)
	}
	return u
}

func (c *Client) newRequest(ctx context.Context, method, u string, body interface{}) (*http.Request, error) {
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, errors.Wrap(err, "encoding request")
		}
		r = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, r)
	if err != nil {
		return nil, errors.Wrap(err, "building request")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

// responseErr turns a failed response into a typed error.
func responseErr(op string, resp *http.Response) error {
	var body ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil || body.Error == "" {
		return core.E(kindOfStatus(resp.StatusCode), op, http.StatusText(resp.StatusCode))
	}
	kind := core.ParseKind(body.Kind)
	if body.Kind == "" {
		kind = kindOfStatus(resp.StatusCode)
	}
	if len(body.Fields) > 0 {
		return core.E(kind, op, body.Error, core.NewValidationError(errors.New(body.Error), body.Fields...))
	}
	return core.E(kind, op, body.Error)
}

func kindOfStatus(status int) core.Kind {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return core.KindValidation
	case http.StatusUnauthorized, http.StatusForbidden:
		return core.KindAuth
	case http.StatusNotFound:
		return core.KindNotFound
	case http.StatusConflict:
		return core.KindAlreadyExists
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return core.KindNetwork
	}
	return core.KindInternal
}

// do sends the request and decodes a successful response into out (when not nil).
func (c *Client) do(ctx context.Context, op, method, u string, body, out interface{}) error {
	req, err := c.newRequest(ctx, method, u, body)
	if err != nil {
		return core.E(core.KindInternal, op, err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return core.E(core.KindNetwork, op, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= http.StatusBadRequest {
		return responseErr(op, resp)
	}
	if out == nil {
		return nil
	}
	if err = json.NewDecoder(resp.Body).Decode(out); err != nil {
		return core.E(core.KindNetwork, op, errors.Wrap(err, "decoding response"))
	}
	return nil
}

func (c *Client) authenticate(ctx context.Context, op, path, email, password string) (string, error) {
	var auth AuthResponse
	if err := c.do(ctx, op, http.MethodPost, c.url("identity", path), Credentials{Email: email, Password: password}, &auth); err != nil {
		return "", err
	}
	c.SetToken(auth.Token)
	return auth.UID, nil
}

func (c *Client) SignUp(ctx context.Context, email, password string) (string, error) {
	return c.authenticate(ctx, "remote.SignUp", "signup", email, password)
}

func (c *Client) SignIn(ctx context.Context, email, password string) (string, error) {
	return c.authenticate(ctx, "remote.SignIn", "signin", email, password)
}

// SignOut forgets the token; the backend keeps no session.
func (c *Client) SignOut(context.Context) error {
	c.SetToken("")
	return nil
}

func (c *Client) Create(ctx context.Context, collection string, data map[string]interface{}) (core.Document, error) {
	var doc core.Document
	err := c.do(ctx, "remote.Create", http.MethodPost, c.url("collections", collection), data, &doc)
	return doc, err
}

func (c *Client) Set(ctx context.Context, collection, id string, data map[string]interface{}) (core.Document, error) {
	const op = "remote.Set"
	if id == "" {
		return core.Document{}, core.E(core.KindValidation, op, "document id is required")
	}
	var doc core.Document
	err := c.do(ctx, op, http.MethodPut, c.url("collections", collection, id), data, &doc)
	return doc, err
}

func (c *Client) Get(ctx context.Context, collection, id string) (core.Document, error) {
	var doc core.Document
	err := c.do(ctx, "remote.Get", http.MethodGet, c.url("collections", collection, id), nil, &doc)
	return doc, err
}

func (c *Client) List(ctx context.Context, collection string) ([]core.Document, error) {
	docs := make([]core.Document, 0)
	if err := c.do(ctx, "remote.List", http.MethodGet, c.url("collections", collection), nil, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

func (c *Client) Delete(ctx context.Context, collection, id string) error {
	return c.do(ctx, "remote.Delete", http.MethodDelete, c.url("collections", collection, id), nil, nil)
}

func (c *Client) String() string {
	return fmt.Sprintf("remote(%s)", c.baseURL)
}

// Package remote implements domain.WeightAPI over HTTP.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"trackr/internal/domain"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
)

// StatusError is returned when the API answers outside the 2xx range.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("remote: status %d", e.Code)
	}
	return fmt.Sprintf("remote: status %d: %s", e.Code, e.Message)
}

// Client talks to the Remote Weight API. A 2xx response settles with its
// status code; anything else is an error.
type Client struct {
	baseURL string
	http    *http.Client
	log     zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the base transport. Bearer tokens are layered on top.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.http = c }
}

// WithLogger sets the client's logger.
func WithLogger(l zerolog.Logger) Option {
	return func(cl *Client) { cl.log = l }
}

// New creates a Client for the API rooted at baseURL (e.g. http://host:8080).
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ domain.WeightAPI = (*Client)(nil)

// FetchUser returns the user document including every weight entry.
func (c *Client) FetchUser(ctx context.Context, user, token string) (*domain.FetchUserResponse, error) {
	resp, err := c.do(ctx, token, http.MethodGet, c.userPath(user), nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close() //nolint:errcheck

	out := &domain.FetchUserResponse{Status: resp.StatusCode}
	if err := json.NewDecoder(resp.Body).Decode(&out.Data); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("remote: decode user: %w", err)
	}
	return out, nil
}

// AddEntry records weight for date.
func (c *Client) AddEntry(ctx context.Context, user, token, date string, weight float64) (*domain.StatusResponse, error) {
	return c.status(ctx, token, http.MethodPost, c.userPath(user)+"/weight", entryBody{Date: date, Weight: weight})
}

// DeleteEntry removes the entry for date.
func (c *Client) DeleteEntry(ctx context.Context, user, token, date string) (*domain.StatusResponse, error) {
	return c.status(ctx, token, http.MethodDelete, c.userPath(user)+"/weight?date="+url.QueryEscape(date), nil)
}

// ModifyEntry replaces the weight recorded for date.
func (c *Client) ModifyEntry(ctx context.Context, user, token, date string, weight float64) (*domain.StatusResponse, error) {
	return c.status(ctx, token, http.MethodPut, c.userPath(user)+"/weight", entryBody{Date: date, Weight: weight})
}

// Login exchanges a username and password for a bearer token.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	resp, err := c.do(ctx, "", http.MethodPost, "/api/auth/login", map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		return "", err
	}
	defer resp.Body.Close() //nolint:errcheck

	var body struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("remote: decode login: %w", err)
	}
	return body.Token, nil
}

type entryBody struct {
	Date   string  `json:"date"`
	Weight float64 `json:"weight"`
}

func (c *Client) userPath(user string) string {
	return "/api/users/" + url.PathEscape(user)
}

func (c *Client) status(ctx context.Context, token, method, path string, body any) (*domain.StatusResponse, error) {
	resp, err := c.do(ctx, token, method, path, body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close() //nolint:errcheck
	_, _ = io.Copy(io.Discard, resp.Body)
	return &domain.StatusResponse{Status: resp.StatusCode}, nil
}

// do sends the request and rejects non-2xx responses. The caller closes the
// body of a successful response.
func (c *Client) do(ctx context.Context, token, method, path string, body any) (*http.Response, error) {
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		r = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, r)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.clientFor(ctx, token).Do(req)
	if err != nil {
		c.log.Debug().Err(err).Str("method", method).Str("path", path).Msg("remote request failed")
		return nil, fmt.Errorf("remote: %s %s: %w", method, path, err)
	}
	c.log.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("remote request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close() //nolint:errcheck
		var e struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&e)
		return nil, &StatusError{Code: resp.StatusCode, Message: e.Error}
	}
	return resp, nil
}

func (c *Client) clientFor(ctx context.Context, token string) *http.Client {
	if token == "" {
		return c.http
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.http)
	return oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: token,
		TokenType:   "Bearer",
	}))
}

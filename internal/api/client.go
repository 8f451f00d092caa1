// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/moazzam-qureshi/agentic-chat-ui/internal/auth"
	"github.com/moazzam-qureshi/agentic-chat-ui/internal/config"
)

// =============================================================================
// HTTP CLIENTS
// =============================================================================

// maxErrorBodySize caps how much of an error response body is read.
const maxErrorBodySize = 64 * 1024

var (
	// PERFORMANCE: Connection pooling reduces TCP handshake overhead.
	// Shared HTTP client for all non-streaming requests.
	sharedHTTPClient = &http.Client{
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
		},
		Timeout: time.Duration(config.DefaultRequestTimeoutSecs) * time.Second,
	}

	// sharedStreamingClient is used for generation requests.
	// No timeout: a stream lives until done or cancelled via context.
	sharedStreamingClient = &http.Client{
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
		},
	}
)

// =============================================================================
// CLIENT
// =============================================================================

// Client talks to the chat server. All authenticated requests go through
// Do, which owns the 401-refresh-retry cycle.
type Client struct {
	baseURL   string
	store     auth.Store
	http      *http.Client
	streaming *http.Client

	// refreshMu guards pending. Only one refresh call may be in flight
	// system-wide; concurrent callers attach to the pending call.
	refreshMu sync.Mutex
	pending   *refreshCall
}

// refreshCall is the shared handle for an in-flight refresh. done is
// closed once creds/err are set.
type refreshCall struct {
	done  chan struct{}
	creds auth.Credentials
	err   error
}

// NewClient creates a client for the configured server.
func NewClient(cfg *config.Config, store auth.Store) *Client {
	httpClient := sharedHTTPClient
	if cfg.RequestTimeout() != httpClient.Timeout {
		clone := *sharedHTTPClient
		clone.Timeout = cfg.RequestTimeout()
		httpClient = &clone
	}
	return &Client{
		baseURL:   cfg.Server.BaseURL,
		store:     store,
		http:      httpClient,
		streaming: sharedStreamingClient,
	}
}

// Request describes one call to the server. Body is held as bytes so the
// request can be re-issued after a credential refresh.
type Request struct {
	Method      string
	Path        string
	Body        []byte
	ContentType string
	// Stream selects the no-timeout client for long-lived response bodies.
	Stream bool
}

// maxAuthRetries bounds the refresh-and-retry cycle. A second 401 after
// a successful refresh is a hard failure, never another refresh.
const maxAuthRetries = 1

// Do sends the request with the current access token and retries it once
// after a successful token refresh if the server answered 401. Callers
// own closing the response body.
func (c *Client) Do(ctx context.Context, req Request) (*http.Response, error) {
	creds, err := c.store.Load()
	if err != nil && !errors.Is(err, auth.ErrNotAuthenticated) {
		return nil, err
	}

	for attempt := 0; ; attempt++ {
		resp, err := c.send(ctx, req, creds.AccessToken)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode != http.StatusUnauthorized {
			return resp, nil
		}
		resp.Body.Close()

		// SECURITY: Log the rejection, never the token itself.
		log.Printf("AUTH_REJECTED | method=%s path=%s attempt=%d", req.Method, req.Path, attempt)

		if attempt >= maxAuthRetries {
			return nil, &AuthorizationError{
				Reason: "access token rejected after refresh",
				Err:    ErrSessionExpired,
			}
		}

		creds, err = c.refreshAfter(ctx, creds.AccessToken)
		if err != nil {
			return nil, err
		}
	}
}

// send builds and issues one HTTP request.
func (c *Client) send(ctx context.Context, req Request, accessToken string) (*http.Response, error) {
	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, c.baseURL+req.Path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	if req.ContentType != "" {
		httpReq.Header.Set("Content-Type", req.ContentType)
	}
	if accessToken != "" {
		httpReq.Header.Set("Authorization", "Bearer "+accessToken)
	}

	client := c.http
	if req.Stream {
		client = c.streaming
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, &TransportError{Op: req.Method + " " + req.Path, Err: err}
	}
	return resp, nil
}

// =============================================================================
// REFRESH COORDINATION
// =============================================================================

// refreshAfter obtains fresh credentials after failedAccess was rejected.
// If a refresh is already in flight, the caller waits for its outcome
// instead of starting a second one. If the store already holds a token
// different from the rejected one, another caller finished refreshing
// and no network call is needed.
func (c *Client) refreshAfter(ctx context.Context, failedAccess string) (auth.Credentials, error) {
	c.refreshMu.Lock()
	if c.pending != nil {
		call := c.pending
		c.refreshMu.Unlock()
		select {
		case <-call.done:
			return call.creds, call.err
		case <-ctx.Done():
			return auth.Credentials{}, ctx.Err()
		}
	}

	if creds, err := c.store.Load(); err == nil && creds.AccessToken != failedAccess {
		c.refreshMu.Unlock()
		return creds, nil
	}

	call := &refreshCall{done: make(chan struct{})}
	c.pending = call
	c.refreshMu.Unlock()

	call.creds, call.err = c.refresh(ctx)

	c.refreshMu.Lock()
	c.pending = nil
	c.refreshMu.Unlock()
	close(call.done)

	return call.creds, call.err
}

// refresh exchanges the stored refresh token for a new pair. On failure
// the stored credentials are cleared: the refresh token is single-use,
// so a failed exchange leaves nothing worth keeping.
func (c *Client) refresh(ctx context.Context) (auth.Credentials, error) {
	creds, err := c.store.Load()
	if err != nil || creds.RefreshToken == "" {
		return auth.Credentials{}, &AuthorizationError{
			Reason: "no refresh token available",
			Err:    ErrSessionExpired,
		}
	}

	body, err := json.Marshal(map[string]string{"refresh_token": creds.RefreshToken})
	if err != nil {
		return auth.Credentials{}, fmt.Errorf("failed to encode refresh request: %w", err)
	}

	resp, err := c.send(ctx, Request{
		Method:      http.MethodPost,
		Path:        "/api/auth/refresh",
		Body:        body,
		ContentType: "application/json",
	}, "")
	if err != nil {
		return auth.Credentials{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("TOKEN_REFRESH | outcome=rejected status=%d", resp.StatusCode)
		c.store.Clear()
		return auth.Credentials{}, &AuthorizationError{
			Reason: fmt.Sprintf("refresh rejected with HTTP %d", resp.StatusCode),
			Err:    ErrSessionExpired,
		}
	}

	fresh, err := decodeTokenPair(resp.Body)
	if err != nil {
		c.store.Clear()
		return auth.Credentials{}, &AuthorizationError{Reason: err.Error(), Err: ErrSessionExpired}
	}
	if err := c.store.Save(fresh); err != nil {
		return auth.Credentials{}, err
	}
	log.Printf("TOKEN_REFRESH | outcome=ok")
	return fresh, nil
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

// tokenPairResponse is the body of login and refresh responses.
type tokenPairResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

func decodeTokenPair(r io.Reader) (auth.Credentials, error) {
	var pair tokenPairResponse
	if err := json.NewDecoder(r).Decode(&pair); err != nil {
		return auth.Credentials{}, fmt.Errorf("failed to parse token response: %w", err)
	}
	creds := auth.Credentials{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}
	if !creds.Valid() {
		return auth.Credentials{}, errors.New("token response missing tokens")
	}
	return creds, nil
}

// errorFromResponse drains a non-success response into an APIError.
func errorFromResponse(resp *http.Response) error {
	defer resp.Body.Close()

	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
	var parsed struct {
		Error   string `json:"error"`
		Message string `json:"message"`
		Detail  string `json:"detail"`
	}
	msg := ""
	if json.Unmarshal(data, &parsed) == nil {
		switch {
		case parsed.Error != "":
			msg = parsed.Error
		case parsed.Message != "":
			msg = parsed.Message
		case parsed.Detail != "":
			msg = parsed.Detail
		}
	}
	return &APIError{StatusCode: resp.StatusCode, Message: msg}
}

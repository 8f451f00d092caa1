// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// =============================================================================
// SESSION LIFECYCLE
// =============================================================================

// Login authenticates with email and password and stores the returned
// token pair.
func (c *Client) Login(ctx context.Context, email, password string) error {
	body, err := json.Marshal(map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return fmt.Errorf("failed to encode login request: %w", err)
	}

	// Login is pre-credential: sent directly, not through Do, so a stale
	// stored token can never interfere with signing in.
	resp, err := c.send(ctx, Request{
		Method:      http.MethodPost,
		Path:        "/api/auth/login",
		Body:        body,
		ContentType: "application/json",
	}, "")
	if err != nil {
		return err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		resp.Body.Close()
		return &AuthorizationError{Reason: "invalid email or password"}
	}
	if resp.StatusCode != http.StatusOK {
		return errorFromResponse(resp)
	}
	defer resp.Body.Close()

	creds, err := decodeTokenPair(resp.Body)
	if err != nil {
		return err
	}
	return c.store.Save(creds)
}

// Logout revokes the session server-side and clears stored credentials.
// Local credentials are cleared even when the server call fails, so the
// user is always signed out locally.
func (c *Client) Logout(ctx context.Context) error {
	resp, err := c.Do(ctx, Request{
		Method: http.MethodPost,
		Path:   "/api/auth/logout",
	})
	if resp != nil {
		resp.Body.Close()
	}

	if clearErr := c.store.Clear(); clearErr != nil {
		return clearErr
	}
	return err
}

// Authenticated reports whether credentials are stored locally. It does
// not verify them with the server.
func (c *Client) Authenticated() bool {
	_, err := c.store.Load()
	return err == nil
}

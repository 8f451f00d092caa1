// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/moazzam-qureshi/agentic-chat-ui/internal/auth"
	"github.com/moazzam-qureshi/agentic-chat-ui/internal/config"
)

func newTestClient(t *testing.T, serverURL string) (*Client, auth.Store) {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Server.BaseURL = serverURL

	store := auth.NewMemoryStore()
	return NewClient(cfg, store), store
}

func seedCredentials(t *testing.T, store auth.Store, access, refresh string) {
	t.Helper()
	if err := store.Save(auth.Credentials{AccessToken: access, RefreshToken: refresh}); err != nil {
		t.Fatalf("failed to seed credentials: %v", err)
	}
}

func writeTokenPair(w http.ResponseWriter, access, refresh string) {
	json.NewEncoder(w).Encode(map[string]string{
		"access_token":  access,
		"refresh_token": refresh,
	})
}

func TestDoAttachesBearerToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
	}))
	defer srv.Close()

	client, store := newTestClient(t, srv.URL)
	seedCredentials(t, store, "tok-1", "ref-1")

	resp, err := client.Do(context.Background(), Request{Method: http.MethodGet, Path: "/api/documents"})
	if err != nil {
		t.Fatalf("Do failed: %v", err)
	}
	resp.Body.Close()

	if gotAuth != "Bearer tok-1" {
		t.Errorf("Authorization = %q, expected %q", gotAuth, "Bearer tok-1")
	}
}

func TestDoUnauthenticatedSendsNoHeader(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
	}))
	defer srv.Close()

	client, _ := newTestClient(t, srv.URL)

	resp, err := client.Do(context.Background(), Request{Method: http.MethodGet, Path: "/api/documents"})
	if err != nil {
		t.Fatalf("Do failed: %v", err)
	}
	resp.Body.Close()

	if gotAuth != "" {
		t.Errorf("unauthenticated request carried header %q", gotAuth)
	}
}

func TestDoRefreshesOnceAndRetriesOnce(t *testing.T) {
	var refreshCalls, apiCalls atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth/refresh":
			refreshCalls.Add(1)
			writeTokenPair(w, "tok-new", "ref-new")
		case "/api/documents":
			apiCalls.Add(1)
			if r.Header.Get("Authorization") != "Bearer tok-new" {
				w.WriteHeader(http.StatusUnauthorized)
			}
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	client, store := newTestClient(t, srv.URL)
	seedCredentials(t, store, "tok-stale", "ref-stale")

	resp, err := client.Do(context.Background(), Request{Method: http.MethodGet, Path: "/api/documents"})
	if err != nil {
		t.Fatalf("Do failed: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, expected 200", resp.StatusCode)
	}
	if n := refreshCalls.Load(); n != 1 {
		t.Errorf("refresh calls = %d, expected exactly 1", n)
	}
	if n := apiCalls.Load(); n != 2 {
		t.Errorf("api calls = %d, expected original plus one retry", n)
	}

	// The new pair must be stored.
	creds, err := store.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if creds.AccessToken != "tok-new" || creds.RefreshToken != "ref-new" {
		t.Errorf("stored credentials = %+v", creds)
	}
}

func TestDoSecond401AfterRefreshIsHardFailure(t *testing.T) {
	var refreshCalls atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/auth/refresh" {
			refreshCalls.Add(1)
			writeTokenPair(w, "tok-new", "ref-new")
			return
		}
		// Reject every token, including the refreshed one.
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	client, store := newTestClient(t, srv.URL)
	seedCredentials(t, store, "tok-stale", "ref-stale")

	_, err := client.Do(context.Background(), Request{Method: http.MethodGet, Path: "/api/documents"})
	if !errors.Is(err, ErrSessionExpired) {
		t.Errorf("err = %v, expected ErrSessionExpired", err)
	}
	if n := refreshCalls.Load(); n != 1 {
		t.Errorf("refresh calls = %d, expected exactly 1 (no retry loop)", n)
	}
}

func TestDoFailedRefreshClearsCredentials(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	client, store := newTestClient(t, srv.URL)
	seedCredentials(t, store, "tok-stale", "ref-dead")

	_, err := client.Do(context.Background(), Request{Method: http.MethodGet, Path: "/api/documents"})
	if !errors.Is(err, ErrSessionExpired) {
		t.Errorf("err = %v, expected ErrSessionExpired", err)
	}
	if _, err := store.Load(); !errors.Is(err, auth.ErrNotAuthenticated) {
		t.Errorf("credentials should be cleared after failed refresh, got %v", err)
	}
}

func TestDoNoRefreshTokenFailsWithoutRefreshCall(t *testing.T) {
	var refreshCalls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/auth/refresh" {
			refreshCalls.Add(1)
		}
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	client, _ := newTestClient(t, srv.URL)

	_, err := client.Do(context.Background(), Request{Method: http.MethodGet, Path: "/api/documents"})
	if !errors.Is(err, ErrSessionExpired) {
		t.Errorf("err = %v, expected ErrSessionExpired", err)
	}
	if n := refreshCalls.Load(); n != 0 {
		t.Errorf("refresh endpoint called %d times with no refresh token", n)
	}
}

func TestConcurrent401sCollapseToOneRefresh(t *testing.T) {
	const concurrency = 8
	var refreshCalls atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth/refresh":
			refreshCalls.Add(1)
			writeTokenPair(w, "tok-new", "ref-new")
		default:
			if r.Header.Get("Authorization") != "Bearer tok-new" {
				w.WriteHeader(http.StatusUnauthorized)
			}
		}
	}))
	defer srv.Close()

	client, store := newTestClient(t, srv.URL)
	seedCredentials(t, store, "tok-stale", "ref-stale")

	var wg sync.WaitGroup
	errs := make([]error, concurrency)
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			resp, err := client.Do(context.Background(), Request{Method: http.MethodGet, Path: "/api/documents"})
			if err == nil {
				resp.Body.Close()
				if resp.StatusCode != http.StatusOK {
					err = errors.New("non-200 after retry")
				}
			}
			errs[i] = err
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Errorf("request %d failed: %v", i, err)
		}
	}
	if n := refreshCalls.Load(); n != 1 {
		t.Errorf("refresh calls = %d, expected exactly 1 for %d concurrent 401s", n, concurrency)
	}
}

func TestLoginStoresTokenPair(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/auth/login" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["email"] != "user@example.com" || body["password"] != "hunter2" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		writeTokenPair(w, "tok-login", "ref-login")
	}))
	defer srv.Close()

	client, store := newTestClient(t, srv.URL)

	if err := client.Login(context.Background(), "user@example.com", "hunter2"); err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	creds, err := store.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if creds.AccessToken != "tok-login" {
		t.Errorf("stored access token = %q", creds.AccessToken)
	}
}

func TestLoginRejectsBadPassword(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	client, store := newTestClient(t, srv.URL)

	err := client.Login(context.Background(), "user@example.com", "wrong")
	var authErr *AuthorizationError
	if !errors.As(err, &authErr) {
		t.Errorf("err = %v, expected AuthorizationError", err)
	}
	if _, err := store.Load(); !errors.Is(err, auth.ErrNotAuthenticated) {
		t.Error("failed login must not store credentials")
	}
}

func TestLogoutClearsEvenWhenServerFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client, store := newTestClient(t, srv.URL)
	seedCredentials(t, store, "tok", "ref")

	client.Logout(context.Background())

	if _, err := store.Load(); !errors.Is(err, auth.ErrNotAuthenticated) {
		t.Error("logout must clear local credentials even when the server call fails")
	}
}

func TestOpenGenerationStreamsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		if body["conversationId"] != "conv-1" || body["message"] != "hi" {
			t.Errorf("unexpected body: %v", body)
		}
		w.Write([]byte("data: {\"content\":\"ok\"}\n"))
	}))
	defer srv.Close()

	client, store := newTestClient(t, srv.URL)
	seedCredentials(t, store, "tok", "ref")

	body, err := client.OpenGeneration(context.Background(), "conv-1", "hi", GenerationOptions{})
	if err != nil {
		t.Fatalf("OpenGeneration failed: %v", err)
	}
	defer body.Close()

	buf := new(strings.Builder)
	if _, err := io.Copy(buf, body); err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if !strings.Contains(buf.String(), "\"ok\"") {
		t.Errorf("unexpected stream body %q", buf.String())
	}
}

func TestErrorFromResponseParsesMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"error":"file too large"}`))
	}))
	defer srv.Close()

	client, store := newTestClient(t, srv.URL)
	seedCredentials(t, store, "tok", "ref")

	_, err := client.UploadDocument(context.Background(), "big.pdf", []byte("x"))
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, expected APIError", err)
	}
	if apiErr.StatusCode != http.StatusUnprocessableEntity || apiErr.Message != "file too large" {
		t.Errorf("APIError = %+v", apiErr)
	}
}

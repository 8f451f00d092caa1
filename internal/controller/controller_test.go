// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package controller

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/moazzam-qureshi/agentic-chat-ui/internal/api"
	"github.com/moazzam-qureshi/agentic-chat-ui/internal/auth"
	"github.com/moazzam-qureshi/agentic-chat-ui/internal/config"
	"github.com/moazzam-qureshi/agentic-chat-ui/internal/transcript"
)

func newTestController(t *testing.T, handler http.Handler) (*Controller, *transcript.Assembler, chan Update, func()) {
	t.Helper()

	srv := httptest.NewServer(handler)

	cfg := config.DefaultConfig()
	cfg.Server.BaseURL = srv.URL

	store := auth.NewMemoryStore()
	if err := store.Save(auth.Credentials{AccessToken: "tok", RefreshToken: "ref"}); err != nil {
		t.Fatalf("failed to seed credentials: %v", err)
	}

	assembler := transcript.New("conv-1")
	updates := make(chan Update, 256)
	ctrl := New(api.NewClient(cfg, store), assembler, api.GenerationOptions{}, func(u Update) {
		updates <- u
	})
	return ctrl, assembler, updates, srv.Close
}

// writeDelta emits one marked delta line and flushes it to the client.
func writeDelta(w http.ResponseWriter, text string) {
	fmt.Fprintf(w, "data: {\"content\":%q}\n", text)
	w.(http.Flusher).Flush()
}

func writeDone(w http.ResponseWriter) {
	fmt.Fprint(w, "data: {\"content\":\"\",\"metadata\":{\"finish_reason\":\"stop\"}}\n")
	w.(http.Flusher).Flush()
}

// waitForState drains updates until the wanted terminal state arrives.
func waitForState(t *testing.T, updates chan Update, want State) Update {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case u := <-updates:
			if u.State == want {
				return u
			}
		case <-deadline:
			t.Fatalf("state %v not reached within 5s", want)
		}
	}
}

// waitForContent polls the transcript until the open assistant message
// holds the wanted content.
func waitForContent(t *testing.T, a *transcript.Assembler, want string) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		msgs := a.Snapshot()
		if len(msgs) > 0 && msgs[len(msgs)-1].Content == want {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("content %q not observed within 5s", want)
}

func TestFullTurn(t *testing.T) {
	ctrl, assembler, updates, stop := newTestController(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeDelta(w, "Hel")
		writeDelta(w, "lo")
		writeDone(w)
	}))
	defer stop()

	if err := ctrl.Send("greet me"); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	waitForState(t, updates, StateCompleted)

	msgs := assembler.Snapshot()
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	assistant := msgs[1]
	if assistant.Content != "Hello" {
		t.Errorf("content = %q, expected %q", assistant.Content, "Hello")
	}
	if !assistant.Finalized {
		t.Error("assistant message should be finalized")
	}
	if ctrl.State() != StateCompleted {
		t.Errorf("state = %v, expected completed", ctrl.State())
	}
}

func TestCancelMidStreamKeepsPartialContent(t *testing.T) {
	ctrl, assembler, _, stop := newTestController(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeDelta(w, "one ")
		writeDelta(w, "two")
		// Hold the stream open until the client aborts.
		<-r.Context().Done()
	}))
	defer stop()

	if err := ctrl.Send("count"); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	waitForContent(t, assembler, "one two")

	ctrl.Cancel()

	msgs := assembler.Snapshot()
	assistant := msgs[1]
	if assistant.Content != "one two" {
		t.Errorf("content = %q, expected exactly the applied deltas", assistant.Content)
	}
	if !assistant.Finalized {
		t.Error("cancelled message must be finalized")
	}
	if ctrl.State() != StateCancelled {
		t.Errorf("state = %v, expected cancelled", ctrl.State())
	}
	if ctrl.Err() != nil {
		t.Errorf("cancellation recorded an error: %v", ctrl.Err())
	}
}

func TestNewTurnCancelsPrevious(t *testing.T) {
	ctrl, assembler, updates, stop := newTestController(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Message string `json:"message"`
		}
		json.NewDecoder(r.Body).Decode(&body)

		if body.Message == "first" {
			writeDelta(w, "partial answer")
			<-r.Context().Done()
			return
		}
		writeDelta(w, "second answer")
		writeDone(w)
	}))
	defer stop()

	if err := ctrl.Send("first"); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	waitForContent(t, assembler, "partial answer")

	if err := ctrl.Send("second"); err != nil {
		t.Fatalf("second Send failed: %v", err)
	}
	waitForState(t, updates, StateCompleted)

	msgs := assembler.Snapshot()
	if len(msgs) != 4 {
		t.Fatalf("expected 4 messages, got %d", len(msgs))
	}
	if msgs[1].Content != "partial answer" || !msgs[1].Finalized {
		t.Errorf("first assistant message = %+v", msgs[1])
	}
	if msgs[3].Content != "second answer" || !msgs[3].Finalized {
		t.Errorf("second assistant message = %+v", msgs[3])
	}
}

func TestServerErrorFailsTurn(t *testing.T) {
	ctrl, assembler, updates, stop := newTestController(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer stop()

	if err := ctrl.Send("hi"); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	u := waitForState(t, updates, StateFailed)
	if u.Err == nil {
		t.Error("failed update should carry the error")
	}

	msgs := assembler.Snapshot()
	if !msgs[1].Finalized {
		t.Error("assistant message must be finalized on failure")
	}
	if ctrl.Err() == nil {
		t.Error("controller should record the error")
	}
}

func TestStreamEndWithoutDoneCompletes(t *testing.T) {
	ctrl, assembler, updates, stop := newTestController(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeDelta(w, "abrupt")
	}))
	defer stop()

	if err := ctrl.Send("hi"); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	waitForState(t, updates, StateCompleted)

	msgs := assembler.Snapshot()
	if msgs[1].Content != "abrupt" || !msgs[1].Finalized {
		t.Errorf("assistant message = %+v", msgs[1])
	}
}

func TestRefreshMidTurnIsTransparent(t *testing.T) {
	var chatCalls, refreshCalls atomic.Int32

	ctrl, assembler, updates, stop := newTestController(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth/refresh":
			refreshCalls.Add(1)
			json.NewEncoder(w).Encode(map[string]string{
				"access_token":  "tok-new",
				"refresh_token": "ref-new",
			})
		case "/api/chat":
			if chatCalls.Add(1) == 1 {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			writeDelta(w, "recovered")
			writeDone(w)
		}
	}))
	defer stop()

	if err := ctrl.Send("hi"); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	waitForState(t, updates, StateCompleted)

	if n := refreshCalls.Load(); n != 1 {
		t.Errorf("refresh calls = %d, expected 1", n)
	}
	if n := chatCalls.Load(); n != 2 {
		t.Errorf("chat calls = %d, expected original plus retry", n)
	}

	msgs := assembler.Snapshot()
	if msgs[1].Content != "recovered" {
		t.Errorf("content = %q; the retried stream starts from scratch", msgs[1].Content)
	}
}

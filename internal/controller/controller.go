// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package controller

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/moazzam-qureshi/agentic-chat-ui/internal/api"
	"github.com/moazzam-qureshi/agentic-chat-ui/internal/stream"
	"github.com/moazzam-qureshi/agentic-chat-ui/internal/transcript"
)

// =============================================================================
// STATE MACHINE
// =============================================================================

// State is the lifecycle of the current (or most recent) turn.
type State int

const (
	StateIdle State = iota
	StateRequesting
	StateStreaming
	StateCompleted
	StateCancelled
	StateFailed
)

// String returns the state name for status lines and logs.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRequesting:
		return "requesting"
	case StateStreaming:
		return "streaming"
	case StateCompleted:
		return "completed"
	case StateCancelled:
		return "cancelled"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Update notifies the observer that the turn advanced. After a delta the
// observer re-reads the transcript snapshot; updates carry no content.
type Update struct {
	State       State
	AssistantID string
	// Err is set when State is StateFailed.
	Err error
}

// =============================================================================
// CONTROLLER
// =============================================================================

// handle is one in-flight turn. done is closed after the transcript has
// been finalized, so a waiter observes a consistent transcript.
type handle struct {
	assistantID string
	cancel      context.CancelFunc
	done        chan struct{}
}

// Controller runs generation turns for a single conversation.
type Controller struct {
	client    *api.Client
	assembler *transcript.Assembler
	// notify is invoked from the pump goroutine on every state change
	// and after every applied delta. May be nil.
	notify func(Update)

	mu      sync.Mutex
	opts    api.GenerationOptions
	state   State
	active  *handle
	lastErr error
}

// New creates a controller for one conversation.
func New(client *api.Client, assembler *transcript.Assembler, opts api.GenerationOptions, notify func(Update)) *Controller {
	return &Controller{
		client:    client,
		assembler: assembler,
		opts:      opts,
		notify:    notify,
		state:     StateIdle,
	}
}

// SetOptions replaces the generation options used by future turns. The
// in-flight turn, if any, keeps the options it started with.
func (c *Controller) SetOptions(opts api.GenerationOptions) {
	c.mu.Lock()
	c.opts = opts
	c.mu.Unlock()
}

// State returns the current turn state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Err returns the error recorded by the last failed turn.
func (c *Controller) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// Send starts a new turn. If a previous turn is still streaming it is
// cancelled first and its assistant message keeps the partial content it
// had received.
func (c *Controller) Send(message string) error {
	c.cancelActive()

	assistantID, err := c.assembler.BeginTurn(message)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	h := &handle{
		assistantID: assistantID,
		cancel:      cancel,
		done:        make(chan struct{}),
	}

	c.mu.Lock()
	opts := c.opts
	c.active = h
	c.state = StateRequesting
	c.lastErr = nil
	c.mu.Unlock()
	c.emit(Update{State: StateRequesting, AssistantID: assistantID})

	go c.run(ctx, h, message, opts)
	return nil
}

// Cancel aborts the in-flight turn, if any, and waits until its
// assistant message has been finalized.
func (c *Controller) Cancel() {
	c.cancelActive()
}

// cancelActive cancels the live handle and waits for its pump to finish
// finalizing the transcript. No lock is held while waiting.
func (c *Controller) cancelActive() {
	c.mu.Lock()
	h := c.active
	c.mu.Unlock()

	if h == nil {
		return
	}
	h.cancel()
	<-h.done
}

// =============================================================================
// STREAM PUMP
// =============================================================================

// run opens the generation stream and pumps decoded events into the
// transcript. It always finalizes the assistant message before
// returning, so the transcript never holds a permanently open bubble.
func (c *Controller) run(ctx context.Context, h *handle, message string, opts api.GenerationOptions) {
	defer close(h.done)
	defer h.cancel()

	body, err := c.client.OpenGeneration(ctx, c.assembler.ConversationID(), message, opts)
	if err != nil {
		c.finish(ctx, h, err)
		return
	}
	defer body.Close()

	c.setState(h, StateStreaming)

	dec := stream.NewDecoder(body)
	for {
		ev, err := dec.Next()
		if err == io.EOF {
			// Stream ended without an explicit done event.
			c.finish(ctx, h, nil)
			return
		}
		if err != nil {
			c.finish(ctx, h, &api.TransportError{Op: "stream read", Err: err})
			return
		}

		c.assembler.ApplyEvent(h.assistantID, ev)
		if ev.Kind == stream.KindDone {
			c.finish(ctx, h, nil)
			return
		}
		c.emit(Update{State: StateStreaming, AssistantID: h.assistantID})
	}
}

// finish finalizes the turn. Cancellation wins over whatever error the
// aborted read produced: transports do not always wrap context.Canceled.
func (c *Controller) finish(ctx context.Context, h *handle, err error) {
	c.assembler.Finalize(h.assistantID)

	final := StateCompleted
	switch {
	case err != nil && (wasCancelled(err) || ctx.Err() != nil):
		final = StateCancelled
		err = nil
	case err != nil:
		final = StateFailed
	}

	c.mu.Lock()
	if c.active == h {
		c.active = nil
	}
	c.state = final
	c.lastErr = err
	c.mu.Unlock()

	c.emit(Update{State: final, AssistantID: h.assistantID, Err: err})
}

// wasCancelled reports whether the error chain stems from our own
// context cancellation rather than a genuine failure.
func wasCancelled(err error) bool {
	return errors.Is(err, context.Canceled)
}

func (c *Controller) setState(h *handle, s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
	c.emit(Update{State: s, AssistantID: h.assistantID})
}

func (c *Controller) emit(u Update) {
	if c.notify != nil {
		c.notify(u)
	}
}

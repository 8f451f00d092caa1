// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package transcript

import (
	"errors"
	"sync"

	"github.com/moazzam-qureshi/agentic-chat-ui/internal/stream"
)

// =============================================================================
// ASSEMBLER
// =============================================================================

// ErrTurnInProgress indicates BeginTurn was called while an assistant
// message is still open. The caller must finalize or cancel it first.
var ErrTurnInProgress = errors.New("a turn is already in progress")

// Assembler owns the message list for one conversation. It is safe for
// concurrent use: the stream pump mutates it while the renderer reads
// snapshots.
type Assembler struct {
	mu             sync.Mutex
	conversationID string
	messages       []Message
	// openID is the id of the single non-finalized assistant message,
	// or "" when no turn is streaming.
	openID string
}

// New creates an empty assembler for the given conversation.
func New(conversationID string) *Assembler {
	return &Assembler{conversationID: conversationID}
}

// ConversationID returns the conversation this transcript belongs to.
func (a *Assembler) ConversationID() string {
	return a.conversationID
}

// BeginTurn appends a finalized user message and an empty open assistant
// message, returning the assistant message id. It fails if a previous
// assistant message has not been finalized yet.
func (a *Assembler) BeginTurn(userText string) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.openID != "" {
		return "", ErrTurnInProgress
	}

	user := newMessage(RoleUser, userText, true)
	assistant := newMessage(RoleAssistant, "", false)
	a.messages = append(a.messages, user, assistant)
	a.openID = assistant.ID
	return assistant.ID, nil
}

// ApplyEvent applies one content event to the addressed assistant
// message. A delta appends text; done finalizes. Events addressed to
// anything other than the open assistant message are dropped, which
// makes stale handles after cancellation harmless.
func (a *Assembler) ApplyEvent(assistantID string, ev stream.Event) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if assistantID == "" || assistantID != a.openID {
		return
	}

	switch ev.Kind {
	case stream.KindDelta:
		msg := a.open()
		msg.Content += ev.Text
	case stream.KindDone:
		a.finalizeLocked()
	}
}

// Finalize freezes the addressed assistant message with whatever content
// it has accumulated. Finalizing a stale or already-finalized id is a
// no-op.
func (a *Assembler) Finalize(assistantID string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if assistantID == "" || assistantID != a.openID {
		return
	}
	a.finalizeLocked()
}

// Rollback empties the open assistant message's content. Used when a
// request is re-issued after a credential refresh: the retried request
// is a fresh turn, so any speculatively applied content must not leak
// into it.
func (a *Assembler) Rollback(assistantID string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if assistantID == "" || assistantID != a.openID {
		return
	}
	a.open().Content = ""
}

// Snapshot returns a point-in-time copy of the transcript.
func (a *Assembler) Snapshot() []Message {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]Message, len(a.messages))
	copy(out, a.messages)
	return out
}

// Streaming reports whether an assistant message is currently open.
func (a *Assembler) Streaming() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.openID != ""
}

// open returns a pointer to the open assistant message. Callers must
// hold the lock and have verified openID is set.
func (a *Assembler) open() *Message {
	for i := len(a.messages) - 1; i >= 0; i-- {
		if a.messages[i].ID == a.openID {
			return &a.messages[i]
		}
	}
	// openID always references a stored message.
	panic("transcript: open message not found")
}

func (a *Assembler) finalizeLocked() {
	a.open().Finalized = true
	a.openID = ""
}

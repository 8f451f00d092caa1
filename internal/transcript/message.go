// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package transcript

import (
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// MESSAGE MODEL
// =============================================================================

// Role identifies the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry in a conversation transcript. Content is mutable
// only while the message is streaming; once Finalized is set the message
// never changes again.
type Message struct {
	ID        string
	Role      Role
	Content   string
	Finalized bool
	CreatedAt time.Time
}

// newMessage creates a message with a fresh id.
func newMessage(role Role, content string, finalized bool) Message {
	return Message{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		Finalized: finalized,
		CreatedAt: time.Now(),
	}
}

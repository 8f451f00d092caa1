// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/moazzam-qureshi/agentic-chat-ui/internal/controller"
)

// =============================================================================
// MESSAGES
// =============================================================================

// TurnUpdateMsg is delivered whenever the stream controller advances:
// state changes and applied deltas both arrive here. The model re-reads
// the transcript snapshot on receipt.
type TurnUpdateMsg struct {
	Update controller.Update
}

// SessionExpiredMsg tells the parent view to return to the login screen.
type SessionExpiredMsg struct{}

// waitForUpdate blocks on the controller's update channel and converts
// the next update into a Bubble Tea message. The returned command is
// re-issued after every received message to keep the pipe open.
func waitForUpdate(updates chan controller.Update) tea.Cmd {
	return func() tea.Msg {
		return TurnUpdateMsg{Update: <-updates}
	}
}

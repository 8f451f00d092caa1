// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"

	"github.com/moazzam-qureshi/agentic-chat-ui/internal/controller"
	"github.com/moazzam-qureshi/agentic-chat-ui/internal/transcript"
	"github.com/moazzam-qureshi/agentic-chat-ui/internal/ui/styles"
)

// =============================================================================
// RENDERING
// =============================================================================

// streamCursor marks the insertion point of a streaming message.
const streamCursor = "▌"

func newViewport(width, height int) viewport.Model {
	vp := viewport.New(width, height)
	vp.MouseWheelEnabled = true
	return vp
}

// View renders the transcript, input, and status line.
func (m *Model) View() string {
	if !m.ready {
		return "loading..."
	}

	var b strings.Builder
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	return b.String()
}

// refreshViewport re-renders the transcript snapshot into the viewport
// and keeps the latest content in view.
func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}

	atBottom := m.viewport.AtBottom()
	m.viewport.SetContent(m.renderTranscript())
	if atBottom || m.Streaming() {
		m.viewport.GotoBottom()
	}
}

// renderTranscript renders every message as a labeled bubble.
func (m *Model) renderTranscript() string {
	msgs := m.assembler.Snapshot()
	if len(msgs) == 0 {
		return styles.Help.Render("Start the conversation: type a message and press enter.")
	}

	bubbleWidth := m.width - 4
	if bubbleWidth < 20 {
		bubbleWidth = 20
	}

	var parts []string
	for _, msg := range msgs {
		parts = append(parts, m.renderMessage(msg, bubbleWidth))
	}
	return strings.Join(parts, "\n")
}

// renderMessage renders one message bubble. Finished assistant messages
// go through the markdown renderer; a streaming message is shown as
// plain text with a cursor so partial markdown never flickers through
// half-parsed states.
func (m *Model) renderMessage(msg transcript.Message, width int) string {
	label := "You"
	bubble := styles.UserBubble
	content := msg.Content

	if msg.Role == transcript.RoleAssistant {
		label = "Assistant"
		bubble = styles.AssistantBubble

		switch {
		case !msg.Finalized:
			content += streamCursor
		case m.renderer != nil && content != "":
			if rendered, err := m.renderer.Render(content); err == nil {
				content = strings.TrimRight(rendered, "\n")
			}
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		styles.RoleLabel.Render(label),
		bubble.Width(width).Render(content),
	)
}

// statusLine shows what the turn is doing, or the last error.
func (m *Model) statusLine() string {
	if m.err != nil {
		return styles.ErrorText.Render("error: " + m.err.Error())
	}

	switch m.ctrl.State() {
	case controller.StateRequesting:
		return m.spin.View() + styles.StatusLine.Render(" contacting server... (esc to cancel)")
	case controller.StateStreaming:
		return m.spin.View() + styles.StatusLine.Render(" streaming... (esc to cancel)")
	case controller.StateCancelled:
		return styles.WarningText.Render("cancelled, partial answer kept")
	default:
		return styles.Help.Render("enter: send • esc: cancel • ctrl+c: quit")
	}
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/moazzam-qureshi/agentic-chat-ui/internal/api"
	"github.com/moazzam-qureshi/agentic-chat-ui/internal/controller"
)

// =============================================================================
// UPDATE LOOP
// =============================================================================

// Init starts the spinner and opens the controller update pipe.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.spin.Tick, waitForUpdate(m.updates))
}

// Update handles input and controller progress.
func (m *Model) Update(msg tea.Msg) (*Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)

	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			if cmd := m.submit(); cmd != nil {
				cmds = append(cmds, cmd)
			}
		case "esc":
			if m.Streaming() {
				// Cancel blocks until the partial message is finalized,
				// so the next render shows a consistent transcript.
				m.ctrl.Cancel()
				m.refreshViewport()
			}
		case "pgup":
			m.viewport.HalfViewUp()
		case "pgdown":
			m.viewport.HalfViewDown()
		default:
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			cmds = append(cmds, cmd)
		}

	case TurnUpdateMsg:
		cmds = append(cmds, m.handleTurnUpdate(msg.Update), waitForUpdate(m.updates))

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		cmds = append(cmds, cmd)

	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// submit sends the typed message as a new turn.
func (m *Model) submit() tea.Cmd {
	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		return nil
	}

	m.err = nil
	m.input.Reset()
	if err := m.ctrl.Send(text); err != nil {
		m.err = err
	}
	m.refreshViewport()
	return nil
}

// handleTurnUpdate reacts to controller progress. Deltas only need a
// re-render; terminal states may surface an error.
func (m *Model) handleTurnUpdate(u controller.Update) tea.Cmd {
	m.refreshViewport()

	if u.State == controller.StateFailed && u.Err != nil {
		m.err = u.Err
		if errors.Is(u.Err, api.ErrSessionExpired) {
			return func() tea.Msg { return SessionExpiredMsg{} }
		}
	}
	return nil
}

// resize lays out the viewport and input for a new terminal size.
func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height

	// One line each for the status bar and spacing around the input.
	viewHeight := height - inputHeight - 2
	if viewHeight < 1 {
		viewHeight = 1
	}

	if !m.ready {
		m.viewport = newViewport(width, viewHeight)
		m.ready = true
	} else {
		m.viewport.Width = width
		m.viewport.Height = viewHeight
	}
	m.input.SetWidth(width - 2)
	m.refreshViewport()
}

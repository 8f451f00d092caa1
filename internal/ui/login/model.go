// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package login

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/moazzam-qureshi/agentic-chat-ui/internal/api"
	"github.com/moazzam-qureshi/agentic-chat-ui/internal/ui/styles"
)

// =============================================================================
// LOGIN FORM
// =============================================================================

// SucceededMsg tells the parent view the user is signed in.
type SucceededMsg struct{}

// resultMsg carries the outcome of the login request.
type resultMsg struct {
	err error
}

const (
	fieldEmail = iota
	fieldPassword
)

// Model is the two-field login form.
type Model struct {
	client *api.Client

	email    textinput.Model
	password textinput.Model
	focus    int
	busy     bool
	err      error
}

// New creates the login form.
func New(client *api.Client) *Model {
	email := textinput.New()
	email.Placeholder = "email"
	email.Prompt = "  "
	email.Focus()

	password := textinput.New()
	password.Placeholder = "password"
	password.Prompt = "  "
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'

	return &Model{
		client:   client,
		email:    email,
		password: password,
	}
}

func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m *Model) Update(msg tea.Msg) (*Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.busy {
			return m, nil
		}
		switch msg.String() {
		case "tab", "shift+tab", "up", "down":
			m.toggleFocus()
			return m, nil
		case "enter":
			if m.focus == fieldEmail {
				m.toggleFocus()
				return m, nil
			}
			return m, m.submit()
		}

	case resultMsg:
		m.busy = false
		if msg.err != nil {
			m.err = msg.err
			m.password.Reset()
			return m, nil
		}
		return m, func() tea.Msg { return SucceededMsg{} }
	}

	var cmd tea.Cmd
	if m.focus == fieldEmail {
		m.email, cmd = m.email.Update(msg)
	} else {
		m.password, cmd = m.password.Update(msg)
	}
	return m, cmd
}

func (m *Model) toggleFocus() {
	if m.focus == fieldEmail {
		m.focus = fieldPassword
		m.email.Blur()
		m.password.Focus()
	} else {
		m.focus = fieldEmail
		m.password.Blur()
		m.email.Focus()
	}
}

// submit issues the login request off the UI loop.
func (m *Model) submit() tea.Cmd {
	email := strings.TrimSpace(m.email.Value())
	password := m.password.Value()
	if email == "" || password == "" {
		m.err = errEmptyFields
		return nil
	}

	m.busy = true
	m.err = nil
	client := m.client
	return func() tea.Msg {
		return resultMsg{err: client.Login(context.Background(), email, password)}
	}
}

var errEmptyFields = &api.AuthorizationError{Reason: "email and password are required"}

func (m *Model) View() string {
	var status string
	switch {
	case m.busy:
		status = styles.StatusLine.Render("signing in...")
	case m.err != nil:
		status = styles.ErrorText.Render(m.err.Error())
	default:
		status = styles.Help.Render("tab: switch field • enter: sign in")
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		styles.Title.Render("Sign in"),
		"",
		m.email.View(),
		m.password.View(),
		"",
		status,
	)
}

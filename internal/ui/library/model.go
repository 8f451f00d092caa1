// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package library

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/moazzam-qureshi/agentic-chat-ui/internal/api"
	"github.com/moazzam-qureshi/agentic-chat-ui/internal/ui/styles"
	"github.com/moazzam-qureshi/agentic-chat-ui/internal/util"
)

// =============================================================================
// DOCUMENT LIBRARY VIEW
// =============================================================================

// refreshInterval drives status re-polls while any document is pending.
const refreshInterval = 3 * time.Second

type loadedMsg struct {
	docs []api.Document
	err  error
}

type deletedMsg struct {
	id  string
	err error
}

type pollTickMsg struct{}

// Model lists the user's documents.
type Model struct {
	client *api.Client

	docs    []api.Document
	cursor  int
	loading bool
	spin    spinner.Model
	err     error
	width   int
}

// New creates the library view.
func New(client *api.Client) *Model {
	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = styles.StatusLine

	return &Model{client: client, loading: true, spin: spin}
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, m.load())
}

// load fetches the document list off the UI loop.
func (m *Model) load() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		docs, err := client.ListDocuments(context.Background())
		return loadedMsg{docs: docs, err: err}
	}
}

func (m *Model) deleteSelected() tea.Cmd {
	if m.cursor >= len(m.docs) {
		return nil
	}
	id := m.docs[m.cursor].ID
	client := m.client
	return func() tea.Msg {
		return deletedMsg{id: id, err: client.DeleteDocument(context.Background(), id)}
	}
}

// pollTick schedules a refresh while ingestion is still running.
func pollTick() tea.Cmd {
	return tea.Tick(refreshInterval, func(time.Time) tea.Msg {
		return pollTickMsg{}
	})
}

func (m *Model) anyPending() bool {
	for _, d := range m.docs {
		if api.IngestionRunning(d.Status) {
			return true
		}
	}
	return false
}

func (m *Model) Update(msg tea.Msg) (*Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.docs)-1 {
				m.cursor++
			}
		case "r":
			m.loading = true
			return m, m.load()
		case "d", "delete":
			return m, m.deleteSelected()
		}

	case loadedMsg:
		m.loading = false
		m.err = msg.err
		if msg.err == nil {
			m.docs = msg.docs
			if m.cursor >= len(m.docs) && m.cursor > 0 {
				m.cursor = len(m.docs) - 1
			}
		}
		if m.anyPending() {
			return m, pollTick()
		}

	case deletedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		return m, m.load()

	case pollTickMsg:
		return m, m.load()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(styles.Title.Render("Documents"))
	b.WriteString("\n\n")

	switch {
	case m.loading && len(m.docs) == 0:
		b.WriteString(m.spin.View() + styles.StatusLine.Render(" loading..."))
	case m.err != nil:
		b.WriteString(styles.ErrorText.Render("error: " + m.err.Error()))
	case len(m.docs) == 0:
		b.WriteString(styles.Help.Render("No documents yet. Upload with: agentic-chat docs upload <file>"))
	default:
		b.WriteString(m.renderTable())
	}

	b.WriteString("\n\n")
	b.WriteString(styles.Help.Render("r: refresh • d: delete • tab: back to chat"))
	return b.String()
}

func (m *Model) renderTable() string {
	nameWidth := m.width - 30
	if nameWidth < 16 {
		nameWidth = 16
	}

	var rows []string
	for i, doc := range m.docs {
		marker := "  "
		if i == m.cursor {
			marker = styles.InputPrompt.Render("> ")
		}
		name := util.PadRight(util.TruncateWidth(doc.Name, nameWidth), nameWidth)
		size := util.PadRight(formatSize(doc.SizeBytes), 9)
		rows = append(rows, marker+name+size+m.renderStatus(doc.Status))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m *Model) renderStatus(status string) string {
	switch status {
	case api.DocStatusReady:
		return styles.SuccessText.Render(status)
	case api.DocStatusPending, api.DocStatusProcessing:
		return styles.WarningText.Render(status)
	case api.DocStatusFailed:
		return styles.ErrorText.Render(status)
	default:
		return styles.StatusLine.Render(status)
	}
}

// formatSize renders a byte count in human units.
func formatSize(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/float64(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/float64(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}

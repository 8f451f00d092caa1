// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/glamour"
	"github.com/google/uuid"

	"github.com/moazzam-qureshi/agentic-chat-ui/internal/api"
	"github.com/moazzam-qureshi/agentic-chat-ui/internal/config"
	"github.com/moazzam-qureshi/agentic-chat-ui/internal/controller"
	"github.com/moazzam-qureshi/agentic-chat-ui/internal/transcript"
	"github.com/moazzam-qureshi/agentic-chat-ui/internal/ui/styles"
)

// =============================================================================
// MODEL
// =============================================================================

// inputHeight is the number of terminal rows reserved for the text entry.
const inputHeight = 3

// Model is the chat view. The controller and update channel live behind
// pointers so Bubble Tea's value-copying of the model never duplicates
// stream state.
type Model struct {
	cfg       *config.Config
	client    *api.Client
	assembler *transcript.Assembler
	ctrl      *controller.Controller
	updates   chan controller.Update

	input    textarea.Model
	viewport viewport.Model
	spin     spinner.Model
	renderer *glamour.TermRenderer

	width  int
	height int
	ready  bool
	err    error
}

// New creates a chat view bound to a fresh conversation.
func New(cfg *config.Config, client *api.Client) *Model {
	assembler := transcript.New(uuid.NewString())
	updates := make(chan controller.Update, 64)

	ctrl := controller.New(client, assembler, api.GenerationOptions{
		Model:       cfg.Chat.Model,
		Temperature: cfg.Chat.Temperature,
	}, func(u controller.Update) {
		// Delta updates are just render hints and may be coalesced when
		// the UI loop falls behind; state transitions must never be
		// dropped. This also keeps the pump from blocking on a stalled
		// UI while a cancel is waiting for it.
		if u.State == controller.StateStreaming {
			select {
			case updates <- u:
			default:
			}
			return
		}
		updates <- u
	})

	input := textarea.New()
	input.Placeholder = "Ask anything..."
	input.Prompt = styles.InputPrompt.Render("> ")
	input.SetHeight(inputHeight - 1)
	input.ShowLineNumbers = false
	input.CharLimit = 0
	input.Focus()

	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = styles.StatusLine

	var renderer *glamour.TermRenderer
	if cfg.UI.Markdown {
		// Renderer creation can fail on exotic terminals; fall back to
		// plain text rather than refusing to start.
		if r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(0)); err == nil {
			renderer = r
		}
	}

	return &Model{
		cfg:       cfg,
		client:    client,
		assembler: assembler,
		ctrl:      ctrl,
		updates:   updates,
		input:     input,
		spin:      spin,
		renderer:  renderer,
	}
}

// ApplyConfig picks up reloaded settings. Generation options take effect
// on the next turn; markdown toggling takes effect on the next render.
func (m *Model) ApplyConfig(cfg *config.Config) {
	m.cfg = cfg
	m.ctrl.SetOptions(api.GenerationOptions{
		Model:       cfg.Chat.Model,
		Temperature: cfg.Chat.Temperature,
	})
	if !cfg.UI.Markdown {
		m.renderer = nil
	} else if m.renderer == nil {
		if r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(0)); err == nil {
			m.renderer = r
		}
	}
	m.refreshViewport()
}

// Streaming reports whether a turn is in flight.
func (m *Model) Streaming() bool {
	s := m.ctrl.State()
	return s == controller.StateRequesting || s == controller.StateStreaming
}

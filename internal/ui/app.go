// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/moazzam-qureshi/agentic-chat-ui/internal/api"
	"github.com/moazzam-qureshi/agentic-chat-ui/internal/config"
	"github.com/moazzam-qureshi/agentic-chat-ui/internal/ui/chat"
	"github.com/moazzam-qureshi/agentic-chat-ui/internal/ui/library"
	"github.com/moazzam-qureshi/agentic-chat-ui/internal/ui/login"
)

// =============================================================================
// APPLICATION MODEL
// =============================================================================

// ConfigReloadedMsg is sent when the config file changes on disk.
type ConfigReloadedMsg struct {
	Config *config.Config
}

// view identifies the active screen.
type view int

const (
	viewLogin view = iota
	viewChat
	viewLibrary
)

// App is the root model. It owns the screens and routes messages to the
// active one; global keys (quit, screen switching) are handled here.
type App struct {
	cfg    *config.Config
	client *api.Client

	active  view
	login   *login.Model
	chat    *chat.Model
	library *library.Model

	width  int
	height int
}

// NewApp creates the application. A stored credential skips the login
// screen; the session guard will bounce back here if it turns out to be
// unrecoverable.
func NewApp(cfg *config.Config, client *api.Client) *App {
	app := &App{
		cfg:    cfg,
		client: client,
		login:  login.New(client),
		chat:   chat.New(cfg, client),
	}
	if client.Authenticated() {
		app.active = viewChat
	}
	return app
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(a.login.Init(), a.chat.Init())
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		// Every screen tracks the size so switching needs no relayout.
		var cmds []tea.Cmd
		cmds = append(cmds, a.routeToAll(msg)...)
		return a, tea.Batch(cmds...)

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return a, tea.Quit
		case "tab":
			if a.active != viewLogin {
				return a, a.toggleScreen()
			}
		}

	case login.SucceededMsg:
		a.active = viewChat
		return a, nil

	case chat.TurnUpdateMsg:
		// A stream keeps running while another screen is open; its
		// updates always belong to the chat view.
		var cmd tea.Cmd
		a.chat, cmd = a.chat.Update(msg)
		return a, cmd

	case chat.SessionExpiredMsg:
		a.active = viewLogin
		return a, nil

	case ConfigReloadedMsg:
		a.cfg = msg.Config
		a.chat.ApplyConfig(msg.Config)
		return a, nil
	}

	return a, a.routeToActive(msg)
}

// toggleScreen flips between chat and the document library.
func (a *App) toggleScreen() tea.Cmd {
	if a.active == viewChat {
		a.active = viewLibrary
		if a.library == nil {
			a.library = library.New(a.client)
			var cmds []tea.Cmd
			cmds = append(cmds, a.library.Init())
			if a.width > 0 {
				cmds = append(cmds, a.routeToActive(tea.WindowSizeMsg{Width: a.width, Height: a.height}))
			}
			return tea.Batch(cmds...)
		}
		return nil
	}
	a.active = viewChat
	return nil
}

func (a *App) routeToActive(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch a.active {
	case viewLogin:
		a.login, cmd = a.login.Update(msg)
	case viewChat:
		a.chat, cmd = a.chat.Update(msg)
	case viewLibrary:
		a.library, cmd = a.library.Update(msg)
	}
	return cmd
}

func (a *App) routeToAll(msg tea.Msg) []tea.Cmd {
	var cmds []tea.Cmd
	var cmd tea.Cmd
	a.login, cmd = a.login.Update(msg)
	cmds = append(cmds, cmd)
	a.chat, cmd = a.chat.Update(msg)
	cmds = append(cmds, cmd)
	if a.library != nil {
		a.library, cmd = a.library.Update(msg)
		cmds = append(cmds, cmd)
	}
	return cmds
}

func (a *App) View() string {
	switch a.active {
	case viewLogin:
		return a.login.View()
	case viewLibrary:
		return a.library.View()
	default:
		return a.chat.View()
	}
}

// Run starts the TUI and blocks until the user quits. The config file is
// watched while the UI runs; edits apply without a restart.
func Run(cfg *config.Config, client *api.Client) error {
	restoreLog := redirectLog()
	defer restoreLog()

	program := tea.NewProgram(NewApp(cfg, client), tea.WithAltScreen(), tea.WithMouseCellMotion())

	if path, err := config.Path(); err == nil {
		watcher, err := config.NewWatcher(path, func(fresh *config.Config) {
			program.Send(ConfigReloadedMsg{Config: fresh})
		})
		if err == nil {
			if err := watcher.Watch(); err == nil {
				defer watcher.Close()
			} else {
				watcher.Close()
			}
		}
	}

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("ui error: %w", err)
	}
	return nil
}

// redirectLog points the standard logger at a debug file while the TUI
// owns the terminal. Stderr writes would corrupt the alternate screen.
func redirectLog() func() {
	var out io.Writer = io.Discard
	var file *os.File
	if dir, err := config.Dir(); err == nil {
		if f, err := os.OpenFile(filepath.Join(dir, "debug.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600); err == nil {
			out = f
			file = f
		}
	}
	log.SetOutput(out)
	return func() {
		log.SetOutput(os.Stderr)
		if file != nil {
			file.Close()
		}
	}
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/peterh/liner"

	"github.com/moazzam-qureshi/agentic-chat-ui/internal/api"
	"github.com/moazzam-qureshi/agentic-chat-ui/internal/config"
)

// =============================================================================
// CHAT REPL
// =============================================================================

// historyFile stores REPL input history inside the config directory.
const historyFile = "repl_history"

// runREPL is a line-based chat loop for terminals where the full TUI is
// unwanted. The whole session shares one conversation id, so the server
// keeps context across turns.
func runREPL(cfg *config.Config, client *api.Client, parser *ArgParser) error {
	if err := RequiresTTY("chat"); err != nil {
		return err
	}

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	historyPath := ""
	if dir, err := config.Dir(); err == nil {
		historyPath = filepath.Join(dir, historyFile)
		if f, err := os.Open(historyPath); err == nil {
			line.ReadHistory(f)
			f.Close()
		}
	}

	conversationID := parser.FlagOr("conversation", uuid.NewString())
	opts := api.GenerationOptions{
		Model:       parser.FlagOr("model", cfg.Chat.Model),
		Temperature: cfg.Chat.Temperature,
	}

	fmt.Println("chat session started (ctrl+d to exit, ctrl+c cancels a streaming answer)")
	for {
		input, err := line.Prompt("> ")
		if err != nil {
			// liner returns ErrPromptAborted on ctrl+c and io.EOF on ctrl+d.
			break
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		line.AppendHistory(input)

		// Ctrl-C during the answer cancels the stream, not the session.
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		if err := streamAnswer(ctx, client, conversationID, input, opts, os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		stop()
	}

	if historyPath != "" {
		if f, err := os.Create(historyPath); err == nil {
			line.WriteHistory(f)
			f.Close()
		}
	}
	return nil
}

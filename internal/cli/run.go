// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"os"

	"github.com/moazzam-qureshi/agentic-chat-ui/internal/api"
	"github.com/moazzam-qureshi/agentic-chat-ui/internal/config"
)

// Version information (set at build time).
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// =============================================================================
// COMMAND DISPATCH
// =============================================================================

const usage = `agentic-chat - terminal client for the chat server

Usage:
  agentic-chat                start the full-screen TUI
  agentic-chat login          sign in and store credentials
  agentic-chat logout         sign out and clear credentials
  agentic-chat ask <text>     one-shot question, streams the answer to stdout
  agentic-chat chat           line-based chat REPL
  agentic-chat docs <cmd>     manage documents (list, upload, rm, status)
  agentic-chat version        print version information

Flags:
  --model <name>              override the configured model
  --conversation <id>         (ask/chat) continue an existing conversation
  --wait                      (docs upload/status) wait for ingestion to finish
`

// Run executes a CLI command. Returns the process exit code.
func Run(cfg *config.Config, client *api.Client, args []string) int {
	parser := NewArgParser(args)

	var err error
	switch parser.Subcommand() {
	case "login":
		err = runLogin(client)
	case "logout":
		err = runLogout(client)
	case "ask":
		err = runAsk(cfg, client, parser)
	case "chat":
		err = runREPL(cfg, client, parser)
	case "docs":
		err = runDocs(cfg, client, parser)
	case "version":
		fmt.Printf("agentic-chat %s (%s, built %s)\n", Version, GitCommit, BuildDate)
	case "help", "":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", parser.Subcommand(), usage)
		return 2
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

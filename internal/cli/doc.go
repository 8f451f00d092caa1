// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the non-TUI command surface: login/logout,
// one-shot asks, a line-based chat REPL, and document management.
//
// Running the binary with no arguments starts the full-screen TUI
// instead; these commands exist for scripts and quick terminal use.
package cli

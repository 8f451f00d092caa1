// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the conversation view for the TUI.
//
// The view renders the transcript from snapshots: the stream pump mutates
// the transcript in its own goroutine and signals progress through an
// update channel, and the Bubble Tea loop re-reads the snapshot on each
// signal. Content never flows through the UI layer itself.
package chat

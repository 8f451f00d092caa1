// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small shared helpers for the agentic-chat client:
// atomic file writes for the credential and config files, and rune/width
// aware string truncation for terminal display.
package util

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ui hosts the top-level Bubble Tea application: it routes
// between the login form, the chat view, and the document library.
package ui

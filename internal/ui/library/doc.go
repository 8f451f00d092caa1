// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package library provides the document-library view for the TUI:
// listing uploaded documents, watching ingestion status, and deleting.
package library

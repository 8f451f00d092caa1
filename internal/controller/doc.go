// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package controller orchestrates one generation turn end to end: it
// opens the request through the api client, pumps the decoded stream
// into the transcript, and owns cancellation.
//
// A controller drives exactly one conversation and allows at most one
// live stream at a time. Starting a new turn cancels the previous one
// first; the previous assistant message keeps whatever partial content
// it had already received.
package controller

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package transcript maintains the ordered message history of a
// conversation while a response streams in.
//
// The assembler owns the transcript: messages are appended in creation
// order and never removed or reordered. At most one assistant message is
// open (non-finalized) at a time; delta events append to it, and
// finalization freezes it. Renderers read point-in-time snapshots rather
// than sharing the mutable state.
package transcript

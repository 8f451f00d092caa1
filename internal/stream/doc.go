// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package stream decodes the newline-delimited streaming response format
// used by the chat server.
//
// Each logical event arrives as a line with a fixed "data: " marker
// followed by a JSON payload. The decoder reads raw bytes at whatever
// boundaries the transport delivers them and produces content events in
// arrival order, holding any trailing partial line until more bytes
// arrive so a split line is never mis-parsed.
package stream

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api implements the HTTP client for the chat server.
//
// All requests flow through the session guard in Client.Do, which
// attaches the bearer credential, detects an expired access token, and
// performs at most one refresh-and-retry cycle per call. Concurrent
// callers that hit an expired token at the same time share a single
// in-flight refresh, because the refresh token is single-use on the
// server side.
package api

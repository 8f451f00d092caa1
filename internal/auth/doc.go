// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package auth stores and retrieves the session credentials issued by the
// chat server.
//
// Credentials are a pair of opaque tokens: a short-lived access token sent
// as a bearer header on every request, and a refresh token used to obtain
// a new pair when the access token expires. The file-backed store keeps
// them in ~/.agentic-chat/credentials.json with owner-only permissions.
package auth

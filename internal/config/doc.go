// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for the
// agentic-chat client.
//
// Configuration is read from ~/.agentic-chat/config.toml with built-in
// defaults and environment variable overrides. A file watcher can reload
// the configuration while the client is running.
package config

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import "github.com/charmbracelet/lipgloss"

// =============================================================================
// COLORS
// =============================================================================

// Cyan - Brand color, prompts, user highlights
var Cyan = lipgloss.AdaptiveColor{Light: "#0891B2", Dark: "#22D3EE"}

// Purple - Assistant messages, selections
var Purple = lipgloss.AdaptiveColor{Light: "#7C3AED", Dark: "#A78BFA"}

// Emerald - Success states, ready documents
var Emerald = lipgloss.AdaptiveColor{Light: "#059669", Dark: "#34D399"}

// Amber - Warnings, pending ingestion
var Amber = lipgloss.AdaptiveColor{Light: "#D97706", Dark: "#FBBF24"}

// Rose - Errors, failed turns
var Rose = lipgloss.AdaptiveColor{Light: "#E11D48", Dark: "#FB7185"}

// Overlay - Borders, separators
var Overlay = lipgloss.AdaptiveColor{Light: "#E5E5E5", Dark: "#313244"}

// TextPrimary - Main body text
var TextPrimary = lipgloss.AdaptiveColor{Light: "#1F2937", Dark: "#CDD6F4"}

// TextMuted - Hints, timestamps, status line
var TextMuted = lipgloss.AdaptiveColor{Light: "#9CA3AF", Dark: "#6C7086"}

// Message bubbles
var (
	UserBubbleFg       = lipgloss.AdaptiveColor{Light: "#1E40AF", Dark: "#E0F2FE"}
	UserBubbleBorder   = lipgloss.AdaptiveColor{Light: "#3B82F6", Dark: "#3B82F6"}
	AssistBubbleFg     = lipgloss.AdaptiveColor{Light: "#5B4B8A", Dark: "#E9E4F5"}
	AssistBubbleBorder = lipgloss.AdaptiveColor{Light: "#C4B5FD", Dark: "#A78BFA"}
)

// =============================================================================
// SHARED STYLES
// =============================================================================

// UserBubble frames a user message.
var UserBubble = lipgloss.NewStyle().
	Foreground(UserBubbleFg).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(UserBubbleBorder).
	Padding(0, 1)

// AssistantBubble frames an assistant message.
var AssistantBubble = lipgloss.NewStyle().
	Foreground(AssistBubbleFg).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(AssistBubbleBorder).
	Padding(0, 1)

// RoleLabel renders the author tag above a bubble.
var RoleLabel = lipgloss.NewStyle().
	Foreground(TextMuted).
	Bold(true)

// StatusLine renders the footer state indicator.
var StatusLine = lipgloss.NewStyle().
	Foreground(TextMuted)

// ErrorText renders failure messages.
var ErrorText = lipgloss.NewStyle().
	Foreground(Rose).
	Bold(true)

// SuccessText renders confirmations.
var SuccessText = lipgloss.NewStyle().
	Foreground(Emerald)

// WarningText renders pending/caution states.
var WarningText = lipgloss.NewStyle().
	Foreground(Amber)

// Title renders view headings.
var Title = lipgloss.NewStyle().
	Foreground(Cyan).
	Bold(true)

// InputPrompt renders the text entry prompt.
var InputPrompt = lipgloss.NewStyle().
	Foreground(Cyan).
	Bold(true)

// Help renders key binding hints.
var Help = lipgloss.NewStyle().
	Foreground(TextMuted).
	Italic(true)

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the shraga TUI.
// All colors use Lip Gloss AdaptiveColor for automatic light/dark detection.
package styles

import "github.com/charmbracelet/lipgloss"

// =============================================================================
// COLORS
// =============================================================================

// Cyan - Brand color, user messages, selections
var Cyan = lipgloss.AdaptiveColor{Light: "#0891B2", Dark: "#22D3EE"}

// Purple - Assistant messages
var Purple = lipgloss.AdaptiveColor{Light: "#7C3AED", Dark: "#A78BFA"}

// Rose - Errors, abort/timeout notices
var Rose = lipgloss.AdaptiveColor{Light: "#E11D48", Dark: "#FB7185"}

// Amber - Warnings, pending states
var Amber = lipgloss.AdaptiveColor{Light: "#D97706", Dark: "#FBBF24"}

// TextPrimary - Main content
var TextPrimary = lipgloss.AdaptiveColor{Light: "#1F2937", Dark: "#E5E7EB"}

// TextMuted - Secondary content, timestamps, hints
var TextMuted = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#9CA3AF"}

// SurfaceBright - Highlight background (selected sidebar row)
var SurfaceBright = lipgloss.AdaptiveColor{Light: "#F5F5F5", Dark: "#313244"}

// =============================================================================
// COMPONENT STYLES
// =============================================================================

// Sidebar frames the chat list.
var Sidebar = lipgloss.NewStyle().
	BorderStyle(lipgloss.NormalBorder()).
	BorderRight(true).
	BorderForeground(TextMuted).
	PaddingRight(1)

// SidebarItem renders one chat row.
var SidebarItem = lipgloss.NewStyle().
	Foreground(TextMuted).
	PaddingLeft(1)

// SidebarSelected renders the selected chat row.
var SidebarSelected = lipgloss.NewStyle().
	Foreground(Cyan).
	Background(SurfaceBright).
	Bold(true).
	PaddingLeft(1)

// UserLabel prefixes user messages.
var UserLabel = lipgloss.NewStyle().Foreground(Cyan).Bold(true)

// BotLabel prefixes system messages.
var BotLabel = lipgloss.NewStyle().Foreground(Purple).Bold(true)

// UserText renders the user's message body.
var UserText = lipgloss.NewStyle().Foreground(TextPrimary)

// ErrorBubble renders in-conversation error notices.
var ErrorBubble = lipgloss.NewStyle().Foreground(Rose)

// Citation renders retrieval result lines under a response.
var Citation = lipgloss.NewStyle().Foreground(TextMuted).Italic(true)

// StatusBar renders the bottom status line.
var StatusBar = lipgloss.NewStyle().Foreground(TextMuted)

// StatusError renders the transient out-of-band error toast.
var StatusError = lipgloss.NewStyle().Foreground(Rose).Bold(true)

// Title renders the backend-configured title.
var Title = lipgloss.NewStyle().Foreground(Purple).Bold(true)

// Hint renders key hints.
var Hint = lipgloss.NewStyle().Foreground(TextMuted)

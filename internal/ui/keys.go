// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"github.com/charmbracelet/bubbles/key"
)

// =============================================================================
// KEY MAP DEFINITION
// =============================================================================

// KeyMap defines the keyboard bindings for the chat interface.
type KeyMap struct {
	Send       key.Binding
	NewChat    key.Binding
	Abort      key.Binding
	NextChat   key.Binding
	PrevChat   key.Binding
	PageUp     key.Binding
	PageDown   key.Binding
	ThumbsUp   key.Binding
	ThumbsDown key.Binding
	Quit       key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Send: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("Enter", "send"),
		),
		NewChat: key.NewBinding(
			key.WithKeys("ctrl+n"),
			key.WithHelp("C-n", "new chat"),
		),
		Abort: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("Esc", "abort request"),
		),
		NextChat: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("Tab", "next chat"),
		),
		PrevChat: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("S-Tab", "previous chat"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("PgUp", "scroll up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("PgDn", "scroll down"),
		),
		ThumbsUp: key.NewBinding(
			key.WithKeys("alt+u"),
			key.WithHelp("M-u", "rate last answer up"),
		),
		ThumbsDown: key.NewBinding(
			key.WithKeys("alt+d"),
			key.WithHelp("M-d", "rate last answer down"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "ctrl+q"),
			key.WithHelp("C-c", "quit"),
		),
	}
}

// helpLine renders a one-line key hint for the status bar.
func (k KeyMap) helpLine() string {
	return "Enter send · C-n new · Tab switch · Esc abort · M-u/M-d rate · C-c quit"
}

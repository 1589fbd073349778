// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ui provides the Bubble Tea presentation layer.
//
// The UI is deliberately thin: it renders clones handed out by the
// session manager and calls its exported operations, never touching
// chat state directly. Send completions and history loads run as
// tea.Cmd goroutines; the manager's dirty flag drives scroll-to-bottom.
//
// # Layout
//
// A sidebar lists chats most-recently-active first; the main pane shows
// the selected chat's messages (glamour-rendered for assistant
// responses), a text input, and a status line. While a never-hydrated
// chat loads its history a spinner replaces the message pane.
package ui

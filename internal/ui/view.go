// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ShragaAI/shraga-ui/internal/ui/styles"
	"github.com/ShragaAI/shraga-ui/internal/util"
)

// View renders the full screen.
func (m *Model) View() string {
	if !m.ready {
		return "Starting..."
	}
	if m.pickerOpen {
		return m.viewPicker()
	}

	sidebar := m.viewSidebar()
	main := m.viewMain()
	body := lipgloss.JoinHorizontal(lipgloss.Top, sidebar, main)

	return lipgloss.JoinVertical(lipgloss.Left,
		styles.Title.Render(" "+m.title()),
		body,
		m.viewStatus(),
	)
}

// viewSidebar renders the chat list, most recently active first.
func (m *Model) viewSidebar() string {
	selected := m.mgr.SelectedChatID()
	width := m.sidebarWidth

	var b strings.Builder
	if m.uiCfg != nil && m.uiCfg.SidebarText != "" {
		b.WriteString(styles.Hint.Render(util.TruncateRunes(m.uiCfg.SidebarText, width)))
		b.WriteString("\n")
	}
	for _, chat := range m.mgr.Chats() {
		label := util.TruncateRunes(chat.Preview(), width-2)
		if chat.ID == selected {
			b.WriteString(styles.SidebarSelected.Render(label))
		} else {
			b.WriteString(styles.SidebarItem.Render(label))
		}
		b.WriteString("\n")
	}

	return styles.Sidebar.
		Width(width).
		Height(m.pane.Height).
		Render(strings.TrimRight(b.String(), "\n"))
}

// viewMain renders the conversation pane and the input line.
func (m *Model) viewMain() string {
	var pane string
	if m.mgr.IsLoadingChat() {
		pane = lipgloss.Place(m.pane.Width, m.pane.Height,
			lipgloss.Center, lipgloss.Center,
			m.spin.View()+" Loading conversation...")
	} else {
		pane = m.pane.View()
	}

	return lipgloss.JoinVertical(lipgloss.Left, pane, m.input.View())
}

// viewStatus renders the bottom status line: toast, send state, or key
// hints.
func (m *Model) viewStatus() string {
	switch {
	case m.toast != "":
		return styles.StatusError.Render(" " + util.FirstLine(m.toast))
	case m.sending:
		return styles.StatusBar.Render(" " + m.spin.View() + " Waiting for response... (Esc aborts)")
	default:
		return styles.StatusBar.Render(" " + m.keys.helpLine())
	}
}

// viewPicker renders the flow selection overlay.
func (m *Model) viewPicker() string {
	var b strings.Builder
	b.WriteString(styles.Title.Render("Select a flow"))
	b.WriteString("\n\n")

	if len(m.pickerFlows) == 0 {
		b.WriteString(styles.Hint.Render("No flows available."))
	}
	for i, flow := range m.pickerFlows {
		label := flow.ID
		if flow.Description != "" {
			label = fmt.Sprintf("%s - %s", flow.ID, flow.Description)
		}
		if i == m.pickerCursor {
			b.WriteString(styles.SidebarSelected.Render("> " + label))
		} else {
			b.WriteString(styles.SidebarItem.Render("  " + label))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(styles.Hint.Render("up/down choose · Enter confirm · C-c quit"))

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, b.String())
}

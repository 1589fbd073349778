// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ShragaAI/shraga-ui/internal/model"
	"github.com/ShragaAI/shraga-ui/internal/util"
)

// Update is the Bubble Tea event loop.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		paneWidth := m.width - m.sidebarWidth - 2
		paneHeight := m.height - 4
		if !m.ready {
			m.pane = viewport.New(paneWidth, paneHeight)
			m.ready = true
		} else {
			m.pane.Width = paneWidth
			m.pane.Height = paneHeight
		}
		m.input.Width = paneWidth - 2
		m.refreshPane()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		cmds = append(cmds, cmd)

	case startupMsg:
		cmds = append(cmds, m.applyStartup(msg)...)

	case messagesLoadedMsg:
		// Degrade to an empty list on failure; the loading flag must
		// clear either way so the UI stays usable.
		m.mgr.ApplyMessages(msg.chatID, msg.messages)
		m.refreshPane()

	case sendDoneMsg:
		m.sending = false
		if msg.err != nil {
			m.toast = msg.err.Error()
			cmds = append(cmds, expireToast())
		}
		m.refreshPane()

	case feedbackDoneMsg:
		if msg.err != nil {
			m.toast = msg.err.Error()
			cmds = append(cmds, expireToast())
		}

	case clearToastMsg:
		m.toast = ""

	case tea.KeyMsg:
		cmds = append(cmds, m.handleKey(msg)...)
	}

	return m, tea.Batch(cmds...)
}

// applyStartup wires the fetched configuration and history into the
// session manager and applies the auto-selection policy.
func (m *Model) applyStartup(msg startupMsg) []tea.Cmd {
	if msg.err != nil {
		m.toast = msg.err.Error()
		return []tea.Cmd{expireToast()}
	}

	m.uiCfg = msg.cfg
	if limit := m.inputLimit(); limit > 0 {
		m.input.CharLimit = limit
	}
	m.pickerFlows = msg.flows

	m.mgr.ApplyHistory(msg.history)
	m.mgr.AutoSelect(context.Background(), msg.cfg, msg.history, func() {
		m.pickerOpen = true
	})

	var cmds []tea.Cmd
	if id := m.mgr.SelectedChatID(); id != "" && m.mgr.NeedsHydration(id) {
		cmds = append(cmds, m.loadMessages(id))
	}
	m.refreshPane()
	return cmds
}

// handleKey dispatches keyboard input.
func (m *Model) handleKey(msg tea.KeyMsg) []tea.Cmd {
	if m.pickerOpen {
		return m.handlePickerKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return []tea.Cmd{tea.Quit}

	case key.Matches(msg, m.keys.Send):
		text := strings.TrimSpace(m.input.Value())
		chatID := m.mgr.SelectedChatID()
		if text == "" || chatID == "" || m.sending {
			return nil
		}
		m.input.Reset()
		m.sending = true
		m.refreshPane()
		return []tea.Cmd{m.sendMessage(text, chatID, util.IsRTL(text))}

	case key.Matches(msg, m.keys.NewChat):
		if chat := m.mgr.SelectedChat(context.Background()); chat != nil {
			m.mgr.CreateChat(chat.Flow)
		} else if len(m.pickerFlows) > 0 {
			m.pickerOpen = true
		}
		m.refreshPane()
		return nil

	case key.Matches(msg, m.keys.Abort):
		m.mgr.AbortMessage()
		return nil

	case key.Matches(msg, m.keys.NextChat):
		return m.cycleChat(1)

	case key.Matches(msg, m.keys.PrevChat):
		return m.cycleChat(-1)

	case key.Matches(msg, m.keys.PageUp):
		m.pane.HalfViewUp()
		return nil

	case key.Matches(msg, m.keys.PageDown):
		m.pane.HalfViewDown()
		return nil

	case key.Matches(msg, m.keys.ThumbsUp):
		return m.rateLastAnswer(model.ThumbsUp)

	case key.Matches(msg, m.keys.ThumbsDown):
		return m.rateLastAnswer(model.ThumbsDown)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return []tea.Cmd{cmd}
}

// handlePickerKey drives the flow selection overlay.
func (m *Model) handlePickerKey(msg tea.KeyMsg) []tea.Cmd {
	switch msg.String() {
	case "up", "k":
		if m.pickerCursor > 0 {
			m.pickerCursor--
		}
	case "down", "j":
		if m.pickerCursor < len(m.pickerFlows)-1 {
			m.pickerCursor++
		}
	case "enter":
		if len(m.pickerFlows) > 0 {
			m.mgr.CreateChat(m.pickerFlows[m.pickerCursor])
			m.pickerOpen = false
			m.refreshPane()
		}
	case "ctrl+c", "ctrl+q":
		return []tea.Cmd{tea.Quit}
	case "esc":
		if m.mgr.SelectedChatID() != "" {
			m.pickerOpen = false
		}
	}
	return nil
}

// cycleChat moves the selection through the chat list, hydrating the
// target when needed.
func (m *Model) cycleChat(delta int) []tea.Cmd {
	chats := m.mgr.Chats()
	if len(chats) < 2 {
		return nil
	}

	selected := m.mgr.SelectedChatID()
	idx := 0
	for i, c := range chats {
		if c.ID == selected {
			idx = i
			break
		}
	}
	next := chats[(idx+delta+len(chats))%len(chats)]

	m.mgr.SelectChat(next.ID)

	var cmds []tea.Cmd
	if m.mgr.NeedsHydration(next.ID) {
		cmds = append(cmds, m.loadMessages(next.ID))
	}
	m.refreshPane()
	return cmds
}

// rateLastAnswer submits feedback for the most recent system message of
// the selected chat.
func (m *Model) rateLastAnswer(fb model.Feedback) []tea.Cmd {
	chat := m.mgr.SelectedChat(context.Background())
	if chat == nil {
		return nil
	}
	for i := len(chat.Messages) - 1; i >= 0; i-- {
		msg := chat.Messages[i]
		if msg.Type == model.TypeSystem && !msg.Error {
			return []tea.Cmd{m.submitFeedback(fb, chat, msg)}
		}
	}
	return nil
}

// refreshPane re-renders the conversation and follows the dirty flag to
// the bottom.
func (m *Model) refreshPane() {
	if !m.ready {
		return
	}
	chat := m.mgr.SelectedChat(context.Background())
	m.pane.SetContent(m.renderConversation(chat))
	if m.mgr.ConsumeChatUpdated() {
		m.pane.GotoBottom()
	}
}

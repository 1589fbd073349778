// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"context"
	"log"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ShragaAI/shraga-ui/internal/api"
	"github.com/ShragaAI/shraga-ui/internal/model"
	"github.com/ShragaAI/shraga-ui/internal/session"
)

// =============================================================================
// MESSAGES
// =============================================================================

// startupMsg carries the backend configuration, flow catalog and chat
// history fetched at launch.
type startupMsg struct {
	cfg     *api.UIConfig
	flows   []model.Flow
	history []*model.Chat
	err     error
}

// messagesLoadedMsg carries one chat's hydrated message list.
type messagesLoadedMsg struct {
	chatID   string
	messages []model.Message
	err      error
}

// sendDoneMsg signals that a send resolved. err is only set for
// failures surfaced out of band (validation, transport).
type sendDoneMsg struct {
	err error
}

// feedbackDoneMsg signals a feedback submission result.
type feedbackDoneMsg struct {
	err error
}

// clearToastMsg expires the transient error toast.
type clearToastMsg struct{}

// =============================================================================
// COMMANDS
// =============================================================================

// loadStartup fetches configuration, flows and (when enabled) history.
// Background load failures degrade to empty results so the UI stays
// usable with partial data.
func (m *Model) loadStartup() tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()

		cfg, err := m.client.GetConfigs(ctx)
		if err != nil {
			return startupMsg{err: err}
		}

		flows, err := m.cat.Flows(ctx)
		if err != nil {
			log.Printf("flow catalog load failed: %v", err)
			flows = nil
		}

		var history []*model.Chat
		if m.historyEnabled && cfg.HistoryEnabled {
			history, err = m.client.ListHistory(ctx)
			if err != nil {
				log.Printf("history load failed: %v", err)
				history = nil
			}
		}

		return startupMsg{cfg: cfg, flows: flows, history: history}
	}
}

// loadMessages hydrates one chat's message list.
func (m *Model) loadMessages(chatID string) tea.Cmd {
	return func() tea.Msg {
		msgs, err := m.client.ChatMessages(context.Background(), chatID)
		if err != nil {
			log.Printf("message load for %s failed: %v", chatID, err)
			return messagesLoadedMsg{chatID: chatID, messages: nil, err: err}
		}
		return messagesLoadedMsg{chatID: chatID, messages: msgs}
	}
}

// sendMessage runs the send protocol in a goroutine. The manager
// mutates chat state itself; the command only reports out-of-band
// errors back to the event loop.
func (m *Model) sendMessage(text, chatID string, rtl bool) tea.Cmd {
	return func() tea.Msg {
		var outErr error
		m.mgr.SendMessage(context.Background(), text, chatID, session.SendOptions{
			RTL:     rtl,
			OnError: func(err error) { outErr = err },
		})
		return sendDoneMsg{err: outErr}
	}
}

// submitFeedback records a rating for the given message.
func (m *Model) submitFeedback(fb model.Feedback, chat *model.Chat, msg model.Message) tea.Cmd {
	return func() tea.Msg {
		var outErr error
		m.mgr.SubmitFeedback(context.Background(), fb, chat, msg, session.FeedbackOptions{
			OnError: func(err error) { outErr = err },
		}, "")
		return feedbackDoneMsg{err: outErr}
	}
}

// expireToast clears the error toast after a short delay.
func expireToast() tea.Cmd {
	return tea.Tick(4*time.Second, func(time.Time) tea.Msg {
		return clearToastMsg{}
	})
}

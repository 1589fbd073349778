// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"errors"

	"github.com/ShragaAI/shraga-ui/internal/api"
	"github.com/ShragaAI/shraga-ui/internal/model"
)

// User-facing texts for the cancellation and timeout bubbles. Distinct
// so the UI can tell them apart.
const (
	abortedText = "The request was aborted."
	timeoutText = "The server failed to respond in time. Please try again later."
)

// SendOptions carries per-send flags and completion callbacks.
type SendOptions struct {
	// RTL marks the user message as right-to-left text.
	RTL bool

	// OnSuccess runs after the conversation was updated with a result,
	// including error bubbles, abort and timeout notices. The UI
	// scrolls on it.
	OnSuccess func()

	// OnError runs for failures that must be surfaced out of band:
	// validation errors (HTTP 400) and transport/parse failures.
	OnError func(error)
}

// =============================================================================
// SEND
// =============================================================================

// SendMessage runs the send protocol for one user message. It blocks
// until the send resolves; callers drive it from a goroutine.
//
// The user message is appended optimistically before any network I/O.
// Outcomes:
//
//   - success: system message appended if this send still owns the
//     active-chat token, OnSuccess called; a stale result is discarded.
//   - HTTP 400: OnError with the server's detail, no chat mutation.
//   - other non-OK status: error bubble appended, OnSuccess called.
//   - abort: error bubble in the chat active at abort time, OnSuccess.
//   - timeout: error bubble in the originally captured chat, OnSuccess.
//   - transport/parse failure: optimistic message rolled back, OnError.
func (m *Manager) SendMessage(ctx context.Context, text, chatID string, opts SendOptions) {
	m.mu.Lock()

	chat := m.findChat(chatID)
	if chat == nil {
		// Defensive; should not occur in normal flow.
		m.mu.Unlock()
		return
	}

	// Claim the single send slot. The previous handle is superseded,
	// not cancelled; its result will fail the ownership check instead.
	m.epoch++
	myEpoch := m.epoch
	m.currentChat = chatID
	m.abortTarget = ""
	sendCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	// Release the handle's resources once this send has resolved; by
	// then cancellation is a no-op.
	defer cancel()

	// Position and echoed history come from the state before the
	// optimistic append.
	position := chat.NextPosition()
	history := chat.HistoryEntries()
	flowID := chat.FlowID

	user := model.NewUserMessage(text, opts.RTL)
	user.Position = &position
	chat.Messages = append(chat.Messages, user)
	m.touch(chat)

	m.mu.Unlock()

	preferences := m.flows.ResolvePreferences(sendCtx, flowID)

	// Real context cancellation, so the socket is released on timeout.
	runCtx, cancelTimeout := context.WithTimeout(sendCtx, m.runTimeout)
	defer cancelTimeout()

	resp, err := m.backend.Run(runCtx, api.RunRequest{
		Question:    text,
		FlowID:      flowID,
		Preferences: preferences,
		ChatID:      chatID,
		Position:    position,
		ChatHistory: history,
	})

	m.resolveSend(chatID, myEpoch, position, text, resp, err, sendCtx, opts)
}

// resolveSend applies a completed send's outcome to the chat state.
func (m *Manager) resolveSend(chatID string, myEpoch uint64, position int, text string, resp *api.RunResponse, err error, sendCtx context.Context, opts SendOptions) {
	var validationErr *api.ValidationError
	var apiErr *api.APIError

	switch {
	case err == nil:
		m.mu.Lock()
		owned := m.currentChat == chatID
		if owned {
			if chat := m.findChat(chatID); chat != nil {
				msg := model.NewSystemMessage(resp.ResponseText, false)
				msg.AllowReply = resp.AllowReply
				msg.RetrievalResults = resp.RetrievalResults
				msg.Trace = resp.Trace
				msg.Payload = resp.Payload
				chat.Messages = append(chat.Messages, msg)
				m.touch(chat)
			}
		}
		m.clearSlot(chatID, myEpoch)
		m.mu.Unlock()

		if owned && opts.OnSuccess != nil {
			opts.OnSuccess()
		}

	case sendCtx.Err() == context.Canceled || errors.Is(err, context.Canceled):
		// The abort notice goes to whichever chat was active when the
		// cancellation fired, which may differ from the captured id if
		// the user already switched.
		m.mu.Lock()
		target := m.abortTarget
		if target == "" {
			target = chatID
		}
		m.abortTarget = ""
		if chat := m.findChat(target); chat != nil {
			chat.Messages = append(chat.Messages, model.NewErrorMessage(abortedText, false))
			m.touch(chat)
		}
		m.clearSlot(chatID, myEpoch)
		m.mu.Unlock()

		if opts.OnSuccess != nil {
			opts.OnSuccess()
		}

	case errors.Is(err, context.DeadlineExceeded):
		m.mu.Lock()
		if chat := m.findChat(chatID); chat != nil {
			chat.Messages = append(chat.Messages, model.NewErrorMessage(timeoutText, false))
			m.touch(chat)
		}
		m.clearSlot(chatID, myEpoch)
		m.mu.Unlock()

		if opts.OnSuccess != nil {
			opts.OnSuccess()
		}

	case errors.As(err, &validationErr):
		// Validation-class error: surface out of band, leave the
		// conversation untouched.
		m.mu.Lock()
		m.clearSlot(chatID, myEpoch)
		m.mu.Unlock()

		if opts.OnError != nil {
			opts.OnError(validationErr)
		}

	case errors.As(err, &apiErr):
		m.mu.Lock()
		if chat := m.findChat(chatID); chat != nil {
			msg := model.NewErrorMessage(apiErr.UserMessage(), false)
			msg.Trace = apiErr.Trace
			msg.Payload = apiErr.Payload
			chat.Messages = append(chat.Messages, msg)
			m.touch(chat)
		}
		m.clearSlot(chatID, myEpoch)
		m.mu.Unlock()

		// The UI still scrolls to the error bubble.
		if opts.OnSuccess != nil {
			opts.OnSuccess()
		}

	default:
		// Transport or parse failure: net zero messages added.
		m.mu.Lock()
		m.rollbackOptimistic(chatID, text, position)
		m.clearSlot(chatID, myEpoch)
		m.mu.Unlock()

		if opts.OnError != nil {
			opts.OnError(err)
		}
	}
}

// clearSlot releases the send slot if this send still owns it. Caller
// holds the lock.
func (m *Manager) clearSlot(chatID string, myEpoch uint64) {
	if m.epoch == myEpoch && m.currentChat == chatID {
		m.currentChat = ""
		m.cancel = nil
	}
}

// rollbackOptimistic removes the optimistically appended user message.
// Caller holds the lock.
func (m *Manager) rollbackOptimistic(chatID, text string, position int) {
	chat := m.findChat(chatID)
	if chat == nil {
		return
	}
	for i := len(chat.Messages) - 1; i >= 0; i-- {
		msg := chat.Messages[i]
		if msg.Type == model.TypeUser && msg.Text == text &&
			msg.Position != nil && *msg.Position == position {
			chat.Messages = append(chat.Messages[:i], chat.Messages[i+1:]...)
			m.chatUpdated = true
			return
		}
	}
}

// AbortMessage cancels the in-flight send, if any. The aborted send
// appends its notice asynchronously.
func (m *Manager) AbortMessage() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cancel == nil {
		return
	}
	m.abortTarget = m.currentChat
	m.cancel()
}

// =============================================================================
// FEEDBACK
// =============================================================================

// FeedbackOptions carries the completion callbacks for a feedback
// submission.
type FeedbackOptions struct {
	OnSuccess func()
	OnError   func(error)
}

// SubmitFeedback records a rating for a message. Local chat state is
// never mutated; feedback display is owned by the presentation layer.
func (m *Manager) SubmitFeedback(ctx context.Context, feedback model.Feedback, chat *model.Chat, msg model.Message, opts FeedbackOptions, feedbackText string) {
	userID := chat.UserID
	if userID == "" {
		userID = m.userID
	}

	err := m.backend.SubmitFeedback(ctx, api.FeedbackRequest{
		ChatID:       chat.ID,
		UserID:       userID,
		FlowID:       chat.FlowID,
		MsgID:        msg.ID,
		Position:     msg.Position,
		Feedback:     feedback,
		FeedbackText: feedbackText,
	})
	if err != nil {
		if opts.OnError != nil {
			opts.OnError(err)
		}
		return
	}
	if opts.OnSuccess != nil {
		opts.OnSuccess()
	}
}

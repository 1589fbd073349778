// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"sync"
	"time"

	"github.com/ShragaAI/shraga-ui/internal/api"
	"github.com/ShragaAI/shraga-ui/internal/model"
)

// DefaultRunTimeout bounds how long a send waits for the backend.
const DefaultRunTimeout = 300 * time.Second

// Backend is the slice of the API client the manager needs.
// Implemented by api.Client.
type Backend interface {
	Run(ctx context.Context, req api.RunRequest) (*api.RunResponse, error)
	SubmitFeedback(ctx context.Context, req api.FeedbackRequest) error
}

// FlowResolver resolves flow definitions and their effective
// preferences. Implemented by catalog.Catalog.
type FlowResolver interface {
	Find(ctx context.Context, id string) (model.Flow, bool, error)
	ResolvePreferences(ctx context.Context, flowID string) map[string]any
}

// =============================================================================
// MANAGER
// =============================================================================

// Manager is the chat session state machine. Safe for concurrent use:
// the UI event loop is single-threaded but send completions arrive from
// goroutines, so every mutation happens under one lock.
type Manager struct {
	mu sync.Mutex

	backend Backend
	flows   FlowResolver

	// Chat list, most-recently-active first. A mutated chat moves to
	// the front.
	chats          []*model.Chat
	selectedChatID string

	// chatUpdated signals the UI to scroll to the bottom; consumed via
	// ConsumeChatUpdated.
	chatUpdated   bool
	isLoadingChat bool

	// loadedChats holds ids whose message history has been hydrated
	// from the server at least once.
	loadedChats map[string]struct{}

	// Single-slot active send. currentChat is the chat id of the most
	// recent outstanding send (also bumped on selection, so stale
	// responses fail the ownership check). abortTarget captures which
	// chat was active at the moment a cancellation was triggered.
	currentChat string
	abortTarget string
	cancel      context.CancelFunc
	epoch       uint64

	runTimeout     time.Duration
	historyEnabled bool
	userID         string
}

// NewManager creates a session manager over the given backend and flow
// resolver.
func NewManager(backend Backend, flows FlowResolver) *Manager {
	return &Manager{
		backend:     backend,
		flows:       flows,
		loadedChats: make(map[string]struct{}),
		runTimeout:  DefaultRunTimeout,
	}
}

// WithRunTimeout sets the send timeout.
func (m *Manager) WithRunTimeout(d time.Duration) *Manager {
	m.runTimeout = d
	return m
}

// WithHistoryEnabled sets the global history feature flag, which feeds
// CanReplyToBot. Also called on config hot reload, hence the lock.
func (m *Manager) WithHistoryEnabled(enabled bool) *Manager {
	m.mu.Lock()
	m.historyEnabled = enabled
	m.mu.Unlock()
	return m
}

// WithUserID sets the user id attached to feedback submissions for
// draft chats that carry none.
func (m *Manager) WithUserID(id string) *Manager {
	m.userID = id
	return m
}

// =============================================================================
// CHAT CREATION AND SELECTION
// =============================================================================

// CreateChat aborts any in-flight send, creates a draft chat bound to
// flow, prepends it, selects it and marks it loaded (a draft has no
// history to hydrate). Returns a clone of the new chat.
func (m *Manager) CreateChat(flow model.Flow) *model.Chat {
	m.mu.Lock()

	if m.cancel != nil {
		m.abortTarget = m.currentChat
		m.cancel()
	}

	chat := model.NewDraftChat(flow)
	m.chats = append([]*model.Chat{chat}, m.chats...)
	m.selectedChatID = chat.ID
	m.loadedChats[chat.ID] = struct{}{}
	m.currentChat = chat.ID
	m.isLoadingChat = false
	m.chatUpdated = true

	clone := chat.Clone()
	m.mu.Unlock()
	return clone
}

// SelectChat makes chatID the selected chat. Unknown ids are a no-op,
// as is re-selecting the already-selected chat (no loading transitions,
// no cancellation). Selecting a never-hydrated chat raises the loading
// flag; switching away from a chat with an in-flight send aborts it.
func (m *Manager) SelectChat(chatID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.findChat(chatID) == nil {
		return
	}
	if chatID == m.selectedChatID {
		return
	}

	if _, loaded := m.loadedChats[chatID]; !loaded {
		m.isLoadingChat = true
	}
	m.selectedChatID = chatID

	if m.currentChat != "" && m.currentChat != chatID && m.cancel != nil {
		m.abortTarget = m.currentChat
		m.cancel()
	}
	m.currentChat = chatID
}

// findChat returns the chat with the given id, or nil. Caller holds the
// lock.
func (m *Manager) findChat(chatID string) *model.Chat {
	for _, c := range m.chats {
		if c.ID == chatID {
			return c
		}
	}
	return nil
}

// touch marks the chat as most recently active and raises the dirty
// flag. Caller holds the lock.
func (m *Manager) touch(chat *model.Chat) {
	for i, c := range m.chats {
		if c == chat {
			if i > 0 {
				m.chats = append(m.chats[:i], m.chats[i+1:]...)
				m.chats = append([]*model.Chat{chat}, m.chats...)
			}
			break
		}
	}
	m.chatUpdated = true
}

// =============================================================================
// HISTORY HYDRATION
// =============================================================================

// ApplyHistory reconciles the server's chat history list with local
// state: local drafts win by id, server order is kept, unmatched drafts
// stay on top.
func (m *Manager) ApplyHistory(serverChats []*model.Chat) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chats = model.MergeHistory(serverChats, m.chats)
}

// ApplyMessages replaces a chat's message list wholesale with the
// server-fetched set, marks the chat hydrated and clears the loading
// flag when it is the selected chat. Unknown ids are a no-op.
func (m *Manager) ApplyMessages(chatID string, messages []model.Message) {
	m.mu.Lock()
	defer m.mu.Unlock()

	chat := m.findChat(chatID)
	if chat == nil {
		return
	}

	chat.Messages = messages
	m.loadedChats[chatID] = struct{}{}
	if m.selectedChatID == chatID {
		m.isLoadingChat = false
	}
	m.chatUpdated = true
}

// NeedsHydration reports whether the chat's messages have never been
// fetched from the server.
func (m *Manager) NeedsHydration(chatID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, loaded := m.loadedChats[chatID]
	return !loaded
}

// =============================================================================
// STARTUP AUTO-SELECTION
// =============================================================================

// AutoSelect applies the startup selection policy once configuration
// and flow catalog are loaded. No-op when a chat is already selected.
//
// With server history present, a NEW draft chat is created from the
// first history entry's flow (history stays browsable, conversations
// start fresh). With no history: an ambiguous default-flow list opens
// the flow selection UI via openEditor, a single catalog-known default
// flow creates a chat, anything else opens the editor.
func (m *Manager) AutoSelect(ctx context.Context, cfg *api.UIConfig, history []*model.Chat, openEditor func()) {
	m.mu.Lock()
	selected := m.selectedChatID
	m.mu.Unlock()
	if selected != "" {
		return
	}

	if len(history) > 0 {
		flowID := history[0].FlowID
		flow, ok, err := m.flows.Find(ctx, flowID)
		if err != nil || !ok {
			flow = model.Flow{ID: flowID}
		}
		m.CreateChat(flow)
		return
	}

	defaultFlow := cfg.DefaultFlow
	if len(defaultFlow) > 1 {
		openEditor()
		return
	}
	if len(defaultFlow) == 1 {
		if flow, ok, err := m.flows.Find(ctx, defaultFlow[0]); err == nil && ok {
			m.CreateChat(flow)
			return
		}
	}
	openEditor()
}

// =============================================================================
// DERIVED STATE
// =============================================================================

// SelectedChat returns a clone of the selected chat with its flow
// preferences recomputed fresh from the flow catalog, never a snapshot
// cached on the chat. Nil when nothing is selected.
func (m *Manager) SelectedChat(ctx context.Context) *model.Chat {
	m.mu.Lock()
	chat := m.findChat(m.selectedChatID)
	if chat == nil {
		m.mu.Unlock()
		return nil
	}
	clone := chat.Clone()
	m.mu.Unlock()

	clone.Flow.Preferences = m.flows.ResolvePreferences(ctx, clone.FlowID)
	return clone
}

// SelectedChatID returns the selected chat's id, or "".
func (m *Manager) SelectedChatID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.selectedChatID
}

// Chats returns clones of the chat list in most-recently-active order.
func (m *Manager) Chats() []*model.Chat {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*model.Chat, 0, len(m.chats))
	for _, c := range m.chats {
		out = append(out, c.Clone())
	}
	return out
}

// IsLoadingChat reports whether the selected chat's history is still
// being hydrated.
func (m *Manager) IsLoadingChat() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.isLoadingChat
}

// ConsumeChatUpdated returns the dirty flag and clears it. The UI uses
// it to scroll to the bottom exactly once per mutation burst.
func (m *Manager) ConsumeChatUpdated() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	updated := m.chatUpdated
	m.chatUpdated = false
	return updated
}

// CanReplyToBot reports whether follow-up questions are meaningful for
// the selected chat: its flow keeps a history window, or history is
// globally enabled.
func (m *Manager) CanReplyToBot(ctx context.Context) bool {
	m.mu.Lock()
	enabled := m.historyEnabled
	m.mu.Unlock()
	if enabled {
		return true
	}
	chat := m.SelectedChat(ctx)
	if chat == nil {
		return false
	}
	return model.HistoryWindow(chat.Flow.Preferences) > 0
}

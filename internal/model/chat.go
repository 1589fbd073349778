// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/ShragaAI/shraga-ui/internal/util"
)

// =============================================================================
// CHAT TYPE
// =============================================================================

// Chat is one conversation instance, bound to a Flow.
//
// A chat starts life as a draft (client-only, id generated locally) and
// becomes non-draft once the server acknowledges persisted history
// containing it. The client never deletes chats; history purge is a
// server-side concern.
type Chat struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id,omitempty"`
	Draft     bool      `json:"draft,omitempty"`
	Flow      Flow      `json:"flow"`
	FlowID    string    `json:"flow_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Messages  []Message `json:"messages"`
}

// NewDraftChat creates a draft chat bound to the given flow, with a
// client-generated UUID and no messages.
func NewDraftChat(flow Flow) *Chat {
	return &Chat{
		ID:        uuid.NewString(),
		Draft:     true,
		Flow:      flow,
		FlowID:    flow.ID,
		Timestamp: time.Now(),
		Messages:  []Message{},
	}
}

// LastMessage returns the most recent message, or nil if the chat is empty.
func (c *Chat) LastMessage() *Message {
	if len(c.Messages) == 0 {
		return nil
	}
	return &c.Messages[len(c.Messages)-1]
}

// NextPosition computes the position for the next user message: the
// most recent positioned message's position + 1, or 0 when no message
// carries a position yet. Locally appended system messages have no
// position, so the scan walks back to the last positioned one to keep
// positions monotonic. Positions are never reassigned retroactively.
func (c *Chat) NextPosition() int {
	for i := len(c.Messages) - 1; i >= 0; i-- {
		if p := c.Messages[i].Position; p != nil {
			return *p + 1
		}
	}
	return 0
}

// HistoryEntries reduces the chat's messages to the shape echoed back to
// the run endpoint.
func (c *Chat) HistoryEntries() []HistoryEntry {
	entries := make([]HistoryEntry, 0, len(c.Messages))
	for _, m := range c.Messages {
		entries = append(entries, m.ToHistoryEntry())
	}
	return entries
}

// Preview returns a short sidebar preview from the first user message.
func (c *Chat) Preview() string {
	for _, m := range c.Messages {
		if m.Type == TypeUser && m.Text != "" {
			return util.TruncateRunes(util.FirstLine(m.Text), 50)
		}
	}
	return "New conversation"
}

// Clone creates a deep copy of the chat. The session manager hands clones
// to the presentation layer so chats are never mutated from outside.
func (c *Chat) Clone() *Chat {
	clone := *c
	clone.Messages = make([]Message, len(c.Messages))
	copy(clone.Messages, c.Messages)
	if c.Flow.Preferences != nil {
		prefs := make(map[string]any, len(c.Flow.Preferences))
		for k, v := range c.Flow.Preferences {
			prefs[k] = v
		}
		clone.Flow.Preferences = prefs
	}
	return &clone
}

// =============================================================================
// HISTORY MERGE
// =============================================================================

// MergeHistory unions the server history list with local chats,
// preferring local drafts by id: any id present locally as a draft is
// kept as-is, non-draft entries come from the server list. Output order
// is server order with unmatched local drafts prepended.
//
// The merge is deterministic; it replaces the whole chat list rather
// than editing it in place so a partial update is never observable.
func MergeHistory(server, local []*Chat) []*Chat {
	drafts := make(map[string]*Chat)
	for _, c := range local {
		if c.Draft {
			drafts[c.ID] = c
		}
	}

	merged := make([]*Chat, 0, len(server)+len(drafts))
	seen := make(map[string]struct{}, len(server))

	for _, s := range server {
		if d, ok := drafts[s.ID]; ok {
			merged = append(merged, d)
		} else {
			merged = append(merged, s)
		}
		seen[s.ID] = struct{}{}
	}

	// Unmatched local drafts go first (most recently created on top).
	var front []*Chat
	for _, c := range local {
		if !c.Draft {
			continue
		}
		if _, ok := seen[c.ID]; ok {
			continue
		}
		front = append(front, c)
	}

	return append(front, merged...)
}

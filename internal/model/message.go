// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

// =============================================================================
// MESSAGE TYPE ENUM
// =============================================================================

// MessageType identifies the sender of a message.
type MessageType string

const (
	TypeUser     MessageType = "user"
	TypeSystem   MessageType = "system"
	TypeFeedback MessageType = "feedback"
)

// String returns the wire representation of the message type.
func (t MessageType) String() string {
	return string(t)
}

// =============================================================================
// FEEDBACK ENUM
// =============================================================================

// Feedback is a user rating of a system response.
type Feedback string

const (
	ThumbsUp   Feedback = "thumbs_up"
	ThumbsDown Feedback = "thumbs_down"
)

// =============================================================================
// RETRIEVAL RESULT
// =============================================================================

// RetrievalResult is a citation/source record attached to a system
// response.
type RetrievalResult struct {
	Title       string         `json:"title"`
	Link        string         `json:"link,omitempty"`
	Description string         `json:"description,omitempty"`
	Score       float64        `json:"score,omitempty"`
	Date        string         `json:"date,omitempty"`
	Extra       map[string]any `json:"extra,omitempty"`
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message is a single message inside a chat.
//
// Position is a pointer: history entries loaded from the server carry a
// position, locally appended system messages do not. The distinction
// matters because the next user message's position is derived from the
// highest position seen so far.
type Message struct {
	// ID is set on messages loaded from server history; locally created
	// messages have none until the server persists them. Feedback
	// submissions reference it as msg_id.
	ID string `json:"id,omitempty"`

	Text      string      `json:"text"`
	Type      MessageType `json:"msg_type"`
	Timestamp string      `json:"timestamp,omitempty"`
	Position  *int        `json:"position,omitempty"`
	RTL       bool        `json:"rtl"`

	// Response metadata (system messages)
	Error            bool              `json:"error,omitempty"`
	AllowReply       bool              `json:"allowReply,omitempty"`
	Trace            any               `json:"trace,omitempty"`
	Payload          any               `json:"payload,omitempty"`
	RetrievalResults []RetrievalResult `json:"retrieval_results,omitempty"`

	// Feedback state (set on history entries the user already rated)
	Feedback     Feedback `json:"feedback,omitempty"`
	FeedbackText string   `json:"feedback_text,omitempty"`
}

// NewUserMessage creates a user message carrying the question text.
func NewUserMessage(text string, rtl bool) Message {
	return Message{Text: text, Type: TypeUser, RTL: rtl}
}

// NewSystemMessage creates a plain system message.
func NewSystemMessage(text string, rtl bool) Message {
	return Message{Text: text, Type: TypeSystem, RTL: rtl}
}

// NewErrorMessage creates a system message flagged as an error bubble.
func NewErrorMessage(text string, rtl bool) Message {
	return Message{Text: text, Type: TypeSystem, RTL: rtl, Error: true}
}

// HistoryEntry is the reduced shape echoed back to the run endpoint as
// chat history. Trace, payload and retrieval data are never echoed back.
type HistoryEntry struct {
	Timestamp string      `json:"timestamp"`
	Text      string      `json:"text"`
	Type      MessageType `json:"msg_type"`
}

// ToHistoryEntry reduces a message for inclusion in a run request.
func (m Message) ToHistoryEntry() HistoryEntry {
	return HistoryEntry{
		Timestamp: m.Timestamp,
		Text:      m.Text,
		Type:      m.Type,
	}
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"encoding/json"
	"time"

	"github.com/ShragaAI/shraga-ui/internal/model"
)

// =============================================================================
// UI CONFIGURATION
// =============================================================================

// DefaultFlow is the configured startup flow. The backend serves it as
// either a single flow id or a list of candidates, so it unmarshals from
// both shapes into a slice.
type DefaultFlow []string

// UnmarshalJSON accepts a JSON string or a JSON array of strings.
func (d *DefaultFlow) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		if single == "" {
			*d = nil
		} else {
			*d = DefaultFlow{single}
		}
		return nil
	}

	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	*d = DefaultFlow(list)
	return nil
}

// UIConfig is the backend's UI configuration object: feature flags, the
// default flow and input limits.
type UIConfig struct {
	Enabled         bool        `json:"enabled"`
	Name            string      `json:"name"`
	Title           string      `json:"title"`
	QuestionLine    string      `json:"question_line"`
	SidebarText     string      `json:"sidebar_text"`
	DefaultFlow     DefaultFlow `json:"default_flow"`
	ListFlows       bool        `json:"list_flows"`
	HistoryEnabled  bool        `json:"history_enabled"`
	LoadingMessages []string    `json:"loading_messages"`
	InputMaxLength  int         `json:"input_max_length"`
}

// =============================================================================
// RUN ENDPOINT
// =============================================================================

// RunRequest is the body of POST /api/flows/run.
type RunRequest struct {
	Question    string               `json:"question"`
	FlowID      string               `json:"flow_id"`
	Preferences map[string]any       `json:"preferences"`
	ChatID      string               `json:"chat_id"`
	Position    int                  `json:"position"`
	ChatHistory []model.HistoryEntry `json:"chat_history"`
}

// RunResponse is the success body of POST /api/flows/run.
type RunResponse struct {
	ResponseText     string                  `json:"response_text"`
	AllowReply       bool                    `json:"allow_reply"`
	RetrievalResults []model.RetrievalResult `json:"retrieval_results,omitempty"`
	Trace            any                     `json:"trace,omitempty"`
	Payload          any                     `json:"payload,omitempty"`
}

// errorBody is the backend's error envelope. Trace and payload may
// accompany processing errors from the run endpoint.
type errorBody struct {
	Detail  string `json:"detail"`
	Trace   any    `json:"trace,omitempty"`
	Payload any    `json:"payload,omitempty"`
}

// =============================================================================
// FEEDBACK ENDPOINT
// =============================================================================

// FeedbackRequest is the body of POST /api/history/feedback.
type FeedbackRequest struct {
	ChatID       string         `json:"chat_id"`
	UserID       string         `json:"user_id,omitempty"`
	FlowID       string         `json:"flow_id"`
	MsgID        string         `json:"msg_id,omitempty"`
	Position     *int           `json:"position,omitempty"`
	Feedback     model.Feedback `json:"feedback"`
	FeedbackText string         `json:"feedback_text,omitempty"`
}

// =============================================================================
// HISTORY ENDPOINTS
// =============================================================================

// historyItem is one entry of GET /api/history/list. The server is
// inconsistent about the id field (id vs chat_id) and carries the flow
// id on the first message rather than the chat.
type historyItem struct {
	ID        string           `json:"id"`
	ChatID    string           `json:"chat_id"`
	UserID    string           `json:"user_id"`
	Timestamp string           `json:"timestamp"`
	Messages  []historyMessage `json:"messages"`
}

type historyMessage struct {
	model.Message
	FlowID string `json:"flow_id,omitempty"`
}

// toChat normalizes a history item into a Chat: id preferring the id
// field over chat_id, flow id taken from the first message, messages
// flattened. The flow's preferences stay empty here; they are resolved
// live from the flow catalog.
func (h historyItem) toChat() *model.Chat {
	id := h.ID
	if id == "" {
		id = h.ChatID
	}

	flowID := "n/a"
	if len(h.Messages) > 0 && h.Messages[0].FlowID != "" {
		flowID = h.Messages[0].FlowID
	}

	messages := make([]model.Message, 0, len(h.Messages))
	for _, m := range h.Messages {
		messages = append(messages, m.Message)
	}

	timestamp, err := time.Parse(time.RFC3339, h.Timestamp)
	if err != nil {
		timestamp = time.Time{}
	}

	return &model.Chat{
		ID:        id,
		UserID:    h.UserID,
		Flow:      model.Flow{ID: flowID},
		FlowID:    flowID,
		Timestamp: timestamp,
		Messages:  messages,
	}
}

// =============================================================================
// AUTHENTICATION ENDPOINTS
// =============================================================================

// User is the response of GET /api/whoami.
type User struct {
	DisplayName string   `json:"display_name"`
	Roles       []string `json:"roles"`
	Version     string   `json:"shraga_version,omitempty"`
}

// OAuthTokenRequest is the body of POST /oauth/{provider}/token.
type OAuthTokenRequest struct {
	Code        string `json:"code"`
	RedirectURI string `json:"redirect_uri"`
}

// OAuthTokenResponse is the success body of the oauth token exchange.
// SessionTimeout, when non-zero, overrides the credential TTL in hours.
type OAuthTokenResponse struct {
	Token          string `json:"token"`
	SessionTimeout int    `json:"session_timeout,omitempty"`
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// fakeCreds is a static credential source for tests.
type fakeCreds struct {
	cred string
}

func (f fakeCreds) Get() (string, bool) {
	return f.cred, f.cred != ""
}

func newTestClient(server *httptest.Server) *Client {
	return NewClient(server.URL, fakeCreds{cred: "Bearer test-token"})
}

// =============================================================================
// RUN ENDPOINT TESTS
// =============================================================================

func TestClient_Run_Success(t *testing.T) {
	var gotAuth string
	var gotBody RunRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"response_text": "the answer",
			"allow_reply": true,
			"retrieval_results": [{"title": "doc one", "score": 0.9}]
		}`))
	}))
	defer server.Close()

	client := newTestClient(server)
	resp, err := client.Run(context.Background(), RunRequest{
		Question: "hi",
		FlowID:   "faq",
		ChatID:   "chat-1",
		Position: 0,
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if resp.ResponseText != "the answer" {
		t.Errorf("ResponseText = %q, want %q", resp.ResponseText, "the answer")
	}
	if !resp.AllowReply {
		t.Error("AllowReply should be true")
	}
	if len(resp.RetrievalResults) != 1 || resp.RetrievalResults[0].Title != "doc one" {
		t.Errorf("RetrievalResults = %+v", resp.RetrievalResults)
	}
	if gotAuth != "Bearer test-token" {
		t.Errorf("Authorization header = %q, want credential from store", gotAuth)
	}
	if gotBody.FlowID != "faq" || gotBody.ChatID != "chat-1" {
		t.Errorf("request body = %+v", gotBody)
	}
}

func TestClient_Run_ValidationError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"detail": "question too long"}`))
	}))
	defer server.Close()

	_, err := newTestClient(server).Run(context.Background(), RunRequest{Question: "hi"})

	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("Run() error = %v, want *ValidationError", err)
	}
	if vErr.Detail != "question too long" {
		t.Errorf("Detail = %q, want %q", vErr.Detail, "question too long")
	}
}

func TestClient_Run_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"detail": "boom", "trace": {"step": "retrieval"}}`))
	}))
	defer server.Close()

	_, err := newTestClient(server).Run(context.Background(), RunRequest{Question: "hi"})

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Run() error = %v, want *APIError", err)
	}
	if apiErr.Status != http.StatusInternalServerError {
		t.Errorf("Status = %d, want 500", apiErr.Status)
	}
	if apiErr.UserMessage() != "boom" {
		t.Errorf("UserMessage() = %q, want %q", apiErr.UserMessage(), "boom")
	}
	if apiErr.Trace == nil {
		t.Error("Trace should be forwarded")
	}
}

func TestClient_Run_ServerErrorWithoutDetail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`not json`))
	}))
	defer server.Close()

	_, err := newTestClient(server).Run(context.Background(), RunRequest{})

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Run() error = %v, want *APIError", err)
	}
	if apiErr.UserMessage() != "An error occurred" {
		t.Errorf("UserMessage() = %q, want default text", apiErr.UserMessage())
	}
}

func TestClient_Run_Canceled(t *testing.T) {
	started := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-started
		cancel()
	}()

	_, err := newTestClient(server).Run(ctx, RunRequest{Question: "hi"})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
}

func TestClient_Run_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := newTestClient(server).Run(ctx, RunRequest{Question: "hi"})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Run() error = %v, want context.DeadlineExceeded", err)
	}
}

// =============================================================================
// UNAUTHORIZED HANDLING
// =============================================================================

func TestClient_Unauthorized_FiresHook(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail": "expired"}`))
	}))
	defer server.Close()

	hookCalls := 0
	client := newTestClient(server).WithOnUnauthorized(func() { hookCalls++ })

	_, err := client.WhoAmI(context.Background())
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("WhoAmI() error = %v, want ErrUnauthorized", err)
	}
	if hookCalls != 1 {
		t.Errorf("unauthorized hook called %d times, want 1", hookCalls)
	}
}

// =============================================================================
// HISTORY NORMALIZATION
// =============================================================================

func TestClient_ListHistory_Normalization(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/history/list" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Write([]byte(`[
			{
				"chat_id": "c1",
				"user_id": "u1",
				"timestamp": "2026-02-10T12:00:00Z",
				"messages": [
					{"text": "q", "msg_type": "user", "position": 0, "flow_id": "faq"},
					{"text": "a", "msg_type": "system", "position": 1}
				]
			},
			{
				"id": "c2",
				"timestamp": "2026-02-11T12:00:00Z",
				"messages": []
			}
		]`))
	}))
	defer server.Close()

	chats, err := newTestClient(server).ListHistory(context.Background())
	if err != nil {
		t.Fatalf("ListHistory() error = %v", err)
	}
	if len(chats) != 2 {
		t.Fatalf("got %d chats, want 2", len(chats))
	}

	first := chats[0]
	if first.ID != "c1" {
		t.Errorf("chat_id fallback: ID = %q, want c1", first.ID)
	}
	if first.Flow.ID != "faq" || first.FlowID != "faq" {
		t.Errorf("flow id from first message: got %q/%q", first.Flow.ID, first.FlowID)
	}
	if len(first.Messages) != 2 {
		t.Errorf("messages flattened: got %d", len(first.Messages))
	}
	if first.Messages[0].Position == nil || *first.Messages[0].Position != 0 {
		t.Error("message positions should survive normalization")
	}

	second := chats[1]
	if second.ID != "c2" {
		t.Errorf("ID = %q, want c2", second.ID)
	}
	if second.Flow.ID != "n/a" {
		t.Errorf("empty history flow id = %q, want n/a", second.Flow.ID)
	}
}

// =============================================================================
// CONFIG DECODING
// =============================================================================

func TestDefaultFlow_Unmarshal(t *testing.T) {
	tests := []struct {
		name string
		json string
		want []string
	}{
		{"single string", `{"default_flow": "faq"}`, []string{"faq"}},
		{"list", `{"default_flow": ["faq", "support"]}`, []string{"faq", "support"}},
		{"empty string", `{"default_flow": ""}`, nil},
		{"absent", `{}`, nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var cfg UIConfig
			if err := json.Unmarshal([]byte(tc.json), &cfg); err != nil {
				t.Fatalf("Unmarshal() error = %v", err)
			}
			if len(cfg.DefaultFlow) != len(tc.want) {
				t.Fatalf("DefaultFlow = %v, want %v", cfg.DefaultFlow, tc.want)
			}
			for i := range tc.want {
				if cfg.DefaultFlow[i] != tc.want[i] {
					t.Errorf("DefaultFlow[%d] = %q, want %q", i, cfg.DefaultFlow[i], tc.want[i])
				}
			}
		})
	}
}

func TestClient_GetConfigs(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"enabled": true,
			"title": "Support Bot",
			"default_flow": ["faq", "support"],
			"history_enabled": true,
			"input_max_length": 500
		}`))
	}))
	defer server.Close()

	cfg, err := newTestClient(server).GetConfigs(context.Background())
	if err != nil {
		t.Fatalf("GetConfigs() error = %v", err)
	}
	if cfg.Title != "Support Bot" || !cfg.HistoryEnabled || cfg.InputMaxLength != 500 {
		t.Errorf("config = %+v", cfg)
	}
	if len(cfg.DefaultFlow) != 2 {
		t.Errorf("DefaultFlow = %v", cfg.DefaultFlow)
	}
}

// =============================================================================
// FEEDBACK
// =============================================================================

func TestClient_SubmitFeedback(t *testing.T) {
	var got FeedbackRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/history/feedback" {
			t.Errorf("path = %q", r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&got)
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	pos := 3
	err := newTestClient(server).SubmitFeedback(context.Background(), FeedbackRequest{
		ChatID:   "c1",
		FlowID:   "faq",
		Position: &pos,
		Feedback: "thumbs_up",
	})
	if err != nil {
		t.Fatalf("SubmitFeedback() error = %v", err)
	}
	if got.ChatID != "c1" || got.Position == nil || *got.Position != 3 {
		t.Errorf("request = %+v", got)
	}
}

func TestClient_SubmitFeedback_Error(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"detail": "unknown chat"}`))
	}))
	defer server.Close()

	err := newTestClient(server).SubmitFeedback(context.Background(), FeedbackRequest{ChatID: "nope"})

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("SubmitFeedback() error = %v, want *APIError", err)
	}
	if apiErr.Detail != "unknown chat" {
		t.Errorf("Detail = %q", apiErr.Detail)
	}
}

// =============================================================================
// AUTH ENDPOINTS
// =============================================================================

func TestClient_OAuthToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/oauth/google/token" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "" {
			t.Error("token exchange must not send a credential")
		}
		w.Write([]byte(`{"token": "tok", "session_timeout": 8}`))
	}))
	defer server.Close()

	resp, err := newTestClient(server).OAuthToken(context.Background(), "google", OAuthTokenRequest{
		Code:        "code",
		RedirectURI: "http://localhost",
	})
	if err != nil {
		t.Fatalf("OAuthToken() error = %v", err)
	}
	if resp.Token != "tok" || resp.SessionTimeout != 8 {
		t.Errorf("response = %+v", resp)
	}
}

func TestClient_NotConfigured(t *testing.T) {
	client := NewClient("", nil)
	_, err := client.ListFlows(context.Background())
	if !errors.Is(err, ErrNotConfigured) {
		t.Errorf("error = %v, want ErrNotConfigured", err)
	}
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/ShragaAI/shraga-ui/internal/model"
	"github.com/ShragaAI/shraga-ui/internal/ui/styles"
)

// renderConversation renders the selected chat's messages for the
// viewport. Assistant responses go through glamour when markdown is
// enabled; error notices use the error style.
func (m *Model) renderConversation(chat *model.Chat) string {
	if chat == nil {
		return styles.Hint.Render("No conversation selected. Press C-n to start one.")
	}
	if len(chat.Messages) == 0 {
		line := "Ask your first question."
		if m.uiCfg != nil && m.uiCfg.QuestionLine != "" {
			line = m.uiCfg.QuestionLine
		}
		return styles.Hint.Render(line)
	}

	var b strings.Builder
	for _, msg := range chat.Messages {
		switch {
		case msg.Type == model.TypeUser:
			b.WriteString(styles.UserLabel.Render("You"))
			b.WriteString("\n")
			b.WriteString(styles.UserText.Render(msg.Text))
		case msg.Error:
			b.WriteString(styles.BotLabel.Render("Assistant"))
			b.WriteString("\n")
			b.WriteString(styles.ErrorBubble.Render(msg.Text))
		default:
			b.WriteString(styles.BotLabel.Render("Assistant"))
			b.WriteString("\n")
			b.WriteString(m.renderResponse(msg))
		}
		b.WriteString("\n\n")
	}
	return b.String()
}

// renderResponse renders one assistant message body plus its citations.
func (m *Model) renderResponse(msg model.Message) string {
	body := msg.Text
	if m.markdown {
		if rendered, err := m.renderMarkdown(body); err == nil {
			body = rendered
		}
	}

	if len(msg.RetrievalResults) == 0 {
		return body
	}

	var b strings.Builder
	b.WriteString(body)
	b.WriteString("\n")
	for i, r := range msg.RetrievalResults {
		line := fmt.Sprintf("[%d] %s", i+1, r.Title)
		if r.Link != "" {
			line += " · " + r.Link
		}
		b.WriteString(styles.Citation.Render(line))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// renderMarkdown runs glamour with word wrap at the pane width.
func (m *Model) renderMarkdown(text string) (string, error) {
	width := m.pane.Width
	if width <= 0 {
		width = 80
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", err
	}
	out, err := renderer.Render(text)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(out, "\n"), nil
}

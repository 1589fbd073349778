// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ShragaAI/shraga-ui/internal/api"
	"github.com/ShragaAI/shraga-ui/internal/catalog"
	"github.com/ShragaAI/shraga-ui/internal/model"
	"github.com/ShragaAI/shraga-ui/internal/session"
	"github.com/ShragaAI/shraga-ui/internal/ui/styles"
)

// =============================================================================
// MODEL
// =============================================================================

// Model is the root Bubble Tea model.
type Model struct {
	mgr    *session.Manager
	client *api.Client
	cat    *catalog.Catalog

	uiCfg          *api.UIConfig
	historyEnabled bool
	markdown       bool
	sidebarWidth   int

	keys  KeyMap
	input textinput.Model
	pane  viewport.Model
	spin  spinner.Model

	width  int
	height int
	ready  bool

	// Flow picker, shown when startup cannot pick a flow on its own.
	pickerOpen   bool
	pickerFlows  []model.Flow
	pickerCursor int

	// Transient out-of-band error display.
	toast string

	sending bool
}

// Options configures the UI model.
type Options struct {
	HistoryEnabled bool
	Markdown       bool
	SidebarWidth   int
}

// New creates the root model.
func New(mgr *session.Manager, client *api.Client, cat *catalog.Catalog, opts Options) *Model {
	input := textinput.New()
	input.Placeholder = "Ask a question..."
	input.Focus()

	spin := spinner.New()
	spin.Spinner = spinner.Spinner{
		Frames: []string{"|", "/", "-", "\\"},
		FPS:    time.Second / 10,
	}
	spin.Style = styles.Hint

	sidebar := opts.SidebarWidth
	if sidebar <= 0 {
		sidebar = 28
	}

	return &Model{
		mgr:            mgr,
		client:         client,
		cat:            cat,
		historyEnabled: opts.HistoryEnabled,
		markdown:       opts.Markdown,
		sidebarWidth:   sidebar,
		keys:           DefaultKeyMap(),
		input:          input,
		spin:           spin,
	}
}

// Init starts the spinner and kicks off the startup loads.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, m.loadStartup())
}

// inputLimit applies the backend's configured input cap.
func (m *Model) inputLimit() int {
	if m.uiCfg != nil && m.uiCfg.InputMaxLength > 0 {
		return m.uiCfg.InputMaxLength
	}
	return 0
}

// title returns the backend-configured title, or a default.
func (m *Model) title() string {
	if m.uiCfg != nil && m.uiCfg.Title != "" {
		return m.uiCfg.Title
	}
	return "shraga"
}

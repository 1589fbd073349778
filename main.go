// shraga TUI - a terminal client for the Shraga chat backend.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ShragaAI/shraga-ui/internal/api"
	"github.com/ShragaAI/shraga-ui/internal/auth"
	"github.com/ShragaAI/shraga-ui/internal/cache"
	"github.com/ShragaAI/shraga-ui/internal/catalog"
	"github.com/ShragaAI/shraga-ui/internal/config"
	"github.com/ShragaAI/shraga-ui/internal/session"
	"github.com/ShragaAI/shraga-ui/internal/ui"
)

// Version information (set at build time)
var (
	Version   = "0.4.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "shraga: %v\n", err)
		os.Exit(1)
	}

	store, err := auth.NewStore()
	if err != nil {
		fmt.Fprintf(os.Stderr, "shraga: %v\n", err)
		os.Exit(1)
	}

	if len(os.Args) > 1 {
		runCommand(os.Args[1], os.Args[2:], cfg, store)
		return
	}

	runTUI(cfg, store)
}

// runCommand dispatches the non-interactive subcommands.
func runCommand(name string, args []string, cfg *config.Config, store *auth.Store) {
	switch name {
	case "login":
		if len(args) != 1 {
			fmt.Fprintln(os.Stderr, "usage: shraga login <credential>")
			fmt.Fprintln(os.Stderr, "  credential: 'Bearer <jwt>', 'Basic <base64>' or a provider token")
			os.Exit(2)
		}
		if err := store.Set(args[0], cfg.Auth.TTLHours); err != nil {
			fmt.Fprintf(os.Stderr, "shraga: storing credential: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Credential stored.")

	case "logout":
		if err := store.Clear(); err != nil {
			fmt.Fprintf(os.Stderr, "shraga: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Credential cleared.")

	case "whoami":
		client := api.NewClient(cfg.Server.BaseURL, store)
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.RequestTimeout())
		defer cancel()
		user, err := client.WhoAmI(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "shraga: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("%s (roles: %v)\n", user.DisplayName, user.Roles)

	case "version", "--version", "-v":
		fmt.Printf("shraga %s (%s, built %s)\n", Version, GitCommit, BuildDate)

	default:
		fmt.Fprintf(os.Stderr, "shraga: unknown command %q\n", name)
		fmt.Fprintln(os.Stderr, "commands: login, logout, whoami, version")
		os.Exit(2)
	}
}

// runTUI wires the components and starts the event loop.
func runTUI(cfg *config.Config, store *auth.Store) {
	if cfg.Server.BaseURL == "" {
		fmt.Fprintln(os.Stderr, "shraga: no backend configured")
		fmt.Fprintln(os.Stderr, "set server.base_url in ~/.shraga/config.toml or SHRAGA_SERVER_URL")
		os.Exit(1)
	}
	if store.IsExpired() {
		fmt.Fprintln(os.Stderr, "shraga: no valid credential, run 'shraga login <credential>' first")
		os.Exit(1)
	}

	// The UI owns the terminal; route logs to a file when requested so
	// they do not corrupt the screen.
	if path := os.Getenv("SHRAGA_LOG"); path != "" {
		if f, err := tea.LogToFile(path, "shraga"); err == nil {
			defer f.Close()
		}
	}

	dataCache := cache.NewStore()

	client := api.NewClient(cfg.Server.BaseURL, store).
		WithRunTimeout(cfg.Server.RunTimeout()).
		WithOnUnauthorized(func() {
			// Global logout: drop the credential and every cached
			// per-credential result.
			if err := store.Clear(); err != nil {
				log.Printf("clearing credential: %v", err)
			}
			dataCache.Clear()
		})

	cat := catalog.New(client, dataCache)

	mgr := session.NewManager(client, cat).
		WithRunTimeout(cfg.Server.RunTimeout()).
		WithHistoryEnabled(cfg.History.Enabled)

	model := ui.New(mgr, client, cat, ui.Options{
		HistoryEnabled: cfg.History.Enabled,
		Markdown:       cfg.UI.Markdown,
		SidebarWidth:   cfg.UI.SidebarWidth,
	})

	// Pick up config file edits while running. Connection settings need
	// a restart; the reload only refreshes what can change live.
	if path, err := config.ConfigPathTOML(); err == nil {
		if watcher, werr := config.NewWatcher(path, func(next *config.Config) {
			log.Printf("configuration reloaded (server changes apply on restart)")
			mgr.WithHistoryEnabled(next.History.Enabled)
		}); werr == nil {
			if werr := watcher.Watch(); werr == nil {
				defer watcher.Close()
			}
		}
	}

	if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
		fmt.Fprintf(os.Stderr, "shraga: %v\n", err)
		os.Exit(1)
	}
}

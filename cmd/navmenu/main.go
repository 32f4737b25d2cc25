// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Command navmenu serves and manages navigation menus.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/olegiv/navmenu/internal/cli"
)

func main() {
	// Load .env file if present (development)
	_ = godotenv.Load()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := cli.New(os.Stderr).RootCommand().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

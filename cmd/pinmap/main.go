package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/samirrijal/pinmap/internal/adapters/pinstore"
	"github.com/samirrijal/pinmap/internal/adapters/tui"
	"github.com/samirrijal/pinmap/internal/core/surface"
	"github.com/samirrijal/pinmap/internal/core/usecases"
	"github.com/samirrijal/pinmap/internal/core/viewport"
	"github.com/samirrijal/pinmap/internal/pkg/config"
	"github.com/samirrijal/pinmap/internal/pkg/logging"
)

func main() {
	cfg, err := config.Load("pinmap")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// The terminal belongs to the map, so logs go to a file.
	closer, err := logging.SetupFile(cfg.Log.Level, cfg.Log.File)
	if err != nil {
		log.Fatalf("logging: %v", err)
	}
	defer closer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := pinstore.New(cfg.Client.StoreURL, cfg.Client.Timeout())
	queries := usecases.NewPinQueries(client)

	m := tui.New(ctx, tui.Config{
		Queries: queries,
		Store:   client,
		Canvas:  viewport.Canvas{W: cfg.Map.WorldWidth, H: cfg.Map.WorldHeight},
		Limits: viewport.Limits{
			MinScale: cfg.Map.MinScale,
			MaxScale: cfg.Map.MaxScale,
			Step:     cfg.Map.ZoomStep,
		},
		Surface: surface.Options{
			DragCooldown: cfg.Map.DragCooldown(),
			MarkerRadius: cfg.Map.MarkerRadius,
		},
		RequestTimeout: cfg.Client.Timeout(),
		ProbeInterval:  time.Duration(cfg.Client.ProbeInterval) * time.Second,
	})

	slog.Info("map client starting", "store", cfg.Client.StoreURL)

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		slog.Error("map client failed", "error", err)
		closer.Close()
		os.Exit(1)
	}
	slog.Info("map client stopped")
}

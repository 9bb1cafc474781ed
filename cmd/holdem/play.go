package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/coder/quartz"
	"github.com/muesli/termenv"
	"golang.org/x/sync/errgroup"

	"github.com/lox/homegame/internal/mood"
	"github.com/lox/homegame/internal/randutil"
	"github.com/lox/homegame/internal/tui"
)

type PlayCmd struct {
	Hands int `help:"Stop after N hands (0 plays until one seat holds every chip)"`
}

func (c *PlayCmd) Run(g *Globals) error {
	cfg, err := loadConfig(g)
	if err != nil {
		return err
	}
	if cfg.HumanSeat() < 0 {
		return errors.New("play needs a seat with human = true, use simulate for an all-computer table")
	}
	policy, err := cfg.AIPolicy()
	if err != nil {
		return err
	}
	moodInterval, err := cfg.MoodInterval()
	if err != nil {
		return err
	}

	// The terminal belongs to the TUI, so logs go to a file or nowhere
	var logOut io.Writer = io.Discard
	if cfg.Log.File != "" {
		f, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		defer func() { _ = f.Close() }()
		logOut = f
	}
	logger := newLogger(logOut, cfg.LogLevel(), true)
	if g.NoColor {
		lipgloss.SetColorProfile(termenv.Ascii)
	}

	clock := quartz.NewReal()
	t, err := newTable(cfg, false, policy, g.Seed, clock, logger)
	if err != nil {
		return err
	}
	logger.Info("Starting session", "seats", len(cfg.Seats), "seed", g.Seed, "config", g.Config)

	sigCtx, stop := signalContext()
	defer stop()
	ctx, cancel := context.WithCancel(sigCtx)
	defer cancel()

	model := tui.NewModel(t.human, t.orchestrator, logger)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(sigCtx))
	bridge := tui.NewBridge(program)
	t.orchestrator.EventBus().Subscribe(bridge)

	grp, gctx := errgroup.WithContext(ctx)
	grp.Go(func() error {
		err := t.orchestrator.Run(gctx, c.Hands)
		if !finished(err) {
			logger.Error("Session failed", "error", err)
			program.Quit()
			return err
		}
		return nil
	})
	if moodInterval > 0 {
		sim := mood.NewSimulator(clock, moodInterval, randutil.Fresh(), logger)
		grp.Go(func() error {
			return sim.Run(gctx, bridge.OnMood)
		})
	}
	grp.Go(func() error {
		defer cancel()
		_, err := program.Run()
		if errors.Is(err, tea.ErrProgramKilled) && sigCtx.Err() != nil {
			return nil
		}
		return err
	})

	if err := grp.Wait(); !finished(err) {
		return err
	}
	logger.Info("Session ended", "hands", t.orchestrator.Session().HandsPlayed)
	return nil
}

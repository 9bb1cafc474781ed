package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/muesli/termenv"

	"github.com/lox/homegame/internal/config"
	"github.com/lox/homegame/internal/game"
	"github.com/lox/homegame/internal/randutil"
)

func loadConfig(g *Globals) (*config.Config, error) {
	cfg, err := config.Load(g.Config)
	if err != nil {
		return nil, err
	}
	if g.LogLevel != "" {
		cfg.Log.Level = g.LogLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", g.Config, err)
	}
	return cfg, nil
}

func newLogger(w io.Writer, level log.Level, noColor bool) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
		Level:           level,
	})
	if noColor {
		logger.SetColorProfile(termenv.Ascii)
	}
	return logger
}

// signalContext is cancelled on SIGINT or SIGTERM
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// table bundles a session with the sources deciding for it
type table struct {
	orchestrator *game.Orchestrator
	human        *game.HumanSource
	history      *game.HandHistoryRecorder
}

func newTable(cfg *config.Config, allAI bool, policy game.AIPolicy, seed int64, clock quartz.Clock, logger *log.Logger) (*table, error) {
	session, err := game.NewSession(cfg.SessionConfig(allAI))
	if err != nil {
		return nil, err
	}

	inbox := game.NewInbox(2 * len(session.Seats))
	rng := randutil.Fresh()
	if seed != 0 {
		rng = randutil.New(seed)
	}
	ai := game.NewAISource(policy, inbox, clock, rng, logger)

	t := &table{}
	sources := make(game.Sources, len(session.Seats))
	for i, seat := range session.Seats {
		if seat.Kind == game.Human {
			t.human = game.NewHumanSource(i, inbox)
			sources[i] = t.human
			continue
		}
		sources[i] = ai
	}

	t.orchestrator, err = game.NewOrchestrator(session, sources, inbox, logger,
		game.WithRandSource(randutil.NewSource(seed)))
	if err != nil {
		return nil, err
	}

	var writer game.HandHistoryWriter = &game.NoOpHandHistoryWriter{}
	if dir := cfg.Table.HandHistoryDir; dir != "" {
		writer = game.NewFileHandHistoryWriter(dir)
	}
	t.history = game.NewHandHistoryRecorder(writer, logger)
	t.orchestrator.EventBus().Subscribe(t.history)

	return t, nil
}

// finished reports whether err is a normal way for a session to stop
func finished(err error) bool {
	return err == nil || errors.Is(err, context.Canceled)
}

package main

import (
	"os"

	"github.com/coder/quartz"
	"github.com/muesli/termenv"

	"github.com/lox/homegame/internal/display"
	"github.com/lox/homegame/internal/game"
	"github.com/lox/homegame/internal/statistics"
)

type SimulateCmd struct {
	Hands       int  `default:"10" help:"Number of hands to play (0 plays until one seat holds every chip)"`
	Think       bool `help:"Keep the configured AI thinking delays"`
	ShowCards   bool `help:"Print every seat's hole cards as they are dealt"`
	ShowHistory bool `help:"Print the full hand history after each hand"`
}

func (c *SimulateCmd) Run(g *Globals) error {
	cfg, err := loadConfig(g)
	if err != nil {
		return err
	}
	policy, err := cfg.AIPolicy()
	if err != nil {
		return err
	}
	if !c.Think {
		policy.ThinkMin, policy.ThinkMax = 0, 0
	}

	logger := newLogger(os.Stderr, cfg.LogLevel(), g.NoColor)
	t, err := newTable(cfg, true, policy, g.Seed, quartz.NewReal(), logger)
	if err != nil {
		return err
	}

	profile := termenv.NewOutput(os.Stdout).EnvColorProfile()
	if g.NoColor {
		profile = termenv.Ascii
	}
	bus := t.orchestrator.EventBus()
	tracker := statistics.NewTracker()
	bus.Subscribe(tracker)
	bus.Subscribe(display.NewConsole(os.Stdout, display.Options{
		Profile:        profile,
		Perspective:    -1,
		ShowHoleCards:  c.ShowCards,
		ShowReasonings: true,
	}))
	if c.ShowHistory {
		// Subscribed after the recorder, so Last is the hand that just ended
		bus.Subscribe(game.EventSubscriberFunc(func(event game.GameEvent) {
			switch event.(type) {
			case game.HandEndEvent, game.HandAbortedEvent:
				if h := t.history.Last(); h != nil {
					_, _ = os.Stdout.WriteString("\n" + h.Text() + "\n")
				}
			}
		}))
	}

	ctx, stop := signalContext()
	defer stop()

	logger.Info("Simulating", "hands", c.Hands, "seed", g.Seed)
	if err := t.orchestrator.Run(ctx, c.Hands); !finished(err) {
		return err
	}

	_, _ = os.Stdout.WriteString("\n" + tracker.Summary())

	s := t.orchestrator.Session()
	for _, seat := range s.Seats {
		logger.Info("Final stack", "seat", seat.Name, "stack", seat.Stack)
	}
	logger.Info("Simulation finished", "hands", s.HandsPlayed, "discarded", s.Discarded)
	return s.ValidateChipConservation()
}

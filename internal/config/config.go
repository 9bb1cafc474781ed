// Package config loads the table configuration from HCL.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/lox/homegame/internal/game"
)

// Config represents the complete game configuration
type Config struct {
	Table *TableConfig `hcl:"table,block"`
	Seats []SeatConfig `hcl:"seat,block"`
	AI    *AIConfig    `hcl:"ai,block"`
	Mood  *MoodConfig  `hcl:"mood,block"`
	Log   *LogConfig   `hcl:"log,block"`
}

// TableConfig holds the blinds and stacks
type TableConfig struct {
	SmallBlind     int    `hcl:"small_blind,optional"`
	BigBlind       int    `hcl:"big_blind,optional"`
	StartingStack  int    `hcl:"starting_stack,optional"`
	Dealer         int    `hcl:"dealer,optional"`
	HandHistoryDir string `hcl:"hand_history_dir,optional"`
}

// SeatConfig names a seat. Seats are numbered in file order.
type SeatConfig struct {
	Name  string `hcl:"name,label"`
	Human bool   `hcl:"human,optional"`
}

// AIConfig configures the computer seats
type AIConfig struct {
	RaiseMin  int            `hcl:"raise_min,optional"`
	RaiseMax  int            `hcl:"raise_max,optional"`
	ThinkMin  string         `hcl:"think_min,optional"`
	ThinkMax  string         `hcl:"think_max,optional"`
	Unopened  *UnopenedBlock `hcl:"unopened,block"`
	FacingBet *FacingBlock   `hcl:"facing_bet,block"`
}

// UnopenedBlock holds action weights when nothing is owed
type UnopenedBlock struct {
	Check int `hcl:"check,optional"`
	Raise int `hcl:"raise,optional"`
}

// FacingBlock holds action weights when a bet is outstanding
type FacingBlock struct {
	Call  int `hcl:"call,optional"`
	Fold  int `hcl:"fold,optional"`
	Raise int `hcl:"raise,optional"`
}

// MoodConfig controls the mood feed shown next to the human seat
type MoodConfig struct {
	Enabled  *bool  `hcl:"enabled,optional"`
	Interval string `hcl:"interval,optional"`
}

// LogConfig controls logging
type LogConfig struct {
	Level string `hcl:"level,optional"`
	File  string `hcl:"file,optional"`
}

// Default returns the stock four seat table
func Default() *Config {
	cfg := &Config{
		Seats: []SeatConfig{
			{Name: "PokerStar121", Human: true},
			{Name: "DarkNite12"},
			{Name: "RavensFan08"},
			{Name: "AAWizard17"},
		},
	}
	cfg.applyDefaults()
	return cfg
}

// Load reads configuration from an HCL file. A missing file yields the
// defaults.
func Load(filename string) (*Config, error) {
	if _, err := os.Stat(filename); errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}
	return decode(file)
}

// Parse decodes configuration from HCL source
func Parse(src []byte, filename string) (*Config, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL: %s", diags.Error())
	}
	return decode(file)
}

func decode(file *hcl.File) (*Config, error) {
	var cfg Config
	if diags := gohcl.DecodeBody(file.Body, nil, &cfg); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}
	if len(cfg.Seats) == 0 {
		cfg.Seats = Default().Seats
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Table == nil {
		c.Table = &TableConfig{}
	}
	if c.Table.SmallBlind == 0 {
		c.Table.SmallBlind = 10
	}
	if c.Table.BigBlind == 0 {
		c.Table.BigBlind = 20
	}
	if c.Table.StartingStack == 0 {
		c.Table.StartingStack = 1000
	}

	if c.AI == nil {
		c.AI = &AIConfig{}
	}
	def := game.DefaultAIPolicy()
	if c.AI.RaiseMin == 0 {
		c.AI.RaiseMin = def.RaiseMin
	}
	if c.AI.RaiseMax == 0 {
		c.AI.RaiseMax = def.RaiseMax
	}
	if c.AI.ThinkMin == "" {
		c.AI.ThinkMin = def.ThinkMin.String()
	}
	if c.AI.ThinkMax == "" {
		c.AI.ThinkMax = def.ThinkMax.String()
	}
	if c.AI.Unopened == nil {
		c.AI.Unopened = &UnopenedBlock{Check: def.Unopened.Check, Raise: def.Unopened.Raise}
	}
	if c.AI.FacingBet == nil {
		c.AI.FacingBet = &FacingBlock{Call: def.FacingBet.Call, Fold: def.FacingBet.Fold, Raise: def.FacingBet.Raise}
	}

	if c.Mood == nil {
		c.Mood = &MoodConfig{}
	}
	if c.Mood.Enabled == nil {
		enabled := true
		c.Mood.Enabled = &enabled
	}
	if c.Mood.Interval == "" {
		c.Mood.Interval = "3s"
	}

	if c.Log == nil {
		c.Log = &LogConfig{}
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.File == "" {
		c.Log.File = "holdem.log"
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if len(c.Seats) < 2 || len(c.Seats) > 10 {
		return fmt.Errorf("between 2 and 10 seats required, got %d", len(c.Seats))
	}
	names := make(map[string]bool)
	humans := 0
	for _, seat := range c.Seats {
		if seat.Name == "" {
			return fmt.Errorf("seat name must not be empty")
		}
		if names[seat.Name] {
			return fmt.Errorf("seat %s: duplicate name", seat.Name)
		}
		names[seat.Name] = true
		if seat.Human {
			humans++
		}
	}
	if humans > 1 {
		return fmt.Errorf("at most one human seat allowed, got %d", humans)
	}

	t := c.Table
	if t.SmallBlind <= 0 {
		return fmt.Errorf("table: small blind must be positive")
	}
	if t.BigBlind < t.SmallBlind {
		return fmt.Errorf("table: big blind must not be less than small blind")
	}
	if t.StartingStack < t.BigBlind {
		return fmt.Errorf("table: starting stack must cover the big blind")
	}
	if t.Dealer < 0 || t.Dealer >= len(c.Seats) {
		return fmt.Errorf("table: dealer %d is not a seat", t.Dealer)
	}

	if _, err := c.AIPolicy(); err != nil {
		return err
	}
	if _, err := c.MoodInterval(); err != nil {
		return err
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log: invalid level %q", c.Log.Level)
	}
	return nil
}

// HumanSeat returns the index of the human seat, or -1
func (c *Config) HumanSeat() int {
	for i, seat := range c.Seats {
		if seat.Human {
			return i
		}
	}
	return -1
}

// SessionConfig converts the table and seats for game.NewSession. With
// allAI set the human seat is played by the computer too.
func (c *Config) SessionConfig(allAI bool) game.SessionConfig {
	seats := make([]game.SeatSpec, len(c.Seats))
	for i, seat := range c.Seats {
		kind := game.AI
		if seat.Human && !allAI {
			kind = game.Human
		}
		seats[i] = game.SeatSpec{Name: seat.Name, Kind: kind}
	}
	return game.SessionConfig{
		Seats:         seats,
		SmallBlind:    c.Table.SmallBlind,
		BigBlind:      c.Table.BigBlind,
		StartingStack: c.Table.StartingStack,
		Dealer:        c.Table.Dealer,
	}
}

// AIPolicy converts the ai block
func (c *Config) AIPolicy() (game.AIPolicy, error) {
	a := c.AI
	thinkMin, err := time.ParseDuration(a.ThinkMin)
	if err != nil {
		return game.AIPolicy{}, fmt.Errorf("ai: invalid think_min: %w", err)
	}
	thinkMax, err := time.ParseDuration(a.ThinkMax)
	if err != nil {
		return game.AIPolicy{}, fmt.Errorf("ai: invalid think_max: %w", err)
	}

	switch {
	case thinkMin < 0 || thinkMax < thinkMin:
		return game.AIPolicy{}, fmt.Errorf("ai: think range %s..%s is invalid", thinkMin, thinkMax)
	case a.RaiseMin <= 0 || a.RaiseMax < a.RaiseMin:
		return game.AIPolicy{}, fmt.Errorf("ai: raise range %d..%d is invalid", a.RaiseMin, a.RaiseMax)
	case a.Unopened.Check < 0 || a.Unopened.Raise < 0 || a.Unopened.Check+a.Unopened.Raise == 0:
		return game.AIPolicy{}, fmt.Errorf("ai: unopened weights must be non-negative with a positive total")
	case a.FacingBet.Call < 0 || a.FacingBet.Fold < 0 || a.FacingBet.Raise < 0 ||
		a.FacingBet.Call+a.FacingBet.Fold+a.FacingBet.Raise == 0:
		return game.AIPolicy{}, fmt.Errorf("ai: facing_bet weights must be non-negative with a positive total")
	}

	return game.AIPolicy{
		Unopened:  game.UnopenedWeights{Check: a.Unopened.Check, Raise: a.Unopened.Raise},
		FacingBet: game.FacingBetWeights{Call: a.FacingBet.Call, Fold: a.FacingBet.Fold, Raise: a.FacingBet.Raise},
		RaiseMin:  a.RaiseMin,
		RaiseMax:  a.RaiseMax,
		ThinkMin:  thinkMin,
		ThinkMax:  thinkMax,
	}, nil
}

// MoodInterval returns the mood feed period, zero when the feed is disabled
func (c *Config) MoodInterval() (time.Duration, error) {
	if c.Mood.Enabled != nil && !*c.Mood.Enabled {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Mood.Interval)
	if err != nil {
		return 0, fmt.Errorf("mood: invalid interval: %w", err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("mood: interval must be positive")
	}
	return d, nil
}

// LogLevel returns the parsed log level, falling back to info
func (c *Config) LogLevel() log.Level {
	level, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return log.InfoLevel
	}
	return level
}

package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
)

// version is set by ldflags during build
var version = "dev"

// Globals are the flags shared by every command
type Globals struct {
	Config   string `short:"c" default:"holdem.hcl" env:"HOLDEM_CONFIG" help:"HCL config file, built-in defaults are used if it does not exist"`
	Seed     int64  `env:"HOLDEM_SEED" help:"Seed for deterministic play (0 for random)"`
	LogLevel string `env:"HOLDEM_LOG_LEVEL" help:"Log level (debug|info|warn|error), overrides the config file"`
	NoColor  bool   `env:"HOLDEM_NO_COLOR" help:"Disable colour output"`
}

type CLI struct {
	Globals

	Version  kong.VersionFlag `short:"v" help:"Show version"`
	Play     PlayCmd          `cmd:"" default:"1" help:"Play at the table against three computer seats"`
	Simulate SimulateCmd      `cmd:"" help:"Run an all-computer session and print every hand"`
}

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Warning: failed to load .env file: %v\n", err)
	}

	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("holdem"),
		kong.Description("Four-seat Texas Hold'em against the computer"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)
	err := ctx.Run(&cli.Globals)
	ctx.FatalIfErrorf(err)
}

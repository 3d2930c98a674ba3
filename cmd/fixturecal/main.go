package main

import (
	"fmt"
	"os"
	_ "time/tzdata"

	"github.com/cockroachdb/errors"
	"github.com/jessevdk/go-flags"

	appLog "fixturecal/internal/log"
)

// globalOptions apply to every subcommand.
type globalOptions struct {
	Config  string `short:"c" long:"config" env:"FIXTURECAL_CONFIG" default:"./config.yaml" description:"Path to config file"`
	LogJSON bool   `long:"log-json" env:"FIXTURECAL_LOG_JSON" description:"Write logs as JSON"`
	Debug   bool   `long:"debug" env:"FIXTURECAL_DEBUG" description:"Enable debug logging"`
}

var global globalOptions

func main() {
	parser := flags.NewParser(&global, flags.HelpFlag|flags.PassDoubleDash)
	parser.CommandHandler = func(cmd flags.Commander, args []string) error {
		appLog.Init(global.LogJSON)
		if global.Debug {
			appLog.SetLevel(appLog.LevelDebug)
		}
		defer appLog.Sync()

		if cmd == nil {
			return nil
		}
		return cmd.Execute(args)
	}

	mustAdd(parser, "serve", "Serve the JSON API",
		"Loads all sources, serves /api/* and keeps uncached sources warm on the prewarm schedule.", &serveCommand{})
	mustAdd(parser, "agenda", "Print one source to the terminal",
		"Renders the events of one source that fall inside the window, optionally filtered by a query.", &agendaCommand{})
	mustAdd(parser, "repair", "Repair mojibake in JSON files",
		"Rewrites every *.json under DIR whose strings contain known encoding damage.", &repairCommand{})

	if _, err := parser.Parse(); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) {
			if flagsErr.Type == flags.ErrHelp {
				fmt.Fprintln(os.Stdout, flagsErr.Message)
				return
			}
			fmt.Fprintln(os.Stderr, flagsErr.Message)
			os.Exit(2)
		}
		if !errors.Is(err, errReported) {
			appLog.Error("fixturecal failed", err)
		}
		os.Exit(1)
	}
}

// errReported is returned by commands that already told the user what
// went wrong.
var errReported = errors.New("reported")

func mustAdd(p *flags.Parser, name, short, long string, data any) {
	if _, err := p.AddCommand(name, short, long, data); err != nil {
		panic(err)
	}
}

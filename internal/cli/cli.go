// Package cli implements the webtime command-line interface.
package cli

import (
	"fmt"
	"os"

	goflags "github.com/jessevdk/go-flags"
)

// commands holds references to all subcommand structs for inspection/testing.
type commands struct {
	Tick    *TickCommand
	Top     *TopCommand
	Summary *SummaryCommand
	Status  *StatusCommand
	Serve   *ServeCommand
	Purge   *PurgeCommand
}

// buildParser constructs the go-flags parser with all subcommands registered.
func buildParser(version string) (*goflags.Parser, *GlobalFlags, *commands) {
	var globals GlobalFlags

	parser := goflags.NewParser(&globals, goflags.Default)
	parser.Name = "webtime"
	parser.LongDescription = "Track time spent on websites, bucketed by year, quarter, month, day, hour, and minute."

	cmds := &commands{
		Tick:    &TickCommand{globals: &globals, version: version},
		Top:     &TopCommand{globals: &globals, version: version},
		Summary: &SummaryCommand{globals: &globals, version: version},
		Status:  &StatusCommand{globals: &globals, version: version},
		Serve:   &ServeCommand{globals: &globals, version: version},
		Purge:   &PurgeCommand{globals: &globals, version: version},
	}

	parser.AddCommand("tick", "Record visit ticks for a hostname", "Record one-second visit ticks for a hostname and persist the result.", cmds.Tick)
	parser.AddCommand("top", "Show the leaderboard for a period", "Show which hostnames accumulated the most time in a period.", cmds.Top)
	parser.AddCommand("summary", "Show the full overview", "Show the all-time total, leaderboards, and histograms.", cmds.Summary)
	parser.AddCommand("status", "Show store health and storage usage", "Show store health, storage usage against quota, and daemon reachability.", cmds.Status)
	parser.AddCommand("serve", "Start the webtime daemon", "Start the webtime daemon (local HTTP tick-ingest service).", cmds.Serve)
	parser.AddCommand("purge", "Delete ALL recorded time data", "Delete ALL recorded time data. Destructive operation with safety prompt.", cmds.Purge)

	return parser, &globals, cmds
}

// Run is the main entry point for the webtime CLI using os.Args.
func Run(version string) error {
	return RunWithArgs(version, nil)
}

// RunWithArgs parses the given args (or os.Args if nil) and executes the matched subcommand.
func RunWithArgs(version string, args []string) error {
	// Handle --version before parser (go-flags requires a subcommand, but
	// --version is valid without one).
	checkArgs := args
	if checkArgs == nil {
		checkArgs = os.Args[1:]
	}
	for _, arg := range checkArgs {
		if arg == "--version" {
			fmt.Printf("webtime %s\n", version)
			return nil
		}
		if arg == "--" {
			break
		}
	}

	parser, _, _ := buildParser(version)

	var err error
	if args != nil {
		_, err = parser.ParseArgs(args)
	} else {
		_, err = parser.Parse()
	}

	if err != nil {
		if flagsErr, ok := err.(*goflags.Error); ok {
			if flagsErr.Type == goflags.ErrHelp {
				return nil
			}
		}
		return err
	}

	return nil
}

package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"

	"InvestmentHelper/internal/cli"
)

func main() {
	configPath := flag.String("config", cli.DefaultConfigPath(), "Path to the YAML config file.")

	// Exits when invoked by the shell for completion.
	cli.Completion(func() string { return *configPath }).Complete("helper")

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	cli.Register(commander, func(ctx context.Context, verbose bool) (*cli.App, error) {
		return cli.NewLoader(*configPath)(ctx, verbose)
	})

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
